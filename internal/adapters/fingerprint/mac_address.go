package fingerprint

import (
	"fmt"
	"net"
	"strings"
)

// MACAddress is a validated 802.11 station address.
type MACAddress struct {
	address net.HardwareAddr
}

// ParseMAC accepts the address formats that show up in capture metadata and
// user hints: colon- or dash-separated pairs, and bare 12-digit hex.
func ParseMAC(s string) (MACAddress, error) {
	if s == "" {
		return MACAddress{}, ErrEmptyMAC
	}

	normalized := strings.ReplaceAll(s, "-", ":")
	normalized = strings.ReplaceAll(normalized, ".", ":")

	if !strings.Contains(normalized, ":") && len(normalized) == 12 {
		var parts []string
		for i := 0; i+2 <= len(normalized); i += 2 {
			parts = append(parts, normalized[i:i+2])
		}
		normalized = strings.Join(parts, ":")
	}

	hw, err := net.ParseMAC(normalized)
	if err != nil {
		return MACAddress{}, &ValidationError{
			Field: "mac",
			Value: s,
			Err:   ErrInvalidMAC,
		}
	}

	return MACAddress{address: hw}, nil
}

// OUI returns the first three octets as "XX:XX:XX", the key into the vendor
// table.
func (m MACAddress) OUI() string {
	if len(m.address) < 3 {
		return ""
	}
	return fmt.Sprintf("%02X:%02X:%02X",
		m.address[0],
		m.address[1],
		m.address[2],
	)
}

// IsRandomized reports whether the locally-administered bit (0x02 of the
// first octet) is set. Mobile clients set it on their per-network random
// addresses, which makes the OUI meaningless for vendor lookup.
func (m MACAddress) IsRandomized() bool {
	if len(m.address) == 0 {
		return false
	}
	return (m.address[0] & 0x02) != 0
}

// String formats the address as upper-case colon-separated hex.
func (m MACAddress) String() string {
	return strings.ToUpper(m.address.String())
}
