package domain

// Band identifies the radio band a frame was observed on.
type Band string

const (
	Band24GHz   Band = "2.4GHz"
	Band5GHz    Band = "5GHz"
	BandUnknown Band = "unknown"
)

// BandForFrequency derives the band from a center frequency in MHz.
func BandForFrequency(mhz int) Band {
	switch {
	case mhz >= 2400 && mhz <= 2500:
		return Band24GHz
	case mhz >= 5000 && mhz <= 6000:
		return Band5GHz
	default:
		return BandUnknown
	}
}

// Known reports whether the band is one of the two audited bands.
func (b Band) Known() bool {
	return b == Band24GHz || b == Band5GHz
}

// BSSIDRole marks which radio of a dual-band AP a BSSID belongs to.
type BSSIDRole string

const (
	RoleMaster BSSIDRole = "master" // 5 GHz radio
	RoleSlave  BSSIDRole = "slave"  // 2.4 GHz radio
)

// BSSIDInfo accumulates what is known about a single BSSID during a capture.
type BSSIDInfo struct {
	BSSID         string    `json:"bssid"`
	Band          Band      `json:"band"`
	SSID          string    `json:"ssid,omitempty"`
	LastFrequency int       `json:"last_frequency"`
	Role          BSSIDRole `json:"role,omitempty"`
}
