package capture

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/google/gopacket"
	"github.com/google/gopacket/layers"
	"github.com/google/gopacket/pcapgo"

	"github.com/lcalzada-xor/steermap/internal/core/domain"
)

// pcapng section header block type and the legacy pcap magic variants
// (micro/nanosecond, both endiannesses).
const ngBlockType = 0x0A0D0D0A

var pcapMagics = map[uint32]bool{
	0xA1B2C3D4: true,
	0xD4C3B2A1: true,
	0xA1B23C4D: true,
	0x4D3CB2A1: true,
}

// wirelessLinkTypes are the link layers under which 802.11 frames can appear.
var wirelessLinkTypes = map[layers.LinkType]bool{
	layers.LinkTypeIEEE802_11:     true,
	layers.LinkTypeIEEE80211Radio: true, // radiotap
	layers.LinkType(192):          true, // PPI
	layers.LinkType(163):          true, // AVS radio header
}

// Validator inspects capture files before the dissector is spawned. It
// rejects files that cannot contain 802.11 frames and supplies an
// independent total-packet count for the comparison diagnostics.
type Validator struct{}

// NewValidator returns a capture validator.
func NewValidator() *Validator {
	return &Validator{}
}

// packetReader is the pcapgo surface shared by both file formats.
type packetReader interface {
	ReadPacketData() ([]byte, gopacket.CaptureInfo, error)
	LinkType() layers.LinkType
}

// Validate implements ports.CaptureValidator.
func (v *Validator) Validate(path string) (int, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, fmt.Errorf("opening capture: %v: %w", err, domain.ErrInvalidCapture)
	}
	defer f.Close()

	var magic [4]byte
	if _, err := io.ReadFull(f, magic[:]); err != nil {
		return 0, fmt.Errorf("capture too short: %w", domain.ErrInvalidCapture)
	}
	if _, err := f.Seek(0, io.SeekStart); err != nil {
		return 0, fmt.Errorf("rewinding capture: %v: %w", err, domain.ErrPersistence)
	}

	var r packetReader
	switch {
	case binary.LittleEndian.Uint32(magic[:]) == ngBlockType:
		ng, err := pcapgo.NewNgReader(f, pcapgo.DefaultNgReaderOptions)
		if err != nil {
			return 0, fmt.Errorf("reading pcapng: %v: %w", err, domain.ErrInvalidCapture)
		}
		r = ng
	case pcapMagics[binary.BigEndian.Uint32(magic[:])] || pcapMagics[binary.LittleEndian.Uint32(magic[:])]:
		pr, err := pcapgo.NewReader(f)
		if err != nil {
			return 0, fmt.Errorf("reading pcap: %v: %w", err, domain.ErrInvalidCapture)
		}
		r = pr
	default:
		return 0, fmt.Errorf("not a pcap or pcapng file: %w", domain.ErrInvalidCapture)
	}

	if !wirelessLinkTypes[r.LinkType()] {
		return 0, fmt.Errorf("link type %s carries no 802.11 frames: %w", r.LinkType(), domain.ErrInvalidCapture)
	}

	count := 0
	for {
		_, _, err := r.ReadPacketData()
		if err == io.EOF {
			break
		}
		if err != nil {
			// Truncated tail; what was counted so far is still usable.
			if errors.Is(err, io.ErrUnexpectedEOF) {
				break
			}
			return count, fmt.Errorf("reading packets: %v: %w", err, domain.ErrInvalidCapture)
		}
		count++
	}

	if count == 0 {
		return 0, fmt.Errorf("capture holds no packets: %w", domain.ErrInvalidCapture)
	}
	return count, nil
}
