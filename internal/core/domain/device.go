package domain

// DeviceCategory is the coarse device classification used for report routing.
type DeviceCategory string

const (
	CategoryMobile       DeviceCategory = "mobile"
	CategoryComputer     DeviceCategory = "computer"
	CategoryNetworkEquip DeviceCategory = "network_equipment"
	CategoryVirtual      DeviceCategory = "virtual_machine"
	CategoryUnknownDev   DeviceCategory = "unknown"
)

// DeviceInfo describes the analyzed client device, resolved from the MAC OUI
// plus filename and user hints.
type DeviceInfo struct {
	MAC        string         `json:"mac"`
	OUI        string         `json:"oui"`
	Vendor     string         `json:"vendor"`
	Model      *string        `json:"model"`
	Category   DeviceCategory `json:"category"`
	IsVirtual  bool           `json:"is_virtual"`
	Confidence float64        `json:"confidence"` // [0,1]
}

// UserHints carries the optional metadata a user may attach to a capture.
// All fields are optional; empty values mean "not provided".
type UserHints struct {
	SSID        string `json:"ssid,omitempty"`
	ClientMAC   string `json:"client_mac,omitempty"`
	DeviceBrand string `json:"device_brand,omitempty"`
	DeviceModel string `json:"device_model,omitempty"`
}
