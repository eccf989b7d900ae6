package domain

// 802.11 type/subtype values as emitted by the dissector
// (wlan.fc.type_subtype, value = type<<4 | subtype). Management frames have
// type 0, so their combined value equals the bare subtype.
const (
	SubtypeAssocRequest    = 0
	SubtypeAssocResponse   = 1
	SubtypeReassocRequest  = 2
	SubtypeReassocResponse = 3
	SubtypeProbeRequest    = 4
	SubtypeProbeResponse   = 5
	SubtypeBeacon          = 8
	SubtypeDisassoc        = 10
	SubtypeAuth            = 11
	SubtypeDeauth          = 12
	SubtypeAction          = 13

	SubtypeData    = 0x20
	SubtypeQoSData = 0x28
)

// Action frame category codes relevant to KVR auditing.
const (
	CategoryRadioMeasurement = 5  // 802.11k
	CategoryWNM              = 10 // 802.11v
)

// WNM action codes carrying BSS Transition Management.
const (
	ActionBTMRequest  = 7
	ActionBTMResponse = 8
)

// FrameRecord is one normalized 802.11 frame as produced by the dissector
// adapter. Nullable numeric fields use pointers so that "absent" and "zero"
// stay distinguishable.
type FrameRecord struct {
	Timestamp     float64 // epoch seconds
	Subtype       int     // normalized wlan.fc.type_subtype
	BSSID         string
	SA            string
	DA            string
	Frequency     int // MHz
	RSSI          *int
	SSID          string
	ReasonCode    *int
	CategoryCode  *int
	ActionCode    *int
	BTMStatusCode *int
	StatusCode    *int
	FrameLen      int
	Protocols     string
}

// IsManagement reports whether the record is a management frame.
func (r FrameRecord) IsManagement() bool {
	return r.Subtype >= 0 && r.Subtype <= 15
}

// IsData reports whether the record is a (QoS) data frame.
func (r FrameRecord) IsData() bool {
	return r.Subtype == SubtypeData || r.Subtype == SubtypeQoSData
}

// IsBTMRequest reports whether the record carries a BSS Transition Management
// Request (WNM category, action 7).
func (r FrameRecord) IsBTMRequest() bool {
	return r.Subtype == SubtypeAction &&
		r.CategoryCode != nil && *r.CategoryCode == CategoryWNM &&
		r.ActionCode != nil && *r.ActionCode == ActionBTMRequest
}

// IsBTMResponse reports whether the record carries a BSS Transition Management
// Response (WNM category, action 8).
func (r FrameRecord) IsBTMResponse() bool {
	return r.Subtype == SubtypeAction &&
		r.CategoryCode != nil && *r.CategoryCode == CategoryWNM &&
		r.ActionCode != nil && *r.ActionCode == ActionBTMResponse
}

// ValidRSSI reports whether the record carries a plausible dBm reading.
func (r FrameRecord) ValidRSSI() bool {
	return r.RSSI != nil && *r.RSSI >= -120 && *r.RSSI <= 0
}
