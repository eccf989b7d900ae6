package domain

// SteeringKind is the closed set of steering transition classifications.
type SteeringKind string

const (
	SteeringAggressive SteeringKind = "aggressive" // forced deauth then reassoc
	SteeringAssisted   SteeringKind = "assisted"   // BTM request then reassoc
	SteeringUnknown    SteeringKind = "unknown"    // spontaneous roam
	SteeringPreventive SteeringKind = "preventive" // traffic pinned to 5 GHz
)

// DeauthClass is the closed set of deauth/disassoc classifications.
type DeauthClass string

const (
	DeauthBroadcast       DeauthClass = "broadcast"
	DeauthDirectedToOther DeauthClass = "directed_to_other"
	DeauthGraceful        DeauthClass = "graceful"
	DeauthForcedToClient  DeauthClass = "forced_to_client"
	DeauthUnknown         DeauthClass = "unknown"
)

// SteeringTransition records one client movement between BSSIDs, classified
// by the cause that preceded the reassociation.
type SteeringTransition struct {
	ClientMAC          string       `json:"client_mac"`
	Kind               SteeringKind `json:"kind"`
	StartTime          float64      `json:"start_time"`
	EndTime            float64      `json:"end_time"`
	Duration           float64      `json:"duration"`
	FromBSSID          string       `json:"from_bssid,omitempty"`
	ToBSSID            string       `json:"to_bssid,omitempty"`
	FromBand           Band         `json:"from_band"`
	ToBand             Band         `json:"to_band"`
	IsBandChange       bool         `json:"is_band_change"`
	IsSuccessful       bool         `json:"is_successful"`
	ReasonCode         *int         `json:"reason_code"`
	ReturnedToOriginal bool         `json:"returned_to_original"`
}

// KVRSupport records which of the three roaming amendments were observed.
type KVRSupport struct {
	K bool `json:"k"` // 802.11k radio measurement
	V bool `json:"v"` // 802.11v BSS transition
	R bool `json:"r"` // 802.11r fast transition
}

// Any reports whether at least one amendment was observed.
func (s KVRSupport) Any() bool {
	return s.K || s.V || s.R
}
