package domain

// EventType classifies the steering-relevant management events extracted by
// the frame aggregator.
type EventType string

const (
	EventBTMRequest      EventType = "btm_request"
	EventBTMResponse     EventType = "btm_response"
	EventAssocRequest    EventType = "assoc_request"
	EventAssocResponse   EventType = "assoc_response"
	EventReassocRequest  EventType = "reassoc_request"
	EventReassocResponse EventType = "reassoc_response"
	EventDeauth          EventType = "deauth"
	EventDisassoc        EventType = "disassoc"
)

// SteeringEvent is one entry of the chronologically ordered event stream the
// state machine consumes. Direction (client vs AP) is already resolved per
// the subtype rules of the aggregator.
type SteeringEvent struct {
	Timestamp  float64   `json:"timestamp"`
	Type       EventType `json:"type"`
	ClientMAC  string    `json:"client_mac,omitempty"`
	APMAC      string    `json:"ap_mac,omitempty"`
	BSSID      string    `json:"bssid,omitempty"`
	SA         string    `json:"sa,omitempty"`
	DA         string    `json:"da,omitempty"`
	Band       Band      `json:"band"`
	Frequency  int       `json:"frequency,omitempty"`
	RSSI       *int      `json:"rssi,omitempty"`
	ReasonCode *int      `json:"reason_code,omitempty"`
	StatusCode *int      `json:"status_code,omitempty"`
}

// IsAssociationResponse reports whether the event completes an association
// handshake (assoc or reassoc response).
func (e SteeringEvent) IsAssociationResponse() bool {
	return e.Type == EventAssocResponse || e.Type == EventReassocResponse
}

// BTMEvent is the persisted form of a BSS Transition Management exchange leg.
type BTMEvent struct {
	Timestamp  float64 `json:"timestamp"`
	EventType  string  `json:"event_type"` // "request" or "response"
	ClientMAC  string  `json:"client_mac"`
	APBSSID    string  `json:"ap_bssid"`
	StatusCode *int    `json:"status_code"`
	Band       Band    `json:"band"`
	Frequency  int     `json:"frequency"`
	RSSI       *int    `json:"rssi"`
}

// SignalSample is one RSSI observation attributed to the primary client.
type SignalSample struct {
	Timestamp float64 `json:"timestamp"`
	RSSI      int     `json:"rssi"`
	Band      Band    `json:"band"`
	SA        string  `json:"sa"`
	DA        string  `json:"da"`
}
