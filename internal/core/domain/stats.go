package domain

// BTMStats aggregates raw BSS Transition Management counters.
type BTMStats struct {
	Requests    int   `json:"requests"`
	Responses   int   `json:"responses"`
	Accepts     int   `json:"accepts"`
	Rejects     int   `json:"rejects"`
	StatusCodes []int `json:"status_codes"`
}

// SuccessRate returns accepts over responses, 0 when no responses were seen.
func (s BTMStats) SuccessRate() float64 {
	if s.Responses == 0 {
		return 0
	}
	return float64(s.Accepts) / float64(s.Responses)
}

// AssocFailure records one association/reassociation rejection.
type AssocFailure struct {
	Timestamp  float64 `json:"timestamp"`
	BSSID      string  `json:"bssid"`
	StatusCode int     `json:"status_code"`
}

// AssocStats aggregates association and reassociation counters.
type AssocStats struct {
	AssocRequests    int            `json:"assoc_requests"`
	AssocResponses   int            `json:"assoc_responses"`
	ReassocRequests  int            `json:"reassoc_requests"`
	ReassocResponses int            `json:"reassoc_responses"`
	Successes        int            `json:"successes"`
	Failures         []AssocFailure `json:"failures"`
}

// DeauthStats aggregates disconnect counters.
type DeauthStats struct {
	DeauthCount   int   `json:"deauth_count"`
	DisassocCount int   `json:"disassoc_count"`
	ReasonCodes   []int `json:"reason_codes"`
}

// BandCounters holds per-band frame tallies.
type BandCounters struct {
	Beacons24        int `json:"beacons_24"`
	Beacons5         int `json:"beacons_5"`
	ProbeRequests24  int `json:"probe_requests_24"`
	ProbeRequests5   int `json:"probe_requests_5"`
	ProbeResponses24 int `json:"probe_responses_24"`
	ProbeResponses5  int `json:"probe_responses_5"`
	Data24           int `json:"data_24"`
	Data5            int `json:"data_5"`
}

// CountEntry is one name→count pair of a top-N ranking.
type CountEntry struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}

// BandMismatch is a diagnostic for frames whose derived band contradicted the
// memoized frequency map or a BSSID's previously observed band.
type BandMismatch struct {
	Timestamp float64 `json:"timestamp"`
	BSSID     string  `json:"bssid,omitempty"`
	Frequency int     `json:"frequency"`
	Expected  Band    `json:"expected"`
	Observed  Band    `json:"observed"`
}

// CaptureStats is the raw diagnostics block produced by the single-pass
// aggregator. It is the source of truth for all counters; later stages may
// refine derived numbers but never contradict these.
type CaptureStats struct {
	TotalPackets int `json:"total_packets"`
	WLANPackets  int `json:"wlan_packets"`

	TopProtocols    []CountEntry `json:"top_protocols"`
	TopSources      []CountEntry `json:"top_sources"`
	TopDestinations []CountEntry `json:"top_destinations"`

	Bands  BandCounters `json:"bands"`
	BTM    BTMStats     `json:"btm"`
	Assoc  AssocStats   `json:"assoc"`
	Deauth DeauthStats  `json:"deauth"`
	KVR    KVRSupport   `json:"kvr"`

	BSSIDs      map[string]*BSSIDInfo `json:"bssids"`
	FreqBandMap map[int]Band          `json:"freq_band_map"`
	Mismatches  []BandMismatch        `json:"mismatches,omitempty"`
	Warnings    []string              `json:"warnings,omitempty"`

	SampledBeacons   int `json:"sampled_beacons"`
	ImportantPackets int `json:"important_packets"`

	SteeringPattern SteeringKind `json:"steering_pattern,omitempty"`
}

// CompareSeverity grades a raw-vs-derived counter disagreement.
type CompareSeverity string

const (
	CompareWarning CompareSeverity = "warning"
	CompareError   CompareSeverity = "error"
)

// CompareMismatch is one entry of the wireshark_compare diagnostic block.
type CompareMismatch struct {
	Field    string          `json:"field"`
	Raw      int             `json:"raw"`
	Derived  int             `json:"derived"`
	Severity CompareSeverity `json:"severity"`
	Note     string          `json:"note,omitempty"`
}
