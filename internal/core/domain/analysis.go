package domain

import "time"

// BandSteeringAnalysis is the persisted audit artifact. It is written once
// per analysis and never mutated in place; deletions remove the whole file.
type BandSteeringAnalysis struct {
	AnalysisID        string    `json:"analysis_id"`
	Filename          string    `json:"filename"`
	AnalysisTimestamp time.Time `json:"analysis_timestamp"`

	TotalPackets       int   `json:"total_packets"`
	WLANPackets        int   `json:"wlan_packets"`
	AnalysisDurationMS int64 `json:"analysis_duration_ms"`

	Devices       []DeviceInfo         `json:"devices"`
	BTMEvents     []BTMEvent           `json:"btm_events"`
	Transitions   []SteeringTransition `json:"transitions"`
	SignalSamples []SignalSample       `json:"signal_samples"`

	BTMRequests    int     `json:"btm_requests"`
	BTMResponses   int     `json:"btm_responses"`
	BTMSuccessRate float64 `json:"btm_success_rate"`

	SuccessfulTransitions int `json:"successful_transitions"`
	FailedTransitions     int `json:"failed_transitions"`
	LoopsDetected         int `json:"loops_detected"`

	KVRSupport       KVRSupport        `json:"kvr_support"`
	ComplianceChecks []ComplianceCheck `json:"compliance_checks"`
	Verdict          Verdict           `json:"verdict"`

	RawStats         CaptureStats      `json:"raw_stats"`
	WiresharkCompare []CompareMismatch `json:"wireshark_compare"`

	OriginalFilePath string `json:"original_file_path"`
	AnalysisText     string `json:"analysis_text"`
}

// PrimaryDevice returns the analyzed client device, or a zero DeviceInfo when
// classification produced nothing.
func (a *BandSteeringAnalysis) PrimaryDevice() DeviceInfo {
	if len(a.Devices) == 0 {
		return DeviceInfo{}
	}
	return a.Devices[0]
}

// AnalysisSummary is the registry's lightweight listing row.
type AnalysisSummary struct {
	AnalysisID        string    `json:"analysis_id"`
	Filename          string    `json:"filename"`
	AnalysisTimestamp time.Time `json:"analysis_timestamp"`
	Vendor            string    `json:"vendor"`
	Model             string    `json:"model,omitempty"`
	Verdict           Verdict   `json:"verdict"`
	Transitions       int       `json:"transitions"`
	Path              string    `json:"path"`
}

// RegistryStats aggregates the persisted analysis tree.
type RegistryStats struct {
	Count             int             `json:"count"`
	Verdicts          map[Verdict]int `json:"verdicts"`
	TopVendors        []CountEntry    `json:"top_vendors"`
	LatestCaptureTime time.Time       `json:"latest_capture_time"`
	SuccessRate       float64         `json:"success_rate"`
}

// BandTimeReport is the per-report time-in-band computation.
type BandTimeReport struct {
	Time24GHz       float64   `json:"time_2_4ghz"`
	Time5GHz        float64   `json:"time_5ghz"`
	TransitionTimes []float64 `json:"transition_times"`
}
