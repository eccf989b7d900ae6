package domain

// CheckCategory groups compliance checks by concern.
type CheckCategory string

const (
	CategoryBTM         CheckCategory = "btm"
	CategoryAssociation CheckCategory = "association"
	CategoryPerformance CheckCategory = "performance"
	CategoryKVR         CheckCategory = "kvr"
)

// CheckSeverity grades how much a failed check matters.
type CheckSeverity string

const (
	SeverityLow    CheckSeverity = "low"
	SeverityMedium CheckSeverity = "medium"
	SeverityHigh   CheckSeverity = "high"
)

// ComplianceCheck is the outcome of one audit rule.
type ComplianceCheck struct {
	Name           string        `json:"name"`
	Category       CheckCategory `json:"category"`
	Passed         bool          `json:"passed"`
	Severity       CheckSeverity `json:"severity"`
	Details        string        `json:"details"`
	Recommendation *string       `json:"recommendation"`
}

// Verdict is the overall band-steering audit outcome.
type Verdict string

const (
	VerdictSuccess Verdict = "SUCCESS"
	VerdictPartial Verdict = "PARTIAL"
	VerdictFailed  Verdict = "FAILED"
)
