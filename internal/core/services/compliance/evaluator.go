package compliance

import (
	"fmt"
	"sort"
	"strings"

	"github.com/lcalzada-xor/steermap/internal/core/domain"
	"github.com/lcalzada-xor/steermap/internal/core/services/steering"
)

// Check names, stable across artifacts.
const (
	CheckBTMSupport        = "BTM Support (802.11v)"
	CheckAssociation       = "Association and Reassociation"
	CheckEffectiveSteering = "Effective Steering"
	CheckKVRStandards      = "KVR Standards"
)

// btmStatusText maps BSS Transition Management response status codes to the
// standard descriptions.
var btmStatusText = map[int]string{
	0: "Accept",
	1: "Reject - Unspecified",
	2: "Reject - Insufficient beacon or probe responses",
	3: "Reject - Insufficient capacity",
	4: "Reject - BSS termination undesired",
	5: "Reject - BSS termination delay requested",
	6: "Reject - STA BSS transition candidate list provided",
	7: "Reject - No suitable BSS transition candidates",
	8: "Reject - Leaving ESS",
}

// Input carries everything the evaluator reads. It never mutates any of it.
type Input struct {
	Stats       domain.CaptureStats
	Transitions []domain.SteeringTransition
	Events      []domain.SteeringEvent
	ClientMAC   string
	Preventive  bool
}

// Result is the full compliance outcome for one capture.
type Result struct {
	Checks  []domain.ComplianceCheck
	Verdict domain.Verdict
}

// Evaluate runs the four checks and derives the verdict. It never fails:
// missing counters degrade individual checks, not the evaluation.
func Evaluate(in Input) Result {
	checks := []domain.ComplianceCheck{
		checkBTM(in.Stats.BTM),
		checkAssociation(in),
		checkEffectiveSteering(in),
		checkKVR(in.Stats.KVR),
	}
	return Result{
		Checks:  checks,
		Verdict: deriveVerdict(checks, in),
	}
}

func checkBTM(btm domain.BTMStats) domain.ComplianceCheck {
	check := domain.ComplianceCheck{
		Name:     CheckBTMSupport,
		Category: domain.CategoryBTM,
		Severity: domain.SeverityHigh,
	}

	switch {
	case btm.Requests == 0 && btm.Responses == 0:
		check.Details = "BTM not observed: no 802.11v transition management frames in capture"
		check.Recommendation = strPtr("verify the AP has 802.11v band steering enabled")
	case btm.Requests > 0 && btm.Responses == 0:
		check.Details = fmt.Sprintf("BTM requested %d time(s) but client did not reply", btm.Requests)
		check.Recommendation = strPtr("the client may not support 802.11v; check its wireless driver")
	case btm.Accepts > 0:
		check.Passed = true
		check.Severity = domain.SeverityLow
		check.Details = fmt.Sprintf("%d request(s), %d response(s), %d accept(s); status codes seen: %s",
			btm.Requests, btm.Responses, btm.Accepts, describeStatusCodes(btm.StatusCodes))
	default:
		check.Details = fmt.Sprintf("%d response(s) without a single Accept; status codes seen: %s",
			btm.Responses, describeStatusCodes(btm.StatusCodes))
		check.Recommendation = strPtr("the client rejects every transition candidate; review AP neighbor configuration")
	}
	return check
}

func describeStatusCodes(codes []int) string {
	if len(codes) == 0 {
		return "none"
	}
	sorted := make([]int, len(codes))
	copy(sorted, codes)
	sort.Ints(sorted)

	parts := make([]string, 0, len(sorted))
	for _, c := range sorted {
		text, ok := btmStatusText[c]
		if !ok {
			text = "Unknown"
		}
		parts = append(parts, fmt.Sprintf("%d (%s)", c, text))
	}
	return strings.Join(parts, ", ")
}

func checkAssociation(in Input) domain.ComplianceCheck {
	check := domain.ComplianceCheck{
		Name:     CheckAssociation,
		Category: domain.CategoryAssociation,
		Severity: domain.SeverityHigh,
	}

	directed, forced := countDisconnects(in)
	assoc := in.Stats.Assoc
	detail := fmt.Sprintf("%d successful handshake(s), %d failure(s); %d directed deauth/disassoc (%d forced)",
		assoc.Successes, len(assoc.Failures), directed, forced)

	switch {
	case len(assoc.Failures) > 0:
		check.Details = detail
		check.Recommendation = strPtr("the AP refused association; inspect the failure status codes")
	case forced > 0:
		check.Details = detail
		check.Recommendation = strPtr("forced disconnections point to aggressive steering; prefer 802.11v transitions")
	case assoc.Successes == 0:
		check.Details = detail
		check.Recommendation = strPtr("no completed association cycle in the capture window")
	default:
		check.Passed = true
		check.Severity = domain.SeverityLow
		check.Details = detail
	}
	return check
}

// countDisconnects tallies deauth/disassoc frames aimed at the primary
// client, and how many of those were forced.
func countDisconnects(in Input) (directed, forced int) {
	for _, ev := range in.Events {
		if ev.Type != domain.EventDeauth && ev.Type != domain.EventDisassoc {
			continue
		}
		switch steering.ClassifyDeauth(ev, in.ClientMAC) {
		case domain.DeauthForcedToClient:
			directed++
			forced++
		case domain.DeauthGraceful:
			if steering.IsDirectedToClient(ev, in.ClientMAC) {
				directed++
			}
		}
	}
	return directed, forced
}

func checkEffectiveSteering(in Input) domain.ComplianceCheck {
	check := domain.ComplianceCheck{
		Name:     CheckEffectiveSteering,
		Category: domain.CategoryPerformance,
		Severity: domain.SeverityMedium,
	}

	bandChanges, successful := 0, 0
	for _, tr := range in.Transitions {
		if !tr.IsSuccessful {
			continue
		}
		successful++
		if tr.IsBandChange {
			bandChanges++
		}
	}
	accepts := in.Stats.BTM.Accepts

	check.Details = fmt.Sprintf("%d band-change transitions | %d total successful transitions | %d BTM accepts",
		bandChanges, successful, accepts)

	// An Accept without any physical movement is a promise, not steering.
	switch {
	case bandChanges >= 2:
		check.Passed = true
		check.Severity = domain.SeverityLow
	case bandChanges >= 1 && accepts > 0:
		check.Passed = true
		check.Severity = domain.SeverityLow
	default:
		check.Recommendation = strPtr("no effective band movement observed; capture a longer steering session")
	}
	return check
}

func checkKVR(kvr domain.KVRSupport) domain.ComplianceCheck {
	check := domain.ComplianceCheck{
		Name:     CheckKVRStandards,
		Category: domain.CategoryKVR,
		Severity: domain.SeverityLow,
		Details: fmt.Sprintf("802.11k=%t 802.11v=%t 802.11r=%t",
			kvr.K, kvr.V, kvr.R),
	}
	if kvr.Any() {
		check.Passed = true
	} else {
		check.Recommendation = strPtr("no roaming standard detected; enable 802.11k/v/r on the AP")
	}
	return check
}

func strPtr(s string) *string { return &s }
