package compliance

import (
	"github.com/lcalzada-xor/steermap/internal/core/domain"
)

// deriveVerdict applies the verdict ladder. Preventive steering is decided
// before the handshake rules: a capture where all traffic already rides 5 GHz
// has no BTM or association exchange to judge, yet the steering works.
func deriveVerdict(checks []domain.ComplianceCheck, in Input) domain.Verdict {
	if in.Preventive {
		return domain.VerdictSuccess
	}

	byName := make(map[string]domain.ComplianceCheck, len(checks))
	for _, c := range checks {
		byName[c.Name] = c
	}
	btm := byName[CheckBTMSupport]
	assoc := byName[CheckAssociation]
	effective := byName[CheckEffectiveSteering]

	// An association failure sinks the audit only when something actually
	// went wrong: a forced kick or an explicit rejection. Mere absence of
	// association traffic falls through to the BTM-based rules.
	_, forced := countDisconnects(in)
	if !assoc.Passed && (forced > 0 || len(in.Stats.Assoc.Failures) > 0) {
		return domain.VerdictFailed
	}
	if !btm.Passed {
		return domain.VerdictFailed
	}
	if effective.Passed {
		return domain.VerdictSuccess
	}

	// Check 1 already passed at this point, so movement without effective
	// steering is a partial result, never a total failure.
	for _, tr := range in.Transitions {
		if tr.IsSuccessful {
			return domain.VerdictPartial
		}
	}
	if in.Stats.BTM.Accepts > 0 && in.Stats.BTM.SuccessRate() > 0.5 {
		return domain.VerdictPartial
	}
	return domain.VerdictFailed
}
