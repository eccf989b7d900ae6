package compliance

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"

	"github.com/lcalzada-xor/steermap/internal/core/domain"
)

const client = "11:22:33:44:55:66"

func intPtr(v int) *int { return &v }

// testingT is the subset of *testing.T and *rapid.T that checkByName needs.
type testingT interface {
	Helper()
	Fatalf(format string, args ...any)
}

func checkByName(t testingT, checks []domain.ComplianceCheck, name string) domain.ComplianceCheck {
	t.Helper()
	for _, c := range checks {
		if c.Name == name {
			return c
		}
	}
	t.Fatalf("check %q not found", name)
	return domain.ComplianceCheck{}
}

func successfulTransition(bandChange bool) domain.SteeringTransition {
	tr := domain.SteeringTransition{
		ClientMAC:    client,
		Kind:         domain.SteeringAssisted,
		IsSuccessful: true,
		FromBand:     domain.Band5GHz,
		ToBand:       domain.Band5GHz,
	}
	if bandChange {
		tr.ToBand = domain.Band24GHz
		tr.IsBandChange = true
	}
	return tr
}

// One BTM exchange ending in Accept, one band-change reassociation: the
// capture every steering feature is supposed to produce.
func TestCleanAssistedSteering(t *testing.T) {
	in := Input{
		Stats: domain.CaptureStats{
			BTM: domain.BTMStats{
				Requests: 1, Responses: 1, Accepts: 1, StatusCodes: []int{0},
			},
			Assoc: domain.AssocStats{ReassocResponses: 1, Successes: 1},
			KVR:   domain.KVRSupport{V: true},
		},
		Transitions: []domain.SteeringTransition{successfulTransition(true)},
		ClientMAC:   client,
	}

	res := Evaluate(in)
	require.Len(t, res.Checks, 4)
	assert.True(t, checkByName(t, res.Checks, CheckBTMSupport).Passed)
	assert.True(t, checkByName(t, res.Checks, CheckAssociation).Passed)
	// One band change plus an Accept satisfies effective steering.
	assert.True(t, checkByName(t, res.Checks, CheckEffectiveSteering).Passed)
	assert.True(t, checkByName(t, res.Checks, CheckKVRStandards).Passed)
	assert.Equal(t, domain.VerdictSuccess, res.Verdict)
}

// A forced deauth aimed at the client fails the association check and the
// whole audit, even when the client reassociates immediately.
func TestAggressiveDeauthFailsVerdict(t *testing.T) {
	in := Input{
		Stats: domain.CaptureStats{
			BTM:   domain.BTMStats{Requests: 1, Responses: 1, Accepts: 1, StatusCodes: []int{0}},
			Assoc: domain.AssocStats{ReassocResponses: 1, Successes: 1},
			KVR:   domain.KVRSupport{V: true},
		},
		Events: []domain.SteeringEvent{
			{
				Type: domain.EventDeauth, ClientMAC: client,
				SA: "aa:aa:aa:aa:aa:aa", DA: client, ReasonCode: intPtr(5),
			},
		},
		Transitions: []domain.SteeringTransition{successfulTransition(true)},
		ClientMAC:   client,
	}

	res := Evaluate(in)
	assoc := checkByName(t, res.Checks, CheckAssociation)
	assert.False(t, assoc.Passed)
	require.NotNil(t, assoc.Recommendation)
	assert.Equal(t, domain.VerdictFailed, res.Verdict)
}

// A broadcast deauth is nobody's problem: the association check still passes
// and the verdict rides on effective steering alone.
func TestBroadcastDeauthIgnored(t *testing.T) {
	in := Input{
		Stats: domain.CaptureStats{
			BTM:   domain.BTMStats{Requests: 1, Responses: 1, Accepts: 1, StatusCodes: []int{0}},
			Assoc: domain.AssocStats{ReassocResponses: 1, Successes: 1},
			KVR:   domain.KVRSupport{V: true},
		},
		Events: []domain.SteeringEvent{
			{
				Type: domain.EventDeauth, ClientMAC: client,
				SA: "aa:aa:aa:aa:aa:aa", DA: "ff:ff:ff:ff:ff:ff", ReasonCode: intPtr(1),
			},
		},
		// Same-BSSID reassociation: no band change.
		Transitions: nil,
		ClientMAC:   client,
	}

	res := Evaluate(in)
	assert.True(t, checkByName(t, res.Checks, CheckAssociation).Passed)
	assert.False(t, checkByName(t, res.Checks, CheckEffectiveSteering).Passed)
	assert.Equal(t, domain.VerdictFailed, res.Verdict)
}

// BTM Accept without any physical movement downgrades to PARTIAL.
func TestBTMAcceptWithoutBandChange(t *testing.T) {
	in := Input{
		Stats: domain.CaptureStats{
			BTM:   domain.BTMStats{Requests: 1, Responses: 1, Accepts: 1, StatusCodes: []int{0}},
			Assoc: domain.AssocStats{AssocResponses: 1, Successes: 1},
			KVR:   domain.KVRSupport{V: true},
		},
		ClientMAC: client,
	}

	res := Evaluate(in)
	assert.True(t, checkByName(t, res.Checks, CheckBTMSupport).Passed)
	assert.False(t, checkByName(t, res.Checks, CheckEffectiveSteering).Passed)
	assert.Equal(t, domain.VerdictPartial, res.Verdict)
}

// BTM accept with no association traffic at all: the association check
// fails for absence, not for cause, so the verdict falls through to the
// BTM success-rate rule instead of sinking to FAILED.
func TestBTMAcceptWithoutAnyReassoc(t *testing.T) {
	in := Input{
		Stats: domain.CaptureStats{
			BTM: domain.BTMStats{Requests: 1, Responses: 1, Accepts: 1, StatusCodes: []int{0}},
			KVR: domain.KVRSupport{V: true},
		},
		ClientMAC: client,
	}

	res := Evaluate(in)
	assert.True(t, checkByName(t, res.Checks, CheckBTMSupport).Passed)
	assert.False(t, checkByName(t, res.Checks, CheckAssociation).Passed)
	assert.Equal(t, domain.VerdictPartial, res.Verdict)
}

// Preventive steering wins before any handshake rule: a client parked on
// 5 GHz with no BTM or association traffic at all is still a success.
func TestPreventiveSteeringShortCircuits(t *testing.T) {
	in := Input{
		Stats: domain.CaptureStats{
			Bands: domain.BandCounters{Beacons24: 120, Beacons5: 120, Data24: 3, Data5: 97},
			KVR:   domain.KVRSupport{},
		},
		ClientMAC:  client,
		Preventive: true,
	}

	res := Evaluate(in)
	require.Len(t, res.Checks, 4)
	assert.False(t, checkByName(t, res.Checks, CheckBTMSupport).Passed)
	assert.False(t, checkByName(t, res.Checks, CheckAssociation).Passed)
	assert.False(t, checkByName(t, res.Checks, CheckEffectiveSteering).Passed)
	assert.Equal(t, domain.VerdictSuccess, res.Verdict)
}

func TestTwoBandChangesPassWithoutAccept(t *testing.T) {
	in := Input{
		Stats: domain.CaptureStats{
			BTM:   domain.BTMStats{Requests: 2, Responses: 2, Accepts: 1, StatusCodes: []int{0}},
			Assoc: domain.AssocStats{ReassocResponses: 2, Successes: 2},
		},
		Transitions: []domain.SteeringTransition{
			successfulTransition(true),
			successfulTransition(true),
		},
		ClientMAC: client,
	}

	res := Evaluate(in)
	assert.True(t, checkByName(t, res.Checks, CheckEffectiveSteering).Passed)
	assert.Equal(t, domain.VerdictSuccess, res.Verdict)
}

func TestBTMCheckVariants(t *testing.T) {
	tests := []struct {
		name       string
		btm        domain.BTMStats
		wantPassed bool
		wantDetail string
	}{
		{
			name:       "silence fails",
			btm:        domain.BTMStats{},
			wantPassed: false,
			wantDetail: "BTM not observed",
		},
		{
			name:       "unanswered requests fail",
			btm:        domain.BTMStats{Requests: 3},
			wantPassed: false,
			wantDetail: "did not reply",
		},
		{
			name:       "responses without accept fail",
			btm:        domain.BTMStats{Requests: 2, Responses: 2, Rejects: 2, StatusCodes: []int{7}},
			wantPassed: false,
			wantDetail: "7 (Reject - No suitable BSS transition candidates)",
		},
		{
			name:       "one accept passes",
			btm:        domain.BTMStats{Requests: 2, Responses: 2, Accepts: 1, Rejects: 1, StatusCodes: []int{0, 1}},
			wantPassed: true,
			wantDetail: "0 (Accept), 1 (Reject - Unspecified)",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			check := checkBTM(tt.btm)
			assert.Equal(t, tt.wantPassed, check.Passed)
			assert.Contains(t, check.Details, tt.wantDetail)
			if !tt.wantPassed {
				assert.NotNil(t, check.Recommendation)
			}
		})
	}
}

func TestAssociationFailureRecords(t *testing.T) {
	in := Input{
		Stats: domain.CaptureStats{
			Assoc: domain.AssocStats{
				AssocResponses: 2,
				Successes:      1,
				Failures: []domain.AssocFailure{
					{Timestamp: 1.0, BSSID: "aa:aa:aa:aa:aa:aa", StatusCode: 17},
				},
			},
		},
		ClientMAC: client,
	}

	check := checkAssociation(in)
	assert.False(t, check.Passed)
	require.NotNil(t, check.Recommendation)
	assert.Contains(t, *check.Recommendation, "status codes")
}

func TestEffectiveSteeringDetailsFormat(t *testing.T) {
	in := Input{
		Stats: domain.CaptureStats{BTM: domain.BTMStats{Accepts: 1}},
		Transitions: []domain.SteeringTransition{
			successfulTransition(true),
			successfulTransition(false),
			{ClientMAC: client, IsSuccessful: false, IsBandChange: true},
		},
	}

	check := checkEffectiveSteering(in)
	assert.Equal(t, "1 band-change transitions | 2 total successful transitions | 1 BTM accepts", check.Details)
	assert.True(t, check.Passed)
}

func TestKVRCheck(t *testing.T) {
	assert.True(t, checkKVR(domain.KVRSupport{K: true}).Passed)
	assert.True(t, checkKVR(domain.KVRSupport{R: true}).Passed)
	failed := checkKVR(domain.KVRSupport{})
	assert.False(t, failed.Passed)
	assert.Equal(t, "802.11k=false 802.11v=false 802.11r=false", failed.Details)
}

// With zero BTM traffic the BTM check always fails, whatever else the
// capture contains.
func TestNoBTMTrafficAlwaysFailsCheck(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		in := Input{
			Stats: domain.CaptureStats{
				Assoc: domain.AssocStats{
					Successes: rapid.IntRange(0, 5).Draw(t, "successes"),
				},
				KVR: domain.KVRSupport{
					K: rapid.Bool().Draw(t, "k"),
					R: rapid.Bool().Draw(t, "r"),
				},
			},
			ClientMAC: client,
		}
		res := Evaluate(in)
		assert.False(t, checkByName(t, res.Checks, CheckBTMSupport).Passed)
	})
}

// A failed association check forces a FAILED verdict unless preventive
// steering short-circuits.
func TestAssociationFailForcesFailedVerdict(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		in := Input{
			Stats: domain.CaptureStats{
				BTM: domain.BTMStats{
					Requests:  rapid.IntRange(1, 3).Draw(t, "reqs"),
					Responses: 1,
					Accepts:   1,
				},
				Assoc: domain.AssocStats{
					Failures: []domain.AssocFailure{{StatusCode: 17}},
				},
			},
			ClientMAC: client,
		}
		if rapid.Bool().Draw(t, "withTransition") {
			in.Transitions = []domain.SteeringTransition{successfulTransition(true)}
		}

		res := Evaluate(in)
		require.False(t, checkByName(t, res.Checks, CheckAssociation).Passed)
		assert.Equal(t, domain.VerdictFailed, res.Verdict)
	})
}

// The evaluator always emits exactly four checks, one per category.
func TestAlwaysFourChecks(t *testing.T) {
	res := Evaluate(Input{})
	require.Len(t, res.Checks, 4)
	seen := map[domain.CheckCategory]bool{}
	for _, c := range res.Checks {
		seen[c.Category] = true
	}
	assert.Len(t, seen, 4)
}
