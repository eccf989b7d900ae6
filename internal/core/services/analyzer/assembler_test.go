package analyzer

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lcalzada-xor/steermap/internal/core/domain"
	"github.com/lcalzada-xor/steermap/internal/core/services/compliance"
)

func TestAssembleSuccessfulTransitionsFloor(t *testing.T) {
	// Three raw accepts but only one derived transition: the accept count
	// is the floor.
	in := assembleInput{
		CapturePath: "/captures/run.pcap",
		Started:     time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC),
		Stats: domain.CaptureStats{
			TotalPackets: 100,
			WLANPackets:  80,
			BTM:          domain.BTMStats{Requests: 3, Responses: 3, Accepts: 3},
		},
		Transitions: []domain.SteeringTransition{
			{ClientMAC: clientMAC, Kind: domain.SteeringAssisted, IsSuccessful: true, IsBandChange: true},
		},
		Result: compliance.Result{Verdict: domain.VerdictPartial},
	}

	analysis := assemble(in)
	assert.Equal(t, 3, analysis.SuccessfulTransitions)
	assert.Equal(t, 0, analysis.FailedTransitions)
	assert.Equal(t, "run.pcap", analysis.Filename)
	assert.Equal(t, "/captures/run.pcap", analysis.OriginalFilePath)
	assert.NotEmpty(t, analysis.AnalysisID)

	// The derived count disagreeing with raw accepts surfaces in the
	// compare block.
	require.NotEmpty(t, analysis.WiresharkCompare)
	assert.Equal(t, "successful_transitions", analysis.WiresharkCompare[0].Field)
	assert.Equal(t, 3, analysis.WiresharkCompare[0].Raw)
	assert.Equal(t, 1, analysis.WiresharkCompare[0].Derived)
}

func TestAssembleDerivedAboveRaw(t *testing.T) {
	in := assembleInput{
		CapturePath: "run.pcap",
		Started:     time.Now(),
		Stats:       domain.CaptureStats{BTM: domain.BTMStats{Accepts: 0}},
		Transitions: []domain.SteeringTransition{
			{IsSuccessful: true, IsBandChange: true},
			{IsSuccessful: true},
		},
	}

	analysis := assemble(in)
	assert.Equal(t, 2, analysis.SuccessfulTransitions)
}

func TestAssembleLoopsAndFailures(t *testing.T) {
	in := assembleInput{
		CapturePath: "run.pcap",
		Started:     time.Now(),
		Stats: domain.CaptureStats{
			Assoc: domain.AssocStats{
				Failures: []domain.AssocFailure{{StatusCode: 17}, {StatusCode: 1}},
			},
		},
		Transitions: []domain.SteeringTransition{
			{IsSuccessful: true, ReturnedToOriginal: true},
			{IsSuccessful: false},
		},
	}

	analysis := assemble(in)
	assert.Equal(t, 1, analysis.LoopsDetected)
	assert.Equal(t, 3, analysis.FailedTransitions, "derived failures plus explicit rejections")
}

func TestCompareCountersResponseOverflow(t *testing.T) {
	stats := domain.CaptureStats{
		BTM: domain.BTMStats{Requests: 1, Responses: 3, Accepts: 0},
	}
	mismatches := compareCounters(stats, 0, nil)

	var found bool
	for _, m := range mismatches {
		if m.Field == "btm_responses" {
			found = true
			assert.Equal(t, domain.CompareError, m.Severity)
		}
	}
	assert.True(t, found)
}

func TestCompareCountersCleanCapture(t *testing.T) {
	stats := domain.CaptureStats{
		BTM:   domain.BTMStats{Requests: 1, Responses: 1, Accepts: 1},
		Bands: domain.BandCounters{Data24: 10, Data5: 50},
	}
	transitions := []domain.SteeringTransition{{IsSuccessful: true, IsBandChange: true}}
	assert.Empty(t, compareCounters(stats, 1, transitions))
}
