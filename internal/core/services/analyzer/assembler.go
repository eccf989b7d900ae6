package analyzer

import (
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"github.com/lcalzada-xor/steermap/internal/core/domain"
	"github.com/lcalzada-xor/steermap/internal/core/services/compliance"
)

type assembleInput struct {
	CapturePath string
	Started     time.Time
	Stats       domain.CaptureStats
	Device      domain.DeviceInfo
	BTMEvents   []domain.BTMEvent
	Transitions []domain.SteeringTransition
	Samples     []domain.SignalSample
	Result      compliance.Result
	Preventive  bool
}

// assemble builds the persisted artifact from the finished pipeline stages.
// Raw counters copy straight from the aggregator; derived counters may only
// be raised to the raw floor (a BTM Accept is a successful transition even
// when the reassociation fell outside the capture).
func assemble(in assembleInput) *domain.BandSteeringAnalysis {
	derivedSuccess, derivedFailed, loops := 0, 0, 0
	for _, tr := range in.Transitions {
		if tr.IsSuccessful {
			derivedSuccess++
		} else {
			derivedFailed++
		}
		if tr.ReturnedToOriginal {
			loops++
		}
	}

	successful := derivedSuccess
	if in.Stats.BTM.Accepts > successful {
		successful = in.Stats.BTM.Accepts
	}
	failed := derivedFailed + len(in.Stats.Assoc.Failures)

	return &domain.BandSteeringAnalysis{
		AnalysisID:        uuid.NewString(),
		Filename:          filepath.Base(in.CapturePath),
		AnalysisTimestamp: in.Started.UTC(),

		TotalPackets: in.Stats.TotalPackets,
		WLANPackets:  in.Stats.WLANPackets,

		Devices:       []domain.DeviceInfo{in.Device},
		BTMEvents:     in.BTMEvents,
		Transitions:   in.Transitions,
		SignalSamples: in.Samples,

		BTMRequests:    in.Stats.BTM.Requests,
		BTMResponses:   in.Stats.BTM.Responses,
		BTMSuccessRate: in.Stats.BTM.SuccessRate(),

		SuccessfulTransitions: successful,
		FailedTransitions:     failed,
		LoopsDetected:         loops,

		KVRSupport:       in.Stats.KVR,
		ComplianceChecks: in.Result.Checks,
		Verdict:          in.Result.Verdict,

		RawStats:         in.Stats,
		WiresharkCompare: compareCounters(in.Stats, derivedSuccess, in.Transitions),

		OriginalFilePath: in.CapturePath,
	}
}

// compareCounters builds the wireshark_compare diagnostic block: every place
// where a post-processed number disagrees with the raw single-pass counter.
func compareCounters(stats domain.CaptureStats, derivedSuccess int, transitions []domain.SteeringTransition) []domain.CompareMismatch {
	var out []domain.CompareMismatch

	if stats.BTM.Accepts != derivedSuccess {
		severity := domain.CompareWarning
		note := "BTM accepts without a matching reassociation in the capture window"
		if derivedSuccess > stats.BTM.Accepts {
			note = "transitions completed without a BTM accept (spontaneous or forced roams)"
		}
		out = append(out, domain.CompareMismatch{
			Field:    "successful_transitions",
			Raw:      stats.BTM.Accepts,
			Derived:  derivedSuccess,
			Severity: severity,
			Note:     note,
		})
	}

	if stats.BTM.Responses > stats.BTM.Requests {
		out = append(out, domain.CompareMismatch{
			Field:    "btm_responses",
			Raw:      stats.BTM.Requests,
			Derived:  stats.BTM.Responses,
			Severity: domain.CompareError,
			Note:     "more BTM responses than requests; capture may be truncated at the start",
		})
	}

	bandChanges := 0
	for _, tr := range transitions {
		if tr.IsBandChange {
			bandChanges++
		}
	}
	if bandChanges > 0 && stats.Bands.Data24+stats.Bands.Data5 == 0 {
		out = append(out, domain.CompareMismatch{
			Field:    "band_change_transitions",
			Raw:      0,
			Derived:  bandChanges,
			Severity: domain.CompareWarning,
			Note:     "band changes derived from management frames only; no data frames to corroborate",
		})
	}

	if len(stats.Mismatches) > 0 {
		out = append(out, domain.CompareMismatch{
			Field:    "freq_band_map",
			Raw:      len(stats.FreqBandMap),
			Derived:  len(stats.Mismatches),
			Severity: domain.CompareWarning,
			Note:     "frames contradicting the memoized frequency-to-band mapping",
		})
	}
	return out
}
