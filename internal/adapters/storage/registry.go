package storage

import (
	"sort"

	"github.com/lcalzada-xor/steermap/internal/core/domain"
	"github.com/lcalzada-xor/steermap/internal/core/ports"
)

// maxSampleGapSeconds breaks a same-band interval when consecutive signal
// samples are further apart than this.
const maxSampleGapSeconds = 5.0

// successVerdicts are the verdict values counted as successful in aggregate
// statistics. EXCELLENT and GOOD appear in artifacts written by older
// engine versions.
var successVerdicts = map[domain.Verdict]bool{
	domain.VerdictSuccess: true,
	"EXCELLENT":           true,
	"GOOD":                true,
}

// Registry answers aggregate queries over the persisted analysis tree.
type Registry struct {
	store ports.AnalysisStore
}

// NewRegistry wraps an analysis store.
func NewRegistry(store ports.AnalysisStore) *Registry {
	return &Registry{store: store}
}

// Stats computes the aggregate view of every persisted analysis.
func (r *Registry) Stats() (domain.RegistryStats, error) {
	summaries, err := r.store.List()
	if err != nil {
		return domain.RegistryStats{}, err
	}

	stats := domain.RegistryStats{
		Count:    len(summaries),
		Verdicts: make(map[domain.Verdict]int),
	}
	vendors := make(map[string]int)
	successes := 0

	for _, s := range summaries {
		stats.Verdicts[s.Verdict]++
		if successVerdicts[s.Verdict] {
			successes++
		}
		vendor := s.Vendor
		if vendor == "" {
			vendor = "unknown"
		}
		vendors[vendor]++
		if s.AnalysisTimestamp.After(stats.LatestCaptureTime) {
			stats.LatestCaptureTime = s.AnalysisTimestamp
		}
	}

	if stats.Count > 0 {
		stats.SuccessRate = float64(successes) / float64(stats.Count)
	}
	stats.TopVendors = topVendors(vendors, 10)
	return stats, nil
}

func topVendors(counts map[string]int, n int) []domain.CountEntry {
	entries := make([]domain.CountEntry, 0, len(counts))
	for name, count := range counts {
		entries = append(entries, domain.CountEntry{Name: name, Count: count})
	}
	sort.Slice(entries, func(i, j int) bool {
		if entries[i].Count != entries[j].Count {
			return entries[i].Count > entries[j].Count
		}
		return entries[i].Name < entries[j].Name
	})
	if len(entries) > n {
		entries = entries[:n]
	}
	return entries
}

// bandInterval is one run of consecutive same-band signal samples.
type bandInterval struct {
	band       domain.Band
	start, end float64
}

// BandTime computes per-band dwell time for one analysis. Signal samples are
// the source of truth; transition windows are subtracted so steering time is
// not double-counted, and the result is scaled down when it overshoots the
// capture's real span by more than 10%.
func BandTime(analysis *domain.BandSteeringAnalysis) domain.BandTimeReport {
	report := domain.BandTimeReport{TransitionTimes: []float64{}}
	for _, tr := range analysis.Transitions {
		if tr.Duration > 0 {
			report.TransitionTimes = append(report.TransitionTimes, tr.Duration)
		}
	}

	samples := make([]domain.SignalSample, len(analysis.SignalSamples))
	copy(samples, analysis.SignalSamples)
	sort.SliceStable(samples, func(i, j int) bool { return samples[i].Timestamp < samples[j].Timestamp })

	intervals := groupIntervals(samples)
	for _, iv := range intervals {
		dur := iv.end - iv.start
		dur -= transitionOverlap(iv, analysis.Transitions)
		if dur <= 0 {
			continue
		}
		switch iv.band {
		case domain.Band24GHz:
			report.Time24GHz += dur
		case domain.Band5GHz:
			report.Time5GHz += dur
		}
	}

	scaleToSpan(&report, samples)
	return report
}

func groupIntervals(samples []domain.SignalSample) []bandInterval {
	var intervals []bandInterval
	for _, s := range samples {
		if !s.Band.Known() {
			continue
		}
		n := len(intervals)
		if n > 0 && intervals[n-1].band == s.Band && s.Timestamp-intervals[n-1].end <= maxSampleGapSeconds {
			intervals[n-1].end = s.Timestamp
			continue
		}
		intervals = append(intervals, bandInterval{band: s.Band, start: s.Timestamp, end: s.Timestamp})
	}
	return intervals
}

// transitionOverlap returns how much of the interval falls inside any
// transition window.
func transitionOverlap(iv bandInterval, transitions []domain.SteeringTransition) float64 {
	overlap := 0.0
	for _, tr := range transitions {
		if tr.Duration <= 0 {
			continue
		}
		lo, hi := max(iv.start, tr.StartTime), min(iv.end, tr.EndTime)
		if hi > lo {
			overlap += hi - lo
		}
	}
	return overlap
}

// scaleToSpan shrinks band times proportionally when band + transition time
// exceeds the observed sample span by more than 10%.
func scaleToSpan(report *domain.BandTimeReport, samples []domain.SignalSample) {
	if len(samples) < 2 {
		return
	}
	span := samples[len(samples)-1].Timestamp - samples[0].Timestamp
	if span <= 0 {
		return
	}
	transTotal := 0.0
	for _, d := range report.TransitionTimes {
		transTotal += d
	}
	bandTotal := report.Time24GHz + report.Time5GHz
	if bandTotal+transTotal <= span*1.10 || bandTotal == 0 {
		return
	}
	budget := span - transTotal
	if budget < 0 {
		budget = 0
	}
	factor := budget / bandTotal
	report.Time24GHz *= factor
	report.Time5GHz *= factor
}
