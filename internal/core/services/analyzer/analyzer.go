package analyzer

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/lcalzada-xor/steermap/internal/config"
	"github.com/lcalzada-xor/steermap/internal/core/domain"
	"github.com/lcalzada-xor/steermap/internal/core/ports"
	"github.com/lcalzada-xor/steermap/internal/core/services/compliance"
	"github.com/lcalzada-xor/steermap/internal/core/services/steering"
	"github.com/lcalzada-xor/steermap/internal/telemetry"
)

// Analyzer orchestrates one full capture audit: validation, dissection,
// aggregation, client election, transition derivation, compliance evaluation
// and artifact assembly. One Analyzer is safe for concurrent use; every run
// owns its per-capture state.
type Analyzer struct {
	source     ports.FrameSource
	validator  ports.CaptureValidator
	classifier ports.DeviceClassifier
	narrator   ports.NarrativeGenerator

	cfg    config.AnalysisConfig
	llmTTL time.Duration
	log    *slog.Logger
	tracer trace.Tracer
}

// Option customizes an Analyzer.
type Option func(*Analyzer)

// WithNarrator attaches a best-effort narrative generator.
func WithNarrator(n ports.NarrativeGenerator, timeout time.Duration) Option {
	return func(a *Analyzer) {
		a.narrator = n
		if timeout > 0 {
			a.llmTTL = timeout
		}
	}
}

// New builds an Analyzer from its collaborators.
func New(source ports.FrameSource, validator ports.CaptureValidator, classifier ports.DeviceClassifier, cfg config.AnalysisConfig, log *slog.Logger, opts ...Option) *Analyzer {
	if log == nil {
		log = slog.Default()
	}
	a := &Analyzer{
		source:     source,
		validator:  validator,
		classifier: classifier,
		cfg:        cfg,
		llmTTL:     30 * time.Second,
		log:        log,
		tracer:     otel.Tracer("steermap/analyzer"),
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Analyze runs the full pipeline over one capture file. Dissector errors
// abort the run; everything downstream degrades instead of failing.
func (a *Analyzer) Analyze(ctx context.Context, capturePath string, hints domain.UserHints) (*domain.BandSteeringAnalysis, error) {
	started := time.Now()

	ctx, span := a.tracer.Start(ctx, "analyze",
		trace.WithAttributes(attribute.String("capture.path", capturePath)))
	defer span.End()

	absPath, err := filepath.Abs(capturePath)
	if err != nil {
		return nil, fmt.Errorf("%w: resolving capture path: %v", domain.ErrInvalidInput, err)
	}

	totalPackets, err := a.validator.Validate(absPath)
	if err != nil {
		return nil, err
	}

	agg := steering.NewAggregator(a.cfg.BeaconQuota)
	err = a.source.Stream(ctx, absPath, func(rec domain.FrameRecord) error {
		agg.Ingest(rec)
		telemetry.FramesProcessed.Inc()
		return nil
	})
	if err != nil {
		a.countDissectorFailure(err)
		return nil, err
	}

	sel := steering.SelectPrimaryClient(agg.Evidence(), agg.BSSIDSet(), hints.ClientMAC)
	for _, w := range sel.Warnings {
		a.log.Warn("client selection", "capture", filepath.Base(absPath), "warning", w)
		agg.AddWarning(w)
	}

	sm := steering.NewStateMachine(a.cfg.ReassocWindow)
	transitions := sm.DeriveTransitions(agg.Events(), agg.BSSIDSet())

	stats := agg.Stats(totalPackets)
	if stats.WLANPackets == 0 {
		return nil, fmt.Errorf("%w: capture contains no 802.11 frames", domain.ErrInvalidCapture)
	}
	preventive := steering.DetectPreventive(stats)
	stats.SteeringPattern = steeringPattern(transitions, preventive)

	result := compliance.Evaluate(compliance.Input{
		Stats:       stats,
		Transitions: transitions,
		Events:      agg.Events(),
		ClientMAC:   sel.MAC,
		Preventive:  preventive,
	})

	device := a.classifier.Classify(sel.MAC, hints, filepath.Base(absPath))
	samples := agg.ClientSamples(sel.MAC, a.cfg.SignalSampleLimit)

	analysis := assemble(assembleInput{
		CapturePath: absPath,
		Started:     started,
		Stats:       stats,
		Device:      device,
		BTMEvents:   agg.BTMEvents(),
		Transitions: transitions,
		Samples:     samples,
		Result:      result,
		Preventive:  preventive,
	})

	a.narrate(ctx, analysis)

	analysis.AnalysisDurationMS = time.Since(started).Milliseconds()
	telemetry.AnalysesTotal.WithLabelValues(string(analysis.Verdict)).Inc()
	telemetry.AnalysisDuration.Observe(time.Since(started).Seconds())

	a.log.Info("analysis complete",
		"analysis_id", analysis.AnalysisID,
		"capture", analysis.Filename,
		"client", sel.MAC,
		"verdict", analysis.Verdict,
		"transitions", len(transitions),
		"duration_ms", analysis.AnalysisDurationMS,
	)
	return analysis, nil
}

// narrate fills analysis_text best-effort. Failures leave the field empty
// and never touch the verdict.
func (a *Analyzer) narrate(ctx context.Context, analysis *domain.BandSteeringAnalysis) {
	if a.narrator == nil {
		return
	}
	nctx, cancel := context.WithTimeout(ctx, a.llmTTL)
	defer cancel()

	text, err := a.narrator.Narrate(nctx, analysis)
	if err != nil {
		telemetry.NarrativeFailures.Inc()
		a.log.Warn("narrative generation failed", "analysis_id", analysis.AnalysisID, "error", err)
		return
	}
	analysis.AnalysisText = text
}

func (a *Analyzer) countDissectorFailure(err error) {
	switch {
	case errors.Is(err, domain.ErrDissectorUnavailable):
		telemetry.DissectorFailures.WithLabelValues("unavailable").Inc()
	case errors.Is(err, domain.ErrDissectorTimeout):
		telemetry.DissectorFailures.WithLabelValues("timeout").Inc()
	case errors.Is(err, domain.ErrDissectorFailed):
		telemetry.DissectorFailures.WithLabelValues("exit").Inc()
	}
}

// steeringPattern summarizes the dominant steering kind for the raw stats
// block: preventive wins, then the most frequent transition kind.
func steeringPattern(transitions []domain.SteeringTransition, preventive bool) domain.SteeringKind {
	if preventive {
		return domain.SteeringPreventive
	}
	counts := make(map[domain.SteeringKind]int)
	for _, tr := range transitions {
		counts[tr.Kind]++
	}
	var best domain.SteeringKind
	for _, kind := range []domain.SteeringKind{domain.SteeringAssisted, domain.SteeringAggressive, domain.SteeringUnknown} {
		if counts[kind] > counts[best] {
			best = kind
		}
	}
	return best
}
