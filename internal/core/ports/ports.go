package ports

import (
	"context"

	"github.com/lcalzada-xor/steermap/internal/core/domain"
)

// FrameSource streams normalized 802.11 frame records out of a capture file.
// Implementations must not buffer the whole capture; records are delivered in
// file order through emit. Returning a non-nil error from emit stops the
// stream and propagates the error.
type FrameSource interface {
	Stream(ctx context.Context, path string, emit func(domain.FrameRecord) error) error
}

// CaptureValidator inspects a capture file before dissection.
type CaptureValidator interface {
	// Validate returns the total packet count and fails with
	// domain.ErrInvalidCapture when the file is not an 802.11 capture.
	Validate(path string) (int, error)
}

// DeviceClassifier resolves vendor/model/category for a MAC address.
type DeviceClassifier interface {
	Classify(mac string, hints domain.UserHints, filename string) domain.DeviceInfo
}

// AnalysisStore persists and retrieves analysis artifacts.
type AnalysisStore interface {
	Save(analysis *domain.BandSteeringAnalysis, capturePath string) (string, error)
	Load(analysisID string) (*domain.BandSteeringAnalysis, error)
	List() ([]domain.AnalysisSummary, error)
	Delete(analysisID string) error
	DeleteByVendor(vendor string) (int, error)
	DeleteBatch(analysisIDs []string) (int, error)
	DeleteAll() (int, error)
}

// NarrativeGenerator produces the natural-language technical report for a
// finished analysis. It is best-effort: implementations must respect ctx and
// return an error rather than block; callers leave analysis_text empty on
// failure and never let the result influence the verdict.
type NarrativeGenerator interface {
	Narrate(ctx context.Context, analysis *domain.BandSteeringAnalysis) (string, error)
}
