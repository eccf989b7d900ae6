package llm

import (
	"context"

	"github.com/lcalzada-xor/steermap/internal/core/domain"
)

// NoopNarrator satisfies the narrative port without calling anything. Used
// when no API key is configured.
type NoopNarrator struct{}

// Narrate always returns an empty report.
func (NoopNarrator) Narrate(context.Context, *domain.BandSteeringAnalysis) (string, error) {
	return "", nil
}
