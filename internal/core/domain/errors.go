package domain

import "errors"

// Engine error kinds. Adapters wrap these with fmt.Errorf("...: %w", ...) so
// callers can branch with errors.Is while keeping the local context.
var (
	// ErrDissectorUnavailable means the external dissector binary is not on PATH.
	ErrDissectorUnavailable = errors.New("dissector binary not available")
	// ErrDissectorFailed means the dissector exited non-zero.
	ErrDissectorFailed = errors.New("dissector failed")
	// ErrDissectorTimeout means the dissector exceeded its hard deadline.
	ErrDissectorTimeout = errors.New("dissector timed out")
	// ErrInvalidCapture means the file holds no 802.11 frames at all.
	ErrInvalidCapture = errors.New("invalid capture: no 802.11 frames")
	// ErrInvalidInput means user-supplied metadata failed validation.
	ErrInvalidInput = errors.New("invalid input")
	// ErrPersistence wraps analysis tree I/O failures.
	ErrPersistence = errors.New("persistence failure")
	// ErrNarrativeUnavailable marks a failed LLM narrative call. Non-fatal:
	// the artifact is still written with an empty analysis_text.
	ErrNarrativeUnavailable = errors.New("narrative generator unavailable")
	// ErrAnalysisNotFound is returned by registry lookups for unknown ids.
	ErrAnalysisNotFound = errors.New("analysis not found")
)
