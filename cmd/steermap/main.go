package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/lcalzada-xor/steermap/internal/core/domain"
)

// CLI exit codes.
const (
	exitOK           = 0
	exitInvalidInput = 2
	exitDissector    = 3
	exitIO           = 4
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		printRemediation(err)
		os.Exit(exitCode(err))
	}
}

func exitCode(err error) int {
	switch {
	case errors.Is(err, domain.ErrInvalidInput),
		errors.Is(err, domain.ErrInvalidCapture),
		errors.Is(err, domain.ErrAnalysisNotFound):
		return exitInvalidInput
	case errors.Is(err, domain.ErrDissectorUnavailable),
		errors.Is(err, domain.ErrDissectorTimeout),
		errors.Is(err, domain.ErrDissectorFailed):
		return exitDissector
	case errors.Is(err, domain.ErrPersistence):
		return exitIO
	default:
		return exitInvalidInput
	}
}

// printRemediation gives the one-line hint the error calls for.
func printRemediation(err error) {
	fmt.Fprintln(os.Stderr, "error:", err)
	switch {
	case errors.Is(err, domain.ErrDissectorUnavailable):
		fmt.Fprintln(os.Stderr, "hint: install the dissector binary (tshark) and make sure it is on PATH")
	case errors.Is(err, domain.ErrDissectorTimeout):
		fmt.Fprintln(os.Stderr, "hint: the capture is too large for the configured timeout; raise dissector.timeout")
	case errors.Is(err, domain.ErrInvalidCapture):
		fmt.Fprintln(os.Stderr, "hint: the file must be a pcap/pcapng capture containing 802.11 frames")
	case errors.Is(err, domain.ErrAnalysisNotFound):
		fmt.Fprintln(os.Stderr, "hint: run 'steermap list' to see the stored analysis IDs")
	}
}

func setupLogging(debug bool) *slog.Logger {
	level := slog.LevelInfo
	if debug {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)
	return logger
}
