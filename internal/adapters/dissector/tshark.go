package dissector

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os/exec"
	"strings"
	"time"

	"github.com/lcalzada-xor/steermap/internal/core/domain"
)

// execCmd allows mocking exec.CommandContext in tests.
var execCmd = exec.CommandContext

const stderrPrefixLen = 200

// TShark streams normalized frame records out of a capture by driving an
// external tshark-compatible dissector binary. The capture is never buffered
// in memory; records flow to the consumer one line at a time.
type TShark struct {
	binary  string
	timeout time.Duration
}

// NewTShark builds an adapter around the given dissector binary.
func NewTShark(binary string, timeout time.Duration) *TShark {
	if binary == "" {
		binary = "tshark"
	}
	if timeout < 300*time.Second {
		timeout = 300 * time.Second
	}
	return &TShark{binary: binary, timeout: timeout}
}

// HealthCheck verifies the dissector binary is reachable on PATH.
func (t *TShark) HealthCheck() error {
	if _, err := exec.LookPath(t.binary); err != nil {
		return fmt.Errorf("%s not found (install wireshark/tshark): %w", t.binary, domain.ErrDissectorUnavailable)
	}
	return nil
}

// Stream implements ports.FrameSource. Emit errors stop the subprocess and
// propagate unchanged.
func (t *TShark) Stream(ctx context.Context, path string, emit func(domain.FrameRecord) error) error {
	if err := t.HealthCheck(); err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(ctx, t.timeout)
	defer cancel()

	cmd := execCmd(ctx, t.binary, t.args(path)...)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return fmt.Errorf("attaching to dissector output: %w", domain.ErrDissectorFailed)
	}
	if err := cmd.Start(); err != nil {
		return fmt.Errorf("starting %s: %v: %w", t.binary, err, domain.ErrDissectorFailed)
	}

	scanner := bufio.NewScanner(stdout)
	scanner.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)

	var emitErr error
	var lines, usable int
	for scanner.Scan() {
		lines++
		rec, ok := ParseLine(scanner.Text())
		if !ok {
			continue
		}
		usable++
		if emitErr = emit(rec); emitErr != nil {
			break
		}
	}

	if emitErr != nil {
		// Consumer aborted; discard the remaining stream.
		_ = cmd.Process.Kill()
		_ = cmd.Wait()
		return emitErr
	}

	waitErr := cmd.Wait()
	switch {
	case errors.Is(ctx.Err(), context.DeadlineExceeded):
		return fmt.Errorf("%s exceeded %s: %w", t.binary, t.timeout, domain.ErrDissectorTimeout)
	case errors.Is(ctx.Err(), context.Canceled):
		// Interrupted by the caller, not a dissector fault.
		return ctx.Err()
	}
	if waitErr != nil {
		return fmt.Errorf("%s: %s: %w", t.binary, stderrPrefix(stderr.String()), domain.ErrDissectorFailed)
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("reading dissector output: %v: %w", err, domain.ErrDissectorFailed)
	}

	slog.Debug("dissection finished", "path", path, "lines", lines, "records", usable)
	return nil
}

func (t *TShark) args(path string) []string {
	args := []string{
		"-r", path,
		"-Y", "wlan",
		"-T", "fields",
		"-E", "separator=/t",
		"-E", "occurrence=f",
	}
	for _, f := range tsharkFields {
		args = append(args, "-e", f)
	}
	return args
}

func stderrPrefix(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return "no diagnostic output"
	}
	if len(s) > stderrPrefixLen {
		s = s[:stderrPrefixLen]
	}
	return s
}
