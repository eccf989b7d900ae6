package analyzer

import (
	"context"
	"errors"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lcalzada-xor/steermap/internal/config"
	"github.com/lcalzada-xor/steermap/internal/core/domain"
)

const (
	clientMAC = "11:22:33:44:55:66"
	ap5GHz    = "aa:aa:aa:aa:aa:aa"
	ap24GHz   = "bb:bb:bb:bb:bb:bb"
)

type fakeSource struct {
	frames []domain.FrameRecord
	err    error
}

func (f *fakeSource) Stream(_ context.Context, _ string, emit func(domain.FrameRecord) error) error {
	if f.err != nil {
		return f.err
	}
	for _, rec := range f.frames {
		if err := emit(rec); err != nil {
			return err
		}
	}
	return nil
}

type fakeValidator struct {
	total int
	err   error
}

func (f *fakeValidator) Validate(string) (int, error) { return f.total, f.err }

type fakeClassifier struct{}

func (fakeClassifier) Classify(mac string, hints domain.UserHints, _ string) domain.DeviceInfo {
	info := domain.DeviceInfo{MAC: mac, Vendor: "TestVendor", Confidence: 0.7}
	if hints.DeviceBrand != "" {
		info.Vendor = hints.DeviceBrand
		info.Confidence = 1.0
	}
	return info
}

type fakeNarrator struct {
	text string
	err  error
}

func (f *fakeNarrator) Narrate(context.Context, *domain.BandSteeringAnalysis) (string, error) {
	return f.text, f.err
}

func testConfig() config.AnalysisConfig {
	return config.AnalysisConfig{
		Workers:           2,
		SignalSampleLimit: 500,
		BeaconQuota:       3,
		ReassocWindow:     15 * time.Second,
	}
}

func intPtr(v int) *int { return &v }

func beacon(ts float64, bssid string, freq int) domain.FrameRecord {
	return domain.FrameRecord{
		Timestamp: ts, Subtype: domain.SubtypeBeacon,
		BSSID: bssid, SA: bssid, DA: "ff:ff:ff:ff:ff:ff",
		Frequency: freq, SSID: "lab",
	}
}

// Frames of a clean assisted steering session: the 5 GHz radio asks the
// client to move, the client accepts and reassociates on 2.4 GHz.
func assistedSteeringFrames() []domain.FrameRecord {
	cat, reqAct, respAct, ok := domain.CategoryWNM, domain.ActionBTMRequest, domain.ActionBTMResponse, 0
	return []domain.FrameRecord{
		beacon(0.1, ap5GHz, 5180),
		beacon(0.2, ap24GHz, 2442),
		{
			Timestamp: 1.0, Subtype: domain.SubtypeAction,
			BSSID: ap5GHz, SA: ap5GHz, DA: clientMAC, Frequency: 5180,
			CategoryCode: &cat, ActionCode: &reqAct,
		},
		{
			Timestamp: 1.2, Subtype: domain.SubtypeAction,
			BSSID: ap5GHz, SA: clientMAC, DA: ap5GHz, Frequency: 5180,
			CategoryCode: &cat, ActionCode: &respAct, BTMStatusCode: &ok,
		},
		{
			Timestamp: 1.4, Subtype: domain.SubtypeReassocResponse,
			BSSID: ap24GHz, SA: ap24GHz, DA: clientMAC, Frequency: 2442,
			StatusCode: &ok,
		},
	}
}

func TestAnalyzeAssistedSteering(t *testing.T) {
	a := New(
		&fakeSource{frames: assistedSteeringFrames()},
		&fakeValidator{total: 10},
		fakeClassifier{},
		testConfig(),
		slog.Default(),
	)

	analysis, err := a.Analyze(context.Background(), "capture.pcap", domain.UserHints{})
	require.NoError(t, err)

	assert.NotEmpty(t, analysis.AnalysisID)
	assert.Equal(t, "capture.pcap", analysis.Filename)
	assert.Equal(t, 10, analysis.TotalPackets)
	assert.Equal(t, 5, analysis.WLANPackets)
	assert.Equal(t, 1, analysis.BTMRequests)
	assert.Equal(t, 1, analysis.BTMResponses)
	assert.InDelta(t, 1.0, analysis.BTMSuccessRate, 1e-9)

	require.Len(t, analysis.Transitions, 1)
	tr := analysis.Transitions[0]
	assert.Equal(t, domain.SteeringAssisted, tr.Kind)
	assert.Equal(t, clientMAC, tr.ClientMAC)
	assert.Equal(t, domain.Band5GHz, tr.FromBand)
	assert.Equal(t, domain.Band24GHz, tr.ToBand)
	assert.True(t, tr.IsBandChange)
	assert.InDelta(t, 0.4, tr.Duration, 1e-9)

	assert.Equal(t, 1, analysis.SuccessfulTransitions)
	assert.Equal(t, domain.VerdictSuccess, analysis.Verdict)
	require.Len(t, analysis.Devices, 1)
	assert.Equal(t, clientMAC, analysis.Devices[0].MAC)
	require.Len(t, analysis.ComplianceChecks, 4)
}

func TestAnalyzeAggressiveSteering(t *testing.T) {
	reason, ok := 5, 0
	frames := []domain.FrameRecord{
		beacon(0.1, ap5GHz, 5180),
		beacon(0.2, ap24GHz, 2442),
		{
			Timestamp: 10.0, Subtype: domain.SubtypeDeauth,
			BSSID: ap5GHz, SA: ap5GHz, DA: clientMAC, Frequency: 5180,
			ReasonCode: &reason,
		},
		{
			Timestamp: 10.3, Subtype: domain.SubtypeReassocResponse,
			BSSID: ap24GHz, SA: ap24GHz, DA: clientMAC, Frequency: 2442,
			StatusCode: &ok,
		},
	}

	a := New(&fakeSource{frames: frames}, &fakeValidator{total: 4}, fakeClassifier{}, testConfig(), slog.Default())
	analysis, err := a.Analyze(context.Background(), "capture.pcap", domain.UserHints{})
	require.NoError(t, err)

	require.Len(t, analysis.Transitions, 1)
	assert.Equal(t, domain.SteeringAggressive, analysis.Transitions[0].Kind)
	assert.InDelta(t, 0.3, analysis.Transitions[0].Duration, 1e-9)
	assert.Equal(t, domain.VerdictFailed, analysis.Verdict)
}

// A capture that is all 5 GHz data while 2.4 GHz beacons: preventive
// steering, SUCCESS without a single BTM or association frame.
func TestAnalyzePreventiveSteering(t *testing.T) {
	var frames []domain.FrameRecord
	for i := 0; i < 120; i++ {
		frames = append(frames, beacon(float64(i)*0.5, ap24GHz, 2442))
		frames = append(frames, beacon(float64(i)*0.5+0.1, ap5GHz, 5180))
	}
	rssi := -52
	for i := 0; i < 97; i++ {
		frames = append(frames, domain.FrameRecord{
			Timestamp: float64(i) * 0.6, Subtype: domain.SubtypeQoSData,
			SA: clientMAC, DA: ap5GHz, Frequency: 5180, RSSI: &rssi,
		})
	}
	for i := 0; i < 3; i++ {
		frames = append(frames, domain.FrameRecord{
			Timestamp: float64(i) * 0.7, Subtype: domain.SubtypeQoSData,
			SA: clientMAC, DA: ap24GHz, Frequency: 2442, RSSI: &rssi,
		})
	}

	a := New(&fakeSource{frames: frames}, &fakeValidator{total: len(frames)}, fakeClassifier{}, testConfig(), slog.Default())
	analysis, err := a.Analyze(context.Background(), "capture.pcap", domain.UserHints{})
	require.NoError(t, err)

	assert.Empty(t, analysis.Transitions)
	assert.Equal(t, domain.SteeringPreventive, analysis.RawStats.SteeringPattern)
	assert.Equal(t, domain.VerdictSuccess, analysis.Verdict)
}

func TestAnalyzeEmptyCapture(t *testing.T) {
	a := New(&fakeSource{}, &fakeValidator{total: 50}, fakeClassifier{}, testConfig(), slog.Default())
	_, err := a.Analyze(context.Background(), "capture.pcap", domain.UserHints{})
	assert.ErrorIs(t, err, domain.ErrInvalidCapture)
}

func TestAnalyzeDissectorErrorAborts(t *testing.T) {
	a := New(
		&fakeSource{err: domain.ErrDissectorUnavailable},
		&fakeValidator{total: 10},
		fakeClassifier{},
		testConfig(),
		slog.Default(),
	)
	_, err := a.Analyze(context.Background(), "capture.pcap", domain.UserHints{})
	assert.ErrorIs(t, err, domain.ErrDissectorUnavailable)
}

func TestAnalyzeValidatorErrorAborts(t *testing.T) {
	a := New(&fakeSource{}, &fakeValidator{err: domain.ErrInvalidCapture}, fakeClassifier{}, testConfig(), slog.Default())
	_, err := a.Analyze(context.Background(), "bad.pcap", domain.UserHints{})
	assert.ErrorIs(t, err, domain.ErrInvalidCapture)
}

func TestNarrativeBestEffort(t *testing.T) {
	t.Run("narrative attached on success", func(t *testing.T) {
		a := New(
			&fakeSource{frames: assistedSteeringFrames()},
			&fakeValidator{total: 5},
			fakeClassifier{},
			testConfig(),
			slog.Default(),
			WithNarrator(&fakeNarrator{text: "the client moved to 2.4 GHz on request"}, time.Second),
		)
		analysis, err := a.Analyze(context.Background(), "capture.pcap", domain.UserHints{})
		require.NoError(t, err)
		assert.Equal(t, "the client moved to 2.4 GHz on request", analysis.AnalysisText)
	})

	t.Run("narrative failure leaves text empty and verdict intact", func(t *testing.T) {
		a := New(
			&fakeSource{frames: assistedSteeringFrames()},
			&fakeValidator{total: 5},
			fakeClassifier{},
			testConfig(),
			slog.Default(),
			WithNarrator(&fakeNarrator{err: errors.New("model overloaded")}, time.Second),
		)
		analysis, err := a.Analyze(context.Background(), "capture.pcap", domain.UserHints{})
		require.NoError(t, err)
		assert.Empty(t, analysis.AnalysisText)
		assert.Equal(t, domain.VerdictSuccess, analysis.Verdict)
	})
}

func TestClientHintFlowsThrough(t *testing.T) {
	a := New(
		&fakeSource{frames: assistedSteeringFrames()},
		&fakeValidator{total: 5},
		fakeClassifier{},
		testConfig(),
		slog.Default(),
	)
	hints := domain.UserHints{ClientMAC: clientMAC, DeviceBrand: "Apple"}
	analysis, err := a.Analyze(context.Background(), "capture.pcap", hints)
	require.NoError(t, err)
	require.Len(t, analysis.Devices, 1)
	assert.Equal(t, "Apple", analysis.Devices[0].Vendor)
	assert.InDelta(t, 1.0, analysis.Devices[0].Confidence, 1e-9)
}
