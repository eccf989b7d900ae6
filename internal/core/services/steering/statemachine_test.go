package steering

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lcalzada-xor/steermap/internal/core/domain"
)

const (
	ap24 = "aa:aa:aa:aa:aa:01"
	ap5  = "aa:aa:aa:aa:aa:02"
)

func btmRequest(ts float64, bssid string, band domain.Band) domain.SteeringEvent {
	return domain.SteeringEvent{
		Timestamp: ts,
		Type:      domain.EventBTMRequest,
		ClientMAC: client,
		BSSID:     bssid,
		SA:        bssid,
		DA:        client,
		Band:      band,
	}
}

func deauth(ts float64, bssid string, band domain.Band, reason int) domain.SteeringEvent {
	return domain.SteeringEvent{
		Timestamp:  ts,
		Type:       domain.EventDeauth,
		ClientMAC:  client,
		BSSID:      bssid,
		SA:         bssid,
		DA:         client,
		Band:       band,
		ReasonCode: &reason,
	}
}

func reassocOK(ts float64, bssid string, band domain.Band) domain.SteeringEvent {
	zero := 0
	return domain.SteeringEvent{
		Timestamp:  ts,
		Type:       domain.EventReassocResponse,
		ClientMAC:  client,
		BSSID:      bssid,
		SA:         bssid,
		DA:         client,
		Band:       band,
		StatusCode: &zero,
	}
}

func TestAssistedTransition(t *testing.T) {
	sm := NewStateMachine(0)
	events := []domain.SteeringEvent{
		btmRequest(100.0, ap24, domain.Band24GHz),
		reassocOK(104.5, ap5, domain.Band5GHz),
	}

	trs := sm.DeriveTransitions(events, nil)
	require.Len(t, trs, 1)

	tr := trs[0]
	assert.Equal(t, domain.SteeringAssisted, tr.Kind)
	assert.Equal(t, ap24, tr.FromBSSID)
	assert.Equal(t, ap5, tr.ToBSSID)
	assert.InDelta(t, 4.5, tr.Duration, 1e-9)
	assert.True(t, tr.IsBandChange)
	assert.True(t, tr.IsSuccessful)
	assert.Nil(t, tr.ReasonCode)
}

func TestAggressiveTransition(t *testing.T) {
	sm := NewStateMachine(0)
	events := []domain.SteeringEvent{
		deauth(50.0, ap24, domain.Band24GHz, 1),
		reassocOK(52.0, ap5, domain.Band5GHz),
	}

	trs := sm.DeriveTransitions(events, nil)
	require.Len(t, trs, 1)

	tr := trs[0]
	assert.Equal(t, domain.SteeringAggressive, tr.Kind)
	require.NotNil(t, tr.ReasonCode)
	assert.Equal(t, 1, *tr.ReasonCode)
	assert.True(t, tr.IsBandChange)
}

// A forced deauth takes priority over an older BTM request when both sit in
// the reassociation window.
func TestDeauthOutranksBTM(t *testing.T) {
	sm := NewStateMachine(0)
	events := []domain.SteeringEvent{
		btmRequest(100.0, ap24, domain.Band24GHz),
		deauth(101.0, ap24, domain.Band24GHz, 5),
		reassocOK(103.0, ap5, domain.Band5GHz),
	}

	trs := sm.DeriveTransitions(events, nil)
	require.Len(t, trs, 1)
	assert.Equal(t, domain.SteeringAggressive, trs[0].Kind)
}

func TestBroadcastDeauthDoesNotArm(t *testing.T) {
	sm := NewStateMachine(0)
	events := []domain.SteeringEvent{
		{
			Timestamp: 50.0, Type: domain.EventDeauth, ClientMAC: client,
			BSSID: ap24, SA: ap24, DA: "ff:ff:ff:ff:ff:ff",
			Band: domain.Band24GHz, ReasonCode: intPtr(1),
		},
		reassocOK(52.0, ap5, domain.Band5GHz),
	}

	trs := sm.DeriveTransitions(events, nil)
	require.Len(t, trs, 1)
	assert.Equal(t, domain.SteeringUnknown, trs[0].Kind)
}

func TestGracefulDeauthDoesNotArm(t *testing.T) {
	sm := NewStateMachine(0)
	events := []domain.SteeringEvent{
		deauth(50.0, ap24, domain.Band24GHz, 3), // STA leaving
		reassocOK(52.0, ap5, domain.Band5GHz),
	}

	trs := sm.DeriveTransitions(events, nil)
	require.Len(t, trs, 1)
	assert.Equal(t, domain.SteeringUnknown, trs[0].Kind)
}

func TestWindowExpiry(t *testing.T) {
	sm := NewStateMachine(15 * time.Second)
	events := []domain.SteeringEvent{
		btmRequest(100.0, ap24, domain.Band24GHz),
		reassocOK(120.0, ap5, domain.Band5GHz), // 20 s later, outside window
	}

	trs := sm.DeriveTransitions(events, nil)
	require.Len(t, trs, 1)
	assert.Equal(t, domain.SteeringUnknown, trs[0].Kind)
	assert.Zero(t, trs[0].Duration)
}

// One BTM request can explain several reassociations inside its window; the
// request is not consumed by the first one.
func TestBTMRequestNotConsumed(t *testing.T) {
	sm := NewStateMachine(0)
	events := []domain.SteeringEvent{
		btmRequest(100.0, ap24, domain.Band24GHz),
		reassocOK(102.0, ap5, domain.Band5GHz),
		reassocOK(105.0, ap24, domain.Band24GHz),
	}

	trs := sm.DeriveTransitions(events, nil)
	require.Len(t, trs, 2)
	assert.Equal(t, domain.SteeringAssisted, trs[0].Kind)
	assert.Equal(t, domain.SteeringAssisted, trs[1].Kind)
	assert.True(t, trs[1].ReturnedToOriginal)
}

func TestDeauthConsumedAfterUse(t *testing.T) {
	sm := NewStateMachine(0)
	events := []domain.SteeringEvent{
		deauth(100.0, ap24, domain.Band24GHz, 1),
		reassocOK(102.0, ap5, domain.Band5GHz),
		reassocOK(105.0, ap24, domain.Band24GHz),
	}

	trs := sm.DeriveTransitions(events, nil)
	require.Len(t, trs, 2)
	assert.Equal(t, domain.SteeringAggressive, trs[0].Kind)
	assert.NotEqual(t, domain.SteeringAggressive, trs[1].Kind)
}

func TestSpontaneousRoamToSameBSSIDSkipped(t *testing.T) {
	sm := NewStateMachine(0)
	events := []domain.SteeringEvent{
		btmRequest(10.0, ap24, domain.Band24GHz),
		reassocOK(100.0, ap24, domain.Band24GHz), // outside window, same BSSID
	}

	trs := sm.DeriveTransitions(events, nil)
	assert.Empty(t, trs)
}

func TestFailedReassocIgnored(t *testing.T) {
	sm := NewStateMachine(0)
	seventeen := 17
	events := []domain.SteeringEvent{
		btmRequest(100.0, ap24, domain.Band24GHz),
		{
			Timestamp: 102.0, Type: domain.EventReassocResponse, ClientMAC: client,
			BSSID: ap5, SA: ap5, DA: client, Band: domain.Band5GHz,
			StatusCode: &seventeen,
		},
	}

	trs := sm.DeriveTransitions(events, nil)
	assert.Empty(t, trs)
}

func TestBSSIDsExcludedFromClients(t *testing.T) {
	sm := NewStateMachine(0)
	events := []domain.SteeringEvent{
		{
			Timestamp: 1.0, Type: domain.EventReassocResponse, ClientMAC: ap24,
			BSSID: ap5, SA: ap5, DA: ap24, Band: domain.Band5GHz,
			StatusCode: intPtr(0),
		},
	}

	trs := sm.DeriveTransitions(events, map[string]bool{ap24: true})
	assert.Empty(t, trs)
}

func TestForceBandChangesOnConsecutive(t *testing.T) {
	sm := NewStateMachine(0)
	events := []domain.SteeringEvent{
		btmRequest(10.0, ap24, domain.Band24GHz),
		reassocOK(12.0, ap5, domain.Band5GHz),
		// The second hop is tied to the same 2.4 GHz BTM request, so its
		// own endpoints are same-band; only the forcing pass marks it.
		reassocOK(14.0, ap24, domain.Band24GHz),
	}

	trs := sm.DeriveTransitions(events, nil)
	require.Len(t, trs, 2)
	assert.True(t, trs[0].IsBandChange)
	assert.True(t, trs[1].IsBandChange)
}

func TestDetectPreventive(t *testing.T) {
	tests := []struct {
		name string
		b    domain.BandCounters
		want bool
	}{
		{
			name: "all data on 5GHz while 2.4 beacons",
			b:    domain.BandCounters{Beacons24: 40, Data24: 0, Data5: 120},
			want: true,
		},
		{
			name: "share above threshold",
			b:    domain.BandCounters{Beacons24: 10, Data24: 5, Data5: 95},
			want: true,
		},
		{
			name: "share exactly at threshold is not preventive",
			b:    domain.BandCounters{Beacons24: 10, Data24: 10, Data5: 90},
			want: false,
		},
		{
			name: "no 2.4GHz beacons",
			b:    domain.BandCounters{Beacons24: 0, Data5: 200},
			want: false,
		},
		{
			name: "too little data",
			b:    domain.BandCounters{Beacons24: 40, Data5: 9},
			want: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			stats := domain.CaptureStats{Bands: tt.b}
			assert.Equal(t, tt.want, DetectPreventive(stats))
		})
	}
}
