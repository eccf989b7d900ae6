package steering

import (
	"sort"
	"time"

	"github.com/lcalzada-xor/steermap/internal/core/domain"
)

// ReassocTimeoutSeconds is the window tying a reassociation back to the
// deauth or BTM request that caused it.
const ReassocTimeoutSeconds = 15.0

// StateMachine reconstructs steering transitions from the ordered event
// stream. It never mutates the events it reads; transitions are a new
// collection.
type StateMachine struct {
	window float64 // seconds
}

// NewStateMachine builds a state machine with the given reassociation
// window (≤0 falls back to 15 s).
func NewStateMachine(window time.Duration) *StateMachine {
	w := window.Seconds()
	if w <= 0 {
		w = ReassocTimeoutSeconds
	}
	return &StateMachine{window: w}
}

// clientState is the per-client sweep state.
type clientState struct {
	lastBTMReq   *domain.SteeringEvent
	lastDeauth   *domain.SteeringEvent
	currentBSSID string
	currentBand  domain.Band
	// bssid the client sat on before the previous transition; a new
	// transition back onto it is a loop.
	previousBSSID string
	transitions   []domain.SteeringTransition
}

// DeriveTransitions groups events per client (BSSIDs are never clients) and
// runs the classification sweep.
func (m *StateMachine) DeriveTransitions(events []domain.SteeringEvent, bssids map[string]bool) []domain.SteeringTransition {
	perClient := make(map[string][]domain.SteeringEvent)
	var order []string
	for _, ev := range events {
		client := ev.ClientMAC
		if client == "" || bssids[client] || IsBroadcast(client) {
			continue
		}
		if _, seen := perClient[client]; !seen {
			order = append(order, client)
		}
		perClient[client] = append(perClient[client], ev)
	}

	var out []domain.SteeringTransition
	for _, client := range order {
		evs := perClient[client]
		sort.SliceStable(evs, func(i, j int) bool { return evs[i].Timestamp < evs[j].Timestamp })
		out = append(out, m.sweep(client, evs)...)
	}
	return out
}

func (m *StateMachine) sweep(client string, events []domain.SteeringEvent) []domain.SteeringTransition {
	st := &clientState{currentBand: domain.BandUnknown}

	for i := range events {
		ev := events[i]
		switch ev.Type {
		case domain.EventBTMRequest:
			// Not consumed on use: one request can cover several
			// reassociations while the client probes candidates.
			st.lastBTMReq = &events[i]
			if st.currentBSSID == "" && ev.BSSID != "" {
				st.currentBSSID = ev.BSSID
				st.currentBand = ev.Band
			}
		case domain.EventDeauth, domain.EventDisassoc:
			if ClassifyDeauth(ev, client) == domain.DeauthForcedToClient {
				st.lastDeauth = &events[i]
			}
		case domain.EventAssocResponse, domain.EventReassocResponse:
			if ev.StatusCode == nil || *ev.StatusCode != 0 {
				continue
			}
			m.emit(st, client, ev)
		}
	}

	forceBandChanges(st.transitions)
	return st.transitions
}

// emit classifies one successful (re)association into a transition.
// Priority: recent forced deauth → aggressive; recent BTM request →
// assisted; otherwise a spontaneous roam.
func (m *StateMachine) emit(st *clientState, client string, reassoc domain.SteeringEvent) {
	var (
		kind   domain.SteeringKind
		start  *domain.SteeringEvent
		reason *int
	)

	switch {
	case st.lastDeauth != nil && reassoc.Timestamp-st.lastDeauth.Timestamp < m.window:
		kind = domain.SteeringAggressive
		start = st.lastDeauth
		reason = st.lastDeauth.ReasonCode
	case st.lastBTMReq != nil && reassoc.Timestamp-st.lastBTMReq.Timestamp < m.window:
		kind = domain.SteeringAssisted
		start = st.lastBTMReq
	default:
		kind = domain.SteeringUnknown
	}

	tr := domain.SteeringTransition{
		ClientMAC:    client,
		Kind:         kind,
		EndTime:      reassoc.Timestamp,
		ToBSSID:      reassoc.BSSID,
		ToBand:       reassoc.Band,
		IsSuccessful: true,
		ReasonCode:   reason,
	}
	if start != nil {
		tr.StartTime = start.Timestamp
		tr.FromBSSID = start.BSSID
		tr.FromBand = start.Band
	} else {
		tr.StartTime = reassoc.Timestamp
		tr.FromBSSID = st.currentBSSID
		tr.FromBand = st.currentBand
	}
	tr.Duration = tr.EndTime - tr.StartTime
	if tr.Duration < 0 {
		tr.Duration = 0
	}
	tr.IsBandChange = tr.FromBand.Known() && tr.ToBand.Known() && tr.FromBand != tr.ToBand

	// A spontaneous "roam" that lands on the BSSID the client already sat
	// on is not a movement at all.
	if kind == domain.SteeringUnknown && tr.FromBSSID != "" && tr.FromBSSID == tr.ToBSSID {
		st.lastDeauth = nil
		return
	}

	tr.ReturnedToOriginal = st.previousBSSID != "" && tr.ToBSSID == st.previousBSSID

	st.transitions = append(st.transitions, tr)
	st.previousBSSID = st.currentBSSID
	st.currentBSSID = tr.ToBSSID
	if tr.ToBand.Known() {
		st.currentBand = tr.ToBand
	}
	// The deauth is spent; the BTM request stays valid inside its window.
	st.lastDeauth = nil
}

// forceBandChanges marks the later of two consecutive transitions on
// different bands as a band change, so physical movement is counted even
// when a single transition's own endpoints did not show it.
func forceBandChanges(transitions []domain.SteeringTransition) {
	for i := 1; i < len(transitions); i++ {
		prev, cur := transitions[i-1], transitions[i]
		if prev.ToBand.Known() && cur.ToBand.Known() && prev.ToBand != cur.ToBand {
			transitions[i].IsBandChange = true
		}
	}
}

// DetectPreventive reports whether the capture shows preventive steering:
// the 2.4 GHz radio is beaconing, yet essentially all data rides on 5 GHz.
func DetectPreventive(stats domain.CaptureStats) bool {
	total := stats.Bands.Data24 + stats.Bands.Data5
	if stats.Bands.Beacons24 == 0 || total < 10 {
		return false
	}
	return float64(stats.Bands.Data5)/float64(total) > 0.90
}
