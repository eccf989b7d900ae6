package steering

import (
	"sort"
	"strings"

	"github.com/lcalzada-xor/steermap/internal/core/domain"
)

const topListSize = 10

// Aggregator performs the single pass over the dissector record stream. It
// owns every raw counter; downstream stages refine but never contradict what
// is collected here.
type Aggregator struct {
	beaconQuota int

	wlanPackets int

	protoCounts map[string]int
	srcCounts   map[string]int
	dstCounts   map[string]int

	bands  domain.BandCounters
	btm    domain.BTMStats
	assoc  domain.AssocStats
	deauth domain.DeauthStats
	kvr    domain.KVRSupport

	btmStatusSeen   map[int]bool
	reasonSeen      map[int]bool
	freqBand        map[int]domain.Band
	bssids          map[string]*domain.BSSIDInfo
	mismatches      []domain.BandMismatch
	warnings        []string

	evidence map[string]int

	events     []domain.SteeringEvent
	btmEvents  []domain.BTMEvent
	rawSamples []domain.SignalSample

	beaconsKept    map[string]int
	sampledBeacons int
	important      int
}

// NewAggregator builds an aggregator with the given per-BSSID beacon sample
// quota (≤0 falls back to 3).
func NewAggregator(beaconQuota int) *Aggregator {
	if beaconQuota <= 0 {
		beaconQuota = 3
	}
	return &Aggregator{
		beaconQuota:   beaconQuota,
		protoCounts:   make(map[string]int),
		srcCounts:     make(map[string]int),
		dstCounts:     make(map[string]int),
		btmStatusSeen: make(map[int]bool),
		reasonSeen:    make(map[int]bool),
		freqBand:      make(map[int]domain.Band),
		bssids:        make(map[string]*domain.BSSIDInfo),
		evidence:      make(map[string]int),
		beaconsKept:   make(map[string]int),
	}
}

// Ingest consumes one frame record. Call order must follow capture order;
// the event stream preserves arrival order for equal timestamps.
func (a *Aggregator) Ingest(rec domain.FrameRecord) {
	a.wlanPackets++

	if rec.Protocols != "" {
		a.protoCounts[rec.Protocols]++
	}
	if rec.SA != "" {
		a.srcCounts[rec.SA]++
		a.evidence[rec.SA] += WeightAppearance
	}
	if rec.DA != "" {
		a.dstCounts[rec.DA]++
		a.evidence[rec.DA] += WeightAppearance
	}

	band := a.bandFor(rec.Frequency)
	a.trackBSSID(rec, band)
	a.trackSignal(rec, band)

	switch rec.Subtype {
	case domain.SubtypeBeacon:
		a.ingestBeacon(rec, band)
	case domain.SubtypeProbeRequest:
		switch band {
		case domain.Band24GHz:
			a.bands.ProbeRequests24++
		case domain.Band5GHz:
			a.bands.ProbeRequests5++
		}
	case domain.SubtypeProbeResponse:
		switch band {
		case domain.Band24GHz:
			a.bands.ProbeResponses24++
		case domain.Band5GHz:
			a.bands.ProbeResponses5++
		}
	case domain.SubtypeData, domain.SubtypeQoSData:
		switch band {
		case domain.Band24GHz:
			a.bands.Data24++
		case domain.Band5GHz:
			a.bands.Data5++
		}
	case domain.SubtypeAssocRequest, domain.SubtypeReassocRequest:
		a.ingestAssocRequest(rec, band)
	case domain.SubtypeAssocResponse, domain.SubtypeReassocResponse:
		a.ingestAssocResponse(rec, band)
	case domain.SubtypeDisassoc, domain.SubtypeDeauth:
		a.ingestDisconnect(rec, band)
	case domain.SubtypeAuth:
		// 802.11r shows up as FT authentication in the protocol stack.
		if strings.Contains(rec.Protocols, "wlan.ft") || strings.Contains(rec.Protocols, "ft.") {
			a.kvr.R = true
		}
	case domain.SubtypeAction:
		a.ingestAction(rec, band)
	}
}

func (a *Aggregator) bandFor(freq int) domain.Band {
	if freq == 0 {
		return domain.BandUnknown
	}
	if cached, ok := a.freqBand[freq]; ok {
		return cached
	}
	band := domain.BandForFrequency(freq)
	a.freqBand[freq] = band
	return band
}

func (a *Aggregator) trackBSSID(rec domain.FrameRecord, band domain.Band) {
	if rec.BSSID == "" || IsBroadcast(rec.BSSID) {
		return
	}
	info, ok := a.bssids[rec.BSSID]
	if !ok {
		info = &domain.BSSIDInfo{BSSID: rec.BSSID, Band: domain.BandUnknown}
		a.bssids[rec.BSSID] = info
	}
	if rec.SSID != "" {
		info.SSID = rec.SSID
	}
	if rec.Frequency > 0 {
		info.LastFrequency = rec.Frequency
	}
	if band.Known() {
		if info.Band.Known() && info.Band != band {
			a.mismatches = append(a.mismatches, domain.BandMismatch{
				Timestamp: rec.Timestamp,
				BSSID:     rec.BSSID,
				Frequency: rec.Frequency,
				Expected:  info.Band,
				Observed:  band,
			})
		}
		info.Band = band
	}
}

func (a *Aggregator) trackSignal(rec domain.FrameRecord, band domain.Band) {
	if !rec.ValidRSSI() || !band.Known() || rec.SA == "" {
		return
	}
	a.rawSamples = append(a.rawSamples, domain.SignalSample{
		Timestamp: rec.Timestamp,
		RSSI:      *rec.RSSI,
		Band:      band,
		SA:        rec.SA,
		DA:        rec.DA,
	})
	a.evidence[rec.SA] += WeightRSSISample
}

func (a *Aggregator) ingestBeacon(rec domain.FrameRecord, band domain.Band) {
	switch band {
	case domain.Band24GHz:
		a.bands.Beacons24++
	case domain.Band5GHz:
		a.bands.Beacons5++
	}
	// Beacons are sampled, never stored wholesale: at most beaconQuota per
	// BSSID make it into the raw sample set.
	if a.beaconsKept[rec.BSSID] < a.beaconQuota {
		a.beaconsKept[rec.BSSID]++
		a.sampledBeacons++
	}
}

func (a *Aggregator) ingestAssocRequest(rec domain.FrameRecord, band domain.Band) {
	typ := domain.EventAssocRequest
	if rec.Subtype == domain.SubtypeReassocRequest {
		typ = domain.EventReassocRequest
		a.assoc.ReassocRequests++
	} else {
		a.assoc.AssocRequests++
	}
	a.important++
	a.evidence[rec.SA] += WeightAssocRequest

	// Request direction: client transmits toward the AP.
	a.events = append(a.events, domain.SteeringEvent{
		Timestamp: rec.Timestamp,
		Type:      typ,
		ClientMAC: rec.SA,
		APMAC:     rec.DA,
		BSSID:     rec.BSSID,
		SA:        rec.SA,
		DA:        rec.DA,
		Band:      band,
		Frequency: rec.Frequency,
		RSSI:      rec.RSSI,
	})
}

func (a *Aggregator) ingestAssocResponse(rec domain.FrameRecord, band domain.Band) {
	typ := domain.EventAssocResponse
	if rec.Subtype == domain.SubtypeReassocResponse {
		typ = domain.EventReassocResponse
		a.assoc.ReassocResponses++
	} else {
		a.assoc.AssocResponses++
	}
	a.important++

	if rec.StatusCode != nil {
		if *rec.StatusCode == 0 {
			a.assoc.Successes++
		} else {
			a.assoc.Failures = append(a.assoc.Failures, domain.AssocFailure{
				Timestamp:  rec.Timestamp,
				BSSID:      rec.BSSID,
				StatusCode: *rec.StatusCode,
			})
		}
	}

	// Response direction: AP transmits toward the client.
	ap := rec.SA
	if ap == "" {
		ap = rec.BSSID
	}
	a.events = append(a.events, domain.SteeringEvent{
		Timestamp:  rec.Timestamp,
		Type:       typ,
		ClientMAC:  rec.DA,
		APMAC:      ap,
		BSSID:      rec.BSSID,
		SA:         rec.SA,
		DA:         rec.DA,
		Band:       band,
		Frequency:  rec.Frequency,
		RSSI:       rec.RSSI,
		StatusCode: rec.StatusCode,
	})
}

func (a *Aggregator) ingestDisconnect(rec domain.FrameRecord, band domain.Band) {
	typ := domain.EventDisassoc
	if rec.Subtype == domain.SubtypeDeauth {
		typ = domain.EventDeauth
		a.deauth.DeauthCount++
	} else {
		a.deauth.DisassocCount++
	}
	a.important++

	if rec.ReasonCode != nil && !a.reasonSeen[*rec.ReasonCode] {
		a.reasonSeen[*rec.ReasonCode] = true
		a.deauth.ReasonCodes = append(a.deauth.ReasonCodes, *rec.ReasonCode)
	}

	// AP-originated when the source is the BSSID itself; otherwise the
	// client is the one leaving.
	client, ap := rec.SA, rec.DA
	if rec.SA == rec.BSSID {
		client, ap = rec.DA, rec.SA
	}
	a.events = append(a.events, domain.SteeringEvent{
		Timestamp:  rec.Timestamp,
		Type:       typ,
		ClientMAC:  client,
		APMAC:      ap,
		BSSID:      rec.BSSID,
		SA:         rec.SA,
		DA:         rec.DA,
		Band:       band,
		Frequency:  rec.Frequency,
		RSSI:       rec.RSSI,
		ReasonCode: rec.ReasonCode,
	})
}

func (a *Aggregator) ingestAction(rec domain.FrameRecord, band domain.Band) {
	if rec.CategoryCode == nil {
		return
	}
	switch *rec.CategoryCode {
	case domain.CategoryRadioMeasurement:
		a.kvr.K = true
	case domain.CategoryWNM:
		a.kvr.V = true
	default:
		return
	}

	if rec.IsBTMRequest() {
		a.btm.Requests++
		a.important++
		// Request: AP→client.
		a.events = append(a.events, domain.SteeringEvent{
			Timestamp: rec.Timestamp,
			Type:      domain.EventBTMRequest,
			ClientMAC: rec.DA,
			APMAC:     rec.SA,
			BSSID:     rec.BSSID,
			SA:        rec.SA,
			DA:        rec.DA,
			Band:      band,
			Frequency: rec.Frequency,
			RSSI:      rec.RSSI,
		})
		a.btmEvents = append(a.btmEvents, domain.BTMEvent{
			Timestamp: rec.Timestamp,
			EventType: "request",
			ClientMAC: rec.DA,
			APBSSID:   apOrBSSID(rec.SA, rec.BSSID),
			Band:      band,
			Frequency: rec.Frequency,
			RSSI:      rec.RSSI,
		})
		return
	}

	if rec.IsBTMResponse() {
		a.btm.Responses++
		a.important++
		status := rec.BTMStatusCode
		if status == nil {
			status = rec.StatusCode
		}
		if status != nil {
			if *status == 0 {
				a.btm.Accepts++
			} else {
				a.btm.Rejects++
			}
			if !a.btmStatusSeen[*status] {
				a.btmStatusSeen[*status] = true
				a.btm.StatusCodes = append(a.btm.StatusCodes, *status)
			}
		}
		// Response inverts direction: client→AP.
		a.events = append(a.events, domain.SteeringEvent{
			Timestamp:  rec.Timestamp,
			Type:       domain.EventBTMResponse,
			ClientMAC:  rec.SA,
			APMAC:      rec.DA,
			BSSID:      rec.BSSID,
			SA:         rec.SA,
			DA:         rec.DA,
			Band:       band,
			Frequency:  rec.Frequency,
			RSSI:       rec.RSSI,
			StatusCode: status,
		})
		a.btmEvents = append(a.btmEvents, domain.BTMEvent{
			Timestamp:  rec.Timestamp,
			EventType:  "response",
			ClientMAC:  rec.SA,
			APBSSID:    apOrBSSID(rec.DA, rec.BSSID),
			StatusCode: status,
			Band:       band,
			Frequency:  rec.Frequency,
			RSSI:       rec.RSSI,
		})
		a.evidence[rec.SA] += WeightBTMResponse
	}
}

func apOrBSSID(ap, bssid string) string {
	if bssid != "" {
		return bssid
	}
	return ap
}

// Events returns the chronologically ordered steering event stream. Ties
// keep dissector arrival order.
func (a *Aggregator) Events() []domain.SteeringEvent {
	out := make([]domain.SteeringEvent, len(a.events))
	copy(out, a.events)
	sort.SliceStable(out, func(i, j int) bool { return out[i].Timestamp < out[j].Timestamp })
	return out
}

// BTMEvents returns the persisted BTM exchange list in time order.
func (a *Aggregator) BTMEvents() []domain.BTMEvent {
	out := make([]domain.BTMEvent, len(a.btmEvents))
	copy(out, a.btmEvents)
	sort.SliceStable(out, func(i, j int) bool { return out[i].Timestamp < out[j].Timestamp })
	return out
}

// Evidence exposes the weighted MAC evidence for primary-client election.
func (a *Aggregator) Evidence() map[string]int {
	return a.evidence
}

// BSSIDSet returns the set of MACs known to be BSSIDs.
func (a *Aggregator) BSSIDSet() map[string]bool {
	set := make(map[string]bool, len(a.bssids))
	for bssid := range a.bssids {
		set[bssid] = true
	}
	return set
}

// AddWarning attaches a diagnostic that will surface in raw_stats.
func (a *Aggregator) AddWarning(w string) {
	a.warnings = append(a.warnings, w)
}

// ClientSamples filters the raw signal samples down to those transmitted by
// the primary client and downsamples uniformly to at most limit points.
func (a *Aggregator) ClientSamples(clientMAC string, limit int) []domain.SignalSample {
	client := strings.ToLower(clientMAC)
	var filtered []domain.SignalSample
	for _, s := range a.rawSamples {
		if s.SA == client {
			filtered = append(filtered, s)
		}
	}
	if limit <= 0 || len(filtered) <= limit {
		return filtered
	}
	out := make([]domain.SignalSample, 0, limit)
	for i := 0; i < limit; i++ {
		out = append(out, filtered[i*len(filtered)/limit])
	}
	return out
}

// Stats finalizes the raw counter block. totalPackets comes from the capture
// validator (the dissector stream only sees wlan frames).
func (a *Aggregator) Stats(totalPackets int) domain.CaptureStats {
	if totalPackets < a.wlanPackets {
		totalPackets = a.wlanPackets
	}
	a.assignRoles()
	return domain.CaptureStats{
		TotalPackets:     totalPackets,
		WLANPackets:      a.wlanPackets,
		TopProtocols:     topN(a.protoCounts, topListSize),
		TopSources:       topN(a.srcCounts, topListSize),
		TopDestinations:  topN(a.dstCounts, topListSize),
		Bands:            a.bands,
		BTM:              a.btm,
		Assoc:            a.assoc,
		Deauth:           a.deauth,
		KVR:              a.kvrResolved(),
		BSSIDs:           a.bssids,
		FreqBandMap:      a.freqBand,
		Mismatches:       a.mismatches,
		Warnings:         a.warnings,
		SampledBeacons:   a.sampledBeacons,
		ImportantPackets: a.important,
	}
}

// kvrResolved applies the BTM fallback: any BTM traffic implies 11v support
// even if the category counter somehow missed it.
func (a *Aggregator) kvrResolved() domain.KVRSupport {
	kvr := a.kvr
	if a.btm.Requests > 0 || a.btm.Responses > 0 {
		kvr.V = true
	}
	return kvr
}

// assignRoles marks 5 GHz radios master and 2.4 GHz slaves once both bands
// were observed; a single-band capture promotes everything to master.
func (a *Aggregator) assignRoles() {
	var saw24, saw5 bool
	for _, info := range a.bssids {
		switch info.Band {
		case domain.Band24GHz:
			saw24 = true
		case domain.Band5GHz:
			saw5 = true
		}
	}
	for _, info := range a.bssids {
		if saw24 && saw5 {
			switch info.Band {
			case domain.Band5GHz:
				info.Role = domain.RoleMaster
			case domain.Band24GHz:
				info.Role = domain.RoleSlave
			}
			continue
		}
		info.Role = domain.RoleMaster
	}
}

func topN(counts map[string]int, n int) []domain.CountEntry {
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
