package dissector

import (
	"strconv"
	"strings"

	"github.com/lcalzada-xor/steermap/internal/core/domain"
)

// Field order of the tshark invocation. ParseLine depends on it.
var tsharkFields = []string{
	"frame.time_epoch",
	"frame.protocols",
	"frame.len",
	"wlan.fc.type_subtype",
	"wlan.bssid",
	"wlan.sa",
	"wlan.da",
	"wlan_radio.frequency",
	"wlan.fixed.reason_code",
	"wlan.ssid",
	"wlan.fixed.category_code",
	"wlan.fixed.action_code",
	"wlan.fixed.bss_transition_status_code",
	"wlan.fixed.status_code",
	"wlan_radio.signal_dbm",
}

// ParseLine converts one tab-separated tshark output line into a normalized
// FrameRecord. ok is false for lines carrying no usable fields; those are
// skipped silently by the stream.
func ParseLine(line string) (domain.FrameRecord, bool) {
	cols := strings.Split(line, "\t")
	for len(cols) < len(tsharkFields) {
		cols = append(cols, "")
	}

	rec := domain.FrameRecord{
		Protocols: cols[1],
		BSSID:     strings.ToLower(cols[4]),
		SA:        strings.ToLower(cols[5]),
		DA:        strings.ToLower(cols[6]),
		SSID:      cols[9],
		Subtype:   -1,
	}

	ts, tsOK := parseFloat(cols[0])
	rec.Timestamp = ts

	if v, ok := parseInt(cols[3]); ok {
		rec.Subtype = normalizeSubtype(v)
	}
	if v, ok := parseInt(cols[2]); ok {
		rec.FrameLen = v
	}
	if v, ok := parseInt(cols[7]); ok {
		rec.Frequency = normalizeFrequency(v)
	}
	rec.ReasonCode = parseIntPtr(cols[8])
	rec.CategoryCode = parseIntPtr(cols[10])
	rec.ActionCode = parseIntPtr(cols[11])
	rec.BTMStatusCode = parseIntPtr(cols[12])
	rec.StatusCode = parseIntPtr(cols[13])
	if v, ok := parseFloat(cols[14]); ok {
		rssi := int(v)
		rec.RSSI = &rssi
	}

	// A record must at least carry a timestamp and a frame type to be usable.
	if !tsOK || rec.Subtype < 0 {
		return domain.FrameRecord{}, false
	}
	return rec, true
}

// normalizeSubtype reduces combined type*256+subtype values some dissector
// builds emit. Values below 256 already carry type<<4|subtype.
func normalizeSubtype(v int) int {
	if v >= 256 {
		return v % 256
	}
	return v
}

// normalizeFrequency converts kHz readings to MHz.
func normalizeFrequency(v int) int {
	if v > 10000 {
		return v / 1000
	}
	return v
}

// parseInt accepts decimal and 0x-prefixed hex, taking the first value when
// the dissector emitted a comma-separated list.
func parseInt(s string) (int, bool) {
	s = firstValue(s)
	if s == "" {
		return 0, false
	}
	v, err := strconv.ParseInt(s, 0, 64)
	if err != nil {
		return 0, false
	}
	return int(v), true
}

func parseIntPtr(s string) *int {
	if v, ok := parseInt(s); ok {
		return &v
	}
	return nil
}

func parseFloat(s string) (float64, bool) {
	s = firstValue(s)
	if s == "" {
		return 0, false
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, false
	}
	return v, true
}

func firstValue(s string) string {
	s = strings.TrimSpace(s)
	if i := strings.IndexByte(s, ','); i >= 0 {
		s = s[:i]
	}
	return s
}
