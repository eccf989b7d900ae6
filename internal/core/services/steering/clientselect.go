package steering

import (
	"fmt"
	"net"
	"sort"
	"strings"
)

// Evidence weights per occurrence. BTM responses are the strongest signal a
// MAC is the steered client; plain appearances barely count.
const (
	WeightBTMResponse  = 8
	WeightAssocRequest = 5
	WeightRSSISample   = 2
	WeightAppearance   = 1
)

// Selection is the outcome of primary-client election.
type Selection struct {
	MAC      string
	Score    int
	Warnings []string
}

// SelectPrimaryClient elects the analyzed client from weighted evidence,
// excluding every MAC known to be a BSSID. A user hint that parses as a
// unicast MAC wins unconditionally; a hint that is a known BSSID is honored
// too but leaves a warning behind.
func SelectPrimaryClient(evidence map[string]int, bssids map[string]bool, hint string) Selection {
	var sel Selection

	if hint != "" {
		hw, err := net.ParseMAC(hint)
		switch {
		case err != nil || len(hw) == 0 || hw[0]&0x01 != 0:
			sel.Warnings = append(sel.Warnings,
				fmt.Sprintf("ignoring client hint %q: not a valid unicast MAC", hint))
		case bssids[strings.ToLower(hw.String())]:
			sel.Warnings = append(sel.Warnings,
				fmt.Sprintf("client hint %s is a known BSSID; using it anyway", hint))
			sel.MAC = strings.ToLower(hw.String())
			return sel
		default:
			sel.MAC = strings.ToLower(hw.String())
			return sel
		}
	}

	// Deterministic order: score descending, MAC ascending on ties.
	macs := make([]string, 0, len(evidence))
	for mac := range evidence {
		if mac == "" || bssids[mac] || IsBroadcast(mac) {
			continue
		}
		macs = append(macs, mac)
	}
	sort.Slice(macs, func(i, j int) bool {
		if evidence[macs[i]] != evidence[macs[j]] {
			return evidence[macs[i]] > evidence[macs[j]]
		}
		return macs[i] < macs[j]
	})

	if len(macs) == 0 {
		sel.Warnings = append(sel.Warnings, "no client candidates found in capture")
		return sel
	}

	sel.MAC = macs[0]
	sel.Score = evidence[macs[0]]
	return sel
}
