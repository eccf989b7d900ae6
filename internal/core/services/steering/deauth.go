package steering

import (
	"strings"

	"github.com/lcalzada-xor/steermap/internal/core/domain"
)

// gracefulReasons are the deauth/disassoc reason codes indicating a voluntary
// or benign departure (STA leaving, inactivity, BSS teardown). Everything
// else, including unknown codes, counts as forced.
var gracefulReasons = map[int]bool{
	3:  true, // deauthenticated because sending STA is leaving
	4:  true, // disassociated due to inactivity
	8:  true, // disassociated because sending STA is leaving BSS
	32: true, // disassociated for unspecified QoS-related reason
}

const broadcastMAC = "ff:ff:ff:ff:ff:ff"

// IsBroadcast reports whether a destination address is broadcast or
// multicast (IPv4 01:00:5e, IPv6 33:33 group ranges).
func IsBroadcast(da string) bool {
	da = strings.ToLower(da)
	switch {
	case da == broadcastMAC:
		return true
	case strings.HasPrefix(da, "01:00:5e"):
		return true
	case strings.HasPrefix(da, "33:33"):
		return true
	}
	return false
}

// IsDirectedToClient reports whether a deauth/disassoc event involves the
// client directly. Broadcast frames are never directed.
func IsDirectedToClient(ev domain.SteeringEvent, clientMAC string) bool {
	if IsBroadcast(ev.DA) {
		return false
	}
	client := strings.ToLower(clientMAC)
	return strings.ToLower(ev.DA) == client || strings.ToLower(ev.SA) == client
}

// IsForced reports whether a reason code indicates a forced disconnection.
// Unknown and absent codes are treated as forced (conservative).
func IsForced(reasonCode *int) bool {
	if reasonCode == nil {
		return true
	}
	return !gracefulReasons[*reasonCode]
}

// ClassifyDeauth buckets a deauth/disassoc event relative to the analyzed
// client. A client-sent frame is always graceful: the client is leaving on
// its own terms no matter the reason code.
func ClassifyDeauth(ev domain.SteeringEvent, clientMAC string) domain.DeauthClass {
	if clientMAC == "" {
		return domain.DeauthUnknown
	}
	if IsBroadcast(ev.DA) {
		return domain.DeauthBroadcast
	}
	if !IsDirectedToClient(ev, clientMAC) {
		return domain.DeauthDirectedToOther
	}
	if strings.EqualFold(ev.SA, clientMAC) {
		return domain.DeauthGraceful
	}
	if IsForced(ev.ReasonCode) {
		return domain.DeauthForcedToClient
	}
	return domain.DeauthGraceful
}
