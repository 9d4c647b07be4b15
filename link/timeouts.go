/* swiftmtp - MTP/PTP host-side protocol engine
 *
 * Per-phase timeouts (§4.3), derived from a device's quirk.Tuning.
 */

package link

import "time"

// Timeouts bounds each phase of a transaction independently, mirroring
// the handshake/IO/inactivity/overall knobs a policy's Tuning carries.
type Timeouts struct {
	Handshake  time.Duration
	IO         time.Duration
	Inactivity time.Duration
	Overall    time.Duration
}

// DefaultTimeouts is used until the first policy is pushed down via
// SetTimeouts.
func DefaultTimeouts() Timeouts {
	return Timeouts{
		Handshake:  5 * time.Second,
		IO:         10 * time.Second,
		Inactivity: 15 * time.Second,
		Overall:    180 * time.Second,
	}
}

// TimeoutsFromMillis builds a Timeouts from the millisecond fields a
// quirk.Tuning carries, so callers don't need to import link from
// quirk (or vice versa).
func TimeoutsFromMillis(handshakeMs, ioMs, inactivityMs, overallMs uint32) Timeouts {
	return Timeouts{
		Handshake:  time.Duration(handshakeMs) * time.Millisecond,
		IO:         time.Duration(ioMs) * time.Millisecond,
		Inactivity: time.Duration(inactivityMs) * time.Millisecond,
		Overall:    time.Duration(overallMs) * time.Millisecond,
	}
}
