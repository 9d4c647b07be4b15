/* swiftmtp - MTP/PTP host-side protocol engine
 *
 * Event coalescer (§4.4): drops bursts of identical events within a window.
 */

package event

import "time"

// DefaultWindow is the coalescing window used unless the caller
// specifies another.
const DefaultWindow = 50 * time.Millisecond

// Coalescer forwards the first event of a burst and drops the rest
// until Window has elapsed since the last forwarded event. Not safe
// for concurrent use: it is owned single-threaded by the event pump
// task (§5 Shared resources).
type Coalescer struct {
	Window time.Duration

	lastForwarded time.Time
	hasForwarded  bool
}

// NewCoalescer returns a Coalescer using DefaultWindow.
func NewCoalescer() *Coalescer {
	return &Coalescer{Window: DefaultWindow}
}

// ShouldForward reports whether an event arriving at now should be
// forwarded: true iff no event has been forwarded yet, or the
// elapsed time since the last forwarded event is at least Window.
func (c *Coalescer) ShouldForward(now time.Time) bool {
	if !c.hasForwarded || now.Sub(c.lastForwarded) >= c.Window {
		c.lastForwarded = now
		c.hasForwarded = true
		return true
	}
	return false
}
