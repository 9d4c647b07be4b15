/* swiftmtp - MTP/PTP host-side protocol engine
 *
 * Capability probe (§4.5): cheap operations tried during session open.
 */

package quirk

// ProbeReceipt is the outcome of trying a handful of cheap
// operations while a session is being opened, used to raise flags
// and adjust chunk size before the static quirk/override layers run.
type ProbeReceipt struct {
	PartialRead64         bool
	PartialWrite          bool
	SupportsLargeTransfers bool
	IsSlowDevice          bool
	NeedsStabilization    bool
}

// ApplyProbe folds a ProbeReceipt into p, raising flags and
// optionally doubling the chunk size (clamped later), per §4.5's
// "capability probe" merge layer.
func ApplyProbe(p Policy, probe ProbeReceipt) Policy {
	p.Flags.SupportsGetPartialObject64 = p.Flags.SupportsGetPartialObject64 || probe.PartialRead64
	p.Flags.SupportsSendPartialObject = p.Flags.SupportsSendPartialObject || probe.PartialWrite

	if probe.SupportsLargeTransfers {
		doubled := p.Tuning.MaxChunkBytes * 2
		if doubled > p.Tuning.MaxChunkBytes {
			p.Tuning.MaxChunkBytes = doubled
		}
	}
	if probe.IsSlowDevice {
		p.Tuning.IOTimeoutMs = p.Tuning.IOTimeoutMs * 2
	}
	if probe.NeedsStabilization && p.Tuning.StabilizeDelayMs == 0 {
		p.Tuning.StabilizeDelayMs = 250
	}

	return p
}
