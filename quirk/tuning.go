/* swiftmtp - MTP/PTP host-side protocol engine
 *
 * Tuning, Flags, and the clamps applied to every mutation of a policy.
 */

package quirk

// Tuning is the numeric knobs a device's effective policy carries.
type Tuning struct {
	MaxChunkBytes      uint32
	IOTimeoutMs        uint32
	HandshakeTimeoutMs uint32
	InactivityTimeoutMs uint32
	OverallDeadlineMs  uint32
	StabilizeDelayMs   uint32
}

// Flags are the boolean feature toggles a device's effective policy
// carries.
type Flags struct {
	SupportsGetObjectPropList  bool
	PrefersPropListEnumeration bool
	RequiresKernelDetach       bool
	SupportsGetPartialObject64 bool
	SupportsSendPartialObject  bool
	ResetReopenOnOpenSessionIOError bool
	VerifyAfterWrite           bool
	AllowUnknownObjectInfoSizeRetry bool
}

// Clamp bounds policy fields (§4.5 "Clamps"), applied at the end of
// every layer merge and whenever a policy mutates in-session.
func (t Tuning) Clamp() Tuning {
	const (
		minChunk = 131072
		maxChunk = 16777216
		minIO    = 1000
		maxIO    = 60000
	)

	if t.MaxChunkBytes < minChunk {
		t.MaxChunkBytes = minChunk
	}
	if t.MaxChunkBytes > maxChunk {
		t.MaxChunkBytes = maxChunk
	}
	if t.IOTimeoutMs < minIO {
		t.IOTimeoutMs = minIO
	}
	if t.IOTimeoutMs > maxIO {
		t.IOTimeoutMs = maxIO
	}

	clampNonNegative := func(v uint32) uint32 { return v } // uint32 is already non-negative by type

	t.HandshakeTimeoutMs = clampNonNegative(t.HandshakeTimeoutMs)
	t.InactivityTimeoutMs = clampNonNegative(t.InactivityTimeoutMs)
	t.OverallDeadlineMs = clampNonNegative(t.OverallDeadlineMs)
	t.StabilizeDelayMs = clampNonNegative(t.StabilizeDelayMs)

	return t
}

// DefaultTuning is the baseline before any probe/learned/static/user
// layer is applied.
func DefaultTuning() Tuning {
	return Tuning{
		MaxChunkBytes:       1048576,
		IOTimeoutMs:         10000,
		HandshakeTimeoutMs:  5000,
		InactivityTimeoutMs: 15000,
		OverallDeadlineMs:   180000,
		StabilizeDelayMs:    0,
	}
}

// SafeModeTuning returns the six conservative constants safe mode
// forces verbatim (§4.5 "Safe mode").
func SafeModeTuning() Tuning {
	return Tuning{
		MaxChunkBytes:       131072,
		IOTimeoutMs:         30000,
		HandshakeTimeoutMs:  15000,
		InactivityTimeoutMs: 20000,
		OverallDeadlineMs:   300000,
		StabilizeDelayMs:    0,
	}
}

// SafeModeFlags zeroes the partial-object flags, the only flags
// safe mode forces.
func SafeModeFlags(f Flags) Flags {
	f.SupportsGetPartialObject64 = false
	f.SupportsSendPartialObject = false
	return f
}

// Policy is the effective, mutable tuning+flags pair attached to a
// live device. A freshly built policy is always a new value (§9
// "Policy object mutability"): policies are never shared across
// devices.
type Policy struct {
	Tuning Tuning
	Flags  Flags
}
