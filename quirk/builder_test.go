/* swiftmtp - MTP/PTP host-side protocol engine
 *
 * Tests for the effective-tuning builder's layered-merge laws (§8).
 */

package quirk

import "testing"

func TestBuildPolicySafeModeYieldsConstantsVerbatim(t *testing.T) {
	p := BuildPolicy(BuildInput{SafeMode: true})
	want := SafeModeTuning()
	if p.Tuning != want {
		t.Errorf("got %+v, want %+v", p.Tuning, want)
	}
	if p.Flags.SupportsGetPartialObject64 || p.Flags.SupportsSendPartialObject {
		t.Errorf("safe mode should force partial-object flags off")
	}
}

func TestBuildPolicyClampsAlwaysHold(t *testing.T) {
	huge := uint32(1 << 30)
	tiny := uint32(1)
	in := BuildInput{
		UserOverride: UserOverride{
			Tuning: TuningOverrides{MaxChunkBytes: &huge, IOTimeoutMs: &tiny},
		},
	}
	p := BuildPolicy(in)
	if p.Tuning.MaxChunkBytes < 131072 || p.Tuning.MaxChunkBytes > 16777216 {
		t.Errorf("MaxChunkBytes %d out of clamp range", p.Tuning.MaxChunkBytes)
	}
	if p.Tuning.IOTimeoutMs < 1000 || p.Tuning.IOTimeoutMs > 60000 {
		t.Errorf("IOTimeoutMs %d out of clamp range", p.Tuning.IOTimeoutMs)
	}
}

func TestBuildPolicyFreshClass06DefaultsToPropListEnabled(t *testing.T) {
	p := BuildPolicy(BuildInput{IfaceClass: 0x06})
	if !p.Flags.SupportsGetObjectPropList {
		t.Errorf("expected SupportsGetObjectPropList=true for class 0x06")
	}
	if p.Flags.RequiresKernelDetach {
		t.Errorf("expected RequiresKernelDetach=false for class 0x06")
	}
}

func TestBuildPolicyUnknownClassConservativeDefaults(t *testing.T) {
	p := BuildPolicy(BuildInput{IfaceClass: 0xFF})
	if p.Flags.SupportsGetObjectPropList || p.Flags.PrefersPropListEnumeration || p.Flags.RequiresKernelDetach {
		t.Errorf("expected all-false defaults for vendor class 0xFF, got %+v", p.Flags)
	}
}

func TestBuildPolicyUserOverrideWinsOverStaticQuirk(t *testing.T) {
	pid := uint16(0x4444)
	maxChunk := uint32(2097152)
	quirkChunk := uint32(4194304)

	db := &DB{
		SchemaVersion: "1.0",
		Entries: []DeviceQuirk{
			{
				ID:         "vendor-quirk",
				Match:      MatchCriteria{VID: 0x1234, PID: &pid},
				Tuning:     TuningOverrides{MaxChunkBytes: &quirkChunk},
				Confidence: ConfidenceHigh,
				Status:     StatusStable,
			},
		},
	}

	in := BuildInput{
		Identity: Identity{VID: 0x1234, PID: 0x4444},
		StaticDB: db,
		UserOverride: UserOverride{
			Tuning: TuningOverrides{MaxChunkBytes: &maxChunk},
		},
	}
	p := BuildPolicy(in)
	if p.Tuning.MaxChunkBytes != maxChunk {
		t.Errorf("got %d, want user override %d to win", p.Tuning.MaxChunkBytes, maxChunk)
	}
}

func TestBuildPolicyStrictModeSkipsStaticQuirk(t *testing.T) {
	pid := uint16(0x4444)
	quirkChunk := uint32(4194304)

	db := &DB{
		Entries: []DeviceQuirk{
			{ID: "q", Match: MatchCriteria{VID: 0x1234, PID: &pid}, Tuning: TuningOverrides{MaxChunkBytes: &quirkChunk}},
		},
	}

	in := BuildInput{
		Identity: Identity{VID: 0x1234, PID: 0x4444},
		Mode:     ModeStrict,
		StaticDB: db,
	}
	p := BuildPolicy(in)
	if p.Tuning.MaxChunkBytes == quirkChunk {
		t.Errorf("strict mode should skip the static quirk layer")
	}
}

func TestBuildPolicyDeniedQuirkExcluded(t *testing.T) {
	pid := uint16(0x4444)
	quirkChunk := uint32(4194304)

	db := &DB{
		Entries: []DeviceQuirk{
			{ID: "denied-quirk", Match: MatchCriteria{VID: 0x1234, PID: &pid}, Tuning: TuningOverrides{MaxChunkBytes: &quirkChunk}},
		},
	}

	in := BuildInput{
		Identity:       Identity{VID: 0x1234, PID: 0x4444},
		StaticDB:       db,
		DeniedQuirkIDs: map[string]bool{"denied-quirk": true},
	}
	p := BuildPolicy(in)
	if p.Tuning.MaxChunkBytes == quirkChunk {
		t.Errorf("denied quirk should be excluded from the merge")
	}
}
