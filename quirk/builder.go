/* swiftmtp - MTP/PTP host-side protocol engine
 *
 * Effective-tuning builder (§4.5): the strict, later-wins layered
 * merge producing the Policy a live device actually uses.
 */

package quirk

// Mode selects whether the learned-profile and static-quirk merge
// layers participate.
type Mode int

// Merge modes.
const (
	ModeNormal Mode = iota
	ModeStrict      // skips the learned-profile and static-quirk layers
)

// BuildInput bundles everything the builder needs to assemble a
// Policy for one connect.
type BuildInput struct {
	Identity      Identity
	IfaceClass    uint8
	Mode          Mode
	SafeMode      bool
	Probe         ProbeReceipt
	HasProbe      bool
	Learned       LearnedProfile
	HasLearned    bool
	StaticDB      *DB
	DeniedQuirkIDs map[string]bool
	UserOverride  UserOverride
}

// BuildPolicy runs the full layered merge of §4.5: defaults, probe,
// learned profile (skipped in strict mode), static quirk (skipped in
// strict mode, denied ids excluded), user overrides — then applies
// safe mode if requested, then clamps.
//
// Fresh policies built with iface_class=0x06 and no matching static
// quirk always return flags.SupportsGetObjectPropList=true and
// RequiresKernelDetach=false (§8 testable property); this holds
// because HeuristicFlags seeds the flags layer before any
// quirk/override can unset them, and nothing in this input touches
// those fields.
func BuildPolicy(in BuildInput) Policy {
	policy := Policy{Tuning: DefaultTuning(), Flags: HeuristicFlags(in.IfaceClass)}

	if in.HasProbe {
		policy = ApplyProbe(policy, in.Probe)
	}
	tuning, flags := policy.Tuning, policy.Flags

	if in.Mode != ModeStrict {
		if in.HasLearned && !in.Learned.IdentityChanged(in.Identity) {
			tuning = ApplyLearned(tuning, in.Learned)
		}

		if in.StaticDB != nil {
			if q, ok := in.StaticDB.MatchByFingerprint(in.Identity); ok {
				if in.DeniedQuirkIDs == nil || !in.DeniedQuirkIDs[q.ID] {
					tuning = q.Tuning.Apply(tuning)
					flags = q.Flags.Apply(flags)
				}
			}
		}
	}

	tuning = in.UserOverride.Tuning.Apply(tuning)
	flags = in.UserOverride.Flags.Apply(flags)

	if in.SafeMode {
		tuning = SafeModeTuning()
		flags = SafeModeFlags(flags)
	}

	tuning = tuning.Clamp()

	return Policy{Tuning: tuning, Flags: flags}
}
