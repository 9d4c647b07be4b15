/* swiftmtp - MTP/PTP host-side protocol engine
 *
 * User overrides (§4.5): env-var "k1=v1,k2=v2" parsing plus a
 * deny-list of quirk ids.
 */

package quirk

import (
	"strconv"
	"strings"
)

// UserOverride is the decoded form of the user-override environment
// variable. Malformed input yields a zero-value UserOverride (no
// overrides applied) rather than an error, per §4.5.
type UserOverride struct {
	Tuning TuningOverrides
	Flags  FlagOverrides
}

var tuningKeys = map[string]func(*TuningOverrides, uint32){
	"maxChunkBytes":       func(t *TuningOverrides, v uint32) { t.MaxChunkBytes = &v },
	"ioTimeoutMs":         func(t *TuningOverrides, v uint32) { t.IOTimeoutMs = &v },
	"handshakeTimeoutMs":  func(t *TuningOverrides, v uint32) { t.HandshakeTimeoutMs = &v },
	"inactivityTimeoutMs": func(t *TuningOverrides, v uint32) { t.InactivityTimeoutMs = &v },
	"overallDeadlineMs":   func(t *TuningOverrides, v uint32) { t.OverallDeadlineMs = &v },
	"stabilizeDelayMs":    func(t *TuningOverrides, v uint32) { t.StabilizeDelayMs = &v },
}

var flagKeys = map[string]func(*FlagOverrides, bool){
	"supportsGetObjectPropList":       func(f *FlagOverrides, v bool) { f.SupportsGetObjectPropList = &v },
	"prefersPropListEnumeration":      func(f *FlagOverrides, v bool) { f.PrefersPropListEnumeration = &v },
	"requiresKernelDetach":            func(f *FlagOverrides, v bool) { f.RequiresKernelDetach = &v },
	"supportsGetPartialObject64":      func(f *FlagOverrides, v bool) { f.SupportsGetPartialObject64 = &v },
	"supportsSendPartialObject":       func(f *FlagOverrides, v bool) { f.SupportsSendPartialObject = &v },
	"resetReopenOnOpenSessionIOError": func(f *FlagOverrides, v bool) { f.ResetReopenOnOpenSessionIOError = &v },
	"verifyAfterWrite":                func(f *FlagOverrides, v bool) { f.VerifyAfterWrite = &v },
	"allowUnknownObjectInfoSizeRetry": func(f *FlagOverrides, v bool) { f.AllowUnknownObjectInfoSizeRetry = &v },
}

// ParseUserOverride parses an environment string of "k1=v1,k2=v2"
// pairs. Any malformed pair (missing '=', unknown key, unparsable
// value) causes the entire string to be rejected and a zero
// UserOverride returned, so a typo never applies half an override.
func ParseUserOverride(env string) UserOverride {
	var out UserOverride
	if strings.TrimSpace(env) == "" {
		return out
	}

	pairs := strings.Split(env, ",")
	parsed := UserOverride{}
	for _, pair := range pairs {
		pair = strings.TrimSpace(pair)
		if pair == "" {
			continue
		}
		kv := strings.SplitN(pair, "=", 2)
		if len(kv) != 2 {
			return UserOverride{}
		}
		key := strings.TrimSpace(kv[0])
		val := strings.TrimSpace(kv[1])

		if setter, ok := tuningKeys[key]; ok {
			n, err := strconv.ParseUint(val, 10, 32)
			if err != nil {
				return UserOverride{}
			}
			setter(&parsed.Tuning, uint32(n))
			continue
		}
		if setter, ok := flagKeys[key]; ok {
			b, err := strconv.ParseBool(val)
			if err != nil {
				return UserOverride{}
			}
			setter(&parsed.Flags, b)
			continue
		}
		return UserOverride{}
	}

	return parsed
}

// ParseDenyList parses a comma-separated list of quirk ids to
// exclude during the static-quirk merge layer.
func ParseDenyList(env string) map[string]bool {
	deny := map[string]bool{}
	for _, id := range strings.Split(env, ",") {
		id = strings.TrimSpace(id)
		if id != "" {
			deny[id] = true
		}
	}
	return deny
}
