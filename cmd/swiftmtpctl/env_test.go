/* swiftmtp - MTP/PTP host-side protocol engine
 *
 * Tests for environment parsing and deny-list merging.
 */

package main

import "testing"

func TestIsTruthy(t *testing.T) {
	truthy := []string{"1", "true", "TRUE", "yes", "on", " 1 "}
	for _, s := range truthy {
		if !isTruthy(s) {
			t.Errorf("isTruthy(%q) = false, want true", s)
		}
	}
	falsy := []string{"", "0", "false", "no", "off", "2"}
	for _, s := range falsy {
		if isTruthy(s) {
			t.Errorf("isTruthy(%q) = true, want false", s)
		}
	}
}

func TestMergeDeniedQuirks(t *testing.T) {
	fromConfig := map[string]bool{"a": true, "b": true}
	fromEnv := map[string]bool{"b": true, "c": true}
	merged := mergeDeniedQuirks(fromConfig, fromEnv)

	for _, id := range []string{"a", "b", "c"} {
		if !merged[id] {
			t.Errorf("merged deny list missing %q", id)
		}
	}
	if len(merged) != 3 {
		t.Errorf("len(merged) = %d, want 3", len(merged))
	}

	// fromConfig and fromEnv must not be mutated.
	if len(fromConfig) != 2 || len(fromEnv) != 2 {
		t.Errorf("mergeDeniedQuirks mutated its inputs")
	}
}

func TestReadEnvDeniedQuirksTrimsAndSkipsEmpty(t *testing.T) {
	t.Setenv(envDeniedQuirks, " quirk-a ,, quirk-b,")
	env := readEnv()
	if !env.DeniedQuirkIDs["quirk-a"] || !env.DeniedQuirkIDs["quirk-b"] {
		t.Errorf("DeniedQuirkIDs = %v, want quirk-a and quirk-b", env.DeniedQuirkIDs)
	}
	if len(env.DeniedQuirkIDs) != 2 {
		t.Errorf("len(DeniedQuirkIDs) = %d, want 2", len(env.DeniedQuirkIDs))
	}
}

func TestReadEnvDemoMode(t *testing.T) {
	t.Setenv(envDemoMode, "1")
	if !readEnv().DemoMode {
		t.Errorf("DemoMode = false, want true with %s=1", envDemoMode)
	}
}
