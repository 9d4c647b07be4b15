/* swiftmtp - MTP/PTP host-side protocol engine
 *
 * Environment variables recognized per spec.md §6.
 */

package main

import (
	"os"
	"strings"

	"github.com/swiftmtp/swiftmtp/quirk"
)

const (
	envDemoMode     = "SWIFTMTP_DEMO_MODE"
	envTraceUSB     = "SWIFTMTP_TRACE_USB"
	envUserOverride = "SWIFTMTP_USER_OVERRIDE"
	envDeniedQuirks = "SWIFTMTP_DENIED_QUIRKS"
)

// runtimeEnv is the decoded effect of the recognized environment
// variables, read once at startup.
type runtimeEnv struct {
	DemoMode       bool
	TraceUSB       bool
	UserOverride   quirk.UserOverride
	DeniedQuirkIDs map[string]bool
}

func readEnv() runtimeEnv {
	var env runtimeEnv
	env.DemoMode = isTruthy(os.Getenv(envDemoMode))
	env.TraceUSB = isTruthy(os.Getenv(envTraceUSB))
	env.UserOverride = quirk.ParseUserOverride(os.Getenv(envUserOverride))

	env.DeniedQuirkIDs = make(map[string]bool)
	for _, id := range strings.Split(os.Getenv(envDeniedQuirks), ",") {
		id = strings.TrimSpace(id)
		if id != "" {
			env.DeniedQuirkIDs[id] = true
		}
	}
	return env
}

func isTruthy(s string) bool {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "1", "true", "yes", "on":
		return true
	}
	return false
}

// mergeDeniedQuirks returns the union of the config file's deny list
// and the environment's, the environment never removing an entry the
// config file added.
func mergeDeniedQuirks(fromConfig, fromEnv map[string]bool) map[string]bool {
	out := make(map[string]bool, len(fromConfig)+len(fromEnv))
	for id := range fromConfig {
		out[id] = true
	}
	for id := range fromEnv {
		out[id] = true
	}
	return out
}
