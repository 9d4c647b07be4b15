/* swiftmtp - MTP/PTP host-side protocol engine
 *
 * Exit codes and the JSON error envelope (spec.md §6 "CLI surface").
 */

package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/swiftmtp/swiftmtp/actor"
	"github.com/swiftmtp/swiftmtp/service"
	"github.com/swiftmtp/swiftmtp/transport"
)

// Exit codes, fixed by spec.md §6 so every implementation agrees.
const (
	exitOK          = 0
	exitUsage       = 64
	exitUnavailable = 69
	exitSoftware    = 70
	exitTempfail    = 75
)

// errorEnvelope is the JSON shape printed to stderr for any failing
// subcommand, per spec.md §6.
type errorEnvelope struct {
	SchemaVersion string            `json:"schemaVersion"`
	Type          string            `json:"type"`
	Error         string            `json:"error"`
	Details       map[string]string `json:"details,omitempty"`
	Mode          string            `json:"mode,omitempty"`
	Timestamp     string            `json:"timestamp"`
}

func writeErrorEnvelope(w io.Writer, err error, mode string, details map[string]string) {
	env := errorEnvelope{
		SchemaVersion: "1.0",
		Type:          "error",
		Error:         err.Error(),
		Details:       details,
		Mode:          mode,
		Timestamp:     time.Now().UTC().Format(time.RFC3339),
	}
	data, marshalErr := json.Marshal(env)
	if marshalErr != nil {
		fmt.Fprintf(w, "{%q:%q}\n", "error", err.Error())
		return
	}
	w.Write(data)
	w.Write([]byte("\n"))
}

// cliUsageError marks an error as a malformed invocation (bad
// subcommand, unparsable argument), mapping to exitUsage rather than
// the generic exitSoftware.
type cliUsageError struct{ msg string }

func (e *cliUsageError) Error() string { return e.msg }

func usageErrorf(format string, args ...any) error {
	return &cliUsageError{msg: fmt.Sprintf(format, args...)}
}

// exitCodeFor classifies err into one of the sysexits-style codes
// spec.md §6 fixes. Transport-level unavailability maps to
// unavailable, busy/timeout conditions the caller might retry map to
// tempfail, malformed invocations map to usage, and anything else
// falls through to software.
func exitCodeFor(err error) int {
	if err == nil {
		return exitOK
	}

	var usageErr *cliUsageError
	if errors.As(err, &usageErr) {
		return exitUsage
	}

	switch {
	case errors.Is(err, transport.ErrNoDevice),
		errors.Is(err, transport.ErrAccessDenied),
		errors.Is(err, service.ErrDeviceDisconnected),
		errors.Is(err, actor.ErrDeviceDisconnected):
		return exitUnavailable

	case errors.Is(err, transport.ErrTimeout),
		errors.Is(err, transport.ErrBusy),
		errors.Is(err, service.ErrTimeout):
		return exitTempfail
	}

	var phaseErr *transport.TimeoutInPhaseError
	if errors.As(err, &phaseErr) {
		return exitTempfail
	}

	return exitSoftware
}
