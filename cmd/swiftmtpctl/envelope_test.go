/* swiftmtp - MTP/PTP host-side protocol engine
 *
 * Tests for exit code classification and the error envelope.
 */

package main

import (
	"bytes"
	"encoding/json"
	"errors"
	"testing"

	"github.com/swiftmtp/swiftmtp/service"
	"github.com/swiftmtp/swiftmtp/transport"
)

func TestExitCodeForUsageError(t *testing.T) {
	err := usageErrorf("get: usage: get handle local-path")
	if got := exitCodeFor(err); got != exitUsage {
		t.Errorf("exitCodeFor(usage error) = %d, want %d", got, exitUsage)
	}
}

func TestExitCodeForTransportErrors(t *testing.T) {
	cases := []struct {
		err  error
		want int
	}{
		{transport.ErrNoDevice, exitUnavailable},
		{transport.ErrAccessDenied, exitUnavailable},
		{service.ErrDeviceDisconnected, exitUnavailable},
		{transport.ErrTimeout, exitTempfail},
		{transport.ErrBusy, exitTempfail},
		{service.ErrTimeout, exitTempfail},
		{errors.New("unexpected"), exitSoftware},
		{nil, exitOK},
	}
	for _, c := range cases {
		if got := exitCodeFor(c.err); got != c.want {
			t.Errorf("exitCodeFor(%v) = %d, want %d", c.err, got, c.want)
		}
	}
}

func TestExitCodeForWrappedError(t *testing.T) {
	wrapped := errors.New("list: " + transport.ErrNoDevice.Error())
	if got := exitCodeFor(wrapped); got != exitSoftware {
		t.Errorf("exitCodeFor on a string-wrapped error should not match sentinel classification; got %d", got)
	}

	properlyWrapped := &wrapErr{err: transport.ErrNoDevice}
	if got := exitCodeFor(properlyWrapped); got != exitUnavailable {
		t.Errorf("exitCodeFor(%%w-wrapped ErrNoDevice) = %d, want %d", got, exitUnavailable)
	}
}

type wrapErr struct{ err error }

func (w *wrapErr) Error() string { return "list: " + w.err.Error() }
func (w *wrapErr) Unwrap() error { return w.err }

func TestWriteErrorEnvelope(t *testing.T) {
	var buf bytes.Buffer
	writeErrorEnvelope(&buf, errors.New("boom"), "once", map[string]string{"subcommand": "get"})

	var env errorEnvelope
	if err := json.Unmarshal(buf.Bytes(), &env); err != nil {
		t.Fatalf("unmarshal envelope: %v", err)
	}
	if env.SchemaVersion != "1.0" || env.Type != "error" || env.Error != "boom" || env.Mode != "once" {
		t.Errorf("unexpected envelope: %+v", env)
	}
	if env.Details["subcommand"] != "get" {
		t.Errorf("Details[subcommand] = %q, want get", env.Details["subcommand"])
	}
	if env.Timestamp == "" {
		t.Errorf("Timestamp left empty")
	}
}
