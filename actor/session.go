/* swiftmtp - MTP/PTP host-side protocol engine
 *
 * Session lifecycle (§4.8): open_if_needed and its recovery ladder.
 */

package actor

import (
	"context"
	"errors"

	"github.com/swiftmtp/swiftmtp/backoff"
	"github.com/swiftmtp/swiftmtp/protocol"
	"github.com/swiftmtp/swiftmtp/quirk"
)

// OpenSessionID is the session id this engine always requests.
const OpenSessionID uint32 = 1

// SessionOpener groups the collaborators OpenIfNeeded needs beyond
// the Link itself: a capability prober and a policy builder input,
// so the ladder can build a fresh Policy as step 158 of §4.8
// prescribes.
type SessionOpener struct {
	ProbeCapabilities func(ctx context.Context) (quirk.ProbeReceipt, error)
	BuildPolicy       func(probe quirk.ProbeReceipt, hasProbe bool) quirk.Policy
	Stabilize         func(ctx context.Context, delayMs uint32) error
	ClaimInterface    func(ctx context.Context) error
	KernelDetach      func(ctx context.Context) error
}

// OpenIfNeeded runs the full session-open sequence: USB open,
// optional kernel detach, claim interface, optional stabilization
// delay, probe capabilities, build policy, OpenSession(id=1) with
// its recovery ladder. It is idempotent in the sense that a caller
// may invoke it whenever "session might not be open" without first
// checking; the ladder itself decides what recovery, if any, is
// needed.
func (a *Actor) OpenIfNeeded(ctx context.Context, opener SessionOpener) error {
	if err := a.Link.OpenUSBIfNeeded(ctx); err != nil {
		return protocol.WrapTransportError(err)
	}

	if opener.KernelDetach != nil {
		if err := opener.KernelDetach(ctx); err != nil {
			return err
		}
	}
	if opener.ClaimInterface != nil {
		if err := opener.ClaimInterface(ctx); err != nil {
			return err
		}
	}

	policy := a.Policy()
	if opener.Stabilize != nil && policy.Tuning.StabilizeDelayMs > 0 {
		if err := opener.Stabilize(ctx, policy.Tuning.StabilizeDelayMs); err != nil {
			return err
		}
	}

	var probe quirk.ProbeReceipt
	hasProbe := false
	if opener.ProbeCapabilities != nil {
		p, err := opener.ProbeCapabilities(ctx)
		if err == nil {
			probe, hasProbe = p, true
		}
	}
	if opener.BuildPolicy != nil {
		a.mutatePolicy(func(quirk.Policy) quirk.Policy {
			return opener.BuildPolicy(probe, hasProbe)
		})
	}

	return a.openSessionLadder(ctx)
}

// openSessionLadder implements the four-rung recovery sequence of
// §4.8: straight OpenSession; on SessionAlreadyOpen, close and
// retry; on I/O error with the reset-reopen flag set, reset the
// device and reopen; otherwise propagate. BusyBackoff wraps the
// whole ladder's retries.
func (a *Actor) openSessionLadder(ctx context.Context) error {
	policy := a.Policy()

	attempt := func(ctx context.Context) (struct{}, error) {
		err := protocol.OpenSession(ctx, a.Link, OpenSessionID)
		if err == nil {
			return struct{}{}, nil
		}

		if isSessionAlreadyOpen(err) {
			if closeErr := protocol.CloseSession(ctx, a.Link); closeErr != nil {
				return struct{}{}, closeErr
			}
			return struct{}{}, protocol.OpenSession(ctx, a.Link, OpenSessionID)
		}

		var tw *protocol.TransportWrappedError
		if errors.As(err, &tw) && policy.Flags.ResetReopenOnOpenSessionIOError {
			if resetErr := a.Link.ResetDevice(ctx); resetErr != nil {
				return struct{}{}, resetErr
			}
			if openErr := a.Link.OpenUSBIfNeeded(ctx); openErr != nil {
				return struct{}{}, protocol.WrapTransportError(openErr)
			}
			return struct{}{}, protocol.OpenSession(ctx, a.Link, OpenSessionID)
		}

		return struct{}{}, err
	}

	_, _, err := backoff.Run(ctx, backoff.Params{Retries: 2, BaseMs: 100, JitterPct: 0.1}, attempt)
	if err == nil {
		a.mu.Lock()
		a.txIDs = protocol.NewTxIDSequence()
		a.mu.Unlock()
	}
	return err
}

// nextTxID hands out the next transaction ID for the current
// session.
func (a *Actor) nextTxID() uint32 {
	a.mu.Lock()
	seq := a.txIDs
	a.mu.Unlock()
	return seq.Next()
}

// isSessionAlreadyOpen reports whether err is the ProtocolError
// CheckOK produces for response code 0x201E.
func isSessionAlreadyOpen(err error) bool {
	var protoErr *protocol.ProtocolError
	if errors.As(err, &protoErr) {
		return protoErr.Code == 0x201E
	}
	return false
}
