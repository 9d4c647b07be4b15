/* swiftmtp - MTP/PTP host-side protocol engine
 *
 * Transaction outcome classification (§4.11): maps an error returned
 * from an actor/service operation onto the small set of outcome
 * classes the transaction log and profiling report group by.
 */

package telemetry

import (
	"context"
	"errors"

	"github.com/swiftmtp/swiftmtp/protocol"
	"github.com/swiftmtp/swiftmtp/transport"
)

// Outcome classifies how a transaction ended.
type Outcome int

// Outcome classes recognized by the transaction log.
const (
	OutcomeOK Outcome = iota
	OutcomeDeviceError
	OutcomeTimeout
	OutcomeStall
	OutcomeIOError
	OutcomeCancelled
)

func (o Outcome) String() string {
	switch o {
	case OutcomeOK:
		return "ok"
	case OutcomeDeviceError:
		return "deviceError"
	case OutcomeTimeout:
		return "timeout"
	case OutcomeStall:
		return "stall"
	case OutcomeIOError:
		return "ioError"
	case OutcomeCancelled:
		return "cancelled"
	default:
		return "unknown"
	}
}

// ClassifyOutcome maps err (as returned by an actor or service
// operation) onto an Outcome. A nil err is OutcomeOK.
func ClassifyOutcome(err error) Outcome {
	if err == nil {
		return OutcomeOK
	}
	if errors.Is(err, context.Canceled) {
		return OutcomeCancelled
	}
	if errors.Is(err, transport.ErrStall) {
		return OutcomeStall
	}

	var timeoutInPhase *transport.TimeoutInPhaseError
	if errors.As(err, &timeoutInPhase) || errors.Is(err, transport.ErrTimeout) || errors.Is(err, protocol.ErrTimeout) || errors.Is(err, context.DeadlineExceeded) {
		return OutcomeTimeout
	}

	var ioErr *transport.IOError
	var wrapped *protocol.TransportWrappedError
	if errors.As(err, &ioErr) || errors.As(err, &wrapped) {
		return OutcomeIOError
	}

	return OutcomeDeviceError
}
