/* swiftmtp - MTP/PTP host-side protocol engine
 *
 * Error taxonomy (§7): every variant a caller can distinguish on.
 */

package protocol

import (
	"errors"
	"fmt"

	"github.com/swiftmtp/swiftmtp/ptp"
	"github.com/swiftmtp/swiftmtp/transport"
)

// Sentinel errors with no payload.
var (
	ErrDeviceDisconnected = errors.New("protocol: device disconnected")
	ErrPermissionDenied   = errors.New("protocol: permission denied")
	ErrObjectNotFound     = errors.New("protocol: object not found")
	ErrObjectWriteProtected = errors.New("protocol: object write protected")
	ErrStorageFull        = errors.New("protocol: storage full")
	ErrReadOnly           = errors.New("protocol: read-only")
	ErrTimeout            = errors.New("protocol: timeout")
	ErrBusy               = errors.New("protocol: busy")
	ErrSessionBusy        = errors.New("protocol: session busy")
	ErrSessionNotOpen     = errors.New("protocol: session not open")
)

// NotSupportedError reports an operation the device explicitly
// refused to perform.
type NotSupportedError struct {
	Message string
}

func (e *NotSupportedError) Error() string { return "protocol: not supported: " + e.Message }

// TransportWrappedError wraps a transport-layer failure exactly
// once, at the link boundary.
type TransportWrappedError struct {
	Err error
}

func (e *TransportWrappedError) Error() string { return "protocol: transport: " + e.Err.Error() }
func (e *TransportWrappedError) Unwrap() error  { return e.Err }

// ProtocolError is the catch-all for any non-OK response code that
// wasn't reshaped into a more specific variant.
type ProtocolError struct {
	Code    ptp.RC
	Message string
}

func (e *ProtocolError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("protocol: %s: %s", ptp.Describe(e.Code), e.Message)
	}
	return fmt.Sprintf("protocol: %s", ptp.Describe(e.Code))
}

// PreconditionFailedError reports a layering or state invariant
// violation, e.g. "session not open" observed above the link layer.
type PreconditionFailedError struct {
	Message string
}

func (e *PreconditionFailedError) Error() string { return "protocol: precondition failed: " + e.Message }

// VerificationFailedError reports a post-write size mismatch.
type VerificationFailedError struct {
	Expected uint64
	Actual   uint64
}

func (e *VerificationFailedError) Error() string {
	return fmt.Sprintf("protocol: verification failed: expected %d, got %d", e.Expected, e.Actual)
}

// RetryClass groups response codes (and transport errors) by how
// the actor's recovery ladders (§4.8) should react to them.
type RetryClass int

// Retry classes recognized by the actor.
const (
	RetryClassNone RetryClass = iota
	RetryClassInvalidParameter
	RetryClassInvalidObjectHandle
	RetryClassTransientTransport
)

// ClassifyRetry maps an error produced by CheckOK (or a transport
// error) to the retry class the device actor's send-object ladder
// uses to decide which further rungs to try.
func ClassifyRetry(err error) RetryClass {
	var protoErr *ProtocolError
	if errors.As(err, &protoErr) {
		switch protoErr.Code {
		case ptp.RCInvalidDatasetFormat, ptp.RCParameterNotSupported, ptp.RCInvalidParameter:
			return RetryClassInvalidParameter
		}
	}
	if errors.Is(err, ErrObjectNotFound) {
		return RetryClassInvalidObjectHandle
	}
	if errors.Is(err, ErrSessionBusy) || errors.Is(err, ErrSessionNotOpen) {
		return RetryClassTransientTransport
	}
	var twErr *TransportWrappedError
	if errors.As(err, &twErr) {
		return RetryClassTransientTransport
	}
	return RetryClassNone
}

// CheckOK is the single chokepoint (§4.2, §7) converting a PTP
// response code into the typed error taxonomy. It returns nil for
// RCOK.
func CheckOK(code ptp.RC) error {
	switch code {
	case ptp.RCOK:
		return nil
	case ptp.RCOperationNotSupported:
		return &NotSupportedError{Message: ptp.Describe(code)}
	case ptp.RCInvalidObjectHandle, ptp.RCDevicePropNotSupported, ptp.RCSpecificationByFormat:
		return ErrObjectNotFound
	case ptp.RCStorageFull, ptp.RCStorageIDInUse:
		return ErrStorageFull
	case ptp.RCObjectWriteProtected:
		return ErrReadOnly
	case ptp.RCAccessDenied:
		return ErrPermissionDenied
	case ptp.RCDeviceBusy:
		return ErrBusy
	case ptp.RCInvalidParameter:
		return &ProtocolError{Code: code, Message: "write request rejected"}
	case ptp.RCSessionNotOpen:
		return ErrSessionNotOpen
	case ptp.RCInvalidStorageID:
		// Same numeric value as RCParameterNotSupported (0x2008) by
		// design; both map through ProtocolError so ClassifyRetry
		// can still place either in RetryClassInvalidParameter.
		return &ProtocolError{Code: code, Message: "invalid storage id"}
	default:
		return &ProtocolError{Code: code}
	}
}

// WrapTransportError wraps a transport-layer error exactly once.
// Any error already carrying protocol-layer meaning (produced by
// CheckOK, or one of this package's own sentinels/types) is returned
// unchanged, since re-wrapping it here would erase the distinction
// CheckOK already made.
func WrapTransportError(err error) error {
	if err == nil {
		return nil
	}
	if isProtocolLevel(err) {
		return err
	}
	switch {
	case errors.Is(err, transport.ErrNoDevice):
		return ErrDeviceDisconnected
	case errors.Is(err, transport.ErrAccessDenied):
		return ErrPermissionDenied
	case errors.Is(err, transport.ErrTimeout):
		return ErrTimeout
	case errors.Is(err, transport.ErrBusy):
		return ErrBusy
	}
	return &TransportWrappedError{Err: err}
}

// isProtocolLevel reports whether err already belongs to this
// package's error taxonomy, making it unsafe to wrap again.
func isProtocolLevel(err error) bool {
	switch {
	case errors.Is(err, ErrDeviceDisconnected), errors.Is(err, ErrPermissionDenied),
		errors.Is(err, ErrObjectNotFound), errors.Is(err, ErrObjectWriteProtected),
		errors.Is(err, ErrStorageFull), errors.Is(err, ErrReadOnly),
		errors.Is(err, ErrTimeout), errors.Is(err, ErrBusy),
		errors.Is(err, ErrSessionBusy), errors.Is(err, ErrSessionNotOpen):
		return true
	}
	var nse *NotSupportedError
	var pe *ProtocolError
	var twe *TransportWrappedError
	var pfe *PreconditionFailedError
	var vfe *VerificationFailedError
	return errors.As(err, &nse) || errors.As(err, &pe) || errors.As(err, &twe) ||
		errors.As(err, &pfe) || errors.As(err, &vfe)
}
