/* swiftmtp - MTP/PTP host-side protocol engine
 *
 * Tests for the CheckOK chokepoint and retry classification.
 */

package protocol

import (
	"errors"
	"testing"

	"github.com/swiftmtp/swiftmtp/ptp"
)

func TestCheckOKSuccess(t *testing.T) {
	if err := CheckOK(ptp.RCOK); err != nil {
		t.Errorf("got %v, want nil", err)
	}
}

func TestCheckOKNotSupported(t *testing.T) {
	err := CheckOK(ptp.RCOperationNotSupported)
	var nse *NotSupportedError
	if !errors.As(err, &nse) {
		t.Errorf("got %v, want *NotSupportedError", err)
	}
}

func TestCheckOKObjectNotFound(t *testing.T) {
	cases := []ptp.RC{ptp.RCInvalidObjectHandle, ptp.RCDevicePropNotSupported, ptp.RCSpecificationByFormat}
	for _, rc := range cases {
		if err := CheckOK(rc); !errors.Is(err, ErrObjectNotFound) {
			t.Errorf("code 0x%04x: got %v, want ErrObjectNotFound", uint16(rc), err)
		}
	}
}

func TestCheckOKStorageFull(t *testing.T) {
	for _, rc := range []ptp.RC{ptp.RCStorageFull, ptp.RCStorageIDInUse} {
		if err := CheckOK(rc); !errors.Is(err, ErrStorageFull) {
			t.Errorf("code 0x%04x: got %v, want ErrStorageFull", uint16(rc), err)
		}
	}
}

func TestCheckOKBusy(t *testing.T) {
	if err := CheckOK(ptp.RCDeviceBusy); !errors.Is(err, ErrBusy) {
		t.Errorf("got %v, want ErrBusy", err)
	}
}

func TestCheckOKSessionNotOpen(t *testing.T) {
	if err := CheckOK(ptp.RCSessionNotOpen); !errors.Is(err, ErrSessionNotOpen) {
		t.Errorf("got %v, want ErrSessionNotOpen", err)
	}
}

func TestCheckOKGenericProtocolError(t *testing.T) {
	err := CheckOK(ptp.RCGeneralError)
	var pe *ProtocolError
	if !errors.As(err, &pe) {
		t.Fatalf("got %v, want *ProtocolError", err)
	}
	if pe.Code != ptp.RCGeneralError {
		t.Errorf("got code 0x%04x, want 0x%04x", uint16(pe.Code), uint16(ptp.RCGeneralError))
	}
}

func TestClassifyRetryInvalidParameter(t *testing.T) {
	err := CheckOK(ptp.RCInvalidDatasetFormat)
	if got := ClassifyRetry(err); got != RetryClassInvalidParameter {
		t.Errorf("got %v, want RetryClassInvalidParameter", got)
	}
}

func TestClassifyRetryInvalidObjectHandle(t *testing.T) {
	err := CheckOK(ptp.RCInvalidObjectHandle)
	if got := ClassifyRetry(err); got != RetryClassInvalidObjectHandle {
		t.Errorf("got %v, want RetryClassInvalidObjectHandle", got)
	}
}

func TestClassifyRetryTransientTransport(t *testing.T) {
	err := CheckOK(ptp.RCSessionNotOpen)
	if got := ClassifyRetry(err); got != RetryClassTransientTransport {
		t.Errorf("got %v, want RetryClassTransientTransport", got)
	}
}

func TestClassifyRetryNone(t *testing.T) {
	err := CheckOK(ptp.RCAccessDenied)
	if got := ClassifyRetry(err); got != RetryClassNone {
		t.Errorf("got %v, want RetryClassNone", got)
	}
}

func TestTxIDSequenceSkipsZeroOnWraparound(t *testing.T) {
	seq := &TxIDSequence{last: 0xFFFFFFFF}
	id := seq.Next()
	if id == 0 {
		t.Errorf("Next() returned 0 on wraparound")
	}
	if id != 1 {
		t.Errorf("got %d, want 1 immediately after wraparound", id)
	}
}

func TestTxIDSequenceMonotonic(t *testing.T) {
	seq := NewTxIDSequence()
	first := seq.Next()
	second := seq.Next()
	if first != 1 || second != 2 {
		t.Errorf("got %d, %d, want 1, 2", first, second)
	}
}
