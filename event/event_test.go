/* swiftmtp - MTP/PTP host-side protocol engine
 *
 * Tests for event decoding.
 */

package event

import (
	"testing"

	"github.com/swiftmtp/swiftmtp/ptp"
)

func TestDecodeObjectAdded(t *testing.T) {
	c := &ptp.Container{Type: ptp.ContainerEvent, Code: codeObjectAdded, TxID: 5, Params: []uint32{0x42}}
	ev := Decode(c)

	if ev.Kind != KindObjectAdded {
		t.Errorf("got kind %v, want KindObjectAdded", ev.Kind)
	}
	handle, ok := ev.ObjectHandle()
	if !ok || handle != 0x42 {
		t.Errorf("got handle %d, ok %v", handle, ok)
	}
}

func TestDecodeUnknownCode(t *testing.T) {
	c := &ptp.Container{Type: ptp.ContainerEvent, Code: 0x9999, TxID: 1}
	ev := Decode(c)
	if ev.Kind != KindUnknown {
		t.Errorf("got kind %v, want KindUnknown", ev.Kind)
	}
}

func TestObjectHandleNoParams(t *testing.T) {
	ev := MtpEvent{Kind: KindObjectAdded}
	if _, ok := ev.ObjectHandle(); ok {
		t.Errorf("expected ok=false with no params")
	}
}
