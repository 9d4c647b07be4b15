/* swiftmtp - MTP/PTP host-side protocol engine
 *
 * Tests for the enumeration ladder.
 */

package actor

import (
	"context"
	"testing"

	"github.com/swiftmtp/swiftmtp/ptp"
	"github.com/swiftmtp/swiftmtp/protocol"
	"github.com/swiftmtp/swiftmtp/quirk"
)

func TestListUsesPropListWhenSupported(t *testing.T) {
	link := newFakeLink()
	w := ptp.NewWriter()
	w.PutU32(1)
	w.PutU32(7)
	w.PutU32(protocol.PropObjectFileName)
	w.PutU16(uint16(ptp.DataTypeString))
	w.PutPTPString("a.jpg")
	link.propListData = w.Bytes()

	a := New(link, quirk.Policy{Flags: quirk.Flags{SupportsGetObjectPropList: true}})
	defer a.Stop()

	out, err := a.List(context.Background(), 1, 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(out) != 1 || out[0].Filename != "a.jpg" {
		t.Errorf("got %+v", out)
	}
}

func TestListFallsBackToHandlesThenInfoOnNotSupported(t *testing.T) {
	link := newFakeLink()
	link.propListCode = ptp.RCOperationNotSupported
	link.handles[0] = []uint32{5}
	link.infos[5] = ptp.ObjectInfoDataset{Filename: "b.jpg"}

	a := New(link, quirk.Policy{Flags: quirk.Flags{SupportsGetObjectPropList: true}})
	defer a.Stop()

	out, err := a.List(context.Background(), 1, 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(out) != 1 || out[0].Filename != "b.jpg" {
		t.Errorf("got %+v", out)
	}

	if a.Policy().Flags.SupportsGetObjectPropList {
		t.Errorf("expected SupportsGetObjectPropList to be disabled after OperationNotSupported")
	}
}

func TestListSkipsPropListWhenInitiallyDisabled(t *testing.T) {
	link := newFakeLink()
	link.propListCode = ptp.RCOK // would succeed, but must not be called
	link.handles[0] = []uint32{9}
	link.infos[9] = ptp.ObjectInfoDataset{Filename: "c.jpg"}

	a := New(link, quirk.Policy{Flags: quirk.Flags{SupportsGetObjectPropList: false}})
	defer a.Stop()

	out, err := a.List(context.Background(), 1, 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(out) != 1 || out[0].Filename != "c.jpg" {
		t.Errorf("got %+v", out)
	}
}

func TestListEmptyParentReturnsEmpty(t *testing.T) {
	link := newFakeLink()
	a := New(link, quirk.Policy{})
	defer a.Stop()

	out, err := a.List(context.Background(), 1, 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(out) != 0 {
		t.Errorf("got %+v, want empty", out)
	}
}
