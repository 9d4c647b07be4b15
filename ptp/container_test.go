/* swiftmtp - MTP/PTP host-side protocol engine
 *
 * Tests for container.go
 */

package ptp

import "testing"

func TestContainerEncodeLength(t *testing.T) {
	c := &Container{Type: ContainerCommand, Code: uint16(OpGetDeviceInfo), TxID: 1}
	buf := c.Encode()

	if len(buf) != 12 {
		t.Fatalf("got length %d, want 12", len(buf))
	}

	c.Params = []uint32{1, 2, 3}
	buf = c.Encode()
	if len(buf) != 24 {
		t.Fatalf("got length %d, want 24", len(buf))
	}

	r := NewReader(buf)
	length, _ := r.U32()
	if length != uint32(len(buf)) {
		t.Errorf("encoded length field %d != actual %d", length, len(buf))
	}
}

func TestContainerEncodeFieldOffsets(t *testing.T) {
	c := &Container{Type: ContainerCommand, Code: 0x1001, TxID: 7}
	buf := c.Encode()

	r := NewReader(buf)
	length, _ := r.U32()
	typ, _ := r.U16()
	code, _ := r.U16()

	if length != 12 {
		t.Errorf("length = %d, want 12", length)
	}
	if typ != uint16(ContainerCommand) {
		t.Errorf("type = %d", typ)
	}
	if code != 0x1001 {
		t.Errorf("code = 0x%04x, want 0x1001", code)
	}
}

func TestParseContainerTooShort(t *testing.T) {
	if _, err := ParseContainer([]byte{1, 2, 3}); err != ErrContainerTooShort {
		t.Errorf("got %v, want ErrContainerTooShort", err)
	}
}

func TestContainerRoundTrip(t *testing.T) {
	c := &Container{Type: ContainerResponse, Code: uint16(RCOK), TxID: 42, Params: []uint32{100, 200}}
	buf := c.Encode()

	got, err := ParseContainer(buf)
	if err != nil {
		t.Fatalf("unexpected error: %s", err)
	}

	if got.Type != c.Type || got.Code != c.Code || got.TxID != c.TxID {
		t.Errorf("got %+v, want %+v", got, c)
	}
	if len(got.Params) != 2 || got.Params[0] != 100 || got.Params[1] != 200 {
		t.Errorf("params mismatch: %v", got.Params)
	}
}
