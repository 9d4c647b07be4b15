/* swiftmtp - MTP/PTP host-side protocol engine
 *
 * Tests for USBLink's three-phase transaction handling.
 */

package link

import (
	"bytes"
	"context"
	"errors"
	"testing"
	"time"

	"github.com/swiftmtp/swiftmtp/ptp"
	"github.com/swiftmtp/swiftmtp/transport"
)

func TestExecuteCommandNoDataPhase(t *testing.T) {
	resp := &ptp.Container{Type: ptp.ContainerResponse, Code: uint16(ptp.RCOK), TxID: 7}
	raw := &fakeRaw{stream: resp.Encode()}
	l := New(raw, transport.DeviceSummary{})

	cmd := &ptp.Container{Type: ptp.ContainerCommand, Code: uint16(ptp.OpGetDeviceInfo), TxID: 7}
	res, err := l.ExecuteCommand(context.Background(), cmd)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if ptp.RC(res.Response.Code) != ptp.RCOK {
		t.Errorf("got code %04x, want RCOK", res.Response.Code)
	}
	if res.Payload != nil {
		t.Errorf("expected nil payload, got %v", res.Payload)
	}
	if len(raw.writes) != 1 || !bytes.Equal(raw.writes[0], cmd.Encode()) {
		t.Errorf("command bytes not written as expected: %v", raw.writes)
	}
}

func TestExecuteCommandWithImplicitDataPhase(t *testing.T) {
	cmd := &ptp.Container{Type: ptp.ContainerCommand, Code: uint16(ptp.OpGetObjectPropList), TxID: 3}
	payload := []byte("a flat proplist tuple stream")

	w := ptp.NewWriter()
	w.PutU32(dataContainerLength(int64(len(payload))))
	w.PutU16(uint16(ptp.ContainerData))
	w.PutU16(cmd.Code)
	w.PutU32(cmd.TxID)
	dataBytes := append(w.Bytes(), payload...)

	resp := &ptp.Container{Type: ptp.ContainerResponse, Code: uint16(ptp.RCOK), TxID: cmd.TxID}
	stream := append(dataBytes, resp.Encode()...)

	raw := &fakeRaw{stream: stream}
	l := New(raw, transport.DeviceSummary{})

	res, err := l.ExecuteCommand(context.Background(), cmd)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !bytes.Equal(res.Payload, payload) {
		t.Errorf("got payload %q, want %q", res.Payload, payload)
	}
	if ptp.RC(res.Response.Code) != ptp.RCOK {
		t.Errorf("got code %04x, want RCOK", res.Response.Code)
	}
}

func TestExecuteStreamingCommandDataOut(t *testing.T) {
	cmd := &ptp.Container{Type: ptp.ContainerCommand, Code: uint16(ptp.OpSendObjectInfo), TxID: 9, Params: []uint32{1, 0}}
	payload := []byte("object info dataset bytes")
	resp := &ptp.Container{Type: ptp.ContainerResponse, Code: uint16(ptp.RCOK), TxID: cmd.TxID, Params: []uint32{1, 0, 42}}

	raw := &fakeRaw{stream: resp.Encode()}
	l := New(raw, transport.DeviceSummary{})

	sent := false
	dataOut := func(buf []byte) (int, error) {
		if sent {
			return 0, nil
		}
		sent = true
		return copy(buf, payload), nil
	}

	res, err := l.ExecuteStreamingCommand(context.Background(), cmd, transport.DataPhaseOut, int64(len(payload)), nil, dataOut)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Response.Params[2] != 42 {
		t.Errorf("got handle %d, want 42", res.Response.Params[2])
	}
	if len(raw.writes) != 3 {
		t.Fatalf("got %d writes, want 3 (command, data header, payload)", len(raw.writes))
	}
	if !bytes.Equal(raw.writes[2], payload) {
		t.Errorf("payload not written as expected: %q", raw.writes[2])
	}
}

func TestExecuteStreamingCommandDataIn(t *testing.T) {
	cmd := &ptp.Container{Type: ptp.ContainerCommand, Code: uint16(ptp.OpGetPartialObject64), TxID: 11, Params: []uint32{5, 0, 0, 1024}}
	payload := []byte("the bytes of an object chunk, streamed back")

	w := ptp.NewWriter()
	w.PutU32(dataContainerLength(int64(len(payload))))
	w.PutU16(uint16(ptp.ContainerData))
	w.PutU16(cmd.Code)
	w.PutU32(cmd.TxID)
	dataBytes := append(w.Bytes(), payload...)

	resp := &ptp.Container{Type: ptp.ContainerResponse, Code: uint16(ptp.RCOK), TxID: cmd.TxID}
	raw := &fakeRaw{stream: append(dataBytes, resp.Encode()...)}
	l := New(raw, transport.DeviceSummary{})

	var collected bytes.Buffer
	dataIn := func(buf []byte) (int, error) {
		return collected.Write(buf)
	}

	res, err := l.ExecuteStreamingCommand(context.Background(), cmd, transport.DataPhaseIn, 0, dataIn, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !bytes.Equal(collected.Bytes(), payload) {
		t.Errorf("got %q, want %q", collected.Bytes(), payload)
	}
	if ptp.RC(res.Response.Code) != ptp.RCOK {
		t.Errorf("got code %04x, want RCOK", res.Response.Code)
	}
}

func TestBoundedReadRetriesOnZeroSizeRead(t *testing.T) {
	resp := &ptp.Container{Type: ptp.ContainerResponse, Code: uint16(ptp.RCOK), TxID: 1}
	raw := &fakeRaw{stream: resp.Encode(), leadingZeroReads: 2}
	l := New(raw, transport.DeviceSummary{})

	cmd := &ptp.Container{Type: ptp.ContainerCommand, Code: uint16(ptp.OpGetDeviceInfo), TxID: 1}
	res, err := l.ExecuteCommand(context.Background(), cmd)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if ptp.RC(res.Response.Code) != ptp.RCOK {
		t.Errorf("got code %04x, want RCOK", res.Response.Code)
	}
}

func TestExecuteCommandTimesOutOnStalledWrite(t *testing.T) {
	raw := &fakeRaw{stallWrites: true}
	l := New(raw, transport.DeviceSummary{})
	l.SetTimeouts(Timeouts{Handshake: time.Millisecond, IO: 5 * time.Millisecond, Inactivity: 5 * time.Millisecond, Overall: time.Second})

	cmd := &ptp.Container{Type: ptp.ContainerCommand, Code: uint16(ptp.OpGetDeviceInfo), TxID: 1}
	_, err := l.ExecuteCommand(context.Background(), cmd)
	if err == nil {
		t.Fatalf("expected a timeout error")
	}
	var tip *transport.TimeoutInPhaseError
	if !errors.As(err, &tip) {
		t.Fatalf("got %v (%T), want *transport.TimeoutInPhaseError", err, err)
	}
	if tip.Phase != transport.PhaseBulkOut {
		t.Errorf("got phase %s, want %s", tip.Phase, transport.PhaseBulkOut)
	}
}

func TestOpenSessionAcceptsAlreadyOpen(t *testing.T) {
	resp := &ptp.Container{Type: ptp.ContainerResponse, Code: uint16(ptp.RCSessionAlreadyOpen), TxID: 0}
	raw := &fakeRaw{stream: resp.Encode()}
	l := New(raw, transport.DeviceSummary{})

	if err := l.OpenSession(context.Background(), 1); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestEventsArePumpedAfterOpenUSBIfNeeded(t *testing.T) {
	event := &ptp.Container{Type: ptp.ContainerEvent, Code: 0x4002, TxID: 0, Params: []uint32{99}}
	raw := &fakeRaw{interruptStream: event.Encode()}
	l := New(raw, transport.DeviceSummary{})

	if err := l.OpenUSBIfNeeded(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	select {
	case got := <-l.Events():
		if got.Code != event.Code {
			t.Errorf("got code %04x, want %04x", got.Code, event.Code)
		}
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for pumped event")
	}

	if err := l.Close(); err != nil {
		t.Fatalf("unexpected error on close: %v", err)
	}
}

func TestCloseWithoutOpenClosesEventsChannel(t *testing.T) {
	raw := &fakeRaw{}
	l := New(raw, transport.DeviceSummary{})
	if err := l.Close(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	_, ok := <-l.Events()
	if ok {
		t.Errorf("expected Events() channel to be closed")
	}
}
