/* swiftmtp - MTP/PTP host-side protocol engine
 *
 * USBLink (§4.3): the concrete transport.Link, driving the three-phase
 * PTP transaction (command, optional data, response) over a RawUSB.
 */

package link

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/swiftmtp/swiftmtp/ptp"
	"github.com/swiftmtp/swiftmtp/transport"
)

// bufferedPayloadLimit is the largest data-in phase ExecuteCommand
// will collect into ResponseResult.Payload rather than requiring the
// caller to drive it with ExecuteStreamingCommand. GetObjectPropList
// datasets for a modest directory fit comfortably under this.
const bufferedPayloadLimit = 16 << 20

var errPayloadTooLargeForBuffering = errors.New("link: data phase exceeds buffered-payload limit, use ExecuteStreamingCommand")

// USBLink is the default transport.Link implementation: it owns one
// RawUSB and serializes the three PTP transaction phases on top of
// it. It does not serialize concurrent calls itself; the device actor
// (§4.8) is responsible for never issuing overlapping transactions.
type USBLink struct {
	raw     RawUSB
	summary transport.DeviceSummary

	mu       sync.Mutex
	timeouts Timeouts
	opened   bool
	closed   bool

	events      chan *ptp.Container
	eventsDone  chan struct{}
	eventsStart sync.Once
}

// New builds a USBLink around raw, identified by summary for error
// messages and quirk lookups performed by callers.
func New(raw RawUSB, summary transport.DeviceSummary) *USBLink {
	return &USBLink{
		raw:         raw,
		summary:     summary,
		timeouts:    DefaultTimeouts(),
		events:      make(chan *ptp.Container, 32),
		eventsDone:  make(chan struct{}),
	}
}

// SetTimeouts updates the per-phase timeouts used by subsequent
// transactions, letting the actor push a freshly merged policy's
// Tuning down without reopening the link.
func (l *USBLink) SetTimeouts(t Timeouts) {
	l.mu.Lock()
	l.timeouts = t
	l.mu.Unlock()
}

func (l *USBLink) currentTimeouts() Timeouts {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.timeouts
}

// OpenUSBIfNeeded opens the underlying device once and starts the
// event pump; later calls are no-ops.
func (l *USBLink) OpenUSBIfNeeded(ctx context.Context) error {
	l.mu.Lock()
	already := l.opened
	l.opened = true
	l.mu.Unlock()
	if already {
		return nil
	}
	l.eventsStart.Do(func() {
		go l.pumpEvents()
	})
	return nil
}

func (l *USBLink) OpenSession(ctx context.Context, sessionID uint32) error {
	cmd := &ptp.Container{Type: ptp.ContainerCommand, Code: uint16(ptp.OpOpenSession), TxID: 0, Params: []uint32{sessionID}}
	res, err := l.ExecuteCommand(ctx, cmd)
	if err != nil {
		return err
	}
	if ptp.RC(res.Response.Code) != ptp.RCOK && ptp.RC(res.Response.Code) != ptp.RCSessionAlreadyOpen {
		return &unexpectedResponseError{code: ptp.RC(res.Response.Code)}
	}
	return nil
}

func (l *USBLink) CloseSession(ctx context.Context) error {
	cmd := &ptp.Container{Type: ptp.ContainerCommand, Code: uint16(ptp.OpCloseSession), TxID: 0}
	_, err := l.ExecuteCommand(ctx, cmd)
	return err
}

func (l *USBLink) Close() error {
	l.mu.Lock()
	if l.closed {
		l.mu.Unlock()
		return nil
	}
	l.closed = true
	pumpStarted := l.opened
	l.mu.Unlock()
	close(l.eventsDone)
	if !pumpStarted {
		// pumpEvents, which normally closes l.events once it observes
		// eventsDone, was never started.
		close(l.events)
	}
	return l.raw.Close()
}

type unexpectedResponseError struct {
	code ptp.RC
}

func (e *unexpectedResponseError) Error() string {
	return fmt.Sprintf("link: unexpected response code %04x", uint16(e.code))
}

func (l *USBLink) GetDeviceInfo(ctx context.Context) (*ptp.Container, []byte, error) {
	return l.simpleCommand(ctx, ptp.OpGetDeviceInfo)
}

func (l *USBLink) GetStorageIDs(ctx context.Context) (*ptp.Container, []byte, error) {
	return l.simpleCommand(ctx, ptp.OpGetStorageIDs)
}

func (l *USBLink) GetStorageInfo(ctx context.Context, storageID uint32) (*ptp.Container, []byte, error) {
	return l.simpleCommand(ctx, ptp.OpGetStorageInfo, storageID)
}

func (l *USBLink) GetObjectHandles(ctx context.Context, storageID, parent uint32) (*ptp.Container, []byte, error) {
	return l.simpleCommand(ctx, ptp.OpGetObjectHandles, storageID, uint32(ptp.FormatUndefined), parent)
}

func (l *USBLink) GetObjectInfos(ctx context.Context, handles []uint32) (*ptp.Container, [][]byte, error) {
	out := make([][]byte, 0, len(handles))
	var last *ptp.Container
	for _, h := range handles {
		resp, data, err := l.simpleCommand(ctx, ptp.OpGetObjectInfo, h)
		if err != nil {
			return resp, nil, err
		}
		last = resp
		if ptp.RC(resp.Code) != ptp.RCOK {
			return resp, out, nil
		}
		out = append(out, data)
	}
	return last, out, nil
}

func (l *USBLink) simpleCommand(ctx context.Context, op ptp.Op, params ...uint32) (*ptp.Container, []byte, error) {
	cmd := &ptp.Container{Type: ptp.ContainerCommand, Code: uint16(op), Params: params}
	res, err := l.ExecuteCommand(ctx, cmd)
	if err != nil {
		return nil, nil, err
	}
	return res.Response, res.Payload, nil
}

func (l *USBLink) ResetDevice(ctx context.Context) error {
	cmd := &ptp.Container{Type: ptp.ContainerCommand, Code: uint16(ptp.OpResetDevice)}
	_, err := l.ExecuteCommand(ctx, cmd)
	if err != nil {
		return err
	}
	return l.raw.Reset(ctx)
}

func (l *USBLink) DeleteObject(ctx context.Context, handle uint32) (*ptp.Container, error) {
	cmd := &ptp.Container{Type: ptp.ContainerCommand, Code: uint16(ptp.OpDeleteObject), Params: []uint32{handle, 0}}
	res, err := l.ExecuteCommand(ctx, cmd)
	if err != nil {
		return nil, err
	}
	return res.Response, nil
}

func (l *USBLink) MoveObject(ctx context.Context, handle, storageID, parent uint32) (*ptp.Container, error) {
	cmd := &ptp.Container{Type: ptp.ContainerCommand, Code: uint16(ptp.OpMoveObject), Params: []uint32{handle, storageID, parent}}
	res, err := l.ExecuteCommand(ctx, cmd)
	if err != nil {
		return nil, err
	}
	return res.Response, nil
}

// ExecuteCommand runs a command that may or may not carry an implicit
// data-in phase (§4.3): the device signals this by sending a Data
// container, rather than a Response, right after the command. Payload
// above bufferedPayloadLimit is rejected; callers expecting large
// transfers must use ExecuteStreamingCommand instead.
func (l *USBLink) ExecuteCommand(ctx context.Context, cmd *ptp.Container) (transport.ResponseResult, error) {
	if err := l.writeContainer(ctx, transport.PhaseBulkOut, cmd); err != nil {
		return transport.ResponseResult{}, err
	}

	hdr, body, err := l.readContainer(ctx, transport.PhaseResponse)
	if err != nil {
		return transport.ResponseResult{}, err
	}

	if hdr.Type == ptp.ContainerData {
		if len(body) > bufferedPayloadLimit {
			return transport.ResponseResult{}, errPayloadTooLargeForBuffering
		}
		respHdr, _, err := l.readContainer(ctx, transport.PhaseResponse)
		if err != nil {
			return transport.ResponseResult{}, err
		}
		return transport.ResponseResult{Response: respHdr, Payload: body}, nil
	}
	return transport.ResponseResult{Response: hdr}, nil
}

// ExecuteStreamingCommand runs a command whose data phase direction is
// known ahead of time and driven incrementally by dataIn/dataOut
// rather than buffered in memory.
func (l *USBLink) ExecuteStreamingCommand(ctx context.Context, cmd *ptp.Container,
	direction transport.DataPhaseDirection, dataPhaseLength int64,
	dataIn transport.DataInHandler, dataOut transport.DataOutHandler) (transport.ResponseResult, error) {

	if err := l.writeContainer(ctx, transport.PhaseBulkOut, cmd); err != nil {
		return transport.ResponseResult{}, err
	}

	switch direction {
	case transport.DataPhaseOut:
		if err := l.writeDataPhase(ctx, cmd, dataPhaseLength, dataOut); err != nil {
			return transport.ResponseResult{}, err
		}
	case transport.DataPhaseIn:
		payload, err := l.readDataPhase(ctx, dataIn)
		if err != nil {
			return transport.ResponseResult{}, err
		}
		resp, _, err := l.readContainer(ctx, transport.PhaseResponse)
		if err != nil {
			return transport.ResponseResult{}, err
		}
		return transport.ResponseResult{Response: resp, Payload: payload}, nil
	}

	resp, _, err := l.readContainer(ctx, transport.PhaseResponse)
	if err != nil {
		return transport.ResponseResult{}, err
	}
	return transport.ResponseResult{Response: resp}, nil
}

func (l *USBLink) Events() <-chan *ptp.Container {
	return l.events
}

// phaseContext derives a context bounded by both the caller's ctx and
// this phase's timeout, whichever is tighter.
func (l *USBLink) phaseContext(ctx context.Context, phase transport.TimeoutPhase) (context.Context, context.CancelFunc) {
	t := l.currentTimeouts()
	var d time.Duration
	switch phase {
	case transport.PhaseHandshake:
		d = t.Handshake
	case transport.PhaseBulkIn, transport.PhaseBulkOut:
		d = t.IO
	case transport.PhaseResponse:
		d = t.Inactivity
	default:
		d = t.IO
	}
	if d <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, d)
}
