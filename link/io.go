/* swiftmtp - MTP/PTP host-side protocol engine
 *
 * Raw container I/O: encode/decode plus the zero-size-read backoff
 * loop a real bulk endpoint needs.
 */

package link

import (
	"context"
	"errors"
	"io"
	"time"

	"github.com/swiftmtp/swiftmtp/ptp"
	"github.com/swiftmtp/swiftmtp/transport"
)

const containerHeaderSize = 12

const (
	readChunkSize  = 1 << 16
	writeChunkSize = 1 << 16

	readBackoffMin = 10 * time.Millisecond
	readBackoffMax = 1 * time.Second
)

// peekHeader decodes the fixed 12-byte prefix without touching any
// trailing parameter or payload bytes.
func peekHeader(buf []byte) (length uint32, typ ptp.ContainerType, code uint16, txid uint32) {
	r := ptp.NewReader(buf[:containerHeaderSize])
	length, _ = r.U32()
	t, _ := r.U16()
	code, _ = r.U16()
	txid, _ = r.U32()
	return length, ptp.ContainerType(t), code, txid
}

// writeContainer encodes and writes a Command/Response-shaped
// container with no following data phase.
func (l *USBLink) writeContainer(ctx context.Context, phase transport.TimeoutPhase, c *ptp.Container) error {
	pctx, cancel := l.phaseContext(ctx, phase)
	defer cancel()
	return l.writeAll(pctx, phase, c.Encode())
}

// readContainer reads one full container (header plus however many
// trailing bytes its declared length calls for), classifying it as a
// Data container (raw payload returned, unparsed) or any other kind
// (parsed via ptp.ParseContainer, payload is nil since its trailing
// bytes are u32 params already captured on the returned Container).
func (l *USBLink) readContainer(ctx context.Context, phase transport.TimeoutPhase) (*ptp.Container, []byte, error) {
	pctx, cancel := l.phaseContext(ctx, phase)
	defer cancel()

	header, err := l.readRaw(pctx, phase, containerHeaderSize)
	if err != nil {
		return nil, nil, err
	}

	length, typ, code, txid := peekHeader(header)
	remaining := int(length) - containerHeaderSize
	if remaining < 0 {
		remaining = 0
	}
	if typ == ptp.ContainerData && remaining > bufferedPayloadLimit {
		return nil, nil, errPayloadTooLargeForBuffering
	}

	var rest []byte
	if remaining > 0 {
		rest, err = l.readRaw(pctx, phase, remaining)
		if err != nil {
			return nil, nil, err
		}
	}

	if typ == ptp.ContainerData {
		return &ptp.Container{Type: typ, Code: code, TxID: txid}, rest, nil
	}

	full := make([]byte, 0, len(header)+len(rest))
	full = append(full, header...)
	full = append(full, rest...)
	c, err := ptp.ParseContainer(full)
	if err != nil {
		return nil, nil, err
	}
	return c, nil, nil
}

// writeDataPhase writes a Data container's 12-byte header, then drains
// dataOut into the endpoint until it reports io.EOF or a zero-length,
// nil-error result.
func (l *USBLink) writeDataPhase(ctx context.Context, cmd *ptp.Container, length int64, dataOut transport.DataOutHandler) error {
	pctx, cancel := l.phaseContext(ctx, transport.PhaseBulkOut)
	defer cancel()

	w := ptp.NewWriter()
	w.PutU32(dataContainerLength(length))
	w.PutU16(uint16(ptp.ContainerData))
	w.PutU16(cmd.Code)
	w.PutU32(cmd.TxID)
	if err := l.writeAll(pctx, transport.PhaseBulkOut, w.Bytes()); err != nil {
		return err
	}

	if dataOut == nil {
		return nil
	}
	chunk := make([]byte, writeChunkSize)
	for {
		n, err := dataOut(chunk)
		if n > 0 {
			if werr := l.writeAll(pctx, transport.PhaseBulkOut, chunk[:n]); werr != nil {
				return werr
			}
		}
		if err != nil {
			if errors.Is(err, io.EOF) {
				return nil
			}
			return err
		}
		if n == 0 {
			return nil
		}
	}
}

// readDataPhase reads the Data container header that must follow a
// command with a data-in phase, then either buffers the whole payload
// (dataIn == nil, bounded by bufferedPayloadLimit) or streams it
// through dataIn in readChunkSize pieces.
func (l *USBLink) readDataPhase(ctx context.Context, dataIn transport.DataInHandler) ([]byte, error) {
	pctx, cancel := l.phaseContext(ctx, transport.PhaseBulkIn)
	defer cancel()

	header, err := l.readRaw(pctx, transport.PhaseBulkIn, containerHeaderSize)
	if err != nil {
		return nil, err
	}
	length, typ, _, _ := peekHeader(header)
	if typ != ptp.ContainerData {
		return nil, &unexpectedContainerError{want: ptp.ContainerData, got: typ}
	}
	if length == 0xFFFFFFFF {
		return nil, errUnknownLengthDataPhase
	}
	remaining := int64(length) - containerHeaderSize
	if remaining < 0 {
		remaining = 0
	}

	if dataIn == nil {
		if remaining > bufferedPayloadLimit {
			return nil, errPayloadTooLargeForBuffering
		}
		return l.readRaw(pctx, transport.PhaseBulkIn, int(remaining))
	}

	chunk := make([]byte, readChunkSize)
	for remaining > 0 {
		want := int64(len(chunk))
		if want > remaining {
			want = remaining
		}
		n, rerr := l.boundedRead(pctx, chunk[:want])
		if n > 0 {
			if _, werr := dataIn(chunk[:n]); werr != nil {
				return nil, werr
			}
			remaining -= int64(n)
		}
		if rerr != nil {
			return nil, l.timeoutOrIOError(transport.PhaseBulkIn, rerr)
		}
	}
	return nil, nil
}

type unexpectedContainerError struct {
	want, got ptp.ContainerType
}

func (e *unexpectedContainerError) Error() string {
	return "link: expected " + e.want.String() + " container, got " + e.got.String()
}

var errUnknownLengthDataPhase = errors.New("link: data phase declared an unknown (streaming) length, unsupported for reads")

// dataContainerLength computes the wire length field for a Data
// container whose payload is payloadLen bytes, falling back to the
// MTP "unknown length" sentinel 0xFFFFFFFF when the true total
// doesn't fit (or isn't known, payloadLen < 0).
func dataContainerLength(payloadLen int64) uint32 {
	if payloadLen < 0 {
		return 0xFFFFFFFF
	}
	total := int64(containerHeaderSize) + payloadLen
	if total > 0xFFFFFFFF {
		return 0xFFFFFFFF
	}
	return uint32(total)
}

// readRaw reads exactly n bytes, retrying zero-size reads with
// exponential backoff (mirroring the teacher's usbConn.Read loop)
// until ctx expires.
func (l *USBLink) readRaw(ctx context.Context, phase transport.TimeoutPhase, n int) ([]byte, error) {
	if n == 0 {
		return nil, nil
	}
	buf := make([]byte, 0, n)
	chunk := make([]byte, readChunkSize)
	for len(buf) < n {
		want := n - len(buf)
		if want > len(chunk) {
			want = len(chunk)
		}
		read, err := l.boundedRead(ctx, chunk[:want])
		if read > 0 {
			buf = append(buf, chunk[:read]...)
		}
		if err != nil {
			return nil, l.timeoutOrIOError(phase, err)
		}
	}
	return buf, nil
}

// boundedRead issues one BulkIn call, retrying with exponential
// backoff (capped at readBackoffMax) on zero-size, no-error reads,
// which some controllers produce spuriously under load.
func (l *USBLink) boundedRead(ctx context.Context, buf []byte) (int, error) {
	backoff := readBackoffMin
	for {
		if err := ctx.Err(); err != nil {
			return 0, err
		}
		n, err := l.raw.BulkIn(ctx, buf)
		if n > 0 || err != nil {
			return n, err
		}
		select {
		case <-time.After(backoff):
		case <-ctx.Done():
			return 0, ctx.Err()
		}
		backoff *= 2
		if backoff > readBackoffMax {
			backoff = readBackoffMax
		}
	}
}

// writeAll drains buf via BulkOut, retrying zero-size, no-error writes
// with the same backoff boundedRead uses.
func (l *USBLink) writeAll(ctx context.Context, phase transport.TimeoutPhase, buf []byte) error {
	backoff := readBackoffMin
	for len(buf) > 0 {
		if err := ctx.Err(); err != nil {
			return l.timeoutOrIOError(phase, err)
		}
		n, err := l.raw.BulkOut(ctx, buf)
		if n > 0 {
			buf = buf[n:]
			backoff = readBackoffMin
			continue
		}
		if err != nil {
			return l.timeoutOrIOError(phase, err)
		}
		select {
		case <-time.After(backoff):
		case <-ctx.Done():
			return l.timeoutOrIOError(phase, ctx.Err())
		}
		backoff *= 2
		if backoff > readBackoffMax {
			backoff = readBackoffMax
		}
	}
	return nil
}

// timeoutOrIOError classifies a raw-I/O failure into the taxonomy
// transport.Link callers expect: context expiry becomes a
// phase-scoped timeout, already-typed transport errors pass through
// unchanged, anything else becomes a generic IOError.
func (l *USBLink) timeoutOrIOError(phase transport.TimeoutPhase, err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return &transport.TimeoutInPhaseError{Phase: phase}
	}
	switch {
	case errors.Is(err, transport.ErrNoDevice), errors.Is(err, transport.ErrAccessDenied),
		errors.Is(err, transport.ErrBusy), errors.Is(err, transport.ErrTimeout),
		errors.Is(err, transport.ErrStall):
		return err
	}
	var tip *transport.TimeoutInPhaseError
	var ioe *transport.IOError
	if errors.As(err, &tip) || errors.As(err, &ioe) {
		return err
	}
	return &transport.IOError{Message: err.Error()}
}
