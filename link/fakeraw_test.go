/* swiftmtp - MTP/PTP host-side protocol engine
 *
 * A scriptable RawUSB fake: BulkIn serves bytes out of one
 * concatenated inbound stream, chopped however the caller's buffer
 * size dictates, mirroring how a real bulk endpoint hands back
 * however many bytes happen to be ready.
 */

package link

import (
	"context"

	"github.com/swiftmtp/swiftmtp/transport"
)

type fakeRaw struct {
	stream []byte
	pos    int

	leadingZeroReads int
	stallWrites      bool

	interruptStream []byte
	interruptPos    int

	writes [][]byte
}

func (f *fakeRaw) BulkOut(ctx context.Context, p []byte) (int, error) {
	if f.stallWrites {
		return 0, nil
	}
	cp := append([]byte(nil), p...)
	f.writes = append(f.writes, cp)
	return len(p), nil
}

func (f *fakeRaw) BulkIn(ctx context.Context, p []byte) (int, error) {
	if f.leadingZeroReads > 0 {
		f.leadingZeroReads--
		return 0, nil
	}
	if f.pos >= len(f.stream) {
		return 0, transport.ErrTimeout
	}
	n := copy(p, f.stream[f.pos:])
	f.pos += n
	return n, nil
}

func (f *fakeRaw) InterruptIn(ctx context.Context, p []byte) (int, error) {
	if f.interruptPos >= len(f.interruptStream) {
		return 0, transport.ErrTimeout
	}
	n := copy(p, f.interruptStream[f.interruptPos:])
	f.interruptPos += n
	return n, nil
}

func (f *fakeRaw) Reset(ctx context.Context) error { return nil }
func (f *fakeRaw) Close() error                    { return nil }
