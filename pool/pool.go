/* swiftmtp - MTP/PTP host-side protocol engine
 *
 * Buffer pool (§4.10): pool_depth fixed-size scratch buffers handed
 * out via a buffered channel, the same shape teacher's usbConnGet /
 * conn.put use for USB connections.
 */

package pool

import (
	"context"
	"errors"
)

// ErrClosed is returned by Acquire once Close has run.
var ErrClosed = errors.New("pool: closed")

// BufferPool pre-allocates poolDepth buffers of bufferSize bytes.
// Acquire blocks until one is available or ctx is cancelled; Release
// returns it for reuse.
type BufferPool struct {
	bufferSize int
	bufs       chan []byte
	closed     chan struct{}
}

// New pre-allocates poolDepth buffers of bufferSize bytes.
func New(bufferSize, poolDepth int) *BufferPool {
	p := &BufferPool{
		bufferSize: bufferSize,
		bufs:       make(chan []byte, poolDepth),
		closed:     make(chan struct{}),
	}
	for i := 0; i < poolDepth; i++ {
		p.bufs <- make([]byte, bufferSize)
	}
	return p
}

// BufferSize returns the fixed size of every buffer in the pool.
func (p *BufferPool) BufferSize() int { return p.bufferSize }

// Acquire returns a buffer of BufferSize bytes, blocking if the pool
// is currently empty.
func (p *BufferPool) Acquire(ctx context.Context) ([]byte, error) {
	select {
	case buf := <-p.bufs:
		return buf, nil
	case <-p.closed:
		return nil, ErrClosed
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// Release returns buf to the pool for reuse. buf must have been
// obtained from this pool's Acquire.
func (p *BufferPool) Release(buf []byte) {
	select {
	case p.bufs <- buf[:cap(buf)]:
	case <-p.closed:
	}
}

// Close frees every buffer exactly once: outstanding Acquire calls
// return ErrClosed, and buffers already checked out are simply
// dropped (left to the garbage collector) as Release observes closed
// rather than blocking forever on a full channel.
func (p *BufferPool) Close() {
	select {
	case <-p.closed:
		return
	default:
		close(p.closed)
	}
}
