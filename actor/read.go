/* swiftmtp - MTP/PTP host-side protocol engine
 *
 * Read ladder (§4.8): partial64 -> partial32 -> wholeObject, plus
 * resumable-download support.
 */

package actor

import (
	"context"
	"io"
	"math"

	"github.com/swiftmtp/swiftmtp/fallback"
	"github.com/swiftmtp/swiftmtp/protocol"
	"github.com/swiftmtp/swiftmtp/transport"
)

// Read transfers length bytes of handle starting at offset into
// sink, choosing a ReadStrategy via a fallback ladder.
func (a *Actor) Read(ctx context.Context, handle uint32, offset uint64, length uint32, sink transport.Sink) (uint32, error) {
	v, err := a.WithTransaction(ctx, func(ctx context.Context) (any, error) {
		return a.readLocked(ctx, handle, offset, length, sink)
	})
	if err != nil {
		return 0, err
	}
	return v.(uint32), nil
}

func (a *Actor) readLocked(ctx context.Context, handle uint32, offset uint64, length uint32, sink transport.Sink) (uint32, error) {
	policy := a.Policy()
	fitsU32 := offset <= math.MaxUint32

	var rungs []fallback.Rung[uint32]

	if policy.Flags.SupportsGetPartialObject64 {
		rungs = append(rungs, fallback.Rung[uint32]{
			Name: "partial64",
			Run: func(ctx context.Context) (uint32, error) {
				txID := a.nextTxID()
				return protocol.GetPartialObject64(ctx, a.Link, txID, handle, offset, length, sink)
			},
		})
	}

	if fitsU32 {
		rungs = append(rungs, fallback.Rung[uint32]{
			Name: "partial32",
			Run: func(ctx context.Context) (uint32, error) {
				txID := a.nextTxID()
				n, payload, err := protocol.GetPartialObject(ctx, a.Link, txID, handle, uint32(offset), length)
				if err != nil {
					return 0, err
				}
				if _, werr := sink.Write(payload); werr != nil {
					return 0, werr
				}
				return n, nil
			},
		})
	}

	rungs = append(rungs, fallback.Rung[uint32]{
		Name: "wholeObject",
		Run: func(ctx context.Context) (uint32, error) {
			txID := a.nextTxID()
			n, err := protocol.GetObject(ctx, a.Link, txID, handle, uint64(length), sink)
			return uint32(n), err
		},
	})

	result, _, err := fallback.Run(ctx, rungs)
	return result, err
}

// ResumeState describes a partially downloaded temp file: its
// current length, the object's full size, and the sink to append
// further bytes to.
type ResumeState struct {
	Handle    uint32
	FullSize  uint64
	Written   uint64 // length of the existing temp file
	Sink      transport.Sink
}

// ResumeDownload requests the remaining [Written, FullSize) range, in
// reads of at most math.MaxUint32 bytes each, and appends it to
// state.Sink, then invokes replace to atomically install the temp file
// as final. replace is called only once the full remainder has been
// appended successfully; a read that returns no bytes fails with
// io.ErrUnexpectedEOF.
func (a *Actor) ResumeDownload(ctx context.Context, state ResumeState, replace func() error) error {
	written := state.Written
	for written < state.FullSize {
		chunk := state.FullSize - written
		if chunk > math.MaxUint32 {
			chunk = math.MaxUint32
		}
		n, err := a.Read(ctx, state.Handle, written, uint32(chunk), state.Sink)
		if err != nil {
			return err
		}
		if n == 0 {
			return io.ErrUnexpectedEOF
		}
		written += uint64(n)
	}
	return replace()
}
