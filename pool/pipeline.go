/* swiftmtp - MTP/PTP host-side protocol engine
 *
 * Pipelined transfers (§4.10): a read task and a send/receive task
 * overlap via a depth-2 buffer pool, so the bus stays busy while the
 * next chunk is being prepared.
 */

package pool

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/swiftmtp/swiftmtp/transport"
)

// TransferMetrics reports a completed pipelined transfer.
type TransferMetrics struct {
	BytesTransferred int64
	Duration         time.Duration
}

// PipelinedUpload reads from a Source on one task and calls SendChunk
// on another, overlapping the two via Pool (expected depth 2).
type PipelinedUpload struct {
	Pool      *BufferPool
	ChunkSize int
}

// SendChunkFunc delivers one chunk of at most ChunkSize bytes.
type SendChunkFunc func(ctx context.Context, buf []byte, count int) error

// Run drives source to completion, returning once every byte has been
// read and sent (or an error interrupts the pipeline). onProgress, if
// non-nil, is called after each chunk is sent with the cumulative
// byte count.
func (u *PipelinedUpload) Run(ctx context.Context, source transport.Source, totalSize int64, sendChunk SendChunkFunc, onProgress func(sent int64)) (TransferMetrics, error) {
	start := time.Now()

	type readChunk struct {
		buf []byte
		n   int
	}
	chunks := make(chan readChunk, 1)

	eg, egCtx := errgroup.WithContext(ctx)

	eg.Go(func() error {
		defer close(chunks)
		for {
			buf, err := u.Pool.Acquire(egCtx)
			if err != nil {
				return err
			}

			limit := u.ChunkSize
			if limit <= 0 || limit > cap(buf) {
				limit = cap(buf)
			}

			n, readErr := source.Read(buf[:limit])
			if n > 0 {
				select {
				case chunks <- readChunk{buf: buf, n: n}:
				case <-egCtx.Done():
					u.Pool.Release(buf)
					return egCtx.Err()
				}
			} else {
				u.Pool.Release(buf)
			}

			if readErr != nil {
				if errors.Is(readErr, io.EOF) {
					return nil
				}
				return readErr
			}
		}
	})

	var sent int64
	eg.Go(func() error {
		for c := range chunks {
			err := sendChunk(egCtx, c.buf[:c.n], c.n)
			u.Pool.Release(c.buf)
			if err != nil {
				return err
			}
			sent += int64(c.n)
			if onProgress != nil {
				onProgress(sent)
			}
		}
		return nil
	})

	err := eg.Wait()
	metrics := TransferMetrics{BytesTransferred: sent, Duration: time.Since(start)}
	if err != nil {
		return metrics, err
	}
	if sent != totalSize {
		return metrics, fmt.Errorf("pool: upload sent %d bytes, want %d", sent, totalSize)
	}
	return metrics, nil
}

// PipelinedDownload receives chunks on one task and writes them to a
// Sink on another, finalizing with an atomic rename once the last
// byte lands.
type PipelinedDownload struct {
	Pool      *BufferPool
	ChunkSize int
}

// ReceiveChunkFunc fills buf with up to max bytes, returning the
// count actually received. A count of 0 with a nil error means no
// more data is coming.
type ReceiveChunkFunc func(ctx context.Context, buf []byte, max int) (int, error)

// Run receives into dest (opened at tempPath) until totalSize bytes
// have landed, then replaces finalPath with tempPath via replace.
func (d *PipelinedDownload) Run(ctx context.Context, dest transport.Sink, totalSize int64, receiveChunk ReceiveChunkFunc, tempPath, finalPath string, replace transport.AtomicReplace, onProgress func(received int64)) (TransferMetrics, error) {
	start := time.Now()

	type recvChunk struct {
		buf []byte
		n   int
	}
	chunks := make(chan recvChunk, 1)

	eg, egCtx := errgroup.WithContext(ctx)

	eg.Go(func() error {
		defer close(chunks)
		var received int64
		for received < totalSize {
			buf, err := d.Pool.Acquire(egCtx)
			if err != nil {
				return err
			}

			limit := d.ChunkSize
			if limit <= 0 || limit > cap(buf) {
				limit = cap(buf)
			}
			if remaining := totalSize - received; int64(limit) > remaining {
				limit = int(remaining)
			}

			n, err := receiveChunk(egCtx, buf[:limit], limit)
			if n > 0 {
				select {
				case chunks <- recvChunk{buf: buf, n: n}:
					received += int64(n)
				case <-egCtx.Done():
					d.Pool.Release(buf)
					return egCtx.Err()
				}
			} else {
				d.Pool.Release(buf)
				if err == nil {
					return nil
				}
			}
			if err != nil {
				return err
			}
		}
		return nil
	})

	var received int64
	eg.Go(func() error {
		for c := range chunks {
			_, err := dest.Write(c.buf[:c.n])
			d.Pool.Release(c.buf)
			if err != nil {
				return err
			}
			received += int64(c.n)
			if onProgress != nil {
				onProgress(received)
			}
		}
		return nil
	})

	err := eg.Wait()
	metrics := TransferMetrics{BytesTransferred: received, Duration: time.Since(start)}
	if closeErr := dest.Close(); err == nil {
		err = closeErr
	}
	if err != nil {
		return metrics, err
	}
	if received != totalSize {
		return metrics, fmt.Errorf("pool: download received %d bytes, want %d", received, totalSize)
	}
	if replaceErr := replace(tempPath, finalPath); replaceErr != nil {
		return metrics, replaceErr
	}
	return metrics, nil
}
