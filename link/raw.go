/* swiftmtp - MTP/PTP host-side protocol engine
 *
 * RawUSB (§4.3): the bulk/interrupt I/O primitive Link is built on.
 * Concrete USB stacks (libusb, gousb, platform backends) are out of
 * scope for this module; Link only needs three raw operations.
 */

package link

import "context"

// RawUSB is the minimal device-level I/O surface Link depends on.
// Each method should block until it transfers at least one byte, the
// endpoint stalls, or ctx is cancelled; Link layers its own
// per-phase timeouts on top via ctx.
type RawUSB interface {
	BulkOut(ctx context.Context, p []byte) (int, error)
	BulkIn(ctx context.Context, p []byte) (int, error)

	// InterruptIn reads one event notification, or returns
	// transport.ErrTimeout if none arrived before ctx's deadline. A
	// device with no separate event endpoint may always return
	// transport.ErrTimeout.
	InterruptIn(ctx context.Context, p []byte) (int, error)

	Reset(ctx context.Context) error
	Close() error
}
