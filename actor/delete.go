/* swiftmtp - MTP/PTP host-side protocol engine
 *
 * Delete (§4.8): recursive=true walks depth-first, surfacing failures
 * only after the whole traversal completes.
 */

package actor

import (
	"context"
	"fmt"

	"github.com/swiftmtp/swiftmtp/protocol"
)

// DeleteFailedError reports every handle that failed to delete
// during a recursive delete, after the traversal finished.
type DeleteFailedError struct {
	Failures map[uint32]error
}

func (e *DeleteFailedError) Error() string {
	return fmt.Sprintf("actor: %d object(s) failed to delete", len(e.Failures))
}

// Delete removes handle. When recursive is true, it first walks the
// object's children depth-first and deletes them before the object
// itself; every sub-delete failure is recorded but does not abort
// the traversal, and is surfaced together as DeleteFailedError only
// once the whole walk completes.
func (a *Actor) Delete(ctx context.Context, storageID, handle uint32, recursive bool) error {
	_, err := a.WithTransaction(ctx, func(ctx context.Context) (any, error) {
		if !recursive {
			return nil, protocol.DeleteObject(ctx, a.Link, handle)
		}

		failures := make(map[uint32]error)
		a.deleteRecursive(ctx, storageID, handle, failures)
		if len(failures) > 0 {
			return nil, &DeleteFailedError{Failures: failures}
		}
		return nil, nil
	})
	return err
}

func (a *Actor) deleteRecursive(ctx context.Context, storageID, handle uint32, failures map[uint32]error) {
	children, err := protocol.GetObjectHandles(ctx, a.Link, storageID, handle)
	if err == nil {
		for _, child := range children {
			a.deleteRecursive(ctx, storageID, child, failures)
		}
	}
	if delErr := protocol.DeleteObject(ctx, a.Link, handle); delErr != nil {
		failures[handle] = delErr
	}
}
