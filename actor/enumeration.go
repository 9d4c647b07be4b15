/* swiftmtp - MTP/PTP host-side protocol engine
 *
 * Enumeration ladder (§4.8): propList5 -> propList3 -> handlesThenInfo.
 */

package actor

import (
	"context"
	"errors"

	"github.com/swiftmtp/swiftmtp/fallback"
	"github.com/swiftmtp/swiftmtp/protocol"
	"github.com/swiftmtp/swiftmtp/ptp"
	"github.com/swiftmtp/swiftmtp/quirk"
)

// List enumerates the objects in (storageID, parent), choosing an
// EnumerationStrategy via a fallback ladder. A device that answers
// OperationNotSupported to propList5 has SupportsGetObjectPropList
// disabled on the actor's policy for the remainder of the session,
// and enumeration falls through to handlesThenInfo from then on.
func (a *Actor) List(ctx context.Context, storageID, parent uint32) ([]ptp.ObjectInfoDataset, error) {
	v, err := a.WithTransaction(ctx, func(ctx context.Context) (any, error) {
		return a.listLocked(ctx, storageID, parent)
	})
	if err != nil {
		return nil, err
	}
	return v.([]ptp.ObjectInfoDataset), nil
}

func (a *Actor) listLocked(ctx context.Context, storageID, parent uint32) ([]ptp.ObjectInfoDataset, error) {
	policy := a.Policy()

	var rungs []fallback.Rung[[]ptp.ObjectInfoDataset]

	if policy.Flags.SupportsGetObjectPropList {
		rungs = append(rungs,
			fallback.Rung[[]ptp.ObjectInfoDataset]{
				Name: "propList5",
				Run: func(ctx context.Context) ([]ptp.ObjectInfoDataset, error) {
					return a.enumerateViaPropList(ctx, storageID, parent, nil)
				},
			},
			fallback.Rung[[]ptp.ObjectInfoDataset]{
				Name: "propList3",
				Run: func(ctx context.Context) ([]ptp.ObjectInfoDataset, error) {
					return a.enumerateViaPropList(ctx, storageID, parent, propList3Codes)
				},
			},
		)
	}

	rungs = append(rungs, fallback.Rung[[]ptp.ObjectInfoDataset]{
		Name: "handlesThenInfo",
		Run: func(ctx context.Context) ([]ptp.ObjectInfoDataset, error) {
			return a.enumerateViaHandles(ctx, storageID, parent)
		},
	})

	result, _, err := fallback.Run(ctx, rungs)
	return result, err
}

// propList3Codes is the narrower property set propList3 requests: one
// GetObjectPropList call per code instead of propList5's single
// all-properties call. Format, size and filename are the properties
// worth a device round trip; storage id and parent are already known
// from this call's own storageID/parent arguments and are backfilled
// after assembly rather than requested, which is what makes this rung
// narrower rather than a replay of propList5.
var propList3Codes = []uint32{
	protocol.PropObjectFormat,
	protocol.PropObjectSize,
	protocol.PropObjectFileName,
}

func (a *Actor) enumerateViaPropList(ctx context.Context, storageID, parent uint32, propCodes []uint32) ([]ptp.ObjectInfoDataset, error) {
	codes := propCodes
	if len(codes) == 0 {
		codes = []uint32{protocol.PropGroupAll}
	}

	var entries []protocol.PropListEntry
	for _, code := range codes {
		txID := a.nextTxID()
		batch, err := protocol.GetObjectPropList(ctx, a.Link, txID, storageID, parent, code)
		if err != nil {
			var nse *protocol.NotSupportedError
			if errors.As(err, &nse) {
				a.mutatePolicy(func(p quirk.Policy) quirk.Policy {
					p.Flags.SupportsGetObjectPropList = false
					return p
				})
			}
			return nil, err
		}
		entries = append(entries, batch...)
	}

	out := protocol.AssembleObjectInfos(entries)
	for i := range out {
		out[i].StorageID = storageID
		out[i].Parent = parent
	}
	return out, nil
}

func (a *Actor) enumerateViaHandles(ctx context.Context, storageID, parent uint32) ([]ptp.ObjectInfoDataset, error) {
	handles, err := protocol.GetObjectHandles(ctx, a.Link, storageID, parent)
	if err != nil {
		return nil, err
	}
	if len(handles) == 0 {
		return nil, nil
	}
	return protocol.GetObjectInfos(ctx, a.Link, handles)
}
