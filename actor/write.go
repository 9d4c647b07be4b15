/* swiftmtp - MTP/PTP host-side protocol engine
 *
 * Write path (§4.8): SendObjectInfo + SendObject/SendPartialObject,
 * the send-object retry matrix, and the target ladder fallback.
 */

package actor

import (
	"context"
	"errors"

	"github.com/swiftmtp/swiftmtp/fallback"
	"github.com/swiftmtp/swiftmtp/protocol"
	"github.com/swiftmtp/swiftmtp/ptp"
	"github.com/swiftmtp/swiftmtp/transport"
)

// WriteRequest names the write's target and payload.
type WriteRequest struct {
	StorageID uint32
	Parent    uint32
	Name      string
	Size      uint64
	Format    ptp.ObjectFormat
	Source    transport.Source
}

// Write sanitizes name, then sends parent/name/size/source to the
// device, retrying per the send-object retry matrix on refusal.
// Returns the handle the device assigned.
func (a *Actor) Write(ctx context.Context, req WriteRequest) (uint32, error) {
	name, err := SanitizeName(req.Name)
	if err != nil {
		return 0, err
	}
	req.Name = name

	v, err := a.WithTransaction(ctx, func(ctx context.Context) (any, error) {
		return a.writeLocked(ctx, req)
	})
	if err != nil {
		return 0, err
	}
	return v.(uint32), nil
}

func (a *Actor) writeLocked(ctx context.Context, req WriteRequest) (uint32, error) {
	policy := a.Policy()
	primary := SendObjectParameters{}
	isRoot := req.Parent == 0

	dataset := ptp.ObjectInfoDataset{
		StorageID: req.StorageID,
		Format:    req.Format,
		Size:      uint32(req.Size),
		Parent:    req.Parent,
		Filename:  req.Name,
	}

	handle, err := a.sendOnce(ctx, dataset, primary, req)
	if err == nil {
		return handle, a.verifyAfterWriteLocked(ctx, handle, req.Size)
	}

	class := protocol.ClassifyRetry(err)

	if TransientTransportRetryOnce(class) {
		handle, retryErr := a.sendOnce(ctx, dataset, primary, req)
		if retryErr == nil {
			return handle, a.verifyAfterWriteLocked(ctx, handle, req.Size)
		}
		err = retryErr
	}

	parentPtr := &req.Parent
	rungCtx := RetryContext{
		IsRootParent:                    isRoot,
		AllowUnknownObjectInfoSizeRetry: policy.Flags.AllowUnknownObjectInfoSizeRetry,
		Parent:                          parentPtr,
	}

	var rungs []fallback.Rung[uint32]
	for _, params := range SendObjectRetryParameters(class, primary, rungCtx) {
		params := params
		rungs = append(rungs, fallback.Rung[uint32]{
			Name: "param-retry",
			Run: func(ctx context.Context) (uint32, error) {
				return a.sendOnce(ctx, dataset, params, req)
			},
		})
	}

	if TargetLadderApplies(class, parentPtr) {
		rootDataset := dataset
		rootDataset.Parent = 0
		rungs = append(rungs, fallback.Rung[uint32]{
			Name: "target-root",
			Run: func(ctx context.Context) (uint32, error) {
				return a.sendOnce(ctx, rootDataset, primary, req)
			},
		})
	}

	if len(rungs) == 0 {
		return 0, err
	}

	// On a fully exhausted ladder, surface the original refusal rather
	// than FallbackAllFailed: callers expect the same error taxonomy
	// (InvalidParameter/InvalidObjectHandle/...) regardless of how many
	// rungs were tried.
	result, _, ladderErr := fallback.Run(ctx, rungs)
	if ladderErr != nil {
		return 0, err
	}
	return result, a.verifyAfterWriteLocked(ctx, result, req.Size)
}

func (a *Actor) sendOnce(ctx context.Context, dataset ptp.ObjectInfoDataset, params SendObjectParameters, req WriteRequest) (uint32, error) {
	opts := ptp.ObjectInfoEncodeOptions{
		UseEmptyDates:      params.UseEmptyDates,
		UseUndefinedFormat: params.UseUndefinedObjectFormat,
		UseUnknownSize:     params.UseUnknownObjectInfoSize,
		OmitOptionalFields: params.OmitOptionalObjectInfoFields,
		ZeroParentHandle:   params.ZeroObjectInfoParentHandle,
	}
	if params.UseRootCommandParentHandle {
		dataset.Parent = 0
	}

	infoTxID := a.nextTxID()
	_, handle, err := protocol.SendObjectInfo(ctx, a.Link, infoTxID, dataset, opts)
	if err != nil {
		return 0, err
	}

	policy := a.Policy()
	if policy.Flags.SupportsSendPartialObject && req.Size > uint64(policy.Tuning.MaxChunkBytes) {
		if err := a.sendChunked(ctx, handle, req); err != nil {
			return 0, err
		}
		return handle, nil
	}

	sendTxID := a.nextTxID()
	if err := protocol.SendObject(ctx, a.Link, sendTxID, req.Source, int64(req.Size)); err != nil {
		return 0, err
	}
	return handle, nil
}

func (a *Actor) sendChunked(ctx context.Context, handle uint32, req WriteRequest) error {
	policy := a.Policy()
	chunkSize := int(policy.Tuning.MaxChunkBytes)
	buf := make([]byte, chunkSize)

	var offset uint64
	for offset < req.Size {
		n, err := req.Source.Read(buf)
		if n > 0 {
			txID := a.nextTxID()
			if err := protocol.SendPartialObject(ctx, a.Link, txID, handle, offset, buf[:n]); err != nil {
				return err
			}
			offset += uint64(n)
		}
		if err != nil {
			break
		}
	}
	return nil
}

// VerifyAfterWrite implements the post-write verification rule: if
// the reported size doesn't match expected, it's a VerificationFailed
// error; if the object can't be found at all (the device hides
// just-written objects), verification is skipped silently. It is its
// own transaction, for callers outside an existing WithTransaction
// body; writeLocked calls verifyAfterWriteLocked directly instead,
// since it already holds the queue slot this would otherwise wait on.
func (a *Actor) VerifyAfterWrite(ctx context.Context, handle uint32, expected uint64) error {
	_, err := a.WithTransaction(ctx, func(ctx context.Context) (any, error) {
		return nil, a.verifyAfterWriteLocked(ctx, handle, expected)
	})
	return err
}

func (a *Actor) verifyAfterWriteLocked(ctx context.Context, handle uint32, expected uint64) error {
	if !a.Policy().Flags.VerifyAfterWrite {
		return nil
	}

	infos, err := protocol.GetObjectInfos(ctx, a.Link, []uint32{handle})
	if err != nil {
		if errors.Is(err, protocol.ErrObjectNotFound) {
			return nil
		}
		return err
	}
	if len(infos) == 0 {
		return nil
	}
	actual := protocol.GetObjectSizeU64(infos[0])
	if actual != expected {
		return &protocol.VerificationFailedError{Expected: expected, Actual: actual}
	}
	return nil
}
