/* swiftmtp - MTP/PTP host-side protocol engine
 *
 * Transfer operations (§4.8): the ones with no dedicated transport.Link
 * method, composed instead from ExecuteCommand / ExecuteStreamingCommand.
 */

package protocol

import (
	"context"

	"github.com/swiftmtp/swiftmtp/ptp"
	"github.com/swiftmtp/swiftmtp/transport"
)

// Standard MTP object property codes the propList ladders request.
const (
	PropStorageID       uint32 = 0xDC01
	PropObjectFormat    uint32 = 0xDC02
	PropObjectSize      uint32 = 0xDC04
	PropObjectFileName  uint32 = 0xDC07
	PropParentObject    uint32 = 0xDC0B
)

// PropGroupAll requests every property GetObjectPropList knows about
// in one call. A narrower request passes one specific property code
// instead, at the cost of one call per code.
const PropGroupAll uint32 = 0xFFFFFFFF

// PropListEntry is one {handle, propertyCode, dataType, value} tuple
// from a decoded GetObjectPropList dataset.
type PropListEntry struct {
	Handle   uint32
	PropCode uint32
	DataType ptp.DataType
	Value    ptp.Value
}

// GetObjectPropList executes 0x9805 against parent (0xFFFFFFFF for
// "all objects in storage") with depth=0 (immediate children only),
// requesting propCode (PropGroupAll for every property in one call,
// or one specific property code for a narrower request), and decodes
// the returned tuple stream.
func GetObjectPropList(ctx context.Context, link transport.Link, txID, storageID, parent, propCode uint32) ([]PropListEntry, error) {
	cmd := &ptp.Container{
		Type:   ptp.ContainerCommand,
		Code:   uint16(ptp.OpGetObjectPropList),
		TxID:   txID,
		Params: []uint32{parent, uint32(ptp.FormatUndefined), propCode, 0, 0},
	}
	res, err := link.ExecuteCommand(ctx, cmd)
	if err != nil {
		return nil, WrapTransportError(err)
	}
	if err := CheckOK(ptp.RC(res.Response.Code)); err != nil {
		return nil, err
	}
	return decodePropList(res.Payload)
}

func decodePropList(data []byte) ([]PropListEntry, error) {
	r := ptp.NewReader(data)
	n, err := r.ArrayCount()
	if err != nil {
		return nil, err
	}
	out := make([]PropListEntry, 0, n)
	for i := 0; i < n; i++ {
		var e PropListEntry
		if e.Handle, err = r.U32(); err != nil {
			return nil, err
		}
		if e.PropCode, err = r.U32(); err != nil {
			return nil, err
		}
		dt, err := r.U16()
		if err != nil {
			return nil, err
		}
		e.DataType = ptp.DataType(dt)
		e.Value, err = ptp.ReadValue(r, e.DataType)
		if err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, nil
}

// AssembleObjectInfos folds a flat PropListEntry stream (as returned
// by the propList5/propList3 rungs) into one ObjectInfoDataset per
// distinct handle. Properties this ladder didn't request are simply
// left at their zero value on the assembled dataset.
func AssembleObjectInfos(entries []PropListEntry) []ptp.ObjectInfoDataset {
	order := make([]uint32, 0)
	byHandle := make(map[uint32]*ptp.ObjectInfoDataset)

	for _, e := range entries {
		ds, ok := byHandle[e.Handle]
		if !ok {
			ds = &ptp.ObjectInfoDataset{}
			byHandle[e.Handle] = ds
			order = append(order, e.Handle)
		}
		switch e.PropCode {
		case PropStorageID:
			ds.StorageID = uint32(e.Value.Uint)
		case PropObjectFormat:
			ds.Format = ptp.ObjectFormat(e.Value.Uint)
		case PropObjectSize:
			ds.Size = uint32(e.Value.Uint)
		case PropObjectFileName:
			ds.Filename = e.Value.Str
		case PropParentObject:
			ds.Parent = uint32(e.Value.Uint)
		}
	}

	out := make([]ptp.ObjectInfoDataset, 0, len(order))
	for _, h := range order {
		out = append(out, *byHandle[h])
	}
	return out
}

// GetPartialObject64 executes 0x95C4, streaming the returned bytes
// into sink and returning the number of bytes transferred.
func GetPartialObject64(ctx context.Context, link transport.Link, txID, handle uint32, offset uint64, length uint32, sink transport.Sink) (uint32, error) {
	cmd := &ptp.Container{
		Type: ptp.ContainerCommand,
		Code: uint16(ptp.OpGetPartialObject64),
		TxID: txID,
		Params: []uint32{handle, uint32(offset & 0xFFFFFFFF), uint32(offset >> 32), length},
	}
	return execPartialRead(ctx, link, cmd, sink)
}

// GetPartialObject executes 0x101B (32-bit offset/length variant).
func GetPartialObject(ctx context.Context, link transport.Link, txID, handle, offset, length uint32) (uint32, []byte, error) {
	cmd := &ptp.Container{
		Type: ptp.ContainerCommand,
		Code: uint16(ptp.OpGetPartialObject),
		TxID: txID,
		Params: []uint32{handle, offset, length},
	}
	res, err := link.ExecuteStreamingCommand(ctx, cmd, transport.DataPhaseIn, int64(length), nil, nil)
	if err != nil {
		return 0, nil, WrapTransportError(err)
	}
	if err := CheckOK(ptp.RC(res.Response.Code)); err != nil {
		return 0, nil, err
	}
	return uint32(len(res.Payload)), res.Payload, nil
}

// GetObject executes 0x1009 (whole object, no offset).
func GetObject(ctx context.Context, link transport.Link, txID, handle uint32, size uint64, sink transport.Sink) (uint64, error) {
	cmd := &ptp.Container{
		Type:   ptp.ContainerCommand,
		Code:   uint16(ptp.OpGetObject),
		TxID:   txID,
		Params: []uint32{handle},
	}
	n, err := execPartialRead(ctx, link, cmd, sink)
	return uint64(n), err
}

func execPartialRead(ctx context.Context, link transport.Link, cmd *ptp.Container, sink transport.Sink) (uint32, error) {
	var transferred uint32
	dataIn := func(buf []byte) (int, error) {
		n, err := sink.Write(buf)
		transferred += uint32(n)
		return n, err
	}
	res, err := link.ExecuteStreamingCommand(ctx, cmd, transport.DataPhaseIn, 0, dataIn, nil)
	if err != nil {
		return transferred, WrapTransportError(err)
	}
	if err := CheckOK(ptp.RC(res.Response.Code)); err != nil {
		return transferred, err
	}
	return transferred, nil
}

// SendObjectInfo executes 0x100C, returning the storage ID and
// object handle the device assigned.
func SendObjectInfo(ctx context.Context, link transport.Link, txID uint32, dataset ptp.ObjectInfoDataset, opts ptp.ObjectInfoEncodeOptions) (storageID, handle uint32, err error) {
	payload := ptp.EncodeObjectInfo(dataset, opts)
	cmd := &ptp.Container{
		Type:   ptp.ContainerCommand,
		Code:   uint16(ptp.OpSendObjectInfo),
		TxID:   txID,
		Params: []uint32{dataset.StorageID, dataset.Parent},
	}
	sent := false
	dataOut := func(buf []byte) (int, error) {
		if sent {
			return 0, nil
		}
		n := copy(buf, payload)
		sent = true
		return n, nil
	}
	res, execErr := link.ExecuteStreamingCommand(ctx, cmd, transport.DataPhaseOut, int64(len(payload)), nil, dataOut)
	if execErr != nil {
		return 0, 0, WrapTransportError(execErr)
	}
	if err := CheckOK(ptp.RC(res.Response.Code)); err != nil {
		return 0, 0, err
	}
	if len(res.Response.Params) >= 3 {
		return res.Response.Params[0], res.Response.Params[2], nil
	}
	return 0, 0, nil
}

// SendObject executes 0x100D, streaming from source until EOF.
func SendObject(ctx context.Context, link transport.Link, txID uint32, source transport.Source, size int64) error {
	cmd := &ptp.Container{
		Type: ptp.ContainerCommand,
		Code: uint16(ptp.OpSendObject),
		TxID: txID,
	}
	dataOut := func(buf []byte) (int, error) {
		return source.Read(buf)
	}
	res, err := link.ExecuteStreamingCommand(ctx, cmd, transport.DataPhaseOut, size, nil, dataOut)
	if err != nil {
		return WrapTransportError(err)
	}
	return CheckOK(ptp.RC(res.Response.Code))
}

// SendPartialObject executes 0x95C1 for one chunk of a large write,
// sending exactly len(chunk) bytes at the given 64-bit offset.
func SendPartialObject(ctx context.Context, link transport.Link, txID, handle uint32, offset uint64, chunk []byte) error {
	cmd := &ptp.Container{
		Type: ptp.ContainerCommand,
		Code: uint16(ptp.OpSendPartialObject),
		TxID: txID,
		Params: []uint32{handle, uint32(offset & 0xFFFFFFFF), uint32(offset >> 32), uint32(len(chunk))},
	}
	sent := false
	dataOut := func(buf []byte) (int, error) {
		if sent {
			return 0, nil
		}
		n := copy(buf, chunk)
		sent = true
		return n, nil
	}
	res, err := link.ExecuteStreamingCommand(ctx, cmd, transport.DataPhaseOut, int64(len(chunk)), nil, dataOut)
	if err != nil {
		return WrapTransportError(err)
	}
	return CheckOK(ptp.RC(res.Response.Code))
}

// DeleteObject executes 0x100B.
func DeleteObject(ctx context.Context, link transport.Link, handle uint32) error {
	resp, err := link.DeleteObject(ctx, handle)
	if err != nil {
		return WrapTransportError(err)
	}
	return CheckOK(ptp.RC(resp.Code))
}

// MoveObject executes 0x1019.
func MoveObject(ctx context.Context, link transport.Link, handle, storageID, parent uint32) error {
	resp, err := link.MoveObject(ctx, handle, storageID, parent)
	if err != nil {
		return WrapTransportError(err)
	}
	return CheckOK(ptp.RC(resp.Code))
}
