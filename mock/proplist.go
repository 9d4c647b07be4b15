/* swiftmtp - MTP/PTP host-side protocol engine
 *
 * ExecuteCommand/ExecuteStreamingCommand: the three-phase transaction
 * surface, including the GetObjectPropList (0x9805) dataset a
 * virtual device assembles from its object store.
 */

package mock

import (
	"context"

	"github.com/swiftmtp/swiftmtp/protocol"
	"github.com/swiftmtp/swiftmtp/ptp"
	"github.com/swiftmtp/swiftmtp/transport"
)

// propTuple is one {handle, propCode, dataType, value} row before it
// is serialized onto the wire.
type propTuple struct {
	handle   uint32
	propCode uint32
	dataType ptp.DataType
	u32      uint32
	str      string
}

// encodePropList renders every object under (storageID, parent) as a
// flat stream of {handle, propCode, dataType, value} tuples. propCode
// selects which properties are included: protocol.PropGroupAll for
// all five actor.AssembleObjectInfos understands, or one specific
// property code for a narrower request (propList3's rung issues one
// such call per code it wants).
func (d *Device) encodePropList(storageID, parent, propCode uint32) []byte {
	children := d.childrenOf(storageID, parent)

	var tuples []propTuple
	for _, obj := range children {
		ds := obj.dataset
		tuples = append(tuples,
			propTuple{obj.handle, protocol.PropStorageID, ptp.DataTypeU32, ds.StorageID, ""},
			propTuple{obj.handle, protocol.PropObjectFormat, ptp.DataTypeU32, uint32(ds.Format), ""},
			propTuple{obj.handle, protocol.PropObjectSize, ptp.DataTypeU32, ds.Size, ""},
			propTuple{obj.handle, protocol.PropParentObject, ptp.DataTypeU32, ds.Parent, ""},
			propTuple{obj.handle, protocol.PropObjectFileName, ptp.DataTypeString, 0, ds.Filename},
		)
	}

	if propCode != protocol.PropGroupAll {
		narrowed := tuples[:0]
		for _, t := range tuples {
			if t.propCode == propCode {
				narrowed = append(narrowed, t)
			}
		}
		tuples = narrowed
	}

	w := ptp.NewWriter()
	w.PutU32(uint32(len(tuples)))
	for _, t := range tuples {
		w.PutU32(t.handle)
		w.PutU32(t.propCode)
		w.PutU16(uint16(t.dataType))
		if t.dataType == ptp.DataTypeString {
			w.PutPTPString(t.str)
		} else {
			w.PutU32(t.u32)
		}
	}
	return w.Bytes()
}

// ExecuteCommand handles every command with no data phase. The only
// one a virtual device models richly is GetObjectPropList; anything
// else not otherwise driven through the typed Link methods above
// succeeds trivially, honoring injected faults.
func (d *Device) ExecuteCommand(ctx context.Context, cmd *ptp.Container) (transport.ResponseResult, error) {
	op := ptp.Op(cmd.Code)

	resp, err, short := d.responseFor(op, ptp.RCOK)
	if short {
		return transport.ResponseResult{}, err
	}

	if op == ptp.OpGetObjectPropList && ptp.RC(resp.Code) == ptp.RCOK {
		parent := cmd.Params[0]
		propCode := protocol.PropGroupAll
		if len(cmd.Params) > 2 {
			propCode = cmd.Params[2]
		}
		storageID := uint32(0)
		if children := d.objectsSharingParent(parent); len(children) > 0 {
			storageID = children[0].dataset.StorageID
		}
		return transport.ResponseResult{Response: resp, Payload: d.encodePropList(storageID, parent, propCode)}, nil
	}

	return transport.ResponseResult{Response: resp}, nil
}

// objectsSharingParent returns every object whose dataset.Parent
// equals parent, regardless of storage id, used to recover the
// storage id a GetObjectPropList call didn't pin down explicitly
// (PTP allows 0xFFFFFFFF storage meaning "any").
func (d *Device) objectsSharingParent(parent uint32) []*object {
	d.mu.Lock()
	defer d.mu.Unlock()
	var out []*object
	for _, obj := range d.objects {
		if obj.dataset.Parent == parent {
			out = append(out, obj)
		}
	}
	return out
}

// ExecuteStreamingCommand handles the data-phase commands: object
// upload/download and their partial variants.
func (d *Device) ExecuteStreamingCommand(ctx context.Context, cmd *ptp.Container,
	direction transport.DataPhaseDirection, dataPhaseLength int64,
	dataIn transport.DataInHandler, dataOut transport.DataOutHandler) (transport.ResponseResult, error) {

	op := ptp.Op(cmd.Code)

	resp, err, short := d.responseFor(op, ptp.RCOK)
	if short {
		return transport.ResponseResult{}, err
	}
	if ptp.RC(resp.Code) != ptp.RCOK {
		return transport.ResponseResult{Response: resp}, nil
	}

	switch op {
	case ptp.OpSendObjectInfo:
		return d.handleSendObjectInfo(cmd, dataOut)
	case ptp.OpSendObject, ptp.OpSendPartialObject:
		return d.handleSendData(cmd, dataOut)
	case ptp.OpGetObject:
		return d.handleGetObject(cmd, dataIn)
	case ptp.OpGetPartialObject:
		return d.handleGetPartial(cmd.Params[0], uint64(cmd.Params[1]), cmd.Params[2], dataIn)
	case ptp.OpGetPartialObject64:
		offset := uint64(cmd.Params[1]) | uint64(cmd.Params[2])<<32
		return d.handleGetPartial(cmd.Params[0], offset, cmd.Params[3], dataIn)
	}

	return transport.ResponseResult{Response: resp}, nil
}

func (d *Device) handleSendObjectInfo(cmd *ptp.Container, dataOut transport.DataOutHandler) (transport.ResponseResult, error) {
	var buf []byte
	if dataOut != nil {
		chunk := make([]byte, 4096)
		for {
			n, err := dataOut(chunk)
			if n > 0 {
				buf = append(buf, chunk[:n]...)
			}
			if n == 0 || err != nil {
				break
			}
		}
	}
	ds, err := ptp.DecodeObjectInfo(buf)
	if err != nil {
		return transport.ResponseResult{Response: &ptp.Container{Code: uint16(ptp.RCInvalidDatasetFormat)}}, nil
	}

	storageID := uint32(0)
	if len(cmd.Params) > 0 {
		storageID = cmd.Params[0]
	}
	parent := uint32(0)
	if len(cmd.Params) > 1 {
		parent = cmd.Params[1]
	}

	handle := d.AddObject(storageID, parent, ds, nil)
	resp := &ptp.Container{Code: uint16(ptp.RCOK), Params: []uint32{storageID, parent, handle}}
	return transport.ResponseResult{Response: resp}, nil
}

func (d *Device) handleSendData(cmd *ptp.Container, dataOut transport.DataOutHandler) (transport.ResponseResult, error) {
	handle := cmd.Params[0]
	var buf []byte
	if dataOut != nil {
		chunk := make([]byte, 65536)
		for {
			n, err := dataOut(chunk)
			if n > 0 {
				buf = append(buf, chunk[:n]...)
			}
			if n == 0 || err != nil {
				break
			}
		}
	}

	d.mu.Lock()
	if obj, ok := d.objects[handle]; ok {
		obj.payload = append(obj.payload, buf...)
		obj.dataset.Size = uint32(len(obj.payload))
	}
	d.mu.Unlock()

	return transport.ResponseResult{Response: &ptp.Container{Code: uint16(ptp.RCOK)}}, nil
}

func (d *Device) handleGetObject(cmd *ptp.Container, dataIn transport.DataInHandler) (transport.ResponseResult, error) {
	handle := cmd.Params[0]
	obj, ok := d.objectByHandle(handle)
	if !ok {
		return transport.ResponseResult{Response: &ptp.Container{Code: uint16(ptp.RCInvalidObjectHandle)}}, nil
	}
	if dataIn != nil {
		dataIn(obj.payload)
	}
	return transport.ResponseResult{Response: &ptp.Container{Code: uint16(ptp.RCOK)}, Payload: obj.payload}, nil
}

func (d *Device) handleGetPartial(handle uint32, offset uint64, length uint32, dataIn transport.DataInHandler) (transport.ResponseResult, error) {
	obj, ok := d.objectByHandle(handle)
	if !ok {
		return transport.ResponseResult{Response: &ptp.Container{Code: uint16(ptp.RCInvalidObjectHandle)}}, nil
	}
	if offset > uint64(len(obj.payload)) {
		return transport.ResponseResult{Response: &ptp.Container{Code: uint16(ptp.RCInvalidParameter)}}, nil
	}
	end := offset + uint64(length)
	if end > uint64(len(obj.payload)) {
		end = uint64(len(obj.payload))
	}
	payload := obj.payload[offset:end]
	if dataIn != nil {
		dataIn(payload)
	}
	return transport.ResponseResult{Response: &ptp.Container{Code: uint16(ptp.RCOK)}, Payload: payload}, nil
}
