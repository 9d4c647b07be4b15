/* swiftmtp - MTP/PTP host-side protocol engine
 *
 * A scriptable transport.Link fake shared by the ladder tests below.
 */

package actor

import (
	"context"

	"github.com/swiftmtp/swiftmtp/ptp"
	"github.com/swiftmtp/swiftmtp/transport"
)

type fakeLink struct {
	handles       map[uint32][]uint32 // parent -> children
	infos         map[uint32]ptp.ObjectInfoDataset
	propListCode  ptp.RC
	propListData  []byte
	deleteErr     map[uint32]error
	nextHandle    uint32
	sendInfoResp  *ptp.Container
	partialPayload []byte
	sendErr       error
	failOps       map[ptp.Op]bool
	deleted       map[uint32]bool
}

func newFakeLink() *fakeLink {
	return &fakeLink{
		handles:   make(map[uint32][]uint32),
		infos:     make(map[uint32]ptp.ObjectInfoDataset),
		deleteErr: make(map[uint32]error),
		deleted:   make(map[uint32]bool),
	}
}

func (f *fakeLink) OpenUSBIfNeeded(ctx context.Context) error                 { return nil }
func (f *fakeLink) OpenSession(ctx context.Context, id uint32) error          { return nil }
func (f *fakeLink) CloseSession(ctx context.Context) error                    { return nil }
func (f *fakeLink) Close() error                                              { return nil }
func (f *fakeLink) GetDeviceInfo(ctx context.Context) (*ptp.Container, []byte, error) {
	return &ptp.Container{Code: uint16(ptp.RCOK)}, nil, nil
}
func (f *fakeLink) GetStorageIDs(ctx context.Context) (*ptp.Container, []byte, error) {
	return &ptp.Container{Code: uint16(ptp.RCOK)}, nil, nil
}
func (f *fakeLink) GetStorageInfo(ctx context.Context, id uint32) (*ptp.Container, []byte, error) {
	return &ptp.Container{Code: uint16(ptp.RCOK)}, nil, nil
}

func (f *fakeLink) GetObjectHandles(ctx context.Context, storageID, parent uint32) (*ptp.Container, []byte, error) {
	w := ptp.NewWriter()
	children := f.handles[parent]
	w.PutU32(uint32(len(children)))
	for _, h := range children {
		w.PutU32(h)
	}
	return &ptp.Container{Code: uint16(ptp.RCOK)}, w.Bytes(), nil
}

func (f *fakeLink) GetObjectInfos(ctx context.Context, handles []uint32) (*ptp.Container, [][]byte, error) {
	out := make([][]byte, 0, len(handles))
	for _, h := range handles {
		ds := f.infos[h]
		out = append(out, ptp.EncodeObjectInfo(ds, ptp.ObjectInfoEncodeOptions{}))
	}
	return &ptp.Container{Code: uint16(ptp.RCOK)}, out, nil
}

func (f *fakeLink) ResetDevice(ctx context.Context) error { return nil }

func (f *fakeLink) DeleteObject(ctx context.Context, handle uint32) (*ptp.Container, error) {
	if err, ok := f.deleteErr[handle]; ok {
		return &ptp.Container{Code: uint16(ptp.RCGeneralError)}, err
	}
	f.deleted[handle] = true
	delete(f.handles, handle)
	return &ptp.Container{Code: uint16(ptp.RCOK)}, nil
}

func (f *fakeLink) MoveObject(ctx context.Context, handle, storageID, parent uint32) (*ptp.Container, error) {
	return &ptp.Container{Code: uint16(ptp.RCOK)}, nil
}

func (f *fakeLink) ExecuteCommand(ctx context.Context, cmd *ptp.Container) (transport.ResponseResult, error) {
	switch ptp.Op(cmd.Code) {
	case ptp.OpGetObjectPropList:
		code := f.propListCode
		if code == 0 {
			code = ptp.RCOK
		}
		return transport.ResponseResult{Response: &ptp.Container{Code: uint16(code)}, Payload: f.propListData}, nil
	}
	return transport.ResponseResult{Response: &ptp.Container{Code: uint16(ptp.RCOK)}}, nil
}

func (f *fakeLink) ExecuteStreamingCommand(ctx context.Context, cmd *ptp.Container,
	direction transport.DataPhaseDirection, length int64,
	dataIn transport.DataInHandler, dataOut transport.DataOutHandler) (transport.ResponseResult, error) {

	switch ptp.Op(cmd.Code) {
	case ptp.OpSendObjectInfo:
		if f.sendErr != nil {
			return transport.ResponseResult{Response: &ptp.Container{Code: uint16(ptp.RCInvalidParameter)}}, nil
		}
		if dataOut != nil {
			buf := make([]byte, 4096)
			dataOut(buf)
		}
		f.nextHandle++
		resp := f.sendInfoResp
		if resp == nil {
			resp = &ptp.Container{Code: uint16(ptp.RCOK), Params: []uint32{cmd.Params[0], 0, f.nextHandle}}
		}
		return transport.ResponseResult{Response: resp}, nil
	case ptp.OpSendObject, ptp.OpSendPartialObject:
		if dataOut != nil {
			buf := make([]byte, 65536)
			for {
				n, err := dataOut(buf)
				if n == 0 || err != nil {
					break
				}
			}
		}
		return transport.ResponseResult{Response: &ptp.Container{Code: uint16(ptp.RCOK)}}, nil
	case ptp.OpGetPartialObject64, ptp.OpGetObject, ptp.OpGetPartialObject:
		if f.failOps[ptp.Op(cmd.Code)] {
			return transport.ResponseResult{Response: &ptp.Container{Code: uint16(ptp.RCOperationNotSupported)}}, nil
		}
		if dataIn != nil {
			dataIn(f.partialPayload)
		}
		return transport.ResponseResult{Response: &ptp.Container{Code: uint16(ptp.RCOK)}, Payload: f.partialPayload}, nil
	}
	return transport.ResponseResult{Response: &ptp.Container{Code: uint16(ptp.RCOK)}}, nil
}

func (f *fakeLink) Events() <-chan *ptp.Container { return nil }
