/* swiftmtp - MTP/PTP host-side protocol engine
 *
 * Encoders for the command responses a virtual device answers with,
 * and the transport.Link methods that drive them.
 */

package mock

import (
	"context"

	"github.com/swiftmtp/swiftmtp/ptp"
	"github.com/swiftmtp/swiftmtp/transport"
)

func (d *Device) encodeDeviceInfo() []byte {
	d.mu.Lock()
	info := d.info
	d.mu.Unlock()

	w := ptp.NewWriter()
	w.PutU16(info.StandardVersion)
	w.PutU32(info.VendorExtensionID)
	w.PutU16(0) // VendorExtensionVersion
	w.PutPTPString(info.VendorExtensionDesc)
	w.PutU16(info.FunctionalMode)

	w.PutU32(uint32(len(info.OperationsSupported)))
	for _, op := range info.OperationsSupported {
		w.PutU16(uint16(op))
	}
	w.PutU32(uint32(len(info.EventsSupported)))
	for _, e := range info.EventsSupported {
		w.PutU16(e)
	}
	w.PutU32(uint32(len(info.DevicePropsSupported)))
	for _, p := range info.DevicePropsSupported {
		w.PutU16(p)
	}
	w.PutU32(uint32(len(info.CaptureFormats)))
	for _, f := range info.CaptureFormats {
		w.PutU16(uint16(f))
	}
	w.PutU32(uint32(len(info.ImageFormats)))
	for _, f := range info.ImageFormats {
		w.PutU16(uint16(f))
	}

	w.PutPTPString(info.Manufacturer)
	w.PutPTPString(info.Model)
	w.PutPTPString(info.DeviceVersion)
	w.PutPTPString(info.SerialNumber)

	return w.Bytes()
}

func (d *Device) GetDeviceInfo(ctx context.Context) (*ptp.Container, []byte, error) {
	resp, err, short := d.responseFor(ptp.OpGetDeviceInfo, ptp.RCOK)
	if short {
		return nil, nil, err
	}
	if ptp.RC(resp.Code) != ptp.RCOK {
		return resp, nil, nil
	}
	return resp, d.encodeDeviceInfo(), nil
}

func (d *Device) GetStorageIDs(ctx context.Context) (*ptp.Container, []byte, error) {
	resp, err, short := d.responseFor(ptp.OpGetStorageIDs, ptp.RCOK)
	if short {
		return nil, nil, err
	}
	if ptp.RC(resp.Code) != ptp.RCOK {
		return resp, nil, nil
	}

	d.mu.Lock()
	ids := make([]uint32, 0, len(d.storages))
	for id := range d.storages {
		ids = append(ids, id)
	}
	d.mu.Unlock()

	w := ptp.NewWriter()
	w.PutU32(uint32(len(ids)))
	for _, id := range ids {
		w.PutU32(id)
	}
	return resp, w.Bytes(), nil
}

func (d *Device) GetStorageInfo(ctx context.Context, storageID uint32) (*ptp.Container, []byte, error) {
	resp, err, short := d.responseFor(ptp.OpGetStorageInfo, ptp.RCOK)
	if short {
		return nil, nil, err
	}
	if ptp.RC(resp.Code) != ptp.RCOK {
		return resp, nil, nil
	}

	d.mu.Lock()
	info, ok := d.storages[storageID]
	d.mu.Unlock()
	if !ok {
		return &ptp.Container{Code: uint16(ptp.RCInvalidStorageID)}, nil, nil
	}

	w := ptp.NewWriter()
	w.PutU16(info.StorageType)
	w.PutU16(info.FilesystemType)
	w.PutU16(info.AccessCapability)
	w.PutU64(info.MaxCapacity)
	w.PutU64(info.FreeSpaceInBytes)
	w.PutU32(info.FreeSpaceInObjects)
	w.PutPTPString(info.StorageDescription)
	w.PutPTPString(info.VolumeLabel)
	return resp, w.Bytes(), nil
}

func (d *Device) GetObjectHandles(ctx context.Context, storageID, parent uint32) (*ptp.Container, []byte, error) {
	resp, err, short := d.responseFor(ptp.OpGetObjectHandles, ptp.RCOK)
	if short {
		return nil, nil, err
	}
	if ptp.RC(resp.Code) != ptp.RCOK {
		return resp, nil, nil
	}

	children := d.childrenOf(storageID, parent)
	w := ptp.NewWriter()
	w.PutU32(uint32(len(children)))
	for _, obj := range children {
		w.PutU32(obj.handle)
	}
	return resp, w.Bytes(), nil
}

func (d *Device) GetObjectInfos(ctx context.Context, handles []uint32) (*ptp.Container, [][]byte, error) {
	resp, err, short := d.responseFor(ptp.OpGetObjectInfo, ptp.RCOK)
	if short {
		return nil, nil, err
	}
	if ptp.RC(resp.Code) != ptp.RCOK {
		return resp, nil, nil
	}

	out := make([][]byte, 0, len(handles))
	for _, h := range handles {
		obj, ok := d.objectByHandle(h)
		if !ok {
			return &ptp.Container{Code: uint16(ptp.RCInvalidObjectHandle)}, nil, nil
		}
		out = append(out, ptp.EncodeObjectInfo(obj.dataset, ptp.ObjectInfoEncodeOptions{}))
	}
	return resp, out, nil
}

func (d *Device) ResetDevice(ctx context.Context) error {
	_, err, short := d.responseFor(ptp.OpResetDevice, ptp.RCOK)
	if short {
		return err
	}
	return nil
}

func (d *Device) DeleteObject(ctx context.Context, handle uint32) (*ptp.Container, error) {
	resp, err, short := d.responseFor(ptp.OpDeleteObject, ptp.RCOK)
	if short {
		return nil, err
	}
	if ptp.RC(resp.Code) == ptp.RCOK {
		d.RemoveObject(handle)
	}
	return resp, nil
}

func (d *Device) MoveObject(ctx context.Context, handle, storageID, parent uint32) (*ptp.Container, error) {
	resp, err, short := d.responseFor(ptp.OpMoveObject, ptp.RCOK)
	if short {
		return nil, err
	}
	if ptp.RC(resp.Code) == ptp.RCOK {
		d.mu.Lock()
		if obj, ok := d.objects[handle]; ok {
			obj.dataset.StorageID = storageID
			obj.dataset.Parent = parent
		}
		d.mu.Unlock()
	}
	return resp, nil
}

var _ transport.Link = (*Device)(nil)
