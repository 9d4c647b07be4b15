/* swiftmtp - MTP/PTP host-side protocol engine
 *
 * Stateless helpers (§4.2) composing ptp containers over a transport.Link.
 */

package protocol

import (
	"context"
	"sync/atomic"

	"github.com/swiftmtp/swiftmtp/ptp"
	"github.com/swiftmtp/swiftmtp/transport"
)

// TxIDSequence hands out monotonically increasing PTP transaction
// IDs for one session. 32-bit wraparound is benign: sessions are
// short-lived relative to 2^32 transactions, so on wrap this simply
// restarts at 1, skipping the reserved value 0.
type TxIDSequence struct {
	last uint32
}

// NewTxIDSequence returns a sequence whose first Next() call yields 1.
func NewTxIDSequence() *TxIDSequence {
	return &TxIDSequence{last: 0}
}

// Next returns the next transaction ID, skipping 0 on wraparound.
func (s *TxIDSequence) Next() uint32 {
	id := atomic.AddUint32(&s.last, 1)
	if id == 0 {
		id = atomic.AddUint32(&s.last, 1)
	}
	return id
}

// DeviceInfo is the decoded GetDeviceInfo response dataset.
type DeviceInfo struct {
	StandardVersion      uint16
	VendorExtensionID    uint32
	VendorExtensionDesc  string
	FunctionalMode       uint16
	OperationsSupported  []ptp.Op
	EventsSupported      []uint16
	DevicePropsSupported []uint16
	CaptureFormats       []ptp.ObjectFormat
	ImageFormats         []ptp.ObjectFormat
	Manufacturer         string
	Model                string
	DeviceVersion        string
	SerialNumber         string
}

// SupportsOperation reports whether code appears in di's supported
// operations set.
func (di DeviceInfo) SupportsOperation(code ptp.Op) bool {
	for _, op := range di.OperationsSupported {
		if op == code {
			return true
		}
	}
	return false
}

func decodeDeviceInfo(buf []byte) (DeviceInfo, error) {
	r := ptp.NewReader(buf)
	var di DeviceInfo
	var err error

	if di.StandardVersion, err = r.U16(); err != nil {
		return di, err
	}
	if di.VendorExtensionID, err = r.U32(); err != nil {
		return di, err
	}
	if _, err = r.U16(); err != nil { // VendorExtensionVersion, unused
		return di, err
	}
	if di.VendorExtensionDesc, err = r.PTPString(); err != nil {
		return di, err
	}
	if di.FunctionalMode, err = r.U16(); err != nil {
		return di, err
	}

	readOpArray := func() ([]ptp.Op, error) {
		n, err := r.ArrayCount()
		if err != nil {
			return nil, err
		}
		out := make([]ptp.Op, 0, n)
		for i := 0; i < n; i++ {
			v, err := r.U16()
			if err != nil {
				return nil, err
			}
			out = append(out, ptp.Op(v))
		}
		return out, nil
	}
	readU16Array := func() ([]uint16, error) {
		n, err := r.ArrayCount()
		if err != nil {
			return nil, err
		}
		out := make([]uint16, 0, n)
		for i := 0; i < n; i++ {
			v, err := r.U16()
			if err != nil {
				return nil, err
			}
			out = append(out, v)
		}
		return out, nil
	}
	readFormatArray := func() ([]ptp.ObjectFormat, error) {
		n, err := r.ArrayCount()
		if err != nil {
			return nil, err
		}
		out := make([]ptp.ObjectFormat, 0, n)
		for i := 0; i < n; i++ {
			v, err := r.U16()
			if err != nil {
				return nil, err
			}
			out = append(out, ptp.ObjectFormat(v))
		}
		return out, nil
	}

	if di.OperationsSupported, err = readOpArray(); err != nil {
		return di, err
	}
	if di.EventsSupported, err = readU16Array(); err != nil {
		return di, err
	}
	if di.DevicePropsSupported, err = readU16Array(); err != nil {
		return di, err
	}
	if di.CaptureFormats, err = readFormatArray(); err != nil {
		return di, err
	}
	if di.ImageFormats, err = readFormatArray(); err != nil {
		return di, err
	}
	if di.Manufacturer, err = r.PTPString(); err != nil {
		return di, err
	}
	if di.Model, err = r.PTPString(); err != nil {
		return di, err
	}
	if di.DeviceVersion, err = r.PTPString(); err != nil {
		return di, err
	}
	if di.SerialNumber, err = r.PTPString(); err != nil {
		return di, err
	}

	return di, nil
}

// GetDeviceInfo executes GetDeviceInfo and decodes the result.
func GetDeviceInfo(ctx context.Context, link transport.Link) (DeviceInfo, error) {
	resp, data, err := link.GetDeviceInfo(ctx)
	if err != nil {
		return DeviceInfo{}, WrapTransportError(err)
	}
	if err := CheckOK(ptp.RC(resp.Code)); err != nil {
		return DeviceInfo{}, err
	}
	return decodeDeviceInfo(data)
}

// OpenSession opens a PTP session with the given session id (the
// engine always uses 1, per §4.8).
func OpenSession(ctx context.Context, link transport.Link, sessionID uint32) error {
	if err := link.OpenSession(ctx, sessionID); err != nil {
		return WrapTransportError(err)
	}
	return nil
}

// CloseSession closes the current PTP session.
func CloseSession(ctx context.Context, link transport.Link) error {
	if err := link.CloseSession(ctx); err != nil {
		return WrapTransportError(err)
	}
	return nil
}

// GetStorageIDs executes GetStorageIDs and decodes the id array.
func GetStorageIDs(ctx context.Context, link transport.Link) ([]uint32, error) {
	resp, data, err := link.GetStorageIDs(ctx)
	if err != nil {
		return nil, WrapTransportError(err)
	}
	if err := CheckOK(ptp.RC(resp.Code)); err != nil {
		return nil, err
	}

	r := ptp.NewReader(data)
	n, err := r.ArrayCount()
	if err != nil {
		return nil, err
	}
	ids := make([]uint32, 0, n)
	for i := 0; i < n; i++ {
		id, err := r.U32()
		if err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, nil
}

// StorageInfo is the decoded GetStorageInfo response dataset.
type StorageInfo struct {
	StorageType        uint16
	FilesystemType      uint16
	AccessCapability    uint16
	MaxCapacity         uint64
	FreeSpaceInBytes    uint64
	FreeSpaceInObjects  uint32
	StorageDescription  string
	VolumeLabel         string
}

// GetStorageInfo executes GetStorageInfo(storageID) and decodes the
// result.
func GetStorageInfo(ctx context.Context, link transport.Link, storageID uint32) (StorageInfo, error) {
	resp, data, err := link.GetStorageInfo(ctx, storageID)
	if err != nil {
		return StorageInfo{}, WrapTransportError(err)
	}
	if err := CheckOK(ptp.RC(resp.Code)); err != nil {
		return StorageInfo{}, err
	}

	r := ptp.NewReader(data)
	var si StorageInfo
	if si.StorageType, err = r.U16(); err != nil {
		return si, err
	}
	if si.FilesystemType, err = r.U16(); err != nil {
		return si, err
	}
	if si.AccessCapability, err = r.U16(); err != nil {
		return si, err
	}
	if si.MaxCapacity, err = r.U64(); err != nil {
		return si, err
	}
	if si.FreeSpaceInBytes, err = r.U64(); err != nil {
		return si, err
	}
	if si.FreeSpaceInObjects, err = r.U32(); err != nil {
		return si, err
	}
	if si.StorageDescription, err = r.PTPString(); err != nil {
		return si, err
	}
	if si.VolumeLabel, err = r.PTPString(); err != nil {
		return si, err
	}
	return si, nil
}

// GetObjectHandles executes GetObjectHandles(storageID, parent) and
// decodes the handle array.
func GetObjectHandles(ctx context.Context, link transport.Link, storageID, parent uint32) ([]uint32, error) {
	resp, data, err := link.GetObjectHandles(ctx, storageID, parent)
	if err != nil {
		return nil, WrapTransportError(err)
	}
	if err := CheckOK(ptp.RC(resp.Code)); err != nil {
		return nil, err
	}

	r := ptp.NewReader(data)
	n, err := r.ArrayCount()
	if err != nil {
		return nil, err
	}
	handles := make([]uint32, 0, n)
	for i := 0; i < n; i++ {
		h, err := r.U32()
		if err != nil {
			return nil, err
		}
		handles = append(handles, h)
	}
	return handles, nil
}

// GetObjectInfos executes GetObjectInfo for each handle (via the
// link's batched GetObjectInfos) and decodes each dataset.
func GetObjectInfos(ctx context.Context, link transport.Link, handles []uint32) ([]ptp.ObjectInfoDataset, error) {
	resp, datasets, err := link.GetObjectInfos(ctx, handles)
	if err != nil {
		return nil, WrapTransportError(err)
	}
	if err := CheckOK(ptp.RC(resp.Code)); err != nil {
		return nil, err
	}

	out := make([]ptp.ObjectInfoDataset, 0, len(datasets))
	for _, data := range datasets {
		ds, err := ptp.DecodeObjectInfo(data)
		if err != nil {
			return nil, err
		}
		out = append(out, ds)
	}
	return out, nil
}

// GetObjectSizeU64 returns an object's size as a 64-bit value, the
// width the actor's resumable-download math needs even though the
// classic ObjectInfo dataset only carries a 32-bit size field.
func GetObjectSizeU64(ds ptp.ObjectInfoDataset) uint64 {
	return uint64(ds.Size)
}

// SupportsOperation is a set lookup over a decoded DeviceInfo's
// operations-supported array (§4.2).
func SupportsOperation(code ptp.Op, info DeviceInfo) bool {
	return info.SupportsOperation(code)
}
