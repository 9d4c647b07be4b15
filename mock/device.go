/* swiftmtp - MTP/PTP host-side protocol engine
 *
 * Virtual test device: an in-memory transport.Link with a scriptable
 * fault-injection table, used to exercise the engine end to end
 * without real USB hardware.
 */

package mock

import (
	"context"
	"sync"

	"github.com/swiftmtp/swiftmtp/ptp"
	"github.com/swiftmtp/swiftmtp/transport"
)

// Fault is an injected response for one call to an operation: either
// a response code the device should return in place of its normal
// success path (Code != 0), or a transport-level error simulating a
// stall or disconnect (Err != nil). Exactly one should be set.
type Fault struct {
	Code ptp.RC
	Err  error
}

// Info is the content of a device's GetDeviceInfo dataset.
type Info struct {
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

// object is one entry in the device's object store.
type object struct {
	handle  uint32
	dataset ptp.ObjectInfoDataset
	payload []byte
}

// Device is an in-memory virtual PTP/MTP device implementing
// transport.Link. It is safe for concurrent use.
type Device struct {
	mu sync.Mutex

	info     Info
	storages map[uint32]StorageInfo

	objects    map[uint32]*object
	nextHandle uint32

	faults      map[ptp.Op][]Fault
	stickyFault map[ptp.Op]Fault
	calls       map[ptp.Op]int

	events chan *ptp.Container
	closed bool
}

// StorageInfo is the content of a device's GetStorageInfo dataset for
// one storage id.
type StorageInfo struct {
	StorageType        uint16
	FilesystemType     uint16
	AccessCapability   uint16
	MaxCapacity        uint64
	FreeSpaceInBytes   uint64
	FreeSpaceInObjects uint32
	StorageDescription string
	VolumeLabel        string
}

// New returns an empty virtual device described by info.
func New(info Info) *Device {
	return &Device{
		info:     info,
		storages: make(map[uint32]StorageInfo),
		objects:     make(map[uint32]*object),
		faults:      make(map[ptp.Op][]Fault),
		stickyFault: make(map[ptp.Op]Fault),
		calls:       make(map[ptp.Op]int),
		events:      make(chan *ptp.Container, 32),
	}
}

// NewPixel7 returns a preset device matching the engine's reference
// "Google Pixel 7" fixture: GetDeviceInfo and GetObjectHandles among
// its supported operations, one storage volume, and PropList support
// enabled.
func NewPixel7() *Device {
	d := New(Info{
		StandardVersion: 100,
		OperationsSupported: []ptp.Op{
			ptp.OpGetDeviceInfo, ptp.OpOpenSession, ptp.OpCloseSession,
			ptp.OpGetStorageIDs, ptp.OpGetStorageInfo,
			ptp.OpGetObjectHandles, ptp.OpGetObjectInfo,
			ptp.OpGetObject, ptp.OpDeleteObject,
			ptp.OpSendObjectInfo, ptp.OpSendObject,
			ptp.OpGetObjectPropList, ptp.OpGetPartialObject, ptp.OpGetPartialObject64,
		},
		Manufacturer:  "Google",
		Model:         "Pixel 7",
		DeviceVersion: "13",
		SerialNumber:  "PX7SIM0001",
	})
	d.AddStorage(0x00010001, StorageInfo{
		StorageType:        3, // fixed RAM
		FilesystemType:     2, // generic hierarchical
		AccessCapability:   0, // read-write
		MaxCapacity:        128 << 30,
		FreeSpaceInBytes:   64 << 30,
		StorageDescription: "Internal shared storage",
	})
	return d
}

// AddStorage registers (or replaces) the StorageInfo for storageID.
func (d *Device) AddStorage(storageID uint32, info StorageInfo) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.storages[storageID] = info
}

// AddObject inserts ds (scoped under the given storage/parent) with
// payload as its readable content, and returns the handle assigned.
// A caller-supplied ds.StorageID/ds.Parent is overwritten to match
// storageID/parent so tests can build datasets without repeating
// them.
func (d *Device) AddObject(storageID, parent uint32, ds ptp.ObjectInfoDataset, payload []byte) uint32 {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.nextHandle++
	handle := d.nextHandle

	ds.StorageID = storageID
	ds.Parent = parent
	ds.Size = uint32(len(payload))

	d.objects[handle] = &object{handle: handle, dataset: ds, payload: payload}
	return handle
}

// RemoveObject deletes handle from the store, as DeleteObject would.
func (d *Device) RemoveObject(handle uint32) {
	d.mu.Lock()
	defer d.mu.Unlock()
	delete(d.objects, handle)
}

// InjectFault queues fault to be returned on the next call to op,
// consumed FIFO: repeated InjectFault calls for the same op queue up
// faults for successive calls, one per call. Once the one-shot queue
// is drained, calls fall through to any SetFault sticky fault, or
// the device's normal scripted behavior if none is set.
func (d *Device) InjectFault(op ptp.Op, fault Fault) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.faults[op] = append(d.faults[op], fault)
}

// SetFault makes every call to op return fault until ClearFault(op)
// is called, modeling a persistent device quirk rather than a single
// injected glitch. One-shot InjectFault entries still take priority
// while any remain queued.
func (d *Device) SetFault(op ptp.Op, fault Fault) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.stickyFault[op] = fault
}

// ClearFault removes any sticky fault set by SetFault for op.
func (d *Device) ClearFault(op ptp.Op) {
	d.mu.Lock()
	defer d.mu.Unlock()
	delete(d.stickyFault, op)
}

// takeFault returns the fault that applies to the next call to op, if
// any: a queued one-shot fault takes priority, then a sticky fault.
func (d *Device) takeFault(op ptp.Op) (Fault, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if q := d.faults[op]; len(q) > 0 {
		d.faults[op] = q[1:]
		return q[0], true
	}
	if f, ok := d.stickyFault[op]; ok {
		return f, true
	}
	return Fault{}, false
}

// EmitEvent pushes c onto the device's event stream, read back via
// Events().
func (d *Device) EmitEvent(c *ptp.Container) {
	d.mu.Lock()
	closed := d.closed
	d.mu.Unlock()
	if closed {
		return
	}
	select {
	case d.events <- c:
	default:
	}
}

func (d *Device) childrenOf(storageID, parent uint32) []*object {
	d.mu.Lock()
	defer d.mu.Unlock()

	var out []*object
	for _, obj := range d.objects {
		if obj.dataset.StorageID == storageID && obj.dataset.Parent == parent {
			out = append(out, obj)
		}
	}
	return out
}

func (d *Device) objectByHandle(handle uint32) (*object, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	obj, ok := d.objects[handle]
	return obj, ok
}

// CallCount returns how many times op has reached responseFor,
// letting tests assert an operation was (or wasn't) retried.
func (d *Device) CallCount(op ptp.Op) int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.calls[op]
}

// responseFor builds a *ptp.Container carrying code, consuming any
// queued fault for op first: a queued Fault.Code overrides code, a
// queued Fault.Err short-circuits entirely (the caller must check ok
// and return err rather than building a response).
func (d *Device) responseFor(op ptp.Op, code ptp.RC) (*ptp.Container, error, bool) {
	d.mu.Lock()
	d.calls[op]++
	d.mu.Unlock()

	if f, ok := d.takeFault(op); ok {
		if f.Err != nil {
			return nil, f.Err, true
		}
		code = f.Code
	}
	return &ptp.Container{Code: uint16(code)}, nil, false
}

func (d *Device) OpenUSBIfNeeded(ctx context.Context) error { return nil }

func (d *Device) OpenSession(ctx context.Context, sessionID uint32) error {
	_, err, short := d.responseFor(ptp.OpOpenSession, ptp.RCOK)
	if short {
		return err
	}
	return nil
}

func (d *Device) CloseSession(ctx context.Context) error {
	_, err, short := d.responseFor(ptp.OpCloseSession, ptp.RCOK)
	if short {
		return err
	}
	return nil
}

func (d *Device) Close() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.closed {
		return nil
	}
	d.closed = true
	close(d.events)
	return nil
}

func (d *Device) Events() <-chan *ptp.Container {
	return d.events
}
