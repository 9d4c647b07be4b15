/* swiftmtp - MTP/PTP host-side protocol engine
 *
 * MtpEvent: decoded PTP/MTP event containers
 */

package event

import "github.com/swiftmtp/swiftmtp/ptp"

// Kind identifies the semantic meaning of an event code.
type Kind int

// Event kinds the engine distinguishes.
const (
	KindUnknown Kind = iota
	KindObjectAdded
	KindObjectRemoved
	KindStorageAdded
	KindStorageRemoved
	KindStorageInfoChanged
	KindObjectInfoChanged
	KindDevicePropChanged
	KindDeviceInfoChanged
	KindCaptureComplete
)

// Raw PTP event codes (standard PTP event class, 0x400x range).
const (
	codeObjectAdded        uint16 = 0x4002
	codeObjectRemoved      uint16 = 0x4003
	codeStorageAdded       uint16 = 0x4004
	codeStorageRemoved     uint16 = 0x4005
	codeDevicePropChanged  uint16 = 0x4006
	codeObjectInfoChanged  uint16 = 0x4007
	codeDeviceInfoChanged  uint16 = 0x4008
	codeStorageInfoChanged uint16 = 0x400C
	codeCaptureComplete    uint16 = 0x400D
)

var kindByCode = map[uint16]Kind{
	codeObjectAdded:        KindObjectAdded,
	codeObjectRemoved:      KindObjectRemoved,
	codeStorageAdded:       KindStorageAdded,
	codeStorageRemoved:     KindStorageRemoved,
	codeDevicePropChanged:  KindDevicePropChanged,
	codeObjectInfoChanged:  KindObjectInfoChanged,
	codeDeviceInfoChanged:  KindDeviceInfoChanged,
	codeStorageInfoChanged: KindStorageInfoChanged,
	codeCaptureComplete:    KindCaptureComplete,
}

// MtpEvent is a decoded event container, independent of the raw
// container framing.
type MtpEvent struct {
	Kind   Kind
	Code   uint16
	TxID   uint32
	Params []uint32
}

// Decode builds an MtpEvent from a raw PTP event container.
func Decode(c *ptp.Container) MtpEvent {
	kind, ok := kindByCode[c.Code]
	if !ok {
		kind = KindUnknown
	}
	return MtpEvent{
		Kind:   kind,
		Code:   c.Code,
		TxID:   c.TxID,
		Params: c.Params,
	}
}

// ObjectHandle returns the first parameter as an object handle, the
// convention for ObjectAdded/ObjectRemoved/ObjectInfoChanged events.
// ok is false if the event carries no parameters.
func (e MtpEvent) ObjectHandle() (handle uint32, ok bool) {
	if len(e.Params) == 0 {
		return 0, false
	}
	return e.Params[0], true
}

// StorageID returns the first parameter as a storage id, the
// convention for StorageAdded/StorageRemoved/StorageInfoChanged
// events. ok is false if the event carries no parameters.
func (e MtpEvent) StorageID() (id uint32, ok bool) {
	if len(e.Params) == 0 {
		return 0, false
	}
	return e.Params[0], true
}
