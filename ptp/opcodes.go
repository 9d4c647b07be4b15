/* swiftmtp - MTP/PTP host-side protocol engine
 *
 * Opcode and response-code tables
 */

package ptp

import "fmt"

// Op is a PTP/MTP operation code.
type Op uint16

// Well-known PTP operation codes, plus the MTP extensions used by
// the engine's fallback ladders.
const (
	OpGetDeviceInfo          Op = 0x1001
	OpOpenSession            Op = 0x1002
	OpCloseSession           Op = 0x1003
	OpGetStorageIDs          Op = 0x1004
	OpGetStorageInfo         Op = 0x1005
	OpGetNumObjects          Op = 0x1006
	OpGetObjectHandles       Op = 0x1007
	OpGetObjectInfo          Op = 0x1008
	OpGetObject              Op = 0x1009
	OpGetThumb               Op = 0x100A
	OpDeleteObject           Op = 0x100B
	OpSendObjectInfo         Op = 0x100C
	OpSendObject             Op = 0x100D
	OpInitiateCapture        Op = 0x100E
	OpFormatStore            Op = 0x100F
	OpResetDevice            Op = 0x1010
	OpMoveObject             Op = 0x1019
	OpCopyObject             Op = 0x101A
	OpGetPartialObject       Op = 0x101B
	OpGetObjectPropsSupported Op = 0x9801
	OpGetObjectPropDesc      Op = 0x9802
	OpGetObjectPropValue     Op = 0x9803
	OpSetObjectPropValue     Op = 0x9804
	OpGetObjectPropList      Op = 0x9805
	OpGetObjectReferences    Op = 0x9810
	OpSetObjectReferences    Op = 0x9811
	OpGetPartialObject64     Op = 0x95C4
	OpSendPartialObject      Op = 0x95C1
)

var opNames = map[Op]string{
	OpGetDeviceInfo:           "GetDeviceInfo",
	OpOpenSession:             "OpenSession",
	OpCloseSession:            "CloseSession",
	OpGetStorageIDs:           "GetStorageIDs",
	OpGetStorageInfo:          "GetStorageInfo",
	OpGetNumObjects:           "GetNumObjects",
	OpGetObjectHandles:        "GetObjectHandles",
	OpGetObjectInfo:           "GetObjectInfo",
	OpGetObject:               "GetObject",
	OpGetThumb:                "GetThumb",
	OpDeleteObject:            "DeleteObject",
	OpSendObjectInfo:          "SendObjectInfo",
	OpSendObject:              "SendObject",
	OpInitiateCapture:         "InitiateCapture",
	OpFormatStore:             "FormatStore",
	OpResetDevice:             "ResetDevice",
	OpMoveObject:              "MoveObject",
	OpCopyObject:              "CopyObject",
	OpGetPartialObject:        "GetPartialObject",
	OpGetObjectPropsSupported: "GetObjectPropsSupported",
	OpGetObjectPropDesc:       "GetObjectPropDesc",
	OpGetObjectPropValue:      "GetObjectPropValue",
	OpSetObjectPropValue:      "SetObjectPropValue",
	OpGetObjectPropList:       "GetObjectPropList",
	OpGetObjectReferences:     "GetObjectReferences",
	OpSetObjectReferences:     "SetObjectReferences",
	OpGetPartialObject64:      "GetPartialObject64",
	OpSendPartialObject:       "SendPartialObject",
}

// String returns "Name (0xXXXX)" or "Unknown (0xXXXX)".
func (op Op) String() string {
	if name, ok := opNames[op]; ok {
		return fmt.Sprintf("%s (0x%04X)", name, uint16(op))
	}
	return fmt.Sprintf("Unknown (0x%04X)", uint16(op))
}

// RC is a PTP/MTP response code.
type RC uint16

// Well-known response codes.
const (
	RCOK                     RC = 0x2001
	RCGeneralError           RC = 0x2002
	RCSessionNotOpen         RC = 0x2003
	RCInvalidTransactionID   RC = 0x2004
	RCOperationNotSupported  RC = 0x2005
	RCInvalidDatasetFormat   RC = 0x2007
	RCParameterNotSupported  RC = 0x2008
	RCInvalidStorageID       RC = 0x2008
	RCInvalidObjectHandle    RC = 0x2009
	RCDevicePropNotSupported RC = 0x200A
	RCInvalidObjectFormat    RC = 0x200B
	RCStorageFull            RC = 0x200C
	RCStorageIDInUse         RC = 0x200D
	RCObjectWriteProtected   RC = 0x200E
	RCAccessDenied           RC = 0x200F
	RCSpecificationByFormat  RC = 0x2013
	RCInvalidParameter       RC = 0x201D
	RCDeviceBusy             RC = 0x2019
	RCSessionAlreadyOpen     RC = 0x201E
)

var rcNames = map[RC]string{
	RCOK:                    "OK",
	RCGeneralError:          "GeneralError",
	RCSessionNotOpen:        "SessionNotOpen",
	RCInvalidTransactionID:  "InvalidTransactionID",
	RCOperationNotSupported: "OperationNotSupported",
	RCInvalidStorageID:      "InvalidStorageID",
	RCInvalidObjectHandle:   "InvalidObjectHandle",
	RCStorageFull:           "StorageFull",
	RCStorageIDInUse:        "StorageIDInUse",
	RCObjectWriteProtected:  "ObjectWriteProtected",
	RCAccessDenied:          "AccessDenied",
	RCInvalidParameter:      "InvalidParameter",
	RCDeviceBusy:            "DeviceBusy",
	RCSessionAlreadyOpen:    "SessionAlreadyOpen",
}

// Describe returns "Name (0xXXXX)" or "Unknown (0xXXXX)".
func Describe(code RC) string {
	if name, ok := rcNames[code]; ok {
		return fmt.Sprintf("%s (0x%04X)", name, uint16(code))
	}
	return fmt.Sprintf("Unknown (0x%04X)", uint16(code))
}
