/* swiftmtp - MTP/PTP host-side protocol engine
 *
 * PtpValue: typed PTP data-type values and their wire encoding
 */

package ptp

import "fmt"

// DataType identifies the wire type of a PtpValue, using the PTP
// DataType code values.
type DataType uint16

// PTP DataType codes.
const (
	DataTypeI8     DataType = 0x0001
	DataTypeU8     DataType = 0x0002
	DataTypeI16    DataType = 0x0003
	DataTypeU16    DataType = 0x0004
	DataTypeI32    DataType = 0x0005
	DataTypeU32    DataType = 0x0006
	DataTypeI64    DataType = 0x0007
	DataTypeU64    DataType = 0x0008
	DataTypeString DataType = 0xFFFF
	DataTypeArray  DataType = 0x4000 // OR'd with an element type below
)

// Value is a sum type over the scalar and aggregate PTP data types:
// signed/unsigned integers from 8 to 64 bits, strings, raw byte
// blobs, and homogeneous arrays of Value.
type Value struct {
	Type   DataType
	Elem   DataType // Element type, valid only when Type has the array bit set
	Int    int64
	Uint   uint64
	Str    string
	Bytes  []byte
	Array  []Value
}

// IsArray reports whether v is an array value.
func (v Value) IsArray() bool {
	return v.Type != DataTypeString && v.Type&DataTypeArray != 0
}

// String renders a human-readable representation of v, primarily
// for logging.
func (v Value) String() string {
	switch {
	case v.IsArray():
		return fmt.Sprintf("[%d elements]", len(v.Array))
	case v.Type == DataTypeString:
		return v.Str
	case v.Type == DataTypeI8, v.Type == DataTypeI16, v.Type == DataTypeI32, v.Type == DataTypeI64:
		return fmt.Sprintf("%d", v.Int)
	default:
		return fmt.Sprintf("%d", v.Uint)
	}
}

// ReadValue decodes a single Value of the given scalar or array type
// from r. Arrays are encoded as a u32 element count followed by that
// many elements of elemType.
func ReadValue(r *Reader, typ DataType) (Value, error) {
	if typ != DataTypeString && typ&DataTypeArray != 0 {
		elem := typ &^ DataTypeArray
		n, err := r.ArrayCount()
		if err != nil {
			return Value{}, err
		}

		v := Value{Type: typ, Elem: elem, Array: make([]Value, 0, n)}
		for i := 0; i < n; i++ {
			ev, err := ReadValue(r, elem)
			if err != nil {
				return Value{}, err
			}
			v.Array = append(v.Array, ev)
		}
		return v, nil
	}

	switch typ {
	case DataTypeI8:
		x, err := r.I8()
		return Value{Type: typ, Int: int64(x)}, err
	case DataTypeU8:
		x, err := r.U8()
		return Value{Type: typ, Uint: uint64(x)}, err
	case DataTypeI16:
		x, err := r.I16()
		return Value{Type: typ, Int: int64(x)}, err
	case DataTypeU16:
		x, err := r.U16()
		return Value{Type: typ, Uint: uint64(x)}, err
	case DataTypeI32:
		x, err := r.I32()
		return Value{Type: typ, Int: int64(x)}, err
	case DataTypeU32:
		x, err := r.U32()
		return Value{Type: typ, Uint: uint64(x)}, err
	case DataTypeI64:
		x, err := r.I64()
		return Value{Type: typ, Int: x}, err
	case DataTypeU64:
		x, err := r.U64()
		return Value{Type: typ, Uint: x}, err
	case DataTypeString:
		s, err := r.PTPString()
		return Value{Type: typ, Str: s}, err
	default:
		return Value{}, fmt.Errorf("ptp: unsupported data type 0x%04x", uint16(typ))
	}
}
