/* swiftmtp - MTP/PTP host-side protocol engine
 *
 * PTP container: the 12-byte header shared by every packet on the wire
 */

package ptp

import (
	"errors"
	"fmt"
)

// ContainerType identifies the kind of a PTPContainer.
type ContainerType uint16

// Container kinds, as defined by the PTP wire protocol.
const (
	ContainerCommand  ContainerType = 1
	ContainerData     ContainerType = 2
	ContainerResponse ContainerType = 3
	ContainerEvent    ContainerType = 4
)

// String returns a human-readable name for a ContainerType.
func (t ContainerType) String() string {
	switch t {
	case ContainerCommand:
		return "Command"
	case ContainerData:
		return "Data"
	case ContainerResponse:
		return "Response"
	case ContainerEvent:
		return "Event"
	}
	return fmt.Sprintf("Unknown(%d)", uint16(t))
}

// containerHeaderSize is the fixed-size prefix of every container:
// length (u32) + type (u16) + code (u16) + txid (u32).
const containerHeaderSize = 12

// ErrContainerTooShort is returned when fewer than 12 bytes are
// available to parse a container.
var ErrContainerTooShort = errors.New("ptp: container shorter than 12 bytes")

// Container represents the header of a command, data, response, or
// event packet, plus up to 5 trailing u32 parameters.
type Container struct {
	Type   ContainerType
	Code   uint16
	TxID   uint32
	Params []uint32
}

// Length returns the wire length field: 12 plus 4 bytes per
// parameter.
func (c *Container) Length() uint32 {
	return containerHeaderSize + uint32(len(c.Params))*4
}

// Encode returns the container's wire representation in a newly
// allocated slice.
func (c *Container) Encode() []byte {
	w := NewWriter()
	w.PutU32(c.Length())
	w.PutU16(uint16(c.Type))
	w.PutU16(c.Code)
	w.PutU32(c.TxID)
	for _, p := range c.Params {
		w.PutU32(p)
	}
	return w.Bytes()
}

// ParseContainer decodes a container header (and any trailing
// parameters present in buf) from the start of buf.
//
// Parameters are read lazily: ParseContainer trusts the declared
// length field only to the extent of deciding how many u32 params
// follow the 12-byte header, clipped to however much of buf is
// actually present.
func ParseContainer(buf []byte) (*Container, error) {
	if len(buf) < containerHeaderSize {
		return nil, ErrContainerTooShort
	}

	r := NewReader(buf)
	length, _ := r.U32()
	typ, _ := r.U16()
	code, _ := r.U16()
	txid, _ := r.U32()

	c := &Container{
		Type: ContainerType(typ),
		Code: code,
		TxID: txid,
	}

	if length < containerHeaderSize {
		length = containerHeaderSize
	}

	paramBytes := int(length) - containerHeaderSize
	available := len(buf) - containerHeaderSize
	if paramBytes > available {
		paramBytes = available
	}

	for off := 0; off+4 <= paramBytes; off += 4 {
		p, err := r.U32()
		if err != nil {
			break
		}
		c.Params = append(c.Params, p)
	}

	return c, nil
}
