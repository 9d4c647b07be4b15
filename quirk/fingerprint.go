/* swiftmtp - MTP/PTP host-side protocol engine
 *
 * Device fingerprinting (§4.5): the stable identity quirks and
 * learned profiles are keyed by.
 */

package quirk

import "fmt"

// InterfaceTriple is a USB interface's class/subclass/protocol.
type InterfaceTriple struct {
	Class    uint8
	Subclass uint8
	Protocol uint8
}

// Endpoints are the bulk (and optional interrupt) endpoint addresses
// the engine talks to.
type Endpoints struct {
	In    uint8
	Out   uint8
	Event uint8 // 0 if the device has no dedicated event endpoint
}

// Identity is everything used to compute a Fingerprint and to match
// against a DeviceQuirk's match criteria.
type Identity struct {
	VID        uint16
	PID        uint16
	BcdDevice  uint16 // 0 if unknown
	Iface      InterfaceTriple
	Endpoints  Endpoints
}

// Fingerprint returns the deterministic hash string identifying an
// Identity: lowercase 4-digit hex fields joined by a stable
// separator, matching the teacher's HWID-string convention.
func Fingerprint(id Identity) string {
	return fmt.Sprintf("%04x:%04x:%04x:%02x%02x%02x:%02x%02x%02x",
		id.VID, id.PID, id.BcdDevice,
		id.Iface.Class, id.Iface.Subclass, id.Iface.Protocol,
		id.Endpoints.In, id.Endpoints.Out, id.Endpoints.Event)
}
