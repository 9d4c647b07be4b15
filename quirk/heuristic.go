/* swiftmtp - MTP/PTP host-side protocol engine
 *
 * Class-0x06 PTP heuristic defaults (§4.5).
 */

package quirk

const ifaceClassStillImage uint8 = 0x06

// HeuristicFlags returns the flags a fresh policy starts with when
// no static quirk matched: camera-friendly defaults for interface
// class 0x06 (Still Image), conservative all-false defaults for
// everything else (vendor-class 0xFF or unrecognized classes). A
// later connect always re-derives these from scratch; in-session
// auto-disables (e.g. GetObjectPropList support dropping to false on
// 0x2005) never persist across a fresh connect.
func HeuristicFlags(ifaceClass uint8) Flags {
	if ifaceClass == ifaceClassStillImage {
		return Flags{
			SupportsGetObjectPropList:  true,
			PrefersPropListEnumeration: true,
			RequiresKernelDetach:       false,
		}
	}
	return Flags{}
}
