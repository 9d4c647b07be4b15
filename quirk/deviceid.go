/* swiftmtp - MTP/PTP host-side protocol engine
 *
 * DeviceId synthesis (§3 DATA MODEL): a DeviceId should stay stable
 * across reconnects when possible, which means deriving it from the
 * device's own USB serial number whenever it exposes one.
 */

package quirk

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/swiftmtp/swiftmtp/transport"
)

// DeviceId synthesizes a stable identifier for summary: the VID:PID
// plus USB serial number when the device exposes one, otherwise a
// random uuid that will NOT survive a reconnect (the device gave us
// nothing stable to key on).
func DeviceId(summary transport.DeviceSummary) string {
	if summary.Serial != "" {
		return fmt.Sprintf("%s:%s", summary.Fingerprint(), summary.Serial)
	}
	return uuid.NewString()
}
