/* swiftmtp - MTP/PTP host-side protocol engine
 *
 * Event pump: polls the interrupt endpoint and forwards decoded Event
 * containers non-blocking, dropping the oldest buffered event in
 * favor of the newest rather than stalling the USB thread on a slow
 * consumer.
 */

package link

import (
	"context"
	"time"

	"github.com/swiftmtp/swiftmtp/ptp"
)

// eventPollBackoff bounds how often pumpEvents retries after an empty
// or failed InterruptIn, so a device with no event endpoint (always
// returning immediately) doesn't spin the goroutine.
const eventPollBackoff = 50 * time.Millisecond

func (l *USBLink) pumpEvents() {
	buf := make([]byte, 512)
	for {
		select {
		case <-l.eventsDone:
			close(l.events)
			return
		default:
		}

		ctx, cancel := context.WithTimeout(context.Background(), l.currentTimeouts().Inactivity)
		n, err := l.raw.InterruptIn(ctx, buf)
		cancel()
		if err != nil || n < containerHeaderSize {
			select {
			case <-l.eventsDone:
				close(l.events)
				return
			case <-time.After(eventPollBackoff):
			}
			continue
		}

		c, perr := ptp.ParseContainer(buf[:n])
		if perr != nil || c.Type != ptp.ContainerEvent {
			continue
		}

		select {
		case l.events <- c:
		default:
			select {
			case <-l.events:
			default:
			}
			select {
			case l.events <- c:
			default:
			}
		}
	}
}
