/* swiftmtp - MTP/PTP host-side protocol engine
 *
 * Path sanitization (§4.8): object names are never trusted verbatim.
 */

package actor

import (
	"errors"
	"strings"
)

// MaxNameLength is the longest filename the engine will send to a
// device.
const MaxNameLength = 255

// ErrInvalidName is returned when a name is empty, whitespace-only,
// or a pure-dot name after sanitization.
var ErrInvalidName = errors.New("actor: invalid object name")

// SanitizeName strips NUL bytes and path separators, rejects
// pure-dot names, trims surrounding whitespace, and truncates to
// MaxNameLength characters.
func SanitizeName(name string) (string, error) {
	var b strings.Builder
	for _, r := range name {
		if r == 0 || r == '/' || r == '\\' {
			continue
		}
		b.WriteRune(r)
	}

	cleaned := strings.TrimSpace(b.String())
	if cleaned == "" {
		return "", ErrInvalidName
	}
	if isPureDotName(cleaned) {
		return "", ErrInvalidName
	}

	runes := []rune(cleaned)
	if len(runes) > MaxNameLength {
		runes = runes[:MaxNameLength]
	}
	return string(runes), nil
}

func isPureDotName(s string) bool {
	for _, r := range s {
		if r != '.' {
			return false
		}
	}
	return true
}
