/* swiftmtp - MTP/PTP host-side protocol engine
 *
 * Object-format code lookup by filename extension
 */

package ptp

import (
	"path/filepath"
	"strings"
)

// ObjectFormat is a PTP object-format code (e.g. 0x3801 for JPEG).
type ObjectFormat uint16

// Well-known object-format codes.
const (
	FormatUndefined ObjectFormat = 0x3000
	FormatText      ObjectFormat = 0x3004
	FormatJPEG      ObjectFormat = 0x3801
	FormatPNG       ObjectFormat = 0x380B
	FormatMP3       ObjectFormat = 0x3009
	FormatMP4       ObjectFormat = 0x300B
	FormatAAC       ObjectFormat = 0xB903
	FormatAssociation ObjectFormat = 0x3001 // directory
)

var extFormats = map[string]ObjectFormat{
	".jpg":  FormatJPEG,
	".jpeg": FormatJPEG,
	".png":  FormatPNG,
	".mp4":  FormatMP4,
	".mp3":  FormatMP3,
	".txt":  FormatText,
	".aac":  FormatAAC,
}

// FormatForFilename maps a filename's extension (case-insensitively)
// to a PTP object-format code. Unrecognized or missing extensions
// map to FormatUndefined.
func FormatForFilename(name string) ObjectFormat {
	ext := strings.ToLower(filepath.Ext(name))
	if fmt, ok := extFormats[ext]; ok {
		return fmt
	}
	return FormatUndefined
}
