/* swiftmtp - MTP/PTP host-side protocol engine
 *
 * ANSI color for the console logger, gated on stdout being a terminal.
 */

package logging

import (
	"io"
	"os"

	"github.com/mattn/go-isatty"
)

func isTerminal() bool {
	return isatty.IsTerminal(os.Stdout.Fd())
}

func colorWrite(w io.Writer, level Level, line string) {
	var beg, end string
	switch {
	case level&LevelError != 0:
		beg, end = "\033[31;1m", "\033[0m"
	case level&LevelInfo != 0:
		beg, end = "\033[32;1m", "\033[0m"
	case level&LevelDebug != 0:
		beg, end = "\033[37;1m", "\033[0m"
	case level&LevelTraceAll != 0:
		beg, end = "\033[37m", "\033[0m"
	}
	io.WriteString(w, beg)
	io.WriteString(w, line)
	io.WriteString(w, end)
}
