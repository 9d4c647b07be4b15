/* swiftmtp - MTP/PTP host-side protocol engine
 *
 * Level-masked logger: console (optionally colored) and/or a rotated
 * per-device log file, built around a LogMessage that buffers one
 * atomic multi-line entry before it is flushed.
 */

package logging

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"
	"time"
)

// Level enumerates log levels as an additive bitmask. Each trace
// category implies LevelDebug, which implies LevelInfo, which implies
// LevelError; Cc relies on that to decide what to mirror.
type Level int

const (
	LevelError Level = 1 << iota
	LevelInfo
	LevelDebug
	LevelTraceUSB   // raw bulk transfer hex dumps
	LevelTracePTP   // container encode/decode
	LevelTraceQuirk // policy merge decisions
	LevelTraceActor // transaction/ladder/retry narration

	LevelTraceAll = LevelTraceUSB | LevelTracePTP | LevelTraceQuirk | LevelTraceActor
	LevelAll      = LevelError | LevelInfo | LevelDebug | LevelTraceAll
)

type loggerMode int

const (
	modeNone loggerMode = iota
	modeConsole
	modeColorConsole
	modeFile
)

// Logger writes log lines gated by a Level mask, either to the
// console or to a rotated on-disk file.
type Logger struct {
	LogMessage

	mode loggerMode
	lock sync.Mutex

	path string
	out  io.Writer

	maxFileSize    int64
	maxBackupFiles uint

	cc []ccTarget
}

type ccTarget struct {
	mask Level
	to   *Logger
}

// New returns a logger buffered in memory until a destination
// (ToConsole/ToColorConsole/ToFile) is chosen.
func New() *Logger {
	l := &Logger{maxFileSize: 256 * 1024, maxBackupFiles: 5}
	l.LogMessage.logger = l
	return l
}

// ToConsole redirects the logger to stdout, uncolored.
func (l *Logger) ToConsole() *Logger {
	l.mode = modeConsole
	l.out = os.Stdout
	return l
}

// ToColorConsole redirects the logger to stdout with ANSI colors,
// applied only when stdout is a terminal.
func (l *Logger) ToColorConsole() *Logger {
	l.mode = modeColorConsole
	l.out = os.Stdout
	return l
}

// ToFile redirects the logger to path, with rotation at maxSize bytes
// keeping maxBackups gzip'd generations. The file is opened lazily on
// the first Flush.
func (l *Logger) ToFile(path string, maxSize int64, maxBackups uint) *Logger {
	l.path = path
	l.mode = modeFile
	l.out = nil
	l.maxFileSize = maxSize
	l.maxBackupFiles = maxBackups
	return l
}

// Cc mirrors every line matching mask to another logger, expanding
// the mask to include the levels a trace category implies.
func (l *Logger) Cc(mask Level, to *Logger) {
	if mask&LevelTraceAll != 0 {
		mask |= LevelDebug
	}
	if mask&LevelDebug != 0 {
		mask |= LevelInfo
	}
	if mask&LevelInfo != 0 {
		mask |= LevelError
	}
	l.cc = append(l.cc, ccTarget{mask, to})
}

// Close releases the underlying file, if any.
func (l *Logger) Close() error {
	if l.mode == modeFile {
		if f, ok := l.out.(*os.File); ok {
			return f.Close()
		}
	}
	return nil
}

func (l *Logger) timePrefix() string {
	if l.mode != modeFile {
		return ""
	}
	return time.Now().Format("2006-01-02 15:04:05")
}

func (l *Logger) rotate() {
	file, ok := l.out.(*os.File)
	if !ok {
		return
	}
	stat, err := file.Stat()
	if err != nil || stat.Size() <= l.maxFileSize {
		return
	}
	rotateGzip(file, l.path, l.maxBackupFiles)
}

func (l *Logger) write(level Level, line string) {
	l.lock.Lock()
	defer l.lock.Unlock()

	if l.out == nil && l.mode == modeFile {
		os.MkdirAll(filepath.Dir(l.path), 0755)
		l.out, _ = os.OpenFile(l.path, os.O_WRONLY|os.O_APPEND|os.O_CREATE, 0644)
	}
	if l.out == nil {
		return
	}
	if l.mode == modeFile {
		l.rotate()
	}

	prefix := l.timePrefix()
	var full string
	if prefix != "" {
		full = prefix + " " + line + "\n"
	} else {
		full = line + "\n"
	}

	if l.mode == modeColorConsole && isTerminal() {
		colorWrite(l.out, level, full)
	} else {
		io.WriteString(l.out, full)
	}

	for _, cc := range l.cc {
		if cc.mask&level != 0 {
			cc.to.write(level, line)
		}
	}
}

// LogMessage is a single, possibly multi-line, log entry. Lines added
// to it are not visible until Commit, so a transaction's several
// lines of narration appear atomically even under concurrent writers.
type LogMessage struct {
	logger *Logger
	parent *LogMessage
	lines  []logLine
}

type logLine struct {
	level Level
	text  string
}

// Begin returns a child message whose lines fold into msg's when the
// child is committed, letting a caller build up a nested entry (e.g.
// one transaction's several phases) before publishing it as a whole.
func (msg *LogMessage) Begin() *LogMessage {
	return &LogMessage{logger: msg.logger, parent: msg}
}

func (msg *LogMessage) add(level Level, format string, args ...any) *LogMessage {
	msg.lines = append(msg.lines, logLine{level, fmt.Sprintf(format, args...)})
	return msg
}

// Error appends a LevelError line.
func (msg *LogMessage) Error(format string, args ...any) *LogMessage {
	return msg.add(LevelError, format, args...)
}

// Info appends a LevelInfo line.
func (msg *LogMessage) Info(format string, args ...any) *LogMessage {
	return msg.add(LevelInfo, format, args...)
}

// Debug appends a LevelDebug line.
func (msg *LogMessage) Debug(format string, args ...any) *LogMessage {
	return msg.add(LevelDebug, format, args...)
}

// Trace appends a line at the given trace level (LevelTraceUSB,
// LevelTracePTP, LevelTraceQuirk or LevelTraceActor).
func (msg *LogMessage) Trace(level Level, format string, args ...any) *LogMessage {
	return msg.add(level, format, args...)
}

// Nl appends a blank line, used to separate sections within a
// multi-line message (e.g. between a hex dump and what follows it).
func (msg *LogMessage) Nl(level Level) *LogMessage {
	return msg.add(level, "")
}

// HexDump appends data as a 16-bytes-per-line hex+ASCII dump at level.
func (msg *LogMessage) HexDump(level Level, data []byte) *LogMessage {
	off := 0
	for len(data) > 0 {
		sz := len(data)
		if sz > 16 {
			sz = 16
		}
		var hex, chr bytes.Buffer
		for i := 0; i < sz; i++ {
			c := data[i]
			fmt.Fprintf(&hex, "%02x", c)
			if i%4 == 3 {
				hex.WriteByte(':')
			} else {
				hex.WriteByte(' ')
			}
			if 0x20 <= c && c < 0x80 {
				chr.WriteByte(c)
			} else {
				chr.WriteByte('.')
			}
		}
		for i := sz; i < 16; i++ {
			hex.WriteString("   ")
		}
		msg.add(level, "%04x: %s %s", off, hex.String(), chr.String())
		off += sz
		data = data[sz:]
	}
	return msg
}

// Commit publishes msg's lines. A message folds into its parent; if
// that parent is itself the logger's root (no grandparent), the fold
// continues straight through to the logger, so one level of Begin()
// still writes on Commit without needing the root committed
// separately. Deeper nesting stops at the fold and waits for an
// ancestor's own Commit.
func (msg *LogMessage) Commit() {
	if len(msg.lines) == 0 {
		return
	}
	if msg.parent != nil {
		msg.parent.lines = append(msg.parent.lines, msg.lines...)
		msg.lines = nil
		if msg.parent.parent != nil {
			return
		}
		msg = msg.parent
	}
	for _, l := range msg.lines {
		msg.logger.write(l.level, l.text)
	}
	msg.lines = nil
}

// Exit commits msg and all its ancestors, then terminates the process
// with status 1 — used for fatal startup errors only.
func (msg *LogMessage) Exit(format string, args ...any) {
	msg.Error(format, args...)
	for m := msg; m != nil; m = m.parent {
		m.Commit()
	}
	os.Exit(1)
}

// Check calls Exit if err is non-nil.
func (msg *LogMessage) Check(err error) {
	if err != nil {
		msg.Exit("%s", err)
	}
}
