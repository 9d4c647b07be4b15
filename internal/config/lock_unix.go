//go:build unix

/* swiftmtp - MTP/PTP host-side protocol engine
 *
 * Single-instance lock via flock(2), the same mechanism as the
 * teacher's flock_unix.go.
 */

package config

import (
	"errors"
	"os"
	"path/filepath"
	"syscall"
)

// ErrLockBusy is returned by AcquireLock when another instance
// already holds the lock.
var ErrLockBusy = errors.New("config: another instance is already running")

// Lock represents an acquired single-instance lock, held by keeping
// its underlying file open and flock'd.
type Lock struct {
	file *os.File
}

// AcquireLock opens (creating if needed) the file at path and takes a
// non-blocking exclusive flock on it. The lock is released by
// Release, or implicitly when the process exits.
func AcquireLock(path string) (*Lock, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, err
	}

	file, err := os.OpenFile(path, os.O_RDWR|os.O_CREATE, 0644)
	if err != nil {
		return nil, err
	}

	err = syscall.Flock(int(file.Fd()), syscall.LOCK_EX|syscall.LOCK_NB)
	if err == syscall.EWOULDBLOCK {
		file.Close()
		return nil, ErrLockBusy
	}
	if err != nil {
		file.Close()
		return nil, err
	}

	return &Lock{file: file}, nil
}

// Release unlocks and closes the lock file.
func (l *Lock) Release() error {
	syscall.Flock(int(l.file.Fd()), syscall.LOCK_UN)
	return l.file.Close()
}
