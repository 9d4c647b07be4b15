//go:build unix

package config

import (
	"path/filepath"
	"testing"
)

func TestAcquireLockThenReleaseAllowsReacquire(t *testing.T) {
	path := filepath.Join(t.TempDir(), "swiftmtp.lock")

	lock, err := AcquireLock(path)
	if err != nil {
		t.Fatalf("AcquireLock: %v", err)
	}
	if err := lock.Release(); err != nil {
		t.Fatalf("Release: %v", err)
	}

	lock2, err := AcquireLock(path)
	if err != nil {
		t.Fatalf("AcquireLock after Release: %v", err)
	}
	lock2.Release()
}

func TestAcquireLockFailsWhileHeld(t *testing.T) {
	path := filepath.Join(t.TempDir(), "swiftmtp.lock")

	lock, err := AcquireLock(path)
	if err != nil {
		t.Fatalf("AcquireLock: %v", err)
	}
	defer lock.Release()

	_, err = AcquireLock(path)
	if err != ErrLockBusy {
		t.Fatalf("got %v, want ErrLockBusy", err)
	}
}
