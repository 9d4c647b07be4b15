package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/swiftmtp/swiftmtp/internal/logging"
)

func TestLoadMissingFileReturnsDefaults(t *testing.T) {
	conf, err := Load(filepath.Join(t.TempDir(), "does-not-exist.conf"))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	want := Default()
	if conf.LogMain != want.LogMain || conf.LogMaxFileSize != want.LogMaxFileSize {
		t.Errorf("got %+v, want defaults %+v", conf, want)
	}
}

func TestLoadOverridesSelectedFields(t *testing.T) {
	path := filepath.Join(t.TempDir(), "swiftmtp.conf")
	body := `
[logging]
main-log = debug
console-log = error
console-color = false
max-file-size = 1048576
max-backup-files = 2

[quirks]
strict-mode = true
safe-mode = false
deny = usb-vendor-quirk-1, usb-vendor-quirk-2

[state]
profile-dir = /tmp/swiftmtp-profiles
`
	if err := os.WriteFile(path, []byte(body), 0644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	conf, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	wantMain := logging.LevelDebug | logging.LevelInfo | logging.LevelError
	if conf.LogMain != wantMain {
		t.Errorf("got LogMain %v, want %v", conf.LogMain, wantMain)
	}
	if conf.LogConsole != logging.LevelError {
		t.Errorf("got LogConsole %v, want LevelError", conf.LogConsole)
	}
	if conf.ColorConsole {
		t.Error("expected console-color=false to disable ColorConsole")
	}
	if conf.LogMaxFileSize != 1048576 {
		t.Errorf("got LogMaxFileSize %d, want 1048576", conf.LogMaxFileSize)
	}
	if conf.LogMaxBackupFiles != 2 {
		t.Errorf("got LogMaxBackupFiles %d, want 2", conf.LogMaxBackupFiles)
	}
	if !conf.StrictMode {
		t.Error("expected strict-mode=true")
	}
	if conf.SafeMode {
		t.Error("expected safe-mode=false")
	}
	if !conf.DeniedQuirkIDs["usb-vendor-quirk-1"] || !conf.DeniedQuirkIDs["usb-vendor-quirk-2"] {
		t.Errorf("got denied ids %v, want both quirks present", conf.DeniedQuirkIDs)
	}
	if conf.ProfileDir != "/tmp/swiftmtp-profiles" {
		t.Errorf("got ProfileDir %q", conf.ProfileDir)
	}
}

func TestLoadRejectsUnknownLogLevel(t *testing.T) {
	path := filepath.Join(t.TempDir(), "swiftmtp.conf")
	body := "[logging]\nmain-log = verbose\n"
	if err := os.WriteFile(path, []byte(body), 0644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	if _, err := Load(path); err == nil {
		t.Fatal("expected an error for an invalid log level")
	}
}
