/* swiftmtp - MTP/PTP host-side protocol engine
 *
 * Daemon configuration: defaults plus an INI file overlay.
 */

package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/ini.v1"

	"github.com/swiftmtp/swiftmtp/internal/logging"
)

// Configuration is the daemon's top-level settings, the equivalent of
// the teacher's Configuration plus the per-device DevState fields
// that have no HTTP-proxy counterpart here.
type Configuration struct {
	LogDevice  logging.Level // per-device log file mask
	LogMain    logging.Level // main daemon log mask
	LogConsole logging.Level // console mask

	LogMaxFileSize    int64 // bytes, before rotation
	LogMaxBackupFiles uint  // rotated files kept
	ColorConsole      bool  // ANSI color on a tty

	StrictMode bool // skip learned-profile and static-quirk merge layers
	SafeMode   bool // force conservative tuning regardless of quirks

	DeniedQuirkIDs map[string]bool // quirk database entries to ignore

	ProfileDir    string // learned-profile JSON files, one per fingerprint
	LockFile      string // single-instance lock path
	ControlSocket string // Unix-domain control socket path
	IndexPath     string // reference SQLite object index path
}

// Default returns the configuration a fresh install starts with,
// mirroring the teacher's package-level Conf defaults.
func Default() Configuration {
	return Configuration{
		LogDevice:         logging.LevelDebug,
		LogMain:           logging.LevelDebug,
		LogConsole:        logging.LevelInfo,
		LogMaxFileSize:    256 * 1024,
		LogMaxBackupFiles: 5,
		ColorConsole:      true,
		DeniedQuirkIDs:    make(map[string]bool),
		ProfileDir:        DirProfiles,
		LockFile:          FileLock,
		ControlSocket:     FileControlSocket,
		IndexPath:         FileIndex,
	}
}

// Load builds a Configuration from Default, overlaid with path if it
// exists. A missing file is not an error, matching the teacher's
// ConfLoad treatment of os.IsNotExist.
func Load(path string) (Configuration, error) {
	conf := Default()

	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return conf, nil
		}
		return conf, fmt.Errorf("config: %w", err)
	}

	file, err := ini.Load(path)
	if err != nil {
		return conf, fmt.Errorf("config: %w", err)
	}

	if sec := file.Section("logging"); sec != nil {
		if k := sec.Key("device-log"); k.String() != "" {
			lvl, err := parseLogLevel(k.String())
			if err != nil {
				return conf, fmt.Errorf("config: device-log: %w", err)
			}
			conf.LogDevice = lvl
		}
		if k := sec.Key("main-log"); k.String() != "" {
			lvl, err := parseLogLevel(k.String())
			if err != nil {
				return conf, fmt.Errorf("config: main-log: %w", err)
			}
			conf.LogMain = lvl
		}
		if k := sec.Key("console-log"); k.String() != "" {
			lvl, err := parseLogLevel(k.String())
			if err != nil {
				return conf, fmt.Errorf("config: console-log: %w", err)
			}
			conf.LogConsole = lvl
		}
		if k := sec.Key("console-color"); k.String() != "" {
			conf.ColorConsole, err = k.Bool()
			if err != nil {
				return conf, fmt.Errorf("config: console-color: %w", err)
			}
		}
		if k := sec.Key("max-file-size"); k.String() != "" {
			sz, err := k.Int64()
			if err != nil {
				return conf, fmt.Errorf("config: max-file-size: %w", err)
			}
			conf.LogMaxFileSize = sz
		}
		if k := sec.Key("max-backup-files"); k.String() != "" {
			n, err := k.Uint()
			if err != nil {
				return conf, fmt.Errorf("config: max-backup-files: %w", err)
			}
			conf.LogMaxBackupFiles = n
		}
	}

	if sec := file.Section("quirks"); sec != nil {
		if k := sec.Key("strict-mode"); k.String() != "" {
			conf.StrictMode, err = k.Bool()
			if err != nil {
				return conf, fmt.Errorf("config: strict-mode: %w", err)
			}
		}
		if k := sec.Key("safe-mode"); k.String() != "" {
			conf.SafeMode, err = k.Bool()
			if err != nil {
				return conf, fmt.Errorf("config: safe-mode: %w", err)
			}
		}
		if k := sec.Key("deny"); k.String() != "" {
			for _, id := range strings.Split(k.String(), ",") {
				id = strings.TrimSpace(id)
				if id != "" {
					conf.DeniedQuirkIDs[id] = true
				}
			}
		}
	}

	if sec := file.Section("state"); sec != nil {
		if k := sec.Key("profile-dir"); k.String() != "" {
			conf.ProfileDir = k.String()
		}
		if k := sec.Key("lock-file"); k.String() != "" {
			conf.LockFile = k.String()
		}
		if k := sec.Key("control-socket"); k.String() != "" {
			conf.ControlSocket = k.String()
		}
		if k := sec.Key("index-path"); k.String() != "" {
			conf.IndexPath = k.String()
		}
	}

	return conf, nil
}

// LoadDefaultLocations tries the standard config file locations, in
// the same spirit as the teacher's ConfLoad searching /etc and the
// directory the executable lives in. A location with no file is
// skipped; when both files exist, the later one wins.
func LoadDefaultLocations() (Configuration, error) {
	exepath, err := os.Executable()
	if err != nil {
		return Default(), fmt.Errorf("config: %w", err)
	}
	exepath = filepath.Dir(exepath)

	conf := Default()
	for _, path := range []string{
		filepath.Join(DirConf, FileConf),
		filepath.Join(exepath, FileConf),
	} {
		if _, statErr := os.Stat(path); os.IsNotExist(statErr) {
			continue
		}
		conf, err = Load(path)
		if err != nil {
			return conf, err
		}
	}
	return conf, nil
}

func parseLogLevel(s string) (logging.Level, error) {
	var mask logging.Level
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		switch part {
		case "":
		case "error":
			mask |= logging.LevelError
		case "info":
			mask |= logging.LevelInfo | logging.LevelError
		case "debug":
			mask |= logging.LevelDebug | logging.LevelInfo | logging.LevelError
		case "trace-usb":
			mask |= logging.LevelTraceUSB | logging.LevelDebug | logging.LevelInfo | logging.LevelError
		case "trace-ptp":
			mask |= logging.LevelTracePTP | logging.LevelDebug | logging.LevelInfo | logging.LevelError
		case "trace-quirk":
			mask |= logging.LevelTraceQuirk | logging.LevelDebug | logging.LevelInfo | logging.LevelError
		case "trace-actor":
			mask |= logging.LevelTraceActor | logging.LevelDebug | logging.LevelInfo | logging.LevelError
		case "all":
			mask |= logging.LevelAll
		default:
			return 0, fmt.Errorf("invalid log level %q", part)
		}
	}
	return mask, nil
}
