/* swiftmtp - MTP/PTP host-side protocol engine
 *
 * Ensures the directories a Configuration's paths live under exist
 * before anything tries to open a file inside them.
 */

package main

import (
	"os"
	"path/filepath"

	"github.com/swiftmtp/swiftmtp/internal/config"
)

func ensureStateDirs(cfg config.Configuration) error {
	dirs := map[string]bool{
		filepath.Dir(cfg.LockFile):      true,
		filepath.Dir(cfg.ControlSocket): true,
		filepath.Dir(cfg.IndexPath):     true,
		cfg.ProfileDir:                  true,
	}
	for dir := range dirs {
		if dir == "" || dir == "." {
			continue
		}
		if err := os.MkdirAll(dir, 0755); err != nil {
			return err
		}
	}
	return nil
}
