/* swiftmtp - MTP/PTP host-side protocol engine
 *
 * Per-fingerprint persistent state: the learned-profile cache
 * (§4.5), one small JSON file per device fingerprint, the same
 * one-file-per-identity shape as the teacher's DevState.
 */

package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/swiftmtp/swiftmtp/quirk"
)

// ProfileStore persists quirk.LearnedProfile records under dir, one
// file per fingerprint.
type ProfileStore struct {
	dir string
}

// NewProfileStore returns a store rooted at dir, creating it on first
// Save if it does not yet exist.
func NewProfileStore(dir string) *ProfileStore {
	return &ProfileStore{dir: dir}
}

func (s *ProfileStore) path(fingerprint string) string {
	return filepath.Join(s.dir, fingerprint+".json")
}

// Load reads the learned profile for fingerprint. A missing file is
// not an error: it returns the zero LearnedProfile and ok=false,
// matching a device swiftmtp has never seen before.
func (s *ProfileStore) Load(fingerprint string) (profile quirk.LearnedProfile, ok bool, err error) {
	data, err := os.ReadFile(s.path(fingerprint))
	if err != nil {
		if os.IsNotExist(err) {
			return quirk.LearnedProfile{}, false, nil
		}
		return quirk.LearnedProfile{}, false, fmt.Errorf("profile: %w", err)
	}

	if err := json.Unmarshal(data, &profile); err != nil {
		return quirk.LearnedProfile{}, false, fmt.Errorf("profile: %s: %w", fingerprint, err)
	}
	return profile, true, nil
}

// Save writes profile to disk under its own Fingerprint.
func (s *ProfileStore) Save(profile quirk.LearnedProfile) error {
	if profile.Fingerprint == "" {
		return fmt.Errorf("profile: cannot save a profile with no fingerprint")
	}
	if err := os.MkdirAll(s.dir, 0755); err != nil {
		return fmt.Errorf("profile: %w", err)
	}

	data, err := json.MarshalIndent(profile, "", "  ")
	if err != nil {
		return fmt.Errorf("profile: %w", err)
	}

	tmp := s.path(profile.Fingerprint) + ".tmp"
	if err := os.WriteFile(tmp, data, 0644); err != nil {
		return fmt.Errorf("profile: %w", err)
	}
	if err := os.Rename(tmp, s.path(profile.Fingerprint)); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("profile: %w", err)
	}
	return nil
}

// Delete removes the stored profile for fingerprint, if any.
func (s *ProfileStore) Delete(fingerprint string) error {
	err := os.Remove(s.path(fingerprint))
	if err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("profile: %w", err)
	}
	return nil
}
