/* swiftmtp - MTP/PTP host-side protocol engine
 *
 * Static quirk database (§4.5, §6): JSON records loaded at startup,
 * matched by specificity (count of populated match fields).
 *
 * Adapted from the teacher's hwid.go HWIDPattern.Match weighting
 * (exact VID+PID beats VID-only beats no match) into spec.md's more
 * general "count of populated match fields" scheme.
 */

package quirk

import (
	"encoding/json"
	"fmt"
)

// Confidence levels a quirk record carries.
type Confidence string

// Recognized confidence levels.
const (
	ConfidenceLow    Confidence = "low"
	ConfidenceMedium Confidence = "medium"
	ConfidenceHigh   Confidence = "high"
)

// Status levels a quirk record's lifecycle can be in.
type Status string

// Recognized statuses.
const (
	StatusExperimental Status = "experimental"
	StatusStable        Status = "stable"
	StatusPromoted      Status = "promoted"
)

// HookPhase names a point in the connect/transfer lifecycle a hook
// may fire at.
type HookPhase string

// Recognized hook phases.
const (
	PhasePostOpenUSB         HookPhase = "postOpenUSB"
	PhasePostClaimInterface  HookPhase = "postClaimInterface"
	PhasePostOpenSession     HookPhase = "postOpenSession"
	PhaseBeforeGetDeviceInfo HookPhase = "beforeGetDeviceInfo"
	PhaseBeforeGetStorageIDs HookPhase = "beforeGetStorageIDs"
	PhaseBeforeTransfer      HookPhase = "beforeTransfer"
	PhaseAfterTransfer       HookPhase = "afterTransfer"
	PhaseOnDeviceBusy        HookPhase = "onDeviceBusy"
)

// Hook is a phase-indexed delay or busy-backoff parameter set a
// quirk can attach to the connect/transfer lifecycle.
type Hook struct {
	Phase    HookPhase `json:"phase"`
	DelayMs  uint32    `json:"delayMs,omitempty"`
	Retries  uint32    `json:"retries,omitempty"`
	BaseMs   uint32    `json:"baseMs,omitempty"`
}

// MatchCriteria is the optional-field match predicate of a
// DeviceQuirk. VID is always required by the schema; every other
// field is optional and its presence increases specificity.
type MatchCriteria struct {
	VID            uint16  `json:"vid"`
	PID            *uint16 `json:"pid,omitempty"`
	BcdDevice      *uint16 `json:"bcdDevice,omitempty"`
	IfaceClass     *uint8  `json:"ifaceClass,omitempty"`
	IfaceSubclass  *uint8  `json:"ifaceSubclass,omitempty"`
	IfaceProtocol  *uint8  `json:"ifaceProtocol,omitempty"`
}

// Specificity counts the populated match fields: VID always counts,
// plus one for each optional field that is set.
func (m MatchCriteria) Specificity() int {
	n := 1 // VID
	if m.PID != nil {
		n++
	}
	if m.BcdDevice != nil {
		n++
	}
	if m.IfaceClass != nil {
		n++
	}
	if m.IfaceSubclass != nil {
		n++
	}
	if m.IfaceProtocol != nil {
		n++
	}
	return n
}

// Matches reports whether id satisfies every populated field of m.
func (m MatchCriteria) Matches(id Identity) bool {
	if m.VID != id.VID {
		return false
	}
	if m.PID != nil && *m.PID != id.PID {
		return false
	}
	if m.BcdDevice != nil && *m.BcdDevice != id.BcdDevice {
		return false
	}
	if m.IfaceClass != nil && *m.IfaceClass != id.Iface.Class {
		return false
	}
	if m.IfaceSubclass != nil && *m.IfaceSubclass != id.Iface.Subclass {
		return false
	}
	if m.IfaceProtocol != nil && *m.IfaceProtocol != id.Iface.Protocol {
		return false
	}
	return true
}

// TuningOverrides is a partial Tuning: only non-nil fields override
// the layer beneath them.
type TuningOverrides struct {
	MaxChunkBytes       *uint32 `json:"maxChunkBytes,omitempty"`
	IOTimeoutMs         *uint32 `json:"ioTimeoutMs,omitempty"`
	HandshakeTimeoutMs  *uint32 `json:"handshakeTimeoutMs,omitempty"`
	InactivityTimeoutMs *uint32 `json:"inactivityTimeoutMs,omitempty"`
	OverallDeadlineMs   *uint32 `json:"overallDeadlineMs,omitempty"`
	StabilizeDelayMs    *uint32 `json:"stabilizeDelayMs,omitempty"`
}

// Apply folds the populated fields of o into t.
func (o TuningOverrides) Apply(t Tuning) Tuning {
	if o.MaxChunkBytes != nil {
		t.MaxChunkBytes = *o.MaxChunkBytes
	}
	if o.IOTimeoutMs != nil {
		t.IOTimeoutMs = *o.IOTimeoutMs
	}
	if o.HandshakeTimeoutMs != nil {
		t.HandshakeTimeoutMs = *o.HandshakeTimeoutMs
	}
	if o.InactivityTimeoutMs != nil {
		t.InactivityTimeoutMs = *o.InactivityTimeoutMs
	}
	if o.OverallDeadlineMs != nil {
		t.OverallDeadlineMs = *o.OverallDeadlineMs
	}
	if o.StabilizeDelayMs != nil {
		t.StabilizeDelayMs = *o.StabilizeDelayMs
	}
	return t
}

// FlagOverrides is a partial Flags: only non-nil fields override
// the layer beneath them.
type FlagOverrides struct {
	SupportsGetObjectPropList       *bool `json:"supportsGetObjectPropList,omitempty"`
	PrefersPropListEnumeration      *bool `json:"prefersPropListEnumeration,omitempty"`
	RequiresKernelDetach            *bool `json:"requiresKernelDetach,omitempty"`
	SupportsGetPartialObject64      *bool `json:"supportsGetPartialObject64,omitempty"`
	SupportsSendPartialObject       *bool `json:"supportsSendPartialObject,omitempty"`
	ResetReopenOnOpenSessionIOError *bool `json:"resetReopenOnOpenSessionIOError,omitempty"`
	VerifyAfterWrite                *bool `json:"verifyAfterWrite,omitempty"`
	AllowUnknownObjectInfoSizeRetry *bool `json:"allowUnknownObjectInfoSizeRetry,omitempty"`
}

// Apply folds the populated fields of o into f.
func (o FlagOverrides) Apply(f Flags) Flags {
	set := func(dst *bool, src *bool) {
		if src != nil {
			*dst = *src
		}
	}
	set(&f.SupportsGetObjectPropList, o.SupportsGetObjectPropList)
	set(&f.PrefersPropListEnumeration, o.PrefersPropListEnumeration)
	set(&f.RequiresKernelDetach, o.RequiresKernelDetach)
	set(&f.SupportsGetPartialObject64, o.SupportsGetPartialObject64)
	set(&f.SupportsSendPartialObject, o.SupportsSendPartialObject)
	set(&f.ResetReopenOnOpenSessionIOError, o.ResetReopenOnOpenSessionIOError)
	set(&f.VerifyAfterWrite, o.VerifyAfterWrite)
	set(&f.AllowUnknownObjectInfoSizeRetry, o.AllowUnknownObjectInfoSizeRetry)
	return f
}

// DeviceQuirk is a single static quirk database record.
type DeviceQuirk struct {
	ID                string          `json:"id"`
	Match             MatchCriteria   `json:"match"`
	Tuning            TuningOverrides `json:"tuning"`
	Flags             FlagOverrides   `json:"flags"`
	Operations        map[string]bool `json:"operations,omitempty"`
	Hooks             []Hook          `json:"hooks,omitempty"`
	Confidence        Confidence      `json:"confidence"`
	Status            Status          `json:"status"`
	EvidenceRequired  []string        `json:"evidenceRequired,omitempty"`
	LastVerifiedDate  string          `json:"lastVerifiedDate,omitempty"`
	LastVerifiedBy    string          `json:"lastVerifiedBy,omitempty"`
}

// validate enforces the promoted-status invariant: evidenceRequired,
// lastVerifiedDate, and lastVerifiedBy are mandatory for promoted
// entries.
func (q DeviceQuirk) validate() error {
	if q.Status != StatusPromoted {
		return nil
	}
	if len(q.EvidenceRequired) == 0 {
		return fmt.Errorf("quirk %q: status promoted requires evidenceRequired", q.ID)
	}
	if q.LastVerifiedDate == "" {
		return fmt.Errorf("quirk %q: status promoted requires lastVerifiedDate", q.ID)
	}
	if q.LastVerifiedBy == "" {
		return fmt.Errorf("quirk %q: status promoted requires lastVerifiedBy", q.ID)
	}
	return nil
}

// supportedSchemaVersions lists the quirks-JSON schema versions this
// engine understands (§6: "implementations must accept both").
var supportedSchemaVersions = map[string]bool{
	"1.0": true,
	"2.0": true,
}

// DB is an immutable, loaded static quirk database (§5 "the quirk
// database is read-only").
type DB struct {
	SchemaVersion string
	Entries       []DeviceQuirk
}

type dbFile struct {
	SchemaVersion string        `json:"schemaVersion"`
	Entries       []DeviceQuirk `json:"entries"`
}

// LoadDB parses a quirks-JSON document. It rejects unsupported
// schema versions and any entry that fails promoted-status
// validation.
func LoadDB(data []byte) (*DB, error) {
	var raw dbFile
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("quirk: parse quirks db: %w", err)
	}
	if !supportedSchemaVersions[raw.SchemaVersion] {
		return nil, fmt.Errorf("quirk: unsupported schemaVersion %q", raw.SchemaVersion)
	}
	for _, e := range raw.Entries {
		if err := e.validate(); err != nil {
			return nil, err
		}
	}
	return &DB{SchemaVersion: raw.SchemaVersion, Entries: raw.Entries}, nil
}

// MatchByFingerprint returns the record with the highest specificity
// score among those whose MatchCriteria is satisfied by id, ties
// broken by record order (first entry in the JSON file wins). ok is
// false if no record matches.
func (db *DB) MatchByFingerprint(id Identity) (DeviceQuirk, bool) {
	bestIdx := -1
	bestScore := -1
	for i, q := range db.Entries {
		if !q.Match.Matches(id) {
			continue
		}
		score := q.Match.Specificity()
		if score > bestScore {
			bestScore = score
			bestIdx = i
		}
	}
	if bestIdx < 0 {
		return DeviceQuirk{}, false
	}
	return db.Entries[bestIdx], true
}
