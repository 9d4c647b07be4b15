/* swiftmtp - MTP/PTP host-side protocol engine
 *
 * Reference object index: a concrete, swappable SQLite-backed
 * implementation of the on-disk index of discovered objects the
 * engine treats as an external collaborator. The CLI's `get`
 * subcommand looks up an object's size here; `list` re-enumerates the
 * device on every invocation and rewrites the device's records.
 */

package index

import (
	"context"
	"database/sql"
	"fmt"

	_ "modernc.org/sqlite"

	"github.com/swiftmtp/swiftmtp/ptp"
)

// ObjectRecord is one object's indexed metadata, scoped to the device
// it was enumerated from.
type ObjectRecord struct {
	DeviceID         string
	Handle           uint32
	StorageID        uint32
	Parent           uint32
	Format           ptp.ObjectFormat
	AssociationType  uint16
	Size             uint64
	Filename         string
	CaptureDate      string
	ModificationDate string
}

// Index is a SQLite-backed store of ObjectRecords.
type Index struct {
	db *sql.DB
}

const schema = `
CREATE TABLE IF NOT EXISTS objects (
	device_id         TEXT    NOT NULL,
	handle            INTEGER NOT NULL,
	storage_id        INTEGER NOT NULL,
	parent            INTEGER NOT NULL,
	format            INTEGER NOT NULL,
	association_type  INTEGER NOT NULL DEFAULT 0,
	size              INTEGER NOT NULL,
	filename          TEXT    NOT NULL,
	capture_date      TEXT    NOT NULL DEFAULT '',
	modification_date TEXT    NOT NULL DEFAULT '',
	PRIMARY KEY (device_id, handle)
);
CREATE INDEX IF NOT EXISTS objects_by_parent ON objects (device_id, storage_id, parent);
`

// Open opens (creating if necessary) the SQLite database at path and
// ensures its schema exists. path may be ":memory:" for a transient
// index.
func Open(path string) (*Index, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("index: open: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("index: migrate: %w", err)
	}
	return &Index{db: db}, nil
}

// Close releases the underlying database handle.
func (ix *Index) Close() error {
	return ix.db.Close()
}

// Upsert inserts rec, or replaces the existing record for the same
// (DeviceID, Handle) pair.
func (ix *Index) Upsert(ctx context.Context, rec ObjectRecord) error {
	_, err := ix.db.ExecContext(ctx, `
		INSERT INTO objects (device_id, handle, storage_id, parent, format, association_type, size, filename, capture_date, modification_date)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (device_id, handle) DO UPDATE SET
			storage_id = excluded.storage_id,
			parent = excluded.parent,
			format = excluded.format,
			association_type = excluded.association_type,
			size = excluded.size,
			filename = excluded.filename,
			capture_date = excluded.capture_date,
			modification_date = excluded.modification_date
	`, rec.DeviceID, rec.Handle, rec.StorageID, rec.Parent, uint16(rec.Format), rec.AssociationType, rec.Size, rec.Filename, rec.CaptureDate, rec.ModificationDate)
	if err != nil {
		return fmt.Errorf("index: upsert: %w", err)
	}
	return nil
}

// ReplaceAll atomically replaces every record held for deviceID with
// records, the pattern a fresh actor.List enumeration refresh uses.
func (ix *Index) ReplaceAll(ctx context.Context, deviceID string, records []ObjectRecord) error {
	tx, err := ix.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("index: begin: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM objects WHERE device_id = ?`, deviceID); err != nil {
		return fmt.Errorf("index: clear: %w", err)
	}

	for _, rec := range records {
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO objects (device_id, handle, storage_id, parent, format, association_type, size, filename, capture_date, modification_date)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		`, deviceID, rec.Handle, rec.StorageID, rec.Parent, uint16(rec.Format), rec.AssociationType, rec.Size, rec.Filename, rec.CaptureDate, rec.ModificationDate); err != nil {
			return fmt.Errorf("index: insert: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("index: commit: %w", err)
	}
	return nil
}

// Get returns the record for (deviceID, handle), or ok=false if
// nothing is indexed under that pair.
func (ix *Index) Get(ctx context.Context, deviceID string, handle uint32) (rec ObjectRecord, ok bool, err error) {
	row := ix.db.QueryRowContext(ctx, `
		SELECT device_id, handle, storage_id, parent, format, association_type, size, filename, capture_date, modification_date
		FROM objects WHERE device_id = ? AND handle = ?
	`, deviceID, handle)

	rec, err = scanRecord(row)
	if err == sql.ErrNoRows {
		return ObjectRecord{}, false, nil
	}
	if err != nil {
		return ObjectRecord{}, false, fmt.Errorf("index: get: %w", err)
	}
	return rec, true, nil
}

// List returns every record indexed under (deviceID, storageID,
// parent), in no particular order.
func (ix *Index) List(ctx context.Context, deviceID string, storageID, parent uint32) ([]ObjectRecord, error) {
	rows, err := ix.db.QueryContext(ctx, `
		SELECT device_id, handle, storage_id, parent, format, association_type, size, filename, capture_date, modification_date
		FROM objects WHERE device_id = ? AND storage_id = ? AND parent = ?
	`, deviceID, storageID, parent)
	if err != nil {
		return nil, fmt.Errorf("index: list: %w", err)
	}
	defer rows.Close()

	var out []ObjectRecord
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, fmt.Errorf("index: scan: %w", err)
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}

// Delete removes the record for (deviceID, handle), if any.
func (ix *Index) Delete(ctx context.Context, deviceID string, handle uint32) error {
	_, err := ix.db.ExecContext(ctx, `DELETE FROM objects WHERE device_id = ? AND handle = ?`, deviceID, handle)
	if err != nil {
		return fmt.Errorf("index: delete: %w", err)
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRecord(row rowScanner) (ObjectRecord, error) {
	var rec ObjectRecord
	var format uint16
	err := row.Scan(&rec.DeviceID, &rec.Handle, &rec.StorageID, &rec.Parent, &format, &rec.AssociationType, &rec.Size, &rec.Filename, &rec.CaptureDate, &rec.ModificationDate)
	rec.Format = ptp.ObjectFormat(format)
	return rec, err
}
