/* swiftmtp - MTP/PTP host-side protocol engine
 *
 * Transaction log (§4.11): a bounded ring buffer of per-transaction
 * records, grounded on teacher's statusTable (status.go): a
 * mutex-guarded, bounded table of per-device records dumped on
 * demand.
 */

package telemetry

import (
	"regexp"
	"sync"
	"time"

	"github.com/google/uuid"
)

// TransactionRecord is one logged transaction.
type TransactionRecord struct {
	ID         string
	DeviceID   string
	Operation  string
	Outcome    Outcome
	DurationMs int64
	Detail     string // free-form, e.g. the error string; subject to redaction on Dump
	Timestamp  time.Time
}

// NewTransactionRecord stamps a fresh record with a random
// correlation id.
func NewTransactionRecord(deviceID, operation string, outcome Outcome, durationMs int64, detail string, timestamp time.Time) TransactionRecord {
	return TransactionRecord{
		ID:         uuid.NewString(),
		DeviceID:   deviceID,
		Operation:  operation,
		Outcome:    outcome,
		DurationMs: durationMs,
		Detail:     detail,
		Timestamp:  timestamp,
	}
}

// serialLike matches hex tokens 8 characters or longer: USB serial
// numbers and similar device-identifying strings that shouldn't leak
// into a redacted dump.
var serialLike = regexp.MustCompile(`(?i)\b[0-9a-f]{8,}\b`)

const redactedPlaceholder = "<redacted>"

// TransactionLog is a bounded ring buffer of TransactionRecords; once
// full, appending evicts the oldest record.
type TransactionLog struct {
	mu       sync.Mutex
	capacity int
	records  []TransactionRecord
	next     int // index the next Append writes to
	size     int // number of valid records currently held
}

// NewTransactionLog returns a log holding at most capacity records.
func NewTransactionLog(capacity int) *TransactionLog {
	if capacity < 1 {
		capacity = 1
	}
	return &TransactionLog{
		capacity: capacity,
		records:  make([]TransactionRecord, capacity),
	}
}

// Append adds rec, evicting the oldest record if the log is full.
func (l *TransactionLog) Append(rec TransactionRecord) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.records[l.next] = rec
	l.next = (l.next + 1) % l.capacity
	if l.size < l.capacity {
		l.size++
	}
}

// Dump returns every held record, oldest first. When redacting is
// true, Detail, Operation, and DeviceID have every serial-number-like
// hex token (8+ hex digits) replaced with "<redacted>".
func (l *TransactionLog) Dump(redacting bool) []TransactionRecord {
	l.mu.Lock()
	defer l.mu.Unlock()

	out := make([]TransactionRecord, l.size)
	start := (l.next - l.size + l.capacity) % l.capacity
	for i := 0; i < l.size; i++ {
		rec := l.records[(start+i)%l.capacity]
		if redacting {
			rec.Detail = serialLike.ReplaceAllString(rec.Detail, redactedPlaceholder)
			rec.Operation = serialLike.ReplaceAllString(rec.Operation, redactedPlaceholder)
			rec.DeviceID = serialLike.ReplaceAllString(rec.DeviceID, redactedPlaceholder)
		}
		out[i] = rec
	}
	return out
}
