/* swiftmtp - MTP/PTP host-side protocol engine
 *
 * Fallback ladder (§4.6): named rungs tried in order, short-circuit
 * on first success, every attempt recorded.
 */

package fallback

import (
	"context"
	"fmt"
	"time"
)

// Rung is one named, failable operation in a ladder.
type Rung[T any] struct {
	Name string
	Run  func(ctx context.Context) (T, error)
}

// Attempt records the outcome of running one rung.
type Attempt struct {
	Name       string
	Succeeded  bool
	Err        error
	DurationMs int64
}

// AllFailedError is thrown when every rung in a ladder fails. Its
// Error() lists every rung name and the error it produced.
type AllFailedError struct {
	Attempts []Attempt
}

func (e *AllFailedError) Error() string {
	msg := "fallback: all rungs failed:"
	for _, a := range e.Attempts {
		msg += fmt.Sprintf(" [%s: %s]", a.Name, a.Err)
	}
	return msg
}

// ErrEmptyLadder is returned immediately when Run is called with no
// rungs.
var ErrEmptyLadder = fmt.Errorf("fallback: ladder has no rungs")

// Run executes rungs in order, returning the first success. If
// every rung fails, it returns AllFailedError{Attempts}. Run never
// bakes opcode-specific policy into itself: the rungs are the
// entire policy.
func Run[T any](ctx context.Context, rungs []Rung[T]) (T, []Attempt, error) {
	var zero T
	if len(rungs) == 0 {
		return zero, nil, ErrEmptyLadder
	}

	attempts := make([]Attempt, 0, len(rungs))
	for _, rung := range rungs {
		start := time.Now()
		result, err := rung.Run(ctx)
		elapsed := time.Since(start).Milliseconds()

		if err == nil {
			attempts = append(attempts, Attempt{Name: rung.Name, Succeeded: true, DurationMs: elapsed})
			return result, attempts, nil
		}
		attempts = append(attempts, Attempt{Name: rung.Name, Succeeded: false, Err: err, DurationMs: elapsed})
	}

	return zero, attempts, &AllFailedError{Attempts: attempts}
}
