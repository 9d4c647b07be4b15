/* swiftmtp - MTP/PTP host-side protocol engine
 *
 * BusyBackoff (§4.7): retries only a fixed retryable error set,
 * built on github.com/cenkalti/backoff/v4.
 */

package backoff

import (
	"context"
	"errors"
	"math/rand"
	"time"

	cbackoff "github.com/cenkalti/backoff/v4"

	"github.com/swiftmtp/swiftmtp/protocol"
)

// minSleep is the floor every computed sleep duration is clamped to.
const minSleep = 50 * time.Millisecond

// Params configures a BusyBackoff run.
type Params struct {
	Retries   int
	BaseMs    int64
	JitterPct float64

	// Rand is used to compute jitter; defaults to the package-level
	// rand source when nil, overridable in tests for determinism.
	Rand *rand.Rand
}

// retryable reports whether err belongs to the fixed retryable set:
// SessionNotOpen (0x2003), DeviceBusy (0x2019), and the SessionBusy
// subclass. Everything else — timeouts, ObjectNotFound, arbitrary
// non-PTP errors — propagates immediately.
func retryable(err error) bool {
	return errors.Is(err, protocol.ErrSessionNotOpen) ||
		errors.Is(err, protocol.ErrBusy) ||
		errors.Is(err, protocol.ErrSessionBusy)
}

// sleepDuration computes base_ms * 2^(attempt-1) plus a uniform
// jitter in ±jitter_pct*base, clamped to a 50ms minimum. attempt is
// 1-based (the first retry is attempt 1).
func sleepDuration(p Params, attempt int) time.Duration {
	base := float64(p.BaseMs) * float64(int64(1)<<uint(attempt-1))

	r := p.Rand
	if r == nil {
		r = rand.New(rand.NewSource(time.Now().UnixNano()))
	}

	jitterRange := base * p.JitterPct
	jitter := 0.0
	if jitterRange > 0 {
		jitter = (r.Float64()*2 - 1) * jitterRange
	}

	d := time.Duration(base+jitter) * time.Millisecond
	if d < minSleep {
		d = minSleep
	}
	return d
}

// Run executes body, retrying up to params.Retries times when it
// returns a retryable error, sleeping between attempts per
// sleepDuration. The final attempt's error (if retries are
// exhausted) is the one returned. Built on cenkalti/backoff/v4's
// BackOff interface for the actual wait-and-retry loop, with a
// custom retryable-error predicate layered on top since that
// library retries unconditionally by default.
func Run[T any](ctx context.Context, params Params, body func(ctx context.Context) (T, error)) (T, int, error) {
	var zero T
	attempts := 0

	var policy cbackoff.BackOff = &fixedSequence{params: params}
	policy = cbackoff.WithContext(policy, ctx)

	var lastErr error
	var result T
	opErr := cbackoff.Retry(func() error {
		attempts++
		r, err := body(ctx)
		if err == nil {
			result = r
			return nil
		}
		lastErr = err
		if !retryable(err) || attempts > params.Retries {
			return cbackoff.Permanent(err)
		}
		return err
	}, policy)

	if opErr != nil {
		return zero, attempts, lastErr
	}
	return result, attempts, nil
}

// fixedSequence is a cenkalti/backoff BackOff that hands out
// sleepDuration(params, attempt) for up to params.Retries steps,
// then signals Stop.
type fixedSequence struct {
	params  Params
	attempt int
}

func (f *fixedSequence) NextBackOff() time.Duration {
	f.attempt++
	if f.attempt > f.params.Retries {
		return cbackoff.Stop
	}
	return sleepDuration(f.params, f.attempt)
}

func (f *fixedSequence) Reset() {
	f.attempt = 0
}
