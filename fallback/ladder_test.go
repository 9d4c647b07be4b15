/* swiftmtp - MTP/PTP host-side protocol engine
 *
 * Tests for the fallback ladder.
 */

package fallback

import (
	"context"
	"errors"
	"testing"
)

func TestRunShortCircuitsOnFirstSuccess(t *testing.T) {
	calls := []string{}
	rungs := []Rung[int]{
		{Name: "a", Run: func(ctx context.Context) (int, error) {
			calls = append(calls, "a")
			return 0, errors.New("nope")
		}},
		{Name: "b", Run: func(ctx context.Context) (int, error) {
			calls = append(calls, "b")
			return 42, nil
		}},
		{Name: "c", Run: func(ctx context.Context) (int, error) {
			calls = append(calls, "c")
			return 0, errors.New("should not run")
		}},
	}

	result, attempts, err := Run(context.Background(), rungs)
	if err != nil {
		t.Fatalf("unexpected error: %s", err)
	}
	if result != 42 {
		t.Errorf("got %d, want 42", result)
	}
	if len(calls) != 2 || calls[1] != "b" {
		t.Errorf("expected rung c to be skipped, calls=%v", calls)
	}
	if len(attempts) != 2 || !attempts[1].Succeeded {
		t.Errorf("unexpected attempts: %+v", attempts)
	}
}

func TestRunAllFailedRecordsEveryAttempt(t *testing.T) {
	rungs := []Rung[int]{
		{Name: "a", Run: func(ctx context.Context) (int, error) { return 0, errors.New("err-a") }},
		{Name: "b", Run: func(ctx context.Context) (int, error) { return 0, errors.New("err-b") }},
	}

	_, attempts, err := Run(context.Background(), rungs)
	var allFailed *AllFailedError
	if !errors.As(err, &allFailed) {
		t.Fatalf("got %v, want *AllFailedError", err)
	}
	if len(allFailed.Attempts) != 2 {
		t.Errorf("got %d attempts, want 2", len(allFailed.Attempts))
	}
	if len(attempts) != 2 {
		t.Errorf("got %d attempts returned directly, want 2", len(attempts))
	}
}

func TestRunEmptyLadderIsImmediateError(t *testing.T) {
	_, _, err := Run(context.Background(), []Rung[int]{})
	if !errors.Is(err, ErrEmptyLadder) {
		t.Errorf("got %v, want ErrEmptyLadder", err)
	}
}
