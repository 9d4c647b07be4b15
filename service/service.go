package service

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/swiftmtp/swiftmtp/actor"
)

// ErrDeviceDisconnected is returned synchronously by Submit while the
// service's disconnect gate is closed.
var ErrDeviceDisconnected = errors.New("service: device disconnected")

// ErrTimeout is the final error surfaced when every attempt of a
// submitted operation lost its race against Deadline.TimeoutSecs.
var ErrTimeout = errors.New("service: timed out")

type job struct {
	body  func(ctx context.Context) (any, error)
	ctx   context.Context
	dl    Deadline
	reply chan jobResult
}

// Service wraps a device actor with a priority queue and a disconnect
// gate: the actor's own transaction queue already serializes bodies,
// so this adds ordering across callers of differing urgency plus the
// timeout/retry and detach semantics the actor itself doesn't know
// about.
type Service struct {
	actor *actor.Actor

	mu           sync.Mutex
	queues       [numPriorities][]*job
	disconnected bool

	wake chan struct{}
	quit chan struct{}
	wg   sync.WaitGroup
}

// New builds a Service driving a, with its worker goroutine started.
func New(a *actor.Actor) *Service {
	s := &Service{
		actor: a,
		wake:  make(chan struct{}, 1),
		quit:  make(chan struct{}),
	}
	s.wg.Add(1)
	go s.run()
	return s
}

// Stop drains the queue, failing every still-pending job with
// ErrDeviceDisconnected, and terminates the worker goroutine. Safe to
// call once.
func (s *Service) Stop() {
	close(s.quit)
	s.wg.Wait()
}

// Submit enqueues body for execution under priority, honoring
// deadline's per-attempt timeout and retry count, and returns a
// Handle whose Wait awaits the result. Submit itself never blocks on
// the queue; it rejects synchronously with ErrDeviceDisconnected
// while the disconnect gate is closed.
func (s *Service) Submit(ctx context.Context, priority Priority, deadline Deadline, body func(ctx context.Context) (any, error)) (*Handle, error) {
	s.mu.Lock()
	if s.disconnected {
		s.mu.Unlock()
		return nil, ErrDeviceDisconnected
	}
	j := &job{body: body, ctx: ctx, dl: deadline, reply: make(chan jobResult, 1)}
	s.queues[priority] = append(s.queues[priority], j)
	s.mu.Unlock()

	select {
	case s.wake <- struct{}{}:
	default:
	}

	return &Handle{reply: j.reply}, nil
}

// MarkDisconnected closes the disconnect gate: every Submit call
// rejects synchronously until MarkReconnected reopens it. Jobs
// already queued or running are unaffected; they complete (or fail)
// on their own terms.
func (s *Service) MarkDisconnected() {
	s.mu.Lock()
	s.disconnected = true
	s.mu.Unlock()
}

// MarkReconnected reopens the disconnect gate and clears the
// underlying actor's own gate, set independently if the actor
// observed a protocol-level disconnect mid-transaction.
func (s *Service) MarkReconnected() {
	s.mu.Lock()
	s.disconnected = false
	s.mu.Unlock()
	s.actor.MarkReconnected()
}

// Disconnected reports whether the gate is currently closed.
func (s *Service) Disconnected() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.disconnected
}

func (s *Service) run() {
	defer s.wg.Done()
	for {
		j := s.dequeue()
		if j == nil {
			return
		}
		s.execute(j)
	}
}

// dequeue blocks until a job is available in highest-to-lowest
// priority order, or the service is stopped. Once stopped, no further
// queued job is started: dequeue fails everything still queued and
// returns nil, even if the queue was non-empty at the moment Stop was
// called.
func (s *Service) dequeue() *job {
	for {
		select {
		case <-s.quit:
			s.failAllQueued()
			return nil
		default:
		}

		s.mu.Lock()
		for p := 0; p < numPriorities; p++ {
			if len(s.queues[p]) > 0 {
				j := s.queues[p][0]
				s.queues[p] = s.queues[p][1:]
				s.mu.Unlock()
				return j
			}
		}
		s.mu.Unlock()

		select {
		case <-s.wake:
		case <-s.quit:
			s.failAllQueued()
			return nil
		}
	}
}

func (s *Service) failAllQueued() {
	s.mu.Lock()
	defer s.mu.Unlock()
	for p := 0; p < numPriorities; p++ {
		for _, j := range s.queues[p] {
			j.reply <- jobResult{err: ErrDeviceDisconnected}
		}
		s.queues[p] = nil
	}
}

// execute runs j's body, applying its deadline's per-attempt timeout
// and retrying up to MaxRetries times on any failure (not just
// timeout) before delivering the final result.
func (s *Service) execute(j *job) {
	attempts := 1 + j.dl.MaxRetries
	if attempts < 1 {
		attempts = 1
	}

	var lastErr error
	for i := 0; i < attempts; i++ {
		ctx := j.ctx
		var cancel context.CancelFunc
		if j.dl.TimeoutSecs > 0 {
			ctx, cancel = context.WithTimeout(ctx, time.Duration(j.dl.TimeoutSecs)*time.Second)
		}

		v, err := j.body(ctx)

		if cancel != nil {
			if err != nil && ctx.Err() != nil && errors.Is(ctx.Err(), context.DeadlineExceeded) {
				err = ErrTimeout
			}
			cancel()
		}

		if err == nil {
			j.reply <- jobResult{value: v}
			return
		}
		lastErr = err
	}
	j.reply <- jobResult{err: lastErr}
}
