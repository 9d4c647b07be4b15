/* swiftmtp - MTP/PTP host-side protocol engine
 *
 * Device actor (§4.8): per-device transaction serializer.
 *
 * Modeled per spec.md §9's Go guidance: a goroutine driven by a
 * request channel and a per-request reply channel. The contract is
 * the externally visible serialization (bodies never overlap, FIFO
 * within the queue), not the mechanism.
 */

package actor

import (
	"context"
	"errors"
	"sync"

	"github.com/swiftmtp/swiftmtp/protocol"
	"github.com/swiftmtp/swiftmtp/quirk"
	"github.com/swiftmtp/swiftmtp/transport"
)

// ErrDeviceDisconnected is returned by WithTransaction (and every
// convenience method built on it) once the actor has observed a
// disconnect, until MarkReconnected clears the gate.
var ErrDeviceDisconnected = errors.New("actor: device disconnected")

// request is one queued unit of work: a closure run with exclusive
// access to the actor's Link, plus the channel its result is
// delivered on.
type request struct {
	ctx   context.Context
	body  func(ctx context.Context) (any, error)
	reply chan requestResult
}

type requestResult struct {
	value any
	err   error
}

// Actor is the per-device transaction serializer. One Actor owns
// exactly one transport.Link and exactly one mutable Policy.
type Actor struct {
	Link transport.Link

	mu     sync.Mutex // guards state, policy, selections below
	state  DeviceState
	policy quirk.Policy
	sel    quirk.FallbackSelections

	disconnected bool

	txIDs *protocol.TxIDSequence

	queue chan *request
	quit  chan struct{}
	wg    sync.WaitGroup
}

// New returns an Actor driving link, with its request loop started.
func New(link transport.Link, policy quirk.Policy) *Actor {
	a := &Actor{
		Link:   link,
		state:  DeviceState{Kind: StateDisconnected},
		policy: policy,
		txIDs:  protocol.NewTxIDSequence(),
		queue:  make(chan *request, 64),
		quit:   make(chan struct{}),
	}
	a.wg.Add(1)
	go a.loop()
	return a
}

// Stop drains the queue and terminates the actor's goroutine. Safe
// to call once.
func (a *Actor) Stop() {
	close(a.quit)
	a.wg.Wait()
}

func (a *Actor) loop() {
	defer a.wg.Done()
	for {
		select {
		case req := <-a.queue:
			v, err := req.body(req.ctx)
			req.reply <- requestResult{value: v, err: err}
		case <-a.quit:
			// Drain anything already queued so callers never block
			// forever waiting on a reply.
			for {
				select {
				case req := <-a.queue:
					req.reply <- requestResult{err: ErrDeviceDisconnected}
				default:
					return
				}
			}
		}
	}
}

// WithTransaction acquires the device-wide serialization queue for
// the duration of body: concurrent callers queue in FIFO order (the
// channel send order), and body never overlaps with another body.
// The queue slot is released (the reply delivered) on every exit
// path, including body returning an error.
func (a *Actor) WithTransaction(ctx context.Context, body func(ctx context.Context) (any, error)) (any, error) {
	a.mu.Lock()
	disconnected := a.disconnected
	a.mu.Unlock()
	if disconnected {
		return nil, ErrDeviceDisconnected
	}

	req := &request{ctx: ctx, body: body, reply: make(chan requestResult, 1)}

	select {
	case a.queue <- req:
	case <-ctx.Done():
		return nil, ctx.Err()
	}

	select {
	case res := <-req.reply:
		if res.err != nil {
			a.noteDisconnectIfNeeded(res.err)
		}
		return res.value, res.err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// noteDisconnectIfNeeded implements §4.8's disconnect semantics: a
// NoDevice/Disconnected observation from the link immediately
// transitions the actor to Disconnected and gates further submits.
func (a *Actor) noteDisconnectIfNeeded(err error) {
	if !errors.Is(err, protocol.ErrDeviceDisconnected) {
		return
	}
	a.mu.Lock()
	defer a.mu.Unlock()
	a.disconnected = true
	a.state = DeviceState{Kind: StateDisconnected}
}

// MarkReconnected clears the disconnect gate set by
// noteDisconnectIfNeeded, allowing new submits through.
func (a *Actor) MarkReconnected() {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.disconnected = false
}

// State returns the actor's current outward-visible state.
func (a *Actor) State() DeviceState {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.state
}

// setState transitions the actor's state if the edge is legal,
// returning false (a no-op) otherwise.
func (a *Actor) setState(to DeviceState) bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	if !CanTransition(a.state.Kind, to.Kind) {
		return false
	}
	a.state = to
	return true
}

// Policy returns a copy of the actor's current policy.
func (a *Actor) Policy() quirk.Policy {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.policy
}

// mutatePolicy applies f to the actor's policy under lock, used by
// the enumeration ladder's in-session auto-disable of
// SupportsGetObjectPropList on OperationNotSupported (0x2005).
func (a *Actor) mutatePolicy(f func(quirk.Policy) quirk.Policy) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.policy = f(a.policy)
}

// Selections returns a copy of the actor's current fallback ladder
// selections.
func (a *Actor) Selections() quirk.FallbackSelections {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.sel
}

func (a *Actor) setSelections(f func(quirk.FallbackSelections) quirk.FallbackSelections) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.sel = f(a.sel)
}
