/* swiftmtp - MTP/PTP host-side protocol engine
 *
 * DeviceState machine (§4.8): the actor's outward-visible lifecycle.
 */

package actor

// DeviceErrorKind classifies the error an actor landed in Error
// state with.
type DeviceErrorKind int

// Device error kinds.
const (
	DeviceErrorTimeout DeviceErrorKind = iota
	DeviceErrorBusy
	DeviceErrorUnexpected
)

// DeviceStateKind names a node of the actor's state machine.
type DeviceStateKind int

// Nodes of the device state machine:
//
//	Disconnected → Connecting → Connected ⇄ Transferring
//	    ↑              ↓            ↓           ↓
//	    └──────── Disconnecting ←────┴──── Error(DeviceError)
const (
	StateDisconnected DeviceStateKind = iota
	StateConnecting
	StateConnected
	StateTransferring
	StateDisconnecting
	StateError
)

// DeviceState is the actor's outward-visible state: a node plus,
// when the node is StateError, the error that caused it. Equality on
// DeviceState is structural.
type DeviceState struct {
	Kind DeviceStateKind
	Err  DeviceErrorKind // meaningful only when Kind == StateError
}

// Equal reports structural equality between two DeviceState values.
func (s DeviceState) Equal(other DeviceState) bool {
	if s.Kind != other.Kind {
		return false
	}
	if s.Kind == StateError {
		return s.Err == other.Err
	}
	return true
}

// transitions enumerates every legal edge of the state machine. Any
// state may transition to StateError; StateError always transitions
// to StateDisconnecting then StateDisconnected.
var transitions = map[DeviceStateKind]map[DeviceStateKind]bool{
	StateDisconnected:  {StateConnecting: true},
	StateConnecting:    {StateConnected: true, StateDisconnecting: true},
	StateConnected:     {StateTransferring: true, StateDisconnecting: true},
	StateTransferring:  {StateConnected: true, StateDisconnecting: true},
	StateDisconnecting: {StateDisconnected: true},
	StateError:         {StateDisconnecting: true},
}

// CanTransition reports whether moving from 'from' to 'to' is a
// legal edge, with the rule that any state may transition to
// StateError.
func CanTransition(from, to DeviceStateKind) bool {
	if to == StateError {
		return true
	}
	return transitions[from][to]
}
