package sim

import "errors"

var (
	// ErrIllegalTransition is returned when a fail-state change is not allowed,
	// most notably DEAD -> OK. A crashed node never comes back; a recovering peer
	// must join as a fresh node.
	ErrIllegalTransition = errors.New("illegal fail-state transition")

	// ErrDegenerateSchedule is returned for schedules that would never activate
	// (from >= until) or never advance (step <= 0).
	ErrDegenerateSchedule = errors.New("degenerate schedule")

	// ErrMissingCapability is returned when an event is delivered to a protocol
	// slot that does not implement EventProtocol.
	ErrMissingCapability = errors.New("protocol lacks required capability")

	// ErrCapacityExceeded is returned by Network.Add when the network is full.
	ErrCapacityExceeded = errors.New("network capacity exceeded")
)
