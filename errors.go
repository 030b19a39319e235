package chanselect

import "errors"

// Standard errors. Transient per-case conditions (full, empty, peer
// disconnected) are never surfaced as errors; they are absorbed by the
// operation dispatchers, per spec §7(a).
var (
	// ErrNilChannel is the cause wrapped by the panic raised when Send or
	// Recv is given a nil *Chan.
	ErrNilChannel = errors.New("chanselect: nil channel")

	// ErrNilHandle is the cause wrapped by the panic raised when a Chan's
	// waiter-registration methods are given a nil *Handle.
	ErrNilHandle = errors.New("chanselect: nil handle")

	// ErrClosedChannel is the cause wrapped by the panic raised when
	// Chan.Close is called more than once.
	ErrClosedChannel = errors.New("chanselect: channel already closed")
)

// ErrDriverDead is the cause wrapped by the panic raised when a Dead driver
// is used again. Per spec §4.1/§7(c) this is a programmer error: fatal and
// immediate, detected at the first operation after commit rather than
// lazily.
var ErrDriverDead = errors.New("chanselect: driver has already committed a selection")
