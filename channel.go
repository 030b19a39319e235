package chanselect

import (
	"fmt"
	"sync"
	"unsafe"
)

// sendResult classifies the outcome of a non-blocking send attempt.
type sendResult uint8

const (
	sendOK sendResult = iota
	sendFull
	sendDisconnected
)

// recvResult classifies the outcome of a non-blocking receive attempt.
type recvResult uint8

const (
	recvOK recvResult = iota
	recvEmpty
	recvDisconnected
)

// waiter pairs a registered Handle with the CaseId it should be woken with.
type waiter struct {
	h  *Handle
	id CaseId
}

// Chan is a concrete, generic bounded channel satisfying the channel
// collaborator contract spec.md §6 leaves external to the driver. It is a
// ring buffer of fixed capacity (grounded on eventloop's ChunkedIngress
// queue discipline) plus waiter bookkeeping for the Promise/Revoke protocol
// (grounded on eventloop's registry.go, simplified: no weak pointers, since
// a Handle's lifetime is scoped to the selection holding it, not subject to
// independent garbage collection the way a JS promise is).
//
// Chan supports only buffered channels (capacity >= 1); it models the same
// semantics as a native Go `chan T` of that capacity, including draining
// remaining buffered values after Close.
type Chan[T any] struct {
	mu   sync.Mutex
	buf  []T
	head int
	n    int
	closed bool

	sendWaiters []waiter
	recvWaiters []waiter
}

// NewChan returns a Chan with the given buffer capacity. It panics if
// capacity is less than 1.
func NewChan[T any](capacity int) *Chan[T] {
	if capacity < 1 {
		panic("chanselect: NewChan capacity must be >= 1")
	}
	return &Chan[T]{buf: make([]T, capacity)}
}

// caseID derives this channel's CaseId for the send or recv side. The
// address of the Chan itself is a stable token for the lifetime of the
// selection (and beyond).
func (c *Chan[T]) caseID(send bool) CaseId {
	return newRealCaseId(uintptr(unsafe.Pointer(c)), send)
}

// Close disconnects the channel. Calling Close more than once panics,
// matching Go's native channel semantics for double-close.
func (c *Chan[T]) Close() {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		panic(fmt.Errorf("%w", ErrClosedChannel))
	}
	c.closed = true
	sendWs, recvWs := c.sendWaiters, c.recvWaiters
	c.sendWaiters, c.recvWaiters = nil, nil
	c.mu.Unlock()

	wake(sendWs)
	wake(recvWs)
}

// Len returns the number of buffered values currently queued.
func (c *Chan[T]) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.n
}

// IsDisconnected reports whether Close has been called.
func (c *Chan[T]) IsDisconnected() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.closed
}

// CanSend is a level-triggered readiness check: room in the buffer.
func (c *Chan[T]) CanSend() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return !c.closed && c.n < len(c.buf)
}

// CanRecv is a level-triggered readiness check: a value is queued, even if
// the channel has since been closed (draining semantics).
func (c *Chan[T]) CanRecv() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.n > 0
}

func (c *Chan[T]) trySend(msg T) (sendResult, T) {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return sendDisconnected, msg
	}
	if c.n == len(c.buf) {
		c.mu.Unlock()
		return sendFull, msg
	}
	c.pushLocked(msg)
	ws := c.takeRecvWaitersLocked()
	c.mu.Unlock()

	wake(ws)
	var zero T
	return sendOK, zero
}

func (c *Chan[T]) tryRecv() (recvResult, T) {
	c.mu.Lock()
	if c.n == 0 {
		disconnected := c.closed
		c.mu.Unlock()
		var zero T
		if disconnected {
			return recvDisconnected, zero
		}
		return recvEmpty, zero
	}
	v := c.popLocked()
	ws := c.takeSendWaitersLocked()
	c.mu.Unlock()

	wake(ws)
	return recvOK, v
}

// fulfillSend re-attempts the send during the Fulfill phase. It can fail if
// the peer that made room during Promise has since withdrawn concurrently
// (spec §4.1 "Fulfill phase").
func (c *Chan[T]) fulfillSend(msg T) (bool, T) {
	res, v := c.trySend(msg)
	return res == sendOK, v
}

// fulfillRecv re-attempts the receive during the Fulfill phase.
func (c *Chan[T]) fulfillRecv() (T, bool) {
	res, v := c.tryRecv()
	return v, res == recvOK
}

func (c *Chan[T]) promiseSend(h *Handle, id CaseId) {
	if h == nil {
		panic(fmt.Errorf("%w: promiseSend given a nil handle", ErrNilHandle))
	}
	c.mu.Lock()
	c.sendWaiters = append(c.sendWaiters, waiter{h: h, id: id})
	c.mu.Unlock()
}

func (c *Chan[T]) promiseRecv(h *Handle, id CaseId) {
	if h == nil {
		panic(fmt.Errorf("%w: promiseRecv given a nil handle", ErrNilHandle))
	}
	c.mu.Lock()
	c.recvWaiters = append(c.recvWaiters, waiter{h: h, id: id})
	c.mu.Unlock()
}

// revokeSend withdraws a send-side registration. It is idempotent across
// absence, per spec §6.
func (c *Chan[T]) revokeSend(h *Handle) {
	c.mu.Lock()
	c.sendWaiters = removeWaiter(c.sendWaiters, h)
	c.mu.Unlock()
}

// revokeRecv withdraws a recv-side registration. It is idempotent across
// absence, per spec §6.
func (c *Chan[T]) revokeRecv(h *Handle) {
	c.mu.Lock()
	c.recvWaiters = removeWaiter(c.recvWaiters, h)
	c.mu.Unlock()
}

func (c *Chan[T]) pushLocked(msg T) {
	idx := (c.head + c.n) % len(c.buf)
	c.buf[idx] = msg
	c.n++
}

func (c *Chan[T]) popLocked() T {
	v := c.buf[c.head]
	var zero T
	c.buf[c.head] = zero
	c.head = (c.head + 1) % len(c.buf)
	c.n--
	return v
}

// takeRecvWaitersLocked removes and returns all registered recv waiters, so
// they can be woken without holding c.mu (TrySelect takes the Handle's own
// lock). Must be called with c.mu held.
func (c *Chan[T]) takeRecvWaitersLocked() []waiter {
	ws := c.recvWaiters
	c.recvWaiters = nil
	return ws
}

// takeSendWaitersLocked is the send-side counterpart of
// takeRecvWaitersLocked. Must be called with c.mu held.
func (c *Chan[T]) takeSendWaitersLocked() []waiter {
	ws := c.sendWaiters
	c.sendWaiters = nil
	return ws
}

func removeWaiter(ws []waiter, h *Handle) []waiter {
	for i, w := range ws {
		if w.h == h {
			return append(ws[:i], ws[i+1:]...)
		}
	}
	return ws
}

// wake offers each waiter's CaseId to its Handle. At most one wins the race
// for any given Handle (TrySelect is single-writer-wins); the rest are
// harmless no-ops. This is the channel side of the "whichever channel
// becomes ready wakes the park" liveness guarantee in spec §5.
func wake(ws []waiter) {
	for _, w := range ws {
		w.h.TrySelect(w.id)
	}
}
