package chanselect

import (
	"sync"
	"time"
)

// Handle is the per-selection arbiter described in spec §3 ("Commit state")
// and §9 ("Handle as shared arbiter"): a single-writer-wins cell holding the
// winning CaseId, plus the one suspension point in the whole protocol
// (WaitUntil, used only at the end of the Promise phase).
//
// A Handle is owned by exactly one Driver for exactly one selection, but
// TrySelect is called from arbitrary goroutines (whichever channel's peer
// becomes ready first), so it is the only piece of a Driver's own state
// touched by more than one goroutine. It is guarded by a mutex rather than a
// lock-free CAS: CaseId does not fit in a machine word portably, and the
// go-utilpkg pack's own event loop favors a short mutex critical section
// over lock-free retries once the payload is more than a bare integer (see
// eventloop.Loop's ChunkedIngress doc comment). The effect is the same
// single-writer-wins guarantee a CAS would provide.
type Handle struct {
	mu    sync.Mutex
	cell  CaseId
	empty bool
	wake  chan struct{}
}

// NewHandle returns a Handle ready for its first selection.
func NewHandle() *Handle {
	return &Handle{empty: true, wake: make(chan struct{})}
}

// Reset clears the commit cell to "none", arming the Handle for a fresh
// Promise phase. Called once per Try→Promise transition.
func (h *Handle) Reset() {
	h.mu.Lock()
	h.cell = caseNone
	h.empty = true
	h.wake = make(chan struct{})
	h.mu.Unlock()
}

// TrySelect atomically sets the commit cell to id iff it is currently empty,
// returning whether it won the race. Used both by channel peers signalling
// readiness and by the Promise dispatcher itself to pre-empt parking
// (TrySelect(CaseAbort)) once it has observed readiness directly.
func (h *Handle) TrySelect(id CaseId) bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	if !h.empty {
		return false
	}
	h.cell = id
	h.empty = false
	close(h.wake)
	return true
}

// Selected reads the committed CaseId, or the zero CaseId if none has been
// set yet.
func (h *Handle) Selected() CaseId {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.cell
}

// WaitUntil parks the calling goroutine until the commit cell becomes
// non-empty or, if hasDeadline, until deadline passes, whichever is first.
// It returns immediately if the cell is already non-empty (the case where
// TrySelect won before WaitUntil was called, e.g. the pre-emption path in
// the Promise dispatcher).
func (h *Handle) WaitUntil(deadline time.Time, hasDeadline bool) {
	h.mu.Lock()
	if !h.empty {
		h.mu.Unlock()
		return
	}
	wake := h.wake
	h.mu.Unlock()

	if !hasDeadline {
		<-wake
		return
	}

	d := time.Until(deadline)
	if d <= 0 {
		select {
		case <-wake:
		default:
		}
		return
	}

	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-wake:
	case <-timer.C:
	}
}
