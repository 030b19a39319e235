package chanselect

import (
	"fmt"
	"sync/atomic"
	"time"
)

// phase is the Driver's current position in the sequencer described in
// spec §4.1.
type phase uint8

const (
	phaseCount phase = iota
	phaseTry
	phasePromise
	phaseRevoke
	phaseFulfill
	phaseDisconnected
	phaseWouldBlock
	phaseTimedOut
	phaseDead
)

func (p phase) String() string {
	switch p {
	case phaseCount:
		return "Count"
	case phaseTry:
		return "Try"
	case phasePromise:
		return "Promise"
	case phaseRevoke:
		return "Revoke"
	case phaseFulfill:
		return "Fulfill"
	case phaseDisconnected:
		return "Disconnected"
	case phaseWouldBlock:
		return "WouldBlock"
	case phaseTimedOut:
		return "TimedOut"
	case phaseDead:
		return "Dead"
	default:
		return "Unknown"
	}
}

var selectionSeq atomic.Int64

// Driver is the selection state machine described by spec.md. One Driver
// drives exactly one selection: construct it with New, call Send/Recv/
// Disconnected/WouldBlock/TimedOut against it in a loop that re-enumerates
// every declared case each sweep, and stop looping as soon as one of those
// calls reports a commit.
//
// A Driver is not safe for concurrent use; it is owned by the single
// goroutine driving the selection. Its Handle is the only piece of state
// shared with other goroutines (see Handle).
type Driver struct { // betteralign:ignore
	state phase
	index int

	startIndex int
	firstID    CaseId

	len               int
	sendCaseCount     int
	recvCaseCount     int
	disconnectedCount int

	hasDisconnectedCase bool
	hasWouldBlockCase   bool
	hasTimedOutCase     bool

	committed CaseId

	deadline    time.Time
	hasDeadline bool

	handle *Handle

	opts *driverOptions

	selectionID int64
}

// New constructs a Driver. deadline, if non-nil, is the absolute time after
// which TimedOut becomes reachable; a nil deadline means the selection may
// park forever in Promise if no case ever becomes ready (spec §4.5).
func New(deadline *time.Time, opts ...Option) *Driver {
	cfg, err := resolveDriverOptions(opts)
	if err != nil {
		// Option application only fails for caller-supplied functions; surface
		// the problem immediately rather than silently using defaults.
		panic(fmt.Errorf("chanselect: invalid option: %w", err))
	}

	d := &Driver{
		state:       phaseCount,
		firstID:     caseNone,
		handle:      NewHandle(),
		opts:        cfg,
		selectionID: selectionSeq.Add(1),
	}
	if deadline != nil {
		d.deadline = *deadline
		d.hasDeadline = true
	}
	if cfg.metrics != nil {
		cfg.metrics.selectionsStarted.Add(1)
	}
	return d
}

// Handle returns the Driver's commit-cell/parking primitive, so a custom
// channel collaborator can register itself as a waiter.
func (d *Driver) Handle() *Handle { return d.handle }

// Metrics returns a snapshot of the counters attached via WithMetrics, or a
// zero Snapshot if none was attached.
func (d *Driver) Metrics() Snapshot { return d.opts.metrics.Snapshot() }

func (d *Driver) log(level LogLevel, category string, id CaseId, msg string) {
	if !d.opts.logger.IsEnabled(level) {
		return
	}
	d.opts.logger.Log(LogEntry{
		Level:       level,
		Category:    category,
		SelectionID: d.selectionID,
		CaseID:      id.String(),
		Phase:       d.state.String(),
		Message:     msg,
	})
}

// step advances the sequencer by one call and reports whether the Visit
// Gate grants this case a dispatch in the current phase. It is the single
// entry point every Driver method funnels through, matching spec §4.1/§4.2.
func (d *Driver) step(id CaseId) bool {
	if d.state == phaseDead {
		panic(fmt.Errorf("%w: cannot reuse a Driver after it has committed", ErrDriverDead))
	}

	if d.state == phaseCount {
		if d.firstID != id {
			if d.len == 0 {
				d.firstID = id
			}
			d.len++
			d.index++
			if id.IsSend() {
				d.sendCaseCount++
			}
			if id.IsRecv() {
				d.recvCaseCount++
			}
			d.hasDisconnectedCase = d.hasDisconnectedCase || id == CaseDisconnected
			d.hasWouldBlockCase = d.hasWouldBlockCase || id == CaseWouldBlock
			d.hasTimedOutCase = d.hasTimedOutCase || id == CaseTimedOut
			return false
		}

		d.state = phaseTry
		d.index = 0
		d.disconnectedCount = 0
		d.startIndex = d.smallRandom(d.len)
		d.log(LevelDebug, "phase", id, "counted all cases, entering Try")
	}

	if d.index >= 2*d.len {
		d.transition()
		d.index = 0
	}

	i := d.index
	d.index++
	return d.startIndex <= i && i < d.startIndex+d.len
}

// transition computes the next phase once a phase's 2*len virtual slots are
// exhausted. See spec §4.1 for the phase graph this implements.
func (d *Driver) transition() {
	switch d.state {
	case phaseTry:
		allDisconnected := d.sendCaseCount+d.recvCaseCount == d.disconnectedCount
		switch {
		case d.hasDisconnectedCase && allDisconnected:
			d.state = phaseDisconnected
			d.opts.recordTerminal(d.state)
			d.log(LevelInfo, "phase", caseNone, "all real cases disconnected")
		case d.hasWouldBlockCase:
			d.state = phaseWouldBlock
			d.opts.recordTerminal(d.state)
			d.log(LevelInfo, "phase", caseNone, "nothing ready, would_block declared")
		default:
			d.handle.Reset()
			d.state = phasePromise
			d.disconnectedCount = 0
		}
	case phasePromise:
		allDisconnected := d.sendCaseCount+d.recvCaseCount == d.disconnectedCount
		if d.hasDisconnectedCase && allDisconnected {
			d.handle.TrySelect(CaseAbort)
		} else {
			d.opts.recordParkStart()
			d.handle.WaitUntil(d.deadline, d.hasDeadline)
		}
		d.committed = d.handle.Selected()
		d.state = phaseRevoke
	case phaseRevoke:
		d.state = phaseFulfill
	case phaseFulfill:
		d.state = phaseTry
		d.disconnectedCount = 0
		d.startIndex = d.smallRandom(d.len)
		if d.hasDeadline && !d.opts.now().Before(d.deadline) {
			d.state = phaseTimedOut
			d.opts.recordTerminal(d.state)
			d.log(LevelInfo, "deadline", caseNone, "deadline passed at Fulfill->Try boundary")
		}
	case phaseDisconnected, phaseWouldBlock, phaseTimedOut, phaseCount:
		// Terminal/Count phases have no outgoing transition of their own;
		// the only way out is the matching synthetic call observing it and
		// driving the Driver to Dead (see commitTerminal).
	case phaseDead:
		panic(fmt.Errorf("%w: cannot reuse a Driver after it has committed", ErrDriverDead))
	}
}

// commit marks a real send/recv case as the winner and sinks the Driver.
func (d *Driver) commit(id CaseId) {
	d.state = phaseDead
	d.opts.recordCommit()
	d.log(LevelInfo, "commit", id, "case committed")
}

// commitTerminal marks one of the synthetic terminal cases as acknowledged
// and sinks the Driver, per spec §4.3 ("A true return transitions the
// driver to Dead.").
func (d *Driver) commitTerminal(id CaseId) {
	d.state = phaseDead
	d.opts.recordCommit()
	d.log(LevelInfo, "commit", id, "synthetic case committed")
}

// Send attempts to send msg on tx as one case of the selection. ok reports
// whether this case committed the selection; if not, msg is returned
// unmodified so the caller can offer it to the same case again next sweep.
func Send[T any](d *Driver, tx *Chan[T], msg T) (leftover T, ok bool) {
	if tx == nil {
		panic(fmt.Errorf("%w: Send given a nil channel", ErrNilChannel))
	}
	id := tx.caseID(true)
	if !d.step(id) {
		return msg, false
	}

	switch d.state {
	case phaseTry:
		switch res, v := tx.trySend(msg); res {
		case sendOK:
			d.commit(id)
			return v, true
		case sendFull:
			return v, false
		case sendDisconnected:
			d.disconnectedCount++
			return v, false
		}
	case phasePromise:
		tx.promiseSend(d.handle, id)
		if tx.IsDisconnected() {
			d.disconnectedCount++
		} else if tx.CanSend() {
			d.handle.TrySelect(CaseAbort)
		}
	case phaseRevoke:
		if id != d.committed {
			tx.revokeSend(d.handle)
		}
	case phaseFulfill:
		if id == d.committed {
			ok2, v := tx.fulfillSend(msg)
			if ok2 {
				d.commit(id)
				return v, true
			}
			return v, false
		}
	case phaseCount, phaseDisconnected, phaseWouldBlock, phaseTimedOut:
		// no-op
	case phaseDead:
		panic(fmt.Errorf("%w: cannot reuse a Driver after it has committed", ErrDriverDead))
	}
	return msg, false
}

// Recv attempts to receive from rx as one case of the selection. ok reports
// whether this case committed the selection.
func Recv[T any](d *Driver, rx *Chan[T]) (value T, ok bool) {
	if rx == nil {
		panic(fmt.Errorf("%w: Recv given a nil channel", ErrNilChannel))
	}
	id := rx.caseID(false)
	if !d.step(id) {
		var zero T
		return zero, false
	}

	switch d.state {
	case phaseTry:
		switch res, v := rx.tryRecv(); res {
		case recvOK:
			d.commit(id)
			return v, true
		case recvEmpty:
			var zero T
			return zero, false
		case recvDisconnected:
			d.disconnectedCount++
			var zero T
			return zero, false
		}
	case phasePromise:
		rx.promiseRecv(d.handle, id)
		isDisconnected := rx.IsDisconnected()
		canRecv := rx.CanRecv()
		if isDisconnected && !canRecv {
			d.disconnectedCount++
		} else if canRecv {
			d.handle.TrySelect(CaseAbort)
		}
	case phaseRevoke:
		if id != d.committed {
			rx.revokeRecv(d.handle)
		}
	case phaseFulfill:
		if id == d.committed {
			if v, ok2 := rx.fulfillRecv(); ok2 {
				d.commit(id)
				return v, true
			}
		}
	case phaseCount, phaseDisconnected, phaseWouldBlock, phaseTimedOut:
		// no-op
	case phaseDead:
		panic(fmt.Errorf("%w: cannot reuse a Driver after it has committed", ErrDriverDead))
	}
	var zero T
	return zero, false
}

// Disconnected reports whether every real case has disconnected. A true
// return ends the selection; this case must have been declared (by calling
// Disconnected at least once per sweep) for the driver to ever reach the
// Disconnected phase, see spec §4.1.
func (d *Driver) Disconnected() bool {
	if !d.step(CaseDisconnected) {
		return false
	}
	if d.state == phaseDisconnected {
		d.commitTerminal(CaseDisconnected)
		return true
	}
	return false
}

// WouldBlock reports whether no case was ready during the Try phase. A true
// return ends the selection.
func (d *Driver) WouldBlock() bool {
	if !d.step(CaseWouldBlock) {
		return false
	}
	if d.state == phaseWouldBlock {
		d.commitTerminal(CaseWouldBlock)
		return true
	}
	return false
}

// TimedOut reports whether the deadline has passed. A true return ends the
// selection.
func (d *Driver) TimedOut() bool {
	if !d.step(CaseTimedOut) {
		return false
	}
	if d.state == phaseTimedOut {
		d.commitTerminal(CaseTimedOut)
		return true
	}
	return false
}

// smallRandom draws a uniform value in [0, n). Grounded on the original
// implementation's per-Try-entry thread-local draw (see original_source);
// the only requirement is uniformity, so this uses the injectable rng from
// Options rather than a custom PRNG.
func (d *Driver) smallRandom(n int) int {
	if n <= 0 {
		return 0
	}
	return d.opts.rng.Intn(n)
}
