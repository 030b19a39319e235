// Package chanselect implements a selection driver: a state machine that
// multiplexes a dynamic set of channel operations (sends, receives, and
// synthetic "meta" cases) and commits to executing exactly one of them,
// fairly and without deadlocking, even under concurrent activity on the
// channels.
//
// # Architecture
//
// A [Driver] is driven by repeated, cyclic enumeration of the caller's case
// list. Each call to [Send], [Recv], [Driver.Disconnected],
// [Driver.WouldBlock], or [Driver.TimedOut] advances the driver's internal
// phase sequencer by exactly one step: Count, Try, Promise, Revoke, Fulfill,
// looping back to Try until a case commits or a terminal phase
// (Disconnected, WouldBlock, TimedOut) is reached and then acknowledged.
//
// The driver never inspects the caller's loop structure. It infers "sweep
// complete" by noticing the case identifier sequence has cycled back to the
// first case seen, and it infers "phase complete" by counting 2*len virtual
// slots per phase, of which a contiguous window of len slots, starting at a
// random offset, is live. See the package-level design notes in DESIGN.md for the full
// rationale.
//
// # Collaborators
//
// [Chan] is a concrete generic channel satisfying the channel collaborator
// contract the driver depends on. [Handle] is the per-selection commit cell
// and parking primitive. Both are usable standalone. [Send] and [Recv] accept
// only *[Chan]; the collaborator methods they call are unexported, so other
// channel implementations cannot take part in a selection.
//
// # Usage
//
//	d := chanselect.New(nil)
//	for {
//		if v, ok := chanselect.Recv(d, rx); ok {
//			handle(v)
//			break
//		}
//		if _, ok := chanselect.Send(d, tx, payload); ok {
//			break
//		}
//		if d.WouldBlock() {
//			break
//		}
//	}
package chanselect
