package chanselect

import "fmt"

// caseKind classifies a CaseId. Real cases (send/recv) carry the classifying
// bits the spec requires; sentinel cases answer false to both.
type caseKind uint8

const (
	kindNone caseKind = iota
	kindSend
	kindRecv
	kindDisconnected
	kindWouldBlock
	kindTimedOut
	kindAbort
)

// CaseId is an opaque, comparable token distinguishing cases within one
// selection. Real cases derive their token from a stable reference to the
// underlying channel endpoint, so repeated visits during a sweep compare
// equal. Sentinel identifiers (disconnected/would_block/timed_out/abort/none)
// are globally unique and distinct from any real identifier.
type CaseId struct {
	token uintptr
	kind  caseKind
}

// IsSend reports whether this case represents a send operation.
func (c CaseId) IsSend() bool { return c.kind == kindSend }

// IsRecv reports whether this case represents a receive operation.
func (c CaseId) IsRecv() bool { return c.kind == kindRecv }

func (c CaseId) String() string {
	switch c.kind {
	case kindNone:
		return "none"
	case kindSend:
		return fmt.Sprintf("send(%#x)", c.token)
	case kindRecv:
		return fmt.Sprintf("recv(%#x)", c.token)
	case kindDisconnected:
		return "disconnected"
	case kindWouldBlock:
		return "would_block"
	case kindTimedOut:
		return "timed_out"
	case kindAbort:
		return "abort"
	default:
		return "unknown"
	}
}

// caseNone is the zero value, meaning "no case yet". It never compares equal
// to a real or sentinel case, since those always carry a non-zero kind.
var caseNone = CaseId{}

// Reserved sentinel identifiers, see spec §3.
var (
	// CaseDisconnected is the synthetic "all real cases disconnected" case.
	CaseDisconnected = CaseId{kind: kindDisconnected}
	// CaseWouldBlock is the synthetic "nothing ready" case.
	CaseWouldBlock = CaseId{kind: kindWouldBlock}
	// CaseTimedOut is the synthetic "deadline passed" case.
	CaseTimedOut = CaseId{kind: kindTimedOut}
	// CaseAbort means "do not fulfil any real case"; it is never a case the
	// caller declares, only a value the Handle's commit cell may hold.
	CaseAbort = CaseId{kind: kindAbort}
)

// newRealCaseId derives a stable CaseId for a real channel endpoint. addr
// must be a value that is stable for the lifetime of the channel (its
// pointer identity) and send distinguishes the send-side case from the
// recv-side case of the same channel.
func newRealCaseId(addr uintptr, send bool) CaseId {
	if send {
		return CaseId{token: addr, kind: kindSend}
	}
	return CaseId{token: addr, kind: kindRecv}
}
