//go:build amd64

package libtle

import "golang.org/x/sys/cpu"

// Raw EAX bit layout Intel RTM leaves behind on an aborted XBEGIN, per the
// Intel SDM's description of RTM abort status. This is independent of (and
// intentionally not reused as) this package's own TxStatus bit numbering —
// tx_amd64.go's job is exactly to translate between the two.
const (
	rawAbortExplicit uint32 = 1 << 0
	rawAbortRetry    uint32 = 1 << 1
	rawAbortConflict uint32 = 1 << 2
	rawAbortCapacity uint32 = 1 << 3
	rawAbortDebug    uint32 = 1 << 4
	rawAbortNested   uint32 = 1 << 5
	rawCodeShift            = 24
)

// rtmStartedSentinel is preloaded into EAX before XBEGIN. Intel's own
// immintrin.h defines _XBEGIN_STARTED the same way: if the transaction
// commits, XBEGIN never touches EAX, so the preloaded sentinel survives
// untouched; if it aborts, hardware overwrites EAX with the real status
// before execution resumes at the (same) fallback address.
const rtmStartedSentinel uint32 = 0xffffffff

//go:noescape
func rtmBegin() uint32

//go:noescape
func rtmEnd()

//go:noescape
func rtmAbort1()

//go:noescape
func rtmTest() bool

// amd64TxBackend lowers C1 onto Intel TSX's Restricted Transactional Memory
// (RTM) instructions: XBEGIN, XEND, XABORT, XTEST.
type amd64TxBackend struct {
	hasRTM bool
}

func newTxBackend() txBackend {
	return &amd64TxBackend{hasRTM: cpu.X86.HasRTM}
}

func (b *amd64TxBackend) begin() TxStatus {
	if !b.hasRTM {
		return TxUnknown
	}
	raw := rtmBegin()
	if raw == rtmStartedSentinel {
		return TxStarted
	}
	return decodeRTMAbort(raw)
}

func decodeRTMAbort(raw uint32) TxStatus {
	var s TxStatus
	if raw&rawAbortExplicit != 0 {
		s |= TxExplicit
	}
	if raw&rawAbortRetry != 0 {
		s |= TxRetry
	}
	if raw&rawAbortConflict != 0 {
		s |= TxConflict
	}
	if raw&rawAbortCapacity != 0 {
		s |= TxCapacity
	}
	if raw&rawAbortDebug != 0 {
		s |= TxDebug
	}
	if raw&rawAbortNested != 0 {
		s |= TxNested
	}
	if s == 0 {
		s = TxUnknown
	}
	if s&TxExplicit != 0 {
		code := uint8(raw >> rawCodeShift)
		s |= explicitCodeBits(code)
	}
	return s
}

func (b *amd64TxBackend) commit() bool {
	rtmEnd()
	// If XEND itself detects a conflict, real hardware does not return
	// control here at all: it rolls back registers and the stack to their
	// state at the matching XBEGIN and resumes at that instruction's
	// fallback address instead, which — because begin() and commit() are
	// separate Go function calls with arbitrary caller code running in
	// between — lands back inside rtmBegin's own call frame, not this one.
	// That is a fundamental hazard of splitting XBEGIN/XEND across Go call
	// boundaries rather than emitting them inline around a single code
	// region (see DESIGN.md). Consequently, reaching this line at all means
	// XEND did not abort: a false return is not reachable on this backend.
	return true
}

func (b *amd64TxBackend) inTransaction() bool { return rtmTest() }

func (b *amd64TxBackend) userAbort(code uint8) {
	if code != lockIsHeldAbortCode {
		panic("libtle: amd64 RTM backend only supports the lock-is-held abort code")
	}
	rtmAbort1()
}

// restartableMaskAMD64 is amd64's platform-specific is_restartable predicate:
// hardware-suggested retry, our own explicit abort (we only explicit-abort
// when we raced a fallback acquire, which is itself transient), or a data
// conflict all warrant another attempt. A status carrying none of those
// three bits (a capacity, nested or debug abort on its own) is not retried.
const restartableMaskAMD64 = TxRetry | TxExplicit | TxConflict

func (b *amd64TxBackend) restartable(status TxStatus) bool {
	return status&restartableMaskAMD64 != 0
}

func (b *amd64TxBackend) available() bool { return b.hasRTM }
