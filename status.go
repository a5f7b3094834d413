package libtle

import "fmt"

// TxStatus is the bitset a transaction backend returns describing why a
// hardware transaction did or didn't commit. Bit 0 is the TxStarted sentinel,
// bits 1-9 name the abort reason, and bits 24-31 carry the 8-bit code passed
// to UserAbort. The numbering is this package's own; backends translate their
// hardware status words into it (see decodeRTMAbort in tx_amd64.go).
type TxStatus uint32

const (
	// TxStarted is the sentinel Begin returns when a transaction is now
	// executing. No abort bit is ever set alongside it.
	TxStarted TxStatus = 1 << iota
	// TxRetry is set when the hardware itself suggests the attempt is worth
	// retrying.
	TxRetry
	// TxExplicit is set when the abort was caused by a UserAbort call; the
	// 8-bit code passed to it is recoverable via TxStatus.ExplicitCode.
	TxExplicit
	// TxConflict is set when another hardware thread touched a cache line in
	// this transaction's footprint.
	TxConflict
	// TxCapacity is set when the transaction's read/write set outgrew what
	// the hardware can track.
	TxCapacity
	// TxNested is set when the abort occurred in a nested transaction.
	TxNested
	// TxDebug is set when a debug breakpoint fired inside the transaction.
	TxDebug
	// TxInterrupt is set when an external interrupt preempted the
	// transaction.
	TxInterrupt
	// TxError is a residual bucket for backend-detected faults that don't
	// otherwise classify.
	TxError
	// TxUnknown is returned by backends that have no finer-grained reason to
	// report, including the portable backend used when no HTM hardware is
	// present at all.
	TxUnknown
)

const txCodeShift = 24

// explicitCodeBits returns the status with an 8-bit user code packed into its
// top byte, as real RTM hardware does for XABORT.
func explicitCodeBits(code uint8) TxStatus {
	return TxStatus(uint32(code) << txCodeShift)
}

// ExplicitCode extracts the 8-bit code passed to UserAbort, valid only when
// TxExplicit is set.
func (s TxStatus) ExplicitCode() (code uint8, ok bool) {
	if s&TxExplicit == 0 {
		return 0, false
	}
	return uint8(uint32(s) >> txCodeShift), true
}

// Has reports whether every bit in mask is set in s.
func (s TxStatus) Has(mask TxStatus) bool {
	return s&mask == mask
}

// abortReasonMask is the portion of the word that is abort-reason bits, as
// opposed to the sentinel bit or the embedded user code.
const abortReasonMask TxStatus = TxRetry | TxExplicit | TxConflict | TxCapacity | TxNested | TxDebug | TxInterrupt | TxError | TxUnknown

func (s TxStatus) String() string {
	if s&TxStarted != 0 {
		return "started"
	}
	names := []struct {
		bit  TxStatus
		name string
	}{
		{TxRetry, "retry"},
		{TxExplicit, "explicit"},
		{TxConflict, "conflict"},
		{TxCapacity, "capacity"},
		{TxNested, "nested"},
		{TxDebug, "debug"},
		{TxInterrupt, "interrupt"},
		{TxError, "error"},
		{TxUnknown, "unknown"},
	}
	out := ""
	for _, n := range names {
		if s&n.bit != 0 {
			if out != "" {
				out += "|"
			}
			out += n.name
		}
	}
	if out == "" {
		return fmt.Sprintf("status(0x%x)", uint32(s))
	}
	if code, ok := s.ExplicitCode(); ok {
		out += fmt.Sprintf("(code=%d)", code)
	}
	return out
}
