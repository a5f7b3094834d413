//go:build !amd64 && !arm64

package libtle

// portableTxBackend is used on architectures this package has no hand-lowered
// HTM backend for. It never starts a transaction: Begin always reports a
// non-restartable abort, so ElidedMutex/ElidedSharedMutex immediately take
// the fallback spinlock path on every attempt. That is still fully correct —
// it just forgoes the elision speedup — matching spec.md's "In the absence
// of such hardware, only the null/plain variants are available" without
// actually having to remove the HTM-elided types from the build.
type portableTxBackend struct{}

func newTxBackend() txBackend { return portableTxBackend{} }

func (portableTxBackend) begin() TxStatus { return TxUnknown }

func (portableTxBackend) commit() bool {
	panic("libtle: commit called without a live transaction")
}

func (portableTxBackend) inTransaction() bool { return false }

func (portableTxBackend) userAbort(code uint8) {
	panic("libtle: userAbort called without a live transaction")
}

func (portableTxBackend) restartable(TxStatus) bool { return false }

func (portableTxBackend) available() bool { return false }
