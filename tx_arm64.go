//go:build arm64

package libtle

// arm64TxBackend targets the Armv9 Transactional Memory Extension (TME):
// TSTART/TCOMMIT/TCANCEL/TTEST. Unlike amd64's golang.org/x/sys/cpu.X86,
// golang.org/x/sys/cpu.ARM64 does not yet expose a HasTME feature bit — TME
// silicon is still vanishingly rare in the fleets this module targets — so
// this backend cannot safely probe for hardware support and always reports
// itself unavailable. It exists as its own file, rather than being folded
// into tx_other.go, to name the arm64 contract explicitly: the day x/sys/cpu
// grows TME detection, only this file needs real TSTART/TCOMMIT/TCANCEL/
// TTEST lowering, exactly mirroring tx_amd64.go/tx_amd64.s's shape.
type arm64TxBackend struct{}

func newTxBackend() txBackend { return arm64TxBackend{} }

func (arm64TxBackend) begin() TxStatus { return TxUnknown }

func (arm64TxBackend) commit() bool {
	panic("libtle: commit called without a live transaction")
}

func (arm64TxBackend) inTransaction() bool { return false }

func (arm64TxBackend) userAbort(code uint8) {
	panic("libtle: userAbort called without a live transaction")
}

func (arm64TxBackend) restartable(TxStatus) bool { return false }

func (arm64TxBackend) available() bool { return false }
