package libtle

// txBackend is the capability interface C1 (the HTM transaction intrinsic
// layer) exposes. Exactly one implementation is wired into the package-level
// backend variable at init time, selected by GOARCH and, where applicable,
// runtime CPU feature detection — see tx_amd64.go, tx_arm64.go and
// tx_other.go.
type txBackend interface {
	// begin starts a transaction, returning TxStarted on success or an abort
	// status otherwise.
	begin() TxStatus
	// commit attempts to publish a live transaction's effects. It must only
	// be called immediately after a matching begin returned TxStarted.
	commit() bool
	// inTransaction reports whether the calling thread is still inside a
	// transaction (true for a nested transaction whose commit merely
	// unwound one level).
	inTransaction() bool
	// userAbort aborts the live transaction, embedding code in the status
	// that the matching begin call returns.
	userAbort(code uint8)
	// restartable reports whether status indicates the attempt may
	// profitably be retried. The mask is backend/platform specific.
	restartable(status TxStatus) bool
	// available reports whether this backend ever actually elides — i.e.
	// whether begin() can return TxStarted on this host at all.
	available() bool
}

// backend is the process-wide transaction backend, chosen once at init by
// the architecture-specific file compiled into the build.
var backend txBackend = newTxBackend()

// Begin starts a hardware transaction on the calling goroutine.
func Begin() TxStatus { return backend.begin() }

// Commit attempts to commit the current transaction. Must only be called
// immediately following a Begin that returned TxStarted.
func Commit() bool { return backend.commit() }

// InTransaction reports whether the calling goroutine is currently inside a
// transaction.
func InTransaction() bool { return backend.inTransaction() }

// UserAbort aborts the current transaction, embedding an 8-bit code into the
// status the matching Begin call will observe.
func UserAbort(code uint8) { backend.userAbort(code) }

// IsRestartable reports whether status indicates the attempt is worth
// retrying before falling back to the mutex's spinlock.
func IsRestartable(status TxStatus) bool { return backend.restartable(status) }

// HTMAvailable reports whether this process can actually elide critical
// sections, i.e. whether Begin can ever return TxStarted on this host. It is
// false on hosts without usable HTM hardware, in which case ElidedMutex and
// ElidedSharedMutex remain correct but behave exactly like their Spin
// counterparts plus one wasted probe per lock.
func HTMAvailable() bool { return backend.available() }

// lockIsHeldAbortCode is the user-abort code the elision protocol uses when
// it observes the fallback lock held after a transaction has already begun.
// Its value is arbitrary; it is never inspected by callers, only counted.
const lockIsHeldAbortCode uint8 = 1
