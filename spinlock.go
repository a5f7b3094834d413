package libtle

import (
	"runtime"
	"sync/atomic"
)

const (
	spinUnlocked uint32 = 0
	spinLocked   uint32 = 1
)

// spinMaxBackoff caps the exponential back-off spinLock's acquire loop uses
// between compare-and-swap attempts, so a long-held lock degrades to
// runtime.Gosched() instead of monopolizing the core with ever-larger spins.
const spinMaxBackoff = 1 << 10

// SpinLock is the test-and-set spinlock component C2: an atomic word with a
// single meaningful bit. It is the fallback lock ElidedMutex subscribes to
// in its transactions' read sets, and stands on its own as SpinMutex's
// building block.
//
// The zero value is an unlocked SpinLock.
type SpinLock struct {
	word atomic.Uint32
}

// Lock blocks until the caller holds the lock. On return, every subsequent
// memory operation by this goroutine happens-after the last holder's
// Unlock.
func (s *SpinLock) Lock() {
	// Fast path: uncontended acquire.
	if s.word.CompareAndSwap(spinUnlocked, spinLocked) {
		return
	}
	backoff := uint32(1)
	for {
		// Spin on a plain load first so contending goroutines read a
		// shared cache line instead of all hammering it with CAS, which
		// would ping-pong ownership of the line between cores.
		for s.word.Load() == spinLocked {
			spin(backoff)
			if backoff < spinMaxBackoff {
				backoff <<= 1
			} else {
				runtime.Gosched()
			}
		}
		if s.word.CompareAndSwap(spinUnlocked, spinLocked) {
			return
		}
	}
}

// Unlock marks the lock free with release ordering. It must only be called
// by the current holder.
func (s *SpinLock) Unlock() {
	s.word.Store(spinUnlocked)
}

// UnlockUncontended releases the lock exactly like Unlock, but documents
// that the caller knows there are no waiters — used only by
// ElidedSharedMutex's writer path, where the writer flag is known
// uncontended because RWSpinLock's exclusive section already serializes
// writers.
func (s *SpinLock) UnlockUncontended() {
	s.word.Store(spinUnlocked)
}

// IsLocked reports whether the lock is held at the observation instant. It
// is load-only and never mutates the lock, which is what lets a hardware
// transaction read it into its read set without the mere act of observing
// it forcing an abort.
func (s *SpinLock) IsLocked() bool {
	return s.word.Load() == spinLocked
}

// UnlockWait busy-waits until IsLocked observes false at least once, without
// ever mutating the lock. The HTM elision protocol calls this before every
// Begin attempt so it never starts a transaction guaranteed to abort because
// the fallback lock is already held.
func (s *SpinLock) UnlockWait() {
	backoff := uint32(1)
	for s.IsLocked() {
		spin(backoff)
		if backoff < spinMaxBackoff {
			backoff <<= 1
		} else {
			runtime.Gosched()
		}
	}
}

// spin busy-waits for approximately n iterations of a pause-hint-free tight
// loop. Real builds would issue PAUSE (amd64) or YIELD/WFE (AArch64) here;
// in portable Go the empty loop body is the closest equivalent, matching the
// spin-delay helper this package's back-off loops are modeled on.
func spin(n uint32) {
	for i := uint32(0); i < n; i++ {
	}
}
