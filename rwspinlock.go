package libtle

import (
	"runtime"
	"sync/atomic"
)

// RWSpinLock bit layout within the packed word (component C3):
//
//	bit 0       active writer
//	bit 1       pending writer
//	bits 2..31  active reader count
const (
	rwActiveWriter  uint32 = 1 << 0
	rwPendingWriter uint32 = 1 << 1
	rwReaderInc     uint32 = 1 << 2
	rwWriterMask    uint32 = rwActiveWriter | rwPendingWriter
)

// RWSpinLock is the reader/writer spinlock component C3: writer-preferring
// (a pending writer blocks new readers), but reader-preferring on writer
// release (Unlock clears both the active and pending bits in the same
// store, so waiting readers get a chance before a newly arriving writer
// observes the lock free). See spec.md's "Tie-breaks" note: this is
// intentional and bounds writer starvation of readers under the library's
// target workloads.
//
// The zero value is an unlocked RWSpinLock.
type RWSpinLock struct {
	word atomic.Uint32
}

// RLock blocks until no writer is active or pending, then registers the
// caller as an active reader.
func (l *RWSpinLock) RLock() {
	backoff := uint32(1)
	for {
		old := l.word.Add(rwReaderInc) - rwReaderInc
		if old&rwWriterMask == 0 {
			// Committed as a reader while no writer was active or pending.
			return
		}
		// Raced a writer: back out and wait for it to clear before retrying.
		// This is benign and lock-free — at worst every contending reader
		// loops a bounded number of times.
		l.word.Add(^uint32(rwReaderInc) + 1)
		for l.word.Load()&rwWriterMask != 0 {
			spin(backoff)
			if backoff < spinMaxBackoff {
				backoff <<= 1
			} else {
				runtime.Gosched()
			}
		}
	}
}

// RUnlock decrements the reader count with release ordering.
func (l *RWSpinLock) RUnlock() {
	l.word.Add(^uint32(rwReaderInc) + 1)
}

// Lock blocks until no writer is active and no readers are active. While
// waiting it raises the pending-writer bit so that new readers stop
// arriving, then transitions to active-writer once the word is otherwise
// quiescent.
func (l *RWSpinLock) Lock() {
	backoff := uint32(1)
	for {
		old := l.word.Load()
		if old & ^rwPendingWriter == 0 {
			// old is either fully free or pending-with-no-readers-or-writer:
			// either way nothing else holds it, so claim it directly.
			if l.word.CompareAndSwap(old, old|rwActiveWriter) {
				return
			}
		} else if old&rwPendingWriter == 0 {
			// Readers and/or an active writer are present and we haven't
			// yet announced intent; do so now so no new reader starts.
			l.word.Or(rwPendingWriter)
		}
		spin(backoff)
		if backoff < spinMaxBackoff {
			backoff <<= 1
		} else {
			runtime.Gosched()
		}
	}
}

// Unlock clears both the active-writer and pending-writer bits in one
// atomic step.
func (l *RWSpinLock) Unlock() {
	l.word.And(^rwWriterMask)
}

// IsLocked reports whether any writer (active or pending) or any reader
// holds the lock at the observation instant. It is load-only.
func (l *RWSpinLock) IsLocked() bool {
	return l.word.Load() != 0
}

// hasActiveOrPendingWriter reports whether a writer currently holds or is
// waiting for the lock, ignoring any active readers. ElidedSharedMutex's
// read-side elision check uses this instead of IsLocked, since a transaction
// attempting to elide a read only needs to abort when a real writer is
// involved — concurrent real readers are never a conflict for it.
func (l *RWSpinLock) hasActiveOrPendingWriter() bool {
	return l.word.Load()&rwWriterMask != 0
}

// UnlockWait busy-waits until IsLocked observes false at least once, without
// mutating the lock.
func (l *RWSpinLock) UnlockWait() {
	backoff := uint32(1)
	for l.IsLocked() {
		spin(backoff)
		if backoff < spinMaxBackoff {
			backoff <<= 1
		} else {
			runtime.Gosched()
		}
	}
}
