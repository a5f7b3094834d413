// Copyright 2020 Nathan Taylor (nbtaylor@gmail.com)
//
// Permission is hereby granted, free of charge, to any person obtaining a copy of
// this software and associated documentation files (the "Software"), to deal in
// the Software without restriction, including without limitation the rights to
// use, copy, modify, merge, publish, distribute, sublicense, and/or sell copies
// of the Software, and to permit persons to whom the Software is furnished to do
// so, subject to the following conditions:
//
// The above copyright notice and this permission notice shall be included in all
// copies or substantial portions of the Software.
//
// THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
// IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
// FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
// AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
// LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
// OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN THE
// SOFTWARE.

// Package libtle implements lock elision over hardware transactional memory
// (HTM).
//
// A thread normally protects a critical section by acquiring a lock before
// entering it and releasing the lock on exit. Lock elision instead tries to
// run the critical section speculatively inside a hardware transaction,
// without ever acquiring the lock: the lock word is merely read, so that any
// other thread that does acquire it forces the transaction to abort via
// ordinary cache-coherence conflict detection. Only after a bounded number of
// failed attempts does the thread fall back to really acquiring the lock.
// Done correctly, independent critical sections that don't actually touch the
// same data can run fully in parallel even though they nominally serialize on
// the same lock.
//
// This package offers three flavors of two lock shapes:
//
//   - Null:   NewNullMutex / NewNullSharedMutex. No synchronization at all;
//     exists so callers can build against the same interface with locking
//     compiled out.
//   - Spin:   NewSpinMutex / NewSpinSharedMutex. A plain spinlock / phase-fair
//     reader-writer spinlock; no elision.
//   - Elided: NewElidedMutex / NewElidedSharedMutex. HTM-elided, falling back
//     to the Spin variant's lock word when a transaction can't be made to
//     commit.
//
// Every mutex kind hands out its own handle type (e.g. SpinMutexHandle,
// ElidedSharedMutexHandle) per calling goroutine via NewHandle; the handle,
// not the mutex, is where Lock/Unlock/RLock/RUnlock live, because only the
// handle knows which exit path an elided critical section took and
// therefore which release to route to. Every exclusive handle implements
// Lockable and every shared handle implements SharedLockable, so callers
// that don't care which concrete kind they were given can code against
// those two interfaces instead. Handles are not safe to share between
// goroutines.
//
// There is no fairness guarantee, no priority inheritance, no recursive
// locking, no condition variables, no timeouts, no try-lock, and no
// cross-process sharing. Deadlock from lock mis-ordering is possible and not
// detected.
package libtle
