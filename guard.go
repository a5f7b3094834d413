package libtle

// Guard acquires l for the duration of its lifetime and releases it exactly
// once, via Close. It is the scoped-acquisition counterpart to calling
// Lock/Unlock by hand, meant to be used as:
//
//	g := libtle.Acquire(handle)
//	defer g.Close()
//
// A Guard must not be copied after construction; pass it by pointer if it
// needs to cross a function boundary at all, though the idiomatic use is to
// never let it leave the function that created it.
type Guard struct {
	target Lockable
	closed bool
}

// Acquire locks l and returns a Guard that will release it on Close.
func Acquire(l Lockable) *Guard {
	l.Lock()
	return &Guard{target: l}
}

// Close releases the lock Acquire took. Calling Close more than once panics,
// since a double release would otherwise silently unlock an unrelated
// holder's critical section.
func (g *Guard) Close() {
	if g.closed {
		panic("libtle: Guard.Close called twice")
	}
	g.closed = true
	g.target.Unlock()
}

// SharedGuard is Guard's read-side counterpart: AcquireShared takes a
// SharedLockable's RLock instead of Lock.
type SharedGuard struct {
	target SharedLockable
	closed bool
}

// AcquireShared takes l's RLock and returns a SharedGuard that will release
// it on Close.
func AcquireShared(l SharedLockable) *SharedGuard {
	l.RLock()
	return &SharedGuard{target: l}
}

// Close releases the RLock AcquireShared took. Calling Close more than once
// panics, for the same reason as Guard.Close.
func (g *SharedGuard) Close() {
	if g.closed {
		panic("libtle: SharedGuard.Close called twice")
	}
	g.closed = true
	g.target.RUnlock()
}
