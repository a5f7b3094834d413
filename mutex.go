package libtle

// Lockable is the capability interface every exclusive-lock handle
// implements (component C4), regardless of which of the three mutex kinds
// it was issued by. It deliberately has no shared base type: NullMutexHandle,
// SpinMutexHandle and ElidedMutexHandle each implement it directly, so a
// caller that only needs Lock/Unlock never has to know which kind it holds.
type Lockable interface {
	Lock()
	Unlock()
}

// NullMutex never actually excludes anything; it exists to measure the
// fixed overhead of the handle-state machinery in isolation (its handles
// carry no profile block), as a baseline
// the Spin and Elided kinds' overhead is judged against.
type NullMutex struct{}

// NewNullMutex constructs a NullMutex.
func NewNullMutex() *NullMutex { return &NullMutex{} }

// NewHandle issues a new handle bound to m. Handles are not safe for
// concurrent use by more than one goroutine at a time.
func (m *NullMutex) NewHandle() *NullMutexHandle {
	return &NullMutexHandle{mutex: m}
}

// NullMutexHandle is NullMutex's handle type.
type NullMutexHandle struct {
	handleState
	mutex *NullMutex
}

// Lock records the handle as locked without taking any real lock.
func (h *NullMutexHandle) Lock() {
	h.assertTransition([]HandleStatus{Unknown, Unlocked}, "NullMutexHandle.Lock")
	h.setStatus(LockedUnique)
}

// Unlock records the handle as unlocked.
func (h *NullMutexHandle) Unlock() {
	h.assertTransition([]HandleStatus{LockedUnique}, "NullMutexHandle.Unlock")
	h.setStatus(Unlocked)
}

var _ Lockable = (*NullMutexHandle)(nil)

// SpinMutex is a plain test-and-set mutex (component C4's Spin flavor): a
// thin wrapper over SpinLock that additionally tracks handle state and a
// PlainProfile.
type SpinMutex struct {
	lock      SpinLock
	newProfile func() Profile
}

// NewSpinMutex constructs a SpinMutex. WithMutexProfile may be used to share
// one profile block across every handle issued from it instead of the
// default one-block-per-handle; WithExclusiveRetryLimit has no effect here,
// since SpinMutex has no retry loop to bound.
func NewSpinMutex(opts ...MutexOption) *SpinMutex {
	var cfg mutexConfig
	for _, opt := range opts {
		opt(&cfg)
	}
	m := &SpinMutex{}
	if cfg.profile != nil {
		shared := cfg.profile
		m.newProfile = func() Profile { return shared }
	} else {
		m.newProfile = func() Profile { return &PlainProfile{} }
	}
	return m
}

// NewHandle issues a new handle bound to m.
func (m *SpinMutex) NewHandle() *SpinMutexHandle {
	return &SpinMutexHandle{mutex: m, profile: m.newProfile()}
}

// SpinMutexHandle is SpinMutex's handle type.
type SpinMutexHandle struct {
	handleState
	mutex   *SpinMutex
	profile Profile
}

// Lock blocks until the underlying SpinLock is held.
func (h *SpinMutexHandle) Lock() {
	h.assertTransition([]HandleStatus{Unknown, Unlocked}, "SpinMutexHandle.Lock")
	h.mutex.lock.Lock()
	h.profile.NoteAcquire()
	h.setStatus(LockedUnique)
}

// Unlock releases the underlying SpinLock.
func (h *SpinMutexHandle) Unlock() {
	h.assertTransition([]HandleStatus{LockedUnique}, "SpinMutexHandle.Unlock")
	h.mutex.lock.Unlock()
	h.setStatus(Unlocked)
}

// Profile returns a snapshot of this handle's profile counters.
func (h *SpinMutexHandle) Profile() ProfileSnapshot { return h.profile.Snapshot() }

var _ Lockable = (*SpinMutexHandle)(nil)

// ElidedMutex is the HTM lock-elision mutex (component C4's Elided flavor):
// on Lock, it first tries to run the critical section inside a hardware
// transaction that subscribes to the fallback SpinLock's word without ever
// setting it, falling back to taking the SpinLock directly once the retry
// limit is exhausted or the backend reports a non-restartable abort.
type ElidedMutex struct {
	lock       SpinLock
	retryLimit int
	newProfile func() Profile
}

// NewElidedMutex constructs an ElidedMutex. See WithExclusiveRetryLimit and
// WithMutexProfile.
func NewElidedMutex(opts ...MutexOption) *ElidedMutex {
	cfg := mutexConfig{retryLimit: DefaultExclusiveRetryLimit}
	for _, opt := range opts {
		opt(&cfg)
	}
	m := &ElidedMutex{retryLimit: cfg.retryLimit}
	if cfg.profile != nil {
		shared := cfg.profile
		m.newProfile = func() Profile { return shared }
	} else {
		m.newProfile = func() Profile { return &HTMProfile{} }
	}
	return m
}

// NewHandle issues a new handle bound to m.
func (m *ElidedMutex) NewHandle() *ElidedMutexHandle {
	return &ElidedMutexHandle{mutex: m, profile: m.newProfile()}
}

// ElidedMutexHandle is ElidedMutex's handle type. Its Unlock behavior
// branches on which path Lock took — Commit for Elided, SpinLock.Unlock for
// LockedUnique — which is exactly why handle state, not just the mutex
// itself, needs to track status.
type ElidedMutexHandle struct {
	handleState
	mutex   *ElidedMutex
	profile Profile
}

// Lock implements spec.md §4.4's elision protocol: wait for the fallback
// lock to look free, start a transaction, and re-check the fallback lock's
// word from inside the transaction before trusting it — this read joins the
// transaction's read set, so a concurrent holder taking the SpinLock will
// force this transaction to abort via cache-line conflict rather than let
// two critical sections run unisolated. Retries up to the configured limit
// before falling back to taking the SpinLock for real.
func (h *ElidedMutexHandle) Lock() {
	h.assertTransition([]HandleStatus{Unknown, Unlocked}, "ElidedMutexHandle.Lock")
	for attempt := 0; attempt < h.mutex.retryLimit; attempt++ {
		h.mutex.lock.UnlockWait()

		status := Begin()
		if status&TxStarted != 0 {
			if h.mutex.lock.IsLocked() {
				// Another goroutine holds the fallback lock outright, so this
				// attempt cannot safely elide; abort explicitly rather than
				// let the critical section run alongside the lock holder.
				UserAbort(lockIsHeldAbortCode)
				// UserAbort never returns on a backend that actually started
				// a transaction; this is reachable only on a backend whose
				// begin() can return TxStarted yet whose userAbort is a
				// no-op, which none of the shipped backends are.
				continue
			}
			h.setStatus(Elided)
			return
		}

		h.profile.NoteAbort(status)
		if !IsRestartable(status) {
			break
		}
	}

	h.mutex.lock.Lock()
	h.profile.NoteAcquire()
	h.setStatus(LockedUnique)
}

// Unlock commits the transaction if Lock elided, or releases the fallback
// SpinLock if it didn't.
func (h *ElidedMutexHandle) Unlock() {
	switch h.Status() {
	case Elided:
		if !Commit() {
			panic("libtle: ElidedMutexHandle.Unlock: commit reported failure after a successful Begin")
		}
		// A nested transaction's commit only decrements the hardware's
		// nesting counter; it doesn't publish anything. Only count this as
		// an elided critical section once InTransaction reports the
		// outermost commit actually happened.
		if !InTransaction() {
			h.profile.NoteElided()
		}
		h.setStatus(Unlocked)
	case LockedUnique:
		h.mutex.lock.Unlock()
		h.setStatus(Unlocked)
	default:
		h.assertTransition([]HandleStatus{Elided, LockedUnique}, "ElidedMutexHandle.Unlock")
	}
}

// Profile returns a snapshot of this handle's profile counters.
func (h *ElidedMutexHandle) Profile() ProfileSnapshot { return h.profile.Snapshot() }

var _ Lockable = (*ElidedMutexHandle)(nil)
