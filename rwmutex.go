package libtle

// SharedLockable is the capability interface every shared-lock handle
// implements (component C4): full exclusive access via Lockable, plus
// shared/read access via RLock/RUnlock.
type SharedLockable interface {
	Lockable
	RLock()
	RUnlock()
}

// NullSharedMutex is SharedLockable's no-op baseline, the shared-lock analog
// of NullMutex.
type NullSharedMutex struct{}

// NewNullSharedMutex constructs a NullSharedMutex.
func NewNullSharedMutex() *NullSharedMutex { return &NullSharedMutex{} }

// NewHandle issues a new handle bound to m.
func (m *NullSharedMutex) NewHandle() *NullSharedMutexHandle {
	return &NullSharedMutexHandle{mutex: m}
}

// NullSharedMutexHandle is NullSharedMutex's handle type.
type NullSharedMutexHandle struct {
	handleState
	mutex *NullSharedMutex
}

func (h *NullSharedMutexHandle) Lock() {
	h.assertTransition([]HandleStatus{Unknown, Unlocked}, "NullSharedMutexHandle.Lock")
	h.setStatus(LockedUnique)
}

func (h *NullSharedMutexHandle) Unlock() {
	h.assertTransition([]HandleStatus{LockedUnique}, "NullSharedMutexHandle.Unlock")
	h.setStatus(Unlocked)
}

func (h *NullSharedMutexHandle) RLock() {
	h.assertTransition([]HandleStatus{Unknown, Unlocked}, "NullSharedMutexHandle.RLock")
	h.setStatus(LockedShared)
}

func (h *NullSharedMutexHandle) RUnlock() {
	h.assertTransition([]HandleStatus{LockedShared}, "NullSharedMutexHandle.RUnlock")
	h.setStatus(Unlocked)
}

var _ SharedLockable = (*NullSharedMutexHandle)(nil)

// SpinSharedMutex is a plain reader/writer spinlock (component C4's Spin
// shared flavor): a thin wrapper over RWSpinLock that additionally tracks
// handle state and a PlainProfile.
type SpinSharedMutex struct {
	lock       RWSpinLock
	newProfile func() Profile
}

// NewSpinSharedMutex constructs a SpinSharedMutex. See WithMutexProfile;
// WithExclusiveRetryLimit has no effect here.
func NewSpinSharedMutex(opts ...MutexOption) *SpinSharedMutex {
	var cfg mutexConfig
	for _, opt := range opts {
		opt(&cfg)
	}
	m := &SpinSharedMutex{}
	if cfg.profile != nil {
		shared := cfg.profile
		m.newProfile = func() Profile { return shared }
	} else {
		m.newProfile = func() Profile { return &PlainProfile{} }
	}
	return m
}

// NewHandle issues a new handle bound to m.
func (m *SpinSharedMutex) NewHandle() *SpinSharedMutexHandle {
	return &SpinSharedMutexHandle{mutex: m, profile: m.newProfile()}
}

// SpinSharedMutexHandle is SpinSharedMutex's handle type.
type SpinSharedMutexHandle struct {
	handleState
	mutex   *SpinSharedMutex
	profile Profile
}

func (h *SpinSharedMutexHandle) Lock() {
	h.assertTransition([]HandleStatus{Unknown, Unlocked}, "SpinSharedMutexHandle.Lock")
	h.mutex.lock.Lock()
	h.profile.NoteAcquire()
	h.setStatus(LockedUnique)
}

func (h *SpinSharedMutexHandle) Unlock() {
	h.assertTransition([]HandleStatus{LockedUnique}, "SpinSharedMutexHandle.Unlock")
	h.mutex.lock.Unlock()
	h.setStatus(Unlocked)
}

func (h *SpinSharedMutexHandle) RLock() {
	h.assertTransition([]HandleStatus{Unknown, Unlocked}, "SpinSharedMutexHandle.RLock")
	h.mutex.lock.RLock()
	h.profile.NoteAcquire()
	h.setStatus(LockedShared)
}

func (h *SpinSharedMutexHandle) RUnlock() {
	h.assertTransition([]HandleStatus{LockedShared}, "SpinSharedMutexHandle.RUnlock")
	h.mutex.lock.RUnlock()
	h.setStatus(Unlocked)
}

// Profile returns a snapshot of this handle's profile counters.
func (h *SpinSharedMutexHandle) Profile() ProfileSnapshot { return h.profile.Snapshot() }

var _ SharedLockable = (*SpinSharedMutexHandle)(nil)

// ElidedSharedMutex is the HTM lock-elision reader/writer mutex (component
// C4's Elided shared flavor). It keeps two lock words rather than one:
//
//   - state holds the real reader count plus the real active/pending-writer
//     bits, and is what real readers and the real writer actually acquire.
//   - writerFlag is an independent SpinLock that only the real writer
//     already holding state sets, giving elided attempts a single word
//     that changes only when a real writer comes or goes. Elided attempts
//     probe it first, and also read state's word inside the transaction.
//
// A real (non-elided) writer takes state before writerFlag, so setting
// writerFlag is never contended, and releases writerFlag before state: a
// new real reader can only enter once state is released, by which time
// writerFlag is already clear.
type ElidedSharedMutex struct {
	state           RWSpinLock
	writerFlag      SpinLock
	writeRetryLimit int
	readRetryLimit  int
	newProfile      func() Profile
}

// NewElidedSharedMutex constructs an ElidedSharedMutex. See
// WithSharedWriteRetryLimit, WithSharedReadRetryLimit and
// WithSharedMutexProfile.
func NewElidedSharedMutex(opts ...SharedMutexOption) *ElidedSharedMutex {
	cfg := sharedMutexConfig{
		writeRetryLimit: DefaultSharedWriteRetryLimit,
		readRetryLimit:  DefaultSharedReadRetryLimit,
	}
	for _, opt := range opts {
		opt(&cfg)
	}
	m := &ElidedSharedMutex{
		writeRetryLimit: cfg.writeRetryLimit,
		readRetryLimit:  cfg.readRetryLimit,
	}
	if cfg.profile != nil {
		shared := cfg.profile
		m.newProfile = func() Profile { return shared }
	} else {
		m.newProfile = func() Profile { return &HTMProfile{} }
	}
	return m
}

// NewHandle issues a new handle bound to m.
func (m *ElidedSharedMutex) NewHandle() *ElidedSharedMutexHandle {
	return &ElidedSharedMutexHandle{mutex: m, profile: m.newProfile()}
}

// ElidedSharedMutexHandle is ElidedSharedMutex's handle type.
type ElidedSharedMutexHandle struct {
	handleState
	mutex   *ElidedSharedMutex
	profile Profile
}

// Lock attempts to elide exclusive acquisition: it aborts if either
// writerFlag or state is held by anyone at all, since a writer needs full
// exclusivity. Falls back to the real writer path (state then writerFlag)
// once the retry limit is exhausted or the backend reports a
// non-restartable abort.
func (h *ElidedSharedMutexHandle) Lock() {
	h.assertTransition([]HandleStatus{Unknown, Unlocked}, "ElidedSharedMutexHandle.Lock")
	for attempt := 0; attempt < h.mutex.writeRetryLimit; attempt++ {
		h.mutex.writerFlag.UnlockWait()
		h.mutex.state.UnlockWait()

		status := Begin()
		if status&TxStarted != 0 {
			if h.mutex.writerFlag.IsLocked() || h.mutex.state.IsLocked() {
				UserAbort(lockIsHeldAbortCode)
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

	h.mutex.state.Lock()
	h.mutex.writerFlag.Lock()
	h.profile.NoteAcquire()
	h.setStatus(LockedUnique)
}

// Unlock commits if Lock elided, or releases writerFlag then state if it
// took the real writer path.
func (h *ElidedSharedMutexHandle) Unlock() {
	switch h.Status() {
	case Elided:
		if !Commit() {
			panic("libtle: ElidedSharedMutexHandle.Unlock: commit reported failure after a successful Begin")
		}
		// As in ElidedMutexHandle.Unlock: a nested commit only decrements
		// the hardware's nesting counter, so only count an elided critical
		// section once the outermost commit has actually happened.
		if !InTransaction() {
			h.profile.NoteElided()
		}
		h.setStatus(Unlocked)
	case LockedUnique:
		h.mutex.writerFlag.UnlockUncontended()
		h.mutex.state.Unlock()
		h.setStatus(Unlocked)
	default:
		h.assertTransition([]HandleStatus{Elided, LockedUnique}, "ElidedSharedMutexHandle.Unlock")
	}
}

// RLock attempts to elide shared acquisition: it only aborts when a real
// writer is involved (writerFlag held, or state's writer bits set), since
// concurrent real readers never conflict with a read-only critical section.
// Falls back to state.RLock directly once the retry limit is exhausted or
// the backend reports a non-restartable abort.
func (h *ElidedSharedMutexHandle) RLock() {
	h.assertTransition([]HandleStatus{Unknown, Unlocked}, "ElidedSharedMutexHandle.RLock")
	for attempt := 0; attempt < h.mutex.readRetryLimit; attempt++ {
		h.mutex.writerFlag.UnlockWait()

		status := Begin()
		if status&TxStarted != 0 {
			if h.mutex.writerFlag.IsLocked() || h.mutex.state.hasActiveOrPendingWriter() {
				UserAbort(lockIsHeldAbortCode)
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

	h.mutex.state.RLock()
	h.profile.NoteAcquire()
	h.setStatus(LockedShared)
}

// RUnlock commits if RLock elided, or releases state's reader count if it
// took the real reader path.
func (h *ElidedSharedMutexHandle) RUnlock() {
	switch h.Status() {
	case Elided:
		if !Commit() {
			panic("libtle: ElidedSharedMutexHandle.RUnlock: commit reported failure after a successful Begin")
		}
		// As in ElidedMutexHandle.Unlock: a nested commit only decrements
		// the hardware's nesting counter, so only count an elided critical
		// section once the outermost commit has actually happened.
		if !InTransaction() {
			h.profile.NoteElided()
		}
		h.setStatus(Unlocked)
	case LockedShared:
		h.mutex.state.RUnlock()
		h.setStatus(Unlocked)
	default:
		h.assertTransition([]HandleStatus{Elided, LockedShared}, "ElidedSharedMutexHandle.RUnlock")
	}
}

// Profile returns a snapshot of this handle's profile counters.
func (h *ElidedSharedMutexHandle) Profile() ProfileSnapshot { return h.profile.Snapshot() }

var _ SharedLockable = (*ElidedSharedMutexHandle)(nil)
