package libtle

import "golang.org/x/sys/cpu"

// Profile is the trait concrete profile blocks satisfy (component C5).
// Concrete types (NullProfile, PlainProfile, HTMProfile) implement it
// directly rather than sharing a base type, per spec.md §9's guidance to
// avoid inheritance-style profile-counter aliasing.
//
// A Profile is never shared between goroutines during the hot path — every
// handle that wants profiling owns its own block — so every method here
// assumes single-writer, relaxed-ordering semantics; aggregation only
// happens after the owning goroutines have joined, via Snapshot.
type Profile interface {
	// NoteAcquire records that the fallback lock was taken directly (no
	// elision attempted, or elision exhausted its retries).
	NoteAcquire()
	// NoteElided records that a critical section committed inside a
	// hardware transaction without ever taking the fallback lock.
	NoteElided()
	// NoteAbort records why a transaction attempt didn't commit.
	NoteAbort(status TxStatus)
	// Snapshot returns an aggregable copy of the block's counters.
	Snapshot() ProfileSnapshot
}

// ProfileSnapshot is a plain-data copy of a profile block's counters, used
// both for the consistency predicates in spec.md §4.6 and for summing
// independent per-goroutine blocks after they've joined.
type ProfileSnapshot struct {
	LocksAcquired uint64
	LocksElided   uint64
	AbortExplicit uint64
	AbortConflict uint64
	AbortCapacity uint64
	AbortNested   uint64
	AbortOther    uint64
}

// TotalAborts sums every abort-cause counter.
func (s ProfileSnapshot) TotalAborts() uint64 {
	return s.AbortExplicit + s.AbortConflict + s.AbortCapacity + s.AbortNested + s.AbortOther
}

// TotalLockOperations sums the two ways a critical section can have been
// entered.
func (s ProfileSnapshot) TotalLockOperations() uint64 {
	return s.LocksAcquired + s.LocksElided
}

// Add returns the element-wise sum of s and o, for aggregating independent
// per-goroutine profile blocks.
func (s ProfileSnapshot) Add(o ProfileSnapshot) ProfileSnapshot {
	return ProfileSnapshot{
		LocksAcquired: s.LocksAcquired + o.LocksAcquired,
		LocksElided:   s.LocksElided + o.LocksElided,
		AbortExplicit: s.AbortExplicit + o.AbortExplicit,
		AbortConflict: s.AbortConflict + o.AbortConflict,
		AbortCapacity: s.AbortCapacity + o.AbortCapacity,
		AbortNested:   s.AbortNested + o.AbortNested,
		AbortOther:    s.AbortOther + o.AbortOther,
	}
}

// ConsistentPlain implements spec.md §4.6's plain-profile predicate:
// locks_acquired == total_lock_operations.
func (s ProfileSnapshot) ConsistentPlain(totalOps uint64) bool {
	return s.LocksAcquired == totalOps
}

// ConsistentHTM implements spec.md §4.6's HTM-profile predicate:
// locks_acquired + locks_elided == total_lock_operations, and either
// locks_acquired <= total_aborts, or both total_aborts and locks_elided are
// zero (an environment where HTM never even started).
func (s ProfileSnapshot) ConsistentHTM(totalOps uint64) bool {
	if s.TotalLockOperations() != totalOps {
		return false
	}
	aborts := s.TotalAborts()
	if s.LocksAcquired <= aborts {
		return true
	}
	return aborts == 0 && s.LocksElided == 0
}

// NullProfile is the empty profile flavor: every method is a no-op, and
// Snapshot always returns an all-zero ProfileSnapshot.
type NullProfile struct{}

func (NullProfile) NoteAcquire()           {}
func (NullProfile) NoteElided()            {}
func (NullProfile) NoteAbort(TxStatus)     {}
func (NullProfile) Snapshot() ProfileSnapshot { return ProfileSnapshot{} }

// PlainProfile is the plain-mutex profile flavor: it tracks only
// locks_acquired, since a SpinMutex/SpinSharedMutex never elides. It is
// padded to a cache line on both sides so that concurrently-updated
// profiles belonging to different goroutines never false-share a line.
type PlainProfile struct {
	_             cpu.CacheLinePad
	locksAcquired uint64
	_             cpu.CacheLinePad
}

func (p *PlainProfile) NoteAcquire()       { p.locksAcquired++ }
func (p *PlainProfile) NoteElided()        { panic("libtle: PlainProfile.NoteElided: plain mutexes never elide") }
func (p *PlainProfile) NoteAbort(TxStatus) { panic("libtle: PlainProfile.NoteAbort: plain mutexes never attempt a transaction") }

func (p *PlainProfile) Snapshot() ProfileSnapshot {
	return ProfileSnapshot{LocksAcquired: p.locksAcquired}
}

// HTMProfile is the HTM-elided profile flavor: locks_acquired, locks_elided,
// and the five abort-cause counters named in spec.md §3. Cache-line padded
// on both sides for the same reason as PlainProfile.
type HTMProfile struct {
	_ cpu.CacheLinePad

	locksAcquired uint64
	locksElided   uint64
	abortExplicit uint64
	abortConflict uint64
	abortCapacity uint64
	abortNested   uint64
	abortOther    uint64

	_ cpu.CacheLinePad
}

func (p *HTMProfile) NoteAcquire() { p.locksAcquired++ }
func (p *HTMProfile) NoteElided()  { p.locksElided++ }

func (p *HTMProfile) NoteAbort(status TxStatus) {
	switch {
	case status&TxExplicit != 0:
		p.abortExplicit++
	case status&TxConflict != 0:
		p.abortConflict++
	case status&TxCapacity != 0:
		p.abortCapacity++
	case status&TxNested != 0:
		p.abortNested++
	default:
		p.abortOther++
	}
}

func (p *HTMProfile) Snapshot() ProfileSnapshot {
	return ProfileSnapshot{
		LocksAcquired: p.locksAcquired,
		LocksElided:   p.locksElided,
		AbortExplicit: p.abortExplicit,
		AbortConflict: p.abortConflict,
		AbortCapacity: p.abortCapacity,
		AbortNested:   p.abortNested,
		AbortOther:    p.abortOther,
	}
}
