package libtle

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNullProfileIsAllNoOps(t *testing.T) {
	var p NullProfile
	p.NoteAcquire()
	p.NoteElided()
	p.NoteAbort(TxConflict)
	assert.Equal(t, ProfileSnapshot{}, p.Snapshot())
}

func TestPlainProfileTracksAcquiresOnly(t *testing.T) {
	p := &PlainProfile{}
	for i := 0; i < 5; i++ {
		p.NoteAcquire()
	}
	snap := p.Snapshot()
	assert.Equal(t, uint64(5), snap.LocksAcquired)
	assert.True(t, snap.ConsistentPlain(5))
	assert.False(t, snap.ConsistentPlain(6))
}

func TestPlainProfilePanicsOnHTMOnlyMethods(t *testing.T) {
	p := &PlainProfile{}
	assert.Panics(t, func() { p.NoteElided() })
	assert.Panics(t, func() { p.NoteAbort(TxConflict) })
}

func TestHTMProfileAbortBucketing(t *testing.T) {
	p := &HTMProfile{}
	p.NoteAbort(TxExplicit | TxConflict) // explicit takes priority
	p.NoteAbort(TxConflict)
	p.NoteAbort(TxCapacity)
	p.NoteAbort(TxNested)
	p.NoteAbort(TxDebug) // falls into "other"
	p.NoteAcquire()
	p.NoteElided()
	p.NoteElided()

	snap := p.Snapshot()
	assert.Equal(t, uint64(1), snap.AbortExplicit)
	assert.Equal(t, uint64(1), snap.AbortConflict)
	assert.Equal(t, uint64(1), snap.AbortCapacity)
	assert.Equal(t, uint64(1), snap.AbortNested)
	assert.Equal(t, uint64(1), snap.AbortOther)
	assert.Equal(t, uint64(5), snap.TotalAborts())
	assert.Equal(t, uint64(1), snap.LocksAcquired)
	assert.Equal(t, uint64(2), snap.LocksElided)
	assert.Equal(t, uint64(3), snap.TotalLockOperations())
}

func TestProfileSnapshotAdd(t *testing.T) {
	a := ProfileSnapshot{LocksAcquired: 1, AbortConflict: 2}
	b := ProfileSnapshot{LocksAcquired: 3, AbortCapacity: 4}
	sum := a.Add(b)
	assert.Equal(t, uint64(4), sum.LocksAcquired)
	assert.Equal(t, uint64(2), sum.AbortConflict)
	assert.Equal(t, uint64(4), sum.AbortCapacity)
}

func TestConsistentHTM(t *testing.T) {
	// Every acquire went through the fallback with no elision and no
	// aborts: vacuously consistent via the zero-aborts escape hatch.
	s := ProfileSnapshot{LocksAcquired: 10}
	assert.True(t, s.ConsistentHTM(10))

	// Some elision happened, and aborts cover at least every acquired op.
	s = ProfileSnapshot{LocksAcquired: 2, LocksElided: 8, AbortConflict: 5}
	assert.True(t, s.ConsistentHTM(10))

	// Total ops mismatch.
	s = ProfileSnapshot{LocksAcquired: 2, LocksElided: 7}
	assert.False(t, s.ConsistentHTM(10))

	// Acquires exceed aborts with elision having happened: not explainable.
	s = ProfileSnapshot{LocksAcquired: 9, LocksElided: 1, AbortConflict: 0}
	assert.False(t, s.ConsistentHTM(10))
}
