package libtle

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNullMutexHandleTracksState(t *testing.T) {
	m := NewNullMutex()
	h := m.NewHandle()
	assert.Equal(t, Unknown, h.Status())

	h.Lock()
	assert.Equal(t, LockedUnique, h.Status())

	h.Unlock()
	assert.Equal(t, Unlocked, h.Status())
}

func TestSpinMutexMutualExclusion(t *testing.T) {
	m := NewSpinMutex()
	var counter int
	const goroutines = 50
	const increments = 500

	var wg sync.WaitGroup
	wg.Add(goroutines)
	for i := 0; i < goroutines; i++ {
		go func() {
			defer wg.Done()
			h := m.NewHandle()
			for j := 0; j < increments; j++ {
				h.Lock()
				counter++
				h.Unlock()
			}
			snap := h.Profile()
			assert.True(t, snap.ConsistentPlain(uint64(increments)))
		}()
	}
	wg.Wait()

	assert.Equal(t, goroutines*increments, counter)
}

func TestElidedMutexMutualExclusion(t *testing.T) {
	m := NewElidedMutex()
	var counter int
	const goroutines = 50
	const increments = 500

	var wg sync.WaitGroup
	wg.Add(goroutines)
	for i := 0; i < goroutines; i++ {
		go func() {
			defer wg.Done()
			h := m.NewHandle()
			for j := 0; j < increments; j++ {
				h.Lock()
				counter++
				h.Unlock()
			}
			snap := h.Profile()
			assert.True(t, snap.ConsistentHTM(uint64(increments)), "profile %+v inconsistent with %d total ops", snap, increments)
		}()
	}
	wg.Wait()

	assert.Equal(t, goroutines*increments, counter, "ElidedMutex must serialize writers whether or not it actually elided")
}

func TestElidedMutexElidesWhenHTMAvailable(t *testing.T) {
	if !HTMAvailable() {
		t.Skip("no HTM backend available on this host; elision cannot be exercised")
	}

	m := NewElidedMutex()
	h := m.NewHandle()
	for i := 0; i < 1000; i++ {
		h.Lock()
		h.Unlock()
	}
	snap := h.Profile()
	assert.Greater(t, snap.LocksElided, uint64(0), "expected at least one elided critical section on an HTM-capable host")
}

func TestElidedMutexRetryLimitOption(t *testing.T) {
	m := NewElidedMutex(WithExclusiveRetryLimit(1))
	require.NotNil(t, m)
	h := m.NewHandle()
	h.Lock()
	h.Unlock()
	assert.Equal(t, Unlocked, h.Status())
}

func TestMutexHandleDoubleLockPanicsInDebugMode(t *testing.T) {
	old := DebugHandleState
	DebugHandleState = true
	defer func() { DebugHandleState = old }()

	m := NewSpinMutex()
	h := m.NewHandle()
	h.Lock()
	assert.Panics(t, func() { h.Lock() }, "locking an already-locked handle must panic in debug mode")
	h.Unlock()
}

func TestMutexHandleUnlockWithoutLockPanicsInDebugMode(t *testing.T) {
	old := DebugHandleState
	DebugHandleState = true
	defer func() { DebugHandleState = old }()

	m := NewSpinMutex()
	h := m.NewHandle()
	assert.Panics(t, func() { h.Unlock() }, "unlocking a never-locked handle must panic in debug mode")
}
