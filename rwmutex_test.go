package libtle

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSpinSharedMutexWriterExclusion(t *testing.T) {
	m := NewSpinSharedMutex()
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
		}()
	}
	wg.Wait()

	assert.Equal(t, goroutines*increments, counter)
}

func TestSpinSharedMutexReadersDontBlockEachOther(t *testing.T) {
	m := NewSpinSharedMutex()
	h1 := m.NewHandle()
	h2 := m.NewHandle()

	h1.RLock()
	done := make(chan struct{})
	go func() {
		h2.RLock()
		h2.RUnlock()
		close(done)
	}()
	<-done
	h1.RUnlock()
}

func TestElidedSharedMutexWriterExclusion(t *testing.T) {
	m := NewElidedSharedMutex()
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

	assert.Equal(t, goroutines*increments, counter)
}

func TestElidedSharedMutexReadWriteMix(t *testing.T) {
	m := NewElidedSharedMutex()
	var value int
	const readers = 20
	const writers = 5
	const iterations = 200

	var wg sync.WaitGroup
	wg.Add(readers + writers)

	for i := 0; i < writers; i++ {
		go func() {
			defer wg.Done()
			h := m.NewHandle()
			for j := 0; j < iterations; j++ {
				h.Lock()
				value++
				h.Unlock()
			}
		}()
	}
	for i := 0; i < readers; i++ {
		go func() {
			defer wg.Done()
			h := m.NewHandle()
			for j := 0; j < iterations; j++ {
				h.RLock()
				_ = value
				h.RUnlock()
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, writers*iterations, value)
}

func TestElidedSharedMutexElidesReadsWhenHTMAvailable(t *testing.T) {
	if !HTMAvailable() {
		t.Skip("no HTM backend available on this host; elision cannot be exercised")
	}

	m := NewElidedSharedMutex()
	h := m.NewHandle()
	for i := 0; i < 1000; i++ {
		h.RLock()
		h.RUnlock()
	}
	snap := h.Profile()
	assert.Greater(t, snap.LocksElided, uint64(0))
}
