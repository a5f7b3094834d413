package libtle

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSpinLockMutualExclusion(t *testing.T) {
	var l SpinLock
	var counter int
	const goroutines = 50
	const increments = 1000

	var wg sync.WaitGroup
	wg.Add(goroutines)
	for i := 0; i < goroutines; i++ {
		go func() {
			defer wg.Done()
			for j := 0; j < increments; j++ {
				l.Lock()
				counter++
				l.Unlock()
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, goroutines*increments, counter, "SpinLock failed to serialize counter increments")
	assert.False(t, l.IsLocked(), "lock must be free once every holder has released it")
}

func TestSpinLockIsLockedAndUnlockWait(t *testing.T) {
	var l SpinLock
	assert.False(t, l.IsLocked())

	l.Lock()
	assert.True(t, l.IsLocked())

	released := make(chan struct{})
	go func() {
		l.UnlockWait()
		close(released)
	}()

	l.Unlock()
	<-released
	assert.False(t, l.IsLocked())
}
