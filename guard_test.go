package libtle

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGuardAcquiresAndReleases(t *testing.T) {
	m := NewSpinMutex()
	h := m.NewHandle()

	func() {
		g := Acquire(h)
		defer g.Close()
		assert.Equal(t, LockedUnique, h.Status())
	}()

	assert.Equal(t, Unlocked, h.Status())
}

func TestGuardDoubleClosePanics(t *testing.T) {
	m := NewSpinMutex()
	h := m.NewHandle()
	g := Acquire(h)
	g.Close()
	assert.Panics(t, func() { g.Close() })
}

func TestSharedGuardAcquiresAndReleases(t *testing.T) {
	m := NewSpinSharedMutex()
	h := m.NewHandle()

	func() {
		g := AcquireShared(h)
		defer g.Close()
		assert.Equal(t, LockedShared, h.Status())
	}()

	assert.Equal(t, Unlocked, h.Status())
}

func TestSharedGuardDoubleClosePanics(t *testing.T) {
	m := NewSpinSharedMutex()
	h := m.NewHandle()
	g := AcquireShared(h)
	g.Close()
	assert.Panics(t, func() { g.Close() })
}
