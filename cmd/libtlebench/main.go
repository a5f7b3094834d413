// Command libtlebench drives a configurable mix of readers and writers
// against one of libtle's six mutex kinds and reports the aggregated
// acquire/elide/abort counts, so elision behavior can be eyeballed on a
// given host without reaching for `go test -bench`.
package main

import (
	"fmt"
	"math/rand"
	"os"
	"sync"

	"github.com/spf13/pflag"

	"github.com/ARM-software/libTLE"
)

var (
	kind        = pflag.StringP("kind", "k", "elided", "mutex kind: null, spin, elided")
	shared      = pflag.BoolP("shared", "s", false, "use the reader/writer variant of kind instead of the exclusive-only one")
	concurrency = pflag.IntP("concurrency", "c", 10, "number of concurrent goroutines")
	writeRatio  = pflag.Float64P("write-ratio", "w", 0.10, "fraction of operations that take the exclusive lock; only meaningful with --shared")
	iterations  = pflag.IntP("iterations", "n", 100000, "operations performed per goroutine")
)

// exclusiveHandle and sharedHandle name just enough of each handle type's
// surface for the worker loops below; the concrete handles (SpinMutexHandle,
// ElidedSharedMutexHandle, ...) already satisfy these structurally.
type exclusiveHandle interface {
	Lock()
	Unlock()
	Profile() libtle.ProfileSnapshot
}

type sharedHandle interface {
	exclusiveHandle
	RLock()
	RUnlock()
}

func main() {
	pflag.Parse()
	libtle.EnableDebugFromEnv()

	var value int
	var valueMu sync.Mutex
	var result libtle.ProfileSnapshot
	var resultMu sync.Mutex

	newExclusive, newShared, err := handleFactories()
	if err != nil {
		fmt.Fprintln(os.Stderr, "libtlebench:", err)
		os.Exit(2)
	}

	var wg sync.WaitGroup
	wg.Add(*concurrency)
	for i := 0; i < *concurrency; i++ {
		go func(seed int64) {
			defer wg.Done()
			rng := rand.New(rand.NewSource(seed))

			if !*shared {
				h := newExclusive()
				for j := 0; j < *iterations; j++ {
					h.Lock()
					valueMu.Lock()
					value++
					valueMu.Unlock()
					h.Unlock()
				}
				resultMu.Lock()
				result = result.Add(h.Profile())
				resultMu.Unlock()
				return
			}

			h := newShared()
			for j := 0; j < *iterations; j++ {
				if rng.Float64() < *writeRatio {
					h.Lock()
					valueMu.Lock()
					value++
					valueMu.Unlock()
					h.Unlock()
				} else {
					h.RLock()
					valueMu.Lock()
					_ = value
					valueMu.Unlock()
					h.RUnlock()
				}
			}
			resultMu.Lock()
			result = result.Add(h.Profile())
			resultMu.Unlock()
		}(int64(i))
	}
	wg.Wait()

	fmt.Printf("kind=%s shared=%v concurrency=%d iterations=%d write_ratio=%.2f\n",
		*kind, *shared, *concurrency, *iterations, *writeRatio)
	fmt.Printf("value=%d\n", value)
	fmt.Printf("locks_acquired=%d locks_elided=%d\n", result.LocksAcquired, result.LocksElided)
	fmt.Printf("aborts: explicit=%d conflict=%d capacity=%d nested=%d other=%d\n",
		result.AbortExplicit, result.AbortConflict, result.AbortCapacity, result.AbortNested, result.AbortOther)
	fmt.Printf("htm_available=%v\n", libtle.HTMAvailable())
}

// handleFactories resolves --kind to a pair of handle constructors, one per
// exclusive-only and shared mutex. Only the one matching --shared is ever
// invoked; both are returned so the caller's goroutine loop doesn't need a
// second switch.
func handleFactories() (func() exclusiveHandle, func() sharedHandle, error) {
	switch *kind {
	case "null":
		em := libtle.NewNullMutex()
		sm := libtle.NewNullSharedMutex()
		return func() exclusiveHandle { return nullExclusive{em.NewHandle()} },
			func() sharedHandle { return nullShared{sm.NewHandle()} },
			nil
	case "spin":
		em := libtle.NewSpinMutex()
		sm := libtle.NewSpinSharedMutex()
		return func() exclusiveHandle { return em.NewHandle() },
			func() sharedHandle { return sm.NewHandle() },
			nil
	case "elided":
		em := libtle.NewElidedMutex()
		sm := libtle.NewElidedSharedMutex()
		return func() exclusiveHandle { return em.NewHandle() },
			func() sharedHandle { return sm.NewHandle() },
			nil
	default:
		return nil, nil, fmt.Errorf("unknown --kind %q (want null, spin or elided)", *kind)
	}
}

// nullExclusive and nullShared adapt NullMutex/NullSharedMutex's handles,
// which carry no profile block, to this command's exclusiveHandle/
// sharedHandle interfaces by reporting an all-zero snapshot.
type nullExclusive struct{ *libtle.NullMutexHandle }

func (nullExclusive) Profile() libtle.ProfileSnapshot { return libtle.ProfileSnapshot{} }

type nullShared struct{ *libtle.NullSharedMutexHandle }

func (nullShared) Profile() libtle.ProfileSnapshot { return libtle.ProfileSnapshot{} }
