package libtle

import "os"

// Default retry limits, matching spec.md §6's compile-time constants
// exactly. They're exposed here as ordinary Go constants and overridden per
// mutex instance via functional options (WithExclusiveRetryLimit etc.)
// rather than only at build time — a strict superset of the spec's
// contract, since omitting every option reproduces these defaults exactly.
const (
	// DefaultExclusiveRetryLimit bounds ElidedMutex's attempts before it
	// falls back to SpinLock.Lock.
	DefaultExclusiveRetryLimit = 10
	// DefaultSharedWriteRetryLimit bounds ElidedSharedMutex's exclusive-lock
	// attempts before it falls back to RWSpinLock.Lock.
	DefaultSharedWriteRetryLimit = 10
	// DefaultSharedReadRetryLimit bounds ElidedSharedMutex's shared-lock
	// attempts before it falls back to RWSpinLock.RLock.
	DefaultSharedReadRetryLimit = 10
)

// mutexConfig is the resolved option set for one ElidedMutex, SpinMutex or
// SpinSharedMutex.
type mutexConfig struct {
	retryLimit int
	profile    Profile
}

// MutexOption configures an ElidedMutex, SpinMutex or SpinSharedMutex at
// construction.
type MutexOption func(*mutexConfig)

// WithExclusiveRetryLimit overrides DefaultExclusiveRetryLimit for one
// ElidedMutex. A limit of 0 means always fall back; IsRestartable is never
// even consulted.
func WithExclusiveRetryLimit(n int) MutexOption {
	return func(c *mutexConfig) { c.retryLimit = n }
}

// WithMutexProfile attaches a caller-supplied Profile instead of the default
// per-kind one, e.g. to share aggregation buckets across several mutexes.
func WithMutexProfile(p Profile) MutexOption {
	return func(c *mutexConfig) { c.profile = p }
}

// sharedMutexConfig is the resolved option set for one ElidedSharedMutex.
type sharedMutexConfig struct {
	writeRetryLimit int
	readRetryLimit  int
	profile         Profile
}

// SharedMutexOption configures an ElidedSharedMutex at construction.
type SharedMutexOption func(*sharedMutexConfig)

// WithSharedWriteRetryLimit overrides DefaultSharedWriteRetryLimit.
func WithSharedWriteRetryLimit(n int) SharedMutexOption {
	return func(c *sharedMutexConfig) { c.writeRetryLimit = n }
}

// WithSharedReadRetryLimit overrides DefaultSharedReadRetryLimit.
func WithSharedReadRetryLimit(n int) SharedMutexOption {
	return func(c *sharedMutexConfig) { c.readRetryLimit = n }
}

// WithSharedMutexProfile attaches a caller-supplied Profile instead of the
// default per-kind one.
func WithSharedMutexProfile(p Profile) SharedMutexOption {
	return func(c *sharedMutexConfig) { c.profile = p }
}

// debugHandleStateEnvVar is the runtime analogue of spec.md's compile-time
// DEBUG_HANDLE_STATE flag.
const debugHandleStateEnvVar = "LIBTLE_DEBUG_HANDLE_STATE"

// EnableDebugFromEnv sets DebugHandleState from the LIBTLE_DEBUG_HANDLE_STATE
// environment variable, treating any non-empty value as true. Call it once
// at process start, before constructing any mutex, if you want the
// environment to control handle-state assertions instead of setting
// DebugHandleState directly.
func EnableDebugFromEnv() {
	if v := os.Getenv(debugHandleStateEnvVar); v != "" {
		DebugHandleState = true
	}
}
