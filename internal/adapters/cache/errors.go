package cache

import "errors"

// Sentinel kinds for cache lookups.
var (
	// ErrMiss means the backend answered and the key was absent or expired.
	// Any other error from a backend means the backend was unreachable.
	ErrMiss = errors.New("cache miss")
)
