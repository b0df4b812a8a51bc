package repository

import "errors"

// Sentinel kinds for venue store errors.
var (
	ErrNotFound = errors.New("venue not found")
)
