package storage

import "errors"

// ErrConnection wraps failures constructing the engine or its schema
// (spec.md §4.B "Errors"). Dialect-specific driver errors are never
// returned to callers directly; they are always wrapped in one of the two
// sentinels in this file.
var ErrConnection = errors.New("storage: connection error")

// ErrQuery wraps any failure inside a repository session (insert, select,
// soft delete).
var ErrQuery = errors.New("storage: query error")
