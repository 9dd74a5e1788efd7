package repository

import "errors"

// ErrNotFound is returned when a requested record is not found in the
// repository. This abstracts away the underlying storage implementation
// (SQL, in-memory, etc.) from the service layer.
var ErrNotFound = errors.New("record not found")

// ErrDuplicate is returned when an insert would violate a uniqueness
// constraint: a second session with the same ID, a second ballot from
// the same voter, or a token issued twice.
var ErrDuplicate = errors.New("record already exists")
