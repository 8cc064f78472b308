package repository

import "errors"

// Sentinel errors shared by all store implementations. Services match on
// these and translate them into the public error taxonomy.
var (
	// ErrNotFound signals the referenced record does not exist.
	ErrNotFound = errors.New("record not found")
	// ErrConflict signals a conditional update found its precondition
	// no longer holds at commit time.
	ErrConflict = errors.New("conditional update failed")
	// ErrDuplicate signals a uniqueness violation.
	ErrDuplicate = errors.New("duplicate record")
	// ErrUnavailable signals a transient backend failure.
	ErrUnavailable = errors.New("store unavailable")
)
