package store

import "errors"

var (
	// ErrNotFound is returned when an update or delete targets a missing row
	ErrNotFound = errors.New("record not found")
	// ErrDuplicateEmail is returned when an insert or update violates the
	// email uniqueness constraint
	ErrDuplicateEmail = errors.New("email already exists")
)
