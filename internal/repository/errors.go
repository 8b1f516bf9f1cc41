package repository

import "errors"

var (
	// ErrNotFound is returned when no record exists under the key.
	ErrNotFound = errors.New("record not found")
	// ErrAlreadyExists is returned when an insert-if-absent finds the key taken.
	ErrAlreadyExists = errors.New("record already exists")
)
