// Package repository holds what the storage backends share: the errors they
// translate driver failures into.
package repository

import "errors"

var (
	// ErrNotFound is returned when no record matches the lookup.
	ErrNotFound = errors.New("record not found")
	// ErrDuplicate is returned when a write would violate a unique index.
	ErrDuplicate = errors.New("duplicate key")
)
