package item

import "errors"

var (
	// ErrInvalidInput indicates invalid item input.
	ErrInvalidInput = errors.New("invalid item input")
	// ErrConflict indicates the item changed since the caller read it.
	ErrConflict = errors.New("item was modified concurrently")
)
