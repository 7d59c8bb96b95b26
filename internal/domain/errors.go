package domain

import "errors"

var (
	// ErrNotFound indicates the requested entity was not found.
	ErrNotFound = errors.New("not found")
	// ErrAlreadyExists indicates a uniqueness conflict on insert.
	ErrAlreadyExists = errors.New("already exists")
	// ErrUnauthenticated is returned when an operation requires an
	// authenticated account and the owner key is anonymous.
	ErrUnauthenticated = errors.New("unauthenticated")
	// ErrEmptyCart is returned when checkout finds no line items.
	ErrEmptyCart = errors.New("empty cart")
)
