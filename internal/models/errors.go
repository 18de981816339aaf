package models

import "errors"

var (
	// ErrNotFound is returned when a referenced ad does not exist.
	ErrNotFound = errors.New("not found")
	// ErrValidation wraps every rejected input; callers match it with errors.Is.
	ErrValidation = errors.New("validation failed")
)
