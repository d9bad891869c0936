// Package apperr defines the sentinel errors shared across bulletlog layers.
package apperr

import "errors"

var (
	ErrConflict     = errors.New("conflict")
	ErrOutOfRange   = errors.New("index out of range")
	ErrMalformed    = errors.New("malformed journal")
	ErrInvalidDate  = errors.New("invalid date")
	ErrInvalidEntry = errors.New("invalid entry")
)
