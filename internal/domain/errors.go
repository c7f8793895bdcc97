// Package domain provides shared domain-level sentinel errors.
package domain

import "errors"

// ErrNotFound indicates the requested entity does not exist.
var ErrNotFound = errors.New("not found")

// ErrConflict indicates an overlap or duplicate that the storage layer
// rejected (double-booking, concurrent active tenancy on the same unit).
var ErrConflict = errors.New("conflict")

// ErrValidation indicates malformed input (bad dates, non-positive amounts).
var ErrValidation = errors.New("validation failed")

// ErrInvalidState indicates an illegal status transition was attempted.
var ErrInvalidState = errors.New("invalid state transition")
