// Package repository holds the data access layer. Sentinel errors
// defined here are shared across repositories so handlers can map
// failure modes to HTTP statuses with errors.Is.
package repository

import "errors"

// ErrForbidden is returned when the caller attempts an operation on a
// resource they do not own. Handlers translate this into 403.
var ErrForbidden = errors.New("forbidden")

// ErrConcertNotFound is returned when a concert id does not exist.
var ErrConcertNotFound = errors.New("concert not found")

// ErrUserNotFound is returned when a user id does not exist.
var ErrUserNotFound = errors.New("user not found")
