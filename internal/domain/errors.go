package domain

import "errors"

var (
	// ErrNoActiveUser is returned by operations that need a logged-in user.
	ErrNoActiveUser = errors.New("no active user")

	// ErrEmailRequired is returned when logging in without an email.
	ErrEmailRequired = errors.New("email is required")

	// ErrNotFound is returned when a record ID does not exist in the active state.
	ErrNotFound = errors.New("record not found")
)
