package repository

import "errors"

var (
	// ErrNotFound is returned when a session does not exist or has expired.
	ErrNotFound = errors.New("session not found")

	// ErrRevisionConflict is returned when a save loses the race against a
	// concurrent update of the same session.
	ErrRevisionConflict = errors.New("session revision conflict")
)
