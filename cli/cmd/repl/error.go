package repl

import "errors"

var (
	// ErrOutOfBounds is returned for a history index with no entry.
	ErrOutOfBounds = errors.New("history index out of range")
	// ErrEditDeclined ends the session when a script that fails to parse
	// is not edited again.
	ErrEditDeclined = errors.New("edit declined")
)
