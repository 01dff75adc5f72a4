package tui

import "errors"

var (
	// ErrAborted signals the user aborted input (e.g., Ctrl+C).
	ErrAborted = errors.New("tui: aborted")
	// ErrFieldRejected is returned when the form does not accept a prompted
	// field name.
	ErrFieldRejected = errors.New("tui: form rejected field")
)
