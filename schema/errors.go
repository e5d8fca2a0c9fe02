package schema

import "errors"

var (
	// ErrNotTerminal indicates the input or output stream is not an
	// interactive terminal. Fatal at session start.
	ErrNotTerminal = errors.New("not a terminal")
	// ErrAlreadyActive indicates terminal raw mode is already held by
	// another session in this process. Fatal at session start.
	ErrAlreadyActive = errors.New("terminal raw mode already active")
	// ErrInterrupted indicates the read ended with Ctrl-C.
	ErrInterrupted = errors.New("interrupted")
	// ErrClosed indicates the session has been shut down.
	ErrClosed = errors.New("session closed")
	// ErrInvalidPrompt indicates the prompt contains line breaks.
	ErrInvalidPrompt = errors.New("prompt must not contain line breaks")
)
