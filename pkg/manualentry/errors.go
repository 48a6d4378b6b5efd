package manualentry

import "errors"

var (
	// ErrAborted signals the user aborted input (e.g., Ctrl+C).
	ErrAborted = errors.New("manualentry: aborted")
	// ErrUnsupportedFormat is returned for proposal files that are neither
	// YAML nor JSON.
	ErrUnsupportedFormat = errors.New("manualentry: unsupported file format")
)
