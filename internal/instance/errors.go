package instance

import "errors"

// Sentinel errors, wrapped with %w at call sites per SPEC_FULL.md §2's
// ambient error-handling convention.
var (
	// ErrBindFailed is returned when the instance's private UDP socket
	// could not be opened (spec.md §7 "Resource exhaustion").
	ErrBindFailed = errors.New("instance: failed to bind game socket")

	// ErrAlreadyRunning names the condition of an instance whose tick loop
	// is already active. Instance.Run does not check for it or return it.
	ErrAlreadyRunning = errors.New("instance: already running")
)
