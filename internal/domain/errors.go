package domain

import "errors"

// Error categories. Adapters wrap the underlying cause with one of these so
// callers can classify failures with errors.Is.
var (
	// ErrConfig is returned when the configuration cannot be loaded or is invalid
	ErrConfig = errors.New("configuration error")

	// ErrConnection is returned when the initial link to the server cannot be established
	ErrConnection = errors.New("connection error")

	// ErrQuery is returned when a status or song query fails
	ErrQuery = errors.New("query error")

	// ErrResolution is returned when snapshot data cannot be turned into text
	ErrResolution = errors.New("resolution error")

	// ErrDisplay is returned when the notification could not be shown
	ErrDisplay = errors.New("display error")

	// ErrStreamTerminated is returned when the change event stream breaks or closes
	ErrStreamTerminated = errors.New("event stream terminated")
)

// IsFatal reports whether err must end the process.
// Query, resolution and display errors only affect a single cycle.
func IsFatal(err error) bool {
	return errors.Is(err, ErrConfig) ||
		errors.Is(err, ErrConnection) ||
		errors.Is(err, ErrStreamTerminated)
}
