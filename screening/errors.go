package screening

import "errors"

var (
	// ErrInvalidMaxAttempts is returned when maxAttempts is <= 0
	ErrInvalidMaxAttempts = errors.New("maxAttempts must be greater than 0")

	// ErrClassifierRequired is returned when a Screener is built without a verdict classifier.
	ErrClassifierRequired = errors.New("verdict classifier is required")
)
