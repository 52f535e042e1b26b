package ocrloc

import "errors"

var (
	// ErrImageUnreadable is returned when an image file cannot be read or
	// its dimensions cannot be determined from the header.
	ErrImageUnreadable = errors.New("ocrloc: image unreadable")

	// ErrModelRequestFailed is returned when the vision model request
	// fails after all retries.
	ErrModelRequestFailed = errors.New("ocrloc: model request failed")

	// ErrInvalidConfig is returned for invalid configuration values.
	ErrInvalidConfig = errors.New("ocrloc: invalid configuration")
)
