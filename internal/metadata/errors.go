package metadata

import "errors"

var (
	// ErrEmptyNotification is returned when a notification carries no events.
	ErrEmptyNotification = errors.New("notification has no events")
	// ErrMalformedEvent signals an event without a container or object name, or with a bad encoding.
	ErrMalformedEvent = errors.New("malformed object event")
	// ErrMalformedPage signals a scan page that cannot be decoded or does not advance.
	ErrMalformedPage = errors.New("malformed metadata page")
)
