package upload

import "errors"

var (
	// ErrObjectNameTooLong signals a key longer than object stores accept.
	ErrObjectNameTooLong = errors.New("object name too long")
)
