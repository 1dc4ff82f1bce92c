package models

import (
	"errors"
	"fmt"
)

// RemoteError is a failure reported by the remote generative-AI service.
type RemoteError struct {
	Provider   string
	StatusCode int
	Err        error
}

func (e *RemoteError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("%s: status %d: %v", e.Provider, e.StatusCode, e.Err)
	}
	return fmt.Sprintf("%s: %v", e.Provider, e.Err)
}

func (e *RemoteError) Unwrap() error { return e.Err }

// StatusCode returns the HTTP status carried by err, or 0 when none is known.
func StatusCode(err error) int {
	var remote *RemoteError
	if errors.As(err, &remote) {
		return remote.StatusCode
	}
	var coded interface{ HTTPStatus() int }
	if errors.As(err, &coded) {
		return coded.HTTPStatus()
	}
	return 0
}
