package client

import (
	"errors"
	"fmt"
	"net/http"
)

// TransportError is returned for every failed call: a non-2xx response or
// a network failure.
type TransportError struct {
	// Op is the request, e.g. "PATCH /shoppingItems/42".
	Op string
	// StatusCode is 0 when no response was received.
	StatusCode int
	// Message is the human-readable text for the operation,
	// e.g. "failed to create shopping item".
	Message string
	Err     error
}

func (e *TransportError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("%s: %s: status %d: %v", e.Message, e.Op, e.StatusCode, e.Err)
	}
	return fmt.Sprintf("%s: %s: %v", e.Message, e.Op, e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// StatusCode returns the HTTP status carried by err, or 0.
func StatusCode(err error) int {
	var te *TransportError
	if errors.As(err, &te) {
		return te.StatusCode
	}
	return 0
}

// IsNotFound reports whether err is a 404 from the backend.
func IsNotFound(err error) bool {
	return StatusCode(err) == http.StatusNotFound
}

// IsConflict reports whether err is a 409 from the backend.
func IsConflict(err error) bool {
	return StatusCode(err) == http.StatusConflict
}
