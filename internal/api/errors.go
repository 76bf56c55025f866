package api

import (
	"errors"
	"fmt"
	"net/http"
)

var (
	// ErrNoSession is returned by authenticated calls when nobody is signed in.
	ErrNoSession = errors.New("no signed-in user")

	// ErrInvalidPayload indicates a response body that is not a valid envelope.
	ErrInvalidPayload = errors.New("invalid response payload")
)

// FetchError describes a failed API call. Status is zero when no response
// was received.
type FetchError struct {
	Op     string
	URL    string
	Status int
	Err    error
}

func (e *FetchError) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("%s %s: status %d: %v", e.Op, e.URL, e.Status, e.Err)
	}
	return fmt.Sprintf("%s %s: %v", e.Op, e.URL, e.Err)
}

func (e *FetchError) Unwrap() error { return e.Err }

// IsUnauthorized reports whether err is a 401 or 403 response.
func IsUnauthorized(err error) bool {
	var fe *FetchError
	if !errors.As(err, &fe) {
		return false
	}
	return fe.Status == http.StatusUnauthorized || fe.Status == http.StatusForbidden
}

// StatusOf returns the HTTP status carried by err, or 0.
func StatusOf(err error) int {
	var fe *FetchError
	if errors.As(err, &fe) {
		return fe.Status
	}
	return 0
}
