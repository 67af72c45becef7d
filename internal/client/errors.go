package client

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/wolfeidau/recruitify/internal/auth"
)

var (
	// ErrFetch matches every provider failure, see FetchError.
	ErrFetch = errors.New("fetch failed")

	// ErrMalformedResponse is returned when a response body cannot be decoded.
	ErrMalformedResponse = errors.New("malformed response")
)

// FetchError describes a failed provider request: a transport error, a non-2xx
// status or a body that could not be decoded.
type FetchError struct {
	Op         string
	StatusCode int // zero when no response was received
	Err        error
}

func (e *FetchError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("%s: status %d: %v", e.Op, e.StatusCode, e.Err)
	}
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *FetchError) Unwrap() error {
	return e.Err
}

// Is makes every FetchError match ErrFetch.
func (e *FetchError) Is(target error) bool {
	return target == ErrFetch
}

// Unauthorized returns true when the failure is due to missing or rejected credentials.
func (e *FetchError) Unauthorized() bool {
	switch e.StatusCode {
	case http.StatusUnauthorized, http.StatusForbidden:
		return true
	}
	return errors.Is(e.Err, auth.ErrNotLoggedIn) || errors.Is(e.Err, auth.ErrSessionExpired)
}

// AsFetchError returns the FetchError in err's chain, if any.
func AsFetchError(err error) (*FetchError, bool) {
	var ferr *FetchError
	if errors.As(err, &ferr) {
		return ferr, true
	}
	return nil, false
}

func retryableStatus(code int) bool {
	return code == http.StatusTooManyRequests || code >= 500
}
