package ladder

import (
	"errors"
	"fmt"
)

// Sentinel errors for ladder retrieval.
var (
	ErrToken   = errors.New("ladder: token exchange failed")
	ErrRequest = errors.New("ladder: request failed")
	ErrDecode  = errors.New("ladder: decode response")
	ErrNoAPI   = errors.New("ladder: nil api")
)

// APIError is a non-200 answer from the ladder service.
type APIError struct {
	StatusCode int
	Path       string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("ladder api error %d: %s", e.StatusCode, e.Path)
}
