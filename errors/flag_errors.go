// errors/flag_errors.go
package errors

import (
	"errors"
	"fmt"
)

var (
	ErrRemoteAuthority      = errors.New("remote authority error")
	ErrAuthorityUnreachable = errors.New("remote authority unreachable")
	ErrMalformedResponse    = errors.New("malformed authority response")
	ErrInvalidFlagContext   = errors.New("invalid feature flag context")
)

// RemoteAuthorityError is a non-2xx answer from the flag authority.
type RemoteAuthorityError struct {
	Flag       string
	StatusCode int
	Body       string
}

func (e *RemoteAuthorityError) Error() string {
	return fmt.Sprintf("API error fetching flag %q: status %d, body: %s", e.Flag, e.StatusCode, e.Body)
}

func (e *RemoteAuthorityError) Unwrap() error {
	return ErrRemoteAuthority
}

// MalformedResponseError is a 2xx answer whose body failed validation.
type MalformedResponseError struct {
	Flag string
	Body string
	Err  error
}

func (e *MalformedResponseError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("unexpected API response structure for flag %q: %v: %s", e.Flag, e.Err, e.Body)
	}
	return fmt.Sprintf("unexpected API response structure for flag %q: %s", e.Flag, e.Body)
}

func (e *MalformedResponseError) Unwrap() error {
	return ErrMalformedResponse
}
