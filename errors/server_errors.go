// errors/server_errors.go
package errors

import "errors"

var (
	ErrInternalServer   = errors.New("internal server error")
	ErrInvalidInput     = errors.New("invalid input")
	ErrRateLimited      = errors.New("rate limit exceeded")
	ErrCacheUnavailable = errors.New("cache unavailable")
)
