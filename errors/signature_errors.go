// errors/signature_errors.go
package errors

import "errors"

var (
	ErrUnauthorized = errors.New("unauthorized")
)

// MissingSignatureError is returned for every reason a request fails
// authentication. Reason is kept for logs and audit; Error() never
// exposes it.
type MissingSignatureError struct {
	Reason string
}

func NewMissingSignature(reason string) *MissingSignatureError {
	return &MissingSignatureError{Reason: reason}
}

func (e *MissingSignatureError) Error() string {
	return "missing signature"
}

func (e *MissingSignatureError) Unwrap() error {
	return ErrUnauthorized
}

// IsMissingSignature reports whether err is an authentication rejection.
func IsMissingSignature(err error) bool {
	var target *MissingSignatureError
	return errors.As(err, &target)
}

// RejectionReason returns the internal reason carried by a
// MissingSignatureError, or "" for any other error.
func RejectionReason(err error) string {
	var target *MissingSignatureError
	if errors.As(err, &target) {
		return target.Reason
	}
	return ""
}
