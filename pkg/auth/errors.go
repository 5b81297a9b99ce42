package auth

import "errors"

var (
	// ErrInvalidToken covers malformed, expired, wrongly signed, wrongly typed
	// and revoked tokens.
	ErrInvalidToken = errors.New("invalid token")

	// ErrTokenBindingMismatch means the token verified but was presented by a
	// client other than the one it was issued to.
	ErrTokenBindingMismatch = errors.New("token binding mismatch")

	// ErrMissingToken is returned by Refresh when no token was supplied.
	ErrMissingToken = errors.New("missing token")

	// ErrMissingClientIP is returned when issuing for a request without a
	// resolvable client address.
	ErrMissingClientIP = errors.New("client ip address unavailable")
)

// MismatchError is returned by Validator.Refresh when the caller does not
// match the refresh token's binding. It matches ErrTokenBindingMismatch and,
// when revocation failed, RevokeErr.
type MismatchError struct {
	Claims    *Claims
	RevokeErr error
	cause     error
}

func (e *MismatchError) Error() string {
	if e.RevokeErr != nil {
		return e.cause.Error() + "; revoke: " + e.RevokeErr.Error()
	}
	return e.cause.Error()
}

func (e *MismatchError) Unwrap() []error {
	if e.RevokeErr != nil {
		return []error{e.cause, e.RevokeErr}
	}
	return []error{e.cause}
}
