package apperrors

import (
	"errors"
)

var (
	ErrUserAlreadyExists = errors.New("user already exists")
	ErrUserNotFound      = errors.New("user not found")
	ErrUserDisabled      = errors.New("user account is disabled")

	// Token rejection reasons. Kept distinct so a future revocation feature
	// can branch on them; every user-facing boundary collapses them to one
	// generic "invalid or expired token" outcome.
	ErrTokenMalformed        = errors.New("token is malformed")
	ErrTokenSignatureInvalid = errors.New("token signature is invalid")
	ErrTokenExpired          = errors.New("token is expired")
	ErrTokenWrongType        = errors.New("token type mismatch")

	ErrRefreshTokenNotFound = errors.New("refresh token not found")

	ErrInvalidEmail = errors.New("email format is invalid")
	ErrWeakPassword = errors.New("password must be at least 8 characters and contain uppercase, lowercase and digit")
	ErrUnknownRole  = errors.New("unknown user role")
)

// IsTokenInvalid reports whether err is any of the token rejection reasons
func IsTokenInvalid(err error) bool {
	return errors.Is(err, ErrTokenMalformed) ||
		errors.Is(err, ErrTokenSignatureInvalid) ||
		errors.Is(err, ErrTokenExpired) ||
		errors.Is(err, ErrTokenWrongType)
}
