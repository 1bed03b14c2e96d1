package auth

import "errors"

// Password errors
var (
	ErrInvalidInput = errors.New("password: invalid input")
	ErrVerification = errors.New("password: stored hash cannot be verified")
)

// Token errors
var (
	ErrTokenExpired     = errors.New("token: expired")
	ErrInvalidSignature = errors.New("token: invalid signature")
	ErrMalformedToken   = errors.New("token: malformed")
	ErrEmptyIdentity    = errors.New("token: empty identity id")
	ErrSecretTooShort   = errors.New("token: signing secret must be at least 32 bytes")
	ErrInvalidTTL       = errors.New("token: ttl must be positive")
)

// Header errors
var (
	ErrMissingBearer = errors.New("auth: missing bearer token")
)
