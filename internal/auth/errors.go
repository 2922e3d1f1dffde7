package auth

import "errors"

var (
	// ErrInvalidCredentials covers both an unknown login and a wrong password.
	ErrInvalidCredentials = errors.New("invalid login or password")

	// ErrMissingToken indicates no Authorization header was presented.
	ErrMissingToken = errors.New("missing bearer token")

	// ErrMalformedToken indicates the header or token could not be parsed.
	ErrMalformedToken = errors.New("malformed bearer token")

	// ErrInvalidSignature indicates the token was not signed with our secret.
	ErrInvalidSignature = errors.New("token signature is invalid")

	// ErrTokenExpired indicates the token's exp claim has passed.
	ErrTokenExpired = errors.New("token has expired")

	// ErrInvalidClaims indicates a well-signed token with unacceptable claims
	// (wrong issuer, not yet valid, missing subject).
	ErrInvalidClaims = errors.New("token claims are invalid")
)
