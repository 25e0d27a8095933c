package auth

import "errors"

var (
	// ErrUnauthenticated means no decodable identity accompanied the request.
	ErrUnauthenticated = errors.New("auth: unauthenticated")
	// ErrForbidden means the identity is valid but the role is insufficient.
	ErrForbidden = errors.New("auth: forbidden")
	// ErrInvalidToken covers every token failure mode: missing, garbled,
	// forged signature or past expiry. Callers must not distinguish them.
	ErrInvalidToken = errors.New("auth: invalid token")
	// ErrInvalidCredentials is returned for unknown usernames and wrong
	// passwords alike, so login cannot be used as a username oracle.
	ErrInvalidCredentials = errors.New("auth: invalid credentials")
	// ErrConflict means the username is already registered.
	ErrConflict = errors.New("auth: user already exists")
	// ErrValidation flags missing or malformed request fields.
	ErrValidation = errors.New("auth: invalid input")
	// ErrNotFound is returned by stores when a looked-up record is absent.
	ErrNotFound = errors.New("auth: not found")
)
