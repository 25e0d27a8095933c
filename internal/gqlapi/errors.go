package gqlapi

import (
	"errors"

	"markbook.org/internal/auth"
	"markbook.org/internal/records"
)

// opError carries a stable error kind into the GraphQL error extensions,
// so clients can branch on "unauthenticated" vs "forbidden" without
// parsing messages.
type opError struct {
	kind string
	msg  string
}

func (e *opError) Error() string { return e.msg }

func (e *opError) Extensions() map[string]interface{} {
	return map[string]interface{}{"kind": e.kind}
}

// translate maps the service error taxonomy onto wire errors. Everything
// unrecognized is reported as internal without detail.
func translate(err error) error {
	switch {
	case errors.Is(err, auth.ErrUnauthenticated), errors.Is(err, auth.ErrInvalidToken):
		return &opError{kind: "unauthenticated", msg: "invalid or missing credential"}
	case errors.Is(err, auth.ErrForbidden):
		return &opError{kind: "forbidden", msg: "access denied"}
	case errors.Is(err, auth.ErrConflict):
		return &opError{kind: "conflict", msg: "user already exists"}
	case errors.Is(err, auth.ErrInvalidCredentials):
		return &opError{kind: "invalid_credentials", msg: "invalid credentials"}
	case errors.Is(err, auth.ErrValidation):
		return &opError{kind: "validation", msg: err.Error()}
	case errors.Is(err, records.ErrNotFound), errors.Is(err, auth.ErrNotFound):
		return &opError{kind: "not_found", msg: "resource not found"}
	default:
		return &opError{kind: "internal", msg: "internal error"}
	}
}
