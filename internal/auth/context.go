package auth

import "context"

// Identity is the authenticated caller attached to a request context by a
// surface guard. It is immutable; downstream code reads it, never edits it.
type Identity struct {
	Username string
	Role     Role
}

type identityContextKey struct{}

// ContextWithIdentity attaches the authenticated identity to the context.
func ContextWithIdentity(ctx context.Context, id Identity) context.Context {
	return context.WithValue(ctx, identityContextKey{}, id)
}

// IdentityFromContext extracts the authenticated identity, if any.
func IdentityFromContext(ctx context.Context) (Identity, bool) {
	if ctx == nil {
		return Identity{}, false
	}
	id, ok := ctx.Value(identityContextKey{}).(Identity)
	if !ok || id.Username == "" {
		return Identity{}, false
	}
	return id, true
}

// Authorize checks the caller in ctx against the policy for op: absence of
// an identity is ErrUnauthenticated, an insufficient role ErrForbidden.
// Both surfaces funnel through this one check.
func Authorize(ctx context.Context, p *Policy, op Operation) error {
	id, ok := IdentityFromContext(ctx)
	if !ok {
		return ErrUnauthenticated
	}
	if !p.Allows(op, id.Role) {
		return ErrForbidden
	}
	return nil
}
