package auth

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

const defaultIssuer = "markbook"

// Claims is the decoded payload of a bearer token. Username and role are
// carried as custom claims alongside the registered set so that tokens
// minted by earlier deployments keep decoding under the same secret.
type Claims struct {
	Username string `json:"username"`
	Role     Role   `json:"role"`
	jwt.RegisteredClaims
}

// Codec signs and verifies bearer tokens with a shared HS256 secret. The
// secret and lifetime are injected at construction; decoding is pure and
// safe for concurrent use from both API surfaces.
type Codec struct {
	secret []byte
	issuer string
	ttl    time.Duration
	now    func() time.Time
}

// CodecOption configures optional Codec behavior.
type CodecOption func(*Codec)

// WithIssuer overrides the issuer claim.
func WithIssuer(issuer string) CodecOption {
	return func(c *Codec) {
		if issuer = strings.TrimSpace(issuer); issuer != "" {
			c.issuer = issuer
		}
	}
}

// WithCodecClock overrides the time source (useful for tests).
func WithCodecClock(fn func() time.Time) CodecOption {
	return func(c *Codec) {
		if fn != nil {
			c.now = fn
		}
	}
}

// NewCodec constructs a Codec. The secret must be non-empty and the ttl
// positive; there is no ambient fallback.
func NewCodec(secret string, ttl time.Duration, opts ...CodecOption) (*Codec, error) {
	if strings.TrimSpace(secret) == "" {
		return nil, errors.New("auth: signing secret is required")
	}
	if ttl <= 0 {
		return nil, errors.New("auth: token ttl must be greater than zero")
	}
	c := &Codec{
		secret: []byte(secret),
		issuer: defaultIssuer,
		ttl:    ttl,
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// TTL returns the configured token lifetime.
func (c *Codec) TTL() time.Duration { return c.ttl }

// Issue signs a token for the given identity and returns it together with
// its absolute expiry.
func (c *Codec) Issue(username string, role Role) (string, time.Time, error) {
	username = strings.TrimSpace(username)
	if username == "" {
		return "", time.Time{}, fmt.Errorf("%w: username is required", ErrValidation)
	}
	if !role.Valid() {
		return "", time.Time{}, fmt.Errorf("%w: unknown role %q", ErrValidation, role)
	}

	now := c.now().UTC()
	expiresAt := now.Add(c.ttl)
	claims := Claims{
		Username: username,
		Role:     role,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    c.issuer,
			Subject:   username,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
			ID:        uuid.NewString(),
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(c.secret)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("sign token: %w", err)
	}
	return signed, expiresAt, nil
}

// Decode verifies the signature before anything else, then expiry, and
// returns the embedded claims. Every failure mode collapses into
// ErrInvalidToken at this boundary; callers may log the underlying cause
// server-side but must not expose it.
func (c *Codec) Decode(token string) (*Claims, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return nil, ErrInvalidToken
	}

	parsed, err := jwt.ParseWithClaims(token, &Claims{}, func(t *jwt.Token) (any, error) {
		if t.Method != jwt.SigningMethodHS256 {
			return nil, ErrInvalidToken
		}
		return c.secret, nil
	}, jwt.WithTimeFunc(c.now), jwt.WithExpirationRequired())
	if err != nil {
		return nil, ErrInvalidToken
	}
	claims, ok := parsed.Claims.(*Claims)
	if !ok || !parsed.Valid {
		return nil, ErrInvalidToken
	}
	if strings.TrimSpace(claims.Username) == "" || !claims.Role.Valid() {
		return nil, ErrInvalidToken
	}
	return claims, nil
}
