package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"markbook.org/internal/obs"
)

// Service implements the credential lifecycle: register, login, logout.
// It owns no mutable state beyond its collaborators and is safe for
// concurrent use.
type Service struct {
	accounts AccountStore
	codec    *Codec
	hasher   Hasher
	now      func() time.Time
}

// ServiceOption configures Service behavior.
type ServiceOption func(*Service)

// WithClock overrides the time source (useful for tests).
func WithClock(fn func() time.Time) ServiceOption {
	return func(s *Service) {
		if fn != nil {
			s.now = fn
		}
	}
}

// NewService constructs the credential lifecycle service.
func NewService(accounts AccountStore, codec *Codec, hasher Hasher, opts ...ServiceOption) *Service {
	svc := &Service{
		accounts: accounts,
		codec:    codec,
		hasher:   hasher,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(svc)
	}
	return svc
}

// Codec exposes the token codec shared with the surface guards.
func (s *Service) Codec() *Codec { return s.codec }

// Register creates an account. Registration is open: no prior identity is
// required and the caller picks the role, matching the source system.
// A taken username yields ErrConflict and the stored hash is never
// overwritten.
func (s *Service) Register(ctx context.Context, username, password, role string) error {
	return Observed(ctx, OpRegister, func(ctx context.Context) error {
		username = strings.TrimSpace(username)
		if username == "" || password == "" {
			return fmt.Errorf("%w: all fields are required", ErrValidation)
		}
		parsed, err := ParseRole(role)
		if err != nil {
			return err
		}

		if _, err := s.accounts.FindAccount(ctx, username); err == nil {
			return ErrConflict
		} else if !errors.Is(err, ErrNotFound) {
			return fmt.Errorf("lookup account: %w", err)
		}

		hash, err := s.hasher.Hash(password)
		if err != nil {
			return fmt.Errorf("hash password: %w", err)
		}

		account := &Account{
			Username:     username,
			PasswordHash: hash,
			Role:         parsed,
			CreatedAt:    s.now().UTC(),
		}
		if err := s.accounts.CreateAccount(ctx, account); err != nil {
			// The store races the existence check; a concurrent insert
			// surfaces as the same conflict.
			if errors.Is(err, ErrConflict) {
				return ErrConflict
			}
			return fmt.Errorf("create account: %w", err)
		}
		return nil
	})
}

// Login verifies credentials and issues a bearer token. Unknown usernames
// and wrong passwords are indistinguishable to the caller.
func (s *Service) Login(ctx context.Context, username, password string) (token string, expiresAt time.Time, err error) {
	err = Observed(ctx, OpLogin, func(ctx context.Context) error {
		username = strings.TrimSpace(username)
		if username == "" || password == "" {
			return fmt.Errorf("%w: username and password are required", ErrValidation)
		}

		account, lookupErr := s.accounts.FindAccount(ctx, username)
		if lookupErr != nil {
			if errors.Is(lookupErr, ErrNotFound) {
				obs.RecordLoginAttempt("failed", username)
				return ErrInvalidCredentials
			}
			return fmt.Errorf("lookup account: %w", lookupErr)
		}
		if verifyErr := s.hasher.Verify(account.PasswordHash, password); verifyErr != nil {
			obs.RecordLoginAttempt("failed", username)
			return ErrInvalidCredentials
		}

		signed, exp, issueErr := s.codec.Issue(account.Username, account.Role)
		if issueErr != nil {
			return fmt.Errorf("issue token: %w", issueErr)
		}

		obs.RecordLoginAttempt("success", username)
		token, expiresAt = signed, exp
		return nil
	})
	if err != nil {
		return "", time.Time{}, err
	}
	return token, expiresAt, nil
}

// Logout is best-effort: tokens are stateless and simply expire, so there
// is no server-side session to invalidate. A present token is decoded for
// logging only; decode failures are not errors.
func (s *Service) Logout(ctx context.Context, token string) Identity {
	var identity Identity
	_ = Observed(ctx, OpLogout, func(ctx context.Context) error {
		if claims, err := s.codec.Decode(token); err == nil {
			identity = Identity{Username: claims.Username, Role: claims.Role}
		}
		return nil
	})
	return identity
}
