package auth

import (
	"context"
	"time"
)

// Account is a stored credential record. It is created by registration and
// never mutated afterwards.
type Account struct {
	Username     string
	PasswordHash string
	Role         Role
	CreatedAt    time.Time
}

// AccountStore describes the persistence operations the credential
// lifecycle needs. Username is the unique key.
type AccountStore interface {
	// CreateAccount inserts the account, returning ErrConflict if the
	// username is already taken.
	CreateAccount(ctx context.Context, account *Account) error
	// FindAccount returns the account or ErrNotFound.
	FindAccount(ctx context.Context, username string) (*Account, error)
}
