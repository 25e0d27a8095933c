package auth

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"
)

// memAccounts is an in-memory AccountStore for tests.
type memAccounts struct {
	mu       sync.Mutex
	accounts map[string]*Account
}

func newMemAccounts() *memAccounts {
	return &memAccounts{accounts: make(map[string]*Account)}
}

func (m *memAccounts) CreateAccount(_ context.Context, account *Account) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.accounts[account.Username]; ok {
		return ErrConflict
	}
	copied := *account
	m.accounts[account.Username] = &copied
	return nil
}

func (m *memAccounts) FindAccount(_ context.Context, username string) (*Account, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	account, ok := m.accounts[username]
	if !ok {
		return nil, ErrNotFound
	}
	copied := *account
	return &copied, nil
}

func newTestService(t *testing.T) (*Service, *memAccounts) {
	t.Helper()
	store := newMemAccounts()
	codec := newTestCodec(t)
	return NewService(store, codec, NewHasher(4)), store
}

func TestRegisterThenLogin(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	if err := svc.Register(ctx, "alice", "pw1", "admin"); err != nil {
		t.Fatalf("Register: %v", err)
	}

	token, expiresAt, err := svc.Login(ctx, "alice", "pw1")
	if err != nil {
		t.Fatalf("Login: %v", err)
	}
	if time.Until(expiresAt) <= 0 {
		t.Fatalf("expected future expiry, got %v", expiresAt)
	}

	claims, err := svc.Codec().Decode(token)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if claims.Username != "alice" || claims.Role != RoleAdmin {
		t.Fatalf("unexpected claims: %+v", claims)
	}
}

func TestRegisterDuplicatePreservesOriginalHash(t *testing.T) {
	svc, store := newTestService(t)
	ctx := context.Background()

	if err := svc.Register(ctx, "alice", "pw1", "admin"); err != nil {
		t.Fatalf("Register: %v", err)
	}
	original, err := store.FindAccount(ctx, "alice")
	if err != nil {
		t.Fatalf("FindAccount: %v", err)
	}

	if err := svc.Register(ctx, "alice", "other-pw", "teacher"); !errors.Is(err, ErrConflict) {
		t.Fatalf("expected ErrConflict, got %v", err)
	}

	after, err := store.FindAccount(ctx, "alice")
	if err != nil {
		t.Fatalf("FindAccount: %v", err)
	}
	if after.PasswordHash != original.PasswordHash {
		t.Fatal("stored hash was overwritten by the failed registration")
	}
	if after.Role != RoleAdmin {
		t.Fatalf("stored role changed: %s", after.Role)
	}
}

func TestRegisterValidation(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	cases := []struct {
		name             string
		user, pass, role string
	}{
		{"missing username", "", "pw", "admin"},
		{"missing password", "alice", "", "admin"},
		{"unknown role", "alice", "pw", "principal"},
	}
	for _, tc := range cases {
		if err := svc.Register(ctx, tc.user, tc.pass, tc.role); !errors.Is(err, ErrValidation) {
			t.Fatalf("%s: expected ErrValidation, got %v", tc.name, err)
		}
	}
}

func TestLoginFailuresAreIndistinguishable(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	if err := svc.Register(ctx, "realuser", "rightpass", "teacher"); err != nil {
		t.Fatalf("Register: %v", err)
	}

	_, _, unknownErr := svc.Login(ctx, "nouser", "anything")
	_, _, wrongPassErr := svc.Login(ctx, "realuser", "wrongpass")

	if !errors.Is(unknownErr, ErrInvalidCredentials) {
		t.Fatalf("unknown user: expected ErrInvalidCredentials, got %v", unknownErr)
	}
	if !errors.Is(wrongPassErr, ErrInvalidCredentials) {
		t.Fatalf("wrong password: expected ErrInvalidCredentials, got %v", wrongPassErr)
	}
	if unknownErr.Error() != wrongPassErr.Error() {
		t.Fatalf("failure modes are distinguishable: %q vs %q", unknownErr, wrongPassErr)
	}
}

func TestLogoutAlwaysSucceeds(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	// Garbage and missing tokens are not errors.
	if id := svc.Logout(ctx, "garbage"); id.Username != "" {
		t.Fatalf("unexpected identity from garbage token: %+v", id)
	}
	if id := svc.Logout(ctx, ""); id.Username != "" {
		t.Fatalf("unexpected identity from empty token: %+v", id)
	}

	if err := svc.Register(ctx, "alice", "pw1", "admin"); err != nil {
		t.Fatalf("Register: %v", err)
	}
	token, _, err := svc.Login(ctx, "alice", "pw1")
	if err != nil {
		t.Fatalf("Login: %v", err)
	}
	if id := svc.Logout(ctx, token); id.Username != "alice" || id.Role != RoleAdmin {
		t.Fatalf("expected identity from valid token, got %+v", id)
	}
}
