package httpapi

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"golang.org/x/crypto/bcrypt"

	"markbook.org/internal/auth"
	"markbook.org/internal/records"
)

const testSecret = "httpapi-test-secret"

type memAccounts struct {
	mu       sync.Mutex
	accounts map[string]auth.Account
}

func (m *memAccounts) CreateAccount(_ context.Context, account *auth.Account) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.accounts == nil {
		m.accounts = make(map[string]auth.Account)
	}
	if _, ok := m.accounts[account.Username]; ok {
		return auth.ErrConflict
	}
	m.accounts[account.Username] = *account
	return nil
}

func (m *memAccounts) FindAccount(_ context.Context, username string) (*auth.Account, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	account, ok := m.accounts[username]
	if !ok {
		return nil, auth.ErrNotFound
	}
	return &account, nil
}

type memRecords struct {
	mu       sync.Mutex
	students map[string]records.Student
	order    []string
	marks    map[string]map[string]int
}

func newMemRecords() *memRecords {
	return &memRecords{
		students: make(map[string]records.Student),
		marks:    make(map[string]map[string]int),
	}
}

func (m *memRecords) CreateStudent(_ context.Context, student *records.Student) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.students[student.ID] = *student
	m.order = append(m.order, student.ID)
	return nil
}

func (m *memRecords) ListStudents(context.Context) ([]records.Student, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]records.Student, 0, len(m.order))
	for _, id := range m.order {
		out = append(out, m.students[id])
	}
	return out, nil
}

func (m *memRecords) FindStudent(_ context.Context, id string) (*records.Student, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	student, ok := m.students[id]
	if !ok {
		return nil, records.ErrNotFound
	}
	return &student, nil
}

func (m *memRecords) UpsertMarks(_ context.Context, studentID string, marks map[string]int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	copied := make(map[string]int, len(marks))
	for k, v := range marks {
		copied[k] = v
	}
	m.marks[studentID] = copied
	return nil
}

func (m *memRecords) FindMarks(_ context.Context, studentID string) (map[string]int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	marks, ok := m.marks[studentID]
	if !ok {
		return nil, records.ErrNotFound
	}
	return marks, nil
}

type testEnv struct {
	handler http.Handler
	codec   *auth.Codec
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	codec, err := auth.NewCodec(testSecret, time.Hour)
	if err != nil {
		t.Fatalf("NewCodec: %v", err)
	}
	policy := auth.NewPolicy()
	authSvc := auth.NewService(&memAccounts{}, codec, auth.NewHasher(bcrypt.MinCost))
	recordsSvc := records.NewService(newMemRecords(), policy)
	api := New(authSvc, recordsSvc, policy, nil, ReadyProbe{}, "test")
	return &testEnv{handler: api.Handler(), codec: codec}
}

// do runs one request through the full middleware chain and decodes the
// JSON response into out when non-nil.
func (e *testEnv) do(t *testing.T, method, path, token string, body any, out any) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal body: %v", err)
		}
		reader = bytes.NewReader(payload)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	e.handler.ServeHTTP(rec, req)
	if out != nil && rec.Body.Len() > 0 {
		if err := json.Unmarshal(rec.Body.Bytes(), out); err != nil {
			t.Fatalf("decode response %q: %v", rec.Body.String(), err)
		}
	}
	return rec
}

func (e *testEnv) registerAndLogin(t *testing.T, username, password, role string) string {
	t.Helper()
	rec := e.do(t, http.MethodPost, "/api/auth/register", "", map[string]string{
		"username": username, "password": password, "role": role,
	}, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("register %s: status %d body %s", username, rec.Code, rec.Body.String())
	}
	var resp loginResponse
	rec = e.do(t, http.MethodPost, "/api/auth/login", "", map[string]string{
		"username": username, "password": password,
	}, &resp)
	if rec.Code != http.StatusOK {
		t.Fatalf("login %s: status %d body %s", username, rec.Code, rec.Body.String())
	}
	if resp.Token == "" {
		t.Fatalf("login %s: empty token", username)
	}
	return resp.Token
}
