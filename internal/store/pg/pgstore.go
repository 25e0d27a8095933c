// Package pg persists accounts, students and mark sheets in Postgres
// through database/sql over the pgx stdlib driver.
//
// Expected schema (managed outside this service):
//
//	accounts(username text primary key, password_hash text not null,
//	         role text not null, created_at timestamptz not null)
//	students(id text primary key, name text not null,
//	         roll_number text not null, created_at timestamptz not null)
//	marks(student_id text primary key references students(id),
//	      marks jsonb not null, updated_at timestamptz not null)
package pg

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	_ "github.com/jackc/pgx/v5/stdlib"

	"markbook.org/internal/auth"
	"markbook.org/internal/records"
)

const uniqueViolation = "23505"

type Store struct {
	db *sql.DB
}

var (
	_ auth.AccountStore = (*Store)(nil)
	_ records.Store     = (*Store)(nil)
)

// Open connects to Postgres with pool defaults tuned for a small service.
func Open(dsn string) (*Store, error) {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(10)
	db.SetConnMaxLifetime(30 * time.Minute)
	db.SetConnMaxIdleTime(5 * time.Minute)
	return &Store{db: db}, nil
}

// NewWithDB wraps an existing handle; tests pass a sqlmock connection.
func NewWithDB(db *sql.DB) *Store { return &Store{db: db} }

func (s *Store) Close() error { return s.db.Close() }

// DB exposes the handle for the readiness probe.
func (s *Store) DB() *sql.DB { return s.db }

func (s *Store) CreateAccount(ctx context.Context, account *auth.Account) error {
	_, err := s.db.ExecContext(ctx, `
		insert into accounts(username, password_hash, role, created_at)
		values ($1, $2, $3, $4)
	`, account.Username, account.PasswordHash, string(account.Role), account.CreatedAt)
	if isUniqueViolation(err) {
		return auth.ErrConflict
	}
	return err
}

func (s *Store) FindAccount(ctx context.Context, username string) (*auth.Account, error) {
	var (
		account auth.Account
		role    string
	)
	err := s.db.QueryRowContext(ctx, `
		select username, password_hash, role, created_at
		from accounts where username = $1
	`, username).Scan(&account.Username, &account.PasswordHash, &role, &account.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, auth.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	account.Role = auth.Role(role)
	return &account, nil
}

func (s *Store) CreateStudent(ctx context.Context, student *records.Student) error {
	if student.CreatedAt.IsZero() {
		student.CreatedAt = time.Now().UTC()
	}
	_, err := s.db.ExecContext(ctx, `
		insert into students(id, name, roll_number, created_at)
		values ($1, $2, $3, $4)
	`, student.ID, student.Name, student.RollNumber, student.CreatedAt)
	return err
}

func (s *Store) ListStudents(ctx context.Context) ([]records.Student, error) {
	rows, err := s.db.QueryContext(ctx, `
		select id, name, roll_number, created_at from students order by id
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var students []records.Student
	for rows.Next() {
		var st records.Student
		if err := rows.Scan(&st.ID, &st.Name, &st.RollNumber, &st.CreatedAt); err != nil {
			return nil, err
		}
		students = append(students, st)
	}
	return students, rows.Err()
}

func (s *Store) FindStudent(ctx context.Context, id string) (*records.Student, error) {
	var st records.Student
	err := s.db.QueryRowContext(ctx, `
		select id, name, roll_number, created_at from students where id = $1
	`, id).Scan(&st.ID, &st.Name, &st.RollNumber, &st.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, records.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &st, nil
}

func (s *Store) UpsertMarks(ctx context.Context, studentID string, marks map[string]int) error {
	payload, err := json.Marshal(marks)
	if err != nil {
		return fmt.Errorf("encode marks: %w", err)
	}
	_, err = s.db.ExecContext(ctx, `
		insert into marks(student_id, marks, updated_at)
		values ($1, $2, now())
		on conflict (student_id) do update
		set marks = excluded.marks, updated_at = now()
	`, studentID, payload)
	return err
}

func (s *Store) FindMarks(ctx context.Context, studentID string) (map[string]int, error) {
	var payload []byte
	err := s.db.QueryRowContext(ctx, `
		select marks from marks where student_id = $1
	`, studentID).Scan(&payload)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, records.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	var marks map[string]int
	if err := json.Unmarshal(payload, &marks); err != nil {
		return nil, fmt.Errorf("decode marks: %w", err)
	}
	return marks, nil
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == uniqueViolation
}
