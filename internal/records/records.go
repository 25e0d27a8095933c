// Package records implements the student/marks domain: listing and adding
// students, reading and writing mark sheets, and spreadsheet export. Every
// operation authorizes the caller against the shared policy table and runs
// inside the observability wrapper, so both API surfaces get identical
// enforcement and telemetry.
package records

import (
	"context"
	"errors"
	"time"
)

// ErrNotFound is returned when a referenced student or mark sheet is absent.
var ErrNotFound = errors.New("records: not found")

// Student is one enrolled student. ID is a ULID assigned at creation.
type Student struct {
	ID         string
	Name       string
	RollNumber string
	CreatedAt  time.Time
}

// StudentMarks pairs a student with their mark sheet; Marks is nil when no
// sheet has been recorded yet.
type StudentMarks struct {
	Student
	Marks map[string]int
}

// Store describes the persistence the records service needs: simple
// key/field lookups, no querying beyond that.
type Store interface {
	CreateStudent(ctx context.Context, student *Student) error
	ListStudents(ctx context.Context) ([]Student, error)
	// FindStudent returns ErrNotFound when the ID is unknown.
	FindStudent(ctx context.Context, id string) (*Student, error)
	// UpsertMarks replaces the student's mark sheet, creating it if absent.
	UpsertMarks(ctx context.Context, studentID string, marks map[string]int) error
	// FindMarks returns ErrNotFound when no sheet exists for the student.
	FindMarks(ctx context.Context, studentID string) (map[string]int, error)
}
