package records

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"markbook.org/internal/auth"
	"markbook.org/internal/ids"
)

// Service exposes the protected record operations. All methods expect an
// identity in ctx placed there by a surface guard; they re-check the
// policy themselves, so a surface that forgot its guard still cannot reach
// data.
type Service struct {
	store  Store
	policy *auth.Policy
}

// NewService wires the records service to its store and the shared policy.
func NewService(store Store, policy *auth.Policy) *Service {
	return &Service{store: store, policy: policy}
}

// ListStudents returns every enrolled student.
func (s *Service) ListStudents(ctx context.Context) (students []Student, err error) {
	err = auth.Observed(ctx, auth.OpStudentsList, func(ctx context.Context) error {
		if err := auth.Authorize(ctx, s.policy, auth.OpStudentsList); err != nil {
			return err
		}
		var serr error
		students, serr = s.store.ListStudents(ctx)
		return serr
	})
	return students, err
}

// GetStudent returns one student or ErrNotFound.
func (s *Service) GetStudent(ctx context.Context, id string) (student *Student, err error) {
	err = auth.Observed(ctx, auth.OpStudentsGet, func(ctx context.Context) error {
		if err := auth.Authorize(ctx, s.policy, auth.OpStudentsGet); err != nil {
			return err
		}
		var serr error
		student, serr = s.store.FindStudent(ctx, id)
		return serr
	})
	return student, err
}

// AddStudent enrolls a student and returns the stored record.
func (s *Service) AddStudent(ctx context.Context, name, rollNumber string) (student *Student, err error) {
	err = auth.Observed(ctx, auth.OpStudentsAdd, func(ctx context.Context) error {
		if err := auth.Authorize(ctx, s.policy, auth.OpStudentsAdd); err != nil {
			return err
		}
		name = strings.TrimSpace(name)
		rollNumber = strings.TrimSpace(rollNumber)
		if name == "" || rollNumber == "" {
			return fmt.Errorf("%w: name and roll number are required", auth.ErrValidation)
		}
		created := &Student{
			ID:         ids.NewStudentID(),
			Name:       name,
			RollNumber: rollNumber,
		}
		if serr := s.store.CreateStudent(ctx, created); serr != nil {
			return fmt.Errorf("create student: %w", serr)
		}
		student = created
		return nil
	})
	return student, err
}

// Marks returns the student's mark sheet or ErrNotFound.
func (s *Service) Marks(ctx context.Context, studentID string) (marks map[string]int, err error) {
	err = auth.Observed(ctx, auth.OpMarksRead, func(ctx context.Context) error {
		if err := auth.Authorize(ctx, s.policy, auth.OpMarksRead); err != nil {
			return err
		}
		var serr error
		marks, serr = s.store.FindMarks(ctx, studentID)
		return serr
	})
	return marks, err
}

// SaveMarks records or replaces the student's mark sheet.
func (s *Service) SaveMarks(ctx context.Context, studentID string, marks map[string]int) error {
	return auth.Observed(ctx, auth.OpMarksWrite, func(ctx context.Context) error {
		if err := auth.Authorize(ctx, s.policy, auth.OpMarksWrite); err != nil {
			return err
		}
		if len(marks) == 0 {
			return fmt.Errorf("%w: marks data is required", auth.ErrValidation)
		}
		if _, serr := s.store.FindStudent(ctx, studentID); serr != nil {
			return serr
		}
		if serr := s.store.UpsertMarks(ctx, studentID, marks); serr != nil {
			return fmt.Errorf("save marks: %w", serr)
		}
		return nil
	})
}

// Overview returns every student joined with their mark sheet.
func (s *Service) Overview(ctx context.Context) (overview []StudentMarks, err error) {
	err = auth.Observed(ctx, auth.OpMarksOverview, func(ctx context.Context) error {
		if err := auth.Authorize(ctx, s.policy, auth.OpMarksOverview); err != nil {
			return err
		}
		var serr error
		overview, serr = s.collectOverview(ctx)
		return serr
	})
	return overview, err
}

func (s *Service) collectOverview(ctx context.Context) ([]StudentMarks, error) {
	students, err := s.store.ListStudents(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]StudentMarks, 0, len(students))
	for _, student := range students {
		marks, err := s.store.FindMarks(ctx, student.ID)
		if err != nil && !errors.Is(err, ErrNotFound) {
			return nil, err
		}
		out = append(out, StudentMarks{Student: student, Marks: marks})
	}
	return out, nil
}
