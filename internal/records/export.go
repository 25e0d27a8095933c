package records

import (
	"bytes"
	"context"
	"errors"
	"fmt"

	"github.com/xuri/excelize/v2"

	"markbook.org/internal/auth"
)

// Subject columns in the exported workbook, in sheet order. The export is
// pure formatting; subjects missing from a mark sheet render as blanks.
var exportSubjects = []string{"Math", "Physics", "Chemistry", "Biology", "English"}

// ExportStudent renders one student's mark sheet as an xlsx workbook.
// Both the student and their marks must exist.
func (s *Service) ExportStudent(ctx context.Context, studentID string) (data []byte, student *Student, err error) {
	err = auth.Observed(ctx, auth.OpMarksExport, func(ctx context.Context) error {
		if err := auth.Authorize(ctx, s.policy, auth.OpMarksExport); err != nil {
			return err
		}
		found, serr := s.store.FindStudent(ctx, studentID)
		if serr != nil {
			return serr
		}
		marks, serr := s.store.FindMarks(ctx, studentID)
		if serr != nil {
			if errors.Is(serr, ErrNotFound) {
				return fmt.Errorf("%w: no marks recorded for student", ErrNotFound)
			}
			return serr
		}
		rendered, serr := renderWorkbook("Marks", []StudentMarks{{Student: *found, Marks: marks}})
		if serr != nil {
			return fmt.Errorf("render workbook: %w", serr)
		}
		data, student = rendered, found
		return nil
	})
	if err != nil {
		return nil, nil, err
	}
	return data, student, nil
}

// ExportAll renders every student's mark sheet into a single workbook.
func (s *Service) ExportAll(ctx context.Context) (data []byte, err error) {
	err = auth.Observed(ctx, auth.OpMarksExportAll, func(ctx context.Context) error {
		if err := auth.Authorize(ctx, s.policy, auth.OpMarksExportAll); err != nil {
			return err
		}
		overview, serr := s.collectOverview(ctx)
		if serr != nil {
			return serr
		}
		rendered, serr := renderWorkbook("All Students Marks", overview)
		if serr != nil {
			return fmt.Errorf("render workbook: %w", serr)
		}
		data = rendered
		return nil
	})
	if err != nil {
		return nil, err
	}
	return data, nil
}

func renderWorkbook(sheet string, rows []StudentMarks) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	index, err := f.NewSheet(sheet)
	if err != nil {
		return nil, err
	}
	f.SetActiveSheet(index)
	if err := f.DeleteSheet("Sheet1"); err != nil {
		return nil, err
	}

	header := append([]any{"Name", "Roll Number"}, anySlice(exportSubjects)...)
	if err := f.SetSheetRow(sheet, "A1", &header); err != nil {
		return nil, err
	}
	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return nil, err
	}
	endCol, err := excelize.ColumnNumberToName(len(header))
	if err != nil {
		return nil, err
	}
	if err := f.SetCellStyle(sheet, "A1", endCol+"1", bold); err != nil {
		return nil, err
	}

	for i, row := range rows {
		cells := []any{row.Name, row.RollNumber}
		for _, subject := range exportSubjects {
			if mark, ok := row.Marks[subject]; ok {
				cells = append(cells, mark)
			} else {
				cells = append(cells, "")
			}
		}
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return nil, err
		}
		if err := f.SetSheetRow(sheet, cell, &cells); err != nil {
			return nil, err
		}
	}

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func anySlice(in []string) []any {
	out := make([]any, len(in))
	for i, v := range in {
		out[i] = v
	}
	return out
}
