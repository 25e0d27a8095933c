package httpapi

import (
	"fmt"
	"net/http"
	"strings"

	"markbook.org/internal/auth"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// handleMarks dispatches /api/marks/{studentID} and
// /api/marks/{studentID}/download.
func (a *API) handleMarks(w http.ResponseWriter, r *http.Request) {
	rest := strings.Trim(strings.TrimPrefix(r.URL.Path, "/api/marks/"), "/")
	if rest == "" {
		writeError(w, r, http.StatusNotFound, "not_found", "resource not found")
		return
	}
	parts := strings.Split(rest, "/")
	studentID := parts[0]

	switch {
	case len(parts) == 1 && r.Method == http.MethodGet:
		a.getMarks(w, r, studentID)
	case len(parts) == 1 && r.Method == http.MethodPost:
		a.saveMarks(w, r, studentID)
	case len(parts) == 2 && parts[1] == "download":
		if r.Method != http.MethodGet {
			methodNotAllowed(w, r, http.MethodGet)
			return
		}
		a.downloadMarks(w, r, studentID)
	case len(parts) == 1:
		methodNotAllowed(w, r, http.MethodGet, http.MethodPost)
	default:
		writeError(w, r, http.StatusNotFound, "not_found", "resource not found")
	}
}

func (a *API) getMarks(w http.ResponseWriter, r *http.Request, studentID string) {
	if !a.requireOperation(w, r, auth.OpMarksRead) {
		return
	}
	marks, err := a.records.Marks(r.Context(), studentID)
	if err != nil {
		handleDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, marks)
}

func (a *API) saveMarks(w http.ResponseWriter, r *http.Request, studentID string) {
	if !a.requireOperation(w, r, auth.OpMarksWrite) {
		return
	}
	var marks map[string]int
	if err := decodeJSON(w, r, &marks); err != nil {
		writeError(w, r, http.StatusBadRequest, "validation", err.Error())
		return
	}
	if err := a.records.SaveMarks(r.Context(), studentID, marks); err != nil {
		handleDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"message": "Marks saved successfully"})
}

func (a *API) downloadMarks(w http.ResponseWriter, r *http.Request, studentID string) {
	if !a.requireOperation(w, r, auth.OpMarksExport) {
		return
	}
	data, student, err := a.records.ExportStudent(r.Context(), studentID)
	if err != nil {
		handleDomainError(w, r, err)
		return
	}
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%s_marks.xlsx", student.Name))
	w.Header().Set("Content-Type", xlsxContentType)
	_, _ = w.Write(data)
}
