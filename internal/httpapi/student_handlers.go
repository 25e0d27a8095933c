package httpapi

import (
	"net/http"

	"markbook.org/internal/auth"
)

type addStudentRequest struct {
	Name       string `json:"name"`
	RollNumber string `json:"rollNumber"`
}

type studentResponse struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	RollNumber string `json:"rollNumber"`
}

func (a *API) handleStudents(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		a.listStudents(w, r)
	case http.MethodPost:
		a.addStudent(w, r)
	default:
		methodNotAllowed(w, r, http.MethodGet, http.MethodPost)
	}
}

func (a *API) listStudents(w http.ResponseWriter, r *http.Request) {
	if !a.requireOperation(w, r, auth.OpStudentsList) {
		return
	}
	students, err := a.records.ListStudents(r.Context())
	if err != nil {
		handleDomainError(w, r, err)
		return
	}
	out := make([]studentResponse, 0, len(students))
	for _, st := range students {
		out = append(out, studentResponse{ID: st.ID, Name: st.Name, RollNumber: st.RollNumber})
	}
	writeJSON(w, http.StatusOK, out)
}

func (a *API) addStudent(w http.ResponseWriter, r *http.Request) {
	if !a.requireOperation(w, r, auth.OpStudentsAdd) {
		return
	}
	var req addStudentRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, http.StatusBadRequest, "validation", err.Error())
		return
	}
	student, err := a.records.AddStudent(r.Context(), req.Name, req.RollNumber)
	if err != nil {
		handleDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{
		"message": "Student added",
		"id":      student.ID,
	})
}
