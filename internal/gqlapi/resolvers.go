package gqlapi

import (
	"encoding/base64"
	"errors"
	"fmt"
	"math"

	"github.com/graphql-go/graphql"

	"markbook.org/internal/auth"
	"markbook.org/internal/records"
)

func studentPayload(st records.Student) map[string]interface{} {
	return map[string]interface{}{
		"id":         st.ID,
		"name":       st.Name,
		"rollNumber": st.RollNumber,
	}
}

func (a *API) resolveGetStudents(p graphql.ResolveParams) (interface{}, error) {
	students, err := a.records.ListStudents(p.Context)
	if err != nil {
		return nil, translate(err)
	}
	out := make([]map[string]interface{}, 0, len(students))
	for _, st := range students {
		out = append(out, studentPayload(st))
	}
	return out, nil
}

func (a *API) resolveGetStudentByID(p graphql.ResolveParams) (interface{}, error) {
	id, _ := p.Args["id"].(string)
	student, err := a.records.GetStudent(p.Context, id)
	if err != nil {
		// An unknown ID resolves to null, matching the schema's nullable
		// Student; denial is still an error.
		if errors.Is(err, records.ErrNotFound) {
			return nil, nil
		}
		return nil, translate(err)
	}
	return studentPayload(*student), nil
}

func (a *API) resolveGetMarks(p graphql.ResolveParams) (interface{}, error) {
	studentID, _ := p.Args["studentId"].(string)
	marks, err := a.records.Marks(p.Context, studentID)
	if err != nil {
		if errors.Is(err, records.ErrNotFound) {
			return nil, nil
		}
		return nil, translate(err)
	}
	return marks, nil
}

func (a *API) resolveAllStudentsWithMarks(p graphql.ResolveParams) (interface{}, error) {
	overview, err := a.records.Overview(p.Context)
	if err != nil {
		return nil, translate(err)
	}
	out := make([]map[string]interface{}, 0, len(overview))
	for _, row := range overview {
		payload := studentPayload(row.Student)
		if row.Marks != nil {
			payload["marks"] = row.Marks
		} else {
			payload["marks"] = nil
		}
		out = append(out, payload)
	}
	return out, nil
}

func (a *API) resolveDownloadAllMarks(p graphql.ResolveParams) (interface{}, error) {
	data, err := a.records.ExportAll(p.Context)
	if err != nil {
		return nil, translate(err)
	}
	return base64.StdEncoding.EncodeToString(data), nil
}

func (a *API) resolveRegister(p graphql.ResolveParams) (interface{}, error) {
	username, _ := p.Args["username"].(string)
	password, _ := p.Args["password"].(string)
	role, _ := p.Args["role"].(string)
	if err := a.auth.Register(p.Context, username, password, role); err != nil {
		return nil, translate(err)
	}
	return "User registered successfully", nil
}

func (a *API) resolveLogin(p graphql.ResolveParams) (interface{}, error) {
	username, _ := p.Args["username"].(string)
	password, _ := p.Args["password"].(string)
	token, _, err := a.auth.Login(p.Context, username, password)
	if err != nil {
		return nil, translate(err)
	}
	return token, nil
}

func (a *API) resolveAddStudent(p graphql.ResolveParams) (interface{}, error) {
	name, _ := p.Args["name"].(string)
	rollNumber, _ := p.Args["rollNumber"].(string)
	if _, err := a.records.AddStudent(p.Context, name, rollNumber); err != nil {
		return nil, translate(err)
	}
	return "Student added", nil
}

func (a *API) resolveAddMarks(p graphql.ResolveParams) (interface{}, error) {
	studentID, _ := p.Args["studentId"].(string)
	marks, err := coerceMarks(p.Args["marks"])
	if err != nil {
		return nil, translate(err)
	}
	if err := a.records.SaveMarks(p.Context, studentID, marks); err != nil {
		return nil, translate(err)
	}
	return "Marks saved", nil
}

func (a *API) resolveDownloadMarks(p graphql.ResolveParams) (interface{}, error) {
	studentID, _ := p.Args["studentId"].(string)
	data, _, err := a.records.ExportStudent(p.Context, studentID)
	if err != nil {
		return nil, translate(err)
	}
	return base64.StdEncoding.EncodeToString(data), nil
}

// coerceMarks normalizes the JSON scalar argument into subject -> integer
// mark. JSON numbers arrive as float64 from variables and as strings from
// inline literals.
func coerceMarks(raw interface{}) (map[string]int, error) {
	obj, ok := raw.(map[string]interface{})
	if !ok || len(obj) == 0 {
		return nil, fmt.Errorf("%w: marks data is required", auth.ErrValidation)
	}
	marks := make(map[string]int, len(obj))
	for subject, value := range obj {
		mark, ok := coerceInt(value)
		if !ok {
			return nil, fmt.Errorf("%w: mark for %q must be an integer", auth.ErrValidation, subject)
		}
		marks[subject] = mark
	}
	return marks, nil
}

func coerceInt(value interface{}) (int, bool) {
	switch v := value.(type) {
	case int:
		return v, true
	case int64:
		return int(v), true
	case float64:
		if v != math.Trunc(v) {
			return 0, false
		}
		return int(v), true
	case string:
		var n int
		if _, err := fmt.Sscanf(v, "%d", &n); err != nil {
			return 0, false
		}
		return n, true
	default:
		return 0, false
	}
}
