package httpapi

import (
	"bytes"
	"net/http"
	"strings"
	"testing"
)

func TestRegisterLoginLogoutFlow(t *testing.T) {
	env := newTestEnv(t)

	var regBody map[string]any
	rec := env.do(t, http.MethodPost, "/api/auth/register", "", map[string]string{
		"username": "alice", "password": "pw12345", "role": "admin",
	}, &regBody)
	if rec.Code != http.StatusOK {
		t.Fatalf("register: status %d body %s", rec.Code, rec.Body.String())
	}
	if regBody["message"] != "User registered successfully" {
		t.Fatalf("unexpected register message: %v", regBody["message"])
	}

	// Duplicate username answers 400 with a conflict kind.
	var dupBody map[string]any
	rec = env.do(t, http.MethodPost, "/api/auth/register", "", map[string]string{
		"username": "alice", "password": "other", "role": "teacher",
	}, &dupBody)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("duplicate register: status %d, want 400", rec.Code)
	}
	if dupBody["kind"] != "conflict" {
		t.Fatalf("duplicate register kind = %v, want conflict", dupBody["kind"])
	}

	var login loginResponse
	rec = env.do(t, http.MethodPost, "/api/auth/login", "", map[string]string{
		"username": "alice", "password": "pw12345",
	}, &login)
	if rec.Code != http.StatusOK || login.Token == "" {
		t.Fatalf("login: status %d body %s", rec.Code, rec.Body.String())
	}
	claims, err := env.codec.Decode(login.Token)
	if err != nil {
		t.Fatalf("decode issued token: %v", err)
	}
	if claims.Username != "alice" || string(claims.Role) != "admin" {
		t.Fatalf("unexpected claims: %+v", claims)
	}

	// Logout succeeds with and without a token.
	rec = env.do(t, http.MethodPost, "/api/auth/logout", login.Token, nil, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("logout with token: status %d", rec.Code)
	}
	rec = env.do(t, http.MethodPost, "/api/auth/logout", "", nil, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("logout without token: status %d", rec.Code)
	}
}

func TestLoginFailureShapesMatch(t *testing.T) {
	env := newTestEnv(t)
	env.registerAndLogin(t, "alice", "pw12345", "admin")

	var unknownUser, wrongPass map[string]any
	rec := env.do(t, http.MethodPost, "/api/auth/login", "", map[string]string{
		"username": "ghost", "password": "pw12345",
	}, &unknownUser)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("unknown user: status %d, want 400", rec.Code)
	}
	rec = env.do(t, http.MethodPost, "/api/auth/login", "", map[string]string{
		"username": "alice", "password": "wrong",
	}, &wrongPass)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("wrong password: status %d, want 400", rec.Code)
	}
	// Neither response may reveal which half of the credential failed.
	if unknownUser["error"] != wrongPass["error"] || unknownUser["kind"] != wrongPass["kind"] {
		t.Fatalf("login failure shapes differ: %v vs %v", unknownUser, wrongPass)
	}
}

func TestStudentAndMarksFlow(t *testing.T) {
	env := newTestEnv(t)
	adminToken := env.registerAndLogin(t, "alice", "pw12345", "admin")
	teacherToken := env.registerAndLogin(t, "tina", "pw12345", "teacher")

	var added map[string]any
	rec := env.do(t, http.MethodPost, "/api/students", adminToken, map[string]string{
		"name": "Ravi", "rollNumber": "R-001",
	}, &added)
	if rec.Code != http.StatusCreated {
		t.Fatalf("add student: status %d body %s", rec.Code, rec.Body.String())
	}
	studentID, _ := added["id"].(string)
	if studentID == "" {
		t.Fatalf("missing student id in %v", added)
	}

	var students []studentResponse
	rec = env.do(t, http.MethodGet, "/api/students", teacherToken, nil, &students)
	if rec.Code != http.StatusOK || len(students) != 1 {
		t.Fatalf("list students: status %d body %s", rec.Code, rec.Body.String())
	}
	if students[0].Name != "Ravi" || students[0].RollNumber != "R-001" {
		t.Fatalf("unexpected student: %+v", students[0])
	}

	rec = env.do(t, http.MethodPost, "/api/marks/"+studentID, teacherToken, map[string]int{
		"Math": 90, "Physics": 72,
	}, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("save marks: status %d body %s", rec.Code, rec.Body.String())
	}

	var marks map[string]int
	rec = env.do(t, http.MethodGet, "/api/marks/"+studentID, teacherToken, nil, &marks)
	if rec.Code != http.StatusOK || marks["Math"] != 90 {
		t.Fatalf("get marks: status %d body %s", rec.Code, rec.Body.String())
	}

	// Admins read students but not raw marks.
	rec = env.do(t, http.MethodGet, "/api/marks/"+studentID, adminToken, nil, nil)
	if rec.Code != http.StatusForbidden {
		t.Fatalf("admin get marks: status %d, want 403", rec.Code)
	}

	// Marks for an unknown student answer 404.
	rec = env.do(t, http.MethodGet, "/api/marks/missing", teacherToken, nil, nil)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("unknown student marks: status %d, want 404", rec.Code)
	}
}

func TestDownloadMarks(t *testing.T) {
	env := newTestEnv(t)
	adminToken := env.registerAndLogin(t, "alice", "pw12345", "admin")
	teacherToken := env.registerAndLogin(t, "tina", "pw12345", "teacher")

	var added map[string]any
	env.do(t, http.MethodPost, "/api/students", adminToken, map[string]string{
		"name": "Ravi", "rollNumber": "R-001",
	}, &added)
	studentID, _ := added["id"].(string)
	env.do(t, http.MethodPost, "/api/marks/"+studentID, teacherToken, map[string]int{"Math": 90}, nil)

	for _, token := range []string{adminToken, teacherToken} {
		rec := env.do(t, http.MethodGet, "/api/marks/"+studentID+"/download", token, nil, nil)
		if rec.Code != http.StatusOK {
			t.Fatalf("download: status %d body %s", rec.Code, rec.Body.String())
		}
		if ct := rec.Header().Get("Content-Type"); ct != xlsxContentType {
			t.Fatalf("content type = %q", ct)
		}
		if cd := rec.Header().Get("Content-Disposition"); !strings.Contains(cd, "Ravi_marks.xlsx") {
			t.Fatalf("content disposition = %q", cd)
		}
		if !bytes.HasPrefix(rec.Body.Bytes(), []byte("PK")) {
			t.Fatal("expected xlsx payload")
		}
	}

	// Download for a student without marks answers 404.
	var other map[string]any
	env.do(t, http.MethodPost, "/api/students", adminToken, map[string]string{
		"name": "Mina", "rollNumber": "R-002",
	}, &other)
	otherID, _ := other["id"].(string)
	rec := env.do(t, http.MethodGet, "/api/marks/"+otherID+"/download", teacherToken, nil, nil)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("download without marks: status %d, want 404", rec.Code)
	}
}

func TestMethodAndBodyValidation(t *testing.T) {
	env := newTestEnv(t)
	adminToken := env.registerAndLogin(t, "alice", "pw12345", "admin")

	rec := env.do(t, http.MethodGet, "/api/auth/register", "", nil, nil)
	if rec.Code != http.StatusMethodNotAllowed {
		t.Fatalf("GET register: status %d, want 405", rec.Code)
	}
	if allow := rec.Header().Get("Allow"); allow != http.MethodPost {
		t.Fatalf("Allow = %q", allow)
	}

	// Empty body on a POST route is a validation error, not a panic.
	rec = env.do(t, http.MethodPost, "/api/students", adminToken, nil, nil)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("empty add student body: status %d, want 400", rec.Code)
	}

	rec = env.do(t, http.MethodGet, "/no/such/route", "", nil, nil)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("unknown route: status %d, want 404", rec.Code)
	}
}

func TestHealthEndpoints(t *testing.T) {
	env := newTestEnv(t)

	var health map[string]any
	rec := env.do(t, http.MethodGet, "/healthz", "", nil, &health)
	if rec.Code != http.StatusOK || health["status"] != "healthy" {
		t.Fatalf("healthz: status %d body %s", rec.Code, rec.Body.String())
	}
	if health["version"] != "test" {
		t.Fatalf("version = %v", health["version"])
	}

	var ready map[string]any
	rec = env.do(t, http.MethodGet, "/readyz", "", nil, &ready)
	if rec.Code != http.StatusOK || ready["status"] != "ready" {
		t.Fatalf("readyz: status %d body %s", rec.Code, rec.Body.String())
	}
}
