package obs

import "testing"

func TestCanonicalPath(t *testing.T) {
	cases := map[string]string{
		"":                             "/",
		"/metrics":                     "/metrics",
		"/api/students":                "/api/students",
		"/api/marks/01ABC":             "/api/marks/:id",
		"/api/marks/01ABC/download":    "/api/marks/:id/download",
		"/api/marks/01ABC/extra":       "/api/marks/01ABC/extra",
		"/api/marks/01ABC?pretty=true": "/api/marks/:id",
		"/graphql":                     "/graphql",
	}
	for input, expected := range cases {
		if got := CanonicalPath(input); got != expected {
			t.Fatalf("CanonicalPath(%q)=%q, want %q", input, got, expected)
		}
	}
}

func TestRecordOperation(t *testing.T) {
	before := OperationCount(SurfaceGraphQL, "students.list", OutcomeSuccess)
	RecordOperation(SurfaceGraphQL, "students.list", OutcomeSuccess, 0.01)
	if got := OperationCount(SurfaceGraphQL, "students.list", OutcomeSuccess); got != before+1 {
		t.Fatalf("operation count = %v, want %v", got, before+1)
	}
}

func TestRecordLoginAttempt(t *testing.T) {
	before := LoginAttemptCount("failed", "mallory")
	RecordLoginAttempt("failed", "mallory")
	RecordLoginAttempt("failed", "mallory")
	if got := LoginAttemptCount("failed", "mallory"); got != before+2 {
		t.Fatalf("login attempt count = %v, want %v", got, before+2)
	}
}

func TestInitIsIdempotent(t *testing.T) {
	Init()
	Init() // second call must not panic on duplicate registration
}
