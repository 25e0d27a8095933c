// Package httpapi is the command-style REST surface. Its guard decodes the
// bearer token once per request and checks each route's operation against
// the same policy table the query surface uses.
package httpapi

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"
	"time"

	"markbook.org/internal/auth"
	"markbook.org/internal/obs"
	"markbook.org/internal/records"
)

// ReadyProbe reports whether the backing store is reachable.
type ReadyProbe struct {
	DB *sql.DB
}

func (rp ReadyProbe) Check(ctx context.Context) error {
	if rp.DB == nil {
		return nil
	}
	return rp.DB.PingContext(ctx)
}

// API is the HTTP layer.
type API struct {
	mux     *http.ServeMux
	auth    *auth.Service
	records *records.Service
	policy  *auth.Policy
	ready   ReadyProbe
	version string
	started time.Time
}

// New wires the routes. graphql, when non-nil, is mounted at /graphql; it
// performs its own identity extraction, so the path is public here.
func New(authSvc *auth.Service, recordsSvc *records.Service, policy *auth.Policy, graphql http.Handler, rp ReadyProbe, version string) *API {
	a := &API{
		mux:     http.NewServeMux(),
		auth:    authSvc,
		records: recordsSvc,
		policy:  policy,
		ready:   rp,
		version: version,
		started: time.Now(),
	}

	a.mux.HandleFunc("/healthz", a.Healthz)
	a.mux.HandleFunc("/readyz", a.Ready)
	a.mux.Handle("/metrics", obs.Handler())

	a.mux.HandleFunc("/api/auth/register", a.handleRegister)
	a.mux.HandleFunc("/api/auth/login", a.handleLogin)
	a.mux.HandleFunc("/api/auth/logout", a.handleLogout)

	a.mux.HandleFunc("/api/students", a.handleStudents)
	a.mux.HandleFunc("/api/marks/", a.handleMarks)

	if graphql != nil {
		a.mux.Handle("/graphql", graphql)
	}

	a.mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	})

	return a
}

// Handler returns the fully wrapped server handler: metrics outermost,
// then the ambient middleware chain, then the auth guard, then the mux.
func (a *API) Handler() http.Handler {
	h := a.withAuth(a.mux)
	h = MaxBodyBytes(h, 1<<20)
	h = RateLimit(h, 20, 10)
	h = LoggingJSON(h)
	h = RequestID(h)
	h = CORS(h)
	h = SecurityHeaders(h)
	return obs.Instrument(h)
}

func (a *API) Healthz(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":         "healthy",
		"service":        "markbook-api",
		"version":        a.version,
		"uptime_seconds": int64(time.Since(a.started).Seconds()),
	})
}

func (a *API) Ready(w http.ResponseWriter, r *http.Request) {
	if err := a.ready.Check(r.Context()); err != nil {
		writeJSON(w, http.StatusServiceUnavailable, map[string]any{
			"status": "not_ready",
			"error":  err.Error(),
		})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"status": "ready"})
}

// --- helpers ---

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, r *http.Request, code int, kind, msg string) {
	payload := map[string]any{
		"error": msg,
		"kind":  kind,
	}
	if rid := RequestIDFromContext(r.Context()); rid != "" {
		payload["request_id"] = rid
	}
	writeJSON(w, code, payload)
}

// handleDomainError maps the service error taxonomy onto status codes.
// Conflict and invalid-credentials answer 400, matching the source
// system's wire contract.
func handleDomainError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, auth.ErrValidation):
		writeError(w, r, http.StatusBadRequest, "validation", err.Error())
	case errors.Is(err, auth.ErrConflict):
		writeError(w, r, http.StatusBadRequest, "conflict", "user already exists")
	case errors.Is(err, auth.ErrInvalidCredentials):
		writeError(w, r, http.StatusBadRequest, "invalid_credentials", "invalid credentials")
	case errors.Is(err, auth.ErrUnauthenticated), errors.Is(err, auth.ErrInvalidToken):
		w.Header().Set("WWW-Authenticate", `Bearer realm="markbook"`)
		writeError(w, r, http.StatusUnauthorized, "unauthenticated", "invalid or missing credential")
	case errors.Is(err, auth.ErrForbidden):
		writeError(w, r, http.StatusForbidden, "forbidden", "access denied")
	case errors.Is(err, records.ErrNotFound), errors.Is(err, auth.ErrNotFound):
		writeError(w, r, http.StatusNotFound, "not_found", "resource not found")
	default:
		writeError(w, r, http.StatusInternalServerError, "internal", "internal error")
	}
}

func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	reader := http.MaxBytesReader(w, r.Body, 1<<20)
	defer reader.Close()
	dec := json.NewDecoder(reader)
	if err := dec.Decode(dst); err != nil {
		if errors.Is(err, io.EOF) {
			return errors.New("request body is required")
		}
		return err
	}
	if err := dec.Decode(&struct{}{}); !errors.Is(err, io.EOF) {
		if err == nil {
			return errors.New("unexpected data after JSON body")
		}
		return err
	}
	return nil
}

func methodNotAllowed(w http.ResponseWriter, r *http.Request, allowed ...string) {
	w.Header().Set("Allow", strings.Join(allowed, ", "))
	writeError(w, r, http.StatusMethodNotAllowed, "method_not_allowed", "method not allowed")
}
