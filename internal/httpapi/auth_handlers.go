package httpapi

import (
	"net/http"
	"time"

	"markbook.org/internal/audit"
)

type registerRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
	Role     string `json:"role"`
}

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type loginResponse struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
}

func (a *API) handleRegister(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w, r, http.MethodPost)
		return
	}

	var req registerRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, http.StatusBadRequest, "validation", err.Error())
		return
	}

	if err := a.auth.Register(r.Context(), req.Username, req.Password, req.Role); err != nil {
		handleDomainError(w, r, err)
		return
	}

	_ = audit.LogEvent(r.Context(), "auth.account.registered", map[string]any{
		"username": req.Username,
		"role":     req.Role,
	})
	writeJSON(w, http.StatusOK, map[string]any{"message": "User registered successfully"})
}

func (a *API) handleLogin(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w, r, http.MethodPost)
		return
	}

	var req loginRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, http.StatusBadRequest, "validation", err.Error())
		return
	}

	token, expiresAt, err := a.auth.Login(r.Context(), req.Username, req.Password)
	if err != nil {
		handleDomainError(w, r, err)
		return
	}

	_ = audit.LogEvent(r.Context(), "auth.token.issued", map[string]any{
		"username":   req.Username,
		"expires_at": expiresAt.Format(time.RFC3339),
	})
	writeJSON(w, http.StatusOK, loginResponse{Token: token, ExpiresAt: expiresAt})
}

// handleLogout always reports success: tokens are stateless and expire on
// their own. A decodable token is used only to name the audit entry.
func (a *API) handleLogout(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w, r, http.MethodPost)
		return
	}

	var token string
	if raw, err := extractBearerToken(r.Header.Get(authHeader)); err == nil {
		token = raw
	}
	identity := a.auth.Logout(r.Context(), token)

	fields := map[string]any{}
	if identity.Username != "" {
		fields["username"] = identity.Username
	}
	_ = audit.LogEvent(r.Context(), "auth.logout", fields)
	writeJSON(w, http.StatusOK, map[string]any{"message": "Logged out"})
}
