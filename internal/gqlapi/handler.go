package gqlapi

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/graphql-go/graphql"

	"markbook.org/internal/auth"
	"markbook.org/internal/obs"
)

type gqlRequest struct {
	Query         string         `json:"query"`
	Variables     map[string]any `json:"variables"`
	OperationName string         `json:"operationName"`
}

// ServeHTTP is the query surface guard: it derives identity once per
// request from the same Authorization header the REST guard reads and
// passes it to every resolver through the context. A missing or
// undecodable token leaves the identity absent rather than failing the
// transport; the policy check inside each operation produces the denial.
func (a *API) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.Header().Set("Allow", http.MethodPost)
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req gqlRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}

	ctx := obs.ContextWithSurface(r.Context(), obs.SurfaceGraphQL)
	if token := bearerToken(r.Header.Get("Authorization")); token != "" {
		if claims, err := a.auth.Codec().Decode(token); err == nil {
			ctx = auth.ContextWithIdentity(ctx, auth.Identity{
				Username: claims.Username,
				Role:     claims.Role,
			})
		}
	}

	result := graphql.Do(graphql.Params{
		Schema:         a.schema,
		RequestString:  req.Query,
		VariableValues: req.Variables,
		OperationName:  req.OperationName,
		Context:        ctx,
	})

	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	_ = json.NewEncoder(w).Encode(result)
}

func bearerToken(header string) string {
	header = strings.TrimSpace(header)
	const prefix = "bearer "
	if len(header) <= len(prefix) || !strings.EqualFold(header[:len(prefix)], prefix) {
		return ""
	}
	return strings.TrimSpace(header[len(prefix):])
}
