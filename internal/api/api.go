// ABOUTME: HTTP API assembly for rosterd: router, middleware stack, and route policy
// ABOUTME: Wires the auth gates ahead of the JSON CRUD handlers

package api

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/rosterd/rosterd/internal/auth"
	"github.com/rosterd/rosterd/internal/store"
)

// Server holds the dependencies for the HTTP API.
type Server struct {
	store  store.Store
	creds  *auth.CredentialStore
	codec  *auth.TokenCodec
	logger *slog.Logger
}

// NewServer creates an API server over the given collaborators.
func NewServer(st store.Store, creds *auth.CredentialStore, codec *auth.TokenCodec, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	return &Server{
		store:  st,
		creds:  creds,
		codec:  codec,
		logger: logger.With("component", "api"),
	}
}

// defaultPolicy is the route authorization table for the default deployment.
// Read routes need READ or WRITE; mutating routes need WRITE; the token
// endpoint and health check are open; everything else is denied by the
// policy's implicit default.
func defaultPolicy(logger *slog.Logger) *auth.Policy {
	readMethods := []string{http.MethodGet, http.MethodHead}
	writeMethods := []string{http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodPatch}

	rules := []auth.Rule{
		{Methods: []string{http.MethodPost}, Pattern: "/v1/auth/token", Require: auth.Requirement{Kind: auth.PermitAll}},
		{Pattern: "/healthz", Require: auth.Requirement{Kind: auth.PermitAll}},
		{Methods: readMethods, Pattern: "/v1/people/*", Require: auth.AnyOf(auth.AuthorityRead, auth.AuthorityWrite)},
		{Methods: readMethods, Pattern: "/v1/addresses/*", Require: auth.AnyOf(auth.AuthorityRead, auth.AuthorityWrite)},
		{Methods: readMethods, Pattern: "/v1/clubs/*", Require: auth.AnyOf(auth.AuthorityRead, auth.AuthorityWrite)},
		{Methods: writeMethods, Pattern: "/v1/people/*", Require: auth.AnyOf(auth.AuthorityWrite)},
		{Methods: writeMethods, Pattern: "/v1/addresses/*", Require: auth.AnyOf(auth.AuthorityWrite)},
		{Methods: writeMethods, Pattern: "/v1/clubs/*", Require: auth.AnyOf(auth.AuthorityWrite)},
	}

	return auth.NewPolicy(rules, logger)
}

// Router builds the full HTTP handler: recovery, request IDs, request
// logging, then the ordered identity gates (bearer before basic, first
// identity wins), then the route policy, then the handlers.
func (s *Server) Router(basicWhitelist []string) http.Handler {
	r := chi.NewRouter()

	r.Use(recoverMiddleware(s.logger))
	r.Use(requestIDMiddleware())
	r.Use(loggingMiddleware(s.logger))
	r.Use(auth.BearerGate(s.creds, s.codec, s.logger))
	r.Use(auth.BasicGate(s.creds, basicWhitelist, s.logger))
	r.Use(defaultPolicy(s.logger).Middleware())

	r.Get("/healthz", s.handleHealth)

	r.Route("/v1", func(v1 chi.Router) {
		v1.Post("/auth/token", s.handleIssueToken)

		v1.Route("/people", func(p chi.Router) {
			p.Post("/", s.handleCreatePerson)
			p.Get("/{personID}", s.handleGetPerson)
			p.Delete("/{personID}", s.handleDeletePerson)
			p.Get("/{personID}/addresses", s.handleListAddresses)
			p.Delete("/{personID}/addresses", s.handleDeleteAddresses)
			p.Get("/{personID}/clubs", s.handleListClubsForPerson)
		})

		v1.Route("/addresses", func(a chi.Router) {
			a.Post("/", s.handleCreateAddress)
			a.Get("/{addressID}", s.handleGetAddress)
			a.Delete("/{addressID}", s.handleDeleteAddress)
		})

		v1.Route("/clubs", func(c chi.Router) {
			c.Post("/", s.handleCreateClub)
			c.Get("/{clubName}", s.handleGetClub)
			c.Delete("/{clubName}", s.handleDeleteClub)
			c.Get("/{clubName}/members", s.handleListMembers)
			c.Put("/{clubName}/members/{personID}", s.handleAddMembership)
			c.Delete("/{clubName}/members/{personID}", s.handleRemoveMembership)
		})
	})

	return r
}

// handleHealth handles GET /healthz requests.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// writeJSON encodes v as the JSON response body with the given status.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// writeError writes a stable JSON error body. Clients branch on these
// messages, so handlers pass fixed strings.
func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
