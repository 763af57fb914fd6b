// ABOUTME: Token issuance endpoint exchanging a username/password for a signed JWT
// ABOUTME: Requires the baseline USER authority on top of a full credential check

package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/rosterd/rosterd/internal/auth"
)

// msgRoleRequired is returned when credentials verify but the principal lacks
// the baseline user authority. Distinct from the credential error so clients
// and audit logs can tell the two apart.
const msgRoleRequired = "Invalid Role supplied. Role: " + auth.AuthorityUser + " required!"

// TokenRequest is the JSON request body for POST /v1/auth/token.
type TokenRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// TokenResponse is the JSON response for POST /v1/auth/token.
type TokenResponse struct {
	Token string `json:"token"`
}

// handleIssueToken handles POST /v1/auth/token requests. The route is open;
// the credential check happens here, without the basic gate's whitelist.
// Issuance additionally requires the baseline USER authority, so privileged
// basic-only principals are not handed bearer tokens as a side door.
func (s *Server) handleIssueToken(w http.ResponseWriter, r *http.Request) {
	var req TokenRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "malformed request body")
		return
	}

	p, err := s.creds.Verify(req.Username, req.Password)
	switch {
	case err == nil:
	case errors.Is(err, auth.ErrAccountDisabled):
		s.logger.Info("token refused: account disabled", "username", req.Username)
		writeError(w, http.StatusUnauthorized, auth.MsgAccountDisabled)
		return
	default:
		s.logger.Info("token refused: bad credentials", "username", req.Username)
		writeError(w, http.StatusUnauthorized, auth.MsgInvalidCredentials)
		return
	}

	id := auth.Identity{Username: p.Username, Authorities: p.Authorities}
	if !id.HasAuthority(auth.AuthorityUser) {
		s.logger.Info("token refused: missing baseline authority", "username", p.Username)
		writeError(w, http.StatusUnauthorized, msgRoleRequired)
		return
	}

	token, err := s.codec.Issue(p)
	if err != nil {
		s.logger.Error("issuing token", "err", err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}

	writeJSON(w, http.StatusOK, TokenResponse{Token: token})
}
