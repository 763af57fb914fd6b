// ABOUTME: Restricted HTTP Basic gate reserved for a whitelisted authority subset
// ABOUTME: Non-whitelisted credentials pass through untouched; whitelisted ones must verify

package auth

import (
	"encoding/base64"
	"errors"
	"log/slog"
	"net/http"
	"strings"
)

// Client-facing messages for terminal basic-auth failures. Kept stable so API
// clients can branch on the failure kind.
const (
	MsgInvalidCredentials = "Invalid credentials."
	MsgAccountDisabled    = "Account Disabled."
)

// extractBasicCredentials extracts a username/password pair from the
// Authorization header. Returns ok=false when the header is absent, not a
// Basic scheme, or malformed.
func extractBasicCredentials(authHeader string) (username, password string, ok bool) {
	const prefix = "Basic "
	if !strings.HasPrefix(authHeader, prefix) {
		return "", "", false
	}
	decoded, err := base64.StdEncoding.DecodeString(strings.TrimPrefix(authHeader, prefix))
	if err != nil {
		return "", "", false
	}
	parts := strings.SplitN(string(decoded), ":", 2)
	if len(parts) != 2 {
		return "", "", false
	}
	return parts[0], parts[1], true
}

// BasicGate creates an HTTP middleware implementing restricted Basic
// authentication. The whitelist pre-check keeps Basic auth reserved for a
// privileged subset of principals: a credential pair whose authorities do not
// intersect the whitelist passes through without any password verification
// and may still be authenticated by the bearer gate or denied by the route
// policy.
//
// For whitelisted principals the gate performs full verification and is
// terminal on failure: a password mismatch or a disabled account ends the
// request with a 401 and a stable message. On success the identity carries
// the principal's full authority set, not the whitelist-intersected subset.
func BasicGate(creds *CredentialStore, whitelist []string, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			username, password, ok := extractBasicCredentials(r.Header.Get("Authorization"))
			if !ok {
				next.ServeHTTP(w, r)
				return
			}

			if !creds.HasAny(username, whitelist) {
				next.ServeHTTP(w, r)
				return
			}

			p, err := creds.Verify(username, password)
			switch {
			case err == nil:
			case errors.Is(err, ErrAccountDisabled):
				logger.Info("basic auth rejected: account disabled", "username", username)
				writeAuthError(w, MsgAccountDisabled)
				return
			default:
				logger.Info("basic auth rejected: bad credentials", "username", username)
				writeAuthError(w, MsgInvalidCredentials)
				return
			}

			if FromContext(r.Context()) != nil {
				next.ServeHTTP(w, r)
				return
			}

			id := &Identity{Username: p.Username, Authorities: p.Authorities}
			next.ServeHTTP(w, r.WithContext(WithIdentity(r.Context(), id)))
		})
	}
}

func writeAuthError(w http.ResponseWriter, msg string) {
	w.Header().Set("Content-Type", "application/json")
	http.Error(w, `{"error":"`+msg+`"}`, http.StatusUnauthorized)
}
