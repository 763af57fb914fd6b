// ABOUTME: Bearer token gate that attaches an identity when a valid JWT is presented
// ABOUTME: Never blocks the chain; decode failures defer to the route policy

package auth

import (
	"log/slog"
	"net/http"
	"strings"
)

// extractBearerToken extracts a bearer token from the Authorization header.
// Returns the token and ok=false when the header is absent, not a Bearer
// scheme, or carries an empty token.
func extractBearerToken(authHeader string) (string, bool) {
	if authHeader == "" {
		return "", false
	}
	if !strings.HasPrefix(authHeader, "Bearer ") {
		return "", false
	}
	token := strings.TrimSpace(strings.TrimPrefix(authHeader, "Bearer "))
	if token == "" {
		return "", false
	}
	return token, true
}

// BearerGate creates an HTTP middleware that resolves a bearer token into a
// request identity. It only ever adds identity: on a missing header, a
// non-bearer scheme, a failed decode, or an unknown/disabled subject the
// request proceeds unauthenticated and the route policy decides downstream.
//
// The subject's authorities are re-resolved from the live credential store
// rather than trusted from the token claim, so disabling a principal takes
// effect on the next request even for unexpired tokens.
func BearerGate(creds *CredentialStore, verifier TokenVerifier, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token, ok := extractBearerToken(r.Header.Get("Authorization"))
			if !ok {
				next.ServeHTTP(w, r)
				return
			}

			username, err := verifier.Verify(token)
			if err != nil {
				logger.Debug("bearer token rejected", "err", err)
				next.ServeHTTP(w, r)
				return
			}

			if FromContext(r.Context()) != nil {
				next.ServeHTTP(w, r)
				return
			}

			p, err := creds.Lookup(username)
			if err != nil || p.Disabled {
				logger.Debug("bearer subject not resolvable", "username", username)
				next.ServeHTTP(w, r)
				return
			}

			id := &Identity{Username: p.Username, Authorities: p.Authorities}
			next.ServeHTTP(w, r.WithContext(WithIdentity(r.Context(), id)))
		})
	}
}
