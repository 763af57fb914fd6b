// ABOUTME: Shared test setup for API tests
// ABOUTME: Builds a server over a temp SQLite store with seeded principals

package api

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/rosterd/rosterd/internal/auth"
	"github.com/rosterd/rosterd/internal/store"
)

var testSecret = []byte("test-secret-key-for-jwt-signing")

func itoa(id int64) string {
	return strconv.FormatInt(id, 10)
}

type testServer struct {
	handler http.Handler
	store   *store.SQLiteStore
	creds   *auth.CredentialStore
	codec   *auth.TokenCodec
}

// createTestServer assembles the full router over a fresh SQLite store with
// the default deployment principals plus a disabled account and a
// privileged-only account without the baseline USER authority.
func createTestServer(t *testing.T) *testServer {
	t.Helper()

	st, err := store.NewSQLiteStore(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() })

	creds, err := auth.NewCredentialStore([]auth.Seed{
		{Username: "admin", Password: "admin-pass", Authorities: []string{auth.AuthorityAdmin, auth.AuthorityRead, auth.AuthorityWrite}},
		{Username: "public", Password: "public-pass", Authorities: []string{auth.AuthorityUser, auth.AuthorityRead}},
		{Username: "ghost", Password: "ghost-pass", Authorities: []string{auth.AuthorityUser, auth.AuthorityRead}, Disabled: true},
	})
	require.NoError(t, err)

	codec := auth.NewTokenCodec(testSecret, time.Hour)
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	server := NewServer(st, creds, codec, logger)

	return &testServer{
		handler: server.Router([]string{auth.AuthorityAdmin}),
		store:   st,
		creds:   creds,
		codec:   codec,
	}
}

// request performs an HTTP request against the test router. The body, if
// non-nil, is JSON encoded.
func (ts *testServer) request(t *testing.T, method, path string, body any, decorate func(*http.Request)) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}

	req := httptest.NewRequest(method, path, &buf)
	if decorate != nil {
		decorate(req)
	}
	rec := httptest.NewRecorder()
	ts.handler.ServeHTTP(rec, req)
	return rec
}

// asAdmin decorates a request with the admin Basic credentials.
func asAdmin(req *http.Request) {
	req.Header.Set("Authorization", "Basic "+base64.StdEncoding.EncodeToString([]byte("admin:admin-pass")))
}

// asBearer decorates a request with a bearer token.
func asBearer(token string) func(*http.Request) {
	return func(req *http.Request) {
		req.Header.Set("Authorization", "Bearer "+token)
	}
}

// obtainToken exchanges credentials for a token via the issuance endpoint.
func (ts *testServer) obtainToken(t *testing.T, username, password string) string {
	t.Helper()

	rec := ts.request(t, http.MethodPost, "/v1/auth/token", TokenRequest{Username: username, Password: password}, nil)
	require.Equal(t, http.StatusOK, rec.Code, "token request failed: %s", rec.Body.String())

	var resp TokenResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	require.NotEmpty(t, resp.Token)
	return resp.Token
}

// createPerson inserts a person via the API as admin and returns it.
func (ts *testServer) createPerson(t *testing.T, first, last string) PersonResponse {
	t.Helper()

	rec := ts.request(t, http.MethodPost, "/v1/people", PersonRequest{
		FirstName:   first,
		LastName:    last,
		DateOfBirth: "1990-06-15",
	}, asAdmin)
	require.Equal(t, http.StatusCreated, rec.Code, "create person failed: %s", rec.Body.String())

	var resp PersonResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	return resp
}
