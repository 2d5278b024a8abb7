package middleware

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"privatenotes/internal/auth"
	"privatenotes/pkg/apperr"
)

var stubVerifier = auth.VerifierFunc(func(_ context.Context, token string) (*auth.Identity, error) {
	switch token {
	case "good":
		return &auth.Identity{ID: "user-1", Email: "a@example.com"}, nil
	case "nobody":
		return nil, nil
	case "boom":
		panic("verifier exploded")
	case "down":
		return nil, errors.New("auth server unreachable")
	default:
		return nil, auth.ErrInvalidToken
	}
})

func serveAuth(t *testing.T, r *http.Request) (*httptest.ResponseRecorder, *auth.Identity) {
	t.Helper()
	var seen *auth.Identity
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id, ok := IdentityFrom(r.Context())
		require.True(t, ok)
		seen = &id
		w.WriteHeader(http.StatusNoContent)
	})
	rec := httptest.NewRecorder()
	Authenticate(stubVerifier)(next).ServeHTTP(rec, r)
	return rec, seen
}

func errorBody(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	var body apperr.Response
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body.Error
}

func TestAuthenticate(t *testing.T) {
	tests := []struct {
		name    string
		header  string
		status  int
		message string
	}{
		{"missing header", "", http.StatusUnauthorized, msgMissingHeader},
		{"wrong scheme", "Basic dXNlcjpwYXNz", http.StatusUnauthorized, msgMissingHeader},
		{"empty bearer", "Bearer ", http.StatusUnauthorized, msgMissingHeader},
		{"rejected token", "Bearer expired", http.StatusUnauthorized, msgInvalidToken},
		{"no identity", "Bearer nobody", http.StatusUnauthorized, msgInvalidToken},
		{"verifier error", "Bearer down", http.StatusUnauthorized, msgInvalidToken},
		{"verifier panic", "Bearer boom", http.StatusUnauthorized, msgAuthFailed},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := httptest.NewRequest(http.MethodGet, "/api/notes", nil)
			if tt.header != "" {
				r.Header.Set("Authorization", tt.header)
			}
			rec, seen := serveAuth(t, r)
			assert.Equal(t, tt.status, rec.Code)
			assert.Equal(t, tt.message, errorBody(t, rec))
			assert.Nil(t, seen)
		})
	}
}

func TestAuthenticateAttachesIdentity(t *testing.T) {
	r := httptest.NewRequest(http.MethodGet, "/api/notes", nil)
	r.Header.Set("Authorization", "Bearer good")

	rec, seen := serveAuth(t, r)
	assert.Equal(t, http.StatusNoContent, rec.Code)
	require.NotNil(t, seen)
	assert.Equal(t, auth.Identity{ID: "user-1", Email: "a@example.com"}, *seen)
}

func TestAuthenticateQueryTokenOnlyForWebSocket(t *testing.T) {
	r := httptest.NewRequest(http.MethodGet, "/api/notes?token=good", nil)
	rec, _ := serveAuth(t, r)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	r = httptest.NewRequest(http.MethodGet, "/api/notes/events?token=good", nil)
	r.Header.Set("Connection", "Upgrade")
	r.Header.Set("Upgrade", "websocket")
	rec, seen := serveAuth(t, r)
	assert.Equal(t, http.StatusNoContent, rec.Code)
	require.NotNil(t, seen)
	assert.Equal(t, "user-1", seen.ID)
}

func TestIdentityFromEmptyContext(t *testing.T) {
	_, ok := IdentityFrom(context.Background())
	assert.False(t, ok)
}
