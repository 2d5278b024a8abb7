package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"privatenotes/internal/auth"
	"privatenotes/internal/note/model"
	"privatenotes/internal/note/repository"
	"privatenotes/internal/note/service"
	"privatenotes/middleware"
	"privatenotes/pkg/apperr"
)

// tokenVerifier treats the token itself as the user id; "bad" is rejected.
var tokenVerifier = auth.VerifierFunc(func(_ context.Context, token string) (*auth.Identity, error) {
	if token == "bad" {
		return nil, auth.ErrInvalidToken
	}
	return &auth.Identity{ID: token, Email: token + "@example.com"}, nil
})

type testServer struct {
	repo    repository.Repository
	handler http.Handler
}

func newTestServer(repo repository.Repository) *testServer {
	h := NewNoteHandler(service.NewNoteService(repo, nil))
	r := chi.NewRouter()
	r.Route("/api/notes", func(r chi.Router) {
		r.Use(middleware.Authenticate(tokenVerifier))
		r.Get("/", h.GetNotes)
		r.Post("/", h.CreateNote)
		r.Get("/{id}", h.GetNote)
		r.Put("/{id}", h.UpdateNote)
		r.Delete("/{id}", h.DeleteNote)
	})
	return &testServer{repo: repo, handler: r}
}

func (s *testServer) do(method, path, token, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	s.handler.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v), rec.Body.String())
	return v
}

func TestCreateNoteScenario(t *testing.T) {
	srv := newTestServer(repository.NewMemoryRepository())

	rec := srv.do(http.MethodPost, "/api/notes", "alice", `{"title":"A","content":"B","user_id":"mallory"}`)
	require.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

	n := decode[model.Note](t, rec)
	assert.NotEmpty(t, n.ID)
	assert.Equal(t, "alice", n.UserID, "user_id in the body is ignored")
	assert.False(t, n.CreatedAt.IsZero())

	raw := decode[map[string]any](t, rec)
	for _, key := range []string{"id", "user_id", "title", "content", "created_at", "updated_at"} {
		assert.Contains(t, raw, key)
	}

	rec = srv.do(http.MethodGet, "/api/notes/"+n.ID, "alice", "")
	require.Equal(t, http.StatusOK, rec.Code)
	got := decode[model.Note](t, rec)
	assert.Equal(t, "A", got.Title)
	assert.Equal(t, "B", got.Content)
}

func TestValidationErrors(t *testing.T) {
	srv := newTestServer(repository.NewMemoryRepository())

	tests := []struct {
		name    string
		method  string
		path    string
		body    string
		message string
	}{
		{"create missing content", http.MethodPost, "/api/notes", `{"title":"A"}`, "Title and content are required"},
		{"create empty title", http.MethodPost, "/api/notes", `{"title":"","content":"B"}`, "Title and content are required"},
		{"create empty body", http.MethodPost, "/api/notes", ``, "Title and content are required"},
		{"create malformed", http.MethodPost, "/api/notes", `{"title":`, "Invalid request body"},
		{"create wrong type", http.MethodPost, "/api/notes", `{"title":1,"content":"B"}`, "Invalid request body"},
		{"update missing title", http.MethodPut, "/api/notes/abc", `{"content":"B"}`, "Title and content are required"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := srv.do(tt.method, tt.path, "alice", tt.body)
			assert.Equal(t, http.StatusBadRequest, rec.Code)
			assert.Equal(t, tt.message, decode[apperr.Response](t, rec).Error)
		})
	}
}

func TestListOrderedNewestFirstAndScoped(t *testing.T) {
	srv := newTestServer(repository.NewMemoryRepository())

	for _, title := range []string{"first", "second"} {
		rec := srv.do(http.MethodPost, "/api/notes", "alice", `{"title":"`+title+`","content":"x"}`)
		require.Equal(t, http.StatusCreated, rec.Code)
	}
	rec := srv.do(http.MethodPost, "/api/notes", "bob", `{"title":"bob's","content":"x"}`)
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = srv.do(http.MethodGet, "/api/notes", "alice", "")
	require.Equal(t, http.StatusOK, rec.Code)
	notes := decode[[]model.Note](t, rec)
	require.Len(t, notes, 2)
	assert.Equal(t, "second", notes[0].Title)
	assert.Equal(t, "first", notes[1].Title)

	rec = srv.do(http.MethodGet, "/api/notes", "carol", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "[]", strings.TrimSpace(rec.Body.String()))
}

func TestForeignNoteIsNotFound(t *testing.T) {
	srv := newTestServer(repository.NewMemoryRepository())

	rec := srv.do(http.MethodPost, "/api/notes", "alice", `{"title":"A","content":"B"}`)
	require.Equal(t, http.StatusCreated, rec.Code)
	id := decode[model.Note](t, rec).ID

	rec = srv.do(http.MethodGet, "/api/notes/"+id, "bob", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "Note not found", decode[apperr.Response](t, rec).Error)

	rec = srv.do(http.MethodPut, "/api/notes/"+id, "bob", `{"title":"x","content":"y"}`)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = srv.do(http.MethodDelete, "/api/notes/"+id, "bob", "")
	assert.Equal(t, http.StatusNoContent, rec.Code)

	rec = srv.do(http.MethodGet, "/api/notes/"+id, "alice", "")
	assert.Equal(t, http.StatusOK, rec.Code, "bob's delete must not touch alice's note")
}

func TestUpdateNote(t *testing.T) {
	srv := newTestServer(repository.NewMemoryRepository())

	rec := srv.do(http.MethodPost, "/api/notes", "alice", `{"title":"A","content":"B"}`)
	created := decode[model.Note](t, rec)

	rec = srv.do(http.MethodPut, "/api/notes/"+created.ID, "alice", `{"title":"A2","content":"B2","user_id":"bob"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	updated := decode[model.Note](t, rec)
	assert.Equal(t, created.ID, updated.ID)
	assert.Equal(t, "alice", updated.UserID)
	assert.Equal(t, "A2", updated.Title)
	assert.Equal(t, "B2", updated.Content)
}

func TestDeleteIsIdempotent(t *testing.T) {
	srv := newTestServer(repository.NewMemoryRepository())

	rec := srv.do(http.MethodPost, "/api/notes", "alice", `{"title":"A","content":"B"}`)
	id := decode[model.Note](t, rec).ID

	for i := 0; i < 2; i++ {
		rec = srv.do(http.MethodDelete, "/api/notes/"+id, "alice", "")
		assert.Equal(t, http.StatusNoContent, rec.Code)
		assert.Empty(t, rec.Body.String())
	}

	rec = srv.do(http.MethodGet, "/api/notes/"+id, "alice", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestUnauthenticatedRequests(t *testing.T) {
	srv := newTestServer(repository.NewMemoryRepository())

	rec := srv.do(http.MethodGet, "/api/notes", "", "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "Missing or invalid authorization header", decode[apperr.Response](t, rec).Error)

	rec = srv.do(http.MethodPost, "/api/notes", "bad", `{"title":"A","content":"B"}`)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "Invalid or expired token", decode[apperr.Response](t, rec).Error)
}

func TestHandlerWithoutIdentity(t *testing.T) {
	h := NewNoteHandler(service.NewNoteService(repository.NewMemoryRepository(), nil))
	rec := httptest.NewRecorder()
	h.GetNotes(rec, httptest.NewRequest(http.MethodGet, "/api/notes", nil))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}
