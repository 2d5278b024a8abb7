package supabase

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCallRecordsStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/auth/v1/user", r.URL.Path)
		assert.Equal(t, "anon", r.Header.Get("apikey"))
		assert.Equal(t, "Bearer expired", r.Header.Get("Authorization"))
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte(`{"code":401,"msg":"invalid JWT"}`))
	}))
	defer server.Close()

	call := NewCall(context.Background(), server.URL+"/", "anon", server.Client())
	_, err := call.WithToken("expired").GetUser()
	require.Error(t, err)
	assert.Equal(t, http.StatusUnauthorized, call.Status())
	assert.True(t, call.Rejected())
	assert.True(t, call.Failed())
	assert.Equal(t, "invalid JWT", Message(err))
}

func TestCallWithoutResponse(t *testing.T) {
	server := httptest.NewServer(http.NotFoundHandler())
	url := server.URL
	server.Close()

	call := NewCall(context.Background(), url, "anon", nil)
	_, err := call.GetUser()
	require.Error(t, err)
	assert.Zero(t, call.Status())
	assert.False(t, call.Rejected())
	assert.False(t, call.Failed())
}

func TestMessage(t *testing.T) {
	assert.Equal(t, "", Message(nil))
	assert.Equal(t, "Invalid login credentials",
		Message(errors.New(`response status code 400: {"error":"invalid_grant","error_description":"Invalid login credentials"}`)))
	assert.Equal(t, "upstream exploded", Message(errors.New("response status code 502: upstream exploded\n")))
	assert.Equal(t, "dial tcp: refused", Message(errors.New("dial tcp: refused")))
}

func TestAuthURL(t *testing.T) {
	assert.Equal(t, "https://p.supabase.co/auth/v1", AuthURL("https://p.supabase.co/"))
}
