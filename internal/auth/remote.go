package auth

import (
	"context"
	"fmt"
	"net/http"

	"github.com/google/uuid"

	"privatenotes/pkg/supabase"
)

// RemoteVerifier asks Supabase Auth who owns a token through auth-go's
// GetUser. Every call is a round trip; nothing is cached.
type RemoteVerifier struct {
	supabaseURL string
	anonKey     string
	client      *http.Client
}

func NewRemoteVerifier(supabaseURL, anonKey string, client *http.Client) *RemoteVerifier {
	return &RemoteVerifier{
		supabaseURL: supabaseURL,
		anonKey:     anonKey,
		client:      client,
	}
}

func (v *RemoteVerifier) Verify(ctx context.Context, token string) (*Identity, error) {
	call := supabase.NewCall(ctx, v.supabaseURL, v.anonKey, v.client)

	user, err := call.WithToken(token).GetUser()
	switch {
	case err == nil:
	case call.Rejected():
		return nil, ErrInvalidToken
	case call.Failed():
		return nil, fmt.Errorf("auth server returned %d: %s", call.Status(), supabase.Message(err))
	case call.Status() == 0:
		return nil, fmt.Errorf("auth server unreachable: %w", err)
	default:
		return nil, fmt.Errorf("decode user: %w", err)
	}

	if user == nil || user.ID == uuid.Nil {
		return nil, nil
	}
	return &Identity{ID: user.ID.String(), Email: user.Email}, nil
}
