package client

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/supabase-community/auth-go/types"
	"golang.org/x/oauth2"

	"privatenotes/pkg/logger"
	"privatenotes/pkg/supabase"
)

// SupabaseTokenSource signs in to Supabase Auth with email and password and
// keeps the session alive with the refresh token.
type SupabaseTokenSource struct {
	ctx         context.Context
	supabaseURL string
	anonKey     string
	email       string
	password    string
	hc          *http.Client

	mu           sync.Mutex
	refreshToken string
	now          func() time.Time
}

// NewSupabaseSession returns a source that only reaches the auth server
// when the cached access token is missing or about to expire.
func NewSupabaseSession(ctx context.Context, supabaseURL, anonKey, email, password string, hc *http.Client) oauth2.TokenSource {
	return oauth2.ReuseTokenSource(nil, NewSupabaseTokenSource(ctx, supabaseURL, anonKey, email, password, hc))
}

func NewSupabaseTokenSource(ctx context.Context, supabaseURL, anonKey, email, password string, hc *http.Client) *SupabaseTokenSource {
	if hc == nil {
		hc = &http.Client{Timeout: 15 * time.Second}
	}
	return &SupabaseTokenSource{
		ctx:         ctx,
		supabaseURL: supabaseURL,
		anonKey:     anonKey,
		email:       email,
		password:    password,
		hc:          hc,
		now:         time.Now,
	}
}

// Token refreshes when a refresh token is held and falls back to a fresh
// password sign-in if the refresh is rejected.
func (s *SupabaseTokenSource) Token() (*oauth2.Token, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.refreshToken != "" {
		refreshToken := s.refreshToken
		tok, err := s.grant(func(c *supabase.Call) (*types.TokenResponse, error) {
			return c.RefreshToken(refreshToken)
		})
		if err == nil {
			return tok, nil
		}
		logger.Sugar.Warnf("Session refresh failed, signing in again: %v", err)
		s.refreshToken = ""
	}

	if s.email == "" || s.password == "" {
		return nil, ErrNoSession
	}
	return s.grant(func(c *supabase.Call) (*types.TokenResponse, error) {
		return c.SignInWithEmailPassword(s.email, s.password)
	})
}

func (s *SupabaseTokenSource) grant(do func(*supabase.Call) (*types.TokenResponse, error)) (*oauth2.Token, error) {
	call := supabase.NewCall(s.ctx, s.supabaseURL, s.anonKey, s.hc)

	session, err := do(call)
	if err != nil {
		if call.Failed() {
			return nil, &HTTPError{StatusCode: call.Status(), Message: supabase.Message(err)}
		}
		if call.Status() == 0 {
			return nil, fmt.Errorf("auth server unreachable: %w", err)
		}
		return nil, fmt.Errorf("decode session: %w", err)
	}
	if session == nil || session.AccessToken == "" {
		return nil, errors.New("auth server returned no access token")
	}
	s.refreshToken = session.RefreshToken

	tok := &oauth2.Token{
		AccessToken:  session.AccessToken,
		TokenType:    session.TokenType,
		RefreshToken: session.RefreshToken,
	}
	if session.ExpiresIn > 0 {
		tok.Expiry = s.now().Add(time.Duration(session.ExpiresIn) * time.Second)
	}
	extra := map[string]any{"email": session.User.Email}
	if session.User.ID != uuid.Nil {
		extra["user_id"] = session.User.ID.String()
	}
	return tok.WithExtra(extra), nil
}
