// Package auth resolves bearer credentials issued by Supabase Auth into
// the identity of the caller. The server never issues credentials.
package auth

import (
	"context"
	"errors"
)

// ErrInvalidToken is returned when a credential is malformed, expired or
// rejected by the identity provider.
var ErrInvalidToken = errors.New("invalid or expired token")

type Identity struct {
	ID    string `json:"id"`
	Email string `json:"email"`
}

// Verifier validates a bearer token and yields the identity it belongs to.
type Verifier interface {
	Verify(ctx context.Context, token string) (*Identity, error)
}

// VerifierFunc adapts a function to the Verifier interface.
type VerifierFunc func(ctx context.Context, token string) (*Identity, error)

func (f VerifierFunc) Verify(ctx context.Context, token string) (*Identity, error) {
	return f(ctx, token)
}
