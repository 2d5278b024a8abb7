package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"privatenotes/internal/auth"
	"privatenotes/pkg/apperr"
	"privatenotes/pkg/logger"
)

type contextKey string

const IdentityKey contextKey = "identity"

const (
	msgMissingHeader = "Missing or invalid authorization header"
	msgInvalidToken  = "Invalid or expired token"
	msgAuthFailed    = "Authentication failed"
)

// WithIdentity returns a copy of ctx carrying id.
func WithIdentity(ctx context.Context, id auth.Identity) context.Context {
	return context.WithValue(ctx, IdentityKey, id)
}

// IdentityFrom returns the identity attached by Authenticate.
func IdentityFrom(ctx context.Context) (auth.Identity, bool) {
	id, ok := ctx.Value(IdentityKey).(auth.Identity)
	return id, ok
}

// Authenticate rejects requests without a verifiable bearer token and
// attaches the caller's identity to the request context. Nothing the
// verifier does escapes as a 5xx.
func Authenticate(verifier auth.Verifier) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token, ok := bearerToken(r)
			if !ok {
				apperr.WriteStatus(w, http.StatusUnauthorized, msgMissingHeader)
				return
			}

			identity, err := verify(r.Context(), verifier, token)
			if err != nil {
				if errors.Is(err, errVerifierPanic) {
					apperr.WriteStatus(w, http.StatusUnauthorized, msgAuthFailed)
					return
				}
				if errors.Is(err, auth.ErrInvalidToken) {
					logger.Sugar.Debugf("Rejected token: %v", err)
				} else {
					logger.Sugar.Warnf("Identity verification failed: %v", err)
				}
				apperr.WriteStatus(w, http.StatusUnauthorized, msgInvalidToken)
				return
			}
			if identity == nil {
				apperr.WriteStatus(w, http.StatusUnauthorized, msgInvalidToken)
				return
			}

			next.ServeHTTP(w, r.WithContext(WithIdentity(r.Context(), *identity)))
		})
	}
}

var errVerifierPanic = errors.New("verifier panicked")

func verify(ctx context.Context, verifier auth.Verifier, token string) (identity *auth.Identity, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			logger.Sugar.Errorf("Auth middleware error: %v", rec)
			identity, err = nil, errVerifierPanic
		}
	}()
	return verifier.Verify(ctx, token)
}

// bearerToken reads `Authorization: Bearer <token>`. Websocket upgrades
// from browsers cannot set headers, so a `token` query parameter is
// accepted on those requests only.
func bearerToken(r *http.Request) (string, bool) {
	if header := r.Header.Get("Authorization"); header != "" {
		token, found := strings.CutPrefix(header, "Bearer ")
		token = strings.TrimSpace(token)
		return token, found && token != ""
	}
	if isWebSocketUpgrade(r) {
		if token := r.URL.Query().Get("token"); token != "" {
			return token, true
		}
	}
	return "", false
}

func isWebSocketUpgrade(r *http.Request) bool {
	return strings.EqualFold(r.Header.Get("Upgrade"), "websocket")
}
