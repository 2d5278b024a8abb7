package client

import (
	"errors"
	"net/http"

	"golang.org/x/oauth2"
)

// ErrNoSession is returned by token sources when nobody is signed in.
// Requests then go out without an Authorization header.
var ErrNoSession = errors.New("no active session")

// StaticToken serves a pre-issued access token. An empty token means no
// session.
func StaticToken(accessToken string) oauth2.TokenSource {
	if accessToken == "" {
		return noSession{}
	}
	return oauth2.StaticTokenSource(&oauth2.Token{AccessToken: accessToken, TokenType: "Bearer"})
}

type noSession struct{}

func (noSession) Token() (*oauth2.Token, error) { return nil, ErrNoSession }

// authTransport resolves the credential for every request and sets it as
// a bearer header when one exists.
type authTransport struct {
	source oauth2.TokenSource
	base   http.RoundTripper
}

func (t *authTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	token, err := bearer(t.source)
	if err != nil {
		if req.Body != nil {
			req.Body.Close()
		}
		return nil, err
	}
	if token == nil {
		return t.base.RoundTrip(req)
	}

	// RoundTrippers must not modify the caller's request.
	authed := req.Clone(req.Context())
	token.SetAuthHeader(authed)
	return t.base.RoundTrip(authed)
}

// bearer returns the current token, nil when there is no session.
func bearer(source oauth2.TokenSource) (*oauth2.Token, error) {
	if source == nil {
		return nil, nil
	}
	token, err := source.Token()
	if errors.Is(err, ErrNoSession) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	if token == nil || token.AccessToken == "" {
		return nil, nil
	}
	return token, nil
}
