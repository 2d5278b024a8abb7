// Package supabase wires the Supabase Auth client for a single request.
package supabase

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"sync"
	"time"

	auth "github.com/supabase-community/auth-go"
)

const defaultTimeout = 10 * time.Second

// Call is an auth-go client bound to one context. It records the status of
// the last response so callers can tell a rejected credential from an outage;
// auth-go only reports failures as formatted errors.
type Call struct {
	auth.Client

	ctx  context.Context
	base http.RoundTripper

	mu     sync.Mutex
	status int
}

// NewCall builds a client against {supabaseURL}/auth/v1. hc supplies the
// transport and timeout; nil uses the defaults.
func NewCall(ctx context.Context, supabaseURL, anonKey string, hc *http.Client) *Call {
	if hc == nil {
		hc = &http.Client{Timeout: defaultTimeout}
	}
	base := hc.Transport
	if base == nil {
		base = http.DefaultTransport
	}
	c := &Call{ctx: ctx, base: base}
	c.Client = auth.New("", anonKey).
		WithCustomAuthURL(AuthURL(supabaseURL)).
		WithClient(http.Client{Transport: c, Timeout: hc.Timeout, Jar: hc.Jar})
	return c
}

// AuthURL is the Supabase Auth base for a project URL.
func AuthURL(supabaseURL string) string {
	return strings.TrimRight(supabaseURL, "/") + "/auth/v1"
}

func (c *Call) RoundTrip(req *http.Request) (*http.Response, error) {
	resp, err := c.base.RoundTrip(req.WithContext(c.ctx))
	if resp != nil {
		c.mu.Lock()
		c.status = resp.StatusCode
		c.mu.Unlock()
	}
	return resp, err
}

// Status is the HTTP status of the last response, 0 if none arrived.
func (c *Call) Status() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.status
}

// Rejected reports whether the auth server refused the credential.
func (c *Call) Rejected() bool {
	s := c.Status()
	return s == http.StatusUnauthorized || s == http.StatusForbidden
}

// Failed reports whether a response arrived with a non-2xx status.
func (c *Call) Failed() bool {
	s := c.Status()
	return s != 0 && (s < 200 || s >= 300)
}

// Message pulls the human readable text out of an auth-go failure, which
// carries the raw response body after the status code.
func Message(err error) string {
	if err == nil {
		return ""
	}
	text := err.Error()
	if strings.HasPrefix(text, "response status code") {
		if _, body, ok := strings.Cut(text, ": "); ok {
			text = body
		}
	}
	text = strings.TrimSpace(text)

	var body struct {
		Description string `json:"error_description"`
		Msg         string `json:"msg"`
		Message     string `json:"message"`
		Error       string `json:"error"`
	}
	if json.Unmarshal([]byte(text), &body) == nil {
		for _, candidate := range []string{body.Description, body.Msg, body.Message, body.Error} {
			if candidate != "" {
				return candidate
			}
		}
	}
	return text
}
