package client

import (
	"context"
	"fmt"
	"net/http"

	"github.com/gorilla/websocket"

	"privatenotes/internal/note/model"
)

// EventsURL is the websocket address of the change feed.
func (c *Client) EventsURL() string {
	u := *c.baseURL
	switch u.Scheme {
	case "https":
		u.Scheme = "wss"
	default:
		u.Scheme = "ws"
	}
	u.Path += "/api/notes/events"
	return u.String()
}

// Subscribe streams change-feed events to fn until ctx is cancelled or the
// connection drops. fn runs on the reading goroutine.
func (c *Client) Subscribe(ctx context.Context, fn func(model.NoteEvent)) error {
	header := http.Header{}
	token, err := bearer(c.source)
	if err != nil {
		return err
	}
	if token != nil {
		header.Set("Authorization", token.Type()+" "+token.AccessToken)
	}

	conn, resp, err := websocket.DefaultDialer.DialContext(ctx, c.EventsURL(), header)
	if err != nil {
		if resp != nil {
			return &HTTPError{StatusCode: resp.StatusCode, Message: "change feed unavailable"}
		}
		return fmt.Errorf("dial change feed: %w", err)
	}
	defer conn.Close()

	stop := context.AfterFunc(ctx, func() { conn.Close() })
	defer stop()

	for {
		var ev model.NoteEvent
		if err := conn.ReadJSON(&ev); err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			return fmt.Errorf("change feed closed: %w", err)
		}
		fn(ev)
	}
}
