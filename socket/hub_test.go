package socket

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"privatenotes/internal/note/model"
)

// Helper function to read messages from a WebSocket connection with a timeout.
func readEvent(t *testing.T, conn *websocket.Conn) model.NoteEvent {
	t.Helper()
	var ev model.NoteEvent
	conn.SetReadDeadline(time.Now().Add(time.Second))
	_, p, err := conn.ReadMessage()
	require.NoError(t, err, "Failed to read message from WebSocket")
	require.NoError(t, json.Unmarshal(p, &ev), "Failed to unmarshal NoteEvent JSON")
	return ev
}

func startHub(t *testing.T) (*Hub, string) {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	hub := NewHub()
	go hub.Run(ctx)

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// The auth gate is exercised elsewhere; the user comes from the query here.
		ServeWs(hub, w, r, r.URL.Query().Get("user_id"))
	}))
	t.Cleanup(func() {
		server.Close()
		cancel()
	})
	return hub, "ws" + strings.TrimPrefix(server.URL, "http")
}

func dial(t *testing.T, wsURL, userID string) *websocket.Conn {
	t.Helper()
	conn, _, err := websocket.DefaultDialer.Dial(wsURL+"/?user_id="+userID, nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })

	hello := readEvent(t, conn)
	require.Equal(t, ConnectedType, hello.Type)
	require.Equal(t, userID, hello.UserID)
	return conn
}

func TestHubDeliversOnlyToOwner(t *testing.T) {
	hub, wsURL := startHub(t)

	aliceTab1 := dial(t, wsURL, "alice")
	aliceTab2 := dial(t, wsURL, "alice")
	bob := dial(t, wsURL, "bob")
	assert.Equal(t, 2, hub.ClientCount("alice"))
	assert.Equal(t, 1, hub.ClientCount("bob"))

	note := &model.Note{ID: "n1", UserID: "alice", Title: "T", Content: "C"}
	hub.Publish(model.NoteEvent{Type: model.NoteCreatedType, NoteID: "n1", UserID: "alice", Note: note})

	for _, conn := range []*websocket.Conn{aliceTab1, aliceTab2} {
		ev := readEvent(t, conn)
		assert.Equal(t, model.NoteCreatedType, ev.Type)
		assert.Equal(t, "n1", ev.NoteID)
		require.NotNil(t, ev.Note)
		assert.Equal(t, "T", ev.Note.Title)
	}

	bob.SetReadDeadline(time.Now().Add(200 * time.Millisecond))
	_, _, err := bob.ReadMessage()
	assert.Error(t, err, "bob must not receive alice's events")
}

func TestHubUnregistersClosedConnections(t *testing.T) {
	hub, wsURL := startHub(t)

	conn := dial(t, wsURL, "carol")
	require.Equal(t, 1, hub.ClientCount("carol"))

	conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
	conn.Close()

	assert.Eventually(t, func() bool { return hub.ClientCount("carol") == 0 }, 2*time.Second, 10*time.Millisecond)
}

func TestPublishDoesNotBlockWithoutRunningHub(t *testing.T) {
	hub := NewHub()
	done := make(chan struct{})
	go func() {
		for i := 0; i < broadcastBufferSize+10; i++ {
			hub.Publish(model.NoteEvent{Type: model.NoteDeletedType, NoteID: "n", UserID: "u"})
		}
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Publish blocked")
	}
}
