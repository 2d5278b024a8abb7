package socket

import (
	"context"
	"encoding/json"
	"sync"

	"privatenotes/internal/note/model"
	"privatenotes/pkg/logger"
)

// ConnectedType is sent once to every new connection after it has joined
// its owner's room.
const ConnectedType = "CONNECTED"

const (
	broadcastBufferSize = 64
	sendBufferSize      = 256
)

// Hub fans note events out to the open connections of the note's owner.
// Rooms are keyed by user id; events never cross rooms.
type Hub struct {
	Rooms      map[string]map[*Client]bool
	Broadcast  chan model.NoteEvent
	Register   chan *Client
	Unregister chan *Client

	mu      sync.Mutex
	stopped chan struct{}
}

func NewHub() *Hub {
	return &Hub{
		Rooms:      make(map[string]map[*Client]bool),
		Broadcast:  make(chan model.NoteEvent, broadcastBufferSize),
		Register:   make(chan *Client),
		Unregister: make(chan *Client),
		stopped:    make(chan struct{}),
	}
}

// Run owns the room table until ctx is cancelled, then closes every
// connection.
func (h *Hub) Run(ctx context.Context) {
	defer close(h.stopped)

	for {
		select {
		case <-ctx.Done():
			h.mu.Lock()
			for userID, clients := range h.Rooms {
				for client := range clients {
					close(client.Send)
				}
				delete(h.Rooms, userID)
			}
			h.mu.Unlock()
			return

		case client := <-h.Register:
			h.mu.Lock()
			if h.Rooms[client.UserID] == nil {
				h.Rooms[client.UserID] = make(map[*Client]bool)
			}
			h.Rooms[client.UserID][client] = true
			h.mu.Unlock()

			hello, _ := json.Marshal(model.NoteEvent{Type: ConnectedType, UserID: client.UserID})
			client.Send <- hello

		case client := <-h.Unregister:
			h.mu.Lock()
			h.removeLocked(client)
			h.mu.Unlock()

		case event := <-h.Broadcast:
			payload, err := json.Marshal(event)
			if err != nil {
				logger.Sugar.Errorf("Error marshalling note event: %v", err)
				continue
			}

			h.mu.Lock()
			for client := range h.Rooms[event.UserID] {
				select {
				case client.Send <- payload:
				default:
					// The client is lagging; drop it rather than block the hub.
					logger.Sugar.Warnf("Client %s's send buffer is full. Unregistering.", client.UserID)
					h.removeLocked(client)
				}
			}
			h.mu.Unlock()
		}
	}
}

func (h *Hub) removeLocked(client *Client) {
	room, ok := h.Rooms[client.UserID]
	if !ok || !room[client] {
		return
	}
	delete(room, client)
	close(client.Send)
	if len(room) == 0 {
		delete(h.Rooms, client.UserID)
	}
}

// Publish queues an event without waiting for delivery. Events are
// dropped when the hub is stopped or saturated; the REST response is the
// source of truth and the feed is best effort.
func (h *Hub) Publish(event model.NoteEvent) {
	select {
	case h.Broadcast <- event:
	case <-h.stopped:
	default:
		logger.Sugar.Warnf("Dropping %s event for note %s: broadcast queue full", event.Type, event.NoteID)
	}
}

// ClientCount returns the number of open connections for userID.
func (h *Hub) ClientCount(userID string) int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.Rooms[userID])
}
