package ws

import (
	"log/slog"
	"sync"

	"chat-server/internal/models"
	"chat-server/internal/presence"

	"github.com/goccy/go-json"
)

// Hub routes events between live sessions. Every client joins the room named
// by its user id, so delivery to "all connections belonging to user X" is a
// room emit rather than a broadcast.
type Hub struct {
	// rooms: userID -> set of clients
	rooms map[string]map[*Client]bool
	mu    sync.RWMutex

	register   chan *Client
	unregister chan *Client

	presence *presence.Registry
	log      *slog.Logger
}

func NewHub(registry *presence.Registry, log *slog.Logger) *Hub {
	return &Hub{
		rooms:      make(map[string]map[*Client]bool),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		presence:   registry,
		log:        log,
	}
}

func (h *Hub) Run() {
	h.log.Info("hub event loop started")
	for {
		select {
		case client := <-h.register:
			h.registerClient(client)
		case client := <-h.unregister:
			h.unregisterClient(client)
		}
	}
}

func (h *Hub) registerClient(client *Client) {
	h.mu.Lock()
	if h.rooms[client.user.ID] == nil {
		h.rooms[client.user.ID] = make(map[*Client]bool)
	}
	h.rooms[client.user.ID][client] = true
	sessions := len(h.rooms[client.user.ID])
	h.mu.Unlock()

	h.presence.Add(client.user.ID)
	h.log.Info("client registered", "user", client.user.ID, "sessions", sessions)

	// Every connect is announced to everyone so presence badges refresh.
	h.BroadcastAll(models.EventOnlineUser, h.presence.Snapshot())
}

func (h *Hub) unregisterClient(client *Client) {
	h.mu.Lock()
	clients, ok := h.rooms[client.user.ID]
	if !ok || !clients[client] {
		h.mu.Unlock()
		return
	}
	delete(clients, client)
	close(client.send)
	if len(clients) == 0 {
		delete(h.rooms, client.user.ID)
	}
	h.mu.Unlock()

	h.presence.Remove(client.user.ID)
	h.log.Info("client unregistered", "user", client.user.ID)

	h.BroadcastAll(models.EventOnlineUser, h.presence.Snapshot())
}

// EmitTo delivers an event to every session joined to the user's room.
func (h *Hub) EmitTo(userID, event string, payload any) {
	frame, err := encodeFrame(event, payload)
	if err != nil {
		h.log.Error("encode frame failed", "event", event, "user", userID, "error", err)
		return
	}

	h.mu.RLock()
	defer h.mu.RUnlock()
	for client := range h.rooms[userID] {
		h.push(client, frame, event)
	}
}

// BroadcastAll delivers an event to every connected session. Used only for
// presence snapshots.
func (h *Hub) BroadcastAll(event string, payload any) {
	frame, err := encodeFrame(event, payload)
	if err != nil {
		h.log.Error("encode frame failed", "event", event, "error", err)
		return
	}

	h.mu.RLock()
	defer h.mu.RUnlock()
	for _, clients := range h.rooms {
		for client := range clients {
			h.push(client, frame, event)
		}
	}
}

// push hands a frame to a client without blocking. A consumer that cannot
// keep up loses frames rather than stalling the sender; there is no
// backpressure on this path.
func (h *Hub) push(client *Client, frame []byte, event string) {
	select {
	case client.send <- frame:
	default:
		h.log.Warn("send buffer full, dropping frame", "user", client.user.ID, "event", event)
	}
}

func encodeFrame(event string, payload any) ([]byte, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return json.Marshal(models.Frame{Event: event, Data: data})
}
