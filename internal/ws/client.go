package ws

import (
	"log/slog"
	"time"

	"chat-server/internal/models"

	"github.com/goccy/go-json"
	"github.com/gorilla/websocket"
)

const (
	// Time allowed to write a message
	writeWait = 10 * time.Second

	// Time allowed to read next pong message
	pongWait = 60 * time.Second

	// Send pings with this period (must be less than pongWait)
	pingPeriod = (pongWait * 9) / 10

	// Max message size
	maxMessageSize = 512 * 1024 // 512 KB
)

// Client is one live session: a websocket connection bound to an
// authenticated user for its whole lifetime.
type Client struct {
	hub        *Hub
	dispatcher *Dispatcher
	conn       *websocket.Conn
	send       chan []byte
	user       models.User
}

// ReadPump pumps inbound frames into the dispatcher. It owns the connection's
// read side and triggers unregistration when the connection drops.
func (c *Client) ReadPump() {
	defer func() {
		c.hub.unregister <- c
		c.conn.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, message, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				slog.Warn("unexpected close", "user", c.user.ID, "error", err)
			}
			break
		}
		c.handleFrame(message)
	}
}

// WritePump pumps frames from the hub to the websocket and keeps the
// connection alive with pings.
func (c *Client) WritePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
				slog.Error("write failed", "user", c.user.ID, "error", err)
				return
			}

		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				slog.Error("ping failed", "user", c.user.ID, "error", err)
				return
			}
		}
	}
}

func (c *Client) handleFrame(message []byte) {
	var frame models.Frame
	if err := json.Unmarshal(message, &frame); err != nil {
		slog.Error("malformed frame", "user", c.user.ID, "error", err)
		return
	}

	switch frame.Event {
	case models.EventMessagePage:
		var targetID string
		if err := json.Unmarshal(frame.Data, &targetID); err != nil {
			slog.Warn("bad message-page payload", "user", c.user.ID, "error", err)
			return
		}
		c.dispatcher.MessagePage(c.user, targetID)

	case models.EventNewMessage:
		var payload models.NewMessagePayload
		if err := json.Unmarshal(frame.Data, &payload); err != nil {
			slog.Warn("bad new message payload", "user", c.user.ID, "error", err)
			return
		}
		c.dispatcher.NewMessage(c.user, payload)

	case models.EventSidebar:
		var userID string
		if err := json.Unmarshal(frame.Data, &userID); err != nil {
			slog.Warn("bad sidebar payload", "user", c.user.ID, "error", err)
			return
		}
		c.dispatcher.Sidebar(userID)

	case models.EventSeen:
		var otherID string
		if err := json.Unmarshal(frame.Data, &otherID); err != nil {
			slog.Warn("bad seen payload", "user", c.user.ID, "error", err)
			return
		}
		// The caller's side of the conversation comes from the session
		// binding, never from the payload.
		c.dispatcher.Seen(c.user, otherID)

	default:
		slog.Warn("unknown event", "type", frame.Event, "user", c.user.ID)
	}
}
