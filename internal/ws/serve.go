package ws

import (
	"log/slog"
	"net/http"

	"chat-server/internal/auth"

	"github.com/gorilla/websocket"
)

// Server upgrades HTTP requests into authenticated chat sessions.
type Server struct {
	hub        *Hub
	dispatcher *Dispatcher
	resolver   auth.Resolver
	upgrader   websocket.Upgrader
	sendBuffer int
}

// NewServer restricts the handshake to the single configured frontend
// origin. Requests without an Origin header (non-browser clients) pass.
func NewServer(hub *Hub, dispatcher *Dispatcher, resolver auth.Resolver, frontendURL string, sendBuffer int) *Server {
	return &Server{
		hub:        hub,
		dispatcher: dispatcher,
		resolver:   resolver,
		sendBuffer: sendBuffer,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				origin := r.Header.Get("Origin")
				return origin == "" || origin == frontendURL
			},
		},
	}
}

// ServeWS authenticates the credential, upgrades the connection and
// registers the session. A failed credential leaves the connection
// unregistered: no presence entry, no room, no events.
func (s *Server) ServeWS(w http.ResponseWriter, r *http.Request) {
	token := r.URL.Query().Get("token")
	if token == "" {
		token = r.Header.Get("Authorization")
	}
	if token == "" {
		slog.Warn("handshake without token", "from", r.RemoteAddr)
		http.Error(w, "Unauthorized: token required", http.StatusUnauthorized)
		return
	}

	user, err := s.resolver.Resolve(token)
	if err != nil {
		slog.Warn("handshake rejected", "from", r.RemoteAddr, "error", err)
		http.Error(w, "Unauthorized: invalid token", http.StatusUnauthorized)
		return
	}

	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		slog.Error("upgrade failed", "user", user.ID, "error", err)
		return
	}

	slog.Info("session opened", "user", user.ID, "from", r.RemoteAddr)

	client := &Client{
		hub:        s.hub,
		dispatcher: s.dispatcher,
		conn:       conn,
		send:       make(chan []byte, s.sendBuffer),
		user:       user,
	}
	client.hub.register <- client

	go client.WritePump()
	go client.ReadPump()
}
