package models

import (
	"time"

	"github.com/goccy/go-json"
)

// Inbound event names (client -> server).
const (
	EventMessagePage = "message-page"
	EventNewMessage  = "new message"
	EventSidebar     = "sidebar"
	EventSeen        = "seen"
)

// Outbound event names (server -> client).
const (
	EventOnlineUser   = "onlineUser"
	EventMessageUser  = "message-user"
	EventMessage      = "message"
	EventConversation = "conversation"
	EventError        = "error"
)

// Frame is the wire envelope for every event in both directions.
type Frame struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data"`
}

// NewMessagePayload is the inbound "new message" body.
type NewMessagePayload struct {
	Sender      string `json:"sender" validate:"required"`
	Receiver    string `json:"receiver" validate:"required"`
	Text        string `json:"text"`
	ImageURL    string `json:"imageUrl"`
	VideoURL    string `json:"videoUrl"`
	MsgByUserID string `json:"msgByUserId" validate:"required"`
}

// UserPage is the "message-user" payload: a public profile annotated with
// live presence.
type UserPage struct {
	ID         string `json:"_id"`
	Name       string `json:"name"`
	Email      string `json:"email"`
	ProfilePic string `json:"profile_pic"`
	Online     bool   `json:"online"`
}

// SidebarEntry is one row of the "conversation" payload.
type SidebarEntry struct {
	ID          string    `json:"_id"`
	UserDetails UserPage  `json:"userDetails"`
	UnseenMsg   int       `json:"unseenMsg"`
	LastMsg     *Message  `json:"lastMsg"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// ErrorEvent is pushed to the triggering session when a handler fails, so
// clients can retry or surface a message instead of waiting forever.
type ErrorEvent struct {
	CorrelationID string `json:"correlationId"`
	Code          string `json:"code"`
	Recoverable   bool   `json:"recoverable"`
}
