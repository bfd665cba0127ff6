package ws

import (
	"errors"
	"log/slog"
	"time"

	chaterrors "chat-server/errors"
	"chat-server/internal/models"
	"chat-server/internal/presence"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
)

// Emitter is the slice of the hub the dispatcher pushes through.
type Emitter interface {
	EmitTo(userID, event string, payload any)
	BroadcastAll(event string, payload any)
}

// ConversationStore is the persistence contract the dispatcher consumes.
type ConversationStore interface {
	GetUser(id string) (models.User, error)
	AddMessage(sender, receiver string, msg models.Message) (models.Conversation, error)
	Messages(a, b string) ([]models.Message, error)
	MarkSeen(owner, other string) error
	SidebarFor(userID string) ([]models.SidebarEntry, error)
}

// Dispatcher orchestrates persistence and live delivery for the inbound
// event surface. Failures are confined to the triggering event: they are
// logged, reported to the caller as an error event, and never take the
// session down.
type Dispatcher struct {
	store    ConversationStore
	presence *presence.Registry
	emitter  Emitter
	validate *validator.Validate
	log      *slog.Logger
}

func NewDispatcher(store ConversationStore, registry *presence.Registry, emitter Emitter, log *slog.Logger) *Dispatcher {
	return &Dispatcher{
		store:    store,
		presence: registry,
		emitter:  emitter,
		validate: validator.New(),
		log:      log,
	}
}

// MessagePage serves the thread view: the target's public profile with its
// online flag, then the full message history with that target.
func (d *Dispatcher) MessagePage(viewer models.User, targetID string) {
	target, err := d.store.GetUser(targetID)
	if err != nil {
		d.fail(viewer.ID, "message-page", err)
		return
	}

	d.emitter.EmitTo(viewer.ID, models.EventMessageUser, models.UserPage{
		ID:         target.ID,
		Name:       target.Name,
		Email:      target.Email,
		ProfilePic: target.ProfilePic,
		Online:     d.presence.Contains(targetID),
	})

	messages, err := d.store.Messages(viewer.ID, targetID)
	if err != nil {
		d.fail(viewer.ID, "message-page", err)
		return
	}
	d.emitter.EmitTo(viewer.ID, models.EventMessage, messages)
}

// NewMessage persists a message and fans the result out: the refreshed
// thread to both rooms, then both recomputed sidebars. Four pushes total.
func (d *Dispatcher) NewMessage(sender models.User, payload models.NewMessagePayload) {
	if err := d.validate.Struct(payload); err != nil {
		d.fail(sender.ID, "new message", err)
		return
	}

	msg := models.Message{
		Text:        payload.Text,
		ImageURL:    payload.ImageURL,
		VideoURL:    payload.VideoURL,
		MsgByUserID: payload.MsgByUserID,
		CreatedAt:   time.Now().UTC(),
	}
	if _, err := d.store.AddMessage(payload.Sender, payload.Receiver, msg); err != nil {
		d.fail(sender.ID, "new message", err)
		return
	}

	messages, err := d.store.Messages(payload.Sender, payload.Receiver)
	if err != nil {
		d.fail(sender.ID, "new message", err)
		return
	}
	d.emitter.EmitTo(payload.Sender, models.EventMessage, messages)
	d.emitter.EmitTo(payload.Receiver, models.EventMessage, messages)

	d.pushSidebar(payload.Sender)
	d.pushSidebar(payload.Receiver)
}

// Sidebar recomputes and emits one user's conversation list. No persistence
// side effect.
func (d *Dispatcher) Sidebar(userID string) {
	d.pushSidebar(userID)
}

// Seen marks every message authored by the other party in the caller's
// conversation as seen, then refreshes both sidebars. The caller's own
// messages are never flipped.
func (d *Dispatcher) Seen(viewer models.User, otherID string) {
	if err := d.store.MarkSeen(viewer.ID, otherID); err != nil {
		d.fail(viewer.ID, "seen", err)
		return
	}
	d.pushSidebar(viewer.ID)
	d.pushSidebar(otherID)
}

func (d *Dispatcher) pushSidebar(userID string) {
	entries, err := d.store.SidebarFor(userID)
	if err != nil {
		d.fail(userID, "sidebar", err)
		return
	}
	for i := range entries {
		entries[i].UserDetails.Online = d.presence.Contains(entries[i].UserDetails.ID)
	}
	d.emitter.EmitTo(userID, models.EventConversation, entries)
}

// fail logs a handler failure and reports it to the triggering user's room
// with a correlation id, so clients can retry instead of waiting forever.
func (d *Dispatcher) fail(userID, event string, err error) {
	correlationID := uuid.New().String()
	d.log.Error("event handler failed",
		"event", event, "user", userID, "correlationId", correlationID, "error", err)

	code := "persistence_failure"
	switch {
	case errors.Is(err, chaterrors.ErrUserNotFound):
		code = "user_not_found"
	case errors.Is(err, chaterrors.ErrEmptyMessage):
		code = "empty_message"
	default:
		var verr validator.ValidationErrors
		if errors.As(err, &verr) {
			code = "invalid_payload"
		}
	}

	d.emitter.EmitTo(userID, models.EventError, models.ErrorEvent{
		CorrelationID: correlationID,
		Code:          code,
		Recoverable:   true,
	})
}
