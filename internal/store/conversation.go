package store

import (
	"errors"
	"fmt"
	"time"

	chaterrors "chat-server/errors"
	"chat-server/internal/models"

	"github.com/dgraph-io/badger/v4"
	"github.com/goccy/go-json"
	"github.com/google/uuid"
)

// pairKey builds the canonical conversation key for an unordered pair.
func pairKey(a, b string) []byte {
	if b < a {
		a, b = b, a
	}
	return []byte("conv:" + a + ":" + b)
}

func messageKey(id string) []byte {
	return []byte("msg:" + id)
}

// FindConversation returns the conversation between two users, in either
// direction, or ErrConversationNotFound.
func (s *Store) FindConversation(a, b string) (models.Conversation, error) {
	var conv models.Conversation
	err := s.db.View(func(txn *badger.Txn) error {
		return getJSON(txn, pairKey(a, b), &conv)
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return models.Conversation{}, chaterrors.ErrConversationNotFound
	}
	if err != nil {
		return models.Conversation{}, err
	}
	return conv, nil
}

// AddMessage stores a message and appends it to the pair's conversation,
// creating the conversation on first contact. The per-pair lock keeps two
// concurrent first messages from creating two conversation documents.
func (s *Store) AddMessage(sender, receiver string, msg models.Message) (models.Conversation, error) {
	if !msg.HasContent() {
		return models.Conversation{}, chaterrors.ErrEmptyMessage
	}
	if msg.ID == "" {
		msg.ID = uuid.New().String()
	}
	if msg.CreatedAt.IsZero() {
		msg.CreatedAt = time.Now().UTC()
	}

	key := pairKey(sender, receiver)
	unlock := s.pairLocks.Lock(string(key))
	defer unlock()

	var conv models.Conversation
	err := s.db.Update(func(txn *badger.Txn) error {
		err := getJSON(txn, key, &conv)
		switch {
		case errors.Is(err, badger.ErrKeyNotFound):
			now := time.Now().UTC()
			conv = models.Conversation{
				ID:        uuid.New().String(),
				Sender:    sender,
				Receiver:  receiver,
				CreatedAt: now,
			}
		case err != nil:
			return err
		}

		msgData, err := json.Marshal(msg)
		if err != nil {
			return fmt.Errorf("marshal message %s: %w", msg.ID, err)
		}
		if err := txn.Set(messageKey(msg.ID), msgData); err != nil {
			return err
		}

		conv.MessageIDs = append(conv.MessageIDs, msg.ID)
		conv.UpdatedAt = msg.CreatedAt
		convData, err := json.Marshal(conv)
		if err != nil {
			return fmt.Errorf("marshal conversation %s: %w", conv.ID, err)
		}
		return txn.Set(key, convData)
	})
	if err != nil {
		return models.Conversation{}, err
	}
	return conv, nil
}

// Messages expands the pair's conversation references into full message
// records, in chronological order. No conversation yet means an empty list,
// never an error.
func (s *Store) Messages(a, b string) ([]models.Message, error) {
	conv, err := s.FindConversation(a, b)
	if errors.Is(err, chaterrors.ErrConversationNotFound) {
		return []models.Message{}, nil
	}
	if err != nil {
		return nil, err
	}

	messages := make([]models.Message, 0, len(conv.MessageIDs))
	err = s.db.View(func(txn *badger.Txn) error {
		for _, id := range conv.MessageIDs {
			var msg models.Message
			if err := getJSON(txn, messageKey(id), &msg); err != nil {
				if errors.Is(err, badger.ErrKeyNotFound) {
					s.log.Warn("conversation references missing message", "conversation", conv.ID, "message", id)
					continue
				}
				return err
			}
			messages = append(messages, msg)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return messages, nil
}

// MarkSeen flips seen=true on every message in the owner/other conversation
// authored by other. The owner's own messages are never touched.
func (s *Store) MarkSeen(owner, other string) error {
	conv, err := s.FindConversation(owner, other)
	if errors.Is(err, chaterrors.ErrConversationNotFound) {
		return nil
	}
	if err != nil {
		return err
	}

	return s.db.Update(func(txn *badger.Txn) error {
		for _, id := range conv.MessageIDs {
			var msg models.Message
			if err := getJSON(txn, messageKey(id), &msg); err != nil {
				if errors.Is(err, badger.ErrKeyNotFound) {
					continue
				}
				return err
			}
			if msg.MsgByUserID != other || msg.Seen {
				continue
			}
			msg.Seen = true
			data, err := json.Marshal(msg)
			if err != nil {
				return fmt.Errorf("marshal message %s: %w", id, err)
			}
			if err := txn.Set(messageKey(id), data); err != nil {
				return err
			}
		}
		return nil
	})
}

func getJSON(txn *badger.Txn, key []byte, out any) error {
	item, err := txn.Get(key)
	if err != nil {
		return err
	}
	return item.Value(func(val []byte) error {
		return json.Unmarshal(val, out)
	})
}
