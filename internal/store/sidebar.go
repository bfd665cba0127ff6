package store

import (
	"errors"
	"sort"

	chaterrors "chat-server/errors"
	"chat-server/internal/models"

	"github.com/dgraph-io/badger/v4"
	"github.com/goccy/go-json"
	"github.com/samber/lo"
)

// SidebarFor reconstructs a user's conversation list: every conversation the
// user participates in, annotated with the counterpart's profile, the last
// message and the count of unseen counterpart messages, most recent activity
// first. The online flag is presence data and is filled in by the caller.
func (s *Store) SidebarFor(userID string) ([]models.SidebarEntry, error) {
	var conversations []models.Conversation
	err := s.db.View(func(txn *badger.Txn) error {
		prefix := []byte("conv:")
		options := badger.DefaultIteratorOptions
		options.Prefix = prefix
		it := txn.NewIterator(options)
		defer it.Close()

		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			var conv models.Conversation
			err := it.Item().Value(func(val []byte) error {
				return json.Unmarshal(val, &conv)
			})
			if err != nil {
				return err
			}
			if conv.Sender == userID || conv.Receiver == userID {
				conversations = append(conversations, conv)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	entries := make([]models.SidebarEntry, 0, len(conversations))
	for _, conv := range conversations {
		entry, err := s.sidebarEntry(userID, conv)
		if err != nil {
			return nil, err
		}
		entries = append(entries, entry)
	}

	sort.Slice(entries, func(i, j int) bool {
		return entries[i].UpdatedAt.After(entries[j].UpdatedAt)
	})
	return entries, nil
}

func (s *Store) sidebarEntry(userID string, conv models.Conversation) (models.SidebarEntry, error) {
	other := conv.Counterpart(userID)

	// A missing profile still yields an entry so the sidebar never loses a
	// conversation; name fields just stay empty.
	counterpart, err := s.GetUser(other)
	if err != nil && !errors.Is(err, chaterrors.ErrUserNotFound) {
		s.log.Warn("sidebar counterpart lookup failed", "user", other, "error", err)
	}

	entry := models.SidebarEntry{
		ID: conv.ID,
		UserDetails: models.UserPage{
			ID:         other,
			Name:       counterpart.Name,
			Email:      counterpart.Email,
			ProfilePic: counterpart.ProfilePic,
		},
		UpdatedAt: conv.UpdatedAt,
	}

	err = s.db.View(func(txn *badger.Txn) error {
		for i, id := range conv.MessageIDs {
			var msg models.Message
			if err := getJSON(txn, messageKey(id), &msg); err != nil {
				if errors.Is(err, badger.ErrKeyNotFound) {
					continue
				}
				return err
			}
			if msg.MsgByUserID == other && !msg.Seen {
				entry.UnseenMsg++
			}
			if i == len(conv.MessageIDs)-1 {
				entry.LastMsg = lo.ToPtr(msg)
			}
		}
		return nil
	})
	if err != nil {
		return models.SidebarEntry{}, err
	}
	return entry, nil
}
