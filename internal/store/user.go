package store

import (
	"errors"
	"fmt"

	chaterrors "chat-server/errors"
	"chat-server/internal/models"

	"github.com/dgraph-io/badger/v4"
	"github.com/goccy/go-json"
)

func userKey(id string) []byte {
	return []byte("user:" + id)
}

// PutUser persists a user profile. Accounts are managed by an external
// service; this exists for wiring and tests, the dispatcher never calls it.
func (s *Store) PutUser(user models.User) error {
	data, err := json.Marshal(user)
	if err != nil {
		return fmt.Errorf("marshal user %s: %w", user.ID, err)
	}
	return s.db.Update(func(txn *badger.Txn) error {
		return txn.Set(userKey(user.ID), data)
	})
}

func (s *Store) GetUser(id string) (models.User, error) {
	var user models.User
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(userKey(id))
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			return json.Unmarshal(val, &user)
		})
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return models.User{}, chaterrors.ErrUserNotFound
	}
	if err != nil {
		return models.User{}, err
	}
	return user, nil
}
