package store

import (
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	chaterrors "chat-server/errors"
	"chat-server/internal/models"

	"github.com/stretchr/testify/require"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	s, err := Open(t.TempDir(), log)
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func textMessage(author, text string) models.Message {
	return models.Message{Text: text, MsgByUserID: author}
}

func TestAddMessage_CreatesSingleConversationPerPair(t *testing.T) {
	req := require.New(t)
	s := openTestStore(t)

	first, err := s.AddMessage("alice", "bob", textMessage("alice", "hi"))
	req.NoError(err)

	// Reverse direction must land in the same conversation document.
	second, err := s.AddMessage("bob", "alice", textMessage("bob", "hey"))
	req.NoError(err)
	req.Equal(first.ID, second.ID)

	conv, err := s.FindConversation("bob", "alice")
	req.NoError(err)
	req.Equal(first.ID, conv.ID)
	req.Len(conv.MessageIDs, 2)
}

func TestAddMessage_ConcurrentSendsKeepOneConversation(t *testing.T) {
	req := require.New(t)
	s := openTestStore(t)

	const sends = 20
	var wg sync.WaitGroup
	for i := 0; i < sends; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			sender, receiver := "alice", "bob"
			if i%2 == 0 {
				sender, receiver = receiver, sender
			}
			_, err := s.AddMessage(sender, receiver, textMessage(sender, "msg"))
			require.NoError(t, err)
		}(i)
	}
	wg.Wait()

	conv, err := s.FindConversation("alice", "bob")
	req.NoError(err)
	req.Len(conv.MessageIDs, sends)

	messages, err := s.Messages("alice", "bob")
	req.NoError(err)
	req.Len(messages, sends)
}

func TestAddMessage_RejectsEmptyPayload(t *testing.T) {
	req := require.New(t)
	s := openTestStore(t)

	_, err := s.AddMessage("alice", "bob", models.Message{MsgByUserID: "alice"})
	req.ErrorIs(err, chaterrors.ErrEmptyMessage)

	_, err = s.FindConversation("alice", "bob")
	req.ErrorIs(err, chaterrors.ErrConversationNotFound)
}

func TestMessages_EmptyListWhenNoConversation(t *testing.T) {
	req := require.New(t)
	s := openTestStore(t)

	messages, err := s.Messages("alice", "stranger")
	req.NoError(err)
	req.Empty(messages)
}

func TestMessages_ChronologicalOrder(t *testing.T) {
	req := require.New(t)
	s := openTestStore(t)

	for _, text := range []string{"one", "two", "three"} {
		_, err := s.AddMessage("alice", "bob", textMessage("alice", text))
		req.NoError(err)
	}

	messages, err := s.Messages("bob", "alice")
	req.NoError(err)
	req.Len(messages, 3)
	req.Equal("one", messages[0].Text)
	req.Equal("three", messages[2].Text)
	req.False(messages[0].Seen)
}

func TestMarkSeen_FlipsOnlyCounterpartMessages(t *testing.T) {
	req := require.New(t)
	s := openTestStore(t)

	_, err := s.AddMessage("alice", "bob", textMessage("alice", "from alice"))
	req.NoError(err)
	_, err = s.AddMessage("alice", "bob", textMessage("bob", "from bob"))
	req.NoError(err)

	// Alice reads the thread: only bob's messages become seen.
	req.NoError(s.MarkSeen("alice", "bob"))

	messages, err := s.Messages("alice", "bob")
	req.NoError(err)
	for _, msg := range messages {
		switch msg.MsgByUserID {
		case "bob":
			req.True(msg.Seen)
		case "alice":
			req.False(msg.Seen)
		}
	}
}

func TestMarkSeen_NoConversationIsANoop(t *testing.T) {
	req := require.New(t)
	s := openTestStore(t)
	req.NoError(s.MarkSeen("alice", "nobody"))
}

func TestPutGetUser(t *testing.T) {
	req := require.New(t)
	s := openTestStore(t)

	user := models.User{ID: "u1", Name: "Alice", Email: "alice@example.com", ProfilePic: "pic.png"}
	req.NoError(s.PutUser(user))

	got, err := s.GetUser("u1")
	req.NoError(err)
	req.Equal(user, got)

	_, err = s.GetUser("missing")
	req.ErrorIs(err, chaterrors.ErrUserNotFound)
}

func TestAddMessage_UpdatesConversationTimestamp(t *testing.T) {
	req := require.New(t)
	s := openTestStore(t)

	first, err := s.AddMessage("alice", "bob", textMessage("alice", "hi"))
	req.NoError(err)

	later := models.Message{Text: "later", MsgByUserID: "bob", CreatedAt: time.Now().UTC().Add(time.Minute)}
	second, err := s.AddMessage("bob", "alice", later)
	req.NoError(err)
	req.True(second.UpdatedAt.After(first.UpdatedAt))
}
