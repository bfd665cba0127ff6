package store

import (
	"testing"
	"time"

	"chat-server/internal/models"

	"github.com/stretchr/testify/require"
)

func TestSidebarFor_AnnotatesAndOrders(t *testing.T) {
	req := require.New(t)
	s := openTestStore(t)

	req.NoError(s.PutUser(models.User{ID: "bob", Name: "Bob", Email: "bob@example.com"}))
	req.NoError(s.PutUser(models.User{ID: "carol", Name: "Carol", Email: "carol@example.com"}))

	base := time.Now().UTC()

	// Older thread with bob: two unseen messages from bob, one from alice.
	_, err := s.AddMessage("alice", "bob", models.Message{Text: "hi bob", MsgByUserID: "alice", CreatedAt: base})
	req.NoError(err)
	_, err = s.AddMessage("alice", "bob", models.Message{Text: "hi alice", MsgByUserID: "bob", CreatedAt: base.Add(time.Second)})
	req.NoError(err)
	_, err = s.AddMessage("alice", "bob", models.Message{Text: "you there?", MsgByUserID: "bob", CreatedAt: base.Add(2 * time.Second)})
	req.NoError(err)

	// Newer thread with carol.
	_, err = s.AddMessage("carol", "alice", models.Message{Text: "lunch?", MsgByUserID: "carol", CreatedAt: base.Add(time.Minute)})
	req.NoError(err)

	entries, err := s.SidebarFor("alice")
	req.NoError(err)
	req.Len(entries, 2)

	// Most recent activity first.
	req.Equal("carol", entries[0].UserDetails.ID)
	req.Equal("Carol", entries[0].UserDetails.Name)
	req.Equal(1, entries[0].UnseenMsg)
	req.NotNil(entries[0].LastMsg)
	req.Equal("lunch?", entries[0].LastMsg.Text)

	req.Equal("bob", entries[1].UserDetails.ID)
	req.Equal(2, entries[1].UnseenMsg)
	req.Equal("you there?", entries[1].LastMsg.Text)
}

func TestSidebarFor_UnreadDropsAfterSeen(t *testing.T) {
	req := require.New(t)
	s := openTestStore(t)
	req.NoError(s.PutUser(models.User{ID: "bob", Name: "Bob"}))

	_, err := s.AddMessage("alice", "bob", models.Message{Text: "ping", MsgByUserID: "bob"})
	req.NoError(err)

	entries, err := s.SidebarFor("alice")
	req.NoError(err)
	req.Len(entries, 1)
	req.Equal(1, entries[0].UnseenMsg)

	req.NoError(s.MarkSeen("alice", "bob"))

	entries, err = s.SidebarFor("alice")
	req.NoError(err)
	req.Equal(0, entries[0].UnseenMsg)
}

func TestSidebarFor_EmptyForUserWithoutConversations(t *testing.T) {
	req := require.New(t)
	s := openTestStore(t)

	entries, err := s.SidebarFor("loner")
	req.NoError(err)
	req.Empty(entries)
}

func TestSidebarFor_MissingCounterpartProfileStillListed(t *testing.T) {
	req := require.New(t)
	s := openTestStore(t)

	_, err := s.AddMessage("alice", "ghost", models.Message{Text: "boo", MsgByUserID: "ghost"})
	req.NoError(err)

	entries, err := s.SidebarFor("alice")
	req.NoError(err)
	req.Len(entries, 1)
	req.Equal("ghost", entries[0].UserDetails.ID)
	req.Empty(entries[0].UserDetails.Name)
}
