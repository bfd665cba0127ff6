package models

import "time"

// User is created and mutated by the account service; this server only
// reads it.
type User struct {
	ID         string `json:"_id"`
	Name       string `json:"name"`
	Email      string `json:"email"`
	ProfilePic string `json:"profile_pic"`
}

// Message is immutable after creation except for the Seen flag.
type Message struct {
	ID          string    `json:"_id"`
	Text        string    `json:"text,omitempty"`
	ImageURL    string    `json:"imageUrl,omitempty"`
	VideoURL    string    `json:"videoUrl,omitempty"`
	MsgByUserID string    `json:"msgByUserId"`
	Seen        bool      `json:"seen"`
	CreatedAt   time.Time `json:"createdAt"`
}

// HasContent reports whether at least one payload field is populated.
func (m Message) HasContent() bool {
	return m.Text != "" || m.ImageURL != "" || m.VideoURL != ""
}

// Conversation is the single document for an unordered {sender, receiver}
// pair. MessageIDs is insertion-ordered, which is also chronological order.
type Conversation struct {
	ID         string    `json:"_id"`
	Sender     string    `json:"sender"`
	Receiver   string    `json:"receiver"`
	MessageIDs []string  `json:"messages"`
	CreatedAt  time.Time `json:"createdAt"`
	UpdatedAt  time.Time `json:"updatedAt"`
}

// Counterpart returns the other participant's id.
func (c Conversation) Counterpart(userID string) string {
	if c.Sender == userID {
		return c.Receiver
	}
	return c.Sender
}
