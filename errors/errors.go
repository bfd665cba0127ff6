package errors

import "fmt"

var (
	ErrUserNotFound         = fmt.Errorf("user not found")
	ErrConversationNotFound = fmt.Errorf("conversation not found")
	ErrMessageNotFound      = fmt.Errorf("message not found")
	ErrEmptyMessage         = fmt.Errorf("message has no text, image or video content")
	ErrInvalidToken         = fmt.Errorf("invalid or expired token")
)
