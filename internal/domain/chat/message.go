package chat

import (
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
)

const maxContentLen = 2000

var (
	ErrEmptyContent   = errors.New("empty message content")
	ErrContentTooLong = errors.New("message content too long")
)

// Message is one append-only chat entry scoped to a job. Messages are never
// edited or deleted; the persisted history is the source of truth and the
// socket channel is only a relay.
type Message struct {
	ID        uuid.UUID `json:"id"`
	JobID     uuid.UUID `json:"jobId"`
	SenderID  uuid.UUID `json:"senderId"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"createdAt"`
}

func ValidateContent(content string) error {
	trimmed := strings.TrimSpace(content)
	if trimmed == "" {
		return ErrEmptyContent
	}
	if len(trimmed) > maxContentLen {
		return ErrContentTooLong
	}
	return nil
}
