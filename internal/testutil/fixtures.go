package testutil

import (
	"fmt"
	"sync/atomic"
	"time"

	"messages-service/internal/domain"
)

// Counter for generating unique IDs
var idCounter atomic.Int64

// MessageOptions allows customizing message fixture creation
type MessageOptions struct {
	ID          int64
	MessageText string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// NewTestMessage creates a test message with sensible defaults
// Pass options to override specific fields
func NewTestMessage(opts ...func(*MessageOptions)) *domain.Message {
	id := idCounter.Add(1)
	o := &MessageOptions{
		ID:          id,
		MessageText: fmt.Sprintf("Test message %d", id),
	}

	for _, opt := range opts {
		opt(o)
	}

	if o.CreatedAt.IsZero() {
		o.CreatedAt = time.Now().UTC()
	}
	if o.UpdatedAt.IsZero() {
		o.UpdatedAt = o.CreatedAt
	}

	return &domain.Message{
		ID:          o.ID,
		MessageText: o.MessageText,
		CreatedAt:   o.CreatedAt,
		UpdatedAt:   o.UpdatedAt,
	}
}

// Message option functions

// WithMessageID sets the message ID
func WithMessageID(id int64) func(*MessageOptions) {
	return func(o *MessageOptions) {
		o.ID = id
	}
}

// WithMessageText sets the message text
func WithMessageText(text string) func(*MessageOptions) {
	return func(o *MessageOptions) {
		o.MessageText = text
	}
}

// WithMessageCreatedAt sets the creation timestamp
func WithMessageCreatedAt(t time.Time) func(*MessageOptions) {
	return func(o *MessageOptions) {
		o.CreatedAt = t
	}
}

// WithMessageUpdatedAt sets the last modification timestamp
func WithMessageUpdatedAt(t time.Time) func(*MessageOptions) {
	return func(o *MessageOptions) {
		o.UpdatedAt = t
	}
}

// NewTestMessages creates count messages with sequential IDs starting at 1
func NewTestMessages(count int) []*domain.Message {
	base := time.Now().UTC().Add(-time.Duration(count) * time.Minute)
	messages := make([]*domain.Message, count)
	for i := 0; i < count; i++ {
		created := base.Add(time.Duration(i) * time.Minute)
		messages[i] = NewTestMessage(
			WithMessageID(int64(i+1)),
			WithMessageText(fmt.Sprintf("Message %d", i+1)),
			WithMessageCreatedAt(created),
		)
	}
	return messages
}
