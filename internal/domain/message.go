package domain

import (
	"context"
	"time"
)

// MaxMessageTextLength is the upper bound for message_text, in characters, after trimming
const MaxMessageTextLength = 255

// Message represents a stored text message
type Message struct {
	ID          int64     `json:"id"`
	MessageText string    `json:"message_text"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// MessageRepository defines the interface for message data access
type MessageRepository interface {
	FindAll(ctx context.Context) ([]*Message, error)
	FindByID(ctx context.Context, id int64) (*Message, error)
	Count(ctx context.Context) (int64, error)
	Create(ctx context.Context, text string) (*Message, error)
	Save(ctx context.Context, message *Message) (*Message, error)
	Remove(ctx context.Context, message *Message) error
}
