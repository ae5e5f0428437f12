package store

import (
	"context"
	"database/sql"

	"github.com/google/uuid"
	"github.com/phrazzld/converse-api/internal/domain"
)

// MessageWithSender pairs a message with its sender's display name for
// listing and send responses.
type MessageWithSender struct {
	domain.Message
	SenderName string `json:"senderName"`
}

// MessageStore defines the interface for message persistence.
type MessageStore interface {
	// Create saves a new message.
	// Returns ErrInvalidEntity if the conversation or sender does not exist.
	Create(ctx context.Context, message *domain.Message) error

	// ListByConversation returns all messages of a conversation ordered by
	// creation time ascending, each carrying the sender's username.
	ListByConversation(ctx context.Context, conversationID uuid.UUID) ([]*MessageWithSender, error)

	// GetWithSender retrieves a single message with its sender's username.
	// Returns ErrMessageNotFound if the message does not exist.
	GetWithSender(ctx context.Context, id uuid.UUID) (*MessageWithSender, error)

	// WithTx returns a new MessageStore instance that uses the provided transaction.
	WithTx(tx *sql.Tx) MessageStore
}
