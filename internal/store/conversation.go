package store

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/converse-api/internal/domain"
)

// ConversationSummary is one row of a participant's conversation listing,
// enriched with the other participant's public profile and the most recent
// message, if any.
type ConversationSummary struct {
	ConversationID  uuid.UUID  `json:"conversationId"`
	ParticipantID   uuid.UUID  `json:"participantId"`
	ParticipantName string     `json:"participantName"`
	LastMessage     *string    `json:"lastMessage"`
	LastMessageTime *time.Time `json:"lastMessageTime"`
}

// ConversationStore defines the interface for conversation persistence.
//
// A conversation is keyed by the unordered pair of its participants; the
// store enforces at most one row per pair regardless of slot order.
type ConversationStore interface {
	// Create saves a new conversation.
	// Returns ErrConversationExists if a conversation between the pair
	// already exists (lost race against a concurrent Create).
	// Returns ErrInvalidEntity if a participant does not reference an
	// existing user.
	Create(ctx context.Context, conversation *domain.Conversation) error

	// GetByID retrieves a conversation by its ID regardless of delete flags.
	// Returns ErrConversationNotFound if the row does not exist.
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Conversation, error)

	// GetByIDForUpdate behaves like GetByID but takes a row lock. It must be
	// called inside a transaction (via WithTx); the lock serializes
	// concurrent delete/restore flag flips on the same row.
	GetByIDForUpdate(ctx context.Context, id uuid.UUID) (*domain.Conversation, error)

	// FindByParticipants looks up the conversation between two users,
	// checking both slot orderings and ignoring delete flags.
	// Returns ErrConversationNotFound if no row exists for the pair.
	FindByParticipants(ctx context.Context, userA, userB uuid.UUID) (*domain.Conversation, error)

	// ListForUser returns the conversations visible to the given user (their
	// own delete flag false), newest first, each enriched with the other
	// participant and last message.
	ListForUser(ctx context.Context, userID uuid.UUID) ([]*ConversationSummary, error)

	// UpdateFlags persists the conversation's delete flags.
	// Returns ErrConversationNotFound if the row does not exist.
	UpdateFlags(ctx context.Context, conversation *domain.Conversation) error

	// Delete permanently removes the conversation and, via cascade, all of
	// its messages. Returns ErrConversationNotFound if the row does not exist.
	Delete(ctx context.Context, id uuid.UUID) error

	// WithTx returns a new ConversationStore instance that uses the provided transaction.
	WithTx(tx *sql.Tx) ConversationStore
}
