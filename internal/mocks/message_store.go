package mocks

import (
	"context"
	"database/sql"

	"github.com/google/uuid"
	"github.com/phrazzld/converse-api/internal/domain"
	"github.com/phrazzld/converse-api/internal/store"
)

// MockMessageStore implements store.MessageStore for testing
type MockMessageStore struct {
	// Function fields for customizable behavior
	CreateFn             func(ctx context.Context, message *domain.Message) error
	ListByConversationFn func(ctx context.Context, conversationID uuid.UUID) ([]*store.MessageWithSender, error)
	GetWithSenderFn      func(ctx context.Context, id uuid.UUID) (*store.MessageWithSender, error)

	// Data for default implementation
	Messages    []*store.MessageWithSender
	SenderNames map[uuid.UUID]string // sender ID -> username
	CreateError error
}

// NewMockMessageStore creates a new mock store with initialized defaults
func NewMockMessageStore() *MockMessageStore {
	return &MockMessageStore{
		SenderNames: make(map[uuid.UUID]string),
	}
}

// Ensure MockMessageStore implements store.MessageStore
var _ store.MessageStore = (*MockMessageStore)(nil)

// Create implements the MessageStore interface
func (m *MockMessageStore) Create(ctx context.Context, message *domain.Message) error {
	if m.CreateFn != nil {
		return m.CreateFn(ctx, message)
	}

	if m.CreateError != nil {
		return m.CreateError
	}

	m.Messages = append(m.Messages, &store.MessageWithSender{
		Message:    *message,
		SenderName: m.SenderNames[message.SenderID],
	})
	return nil
}

// ListByConversation implements the MessageStore interface
func (m *MockMessageStore) ListByConversation(
	ctx context.Context,
	conversationID uuid.UUID,
) ([]*store.MessageWithSender, error) {
	if m.ListByConversationFn != nil {
		return m.ListByConversationFn(ctx, conversationID)
	}

	result := []*store.MessageWithSender{}
	for _, msg := range m.Messages {
		if msg.ConversationID == conversationID {
			result = append(result, msg)
		}
	}
	return result, nil
}

// GetWithSender implements the MessageStore interface
func (m *MockMessageStore) GetWithSender(ctx context.Context, id uuid.UUID) (*store.MessageWithSender, error) {
	if m.GetWithSenderFn != nil {
		return m.GetWithSenderFn(ctx, id)
	}

	for _, msg := range m.Messages {
		if msg.ID == id {
			return msg, nil
		}
	}
	return nil, store.ErrMessageNotFound
}

// WithTx implements the MessageStore interface; the mock has no transaction
// state, so it returns itself.
func (m *MockMessageStore) WithTx(tx *sql.Tx) store.MessageStore {
	return m
}
