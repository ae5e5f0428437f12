package mocks

import (
	"context"
	"database/sql"

	"github.com/google/uuid"
	"github.com/phrazzld/converse-api/internal/domain"
	"github.com/phrazzld/converse-api/internal/store"
)

// MockConversationStore implements store.ConversationStore for testing
type MockConversationStore struct {
	// Function fields for customizable behavior
	CreateFn             func(ctx context.Context, conversation *domain.Conversation) error
	GetByIDFn            func(ctx context.Context, id uuid.UUID) (*domain.Conversation, error)
	FindByParticipantsFn func(ctx context.Context, userA, userB uuid.UUID) (*domain.Conversation, error)
	ListForUserFn        func(ctx context.Context, userID uuid.UUID) ([]*store.ConversationSummary, error)
	UpdateFlagsFn        func(ctx context.Context, conversation *domain.Conversation) error
	DeleteFn             func(ctx context.Context, id uuid.UUID) error

	// Data for default implementation
	Conversations map[uuid.UUID]*domain.Conversation
	Summaries     []*store.ConversationSummary
	CreateError   error
}

// NewMockConversationStore creates a new mock store with initialized defaults
func NewMockConversationStore() *MockConversationStore {
	return &MockConversationStore{
		Conversations: make(map[uuid.UUID]*domain.Conversation),
	}
}

// Ensure MockConversationStore implements store.ConversationStore
var _ store.ConversationStore = (*MockConversationStore)(nil)

// Create implements the ConversationStore interface
func (m *MockConversationStore) Create(ctx context.Context, conversation *domain.Conversation) error {
	if m.CreateFn != nil {
		return m.CreateFn(ctx, conversation)
	}

	if m.CreateError != nil {
		return m.CreateError
	}

	for _, existing := range m.Conversations {
		if existing.HasParticipant(conversation.ParticipantOneID) &&
			existing.HasParticipant(conversation.ParticipantTwoID) {
			return store.ErrConversationExists
		}
	}

	stored := *conversation
	m.Conversations[conversation.ID] = &stored
	return nil
}

// GetByID implements the ConversationStore interface
func (m *MockConversationStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.Conversation, error) {
	if m.GetByIDFn != nil {
		return m.GetByIDFn(ctx, id)
	}

	conv, exists := m.Conversations[id]
	if !exists {
		return nil, store.ErrConversationNotFound
	}

	copy := *conv
	return &copy, nil
}

// GetByIDForUpdate implements the ConversationStore interface; the mock has
// no row locks, so it behaves like GetByID.
func (m *MockConversationStore) GetByIDForUpdate(ctx context.Context, id uuid.UUID) (*domain.Conversation, error) {
	return m.GetByID(ctx, id)
}

// FindByParticipants implements the ConversationStore interface
func (m *MockConversationStore) FindByParticipants(
	ctx context.Context,
	userA, userB uuid.UUID,
) (*domain.Conversation, error) {
	if m.FindByParticipantsFn != nil {
		return m.FindByParticipantsFn(ctx, userA, userB)
	}

	for _, conv := range m.Conversations {
		if conv.HasParticipant(userA) && conv.HasParticipant(userB) {
			copy := *conv
			return &copy, nil
		}
	}

	return nil, store.ErrConversationNotFound
}

// ListForUser implements the ConversationStore interface
func (m *MockConversationStore) ListForUser(
	ctx context.Context,
	userID uuid.UUID,
) ([]*store.ConversationSummary, error) {
	if m.ListForUserFn != nil {
		return m.ListForUserFn(ctx, userID)
	}

	if m.Summaries != nil {
		return m.Summaries, nil
	}

	return []*store.ConversationSummary{}, nil
}

// UpdateFlags implements the ConversationStore interface
func (m *MockConversationStore) UpdateFlags(ctx context.Context, conversation *domain.Conversation) error {
	if m.UpdateFlagsFn != nil {
		return m.UpdateFlagsFn(ctx, conversation)
	}

	stored, exists := m.Conversations[conversation.ID]
	if !exists {
		return store.ErrConversationNotFound
	}

	stored.DeletedByOne = conversation.DeletedByOne
	stored.DeletedByTwo = conversation.DeletedByTwo
	return nil
}

// Delete implements the ConversationStore interface
func (m *MockConversationStore) Delete(ctx context.Context, id uuid.UUID) error {
	if m.DeleteFn != nil {
		return m.DeleteFn(ctx, id)
	}

	if _, exists := m.Conversations[id]; !exists {
		return store.ErrConversationNotFound
	}

	delete(m.Conversations, id)
	return nil
}

// WithTx implements the ConversationStore interface; the mock has no
// transaction state, so it returns itself.
func (m *MockConversationStore) WithTx(tx *sql.Tx) store.ConversationStore {
	return m
}
