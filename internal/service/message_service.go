package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"
	"github.com/phrazzld/converse-api/internal/domain"
	"github.com/phrazzld/converse-api/internal/store"
)

// MessageService appends and lists messages inside a conversation the
// principal participates in. Participation is the only authorization check:
// per-side delete flags do not affect message access, so a participant who
// has hidden a still-existing conversation can keep reading it until it is
// permanently removed.
type MessageService interface {
	// List returns the conversation's messages in creation order, each with
	// the sender's display name.
	// Returns store.ErrConversationNotFound when the conversation does not
	// exist or the principal is not one of its participants.
	List(ctx context.Context, principalID, conversationID uuid.UUID) ([]*store.MessageWithSender, error)

	// Send appends a message with trimmed content.
	// Returns domain.ErrEmptyMessageContent for empty/whitespace content and
	// store.ErrConversationNotFound when the conversation does not exist or
	// the principal is not a participant.
	Send(ctx context.Context, principalID, conversationID uuid.UUID, content string) (*store.MessageWithSender, error)
}

// MessageServiceImpl implements the MessageService interface
type MessageServiceImpl struct {
	conversationStore store.ConversationStore
	messageStore      store.MessageStore
	logger            *slog.Logger
}

// NewMessageService creates a new MessageService
func NewMessageService(
	conversationStore store.ConversationStore,
	messageStore store.MessageStore,
	logger *slog.Logger,
) MessageService {
	return &MessageServiceImpl{
		conversationStore: conversationStore,
		messageStore:      messageStore,
		logger:            logger.With("component", "message_service"),
	}
}

// authorizeParticipant loads the conversation and verifies the principal is
// one of its two participants. A non-participant gets the same not-found
// error as a missing conversation so conversation IDs cannot be probed.
func (s *MessageServiceImpl) authorizeParticipant(
	ctx context.Context,
	principalID, conversationID uuid.UUID,
) (*domain.Conversation, error) {
	conv, err := s.conversationStore.GetByID(ctx, conversationID)
	if err != nil {
		return nil, err
	}

	if !conv.HasParticipant(principalID) {
		return nil, store.ErrConversationNotFound
	}

	return conv, nil
}

// List returns the conversation's messages in creation order.
func (s *MessageServiceImpl) List(
	ctx context.Context,
	principalID, conversationID uuid.UUID,
) ([]*store.MessageWithSender, error) {
	if _, err := s.authorizeParticipant(ctx, principalID, conversationID); err != nil {
		if errors.Is(err, store.ErrConversationNotFound) {
			s.logger.Debug("message listing denied",
				"conversation_id", conversationID,
				"user_id", principalID)
			return nil, err
		}
		s.logger.Error("failed to authorize message listing",
			"error", err,
			"conversation_id", conversationID)
		return nil, fmt.Errorf("failed to load conversation: %w", err)
	}

	messages, err := s.messageStore.ListByConversation(ctx, conversationID)
	if err != nil {
		s.logger.Error("failed to list messages",
			"error", err,
			"conversation_id", conversationID)
		return nil, fmt.Errorf("failed to list messages: %w", err)
	}

	return messages, nil
}

// Send appends a message to the conversation.
func (s *MessageServiceImpl) Send(
	ctx context.Context,
	principalID, conversationID uuid.UUID,
	content string,
) (*store.MessageWithSender, error) {
	if strings.TrimSpace(content) == "" {
		return nil, domain.ErrEmptyMessageContent
	}

	if _, err := s.authorizeParticipant(ctx, principalID, conversationID); err != nil {
		if errors.Is(err, store.ErrConversationNotFound) {
			s.logger.Debug("message send denied",
				"conversation_id", conversationID,
				"user_id", principalID)
			return nil, err
		}
		s.logger.Error("failed to authorize message send",
			"error", err,
			"conversation_id", conversationID)
		return nil, fmt.Errorf("failed to load conversation: %w", err)
	}

	msg, err := domain.NewMessage(conversationID, principalID, content)
	if err != nil {
		return nil, err
	}

	if err := s.messageStore.Create(ctx, msg); err != nil {
		s.logger.Error("failed to create message",
			"error", err,
			"conversation_id", conversationID)
		return nil, err
	}

	// Re-read with the sender join so the response carries the display name.
	created, err := s.messageStore.GetWithSender(ctx, msg.ID)
	if err != nil {
		s.logger.Error("failed to load created message",
			"error", err,
			"message_id", msg.ID)
		return nil, fmt.Errorf("failed to load created message: %w", err)
	}

	s.logger.Info("message sent",
		"message_id", msg.ID,
		"conversation_id", conversationID)
	return created, nil
}
