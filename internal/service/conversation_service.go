package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/phrazzld/converse-api/internal/domain"
	"github.com/phrazzld/converse-api/internal/store"
)

// ConversationService owns the lifecycle of two-party conversations:
// deterministic pairing of two users into a single row, per-side hiding,
// restore, and the collapse to permanent deletion once both sides have
// deleted.
type ConversationService interface {
	// FindOrCreate resolves the conversation between the principal and the
	// other user, creating it when none exists. The boolean reports whether
	// a new row was created. An existing conversation is returned as-is even
	// when hidden by either side; hidden state is only reversed through
	// Restore.
	// Returns ErrSelfConversation when both IDs match and
	// ErrParticipantNotFound when the other user does not exist.
	FindOrCreate(ctx context.Context, principalID, otherID uuid.UUID) (*domain.Conversation, bool, error)

	// List returns the conversations visible to the principal, newest first,
	// enriched with the other participant and the latest message.
	List(ctx context.Context, principalID uuid.UUID) ([]*store.ConversationSummary, error)

	// Delete hides the conversation for the principal, or removes it
	// permanently (messages included) when the other participant had
	// already deleted it.
	// Returns store.ErrConversationNotFound unless the principal is a
	// participant whose own delete flag is currently false.
	Delete(ctx context.Context, principalID, conversationID uuid.UUID) error

	// Restore un-hides a conversation the principal previously deleted.
	// Returns store.ErrConversationNotFound unless the principal is a
	// participant whose own delete flag is currently true.
	Restore(ctx context.Context, principalID, conversationID uuid.UUID) error
}

// ConversationServiceImpl implements the ConversationService interface
type ConversationServiceImpl struct {
	conversationStore store.ConversationStore
	userStore         store.UserStore
	db                *sql.DB
	logger            *slog.Logger
}

// NewConversationService creates a new ConversationService
func NewConversationService(
	conversationStore store.ConversationStore,
	userStore store.UserStore,
	db *sql.DB,
	logger *slog.Logger,
) ConversationService {
	return &ConversationServiceImpl{
		conversationStore: conversationStore,
		userStore:         userStore,
		db:                db,
		logger:            logger.With("component", "conversation_service"),
	}
}

// FindOrCreate resolves the single conversation for the unordered pair
// {principal, other}. Two concurrent calls for the same pair cannot both
// create a row: the pair index rejects the loser, which then re-reads and
// returns the winner's row as "found".
func (s *ConversationServiceImpl) FindOrCreate(
	ctx context.Context,
	principalID, otherID uuid.UUID,
) (*domain.Conversation, bool, error) {
	if principalID == otherID {
		return nil, false, ErrSelfConversation
	}

	if _, err := s.userStore.GetByID(ctx, otherID); err != nil {
		if errors.Is(err, store.ErrUserNotFound) {
			s.logger.Debug("conversation requested with unknown participant",
				"participant_id", otherID)
			return nil, false, ErrParticipantNotFound
		}
		s.logger.Error("failed to look up participant",
			"error", err,
			"participant_id", otherID)
		return nil, false, fmt.Errorf("failed to look up participant: %w", err)
	}

	// An existing conversation is found regardless of delete flags and
	// returned without clearing them.
	conv, err := s.conversationStore.FindByParticipants(ctx, principalID, otherID)
	if err == nil {
		return conv, false, nil
	}
	if !errors.Is(err, store.ErrConversationNotFound) {
		s.logger.Error("failed to find conversation by participants",
			"error", err)
		return nil, false, fmt.Errorf("failed to find conversation: %w", err)
	}

	conv, err = domain.NewConversation(principalID, otherID)
	if err != nil {
		return nil, false, err
	}

	err = s.conversationStore.Create(ctx, conv)
	if err != nil {
		if errors.Is(err, store.ErrConversationExists) {
			// Lost the race against a concurrent create for the same pair;
			// the winner's row is the conversation.
			existing, findErr := s.conversationStore.FindByParticipants(ctx, principalID, otherID)
			if findErr != nil {
				s.logger.Error("failed to recover conversation after create race",
					"error", findErr)
				return nil, false, fmt.Errorf("failed to find conversation after conflict: %w", findErr)
			}
			return existing, false, nil
		}
		s.logger.Error("failed to create conversation",
			"error", err)
		return nil, false, err
	}

	s.logger.Info("conversation created",
		"conversation_id", conv.ID)
	return conv, true, nil
}

// List returns the principal's visible conversations.
func (s *ConversationServiceImpl) List(
	ctx context.Context,
	principalID uuid.UUID,
) ([]*store.ConversationSummary, error) {
	summaries, err := s.conversationStore.ListForUser(ctx, principalID)
	if err != nil {
		s.logger.Error("failed to list conversations",
			"error", err,
			"user_id", principalID)
		return nil, fmt.Errorf("failed to list conversations: %w", err)
	}
	return summaries, nil
}

// Delete flips the principal's delete flag, or removes the row permanently
// when the other side had already deleted. The read and write run inside a
// transaction with a row lock so two simultaneous deletes end with exactly
// one permanent removal.
func (s *ConversationServiceImpl) Delete(
	ctx context.Context,
	principalID, conversationID uuid.UUID,
) error {
	err := store.RunInTransaction(ctx, s.db, func(ctx context.Context, tx *sql.Tx) error {
		txStore := s.conversationStore.WithTx(tx)

		conv, err := txStore.GetByIDForUpdate(ctx, conversationID)
		if err != nil {
			return err
		}

		// Only a participant whose own flag is still false may delete.
		if !conv.HasParticipant(principalID) || conv.DeletedBy(principalID) {
			return store.ErrConversationNotFound
		}

		otherID, _ := conv.OtherParticipant(principalID)
		if conv.DeletedBy(otherID) {
			// The other side had already deleted: collapse to a permanent
			// delete rather than retaining a row with both flags set.
			return txStore.Delete(ctx, conv.ID)
		}

		if conv.ParticipantOneID == principalID {
			conv.DeletedByOne = true
		} else {
			conv.DeletedByTwo = true
		}
		return txStore.UpdateFlags(ctx, conv)
	})

	if err != nil {
		if errors.Is(err, store.ErrConversationNotFound) {
			s.logger.Debug("delete requested for conversation not visible to user",
				"conversation_id", conversationID,
				"user_id", principalID)
		} else {
			s.logger.Error("failed to delete conversation",
				"error", err,
				"conversation_id", conversationID)
		}
		return err
	}

	s.logger.Info("conversation deleted for user",
		"conversation_id", conversationID,
		"user_id", principalID)
	return nil
}

// Restore clears the principal's delete flag.
func (s *ConversationServiceImpl) Restore(
	ctx context.Context,
	principalID, conversationID uuid.UUID,
) error {
	err := store.RunInTransaction(ctx, s.db, func(ctx context.Context, tx *sql.Tx) error {
		txStore := s.conversationStore.WithTx(tx)

		conv, err := txStore.GetByIDForUpdate(ctx, conversationID)
		if err != nil {
			return err
		}

		// Only a participant who has actually deleted may restore.
		if !conv.HasParticipant(principalID) || !conv.DeletedBy(principalID) {
			return store.ErrConversationNotFound
		}

		if conv.ParticipantOneID == principalID {
			conv.DeletedByOne = false
		} else {
			conv.DeletedByTwo = false
		}
		return txStore.UpdateFlags(ctx, conv)
	})

	if err != nil {
		if errors.Is(err, store.ErrConversationNotFound) {
			s.logger.Debug("restore requested for conversation not deleted by user",
				"conversation_id", conversationID,
				"user_id", principalID)
		} else {
			s.logger.Error("failed to restore conversation",
				"error", err,
				"conversation_id", conversationID)
		}
		return err
	}

	s.logger.Info("conversation restored for user",
		"conversation_id", conversationID,
		"user_id", principalID)
	return nil
}
