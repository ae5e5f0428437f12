package postgres

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"

	"github.com/google/uuid"
	"github.com/phrazzld/converse-api/internal/domain"
	"github.com/phrazzld/converse-api/internal/platform/logger"
	"github.com/phrazzld/converse-api/internal/store"
)

// PostgresConversationStore implements the store.ConversationStore interface
// using a PostgreSQL database as the storage backend.
//
// Pair uniqueness is enforced by a unique index over
// (least(participant_one_id, participant_two_id),
//  greatest(participant_one_id, participant_two_id)), so two concurrent
// creates for the same pair cannot both succeed regardless of slot order.
type PostgresConversationStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewPostgresConversationStore creates a new PostgreSQL implementation of the
// ConversationStore interface. It accepts a database connection or transaction
// that should be initialized and managed by the caller.
// If logger is nil, a default logger will be used.
func NewPostgresConversationStore(db store.DBTX, logger *slog.Logger) *PostgresConversationStore {
	if db == nil {
		panic("db cannot be nil")
	}

	if logger == nil {
		logger = slog.Default()
	}

	return &PostgresConversationStore{
		db:     db,
		logger: logger.With(slog.String("component", "conversation_store")),
	}
}

// Ensure PostgresConversationStore implements store.ConversationStore interface
var _ store.ConversationStore = (*PostgresConversationStore)(nil)

// conversationColumns is the scan order shared by the single-row queries.
const conversationColumns = `id, participant_one_id, participant_two_id, deleted_by_one, deleted_by_two, created_at`

func scanConversation(row *sql.Row) (*domain.Conversation, error) {
	var conv domain.Conversation
	err := row.Scan(
		&conv.ID,
		&conv.ParticipantOneID,
		&conv.ParticipantTwoID,
		&conv.DeletedByOne,
		&conv.DeletedByTwo,
		&conv.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &conv, nil
}

// Create implements store.ConversationStore.Create
// Returns store.ErrConversationExists when the unordered pair already has a
// conversation (unique violation on the pair index), and
// store.ErrInvalidEntity when a participant does not reference an existing
// user.
func (s *PostgresConversationStore) Create(ctx context.Context, conversation *domain.Conversation) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := conversation.Validate(); err != nil {
		log.Warn("conversation validation failed during create",
			slog.String("error", err.Error()),
			slog.String("conversation_id", conversation.ID.String()))
		return err
	}

	query := `
		INSERT INTO conversations (id, participant_one_id, participant_two_id, deleted_by_one, deleted_by_two, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`
	_, err := s.db.ExecContext(
		ctx,
		query,
		conversation.ID,
		conversation.ParticipantOneID,
		conversation.ParticipantTwoID,
		conversation.DeletedByOne,
		conversation.DeletedByTwo,
		conversation.CreatedAt,
	)

	if err != nil {
		if IsUniqueViolation(err) {
			log.Debug("conversation already exists for participant pair",
				slog.String("conversation_id", conversation.ID.String()))
			return store.ErrConversationExists
		}
		if IsForeignKeyViolation(err) {
			log.Warn("unknown participant during conversation creation",
				slog.String("conversation_id", conversation.ID.String()))
			return MapError(err)
		}

		log.Error("failed to create conversation",
			slog.String("error", err.Error()),
			slog.String("conversation_id", conversation.ID.String()))
		return MapError(err)
	}

	log.Info("conversation created successfully",
		slog.String("conversation_id", conversation.ID.String()))
	return nil
}

// GetByID implements store.ConversationStore.GetByID
// Delete flags do not affect the lookup.
// Returns store.ErrConversationNotFound if the row does not exist.
func (s *PostgresConversationStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.Conversation, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `SELECT ` + conversationColumns + ` FROM conversations WHERE id = $1`

	conv, err := scanConversation(s.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			log.Debug("conversation not found", slog.String("conversation_id", id.String()))
			return nil, store.ErrConversationNotFound
		}
		log.Error("failed to get conversation by ID",
			slog.String("error", err.Error()),
			slog.String("conversation_id", id.String()))
		return nil, MapError(err)
	}

	return conv, nil
}

// GetByIDForUpdate implements store.ConversationStore.GetByIDForUpdate
// It takes a row lock so delete/restore flag flips on the same row are
// serialized. Only meaningful inside a transaction obtained via WithTx.
func (s *PostgresConversationStore) GetByIDForUpdate(ctx context.Context, id uuid.UUID) (*domain.Conversation, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `SELECT ` + conversationColumns + ` FROM conversations WHERE id = $1 FOR UPDATE`

	conv, err := scanConversation(s.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			log.Debug("conversation not found for update",
				slog.String("conversation_id", id.String()))
			return nil, store.ErrConversationNotFound
		}
		log.Error("failed to lock conversation row",
			slog.String("error", err.Error()),
			slog.String("conversation_id", id.String()))
		return nil, MapError(err)
	}

	return conv, nil
}

// FindByParticipants implements store.ConversationStore.FindByParticipants
// Both slot orderings are checked and delete flags are ignored: a hidden
// conversation is still found.
// Returns store.ErrConversationNotFound if no row exists for the pair.
func (s *PostgresConversationStore) FindByParticipants(
	ctx context.Context,
	userA, userB uuid.UUID,
) (*domain.Conversation, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `
		SELECT ` + conversationColumns + `
		FROM conversations
		WHERE (participant_one_id = $1 AND participant_two_id = $2)
		   OR (participant_one_id = $2 AND participant_two_id = $1)
	`

	conv, err := scanConversation(s.db.QueryRowContext(ctx, query, userA, userB))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			log.Debug("no conversation for participant pair")
			return nil, store.ErrConversationNotFound
		}
		log.Error("failed to find conversation by participants",
			slog.String("error", err.Error()))
		return nil, MapError(err)
	}

	return conv, nil
}

// ListForUser implements store.ConversationStore.ListForUser
// It returns the conversations visible to the user (own delete flag false),
// newest first by conversation ID, each row joined with the other
// participant's profile and the latest message, when one exists.
func (s *PostgresConversationStore) ListForUser(
	ctx context.Context,
	userID uuid.UUID,
) ([]*store.ConversationSummary, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `
		SELECT c.id,
		       u.id,
		       u.username,
		       m.content,
		       m.created_at
		FROM conversations c
		JOIN users u
		  ON u.id = CASE WHEN c.participant_one_id = $1
		                 THEN c.participant_two_id
		                 ELSE c.participant_one_id END
		LEFT JOIN LATERAL (
			SELECT content, created_at
			FROM messages
			WHERE conversation_id = c.id
			ORDER BY created_at DESC
			LIMIT 1
		) m ON true
		WHERE (c.participant_one_id = $1 AND NOT c.deleted_by_one)
		   OR (c.participant_two_id = $1 AND NOT c.deleted_by_two)
		ORDER BY c.id DESC
	`

	rows, err := s.db.QueryContext(ctx, query, userID)
	if err != nil {
		log.Error("failed to list conversations",
			slog.String("error", err.Error()),
			slog.String("user_id", userID.String()))
		return nil, MapError(err)
	}
	defer func() {
		if err := rows.Close(); err != nil {
			log.Error("failed to close rows", slog.String("error", err.Error()))
		}
	}()

	var summaries []*store.ConversationSummary
	for rows.Next() {
		var summary store.ConversationSummary
		var lastMessage sql.NullString
		var lastMessageTime sql.NullTime

		err := rows.Scan(
			&summary.ConversationID,
			&summary.ParticipantID,
			&summary.ParticipantName,
			&lastMessage,
			&lastMessageTime,
		)
		if err != nil {
			log.Error("failed to scan conversation summary row",
				slog.String("error", err.Error()))
			return nil, MapError(err)
		}

		if lastMessage.Valid {
			summary.LastMessage = &lastMessage.String
		}
		if lastMessageTime.Valid {
			t := lastMessageTime.Time
			summary.LastMessageTime = &t
		}

		summaries = append(summaries, &summary)
	}

	if err := rows.Err(); err != nil {
		log.Error("error after scanning rows",
			slog.String("error", err.Error()))
		return nil, MapError(err)
	}

	// Return empty slice instead of nil if no conversations found
	if summaries == nil {
		summaries = []*store.ConversationSummary{}
	}

	log.Debug("listed conversations",
		slog.String("user_id", userID.String()),
		slog.Int("count", len(summaries)))
	return summaries, nil
}

// UpdateFlags implements store.ConversationStore.UpdateFlags
// It persists both delete flags as carried by the given conversation.
// Returns store.ErrConversationNotFound if the row does not exist.
func (s *PostgresConversationStore) UpdateFlags(ctx context.Context, conversation *domain.Conversation) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `
		UPDATE conversations
		SET deleted_by_one = $1, deleted_by_two = $2
		WHERE id = $3
	`

	result, err := s.db.ExecContext(
		ctx,
		query,
		conversation.DeletedByOne,
		conversation.DeletedByTwo,
		conversation.ID,
	)
	if err != nil {
		log.Error("failed to update conversation flags",
			slog.String("error", err.Error()),
			slog.String("conversation_id", conversation.ID.String()))
		return MapError(err)
	}

	if err := CheckRowsAffected(result, "conversation"); err != nil {
		log.Debug("conversation not found for flag update",
			slog.String("conversation_id", conversation.ID.String()))
		return store.ErrConversationNotFound
	}

	log.Info("conversation flags updated",
		slog.String("conversation_id", conversation.ID.String()),
		slog.Bool("deleted_by_one", conversation.DeletedByOne),
		slog.Bool("deleted_by_two", conversation.DeletedByTwo))
	return nil
}

// Delete implements store.ConversationStore.Delete
// The messages of the conversation are removed by the ON DELETE CASCADE on
// messages.conversation_id.
// Returns store.ErrConversationNotFound if the row does not exist.
func (s *PostgresConversationStore) Delete(ctx context.Context, id uuid.UUID) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `DELETE FROM conversations WHERE id = $1`

	result, err := s.db.ExecContext(ctx, query, id)
	if err != nil {
		log.Error("failed to delete conversation",
			slog.String("error", err.Error()),
			slog.String("conversation_id", id.String()))
		return MapError(err)
	}

	if err := CheckRowsAffected(result, "conversation"); err != nil {
		log.Debug("conversation not found for delete",
			slog.String("conversation_id", id.String()))
		return store.ErrConversationNotFound
	}

	log.Info("conversation deleted permanently",
		slog.String("conversation_id", id.String()))
	return nil
}

// WithTx implements store.ConversationStore.WithTx
// It returns a new store bound to the given transaction.
func (s *PostgresConversationStore) WithTx(tx *sql.Tx) store.ConversationStore {
	return &PostgresConversationStore{
		db:     tx,
		logger: s.logger,
	}
}
