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

// PostgresMessageStore implements the store.MessageStore interface
// using a PostgreSQL database as the storage backend.
type PostgresMessageStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewPostgresMessageStore creates a new PostgreSQL implementation of the MessageStore interface.
// It accepts a database connection or transaction that should be initialized and managed by the caller.
// If logger is nil, a default logger will be used.
func NewPostgresMessageStore(db store.DBTX, logger *slog.Logger) *PostgresMessageStore {
	if db == nil {
		panic("db cannot be nil")
	}

	if logger == nil {
		logger = slog.Default()
	}

	return &PostgresMessageStore{
		db:     db,
		logger: logger.With(slog.String("component", "message_store")),
	}
}

// Ensure PostgresMessageStore implements store.MessageStore interface
var _ store.MessageStore = (*PostgresMessageStore)(nil)

// Create implements store.MessageStore.Create
// Returns store.ErrInvalidEntity when the conversation or sender does not
// exist (foreign key violation).
func (s *PostgresMessageStore) Create(ctx context.Context, message *domain.Message) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := message.Validate(); err != nil {
		log.Warn("message validation failed during create",
			slog.String("error", err.Error()),
			slog.String("message_id", message.ID.String()))
		return err
	}

	query := `
		INSERT INTO messages (id, conversation_id, sender_id, content, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`
	_, err := s.db.ExecContext(
		ctx,
		query,
		message.ID,
		message.ConversationID,
		message.SenderID,
		message.Content,
		message.CreatedAt,
		message.UpdatedAt,
	)

	if err != nil {
		if IsForeignKeyViolation(err) {
			log.Warn("foreign key violation during message creation",
				slog.String("message_id", message.ID.String()),
				slog.String("conversation_id", message.ConversationID.String()))
			return MapError(err)
		}

		log.Error("failed to create message",
			slog.String("error", err.Error()),
			slog.String("message_id", message.ID.String()))
		return MapError(err)
	}

	log.Info("message created successfully",
		slog.String("message_id", message.ID.String()),
		slog.String("conversation_id", message.ConversationID.String()))
	return nil
}

// ListByConversation implements store.MessageStore.ListByConversation
// Messages are ordered by creation time ascending and carry the sender's
// username. Returns an empty slice when the conversation has no messages.
func (s *PostgresMessageStore) ListByConversation(
	ctx context.Context,
	conversationID uuid.UUID,
) ([]*store.MessageWithSender, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `
		SELECT m.id, m.conversation_id, m.sender_id, m.content, m.created_at, m.updated_at, u.username
		FROM messages m
		JOIN users u ON u.id = m.sender_id
		WHERE m.conversation_id = $1
		ORDER BY m.created_at ASC
	`

	rows, err := s.db.QueryContext(ctx, query, conversationID)
	if err != nil {
		log.Error("failed to list messages",
			slog.String("error", err.Error()),
			slog.String("conversation_id", conversationID.String()))
		return nil, MapError(err)
	}
	defer func() {
		if err := rows.Close(); err != nil {
			log.Error("failed to close rows", slog.String("error", err.Error()))
		}
	}()

	var messages []*store.MessageWithSender
	for rows.Next() {
		var msg store.MessageWithSender

		err := rows.Scan(
			&msg.ID,
			&msg.ConversationID,
			&msg.SenderID,
			&msg.Content,
			&msg.CreatedAt,
			&msg.UpdatedAt,
			&msg.SenderName,
		)
		if err != nil {
			log.Error("failed to scan message row",
				slog.String("error", err.Error()))
			return nil, MapError(err)
		}

		messages = append(messages, &msg)
	}

	if err := rows.Err(); err != nil {
		log.Error("error after scanning rows",
			slog.String("error", err.Error()))
		return nil, MapError(err)
	}

	// Return empty slice instead of nil if no messages found
	if messages == nil {
		messages = []*store.MessageWithSender{}
	}

	log.Debug("listed messages",
		slog.String("conversation_id", conversationID.String()),
		slog.Int("count", len(messages)))
	return messages, nil
}

// GetWithSender implements store.MessageStore.GetWithSender
// Returns store.ErrMessageNotFound if the message does not exist.
func (s *PostgresMessageStore) GetWithSender(ctx context.Context, id uuid.UUID) (*store.MessageWithSender, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `
		SELECT m.id, m.conversation_id, m.sender_id, m.content, m.created_at, m.updated_at, u.username
		FROM messages m
		JOIN users u ON u.id = m.sender_id
		WHERE m.id = $1
	`

	var msg store.MessageWithSender
	err := s.db.QueryRowContext(ctx, query, id).Scan(
		&msg.ID,
		&msg.ConversationID,
		&msg.SenderID,
		&msg.Content,
		&msg.CreatedAt,
		&msg.UpdatedAt,
		&msg.SenderName,
	)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			log.Debug("message not found", slog.String("message_id", id.String()))
			return nil, store.ErrMessageNotFound
		}
		log.Error("failed to get message",
			slog.String("error", err.Error()),
			slog.String("message_id", id.String()))
		return nil, MapError(err)
	}

	return &msg, nil
}

// WithTx implements store.MessageStore.WithTx
// It returns a new store bound to the given transaction.
func (s *PostgresMessageStore) WithTx(tx *sql.Tx) store.MessageStore {
	return &PostgresMessageStore{
		db:     tx,
		logger: s.logger,
	}
}
