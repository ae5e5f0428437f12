package domain

import (
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Message validation errors
var (
	ErrEmptyMessageID       = errors.New("message ID cannot be empty")
	ErrEmptyConversationRef = errors.New("message must reference a conversation")
	ErrEmptySenderID        = errors.New("message sender cannot be empty")
	ErrEmptyMessageContent  = errors.New("message content cannot be empty")
)

// Message is a single entry in a conversation. Messages are immutable once
// created and are destroyed only when their conversation is destroyed.
type Message struct {
	ID             uuid.UUID `json:"id"`
	ConversationID uuid.UUID `json:"conversationId"`
	SenderID       uuid.UUID `json:"senderId"`
	Content        string    `json:"content"`
	CreatedAt      time.Time `json:"createdAt"`
	UpdatedAt      time.Time `json:"updatedAt"`
}

// NewMessage creates a Message with trimmed content.
// Returns ErrEmptyMessageContent when the content is empty or whitespace.
func NewMessage(conversationID, senderID uuid.UUID, content string) (*Message, error) {
	now := time.Now().UTC()
	msg := &Message{
		ID:             uuid.New(),
		ConversationID: conversationID,
		SenderID:       senderID,
		Content:        strings.TrimSpace(content),
		CreatedAt:      now,
		UpdatedAt:      now,
	}

	if err := msg.Validate(); err != nil {
		return nil, err
	}

	return msg, nil
}

// Validate checks if the Message has valid data.
func (m *Message) Validate() error {
	if m.ID == uuid.Nil {
		return ErrEmptyMessageID
	}

	if m.ConversationID == uuid.Nil {
		return ErrEmptyConversationRef
	}

	if m.SenderID == uuid.Nil {
		return ErrEmptySenderID
	}

	if m.Content == "" {
		return ErrEmptyMessageContent
	}

	return nil
}
