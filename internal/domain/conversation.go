package domain

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

// Conversation validation errors
var (
	ErrEmptyConversationID = errors.New("conversation ID cannot be empty")
	ErrEmptyParticipant    = errors.New("participant ID cannot be empty")
	ErrSameParticipants    = errors.New("conversation participants must be distinct")
)

// Conversation is a direct-message thread between exactly two users.
// The participant slots carry no semantic order: either user may be stored
// as participant one. Uniqueness of the unordered pair is enforced by the
// database (unique index over least/greatest of the two IDs).
//
// Each participant can hide the conversation from their own listing via
// their delete flag. Once both flags would be set the row is removed
// entirely, cascading to its messages.
type Conversation struct {
	ID               uuid.UUID `json:"id"`
	ParticipantOneID uuid.UUID `json:"participantOneId"`
	ParticipantTwoID uuid.UUID `json:"participantTwoId"`
	DeletedByOne     bool      `json:"-"`
	DeletedByTwo     bool      `json:"-"`
	CreatedAt        time.Time `json:"createdAt"`
}

// NewConversation creates a Conversation between two distinct users.
// The argument order is preserved but carries no meaning.
func NewConversation(participantOne, participantTwo uuid.UUID) (*Conversation, error) {
	conv := &Conversation{
		ID:               uuid.New(),
		ParticipantOneID: participantOne,
		ParticipantTwoID: participantTwo,
		CreatedAt:        time.Now().UTC(),
	}

	if err := conv.Validate(); err != nil {
		return nil, err
	}

	return conv, nil
}

// Validate checks if the Conversation has valid data.
func (c *Conversation) Validate() error {
	if c.ID == uuid.Nil {
		return ErrEmptyConversationID
	}

	if c.ParticipantOneID == uuid.Nil || c.ParticipantTwoID == uuid.Nil {
		return ErrEmptyParticipant
	}

	if c.ParticipantOneID == c.ParticipantTwoID {
		return ErrSameParticipants
	}

	return nil
}

// HasParticipant reports whether the given user is one of the two
// participants.
func (c *Conversation) HasParticipant(userID uuid.UUID) bool {
	return c.ParticipantOneID == userID || c.ParticipantTwoID == userID
}

// OtherParticipant returns the counterpart of the given participant.
// The boolean is false when the user is not a participant at all.
func (c *Conversation) OtherParticipant(userID uuid.UUID) (uuid.UUID, bool) {
	switch userID {
	case c.ParticipantOneID:
		return c.ParticipantTwoID, true
	case c.ParticipantTwoID:
		return c.ParticipantOneID, true
	default:
		return uuid.Nil, false
	}
}

// DeletedBy reports whether the given participant has hidden the
// conversation. Non-participants are reported as not-deleted.
func (c *Conversation) DeletedBy(userID uuid.UUID) bool {
	switch userID {
	case c.ParticipantOneID:
		return c.DeletedByOne
	case c.ParticipantTwoID:
		return c.DeletedByTwo
	default:
		return false
	}
}
