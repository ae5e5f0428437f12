package api

import (
	"github.com/google/uuid"

	"github.com/phrazzld/converse-api/internal/domain"
	"github.com/phrazzld/converse-api/internal/store"
)

// Common request/response structures

// RegisterRequest defines the payload for the user registration endpoint.
type RegisterRequest struct {
	Username string `json:"username" validate:"required,min=1,max=64"`
	Email    string `json:"email"    validate:"required,email"`
	Password string `json:"password" validate:"required,min=1,max=72"`
}

// LoginRequest defines the payload for the user login endpoint.
type LoginRequest struct {
	Email    string `json:"email"    validate:"required,email"`
	Password string `json:"password" validate:"required,min=1"`
}

// CreateConversationRequest defines the payload for opening (or resolving)
// a conversation with another user.
type CreateConversationRequest struct {
	ParticipantID uuid.UUID `json:"participant_id" validate:"required"`
}

// SendMessageRequest defines the payload for posting a message to a
// conversation.
type SendMessageRequest struct {
	Content string `json:"content" validate:"required"`
}

// RegisterResponse defines the successful response for the registration
// endpoint. The user payload never carries credentials; the domain type
// excludes them from JSON.
type RegisterResponse struct {
	Status  string   `json:"status"`
	Message string   `json:"message"`
	Data    UserData `json:"data"`
}

// LoginResponse defines the successful response for the login endpoint.
type LoginResponse struct {
	Status  string   `json:"status"`
	Message string   `json:"message"`
	Token   string   `json:"token"`
	Data    UserData `json:"data"`
}

// UserData wraps a user entity inside a response envelope.
type UserData struct {
	User *domain.User `json:"user"`
}

// ConversationListResponse defines the response for listing the principal's
// visible conversations.
type ConversationListResponse struct {
	Conversations []*store.ConversationSummary `json:"conversations"`
	Status        string                       `json:"status"`
}

// ConversationResponse defines the response for resolving or creating a
// conversation. Only the identifier is exposed; clients fetch details via
// the list and message endpoints.
type ConversationResponse struct {
	Status       string          `json:"status"`
	Conversation ConversationRef `json:"conversation"`
}

// ConversationRef carries just a conversation identifier.
type ConversationRef struct {
	ID uuid.UUID `json:"id"`
}

// StatusResponse defines the response for operations whose only payload is
// a confirmation message, such as deleting or restoring a conversation.
type StatusResponse struct {
	Status  string `json:"status"`
	Message string `json:"message"`
}

// MessageListResponse defines the response for listing a conversation's
// messages in creation order.
type MessageListResponse struct {
	Messages []*store.MessageWithSender `json:"messages"`
	Status   string                     `json:"status"`
}

// MessageResponse defines the response for a successfully sent message.
type MessageResponse struct {
	Status  string                   `json:"status"`
	Message *store.MessageWithSender `json:"message"`
}
