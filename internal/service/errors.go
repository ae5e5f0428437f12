package service

import "errors"

// Common service errors - sentinel errors used across service implementations.
// These errors represent expected conditions that callers check with
// errors.Is(); the API layer maps each to an HTTP status code.
var (
	// ErrSelfConversation indicates an attempt to open a conversation with
	// oneself. API layer maps this to HTTP 400 Bad Request.
	ErrSelfConversation = errors.New("cannot create a conversation with yourself")

	// ErrParticipantNotFound indicates the requested conversation partner
	// does not exist. API layer maps this to HTTP 404 Not Found.
	ErrParticipantNotFound = errors.New("participant not found")

	// ErrInvalidCredentials indicates a login attempt with an unknown email
	// or a wrong password. The two cases are deliberately indistinguishable.
	// API layer maps this to HTTP 401 Unauthorized.
	ErrInvalidCredentials = errors.New("invalid email or password")
)
