package api

import (
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/phrazzld/converse-api/internal/api/shared"
	"github.com/phrazzld/converse-api/internal/service"
)

// ConversationHandler handles conversation-related API requests.
type ConversationHandler struct {
	conversationService service.ConversationService
	validator           *validator.Validate
}

// NewConversationHandler creates a new ConversationHandler with the given dependencies.
func NewConversationHandler(conversationService service.ConversationService) *ConversationHandler {
	return &ConversationHandler{
		conversationService: conversationService,
		validator:           validator.New(),
	}
}

// List handles the GET /conversations endpoint.
func (h *ConversationHandler) List(w http.ResponseWriter, r *http.Request) {
	principal, ok := principalFromContext(r)
	if !ok {
		shared.RespondWithError(w, r, http.StatusUnauthorized, "Invalid token")
		return
	}

	summaries, err := h.conversationService.List(r.Context(), principal.ID)
	if err != nil {
		shared.RespondWithErrorAndLog(w, r, MapErrorToStatusCode(err), GetSafeErrorMessage(err), err)
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, ConversationListResponse{
		Status:        shared.StatusSuccess,
		Conversations: summaries,
	})
}

// Create handles the POST /conversations endpoint. An existing conversation
// with the requested participant answers 200; a newly created one answers 201.
func (h *ConversationHandler) Create(w http.ResponseWriter, r *http.Request) {
	principal, ok := principalFromContext(r)
	if !ok {
		shared.RespondWithError(w, r, http.StatusUnauthorized, "Invalid token")
		return
	}

	var req CreateConversationRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid request format")
		return
	}

	if err := h.validator.Struct(req); err != nil || req.ParticipantID == uuid.Nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid participant_id: required field")
		return
	}

	conversation, created, err := h.conversationService.FindOrCreate(r.Context(), principal.ID, req.ParticipantID)
	if err != nil {
		shared.RespondWithErrorAndLog(w, r, MapErrorToStatusCode(err), GetSafeErrorMessage(err), err)
		return
	}

	status := http.StatusOK
	if created {
		status = http.StatusCreated
	}

	shared.RespondWithJSON(w, r, status, ConversationResponse{
		Status:       shared.StatusSuccess,
		Conversation: ConversationRef{ID: conversation.ID},
	})
}

// Delete handles the DELETE /conversations/{id} endpoint.
func (h *ConversationHandler) Delete(w http.ResponseWriter, r *http.Request) {
	principal, conversationID, ok := requirePrincipalAndPathUUID(w, r, "id")
	if !ok {
		return
	}

	if err := h.conversationService.Delete(r.Context(), principal.ID, conversationID); err != nil {
		shared.RespondWithErrorAndLog(w, r, MapErrorToStatusCode(err), GetSafeErrorMessage(err), err)
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, StatusResponse{
		Status:  shared.StatusSuccess,
		Message: "Conversation deleted",
	})
}

// Restore handles the POST /conversations/{id}/restore endpoint.
func (h *ConversationHandler) Restore(w http.ResponseWriter, r *http.Request) {
	principal, conversationID, ok := requirePrincipalAndPathUUID(w, r, "id")
	if !ok {
		return
	}

	if err := h.conversationService.Restore(r.Context(), principal.ID, conversationID); err != nil {
		shared.RespondWithErrorAndLog(w, r, MapErrorToStatusCode(err), GetSafeErrorMessage(err), err)
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, StatusResponse{
		Status:  shared.StatusSuccess,
		Message: "Conversation restored",
	})
}
