package api

import (
	"net/http"

	"github.com/phrazzld/converse-api/internal/api/shared"
	"github.com/phrazzld/converse-api/internal/service"
)

// MessageHandler handles message-related API requests.
type MessageHandler struct {
	messageService service.MessageService
}

// NewMessageHandler creates a new MessageHandler with the given dependencies.
func NewMessageHandler(messageService service.MessageService) *MessageHandler {
	return &MessageHandler{
		messageService: messageService,
	}
}

// List handles the GET /conversations/{id}/messages endpoint.
func (h *MessageHandler) List(w http.ResponseWriter, r *http.Request) {
	principal, conversationID, ok := requirePrincipalAndPathUUID(w, r, "id")
	if !ok {
		return
	}

	messages, err := h.messageService.List(r.Context(), principal.ID, conversationID)
	if err != nil {
		shared.RespondWithErrorAndLog(w, r, MapErrorToStatusCode(err), GetSafeErrorMessage(err), err)
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, MessageListResponse{
		Status:   shared.StatusSuccess,
		Messages: messages,
	})
}

// Send handles the POST /conversations/{id}/messages endpoint.
func (h *MessageHandler) Send(w http.ResponseWriter, r *http.Request) {
	principal, conversationID, ok := requirePrincipalAndPathUUID(w, r, "id")
	if !ok {
		return
	}

	var req SendMessageRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid request format")
		return
	}

	message, err := h.messageService.Send(r.Context(), principal.ID, conversationID, req.Content)
	if err != nil {
		shared.RespondWithErrorAndLog(w, r, MapErrorToStatusCode(err), GetSafeErrorMessage(err), err)
		return
	}

	shared.RespondWithJSON(w, r, http.StatusCreated, MessageResponse{
		Status:  shared.StatusSuccess,
		Message: message,
	})
}
