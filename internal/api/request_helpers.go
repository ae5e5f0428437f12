package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/phrazzld/converse-api/internal/api/shared"
	"github.com/phrazzld/converse-api/internal/domain"
)

// principalFromContext extracts the authenticated principal from the request
// context. The principal is placed there by the authentication middleware;
// a missing principal means the route was wired without it.
func principalFromContext(r *http.Request) (shared.Principal, bool) {
	principal, ok := shared.GetPrincipal(r.Context())
	if !ok || principal.ID == uuid.Nil {
		return shared.Principal{}, false
	}
	return principal, true
}

// pathUUID extracts a UUID from the named URL path parameter.
// Returns domain.ErrInvalidID when the parameter is absent or malformed.
func pathUUID(r *http.Request, paramName string) (uuid.UUID, error) {
	pathParam := chi.URLParam(r, paramName)
	if pathParam == "" {
		return uuid.Nil, domain.ErrInvalidID
	}

	id, err := uuid.Parse(pathParam)
	if err != nil {
		return uuid.Nil, domain.ErrInvalidID
	}

	return id, nil
}

// requirePrincipalAndPathUUID extracts both the principal from context and a
// UUID path parameter, writing an error response when either is missing.
// The boolean reports whether both extractions succeeded.
func requirePrincipalAndPathUUID(
	w http.ResponseWriter,
	r *http.Request,
	paramName string,
) (shared.Principal, uuid.UUID, bool) {
	principal, ok := principalFromContext(r)
	if !ok {
		shared.RespondWithError(w, r, http.StatusUnauthorized, "Invalid token")
		return shared.Principal{}, uuid.Nil, false
	}

	pathID, err := pathUUID(r, paramName)
	if err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid "+paramName)
		return shared.Principal{}, uuid.Nil, false
	}

	return principal, pathID, true
}
