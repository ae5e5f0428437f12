package main

import (
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/phrazzld/converse-api/internal/api"
	apimiddleware "github.com/phrazzld/converse-api/internal/api/middleware"
	"github.com/phrazzld/converse-api/internal/api/shared"
)

// setupRouter creates and configures the application router with all routes
// and middleware.
func (app *application) setupRouter() http.Handler {
	r := chi.NewRouter()

	// Apply standard middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(apimiddleware.TraceMiddleware)

	// Create API handlers using the application's services
	authHandler := api.NewAuthHandler(app.userService)
	conversationHandler := api.NewConversationHandler(app.conversationService)
	messageHandler := api.NewMessageHandler(app.messageService)
	authMiddleware := apimiddleware.NewAuthMiddleware(app.jwtService)

	// Authentication endpoints (public)
	r.Post("/auth/register", authHandler.Register)
	r.Post("/auth/login", authHandler.Login)

	// Protected routes
	r.Group(func(r chi.Router) {
		r.Use(authMiddleware.Authenticate)

		r.Get("/conversations", conversationHandler.List)
		r.Post("/conversations", conversationHandler.Create)
		r.Delete("/conversations/{id}", conversationHandler.Delete)
		r.Post("/conversations/{id}/restore", conversationHandler.Restore)

		r.Get("/conversations/{id}/messages", messageHandler.List)
		r.Post("/conversations/{id}/messages", messageHandler.Send)
	})

	// Health check endpoint
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		shared.RespondWithJSON(w, r, http.StatusOK, map[string]string{"status": "OK"})
	})

	// Unknown routes answer with the standard error envelope
	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		shared.RespondWithError(
			w,
			r,
			http.StatusNotFound,
			fmt.Sprintf("Route %s %s not found", r.Method, r.URL.Path),
		)
	})

	return r
}
