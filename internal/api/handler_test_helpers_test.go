package api

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/require"

	apimiddleware "github.com/phrazzld/converse-api/internal/api/middleware"
	"github.com/phrazzld/converse-api/internal/config"
	"github.com/phrazzld/converse-api/internal/domain"
	"github.com/phrazzld/converse-api/internal/mocks"
	"github.com/phrazzld/converse-api/internal/service"
	"github.com/phrazzld/converse-api/internal/service/auth"
)

// testApp wires real services over mock stores behind a real router, so
// handler tests exercise the same code paths the server does.
type testApp struct {
	server     *httptest.Server
	userStore  *mocks.MockUserStore
	convStore  *mocks.MockConversationStore
	msgStore   *mocks.MockMessageStore
	jwtService auth.JWTService
	dbMock     sqlmock.Sqlmock
}

// newTestApp builds the full handler stack. The sqlmock connection backs the
// transactional paths (register, delete, restore); expect Begin/Commit pairs
// as needed via app.dbMock.
func newTestApp(t *testing.T) *testApp {
	t.Helper()

	db, dbMock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	// Transactions happen in whatever order the test's requests do
	dbMock.MatchExpectationsInOrder(false)

	userStore := mocks.NewMockUserStore()
	convStore := mocks.NewMockConversationStore()
	msgStore := mocks.NewMockMessageStore()

	jwtService, err := auth.NewJWTService(config.AuthConfig{
		JWTSecret:            "test-secret-key-that-is-32-chars!",
		TokenLifetimeMinutes: 60,
	})
	require.NoError(t, err)

	// The fake hasher produces "hashed:<password>" and the verifier checks
	// against that, giving real mismatch behavior without bcrypt's cost.
	hasher := &mocks.MockPasswordHasher{}
	verifier := &mocks.MockPasswordVerifier{
		CompareFn: func(hashedPassword, password string) error {
			if hashedPassword == "hashed:"+password {
				return nil
			}
			return service.ErrInvalidCredentials
		},
	}

	logger := slog.Default()
	userService := service.NewUserService(userStore, hasher, verifier, jwtService, db, logger)
	conversationService := service.NewConversationService(convStore, userStore, db, logger)
	messageService := service.NewMessageService(convStore, msgStore, logger)

	authHandler := NewAuthHandler(userService)
	conversationHandler := NewConversationHandler(conversationService)
	messageHandler := NewMessageHandler(messageService)
	authMiddleware := apimiddleware.NewAuthMiddleware(jwtService)

	r := chi.NewRouter()
	r.Post("/auth/register", authHandler.Register)
	r.Post("/auth/login", authHandler.Login)
	r.Group(func(r chi.Router) {
		r.Use(authMiddleware.Authenticate)
		r.Get("/conversations", conversationHandler.List)
		r.Post("/conversations", conversationHandler.Create)
		r.Delete("/conversations/{id}", conversationHandler.Delete)
		r.Post("/conversations/{id}/restore", conversationHandler.Restore)
		r.Get("/conversations/{id}/messages", messageHandler.List)
		r.Post("/conversations/{id}/messages", messageHandler.Send)
	})

	server := httptest.NewServer(r)
	t.Cleanup(server.Close)

	return &testApp{
		server:     server,
		userStore:  userStore,
		convStore:  convStore,
		msgStore:   msgStore,
		jwtService: jwtService,
		dbMock:     dbMock,
	}
}

// addUser seeds a user who registered with the given password.
func (a *testApp) addUser(t *testing.T, username, email, password string) *domain.User {
	t.Helper()

	user, err := domain.NewUser(username, email, password)
	require.NoError(t, err)
	user.HashedPassword = "hashed:" + password
	user.Password = ""
	a.userStore.Users[user.Email] = user
	a.msgStore.SenderNames[user.ID] = user.Username
	return user
}

// tokenFor issues a real token for the given user.
func (a *testApp) tokenFor(t *testing.T, user *domain.User) string {
	t.Helper()

	token, err := a.jwtService.GenerateToken(context.Background(), user.ID, user.Email)
	require.NoError(t, err)
	return token
}

// doJSON performs a request with an optional JSON body and bearer token.
func (a *testApp) doJSON(t *testing.T, method, path, token string, body interface{}) *http.Response {
	t.Helper()

	var reader io.Reader
	if body != nil {
		if raw, ok := body.(string); ok {
			reader = strings.NewReader(raw)
		} else {
			encoded, err := json.Marshal(body)
			require.NoError(t, err)
			reader = bytes.NewReader(encoded)
		}
	}

	req, err := http.NewRequest(method, a.server.URL+path, reader)
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := a.server.Client().Do(req)
	require.NoError(t, err)
	t.Cleanup(func() { _ = resp.Body.Close() })
	return resp
}

// decodeBody unmarshals a response body into a generic map.
func decodeBody(t *testing.T, resp *http.Response) map[string]interface{} {
	t.Helper()

	var body map[string]interface{}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	return body
}
