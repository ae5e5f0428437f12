package api

import (
	"net/http"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/phrazzld/converse-api/internal/domain"
	"github.com/phrazzld/converse-api/internal/store"
)

func TestConversationHandler_Create(t *testing.T) {
	t.Parallel()

	t.Run("creates a new conversation", func(t *testing.T) {
		t.Parallel()

		app := newTestApp(t)
		alice := app.addUser(t, "alice", "alice@example.com", "pw")
		bob := app.addUser(t, "bob", "bob@example.com", "pw")

		resp := app.doJSON(t, http.MethodPost, "/conversations", app.tokenFor(t, alice), map[string]string{
			"participant_id": bob.ID.String(),
		})

		require.Equal(t, http.StatusCreated, resp.StatusCode)
		body := decodeBody(t, resp)
		assert.Equal(t, "success", body["status"])
		conv := body["conversation"].(map[string]interface{})
		assert.NotEmpty(t, conv["id"])
	})

	t.Run("repeating the request returns the same conversation with 200", func(t *testing.T) {
		t.Parallel()

		app := newTestApp(t)
		alice := app.addUser(t, "alice", "alice@example.com", "pw")
		bob := app.addUser(t, "bob", "bob@example.com", "pw")
		token := app.tokenFor(t, alice)

		resp := app.doJSON(t, http.MethodPost, "/conversations", token, map[string]string{
			"participant_id": bob.ID.String(),
		})
		require.Equal(t, http.StatusCreated, resp.StatusCode)
		firstID := decodeBody(t, resp)["conversation"].(map[string]interface{})["id"]

		resp = app.doJSON(t, http.MethodPost, "/conversations", token, map[string]string{
			"participant_id": bob.ID.String(),
		})
		require.Equal(t, http.StatusOK, resp.StatusCode)
		secondID := decodeBody(t, resp)["conversation"].(map[string]interface{})["id"]

		assert.Equal(t, firstID, secondID)
	})

	t.Run("conversation with oneself is rejected", func(t *testing.T) {
		t.Parallel()

		app := newTestApp(t)
		alice := app.addUser(t, "alice", "alice@example.com", "pw")

		resp := app.doJSON(t, http.MethodPost, "/conversations", app.tokenFor(t, alice), map[string]string{
			"participant_id": alice.ID.String(),
		})

		require.Equal(t, http.StatusBadRequest, resp.StatusCode)
		body := decodeBody(t, resp)
		assert.Equal(t, "Cannot start a conversation with yourself", body["message"])
	})

	t.Run("missing participant_id is rejected", func(t *testing.T) {
		t.Parallel()

		app := newTestApp(t)
		alice := app.addUser(t, "alice", "alice@example.com", "pw")

		resp := app.doJSON(t, http.MethodPost, "/conversations", app.tokenFor(t, alice), map[string]string{})
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	})

	t.Run("unknown participant is not found", func(t *testing.T) {
		t.Parallel()

		app := newTestApp(t)
		alice := app.addUser(t, "alice", "alice@example.com", "pw")

		resp := app.doJSON(t, http.MethodPost, "/conversations", app.tokenFor(t, alice), map[string]string{
			"participant_id": uuid.NewString(),
		})

		require.Equal(t, http.StatusNotFound, resp.StatusCode)
		body := decodeBody(t, resp)
		assert.Equal(t, "User not found", body["message"])
	})

	t.Run("requires a token", func(t *testing.T) {
		t.Parallel()

		app := newTestApp(t)

		resp := app.doJSON(t, http.MethodPost, "/conversations", "", map[string]string{
			"participant_id": uuid.NewString(),
		})

		require.Equal(t, http.StatusForbidden, resp.StatusCode)
		body := decodeBody(t, resp)
		assert.Equal(t, "Missing token", body["message"])
	})
}

func TestConversationHandler_List(t *testing.T) {
	t.Parallel()

	t.Run("returns the seeded summaries", func(t *testing.T) {
		t.Parallel()

		app := newTestApp(t)
		alice := app.addUser(t, "alice", "alice@example.com", "pw")
		bob := app.addUser(t, "bob", "bob@example.com", "pw")

		lastMessage := "see you"
		app.convStore.Summaries = []*store.ConversationSummary{
			{
				ConversationID:  uuid.New(),
				ParticipantID:   bob.ID,
				ParticipantName: bob.Username,
				LastMessage:     &lastMessage,
			},
		}

		resp := app.doJSON(t, http.MethodGet, "/conversations", app.tokenFor(t, alice), nil)
		require.Equal(t, http.StatusOK, resp.StatusCode)

		body := decodeBody(t, resp)
		assert.Equal(t, "success", body["status"])
		conversations := body["conversations"].([]interface{})
		require.Len(t, conversations, 1)
		first := conversations[0].(map[string]interface{})
		assert.Equal(t, "bob", first["participantName"])
		assert.Equal(t, "see you", first["lastMessage"])
	})

	t.Run("empty list serializes as an array", func(t *testing.T) {
		t.Parallel()

		app := newTestApp(t)
		alice := app.addUser(t, "alice", "alice@example.com", "pw")

		resp := app.doJSON(t, http.MethodGet, "/conversations", app.tokenFor(t, alice), nil)
		require.Equal(t, http.StatusOK, resp.StatusCode)

		body := decodeBody(t, resp)
		conversations, ok := body["conversations"].([]interface{})
		require.True(t, ok, "conversations must be a JSON array, not null")
		assert.Empty(t, conversations)
	})
}

func TestConversationHandler_DeleteAndRestore(t *testing.T) {
	t.Parallel()

	seedConversation := func(t *testing.T, app *testApp, a, b *domain.User) *domain.Conversation {
		t.Helper()
		conv, err := domain.NewConversation(a.ID, b.ID)
		require.NoError(t, err)
		app.convStore.Conversations[conv.ID] = conv
		return conv
	}

	t.Run("delete then restore round-trips", func(t *testing.T) {
		t.Parallel()

		app := newTestApp(t)
		alice := app.addUser(t, "alice", "alice@example.com", "pw")
		bob := app.addUser(t, "bob", "bob@example.com", "pw")
		conv := seedConversation(t, app, alice, bob)
		token := app.tokenFor(t, alice)

		app.dbMock.ExpectBegin()
		app.dbMock.ExpectCommit()
		resp := app.doJSON(t, http.MethodDelete, "/conversations/"+conv.ID.String(), token, nil)
		require.Equal(t, http.StatusOK, resp.StatusCode)
		body := decodeBody(t, resp)
		assert.Equal(t, "Conversation deleted", body["message"])
		assert.True(t, app.convStore.Conversations[conv.ID].DeletedByOne)

		app.dbMock.ExpectBegin()
		app.dbMock.ExpectCommit()
		resp = app.doJSON(t, http.MethodPost, "/conversations/"+conv.ID.String()+"/restore", token, nil)
		require.Equal(t, http.StatusOK, resp.StatusCode)
		body = decodeBody(t, resp)
		assert.Equal(t, "Conversation restored", body["message"])
		assert.False(t, app.convStore.Conversations[conv.ID].DeletedByOne)
	})

	t.Run("second side's delete removes the conversation", func(t *testing.T) {
		t.Parallel()

		app := newTestApp(t)
		alice := app.addUser(t, "alice", "alice@example.com", "pw")
		bob := app.addUser(t, "bob", "bob@example.com", "pw")
		conv := seedConversation(t, app, alice, bob)
		conv.DeletedByOne = true

		app.dbMock.ExpectBegin()
		app.dbMock.ExpectCommit()
		resp := app.doJSON(t, http.MethodDelete, "/conversations/"+conv.ID.String(), app.tokenFor(t, bob), nil)
		require.Equal(t, http.StatusOK, resp.StatusCode)
		assert.NotContains(t, app.convStore.Conversations, conv.ID)
	})

	t.Run("delete of an unknown conversation is not found", func(t *testing.T) {
		t.Parallel()

		app := newTestApp(t)
		alice := app.addUser(t, "alice", "alice@example.com", "pw")

		app.dbMock.ExpectBegin()
		app.dbMock.ExpectRollback()
		resp := app.doJSON(t, http.MethodDelete, "/conversations/"+uuid.NewString(), app.tokenFor(t, alice), nil)
		require.Equal(t, http.StatusNotFound, resp.StatusCode)
		body := decodeBody(t, resp)
		assert.Equal(t, "Conversation not found", body["message"])
	})

	t.Run("restore without a prior delete is not found", func(t *testing.T) {
		t.Parallel()

		app := newTestApp(t)
		alice := app.addUser(t, "alice", "alice@example.com", "pw")
		bob := app.addUser(t, "bob", "bob@example.com", "pw")
		conv := seedConversation(t, app, alice, bob)

		app.dbMock.ExpectBegin()
		app.dbMock.ExpectRollback()
		resp := app.doJSON(t, http.MethodPost, "/conversations/"+conv.ID.String()+"/restore", app.tokenFor(t, alice), nil)
		assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	})

	t.Run("malformed conversation id is rejected", func(t *testing.T) {
		t.Parallel()

		app := newTestApp(t)
		alice := app.addUser(t, "alice", "alice@example.com", "pw")

		resp := app.doJSON(t, http.MethodDelete, "/conversations/not-a-uuid", app.tokenFor(t, alice), nil)
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	})
}
