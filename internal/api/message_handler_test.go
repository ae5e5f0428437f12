package api

import (
	"net/http"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/phrazzld/converse-api/internal/domain"
)

func seedMessageConversation(t *testing.T, app *testApp, a, b *domain.User) *domain.Conversation {
	t.Helper()
	conv, err := domain.NewConversation(a.ID, b.ID)
	require.NoError(t, err)
	app.convStore.Conversations[conv.ID] = conv
	return conv
}

func TestMessageHandler_Send(t *testing.T) {
	t.Parallel()

	t.Run("sends a message", func(t *testing.T) {
		t.Parallel()

		app := newTestApp(t)
		alice := app.addUser(t, "alice", "alice@example.com", "pw")
		bob := app.addUser(t, "bob", "bob@example.com", "pw")
		conv := seedMessageConversation(t, app, alice, bob)

		resp := app.doJSON(
			t,
			http.MethodPost,
			"/conversations/"+conv.ID.String()+"/messages",
			app.tokenFor(t, alice),
			map[string]string{"content": "  hello bob  "},
		)

		require.Equal(t, http.StatusCreated, resp.StatusCode)
		body := decodeBody(t, resp)
		assert.Equal(t, "success", body["status"])
		message := body["message"].(map[string]interface{})
		assert.Equal(t, "hello bob", message["content"], "content should be trimmed")
		assert.Equal(t, alice.ID.String(), message["senderId"])
		assert.Equal(t, "alice", message["senderName"])
	})

	t.Run("empty content is rejected", func(t *testing.T) {
		t.Parallel()

		app := newTestApp(t)
		alice := app.addUser(t, "alice", "alice@example.com", "pw")
		bob := app.addUser(t, "bob", "bob@example.com", "pw")
		conv := seedMessageConversation(t, app, alice, bob)
		token := app.tokenFor(t, alice)

		for _, content := range []string{"", "   "} {
			resp := app.doJSON(
				t,
				http.MethodPost,
				"/conversations/"+conv.ID.String()+"/messages",
				token,
				map[string]string{"content": content},
			)
			require.Equal(t, http.StatusBadRequest, resp.StatusCode)
			body := decodeBody(t, resp)
			assert.Equal(t, "Message content cannot be empty", body["message"])
		}
	})

	t.Run("non-participant gets not found regardless of content", func(t *testing.T) {
		t.Parallel()

		app := newTestApp(t)
		alice := app.addUser(t, "alice", "alice@example.com", "pw")
		bob := app.addUser(t, "bob", "bob@example.com", "pw")
		carol := app.addUser(t, "carol", "carol@example.com", "pw")
		conv := seedMessageConversation(t, app, alice, bob)

		resp := app.doJSON(
			t,
			http.MethodPost,
			"/conversations/"+conv.ID.String()+"/messages",
			app.tokenFor(t, carol),
			map[string]string{"content": "let me in"},
		)

		require.Equal(t, http.StatusNotFound, resp.StatusCode)
		body := decodeBody(t, resp)
		assert.Equal(t, "Conversation not found", body["message"])
	})

	t.Run("unknown conversation is not found", func(t *testing.T) {
		t.Parallel()

		app := newTestApp(t)
		alice := app.addUser(t, "alice", "alice@example.com", "pw")

		resp := app.doJSON(
			t,
			http.MethodPost,
			"/conversations/"+uuid.NewString()+"/messages",
			app.tokenFor(t, alice),
			map[string]string{"content": "anyone there?"},
		)

		assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	})
}

func TestMessageHandler_List(t *testing.T) {
	t.Parallel()

	t.Run("both participants see the messages", func(t *testing.T) {
		t.Parallel()

		app := newTestApp(t)
		alice := app.addUser(t, "alice", "alice@example.com", "pw")
		bob := app.addUser(t, "bob", "bob@example.com", "pw")
		conv := seedMessageConversation(t, app, alice, bob)
		messagesPath := "/conversations/" + conv.ID.String() + "/messages"

		resp := app.doJSON(t, http.MethodPost, messagesPath, app.tokenFor(t, alice), map[string]string{"content": "hi"})
		require.Equal(t, http.StatusCreated, resp.StatusCode)

		for _, user := range []*domain.User{alice, bob} {
			resp := app.doJSON(t, http.MethodGet, messagesPath, app.tokenFor(t, user), nil)
			require.Equal(t, http.StatusOK, resp.StatusCode)
			body := decodeBody(t, resp)
			messages := body["messages"].([]interface{})
			require.Len(t, messages, 1)
			first := messages[0].(map[string]interface{})
			assert.Equal(t, "hi", first["content"])
			assert.Equal(t, "alice", first["senderName"])
		}
	})

	t.Run("non-participant cannot list", func(t *testing.T) {
		t.Parallel()

		app := newTestApp(t)
		alice := app.addUser(t, "alice", "alice@example.com", "pw")
		bob := app.addUser(t, "bob", "bob@example.com", "pw")
		carol := app.addUser(t, "carol", "carol@example.com", "pw")
		conv := seedMessageConversation(t, app, alice, bob)

		resp := app.doJSON(
			t,
			http.MethodGet,
			"/conversations/"+conv.ID.String()+"/messages",
			app.tokenFor(t, carol),
			nil,
		)

		assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	})

	t.Run("empty conversation serializes as an array", func(t *testing.T) {
		t.Parallel()

		app := newTestApp(t)
		alice := app.addUser(t, "alice", "alice@example.com", "pw")
		bob := app.addUser(t, "bob", "bob@example.com", "pw")
		conv := seedMessageConversation(t, app, alice, bob)

		resp := app.doJSON(
			t,
			http.MethodGet,
			"/conversations/"+conv.ID.String()+"/messages",
			app.tokenFor(t, alice),
			nil,
		)

		require.Equal(t, http.StatusOK, resp.StatusCode)
		body := decodeBody(t, resp)
		messages, ok := body["messages"].([]interface{})
		require.True(t, ok, "messages must be a JSON array, not null")
		assert.Empty(t, messages)
	})
}

// TestTwoUserMessagingFlow drives the full register/login/converse/message
// sequence through the HTTP surface.
func TestTwoUserMessagingFlow(t *testing.T) {
	t.Parallel()

	app := newTestApp(t)

	// Two registrations, each in its own transaction
	app.dbMock.ExpectBegin()
	app.dbMock.ExpectCommit()
	app.dbMock.ExpectBegin()
	app.dbMock.ExpectCommit()

	resp := app.doJSON(t, http.MethodPost, "/auth/register", "", map[string]string{
		"username": "alice", "email": "alice@x.com", "password": "pw1",
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	resp = app.doJSON(t, http.MethodPost, "/auth/register", "", map[string]string{
		"username": "bob", "email": "bob@x.com", "password": "pw2",
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	bobID := decodeBody(t, resp)["data"].(map[string]interface{})["user"].(map[string]interface{})["id"].(string)

	// The message store needs the sender names the real ListByConversation
	// join would provide
	for _, user := range app.userStore.Users {
		app.msgStore.SenderNames[user.ID] = user.Username
	}

	// Alice logs in
	resp = app.doJSON(t, http.MethodPost, "/auth/login", "", map[string]string{
		"email": "alice@x.com", "password": "pw1",
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	aliceToken := decodeBody(t, resp)["token"].(string)

	// Alice opens a conversation with Bob
	resp = app.doJSON(t, http.MethodPost, "/conversations", aliceToken, map[string]string{
		"participant_id": bobID,
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	convID := decodeBody(t, resp)["conversation"].(map[string]interface{})["id"].(string)

	// The identical request resolves to the same conversation with 200
	resp = app.doJSON(t, http.MethodPost, "/conversations", aliceToken, map[string]string{
		"participant_id": bobID,
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, convID, decodeBody(t, resp)["conversation"].(map[string]interface{})["id"].(string))

	// Alice sends a message
	resp = app.doJSON(t, http.MethodPost, "/conversations/"+convID+"/messages", aliceToken, map[string]string{
		"content": "hi",
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	// Bob logs in and reads it
	resp = app.doJSON(t, http.MethodPost, "/auth/login", "", map[string]string{
		"email": "bob@x.com", "password": "pw2",
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	bobToken := decodeBody(t, resp)["token"].(string)

	resp = app.doJSON(t, http.MethodGet, "/conversations/"+convID+"/messages", bobToken, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	messages := decodeBody(t, resp)["messages"].([]interface{})
	require.Len(t, messages, 1)
	first := messages[0].(map[string]interface{})
	assert.Equal(t, "hi", first["content"])
	assert.Equal(t, "alice", first["senderName"])

	assert.NoError(t, app.dbMock.ExpectationsWereMet())
}
