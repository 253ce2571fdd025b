package gmail_tools

import (
	"encoding/base64"
	"encoding/json"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abdulehsan/Jarvis/internal/server"
	"github.com/abdulehsan/Jarvis/internal/tools/tooltest"
)

func newRegistry(t *testing.T, mux http.Handler, readOnly bool) *tooltest.Registry {
	t.Helper()
	sc := tooltest.NewServerContext(t, mux, server.Options{})
	reg := tooltest.NewRegistry()
	require.NoError(t, RegisterGmailTools(reg, sc, readOnly))
	return reg
}

func TestRegisterGmailTools_ReadOnly(t *testing.T) {
	reg := newRegistry(t, http.NewServeMux(), true)
	assert.Contains(t, reg.Tools, "search_gmail")
	assert.Contains(t, reg.Tools, "get_gmail_message")
	assert.Contains(t, reg.Tools, "create_gmail_draft")
	assert.NotContains(t, reg.Tools, "send_gmail_message")
	assert.NotContains(t, reg.Tools, "trash_gmail_message")

	reg = newRegistry(t, http.NewServeMux(), false)
	assert.Contains(t, reg.Tools, "send_gmail_message")
	assert.Contains(t, reg.Tools, "trash_gmail_message")
	assert.ElementsMatch(t, []string{"account_alias", "to", "subject", "body"}, reg.Tools["send_gmail_message"].InputSchema.Required)
}

func TestSearchGmail(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /gmail/v1/users/me/messages", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "from:boss", r.URL.Query().Get("q"))
		assert.Equal(t, "3", r.URL.Query().Get("maxResults"))
		assert.Equal(t, "Bearer tok-work", r.Header.Get("Authorization"))
		tooltest.WriteJSON(w, map[string]any{"messages": []map[string]string{{"id": "m1"}}})
	})
	mux.HandleFunc("GET /gmail/v1/users/me/messages/m1", func(w http.ResponseWriter, r *http.Request) {
		tooltest.WriteJSON(w, map[string]any{
			"id":      "m1",
			"snippet": "Please review",
			"payload": map[string]any{"headers": []map[string]string{
				{"name": "From", "value": "Boss <boss@example.com>"},
				{"name": "Subject", "value": "Q3 plan"},
			}},
		})
	})
	reg := newRegistry(t, mux, false)

	text, isErr := reg.Call(t, "search_gmail", map[string]any{
		"account_alias": "work",
		"query":         "from:boss",
		"max_results":   float64(3),
	})
	require.False(t, isErr, text)
	assert.Equal(t, "- From: Boss <boss@example.com>\n  Subject: Q3 plan\n  Snippet: Please review\n  ID: m1\n---", text)
}

func TestSearchGmail_Empty(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /gmail/v1/users/me/messages", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "10", r.URL.Query().Get("maxResults"))
		tooltest.WriteJSON(w, map[string]any{})
	})
	reg := newRegistry(t, mux, false)

	text, isErr := reg.Call(t, "search_gmail", map[string]any{"account_alias": "personal", "query": "is:unread"})
	assert.False(t, isErr)
	assert.Equal(t, noEmailsFound, text)
}

func TestGetGmailMessage(t *testing.T) {
	enc := func(s string) string { return base64.URLEncoding.EncodeToString([]byte(s)) }

	mux := http.NewServeMux()
	mux.HandleFunc("GET /gmail/v1/users/me/messages/m1", func(w http.ResponseWriter, r *http.Request) {
		tooltest.WriteJSON(w, map[string]any{
			"id": "m1",
			"payload": map[string]any{
				"mimeType": "text/plain",
				"headers":  []map[string]string{{"name": "From", "value": "a@example.com"}, {"name": "Subject", "value": "Hi"}},
				"body":     map[string]string{"data": enc("See you at 5.")},
			},
		})
	})
	mux.HandleFunc("GET /gmail/v1/users/me/messages/html", func(w http.ResponseWriter, r *http.Request) {
		tooltest.WriteJSON(w, map[string]any{
			"id": "html",
			"payload": map[string]any{
				"mimeType": "text/html",
				"headers":  []map[string]string{{"name": "From", "value": "news@example.com"}},
				"body":     map[string]string{"data": enc("<p>promo</p>")},
			},
		})
	})
	reg := newRegistry(t, mux, false)

	text, isErr := reg.Call(t, "get_gmail_message", map[string]any{"account_alias": "work", "message_id": "m1"})
	require.False(t, isErr, text)
	assert.Equal(t, "From: a@example.com\nSubject: Hi\n\nBody:\nSee you at 5.", text)

	text, isErr = reg.Call(t, "get_gmail_message", map[string]any{"account_alias": "work", "message_id": "html"})
	require.False(t, isErr, text)
	assert.Equal(t, "From: news@example.com\nSubject: No Subject\n\nBody:\n"+noPlainBody, text)
}

func TestSendGmailMessage(t *testing.T) {
	var raw string
	mux := http.NewServeMux()
	mux.HandleFunc("GET /gmail/v1/users/me/profile", func(w http.ResponseWriter, r *http.Request) {
		tooltest.WriteJSON(w, map[string]string{"emailAddress": "me@example.com"})
	})
	mux.HandleFunc("POST /gmail/v1/users/me/messages/send", func(w http.ResponseWriter, r *http.Request) {
		var body struct{ Raw string }
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		raw = body.Raw
		tooltest.WriteJSON(w, map[string]string{"id": "sent1"})
	})
	reg := newRegistry(t, mux, false)

	text, isErr := reg.Call(t, "send_gmail_message", map[string]any{
		"account_alias": "personal",
		"to":            []any{"a@example.com", "b@example.com"},
		"cc":            []any{"c@example.com"},
		"subject":       "Plans",
		"body":          "Dinner at 8?",
	})
	require.False(t, isErr, text)
	assert.Equal(t, "Message sent successfully from 'personal'. Message ID: sent1", text)

	decoded, err := base64.URLEncoding.DecodeString(raw)
	require.NoError(t, err)
	assert.Contains(t, string(decoded), "To: a@example.com, b@example.com\r\n")
	assert.Contains(t, string(decoded), "Cc: c@example.com\r\n")
}

func TestCreateGmailDraft(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /gmail/v1/users/me/profile", func(w http.ResponseWriter, r *http.Request) {
		tooltest.WriteJSON(w, map[string]string{"emailAddress": "me@example.com"})
	})
	mux.HandleFunc("POST /gmail/v1/users/me/drafts", func(w http.ResponseWriter, r *http.Request) {
		tooltest.WriteJSON(w, map[string]string{"id": "d1"})
	})
	reg := newRegistry(t, mux, true)

	text, isErr := reg.Call(t, "create_gmail_draft", map[string]any{
		"account_alias": "work",
		"to":            "a@example.com",
		"subject":       "Draft",
		"body":          "Later",
	})
	require.False(t, isErr, text)
	assert.Equal(t, "Draft created successfully in 'work'. Draft ID: d1", text)
}

func TestTrashGmailMessage(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /gmail/v1/users/me/messages/m1/trash", func(w http.ResponseWriter, r *http.Request) {
		tooltest.WriteJSON(w, map[string]any{"id": "m1"})
	})
	mux.HandleFunc("POST /gmail/v1/users/me/messages/gone/trash", func(w http.ResponseWriter, r *http.Request) {
		tooltest.WriteError(w, http.StatusNotFound, "Requested entity was not found.")
	})
	reg := newRegistry(t, mux, false)

	text, isErr := reg.Call(t, "trash_gmail_message", map[string]any{"account_alias": "work", "message_id": "m1"})
	require.False(t, isErr, text)
	assert.Equal(t, "Message with ID m1 moved to trash in 'work' account.", text)

	text, isErr = reg.Call(t, "trash_gmail_message", map[string]any{"account_alias": "work", "message_id": "gone"})
	assert.True(t, isErr)
	assert.Contains(t, text, "An error occurred trashing message in 'work':")
}

func TestGmailTools_Validation(t *testing.T) {
	called := false
	reg := newRegistry(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) { called = true }), false)

	tests := []struct {
		name string
		tool string
		args map[string]any
		want string
	}{
		{"missing alias", "search_gmail", map[string]any{"query": "x"}, "account_alias is required"},
		{"missing query", "search_gmail", map[string]any{"account_alias": "work"}, "query is required"},
		{"missing message id", "get_gmail_message", map[string]any{"account_alias": "work"}, "message_id is required"},
		{"missing recipients", "send_gmail_message", map[string]any{"account_alias": "work", "subject": "s", "body": "b"}, "to is required"},
		{"empty recipients", "create_gmail_draft", map[string]any{"account_alias": "work", "to": []any{" "}, "subject": "s", "body": "b"}, "to is required"},
		{"missing body", "send_gmail_message", map[string]any{"account_alias": "work", "to": []any{"a@example.com"}, "subject": "s"}, "body is required"},
		{"unknown alias", "search_gmail", map[string]any{"account_alias": "ghost", "query": "x"}, "Credentials file not found for account alias 'ghost'"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			text, isErr := reg.Call(t, tt.tool, tt.args)
			assert.True(t, isErr)
			assert.Contains(t, text, tt.want)
		})
	}
	assert.False(t, called, "invalid calls must not reach the API")
}
