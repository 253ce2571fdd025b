package gmail

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/oauth2"
	"google.golang.org/api/option"

	"github.com/abdulehsan/Jarvis/internal/google"
)

func newTestClient(t *testing.T, handler http.Handler) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	provider := &google.StaticTokenProvider{Tokens: map[string]*oauth2.Token{
		"personal": {AccessToken: "tok", TokenType: "Bearer", Expiry: time.Now().Add(time.Hour)},
	}}
	c, err := NewClient(context.Background(), "personal", provider, nil, option.WithEndpoint(srv.URL+"/"))
	require.NoError(t, err)
	return c
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}

func TestSearch(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /gmail/v1/users/me/messages", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "is:unread", r.URL.Query().Get("q"))
		assert.Equal(t, "10", r.URL.Query().Get("maxResults"))
		writeJSON(w, map[string]any{"messages": []map[string]string{{"id": "m1"}, {"id": "m2"}}})
	})
	mux.HandleFunc("GET /gmail/v1/users/me/messages/{id}", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "metadata", r.URL.Query().Get("format"))
		id := r.PathValue("id")
		headers := []map[string]string{{"name": "From", "value": "alice@example.com"}}
		if id == "m1" {
			headers = append(headers, map[string]string{"name": "subject", "value": "Lunch?"})
		}
		writeJSON(w, map[string]any{"id": id, "snippet": "snippet " + id, "payload": map[string]any{"headers": headers}})
	})

	c := newTestClient(t, mux)
	hits, err := c.Search(context.Background(), "is:unread", 0)
	require.NoError(t, err)
	require.Len(t, hits, 2)

	assert.Equal(t, MessageSummary{ID: "m1", From: "alice@example.com", Subject: "Lunch?", Snippet: "snippet m1"}, hits[0])
	assert.Equal(t, NoSubject, hits[1].Subject)
}

func TestGetMessage_NestedMultipart(t *testing.T) {
	enc := func(s string) string { return base64.URLEncoding.EncodeToString([]byte(s)) }

	mux := http.NewServeMux()
	mux.HandleFunc("GET /gmail/v1/users/me/messages/m1", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "full", r.URL.Query().Get("format"))
		writeJSON(w, map[string]any{
			"id": "m1",
			"payload": map[string]any{
				"mimeType": "multipart/mixed",
				"headers":  []map[string]string{{"name": "From", "value": "bob@example.com"}, {"name": "Subject", "value": "Report"}},
				"parts": []map[string]any{
					{
						"mimeType": "multipart/alternative",
						"parts": []map[string]any{
							{"mimeType": "text/html", "body": map[string]string{"data": enc("<p>Hi</p>")}},
							{"mimeType": "text/plain", "body": map[string]string{"data": enc("Hi there")}},
						},
					},
					{"mimeType": "application/pdf", "filename": "report.pdf", "body": map[string]string{"attachmentId": "a1"}},
				},
			},
		})
	})

	c := newTestClient(t, mux)
	msg, err := c.GetMessage(context.Background(), "m1")
	require.NoError(t, err)
	assert.Equal(t, "bob@example.com", msg.From)
	assert.Equal(t, "Report", msg.Subject)
	assert.Equal(t, "Hi there", msg.Body)
	assert.Equal(t, []string{"report.pdf"}, msg.Attachments)
}

func TestSendEmail_UsesProfileAddress(t *testing.T) {
	var profileCalls atomic.Int32
	var raw string

	mux := http.NewServeMux()
	mux.HandleFunc("GET /gmail/v1/users/me/profile", func(w http.ResponseWriter, r *http.Request) {
		profileCalls.Add(1)
		writeJSON(w, map[string]string{"emailAddress": "me@example.com"})
	})
	mux.HandleFunc("POST /gmail/v1/users/me/messages/send", func(w http.ResponseWriter, r *http.Request) {
		var body struct{ Raw string }
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		raw = body.Raw
		writeJSON(w, map[string]string{"id": "sent1"})
	})
	mux.HandleFunc("POST /gmail/v1/users/me/drafts", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, map[string]string{"id": "draft1"})
	})

	c := newTestClient(t, mux)
	msg := &EmailMessage{To: []string{"a@example.com"}, Subject: "Grüße", Body: "Hello"}

	id, err := c.SendEmail(context.Background(), msg)
	require.NoError(t, err)
	assert.Equal(t, "sent1", id)

	decoded, err := base64.URLEncoding.DecodeString(raw)
	require.NoError(t, err)
	text := string(decoded)
	assert.Contains(t, text, "From: me@example.com\r\n")
	assert.Contains(t, text, "To: a@example.com\r\n")
	assert.Contains(t, text, "Subject: =?UTF-8?b?")
	assert.True(t, strings.HasSuffix(text, "\r\n\r\nHello"))

	draftID, err := c.CreateDraft(context.Background(), msg)
	require.NoError(t, err)
	assert.Equal(t, "draft1", draftID)
	assert.Equal(t, int32(1), profileCalls.Load(), "profile is cached")
}

func TestSendEmail_ValidatesBeforeRemoteCalls(t *testing.T) {
	called := false
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) { called = true }))

	_, err := c.SendEmail(context.Background(), &EmailMessage{Subject: "x", Body: "y"})
	assert.ErrorContains(t, err, "at least one recipient")
	assert.False(t, called)
}

func TestTrashMessage(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /gmail/v1/users/me/messages/m1/trash", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, map[string]any{"id": "m1", "labelIds": []string{"TRASH"}})
	})
	c := newTestClient(t, mux)
	require.NoError(t, c.TrashMessage(context.Background(), "m1"))
}
