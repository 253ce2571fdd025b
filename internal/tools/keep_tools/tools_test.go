package keep_tools

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abdulehsan/Jarvis/internal/server"
	"github.com/abdulehsan/Jarvis/internal/tools/tooltest"
)

func newRegistry(t *testing.T, mux http.Handler, keepAccount string, readOnly bool) *tooltest.Registry {
	t.Helper()
	sc := tooltest.NewServerContext(t, mux, server.Options{KeepAccount: keepAccount})
	reg := tooltest.NewRegistry()
	require.NoError(t, RegisterKeepTools(reg, sc, readOnly))
	return reg
}

func TestRegisterKeepTools(t *testing.T) {
	reg := newRegistry(t, http.NewServeMux(), "personal", true)
	assert.Contains(t, reg.Tools, "list_notes")
	assert.Contains(t, reg.Tools, "share_note")
	assert.NotContains(t, reg.Tools, "delete_note")
	for name, tool := range reg.Tools {
		assert.NotContains(t, tool.InputSchema.Properties, "account_alias", name)
	}

	reg = newRegistry(t, http.NewServeMux(), "personal", false)
	assert.Contains(t, reg.Tools, "delete_note")
}

func TestListNotes(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /v1/notes", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer tok-personal", r.Header.Get("Authorization"))
		tooltest.WriteJSON(w, map[string]any{"notes": []map[string]any{
			{"name": "notes/a", "title": "Shopping"},
			{"name": "notes/b"},
		}})
	})
	reg := newRegistry(t, mux, "personal", false)

	text, isErr := reg.Call(t, "list_notes", nil)
	require.False(t, isErr, text)
	assert.Equal(t, "- Title: Shopping (ID: notes/a)\n- Title: Untitled Note (ID: notes/b)", text)
}

func TestListNotes_Empty(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /v1/notes", func(w http.ResponseWriter, r *http.Request) {
		tooltest.WriteJSON(w, map[string]any{})
	})
	reg := newRegistry(t, mux, "work", false)

	text, isErr := reg.Call(t, "list_notes", nil)
	require.False(t, isErr, text)
	assert.Equal(t, noNotesFound, text)
}

func TestGetAndCreateNote(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /v1/notes/abc", func(w http.ResponseWriter, r *http.Request) {
		tooltest.WriteJSON(w, map[string]any{
			"name":  "notes/abc",
			"title": "Ideas",
			"body":  map[string]any{"text": map[string]string{"text": "Build a robot"}},
		})
	})
	mux.HandleFunc("POST /v1/notes", func(w http.ResponseWriter, r *http.Request) {
		var body map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "Packing", body["title"])
		tooltest.WriteJSON(w, map[string]any{"name": "notes/new", "title": "Packing"})
	})
	reg := newRegistry(t, mux, "personal", false)

	text, isErr := reg.Call(t, "get_note", map[string]any{"note_id": "notes/abc"})
	require.False(t, isErr, text)
	assert.Equal(t, "Title: Ideas\n\nContent:\nBuild a robot", text)

	text, isErr = reg.Call(t, "create_note", map[string]any{"title": "Packing", "body_text": "socks"})
	require.False(t, isErr, text)
	assert.Equal(t, "Note 'Packing' created successfully with ID: notes/new", text)
}

func TestDeleteNote(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("DELETE /v1/notes/abc", func(w http.ResponseWriter, r *http.Request) {
		tooltest.WriteJSON(w, map[string]any{})
	})
	reg := newRegistry(t, mux, "personal", false)

	text, isErr := reg.Call(t, "delete_note", map[string]any{"note_id": "abc"})
	require.False(t, isErr, text)
	assert.Equal(t, "Note with ID abc was deleted successfully.", text)
}

func TestShareNote(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /v1/notes/abc/permissions:batchCreate", func(w http.ResponseWriter, r *http.Request) {
		tooltest.WriteJSON(w, map[string]any{"permissions": []map[string]string{
			{"name": "notes/abc/permissions/p1", "email": "friend@example.com", "role": "WRITER"},
		}})
	})
	reg := newRegistry(t, mux, "personal", false)

	text, isErr := reg.Call(t, "share_note", map[string]any{"note_id": "notes/abc", "email_address": "friend@example.com"})
	require.False(t, isErr, text)
	assert.Equal(t, "Note notes/abc shared successfully with friend@example.com as a WRITER.", text)

	text, isErr = reg.Call(t, "share_note", map[string]any{"note_id": "notes/abc", "email_address": "friend@example.com", "role": "owner"})
	assert.True(t, isErr)
	assert.Equal(t, `An error occurred: invalid role "OWNER": must be READER or WRITER`, text)
}

func TestKeepTools_Errors(t *testing.T) {
	called := false
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) { called = true })

	reg := newRegistry(t, handler, "", false)
	text, isErr := reg.Call(t, "list_notes", nil)
	assert.True(t, isErr)
	assert.Contains(t, text, "An error occurred: no Keep account configured")

	reg = newRegistry(t, handler, "ghost", false)
	text, isErr = reg.Call(t, "list_notes", nil)
	assert.True(t, isErr)
	assert.Contains(t, text, "Credentials file not found for account alias 'ghost'")

	text, isErr = reg.Call(t, "get_note", map[string]any{})
	assert.True(t, isErr)
	assert.Equal(t, "note_id is required", text)

	assert.False(t, called)
}
