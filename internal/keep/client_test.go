package keep

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/oauth2"
	keepapi "google.golang.org/api/keep/v1"
	"google.golang.org/api/option"

	"github.com/abdulehsan/Jarvis/internal/google"
)

func testProvider() *google.StaticTokenProvider {
	return &google.StaticTokenProvider{Tokens: map[string]*oauth2.Token{
		"notes": {AccessToken: "tok", TokenType: "Bearer", Expiry: time.Now().Add(time.Hour)},
	}}
}

func newTestClient(t *testing.T, handler http.Handler) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	c, err := NewClient(context.Background(), "notes", testProvider(), nil, option.WithEndpoint(srv.URL+"/"))
	require.NoError(t, err)
	return c
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}

func TestListNotes(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /v1/notes", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "trashed = false", r.URL.Query().Get("filter"))
		assert.Equal(t, "50", r.URL.Query().Get("pageSize"))
		writeJSON(w, map[string]any{"notes": []map[string]any{
			{"name": "notes/a", "title": "Shopping", "body": map[string]any{"text": map[string]string{"text": "eggs"}}},
			{"name": "notes/b"},
		}})
	})

	notes, err := newTestClient(t, mux).ListNotes(context.Background(), 0)
	require.NoError(t, err)
	require.Len(t, notes, 2)
	assert.Equal(t, "notes/a", notes[0].Name)
	assert.Equal(t, "eggs", notes[0].Text)
	assert.Equal(t, UntitledNote, notes[1].DisplayTitle())
}

func TestGetNote_AcceptsBareID(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /v1/notes/abc", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, map[string]any{"name": "notes/abc", "title": "Ideas"})
	})

	note, err := newTestClient(t, mux).GetNote(context.Background(), "abc")
	require.NoError(t, err)
	assert.Equal(t, "Ideas", note.Title)
}

func TestCreateNote(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /v1/notes", func(w http.ResponseWriter, r *http.Request) {
		var body keepapi.Note
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "Trip", body.Title)
		require.NotNil(t, body.Body)
		assert.Equal(t, "pack socks", body.Body.Text.Text)
		writeJSON(w, map[string]any{"name": "notes/new", "title": "Trip"})
	})

	note, err := newTestClient(t, mux).CreateNote(context.Background(), "Trip", "pack socks")
	require.NoError(t, err)
	assert.Equal(t, "notes/new", note.Name)
}

func TestDeleteNote(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("DELETE /v1/notes/abc", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, map[string]any{})
	})
	require.NoError(t, newTestClient(t, mux).DeleteNote(context.Background(), "notes/abc"))
}

func TestShareNote(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /v1/notes/abc/permissions:batchCreate", func(w http.ResponseWriter, r *http.Request) {
		var body keepapi.BatchCreatePermissionsRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		require.Len(t, body.Requests, 1)
		assert.Equal(t, "notes/abc", body.Requests[0].Parent)
		assert.Equal(t, "friend@example.com", body.Requests[0].Permission.Email)
		assert.Equal(t, RoleWriter, body.Requests[0].Permission.Role)
		writeJSON(w, map[string]any{"permissions": []map[string]string{
			{"name": "notes/abc/permissions/p1", "email": "friend@example.com", "role": "WRITER"},
		}})
	})

	perm, err := newTestClient(t, mux).ShareNote(context.Background(), "abc", "friend@example.com", "")
	require.NoError(t, err)
	assert.Equal(t, "notes/abc/permissions/p1", perm.Name)
	assert.Equal(t, RoleWriter, perm.Role)
}

func TestShareNote_InvalidRole(t *testing.T) {
	called := false
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) { called = true }))
	_, err := c.ShareNote(context.Background(), "abc", "friend@example.com", "owner")
	assert.ErrorContains(t, err, "READER or WRITER")
	assert.False(t, called)
}

func TestNoteName(t *testing.T) {
	assert.Equal(t, "notes/abc", NoteName("abc"))
	assert.Equal(t, "notes/abc", NoteName(" notes/abc "))
	assert.Equal(t, "", NoteName(""))
}

func TestNormalizeRole(t *testing.T) {
	tests := []struct {
		in      string
		want    string
		wantErr bool
	}{
		{in: "", want: RoleWriter},
		{in: "reader", want: RoleReader},
		{in: " Writer ", want: RoleWriter},
		{in: "OWNER", wantErr: true},
	}
	for _, tt := range tests {
		got, err := NormalizeRole(tt.in)
		if tt.wantErr {
			assert.Error(t, err, tt.in)
			continue
		}
		require.NoError(t, err)
		assert.Equal(t, tt.want, got)
	}
}

func TestBodyText_List(t *testing.T) {
	s := &keepapi.Section{List: &keepapi.ListContent{ListItems: []*keepapi.ListItem{
		{Text: &keepapi.TextContent{Text: "milk"}, Checked: true},
		{Text: &keepapi.TextContent{Text: "bread"}, ChildListItems: []*keepapi.ListItem{
			{Text: &keepapi.TextContent{Text: "rye"}},
		}},
	}}}
	assert.Equal(t, "- [x] milk\n- [ ] bread\n  - [ ] rye", bodyText(s))
}
