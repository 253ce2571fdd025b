package tasks_tools

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abdulehsan/Jarvis/internal/server"
	"github.com/abdulehsan/Jarvis/internal/tasks"
	"github.com/abdulehsan/Jarvis/internal/tools/tooltest"
)

func newRegistry(t *testing.T, mux http.Handler, readOnly bool) *tooltest.Registry {
	t.Helper()
	sc := tooltest.NewServerContext(t, mux, server.Options{})
	reg := tooltest.NewRegistry()
	require.NoError(t, RegisterTasksTools(reg, sc, readOnly))
	return reg
}

func TestRegisterTasksTools_ReadOnly(t *testing.T) {
	reg := newRegistry(t, http.NewServeMux(), true)
	for _, name := range []string{"list_task_lists", "get_task_list", "create_task_list", "update_task_list",
		"get_tasks", "get_task", "create_task", "update_task", "complete_task", "move_task"} {
		assert.Contains(t, reg.Tools, name)
	}
	for _, name := range []string{"delete_task_list", "delete_task", "clear_completed_tasks"} {
		assert.NotContains(t, reg.Tools, name)
	}

	reg = newRegistry(t, http.NewServeMux(), false)
	assert.Len(t, reg.Tools, 13)
}

func TestListTaskLists(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /tasks/v1/users/@me/lists", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "25", r.URL.Query().Get("maxResults"))
		if r.Header.Get("Authorization") == "Bearer tok-personal" {
			tooltest.WriteJSON(w, map[string]any{})
			return
		}
		tooltest.WriteJSON(w, map[string]any{"items": []map[string]string{
			{"id": "L1", "title": "Work"},
			{"id": "L2", "title": "Errands"},
		}})
	})
	reg := newRegistry(t, mux, false)

	text, isErr := reg.Call(t, "list_task_lists", map[string]any{"account_alias": "work"})
	require.False(t, isErr, text)
	assert.Equal(t, "- Title: Work (ID: L1)\n- Title: Errands (ID: L2)", text)

	text, isErr = reg.Call(t, "list_task_lists", map[string]any{"account_alias": "personal"})
	require.False(t, isErr, text)
	assert.Equal(t, "No task lists found for account 'personal'.", text)
}

func TestTaskListLifecycle(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /tasks/v1/users/@me/lists/L1", func(w http.ResponseWriter, r *http.Request) {
		tooltest.WriteJSON(w, map[string]string{"id": "L1", "title": "Work"})
	})
	mux.HandleFunc("POST /tasks/v1/users/@me/lists", func(w http.ResponseWriter, r *http.Request) {
		var body map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "Groceries", body["title"])
		tooltest.WriteJSON(w, map[string]string{"id": "L9", "title": "Groceries"})
	})
	mux.HandleFunc("PATCH /tasks/v1/users/@me/lists/L1", func(w http.ResponseWriter, r *http.Request) {
		tooltest.WriteJSON(w, map[string]string{"id": "L1", "title": "Office"})
	})
	mux.HandleFunc("DELETE /tasks/v1/users/@me/lists/L1", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})
	reg := newRegistry(t, mux, false)

	tests := []struct {
		tool string
		args map[string]any
		want string
	}{
		{"get_task_list", map[string]any{"task_list_id": "L1"}, "Task List Found in 'work': Work (ID: L1)"},
		{"create_task_list", map[string]any{"title": "Groceries"}, "Task list 'Groceries' created successfully in 'work' with ID: L9"},
		{"update_task_list", map[string]any{"task_list_id": "L1", "new_title": "Office"}, "Task list in 'work' updated to 'Office'."},
		{"delete_task_list", map[string]any{"task_list_id": "L1"}, "Task list with ID L1 was deleted successfully from 'work'."},
	}
	for _, tt := range tests {
		t.Run(tt.tool, func(t *testing.T) {
			tt.args["account_alias"] = "work"
			text, isErr := reg.Call(t, tt.tool, tt.args)
			require.False(t, isErr, text)
			assert.Equal(t, tt.want, text)
		})
	}
}

func TestGetTasks(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /tasks/v1/lists/L1/tasks", func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		assert.Equal(t, "100", q.Get("maxResults"))
		assert.Equal(t, "true", q.Get("showCompleted"))
		tooltest.WriteJSON(w, map[string]any{"items": []map[string]string{
			{"id": "s1", "title": "Buy milk", "parent": "t1", "status": "needsAction"},
			{"id": "t1", "title": "Shopping", "status": "needsAction"},
			{"id": "t2", "title": "File taxes", "status": "completed"},
			{"id": "s2", "title": "Orphan", "parent": "hidden", "status": "needsAction"},
		}})
	})
	mux.HandleFunc("GET /tasks/v1/lists/empty/tasks", func(w http.ResponseWriter, r *http.Request) {
		tooltest.WriteJSON(w, map[string]any{})
	})
	reg := newRegistry(t, mux, false)

	text, isErr := reg.Call(t, "get_tasks", map[string]any{"account_alias": "work", "task_list_id": "L1", "show_completed": true})
	require.False(t, isErr, text)
	assert.Equal(t,
		"- [ ] Shopping (ID: t1)\n  - [ ] Buy milk (ID: s1)\n- [x] File taxes (ID: t2)\n- [ ] Orphan (ID: s2)",
		text)

	text, isErr = reg.Call(t, "get_tasks", map[string]any{"account_alias": "work", "task_list_id": "empty"})
	require.False(t, isErr, text)
	assert.Equal(t, "No tasks found in list ID empty for account 'work'.", text)
}

func TestGetTask(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /tasks/v1/lists/L1/tasks/t1", func(w http.ResponseWriter, r *http.Request) {
		tooltest.WriteJSON(w, map[string]string{"id": "t1", "title": "Call mom", "status": "needsAction", "due": "2025-03-02T00:00:00.000Z"})
	})
	reg := newRegistry(t, mux, false)

	text, isErr := reg.Call(t, "get_task", map[string]any{"account_alias": "personal", "task_list_id": "L1", "task_id": "t1"})
	require.False(t, isErr, text)
	assert.Equal(t, "Title: Call mom\nNotes: No notes.\nStatus: needsAction\nDue: 2025-03-02", text)
}

func TestCreateTask_Subtask(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /tasks/v1/lists/L1/tasks", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "t1", r.URL.Query().Get("parent"))
		var body map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "Buy eggs", body["title"])
		assert.Equal(t, tasks.StatusNeedsAction, body["status"])
		assert.Equal(t, "2025-03-02T00:00:00Z", body["due"])
		tooltest.WriteJSON(w, map[string]string{"id": "s9", "title": "Buy eggs"})
	})
	reg := newRegistry(t, mux, false)

	text, isErr := reg.Call(t, "create_task", map[string]any{
		"account_alias":  "work",
		"task_list_id":   "L1",
		"title":          "Buy eggs",
		"due_date":       "2025-03-02",
		"parent_task_id": "t1",
	})
	require.False(t, isErr, text)
	assert.Equal(t, "Task 'Buy eggs' created successfully in 'work'.", text)
}

func TestUpdateAndCompleteTask(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /tasks/v1/lists/L1/tasks/t1", func(w http.ResponseWriter, r *http.Request) {
		tooltest.WriteJSON(w, map[string]string{"id": "t1", "title": "Old", "notes": "keep me"})
	})
	mux.HandleFunc("PUT /tasks/v1/lists/L1/tasks/t1", func(w http.ResponseWriter, r *http.Request) {
		var body map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "New", body["title"])
		assert.Equal(t, "keep me", body["notes"])
		tooltest.WriteJSON(w, body)
	})
	mux.HandleFunc("PATCH /tasks/v1/lists/L1/tasks/t1", func(w http.ResponseWriter, r *http.Request) {
		var body map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, tasks.StatusCompleted, body["status"])
		tooltest.WriteJSON(w, map[string]string{"id": "t1", "title": "New", "status": "completed"})
	})
	reg := newRegistry(t, mux, false)

	text, isErr := reg.Call(t, "update_task", map[string]any{"account_alias": "work", "task_list_id": "L1", "task_id": "t1", "new_title": "New"})
	require.False(t, isErr, text)
	assert.Equal(t, "Task 'New' in 'work' was updated successfully.", text)

	text, isErr = reg.Call(t, "complete_task", map[string]any{"account_alias": "work", "task_list_id": "L1", "task_id": "t1"})
	require.False(t, isErr, text)
	assert.Equal(t, "Task 'New' in 'work' marked as complete.", text)
}

func TestMoveDeleteClear(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /tasks/v1/lists/L1/tasks/t2/move", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "t1", r.URL.Query().Get("parent"))
		assert.Empty(t, r.URL.Query().Get("previous"))
		tooltest.WriteJSON(w, map[string]string{"id": "t2", "parent": "t1"})
	})
	mux.HandleFunc("DELETE /tasks/v1/lists/L1/tasks/t2", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})
	mux.HandleFunc("POST /tasks/v1/lists/L1/clear", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})
	reg := newRegistry(t, mux, false)

	text, isErr := reg.Call(t, "move_task", map[string]any{"account_alias": "work", "task_list_id": "L1", "task_id": "t2", "parent_id": "t1"})
	require.False(t, isErr, text)
	assert.Equal(t, "Task with ID t2 in 'work' was moved successfully.", text)

	text, isErr = reg.Call(t, "delete_task", map[string]any{"account_alias": "work", "task_list_id": "L1", "task_id": "t2"})
	require.False(t, isErr, text)
	assert.Equal(t, "Task with ID t2 deleted successfully from 'work'.", text)

	text, isErr = reg.Call(t, "clear_completed_tasks", map[string]any{"account_alias": "work", "task_list_id": "L1"})
	require.False(t, isErr, text)
	assert.Equal(t, "All completed tasks from list ID L1 in 'work' have been cleared.", text)
}

func TestTasksTools_Errors(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /tasks/v1/lists/missing/tasks/t1", func(w http.ResponseWriter, r *http.Request) {
		tooltest.WriteError(w, http.StatusNotFound, "Not Found")
	})
	reg := newRegistry(t, mux, false)

	tests := []struct {
		name string
		tool string
		args map[string]any
		want string
	}{
		{"missing alias", "list_task_lists", map[string]any{}, "account_alias is required"},
		{"missing list", "get_tasks", map[string]any{"account_alias": "work"}, "task_list_id is required"},
		{"missing task", "get_task", map[string]any{"account_alias": "work", "task_list_id": "L1"}, "task_id is required"},
		{"nothing to update", "update_task", map[string]any{"account_alias": "work", "task_list_id": "L1", "task_id": "t1"}, "at least one of"},
		{"bad due date", "create_task", map[string]any{"account_alias": "work", "task_list_id": "L1", "title": "x", "due_date": "next week"}, "Invalid due_date"},
		{"own parent", "move_task", map[string]any{"account_alias": "work", "task_list_id": "L1", "task_id": "t1", "parent_id": "t1"}, "own parent"},
		{"unknown alias", "list_task_lists", map[string]any{"account_alias": "ghost"}, "Credentials file not found for account alias 'ghost'"},
		{"remote failure", "get_task", map[string]any{"account_alias": "work", "task_list_id": "missing", "task_id": "t1"}, "An error occurred getting task for 'work':"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			text, isErr := reg.Call(t, tt.tool, tt.args)
			assert.True(t, isErr)
			assert.Contains(t, text, tt.want)
		})
	}
}
