package tasks

import (
	"time"

	tasks "google.golang.org/api/tasks/v1"
)

// Task statuses as used by the API.
const (
	StatusNeedsAction = "needsAction"
	StatusCompleted   = "completed"
)

// TaskList represents a Google Tasks task list
type TaskList struct {
	ID      string
	Title   string
	Updated time.Time
}

// Task represents a Google Tasks task
type Task struct {
	ID        string
	Title     string
	Notes     string
	Status    string // "needsAction" or "completed"
	Due       time.Time
	Completed time.Time
	Parent    string // Parent task ID for subtasks
	Position  string // Position in the list
}

// IsCompleted reports whether the task is done.
func (t Task) IsCompleted() bool {
	return t.Status == StatusCompleted
}

// TaskInput represents the input for creating or updating a task
type TaskInput struct {
	Title    string
	Notes    string
	Due      time.Time
	Parent   string // Parent task ID for subtasks
	Previous string // Previous sibling task ID for positioning
}

// TaskNode is a top-level task with its direct subtasks.
type TaskNode struct {
	Task     Task
	Subtasks []Task
}

// Tree groups tasks under their parents, keeping API order. Subtasks whose
// parent is not in the slice (for example a hidden completed parent) are
// returned as top-level nodes so nothing is dropped.
func Tree(items []Task) []TaskNode {
	index := make(map[string]int, len(items))
	var nodes []TaskNode
	for _, t := range items {
		if t.Parent == "" {
			index[t.ID] = len(nodes)
			nodes = append(nodes, TaskNode{Task: t})
		}
	}
	for _, t := range items {
		if t.Parent == "" {
			continue
		}
		if i, ok := index[t.Parent]; ok {
			nodes[i].Subtasks = append(nodes[i].Subtasks, t)
			continue
		}
		nodes = append(nodes, TaskNode{Task: t})
	}
	return nodes
}

// toTaskList converts a Google Tasks TaskList to our TaskList type
func toTaskList(tl *tasks.TaskList) TaskList {
	if tl == nil {
		return TaskList{}
	}

	result := TaskList{
		ID:    tl.Id,
		Title: tl.Title,
	}

	if tl.Updated != "" {
		if t, err := time.Parse(time.RFC3339, tl.Updated); err == nil {
			result.Updated = t
		}
	}

	return result
}

// toTask converts a Google Tasks Task to our Task type
func toTask(t *tasks.Task) Task {
	if t == nil {
		return Task{}
	}

	result := Task{
		ID:       t.Id,
		Title:    t.Title,
		Notes:    t.Notes,
		Status:   t.Status,
		Parent:   t.Parent,
		Position: t.Position,
	}

	if t.Due != "" {
		if due, err := time.Parse(time.RFC3339, t.Due); err == nil {
			result.Due = due
		}
	}
	if t.Completed != nil && *t.Completed != "" {
		if completed, err := time.Parse(time.RFC3339, *t.Completed); err == nil {
			result.Completed = completed
		}
	}

	return result
}
