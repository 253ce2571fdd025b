package tasks

import (
	"context"
	"fmt"
	"time"

	"google.golang.org/api/option"
	tasks "google.golang.org/api/tasks/v1"

	"github.com/abdulehsan/Jarvis/internal/google"
)

// RequiredScopes are the OAuth scopes this package needs.
var RequiredScopes = []string{google.ScopeTasks}

// Page sizes used by the list calls.
const (
	MaxTaskLists = 25
	MaxTasks     = 100
)

// Client wraps the Google Tasks service for one account alias.
type Client struct {
	svc    *tasks.Service
	alias  string
	caller *google.Caller
}

// NewClient creates a Tasks client for alias. Credentials are resolved
// through provider on every request.
func NewClient(ctx context.Context, alias string, provider google.TokenProvider, caller *google.Caller, opts ...option.ClientOption) (*Client, error) {
	if provider == nil {
		return nil, fmt.Errorf("token provider cannot be nil")
	}
	if caller == nil {
		caller = &google.Caller{Service: google.ServiceTasks}
	}

	all := append([]option.ClientOption{option.WithHTTPClient(provider.HTTPClient(ctx, alias))}, opts...)
	svc, err := tasks.NewService(ctx, all...)
	if err != nil {
		return nil, fmt.Errorf("failed to create Tasks service: %w", err)
	}

	return &Client{svc: svc, alias: alias, caller: caller}, nil
}

// Alias returns the account alias this client is associated with
func (c *Client) Alias() string {
	return c.alias
}

// ListTaskLists lists the task lists of the account
func (c *Client) ListTaskLists(ctx context.Context) ([]TaskList, error) {
	var result *tasks.TaskLists
	err := c.caller.Do(ctx, "tasklists.list", func(ctx context.Context) error {
		var err error
		result, err = c.svc.Tasklists.List().MaxResults(MaxTaskLists).Context(ctx).Do()
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list task lists: %w", err)
	}

	taskLists := make([]TaskList, 0, len(result.Items))
	for _, tl := range result.Items {
		taskLists = append(taskLists, toTaskList(tl))
	}
	return taskLists, nil
}

// GetTaskList retrieves a specific task list by ID
func (c *Client) GetTaskList(ctx context.Context, taskListID string) (*TaskList, error) {
	var tl *tasks.TaskList
	err := c.caller.Do(ctx, "tasklists.get", func(ctx context.Context) error {
		var err error
		tl, err = c.svc.Tasklists.Get(taskListID).Context(ctx).Do()
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("failed to get task list: %w", err)
	}

	result := toTaskList(tl)
	return &result, nil
}

// CreateTaskList creates a new task list
func (c *Client) CreateTaskList(ctx context.Context, title string) (*TaskList, error) {
	var created *tasks.TaskList
	err := c.caller.Do(ctx, "tasklists.insert", func(ctx context.Context) error {
		var err error
		created, err = c.svc.Tasklists.Insert(&tasks.TaskList{Title: title}).Context(ctx).Do()
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create task list: %w", err)
	}

	result := toTaskList(created)
	return &result, nil
}

// UpdateTaskList renames a task list
func (c *Client) UpdateTaskList(ctx context.Context, taskListID, title string) (*TaskList, error) {
	var updated *tasks.TaskList
	err := c.caller.Do(ctx, "tasklists.patch", func(ctx context.Context) error {
		var err error
		updated, err = c.svc.Tasklists.Patch(taskListID, &tasks.TaskList{Title: title}).Context(ctx).Do()
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("failed to update task list: %w", err)
	}

	result := toTaskList(updated)
	return &result, nil
}

// DeleteTaskList deletes a task list and all of its tasks
func (c *Client) DeleteTaskList(ctx context.Context, taskListID string) error {
	err := c.caller.Do(ctx, "tasklists.delete", func(ctx context.Context) error {
		return c.svc.Tasklists.Delete(taskListID).Context(ctx).Do()
	})
	if err != nil {
		return fmt.Errorf("failed to delete task list: %w", err)
	}
	return nil
}

// ListTasks lists up to MaxTasks tasks of a list. Completed tasks, including
// ones hidden by other clients, are only returned when showCompleted is set.
func (c *Client) ListTasks(ctx context.Context, taskListID string, showCompleted bool) ([]Task, error) {
	call := c.svc.Tasks.List(taskListID).
		MaxResults(MaxTasks).
		ShowCompleted(showCompleted).
		ShowHidden(showCompleted)

	var result *tasks.Tasks
	err := c.caller.Do(ctx, "tasks.list", func(ctx context.Context) error {
		var err error
		result, err = call.Context(ctx).Do()
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list tasks: %w", err)
	}

	items := make([]Task, 0, len(result.Items))
	for _, t := range result.Items {
		items = append(items, toTask(t))
	}
	return items, nil
}

// GetTask retrieves a specific task by ID
func (c *Client) GetTask(ctx context.Context, taskListID, taskID string) (*Task, error) {
	t, err := c.getRaw(ctx, taskListID, taskID)
	if err != nil {
		return nil, err
	}
	result := toTask(t)
	return &result, nil
}

func (c *Client) getRaw(ctx context.Context, taskListID, taskID string) (*tasks.Task, error) {
	var t *tasks.Task
	err := c.caller.Do(ctx, "tasks.get", func(ctx context.Context) error {
		var err error
		t, err = c.svc.Tasks.Get(taskListID, taskID).Context(ctx).Do()
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("failed to get task: %w", err)
	}
	return t, nil
}

// CreateTask creates a task, or a subtask when input.Parent is set
func (c *Client) CreateTask(ctx context.Context, taskListID string, input TaskInput) (*Task, error) {
	t := &tasks.Task{
		Title:  input.Title,
		Notes:  input.Notes,
		Status: StatusNeedsAction,
	}
	if !input.Due.IsZero() {
		t.Due = input.Due.Format(time.RFC3339)
	}

	call := c.svc.Tasks.Insert(taskListID, t)
	if input.Parent != "" {
		call = call.Parent(input.Parent)
	}
	if input.Previous != "" {
		call = call.Previous(input.Previous)
	}

	var created *tasks.Task
	err := c.caller.Do(ctx, "tasks.insert", func(ctx context.Context) error {
		var err error
		created, err = call.Context(ctx).Do()
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create task: %w", err)
	}

	result := toTask(created)
	return &result, nil
}

// UpdateTask reads the task and writes it back with the non-empty fields of
// input applied.
func (c *Client) UpdateTask(ctx context.Context, taskListID, taskID string, input TaskInput) (*Task, error) {
	existing, err := c.getRaw(ctx, taskListID, taskID)
	if err != nil {
		return nil, fmt.Errorf("failed to get existing task: %w", err)
	}

	if input.Title != "" {
		existing.Title = input.Title
	}
	if input.Notes != "" {
		existing.Notes = input.Notes
	}
	if !input.Due.IsZero() {
		existing.Due = input.Due.Format(time.RFC3339)
	}

	var updated *tasks.Task
	err = c.caller.Do(ctx, "tasks.update", func(ctx context.Context) error {
		var err error
		updated, err = c.svc.Tasks.Update(taskListID, taskID, existing).Context(ctx).Do()
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("failed to update task: %w", err)
	}

	result := toTask(updated)
	return &result, nil
}

// CompleteTask marks a task as completed
func (c *Client) CompleteTask(ctx context.Context, taskListID, taskID string) (*Task, error) {
	var updated *tasks.Task
	err := c.caller.Do(ctx, "tasks.patch", func(ctx context.Context) error {
		var err error
		updated, err = c.svc.Tasks.Patch(taskListID, taskID, &tasks.Task{Status: StatusCompleted}).Context(ctx).Do()
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("failed to complete task: %w", err)
	}

	result := toTask(updated)
	return &result, nil
}

// DeleteTask deletes a task
func (c *Client) DeleteTask(ctx context.Context, taskListID, taskID string) error {
	err := c.caller.Do(ctx, "tasks.delete", func(ctx context.Context) error {
		return c.svc.Tasks.Delete(taskListID, taskID).Context(ctx).Do()
	})
	if err != nil {
		return fmt.Errorf("failed to delete task: %w", err)
	}
	return nil
}

// MoveTask moves a task under a new parent and/or after a sibling. Empty
// parent moves it to the top level.
func (c *Client) MoveTask(ctx context.Context, taskListID, taskID, parent, previous string) (*Task, error) {
	call := c.svc.Tasks.Move(taskListID, taskID)
	if parent != "" {
		call = call.Parent(parent)
	}
	if previous != "" {
		call = call.Previous(previous)
	}

	var moved *tasks.Task
	err := c.caller.Do(ctx, "tasks.move", func(ctx context.Context) error {
		var err error
		moved, err = call.Context(ctx).Do()
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("failed to move task: %w", err)
	}

	result := toTask(moved)
	return &result, nil
}

// ClearCompletedTasks hides all completed tasks from a task list
func (c *Client) ClearCompletedTasks(ctx context.Context, taskListID string) error {
	err := c.caller.Do(ctx, "tasks.clear", func(ctx context.Context) error {
		return c.svc.Tasks.Clear(taskListID).Context(ctx).Do()
	})
	if err != nil {
		return fmt.Errorf("failed to clear completed tasks: %w", err)
	}
	return nil
}
