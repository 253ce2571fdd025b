// Package tasks provides a client for managing Google Tasks.
//
// This package wraps the Google Tasks API (tasks/v1) for one account alias and
// provides functionality for:
//   - Managing task lists (list, get, create, rename, delete)
//   - Managing tasks (list, get, create, update, complete, delete, move)
//   - Clearing completed tasks from a list
//   - Grouping subtasks under their parents for display (Tree)
//
// # Authentication
//
// Requests are authorised through a google.TokenProvider, normally the
// credential resolver, which refreshes and persists expired tokens. The
// account must have been enrolled with the shared scope set, which includes
// RequiredScopes.
//
// # Example Usage
//
//	client, err := tasks.NewClient(ctx, "personal", resolver, caller)
//	if err != nil {
//	    return err
//	}
//
//	lists, err := client.ListTaskLists(ctx)
//	if err != nil {
//	    return err
//	}
//
//	task, err := client.CreateTask(ctx, lists[0].ID, tasks.TaskInput{
//	    Title: "Complete project",
//	    Notes: "Finish implementation and testing",
//	})
//	if err != nil {
//	    return err
//	}
//
//	_, err = client.CompleteTask(ctx, lists[0].ID, task.ID)
package tasks
