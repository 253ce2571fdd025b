package tasks_tools

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/abdulehsan/Jarvis/internal/server"
	"github.com/abdulehsan/Jarvis/internal/tasks"
	"github.com/abdulehsan/Jarvis/internal/tools/common"
)

const dueDateLayout = "2006-01-02"

func withTaskID(description string) mcp.ToolOption {
	return mcp.WithString("task_id",
		mcp.Required(),
		mcp.Description(description),
	)
}

// registerTaskTools registers task management tools
func registerTaskTools(s common.ToolAdder, sc *server.ServerContext, readOnly bool) error {
	addTool(s, sc, mcp.NewTool("get_tasks",
		mcp.WithDescription("Gets all tasks and subtasks from a specific list in a specific Google account."),
		common.WithAlias(),
		withTaskListID("The ID of the task list."),
		mcp.WithBoolean("show_completed",
			mcp.Description("Set true to include completed tasks (default: false)."),
		),
	), handleGetTasks)

	addTool(s, sc, mcp.NewTool("get_task",
		mcp.WithDescription("Retrieves a single task by its ID from a specific Google account."),
		common.WithAlias(),
		withTaskListID("The ID of the list containing the task."),
		withTaskID("The unique ID of the task to retrieve."),
	), handleGetTask)

	addTool(s, sc, mcp.NewTool("create_task",
		mcp.WithDescription("Creates a new task or subtask in a specified list for a specific Google account."),
		common.WithAlias(),
		withTaskListID("The ID of the task list."),
		mcp.WithString("title",
			mcp.Required(),
			mcp.Description("The title of the task."),
		),
		mcp.WithString("notes",
			mcp.Description("Additional notes."),
		),
		mcp.WithString("due_date",
			mcp.Description("Due date in YYYY-MM-DD format."),
		),
		mcp.WithString("parent_task_id",
			mcp.Description("The ID of the parent task when creating a subtask."),
		),
	), handleCreateTask)

	addTool(s, sc, mcp.NewTool("update_task",
		mcp.WithDescription("Updates the title, notes or due date of a specific task in a specific Google account."),
		common.WithAlias(),
		withTaskListID("The ID of the list."),
		withTaskID("The ID of the task to update."),
		mcp.WithString("new_title",
			mcp.Description("The new title."),
		),
		mcp.WithString("new_notes",
			mcp.Description("The new notes."),
		),
		mcp.WithString("new_due_date",
			mcp.Description("The new due date in YYYY-MM-DD format."),
		),
	), handleUpdateTask)

	addTool(s, sc, mcp.NewTool("complete_task",
		mcp.WithDescription("Marks a specific task as completed in a specific Google account."),
		common.WithAlias(),
		withTaskListID("The ID of the list."),
		withTaskID("The ID of the task to complete."),
	), handleCompleteTask)

	addTool(s, sc, mcp.NewTool("move_task",
		mcp.WithDescription("Moves a task to a different position or makes it a subtask in a specific Google account."),
		common.WithAlias(),
		withTaskListID("The ID of the list."),
		withTaskID("The ID of the task to move."),
		mcp.WithString("parent_id",
			mcp.Description("New parent task ID. Omit to move the task to the top level."),
		),
		mcp.WithString("previous_id",
			mcp.Description("Task ID to place this task after. Omit to move it first."),
		),
	), handleMoveTask)

	if !readOnly {
		addTool(s, sc, mcp.NewTool("delete_task",
			mcp.WithDescription("Permanently deletes a specific task from a specific Google account."),
			common.WithAlias(),
			withTaskListID("The ID of the list."),
			withTaskID("The ID of the task to delete."),
		), handleDeleteTask)

		addTool(s, sc, mcp.NewTool("clear_completed_tasks",
			mcp.WithDescription("Permanently deletes all completed tasks from a specific list in a specific Google account."),
			common.WithAlias(),
			withTaskListID("The ID of the task list to clear."),
		), handleClearCompletedTasks)
	}

	return nil
}

// taskArgs reads the alias, list ID and task ID that single-task tools need.
func taskArgs(args map[string]any) (alias, taskListID, taskID string, errResult *mcp.CallToolResult) {
	alias, taskListID, errResult = listArgs(args, true)
	if errResult != nil {
		return "", "", "", errResult
	}
	taskID = common.StringArg(args, "task_id")
	if taskID == "" {
		return "", "", "", common.RequiredError("task_id")
	}
	return alias, taskListID, taskID, nil
}

func parseDueDate(args map[string]any, name string) (time.Time, *mcp.CallToolResult) {
	raw := common.StringArg(args, name)
	if raw == "" {
		return time.Time{}, nil
	}
	due, err := time.Parse(dueDateLayout, raw)
	if err != nil {
		return time.Time{}, mcp.NewToolResultError(fmt.Sprintf("Invalid %s %q. Use the YYYY-MM-DD format.", name, raw))
	}
	return due, nil
}

func checkbox(t tasks.Task) string {
	if t.IsCompleted() {
		return "[x]"
	}
	return "[ ]"
}

// formatTaskTree renders tasks one per line with subtasks indented under
// their parent.
func formatTaskTree(items []tasks.Task) string {
	var lines []string
	for _, node := range tasks.Tree(items) {
		lines = append(lines, fmt.Sprintf("- %s %s (ID: %s)", checkbox(node.Task), node.Task.Title, node.Task.ID))
		for _, sub := range node.Subtasks {
			lines = append(lines, fmt.Sprintf("  - %s %s (ID: %s)", checkbox(sub), sub.Title, sub.ID))
		}
	}
	return strings.Join(lines, "\n")
}

func handleGetTasks(ctx context.Context, request mcp.CallToolRequest, sc *server.ServerContext) (*mcp.CallToolResult, error) {
	args := request.GetArguments()
	alias, taskListID, errResult := listArgs(args, true)
	if errResult != nil {
		return errResult, nil
	}

	client, err := getTasksClient(sc, alias)
	if err != nil {
		return common.ErrorResult("getting tasks for", alias, err), nil
	}
	items, err := client.ListTasks(ctx, taskListID, common.BoolArg(args, "show_completed", false))
	if err != nil {
		return common.ErrorResult("getting tasks for", alias, err), nil
	}
	if len(items) == 0 {
		return mcp.NewToolResultText(fmt.Sprintf("No tasks found in list ID %s for account '%s'.", taskListID, alias)), nil
	}
	return mcp.NewToolResultText(formatTaskTree(items)), nil
}

func handleGetTask(ctx context.Context, request mcp.CallToolRequest, sc *server.ServerContext) (*mcp.CallToolResult, error) {
	alias, taskListID, taskID, errResult := taskArgs(request.GetArguments())
	if errResult != nil {
		return errResult, nil
	}

	client, err := getTasksClient(sc, alias)
	if err != nil {
		return common.ErrorResult("getting task for", alias, err), nil
	}
	task, err := client.GetTask(ctx, taskListID, taskID)
	if err != nil {
		return common.ErrorResult("getting task for", alias, err), nil
	}

	notes := task.Notes
	if notes == "" {
		notes = "No notes."
	}
	text := fmt.Sprintf("Title: %s\nNotes: %s\nStatus: %s", task.Title, notes, task.Status)
	if !task.Due.IsZero() {
		text += "\nDue: " + task.Due.UTC().Format(dueDateLayout)
	}
	return mcp.NewToolResultText(text), nil
}

func handleCreateTask(ctx context.Context, request mcp.CallToolRequest, sc *server.ServerContext) (*mcp.CallToolResult, error) {
	args := request.GetArguments()
	alias, taskListID, errResult := listArgs(args, true)
	if errResult != nil {
		return errResult, nil
	}
	title := common.StringArg(args, "title")
	if title == "" {
		return common.RequiredError("title"), nil
	}
	due, errResult := parseDueDate(args, "due_date")
	if errResult != nil {
		return errResult, nil
	}

	client, err := getTasksClient(sc, alias)
	if err != nil {
		return common.ErrorResult("creating task for", alias, err), nil
	}
	task, err := client.CreateTask(ctx, taskListID, tasks.TaskInput{
		Title:  title,
		Notes:  common.StringArg(args, "notes"),
		Due:    due,
		Parent: common.StringArg(args, "parent_task_id"),
	})
	if err != nil {
		return common.ErrorResult("creating task for", alias, err), nil
	}
	return mcp.NewToolResultText(fmt.Sprintf("Task '%s' created successfully in '%s'.", task.Title, alias)), nil
}

func handleUpdateTask(ctx context.Context, request mcp.CallToolRequest, sc *server.ServerContext) (*mcp.CallToolResult, error) {
	args := request.GetArguments()
	alias, taskListID, taskID, errResult := taskArgs(args)
	if errResult != nil {
		return errResult, nil
	}
	due, errResult := parseDueDate(args, "new_due_date")
	if errResult != nil {
		return errResult, nil
	}
	input := tasks.TaskInput{
		Title: common.StringArg(args, "new_title"),
		Notes: common.StringArg(args, "new_notes"),
		Due:   due,
	}
	if input.Title == "" && input.Notes == "" && input.Due.IsZero() {
		return mcp.NewToolResultError("at least one of new_title, new_notes or new_due_date is required"), nil
	}

	client, err := getTasksClient(sc, alias)
	if err != nil {
		return common.ErrorResult("updating task for", alias, err), nil
	}
	task, err := client.UpdateTask(ctx, taskListID, taskID, input)
	if err != nil {
		return common.ErrorResult("updating task for", alias, err), nil
	}
	return mcp.NewToolResultText(fmt.Sprintf("Task '%s' in '%s' was updated successfully.", task.Title, alias)), nil
}

func handleCompleteTask(ctx context.Context, request mcp.CallToolRequest, sc *server.ServerContext) (*mcp.CallToolResult, error) {
	alias, taskListID, taskID, errResult := taskArgs(request.GetArguments())
	if errResult != nil {
		return errResult, nil
	}

	client, err := getTasksClient(sc, alias)
	if err != nil {
		return common.ErrorResult("completing task for", alias, err), nil
	}
	task, err := client.CompleteTask(ctx, taskListID, taskID)
	if err != nil {
		return common.ErrorResult("completing task for", alias, err), nil
	}
	return mcp.NewToolResultText(fmt.Sprintf("Task '%s' in '%s' marked as complete.", task.Title, alias)), nil
}

func handleDeleteTask(ctx context.Context, request mcp.CallToolRequest, sc *server.ServerContext) (*mcp.CallToolResult, error) {
	alias, taskListID, taskID, errResult := taskArgs(request.GetArguments())
	if errResult != nil {
		return errResult, nil
	}

	client, err := getTasksClient(sc, alias)
	if err != nil {
		return common.ErrorResult("deleting task for", alias, err), nil
	}
	if err := client.DeleteTask(ctx, taskListID, taskID); err != nil {
		return common.ErrorResult("deleting task for", alias, err), nil
	}
	return mcp.NewToolResultText(fmt.Sprintf("Task with ID %s deleted successfully from '%s'.", taskID, alias)), nil
}

func handleMoveTask(ctx context.Context, request mcp.CallToolRequest, sc *server.ServerContext) (*mcp.CallToolResult, error) {
	args := request.GetArguments()
	alias, taskListID, taskID, errResult := taskArgs(args)
	if errResult != nil {
		return errResult, nil
	}
	parent := common.StringArg(args, "parent_id")
	if parent == taskID {
		return mcp.NewToolResultError("a task cannot be its own parent"), nil
	}

	client, err := getTasksClient(sc, alias)
	if err != nil {
		return common.ErrorResult("moving task for", alias, err), nil
	}
	if _, err := client.MoveTask(ctx, taskListID, taskID, parent, common.StringArg(args, "previous_id")); err != nil {
		return common.ErrorResult("moving task for", alias, err), nil
	}
	return mcp.NewToolResultText(fmt.Sprintf("Task with ID %s in '%s' was moved successfully.", taskID, alias)), nil
}

func handleClearCompletedTasks(ctx context.Context, request mcp.CallToolRequest, sc *server.ServerContext) (*mcp.CallToolResult, error) {
	alias, taskListID, errResult := listArgs(request.GetArguments(), true)
	if errResult != nil {
		return errResult, nil
	}

	client, err := getTasksClient(sc, alias)
	if err != nil {
		return common.ErrorResult("clearing tasks for", alias, err), nil
	}
	if err := client.ClearCompletedTasks(ctx, taskListID); err != nil {
		return common.ErrorResult("clearing tasks for", alias, err), nil
	}
	return mcp.NewToolResultText(fmt.Sprintf("All completed tasks from list ID %s in '%s' have been cleared.", taskListID, alias)), nil
}
