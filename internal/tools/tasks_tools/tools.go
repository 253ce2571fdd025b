package tasks_tools

import (
	"context"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/abdulehsan/Jarvis/internal/google"
	"github.com/abdulehsan/Jarvis/internal/server"
	"github.com/abdulehsan/Jarvis/internal/tasks"
	"github.com/abdulehsan/Jarvis/internal/tools/common"
)

// getTasksClient retrieves or creates a tasks client for the specified alias
func getTasksClient(sc *server.ServerContext, alias string) (*tasks.Client, error) {
	client, err := sc.TasksClient(alias)
	if err != nil {
		return nil, fmt.Errorf("failed to create Tasks client for account %s: %w", alias, err)
	}
	return client, nil
}

// RegisterTasksTools registers all Tasks-related tools
func RegisterTasksTools(s common.ToolAdder, sc *server.ServerContext, readOnly bool) error {
	if err := registerTaskListTools(s, sc, readOnly); err != nil {
		return fmt.Errorf("failed to register task list tools: %w", err)
	}
	if err := registerTaskTools(s, sc, readOnly); err != nil {
		return fmt.Errorf("failed to register task tools: %w", err)
	}
	return nil
}

func withTaskListID(description string) mcp.ToolOption {
	return mcp.WithString("task_list_id",
		mcp.Required(),
		mcp.Description(description),
	)
}

func addTool(s common.ToolAdder, sc *server.ServerContext, tool mcp.Tool, handler func(context.Context, mcp.CallToolRequest, *server.ServerContext) (*mcp.CallToolResult, error)) {
	s.AddTool(tool, common.InstrumentedToolHandler(tool.Name, google.ServiceTasks, sc,
		func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			return handler(ctx, request, sc)
		}))
}

// registerTaskListTools registers task list management tools
func registerTaskListTools(s common.ToolAdder, sc *server.ServerContext, readOnly bool) error {
	addTool(s, sc, mcp.NewTool("list_task_lists",
		mcp.WithDescription("Lists all task lists for a specific Google account."),
		common.WithAlias(),
	), handleListTaskLists)

	addTool(s, sc, mcp.NewTool("get_task_list",
		mcp.WithDescription("Retrieves a single task list by its ID from a specific Google account."),
		common.WithAlias(),
		withTaskListID("The unique ID of the task list to retrieve."),
	), handleGetTaskList)

	addTool(s, sc, mcp.NewTool("create_task_list",
		mcp.WithDescription("Creates a new task list in a specific Google account."),
		common.WithAlias(),
		mcp.WithString("title",
			mcp.Required(),
			mcp.Description("The title of the new task list."),
		),
	), handleCreateTaskList)

	addTool(s, sc, mcp.NewTool("update_task_list",
		mcp.WithDescription("Updates the title of an existing task list in a specific Google account."),
		common.WithAlias(),
		withTaskListID("The ID of the task list to update."),
		mcp.WithString("new_title",
			mcp.Required(),
			mcp.Description("The new title for the task list."),
		),
	), handleUpdateTaskList)

	if !readOnly {
		addTool(s, sc, mcp.NewTool("delete_task_list",
			mcp.WithDescription("Permanently deletes an entire task list from a specific Google account."),
			common.WithAlias(),
			withTaskListID("The unique ID of the task list to delete."),
		), handleDeleteTaskList)
	}

	return nil
}

// listArgs reads the alias and, when requireList is set, the task list ID.
// A non-nil result is the validation error to return.
func listArgs(args map[string]any, requireList bool) (alias, taskListID string, errResult *mcp.CallToolResult) {
	alias = common.AliasFromArgs(args)
	if alias == "" {
		return "", "", common.RequiredError(common.AliasParam)
	}
	taskListID = common.StringArg(args, "task_list_id")
	if requireList && taskListID == "" {
		return "", "", common.RequiredError("task_list_id")
	}
	return alias, taskListID, nil
}

func handleListTaskLists(ctx context.Context, request mcp.CallToolRequest, sc *server.ServerContext) (*mcp.CallToolResult, error) {
	alias, _, errResult := listArgs(request.GetArguments(), false)
	if errResult != nil {
		return errResult, nil
	}

	client, err := getTasksClient(sc, alias)
	if err != nil {
		return common.ErrorResult("listing task lists for", alias, err), nil
	}
	lists, err := client.ListTaskLists(ctx)
	if err != nil {
		return common.ErrorResult("listing task lists for", alias, err), nil
	}
	if len(lists) == 0 {
		return mcp.NewToolResultText(fmt.Sprintf("No task lists found for account '%s'.", alias)), nil
	}

	lines := make([]string, 0, len(lists))
	for _, l := range lists {
		lines = append(lines, fmt.Sprintf("- Title: %s (ID: %s)", l.Title, l.ID))
	}
	return mcp.NewToolResultText(strings.Join(lines, "\n")), nil
}

func handleGetTaskList(ctx context.Context, request mcp.CallToolRequest, sc *server.ServerContext) (*mcp.CallToolResult, error) {
	alias, taskListID, errResult := listArgs(request.GetArguments(), true)
	if errResult != nil {
		return errResult, nil
	}

	client, err := getTasksClient(sc, alias)
	if err != nil {
		return common.ErrorResult("getting task list for", alias, err), nil
	}
	list, err := client.GetTaskList(ctx, taskListID)
	if err != nil {
		return common.ErrorResult("getting task list for", alias, err), nil
	}
	return mcp.NewToolResultText(fmt.Sprintf("Task List Found in '%s': %s (ID: %s)", alias, list.Title, list.ID)), nil
}

func handleCreateTaskList(ctx context.Context, request mcp.CallToolRequest, sc *server.ServerContext) (*mcp.CallToolResult, error) {
	args := request.GetArguments()
	alias, _, errResult := listArgs(args, false)
	if errResult != nil {
		return errResult, nil
	}
	title := common.StringArg(args, "title")
	if title == "" {
		return common.RequiredError("title"), nil
	}

	client, err := getTasksClient(sc, alias)
	if err != nil {
		return common.ErrorResult("creating task list for", alias, err), nil
	}
	list, err := client.CreateTaskList(ctx, title)
	if err != nil {
		return common.ErrorResult("creating task list for", alias, err), nil
	}
	return mcp.NewToolResultText(fmt.Sprintf("Task list '%s' created successfully in '%s' with ID: %s", list.Title, alias, list.ID)), nil
}

func handleUpdateTaskList(ctx context.Context, request mcp.CallToolRequest, sc *server.ServerContext) (*mcp.CallToolResult, error) {
	args := request.GetArguments()
	alias, taskListID, errResult := listArgs(args, true)
	if errResult != nil {
		return errResult, nil
	}
	newTitle := common.StringArg(args, "new_title")
	if newTitle == "" {
		return common.RequiredError("new_title"), nil
	}

	client, err := getTasksClient(sc, alias)
	if err != nil {
		return common.ErrorResult("updating task list for", alias, err), nil
	}
	list, err := client.UpdateTaskList(ctx, taskListID, newTitle)
	if err != nil {
		return common.ErrorResult("updating task list for", alias, err), nil
	}
	return mcp.NewToolResultText(fmt.Sprintf("Task list in '%s' updated to '%s'.", alias, list.Title)), nil
}

func handleDeleteTaskList(ctx context.Context, request mcp.CallToolRequest, sc *server.ServerContext) (*mcp.CallToolResult, error) {
	alias, taskListID, errResult := listArgs(request.GetArguments(), true)
	if errResult != nil {
		return errResult, nil
	}

	client, err := getTasksClient(sc, alias)
	if err != nil {
		return common.ErrorResult("deleting task list for", alias, err), nil
	}
	if err := client.DeleteTaskList(ctx, taskListID); err != nil {
		return common.ErrorResult("deleting task list for", alias, err), nil
	}
	return mcp.NewToolResultText(fmt.Sprintf("Task list with ID %s was deleted successfully from '%s'.", taskListID, alias)), nil
}
