// Package tasks_tools provides the Google Tasks tools of the assistant.
//
// # Available Tools
//
// Task List Management:
//   - list_task_lists: List the task lists of an account
//   - get_task_list: Get a task list by ID
//   - create_task_list: Create a new task list
//   - update_task_list: Rename a task list
//   - delete_task_list: Delete a task list
//
// Task Management:
//   - get_tasks: List the tasks of a list, subtasks indented under parents
//   - get_task: Get the title, notes and status of a task
//   - create_task: Create a task or subtask
//   - update_task: Change the title, notes or due date of a task
//   - complete_task: Mark a task as completed
//   - delete_task: Delete a task
//   - move_task: Reorder a task or move it under a parent
//   - clear_completed_tasks: Hide all completed tasks of a list
//
// All tools take a required account_alias. The delete and clear tools are
// registered only when destructive tools are allowed.
package tasks_tools
