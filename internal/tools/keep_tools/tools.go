package keep_tools

import (
	"context"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/abdulehsan/Jarvis/internal/google"
	"github.com/abdulehsan/Jarvis/internal/keep"
	"github.com/abdulehsan/Jarvis/internal/server"
	"github.com/abdulehsan/Jarvis/internal/tools/common"
)

const noNotesFound = "No notes found in Google Keep."

func withNoteID(description string) mcp.ToolOption {
	return mcp.WithString("note_id",
		mcp.Required(),
		mcp.Description(description),
	)
}

// RegisterKeepTools registers the Keep tools. delete_note is left out in
// read-only mode.
func RegisterKeepTools(s common.ToolAdder, sc *server.ServerContext, readOnly bool) error {
	add := func(tool mcp.Tool, handler func(context.Context, mcp.CallToolRequest, *keep.Session) (*mcp.CallToolResult, error)) {
		s.AddTool(tool, common.InstrumentedToolHandler(tool.Name, google.ServiceKeep, sc,
			func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
				return handler(ctx, request, sc.Keep())
			}))
	}

	add(mcp.NewTool("list_notes",
		mcp.WithDescription("Lists the notes in Google Keep."),
	), handleListNotes)

	add(mcp.NewTool("get_note",
		mcp.WithDescription("Retrieves the title and content of a single Google Keep note."),
		withNoteID("The unique ID of the note to retrieve, e.g., 'notes/12345'. Use list_notes to find this ID."),
	), handleGetNote)

	add(mcp.NewTool("create_note",
		mcp.WithDescription("Creates a new text note in Google Keep."),
		mcp.WithString("title",
			mcp.Required(),
			mcp.Description("The title for the new note."),
		),
		mcp.WithString("body_text",
			mcp.Description("The main text content of the note."),
		),
	), handleCreateNote)

	add(mcp.NewTool("share_note",
		mcp.WithDescription("Shares a Google Keep note with another user."),
		withNoteID("The unique ID of the note to share, e.g., 'notes/12345'."),
		mcp.WithString("email_address",
			mcp.Required(),
			mcp.Description("The email address of the user to share the note with."),
		),
		mcp.WithString("role",
			mcp.Description("The role to grant. Can be 'READER' or 'WRITER'. Defaults to 'WRITER'."),
			mcp.Enum(keep.RoleReader, keep.RoleWriter),
		),
	), handleShareNote)

	if !readOnly {
		add(mcp.NewTool("delete_note",
			mcp.WithDescription("Permanently deletes a Google Keep note."),
			withNoteID("The unique ID of the note to delete, e.g., 'notes/12345'."),
		), handleDeleteNote)
	}

	return nil
}

func handleListNotes(ctx context.Context, request mcp.CallToolRequest, session *keep.Session) (*mcp.CallToolResult, error) {
	var notes []keep.Note
	err := session.Do(ctx, func(c *keep.Client) error {
		var err error
		notes, err = c.ListNotes(ctx, keep.DefaultPageSize)
		return err
	})
	if err != nil {
		return common.ErrorResult("", "", err), nil
	}
	if len(notes) == 0 {
		return mcp.NewToolResultText(noNotesFound), nil
	}

	lines := make([]string, 0, len(notes))
	for _, n := range notes {
		lines = append(lines, fmt.Sprintf("- Title: %s (ID: %s)", n.DisplayTitle(), n.Name))
	}
	return mcp.NewToolResultText(strings.Join(lines, "\n")), nil
}

func handleGetNote(ctx context.Context, request mcp.CallToolRequest, session *keep.Session) (*mcp.CallToolResult, error) {
	noteID := common.StringArg(request.GetArguments(), "note_id")
	if noteID == "" {
		return common.RequiredError("note_id"), nil
	}

	var note *keep.Note
	err := session.Do(ctx, func(c *keep.Client) error {
		var err error
		note, err = c.GetNote(ctx, noteID)
		return err
	})
	if err != nil {
		return common.ErrorResult("", "", err), nil
	}
	return mcp.NewToolResultText(fmt.Sprintf("Title: %s\n\nContent:\n%s", note.DisplayTitle(), note.Text)), nil
}

func handleCreateNote(ctx context.Context, request mcp.CallToolRequest, session *keep.Session) (*mcp.CallToolResult, error) {
	args := request.GetArguments()
	title := common.StringArg(args, "title")
	if title == "" {
		return common.RequiredError("title"), nil
	}

	var note *keep.Note
	err := session.Do(ctx, func(c *keep.Client) error {
		var err error
		note, err = c.CreateNote(ctx, title, common.StringArg(args, "body_text"))
		return err
	})
	if err != nil {
		return common.ErrorResult("", "", err), nil
	}
	return mcp.NewToolResultText(fmt.Sprintf("Note '%s' created successfully with ID: %s", note.Title, note.Name)), nil
}

func handleDeleteNote(ctx context.Context, request mcp.CallToolRequest, session *keep.Session) (*mcp.CallToolResult, error) {
	noteID := common.StringArg(request.GetArguments(), "note_id")
	if noteID == "" {
		return common.RequiredError("note_id"), nil
	}

	err := session.Do(ctx, func(c *keep.Client) error {
		return c.DeleteNote(ctx, noteID)
	})
	if err != nil {
		return common.ErrorResult("", "", err), nil
	}
	return mcp.NewToolResultText(fmt.Sprintf("Note with ID %s was deleted successfully.", noteID)), nil
}

func handleShareNote(ctx context.Context, request mcp.CallToolRequest, session *keep.Session) (*mcp.CallToolResult, error) {
	args := request.GetArguments()
	noteID := common.StringArg(args, "note_id")
	if noteID == "" {
		return common.RequiredError("note_id"), nil
	}
	email := common.StringArg(args, "email_address")
	if email == "" {
		return common.RequiredError("email_address"), nil
	}
	role, err := keep.NormalizeRole(common.StringArg(args, "role"))
	if err != nil {
		return common.ErrorResult("", "", err), nil
	}

	var perm *keep.Permission
	err = session.Do(ctx, func(c *keep.Client) error {
		var err error
		perm, err = c.ShareNote(ctx, noteID, email, role)
		return err
	})
	if err != nil {
		return common.ErrorResult("", "", err), nil
	}
	return mcp.NewToolResultText(fmt.Sprintf("Note %s shared successfully with %s as a %s.", noteID, email, perm.Role)), nil
}
