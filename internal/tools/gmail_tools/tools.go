package gmail_tools

import (
	"context"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/abdulehsan/Jarvis/internal/gmail"
	"github.com/abdulehsan/Jarvis/internal/google"
	"github.com/abdulehsan/Jarvis/internal/server"
	"github.com/abdulehsan/Jarvis/internal/tools/common"
)

const (
	noEmailsFound = "No emails found matching your query."
	noPlainBody   = "[No plain text body found or email format not supported]"
)

// RegisterGmailTools registers all Gmail-related tools
func RegisterGmailTools(s common.ToolAdder, sc *server.ServerContext, readOnly bool) error {
	searchTool := mcp.NewTool("search_gmail",
		mcp.WithDescription("Searches a specific Gmail account for emails matching a query."),
		common.WithAlias(),
		mcp.WithString("query",
			mcp.Required(),
			mcp.Description("The search query, same as Gmail's search bar. E.g., 'from:friend@example.com', 'is:unread'"),
		),
		mcp.WithNumber("max_results",
			mcp.Description("Maximum number of emails to return (default: 10)."),
		),
	)
	s.AddTool(searchTool, common.InstrumentedToolHandler("search_gmail", google.ServiceGmail, sc,
		func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			return handleSearch(ctx, request, sc)
		}))

	getTool := mcp.NewTool("get_gmail_message",
		mcp.WithDescription("Reads the sender, subject and plain text body of one email."),
		common.WithAlias(),
		mcp.WithString("message_id",
			mcp.Required(),
			mcp.Description("The unique ID of the email to be read. Get this ID from the search_gmail tool."),
		),
	)
	s.AddTool(getTool, common.InstrumentedToolHandler("get_gmail_message", google.ServiceGmail, sc,
		func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			return handleGetMessage(ctx, request, sc)
		}))

	if err := RegisterEmailTools(s, sc, readOnly); err != nil {
		return fmt.Errorf("failed to register email tools: %w", err)
	}

	if !readOnly {
		trashTool := mcp.NewTool("trash_gmail_message",
			mcp.WithDescription("Moves an email to the trash in a specific Gmail account."),
			common.WithAlias(),
			mcp.WithString("message_id",
				mcp.Required(),
				mcp.Description("The unique ID of the email message to move to trash. Use search_gmail first."),
			),
		)
		s.AddTool(trashTool, common.InstrumentedToolHandler("trash_gmail_message", google.ServiceGmail, sc,
			func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
				return handleTrash(ctx, request, sc)
			}))
	}

	return nil
}

func getGmailClient(sc *server.ServerContext, alias string) (*gmail.Client, error) {
	client, err := sc.GmailClient(alias)
	if err != nil {
		return nil, fmt.Errorf("failed to create Gmail client for account %s: %w", alias, err)
	}
	return client, nil
}

func handleSearch(ctx context.Context, request mcp.CallToolRequest, sc *server.ServerContext) (*mcp.CallToolResult, error) {
	args := request.GetArguments()
	alias := common.AliasFromArgs(args)
	if alias == "" {
		return common.RequiredError(common.AliasParam), nil
	}
	query := common.StringArg(args, "query")
	if query == "" {
		return common.RequiredError("query"), nil
	}

	client, err := getGmailClient(sc, alias)
	if err != nil {
		return common.ErrorResult("searching Gmail for", alias, err), nil
	}
	messages, err := client.Search(ctx, query, int64(common.IntArg(args, "max_results", gmail.DefaultMaxResults)))
	if err != nil {
		return common.ErrorResult("searching Gmail for", alias, err), nil
	}

	return mcp.NewToolResultText(formatSearchResults(messages)), nil
}

func formatSearchResults(messages []gmail.MessageSummary) string {
	if len(messages) == 0 {
		return noEmailsFound
	}
	blocks := make([]string, 0, len(messages))
	for _, m := range messages {
		blocks = append(blocks, fmt.Sprintf("- From: %s\n  Subject: %s\n  Snippet: %s\n  ID: %s\n---",
			m.From, m.Subject, m.Snippet, m.ID))
	}
	return strings.Join(blocks, "\n")
}

func handleGetMessage(ctx context.Context, request mcp.CallToolRequest, sc *server.ServerContext) (*mcp.CallToolResult, error) {
	args := request.GetArguments()
	alias := common.AliasFromArgs(args)
	if alias == "" {
		return common.RequiredError(common.AliasParam), nil
	}
	messageID := common.StringArg(args, "message_id")
	if messageID == "" {
		return common.RequiredError("message_id"), nil
	}

	client, err := getGmailClient(sc, alias)
	if err != nil {
		return common.ErrorResult("getting message from", alias, err), nil
	}
	msg, err := client.GetMessage(ctx, messageID)
	if err != nil {
		return common.ErrorResult("getting message from", alias, err), nil
	}

	body := msg.Body
	if strings.TrimSpace(body) == "" {
		body = noPlainBody
	}
	result := fmt.Sprintf("From: %s\nSubject: %s\n\nBody:\n%s", msg.From, msg.Subject, body)
	if len(msg.Attachments) > 0 {
		result += fmt.Sprintf("\n\nAttachments: %s", strings.Join(msg.Attachments, ", "))
	}
	return mcp.NewToolResultText(result), nil
}

func handleTrash(ctx context.Context, request mcp.CallToolRequest, sc *server.ServerContext) (*mcp.CallToolResult, error) {
	args := request.GetArguments()
	alias := common.AliasFromArgs(args)
	if alias == "" {
		return common.RequiredError(common.AliasParam), nil
	}
	messageID := common.StringArg(args, "message_id")
	if messageID == "" {
		return common.RequiredError("message_id"), nil
	}

	client, err := getGmailClient(sc, alias)
	if err != nil {
		return common.ErrorResult("trashing message in", alias, err), nil
	}
	if err := client.TrashMessage(ctx, messageID); err != nil {
		return common.ErrorResult("trashing message in", alias, err), nil
	}

	return mcp.NewToolResultText(fmt.Sprintf("Message with ID %s moved to trash in '%s' account.", messageID, alias)), nil
}
