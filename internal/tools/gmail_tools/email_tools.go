package gmail_tools

import (
	"context"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/abdulehsan/Jarvis/internal/gmail"
	"github.com/abdulehsan/Jarvis/internal/google"
	"github.com/abdulehsan/Jarvis/internal/server"
	"github.com/abdulehsan/Jarvis/internal/tools/common"
)

// composeOptions are the parameters shared by send and draft.
func composeOptions() []mcp.ToolOption {
	return []mcp.ToolOption{
		common.WithAlias(),
		mcp.WithArray("to",
			mcp.Required(),
			mcp.Description("A list of recipient email addresses."),
			mcp.Items(map[string]any{"type": "string"}),
		),
		mcp.WithString("subject",
			mcp.Required(),
			mcp.Description("The subject of the email."),
		),
		mcp.WithString("body",
			mcp.Required(),
			mcp.Description("The plain text body of the email."),
		),
		mcp.WithArray("cc",
			mcp.Description("A list of CC recipient email addresses."),
			mcp.Items(map[string]any{"type": "string"}),
		),
		mcp.WithArray("bcc",
			mcp.Description("A list of BCC recipient email addresses."),
			mcp.Items(map[string]any{"type": "string"}),
		),
	}
}

// RegisterEmailTools registers the compose tools. Drafts are always
// available; sending needs destructive tools to be allowed.
func RegisterEmailTools(s common.ToolAdder, sc *server.ServerContext, readOnly bool) error {
	draftTool := mcp.NewTool("create_gmail_draft",
		append([]mcp.ToolOption{
			mcp.WithDescription("Creates a draft email in a specific Gmail account without sending it."),
		}, composeOptions()...)...,
	)
	s.AddTool(draftTool, common.InstrumentedToolHandler("create_gmail_draft", google.ServiceGmail, sc,
		func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			return handleCompose(ctx, request, sc, false)
		}))

	if !readOnly {
		sendTool := mcp.NewTool("send_gmail_message",
			append([]mcp.ToolOption{
				mcp.WithDescription("Sends an email from a specific Gmail account."),
			}, composeOptions()...)...,
		)
		s.AddTool(sendTool, common.InstrumentedToolHandler("send_gmail_message", google.ServiceGmail, sc,
			func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
				return handleCompose(ctx, request, sc, true)
			}))
	}

	return nil
}

func handleCompose(ctx context.Context, request mcp.CallToolRequest, sc *server.ServerContext, send bool) (*mcp.CallToolResult, error) {
	args := request.GetArguments()
	alias := common.AliasFromArgs(args)
	if alias == "" {
		return common.RequiredError(common.AliasParam), nil
	}

	msg := &gmail.EmailMessage{
		To:      common.StringSliceArg(args, "to"),
		Cc:      common.StringSliceArg(args, "cc"),
		Bcc:     common.StringSliceArg(args, "bcc"),
		Subject: common.StringArg(args, "subject"),
		Body:    common.StringArg(args, "body"),
	}
	switch {
	case len(msg.To) == 0:
		return common.RequiredError("to"), nil
	case msg.Subject == "":
		return common.RequiredError("subject"), nil
	case msg.Body == "":
		return common.RequiredError("body"), nil
	}

	action := "creating draft in"
	if send {
		action = "sending message from"
	}

	client, err := getGmailClient(sc, alias)
	if err != nil {
		return common.ErrorResult(action, alias, err), nil
	}

	if send {
		id, err := client.SendEmail(ctx, msg)
		if err != nil {
			return common.ErrorResult(action, alias, err), nil
		}
		return mcp.NewToolResultText(fmt.Sprintf("Message sent successfully from '%s'. Message ID: %s", alias, id)), nil
	}

	id, err := client.CreateDraft(ctx, msg)
	if err != nil {
		return common.ErrorResult(action, alias, err), nil
	}
	return mcp.NewToolResultText(fmt.Sprintf("Draft created successfully in '%s'. Draft ID: %s", alias, id)), nil
}
