package common

import (
	"errors"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/abdulehsan/Jarvis/internal/google"
)

// ErrorText converts err into the sentence returned to the caller. action
// reads like "searching calendar" and includes any trailing preposition.
//
// Credential errors are returned verbatim since they already tell the user
// what to do. Rate limits get a retry hint. Everything else becomes
// "An error occurred <action> '<alias>': <err>".
func ErrorText(action, alias string, err error) string {
	var credErr *google.CredentialError
	if errors.As(err, &credErr) {
		return credErr.Error()
	}

	if google.IsRateLimited(err) {
		service := "Google"
		var remote *google.RemoteAPIError
		if errors.As(err, &remote) {
			service = remote.Service
		}
		return fmt.Sprintf("The %s API is rate limited right now. Please try again in a minute.", service)
	}

	switch {
	case action == "" && alias == "":
		return fmt.Sprintf("An error occurred: %v", err)
	case alias == "":
		return fmt.Sprintf("An error occurred %s: %v", action, err)
	default:
		return fmt.Sprintf("An error occurred %s '%s': %v", action, alias, err)
	}
}

// ErrorResult wraps ErrorText in an error tool result.
func ErrorResult(action, alias string, err error) *mcp.CallToolResult {
	return mcp.NewToolResultError(ErrorText(action, alias, err))
}

// RequiredError is the result for a missing required parameter.
func RequiredError(param string) *mcp.CallToolResult {
	return mcp.NewToolResultError(param + " is required")
}

// ResultText joins the text content of result.
func ResultText(result *mcp.CallToolResult) string {
	if result == nil {
		return ""
	}
	var out string
	for _, c := range result.Content {
		switch tc := c.(type) {
		case mcp.TextContent:
			out += tc.Text
		case *mcp.TextContent:
			out += tc.Text
		}
	}
	return out
}
