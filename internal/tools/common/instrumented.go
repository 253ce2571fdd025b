package common

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/abdulehsan/Jarvis/internal/google"
	"github.com/abdulehsan/Jarvis/internal/instrumentation"
	"github.com/abdulehsan/Jarvis/internal/logging"
	"github.com/abdulehsan/Jarvis/internal/server"
)

// InstrumentedToolHandler wraps a tool handler with a span, metrics and the
// audit log line. service may be empty for tools that do not call Google.
// A panic in handler is turned into an error result.
//
// Usage:
//
//	s.AddTool(tool, common.InstrumentedToolHandler("search_gmail", google.ServiceGmail, sc, handler))
func InstrumentedToolHandler(toolName string, service google.Service, sc *server.ServerContext, handler Handler) Handler {
	return func(ctx context.Context, request mcp.CallToolRequest) (result *mcp.CallToolResult, err error) {
		alias := AliasFromArgs(request.GetArguments())

		attrs := instrumentation.NewSpanAttributeBuilder().
			WithService(string(service)).
			WithAlias(alias).
			Build()
		ctx, span := instrumentation.StartToolSpan(ctx, toolName, attrs...)
		defer span.End()

		invocation := instrumentation.NewToolInvocation(toolName).
			WithAlias(alias).
			WithService(string(service)).
			WithSpanContext(ctx)
		start := time.Now()

		defer func() {
			if r := recover(); r != nil {
				sc.Logger().Error("tool handler panicked", logging.Tool(toolName), "panic", r)
				result, err = mcp.NewToolResultError(fmt.Sprintf("An internal error occurred while running %s.", toolName)), nil
			}

			success := err == nil && (result == nil || !result.IsError)
			errText := ""
			switch {
			case err != nil:
				errText = err.Error()
				instrumentation.SetSpanError(span, err)
			case !success:
				errText = ResultText(result)
				instrumentation.SetSpanError(span, errors.New(errText))
			default:
				instrumentation.SetSpanSuccess(span)
			}

			invocation.Complete(success, errText)
			sc.Metrics().RecordToolInvocation(ctx, toolName, invocation.Status(), alias, time.Since(start))
			sc.AuditLogger().LogToolInvocation(ctx, invocation)
		}()

		return handler(ctx, request)
	}
}
