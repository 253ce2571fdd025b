// Package date_tools provides get_todays_date.
package date_tools

import (
	"context"
	"time"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/abdulehsan/Jarvis/internal/server"
	"github.com/abdulehsan/Jarvis/internal/tools/common"
)

// DateLayout is the format returned by get_todays_date.
const DateLayout = "2006-01-02"

var now = time.Now

// RegisterDateTools registers get_todays_date. The date is taken in the
// configured timezone.
func RegisterDateTools(s common.ToolAdder, sc *server.ServerContext) error {
	tool := mcp.NewTool("get_todays_date",
		mcp.WithDescription("Returns today's date in YYYY-MM-DD format. Use it to resolve relative dates like 'tomorrow' or 'next Monday'."),
	)
	s.AddTool(tool, common.InstrumentedToolHandler("get_todays_date", "", sc,
		func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			return mcp.NewToolResultText(Today(sc.Location())), nil
		}))
	return nil
}

// Today returns the current date in loc.
func Today(loc *time.Location) string {
	if loc == nil {
		loc = time.UTC
	}
	return now().In(loc).Format(DateLayout)
}
