package calendar_tools

import (
	"fmt"

	"github.com/abdulehsan/Jarvis/internal/calendar"
	"github.com/abdulehsan/Jarvis/internal/server"
	"github.com/abdulehsan/Jarvis/internal/tools/common"
)

// RegisterCalendarTools registers all Calendar-related tools
func RegisterCalendarTools(s common.ToolAdder, sc *server.ServerContext, readOnly bool) error {
	if err := RegisterEventTools(s, sc, readOnly); err != nil {
		return fmt.Errorf("failed to register event tools: %w", err)
	}
	return nil
}

// getCalendarClient returns the client of alias or a tool error result.
func getCalendarClient(sc *server.ServerContext, alias string) (*calendar.Client, error) {
	client, err := sc.CalendarClient(alias)
	if err != nil {
		return nil, fmt.Errorf("failed to create Calendar client for account %s: %w", alias, err)
	}
	return client, nil
}
