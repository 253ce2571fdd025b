package calendar_tools

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/abdulehsan/Jarvis/internal/calendar"
	"github.com/abdulehsan/Jarvis/internal/google"
	"github.com/abdulehsan/Jarvis/internal/server"
	"github.com/abdulehsan/Jarvis/internal/tools/common"
)

const noEventsFound = "No events found matching your criteria."

// RegisterEventTools registers event-related tools
func RegisterEventTools(s common.ToolAdder, sc *server.ServerContext, readOnly bool) error {
	searchTool := mcp.NewTool("search_calendar_events",
		mcp.WithDescription("Searches a specific Google Calendar account for events within a given time range."),
		common.WithAlias(),
		mcp.WithString("start_time",
			mcp.Required(),
			mcp.Description("The start of the search window in 'YYYY-MM-DD HH:MM:SS' format."),
		),
		mcp.WithString("end_time",
			mcp.Required(),
			mcp.Description("The end of the search window in 'YYYY-MM-DD HH:MM:SS' format."),
		),
		mcp.WithString("query",
			mcp.Description("A text-based search query to filter events."),
		),
		mcp.WithNumber("max_results",
			mcp.Description("Maximum number of events to return (default: 10)."),
		),
	)
	s.AddTool(searchTool, common.InstrumentedToolHandler("search_calendar_events", google.ServiceCalendar, sc,
		func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			return handleSearchEvents(ctx, request, sc)
		}))

	getTool := mcp.NewTool("get_calendar_event",
		mcp.WithDescription("Gets the details of one event from a specific Google Calendar account using its unique ID."),
		common.WithAlias(),
		mcp.WithString("event_id",
			mcp.Required(),
			mcp.Description("The unique ID of the event. Use search_calendar_events first."),
		),
	)
	s.AddTool(getTool, common.InstrumentedToolHandler("get_calendar_event", google.ServiceCalendar, sc,
		func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			return handleGetEvent(ctx, request, sc)
		}))

	createTool := mcp.NewTool("create_event",
		mcp.WithDescription("Creates a new event in the specified Google Calendar account."),
		common.WithAlias(),
		mcp.WithString("summary",
			mcp.Required(),
			mcp.Description("The title of the event."),
		),
		mcp.WithString("start_datetime",
			mcp.Required(),
			mcp.Description("Start datetime in 'YYYY-MM-DD HH:MM:SS' format."),
		),
		mcp.WithString("end_datetime",
			mcp.Required(),
			mcp.Description("End datetime in 'YYYY-MM-DD HH:MM:SS' format."),
		),
		mcp.WithString("location",
			mcp.Description("The location."),
		),
		mcp.WithString("description",
			mcp.Description("The description."),
		),
		mcp.WithArray("attendees",
			mcp.Description("Email addresses of people to invite."),
			mcp.Items(map[string]any{"type": "string"}),
		),
	)
	s.AddTool(createTool, common.InstrumentedToolHandler("create_event", google.ServiceCalendar, sc,
		func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			return handleCreateEvent(ctx, request, sc)
		}))

	if !readOnly {
		updateTool := mcp.NewTool("update_event",
			mcp.WithDescription("Updates an existing event's details in a specific Google Calendar account using its unique ID."),
			common.WithAlias(),
			mcp.WithString("event_id",
				mcp.Required(),
				mcp.Description("The unique ID of the event to update. Use search_calendar_events first."),
			),
			mcp.WithString("new_summary",
				mcp.Description("The new title."),
			),
			mcp.WithString("new_start_time",
				mcp.Description("New start in 'YYYY-MM-DD HH:MM:SS' format."),
			),
			mcp.WithString("new_end_time",
				mcp.Description("New end in 'YYYY-MM-DD HH:MM:SS' format."),
			),
		)
		s.AddTool(updateTool, common.InstrumentedToolHandler("update_event", google.ServiceCalendar, sc,
			func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
				return handleUpdateEvent(ctx, request, sc)
			}))

		deleteTool := mcp.NewTool("delete_event",
			mcp.WithDescription("Deletes an event from a specific Google Calendar account using its unique ID."),
			common.WithAlias(),
			mcp.WithString("event_id",
				mcp.Required(),
				mcp.Description("The unique ID of the event to delete. Use search_calendar_events first."),
			),
		)
		s.AddTool(deleteTool, common.InstrumentedToolHandler("delete_event", google.ServiceCalendar, sc,
			func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
				return handleDeleteEvent(ctx, request, sc)
			}))
	}

	return nil
}

func handleSearchEvents(ctx context.Context, request mcp.CallToolRequest, sc *server.ServerContext) (*mcp.CallToolResult, error) {
	args := request.GetArguments()
	alias := common.AliasFromArgs(args)
	if alias == "" {
		return common.RequiredError(common.AliasParam), nil
	}

	startStr := common.StringArg(args, "start_time")
	if startStr == "" {
		return common.RequiredError("start_time"), nil
	}
	endStr := common.StringArg(args, "end_time")
	if endStr == "" {
		return common.RequiredError("end_time"), nil
	}

	timeMin, err := calendar.ParseTime(startStr, sc.Location())
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Invalid start_time: %v", err)), nil
	}
	timeMax, err := calendar.ParseTime(endStr, sc.Location())
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Invalid end_time: %v", err)), nil
	}

	client, err := getCalendarClient(sc, alias)
	if err != nil {
		return common.ErrorResult("searching calendar for", alias, err), nil
	}

	events, err := client.SearchEvents(ctx, calendar.SearchQuery{
		TimeMin:    timeMin,
		TimeMax:    timeMax,
		Query:      common.StringArg(args, "query"),
		MaxResults: int64(common.IntArg(args, "max_results", calendar.DefaultMaxResults)),
	})
	if err != nil {
		return common.ErrorResult("searching calendar for", alias, err), nil
	}

	return mcp.NewToolResultText(formatEventList(events)), nil
}

func formatEventList(events []calendar.EventSummary) string {
	if len(events) == 0 {
		return noEventsFound
	}
	lines := make([]string, 0, len(events))
	for _, e := range events {
		lines = append(lines, fmt.Sprintf("- Summary: %s | Starts: %s | ID: %s", eventTitle(e), e.StartText, e.ID))
	}
	return strings.Join(lines, "\n")
}

func eventTitle(e calendar.EventSummary) string {
	if e.Summary == "" {
		return "(no title)"
	}
	return e.Summary
}

func handleGetEvent(ctx context.Context, request mcp.CallToolRequest, sc *server.ServerContext) (*mcp.CallToolResult, error) {
	args := request.GetArguments()
	alias := common.AliasFromArgs(args)
	if alias == "" {
		return common.RequiredError(common.AliasParam), nil
	}
	eventID := common.StringArg(args, "event_id")
	if eventID == "" {
		return common.RequiredError("event_id"), nil
	}

	client, err := getCalendarClient(sc, alias)
	if err != nil {
		return common.ErrorResult("getting event from", alias, err), nil
	}
	event, err := client.GetEvent(ctx, eventID)
	if err != nil {
		return common.ErrorResult("getting event from", alias, err), nil
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Summary: %s\n", eventTitle(*event))
	fmt.Fprintf(&b, "ID: %s\n", event.ID)
	fmt.Fprintf(&b, "Starts: %s\n", formatTime(event.Start, event.StartText, sc.Location()))
	if !event.End.IsZero() {
		fmt.Fprintf(&b, "Ends: %s\n", event.End.In(sc.Location()).Format(time.DateTime))
	}
	if event.Location != "" {
		fmt.Fprintf(&b, "Location: %s\n", event.Location)
	}
	if event.Description != "" {
		fmt.Fprintf(&b, "Description: %s\n", event.Description)
	}
	if event.Organizer != "" {
		fmt.Fprintf(&b, "Organizer: %s\n", event.Organizer)
	}
	if len(event.Attendees) > 0 {
		fmt.Fprintf(&b, "Attendees: %s\n", strings.Join(event.Attendees, ", "))
	}
	if event.HTMLLink != "" {
		fmt.Fprintf(&b, "Link: %s\n", event.HTMLLink)
	}
	return mcp.NewToolResultText(strings.TrimRight(b.String(), "\n")), nil
}

func formatTime(t time.Time, raw string, loc *time.Location) string {
	if t.IsZero() {
		return raw
	}
	return t.In(loc).Format(time.DateTime)
}

func handleCreateEvent(ctx context.Context, request mcp.CallToolRequest, sc *server.ServerContext) (*mcp.CallToolResult, error) {
	args := request.GetArguments()
	alias := common.AliasFromArgs(args)
	if alias == "" {
		return common.RequiredError(common.AliasParam), nil
	}

	summary := common.StringArg(args, "summary")
	if summary == "" {
		return common.RequiredError("summary"), nil
	}
	startStr := common.StringArg(args, "start_datetime")
	if startStr == "" {
		return common.RequiredError("start_datetime"), nil
	}
	endStr := common.StringArg(args, "end_datetime")
	if endStr == "" {
		return common.RequiredError("end_datetime"), nil
	}

	start, err := calendar.ParseTime(startStr, sc.Location())
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Invalid start_datetime: %v", err)), nil
	}
	end, err := calendar.ParseTime(endStr, sc.Location())
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Invalid end_datetime: %v", err)), nil
	}
	if !end.After(start) {
		return mcp.NewToolResultError("end_datetime must be after start_datetime"), nil
	}

	client, err := getCalendarClient(sc, alias)
	if err != nil {
		return common.ErrorResult("creating event in", alias, err), nil
	}

	event, err := client.CreateEvent(ctx, calendar.EventInput{
		Summary:     summary,
		Description: common.StringArg(args, "description"),
		Location:    common.StringArg(args, "location"),
		Start:       start,
		End:         end,
		Attendees:   common.StringSliceArg(args, "attendees"),
	})
	if err != nil {
		return common.ErrorResult("creating event in", alias, err), nil
	}

	return mcp.NewToolResultText(fmt.Sprintf("Event created successfully in '%s' account: %s\nEvent ID: %s",
		alias, event.HTMLLink, event.ID)), nil
}

func handleUpdateEvent(ctx context.Context, request mcp.CallToolRequest, sc *server.ServerContext) (*mcp.CallToolResult, error) {
	args := request.GetArguments()
	alias := common.AliasFromArgs(args)
	if alias == "" {
		return common.RequiredError(common.AliasParam), nil
	}
	eventID := common.StringArg(args, "event_id")
	if eventID == "" {
		return common.RequiredError("event_id"), nil
	}

	input := calendar.EventInput{Summary: common.StringArg(args, "new_summary")}
	if s := common.StringArg(args, "new_start_time"); s != "" {
		t, err := calendar.ParseTime(s, sc.Location())
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("Invalid new_start_time: %v", err)), nil
		}
		input.Start = t
	}
	if s := common.StringArg(args, "new_end_time"); s != "" {
		t, err := calendar.ParseTime(s, sc.Location())
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("Invalid new_end_time: %v", err)), nil
		}
		input.End = t
	}
	if input.Summary == "" && input.Start.IsZero() && input.End.IsZero() {
		return mcp.NewToolResultError("at least one of new_summary, new_start_time or new_end_time is required"), nil
	}

	client, err := getCalendarClient(sc, alias)
	if err != nil {
		return common.ErrorResult("updating event in", alias, err), nil
	}
	event, err := client.UpdateEvent(ctx, eventID, input)
	if err != nil {
		return common.ErrorResult("updating event in", alias, err), nil
	}

	return mcp.NewToolResultText(fmt.Sprintf("Event updated successfully in '%s' account: %s", alias, event.HTMLLink)), nil
}

func handleDeleteEvent(ctx context.Context, request mcp.CallToolRequest, sc *server.ServerContext) (*mcp.CallToolResult, error) {
	args := request.GetArguments()
	alias := common.AliasFromArgs(args)
	if alias == "" {
		return common.RequiredError(common.AliasParam), nil
	}
	eventID := common.StringArg(args, "event_id")
	if eventID == "" {
		return common.RequiredError("event_id"), nil
	}

	client, err := getCalendarClient(sc, alias)
	if err != nil {
		return common.ErrorResult("deleting event from", alias, err), nil
	}
	if err := client.DeleteEvent(ctx, eventID); err != nil {
		return common.ErrorResult("deleting event from", alias, err), nil
	}

	return mcp.NewToolResultText(fmt.Sprintf("Event with ID %s deleted successfully from '%s' account.", eventID, alias)), nil
}
