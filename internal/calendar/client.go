package calendar

import (
	"context"
	"fmt"
	"strings"
	"time"

	calendar "google.golang.org/api/calendar/v3"
	"google.golang.org/api/option"

	"github.com/abdulehsan/Jarvis/internal/google"
)

// PrimaryCalendar is the only calendar the assistant works on.
const PrimaryCalendar = "primary"

// DefaultMaxResults caps event searches when the caller gives no limit.
const DefaultMaxResults = 10

// RequiredScopes are the OAuth scopes this package needs.
var RequiredScopes = []string{google.ScopeCalendar}

// Client wraps the Google Calendar service for one account alias.
type Client struct {
	svc    *calendar.Service
	alias  string
	loc    *time.Location
	caller *google.Caller
}

// NewClient creates a Calendar client for alias. Credentials are resolved
// through provider on every request; opts are appended after the
// authenticated HTTP client so tests can point the client at a fake server.
func NewClient(ctx context.Context, alias string, provider google.TokenProvider, caller *google.Caller, loc *time.Location, opts ...option.ClientOption) (*Client, error) {
	if provider == nil {
		return nil, fmt.Errorf("token provider cannot be nil")
	}
	if loc == nil {
		loc = time.UTC
	}
	if caller == nil {
		caller = &google.Caller{Service: google.ServiceCalendar}
	}

	all := append([]option.ClientOption{option.WithHTTPClient(provider.HTTPClient(ctx, alias))}, opts...)
	svc, err := calendar.NewService(ctx, all...)
	if err != nil {
		return nil, fmt.Errorf("failed to create Calendar service: %w", err)
	}

	return &Client{svc: svc, alias: alias, loc: loc, caller: caller}, nil
}

// Alias returns the account alias this client is associated with
func (c *Client) Alias() string {
	return c.alias
}

// Location returns the timezone used for new events and naive times.
func (c *Client) Location() *time.Location {
	return c.loc
}

// SearchEvents lists single events of the primary calendar ordered by start
// time.
func (c *Client) SearchEvents(ctx context.Context, q SearchQuery) ([]EventSummary, error) {
	if q.MaxResults <= 0 {
		q.MaxResults = DefaultMaxResults
	}

	call := c.svc.Events.List(PrimaryCalendar).
		SingleEvents(true).
		OrderBy("startTime").
		MaxResults(q.MaxResults)
	if !q.TimeMin.IsZero() {
		call = call.TimeMin(q.TimeMin.Format(time.RFC3339))
	}
	if !q.TimeMax.IsZero() {
		call = call.TimeMax(q.TimeMax.Format(time.RFC3339))
	}
	if q.Query != "" {
		call = call.Q(q.Query)
	}

	var events *calendar.Events
	err := c.caller.Do(ctx, "events.list", func(ctx context.Context) error {
		var err error
		events, err = call.Context(ctx).Do()
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list events: %w", err)
	}

	summaries := make([]EventSummary, 0, len(events.Items))
	for _, event := range events.Items {
		summaries = append(summaries, toEventSummary(event))
	}
	return summaries, nil
}

// GetEvent retrieves a specific event by ID
func (c *Client) GetEvent(ctx context.Context, eventID string) (*EventSummary, error) {
	event, err := c.getRaw(ctx, eventID)
	if err != nil {
		return nil, err
	}
	summary := toEventSummary(event)
	return &summary, nil
}

func (c *Client) getRaw(ctx context.Context, eventID string) (*calendar.Event, error) {
	var event *calendar.Event
	err := c.caller.Do(ctx, "events.get", func(ctx context.Context) error {
		var err error
		event, err = c.svc.Events.Get(PrimaryCalendar, eventID).Context(ctx).Do()
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("failed to get event: %w", err)
	}
	return event, nil
}

// CreateEvent inserts an event into the primary calendar in the client's
// timezone.
func (c *Client) CreateEvent(ctx context.Context, input EventInput) (*EventSummary, error) {
	event := &calendar.Event{
		Summary:     input.Summary,
		Description: input.Description,
		Location:    input.Location,
		Start:       c.eventTime(input.Start),
		End:         c.eventTime(input.End),
	}
	for _, email := range input.Attendees {
		if email = strings.TrimSpace(email); email != "" {
			event.Attendees = append(event.Attendees, &calendar.EventAttendee{Email: email})
		}
	}

	var created *calendar.Event
	err := c.caller.Do(ctx, "events.insert", func(ctx context.Context) error {
		var err error
		created, err = c.svc.Events.Insert(PrimaryCalendar, event).Context(ctx).Do()
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create event: %w", err)
	}

	summary := toEventSummary(created)
	return &summary, nil
}

// UpdateEvent reads the event and writes it back with the non-zero fields of
// input applied.
func (c *Client) UpdateEvent(ctx context.Context, eventID string, input EventInput) (*EventSummary, error) {
	existing, err := c.getRaw(ctx, eventID)
	if err != nil {
		return nil, fmt.Errorf("failed to get existing event: %w", err)
	}

	if input.Summary != "" {
		existing.Summary = input.Summary
	}
	if input.Description != "" {
		existing.Description = input.Description
	}
	if input.Location != "" {
		existing.Location = input.Location
	}
	if !input.Start.IsZero() {
		existing.Start = c.eventTime(input.Start)
	}
	if !input.End.IsZero() {
		existing.End = c.eventTime(input.End)
	}

	var updated *calendar.Event
	err = c.caller.Do(ctx, "events.update", func(ctx context.Context) error {
		var err error
		updated, err = c.svc.Events.Update(PrimaryCalendar, existing.Id, existing).Context(ctx).Do()
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("failed to update event: %w", err)
	}

	summary := toEventSummary(updated)
	return &summary, nil
}

// DeleteEvent deletes a calendar event
func (c *Client) DeleteEvent(ctx context.Context, eventID string) error {
	err := c.caller.Do(ctx, "events.delete", func(ctx context.Context) error {
		return c.svc.Events.Delete(PrimaryCalendar, eventID).Context(ctx).Do()
	})
	if err != nil {
		return fmt.Errorf("failed to delete event: %w", err)
	}
	return nil
}

func (c *Client) eventTime(t time.Time) *calendar.EventDateTime {
	return &calendar.EventDateTime{
		DateTime: t.In(c.loc).Format(time.RFC3339),
		TimeZone: c.loc.String(),
	}
}

// Accepted layouts for times given by the agent, most specific first.
var timeLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	time.DateTime,
	"2006-01-02 15:04",
	"2006-01-02T15:04",
	time.DateOnly,
}

// ParseTime parses the time formats the assistant is told to use. Times
// without an offset are read in loc.
func ParseTime(s string, loc *time.Location) (time.Time, error) {
	s = strings.TrimSpace(s)
	if loc == nil {
		loc = time.UTC
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, nil
	}
	for _, layout := range timeLayouts[1:] {
		if t, err := time.ParseInLocation(layout, s, loc); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("invalid time %q, expected 'YYYY-MM-DD HH:MM:SS'", s)
}
