package keep

import (
	"context"
	"fmt"

	keep "google.golang.org/api/keep/v1"
	"google.golang.org/api/option"

	"github.com/abdulehsan/Jarvis/internal/google"
)

// RequiredScopes are the OAuth scopes this package needs.
var RequiredScopes = []string{google.ScopeKeep}

// DefaultPageSize bounds ListNotes.
const DefaultPageSize = 50

// Client wraps the Google Keep API for one account alias.
type Client struct {
	svc    *keep.Service
	alias  string
	caller *google.Caller
}

// NewClient creates a Keep client for alias. Credentials are resolved
// through provider on every request.
func NewClient(ctx context.Context, alias string, provider google.TokenProvider, caller *google.Caller, opts ...option.ClientOption) (*Client, error) {
	if provider == nil {
		return nil, fmt.Errorf("token provider cannot be nil")
	}
	if caller == nil {
		caller = &google.Caller{Service: google.ServiceKeep}
	}

	all := append([]option.ClientOption{option.WithHTTPClient(provider.HTTPClient(ctx, alias))}, opts...)
	svc, err := keep.NewService(ctx, all...)
	if err != nil {
		return nil, fmt.Errorf("failed to create Keep service: %w", err)
	}

	return &Client{svc: svc, alias: alias, caller: caller}, nil
}

// Alias returns the account alias this client is associated with
func (c *Client) Alias() string {
	return c.alias
}

// ListNotes lists the most recent notes that are not trashed.
func (c *Client) ListNotes(ctx context.Context, pageSize int64) ([]Note, error) {
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}

	var resp *keep.ListNotesResponse
	err := c.caller.Do(ctx, "notes.list", func(ctx context.Context) error {
		var err error
		resp, err = c.svc.Notes.List().PageSize(pageSize).Filter("trashed = false").Context(ctx).Do()
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list notes: %w", err)
	}

	notes := make([]Note, 0, len(resp.Notes))
	for _, n := range resp.Notes {
		notes = append(notes, toNote(n))
	}
	return notes, nil
}

// GetNote retrieves a note by ID or resource name
func (c *Client) GetNote(ctx context.Context, id string) (*Note, error) {
	var n *keep.Note
	err := c.caller.Do(ctx, "notes.get", func(ctx context.Context) error {
		var err error
		n, err = c.svc.Notes.Get(NoteName(id)).Context(ctx).Do()
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("failed to get note: %w", err)
	}
	note := toNote(n)
	return &note, nil
}

// CreateNote creates a text note
func (c *Client) CreateNote(ctx context.Context, title, text string) (*Note, error) {
	if title == "" {
		return nil, fmt.Errorf("title is required")
	}
	body := &keep.Note{
		Title: title,
		Body:  &keep.Section{Text: &keep.TextContent{Text: text}},
	}

	var created *keep.Note
	err := c.caller.Do(ctx, "notes.create", func(ctx context.Context) error {
		var err error
		created, err = c.svc.Notes.Create(body).Context(ctx).Do()
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create note: %w", err)
	}
	note := toNote(created)
	return &note, nil
}

// DeleteNote permanently deletes a note
func (c *Client) DeleteNote(ctx context.Context, id string) error {
	err := c.caller.Do(ctx, "notes.delete", func(ctx context.Context) error {
		_, err := c.svc.Notes.Delete(NoteName(id)).Context(ctx).Do()
		return err
	})
	if err != nil {
		return fmt.Errorf("failed to delete note: %w", err)
	}
	return nil
}

// ShareNote grants email the given role on a note. An empty role means
// WRITER.
func (c *Client) ShareNote(ctx context.Context, id, email, role string) (*Permission, error) {
	if email == "" {
		return nil, fmt.Errorf("email address is required")
	}
	role, err := NormalizeRole(role)
	if err != nil {
		return nil, err
	}

	parent := NoteName(id)
	req := &keep.BatchCreatePermissionsRequest{
		Requests: []*keep.CreatePermissionRequest{{
			Parent:     parent,
			Permission: &keep.Permission{Email: email, Role: role},
		}},
	}

	var resp *keep.BatchCreatePermissionsResponse
	err = c.caller.Do(ctx, "notes.permissions.batchCreate", func(ctx context.Context) error {
		var err error
		resp, err = c.svc.Notes.Permissions.BatchCreate(parent, req).Context(ctx).Do()
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("failed to share note: %w", err)
	}

	perm := &Permission{Email: email, Role: role}
	if len(resp.Permissions) > 0 && resp.Permissions[0] != nil {
		p := resp.Permissions[0]
		perm = &Permission{Name: p.Name, Email: p.Email, Role: p.Role}
	}
	return perm, nil
}
