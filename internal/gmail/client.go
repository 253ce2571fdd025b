package gmail

import (
	"context"
	"fmt"
	"sync"

	gmail "google.golang.org/api/gmail/v1"
	"google.golang.org/api/option"

	"github.com/abdulehsan/Jarvis/internal/google"
)

// RequiredScopes are the OAuth scopes this package needs.
var RequiredScopes = []string{
	google.ScopeGmailReadonly,
	google.ScopeGmailCompose,
	google.ScopeGmailModify,
}

const me = "me"

// Client wraps the Gmail service for one account alias.
type Client struct {
	svc    *gmail.UsersService
	alias  string
	caller *google.Caller

	mu     sync.Mutex
	sender string // cached profile address
}

// NewClient creates a Gmail client for alias. Credentials are resolved
// through provider on every request.
func NewClient(ctx context.Context, alias string, provider google.TokenProvider, caller *google.Caller, opts ...option.ClientOption) (*Client, error) {
	if provider == nil {
		return nil, fmt.Errorf("token provider cannot be nil")
	}
	if caller == nil {
		caller = &google.Caller{Service: google.ServiceGmail}
	}

	all := append([]option.ClientOption{option.WithHTTPClient(provider.HTTPClient(ctx, alias))}, opts...)
	srv, err := gmail.NewService(ctx, all...)
	if err != nil {
		return nil, fmt.Errorf("failed to create Gmail service: %w", err)
	}

	return &Client{svc: srv.Users, alias: alias, caller: caller}, nil
}

// Alias returns the account alias this client is associated with
func (c *Client) Alias() string {
	return c.alias
}

// Search runs a Gmail search query and fetches the metadata of each hit.
func (c *Client) Search(ctx context.Context, query string, maxResults int64) ([]MessageSummary, error) {
	if maxResults <= 0 {
		maxResults = DefaultMaxResults
	}

	var list *gmail.ListMessagesResponse
	err := c.caller.Do(ctx, "messages.list", func(ctx context.Context) error {
		var err error
		list, err = c.svc.Messages.List(me).Q(query).MaxResults(maxResults).Context(ctx).Do()
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("failed to search messages: %w", err)
	}

	summaries := make([]MessageSummary, 0, len(list.Messages))
	for _, ref := range list.Messages {
		var msg *gmail.Message
		err := c.caller.Do(ctx, "messages.get", func(ctx context.Context) error {
			var err error
			msg, err = c.svc.Messages.Get(me, ref.Id).
				Format("metadata").
				MetadataHeaders("From", "Subject").
				Context(ctx).Do()
			return err
		})
		if err != nil {
			return nil, fmt.Errorf("failed to get message %s: %w", ref.Id, err)
		}
		summaries = append(summaries, MessageSummary{
			ID:       ref.Id,
			ThreadID: msg.ThreadId,
			From:     header(msg.Payload, "From", UnknownSender),
			Subject:  header(msg.Payload, "Subject", NoSubject),
			Snippet:  msg.Snippet,
		})
	}
	return summaries, nil
}

// GetMessage retrieves a full message and extracts its plain text body.
func (c *Client) GetMessage(ctx context.Context, messageID string) (*Message, error) {
	var msg *gmail.Message
	err := c.caller.Do(ctx, "messages.get", func(ctx context.Context) error {
		var err error
		msg, err = c.svc.Messages.Get(me, messageID).Format("full").Context(ctx).Do()
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("failed to get message %s: %w", messageID, err)
	}

	body, err := plainTextBody(msg.Payload)
	if err != nil {
		return nil, fmt.Errorf("failed to read message %s: %w", messageID, err)
	}

	return &Message{
		ID:          msg.Id,
		From:        header(msg.Payload, "From", UnknownSender),
		To:          header(msg.Payload, "To", ""),
		Subject:     header(msg.Payload, "Subject", NoSubject),
		Date:        header(msg.Payload, "Date", ""),
		Body:        body,
		Attachments: attachmentNames(msg.Payload),
	}, nil
}

// Sender returns the account's email address from users.getProfile.
// The address is cached after the first fetch.
func (c *Client) Sender(ctx context.Context) (string, error) {
	c.mu.Lock()
	cached := c.sender
	c.mu.Unlock()
	if cached != "" {
		return cached, nil
	}

	var profile *gmail.Profile
	err := c.caller.Do(ctx, "users.getProfile", func(ctx context.Context) error {
		var err error
		profile, err = c.svc.GetProfile(me).Context(ctx).Do()
		return err
	})
	if err != nil {
		return "", fmt.Errorf("failed to get profile: %w", err)
	}
	if profile.EmailAddress == "" {
		return "", fmt.Errorf("could not retrieve email address for account '%s'", c.alias)
	}

	c.mu.Lock()
	c.sender = profile.EmailAddress
	c.mu.Unlock()
	return profile.EmailAddress, nil
}

// SendEmail sends msg from the account's own address and returns the new
// message ID.
func (c *Client) SendEmail(ctx context.Context, msg *EmailMessage) (string, error) {
	raw, err := c.compose(ctx, msg)
	if err != nil {
		return "", err
	}

	var sent *gmail.Message
	err = c.caller.Do(ctx, "messages.send", func(ctx context.Context) error {
		var err error
		sent, err = c.svc.Messages.Send(me, &gmail.Message{Raw: raw}).Context(ctx).Do()
		return err
	})
	if err != nil {
		return "", fmt.Errorf("failed to send email: %w", err)
	}
	return sent.Id, nil
}

// CreateDraft stores msg as a draft and returns the draft ID.
func (c *Client) CreateDraft(ctx context.Context, msg *EmailMessage) (string, error) {
	raw, err := c.compose(ctx, msg)
	if err != nil {
		return "", err
	}

	var draft *gmail.Draft
	err = c.caller.Do(ctx, "drafts.create", func(ctx context.Context) error {
		var err error
		draft, err = c.svc.Drafts.Create(me, &gmail.Draft{Message: &gmail.Message{Raw: raw}}).Context(ctx).Do()
		return err
	})
	if err != nil {
		return "", fmt.Errorf("failed to create draft: %w", err)
	}
	return draft.Id, nil
}

// TrashMessage moves a message to the trash. Trashed messages can be
// restored from the Gmail UI for 30 days.
func (c *Client) TrashMessage(ctx context.Context, messageID string) error {
	err := c.caller.Do(ctx, "messages.trash", func(ctx context.Context) error {
		_, err := c.svc.Messages.Trash(me, messageID).Context(ctx).Do()
		return err
	})
	if err != nil {
		return fmt.Errorf("failed to trash message %s: %w", messageID, err)
	}
	return nil
}

func (c *Client) compose(ctx context.Context, msg *EmailMessage) (string, error) {
	// Validate before spending a profile request.
	if _, err := buildRaw("", msg); err != nil {
		return "", err
	}
	sender, err := c.Sender(ctx)
	if err != nil {
		return "", err
	}
	return buildRaw(sender, msg)
}
