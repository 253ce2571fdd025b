package keep

import (
	"context"
	"errors"
	"log/slog"
	"sync"

	"github.com/abdulehsan/Jarvis/internal/google"
	"github.com/abdulehsan/Jarvis/internal/logging"
)

// ErrNotConfigured is returned when no alias is configured for Keep.
var ErrNotConfigured = errors.New("no Keep account configured: set KEEP_ACCOUNT to the alias whose notes should be used")

// Factory builds a Client for alias.
type Factory func(ctx context.Context, alias string) (*Client, error)

// Session owns the Keep client of the one configured Keep account. The
// client is built on first use and dropped after an authentication failure
// so the next call starts from freshly resolved credentials.
type Session struct {
	alias   string
	factory Factory
	logger  *slog.Logger

	mu     sync.Mutex
	client *Client
}

// NewSession creates a session for alias. An empty alias yields a session
// whose calls fail with ErrNotConfigured.
func NewSession(alias string, factory Factory, logger *slog.Logger) *Session {
	if logger == nil {
		logger = slog.Default()
	}
	return &Session{
		alias:   alias,
		factory: factory,
		logger:  logging.WithComponent(logger, "keep"),
	}
}

// Alias returns the configured Keep account alias.
func (s *Session) Alias() string {
	return s.alias
}

// Client returns the session's client, building it when needed.
func (s *Session) Client(ctx context.Context) (*Client, error) {
	if s.alias == "" {
		return nil, ErrNotConfigured
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.client != nil {
		return s.client, nil
	}

	c, err := s.factory(ctx, s.alias)
	if err != nil {
		return nil, err
	}
	s.client = c
	s.logger.Debug("keep session opened", logging.Alias(s.alias))
	return c, nil
}

// Invalidate drops the current client.
func (s *Session) Invalidate() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.client != nil {
		s.logger.Info("keep session invalidated", logging.Alias(s.alias))
	}
	s.client = nil
}

// Do runs fn with the session's client and invalidates the session when fn
// fails with an authentication or credential error.
func (s *Session) Do(ctx context.Context, fn func(*Client) error) error {
	c, err := s.Client(ctx)
	if err != nil {
		return err
	}
	err = fn(c)
	if google.IsUnauthorized(err) || errors.Is(err, google.ErrInvalid) {
		s.Invalidate()
	}
	return err
}
