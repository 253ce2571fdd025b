package server

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"sync"
	"time"

	"google.golang.org/api/option"

	"github.com/abdulehsan/Jarvis/internal/calendar"
	"github.com/abdulehsan/Jarvis/internal/gmail"
	"github.com/abdulehsan/Jarvis/internal/google"
	"github.com/abdulehsan/Jarvis/internal/instrumentation"
	"github.com/abdulehsan/Jarvis/internal/keep"
	"github.com/abdulehsan/Jarvis/internal/logging"
	"github.com/abdulehsan/Jarvis/internal/tasks"
)

// Options configures a ServerContext.
type Options struct {
	// Provider resolves credentials per alias. Required.
	Provider google.TokenProvider

	// Location is used for naive times and new events. Defaults to UTC.
	Location *time.Location

	// Aliases overrides the aliases presented to the agent. Empty means the
	// aliases the provider knows about.
	Aliases []string

	// KeepAccount is the alias used by the Keep tools.
	KeepAccount string

	Metrics     *instrumentation.Metrics
	AuditLogger *instrumentation.AuditLogger
	Logger      *slog.Logger

	// ClientOptions are appended to every Google service client. Tests use
	// them to point the clients at a fake endpoint.
	ClientOptions []option.ClientOption
}

// ServerContext holds the shared state behind every tool: the credential
// provider, one cached client per alias and service, the Keep session and
// the instrumentation sinks.
type ServerContext struct {
	ctx    context.Context
	cancel context.CancelFunc

	provider    google.TokenProvider
	location    *time.Location
	aliases     []string
	limiters    *google.Limiters
	metrics     *instrumentation.Metrics
	auditLogger *instrumentation.AuditLogger
	logger      *slog.Logger
	clientOpts  []option.ClientOption

	keep *keep.Session

	mu              sync.RWMutex
	calendarClients map[string]*calendar.Client
	gmailClients    map[string]*gmail.Client
	tasksClients    map[string]*tasks.Client
	shutdown        bool
}

// NewServerContext creates a new server context. Clients are created
// lazily; a missing credential file only surfaces when a tool uses the alias.
func NewServerContext(ctx context.Context, opts Options) (*ServerContext, error) {
	if opts.Provider == nil {
		return nil, fmt.Errorf("token provider cannot be nil")
	}
	if opts.Location == nil {
		opts.Location = time.UTC
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}

	shutdownCtx, cancel := context.WithCancel(ctx)

	sc := &ServerContext{
		ctx:             shutdownCtx,
		cancel:          cancel,
		provider:        opts.Provider,
		location:        opts.Location,
		aliases:         slices.Clone(opts.Aliases),
		limiters:        google.NewLimiters(),
		metrics:         opts.Metrics,
		auditLogger:     opts.AuditLogger,
		logger:          logging.WithComponent(opts.Logger, "server"),
		clientOpts:      opts.ClientOptions,
		calendarClients: make(map[string]*calendar.Client),
		gmailClients:    make(map[string]*gmail.Client),
		tasksClients:    make(map[string]*tasks.Client),
	}
	sc.keep = keep.NewSession(opts.KeepAccount, sc.newKeepClient, opts.Logger)
	return sc, nil
}

// Context returns the server context
func (sc *ServerContext) Context() context.Context {
	return sc.ctx
}

// Location returns the timezone used for naive times.
func (sc *ServerContext) Location() *time.Location {
	return sc.location
}

// Logger returns the server logger.
func (sc *ServerContext) Logger() *slog.Logger {
	return sc.logger
}

// Metrics returns the metrics recorder, which may be nil.
func (sc *ServerContext) Metrics() *instrumentation.Metrics {
	return sc.metrics
}

// AuditLogger returns the tool audit logger, which may be nil.
func (sc *ServerContext) AuditLogger() *instrumentation.AuditLogger {
	return sc.auditLogger
}

// TokenProvider returns the credential provider.
func (sc *ServerContext) TokenProvider() google.TokenProvider {
	return sc.provider
}

// Aliases returns the configured alias override, or every alias the
// provider has credentials for, sorted.
func (sc *ServerContext) Aliases() ([]string, error) {
	if len(sc.aliases) > 0 {
		out := slices.Clone(sc.aliases)
		slices.Sort(out)
		return out, nil
	}
	aliases, err := sc.provider.Aliases()
	if err != nil {
		return nil, fmt.Errorf("failed to list account aliases: %w", err)
	}
	slices.Sort(aliases)
	return aliases, nil
}

// Keep returns the session of the configured Keep account.
func (sc *ServerContext) Keep() *keep.Session {
	return sc.keep
}

func (sc *ServerContext) caller(service google.Service) *google.Caller {
	return &google.Caller{
		Service: service,
		Limiter: sc.limiters.For(service),
		Metrics: sc.metrics,
	}
}

// Clients are built with the long-lived server context, not the request
// context, because the token source keeps the context for later refreshes.
func (sc *ServerContext) clientCtx(ctx context.Context) context.Context {
	if sc.ctx != nil {
		return sc.ctx
	}
	return ctx
}

// CalendarClient returns the Calendar client of alias, creating and caching
// it on first use.
func (sc *ServerContext) CalendarClient(alias string) (*calendar.Client, error) {
	return cachedClient(sc, sc.calendarClients, alias, func(ctx context.Context) (*calendar.Client, error) {
		return calendar.NewClient(ctx, alias, sc.provider, sc.caller(google.ServiceCalendar), sc.location, sc.clientOpts...)
	})
}

// GmailClient returns the Gmail client of alias, creating and caching it on
// first use.
func (sc *ServerContext) GmailClient(alias string) (*gmail.Client, error) {
	return cachedClient(sc, sc.gmailClients, alias, func(ctx context.Context) (*gmail.Client, error) {
		return gmail.NewClient(ctx, alias, sc.provider, sc.caller(google.ServiceGmail), sc.clientOpts...)
	})
}

// TasksClient returns the Tasks client of alias, creating and caching it on
// first use.
func (sc *ServerContext) TasksClient(alias string) (*tasks.Client, error) {
	return cachedClient(sc, sc.tasksClients, alias, func(ctx context.Context) (*tasks.Client, error) {
		return tasks.NewClient(ctx, alias, sc.provider, sc.caller(google.ServiceTasks), sc.clientOpts...)
	})
}

func (sc *ServerContext) newKeepClient(ctx context.Context, alias string) (*keep.Client, error) {
	return keep.NewClient(sc.clientCtx(ctx), alias, sc.provider, sc.caller(google.ServiceKeep), sc.clientOpts...)
}

func cachedClient[T any](sc *ServerContext, cache map[string]*T, alias string, build func(context.Context) (*T, error)) (*T, error) {
	if alias == "" {
		return nil, fmt.Errorf("account alias is required")
	}

	sc.mu.Lock()
	defer sc.mu.Unlock()

	if sc.shutdown {
		return nil, fmt.Errorf("server is shutting down")
	}
	if client, ok := cache[alias]; ok {
		return client, nil
	}

	client, err := build(sc.clientCtx(context.Background()))
	if err != nil {
		return nil, err
	}
	cache[alias] = client
	sc.logger.Debug("created service client", logging.Alias(alias))
	return client, nil
}

// IsShutdown returns whether the server has been shutdown
func (sc *ServerContext) IsShutdown() bool {
	sc.mu.RLock()
	defer sc.mu.RUnlock()
	return sc.shutdown
}

// Shutdown shuts down the server context
func (sc *ServerContext) Shutdown() error {
	sc.mu.Lock()
	defer sc.mu.Unlock()

	if sc.shutdown {
		return nil
	}

	sc.shutdown = true
	sc.cancel()
	sc.keep.Invalidate()
	return nil
}
