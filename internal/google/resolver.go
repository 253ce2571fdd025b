package google

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"sync"
	"time"

	"golang.org/x/oauth2"

	"github.com/abdulehsan/Jarvis/internal/logging"
)

// expiryDelta matches the early-expiry window used by golang.org/x/oauth2.
const expiryDelta = 10 * time.Second

// Refresh outcomes reported to a RefreshRecorder.
const (
	RefreshSuccess  = "success"
	RefreshFailure  = "failure"
	RefreshNoToken  = "no_refresh_token"
	RefreshNotFound = "not_found"
)

// RefreshRecorder receives one call per refresh attempt.
type RefreshRecorder interface {
	RecordCredentialRefresh(ctx context.Context, result string)
}

// ResolverConfig configures a Resolver.
type ResolverConfig struct {
	Store Store

	// ClientConfig supplies client id, secret and token endpoint for records
	// that do not carry their own. Optional.
	ClientConfig *oauth2.Config

	// HTTPClient is used for token refresh requests. Optional.
	HTTPClient *http.Client

	Logger  *slog.Logger
	Metrics RefreshRecorder

	// Now overrides the clock in tests.
	Now func() time.Time
}

// Resolver turns an alias into a usable access token.
type Resolver struct {
	store      Store
	client     *oauth2.Config
	httpClient *http.Client
	transport  *http.Transport
	logger     *slog.Logger
	metrics    RefreshRecorder
	now        func() time.Time

	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

// NewResolver creates a Resolver.
func NewResolver(cfg ResolverConfig) (*Resolver, error) {
	if cfg.Store == nil {
		return nil, fmt.Errorf("credential store is required")
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	now := cfg.Now
	if now == nil {
		now = time.Now
	}
	return &Resolver{
		store:      cfg.Store,
		client:     cfg.ClientConfig,
		httpClient: cfg.HTTPClient,
		transport:  apiTransport(),
		logger:     logger.With(slog.String(logging.KeyComponent, "credentials")),
		metrics:    cfg.Metrics,
		now:        now,
		locks:      make(map[string]*sync.Mutex),
	}, nil
}

// Store returns the underlying credential store.
func (r *Resolver) Store() Store {
	return r.store
}

func (r *Resolver) lockFor(alias string) *sync.Mutex {
	r.mu.Lock()
	defer r.mu.Unlock()
	l, ok := r.locks[alias]
	if !ok {
		l = &sync.Mutex{}
		r.locks[alias] = l
	}
	return l
}

// Resolve returns a valid token for alias:
//
//  1. a missing record fails with ErrNotFound
//  2. a record lacking ScopeSet scopes fails with ErrInvalid
//  3. an unexpired token is returned as is, without writing
//  4. an expired token with a refresh token is refreshed once and persisted
//  5. anything else fails with ErrInvalid
//
// Calls for the same alias are serialised so concurrent refreshes cannot
// overwrite each other.
func (r *Resolver) Resolve(ctx context.Context, alias string) (*oauth2.Token, error) {
	l := r.lockFor(alias)
	l.Lock()
	defer l.Unlock()

	path := r.store.Path(alias)
	rec, err := r.store.Load(alias)
	if err != nil {
		return nil, err
	}

	if len(rec.Scopes) > 0 {
		if missing := MissingScopes(rec.Scopes, ScopeSet); len(missing) > 0 {
			return nil, invalid(alias, path, fmt.Errorf("granted scopes are missing %s", strings.Join(missing, ", ")))
		}
	}

	if r.valid(rec) {
		return rec.OAuth2Token(), nil
	}

	if rec.RefreshToken == "" {
		r.record(ctx, RefreshNoToken)
		return nil, invalid(alias, path, nil)
	}

	r.logger.Info("refreshing expired credentials", logging.Alias(alias))
	fresh, err := r.refresh(ctx, rec)
	if err != nil {
		r.record(ctx, RefreshFailure)
		r.logger.Warn("credential refresh failed", logging.Alias(alias), logging.Err(err))
		return nil, invalid(alias, path, err)
	}

	rec.Update(fresh)
	if err := r.store.Save(alias, rec); err != nil {
		r.record(ctx, RefreshFailure)
		return nil, fmt.Errorf("failed to persist refreshed credentials for '%s': %w", alias, err)
	}
	r.record(ctx, RefreshSuccess)
	return rec.OAuth2Token(), nil
}

func (r *Resolver) valid(rec *Record) bool {
	if rec.Token == "" {
		return false
	}
	if rec.Expiry.IsZero() {
		return true
	}
	return rec.Expiry.Add(-expiryDelta).After(r.now())
}

func (r *Resolver) refresh(ctx context.Context, rec *Record) (*oauth2.Token, error) {
	if r.httpClient != nil {
		ctx = context.WithValue(ctx, oauth2.HTTPClient, r.httpClient)
	}
	conf := refreshConfig(rec, r.client)
	// An empty access token forces the token source to hit the endpoint.
	t, err := conf.TokenSource(ctx, &oauth2.Token{RefreshToken: rec.RefreshToken}).Token()
	if err != nil {
		return nil, fmt.Errorf("failed to refresh token: %w", err)
	}
	return t, nil
}

func (r *Resolver) record(ctx context.Context, result string) {
	if r.metrics != nil {
		r.metrics.RecordCredentialRefresh(ctx, result)
	}
}

// Aliases lists every enrolled alias.
func (r *Resolver) Aliases() ([]string, error) {
	return r.store.List()
}

// TokenSource returns a token source that resolves alias on demand. The
// returned source caches the token until it expires.
func (r *Resolver) TokenSource(ctx context.Context, alias string) oauth2.TokenSource {
	return oauth2.ReuseTokenSource(nil, &resolverTokenSource{ctx: ctx, r: r, alias: alias})
}

type resolverTokenSource struct {
	ctx   context.Context
	r     *Resolver
	alias string
}

func (s *resolverTokenSource) Token() (*oauth2.Token, error) {
	return s.r.Resolve(s.ctx, s.alias)
}

// HTTPClient returns an authenticated client for alias. Every client shares
// the resolver's HTTP/1.1 transport.
func (r *Resolver) HTTPClient(ctx context.Context, alias string) *http.Client {
	return &http.Client{
		Transport: &oauth2.Transport{
			Source: r.TokenSource(ctx, alias),
			Base:   r.transport,
		},
	}
}

// apiTransport is http.DefaultTransport with its dial, TLS and idle timeouts,
// restricted to HTTP/1.1.
func apiTransport() *http.Transport {
	t := http.DefaultTransport.(*http.Transport).Clone()
	t.ForceAttemptHTTP2 = false
	return t
}

// AccountStatus summarises one enrolled alias.
type AccountStatus struct {
	Alias         string
	Path          string
	Expiry        time.Time
	Refreshable   bool
	MissingScopes []string
	Err           error
}

// Audit inspects every enrolled record without refreshing anything.
func (r *Resolver) Audit() ([]AccountStatus, error) {
	aliases, err := r.store.List()
	if err != nil {
		return nil, err
	}
	statuses := make([]AccountStatus, 0, len(aliases))
	for _, alias := range aliases {
		st := AccountStatus{Alias: alias, Path: r.store.Path(alias)}
		rec, err := r.store.Load(alias)
		if err != nil {
			st.Err = err
			statuses = append(statuses, st)
			continue
		}
		st.Expiry = rec.Expiry
		st.Refreshable = rec.RefreshToken != ""
		if len(rec.Scopes) > 0 {
			st.MissingScopes = MissingScopes(rec.Scopes, ScopeSet)
		}
		statuses = append(statuses, st)
	}
	return statuses, nil
}

// CheckEnrolledScopes fails when any enrolled record was granted fewer scopes
// than ScopeSet.
func (r *Resolver) CheckEnrolledScopes() error {
	statuses, err := r.Audit()
	if err != nil {
		return err
	}
	var problems []string
	for _, st := range statuses {
		if len(st.MissingScopes) > 0 {
			problems = append(problems, fmt.Sprintf("%s lacks %s", st.Alias, strings.Join(st.MissingScopes, ", ")))
		}
	}
	if len(problems) > 0 {
		return fmt.Errorf("enrolled credentials do not match the scope set (re-run 'jarvis accounts add'): %s", strings.Join(problems, "; "))
	}
	return nil
}
