package google

import (
	"context"
	"errors"
	"fmt"
	"html"
	"io"
	"log/slog"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/oauth2"

	"github.com/abdulehsan/Jarvis/internal/logging"
)

// CallbackPath is the loopback redirect path registered for enrollment.
const CallbackPath = "/oauth-callback"

// ErrConsentDenied is returned when the user declines consent.
var ErrConsentDenied = errors.New("consent was denied")

// Enroller runs the installed-app consent flow for one alias and stores the
// resulting credential record.
type Enroller struct {
	Config *oauth2.Config
	Store  Store

	// Out receives the consent URL and progress messages.
	Out io.Writer

	// OpenBrowser is called with the consent URL. Optional; when nil the user
	// opens the printed URL manually.
	OpenBrowser func(url string) error

	// HTTPClient is used for the code exchange. Optional.
	HTTPClient *http.Client

	Logger *slog.Logger

	// Timeout bounds how long the flow waits for the browser redirect.
	Timeout time.Duration
}

type callbackResult struct {
	code string
	err  error
}

// Enroll obtains consent for alias and persists the credential record. The
// alias must already be normalised. Nothing is written unless every scope in
// ScopeSet was granted.
func (e *Enroller) Enroll(ctx context.Context, alias string) (*Record, error) {
	if err := ValidateAlias(alias); err != nil {
		return nil, err
	}
	if e.Config == nil {
		return nil, fmt.Errorf("OAuth client config is required")
	}
	logger := e.Logger
	if logger == nil {
		logger = slog.Default()
	}
	out := e.Out
	if out == nil {
		out = io.Discard
	}
	timeout := e.Timeout
	if timeout <= 0 {
		timeout = 5 * time.Minute
	}

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		return nil, fmt.Errorf("failed to start local callback listener: %w", err)
	}

	conf := *e.Config
	conf.Scopes = Scopes()
	conf.RedirectURL = fmt.Sprintf("http://%s%s", ln.Addr().String(), CallbackPath)

	state := uuid.NewString()
	verifier := oauth2.GenerateVerifier()
	results := make(chan callbackResult, 1)

	mux := http.NewServeMux()
	mux.Handle(CallbackPath, callbackHandler(state, results))
	srv := &http.Server{Handler: mux, ReadHeaderTimeout: 10 * time.Second}
	go func() {
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("callback server failed", logging.Err(err))
		}
	}()
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	authURL := conf.AuthCodeURL(state,
		oauth2.AccessTypeOffline,
		oauth2.ApprovalForce,
		oauth2.S256ChallengeOption(verifier),
	)
	fmt.Fprintf(out, "Open the following URL in your browser to authorise '%s':\n\n%s\n\n", alias, authURL)
	if e.OpenBrowser != nil {
		if err := e.OpenBrowser(authURL); err != nil {
			logger.Debug("could not open browser", logging.Err(err))
		}
	}

	waitCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	var res callbackResult
	select {
	case res = <-results:
	case <-waitCtx.Done():
		return nil, fmt.Errorf("timed out waiting for OAuth consent: %w", waitCtx.Err())
	}
	if res.err != nil {
		return nil, res.err
	}

	exchangeCtx := ctx
	if e.HTTPClient != nil {
		exchangeCtx = context.WithValue(ctx, oauth2.HTTPClient, e.HTTPClient)
	}
	tok, err := conf.Exchange(exchangeCtx, res.code, oauth2.VerifierOption(verifier))
	if err != nil {
		return nil, fmt.Errorf("failed to exchange authorization code: %w", err)
	}

	granted := GrantedScopes(tok)
	if len(granted) > 0 {
		if missing := MissingScopes(granted, ScopeSet); len(missing) > 0 {
			return nil, fmt.Errorf("consent did not grant all required scopes, missing: %s", strings.Join(missing, ", "))
		}
	}
	if tok.RefreshToken == "" {
		logger.Warn("consent returned no refresh token; the credential will stop working when it expires", logging.Alias(alias))
	}

	rec := RecordFromToken(tok, &conf, granted)
	if err := e.Store.Save(alias, rec); err != nil {
		return nil, fmt.Errorf("failed to save credentials for '%s': %w", alias, err)
	}
	logger.Info("account enrolled", logging.Alias(alias))
	return rec, nil
}

// GrantedScopes returns the space separated "scope" field of a token
// response, or nil when the server did not send one.
func GrantedScopes(tok *oauth2.Token) []string {
	raw, _ := tok.Extra("scope").(string)
	if raw == "" {
		return nil
	}
	return strings.Fields(raw)
}

func callbackHandler(state string, results chan<- callbackResult) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		var res callbackResult
		switch {
		case q.Get("state") != state:
			http.Error(w, "state mismatch", http.StatusBadRequest)
			return
		case q.Get("error") != "":
			res.err = fmt.Errorf("%w: %s", ErrConsentDenied, q.Get("error"))
		case q.Get("code") == "":
			http.Error(w, "missing code", http.StatusBadRequest)
			return
		default:
			res.code = q.Get("code")
		}

		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		if res.err != nil {
			fmt.Fprintf(w, "<html><body><p>Authorisation failed: %s</p></body></html>", html.EscapeString(res.err.Error()))
		} else {
			fmt.Fprint(w, "<html><body><p>Authorisation complete. You can close this window.</p></body></html>")
		}

		select {
		case results <- res:
		default:
		}
	})
}
