package server

import (
	"context"
	"crypto/hmac"
	"crypto/sha1" //nolint:gosec // Twilio signs requests with HMAC-SHA1.
	"encoding/base64"
	"encoding/xml"
	"log/slog"
	"net/http"
	"net/url"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/abdulehsan/Jarvis/internal/logging"
)

// TwilioSignatureHeader carries the request signature.
const TwilioSignatureHeader = "X-Twilio-Signature"

// DefaultWebhookTimeout bounds one agent turn.
const DefaultWebhookTimeout = 60 * time.Second

const xmlHeader = `<?xml version="1.0" encoding="UTF-8"?>`

// Responder runs one conversational turn for a session and always returns a
// reply.
type Responder interface {
	Respond(ctx context.Context, session, input string) string
}

// WebhookConfig configures the messaging webhook.
type WebhookConfig struct {
	// Path the messaging provider posts to, e.g. /webhook.
	Path string

	// TwilioAuthToken enables signature verification when set.
	TwilioAuthToken string

	// PublicURL is the URL Twilio signs. Empty rebuilds it from the request.
	PublicURL string

	RequestTimeout time.Duration
	Version        string
}

// Webhook serves the messaging endpoint plus health checks.
type Webhook struct {
	sc        *ServerContext
	responder Responder
	cfg       WebhookConfig
	health    *HealthChecker
	logger    *slog.Logger
	senders   *keyedMutex
}

// NewWebhook creates the webhook handler.
func NewWebhook(sc *ServerContext, responder Responder, cfg WebhookConfig) *Webhook {
	if cfg.Path == "" {
		cfg.Path = "/webhook"
	}
	if cfg.RequestTimeout <= 0 {
		cfg.RequestTimeout = DefaultWebhookTimeout
	}
	return &Webhook{
		sc:        sc,
		responder: responder,
		cfg:       cfg,
		health:    NewHealthChecker(sc, cfg.Version),
		logger:    logging.WithComponent(sc.Logger(), "webhook"),
		senders:   newKeyedMutex(),
	}
}

// Health returns the webhook's health checker.
func (wh *Webhook) Health() *HealthChecker {
	return wh.health
}

// Router returns the HTTP handler.
func (wh *Webhook) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(wh.recordRequest)

	wh.health.RegisterHealthEndpoints(r)
	r.Post(wh.cfg.Path, wh.handleMessage)
	return r
}

func (wh *Webhook) recordRequest(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		path := r.URL.Path
		if rctx := chi.RouteContext(r.Context()); rctx != nil && rctx.RoutePattern() != "" {
			path = rctx.RoutePattern()
		}
		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		wh.sc.Metrics().RecordHTTPRequest(r.Context(), r.Method, path, status, time.Since(start))
	})
}

func (wh *Webhook) handleMessage(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "invalid form body", http.StatusBadRequest)
		return
	}

	if wh.cfg.TwilioAuthToken != "" {
		sig := r.Header.Get(TwilioSignatureHeader)
		if !ValidTwilioSignature(wh.cfg.TwilioAuthToken, wh.signedURL(r), r.PostForm, sig) {
			wh.logger.Warn("rejected webhook request with bad signature",
				slog.String("request_id", middleware.GetReqID(r.Context())))
			http.Error(w, "invalid signature", http.StatusForbidden)
			return
		}
	}

	body := strings.TrimSpace(r.PostForm.Get("Body"))
	from := r.PostForm.Get("From")
	if from == "" {
		http.Error(w, "missing From", http.StatusBadRequest)
		return
	}

	logger := wh.logger.With(logging.Sender(from))
	if body == "" {
		logger.Info("ignoring empty webhook message")
		writeTwiML(w, "")
		return
	}
	logger.Info("webhook message received", slog.Int("length", len(body)))

	unlock := wh.senders.Lock(from)
	defer unlock()

	ctx, cancel := context.WithTimeout(r.Context(), wh.cfg.RequestTimeout)
	defer cancel()

	reply := wh.responder.Respond(ctx, from, body)
	logger.Info("webhook reply sent", slog.Int("length", len(reply)))
	writeTwiML(w, reply)
}

// signedURL is the URL Twilio computed the signature over.
func (wh *Webhook) signedURL(r *http.Request) string {
	if wh.cfg.PublicURL != "" {
		return wh.cfg.PublicURL
	}
	scheme := "http"
	if r.TLS != nil {
		scheme = "https"
	}
	if proto := r.Header.Get("X-Forwarded-Proto"); proto != "" {
		scheme = proto
	}
	return scheme + "://" + r.Host + r.URL.RequestURI()
}

type twimlResponse struct {
	XMLName xml.Name `xml:"Response"`
	Message *string  `xml:"Message,omitempty"`
}

// writeTwiML writes a messaging response. An empty reply produces an empty
// Response element, which sends nothing back.
func writeTwiML(w http.ResponseWriter, reply string) {
	resp := twimlResponse{}
	if reply != "" {
		resp.Message = &reply
	}
	out, err := xml.Marshal(resp)
	if err != nil {
		http.Error(w, "failed to encode response", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/xml")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(xmlHeader))
	_, _ = w.Write(out)
}

// TwilioSignature computes the X-Twilio-Signature value for a form POST: the
// base64 HMAC-SHA1 of the URL followed by every parameter name and value,
// sorted by name.
func TwilioSignature(authToken, fullURL string, params url.Values) string {
	keys := make([]string, 0, len(params))
	for k := range params {
		keys = append(keys, k)
	}
	slices.Sort(keys)

	var b strings.Builder
	b.WriteString(fullURL)
	for _, k := range keys {
		for _, v := range params[k] {
			b.WriteString(k)
			b.WriteString(v)
		}
	}

	mac := hmac.New(sha1.New, []byte(authToken))
	mac.Write([]byte(b.String()))
	return base64.StdEncoding.EncodeToString(mac.Sum(nil))
}

// ValidTwilioSignature reports whether signature matches the request.
func ValidTwilioSignature(authToken, fullURL string, params url.Values, signature string) bool {
	if signature == "" {
		return false
	}
	expected := TwilioSignature(authToken, fullURL, params)
	return hmac.Equal([]byte(expected), []byte(signature))
}

// keyedMutex serialises work per key and forgets keys nobody holds.
type keyedMutex struct {
	mu    sync.Mutex
	locks map[string]*refMutex
}

type refMutex struct {
	sync.Mutex
	refs int
}

func newKeyedMutex() *keyedMutex {
	return &keyedMutex{locks: make(map[string]*refMutex)}
}

// Lock acquires the mutex of key and returns its release function.
func (k *keyedMutex) Lock(key string) func() {
	k.mu.Lock()
	m, ok := k.locks[key]
	if !ok {
		m = &refMutex{}
		k.locks[key] = m
	}
	m.refs++
	k.mu.Unlock()

	m.Lock()
	return func() {
		m.Unlock()
		k.mu.Lock()
		m.refs--
		if m.refs == 0 {
			delete(k.locks, key)
		}
		k.mu.Unlock()
	}
}
