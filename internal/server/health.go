package server

import (
	"encoding/json"
	"net/http"
	"sync/atomic"
	"time"
)

const (
	healthOK           = "ok"
	healthNotReady     = "not ready"
	healthShuttingDown = "shutting down"
	healthNoAccounts   = "no accounts enrolled"
)

// HealthChecker serves the liveness and readiness probes of the webhook.
type HealthChecker struct {
	ready   atomic.Bool
	sc      *ServerContext
	started time.Time
	version string
}

// NewHealthChecker returns a checker that starts out ready. sc may be nil.
func NewHealthChecker(sc *ServerContext, version string) *HealthChecker {
	h := &HealthChecker{sc: sc, started: time.Now(), version: version}
	h.ready.Store(true)
	return h
}

// SetReady flips readiness, typically to false at the start of shutdown.
func (h *HealthChecker) SetReady(ready bool) {
	h.ready.Store(ready)
}

func (h *HealthChecker) IsReady() bool {
	return h.ready.Load()
}

type HealthResponse struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks,omitempty"`
}

type DetailedHealthResponse struct {
	Status   string            `json:"status"`
	Uptime   string            `json:"uptime"`
	Version  string            `json:"version,omitempty"`
	Accounts int               `json:"accounts"`
	Keep     bool              `json:"keep_configured"`
	Checks   map[string]string `json:"checks,omitempty"`
}

// Handler is satisfied by *http.ServeMux and chi routers.
type Handler interface {
	Handle(pattern string, handler http.Handler)
}

// RegisterHealthEndpoints mounts /healthz, /readyz and /healthz/detailed.
func (h *HealthChecker) RegisterHealthEndpoints(mux Handler) {
	mux.Handle("/healthz", h.LivenessHandler())
	mux.Handle("/readyz", h.ReadinessHandler())
	mux.Handle("/healthz/detailed", h.DetailedHealthHandler())
}

// LivenessHandler answers 200 for as long as the process can serve HTTP.
func (h *HealthChecker) LivenessHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		writeHealth(w, http.StatusOK, HealthResponse{Status: healthOK})
	})
}

// ReadinessHandler answers 503 while the server is draining or when no
// Google account is available to act on.
func (h *HealthChecker) ReadinessHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		checks, _, ok := h.evaluate()
		resp := HealthResponse{Status: healthOK, Checks: checks}
		code := http.StatusOK
		if !ok {
			resp.Status = healthNotReady
			code = http.StatusServiceUnavailable
		}
		writeHealth(w, code, resp)
	})
}

// DetailedHealthHandler adds uptime, version and account counts to the
// readiness checks.
func (h *HealthChecker) DetailedHealthHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		checks, accounts, ok := h.evaluate()
		resp := DetailedHealthResponse{
			Status:   healthOK,
			Uptime:   time.Since(h.started).Truncate(time.Second).String(),
			Version:  h.version,
			Accounts: accounts,
			Checks:   checks,
		}
		if h.sc != nil {
			resp.Keep = h.sc.Keep().Alias() != ""
		}
		code := http.StatusOK
		if !ok {
			resp.Status = healthNotReady
			code = http.StatusServiceUnavailable
		}
		writeHealth(w, code, resp)
	})
}

// evaluate runs every readiness check and reports the number of accounts.
func (h *HealthChecker) evaluate() (checks map[string]string, accounts int, ok bool) {
	checks = map[string]string{"ready": healthOK, "shutdown": healthOK}
	ok = true
	if !h.ready.Load() {
		checks["ready"] = healthNotReady
		ok = false
	}
	if h.sc == nil {
		return checks, 0, ok
	}

	if h.sc.IsShutdown() {
		checks["shutdown"] = healthShuttingDown
		ok = false
	}
	aliases, err := h.sc.Aliases()
	switch {
	case err != nil:
		checks["accounts"] = err.Error()
		ok = false
	case len(aliases) == 0:
		checks["accounts"] = healthNoAccounts
		ok = false
	default:
		checks["accounts"] = healthOK
	}
	return checks, len(aliases), ok
}

func writeHealth(w http.ResponseWriter, code int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(body)
}
