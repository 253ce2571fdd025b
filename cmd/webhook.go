package cmd

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/abdulehsan/Jarvis/internal/agent"
	"github.com/abdulehsan/Jarvis/internal/logging"
	"github.com/abdulehsan/Jarvis/internal/memory"
	"github.com/abdulehsan/Jarvis/internal/server"
)

const shutdownTimeout = 30 * time.Second

func newWebhookCmd() *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "webhook",
		Short: "Serve the assistant behind a messaging webhook",
		Long: `Start an HTTP server that answers messaging webhooks (e.g. Twilio WhatsApp
or SMS). Each sender gets its own conversation history, persisted on disk.

Endpoints:
  POST <WEBHOOK_PATH>   Form fields Body and From, replies with TwiML
  GET  /healthz         Liveness
  GET  /readyz          Readiness
  GET  /healthz/detailed

Set TWILIO_AUTH_TOKEN to verify the X-Twilio-Signature header. When the
server sits behind a proxy, set WEBHOOK_PUBLIC_URL to the URL Twilio calls.

Metrics are served on a dedicated port when METRICS_ADDR is set.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runWebhook(addr)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "Listen address (default: WEBHOOK_ADDR or :8080)")

	return cmd
}

func runWebhook(addr string) error {
	// Setup graceful shutdown
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	a, err := newApp(ctx, os.Stderr)
	if err != nil {
		return err
	}
	defer a.Close(context.Background())
	if addr == "" {
		addr = a.cfg.Webhook.Addr
	}

	llm, closeLLM, err := newLLM(ctx, a.cfg)
	if err != nil {
		return err
	}
	defer func() { _ = closeLLM() }()

	store, err := memory.OpenBadger(memory.BadgerOptions{
		Dir:         a.cfg.Memory.Dir,
		MaxMessages: a.cfg.Memory.MaxMessages,
		Logger:      a.logger,
	})
	if err != nil {
		return err
	}
	defer func() {
		if err := store.Close(); err != nil {
			a.logger.Warn("error closing memory store", logging.Err(err))
		}
	}()

	assistant, err := a.newAgent(llm, store, agent.SurfaceWebhook)
	if err != nil {
		return err
	}

	metricsServer, err := startMetricsServer(a)
	if err != nil {
		return err
	}
	if metricsServer != nil {
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := metricsServer.Shutdown(shutdownCtx); err != nil {
				a.logger.Warn("error during metrics server shutdown", logging.Err(err))
			}
		}()
	}

	wh := server.NewWebhook(a.sc, assistant, server.WebhookConfig{
		Path:            a.cfg.Webhook.Path,
		TwilioAuthToken: a.cfg.Webhook.TwilioAuthToken,
		PublicURL:       a.cfg.Webhook.PublicURL,
		RequestTimeout:  a.cfg.Webhook.RequestTimeout,
		Version:         version,
	})
	if a.cfg.Webhook.TwilioAuthToken == "" {
		a.logger.Warn("TWILIO_AUTH_TOKEN is not set; webhook requests are not authenticated")
	}

	httpServer := &http.Server{
		Addr:              addr,
		Handler:           wh.Router(),
		ReadHeaderTimeout: 10 * time.Second,
		WriteTimeout:      a.cfg.Webhook.RequestTimeout + 10*time.Second,
	}

	serverDone := make(chan error, 1)
	go func() {
		defer close(serverDone)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverDone <- err
		}
	}()
	wh.Health().SetReady(true)
	a.logger.Info("webhook server started", "addr", addr, "path", a.cfg.Webhook.Path)

	select {
	case <-ctx.Done():
		a.logger.Info("shutdown signal received, stopping webhook server")
		wh.Health().SetReady(false)
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("error shutting down webhook server: %w", err)
		}
	case err := <-serverDone:
		if err != nil {
			return fmt.Errorf("webhook server stopped with error: %w", err)
		}
	}

	a.logger.Info("webhook server gracefully stopped")
	return nil
}

// startMetricsServer starts the dedicated metrics listener when configured.
// It returns nil when metrics are not served.
func startMetricsServer(a *app) (*server.MetricsServer, error) {
	addr := a.cfg.Instrumentation.MetricsAddr
	if addr == "" || !a.instr.Enabled() || a.instr.PrometheusHandler() == nil {
		return nil, nil
	}

	metricsServer, err := server.NewMetricsServer(server.MetricsServerConfig{
		Addr:                    addr,
		InstrumentationProvider: a.instr,
		Logger:                  a.logger,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create metrics server: %w", err)
	}

	metricsErr := make(chan error, 1)
	go func() {
		if err := metricsServer.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			metricsErr <- err
		}
		close(metricsErr)
	}()

	// Give the listener a moment to fail on a taken port.
	select {
	case err := <-metricsErr:
		if err != nil {
			return nil, fmt.Errorf("metrics server failed to start: %w", err)
		}
	case <-time.After(200 * time.Millisecond):
	}
	return metricsServer, nil
}
