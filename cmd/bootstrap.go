package cmd

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/abdulehsan/Jarvis/internal/agent"
	"github.com/abdulehsan/Jarvis/internal/calendar"
	"github.com/abdulehsan/Jarvis/internal/config"
	"github.com/abdulehsan/Jarvis/internal/gmail"
	"github.com/abdulehsan/Jarvis/internal/google"
	"github.com/abdulehsan/Jarvis/internal/instrumentation"
	"github.com/abdulehsan/Jarvis/internal/keep"
	"github.com/abdulehsan/Jarvis/internal/logging"
	"github.com/abdulehsan/Jarvis/internal/memory"
	"github.com/abdulehsan/Jarvis/internal/server"
	"github.com/abdulehsan/Jarvis/internal/tasks"
	"github.com/abdulehsan/Jarvis/internal/tools/calendar_tools"
	"github.com/abdulehsan/Jarvis/internal/tools/common"
	"github.com/abdulehsan/Jarvis/internal/tools/date_tools"
	"github.com/abdulehsan/Jarvis/internal/tools/gmail_tools"
	"github.com/abdulehsan/Jarvis/internal/tools/keep_tools"
	"github.com/abdulehsan/Jarvis/internal/tools/tasks_tools"
)

// serviceScopes lists the scopes each registered service needs. Startup
// fails when any of them is missing from google.ScopeSet.
var serviceScopes = map[string][]string{
	"calendar": calendar.RequiredScopes,
	"gmail":    gmail.RequiredScopes,
	"tasks":    tasks.RequiredScopes,
	"keep":     keep.RequiredScopes,
}

// app bundles what every long-running command needs.
type app struct {
	cfg      *config.Config
	logger   *slog.Logger
	instr    *instrumentation.Provider
	resolver *google.Resolver
	sc       *server.ServerContext
}

func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}
	if debugMode {
		cfg.Log.Level = "debug"
	}
	return cfg, nil
}

func newLogger(cfg *config.Config, w io.Writer) (*slog.Logger, error) {
	level, err := logging.ParseLevel(cfg.Log.Level)
	if err != nil {
		return nil, err
	}
	return logging.New(level, cfg.Log.Format, w)
}

func newCredentialStore(cfg *config.Config) (*google.FileStore, error) {
	key, err := google.EncryptionKeyFromBase64(cfg.Google.EncryptionKey)
	if err != nil {
		return nil, err
	}
	cipher, err := google.NewCredentialCipher(key)
	if err != nil {
		return nil, err
	}
	return google.NewFileStore(cfg.CredentialsBase(), cfg.CredentialsLayout(), cipher)
}

// newApp wires configuration, instrumentation, credentials and the server
// context. Logs go to logOut.
func newApp(ctx context.Context, logOut io.Writer) (*app, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}
	logger, err := newLogger(cfg, logOut)
	if err != nil {
		return nil, err
	}

	if err := google.ValidateScopes(serviceScopes); err != nil {
		return nil, fmt.Errorf("scope configuration error: %w", err)
	}

	instrConfig := cfg.Instrumentation
	instrConfig.ServiceVersion = version
	provider, err := instrumentation.NewProvider(ctx, instrConfig, instrumentation.WithLogger(logger))
	if err != nil {
		return nil, fmt.Errorf("failed to create instrumentation provider: %w", err)
	}

	store, err := newCredentialStore(cfg)
	if err != nil {
		_ = provider.Shutdown(ctx)
		return nil, err
	}

	// Records carry their own client id and secret; the secrets file is only
	// a fallback for refreshing older records.
	clientConfig, err := google.LoadClientConfig(cfg.Google.ClientSecretsFile)
	if err != nil {
		logger.Debug("OAuth client secrets not loaded", logging.Err(err))
		clientConfig = nil
	}

	resolver, err := google.NewResolver(google.ResolverConfig{
		Store:        store,
		ClientConfig: clientConfig,
		Logger:       logger,
		Metrics:      provider.Metrics(),
	})
	if err != nil {
		_ = provider.Shutdown(ctx)
		return nil, err
	}
	if err := resolver.CheckEnrolledScopes(); err != nil {
		_ = provider.Shutdown(ctx)
		return nil, err
	}

	sc, err := server.NewServerContext(ctx, server.Options{
		Provider:    resolver,
		Location:    cfg.Location(),
		Aliases:     cfg.Google.Aliases,
		KeepAccount: cfg.Google.KeepAccount,
		Metrics:     provider.Metrics(),
		AuditLogger: instrumentation.NewAuditLogger(logger, instrConfig.AuditLogging),
		Logger:      logger,
	})
	if err != nil {
		_ = provider.Shutdown(ctx)
		return nil, fmt.Errorf("failed to create server context: %w", err)
	}

	return &app{cfg: cfg, logger: logger, instr: provider, resolver: resolver, sc: sc}, nil
}

// Close shuts the server context and instrumentation down.
func (a *app) Close(ctx context.Context) {
	if err := a.sc.Shutdown(); err != nil {
		a.logger.Warn("error during server context shutdown", logging.Err(err))
	}
	if err := a.instr.Shutdown(ctx); err != nil {
		a.logger.Warn("error during instrumentation shutdown", logging.Err(err))
	}
}

// warnIfNoAccounts tells the user how to enrol when no alias is available.
func (a *app) warnIfNoAccounts(w io.Writer) {
	aliases, err := a.sc.Aliases()
	if err != nil {
		a.logger.Warn("failed to list accounts", logging.Err(err))
		return
	}
	if len(aliases) == 0 {
		fmt.Fprintln(w, "Warning: no Google accounts are connected. Run 'jarvis accounts add <alias>' to add one.")
	}
}

// newLLM builds the configured language model backend. The returned close
// function releases its resources.
func newLLM(ctx context.Context, cfg *config.Config) (agent.LLM, func() error, error) {
	if err := cfg.ValidateLLM(); err != nil {
		return nil, nil, err
	}
	switch cfg.LLM.Provider {
	case config.ProviderOpenAI:
		llm, err := agent.NewOpenAILLM(cfg.LLM.OpenAI.APIKey, cfg.LLM.OpenAI.BaseURL, cfg.LLM.OpenAI.Model)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to create OpenAI client: %w", err)
		}
		return llm, func() error { return nil }, nil
	default:
		llm, err := agent.NewGeminiLLM(ctx, cfg.LLM.Gemini.APIKey, cfg.LLM.Gemini.Model)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to create Gemini client: %w", err)
		}
		return llm, llm.Close, nil
	}
}

// newAgent registers every tool and builds an agent on top of a.
func (a *app) newAgent(llm agent.LLM, store memory.Store, surface string) (*agent.Agent, error) {
	registry := agent.NewRegistry()
	if err := registerAllTools(registry, a.sc, false); err != nil {
		return nil, err
	}
	return agent.New(llm, registry, store, agent.Options{
		AssistantName: a.cfg.Agent.AssistantName,
		MaxIterations: a.cfg.Agent.MaxIterations,
		Surface:       surface,
		Aliases:       a.sc.Aliases,
		Location:      a.cfg.Location(),
		Logger:        a.logger,
		Metrics:       a.instr.Metrics(),
	})
}

// registerAllTools registers all tools with s, which is either the MCP
// server or the agent's registry.
func registerAllTools(s common.ToolAdder, sc *server.ServerContext, readOnly bool) error {
	// Define all tool registrations
	type toolRegistration struct {
		name     string
		register func() error
	}

	registrations := []toolRegistration{
		{
			name: "Calendar",
			register: func() error {
				return calendar_tools.RegisterCalendarTools(s, sc, readOnly)
			},
		},
		{
			name: "Gmail",
			register: func() error {
				return gmail_tools.RegisterGmailTools(s, sc, readOnly)
			},
		},
		{
			name: "Tasks",
			register: func() error {
				return tasks_tools.RegisterTasksTools(s, sc, readOnly)
			},
		},
		{
			name: "Keep",
			register: func() error {
				return keep_tools.RegisterKeepTools(s, sc, readOnly)
			},
		},
		{
			name: "Date",
			register: func() error {
				return date_tools.RegisterDateTools(s, sc)
			},
		},
	}

	// Register all tools
	for _, reg := range registrations {
		if err := reg.register(); err != nil {
			return fmt.Errorf("failed to register %s tools: %w", reg.name, err)
		}
	}

	return nil
}
