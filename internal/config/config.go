// Package config loads jarvis configuration from an optional YAML file, a
// .env file and the environment, in increasing order of precedence.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/adrg/xdg"
	"github.com/ilyakaznacheev/cleanenv"
	"github.com/joho/godotenv"

	"github.com/abdulehsan/Jarvis/internal/google"
	"github.com/abdulehsan/Jarvis/internal/instrumentation"
	"github.com/abdulehsan/Jarvis/internal/logging"
)

// AppName names the XDG subdirectories.
const AppName = "jarvis"

// LLM providers.
const (
	ProviderGemini = "gemini"
	ProviderOpenAI = "openai"
)

// Config aggregates all application configuration.
type Config struct {
	LLM             LLMConfig              `yaml:"llm"`
	Google          GoogleConfig           `yaml:"google"`
	Agent           AgentConfig            `yaml:"agent"`
	Memory          MemoryConfig           `yaml:"memory"`
	Webhook         WebhookConfig          `yaml:"webhook"`
	Log             LogConfig              `yaml:"log"`
	Instrumentation instrumentation.Config `yaml:"instrumentation"`

	// DataDir holds credentials (dir layout) and the webhook memory store.
	DataDir string `yaml:"data_dir" env:"JARVIS_DATA_DIR"`
}

type LLMConfig struct {
	Provider string       `yaml:"provider" env:"LLM_PROVIDER" env-default:"gemini"`
	Gemini   GeminiConfig `yaml:"gemini"`
	OpenAI   OpenAIConfig `yaml:"openai"`
}

type GeminiConfig struct {
	// APIKey falls back to GOOGLE_API_KEY when unset.
	APIKey string `yaml:"api_key" env:"GEMINI_API_KEY"`
	Model  string `yaml:"model" env:"GEMINI_MODEL" env-default:"gemini-2.5-flash"`
}

type OpenAIConfig struct {
	APIKey  string `yaml:"api_key" env:"OPENAI_API_KEY"`
	BaseURL string `yaml:"base_url" env:"OPENAI_BASE_URL"`
	Model   string `yaml:"model" env:"OPENAI_MODEL" env-default:"gpt-4o-mini"`
}

type GoogleConfig struct {
	ClientSecretsFile string `yaml:"client_secrets_file" env:"CLIENT_SECRETS_FILE" env-default:"credentials.json"`
	Layout            string `yaml:"credentials_layout" env:"CREDENTIALS_LAYOUT" env-default:"dir"`

	// Render selects the flat layout, matching hosted deployments that mount
	// one secret file per alias into the working directory.
	Render bool `yaml:"render" env:"RENDER"`

	// EncryptionKey is a base64 AES-256 key. Empty stores plaintext records.
	EncryptionKey string `yaml:"encryption_key" env:"CREDENTIALS_ENCRYPTION_KEY"`

	Timezone string `yaml:"timezone" env:"TIMEZONE" env-default:"UTC"`

	// Aliases overrides the list of available aliases presented to the agent.
	// Empty means every enrolled alias.
	Aliases []string `yaml:"aliases" env:"ACCOUNT_ALIASES" env-separator:","`

	// KeepAccount is the alias whose credentials the Keep tools use.
	KeepAccount string `yaml:"keep_account" env:"KEEP_ACCOUNT"`
}

type AgentConfig struct {
	MaxIterations int    `yaml:"max_iterations" env:"AGENT_MAX_ITERATIONS" env-default:"10"`
	AssistantName string `yaml:"assistant_name" env:"ASSISTANT_NAME" env-default:"Jarvis"`
}

type MemoryConfig struct {
	// Dir is the badger directory used by the webhook. Defaults to
	// <DataDir>/memory.
	Dir         string `yaml:"dir" env:"MEMORY_DIR"`
	MaxMessages int    `yaml:"max_messages" env:"MEMORY_MAX_MESSAGES" env-default:"40"`
}

type WebhookConfig struct {
	Addr string `yaml:"addr" env:"WEBHOOK_ADDR" env-default:":8080"`

	// Port, when set by the hosting platform, overrides the port of Addr.
	Port string `yaml:"-" env:"PORT"`

	Path string `yaml:"path" env:"WEBHOOK_PATH" env-default:"/webhook"`

	// TwilioAuthToken enables X-Twilio-Signature verification.
	TwilioAuthToken string `yaml:"twilio_auth_token" env:"TWILIO_AUTH_TOKEN"`

	// PublicURL is the externally visible webhook URL Twilio signs. When
	// empty it is rebuilt from the request.
	PublicURL string `yaml:"public_url" env:"WEBHOOK_PUBLIC_URL"`

	RequestTimeout time.Duration `yaml:"request_timeout" env:"WEBHOOK_REQUEST_TIMEOUT" env-default:"60s"`
}

type LogConfig struct {
	Level  string `yaml:"level" env:"LOG_LEVEL" env-default:"info"`
	Format string `yaml:"format" env:"LOG_FORMAT" env-default:"text"`
}

// DefaultPath is the config file read when --config is not given.
func DefaultPath() string {
	return filepath.Join(xdg.ConfigHome, AppName, "config.yaml")
}

// Load reads .env, then the YAML file at path (DefaultPath when empty) if it
// exists, then environment variables.
// Priority: Env Vars > Config File > Defaults
func Load(path string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env: %w", err)
	}

	explicit := path != ""
	if !explicit {
		path = DefaultPath()
	}

	var cfg Config
	_, statErr := os.Stat(path)
	switch {
	case statErr == nil:
		if err := cleanenv.ReadConfig(path, &cfg); err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
		}
	case explicit:
		return nil, fmt.Errorf("config file %s: %w", path, statErr)
	default:
		if err := cleanenv.ReadEnv(&cfg); err != nil {
			return nil, fmt.Errorf("failed to read env config: %w", err)
		}
	}

	cfg.applyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) applyDefaults() {
	if c.DataDir == "" {
		c.DataDir = filepath.Join(xdg.DataHome, AppName)
	}
	if c.Memory.Dir == "" {
		c.Memory.Dir = filepath.Join(c.DataDir, "memory")
	}
	if c.LLM.Gemini.APIKey == "" {
		c.LLM.Gemini.APIKey = os.Getenv("GOOGLE_API_KEY")
	}
	if c.Webhook.Port != "" {
		host := c.Webhook.Addr
		if i := strings.LastIndex(host, ":"); i >= 0 {
			host = host[:i]
		}
		c.Webhook.Addr = host + ":" + c.Webhook.Port
	}
	if c.Google.Render {
		c.Google.Layout = string(google.LayoutFlat)
	}
	for i, a := range c.Google.Aliases {
		c.Google.Aliases[i] = google.NormalizeAlias(a)
	}
	c.Google.KeepAccount = google.NormalizeAlias(c.Google.KeepAccount)
	if c.Instrumentation.ServiceName == "" {
		c.Instrumentation.ServiceName = AppName
	}
}

// Validate checks enum fields and value ranges. Keys that only some commands
// need are checked by ValidateLLM.
func (c *Config) Validate() error {
	var errs []error

	switch c.LLM.Provider {
	case ProviderGemini, ProviderOpenAI:
	default:
		errs = append(errs, fmt.Errorf("invalid LLM provider %q (supported: gemini, openai)", c.LLM.Provider))
	}

	switch google.Layout(c.Google.Layout) {
	case google.LayoutDir, google.LayoutFlat:
	default:
		errs = append(errs, fmt.Errorf("invalid credentials layout %q (supported: dir, flat)", c.Google.Layout))
	}

	if _, err := time.LoadLocation(c.Google.Timezone); err != nil {
		errs = append(errs, fmt.Errorf("invalid timezone %q: %w", c.Google.Timezone, err))
	}
	if _, err := google.EncryptionKeyFromBase64(c.Google.EncryptionKey); err != nil {
		errs = append(errs, fmt.Errorf("invalid credentials encryption key: %w", err))
	}
	for _, a := range c.Google.Aliases {
		if err := google.ValidateAlias(a); err != nil {
			errs = append(errs, err)
		}
	}
	if c.Google.KeepAccount != "" {
		if err := google.ValidateAlias(c.Google.KeepAccount); err != nil {
			errs = append(errs, fmt.Errorf("invalid KEEP_ACCOUNT: %w", err))
		}
	}

	if c.Agent.MaxIterations < 1 {
		errs = append(errs, fmt.Errorf("agent max iterations must be at least 1, got %d", c.Agent.MaxIterations))
	}
	if c.Memory.MaxMessages < 2 {
		errs = append(errs, fmt.Errorf("memory max messages must be at least 2, got %d", c.Memory.MaxMessages))
	}
	if !strings.HasPrefix(c.Webhook.Path, "/") {
		errs = append(errs, fmt.Errorf("webhook path must start with '/', got %q", c.Webhook.Path))
	}
	if c.Webhook.RequestTimeout <= 0 {
		errs = append(errs, fmt.Errorf("webhook request timeout must be positive, got %s", c.Webhook.RequestTimeout))
	}

	if _, err := logging.ParseLevel(c.Log.Level); err != nil {
		errs = append(errs, err)
	}
	switch strings.ToLower(c.Log.Format) {
	case logging.FormatText, logging.FormatJSON:
	default:
		errs = append(errs, fmt.Errorf("invalid log format %q (supported: text, json)", c.Log.Format))
	}

	if err := c.Instrumentation.Validate(); err != nil {
		errs = append(errs, err)
	}

	if len(errs) > 0 {
		return fmt.Errorf("invalid configuration: %w", errors.Join(errs...))
	}
	return nil
}

// ValidateLLM checks that the selected provider has an API key.
func (c *Config) ValidateLLM() error {
	switch c.LLM.Provider {
	case ProviderGemini:
		if c.LLM.Gemini.APIKey == "" {
			return fmt.Errorf("GEMINI_API_KEY (or GOOGLE_API_KEY) is required for the gemini provider")
		}
	case ProviderOpenAI:
		if c.LLM.OpenAI.APIKey == "" && c.LLM.OpenAI.BaseURL == "" {
			return fmt.Errorf("OPENAI_API_KEY is required for the openai provider")
		}
	}
	return nil
}

// Location returns the configured timezone. Validate guarantees it loads.
func (c *Config) Location() *time.Location {
	loc, err := time.LoadLocation(c.Google.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

// CredentialsLayout returns the effective credentials layout.
func (c *Config) CredentialsLayout() google.Layout {
	return google.Layout(c.Google.Layout)
}

// CredentialsBase is the directory handed to google.NewFileStore. The flat
// layout reads records from the working directory.
func (c *Config) CredentialsBase() string {
	if c.CredentialsLayout() == google.LayoutFlat {
		return "."
	}
	return c.DataDir
}
