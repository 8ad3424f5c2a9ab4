package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
)

// DefaultConfigPath is read when no --config flag is given. A missing file is
// not an error; the environment alone can configure the service.
const DefaultConfigPath = "config.yaml"

// Config holds all process-wide configuration for ekaya-codegen.
// Values come from an optional YAML file with environment variable overrides.
// Secrets (the default completion API key) only come from the environment.
// Config is read-only once Load returns.
type Config struct {
	// Server configuration
	BindAddr string `yaml:"bind_addr" env:"BIND_ADDR" env-default:"127.0.0.1"`
	Port     string `yaml:"port" env:"PORT" env-default:"5080"`
	Env      string `yaml:"env" env:"ENVIRONMENT" env-default:"local"`
	LogLevel string `yaml:"log_level" env:"LOG_LEVEL" env-default:"info"`
	Version  string `yaml:"-"` // Set at load time, not from config

	// DataDir is the base storage path for the stored config record and the
	// uploaded model/repository templates.
	DataDir string `yaml:"data_dir" env:"DATA_DIR" env-default:"./data"`

	// SecretsKey, when set, seals the secrets in the stored config record at
	// rest. Secret - not in YAML.
	SecretsKey string `yaml:"-" env:"CODEGEN_SECRETS_KEY"`

	// RequestTimeout bounds every inbound HTTP or MCP operation, including the
	// streamed completion call.
	RequestTimeout time.Duration `yaml:"request_timeout" env:"REQUEST_TIMEOUT" env-default:"120s"`

	Datasource DatasourceConfig `yaml:"datasource"`
	Completion CompletionConfig `yaml:"completion"`
}

// DatasourceConfig controls schema inspection.
type DatasourceConfig struct {
	// DefaultType is used when the connection string carries no recognisable
	// scheme. ADO-style "Server=...;Database=..." strings are SQL Server.
	DefaultType string `yaml:"default_type" env:"DATASOURCE_DEFAULT_TYPE" env-default:"sqlserver"`
	// ConnectTimeout bounds opening and pinging a connection.
	ConnectTimeout time.Duration `yaml:"connect_timeout" env:"DATASOURCE_CONNECT_TIMEOUT" env-default:"15s"`
}

// CompletionConfig configures the remote text-completion endpoint.
type CompletionConfig struct {
	Provider  string `yaml:"provider" env:"COMPLETION_PROVIDER" env-default:"openai"`
	Endpoint  string `yaml:"endpoint" env:"COMPLETION_ENDPOINT" env-default:"https://api.openai.com/v1/chat/completions"`
	Model     string `yaml:"model" env:"COMPLETION_MODEL" env-default:"gpt-4.1"`
	MaxTokens int    `yaml:"max_tokens" env:"COMPLETION_MAX_TOKENS" env-default:"2048"`
	// MaxRetries applies to transport failures only, and only at the transport
	// layer (HTTP handlers, MCP tools). The completion client never retries.
	MaxRetries int    `yaml:"max_retries" env:"COMPLETION_MAX_RETRIES" env-default:"2"`
	APIKey     string `yaml:"-" env:"OPENAI_API_KEY"` // Secret - not in YAML
}

// Load reads configuration from path (when it exists) with environment
// variable overrides. The version parameter is injected at build time.
func Load(path, version string) (*Config, error) {
	cfg := &Config{
		Version: version,
	}

	if path == "" {
		path = DefaultConfigPath
	}

	if _, err := os.Stat(path); err == nil {
		if err := cleanenv.ReadConfig(path, cfg); err != nil {
			return nil, fmt.Errorf("failed to read %s: %w", filepath.Base(path), err)
		}
	} else if errors.Is(err, os.ErrNotExist) {
		if err := cleanenv.ReadEnv(cfg); err != nil {
			return nil, fmt.Errorf("failed to read environment: %w", err)
		}
	} else {
		return nil, fmt.Errorf("failed to stat %s: %w", path, err)
	}

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

func (c *Config) validate() error {
	c.Completion.Provider = strings.ToLower(strings.TrimSpace(c.Completion.Provider))
	switch c.Completion.Provider {
	case ProviderOpenAI, ProviderAnthropic:
	default:
		return fmt.Errorf("unknown completion provider %q", c.Completion.Provider)
	}
	if c.Completion.Endpoint == "" {
		return fmt.Errorf("completion endpoint is required")
	}
	if c.Completion.Model == "" {
		return fmt.Errorf("completion model is required")
	}
	if c.Completion.MaxTokens <= 0 {
		return fmt.Errorf("completion max_tokens must be positive, got %d", c.Completion.MaxTokens)
	}
	if c.Completion.MaxRetries < 0 {
		return fmt.Errorf("completion max_retries must not be negative")
	}
	if strings.TrimSpace(c.Datasource.DefaultType) == "" {
		return fmt.Errorf("datasource default_type is required")
	}
	if c.DataDir == "" {
		return fmt.Errorf("data_dir is required")
	}
	return nil
}

const (
	ProviderOpenAI    = "openai"
	ProviderAnthropic = "anthropic"
)

// ListenAddr returns the host:port the HTTP server binds to.
func (c *Config) ListenAddr() string {
	return c.BindAddr + ":" + c.Port
}
