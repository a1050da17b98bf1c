package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"
)

// DefaultAPIBaseURL is used when no API address is configured
const DefaultAPIBaseURL = "http://localhost:8080/api"

// Session backends
const (
	SessionKeyring = "keyring"
	SessionFile    = "file"
	SessionMemory  = "memory"
)

// Output formats
const (
	OutputTable = "table"
	OutputJSON  = "json"
	OutputYAML  = "yaml"
)

// Config holds the CLI configuration
type Config struct {
	// APIBaseURL prefixes every API path
	APIBaseURL string

	// SessionBackend selects where the session is persisted
	SessionBackend string
	// SessionFile is the bbolt file used by the "file" backend; empty means the default path
	SessionFile string

	Output string

	Logging LoggingConfig
}

// LoggingConfig holds logging-related configuration
type LoggingConfig struct {
	Level  string
	Format string // json, console
}

// Load loads configuration from environment variables
func Load() (*Config, error) {
	// Load .env files (fails silently if files don't exist)
	_ = godotenv.Load(".env")
	_ = godotenv.Load(".env.local")

	// API base URL - the Vite name is accepted so a frontend .env can be shared
	apiBaseURL := firstEnv("COREBANK_API_BASE_URL", "VITE_API_BASE_URL")
	if apiBaseURL == "" {
		apiBaseURL = DefaultAPIBaseURL
	}

	backend := strings.ToLower(os.Getenv("COREBANK_SESSION_BACKEND"))
	if backend == "" {
		backend = SessionKeyring
	}

	output := strings.ToLower(os.Getenv("COREBANK_OUTPUT"))
	if output == "" {
		output = OutputTable
	}

	// Logging configuration - the CLI stays quiet unless asked
	logLevel := os.Getenv("LOG_LEVEL")
	if logLevel == "" {
		logLevel = "warn"
	}

	logFormat := os.Getenv("LOG_FORMAT")
	if logFormat == "" {
		logFormat = "console"
	}

	cfg := &Config{
		APIBaseURL:     apiBaseURL,
		SessionBackend: backend,
		SessionFile:    os.Getenv("COREBANK_SESSION_FILE"),
		Output:         output,
		Logging: LoggingConfig{
			Level:  logLevel,
			Format: logFormat,
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks enumerated settings
func (c *Config) Validate() error {
	switch c.SessionBackend {
	case SessionKeyring, SessionFile, SessionMemory:
	default:
		return fmt.Errorf("invalid session backend '%s', must be one of: keyring, file, memory", c.SessionBackend)
	}

	switch c.Output {
	case OutputTable, OutputJSON, OutputYAML:
	default:
		return fmt.Errorf("invalid output format '%s', must be one of: table, json, yaml", c.Output)
	}

	if !strings.HasPrefix(c.APIBaseURL, "http://") && !strings.HasPrefix(c.APIBaseURL, "https://") {
		return fmt.Errorf("invalid API base URL '%s': must start with http:// or https://", c.APIBaseURL)
	}

	return nil
}

func firstEnv(keys ...string) string {
	for _, key := range keys {
		if v := os.Getenv(key); v != "" {
			return v
		}
	}
	return ""
}
