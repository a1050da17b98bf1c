package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all configuration for the sandbox server
type Config struct {
	// Database Configuration
	Database DatabaseConfig

	// HTTP Configuration
	HTTP HTTPConfig

	// Authentication Configuration
	Auth AuthConfig

	// Sandbox bank behaviour
	Bank BankConfig

	// Logging Configuration
	Logging LoggingConfig
}

// DatabaseConfig holds database configuration
type DatabaseConfig struct {
	URL string
}

// HTTPConfig holds listener and CORS settings
type HTTPConfig struct {
	ListenAddr  string
	CORSOrigins []string
}

// AuthConfig holds JWT settings
type AuthConfig struct {
	JWTSecret string // empty means generate one at startup
	TokenTTL  time.Duration
}

// BankConfig holds sandbox bank settings
type BankConfig struct {
	OpeningBalanceCents int64
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

	// Database URL - default to a local file, ":memory:" works for throwaway runs
	dbURL := os.Getenv("DATABASE_URL")
	if dbURL == "" {
		dbURL = "corebank-sandbox.sqlite"
	}

	listenAddr := os.Getenv("LISTEN_ADDR")
	if listenAddr == "" {
		listenAddr = ":8080"
	}

	// Vite dev server by default
	origins := []string{"http://localhost:5173"}
	if raw := os.Getenv("CORS_ORIGINS"); raw != "" {
		origins = origins[:0]
		for origin := range strings.SplitSeq(raw, ",") {
			if origin = strings.TrimSpace(origin); origin != "" {
				origins = append(origins, origin)
			}
		}
	}

	tokenTTL := time.Hour
	if raw := os.Getenv("TOKEN_TTL"); raw != "" {
		ttl, err := time.ParseDuration(raw)
		if err != nil {
			return nil, fmt.Errorf("invalid TOKEN_TTL %q: %w", raw, err)
		}
		if ttl <= 0 {
			return nil, fmt.Errorf("TOKEN_TTL must be positive, got %s", ttl)
		}
		tokenTTL = ttl
	}

	openingBalance := int64(100000)
	if raw := os.Getenv("SANDBOX_OPENING_BALANCE"); raw != "" {
		cents, err := ParseCents(raw)
		if err != nil {
			return nil, fmt.Errorf("invalid SANDBOX_OPENING_BALANCE %q: %w", raw, err)
		}
		openingBalance = cents
	}

	// Logging configuration - defaults suitable for production
	logLevel := os.Getenv("LOG_LEVEL")
	if logLevel == "" {
		logLevel = "info"
	}

	logFormat := os.Getenv("LOG_FORMAT")
	if logFormat == "" {
		logFormat = "json"
	}

	return &Config{
		Database: DatabaseConfig{
			URL: dbURL,
		},
		HTTP: HTTPConfig{
			ListenAddr:  listenAddr,
			CORSOrigins: origins,
		},
		Auth: AuthConfig{
			JWTSecret: os.Getenv("JWT_SECRET"),
			TokenTTL:  tokenTTL,
		},
		Bank: BankConfig{
			OpeningBalanceCents: openingBalance,
		},
		Logging: LoggingConfig{
			Level:  logLevel,
			Format: logFormat,
		},
	}, nil
}

// ParseCents parses a non-negative decimal amount ("1000", "12.5", "0.99")
// into cents. More than two decimal places is an error.
func ParseCents(s string) (int64, error) {
	whole, frac, hasFrac := strings.Cut(strings.TrimSpace(s), ".")
	if whole == "" && !hasFrac {
		return 0, fmt.Errorf("empty amount")
	}
	if len(frac) > 2 {
		return 0, fmt.Errorf("at most two decimal places allowed")
	}

	var units int64
	if whole != "" {
		v, err := strconv.ParseInt(whole, 10, 64)
		if err != nil || v < 0 {
			return 0, fmt.Errorf("not a non-negative amount")
		}
		units = v
	}

	var cents int64
	if frac != "" {
		for len(frac) < 2 {
			frac += "0"
		}
		v, err := strconv.ParseInt(frac, 10, 64)
		if err != nil || v < 0 {
			return 0, fmt.Errorf("not a non-negative amount")
		}
		cents = v
	}

	return units*100 + cents, nil
}
