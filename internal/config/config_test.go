package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func clearEnv(t *testing.T) {
	t.Helper()
	t.Chdir(t.TempDir())
	for _, key := range []string{
		"DATABASE_URL", "LISTEN_ADDR", "CORS_ORIGINS", "JWT_SECRET",
		"TOKEN_TTL", "SANDBOX_OPENING_BALANCE", "LOG_LEVEL", "LOG_FORMAT",
	} {
		t.Setenv(key, "")
	}
}

func TestLoad_Defaults(t *testing.T) {
	clearEnv(t)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "corebank-sandbox.sqlite", cfg.Database.URL)
	assert.Equal(t, ":8080", cfg.HTTP.ListenAddr)
	assert.Equal(t, []string{"http://localhost:5173"}, cfg.HTTP.CORSOrigins)
	assert.Empty(t, cfg.Auth.JWTSecret)
	assert.Equal(t, time.Hour, cfg.Auth.TokenTTL)
	assert.Equal(t, int64(100000), cfg.Bank.OpeningBalanceCents)
	assert.Equal(t, "info", cfg.Logging.Level)
	assert.Equal(t, "json", cfg.Logging.Format)
}

func TestLoad_Overrides(t *testing.T) {
	clearEnv(t)
	t.Setenv("DATABASE_URL", ":memory:")
	t.Setenv("LISTEN_ADDR", "127.0.0.1:9090")
	t.Setenv("CORS_ORIGINS", "http://a.test, http://b.test,")
	t.Setenv("JWT_SECRET", "s3cret")
	t.Setenv("TOKEN_TTL", "15m")
	t.Setenv("SANDBOX_OPENING_BALANCE", "250.75")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, ":memory:", cfg.Database.URL)
	assert.Equal(t, "127.0.0.1:9090", cfg.HTTP.ListenAddr)
	assert.Equal(t, []string{"http://a.test", "http://b.test"}, cfg.HTTP.CORSOrigins)
	assert.Equal(t, "s3cret", cfg.Auth.JWTSecret)
	assert.Equal(t, 15*time.Minute, cfg.Auth.TokenTTL)
	assert.Equal(t, int64(25075), cfg.Bank.OpeningBalanceCents)
}

func TestLoad_InvalidValues(t *testing.T) {
	clearEnv(t)
	t.Setenv("TOKEN_TTL", "soon")
	_, err := Load()
	assert.ErrorContains(t, err, "TOKEN_TTL")

	t.Setenv("TOKEN_TTL", "-1m")
	_, err = Load()
	assert.ErrorContains(t, err, "TOKEN_TTL")

	t.Setenv("TOKEN_TTL", "")
	t.Setenv("SANDBOX_OPENING_BALANCE", "1.999")
	_, err = Load()
	assert.ErrorContains(t, err, "SANDBOX_OPENING_BALANCE")
}

func TestParseCents(t *testing.T) {
	tests := []struct {
		in      string
		want    int64
		wantErr bool
	}{
		{"1000", 100000, false},
		{"12.5", 1250, false},
		{"0.99", 99, false},
		{".5", 50, false},
		{"7.", 700, false},
		{"", 0, true},
		{"-1", 0, true},
		{"1.234", 0, true},
		{"abc", 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseCents(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}
