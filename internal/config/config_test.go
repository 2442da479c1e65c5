package config

import (
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	for _, key := range []string{"ENVIRONMENT", "LOG_LEVEL", "LOG_FILE", "REDIS_URL", "DATA_DIR", "SCENARIO", "GAME_ID", "TYPING_SPEED_MS", "TICK_MS", "SQLITE_PATH", "PORT"} {
		t.Setenv(key, "")
	}

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "development", cfg.Environment)
	assert.Equal(t, slog.LevelInfo, cfg.LogLevel)
	assert.Equal(t, "./data", cfg.DataDir)
	assert.Equal(t, "veggie_village.json", cfg.Scenario)
	assert.Empty(t, cfg.RedisURL)
	assert.Empty(t, cfg.SQLitePath)
	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, 40*time.Millisecond, cfg.TypingSpeed)
	assert.Equal(t, 16*time.Millisecond, cfg.TickRate)
}

func TestLoad_FromEnvironment(t *testing.T) {
	t.Setenv("ENVIRONMENT", "production")
	t.Setenv("LOG_LEVEL", "WARNING")
	t.Setenv("REDIS_URL", "localhost:6379")
	t.Setenv("TYPING_SPEED_MS", "25")
	t.Setenv("TICK_MS", "10")
	t.Setenv("SQLITE_PATH", "/tmp/games.db")
	t.Setenv("PORT", "9090")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "production", cfg.Environment)
	assert.Equal(t, slog.LevelWarn, cfg.LogLevel)
	assert.Equal(t, "localhost:6379", cfg.RedisURL)
	assert.Equal(t, 25*time.Millisecond, cfg.TypingSpeed)
	assert.Equal(t, 10*time.Millisecond, cfg.TickRate)
	assert.Equal(t, "/tmp/games.db", cfg.SQLitePath)
	assert.Equal(t, "9090", cfg.Port)
}

func TestLoad_InvalidNumbers(t *testing.T) {
	tests := []struct {
		key   string
		value string
	}{
		{"TYPING_SPEED_MS", "fast"},
		{"TICK_MS", "1.5"},
		{"TYPING_SPEED_MS", "0"},
		{"TICK_MS", "-4"},
	}

	for _, tt := range tests {
		t.Run(tt.key+"="+tt.value, func(t *testing.T) {
			t.Setenv("TYPING_SPEED_MS", "")
			t.Setenv("TICK_MS", "")
			t.Setenv(tt.key, tt.value)
			_, err := Load()
			assert.Error(t, err)
		})
	}
}

func TestParseLogLevel(t *testing.T) {
	assert.Equal(t, slog.LevelDebug, parseLogLevel("debug"))
	assert.Equal(t, slog.LevelError, parseLogLevel("ERROR"))
	assert.Equal(t, slog.LevelInfo, parseLogLevel("verbose"))
}
