package config

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	Environment string
	LogLevel    slog.Level
	LogFile     string // empty logs to stdout

	RedisURL   string // empty disables event broadcast
	SQLitePath string // local game state file, used when RedisURL is empty
	DataDir    string
	Scenario   string // scenario file name under DataDir/scenarios
	GameID     string // resume this game state when set

	TypingSpeed time.Duration
	TickRate    time.Duration

	Port string // spectator server
}

func Load() (*Config, error) {
	typingMS, err := getEnvInt("TYPING_SPEED_MS", 40)
	if err != nil {
		return nil, err
	}
	tickMS, err := getEnvInt("TICK_MS", 16)
	if err != nil {
		return nil, err
	}
	if typingMS <= 0 || tickMS <= 0 {
		return nil, fmt.Errorf("TYPING_SPEED_MS and TICK_MS must be positive")
	}

	return &Config{
		Environment: getEnv("ENVIRONMENT", "development"),
		LogLevel:    parseLogLevel(getEnv("LOG_LEVEL", "info")),
		LogFile:     os.Getenv("LOG_FILE"),
		RedisURL:    os.Getenv("REDIS_URL"),
		SQLitePath:  os.Getenv("SQLITE_PATH"),
		DataDir:     getEnv("DATA_DIR", "./data"),
		Scenario:    getEnv("SCENARIO", "veggie_village.json"),
		GameID:      os.Getenv("GAME_ID"),
		TypingSpeed: time.Duration(typingMS) * time.Millisecond,
		TickRate:    time.Duration(tickMS) * time.Millisecond,
		Port:        getEnv("PORT", "8080"),
	}, nil
}

func parseLogLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) (int, error) {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue, nil
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: %w", key, value, err)
	}
	return n, nil
}
