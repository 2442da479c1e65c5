package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/google/uuid"
	"github.com/jwebster45206/dialog-engine/internal/config"
	"github.com/jwebster45206/dialog-engine/internal/game"
	"github.com/jwebster45206/dialog-engine/internal/logger"
	"github.com/jwebster45206/dialog-engine/internal/services/events"
	gamestorage "github.com/jwebster45206/dialog-engine/internal/storage"
	"github.com/jwebster45206/dialog-engine/pkg/scenario"
	"github.com/jwebster45206/dialog-engine/pkg/storage"
	"github.com/mattn/go-isatty"
)

func main() {
	if !isatty.IsTerminal(os.Stdout.Fd()) && !isatty.IsCygwinTerminal(os.Stdout.Fd()) {
		fmt.Fprintln(os.Stderr, "The console must be run in an interactive terminal")
		os.Exit(1)
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}
	// The TUI owns stdout.
	if cfg.LogFile == "" {
		cfg.LogFile = "console.log"
	}

	log, logCloser, err := logger.Setup(cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to set up logging: %v\n", err)
		os.Exit(1)
	}
	defer func() {
		_ = logCloser.Close()
	}()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	store, attach, err := openStorage(ctx, cfg, log)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to open storage: %v\n", err)
		os.Exit(1)
	}
	defer func() {
		_ = store.Close()
	}()

	opts := game.Options{TypingSpeed: cfg.TypingSpeed}
	ui := NewConsoleUI(ctx, store, opts, attach, cfg.TickRate, cfg.Scenario, log)

	if cfg.GameID != "" {
		gameID, err := uuid.Parse(cfg.GameID)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Invalid GAME_ID: %v\n", err)
			os.Exit(1)
		}
		filename := cfg.Scenario
		if gs, err := store.LoadGameState(ctx, gameID); err != nil {
			fmt.Fprintf(os.Stderr, "Failed to load game %s: %v\n", gameID, err)
			os.Exit(1)
		} else if gs != nil {
			filename = gs.Scenario
		}
		ui = ui.Resume(filename, gameID)
	}

	p := tea.NewProgram(ui, tea.WithAltScreen(), tea.WithContext(ctx))
	if _, err := p.Run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error running program: %v\n", err)
		os.Exit(1)
	}
}

// openStorage connects to Redis when REDIS_URL is set and broadcasts dialog
// events there. Without Redis, SQLITE_PATH keeps progress in a local file.
// With neither, progress is kept in memory for the length of the session and
// scenarios are read once from DATA_DIR.
func openStorage(ctx context.Context, cfg *config.Config, log *slog.Logger) (storage.Storage, func(*game.World), error) {
	if cfg.RedisURL == "" && cfg.SQLitePath != "" {
		ss, err := gamestorage.NewSQLiteStorage(cfg.SQLitePath, cfg.DataDir, log)
		if err != nil {
			return nil, nil, err
		}
		return ss, nil, nil
	}
	if cfg.RedisURL == "" {
		log.Info("REDIS_URL and SQLITE_PATH not set, game progress will not be persisted")
		mem, err := memoryStorage(cfg.DataDir, log)
		if err != nil {
			return nil, nil, err
		}
		return mem, nil, nil
	}

	rs, err := gamestorage.NewRedisStorage(cfg.RedisURL, cfg.DataDir, log)
	if err != nil {
		return nil, nil, err
	}
	if err := rs.Ping(ctx); err != nil {
		_ = rs.Close()
		return nil, nil, err
	}

	bs := &broadcastingStorage{RedisStorage: rs, log: log}
	return bs, bs.attach, nil
}

// broadcastingStorage flushes the event broadcasters of every opened world
// before the Redis connection closes.
type broadcastingStorage struct {
	*gamestorage.RedisStorage
	log *slog.Logger

	mu           sync.Mutex
	broadcasters []*events.Broadcaster
}

func (s *broadcastingStorage) attach(w *game.World) {
	b := events.NewBroadcaster(s.Client(), w.State.ID, s.log)
	w.AddListener(b)
	w.SetNotifier(b)

	s.mu.Lock()
	s.broadcasters = append(s.broadcasters, b)
	s.mu.Unlock()
}

func (s *broadcastingStorage) Close() error {
	s.mu.Lock()
	for _, b := range s.broadcasters {
		b.Close()
	}
	s.broadcasters = nil
	s.mu.Unlock()
	return s.RedisStorage.Close()
}

func memoryStorage(dataDir string, log *slog.Logger) (*storage.MockStorage, error) {
	paths, err := filepath.Glob(filepath.Join(dataDir, "scenarios", "*"))
	if err != nil {
		return nil, fmt.Errorf("failed to list scenarios: %w", err)
	}

	mem := storage.NewMockStorage()
	for _, path := range paths {
		if _, err := scenario.FormatFromPath(path); err != nil {
			continue
		}
		s, err := scenario.Load(path)
		if err != nil {
			log.Warn("Skipping scenario", "path", path, "error", err)
			continue
		}
		mem.AddScenario(s.FileName, s)
	}
	return mem, nil
}
