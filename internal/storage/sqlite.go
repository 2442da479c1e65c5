package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/jwebster45206/dialog-engine/pkg/state"
	"github.com/jwebster45206/dialog-engine/pkg/storage"
	_ "modernc.org/sqlite"
)

const gameStateSchema = `
CREATE TABLE IF NOT EXISTS game_states (
	id         TEXT PRIMARY KEY,
	scenario   TEXT NOT NULL,
	data       TEXT NOT NULL,
	updated_at INTEGER NOT NULL
)`

// SQLiteStorage implements the Storage interface with game states in a local
// SQLite file and scenarios on the filesystem. It is the single player
// alternative to Redis when no server is available.
type SQLiteStorage struct {
	scenarioFiles
	db     *sql.DB
	logger *slog.Logger
}

var _ storage.Storage = (*SQLiteStorage)(nil)

// NewSQLiteStorage opens or creates the database at path and runs the schema.
func NewSQLiteStorage(path string, dataDir string, logger *slog.Logger) (*SQLiteStorage, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	// One writer; the game loop is single threaded anyway.
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(gameStateSchema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to create schema: %w", err)
	}

	logger.Info("SQLite storage opened", "path", path)
	return &SQLiteStorage{
		scenarioFiles: newScenarioFiles(dataDir, logger),
		db:            db,
		logger:        logger,
	}, nil
}

func (s *SQLiteStorage) Name() string {
	return "sqlite"
}

func (s *SQLiteStorage) Ping(ctx context.Context) error {
	if err := s.db.PingContext(ctx); err != nil {
		return fmt.Errorf("sqlite ping failed: %w", err)
	}
	return nil
}

func (s *SQLiteStorage) Close() error {
	if err := s.db.Close(); err != nil {
		s.logger.Error("Failed to close SQLite database", "error", err)
		return err
	}
	s.logger.Info("SQLite database closed")
	return nil
}

func (s *SQLiteStorage) SaveGameState(ctx context.Context, id uuid.UUID, gs *state.GameState) error {
	if gs == nil {
		return errors.New("gamestate cannot be nil")
	}
	gs.UpdatedAt = time.Now()

	data, err := json.Marshal(gs)
	if err != nil {
		s.logger.Error("Failed to marshal gamestate", "uuid", id, "error", err)
		return fmt.Errorf("failed to marshal gamestate: %w", err)
	}

	_, err = s.db.ExecContext(ctx,
		`INSERT INTO game_states (id, scenario, data, updated_at) VALUES (?, ?, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET scenario = excluded.scenario, data = excluded.data, updated_at = excluded.updated_at`,
		id.String(), gs.Scenario, string(data), gs.UpdatedAt.Unix())
	if err != nil {
		s.logger.Error("Failed to save gamestate", "uuid", id, "error", err)
		return fmt.Errorf("failed to save gamestate: %w", err)
	}
	return nil
}

func (s *SQLiteStorage) LoadGameState(ctx context.Context, id uuid.UUID) (*state.GameState, error) {
	var data string
	err := s.db.QueryRowContext(ctx, `SELECT data FROM game_states WHERE id = ?`, id.String()).Scan(&data)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			s.logger.Warn("Gamestate not found", "uuid", id)
			return nil, nil
		}
		s.logger.Error("Failed to load gamestate", "uuid", id, "error", err)
		return nil, fmt.Errorf("failed to load gamestate: %w", err)
	}

	var gs state.GameState
	if err := json.Unmarshal([]byte(data), &gs); err != nil {
		s.logger.Error("Failed to unmarshal gamestate", "uuid", id, "error", err)
		return nil, fmt.Errorf("failed to unmarshal gamestate: %w", err)
	}
	return &gs, nil
}

func (s *SQLiteStorage) DeleteGameState(ctx context.Context, id uuid.UUID) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM game_states WHERE id = ?`, id.String()); err != nil {
		s.logger.Error("Failed to delete gamestate", "uuid", id, "error", err)
		return fmt.Errorf("failed to delete gamestate: %w", err)
	}
	return nil
}
