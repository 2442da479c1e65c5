package storage

import (
	"context"

	"github.com/google/uuid"
	"github.com/jwebster45206/dialog-engine/pkg/scenario"
	"github.com/jwebster45206/dialog-engine/pkg/state"
)

// Storage defines a unified interface for all storage operations
// This interface combines gamestate persistence (Redis) with scenario loading (filesystem)
type Storage interface {
	// Health and lifecycle
	// Name identifies the game state backend: "redis", "sqlite" or "memory"
	Name() string
	Ping(ctx context.Context) error
	Close() error

	// GameState operations (Redis-backed)
	SaveGameState(ctx context.Context, id uuid.UUID, gs *state.GameState) error
	// LoadGameState returns nil, nil when the game state does not exist
	LoadGameState(ctx context.Context, id uuid.UUID) (*state.GameState, error)
	DeleteGameState(ctx context.Context, id uuid.UUID) error

	// Scenario operations (filesystem-backed)
	// ListScenarios maps scenario names to file names
	ListScenarios(ctx context.Context) (map[string]string, error)
	GetScenario(ctx context.Context, filename string) (*scenario.Scenario, error)
}
