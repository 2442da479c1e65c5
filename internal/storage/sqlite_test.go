package storage

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/uuid"
	"github.com/jwebster45206/dialog-engine/pkg/scenario"
	"github.com/jwebster45206/dialog-engine/pkg/state"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupTestSQLite(t *testing.T, dataDir string) (*SQLiteStorage, string) {
	t.Helper()

	path := filepath.Join(t.TempDir(), "games.db")
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
	s, err := NewSQLiteStorage(path, dataDir, logger)
	require.NoError(t, err)
	t.Cleanup(func() {
		_ = s.Close()
	})
	return s, path
}

func TestSQLiteStorage_GameState(t *testing.T) {
	s, _ := setupTestSQLite(t, "")
	ctx := context.Background()
	require.NoError(t, s.Ping(ctx))
	assert.Equal(t, "sqlite", s.Name())

	gs := state.NewGameState(&scenario.Scenario{FileName: "village.json", Player: scenario.Player{MaxHP: 8}})
	gs.AddItem("lamp")
	gs.SetFlag("met_farmer", true)
	gs.Sessions = 2
	require.NoError(t, s.SaveGameState(ctx, gs.ID, gs))

	// Saving again updates in place.
	gs.Sessions = 3
	require.NoError(t, s.SaveGameState(ctx, gs.ID, gs))

	loaded, err := s.LoadGameState(ctx, gs.ID)
	require.NoError(t, err)
	require.NotNil(t, loaded)
	assert.Equal(t, gs.ID, loaded.ID)
	assert.Equal(t, "village.json", loaded.Scenario)
	assert.Equal(t, 3, loaded.Sessions)
	assert.True(t, loaded.HasItem("lamp"))
	assert.True(t, loaded.Flag("met_farmer"))
	assert.False(t, loaded.UpdatedAt.IsZero())

	require.NoError(t, s.DeleteGameState(ctx, gs.ID))
	loaded, err = s.LoadGameState(ctx, gs.ID)
	require.NoError(t, err)
	assert.Nil(t, loaded)
}

func TestSQLiteStorage_SurvivesReopen(t *testing.T) {
	s, path := setupTestSQLite(t, "")
	ctx := context.Background()

	gs := state.NewGameState(&scenario.Scenario{FileName: "village.json", Player: scenario.Player{MaxHP: 5}})
	gs.MarkRemoved("ghost")
	require.NoError(t, s.SaveGameState(ctx, gs.ID, gs))
	require.NoError(t, s.Close())

	reopened, err := NewSQLiteStorage(path, "", slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError})))
	require.NoError(t, err)
	defer reopened.Close()

	loaded, err := reopened.LoadGameState(ctx, gs.ID)
	require.NoError(t, err)
	require.NotNil(t, loaded)
	assert.True(t, loaded.Removed["ghost"])
}

func TestSQLiteStorage_Errors(t *testing.T) {
	s, _ := setupTestSQLite(t, "")
	ctx := context.Background()

	assert.Error(t, s.SaveGameState(ctx, uuid.New(), nil))

	id := uuid.New()
	_, err := s.db.ExecContext(ctx, `INSERT INTO game_states (id, scenario, data, updated_at) VALUES (?, 'x.json', '{not json', 0)`, id.String())
	require.NoError(t, err)
	_, err = s.LoadGameState(ctx, id)
	assert.Error(t, err)
}

func TestSQLiteStorage_Scenarios(t *testing.T) {
	s, _ := setupTestSQLite(t, filepath.Join("..", "..", "data"))
	ctx := context.Background()

	list, err := s.ListScenarios(ctx)
	require.NoError(t, err)
	require.NotEmpty(t, list)

	for _, file := range list {
		_, err := s.GetScenario(ctx, file)
		assert.NoError(t, err, file)
	}
	_, err = s.GetScenario(ctx, "../scenarios/veggie_village.json")
	assert.Error(t, err)
}
