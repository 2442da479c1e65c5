package storage

import (
	"context"
	"fmt"
	"io/fs"
	"log/slog"
	"path/filepath"

	"github.com/jwebster45206/dialog-engine/pkg/scenario"
)

// scenarioFiles serves scenarios from <dataDir>/scenarios. It is shared by
// every game state backend.
type scenarioFiles struct {
	dir    string
	logger *slog.Logger
}

func newScenarioFiles(dataDir string, logger *slog.Logger) scenarioFiles {
	if dataDir == "" {
		dataDir = "./data"
	}
	return scenarioFiles{
		dir:    filepath.Join(dataDir, "scenarios"),
		logger: logger,
	}
}

// ListScenarios maps scenario names to file names. Files that fail to load
// are logged and skipped.
func (f scenarioFiles) ListScenarios(ctx context.Context) (map[string]string, error) {
	scenarios := make(map[string]string)

	err := filepath.WalkDir(f.dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil || d.IsDir() {
			return nil
		}
		if _, err := scenario.FormatFromPath(path); err != nil {
			return nil
		}

		s, err := scenario.Load(path)
		if err != nil {
			f.logger.Warn("Failed to load scenario file", "path", path, "error", err)
			return nil
		}
		scenarios[s.Name] = s.FileName
		return nil
	})
	if err != nil {
		f.logger.Error("Failed to walk scenarios directory", "error", err)
		return nil, fmt.Errorf("failed to list scenarios: %w", err)
	}

	return scenarios, nil
}

func (f scenarioFiles) GetScenario(ctx context.Context, filename string) (*scenario.Scenario, error) {
	if filename != filepath.Base(filename) {
		return nil, fmt.Errorf("invalid scenario file name: %s", filename)
	}
	return scenario.Load(filepath.Join(f.dir, filename))
}
