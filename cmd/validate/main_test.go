package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeScenario(t *testing.T, dir, name, body string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("failed to write %s: %v", name, err)
	}
	return path
}

const validScenario = `{
  "name": "Tiny",
  "width": 5,
  "height": 5,
  "player": {"name": "Mali", "start": {"x": 0, "y": 0}, "max_hp": 3},
  "npcs": {
    "cat": {"name": "Cat", "position": {"x": 2, "y": 2}, "radius": 1, "first": {"sentences": ["Meow."]}}
  }
}`

func TestRun_BundledScenarios(t *testing.T) {
	var stdout, stderr bytes.Buffer
	code := run([]string{filepath.Join("..", "..", "data", "scenarios")}, &stdout, &stderr)

	if code != 0 {
		t.Fatalf("expected exit 0, got %d: %s", code, stderr.String())
	}
	if strings.Count(stdout.String(), "Scenario file is valid!") < 2 {
		t.Errorf("expected every bundled scenario to validate, got:\n%s", stdout.String())
	}
	if !strings.Contains(stdout.String(), "empty beat") {
		t.Errorf("expected lint warnings in output, got:\n%s", stdout.String())
	}
}

func TestRun_Failures(t *testing.T) {
	dir := t.TempDir()

	tests := []struct {
		name     string
		file     string
		body     string
		contains string
	}{
		{"bad filename", "Tiny-Map.json", validScenario, "lowercase snake_case"},
		{"bad extension", "tiny.txt", validScenario, "unsupported scenario file extension"},
		{"unknown field", "extra.json", `{"name": "X", "mystery": 1}`, "failed strict unmarshaling"},
		{"invalid content", "broken.yaml", "name: Broken\nwidth: 0\nheight: 3\n", "map size must be positive"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writeScenario(t, dir, tt.file, tt.body)
			var stdout, stderr bytes.Buffer

			if code := run([]string{path}, &stdout, &stderr); code != 1 {
				t.Errorf("expected exit 1, got %d", code)
			}
			if !strings.Contains(stderr.String(), tt.contains) {
				t.Errorf("expected stderr to contain %q, got %q", tt.contains, stderr.String())
			}
		})
	}
}

func TestRun_ValidFile(t *testing.T) {
	path := writeScenario(t, t.TempDir(), "x.tiny.json", validScenario)
	var stdout, stderr bytes.Buffer

	if code := run([]string{path}, &stdout, &stderr); code != 0 {
		t.Fatalf("expected exit 0, got %d: %s", code, stderr.String())
	}
}

func TestRun_Usage(t *testing.T) {
	var stdout, stderr bytes.Buffer
	if code := run(nil, &stdout, &stderr); code != 1 {
		t.Errorf("expected exit 1, got %d", code)
	}
	if code := run([]string{t.TempDir()}, &stdout, &stderr); code != 1 {
		t.Errorf("expected exit 1 for empty directory, got %d", code)
	}
}

func TestIsValidScenarioFilename(t *testing.T) {
	tests := map[string]bool{
		"veggie_village": true,
		"x.draft":        true,
		"a":              true,
		"Veggie":         false,
		"veggie-village": false,
		"village_":       false,
	}
	for name, want := range tests {
		if got := isValidScenarioFilename(name); got != want {
			t.Errorf("isValidScenarioFilename(%q): expected %t, got %t", name, want, got)
		}
	}
}
