package storage

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/jwebster45206/dialog-engine/pkg/scenario"
	"github.com/jwebster45206/dialog-engine/pkg/state"
)

func TestMockStorage_GameState(t *testing.T) {
	ctx := context.Background()
	m := NewMockStorage()
	gs := state.NewGameState(&scenario.Scenario{FileName: "test.json"})

	loaded, err := m.LoadGameState(ctx, gs.ID)
	if err != nil || loaded != nil {
		t.Fatalf("expected nil, nil for missing state, got %v, %v", loaded, err)
	}

	if err := m.SaveGameState(ctx, gs.ID, gs); err != nil {
		t.Fatalf("save failed: %v", err)
	}
	gs.AddItem("lamp")

	loaded, err = m.LoadGameState(ctx, gs.ID)
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if loaded.HasItem("lamp") {
		t.Error("expected saved state to be isolated from later changes")
	}
	if m.Saves() != 1 {
		t.Errorf("expected 1 save, got %d", m.Saves())
	}

	if err := m.DeleteGameState(ctx, gs.ID); err != nil {
		t.Fatalf("delete failed: %v", err)
	}
	if loaded, _ := m.LoadGameState(ctx, gs.ID); loaded != nil {
		t.Error("expected state to be deleted")
	}

	if err := m.SaveGameState(ctx, uuid.New(), nil); err == nil {
		t.Error("expected error saving nil state")
	}
}

func TestMockStorage_Scenarios(t *testing.T) {
	ctx := context.Background()
	m := NewMockStorage()
	m.AddScenario("village.json", &scenario.Scenario{Name: "Village"})

	list, err := m.ListScenarios(ctx)
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if list["Village"] != "village.json" {
		t.Errorf("expected Village -> village.json, got %v", list)
	}

	s, err := m.GetScenario(ctx, "village.json")
	if err != nil {
		t.Fatalf("get failed: %v", err)
	}
	if s.FileName != "village.json" {
		t.Errorf("expected file name to be set, got %q", s.FileName)
	}

	if _, err := m.GetScenario(ctx, "missing.json"); err == nil {
		t.Error("expected error for missing scenario")
	}
}

func TestMockStorage_Ping(t *testing.T) {
	m := NewMockStorage()
	if m.Name() != "memory" {
		t.Errorf("expected backend name memory, got %q", m.Name())
	}
	if err := m.Ping(context.Background()); err != nil {
		t.Fatalf("expected ping to succeed, got %v", err)
	}
	m.SetPingError(errors.New("down"))
	if err := m.Ping(context.Background()); err == nil {
		t.Error("expected ping error")
	}
	m.SetPingError(nil)
	if err := m.Ping(context.Background()); err != nil {
		t.Errorf("expected ping to recover, got %v", err)
	}
}
