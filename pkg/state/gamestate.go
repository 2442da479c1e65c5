package state

import (
	"maps"
	"slices"
	"time"

	"github.com/google/uuid"
	"github.com/jwebster45206/dialog-engine/pkg/scenario"
)

// GameState is the persisted progress of one play-through of a scenario.
type GameState struct {
	ID         uuid.UUID         `json:"id"`
	Scenario   string            `json:"scenario"` // scenario file name
	Flags      map[string]bool   `json:"flags,omitempty"`
	Inventory  []string          `json:"inventory,omitempty"`
	Interacted map[string]bool   `json:"interacted,omitempty"` // NPC IDs whose first dialog completed
	Removed    map[string]bool   `json:"removed,omitempty"`    // NPC IDs that have left the scene
	Player     scenario.Position `json:"player"`
	HP         int               `json:"hp"`
	Sessions   int               `json:"sessions"` // completed dialog sessions
	CreatedAt  time.Time         `json:"created_at"`
	UpdatedAt  time.Time         `json:"updated_at"`
}

// NewGameState creates a fresh play-through of s.
func NewGameState(s *scenario.Scenario) *GameState {
	gs := &GameState{
		ID:         uuid.New(),
		Scenario:   s.FileName,
		Flags:      make(map[string]bool, len(s.Flags)),
		Interacted: make(map[string]bool),
		Removed:    make(map[string]bool),
		Player:     s.Player.Start,
		HP:         s.Player.MaxHP,
		CreatedAt:  time.Now(),
	}
	maps.Copy(gs.Flags, s.Flags)
	return gs
}

// SetFlag sets or clears a flag.
func (gs *GameState) SetFlag(key string, value bool) {
	if gs.Flags == nil {
		gs.Flags = make(map[string]bool)
	}
	gs.Flags[key] = value
}

// Flag returns a flag's value; unknown flags are false.
func (gs *GameState) Flag(key string) bool {
	return gs.Flags[key]
}

// AddItem adds an item to the inventory. Duplicates are ignored.
func (gs *GameState) AddItem(item string) bool {
	if gs.HasItem(item) {
		return false
	}
	gs.Inventory = append(gs.Inventory, item)
	return true
}

// RemoveItem takes an item out of the inventory.
func (gs *GameState) RemoveItem(item string) bool {
	i := slices.Index(gs.Inventory, item)
	if i < 0 {
		return false
	}
	gs.Inventory = slices.Delete(gs.Inventory, i, i+1)
	return true
}

// HasItem reports whether the inventory holds item.
func (gs *GameState) HasItem(item string) bool {
	return slices.Contains(gs.Inventory, item)
}

// MarkInteracted records that an NPC's first dialog has completed.
func (gs *GameState) MarkInteracted(npcID string) {
	if gs.Interacted == nil {
		gs.Interacted = make(map[string]bool)
	}
	gs.Interacted[npcID] = true
}

// MarkRemoved records that an NPC has left the scene.
func (gs *GameState) MarkRemoved(npcID string) {
	if gs.Removed == nil {
		gs.Removed = make(map[string]bool)
	}
	gs.Removed[npcID] = true
}

// Clone returns a deep copy of gs.
func (gs *GameState) Clone() *GameState {
	if gs == nil {
		return nil
	}
	c := *gs
	c.Flags = maps.Clone(gs.Flags)
	c.Inventory = slices.Clone(gs.Inventory)
	c.Interacted = maps.Clone(gs.Interacted)
	c.Removed = maps.Clone(gs.Removed)
	return &c
}
