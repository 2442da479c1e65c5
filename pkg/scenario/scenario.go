package scenario

import "time"

// PlayerSpeakerID is the speaker reference that resolves to the player in
// conversation lines.
const PlayerSpeakerID = "player"

// Position is a cell on the scenario map.
type Position struct {
	X int `json:"x" yaml:"x"`
	Y int `json:"y" yaml:"y"`
}

// Within reports whether other lies inside the circle of the given radius
// centred on p.
func (p Position) Within(other Position, radius int) bool {
	dx, dy := p.X-other.X, p.Y-other.Y
	return dx*dx+dy*dy <= radius*radius
}

// Player describes the player character.
type Player struct {
	Name       string         `json:"name" yaml:"name"`
	Start      Position       `json:"start" yaml:"start"`
	MaxHP      int            `json:"max_hp" yaml:"max_hp"`
	AC         int            `json:"ac,omitempty" yaml:"ac,omitempty"`
	Attributes map[string]int `json:"attributes,omitempty" yaml:"attributes,omitempty"`
}

// NPC is a character the player can talk to.
type NPC struct {
	Name       string   `json:"name" yaml:"name"`
	Position   Position `json:"position" yaml:"position"`
	Radius     int      `json:"radius" yaml:"radius"`                         // interaction range in cells
	Animated   bool     `json:"animated,omitempty" yaml:"animated,omitempty"` // has an animation sink
	Mute       bool     `json:"mute,omitempty" yaml:"mute,omitempty"`         // no speech bubble attached
	First      Dialog   `json:"first" yaml:"first"`
	Subsequent *Dialog  `json:"subsequent,omitempty" yaml:"subsequent,omitempty"` // used once First has completed
	OnComplete []Effect `json:"on_complete,omitempty" yaml:"on_complete,omitempty"`
}

// Scenario is a playable map with its characters and their dialog.
type Scenario struct {
	Name          string          `json:"name" yaml:"name"`
	FileName      string          `json:"-" yaml:"-"`
	Description   string          `json:"description,omitempty" yaml:"description,omitempty"`
	Width         int             `json:"width" yaml:"width"`
	Height        int             `json:"height" yaml:"height"`
	TypingSpeedMS int             `json:"typing_speed_ms,omitempty" yaml:"typing_speed_ms,omitempty"`
	TypingSound   string          `json:"typing_sound,omitempty" yaml:"typing_sound,omitempty"`
	CompleteSound string          `json:"complete_sound,omitempty" yaml:"complete_sound,omitempty"`
	Player        Player          `json:"player" yaml:"player"`
	NPCs          map[string]NPC  `json:"npcs" yaml:"npcs"`
	Flags         map[string]bool `json:"flags,omitempty" yaml:"flags,omitempty"` // initial flag values
}

// TypingSpeed returns the scenario's per-character delay, or fallback when
// the scenario does not set one.
func (s *Scenario) TypingSpeed(fallback time.Duration) time.Duration {
	if s.TypingSpeedMS > 0 {
		return time.Duration(s.TypingSpeedMS) * time.Millisecond
	}
	return fallback
}

// InBounds reports whether p lies on the map.
func (s *Scenario) InBounds(p Position) bool {
	return p.X >= 0 && p.Y >= 0 && p.X < s.Width && p.Y < s.Height
}
