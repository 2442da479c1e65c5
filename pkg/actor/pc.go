package actor

import (
	"fmt"
	"maps"

	"github.com/jwebster45206/d20"
	"github.com/jwebster45206/dialog-engine/pkg/dialog"
	"github.com/jwebster45206/dialog-engine/pkg/scenario"
)

const defaultAC = 10

// PC is the runtime player character. It doubles as the dialog movement lock:
// while a session is active the player cannot walk.
type PC struct {
	Spec     *scenario.Player
	Actor    *d20.Actor // HP and AC live here
	Speaker  *dialog.Speaker
	Position scenario.Position

	movementEnabled bool
}

var _ dialog.MovementLock = (*PC)(nil)

// NewPC builds the player from its spec. speaker may be nil when the player
// never talks.
func NewPC(spec *scenario.Player, speaker *dialog.Speaker) (*PC, error) {
	if spec == nil {
		return nil, fmt.Errorf("spec cannot be nil")
	}
	if spec.MaxHP <= 0 {
		return nil, fmt.Errorf("player max_hp must be positive, got %d", spec.MaxHP)
	}

	ac := spec.AC
	if ac <= 0 {
		ac = defaultAC
	}
	attrs := make(map[string]int, len(spec.Attributes))
	maps.Copy(attrs, spec.Attributes)

	name := spec.Name
	if name == "" {
		name = scenario.PlayerSpeakerID
	}
	a, err := d20.NewActor(name).
		WithHP(spec.MaxHP).
		WithAC(ac).
		WithAttributes(attrs).
		Build()
	if err != nil {
		return nil, fmt.Errorf("failed to build actor: %w", err)
	}

	return &PC{
		Spec:            spec,
		Actor:           a,
		Speaker:         speaker,
		Position:        spec.Start,
		movementEnabled: true,
	}, nil
}

// SetExternalMovementEnabled implements dialog.MovementLock.
func (pc *PC) SetExternalMovementEnabled(enabled bool) {
	pc.movementEnabled = enabled
}

// CanMove reports whether player input may move the character.
func (pc *PC) CanMove() bool {
	return pc.movementEnabled
}

// Move steps the player by (dx, dy) if movement is enabled and the target
// cell is allowed. It reports whether the player moved.
func (pc *PC) Move(dx, dy int, allowed func(scenario.Position) bool) bool {
	if !pc.movementEnabled || (dx == 0 && dy == 0) {
		return false
	}
	next := scenario.Position{X: pc.Position.X + dx, Y: pc.Position.Y + dy}
	if allowed != nil && !allowed(next) {
		return false
	}
	pc.Position = next
	return true
}

func (pc *PC) HP() int {
	return pc.Actor.HP()
}

func (pc *PC) MaxHP() int {
	return pc.Actor.MaxHP()
}

// Heal restores amount HP, or all of it when amount is zero. It returns the
// new HP.
func (pc *PC) Heal(amount int) (int, error) {
	target := pc.MaxHP()
	if amount > 0 {
		target = min(pc.HP()+amount, pc.MaxHP())
	}
	return pc.setHP(target)
}

// Damage removes amount HP, never going below zero. It returns the new HP.
func (pc *PC) Damage(amount int) (int, error) {
	return pc.setHP(max(pc.HP()-amount, 0))
}

// RestoreHP sets HP from saved state. Zero is a valid saved value since
// Damage can reach it.
func (pc *PC) RestoreHP(hp int) error {
	if hp < 0 || hp > pc.MaxHP() {
		return fmt.Errorf("saved HP %d out of range 0..%d", hp, pc.MaxHP())
	}
	_, err := pc.setHP(hp)
	return err
}

func (pc *PC) setHP(hp int) (int, error) {
	if hp == pc.HP() {
		return hp, nil
	}
	if err := pc.Actor.SetHP(hp); err != nil {
		return pc.HP(), fmt.Errorf("failed to set HP: %w", err)
	}
	return pc.HP(), nil
}
