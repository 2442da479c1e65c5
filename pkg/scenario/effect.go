package scenario

import "fmt"

// EffectType names a game-state side effect fired by dialog.
type EffectType string

const (
	EffectSetFlag   EffectType = "set_flag"   // Key = flag
	EffectClearFlag EffectType = "clear_flag" // Key = flag
	EffectGiveItem  EffectType = "give_item"  // Key = item
	EffectTakeItem  EffectType = "take_item"  // Key = item
	EffectHeal      EffectType = "heal"       // Amount = HP, 0 heals fully
	EffectDamage    EffectType = "damage"     // Amount = HP
	EffectRemoveNPC EffectType = "remove_npc" // Key = NPC ID
)

// Effect is a side effect attached to a line start or a dialog completion.
type Effect struct {
	Type   EffectType `json:"type" yaml:"type"`
	Key    string     `json:"key,omitempty" yaml:"key,omitempty"`
	Amount int        `json:"amount,omitempty" yaml:"amount,omitempty"`
}

func (e Effect) String() string {
	switch e.Type {
	case EffectHeal, EffectDamage:
		return fmt.Sprintf("%s(%d)", e.Type, e.Amount)
	default:
		return fmt.Sprintf("%s(%s)", e.Type, e.Key)
	}
}

// validate checks the effect's shape. npcs is used to resolve remove_npc.
func (e Effect) validate(npcs map[string]NPC) error {
	switch e.Type {
	case EffectSetFlag, EffectClearFlag, EffectGiveItem, EffectTakeItem:
		if e.Key == "" {
			return fmt.Errorf("effect %s requires a key", e.Type)
		}
	case EffectHeal:
		if e.Amount < 0 {
			return fmt.Errorf("effect %s amount must not be negative", e.Type)
		}
	case EffectDamage:
		if e.Amount <= 0 {
			return fmt.Errorf("effect %s amount must be positive", e.Type)
		}
	case EffectRemoveNPC:
		if _, ok := npcs[e.Key]; !ok {
			return fmt.Errorf("effect %s references unknown NPC %q", e.Type, e.Key)
		}
	default:
		return fmt.Errorf("unknown effect type %q", e.Type)
	}
	return nil
}
