package game

import (
	"github.com/jwebster45206/dialog-engine/pkg/scenario"
)

// apply runs dialog side effects against the game state. source names the
// NPC or line speaker that fired them, for logging.
func (w *World) apply(source string, effects []scenario.Effect) {
	for _, e := range effects {
		if w.applyOne(e) {
			w.dirty = true
			w.log.Info("Effect applied", "source", source, "effect", e.String())
		}
	}
}

// applyOne reports whether the effect changed anything.
func (w *World) applyOne(e scenario.Effect) bool {
	gs := w.State
	switch e.Type {
	case scenario.EffectSetFlag:
		if gs.Flag(e.Key) {
			return false
		}
		gs.SetFlag(e.Key, true)
		return true
	case scenario.EffectClearFlag:
		if !gs.Flag(e.Key) {
			return false
		}
		gs.SetFlag(e.Key, false)
		return true
	case scenario.EffectGiveItem:
		return gs.AddItem(e.Key)
	case scenario.EffectTakeItem:
		return gs.RemoveItem(e.Key)
	case scenario.EffectHeal:
		return w.setHP(w.Player.Heal(e.Amount))
	case scenario.EffectDamage:
		return w.setHP(w.Player.Damage(e.Amount))
	case scenario.EffectRemoveNPC:
		npc, ok := w.NPCs[e.Key]
		if !ok || npc.Speaker.Removed() {
			return false
		}
		npc.Speaker.Remove()
		npc.Speaker.SetBubbleVisible(false)
		npc.UpdateProximity(w.Player.Position)
		gs.MarkRemoved(e.Key)
		return true
	default:
		w.log.Warn("Unknown effect type", "effect", e.String())
		return false
	}
}

func (w *World) setHP(hp int, err error) bool {
	if err != nil {
		w.log.Error("Failed to change player HP", "error", err)
		return false
	}
	if hp == w.State.HP {
		return false
	}
	w.State.HP = hp
	return true
}
