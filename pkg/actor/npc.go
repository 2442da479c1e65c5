package actor

import (
	"log/slog"

	"github.com/jwebster45206/dialog-engine/pkg/dialog"
	"github.com/jwebster45206/dialog-engine/pkg/scenario"
)

// DialogStarter is the part of the dialog coordinator an NPC needs.
type DialogStarter interface {
	IsActive() bool
	StartSingleSpeaker(sentences []string, speaker *dialog.Speaker, onComplete func()) bool
	StartConversation(lines []dialog.Line, starter *dialog.Speaker, onComplete func()) bool
}

// LineResolver turns a scenario line into a playable dialog line.
type LineResolver func(line scenario.Line) dialog.Line

// NPC is a non-player character placed in the world
type NPC struct {
	ID      string
	Spec    *scenario.NPC
	Speaker *dialog.Speaker

	inRange bool
	log     *slog.Logger
}

func NewNPC(id string, spec *scenario.NPC, speaker *dialog.Speaker, log *slog.Logger) *NPC {
	return &NPC{
		ID:      id,
		Spec:    spec,
		Speaker: speaker,
		log:     log,
	}
}

// UpdateProximity recomputes whether the player stands in the NPC's trigger
// zone. It reports whether that changed.
func (n *NPC) UpdateProximity(player scenario.Position) bool {
	in := !n.Speaker.Removed() && n.Spec.Position.Within(player, n.Spec.Radius)
	changed := in != n.inRange
	n.inRange = in
	return changed
}

// InRange reports whether the player is in the trigger zone.
func (n *NPC) InRange() bool {
	return n.inRange
}

// CanInteract reports whether an interact press would reach this NPC.
func (n *NPC) CanInteract(d DialogStarter) bool {
	return n.inRange && !n.Speaker.Removed() && !d.IsActive()
}

// CurrentDialog returns the dialog the next interaction will play and
// whether it is the subsequent one.
func (n *NPC) CurrentDialog() (scenario.Dialog, bool) {
	if n.Spec.Subsequent != nil && n.Speaker.HasInteracted() {
		return *n.Spec.Subsequent, true
	}
	return n.Spec.First, false
}

// Interact starts the NPC's current dialog. It reports whether a session
// started.
func (n *NPC) Interact(d DialogStarter, resolve LineResolver, onComplete func()) bool {
	if !n.CanInteract(d) {
		return false
	}

	dlg, subsequent := n.CurrentDialog()
	which := "first"
	if subsequent {
		which = "subsequent"
	}
	if dlg.IsEmpty() {
		n.log.Warn("NPC has no dialog to start", "npc", n.ID, "dialog", which)
		return false
	}

	n.log.Debug("NPC interaction", "npc", n.ID, "dialog", which, "conversation", dlg.IsConversation())
	if !dlg.IsConversation() {
		return d.StartSingleSpeaker(dlg.Sentences, n.Speaker, onComplete)
	}

	lines := make([]dialog.Line, len(dlg.Lines))
	for i, l := range dlg.Lines {
		lines[i] = resolve(l)
	}
	return d.StartConversation(lines, n.Speaker, onComplete)
}
