package game

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/jwebster45206/dialog-engine/pkg/actor"
	"github.com/jwebster45206/dialog-engine/pkg/dialog"
	"github.com/jwebster45206/dialog-engine/pkg/scenario"
	"github.com/jwebster45206/dialog-engine/pkg/state"
	"github.com/jwebster45206/dialog-engine/pkg/storage"
)

// StateNotifier is told about every saved game state.
type StateNotifier interface {
	PublishGameStateUpdated(ctx context.Context, sessions int, flags map[string]bool) error
}

// Options configures a World.
type Options struct {
	TypingSpeed time.Duration // used when the scenario does not set one
	Notifier    StateNotifier // optional
}

// Input is the player's input latched for a single tick.
type Input struct {
	Advance  bool // advance or skip the current dialog
	Interact bool // talk to the nearest NPC in range
	DX, DY   int
}

// World wires a scenario, its game state and the dialog coordinator
// together and advances them one tick at a time.
type World struct {
	Scenario    *scenario.Scenario
	State       *state.GameState
	Coordinator *dialog.Coordinator
	Player      *actor.PC
	NPCs        map[string]*actor.NPC
	Bubbles     map[string]*Bubble   // by speaker ID, mute NPCs have none
	Animators   map[string]*Animator // by speaker ID, animated NPCs only
	Sound       *SoundBoard

	order    []string // NPC IDs, sorted
	store    storage.Storage
	notifier StateNotifier
	log      *slog.Logger
	dirty    bool
}

var _ dialog.Listener = (*World)(nil)

// New builds a world for s. When gs is nil a fresh game state is created.
// store may be nil to disable persistence.
func New(s *scenario.Scenario, gs *state.GameState, store storage.Storage, opts Options, log *slog.Logger) (*World, error) {
	if s == nil {
		return nil, fmt.Errorf("scenario cannot be nil")
	}
	if err := s.Validate(); err != nil {
		return nil, fmt.Errorf("invalid scenario %s: %w", s.FileName, err)
	}
	if gs == nil {
		gs = state.NewGameState(s)
	} else if gs.Scenario != s.FileName {
		return nil, fmt.Errorf("game state %s belongs to scenario %q, not %q", gs.ID, gs.Scenario, s.FileName)
	}
	if log == nil {
		log = slog.Default()
	}
	log = log.With("game_id", gs.ID.String())

	w := &World{
		Scenario:  s,
		State:     gs,
		NPCs:      make(map[string]*actor.NPC, len(s.NPCs)),
		Bubbles:   make(map[string]*Bubble, len(s.NPCs)+1),
		Animators: make(map[string]*Animator),
		Sound:     NewSoundBoard(log),
		order:     s.NPCIDs(),
		store:     store,
		notifier:  opts.Notifier,
		log:       log,
	}

	playerBubble := &Bubble{}
	w.Bubbles[scenario.PlayerSpeakerID] = playerBubble
	playerSpeaker := dialog.NewSpeaker(scenario.PlayerSpeakerID, s.Player.Name, playerBubble, playerBubble, nil)

	pc, err := actor.NewPC(&s.Player, playerSpeaker)
	if err != nil {
		return nil, fmt.Errorf("failed to create player: %w", err)
	}
	w.Player = pc

	for _, id := range w.order {
		spec := s.NPCs[id]
		w.NPCs[id] = actor.NewNPC(id, &spec, w.newNPCSpeaker(id, spec), log)
	}

	w.Coordinator = dialog.NewCoordinator(pc, w.Sound, dialog.Options{
		TypingSpeed:   s.TypingSpeed(opts.TypingSpeed),
		TypingSound:   dialog.Sound(s.TypingSound),
		CompleteSound: dialog.Sound(s.CompleteSound),
	}, log)
	w.Coordinator.AddListener(w)

	w.restore()
	w.updateProximity()
	return w, nil
}

// Open loads a scenario from store and resumes gameID when it is set and
// found. A missing game state starts a new game.
func Open(ctx context.Context, store storage.Storage, filename string, gameID uuid.UUID, opts Options, log *slog.Logger) (*World, error) {
	if log == nil {
		log = slog.Default()
	}
	s, err := store.GetScenario(ctx, filename)
	if err != nil {
		return nil, fmt.Errorf("failed to load scenario: %w", err)
	}

	var gs *state.GameState
	if gameID != uuid.Nil {
		gs, err = store.LoadGameState(ctx, gameID)
		if err != nil {
			return nil, fmt.Errorf("failed to load game state: %w", err)
		}
		if gs == nil {
			log.Warn("Game state not found, starting a new game", "game_id", gameID)
		}
	}

	return New(s, gs, store, opts, log)
}

// AddListener registers an additional dialog session observer.
func (w *World) AddListener(l dialog.Listener) {
	w.Coordinator.AddListener(l)
}

// SetNotifier replaces the state notifier. nil disables notification.
func (w *World) SetNotifier(n StateNotifier) {
	w.notifier = n
}

// Step advances the world by one tick. Movement is applied first, then at
// most one dialog input, then the typewriter is pumped. Pending changes are
// saved at the end; a failed save is returned and retried next tick.
func (w *World) Step(ctx context.Context, dt time.Duration, in Input) error {
	if (in.DX != 0 || in.DY != 0) && w.Player.Move(in.DX, in.DY, w.walkable) {
		w.State.Player = w.Player.Position
		w.dirty = true
	}
	w.updateProximity()

	switch {
	case in.Interact && !w.Coordinator.IsActive():
		if npc := w.Nearby(); npc != nil {
			w.interact(npc)
		}
	case in.Advance && w.Coordinator.IsActive():
		w.Coordinator.AdvanceOrSkip()
	}

	w.Coordinator.Tick(dt)

	if w.dirty {
		return w.Save(ctx)
	}
	return nil
}

// Nearby returns the closest NPC the player could talk to, or nil.
func (w *World) Nearby() *actor.NPC {
	var best *actor.NPC
	bestDist := 0
	for _, id := range w.order {
		npc := w.NPCs[id]
		if !npc.CanInteract(w.Coordinator) {
			continue
		}
		dx, dy := npc.Spec.Position.X-w.Player.Position.X, npc.Spec.Position.Y-w.Player.Position.Y
		if d := dx*dx + dy*dy; best == nil || d < bestDist {
			best, bestDist = npc, d
		}
	}
	return best
}

// Save persists the game state. It is a no-op without storage.
func (w *World) Save(ctx context.Context) error {
	w.State.Player = w.Player.Position
	w.State.HP = w.Player.HP()
	if w.store == nil {
		w.dirty = false
		return nil
	}

	if err := w.store.SaveGameState(ctx, w.State.ID, w.State); err != nil {
		return fmt.Errorf("failed to save game state: %w", err)
	}
	w.dirty = false

	if w.notifier != nil {
		if err := w.notifier.PublishGameStateUpdated(ctx, w.State.Sessions, w.State.Flags); err != nil {
			w.log.Warn("Failed to publish game state update", "error", err)
		}
	}
	return nil
}

// SessionStarted implements dialog.Listener.
func (w *World) SessionStarted(s dialog.Session) {
	w.log.Debug("Dialog session started", "session_id", s.ID, "mode", s.Mode, "starter", s.Starter)
}

// LineStarted implements dialog.Listener.
func (w *World) LineStarted(dialog.Session, dialog.Line) {}

// SessionEnded implements dialog.Listener.
func (w *World) SessionEnded(s dialog.Session) {
	if s.Starter != nil {
		if _, ok := w.NPCs[s.Starter.ID]; ok {
			w.State.MarkInteracted(s.Starter.ID)
		}
	}
	w.State.Sessions++
	w.dirty = true
}

func (w *World) interact(npc *actor.NPC) {
	effects := npc.Spec.OnComplete
	onComplete := func() {
		w.apply(npc.ID, effects)
	}
	if !npc.Interact(w.Coordinator, w.resolve, onComplete) {
		w.log.Debug("Interaction did not start a dialog", "npc", npc.ID)
	}
}

// resolve turns a scenario line into a dialog line. Unknown speakers resolve
// to nil and are dropped by the coordinator.
func (w *World) resolve(l scenario.Line) dialog.Line {
	line := dialog.Line{
		Speaker:          w.speaker(l.Speaker),
		Sentence:         l.Text,
		AnimationTrigger: l.Animation,
		Sound:            dialog.Sound(l.Sound),
	}
	if len(l.OnStart) > 0 {
		effects := l.OnStart
		source := l.Speaker
		line.OnStart = func() { w.apply(source, effects) }
	}
	return line
}

func (w *World) speaker(id string) *dialog.Speaker {
	if id == scenario.PlayerSpeakerID {
		return w.Player.Speaker
	}
	if npc, ok := w.NPCs[id]; ok {
		return npc.Speaker
	}
	return nil
}

func (w *World) newNPCSpeaker(id string, spec scenario.NPC) *dialog.Speaker {
	var animator dialog.AnimationSink
	if spec.Animated {
		a := &Animator{}
		w.Animators[id] = a
		animator = a
	}
	if spec.Mute {
		return dialog.NewSpeaker(id, spec.Name, nil, nil, animator)
	}
	b := &Bubble{}
	w.Bubbles[id] = b
	return dialog.NewSpeaker(id, spec.Name, b, b, animator)
}

// restore applies saved progress to the freshly built actors.
func (w *World) restore() {
	gs := w.State
	for id := range gs.Interacted {
		if npc, ok := w.NPCs[id]; ok {
			npc.Speaker.MarkInteracted()
		}
	}
	for id := range gs.Removed {
		if npc, ok := w.NPCs[id]; ok {
			npc.Speaker.Remove()
		}
	}

	if w.Scenario.InBounds(gs.Player) {
		w.Player.Position = gs.Player
	} else {
		w.log.Warn("Saved player position out of bounds, using start", "x", gs.Player.X, "y", gs.Player.Y)
		gs.Player = w.Player.Position
	}

	if gs.HP != w.Player.MaxHP() {
		if err := w.Player.RestoreHP(gs.HP); err != nil {
			w.log.Warn("Could not restore player HP", "error", err)
			gs.HP = w.Player.HP()
		}
	}
}

func (w *World) updateProximity() {
	for _, id := range w.order {
		npc := w.NPCs[id]
		if npc.UpdateProximity(w.Player.Position) {
			w.log.Debug("NPC proximity changed", "npc", id, "in_range", npc.InRange())
		}
	}
}

// walkable reports whether the player may step onto p.
func (w *World) walkable(p scenario.Position) bool {
	if !w.Scenario.InBounds(p) {
		return false
	}
	for _, npc := range w.NPCs {
		if !npc.Speaker.Removed() && npc.Spec.Position == p {
			return false
		}
	}
	return true
}
