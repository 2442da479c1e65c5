package dialog

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
)

// Mode is the coordinator's session state.
type Mode int

const (
	ModeInactive Mode = iota
	ModeSingleSpeaker
	ModeConversation
)

func (m Mode) String() string {
	switch m {
	case ModeInactive:
		return "inactive"
	case ModeSingleSpeaker:
		return "single_speaker"
	case ModeConversation:
		return "conversation"
	default:
		return fmt.Sprintf("mode(%d)", int(m))
	}
}

// Session describes the active (or just ended) dialog session.
type Session struct {
	ID      uuid.UUID
	Mode    Mode
	Starter *Speaker
}

// Listener observes session lifecycle. Listeners run synchronously on the
// game loop in registration order.
type Listener interface {
	SessionStarted(s Session)
	LineStarted(s Session, line Line)
	SessionEnded(s Session)
}

// Options configures a Coordinator.
type Options struct {
	TypingSpeed   time.Duration // per-character delay, DefaultTypingSpeed when zero
	TypingSound   Sound         // played for each non-space character
	CompleteSound Sound         // played when a reveal is skipped
}

// Coordinator is the single authority over whether a dialog is active. It owns
// the session state; everything else only calls its public methods.
type Coordinator struct {
	movement  MovementLock
	audio     AudioSink
	log       *slog.Logger
	typer     *Typewriter
	speed     time.Duration
	listeners []Listener

	mode        Mode
	sessionID   uuid.UUID
	queue       []Line
	starter     *Speaker
	lastSpeaker *Speaker
	onComplete  func()
}

// NewCoordinator creates an inactive coordinator. movement and audio may be nil.
func NewCoordinator(movement MovementLock, audio AudioSink, opts Options, log *slog.Logger) *Coordinator {
	if log == nil {
		log = slog.Default()
	}
	speed := opts.TypingSpeed
	if speed <= 0 {
		speed = DefaultTypingSpeed
	}

	c := &Coordinator{
		movement: movement,
		audio:    audio,
		log:      log,
		typer:    NewTypewriter(audio, opts.TypingSound, opts.CompleteSound),
		speed:    speed,
	}
	c.typer.OnFinish = func() {
		c.log.Debug("Line revealed", "session_id", c.sessionID, "remaining", len(c.queue))
	}
	return c
}

// AddListener registers a session observer.
func (c *Coordinator) AddListener(l Listener) {
	c.listeners = append(c.listeners, l)
}

// StartSingleSpeaker begins a monologue. It returns false without changing
// any state if a session is active, the speaker is invalid, or there are no
// sentences.
func (c *Coordinator) StartSingleSpeaker(sentences []string, speaker *Speaker, onComplete func()) bool {
	if c.IsActive() {
		c.log.Debug("Dialog already active, rejecting monologue", "session_id", c.sessionID)
		return false
	}
	if len(sentences) == 0 {
		c.log.Warn("Monologue has no sentences", "speaker", speaker.String())
		return false
	}
	if err := speaker.Validate(); err != nil {
		c.log.Error("Cannot start monologue", "error", err)
		return false
	}

	c.begin(ModeSingleSpeaker, speaker, Monologue(speaker, sentences), onComplete)
	return true
}

// StartConversation begins a multi-speaker sequence. Invalid lines are
// dropped; if none remain the request is rejected and no session starts.
func (c *Coordinator) StartConversation(lines []Line, starter *Speaker, onComplete func()) bool {
	if c.IsActive() {
		c.log.Debug("Dialog already active, rejecting conversation", "session_id", c.sessionID)
		return false
	}
	if starter == nil {
		c.log.Error("Cannot start conversation without a starter")
		return false
	}

	valid := FilterValid(lines, c.log)
	if len(valid) == 0 {
		c.log.Warn("Conversation has no valid lines", "starter", starter.ID, "lines", len(lines))
		return false
	}

	c.begin(ModeConversation, starter, valid, onComplete)
	return true
}

// AdvanceOrSkip handles the single advance input. While a line is being
// revealed it completes the reveal; otherwise it shows the next line or ends
// the session.
func (c *Coordinator) AdvanceOrSkip() {
	if !c.IsActive() {
		return
	}
	if c.typer.SkipToEnd() {
		return
	}
	c.displayNext()
}

// Tick pumps the typewriter.
func (c *Coordinator) Tick(dt time.Duration) {
	if !c.IsActive() {
		return
	}
	c.typer.Tick(dt)
}

// End finishes the session. Only the first call while active has an effect.
func (c *Coordinator) End() {
	if !c.IsActive() {
		return
	}
	c.typer.Cancel()

	session := c.Session()
	last := c.lastSpeaker
	onComplete := c.onComplete
	c.reset()

	last.SetBubbleVisible(false)
	c.setMovement(true)
	if session.Starter != nil && session.Starter.MarkInteracted() {
		c.log.Debug("Speaker marked as interacted", "speaker", session.Starter.ID)
	}

	c.log.Info("Dialog ended", "session_id", session.ID, "mode", session.Mode.String())
	for _, l := range c.listeners {
		c.invoke("listener session ended", func() { l.SessionEnded(session) })
	}
	if onComplete != nil {
		c.invoke("completion callback", onComplete)
	}
}

// IsActive reports whether a session is running.
func (c *Coordinator) IsActive() bool {
	return c.mode != ModeInactive
}

// Mode returns the current session mode.
func (c *Coordinator) Mode() Mode {
	return c.mode
}

// IsTyping reports whether the current line is still being revealed.
func (c *Coordinator) IsTyping() bool {
	return c.typer.IsTyping()
}

// Pending returns the number of lines still queued after the current one.
func (c *Coordinator) Pending() int {
	return len(c.queue)
}

// Session returns a snapshot of the current session.
func (c *Coordinator) Session() Session {
	return Session{ID: c.sessionID, Mode: c.mode, Starter: c.starter}
}

// CurrentSpeaker returns the speaker of the line on screen, if any.
func (c *Coordinator) CurrentSpeaker() *Speaker {
	return c.lastSpeaker
}

// CurrentSentence returns the full text of the line on screen.
func (c *Coordinator) CurrentSentence() string {
	if !c.IsActive() {
		return ""
	}
	return c.typer.Text()
}

func (c *Coordinator) begin(mode Mode, starter *Speaker, lines []Line, onComplete func()) {
	c.typer.Cancel()

	c.mode = mode
	c.sessionID = uuid.New()
	c.starter = starter
	c.lastSpeaker = nil
	c.onComplete = onComplete
	c.queue = lines

	c.setMovement(false)

	session := c.Session()
	c.log.Info("Dialog started",
		"session_id", session.ID,
		"mode", mode.String(),
		"starter", starter.ID,
		"lines", len(lines))
	for _, l := range c.listeners {
		c.invoke("listener session started", func() { l.SessionStarted(session) })
	}

	c.displayNext()
}

// displayNext dequeues until a displayable line is found or the queue runs out.
func (c *Coordinator) displayNext() {
	c.typer.Cancel()

	for c.IsActive() {
		if len(c.queue) == 0 {
			c.End()
			return
		}
		line := c.queue[0]
		c.queue = c.queue[1:]

		if err := line.Speaker.Validate(); err != nil {
			c.log.Error("Speaker unusable at display time", "error", err, "mode", c.mode.String())
			if c.mode == ModeConversation {
				continue
			}
			c.End()
			return
		}

		c.display(line)
		return
	}
}

func (c *Coordinator) display(line Line) {
	speaker := line.Speaker

	if line.OnStart != nil {
		c.invoke("line start callback", line.OnStart)
		if !c.IsActive() {
			return
		}
	}

	if c.lastSpeaker != speaker {
		c.lastSpeaker.SetBubbleVisible(false)
		speaker.SetBubbleVisible(true)
		c.lastSpeaker = speaker
	}

	if line.AnimationTrigger != "" {
		if speaker.Animator != nil {
			speaker.Animator.SetTrigger(line.AnimationTrigger)
		} else {
			c.log.Warn("Speaker has no animator for trigger",
				"speaker", speaker.ID,
				"trigger", line.AnimationTrigger)
		}
	}

	if line.Sound != "" && c.audio != nil {
		c.audio.PlayOneShot(line.Sound)
	}

	session := c.Session()
	for _, l := range c.listeners {
		c.invoke("listener line started", func() { l.LineStarted(session, line) })
	}
	if !c.IsActive() {
		return
	}

	c.typer.Begin(line.Sentence, speaker.Text, c.speed)
}

func (c *Coordinator) reset() {
	c.mode = ModeInactive
	c.sessionID = uuid.Nil
	c.queue = nil
	c.starter = nil
	c.lastSpeaker = nil
	c.onComplete = nil
}

func (c *Coordinator) setMovement(enabled bool) {
	if c.movement == nil {
		c.log.Warn("No movement lock configured", "enabled", enabled)
		return
	}
	c.movement.SetExternalMovementEnabled(enabled)
}

// invoke runs a caller-supplied callback, containing any panic so a broken
// callback cannot wedge the session.
func (c *Coordinator) invoke(what string, fn func()) {
	defer func() {
		if r := recover(); r != nil {
			c.log.Error("Recovered from panic in dialog callback", "callback", what, "panic", r)
		}
	}()
	fn()
}
