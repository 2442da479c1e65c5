package dialog

import (
	"errors"
	"fmt"
)

// Sound is an opaque handle to a one-shot audio clip.
type Sound string

// TextSurface receives the current partial or full sentence for a speaker.
type TextSurface interface {
	SetText(text string)
}

// BubbleToggle shows or hides a speaker's speech bubble.
type BubbleToggle interface {
	SetVisible(visible bool)
}

// AnimationSink fires a named animation trigger on a speaker.
type AnimationSink interface {
	SetTrigger(name string)
}

// AudioSink plays fire-and-forget sounds.
type AudioSink interface {
	PlayOneShot(sound Sound)
}

// MovementLock lets the coordinator freeze player movement during a session.
type MovementLock interface {
	SetExternalMovementEnabled(enabled bool)
}

var (
	ErrNilSpeaker     = errors.New("speaker is nil")
	ErrNoTextSurface  = errors.New("speaker is missing a text surface")
	ErrNoBubble       = errors.New("speaker is missing a bubble toggle")
	ErrSpeakerRemoved = errors.New("speaker has been removed from the scene")
)

// Speaker is a character that can show a line of dialog. Speakers are owned by
// the surrounding scene; the Coordinator only borrows them for a session.
type Speaker struct {
	ID       string
	Name     string
	Text     TextSurface
	Bubble   BubbleToggle
	Animator AnimationSink // optional

	removed    bool
	interacted bool
}

// NewSpeaker creates a speaker bound to its surfaces.
func NewSpeaker(id, name string, text TextSurface, bubble BubbleToggle, animator AnimationSink) *Speaker {
	return &Speaker{
		ID:       id,
		Name:     name,
		Text:     text,
		Bubble:   bubble,
		Animator: animator,
	}
}

// Validate reports why the speaker cannot be used to display dialog.
func (s *Speaker) Validate() error {
	if s == nil {
		return ErrNilSpeaker
	}
	if s.removed {
		return fmt.Errorf("%w: %s", ErrSpeakerRemoved, s.ID)
	}
	if s.Bubble == nil {
		return fmt.Errorf("%w: %s", ErrNoBubble, s.ID)
	}
	if s.Text == nil {
		return fmt.Errorf("%w: %s", ErrNoTextSurface, s.ID)
	}
	return nil
}

// Remove marks the speaker as gone from the scene. Lines that reference it are
// skipped from then on.
func (s *Speaker) Remove() {
	s.removed = true
}

// Removed reports whether Remove has been called.
func (s *Speaker) Removed() bool {
	return s.removed
}

// SetBubbleVisible toggles the bubble if one is attached.
func (s *Speaker) SetBubbleVisible(visible bool) {
	if s == nil || s.Bubble == nil {
		return
	}
	s.Bubble.SetVisible(visible)
}

// HasInteracted reports whether a session started by this speaker has ended.
func (s *Speaker) HasInteracted() bool {
	return s.interacted
}

// MarkInteracted records a completed interaction. It returns true only the
// first time.
func (s *Speaker) MarkInteracted() bool {
	if s.interacted {
		return false
	}
	s.interacted = true
	return true
}

func (s *Speaker) String() string {
	if s == nil {
		return "<nil>"
	}
	if s.Name != "" {
		return s.Name
	}
	return s.ID
}
