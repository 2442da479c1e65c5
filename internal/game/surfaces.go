package game

import (
	"log/slog"

	"github.com/jwebster45206/dialog-engine/pkg/dialog"
)

// Bubble is a character's speech bubble. It is both the text surface and the
// visibility toggle the dialog engine writes to; front ends read it back.
type Bubble struct {
	text    string
	visible bool
}

var (
	_ dialog.TextSurface  = (*Bubble)(nil)
	_ dialog.BubbleToggle = (*Bubble)(nil)
)

func (b *Bubble) SetText(text string)     { b.text = text }
func (b *Bubble) SetVisible(visible bool) { b.visible = visible }

func (b *Bubble) Text() string  { return b.text }
func (b *Bubble) Visible() bool { return b.visible }

// Animator records the last animation trigger fired on a character.
type Animator struct {
	trigger string
	fired   int
}

var _ dialog.AnimationSink = (*Animator)(nil)

func (a *Animator) SetTrigger(name string) {
	a.trigger = name
	a.fired++
}

// Trigger returns the most recent trigger and how many have fired in total.
func (a *Animator) Trigger() (string, int) {
	return a.trigger, a.fired
}

// SoundBoard is the audio sink. Playback belongs to the front end, so it only
// remembers what was asked for.
type SoundBoard struct {
	last   dialog.Sound
	played int
	log    *slog.Logger
}

var _ dialog.AudioSink = (*SoundBoard)(nil)

func NewSoundBoard(log *slog.Logger) *SoundBoard {
	return &SoundBoard{log: log}
}

func (s *SoundBoard) PlayOneShot(sound dialog.Sound) {
	s.last = sound
	s.played++
	s.log.Debug("Sound played", "sound", sound)
}

// Last returns the most recent sound and the total number played.
func (s *SoundBoard) Last() (dialog.Sound, int) {
	return s.last, s.played
}
