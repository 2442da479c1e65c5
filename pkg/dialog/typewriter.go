package dialog

import (
	"iter"
	"strings"
	"time"
)

// DefaultTypingSpeed is the delay between revealed characters.
const DefaultTypingSpeed = 40 * time.Millisecond

// Frame is one step of a reveal: the rune just appended and the text so far.
type Frame struct {
	Char rune
	Text string
}

// Frames yields the progressively revealed prefixes of text, one rune per
// frame. Stopping the iteration cancels the reveal.
func Frames(text string) iter.Seq[Frame] {
	return func(yield func(Frame) bool) {
		var b strings.Builder
		b.Grow(len(text))
		for _, r := range text {
			b.WriteRune(r)
			if !yield(Frame{Char: r, Text: b.String()}) {
				return
			}
		}
	}
}

// Typewriter reveals a sentence on a surface one rune at a time. It is driven
// by Tick and never blocks; each tick reveals at most one rune.
type Typewriter struct {
	audio         AudioSink
	tickSound     Sound
	completeSound Sound

	surface TextSurface
	full    string
	delay   time.Duration
	wait    time.Duration
	next    func() (Frame, bool)
	stop    func()
	typing  bool

	// OnFinish runs whenever a reveal completes, naturally or by skip.
	OnFinish func()
}

// NewTypewriter creates an idle typewriter. audio may be nil.
func NewTypewriter(audio AudioSink, tickSound, completeSound Sound) *Typewriter {
	return &Typewriter{
		audio:         audio,
		tickSound:     tickSound,
		completeSound: completeSound,
	}
}

// Begin clears the surface and starts revealing text. A reveal already in
// progress is cancelled first.
func (t *Typewriter) Begin(text string, surface TextSurface, delay time.Duration) {
	t.Cancel()

	t.surface = surface
	t.full = text
	t.delay = delay
	t.wait = 0
	t.next, t.stop = iter.Pull(Frames(text))
	t.typing = true

	surface.SetText("")
}

// Tick advances the reveal by dt.
func (t *Typewriter) Tick(dt time.Duration) {
	if !t.typing {
		return
	}
	t.wait -= dt
	if t.wait > 0 {
		return
	}

	frame, ok := t.next()
	if !ok {
		t.release()
		t.finish()
		return
	}
	t.surface.SetText(frame.Text)
	if frame.Char != ' ' {
		t.play(t.tickSound)
	}
	// Carry the overshoot so the total reveal time stays delay per rune
	// whatever the tick length.
	t.wait += t.delay
}

// SkipToEnd cancels the reveal and shows the whole sentence. It reports
// whether a reveal was in progress.
func (t *Typewriter) SkipToEnd() bool {
	if !t.typing {
		return false
	}
	t.release()
	t.surface.SetText(t.full)
	t.play(t.completeSound)
	t.finish()
	return true
}

// Cancel stops the reveal without touching the surface or signalling
// completion.
func (t *Typewriter) Cancel() {
	t.release()
	t.typing = false
}

// IsTyping reports whether a reveal is in progress.
func (t *Typewriter) IsTyping() bool {
	return t.typing
}

// Text returns the full sentence of the current or last reveal.
func (t *Typewriter) Text() string {
	return t.full
}

// Duration is the natural reveal time of text at the given delay.
func Duration(text string, delay time.Duration) time.Duration {
	return time.Duration(len([]rune(text))) * delay
}

func (t *Typewriter) release() {
	if t.stop != nil {
		t.stop()
	}
	t.next, t.stop = nil, nil
}

func (t *Typewriter) finish() {
	t.typing = false
	if t.OnFinish != nil {
		t.OnFinish()
	}
}

func (t *Typewriter) play(sound Sound) {
	if sound == "" || t.audio == nil {
		return
	}
	t.audio.PlayOneShot(sound)
}
