package dialog

import (
	"fmt"
	"io"
	"log/slog"
	"strings"
)

// recorder captures every side effect the coordinator produces, in order.
type recorder struct {
	events []string
}

func (r *recorder) add(format string, args ...any) {
	r.events = append(r.events, fmt.Sprintf(format, args...))
}

func (r *recorder) filter(prefixes ...string) []string {
	var out []string
	for _, e := range r.events {
		for _, p := range prefixes {
			if strings.HasPrefix(e, p) {
				out = append(out, e)
				break
			}
		}
	}
	return out
}

type fakeSurface struct {
	id   string
	rec  *recorder
	text string
	sets int
}

func (f *fakeSurface) SetText(text string) {
	f.text = text
	f.sets++
}

type fakeBubble struct {
	id      string
	rec     *recorder
	visible bool
}

func (f *fakeBubble) SetVisible(visible bool) {
	f.visible = visible
	if visible {
		f.rec.add("show(%s)", f.id)
	} else {
		f.rec.add("hide(%s)", f.id)
	}
}

type fakeAnimator struct {
	id  string
	rec *recorder
}

func (f *fakeAnimator) SetTrigger(name string) {
	f.rec.add("anim(%s,%s)", f.id, name)
}

type fakeAudio struct {
	rec *recorder
}

func (f *fakeAudio) PlayOneShot(sound Sound) {
	f.rec.add("sound(%s)", sound)
}

type fakeMovement struct {
	rec     *recorder
	enabled bool
}

func (f *fakeMovement) SetExternalMovementEnabled(enabled bool) {
	f.enabled = enabled
	f.rec.add("movement(%t)", enabled)
}

type fakeListener struct {
	rec *recorder
}

func (f *fakeListener) SessionStarted(s Session) {
	f.rec.add("started(%s)", s.Mode)
}

func (f *fakeListener) LineStarted(s Session, line Line) {
	f.rec.add("line(%s,%s)", line.Speaker.ID, line.Sentence)
}

func (f *fakeListener) SessionEnded(s Session) {
	f.rec.add("ended(%s)", s.Mode)
}

func newTestSpeaker(rec *recorder, id string, withAnimator bool) (*Speaker, *fakeSurface, *fakeBubble) {
	surface := &fakeSurface{id: id, rec: rec}
	bubble := &fakeBubble{id: id, rec: rec}
	var anim AnimationSink
	if withAnimator {
		anim = &fakeAnimator{id: id, rec: rec}
	}
	return NewSpeaker(id, id, surface, bubble, anim), surface, bubble
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{Level: slog.LevelError}))
}

type harness struct {
	rec      *recorder
	movement *fakeMovement
	audio    *fakeAudio
	coord    *Coordinator
}

func newHarness(opts Options) *harness {
	rec := &recorder{}
	h := &harness{
		rec:      rec,
		movement: &fakeMovement{rec: rec, enabled: true},
		audio:    &fakeAudio{rec: rec},
	}
	h.coord = NewCoordinator(h.movement, h.audio, opts, testLogger())
	h.coord.AddListener(&fakeListener{rec: rec})
	return h
}

// finishTyping pumps ticks until the current reveal completes.
func (h *harness) finishTyping() {
	for i := 0; i < 10000 && h.coord.IsTyping(); i++ {
		h.coord.Tick(DefaultTypingSpeed)
	}
}
