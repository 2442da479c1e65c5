package dialog

import (
	"fmt"
	"log/slog"
)

// Line is one unit of conversation.
type Line struct {
	Speaker          *Speaker
	Sentence         string // empty is a silent beat
	AnimationTrigger string // optional
	Sound            Sound  // optional
	OnStart          func() // optional, runs before anything else is shown
}

// Validate checks that the line can be displayed. Only the speaker matters;
// an empty sentence is allowed.
func (l Line) Validate() error {
	if err := l.Speaker.Validate(); err != nil {
		return fmt.Errorf("invalid dialog line: %w", err)
	}
	return nil
}

// FilterValid returns the displayable lines of a conversation in their
// original order. Dropped lines are logged, as are lines that will display
// with reduced effects.
func FilterValid(lines []Line, log *slog.Logger) []Line {
	valid := make([]Line, 0, len(lines))
	for i, line := range lines {
		if err := line.Validate(); err != nil {
			log.Warn("Dropping dialog line", "index", i, "error", err)
			continue
		}
		if line.Sentence == "" {
			log.Debug("Dialog line has an empty sentence", "index", i, "speaker", line.Speaker.ID)
		}
		if line.AnimationTrigger != "" && line.Speaker.Animator == nil {
			log.Warn("Dialog line has an animation trigger but speaker has no animator",
				"index", i,
				"speaker", line.Speaker.ID,
				"trigger", line.AnimationTrigger)
		}
		valid = append(valid, line)
	}
	return valid
}

// Monologue turns sentences spoken by one speaker into plain lines.
func Monologue(speaker *Speaker, sentences []string) []Line {
	lines := make([]Line, len(sentences))
	for i, s := range sentences {
		lines[i] = Line{Speaker: speaker, Sentence: s}
	}
	return lines
}
