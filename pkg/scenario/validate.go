package scenario

import (
	"errors"
	"fmt"
	"regexp"
	"sort"
)

var validIDRegex = regexp.MustCompile(`^[a-z][a-z0-9_]*[a-z0-9]$|^[a-z]$`)

// IsValidID reports whether id is lowercase snake_case.
func IsValidID(id string) bool {
	return validIDRegex.MatchString(id)
}

// Validate returns every structural problem in the scenario joined into one
// error, or nil.
func (s *Scenario) Validate() error {
	var errs []error
	add := func(format string, args ...any) {
		errs = append(errs, fmt.Errorf(format, args...))
	}

	if s.Name == "" {
		add("scenario name is required")
	}
	if s.Width <= 0 || s.Height <= 0 {
		add("map size must be positive, got %dx%d", s.Width, s.Height)
	}
	if s.TypingSpeedMS < 0 {
		add("typing_speed_ms must not be negative")
	}

	if s.Player.MaxHP <= 0 {
		add("player max_hp must be positive")
	}
	if !s.InBounds(s.Player.Start) {
		add("player start %v is outside the map", s.Player.Start)
	}

	for key := range s.Flags {
		if !IsValidID(key) {
			add("flag %q should be lowercase snake_case", key)
		}
	}

	for _, id := range s.NPCIDs() {
		npc := s.NPCs[id]
		if id == PlayerSpeakerID {
			add("NPC ID %q is reserved", id)
		} else if !IsValidID(id) {
			add("NPC ID %q should be lowercase snake_case", id)
		}
		if npc.Name == "" {
			add("NPC %s: name is required", id)
		}
		if !s.InBounds(npc.Position) {
			add("NPC %s: position %v is outside the map", id, npc.Position)
		}
		if npc.Radius <= 0 {
			add("NPC %s: radius must be positive", id)
		}

		errs = append(errs, s.validateDialog(id, "first", npc.First)...)
		if npc.Subsequent != nil {
			errs = append(errs, s.validateDialog(id, "subsequent", *npc.Subsequent)...)
		}
		for i, e := range npc.OnComplete {
			if err := e.validate(s.NPCs); err != nil {
				add("NPC %s: on_complete[%d]: %w", id, i, err)
			}
		}
	}

	return errors.Join(errs...)
}

func (s *Scenario) validateDialog(npcID, which string, d Dialog) []error {
	var errs []error
	if len(d.Sentences) > 0 && len(d.Lines) > 0 {
		errs = append(errs, fmt.Errorf("NPC %s: %s dialog has both sentences and lines", npcID, which))
	}
	for i, line := range d.Lines {
		if !s.knownSpeaker(line.Speaker) {
			errs = append(errs, fmt.Errorf("NPC %s: %s line %d: unknown speaker %q", npcID, which, i, line.Speaker))
		}
		for j, e := range line.OnStart {
			if err := e.validate(s.NPCs); err != nil {
				errs = append(errs, fmt.Errorf("NPC %s: %s line %d: on_start[%d]: %w", npcID, which, i, j, err))
			}
		}
	}
	return errs
}

// Lint returns non-fatal findings: content that will load but may not play
// the way the author expects.
func (s *Scenario) Lint() []string {
	var warnings []string
	for _, id := range s.NPCIDs() {
		npc := s.NPCs[id]
		if npc.First.IsEmpty() {
			warnings = append(warnings, fmt.Sprintf("NPC %s: first dialog is empty", id))
		}
		if npc.Subsequent != nil && npc.Subsequent.IsEmpty() {
			warnings = append(warnings, fmt.Sprintf("NPC %s: subsequent dialog is empty", id))
		}
		if npc.Mute {
			warnings = append(warnings, fmt.Sprintf("NPC %s: has no speech bubble, its lines will be dropped", id))
		}
		dialogs := []Dialog{npc.First}
		if npc.Subsequent != nil {
			dialogs = append(dialogs, *npc.Subsequent)
		}
		for _, d := range dialogs {
			for i, line := range d.Lines {
				if line.Text == "" {
					warnings = append(warnings, fmt.Sprintf("NPC %s: line %d is an empty beat", id, i))
				}
				if line.Animation != "" && !s.animated(line.Speaker) {
					warnings = append(warnings, fmt.Sprintf("NPC %s: line %d animation %q on a speaker without an animator", id, i, line.Animation))
				}
			}
		}
	}
	return warnings
}

// NPCIDs returns the NPC IDs in a stable order.
func (s *Scenario) NPCIDs() []string {
	ids := make([]string, 0, len(s.NPCs))
	for id := range s.NPCs {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

func (s *Scenario) knownSpeaker(id string) bool {
	if id == PlayerSpeakerID {
		return true
	}
	_, ok := s.NPCs[id]
	return ok
}

func (s *Scenario) animated(speaker string) bool {
	npc, ok := s.NPCs[speaker]
	return ok && npc.Animated
}
