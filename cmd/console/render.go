package main

import (
	"fmt"
	"maps"
	"slices"
	"strings"
	"unicode"

	"github.com/charmbracelet/lipgloss"
	"github.com/jwebster45206/dialog-engine/internal/game"
	"github.com/jwebster45206/dialog-engine/pkg/dialog"
	"github.com/muesli/reflow/wordwrap"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

var (
	titleStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("205")). // pink
			Bold(true)

	speakerStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("212")). // purple
			Bold(true)

	playerStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("39")). // teal
			Bold(true)

	npcStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("86")) // green

	npcNearStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("214")). // yellow
			Bold(true)

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("196")) // red

	promptStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("240")) // dark grey

	floorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("237"))

	mapStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("62"))

	bubbleStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("212")).
			Padding(0, 1)

	metaPanelStyle = lipgloss.NewStyle().
			PaddingLeft(2)

	modalStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("62")).
			Padding(1, 2).
			Background(lipgloss.Color("235")).
			Foreground(lipgloss.Color("255"))

	modalTitleStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("205")).
			Bold(true).
			Align(lipgloss.Center)

	modalItemStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("255"))

	modalSelectedItemStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("0")).
				Background(lipgloss.Color("205")).
				Bold(true)
)

var titleCaser = cases.Title(language.English)

// displayName formats a speaker for the dialog box header.
func displayName(s *dialog.Speaker) string {
	if s == nil {
		return ""
	}
	return titleCaser.String(strings.ReplaceAll(s.String(), "_", " "))
}

// npcMarker is the map glyph for an NPC: the first letter of its name.
func npcMarker(name string) string {
	for _, r := range name {
		if unicode.IsLetter(r) {
			return string(unicode.ToUpper(r))
		}
	}
	return "?"
}

func renderMap(w *game.World) string {
	cells := make(map[[2]int]string, len(w.NPCs)+1)
	for _, npc := range w.NPCs {
		if npc.Speaker.Removed() {
			continue
		}
		style := npcStyle
		if npc.InRange() {
			style = npcNearStyle
		}
		cells[[2]int{npc.Spec.Position.X, npc.Spec.Position.Y}] = style.Render(npcMarker(npc.Spec.Name))
	}
	cells[[2]int{w.Player.Position.X, w.Player.Position.Y}] = playerStyle.Render("@")

	floor := floorStyle.Render("·")
	var b strings.Builder
	for y := range w.Scenario.Height {
		if y > 0 {
			b.WriteByte('\n')
		}
		for x := range w.Scenario.Width {
			if cell, ok := cells[[2]int{x, y}]; ok {
				b.WriteString(cell)
			} else {
				b.WriteString(floor)
			}
		}
	}
	return mapStyle.Render(b.String())
}

// renderDialog draws the active speech bubble, or a hint when the player
// can talk to someone.
func renderDialog(w *game.World, width int) string {
	coord := w.Coordinator
	if !coord.IsActive() {
		if npc := w.Nearby(); npc != nil {
			return promptStyle.Render(fmt.Sprintf("Press e to talk to %s", npc.Spec.Name))
		}
		return ""
	}

	speaker := coord.CurrentSpeaker()
	if speaker == nil {
		return ""
	}
	var text string
	if bubble, ok := w.Bubbles[speaker.ID]; ok && bubble.Visible() {
		text = bubble.Text()
	}

	indicator := ""
	if !coord.IsTyping() {
		indicator = " ■"
		if coord.Pending() > 0 {
			indicator = " ▼"
		}
	}

	inner := max(width-4, 10)
	body := speakerStyle.Render(displayName(speaker)) + "\n" +
		wordwrap.String(text, inner) + promptStyle.Render(indicator)
	return bubbleStyle.Width(inner).Render(body)
}

func renderMetadata(w *game.World) string {
	gs := w.State
	var content strings.Builder
	content.WriteString(titleStyle.Render("GAME STATE") + "\n\n")

	content.WriteString("Game ID:\n")
	content.WriteString(gs.ID.String()[:8] + "...\n\n")

	content.WriteString("Scenario:\n")
	content.WriteString(w.Scenario.Name + "\n\n")

	content.WriteString(fmt.Sprintf("HP: %d/%d\n", w.Player.HP(), w.Player.MaxHP()))
	content.WriteString(fmt.Sprintf("Position: %d,%d\n", w.Player.Position.X, w.Player.Position.Y))
	content.WriteString(fmt.Sprintf("Dialogs: %d\n\n", gs.Sessions))

	if len(gs.Inventory) > 0 {
		content.WriteString("Inventory:\n")
		for _, item := range gs.Inventory {
			content.WriteString(fmt.Sprintf("• %s\n", item))
		}
	} else {
		content.WriteString("Inventory:\nEmpty\n")
	}
	content.WriteString("\n")

	content.WriteString("Flags:\n")
	for _, k := range slices.Sorted(maps.Keys(gs.Flags)) {
		mark := "✗"
		if gs.Flags[k] {
			mark = "✓"
		}
		content.WriteString(fmt.Sprintf("%s %s\n", mark, k))
	}

	if sound, n := w.Sound.Last(); n > 0 {
		content.WriteString(promptStyle.Render(fmt.Sprintf("\n♪ %s", sound)))
	}
	return content.String()
}
