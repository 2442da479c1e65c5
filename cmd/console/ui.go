package main

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"strings"
	"time"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/google/uuid"
	"github.com/jwebster45206/dialog-engine/internal/game"
	"github.com/jwebster45206/dialog-engine/pkg/storage"
)

// ConsoleUI is the BubbleTea model that runs the game.
// https://github.com/charmbracelet/bubbletea
type ConsoleUI struct {
	ctx      context.Context
	store    storage.Storage
	opts     game.Options
	attach   func(*game.World) // optional, called once a world is opened
	log      *slog.Logger
	tickRate time.Duration

	preferred  string    // scenario file highlighted in the picker
	resumeID   uuid.UUID // saved game opened instead of showing the picker
	resumeFile string

	world   *game.World
	pending game.Input // latched until the next tick
	help    help.Model
	status  string
	err     error
	width   int
	height  int

	// Scenario selection state
	showScenarioModal bool
	scenarios         []string
	scenarioMap       map[string]string
	selectedScenario  int
	loadingScenarios  bool

	// Quit confirmation state
	showQuitModal bool
}

type tickMsg time.Time

type scenariosLoadedMsg struct {
	scenarios   []string
	scenarioMap map[string]string
	err         error
}

type worldOpenedMsg struct {
	world *game.World
	err   error
}

// NewConsoleUI builds the model. The player picks a scenario, with preferred
// highlighted, unless Resume is used.
func NewConsoleUI(ctx context.Context, store storage.Storage, opts game.Options, attach func(*game.World), tickRate time.Duration, preferred string, log *slog.Logger) ConsoleUI {
	return ConsoleUI{
		ctx:               ctx,
		store:             store,
		opts:              opts,
		attach:            attach,
		log:               log,
		tickRate:          tickRate,
		preferred:         preferred,
		help:              help.New(),
		showScenarioModal: true,
		loadingScenarios:  true,
	}
}

// Resume opens a saved game on start instead of showing the picker.
func (m ConsoleUI) Resume(filename string, gameID uuid.UUID) ConsoleUI {
	m.resumeFile = filename
	m.resumeID = gameID
	m.loadingScenarios = false
	return m
}

func (m ConsoleUI) Init() tea.Cmd {
	if m.resumeID != uuid.Nil {
		return m.openWorld(m.resumeFile, m.resumeID)
	}
	return m.loadScenarios()
}

func (m ConsoleUI) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	// Handle quit modal first
	if m.showQuitModal {
		return m.updateQuitModal(msg)
	}

	// Handle scenario modal second
	if m.showScenarioModal {
		return m.updateScenarioModal(msg)
	}

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width

	case tickMsg:
		in := m.pending
		m.pending = game.Input{}
		if err := m.world.Step(m.ctx, m.tickRate, in); err != nil {
			m.log.Error("Failed to step world", "error", err)
			m.err = err
		} else {
			m.err = nil
		}
		return m, m.tick()

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, keys.Quit):
			m.showQuitModal = true
		case key.Matches(msg, keys.Up):
			m.pending.DX, m.pending.DY = 0, -1
		case key.Matches(msg, keys.Down):
			m.pending.DX, m.pending.DY = 0, 1
		case key.Matches(msg, keys.Left):
			m.pending.DX, m.pending.DY = -1, 0
		case key.Matches(msg, keys.Right):
			m.pending.DX, m.pending.DY = 1, 0
		case key.Matches(msg, keys.Interact):
			m.pending.Interact = true
		case key.Matches(msg, keys.Advance):
			m.pending.Advance = true
		case key.Matches(msg, keys.Copy):
			m.copyCurrentLine()
		case key.Matches(msg, keys.Help):
			m.help.ShowAll = !m.help.ShowAll
		}
	}

	return m, nil
}

func (m *ConsoleUI) copyCurrentLine() {
	line := m.world.Coordinator.CurrentSentence()
	if line == "" {
		m.status = "Nothing to copy"
		return
	}
	if err := clipboard.WriteAll(line); err != nil {
		m.log.Warn("Failed to copy to clipboard", "error", err)
		m.status = "Clipboard unavailable"
		return
	}
	m.status = "Copied line to clipboard"
}

func (m ConsoleUI) tick() tea.Cmd {
	return tea.Tick(m.tickRate, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

func (m ConsoleUI) loadScenarios() tea.Cmd {
	return func() tea.Msg {
		scenarioMap, err := m.store.ListScenarios(m.ctx)
		if err != nil {
			return scenariosLoadedMsg{err: err}
		}
		names := make([]string, 0, len(scenarioMap))
		for name := range scenarioMap {
			names = append(names, name)
		}
		slices.Sort(names)
		if len(names) == 0 {
			return scenariosLoadedMsg{err: fmt.Errorf("no scenarios found")}
		}
		return scenariosLoadedMsg{scenarios: names, scenarioMap: scenarioMap}
	}
}

func (m ConsoleUI) openWorld(filename string, gameID uuid.UUID) tea.Cmd {
	return func() tea.Msg {
		w, err := game.Open(m.ctx, m.store, filename, gameID, m.opts, m.log)
		if err != nil {
			return worldOpenedMsg{err: err}
		}
		if m.attach != nil {
			m.attach(w)
		}
		return worldOpenedMsg{world: w}
	}
}

// preselect highlights filename in the scenario picker once it loads.
func (m ConsoleUI) preselect(filename string) ConsoleUI {
	for i, name := range m.scenarios {
		if m.scenarioMap[name] == filename {
			m.selectedScenario = i
		}
	}
	return m
}

func (m ConsoleUI) updateScenarioModal(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width

	case scenariosLoadedMsg:
		m.loadingScenarios = false
		if msg.err != nil {
			m.err = msg.err
		} else {
			m.scenarios = msg.scenarios
			m.scenarioMap = msg.scenarioMap
			m = m.preselect(m.preferred)
		}

	case worldOpenedMsg:
		if msg.err != nil {
			m.err = msg.err
			return m, nil
		}
		m.world = msg.world
		m.showScenarioModal = false
		m.log.Info("Game opened", "game_id", m.world.State.ID, "scenario", m.world.Scenario.FileName)
		return m, m.tick()

	case tea.KeyMsg:
		if msg.Type == tea.KeyCtrlC {
			return m, tea.Quit
		}
		if m.loadingScenarios || m.err != nil {
			if msg.Type == tea.KeyEsc {
				return m, tea.Quit
			}
			return m, nil
		}

		switch msg.Type {
		case tea.KeyEsc:
			m.showQuitModal = true
		case tea.KeyUp:
			if m.selectedScenario > 0 {
				m.selectedScenario--
			}
		case tea.KeyDown:
			if m.selectedScenario < len(m.scenarios)-1 {
				m.selectedScenario++
			}
		case tea.KeyEnter:
			if len(m.scenarios) > 0 {
				name := m.scenarios[m.selectedScenario]
				return m, m.openWorld(m.scenarioMap[name], uuid.Nil)
			}
		}
	}

	return m, nil
}

func (m ConsoleUI) updateQuitModal(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height

	case tea.KeyMsg:
		switch msg.Type {
		case tea.KeyCtrlC, tea.KeyEnter:
			return m, tea.Quit
		default:
			switch msg.String() {
			case "y", "Y", "q":
				return m, tea.Quit
			case "n", "N", "esc":
				m.showQuitModal = false
			}
		}

	case tickMsg:
		// the world is paused while the modal is open
		return m, m.tick()
	}

	return m, nil
}

func (m ConsoleUI) renderQuitModal() string {
	var content strings.Builder
	content.WriteString(modalTitleStyle.Render("Quit Game?"))
	content.WriteString("\n\n")
	content.WriteString("Are you sure you want to quit your adventure?")
	content.WriteString("\n\n")
	content.WriteString(promptStyle.Render("Press Y to quit, N to continue, or Ctrl+C to force quit"))

	modal := modalStyle.Width(50).Render(content.String())
	return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, modal, lipgloss.WithWhitespaceChars(" "))
}

func (m ConsoleUI) renderScenarioModal() string {
	var content strings.Builder

	switch {
	case m.err != nil:
		content.WriteString(modalTitleStyle.Render("Error"))
		content.WriteString("\n\n")
		content.WriteString(errorStyle.Render(fmt.Sprintf("Failed to start game: %v", m.err)))
		content.WriteString("\n\n")
		content.WriteString("Press Esc to exit")
	case m.loadingScenarios:
		content.WriteString(modalTitleStyle.Render("Loading Scenarios..."))
	default:
		content.WriteString(modalTitleStyle.Render("Select a Scenario"))
		content.WriteString("\n\n")

		for i, name := range m.scenarios {
			if i == m.selectedScenario {
				content.WriteString(modalSelectedItemStyle.Render(fmt.Sprintf("▶ %s", name)))
			} else {
				content.WriteString(modalItemStyle.Render(fmt.Sprintf("  %s", name)))
			}
			content.WriteString("\n")
		}

		content.WriteString("\n")
		content.WriteString(promptStyle.Render("Use ↑/↓ to navigate, Enter to select, Esc to exit"))
	}

	modal := modalStyle.Width(60).Render(content.String())
	return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, modal, lipgloss.WithWhitespaceChars(" "))
}

func (m ConsoleUI) View() string {
	if m.width == 0 || m.height == 0 {
		return "\n  Initializing..."
	}
	if m.showQuitModal {
		return m.renderQuitModal()
	}
	if m.showScenarioModal {
		return m.renderScenarioModal()
	}

	board := renderMap(m.world)
	boardWidth := lipgloss.Width(board)
	left := lipgloss.JoinVertical(lipgloss.Left,
		titleStyle.Render(strings.ToUpper(m.world.Scenario.Name)),
		board,
		renderDialog(m.world, boardWidth),
	)
	right := metaPanelStyle.Render(renderMetadata(m.world))

	footer := m.help.View(keys)
	switch {
	case m.err != nil:
		footer = errorStyle.Render(m.err.Error()) + "\n" + footer
	case m.status != "":
		footer = promptStyle.Render(m.status) + "\n" + footer
	}

	return lipgloss.JoinVertical(lipgloss.Left,
		lipgloss.JoinHorizontal(lipgloss.Top, left, right),
		"",
		footer,
	)
}
