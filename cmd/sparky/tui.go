package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/reflow/wordwrap"

	engine "github.com/robinjove/Sparky-AI-Companion-Robot/core"
	"github.com/robinjove/Sparky-AI-Companion-Robot/core/live"
)

type stateMsg struct {
	state engine.InteractionState
}

type moodMsg struct {
	mood engine.Mood
}

type volumeMsg struct {
	level float64
}

type transcriptMsg struct {
	role    live.Role
	text    string
	partial bool
}

type errorMsg struct {
	report engine.ErrorReport
}

// wakeOptions bridges engine callbacks into bubbletea messages.
func wakeOptions(program *tea.Program) []engine.WakeOption {
	return []engine.WakeOption{
		engine.OnStateChanged(func(_, to engine.InteractionState) {
			program.Send(stateMsg{state: to})
		}),
		engine.OnMoodChanged(func(mood engine.Mood) {
			program.Send(moodMsg{mood: mood})
		}),
		engine.OnVolume(func(level float64) {
			program.Send(volumeMsg{level: level})
		}),
		engine.OnPartialTranscript(func(role live.Role, segment string) {
			program.Send(transcriptMsg{role: role, text: segment, partial: true})
		}),
		engine.OnTranscriptEntry(func(role live.Role, text string) {
			program.Send(transcriptMsg{role: role, text: text})
		}),
		engine.OnError(func(report engine.ErrorReport) {
			program.Send(errorMsg{report: report})
		}),
	}
}

var (
	faceStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			Padding(1, 4).
			Align(lipgloss.Center)
	statusStyle    = lipgloss.NewStyle().Faint(true)
	userStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("12")).Bold(true)
	robotStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("11")).Bold(true)
	partialStyle   = lipgloss.NewStyle().Faint(true).Italic(true)
	errStyle       = lipgloss.NewStyle().Foreground(lipgloss.Color("9")).Bold(true)
	volumeOnStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
	volumeOffStyle = lipgloss.NewStyle().Faint(true)
)

var moodFaces = map[engine.Mood]string{
	engine.MoodNeutral: "( • ᴗ • )",
	engine.MoodHappy:   "( ^ ᴗ ^ )",
	engine.MoodCurious: "( • ᴗ • )?",
	engine.MoodAlert:   "( ⊙ _ ⊙ )",
	engine.MoodExcited: "( ☆ ᴗ ☆ )",
	engine.MoodSad:     "( • ︵ • )",
	engine.MoodSleepy:  "( - ᴗ - ) zZ",
}

type transcriptLine struct {
	role live.Role
	text string
}

type tuiModel struct {
	companion *engine.Engine

	state   engine.InteractionState
	mood    engine.Mood
	volume  float64
	failure *engine.ErrorReport

	transcript []transcriptLine
	partial    map[live.Role]string

	viewport viewport.Model
	input    textinput.Model
	width    int
	height   int
	ready    bool
}

func newTUIModel(companion *engine.Engine) tuiModel {
	input := textinput.New()
	input.Placeholder = "Type to Sparky, Enter to send"
	input.CharLimit = 500
	input.Focus()

	return tuiModel{
		companion: companion,
		state:     engine.StateConnecting,
		mood:      engine.MoodNeutral,
		partial:   map[live.Role]string{},
		input:     input,
	}
}

func (m tuiModel) Init() tea.Cmd {
	return textinput.Blink
}

func (m tuiModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		viewportHeight := msg.Height - 10
		if viewportHeight < 3 {
			viewportHeight = 3
		}
		if !m.ready {
			m.viewport = viewport.New(msg.Width, viewportHeight)
			m.ready = true
		} else {
			m.viewport.Width = msg.Width
			m.viewport.Height = viewportHeight
		}
		m.refreshTranscript()
		return m, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "esc":
			m.companion.Shutdown()
			return m, tea.Quit
		case "ctrl+u":
			m.companion.SetMuted(!m.companion.Muted())
			return m, nil
		case "ctrl+d":
			m.companion.SetDeafened(!m.companion.Deafened())
			return m, nil
		case "ctrl+o":
			m.companion.SetCameraActive(!m.companion.CameraActive())
			return m, nil
		case "ctrl+r":
			if m.state == engine.StateError {
				m.failure = nil
				m.companion.Restart(context.Background())
			}
			return m, nil
		case "enter":
			text := strings.TrimSpace(m.input.Value())
			if text != "" {
				m.companion.SendText(text)
				m.input.Reset()
			}
			return m, nil
		}

	case stateMsg:
		m.state = msg.state
		return m, nil

	case moodMsg:
		m.mood = msg.mood
		return m, nil

	case volumeMsg:
		m.volume = msg.level
		return m, nil

	case transcriptMsg:
		if msg.partial {
			m.partial[msg.role] += msg.text
		} else {
			m.transcript = append(m.transcript, transcriptLine{role: msg.role, text: msg.text})
			delete(m.partial, msg.role)
		}
		m.refreshTranscript()
		return m, nil

	case errorMsg:
		m.failure = &msg.report
		return m, nil
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m *tuiModel) refreshTranscript() {
	if !m.ready {
		return
	}

	width := m.viewport.Width - 2
	if width < 10 {
		width = 10
	}

	var lines []string
	for _, line := range m.transcript {
		lines = append(lines, speakerLabel(line.role)+wordwrap.String(line.text, width))
	}
	for _, role := range []live.Role{live.RoleUser, live.RoleRobot} {
		if partial := m.partial[role]; partial != "" {
			lines = append(lines, speakerLabel(role)+partialStyle.Render(wordwrap.String(partial+"…", width)))
		}
	}

	m.viewport.SetContent(strings.Join(lines, "\n"))
	m.viewport.GotoBottom()
}

func speakerLabel(role live.Role) string {
	if role == live.RoleUser {
		return userStyle.Render("you    ") + " "
	}
	return robotStyle.Render("sparky ") + " "
}

func (m tuiModel) View() string {
	if !m.ready {
		return "starting..."
	}

	face := moodFaces[m.mood]
	if face == "" {
		face = moodFaces[engine.MoodNeutral]
	}

	var sections []string
	sections = append(sections, faceStyle.Render(face))
	sections = append(sections, statusStyle.Render(m.statusLine()))
	sections = append(sections, m.volumeBar())
	if m.failure != nil {
		sections = append(sections, errStyle.Render(
			fmt.Sprintf("error: %s (ctrl+r to retry)", m.failure.Message)))
	}
	sections = append(sections, m.viewport.View())
	sections = append(sections, m.input.View())
	sections = append(sections, statusStyle.Render(
		"ctrl+u mute · ctrl+d deafen · ctrl+o camera · esc quit"))

	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

func (m tuiModel) statusLine() string {
	var flags []string
	if m.companion.Muted() {
		flags = append(flags, "muted")
	}
	if m.companion.Deafened() {
		flags = append(flags, "deafened")
	}
	if m.companion.CameraActive() {
		flags = append(flags, "camera")
	}
	status := strings.ToLower(string(m.state))
	if len(flags) > 0 {
		status += "  [" + strings.Join(flags, " ") + "]"
	}
	return status
}

func (m tuiModel) volumeBar() string {
	const width = 24
	filled := int(m.volume * width)
	if filled > width {
		filled = width
	}
	return volumeOnStyle.Render(strings.Repeat("█", filled)) +
		volumeOffStyle.Render(strings.Repeat("░", width-filled))
}
