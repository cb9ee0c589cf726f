// Package tui is the interactive terminal front-end: a chat transcript with
// slash commands, learning-mode shortcuts, and the Vision Tutor voice overlay.
package tui

import (
	"context"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"edumentor/internal/app"
	"edumentor/internal/session"
	"edumentor/internal/tui/ui"
	"edumentor/internal/voice"
)

type stateMsg session.State

type voiceMsg voice.Snapshot

type workDoneMsg struct {
	output string
	err    error
	quit   bool
	clear  bool
}

type studyModel struct {
	ctx    context.Context
	app    *app.App
	states <-chan session.State

	state session.State
	voice voice.Snapshot

	viewport  viewport.Model
	textInput textinput.Model
	spinner   spinner.Model

	banner     []string
	visionLog  []string
	hiddenMsgs int // messages appended before the last /clear

	isLoading bool
	ready     bool
	width     int
	height    int
	showHelp  bool
	selCursor int
}

// Run starts the interactive session and blocks until the user quits.
func Run(ctx context.Context, a *app.App) error {
	states := make(chan session.State, 32)
	a.Store.Subscribe(func(st session.State) {
		for {
			select {
			case states <- st:
				return
			default:
			}
			select {
			case <-states:
			default:
			}
		}
	})

	p := tea.NewProgram(initialModel(ctx, a, states), tea.WithAltScreen())
	_, err := p.Run()
	return err
}

func initialModel(ctx context.Context, a *app.App, states <-chan session.State) studyModel {
	ti := textinput.New()
	ti.Placeholder = "Ask a question or type /help..."
	ti.Focus()
	ti.CharLimit = 1000
	ti.Width = 80

	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = lipgloss.NewStyle().Foreground(ui.ClrBrand)

	st := a.Store.Snapshot()
	banner := welcomeBanner(a.Cfg.Backend.URL, st)

	return studyModel{
		ctx:       ctx,
		app:       a,
		states:    states,
		state:     st,
		voice:     a.Pipeline.Snapshot(),
		textInput: ti,
		spinner:   s,
		banner:    banner,
	}
}

func welcomeBanner(backendURL string, st session.State) []string {
	lines := []string{
		ui.Info("Connected to", backendURL),
	}
	if st.HasDocuments() {
		lines = append(lines, ui.Dim("Your documents from last time are still here. /docs lists them."))
	} else {
		lines = append(lines, ui.Dim("Upload study material with /upload <file>... to get started."))
	}
	lines = append(lines, ui.Dim("Pick a learning mode with /mode, or press ctrl+v for the Vision Tutor."))
	return lines
}

func (m studyModel) Init() tea.Cmd {
	return tea.Batch(textinput.Blink, m.spinner.Tick, m.waitStateCmd(), m.waitVoiceCmd())
}

func (m studyModel) waitStateCmd() tea.Cmd {
	return func() tea.Msg {
		return stateMsg(<-m.states)
	}
}

func (m studyModel) waitVoiceCmd() tea.Cmd {
	updates := m.app.Pipeline.Updates()
	return func() tea.Msg {
		return voiceMsg(<-updates)
	}
}

func (m studyModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var (
		tiCmd tea.Cmd
		vpCmd tea.Cmd
		spCmd tea.Cmd
	)

	m.textInput, tiCmd = m.textInput.Update(msg)
	m.spinner, spCmd = m.spinner.Update(msg)

	switch msg := msg.(type) {
	case tea.KeyMsg:
		next, keyCmd := m.handleKey(msg)
		return next, tea.Batch(tiCmd, keyCmd)

	case tea.WindowSizeMsg:
		m.applyWindowSize(msg.Width, msg.Height)

	case stateMsg:
		m.state = session.State(msg)
		m.clampSelCursor()
		m.refreshTranscript()
		return m, m.waitStateCmd()

	case voiceMsg:
		m.applyVoiceUpdate(voice.Snapshot(msg))
		m.refreshTranscript()
		return m, m.waitVoiceCmd()

	case workDoneMsg:
		m.isLoading = false
		if msg.quit {
			return m, tea.Quit
		}
		if msg.clear {
			m.hiddenMsgs = len(m.state.Messages)
			m.visionLog = nil
			m.refreshTranscript()
			return m, nil
		}
		if msg.err != nil {
			m.visionLog = append(m.visionLog, ui.Errorf("%v", msg.err))
		} else if msg.output != "" {
			m.visionLog = append(m.visionLog, msg.output)
		}
		m.refreshTranscript()
		return m, nil
	}

	m.viewport, vpCmd = m.viewport.Update(msg)
	return m, tea.Batch(tiCmd, vpCmd, spCmd)
}

func (m studyModel) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.state.ShowSelector {
		return m.handleSelectorKey(msg)
	}

	if msg.String() == "ctrl+k" {
		m.showHelp = !m.showHelp
		m.applyWindowSize(m.width, m.height)
		return m, nil
	}
	if m.showHelp {
		switch msg.String() {
		case "esc", "q", "ctrl+k":
			m.showHelp = false
			m.applyWindowSize(m.width, m.height)
		}
		return m, nil
	}

	if msg.String() == "ctrl+v" {
		m.app.ToggleVision()
		return m, nil
	}

	if m.state.VisionActive {
		switch msg.Type {
		case tea.KeyCtrlC:
			return m, tea.Quit
		case tea.KeyEsc:
			m.app.CloseVision()
			return m, nil
		case tea.KeyEnter:
			m.app.Pipeline.Toggle(m.ctx)
			return m, nil
		}
		return m, nil
	}

	switch msg.Type {
	case tea.KeyCtrlC, tea.KeyEsc:
		return m, tea.Quit
	case tea.KeyEnter:
		if m.isLoading {
			return m, nil
		}
		input := strings.TrimSpace(m.textInput.Value())
		if input == "" {
			return m, nil
		}
		m.textInput.SetValue("")
		m.isLoading = true
		return m, tea.Batch(m.processInputCmd(input), m.spinner.Tick)
	}
	return m, nil
}

func (m studyModel) handleSelectorKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	docs := m.state.Documents
	switch msg.String() {
	case "up", "k":
		m.selCursor--
		if m.selCursor < 0 {
			m.selCursor = len(docs) - 1
		}
	case "down", "j":
		m.selCursor++
		if m.selCursor >= len(docs) {
			m.selCursor = 0
		}
	case " ":
		if m.selCursor >= 0 && m.selCursor < len(docs) {
			m.app.Store.ToggleSelected(docs[m.selCursor].ID)
		}
	case "enter":
		m.app.Store.SetShowSelector(false)
	case "esc", "q", "ctrl+c":
		m.app.Store.SetShowSelector(false)
	}
	return m, nil
}

// applyVoiceUpdate folds pipeline updates into the vision log. Lines are
// keyed off value changes rather than phase pairs because the updates
// channel drops stale snapshots under load.
func (m *studyModel) applyVoiceUpdate(next voice.Snapshot) {
	prev := m.voice
	m.voice = next

	if next.Transcript != "" && next.Transcript != prev.Transcript {
		m.visionLog = append(m.visionLog, ui.Dim("you said: ")+next.Transcript)
	}
	if next.Answer != "" && prev.Answer != next.Answer {
		m.visionLog = append(m.visionLog, ui.Brand.Render("tutor: ")+next.Answer)
	}
	if next.Err != "" && prev.Err != next.Err {
		m.visionLog = append(m.visionLog, ui.Error(next.Err))
	}
}

func (m *studyModel) clampSelCursor() {
	if m.selCursor >= len(m.state.Documents) {
		m.selCursor = len(m.state.Documents) - 1
	}
	if m.selCursor < 0 {
		m.selCursor = 0
	}
}

func (m *studyModel) refreshTranscript() {
	if !m.ready {
		return
	}
	m.viewport.SetContent(m.transcript())
	m.viewport.GotoBottom()
}

func (m *studyModel) applyWindowSize(width, height int) {
	if width <= 0 || height <= 0 {
		return
	}

	m.width = width
	m.height = height

	vpWidth := maxInt(width-2, 1)
	m.textInput.Width = maxInt(width-16, 1)

	reservedHeight := 2 // input/status row + hint row
	if m.showHelp {
		reservedHeight += lipgloss.Height(m.renderHelpBlock(width, height)) + 1
	}
	vpHeight := maxInt(height-reservedHeight, 1)

	if !m.ready {
		m.viewport = viewport.New(vpWidth, vpHeight)
		m.ready = true
		m.refreshTranscript()
		return
	}

	m.viewport.Width = vpWidth
	m.viewport.Height = vpHeight
	m.refreshTranscript()
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}
