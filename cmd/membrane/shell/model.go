package shell

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/glamour"
	"github.com/google/uuid"

	"github.com/EchoCog/r9c/cmd/membrane/ui"
	"github.com/EchoCog/r9c/internal/config"
	"github.com/EchoCog/r9c/internal/logging"
)

// Message is one entry in the shell transcript.
type Message struct {
	Role    string // "user", "assistant", or "error"
	Content string
	Time    time.Time
}

// Model is the bubbletea model for the interactive membrane shell. All
// command semantics live in the Runner; the model only renders and routes
// keystrokes.
type Model struct {
	textinput textinput.Model
	viewport  viewport.Model
	styles    ui.Styles
	renderer  *glamour.TermRenderer

	runner *Runner

	history      []Message
	inputHistory []string
	historyIndex int
	historyLimit int

	sessionID string
	width     int
	height    int
	ready     bool
	quitting  bool
}

// NewModel builds the shell model over a runner, themed per config.
func NewModel(runner *Runner, cfg *config.Config) Model {
	styles := ui.NewStyles(ui.ThemeByName(cfg.Shell.Theme))

	ti := textinput.New()
	ti.Placeholder = "Type a command... (help for the reference, Ctrl+C to exit)"
	ti.Focus()
	ti.Prompt = "| "
	ti.CharLimit = 512
	ti.Width = 80
	ti.PromptStyle = styles.Prompt
	ti.TextStyle = styles.UserInput

	vp := viewport.New(80, 20)
	vp.SetContent("")

	var renderer *glamour.TermRenderer
	if styles.Theme.IsDark {
		renderer, _ = glamour.NewTermRenderer(
			glamour.WithAutoStyle(),
			glamour.WithWordWrap(80),
		)
	} else {
		renderer, _ = glamour.NewTermRenderer(
			glamour.WithStylePath("light"),
			glamour.WithWordWrap(80),
		)
	}

	sessionID := uuid.New().String()[:8]
	logging.Shell("session %s started", sessionID)

	m := Model{
		textinput:    ti,
		viewport:     vp,
		styles:       styles,
		renderer:     renderer,
		runner:       runner,
		historyLimit: cfg.Shell.HistoryLimit,
		historyIndex: -1,
		sessionID:    sessionID,
	}
	m.history = append(m.history, Message{
		Role:    "assistant",
		Content: fmt.Sprintf("Session `%s`. Type `help` for the command reference.", sessionID),
		Time:    time.Now(),
	})
	return m
}

// Init starts the cursor blink.
func (m Model) Init() tea.Cmd {
	return textinput.Blink
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var (
		tiCmd tea.Cmd
		vpCmd tea.Cmd
	)

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.textinput.Width = msg.Width - 6
		m.viewport.Width = msg.Width
		m.viewport.Height = msg.Height - 7
		if m.viewport.Height < 3 {
			m.viewport.Height = 3
		}
		if !m.ready {
			m.ready = true
		}
		m.viewport.SetContent(m.renderHistory())
		m.viewport.GotoBottom()
		return m, nil

	case tea.KeyMsg:
		switch msg.Type {
		case tea.KeyCtrlC:
			logging.Shell("session %s quit", m.sessionID)
			return m, tea.Quit

		case tea.KeyEnter:
			m = m.submit()
			if m.quitting {
				logging.Shell("session %s quit", m.sessionID)
				return m, tea.Quit
			}
			return m, nil

		case tea.KeyUp:
			m = m.recallHistory(-1)
			return m, nil

		case tea.KeyDown:
			m = m.recallHistory(1)
			return m, nil

		case tea.KeyPgUp, tea.KeyPgDown:
			m.viewport, vpCmd = m.viewport.Update(msg)
			return m, vpCmd
		}
	}

	m.textinput, tiCmd = m.textinput.Update(msg)
	m.viewport, vpCmd = m.viewport.Update(msg)
	return m, tea.Batch(tiCmd, vpCmd)
}

// submit executes the current input line through the runner.
func (m Model) submit() Model {
	input := strings.TrimSpace(m.textinput.Value())
	if input == "" {
		m.textinput.Reset()
		return m
	}

	m.history = append(m.history, Message{Role: "user", Content: input, Time: time.Now()})
	m.inputHistory = append(m.inputHistory, input)
	if m.historyLimit > 0 && len(m.inputHistory) > m.historyLimit {
		m.inputHistory = m.inputHistory[len(m.inputHistory)-m.historyLimit:]
	}
	m.historyIndex = -1

	res, err := m.runner.Execute(input)
	switch {
	case err != nil:
		m.history = append(m.history, Message{Role: "error", Content: err.Error(), Time: time.Now()})
	case res.Quit:
		m.quitting = true
	case res.Output != "":
		m.history = append(m.history, Message{Role: "assistant", Content: res.Output, Time: time.Now()})
	}

	m.viewport.SetContent(m.renderHistory())
	m.viewport.GotoBottom()
	m.textinput.Reset()
	return m
}

// recallHistory steps through previous inputs. dir is -1 for older,
// +1 for newer; stepping past the newest restores an empty line.
func (m Model) recallHistory(dir int) Model {
	if len(m.inputHistory) == 0 {
		return m
	}

	switch {
	case m.historyIndex == -1 && dir == -1:
		m.historyIndex = len(m.inputHistory) - 1
	case m.historyIndex == -1:
		return m
	default:
		m.historyIndex += dir
	}

	if m.historyIndex < 0 {
		m.historyIndex = 0
	}
	if m.historyIndex >= len(m.inputHistory) {
		m.historyIndex = -1
		m.textinput.SetValue("")
		return m
	}

	m.textinput.SetValue(m.inputHistory[m.historyIndex])
	m.textinput.CursorEnd()
	return m
}

// Run starts the interactive shell and blocks until it exits.
func Run(runner *Runner, cfg *config.Config) error {
	p := tea.NewProgram(NewModel(runner, cfg), tea.WithAltScreen())
	_, err := p.Run()
	return err
}
