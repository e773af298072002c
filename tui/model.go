package tui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/hupe1980/notomate/core"
)

// Mode selects what answers the user.
type Mode string

const (
	ModeAgent      Mode = "agent"
	ModeSupervisor Mode = "supervisor"
)

// ParseMode validates a mode name.
func ParseMode(s string) (Mode, error) {
	switch m := Mode(strings.ToLower(s)); m {
	case ModeAgent, ModeSupervisor:
		return m, nil
	default:
		return "", fmt.Errorf("unknown mode %q (want agent or supervisor)", s)
	}
}

// Greeting is the first line of every conversation.
const Greeting = "Hi! Ask me anything about your Notion notes."

const (
	userAuthor      = "You"
	assistantAuthor = "NotoMate"
)

type entry struct {
	author string
	text   string
}

type startedMsg struct{ err error }

type deltaMsg struct{ author, delta string }

type workingMsg struct{ author string }

type turnDoneMsg struct {
	output string
	err    error
}

// Model is the bubbletea model of the chat.
type Model struct {
	backend Backend
	mode    Mode

	ctx    context.Context
	cancel context.CancelFunc

	input    textinput.Model
	viewport viewport.Model
	spinner  spinner.Model
	theme    theme

	transcript []entry
	streaming  strings.Builder
	inbound    chan tea.Msg
	busy       bool
	ready      bool
	status     string
	statusErr  bool

	width  int
	height int
}

// New creates the chat model.
func New(ctx context.Context, backend Backend, mode Mode) *Model {
	ctx, cancel := context.WithCancel(ctx)

	input := textinput.New()
	input.Prompt = "❯ "
	input.Placeholder = "Ask about your notes"
	input.CharLimit = 4000
	input.Focus()

	sp := spinner.New()
	sp.Spinner = spinner.Dot

	return &Model{
		backend:    backend,
		mode:       mode,
		ctx:        ctx,
		cancel:     cancel,
		input:      input,
		viewport:   viewport.New(80, 20),
		spinner:    sp,
		theme:      newTheme(),
		transcript: []entry{{author: assistantAuthor, text: Greeting}},
		status:     "starting...",
	}
}

// Run starts the program on the terminal and blocks until the user quits.
func Run(ctx context.Context, backend Backend, mode Mode) error {
	m := New(ctx, backend, mode)
	defer m.cancel()

	_, err := tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(ctx)).Run()

	return err
}

// Init implements tea.Model.
func (m *Model) Init() tea.Cmd {
	backend, ctx := m.backend, m.ctx

	return tea.Batch(
		textinput.Blink,
		m.spinner.Tick,
		func() tea.Msg { return startedMsg{err: backend.Start(ctx)} },
	)
}

// Update implements tea.Model.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.resize()
	case startedMsg:
		if msg.err != nil {
			m.setError(msg.err)
		} else {
			m.ready = true
			m.setStatus(fmt.Sprintf("%s mode · ready", m.mode))
		}
	case deltaMsg:
		if m.mode == ModeAgent {
			m.streaming.WriteString(msg.delta)
		} else if msg.author != "" {
			m.setStatus(msg.author + " is working...")
		}
		cmds = append(cmds, waitMsg(m.inbound))
	case workingMsg:
		m.setStatus(msg.author + " is working...")
		cmds = append(cmds, waitMsg(m.inbound))
	case turnDoneMsg:
		m.busy = false
		m.inbound = nil
		m.streaming.Reset()
		if msg.err != nil {
			m.setError(msg.err)
		} else {
			m.transcript = append(m.transcript, entry{author: assistantAuthor, text: msg.output})
			m.setStatus(fmt.Sprintf("%s mode · ready", m.mode))
		}
	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		cmds = append(cmds, cmd)
	case tea.KeyMsg:
		switch msg.Type {
		case tea.KeyCtrlC, tea.KeyEsc:
			m.cancel()
			return m, tea.Quit
		case tea.KeyEnter:
			if cmd := m.submit(); cmd != nil {
				cmds = append(cmds, cmd)
			}
			m.render()
			return m, tea.Batch(cmds...)
		}
		var cmd tea.Cmd
		m.input, cmd = m.input.Update(msg)
		cmds = append(cmds, cmd)
	default:
		var cmd tea.Cmd
		m.viewport, cmd = m.viewport.Update(msg)
		cmds = append(cmds, cmd)
	}

	m.render()

	return m, tea.Batch(cmds...)
}

// submit starts a turn for the current input.
func (m *Model) submit() tea.Cmd {
	text := strings.TrimSpace(m.input.Value())
	if text == "" || m.busy || !m.ready {
		return nil
	}

	m.input.Reset()
	m.transcript = append(m.transcript, entry{author: userAuthor, text: text})
	m.busy = true
	m.statusErr = false
	m.status = "thinking..."

	m.inbound = make(chan tea.Msg, 64)
	go m.runTurn(text, m.inbound)

	return waitMsg(m.inbound)
}

func (m *Model) runTurn(text string, out chan<- tea.Msg) {
	defer close(out)

	send := func(msg tea.Msg) {
		select {
		case out <- msg:
		case <-m.ctx.Done():
		}
	}

	output, err := m.backend.Send(m.ctx, text, func(ev core.Event) {
		switch {
		case ev.Type == core.EventTypeDelta:
			send(deltaMsg{author: ev.Author, delta: ev.Delta})
		case ev.Type == core.EventTypeMessage && ev.Message != nil && len(ev.Message.FunctionCalls()) > 0:
			send(workingMsg{author: ev.Author})
		}
	})

	send(turnDoneMsg{output: output, err: err})
}

func waitMsg(ch <-chan tea.Msg) tea.Cmd {
	if ch == nil {
		return nil
	}
	return func() tea.Msg {
		msg, ok := <-ch
		if !ok {
			return nil
		}
		return msg
	}
}

func (m *Model) setStatus(s string) {
	m.status = s
	m.statusErr = false
}

func (m *Model) setError(err error) {
	m.status = "error: " + err.Error()
	m.statusErr = true
}

func (m *Model) resize() {
	inputHeight := 3
	headerHeight := 1
	statusHeight := 1

	m.viewport.Width = max(20, m.width)
	m.viewport.Height = max(3, m.height-inputHeight-headerHeight-statusHeight-1)
	m.input.Width = max(10, m.width-6)
}

func (m *Model) render() {
	var b strings.Builder

	for _, e := range m.transcript {
		b.WriteString(m.renderEntry(e.author, e.text))
	}
	if m.busy && m.streaming.Len() > 0 {
		b.WriteString(m.renderEntry(assistantAuthor, m.streaming.String()))
	}

	m.viewport.SetContent(b.String())
	m.viewport.GotoBottom()
}

func (m *Model) renderEntry(author, text string) string {
	style := m.theme.assistant
	if author == userAuthor {
		style = m.theme.user
	}

	wrapped := lipgloss.NewStyle().Width(max(20, m.viewport.Width)).Render(text)

	return style.Render(author) + "\n" + wrapped + "\n\n"
}

// View implements tea.Model.
func (m *Model) View() string {
	header := m.theme.header.Render(fmt.Sprintf("NotoMate · %s", m.mode))

	status := m.theme.status.Render(m.status)
	if m.statusErr {
		status = m.theme.errorStatus.Render(m.status)
	} else if m.busy {
		status = m.spinner.View() + " " + status
	}

	input := m.theme.inputPanel.Render(m.input.View())
	help := m.theme.help.Render("enter send · esc quit")

	return lipgloss.JoinVertical(lipgloss.Left, header, m.viewport.View(), status, input, help)
}

// Transcript returns the rendered conversation as author and text pairs.
func (m *Model) Transcript() [][2]string {
	out := make([][2]string, len(m.transcript))
	for i, e := range m.transcript {
		out[i] = [2]string{e.author, e.text}
	}
	return out
}

// Status returns the status line and whether it reports an error.
func (m *Model) Status() (string, bool) { return m.status, m.statusErr }
