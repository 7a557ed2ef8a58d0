package login

import (
	"context"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"hub/internal/api"
	"hub/internal/logs"
	"hub/internal/tui/messages"
	"hub/internal/tui/shared"
	"hub/internal/tui/theme"
)

// resultMsg carries the outcome of one login attempt.
type resultMsg struct {
	name string
	err  error
}

// Model is the username/password form shown while there is no session.
type Model struct {
	client  *api.Client
	inputs  []textinput.Model
	focus   int
	pending bool
	err     string
	notice  string
	width   int
	height  int
}

func New(client *api.Client) Model {
	user := textinput.New()
	user.Prompt = "Username: "
	user.CharLimit = 150
	user.Focus()

	pass := textinput.New()
	pass.Prompt = "Password: "
	pass.EchoMode = textinput.EchoPassword
	pass.EchoCharacter = '•'
	pass.CharLimit = 128

	return Model{client: client, inputs: []textinput.Model{user, pass}}
}

// SetSize updates the dimensions
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
}

// Expired resets the form after the server ended the session.
func (m *Model) Expired() {
	m.inputs[1].SetValue("")
	m.pending = false
	m.notice = api.UserMessage(api.ErrUnauthorized)
	m.setFocus(1)
	if m.inputs[0].Value() == "" {
		m.setFocus(0)
	}
}

func (m Model) Init() tea.Cmd {
	return textinput.Blink
}

func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	switch msg := msg.(type) {
	case resultMsg:
		m.pending = false
		if msg.err != nil {
			logs.Logger.WithError(msg.err).Warn("Login failed")
			m.err = api.UserMessage(msg.err)
			m.inputs[1].SetValue("")
			m.setFocus(1)
			return m, nil
		}
		m.err, m.notice = "", ""
		m.inputs[1].SetValue("")
		return m, func() tea.Msg { return messages.LoggedInMsg{Name: msg.name} }

	case tea.KeyMsg:
		if m.pending {
			return m, nil
		}
		switch msg.String() {
		case "tab", "down":
			m.setFocus((m.focus + 1) % len(m.inputs))
			return m, nil
		case "shift+tab", "up":
			m.setFocus((m.focus + len(m.inputs) - 1) % len(m.inputs))
			return m, nil
		case "enter":
			if m.focus == 0 {
				m.setFocus(1)
				return m, nil
			}
			return m.submit()
		}
	}

	var cmd tea.Cmd
	m.inputs[m.focus], cmd = m.inputs[m.focus].Update(msg)
	return m, cmd
}

func (m *Model) setFocus(i int) {
	m.focus = i
	for j := range m.inputs {
		if j == i {
			m.inputs[j].Focus()
		} else {
			m.inputs[j].Blur()
		}
	}
}

func (m Model) submit() (Model, tea.Cmd) {
	username := strings.TrimSpace(m.inputs[0].Value())
	password := m.inputs[1].Value()
	if username == "" || password == "" {
		m.err = "Username and password are required."
		return m, nil
	}

	m.pending = true
	m.err = ""
	client := m.client
	return m, func() tea.Msg {
		ctx := context.Background()
		if err := client.Login(ctx, username, password); err != nil {
			return resultMsg{err: err}
		}
		name := username
		if u, err := client.Me(ctx); err == nil {
			name = u.DisplayName()
		}
		return resultMsg{name: name}
	}
}

func (m Model) View() string {
	var b strings.Builder
	b.WriteString(theme.Title.Render("Assistant Hub") + "\n\n")
	if m.notice != "" {
		b.WriteString(theme.Warn.Render(m.notice) + "\n\n")
	}
	for _, in := range m.inputs {
		b.WriteString(in.View() + "\n")
	}
	b.WriteString("\n")
	switch {
	case m.pending:
		b.WriteString(theme.Muted.Render("Logging in..."))
	case m.err != "":
		b.WriteString(theme.Error.Render(m.err))
	default:
		b.WriteString(theme.HelpHint.Render("tab: next field  enter: log in  ctrl+c: quit"))
	}

	box := theme.ModalBox.Width(min(m.width-4, 50)).Render(b.String())
	return shared.CenterContent(lipgloss.PlaceHorizontal(m.width, lipgloss.Center, box), m.height)
}
