package shared

import (
	"fmt"
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"hub/internal/tui/theme"
)

var (
	inputPromptStyle = lipgloss.NewStyle().Foreground(theme.Secondary)
	inputBoxStyle    = lipgloss.NewStyle().BorderStyle(lipgloss.RoundedBorder()).BorderForeground(theme.Primary).Padding(0, 1)
)

// TextInputModel wraps bubbles/textinput with validation
type TextInputModel struct {
	Input     textinput.Model
	Prompt    string
	Owner     string
	Validator func(string) error
	Error     string
	Width     int
}

// TextInputResultMsg is sent when input is confirmed or cancelled
type TextInputResultMsg struct {
	Owner     string
	Value     string
	Cancelled bool
}

// NewTextInput creates a focused text input. owner is echoed in the result.
func NewTextInput(owner, prompt, placeholder string, validator func(string) error) *TextInputModel {
	ti := textinput.New()
	ti.Placeholder = placeholder
	ti.Focus()
	ti.CharLimit = 256
	return &TextInputModel{
		Input:     ti,
		Prompt:    prompt,
		Owner:     owner,
		Validator: validator,
	}
}

func (m *TextInputModel) Update(msg tea.Msg) tea.Cmd {
	if key, ok := msg.(tea.KeyMsg); ok {
		switch key.String() {
		case "enter":
			if m.Validator != nil {
				if err := m.Validator(m.Input.Value()); err != nil {
					m.Error = err.Error()
					return nil
				}
			}
			value, owner := m.Input.Value(), m.Owner
			return func() tea.Msg {
				return TextInputResultMsg{Owner: owner, Value: value}
			}
		case "esc":
			owner := m.Owner
			return func() tea.Msg {
				return TextInputResultMsg{Owner: owner, Cancelled: true}
			}
		}
	}

	var cmd tea.Cmd
	m.Input, cmd = m.Input.Update(msg)
	m.Error = ""
	return cmd
}

func (m *TextInputModel) View() string {
	content := inputPromptStyle.Render(m.Prompt+": ") + m.Input.View() + "\n"
	if m.Error != "" {
		content += theme.Error.Render("Error: "+m.Error) + "\n"
	}
	content += theme.HelpHint.Render("[enter] confirm  [esc] cancel")

	return inputBoxStyle.Width(m.Width).Render(content)
}

// Value returns the current input value
func (m *TextInputModel) Value() string {
	return m.Input.Value()
}

// SetValue sets the input value
func (m *TextInputModel) SetValue(v string) {
	m.Input.SetValue(v)
}

// SetWidth sets both the outer box and inner input widths
func (m *TextInputModel) SetWidth(w int) {
	// border (2) and padding (2)
	m.Width = w - 4
	m.Input.Width = m.Width - lipgloss.Width(m.Prompt+": ")
}

// ValidateDateFormat accepts an empty value or yyyy-MM-dd.
func ValidateDateFormat(s string) error {
	if s == "" {
		return nil
	}
	if _, err := time.Parse("2006-01-02", s); err != nil {
		return fmt.Errorf("invalid date format, use yyyy-MM-dd")
	}
	return nil
}
