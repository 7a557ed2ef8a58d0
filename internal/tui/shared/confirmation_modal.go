package shared

import (
	tea "github.com/charmbracelet/bubbletea"
	"hub/internal/tui/theme"
)

// ConfirmationModal displays a yes/no question over the current page
type ConfirmationModal struct {
	Message string // Primary question
	Details string // Additional context (optional)
	Width   int
}

// ConfirmationResultMsg is sent when the user answers. Owner tells pages
// which modal the answer belongs to.
type ConfirmationResultMsg struct {
	Owner     string
	Confirmed bool
}

// NewConfirmationModal creates a new confirmation modal
func NewConfirmationModal(message, details string, width int) *ConfirmationModal {
	return &ConfirmationModal{Message: message, Details: details, Width: width}
}

// Update handles key events; owner is echoed in the result message.
func (m *ConfirmationModal) Update(owner string, msg tea.KeyMsg) tea.Cmd {
	var confirmed bool
	switch msg.String() {
	case "y", "enter":
		confirmed = true
	case "n", "esc":
	default:
		return nil
	}
	return func() tea.Msg {
		return ConfirmationResultMsg{Owner: owner, Confirmed: confirmed}
	}
}

func (m *ConfirmationModal) View() string {
	content := theme.Title.Render(m.Message) + "\n"
	if m.Details != "" {
		content += "\n" + m.Details + "\n"
	}
	content += "\n"
	content += theme.Ok.Render("[y]") + " Yes  "
	content += theme.Error.Render("[n/esc]") + " No"

	return theme.ModalBox.Width(m.Width).Render(content)
}
