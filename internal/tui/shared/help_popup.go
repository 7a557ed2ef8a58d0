package shared

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
	"hub/internal/tui/theme"
)

// HelpBind represents a single keybind entry
type HelpBind struct {
	Key  string
	Desc string
}

// HelpSection represents a group of related keybinds
type HelpSection struct {
	Title string
	Binds []HelpBind
}

var (
	helpSectionStyle = lipgloss.NewStyle().Bold(true).Foreground(theme.Primary)
	helpKeyStyle     = lipgloss.NewStyle().Bold(true).Foreground(theme.Secondary)
	helpDescStyle    = lipgloss.NewStyle().Foreground(theme.Text)
	helpBoxStyle     = lipgloss.NewStyle().
				BorderStyle(lipgloss.RoundedBorder()).
				BorderForeground(theme.BorderFocused).
				Padding(1, 2)
	helpDismissStyle = lipgloss.NewStyle().Foreground(theme.TextMuted)
)

func renderHelpSection(section HelpSection) string {
	lines := []string{helpSectionStyle.Render(section.Title)}
	for _, bind := range section.Binds {
		lines = append(lines, "  "+helpKeyStyle.Width(14).Render(bind.Key)+helpDescStyle.Render(bind.Desc))
	}
	return strings.Join(lines, "\n")
}

// RenderHelpPopup renders a centered help popup with the given sections.
// Sections that do not fit the height in one column are split into two.
func RenderHelpPopup(sections []HelpSection, width, height int) string {
	blocks := make([]string, len(sections))
	total := 0
	for i, s := range sections {
		blocks[i] = renderHelpSection(s)
		total += lipgloss.Height(blocks[i]) + 1
	}

	// box border, padding and the dismiss line
	const chrome = 6
	var content string
	if total+chrome <= height || len(blocks) < 2 {
		content = strings.Join(blocks, "\n\n")
	} else {
		split, used := 0, 0
		for split < len(blocks) && used < total/2 {
			used += lipgloss.Height(blocks[split]) + 1
			split++
		}
		left := lipgloss.NewStyle().PaddingRight(4).Render(strings.Join(blocks[:split], "\n\n"))
		right := strings.Join(blocks[split:], "\n\n")
		content = lipgloss.JoinHorizontal(lipgloss.Top, left, right)
	}

	content += "\n\n" + helpDismissStyle.Render("Press any key to close")

	box := helpBoxStyle.Render(content)
	return lipgloss.Place(width, height, lipgloss.Center, lipgloss.Center, box)
}
