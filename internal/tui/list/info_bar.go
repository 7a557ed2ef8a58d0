package list

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"hub/internal/tui/theme"
	"hub/internal/view"
)

var (
	filterStyle  = lipgloss.NewStyle().Foreground(theme.Warning)
	searchStyle  = lipgloss.NewStyle().Foreground(theme.Success)
	pageStyle    = lipgloss.NewStyle().Foreground(theme.Secondary)
	infoBarStyle = lipgloss.NewStyle().BorderStyle(lipgloss.NormalBorder()).BorderBottom(true).BorderForeground(theme.Border)
)

// InfoBarModel displays the page position, active filters and the last
// message or error (2 fixed lines).
type InfoBarModel struct {
	Filter  view.FilterState
	Group   view.GroupMode
	Facets  []string
	Page    pageInfo
	Loading bool
	Error   string
	Message string
	Width   int
}

type pageInfo struct {
	number, total, items int
}

func NewInfoBar() InfoBarModel {
	return InfoBarModel{Width: 80}
}

// SetContext updates the info bar with current state
func (m *InfoBarModel) SetContext(filter view.FilterState, group view.GroupMode, facets []string, page, pages, items int) {
	m.Filter = filter
	m.Group = group
	m.Facets = facets
	m.Page = pageInfo{number: page, total: pages, items: items}
}

func (m *InfoBarModel) View() string {
	lines := []string{m.renderFiltersLine(), m.renderMessageLine()}
	return infoBarStyle.Width(m.Width).Render(strings.Join(lines, "\n"))
}

func (m *InfoBarModel) renderFiltersLine() string {
	parts := []string{pageStyle.Render(fmt.Sprintf("Page %d/%d · %d items", m.Page.number, m.Page.total, m.Page.items))}

	if m.Group != view.GroupNone {
		parts = append(parts, filterStyle.Render("Group: "+string(m.Group)))
	}
	if m.Filter.Window != view.WindowAll && m.Filter.Window != "" {
		parts = append(parts, filterStyle.Render("Window: "+string(m.Filter.Window)))
	}
	if len(m.Facets) > 0 {
		parts = append(parts, filterStyle.Render("Filters: "+strings.Join(m.Facets, ", ")))
	}
	if m.Filter.Search != "" {
		parts = append(parts, searchStyle.Render("Search: \""+m.Filter.Search+"\""))
	}

	return strings.Join(parts, "  |  ")
}

func (m *InfoBarModel) renderMessageLine() string {
	switch {
	case m.Error != "":
		return theme.Error.Render(m.Error)
	case m.Loading:
		return theme.HelpHint.Render("Loading...")
	case m.Message != "":
		return theme.Ok.Render(m.Message)
	}
	return ""
}
