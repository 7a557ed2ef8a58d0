package shared

import (
	"sort"
	"strings"
	"time"

	"hub/internal/models"
	"hub/internal/tui/theme"
	"hub/internal/view"
)

// StyledTaskLine renders a task in a simple, readable format.
// Format: [x] Title due:date #tag
func StyledTaskLine(t models.Task, loc *time.Location) string {
	var parts []string
	done := t.Status == models.StatusDone

	// Status checkbox
	switch t.Status {
	case models.StatusDone:
		parts = append(parts, theme.Done.Render("[x]"))
	case models.StatusInProgress:
		parts = append(parts, theme.InProgress.Render("[~]"))
	default:
		parts = append(parts, "[ ]")
	}

	// Title
	switch {
	case done:
		parts = append(parts, theme.Done.Render(t.Title))
	case t.Status == models.StatusInProgress:
		parts = append(parts, theme.InProgress.Render(t.Title))
	default:
		parts = append(parts, theme.Bold.Render(t.Title))
	}

	if due := view.FormatWhen(t.Due(), loc); due != "" {
		if done {
			parts = append(parts, theme.Done.Render("due:"+due))
		} else {
			parts = append(parts, theme.Muted.Render("due:"+due))
		}
	}

	// Tags sorted for deterministic rendering
	tags := t.TagNames()
	sort.Strings(tags)
	for _, name := range tags {
		if done {
			parts = append(parts, theme.Done.Render("#"+name))
		} else {
			parts = append(parts, theme.Tag.Render("#"+name))
		}
	}

	return strings.Join(parts, " ")
}
