package shared

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

func splitLines(content string) []string {
	content = strings.TrimRight(content, "\n")
	if content == "" {
		return nil
	}
	return strings.Split(content, "\n")
}

// CenterContent renders content vertically centered in the available height.
func CenterContent(content string, height int) string {
	lines := splitLines(content)
	if len(lines) >= height {
		return strings.Join(lines, "\n")
	}

	topPad := (height - len(lines)) / 2
	out := make([]string, topPad, height)
	out = append(out, lines...)
	// Fill remaining to reach height
	for len(out) < height {
		out = append(out, "")
	}
	return strings.Join(out, "\n")
}

// FitHeight clips or pads content to exactly height lines, so the status
// bar under it never moves.
func FitHeight(content string, height int) string {
	if height <= 0 {
		return ""
	}
	lines := splitLines(content)
	if len(lines) > height {
		lines = lines[:height]
	}
	for len(lines) < height {
		lines = append(lines, "")
	}
	return strings.Join(lines, "\n")
}

// Ellipsize shortens plain text to width cells, marking the cut with "...".
func Ellipsize(s string, width int) string {
	if width <= 0 {
		return ""
	}
	if lipgloss.Width(s) <= width {
		return s
	}
	r := []rune(s)
	if width <= 3 {
		return string(r[:min(len(r), width)])
	}
	for len(r) > 0 && lipgloss.Width(string(r))+3 > width {
		r = r[:len(r)-1]
	}
	return string(r) + "..."
}
