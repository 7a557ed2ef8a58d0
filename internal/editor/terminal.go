package editor

import (
	"os"
	"strconv"
	"strings"
	"sync"

	"github.com/charmbracelet/glamour"
)

// DefaultTerminalStyle is the glamour style used when HUB_MARKDOWN_STYLE is
// unset. A fixed style avoids glamour's terminal background query.
const DefaultTerminalStyle = "dark"

var (
	termMu        sync.Mutex
	termRenderers = map[string]*glamour.TermRenderer{}
)

func terminalStyle() string {
	if s := strings.TrimSpace(os.Getenv("HUB_MARKDOWN_STYLE")); s != "" {
		return s
	}
	return DefaultTerminalStyle
}

// RenderTerminal renders markdown for a terminal wrapped at width. On any
// renderer error the markdown is returned unchanged.
func RenderTerminal(markdown string, width int) string {
	markdown = strings.TrimSpace(markdown)
	if markdown == "" {
		return ""
	}
	width = max(width, 10)

	style := terminalStyle()
	key := style + ":" + strconv.Itoa(width)

	termMu.Lock()
	r := termRenderers[key]
	if r == nil {
		var err error
		r, err = glamour.NewTermRenderer(
			glamour.WithStandardStyle(style),
			glamour.WithWordWrap(width),
		)
		if err != nil {
			termMu.Unlock()
			return markdown
		}
		termRenderers[key] = r
	}
	termMu.Unlock()

	out, err := r.Render(markdown)
	if err != nil {
		return markdown
	}
	return strings.TrimRight(out, "\n")
}
