package editor

import (
	"strings"
	"testing"

	"github.com/charmbracelet/x/ansi"
)

func TestEditor_OnChange(t *testing.T) {
	e := New("draft")

	var seen []string
	remove := e.OnChange(func(content string) {
		seen = append(seen, content)
	})

	e.SetContent("draft")
	if len(seen) != 0 {
		t.Errorf("unchanged content should not notify, got %v", seen)
	}

	e.SetContent("second")
	if len(seen) != 1 || seen[0] != "second" {
		t.Errorf("expected one change notification, got %v", seen)
	}
	if e.GetContent() != "second" {
		t.Errorf("unexpected content %q", e.GetContent())
	}

	remove()
	e.SetContent("third")
	if len(seen) != 1 {
		t.Errorf("removed listener should not be called, got %v", seen)
	}
}

func TestRenderHTML(t *testing.T) {
	e := New("# Standup\n\n- ship the *release*\n")

	html, err := e.RenderHTML()
	if err != nil {
		t.Fatalf("RenderHTML: %v", err)
	}
	for _, want := range []string{"<h1>Standup</h1>", "<li>ship the <em>release</em></li>"} {
		if !strings.Contains(html, want) {
			t.Errorf("expected %q in %q", want, html)
		}
	}
}

func TestHeading(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"# Weekly review\n\nbody", "Weekly review"},
		{"## Sub\n\n# Main", "Main"},
		{"no heading", ""},
	}

	for _, tt := range tests {
		if got := Heading(tt.input); got != tt.expected {
			t.Errorf("Heading(%q): expected %q, got %q", tt.input, tt.expected, got)
		}
	}
}

func TestPreview(t *testing.T) {
	md := "# Title\n\nFirst paragraph.\n\nSecond one.\n\nThird is dropped."
	if got := Preview(md, 80); got != "First paragraph. Second one." {
		t.Errorf("unexpected preview %q", got)
	}

	long := strings.Repeat("word ", 30)
	got := Preview(long, 20)
	if len([]rune(got)) != 20 || !strings.HasSuffix(got, "...") {
		t.Errorf("expected truncated preview, got %q", got)
	}
}

func TestFormatAndParse(t *testing.T) {
	task := int64(12)
	fm := Frontmatter{Title: "Team sync", Date: "2024-03-15", Type: "daily", Job: "acme", Task: &task, ID: 4}

	data, err := Format(fm, "Notes from the sync.\n")
	if err != nil {
		t.Fatalf("Format: %v", err)
	}
	if !strings.HasPrefix(string(data), "---\n") {
		t.Fatalf("expected frontmatter block, got %q", data)
	}

	got, body, err := Parse(data)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if got.Title != "Team sync" || got.Date != "2024-03-15" || got.Job != "acme" || got.ID != 4 {
		t.Errorf("unexpected frontmatter %+v", got)
	}
	if got.Task == nil || *got.Task != 12 {
		t.Errorf("expected task 12, got %v", got.Task)
	}
	if body != "Notes from the sync.\n" {
		t.Errorf("unexpected body %q", body)
	}
}

func TestParse_NoFrontmatter(t *testing.T) {
	fm, body, err := Parse([]byte("just text\n---\nmore"))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if fm.Title != "" || body != "just text\n---\nmore" {
		t.Errorf("expected whole document as body, got %+v %q", fm, body)
	}

	// unterminated block is body too
	_, body, _ = Parse([]byte("---\ntitle: x\n"))
	if body != "---\ntitle: x\n" {
		t.Errorf("unexpected body %q", body)
	}
}

func TestParse_BadYAML(t *testing.T) {
	if _, _, err := Parse([]byte("---\ntitle: [unclosed\n---\nbody")); err == nil {
		t.Error("expected error for malformed frontmatter")
	}
}

func TestFilenames(t *testing.T) {
	if got := TitleFromFilename("/notes/2026-02-14-team-sync.md"); got != "team sync" {
		t.Errorf("unexpected title %q", got)
	}
	if got := TitleFromFilename("2026-02-14.md"); got != "2026 02 14" {
		t.Errorf("unexpected title %q", got)
	}
	if got := DateFromFilename("notes/2026-02-14-team-sync.md"); got != "2026-02-14" {
		t.Errorf("unexpected date %q", got)
	}
	if got := Filename("2024-03-15", "Team Sync: Q1 / plans!"); got != "2024-03-15-team-sync-q1-plans.md" {
		t.Errorf("unexpected filename %q", got)
	}
	if got := Filename("", "***"); got != "note.md" {
		t.Errorf("unexpected filename %q", got)
	}
}

func TestRenderTerminal(t *testing.T) {
	t.Setenv("HUB_MARKDOWN_STYLE", "notty")

	out := RenderTerminal("# Standup\n\nShipped **the release**.\n", 40)
	for _, want := range []string{"Standup", "the release"} {
		if !strings.Contains(out, want) {
			t.Errorf("expected %q in rendered output:\n%s", want, out)
		}
	}
	if got := RenderTerminal("  \n", 40); got != "" {
		t.Errorf("blank markdown should render empty, got %q", got)
	}
}

func TestRenderTerminal_StyledDropsMarkers(t *testing.T) {
	t.Setenv("HUB_MARKDOWN_STYLE", "dark")

	out := ansi.Strip(RenderTerminal("Shipped **the release**.\n", 40))
	if !strings.Contains(out, "the release") {
		t.Errorf("expected the text in rendered output:\n%s", out)
	}
	if strings.Contains(out, "**") {
		t.Errorf("expected emphasis markers to be styled away:\n%s", out)
	}
}

func TestRenderTerminal_UnknownStyleFallsBack(t *testing.T) {
	t.Setenv("HUB_MARKDOWN_STYLE", "no-such-style")

	md := "# Title\n\nbody"
	if got := RenderTerminal(md, 40); got != md {
		t.Errorf("expected the markdown unchanged, got %q", got)
	}
}
