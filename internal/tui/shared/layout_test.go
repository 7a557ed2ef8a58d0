package shared

import (
	"strings"
	"testing"
	"time"

	"hub/internal/models"
)

func TestCenterContent_PadsToHeight(t *testing.T) {
	out := CenterContent("a\nb", 6)
	lines := strings.Split(out, "\n")
	if len(lines) != 6 {
		t.Fatalf("expected 6 lines, got %d", len(lines))
	}
	if lines[2] != "a" || lines[3] != "b" {
		t.Errorf("expected content in the middle, got %q", lines)
	}
}

func TestCenterContent_TallContentUnchanged(t *testing.T) {
	if out := CenterContent("a\nb\nc", 2); out != "a\nb\nc" {
		t.Errorf("got %q", out)
	}
}

func TestFitHeight(t *testing.T) {
	tests := []struct {
		content string
		height  int
		want    string
	}{
		{"a\nb\nc", 2, "a\nb"},
		{"a", 3, "a\n\n"},
		{"", 1, ""},
		{"a\n", 1, "a"},
		{"a", 0, ""},
	}
	for _, tt := range tests {
		if got := FitHeight(tt.content, tt.height); got != tt.want {
			t.Errorf("FitHeight(%q, %d) = %q, want %q", tt.content, tt.height, got, tt.want)
		}
	}
}

func TestEllipsize(t *testing.T) {
	tests := []struct {
		in    string
		width int
		want  string
	}{
		{"short", 10, "short"},
		{"exactly10!", 10, "exactly10!"},
		{"someone@example.com", 10, "someone..."},
		{"abcdef", 3, "abc"},
		{"abc", 0, ""},
	}
	for _, tt := range tests {
		if got := Ellipsize(tt.in, tt.width); got != tt.want {
			t.Errorf("Ellipsize(%q, %d) = %q, want %q", tt.in, tt.width, got, tt.want)
		}
	}
}

func TestStyledTaskLine(t *testing.T) {
	due := "2024-03-17"
	task := models.Task{
		Title:   "Write report",
		Status:  models.StatusDone,
		DueDate: &due,
		Tags:    []models.TaskTag{{Name: "work"}, {Name: "admin"}},
	}
	line := StyledTaskLine(task, time.UTC)

	for _, want := range []string{"[x]", "Write report", "due:Sun Mar 17", "#admin", "#work"} {
		if !strings.Contains(line, want) {
			t.Errorf("expected %q in %q", want, line)
		}
	}
	if strings.Index(line, "#admin") > strings.Index(line, "#work") {
		t.Errorf("expected tags sorted, got %q", line)
	}
}
