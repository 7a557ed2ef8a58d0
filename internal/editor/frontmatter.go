package editor

import (
	"bytes"
	"fmt"
	"path/filepath"
	"regexp"
	"strings"

	"gopkg.in/yaml.v3"
)

var datePattern = regexp.MustCompile(`\d{4}-\d{2}-\d{2}`)

// Frontmatter is the YAML header of an exported note.
type Frontmatter struct {
	Title string `yaml:"title,omitempty"`
	Date  string `yaml:"date,omitempty"`
	Type  string `yaml:"type,omitempty"`
	Job   string `yaml:"job,omitempty"`
	Task  *int64 `yaml:"task,omitempty"`
	ID    int64  `yaml:"id,omitempty"`
}

// Format writes body behind a YAML frontmatter block.
func Format(fm Frontmatter, body string) ([]byte, error) {
	header, err := yaml.Marshal(fm)
	if err != nil {
		return nil, fmt.Errorf("encode frontmatter: %w", err)
	}

	var buf bytes.Buffer
	buf.WriteString("---\n")
	buf.Write(header)
	buf.WriteString("---\n\n")
	buf.WriteString(strings.TrimLeft(body, "\n"))
	if !strings.HasSuffix(body, "\n") {
		buf.WriteString("\n")
	}
	return buf.Bytes(), nil
}

// Parse splits a markdown document into frontmatter and body. A document
// without a leading "---" block is all body.
func Parse(content []byte) (Frontmatter, string, error) {
	lines := bytes.Split(content, []byte("\n"))

	if len(lines) == 0 || !bytes.Equal(bytes.TrimSpace(lines[0]), []byte("---")) {
		return Frontmatter{}, string(content), nil
	}

	var fmEnd int
	for i := 1; i < len(lines); i++ {
		if bytes.Equal(bytes.TrimSpace(lines[i]), []byte("---")) {
			fmEnd = i
			break
		}
	}
	if fmEnd == 0 {
		return Frontmatter{}, string(content), nil
	}

	var fm Frontmatter
	fmBytes := bytes.Join(lines[1:fmEnd], []byte("\n"))
	if err := yaml.Unmarshal(fmBytes, &fm); err != nil {
		return Frontmatter{}, "", fmt.Errorf("parse frontmatter: %w", err)
	}

	body := string(bytes.Join(lines[fmEnd+1:], []byte("\n")))
	return fm, strings.TrimLeft(body, "\n"), nil
}

// DateFromFilename returns the first YYYY-MM-DD in a file name, or "".
func DateFromFilename(name string) string {
	return datePattern.FindString(filepath.Base(name))
}

// TitleFromFilename derives a title from a note file name such as
// "2026-02-14-team-sync.md".
func TitleFromFilename(name string) string {
	name = strings.TrimSuffix(filepath.Base(name), ".md")

	// Strip leading date pattern
	if loc := datePattern.FindStringIndex(name); loc != nil {
		after := strings.TrimPrefix(name[loc[1]:], "-")
		if after != "" {
			name = after
		}
	}

	name = strings.ReplaceAll(name, "-", " ")
	name = strings.ReplaceAll(name, "_", " ")

	if name == "" {
		return "Note"
	}
	return name
}

// Filename builds the export file name for a note.
func Filename(date, title string) string {
	slug := strings.ToLower(strings.TrimSpace(title))
	slug = strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			return r
		case r == ' ', r == '-', r == '_':
			return '-'
		}
		return -1
	}, slug)
	for strings.Contains(slug, "--") {
		slug = strings.ReplaceAll(slug, "--", "-")
	}
	slug = strings.Trim(slug, "-")
	if slug == "" {
		slug = "note"
	}
	if date != "" {
		return date + "-" + slug + ".md"
	}
	return slug + ".md"
}
