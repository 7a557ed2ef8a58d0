package editor

import (
	"bytes"
	"strings"
	"sync"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"
)

// Editor owns the markdown content of one note. Views read and write it
// only through GetContent and SetContent and learn about edits via OnChange.
type Editor struct {
	mu        sync.Mutex
	content   string
	listeners map[int]func(string)
	nextID    int
}

// New returns an editor holding initial.
func New(initial string) *Editor {
	return &Editor{content: initial, listeners: make(map[int]func(string))}
}

func (e *Editor) GetContent() string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.content
}

// SetContent replaces the content and notifies listeners if it changed.
func (e *Editor) SetContent(content string) {
	e.mu.Lock()
	if content == e.content {
		e.mu.Unlock()
		return
	}
	e.content = content
	listeners := make([]func(string), 0, len(e.listeners))
	for _, fn := range e.listeners {
		listeners = append(listeners, fn)
	}
	e.mu.Unlock()

	for _, fn := range listeners {
		fn(content)
	}
}

// OnChange registers fn for content changes. The returned func removes it.
func (e *Editor) OnChange(fn func(content string)) (remove func()) {
	e.mu.Lock()
	defer e.mu.Unlock()
	id := e.nextID
	e.nextID++
	e.listeners[id] = fn
	return func() {
		e.mu.Lock()
		defer e.mu.Unlock()
		delete(e.listeners, id)
	}
}

// RenderHTML renders the content as HTML.
func (e *Editor) RenderHTML() (string, error) {
	return RenderHTML(e.GetContent())
}

// RenderHTML renders markdown as HTML.
func RenderHTML(markdown string) (string, error) {
	var buf bytes.Buffer
	if err := goldmark.Convert([]byte(markdown), &buf); err != nil {
		return "", err
	}
	return buf.String(), nil
}

// Heading returns the text of the first level-1 heading, or "".
func Heading(markdown string) string {
	reader := text.NewReader([]byte(markdown))
	doc := goldmark.DefaultParser().Parse(reader)

	var title string
	ast.Walk(doc, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if entering && n.Kind() == ast.KindHeading {
			if n.(*ast.Heading).Level == 1 {
				title = string(n.Text([]byte(markdown)))
				return ast.WalkStop, nil
			}
		}
		return ast.WalkContinue, nil
	})
	return title
}

// Preview returns the first two paragraphs of markdown flattened to
// plain text and cut to max runes.
func Preview(markdown string, max int) string {
	reader := text.NewReader([]byte(markdown))
	doc := goldmark.DefaultParser().Parse(reader)

	var preview strings.Builder
	paragraphs := 0

	ast.Walk(doc, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		if n.Kind() == ast.KindHeading {
			return ast.WalkSkipChildren, nil
		}
		if n.Kind() == ast.KindParagraph {
			if paragraphs >= 2 {
				return ast.WalkStop, nil
			}
			if t := string(n.Text([]byte(markdown))); t != "" {
				if preview.Len() > 0 {
					preview.WriteString(" ")
				}
				preview.WriteString(t)
				paragraphs++
			}
			return ast.WalkSkipChildren, nil
		}
		return ast.WalkContinue, nil
	})

	runes := []rune(preview.String())
	if max > 3 && len(runes) > max {
		return string(runes[:max-3]) + "..."
	}
	return string(runes)
}
