package notes

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textarea"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"hub/internal/api"
	"hub/internal/collection"
	"hub/internal/editor"
	"hub/internal/logs"
	"hub/internal/models"
	"hub/internal/service"
	"hub/internal/tui/messages"
	"hub/internal/tui/shared"
	"hub/internal/tui/theme"
)

const owner = "note-editor"

var (
	editorModifiedStyle = lipgloss.NewStyle().Foreground(theme.Warning)
	editorMetaStyle     = lipgloss.NewStyle().Foreground(theme.Secondary)
)

// ClosedMsg is sent when the editor closes. Saved reports whether the
// server holds the latest content.
type ClosedMsg struct {
	NoteID int64
	Saved  bool
}

type savedMsg struct {
	note models.Note
	err  error
}

// EditorModel edits one note's markdown. The text area feeds an
// editor.Editor, which is what gets saved.
type EditorModel struct {
	note  models.Note
	svc   *service.Notes
	coll  *collection.Collection[models.Note]
	ed    *editor.Editor
	area  textarea.Model
	saved string
	dirty bool
	words int

	saving  bool
	err     string
	status  string
	confirm *shared.ConfirmationModal
	stop    func()

	width  int
	height int
}

// NewEditor opens note for editing. Saves go through coll so the list
// page sees the new content.
func NewEditor(note models.Note, svc *service.Notes, coll *collection.Collection[models.Note]) *EditorModel {
	area := textarea.New()
	area.ShowLineNumbers = false
	area.CharLimit = 0
	area.SetValue(note.Content)
	area.Focus()

	m := &EditorModel{
		note:  note,
		svc:   svc,
		coll:  coll,
		ed:    editor.New(note.Content),
		area:  area,
		saved: note.Content,
		words: len(strings.Fields(note.Content)),
	}
	m.stop = m.ed.OnChange(func(content string) {
		m.dirty = content != m.saved
		m.words = len(strings.Fields(content))
	})
	return m
}

// SetSize updates the dimensions
func (m *EditorModel) SetSize(width, height int) {
	m.width = width
	m.height = height
	m.area.SetWidth(max(10, width-2))
	m.area.SetHeight(max(3, height-4))
}

// Dirty reports unsaved changes.
func (m *EditorModel) Dirty() bool {
	return m.dirty
}

// Content returns the editor's current markdown.
func (m *EditorModel) Content() string {
	return m.ed.GetContent()
}

func (m *EditorModel) Init() tea.Cmd {
	return textarea.Blink
}

func (m *EditorModel) Update(msg tea.Msg) tea.Cmd {
	switch msg := msg.(type) {
	case savedMsg:
		m.saving = false
		if msg.err != nil {
			logs.Logger.WithError(msg.err).WithField("note", m.note.ID).Warn("Saving note failed")
			m.err = api.UserMessage(msg.err)
			if errors.Is(msg.err, api.ErrUnauthorized) {
				return messages.SessionExpired
			}
			return nil
		}
		m.note = msg.note
		m.saved = msg.note.Content
		m.dirty = m.ed.GetContent() != m.saved
		m.err = ""
		m.status = "Saved."
		return nil

	case shared.ConfirmationResultMsg:
		if msg.Owner != owner || m.confirm == nil {
			return nil
		}
		m.confirm = nil
		if msg.Confirmed {
			return m.close(false)
		}
		return nil

	case tea.KeyMsg:
		if m.confirm != nil {
			return m.confirm.Update(owner, msg)
		}
		m.status = ""
		switch msg.String() {
		case "ctrl+s":
			return m.save()
		case "esc":
			if m.dirty {
				m.confirm = shared.NewConfirmationModal("Discard unsaved changes?", m.note.Title, min(m.width-4, 50))
				return nil
			}
			return m.close(true)
		}
	}

	var cmd tea.Cmd
	m.area, cmd = m.area.Update(msg)
	m.ed.SetContent(m.area.Value())
	return cmd
}

func (m *EditorModel) save() tea.Cmd {
	if m.saving || !m.dirty {
		return nil
	}
	m.saving = true
	svc, coll, id, ed := m.svc, m.coll, m.note.ID, m.ed
	return func() tea.Msg {
		note, err := svc.SaveContent(context.Background(), coll, id, ed)
		return savedMsg{note: note, err: err}
	}
}

func (m *EditorModel) close(saved bool) tea.Cmd {
	if m.stop != nil {
		m.stop()
	}
	id := m.note.ID
	return func() tea.Msg { return ClosedMsg{NoteID: id, Saved: saved} }
}

func (m *EditorModel) View() string {
	title := theme.Title.Render(m.note.Title)
	if m.dirty {
		title += editorModifiedStyle.Render(" [modified]")
	}

	var meta []string
	meta = append(meta, string(m.note.NoteType))
	if d := m.note.When(); d != "" {
		meta = append(meta, d)
	}
	if m.note.Job != "" {
		meta = append(meta, "job: "+m.note.Job)
	}
	meta = append(meta, fmt.Sprintf("%d words", m.words))

	footer := theme.HelpHint.Render("ctrl+s: save  esc: close")
	switch {
	case m.saving:
		footer = theme.Muted.Render("Saving...")
	case m.err != "":
		footer = theme.Error.Render(m.err)
	case m.status != "":
		footer = theme.Ok.Render(m.status)
	}

	body := m.area.View()
	if m.confirm != nil {
		body = shared.CenterContent(lipgloss.PlaceHorizontal(m.width, lipgloss.Center, m.confirm.View()), m.area.Height())
	}

	return lipgloss.JoinVertical(lipgloss.Left,
		title,
		editorMetaStyle.Render(strings.Join(meta, " · ")),
		body,
		footer,
	)
}
