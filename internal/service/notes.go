package service

import (
	"context"
	"fmt"
	"net/url"
	"slices"
	"strconv"
	"strings"

	"hub/internal/api"
	"hub/internal/collection"
	"hub/internal/editor"
	"hub/internal/models"
	"hub/internal/view"
)

func NoteView(pageSize int) view.Config[models.Note] {
	return view.Config[models.Note]{
		ID:   func(n models.Note) int64 { return n.ID },
		When: func(n models.Note) string { return n.When() },
		Text: func(n models.Note) []string { return []string{n.Title, n.Content, n.Job} },
		Categories: map[string]func(models.Note) []string{
			"type": func(n models.Note) []string { return one(string(n.NoteType)) },
			"job":  func(n models.Note) []string { return one(n.Job) },
			"task": func(n models.Note) []string {
				if n.Task == nil {
					return nil
				}
				return one(strconv.FormatInt(*n.Task, 10))
			},
		},
		PageSize: pageSize,
		Policy:   view.FirstIfUnselected,
	}
}

// NoteInput is the payload for a new or replaced note.
type NoteInput struct {
	NoteType models.NoteType `json:"note_type"`
	Date     *string         `json:"date"`
	Job      string          `json:"job"`
	Task     *int64          `json:"task"`
	Title    string          `json:"title"`
	Content  string          `json:"content"`
}

// Validate fills defaults and checks the date.
func (in *NoteInput) Validate() error {
	in.Title = strings.TrimSpace(in.Title)
	if in.Title == "" {
		if h := editor.Heading(in.Content); h != "" {
			in.Title = h
		} else {
			return fmt.Errorf("title is required")
		}
	}
	switch in.NoteType {
	case "":
		in.NoteType = models.NoteGeneral
	case models.NoteDaily, models.NoteGeneral:
	default:
		return fmt.Errorf("unknown note type %q", in.NoteType)
	}
	if in.NoteType == models.NoteDaily && in.Date == nil {
		return fmt.Errorf("daily notes need a date")
	}
	if in.Date != nil {
		if _, ok := view.ParseWhen(*in.Date, nil); !ok {
			return fmt.Errorf("invalid date %q (want YYYY-MM-DD)", *in.Date)
		}
	}
	return nil
}

type Notes struct {
	*Domain[models.Note]
	attachments *api.Resource[models.NoteAttachment]
}

func NewNotes(client *api.Client, pageSize int) *Notes {
	return &Notes{
		Domain: &Domain[models.Note]{
			Name:     "notes",
			Resource: api.NewResource[models.Note](client, "notes"),
			View:     NoteView(pageSize),
			Options:  collection.Options{Name: "notes", ReloadOnCreate: true},
		},
		attachments: api.NewResource[models.NoteAttachment](client, "note-attachments"),
	}
}

// ForTask narrows c to the notes attached to one task; 0 removes the narrowing.
func (s *Notes) ForTask(c *collection.Collection[models.Note], taskID int64) {
	q := url.Values{}
	if taskID > 0 {
		q.Set("task", strconv.FormatInt(taskID, 10))
	}
	c.SetQuery(q)
}

func (s *Notes) Create(ctx context.Context, c *collection.Collection[models.Note], in NoteInput) (models.Note, error) {
	if err := in.Validate(); err != nil {
		return models.Note{}, err
	}
	return c.Create(ctx, in)
}

// SaveContent writes the editor's content back with a content-only patch.
func (s *Notes) SaveContent(ctx context.Context, c *collection.Collection[models.Note], id int64, ed *editor.Editor) (models.Note, error) {
	return c.Update(ctx, id, map[string]any{"content": ed.GetContent()})
}

// Rename changes only the title.
func (s *Notes) Rename(ctx context.Context, c *collection.Collection[models.Note], id int64, title string) (models.Note, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return models.Note{}, fmt.Errorf("title is required")
	}
	return c.Update(ctx, id, map[string]any{"title": title})
}

// RemoveAttachment deletes one attachment and drops it from the cached note.
func (s *Notes) RemoveAttachment(ctx context.Context, c *collection.Collection[models.Note], noteID, attachmentID int64) error {
	if err := s.attachments.Delete(ctx, attachmentID); err != nil {
		return fmt.Errorf("remove attachment %d: %w", attachmentID, err)
	}
	for _, n := range c.Items() {
		if n.ID != noteID {
			continue
		}
		n.Attachments = slices.DeleteFunc(slices.Clone(n.Attachments), func(a models.NoteAttachment) bool {
			return a.ID == attachmentID
		})
		c.Put(n)
	}
	return nil
}

// Export renders a note as markdown with a YAML header.
func Export(n models.Note) ([]byte, error) {
	fm := editor.Frontmatter{
		ID:    n.ID,
		Title: n.Title,
		Type:  string(n.NoteType),
		Job:   n.Job,
		Task:  n.Task,
	}
	if n.Date != nil {
		fm.Date = *n.Date
	}
	return editor.Format(fm, n.Content)
}

// Import reads an exported (or plain) markdown file into a note payload.
// Missing title and date fall back to the file name.
func Import(filename string, content []byte) (NoteInput, error) {
	fm, body, err := editor.Parse(content)
	if err != nil {
		return NoteInput{}, err
	}

	in := NoteInput{
		NoteType: models.NoteType(fm.Type),
		Job:      fm.Job,
		Task:     fm.Task,
		Title:    fm.Title,
		Content:  body,
	}
	date := fm.Date
	if date == "" {
		date = editor.DateFromFilename(filename)
	}
	if date != "" {
		in.Date = &date
	}
	if in.Title == "" {
		in.Title = editor.Heading(body)
	}
	if in.Title == "" {
		in.Title = editor.TitleFromFilename(filename)
	}
	return in, in.Validate()
}
