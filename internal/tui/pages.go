package tui

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"hub/internal/editor"
	"hub/internal/models"
	"hub/internal/service"
	"hub/internal/tui/list"
	"hub/internal/tui/shared"
	"hub/internal/tui/theme"
	"hub/internal/view"
)

// page is what the app needs from a list.Page of any domain.
type page interface {
	Name() string
	SetSize(width, height int)
	Modal() bool
	Loaded() bool
	Reload() tea.Cmd
	Refresh()
	Reset()
	Close()
	Update(msg tea.Msg) tea.Cmd
	View() string
	Hints() string
}

// openNoteMsg asks the app to open the note editor.
type openNoteMsg struct {
	note models.Note
}

// taskNotesMsg asks the app to show the notes attached to a task.
type taskNotesMsg struct {
	task models.Task
}

// analyzedMsg reports what the backend created from an email.
type analyzedMsg struct {
	gen    int
	result models.AnalysisResult
	err    error
}

func newTaskPage(svc *service.Tasks, now func() time.Time) *list.Page[models.Task] {
	hooks := list.Hooks[models.Task]{
		Render: func(t models.Task, selected bool, width int) string {
			return shared.StyledTaskLine(t, now().Location())
		},
		Open: func(p *list.Page[models.Task], t models.Task) tea.Cmd {
			var b strings.Builder
			fmt.Fprintf(&b, "Status: %s\n", t.Status.Label())
			if due := t.Due(); due != "" {
				fmt.Fprintf(&b, "Due:    %s\n", due)
			}
			if tags := t.TagNames(); len(tags) > 0 {
				fmt.Fprintf(&b, "Tags:   %s\n", strings.Join(tags, ", "))
			}
			if t.Description != "" {
				b.WriteString("\n" + t.Description + "\n")
			}
			p.ShowDetail(t.Title, b.String())
			return nil
		},
		CreatePrompt: "New task",
		Create: func(p *list.Page[models.Task], title string) tea.Cmd {
			return p.Run("Task added.", false, func(ctx context.Context) error {
				_, err := svc.Create(ctx, p.Collection(), service.TaskInput{Title: title})
				return err
			})
		},
		Describe: func(t models.Task) string { return t.Title },
		Group:    view.GroupDay,
		Facets: []list.Facet{
			{Key: "s", Name: "status", Label: "Status", Values: []string{"", "todo", "in_progress", "done"}},
		},
		Actions: []list.Action[models.Task]{
			{Key: " ", Desc: "advance", Run: func(p *list.Page[models.Task], t models.Task) tea.Cmd {
				label := t.Status.Next().Label()
				return p.Run("Moved to "+label+".", false, func(ctx context.Context) error {
					_, err := svc.Advance(ctx, p.Collection(), t)
					return err
				})
			}},
			{Key: "D", Desc: "due date", Run: func(p *list.Page[models.Task], t models.Task) tea.Cmd {
				return p.Prompt("Due date", "yyyy-MM-dd (empty clears)", t.Due(), shared.ValidateDateFormat, func(v string) tea.Cmd {
					var due *string
					if v = strings.TrimSpace(v); v != "" {
						due = &v
					}
					return p.Run("Due date updated.", false, func(ctx context.Context) error {
						_, err := svc.SetDueDate(ctx, p.Collection(), t.ID, due)
						return err
					})
				})
			}},
			{Key: "N", Desc: "notes", Run: func(p *list.Page[models.Task], t models.Task) tea.Cmd {
				return func() tea.Msg { return taskNotesMsg{task: t} }
			}},
		},
	}
	return list.New("tasks", svc.NewCollection(), svc.View, hooks, now)
}

func newNotePage(svc *service.Notes, now func() time.Time) *list.Page[models.Note] {
	hooks := list.Hooks[models.Note]{
		Render: func(n models.Note, selected bool, width int) string {
			line := theme.Bold.Render(n.Title)
			if when := view.FormatWhen(n.When(), now().Location()); when != "" {
				line += theme.Muted.Render("  " + when)
			}
			if n.Job != "" {
				line += " " + theme.Tag.Render("@"+n.Job)
			}
			if preview := editor.Preview(n.Content, max(10, width-lipgloss.Width(line)-4)); preview != "" {
				line += theme.Muted.Render("  " + preview)
			}
			return line
		},
		Open: func(p *list.Page[models.Note], n models.Note) tea.Cmd {
			return func() tea.Msg { return openNoteMsg{note: n} }
		},
		CreatePrompt: "New note title",
		Create: func(p *list.Page[models.Note], title string) tea.Cmd {
			return p.Run("Note added.", false, func(ctx context.Context) error {
				_, err := svc.Create(ctx, p.Collection(), service.NoteInput{
					Title:    title,
					NoteType: models.NoteGeneral,
					Content:  "# " + title + "\n",
				})
				return err
			})
		},
		Describe: func(n models.Note) string { return n.Title },
		Group:    view.GroupMonth,
		Facets: []list.Facet{
			{Key: "t", Name: "type", Label: "Type", Values: []string{"", string(models.NoteDaily), string(models.NoteGeneral)}},
		},
		Actions: []list.Action[models.Note]{
			{Key: "v", Desc: "preview", Run: func(p *list.Page[models.Note], n models.Note) tea.Cmd {
				p.ShowDetail(n.Title, editor.RenderTerminal(n.Content, p.Width()-2))
				return nil
			}},
			{Key: "R", Desc: "rename", Run: func(p *list.Page[models.Note], n models.Note) tea.Cmd {
				return p.Prompt("Title", "", n.Title, nil, func(v string) tea.Cmd {
					return p.Run("Renamed.", false, func(ctx context.Context) error {
						_, err := svc.Rename(ctx, p.Collection(), n.ID, v)
						return err
					})
				})
			}},
		},
	}
	return list.New("notes", svc.NewCollection(), svc.View, hooks, now)
}

func newEventPage(svc *service.Events, now func() time.Time) *list.Page[models.CalendarEvent] {
	detail := func(p *list.Page[models.CalendarEvent], e models.CalendarEvent) tea.Cmd {
		loc := now().Location()
		var b strings.Builder
		fmt.Fprintf(&b, "Start:    %s\n", view.FormatWhen(e.Start, loc))
		if e.End != "" && e.End != e.Start {
			fmt.Fprintf(&b, "End:      %s\n", view.FormatWhen(e.End, loc))
		}
		if e.Location != "" {
			fmt.Fprintf(&b, "Location: %s\n", e.Location)
		}
		if e.Source != "" {
			fmt.Fprintf(&b, "Calendar: %s\n", e.Source)
		}
		if e.Description != "" {
			b.WriteString("\n" + e.Description + "\n")
		}
		p.ShowDetail(e.Title, b.String())
		return nil
	}

	hooks := list.Hooks[models.CalendarEvent]{
		Render: func(e models.CalendarEvent, selected bool, width int) string {
			start := "all day"
			if t, ok := view.ParseWhen(e.Start, now().Location()); ok && len(strings.TrimSpace(e.Start)) > len("2006-01-02") {
				start = t.Format("15:04")
			}
			line := fmt.Sprintf("%-7s %s", start, theme.Bold.Render(e.Title))
			if e.Location != "" {
				line += theme.Location.Render("  @ " + e.Location)
			}
			return line
		},
		Open:         detail,
		CreatePrompt: "New event (start then title)",
		Create: func(p *list.Page[models.CalendarEvent], text string) tea.Cmd {
			start, title, _ := strings.Cut(strings.TrimSpace(text), " ")
			return p.Run("Event added.", false, func(ctx context.Context) error {
				_, err := svc.Create(ctx, p.Collection(), models.CalendarEvent{Title: strings.TrimSpace(title), Start: start})
				return err
			})
		},
		Describe: func(e models.CalendarEvent) string { return e.Title },
		Group:    view.GroupDay,
	}
	return list.New("events", svc.NewCollection(), svc.View, hooks, now)
}

func newContactPage(svc *service.Contacts, now func() time.Time) *list.Page[models.Contact] {
	hooks := list.Hooks[models.Contact]{
		Render: func(c models.Contact, selected bool, width int) string {
			line := theme.Bold.Render(c.Name)
			var meta []string
			for _, v := range []string{c.Email, c.Phone, c.Organization} {
				if v != "" {
					meta = append(meta, v)
				}
			}
			if len(meta) > 0 {
				line += theme.Muted.Render("  " + strings.Join(meta, " | "))
			}
			return line
		},
		Open: func(p *list.Page[models.Contact], c models.Contact) tea.Cmd {
			var b strings.Builder
			for _, row := range [][2]string{{"Email", c.Email}, {"Phone", c.Phone}, {"Organization", c.Organization}} {
				if row[1] != "" {
					fmt.Fprintf(&b, "%-13s %s\n", row[0]+":", row[1])
				}
			}
			if c.Notes != "" {
				b.WriteString("\n" + c.Notes + "\n")
			}
			p.ShowDetail(c.Name, b.String())
			return nil
		},
		CreatePrompt: "New contact name",
		Create: func(p *list.Page[models.Contact], name string) tea.Cmd {
			return p.Run("Contact added.", false, func(ctx context.Context) error {
				_, err := svc.Create(ctx, p.Collection(), models.Contact{Name: name})
				return err
			})
		},
		Describe: func(c models.Contact) string { return c.Name },
	}
	return list.New("contacts", svc.NewCollection(), svc.View, hooks, now)
}

// newMailPage builds the inbox. gen reports the app's session generation
// so analysis results from a previous session are dropped.
func newMailPage(svc *service.Mail, gen func() int, now func() time.Time) *list.Page[models.EmailMessage] {
	hooks := list.Hooks[models.EmailMessage]{
		Render: func(m models.EmailMessage, selected bool, width int) string {
			mark, subject := " ", m.Subject
			if !m.IsRead {
				mark = "*"
				subject = theme.Unread.Render(subject)
			}
			if subject == "" {
				subject = theme.Muted.Render("(no subject)")
			}
			from := shared.Ellipsize(m.FromEmail, 24)
			when := ""
			if t, ok := view.ParseWhen(m.SentAt, now().Location()); ok {
				when = t.Format("15:04")
			}
			return fmt.Sprintf("%s %-5s %-24s %s", mark, when, from, subject)
		},
		Open: func(p *list.Page[models.EmailMessage], m models.EmailMessage) tea.Cmd {
			var b strings.Builder
			fmt.Fprintf(&b, "From:    %s\n", m.FromEmail)
			fmt.Fprintf(&b, "To:      %s\n", m.ToEmails)
			if m.CCEmails != "" {
				fmt.Fprintf(&b, "Cc:      %s\n", m.CCEmails)
			}
			if when := view.FormatWhen(m.SentAt, now().Location()); when != "" {
				fmt.Fprintf(&b, "Date:    %s\n", when)
			}
			fmt.Fprintf(&b, "Account: %s\n\n", accountName(m))
			b.WriteString(m.BodyText)
			p.ShowDetail(m.Subject, b.String())
			return nil
		},
		Group: view.GroupDay,
		Facets: []list.Facet{
			{Key: "u", Name: "read", Label: "Read", Values: []string{"", "false", "true"}},
		},
		Actions: []list.Action[models.EmailMessage]{
			{Key: "a", Desc: "analyze", Run: func(p *list.Page[models.EmailMessage], m models.EmailMessage) tea.Cmd {
				p.SetStatus("Analyzing...")
				g := gen()
				return func() tea.Msg {
					result, err := svc.Analyze(context.Background(), m.ID)
					return analyzedMsg{gen: g, result: result, err: err}
				}
			}},
		},
	}
	return list.New("mail", svc.NewCollection(), svc.View, hooks, now)
}

func accountName(m models.EmailMessage) string {
	switch {
	case m.AccountLabel != "" && m.AccountEmail != "":
		return m.AccountLabel + " <" + m.AccountEmail + ">"
	case m.AccountLabel != "":
		return m.AccountLabel
	case m.AccountEmail != "":
		return m.AccountEmail
	}
	return "#" + strconv.FormatInt(m.Account, 10)
}
