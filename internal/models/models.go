package models

import (
	"fmt"
	"net/url"
	"path"
	"strings"
)

// TaskStatus mirrors the backend's status choices.
type TaskStatus string

const (
	StatusTodo       TaskStatus = "todo"
	StatusInProgress TaskStatus = "in_progress"
	StatusDone       TaskStatus = "done"
)

// Statuses lists task statuses in board order.
var Statuses = []TaskStatus{StatusTodo, StatusInProgress, StatusDone}

// Next returns the status after s, wrapping from done back to todo.
func (s TaskStatus) Next() TaskStatus {
	for i, st := range Statuses {
		if st == s {
			return Statuses[(i+1)%len(Statuses)]
		}
	}
	return StatusTodo
}

// Label is the human name of the status.
func (s TaskStatus) Label() string {
	switch s {
	case StatusInProgress:
		return "In progress"
	case StatusDone:
		return "Done"
	default:
		return "To do"
	}
}

// ParseStatus accepts the backend values plus a few shorthands.
func ParseStatus(s string) (TaskStatus, bool) {
	switch strings.ToLower(strings.ReplaceAll(strings.TrimSpace(s), "-", "_")) {
	case "todo", "to_do":
		return StatusTodo, true
	case "in_progress", "doing", "wip":
		return StatusInProgress, true
	case "done", "complete", "completed":
		return StatusDone, true
	}
	return "", false
}

type TaskTag struct {
	ID        int64  `json:"id"`
	Name      string `json:"name"`
	Color     string `json:"color,omitempty"`
	CreatedAt string `json:"created_at,omitempty"`
	UpdatedAt string `json:"updated_at,omitempty"`
}

type Task struct {
	ID          int64      `json:"id"`
	Title       string     `json:"title"`
	Description string     `json:"description"`
	Status      TaskStatus `json:"status"`
	DueDate     *string    `json:"due_date"`
	Tags        []TaskTag  `json:"tags,omitempty"`
	TagIDs      []int64    `json:"tag_ids,omitempty"`
	CreatedAt   string     `json:"created_at,omitempty"`
	UpdatedAt   string     `json:"updated_at,omitempty"`
}

// Due returns the due date or "".
func (t Task) Due() string {
	if t.DueDate == nil {
		return ""
	}
	return *t.DueDate
}

// TagNames returns the names of the task's tags.
func (t Task) TagNames() []string {
	names := make([]string, 0, len(t.Tags))
	for _, tag := range t.Tags {
		names = append(names, tag.Name)
	}
	return names
}

type NoteType string

const (
	NoteDaily   NoteType = "daily"
	NoteGeneral NoteType = "general"
)

type NoteAttachment struct {
	ID        int64  `json:"id"`
	Note      int64  `json:"note"`
	File      string `json:"file"`
	CreatedAt string `json:"created_at,omitempty"`
}

// Name is the file's base name; File is usually a media URL.
func (a NoteAttachment) Name() string {
	name := a.File
	if u, err := url.Parse(a.File); err == nil && u.Path != "" {
		name = u.Path
	}
	return path.Base(name)
}

type Note struct {
	ID          int64            `json:"id"`
	NoteType    NoteType         `json:"note_type"`
	Date        *string          `json:"date"`
	Job         string           `json:"job"`
	Task        *int64           `json:"task"`
	Title       string           `json:"title"`
	Content     string           `json:"content"`
	Attachments []NoteAttachment `json:"attachments,omitempty"`
	CreatedAt   string           `json:"created_at,omitempty"`
	UpdatedAt   string           `json:"updated_at,omitempty"`
}

// When returns the note's date, falling back to its creation time.
func (n Note) When() string {
	if n.Date != nil && *n.Date != "" {
		return *n.Date
	}
	return n.CreatedAt
}

type CalendarEvent struct {
	ID          int64  `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description"`
	Start       string `json:"start"`
	End         string `json:"end"`
	Location    string `json:"location"`
	Source      string `json:"source,omitempty"`
}

type Contact struct {
	ID           int64  `json:"id"`
	Name         string `json:"name"`
	Email        string `json:"email"`
	Phone        string `json:"phone"`
	Organization string `json:"organization"`
	Notes        string `json:"notes"`
}

type EmailAccount struct {
	ID           int64  `json:"id"`
	Label        string `json:"label"`
	Provider     string `json:"provider"`
	EmailAddress string `json:"email_address"`
	IMAPHost     string `json:"imap_host,omitempty"`
	IMAPPort     int    `json:"imap_port,omitempty"`
	IMAPUseSSL   bool   `json:"imap_use_ssl,omitempty"`
	SMTPHost     string `json:"smtp_host,omitempty"`
	SMTPPort     int    `json:"smtp_port,omitempty"`
	SMTPUseTLS   bool   `json:"smtp_use_tls,omitempty"`
	Username     string `json:"username,omitempty"`
	// Password is write-only; the backend never returns it.
	Password string `json:"password,omitempty"`
	IsActive bool   `json:"is_active"`
}

type EmailMessage struct {
	ID             int64  `json:"id"`
	Account        int64  `json:"account"`
	AccountLabel   string `json:"account_label"`
	AccountEmail   string `json:"account_email"`
	ExternalID     string `json:"external_id"`
	Folder         string `json:"folder"`
	Subject        string `json:"subject"`
	FromEmail      string `json:"from_email"`
	ToEmails       string `json:"to_emails"`
	CCEmails       string `json:"cc_emails"`
	BCCEmails      string `json:"bcc_emails"`
	BodyText       string `json:"body_text"`
	BodyHTML       string `json:"body_html"`
	SentAt         string `json:"sent_at"`
	IsRead         bool   `json:"is_read"`
	IsStarred      bool   `json:"is_starred"`
	HasAttachments bool   `json:"has_attachments"`
}

type SyncResult struct {
	Status   string `json:"status"`
	Imported int    `json:"imported"`
	Detail   string `json:"detail,omitempty"`
}

// AnalysisResult holds what the backend created from an email.
type AnalysisResult struct {
	Tasks []Task `json:"tasks"`
	Notes []Note `json:"notes"`
}

type Profile struct {
	ID             int64  `json:"id"`
	User           int64  `json:"user"`
	Timezone       string `json:"timezone"`
	DailyStartHour int    `json:"daily_start_hour"`
	DailyEndHour   int    `json:"daily_end_hour"`
}

// Hours renders the daily window, e.g. "08:00-18:00".
func (p Profile) Hours() string {
	return fmt.Sprintf("%02d:00-%02d:00", p.DailyStartHour, p.DailyEndHour)
}

type User struct {
	ID        int64  `json:"id"`
	Username  string `json:"username"`
	Email     string `json:"email"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
}

// DisplayName prefers the full name over the username.
func (u User) DisplayName() string {
	name := strings.TrimSpace(u.FirstName + " " + u.LastName)
	if name == "" {
		return u.Username
	}
	return name
}
