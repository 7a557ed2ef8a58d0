package messages

import tea "github.com/charmbracelet/bubbletea"

// ViewType identifies one page of the application
type ViewType int

const (
	ViewTasks ViewType = iota
	ViewNotes
	ViewEvents
	ViewContacts
	ViewMail
)

// Views lists the pages in tab order.
var Views = []ViewType{ViewTasks, ViewNotes, ViewEvents, ViewContacts, ViewMail}

func (v ViewType) String() string {
	switch v {
	case ViewNotes:
		return "Notes"
	case ViewEvents:
		return "Calendar"
	case ViewContacts:
		return "Contacts"
	case ViewMail:
		return "Mail"
	default:
		return "Tasks"
	}
}

// ParseView maps a configured view name to a page; unknown names give Tasks.
func ParseView(name string) ViewType {
	switch name {
	case "notes":
		return ViewNotes
	case "events":
		return ViewEvents
	case "contacts":
		return ViewContacts
	case "mail":
		return ViewMail
	}
	return ViewTasks
}

// SwitchViewMsg is sent by child views to switch to a different view
type SwitchViewMsg struct {
	View ViewType
}

// SessionExpiredMsg reports that the server rejected the session; the app
// returns to the login form.
type SessionExpiredMsg struct{}

// LoggedInMsg is sent once a login succeeded.
type LoggedInMsg struct {
	Name string
}

// StatusMsg shows a transient line in the status bar.
type StatusMsg struct {
	Text  string
	Error bool
}

// DataRefreshMsg asks the active page to reload.
type DataRefreshMsg struct{}

func SwitchView(v ViewType) tea.Cmd {
	return func() tea.Msg {
		return SwitchViewMsg{View: v}
	}
}

func Status(text string, isErr bool) tea.Cmd {
	return func() tea.Msg {
		return StatusMsg{Text: text, Error: isErr}
	}
}

func SessionExpired() tea.Msg {
	return SessionExpiredMsg{}
}
