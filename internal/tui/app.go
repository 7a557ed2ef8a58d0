package tui

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"hub/internal/api"
	"hub/internal/config"
	"hub/internal/logs"
	"hub/internal/models"
	"hub/internal/service"
	"hub/internal/tui/list"
	"hub/internal/tui/login"
	"hub/internal/tui/messages"
	notesview "hub/internal/tui/notes"
	"hub/internal/tui/shared"
	"hub/internal/tui/theme"
)

// pollMsg fires every poll interval for the session generation gen.
type pollMsg struct{ gen int }

// unreadTickMsg fires every unread interval for the session generation gen.
type unreadTickMsg struct{ gen int }

type unreadMsg struct {
	gen   int
	count int
	err   error
}

type accountsMsg struct {
	gen      int
	accounts []models.EmailAccount
	err      error
}

type syncedMsg struct {
	gen      int
	imported int
	err      error
}

type loggedOutMsg struct{}

// AppModel is the root model that dispatches to child views
type AppModel struct {
	cfg *config.Config
	hub *service.Hub
	now func() time.Time

	login    login.Model
	loggedIn bool
	user     string

	tasks    *list.Page[models.Task]
	notes    *list.Page[models.Note]
	events   *list.Page[models.CalendarEvent]
	contacts *list.Page[models.Contact]
	mail     *list.Page[models.EmailMessage]
	pages    map[messages.ViewType]page

	currentView messages.ViewType
	editor      *notesview.EditorModel
	noteTask    string

	// gen changes on every login and logout; ticks and results carrying
	// another generation are dropped.
	gen        int
	unread     int
	haveUnread bool
	accounts   []models.EmailAccount
	account    int // index into accounts, -1 for all

	status    string
	statusErr bool
	showHelp  bool
	width     int
	height    int
	ready     bool
}

// NewAppModel creates the root application model
func NewAppModel(cfg *config.Config, hub *service.Hub) *AppModel {
	m := &AppModel{
		cfg:         cfg,
		hub:         hub,
		now:         time.Now,
		login:       login.New(hub.Client),
		loggedIn:    hub.Client.Session().Authenticated(),
		currentView: messages.ParseView(cfg.DefaultView),
		account:     -1,
	}

	genFn := func() int { return m.gen }
	m.tasks = newTaskPage(hub.Tasks, m.clock)
	m.notes = newNotePage(hub.Notes, m.clock)
	m.events = newEventPage(hub.Events, m.clock)
	m.contacts = newContactPage(hub.Contacts, m.clock)
	m.mail = newMailPage(hub.Mail, genFn, m.clock)
	m.pages = map[messages.ViewType]page{
		messages.ViewTasks:    m.tasks,
		messages.ViewNotes:    m.notes,
		messages.ViewEvents:   m.events,
		messages.ViewContacts: m.contacts,
		messages.ViewMail:     m.mail,
	}
	return m
}

func (m *AppModel) clock() time.Time {
	return m.now()
}

func (m *AppModel) active() page {
	return m.pages[m.currentView]
}

func (m *AppModel) Init() tea.Cmd {
	if !m.loggedIn {
		return m.login.Init()
	}
	return m.startSession()
}

// startSession loads the current page and starts both polls.
func (m *AppModel) startSession() tea.Cmd {
	m.gen++
	return tea.Batch(
		m.active().Reload(),
		m.schedulePoll(),
		m.checkUnread(),
		m.scheduleUnread(),
		m.loadAccounts(),
	)
}

// endSession drops everything tied to the old session.
func (m *AppModel) endSession() {
	m.gen++
	m.loggedIn = false
	m.editor = nil
	m.showHelp = false
	m.haveUnread = false
	m.accounts = nil
	m.account = -1
	m.noteTask = ""
	m.status = ""
	for _, p := range m.pages {
		p.Reset()
	}
	m.hub.Notes.ForTask(m.notes.Collection(), 0)
	m.hub.Mail.UseAccount(m.mail.Collection(), 0)
}

func (m *AppModel) schedulePoll() tea.Cmd {
	gen := m.gen
	return tea.Tick(m.cfg.PollInterval, func(time.Time) tea.Msg { return pollMsg{gen: gen} })
}

func (m *AppModel) scheduleUnread() tea.Cmd {
	gen := m.gen
	return tea.Tick(m.cfg.UnreadInterval, func(time.Time) tea.Msg { return unreadTickMsg{gen: gen} })
}

func (m *AppModel) checkUnread() tea.Cmd {
	gen, mail := m.gen, m.hub.Mail
	return func() tea.Msg {
		n, err := mail.UnreadCount(context.Background(), 0)
		return unreadMsg{gen: gen, count: n, err: err}
	}
}

func (m *AppModel) loadAccounts() tea.Cmd {
	gen, mail := m.gen, m.hub.Mail
	return func() tea.Msg {
		accounts, err := mail.Accounts(context.Background())
		return accountsMsg{gen: gen, accounts: accounts, err: err}
	}
}

func (m *AppModel) setStatus(text string, isErr bool) {
	m.status = text
	m.statusErr = isErr
}

func (m *AppModel) contentHeight() int {
	// tab bar (2) and status bar (2)
	return max(1, m.height-4)
}

func (m *AppModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.ready = true
		m.login.SetSize(msg.Width, msg.Height)
		for _, p := range m.pages {
			p.SetSize(msg.Width, m.contentHeight())
		}
		if m.editor != nil {
			m.editor.SetSize(msg.Width, m.contentHeight())
		}
		return m, nil

	case messages.LoggedInMsg:
		m.loggedIn = true
		m.user = msg.Name
		m.setStatus("Logged in as "+msg.Name+".", false)
		logs.Logger.WithField("user", msg.Name).Info("Session started")
		return m, m.startSession()

	case messages.SessionExpiredMsg:
		if !m.loggedIn {
			return m, nil
		}
		logs.Logger.Info("Session expired")
		m.endSession()
		m.login.Expired()
		return m, m.login.Init()

	case loggedOutMsg:
		m.endSession()
		m.user = ""
		return m, m.login.Init()

	case pollMsg:
		if msg.gen != m.gen || !m.loggedIn {
			return m, nil
		}
		return m, tea.Batch(m.active().Reload(), m.schedulePoll())

	case unreadTickMsg:
		if msg.gen != m.gen || !m.loggedIn {
			return m, nil
		}
		return m, tea.Batch(m.checkUnread(), m.scheduleUnread())

	case unreadMsg:
		if msg.gen != m.gen {
			return m, nil
		}
		if msg.err != nil {
			logs.Logger.WithError(msg.err).Warn("Unread count failed")
			return m, m.escalate(msg.err)
		}
		m.unread, m.haveUnread = msg.count, true
		return m, nil

	case accountsMsg:
		if msg.gen != m.gen {
			return m, nil
		}
		if msg.err != nil {
			logs.Logger.WithError(msg.err).Warn("Loading mail accounts failed")
			return m, m.escalate(msg.err)
		}
		m.accounts = msg.accounts
		return m, nil

	case syncedMsg:
		if msg.gen != m.gen {
			return m, nil
		}
		if msg.err != nil {
			var syncErr *service.SyncError
			if errors.As(msg.err, &syncErr) {
				m.setStatus("Sync failed: "+syncErr.Detail, true)
				return m, nil
			}
			m.setStatus("Sync failed: "+api.UserMessage(msg.err), true)
			return m, m.escalate(msg.err)
		}
		m.setStatus(fmt.Sprintf("Sync finished: %d new message(s).", msg.imported), false)
		return m, tea.Batch(m.mail.Reload(), m.checkUnread())

	case analyzedMsg:
		if msg.gen != m.gen {
			return m, nil
		}
		if msg.err != nil {
			m.mail.SetStatus("")
			m.setStatus("Analysis failed: "+api.UserMessage(msg.err), true)
			return m, m.escalate(msg.err)
		}
		m.tasks.Collection().Put(msg.result.Tasks...)
		m.notes.Collection().Put(msg.result.Notes...)
		m.tasks.Refresh()
		m.notes.Refresh()
		m.mail.SetStatus(fmt.Sprintf("Created %d task(s) and %d note(s).", len(msg.result.Tasks), len(msg.result.Notes)))
		return m, nil

	case openNoteMsg:
		m.editor = notesview.NewEditor(msg.note, m.hub.Notes, m.notes.Collection())
		m.editor.SetSize(m.width, m.contentHeight())
		return m, m.editor.Init()

	case notesview.ClosedMsg:
		m.editor = nil
		m.notes.Refresh()
		return m, nil

	case taskNotesMsg:
		m.noteTask = msg.task.Title
		m.hub.Notes.ForTask(m.notes.Collection(), msg.task.ID)
		m.currentView = messages.ViewNotes
		m.setStatus("Notes for \""+msg.task.Title+"\" (A: all notes)", false)
		return m, m.notes.Reload()

	case messages.SwitchViewMsg:
		return m, m.switchView(msg.View)

	case messages.StatusMsg:
		m.setStatus(msg.Text, msg.Error)
		return m, nil

	case messages.DataRefreshMsg:
		return m, m.active().Reload()

	case tea.KeyMsg:
		return m, m.handleKey(msg)
	}

	// Everything else (async results, cursor blinks, modal answers) goes to
	// whoever may own it; pages ignore what is not theirs.
	var cmds []tea.Cmd
	if !m.loggedIn {
		var cmd tea.Cmd
		m.login, cmd = m.login.Update(msg)
		cmds = append(cmds, cmd)
	}
	if m.editor != nil {
		cmds = append(cmds, m.editor.Update(msg))
	}
	for _, v := range messages.Views {
		cmds = append(cmds, m.pages[v].Update(msg))
	}
	return m, tea.Batch(cmds...)
}

// escalate turns an expired session into a return to the login form.
func (m *AppModel) escalate(err error) tea.Cmd {
	if errors.Is(err, api.ErrUnauthorized) {
		return messages.SessionExpired
	}
	return nil
}

// quit detaches every page before the program exits.
func (m *AppModel) quit() tea.Cmd {
	m.gen++
	for _, p := range m.pages {
		p.Close()
	}
	return tea.Quit
}

func (m *AppModel) switchView(v messages.ViewType) tea.Cmd {
	m.currentView = v
	if p := m.active(); !p.Loaded() {
		return p.Reload()
	}
	return nil
}

func (m *AppModel) handleKey(msg tea.KeyMsg) tea.Cmd {
	if msg.String() == "ctrl+c" {
		return m.quit()
	}

	if !m.loggedIn {
		var cmd tea.Cmd
		m.login, cmd = m.login.Update(msg)
		return cmd
	}

	if m.editor != nil {
		return m.editor.Update(msg)
	}

	if m.showHelp {
		m.showHelp = false
		return nil
	}

	p := m.active()
	if p.Modal() {
		return p.Update(msg)
	}

	m.status = ""
	switch key := msg.String(); key {
	case "q":
		return m.quit()
	case "1", "2", "3", "4", "5":
		return m.switchView(messages.Views[int(key[0]-'1')])
	case "tab":
		return m.switchView(messages.Views[(int(m.currentView)+1)%len(messages.Views)])
	case "shift+tab":
		return m.switchView(messages.Views[(int(m.currentView)+len(messages.Views)-1)%len(messages.Views)])
	case "?":
		m.showHelp = true
		return nil
	case "L":
		client := m.hub.Client
		return func() tea.Msg {
			if err := client.Logout(context.Background()); err != nil {
				logs.Logger.WithError(err).Warn("Logout failed")
			}
			return loggedOutMsg{}
		}
	case "A":
		switch m.currentView {
		case messages.ViewNotes:
			if m.noteTask != "" {
				m.noteTask = ""
				m.hub.Notes.ForTask(m.notes.Collection(), 0)
				return m.notes.Reload()
			}
		case messages.ViewMail:
			return m.cycleAccount()
		}
	case "S":
		if m.currentView == messages.ViewMail {
			return m.syncMail()
		}
	}
	return p.Update(msg)
}

func (m *AppModel) cycleAccount() tea.Cmd {
	if len(m.accounts) == 0 {
		m.setStatus("No mail accounts.", true)
		return nil
	}
	m.account++
	if m.account >= len(m.accounts) {
		m.account = -1
	}

	var id int64
	name := "all accounts"
	if m.account >= 0 {
		id = m.accounts[m.account].ID
		name = m.accounts[m.account].Label
	}
	m.hub.Mail.UseAccount(m.mail.Collection(), id)
	m.setStatus("Mail: "+name, false)
	return m.mail.Reload()
}

// syncMail syncs the chosen account, or every active account.
func (m *AppModel) syncMail() tea.Cmd {
	var ids []int64
	if m.account >= 0 {
		ids = append(ids, m.accounts[m.account].ID)
	} else {
		for _, a := range m.accounts {
			if a.IsActive {
				ids = append(ids, a.ID)
			}
		}
	}
	if len(ids) == 0 {
		m.setStatus("No mail accounts to sync.", true)
		return nil
	}

	m.setStatus("Syncing...", false)
	gen, mail := m.gen, m.hub.Mail
	return func() tea.Msg {
		total := 0
		for _, id := range ids {
			result, err := mail.Sync(context.Background(), id)
			if err != nil {
				return syncedMsg{gen: gen, imported: total, err: err}
			}
			total += result.Imported
		}
		return syncedMsg{gen: gen, imported: total}
	}
}

func (m *AppModel) View() string {
	if !m.ready {
		return "Loading..."
	}
	if !m.loggedIn {
		return m.login.View()
	}
	if m.showHelp {
		return shared.RenderHelpPopup(m.helpSections(), m.width, m.height)
	}

	var content string
	if m.editor != nil {
		content = m.editor.View()
	} else {
		content = m.active().View()
	}
	content = shared.FitHeight(content, m.contentHeight())

	return lipgloss.JoinVertical(lipgloss.Left, m.renderTabs(), content, m.renderStatusBar())
}

func (m *AppModel) renderTabs() string {
	var tabs []string
	for i, v := range messages.Views {
		label := fmt.Sprintf("%d %s", i+1, v)
		style := theme.TabInactive
		if v == m.currentView {
			style = theme.TabActive
		}
		tab := style.Render(label)
		if v == messages.ViewMail && m.haveUnread && m.unread > 0 {
			tab += " " + theme.Badge.Render(fmt.Sprint(m.unread))
		}
		tabs = append(tabs, tab)
	}

	left := strings.Join(tabs, "   ")
	right := theme.Muted.Render(m.user)
	gap := max(1, m.width-lipgloss.Width(left)-lipgloss.Width(right)-2)
	return theme.TabBar.Width(m.width).Render(left + strings.Repeat(" ", gap) + right)
}

func (m *AppModel) renderStatusBar() string {
	var text string
	switch {
	case m.status != "" && m.statusErr:
		text = theme.Error.Render(m.status)
	case m.status != "":
		text = theme.Ok.Render(m.status)
	case m.editor != nil:
		text = theme.HelpHint.Render("ctrl+s: save  esc: close")
	default:
		text = theme.HelpHint.Render(m.active().Hints() + "  ?:help  q:quit")
	}
	return theme.StatusBar.Width(m.width).Render(text)
}

func (m *AppModel) helpSections() []shared.HelpSection {
	return []shared.HelpSection{
		{Title: "Global", Binds: []shared.HelpBind{
			{Key: "1-5 / tab", Desc: "Switch page"},
			{Key: "L", Desc: "Log out"},
			{Key: "?", Desc: "Show this help"},
			{Key: "q", Desc: "Quit"},
			{Key: "ctrl+c", Desc: "Force quit"},
		}},
		{Title: "Lists", Binds: []shared.HelpBind{
			{Key: "j / k", Desc: "Move selection"},
			{Key: "h / l", Desc: "Previous / next page"},
			{Key: "/", Desc: "Search"},
			{Key: "g", Desc: "Cycle grouping (none, day, week, month)"},
			{Key: "w", Desc: "Cycle window (all, day, month, year)"},
			{Key: "enter", Desc: "Open"},
			{Key: "n / d", Desc: "New / delete"},
			{Key: "r", Desc: "Reload"},
		}},
		{Title: "Tasks", Binds: []shared.HelpBind{
			{Key: "space", Desc: "Advance status"},
			{Key: "s", Desc: "Filter by status"},
			{Key: "D", Desc: "Set due date"},
			{Key: "N", Desc: "Notes for the task"},
		}},
		{Title: "Notes", Binds: []shared.HelpBind{
			{Key: "t", Desc: "Filter by type"},
			{Key: "v", Desc: "Preview rendered markdown"},
			{Key: "R", Desc: "Rename"},
			{Key: "A", Desc: "Show all notes"},
			{Key: "ctrl+s", Desc: "Save (editor)"},
		}},
		{Title: "Mail", Binds: []shared.HelpBind{
			{Key: "u", Desc: "Filter read / unread"},
			{Key: "a", Desc: "Analyze message"},
			{Key: "A", Desc: "Cycle account"},
			{Key: "S", Desc: "Sync"},
		}},
	}
}
