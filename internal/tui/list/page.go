package list

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"hub/internal/api"
	"hub/internal/collection"
	"hub/internal/logs"
	"hub/internal/tui/messages"
	"hub/internal/tui/shared"
	"hub/internal/tui/theme"
	"hub/internal/view"
)

var (
	groupModes = []view.GroupMode{view.GroupNone, view.GroupDay, view.GroupWeek, view.GroupMonth}
	windows    = []view.Window{view.WindowAll, view.WindowDay, view.WindowMonth, view.WindowYear}
)

// Facet is a categorical filter cycled with one key.
type Facet struct {
	Key    string
	Name   string // category name in the view config
	Label  string
	Values []string // Values[0] should be "" (no restriction)
}

// Action is a domain key binding run against the selected item.
type Action[T any] struct {
	Key  string
	Desc string
	Run  func(p *Page[T], item T) tea.Cmd
}

// Hooks adapt a Page to one domain.
type Hooks[T any] struct {
	// Render draws one row.
	Render func(item T, selected bool, width int) string
	// Open runs on enter; nil disables it.
	Open func(p *Page[T], item T) tea.Cmd
	// Create runs with the text typed after "n"; nil disables creation.
	Create       func(p *Page[T], text string) tea.Cmd
	CreatePrompt string
	// Describe names an item in the delete confirmation; nil disables delete.
	Describe func(item T) string
	// Group is the grouping a fresh page starts with.
	Group   view.GroupMode
	Facets  []Facet
	Actions []Action[T]
}

type mode int

const (
	modeNormal mode = iota
	modeSearch
	modePrompt
	modeConfirm
	modeDetail
)

// loadedMsg carries the outcome of a reload started at generation gen.
type loadedMsg struct {
	page string
	gen  int
	err  error
}

// resultMsg carries the outcome of a mutation or domain action.
type resultMsg struct {
	page   string
	gen    int
	status string
	err    error
	reload bool
}

// Page is one tab: a collection, a view model over it, and the keys that
// drive both.
type Page[T any] struct {
	name  string
	coll  *collection.Collection[T]
	cfg   view.Config[T]
	now   func() time.Time
	model *view.Model[T]
	hooks Hooks[T]

	gen     int
	loading bool
	err     string
	status  string

	mode        mode
	search      textinput.Model
	prompt      *shared.TextInputModel
	promptFn    func(string) tea.Cmd
	confirm     *shared.ConfirmationModal
	confirmFn   func() tea.Cmd
	facetValues map[string]int

	detailTitle string
	detail      []string
	detailTop   int
	detailID    int64
	detailOwned bool

	infoBar InfoBarModel
	width   int
	height  int
}

// New builds a page. The collection is owned by the page.
func New[T any](name string, coll *collection.Collection[T], cfg view.Config[T], hooks Hooks[T], now func() time.Time) *Page[T] {
	search := textinput.New()
	search.Prompt = "/ "
	search.Placeholder = "search"

	p := &Page[T]{
		name:        name,
		coll:        coll,
		cfg:         cfg,
		now:         now,
		hooks:       hooks,
		search:      search,
		facetValues: map[string]int{},
		infoBar:     NewInfoBar(),
		width:       80,
		height:      24,
	}
	p.model = p.newModel()
	return p
}

func (p *Page[T]) newModel() *view.Model[T] {
	m := view.NewModel(p.cfg)
	if p.now != nil {
		m.SetClock(p.now)
	}
	if p.hooks.Group != "" {
		m.SetGroupMode(p.hooks.Group)
	}
	return m
}

// Loaded reports whether the collection has been fetched at least once.
func (p *Page[T]) Loaded() bool {
	return p.coll.Loaded()
}

// Refresh rederives the view from the cached items, after the collection
// was changed by someone other than the page.
func (p *Page[T]) Refresh() {
	p.setItems()
}

// setItems rederives the view and leaves a detail view whose item is no
// longer selected.
func (p *Page[T]) setItems() {
	p.model.SetItems(p.coll.Items())
	if p.mode != modeDetail || !p.detailOwned {
		return
	}
	if id, ok := p.model.SelectedID(); !ok || id != p.detailID {
		p.closeDetail()
	}
}

func (p *Page[T]) closeDetail() {
	p.mode = modeNormal
	p.detail = nil
	p.detailOwned = false
}

func (p *Page[T]) Name() string                          { return p.name }
func (p *Page[T]) Collection() *collection.Collection[T] { return p.coll }
func (p *Page[T]) Model() *view.Model[T]                 { return p.model }
func (p *Page[T]) Width() int                            { return p.width }

// SetSize updates the dimensions
func (p *Page[T]) SetSize(width, height int) {
	p.width = width
	p.height = height
	p.infoBar.Width = width
	if p.prompt != nil {
		p.prompt.SetWidth(min(width, 70))
	}
}

// Modal reports whether the page is consuming every key.
func (p *Page[T]) Modal() bool {
	return p.mode != modeNormal
}

// Reload refetches the collection. Results from an older generation are
// dropped.
func (p *Page[T]) Reload() tea.Cmd {
	p.loading = true
	name, gen, coll := p.name, p.gen, p.coll
	return func() tea.Msg {
		_, err := coll.Reload(context.Background())
		return loadedMsg{page: name, gen: gen, err: err}
	}
}

// Reset forgets the cached items and anything in flight, after a logout.
func (p *Page[T]) Reset() {
	p.gen++
	p.loading = false
	p.err = ""
	p.status = ""
	p.mode = modeNormal
	p.prompt = nil
	p.confirm = nil
	p.coll.Clear()
	p.model = p.newModel()
	p.facetValues = map[string]int{}
	p.search.SetValue("")
}

// Close tears the page down; loads and mutations still in flight are
// discarded by the collection.
func (p *Page[T]) Close() {
	p.gen++
	p.loading = false
	p.coll.Detach()
}

// Run executes fn off the UI goroutine and reports status on success.
// With reload set the page refetches afterwards.
func (p *Page[T]) Run(status string, reload bool, fn func(ctx context.Context) error) tea.Cmd {
	name, gen := p.name, p.gen
	return func() tea.Msg {
		err := fn(context.Background())
		return resultMsg{page: name, gen: gen, status: status, err: err, reload: reload}
	}
}

// Prompt opens a one-line input; fn receives the confirmed value.
func (p *Page[T]) Prompt(label, placeholder, initial string, validate func(string) error, fn func(string) tea.Cmd) tea.Cmd {
	p.prompt = shared.NewTextInput(p.name, label, placeholder, validate)
	p.prompt.SetValue(initial)
	p.prompt.SetWidth(min(p.width, 70))
	p.promptFn = fn
	p.mode = modePrompt
	return textinput.Blink
}

// Confirm asks a yes/no question; fn runs on yes.
func (p *Page[T]) Confirm(question, details string, fn func() tea.Cmd) {
	p.confirm = shared.NewConfirmationModal(question, details, min(p.width-4, 60))
	p.confirmFn = fn
	p.mode = modeConfirm
}

// ShowDetail replaces the list with a scrollable text view until esc.
func (p *Page[T]) ShowDetail(title, body string) {
	p.detailTitle = title
	p.detail = strings.Split(strings.TrimRight(body, "\n"), "\n")
	p.detailTop = 0
	p.detailID, p.detailOwned = p.model.SelectedID()
	p.mode = modeDetail
}

// SetStatus shows a line under the list until the next key.
func (p *Page[T]) SetStatus(s string) {
	p.status = s
}

func (p *Page[T]) Update(msg tea.Msg) tea.Cmd {
	switch msg := msg.(type) {
	case loadedMsg:
		if msg.page != p.name || msg.gen != p.gen {
			return nil
		}
		p.loading = false
		if msg.err != nil {
			return p.fail("load", msg.err)
		}
		p.err = ""
		p.setItems()
		return nil

	case resultMsg:
		if msg.page != p.name || msg.gen != p.gen {
			return nil
		}
		if msg.err != nil {
			return p.fail("request", msg.err)
		}
		p.err = ""
		p.status = msg.status
		p.setItems()
		if msg.reload {
			return p.Reload()
		}
		return nil

	case messages.DataRefreshMsg:
		return p.Reload()

	case shared.TextInputResultMsg:
		if msg.Owner != p.name || p.mode != modePrompt {
			return nil
		}
		fn := p.promptFn
		p.prompt, p.promptFn, p.mode = nil, nil, modeNormal
		if msg.Cancelled || fn == nil {
			return nil
		}
		return fn(msg.Value)

	case shared.ConfirmationResultMsg:
		if msg.Owner != p.name || p.mode != modeConfirm {
			return nil
		}
		fn := p.confirmFn
		p.confirm, p.confirmFn, p.mode = nil, nil, modeNormal
		if !msg.Confirmed || fn == nil {
			return nil
		}
		return fn()

	case tea.KeyMsg:
		return p.handleKey(msg)
	}

	if p.mode == modePrompt && p.prompt != nil {
		return p.prompt.Update(msg)
	}
	if p.mode == modeSearch {
		var cmd tea.Cmd
		p.search, cmd = p.search.Update(msg)
		return cmd
	}
	return nil
}

// fail records err as page state. An expired session is escalated to the
// app.
func (p *Page[T]) fail(action string, err error) tea.Cmd {
	p.loading = false
	if errors.Is(err, collection.ErrStale) || errors.Is(err, collection.ErrDetached) {
		return nil
	}
	logs.Logger.WithError(err).WithField("page", p.name).Warnf("%s failed", action)
	p.err = api.UserMessage(err)
	if errors.Is(err, api.ErrUnauthorized) {
		return messages.SessionExpired
	}
	return nil
}

func (p *Page[T]) handleKey(msg tea.KeyMsg) tea.Cmd {
	switch p.mode {
	case modePrompt:
		return p.prompt.Update(msg)
	case modeConfirm:
		return p.confirm.Update(p.name, msg)
	case modeSearch:
		return p.handleSearchKey(msg)
	case modeDetail:
		return p.handleDetailKey(msg)
	}

	p.status = ""
	key := msg.String()

	switch key {
	case "j", "down":
		p.move(1)
	case "k", "up":
		p.move(-1)
	case "l", "right", "]":
		p.model.NextPage()
		p.selectFirstOnPage()
	case "h", "left", "[":
		p.model.PrevPage()
		p.selectFirstOnPage()
	case "/":
		p.mode = modeSearch
		p.search.SetValue(p.model.Filter().Search)
		p.search.CursorEnd()
		return p.search.Focus()
	case "esc":
		if p.model.Filter().Search != "" {
			p.model.SetSearch("")
		}
	case "g":
		p.model.SetGroupMode(next(groupModes, p.model.GroupMode()))
	case "w":
		p.model.SetWindow(next(windows, p.model.Filter().Window))
	case "r":
		return p.Reload()
	case "n":
		if p.hooks.Create != nil {
			prompt := p.hooks.CreatePrompt
			if prompt == "" {
				prompt = "New"
			}
			return p.Prompt(prompt, "", "", nil, func(v string) tea.Cmd {
				if strings.TrimSpace(v) == "" {
					return nil
				}
				return p.hooks.Create(p, v)
			})
		}
	case "d", "delete":
		if item, ok := p.model.Selected(); ok && p.hooks.Describe != nil {
			id := p.model.Config().ID(item)
			p.Confirm("Delete this item?", p.hooks.Describe(item), func() tea.Cmd {
				return p.Run("Deleted.", false, func(ctx context.Context) error {
					return p.coll.Delete(ctx, id)
				})
			})
		}
	case "enter":
		if item, ok := p.model.Selected(); ok && p.hooks.Open != nil {
			return p.hooks.Open(p, item)
		}
	default:
		for _, f := range p.hooks.Facets {
			if f.Key == key {
				p.cycleFacet(f)
				return nil
			}
		}
		if item, ok := p.model.Selected(); ok {
			for _, a := range p.hooks.Actions {
				if a.Key == key {
					return a.Run(p, item)
				}
			}
		}
	}
	return nil
}

func (p *Page[T]) handleSearchKey(msg tea.KeyMsg) tea.Cmd {
	switch msg.String() {
	case "enter":
		p.mode = modeNormal
		p.search.Blur()
		return nil
	case "esc":
		p.mode = modeNormal
		p.search.Blur()
		p.search.SetValue("")
		p.model.SetSearch("")
		return nil
	}

	var cmd tea.Cmd
	p.search, cmd = p.search.Update(msg)
	if p.search.Value() != p.model.Filter().Search {
		p.model.SetSearch(p.search.Value())
	}
	return cmd
}

func (p *Page[T]) handleDetailKey(msg tea.KeyMsg) tea.Cmd {
	visible := max(1, p.height-4)
	switch msg.String() {
	case "esc", "q", "enter":
		p.closeDetail()
	case "j", "down":
		if p.detailTop+visible < len(p.detail) {
			p.detailTop++
		}
	case "k", "up":
		if p.detailTop > 0 {
			p.detailTop--
		}
	case "pgdown", " ":
		p.detailTop = min(p.detailTop+visible, max(0, len(p.detail)-visible))
	case "pgup":
		p.detailTop = max(0, p.detailTop-visible)
	default:
		if item, ok := p.model.Selected(); ok {
			for _, a := range p.hooks.Actions {
				if a.Key == msg.String() {
					return a.Run(p, item)
				}
			}
		}
	}
	return nil
}

func (p *Page[T]) cycleFacet(f Facet) {
	if len(f.Values) == 0 {
		return
	}
	i := (p.facetValues[f.Name] + 1) % len(f.Values)
	p.facetValues[f.Name] = i
	p.model.SetCategory(f.Name, f.Values[i])
}

// move shifts the selection within the current page, spilling onto the
// neighbouring page at either end.
func (p *Page[T]) move(delta int) {
	page := p.model.Page()
	if len(page.Items) == 0 {
		return
	}
	id := p.model.Config().ID

	pos := -1
	if sel, ok := p.model.SelectedID(); ok {
		for i, it := range page.Items {
			if id(it) == sel {
				pos = i
				break
			}
		}
	}
	if pos < 0 {
		p.selectFirstOnPage()
		return
	}

	pos += delta
	switch {
	case pos >= len(page.Items):
		if page.HasNext() {
			p.model.NextPage()
			p.selectFirstOnPage()
		}
	case pos < 0:
		if page.HasPrev() {
			p.model.PrevPage()
			items := p.model.Page().Items
			p.model.Select(id(items[len(items)-1]))
		}
	default:
		p.model.Select(id(page.Items[pos]))
	}
}

func (p *Page[T]) selectFirstOnPage() {
	if items := p.model.Page().Items; len(items) > 0 {
		p.model.Select(p.model.Config().ID(items[0]))
	}
}

func next[E comparable](values []E, cur E) E {
	for i, v := range values {
		if v == cur {
			return values[(i+1)%len(values)]
		}
	}
	return values[0]
}

// Hints returns the key hints for the status bar.
func (p *Page[T]) Hints() string {
	switch p.mode {
	case modeSearch:
		return "type to filter  enter:confirm  esc:clear"
	case modePrompt:
		return "enter:confirm  esc:cancel"
	case modeConfirm:
		return "y/enter:yes  n/esc:no"
	case modeDetail:
		hint := "j/k:scroll  esc:back"
		for _, a := range p.hooks.Actions {
			hint += "  " + a.Key + ":" + a.Desc
		}
		return hint
	}

	parts := []string{"j/k:move", "h/l:page", "/:search", "g:group", "w:window"}
	for _, f := range p.hooks.Facets {
		parts = append(parts, f.Key+":"+strings.ToLower(f.Label))
	}
	if p.hooks.Open != nil {
		parts = append(parts, "enter:open")
	}
	if p.hooks.Create != nil {
		parts = append(parts, "n:new")
	}
	if p.hooks.Describe != nil {
		parts = append(parts, "d:delete")
	}
	for _, a := range p.hooks.Actions {
		parts = append(parts, a.Key+":"+a.Desc)
	}
	return strings.Join(append(parts, "r:reload"), "  ")
}

func (p *Page[T]) View() string {
	if p.mode == modeDetail {
		return p.renderDetail()
	}

	page := p.model.Page()
	p.infoBar.SetContext(p.model.Filter(), p.model.GroupMode(), p.facetSummary(), page.Number, page.TotalPages, page.TotalItems)
	p.infoBar.Loading = p.loading
	p.infoBar.Error = p.err
	p.infoBar.Message = p.status

	header := p.infoBar.View()
	if p.mode == modeSearch {
		header = lipgloss.JoinVertical(lipgloss.Left, header, p.search.View())
	}

	bodyHeight := max(1, p.height-lipgloss.Height(header))
	body := p.renderList(bodyHeight)

	switch p.mode {
	case modePrompt:
		body = shared.CenterContent(lipgloss.PlaceHorizontal(p.width, lipgloss.Center, p.prompt.View()), bodyHeight)
	case modeConfirm:
		body = shared.CenterContent(lipgloss.PlaceHorizontal(p.width, lipgloss.Center, p.confirm.View()), bodyHeight)
	}

	return lipgloss.JoinVertical(lipgloss.Left, header, body)
}

func (p *Page[T]) facetSummary() []string {
	var parts []string
	filter := p.model.Filter()
	for _, f := range p.hooks.Facets {
		if v := filter.Categories[f.Name]; v != "" {
			parts = append(parts, f.Label+"="+v)
		}
	}
	return parts
}

func (p *Page[T]) renderList(height int) string {
	page := p.model.Page()
	if page.TotalItems == 0 {
		msg := "Nothing here."
		switch {
		case p.loading:
			msg = "Loading..."
		case !p.coll.Loaded():
			msg = "Press r to load."
		case !p.model.Filter().IsIdentity():
			msg = "No matches for the current filters."
		}
		return shared.CenterContent(theme.Muted.Render(msg), height)
	}

	sel, hasSel := p.model.SelectedID()
	id := p.model.Config().ID

	var lines []string
	for _, g := range p.model.PageGroups() {
		if p.model.GroupMode() != view.GroupNone {
			lines = append(lines, theme.GroupHeader.Render(fmt.Sprintf("%s (%d)", g.Label, len(g.Items))))
		}
		for _, e := range g.Items {
			selected := hasSel && id(e.Item) == sel
			row := p.hooks.Render(e.Item, selected, p.width-2)
			if selected {
				row = theme.Cursor.Render("> ") + theme.SelectedBg.Render(row)
			} else {
				row = "  " + row
			}
			lines = append(lines, row)
		}
	}

	if len(lines) > height {
		lines = lines[:height]
	}
	return strings.Join(lines, "\n")
}

func (p *Page[T]) renderDetail() string {
	visible := max(1, p.height-2)
	end := min(len(p.detail), p.detailTop+visible)

	title := theme.Title.Render(p.detailTitle)
	body := strings.Join(p.detail[p.detailTop:end], "\n")
	footer := theme.Muted.Render(fmt.Sprintf("%d-%d of %d lines", p.detailTop+1, end, len(p.detail)))
	if p.status != "" {
		footer = theme.Ok.Render(p.status)
	}
	if p.err != "" {
		footer = theme.Error.Render(p.err)
	}
	return lipgloss.JoinVertical(lipgloss.Left, title, body, footer)
}
