package view

import (
	"maps"
	"time"
)

// Model holds one page's filter, grouping, paging and selection state over
// a domain's cached items and keeps the derived views current.
//
// Every change to the items, filter or grouping resets the page to 1 and
// reruns filter, group, paginate and then selection, in that order.
type Model[T any] struct {
	cfg   Config[T]
	clock func() time.Time

	items []T
	state FilterState
	mode  GroupMode
	page  int
	sel   Selection[T]

	filtered []T
	groups   []Group[T]
	ordered  []T
	current  Page[T]
}

// NewModel returns a model with the identity filter and no grouping.
func NewModel[T any](cfg Config[T]) *Model[T] {
	m := &Model[T]{
		cfg:   cfg,
		clock: time.Now,
		state: FilterState{Categories: map[string]string{}, Window: WindowAll},
		mode:  GroupNone,
		page:  1,
	}
	m.recompute()
	return m
}

// SetClock replaces the source of "now" used for windows and labels.
func (m *Model[T]) SetClock(clock func() time.Time) {
	m.clock = clock
	m.recompute()
}

// Config returns the accessor configuration.
func (m *Model[T]) Config() Config[T] {
	return m.cfg
}

// SetItems replaces the cached items, after a fetch or a mutation.
func (m *Model[T]) SetItems(items []T) {
	m.items = items
	m.page = 1
	m.recompute()
}

// Items returns the cached items, unfiltered.
func (m *Model[T]) Items() []T {
	return m.items
}

// Filter returns the current filter state.
func (m *Model[T]) Filter() FilterState {
	return FilterState{Search: m.state.Search, Categories: maps.Clone(m.state.Categories), Window: m.state.Window}
}

// SetFilter replaces the whole filter state. The categories are copied.
func (m *Model[T]) SetFilter(state FilterState) {
	state.Categories = maps.Clone(state.Categories)
	if state.Categories == nil {
		state.Categories = map[string]string{}
	}
	if state.Window == "" {
		state.Window = WindowAll
	}
	m.state = state
	m.page = 1
	m.recompute()
}

// SetSearch sets the free-text query.
func (m *Model[T]) SetSearch(q string) {
	m.state.Search = q
	m.page = 1
	m.recompute()
}

// SetCategory sets one categorical filter; "" or "all" removes the restriction.
func (m *Model[T]) SetCategory(name, value string) {
	if unrestricted(value) {
		delete(m.state.Categories, name)
	} else {
		m.state.Categories[name] = value
	}
	m.page = 1
	m.recompute()
}

// SetWindow sets the date window.
func (m *Model[T]) SetWindow(w Window) {
	if w == "" {
		w = WindowAll
	}
	m.state.Window = w
	m.page = 1
	m.recompute()
}

// GroupMode returns the active grouping.
func (m *Model[T]) GroupMode() GroupMode {
	return m.mode
}

// SetGroupMode changes the grouping.
func (m *Model[T]) SetGroupMode(mode GroupMode) {
	if mode == "" {
		mode = GroupNone
	}
	m.mode = mode
	m.page = 1
	m.recompute()
}

// SetPage requests a page; it is clamped into range.
func (m *Model[T]) SetPage(page int) {
	m.page = page
	m.recompute()
}

// NextPage moves forward one page if there is one.
func (m *Model[T]) NextPage() {
	if m.current.HasNext() {
		m.SetPage(m.current.Number + 1)
	}
}

// PrevPage moves back one page if there is one.
func (m *Model[T]) PrevPage() {
	if m.current.HasPrev() {
		m.SetPage(m.current.Number - 1)
	}
}

// Visible returns the filtered items in input order.
func (m *Model[T]) Visible() []T {
	return m.filtered
}

// Groups returns every group of the visible set.
func (m *Model[T]) Groups() []Group[T] {
	return m.groups
}

// Page returns the current page of the visible set in grouped order.
func (m *Model[T]) Page() Page[T] {
	return m.current
}

// PageGroups returns the current page's items split back into their groups.
func (m *Model[T]) PageGroups() []Group[T] {
	var out []Group[T]
	pos := 0
	for _, g := range m.groups {
		gStart, gEnd := pos, pos+len(g.Items)
		pos = gEnd

		lo, hi := max(gStart, m.current.Start), min(gEnd, m.current.End)
		if lo >= hi {
			continue
		}
		part := g
		part.Items = g.Items[lo-gStart : hi-gStart]
		out = append(out, part)
	}
	return out
}

// Select marks the visible item with id as selected. It reports false when
// no visible item has that id.
func (m *Model[T]) Select(id int64) bool {
	for _, item := range m.filtered {
		if m.cfg.ID(item) == id {
			m.sel = Select(item, id)
			return true
		}
	}
	return false
}

// ClearSelection drops the selection.
func (m *Model[T]) ClearSelection() {
	m.sel = m.sel.Clear()
}

// Selected returns the selected item.
func (m *Model[T]) Selected() (T, bool) {
	return m.sel.Item()
}

// SelectedID returns the selected id.
func (m *Model[T]) SelectedID() (int64, bool) {
	return m.sel.ID()
}

func (m *Model[T]) recompute() {
	now := m.clock()
	m.filtered = Filter(m.items, m.state, m.cfg, now)
	m.groups = GroupBy(m.filtered, m.mode, m.cfg, now)
	m.ordered = Flatten(m.groups)
	m.current = Paginate(m.ordered, m.page, m.cfg.pageSize())
	m.page = m.current.Number
	m.sel = Reconcile(m.sel, m.filtered, m.cfg.ID, m.cfg.Policy)
}
