package view

import (
	"fmt"
	"strings"
	"time"
)

// Window narrows items to the calendar day, month or year of "now".
type Window string

const (
	WindowAll   Window = "all"
	WindowDay   Window = "day"
	WindowMonth Window = "month"
	WindowYear  Window = "year"
)

// ParseWindow accepts the window names used on the command line.
func ParseWindow(s string) (Window, error) {
	switch Window(strings.ToLower(s)) {
	case "", WindowAll:
		return WindowAll, nil
	case WindowDay:
		return WindowDay, nil
	case WindowMonth:
		return WindowMonth, nil
	case WindowYear:
		return WindowYear, nil
	}
	return WindowAll, fmt.Errorf("unknown window %q (want all, day, month or year)", s)
}

// FilterState is the user's current narrowing. The zero value matches everything.
type FilterState struct {
	Search     string
	Categories map[string]string
	Window     Window
}

// IsIdentity reports whether the state would let every item through.
func (s FilterState) IsIdentity() bool {
	if strings.TrimSpace(s.Search) != "" {
		return false
	}
	if s.Window != "" && s.Window != WindowAll {
		return false
	}
	for _, v := range s.Categories {
		if !unrestricted(v) {
			return false
		}
	}
	return true
}

func unrestricted(v string) bool {
	return v == "" || v == "all"
}

// Filter returns the items matching state, in input order.
func Filter[T any](items []T, state FilterState, cfg Config[T], now time.Time) []T {
	query := strings.ToLower(strings.TrimSpace(state.Search))

	result := make([]T, 0, len(items))
	for _, item := range items {
		if !matchesText(item, query, cfg) {
			continue
		}
		if !matchesCategories(item, state.Categories, cfg) {
			continue
		}
		if !matchesWindow(item, state.Window, cfg, now) {
			continue
		}
		result = append(result, item)
	}
	return result
}

func matchesText[T any](item T, query string, cfg Config[T]) bool {
	if query == "" {
		return true
	}
	if cfg.Text == nil {
		return false
	}
	for _, field := range cfg.Text(item) {
		if strings.Contains(strings.ToLower(field), query) {
			return true
		}
	}
	return false
}

func matchesCategories[T any](item T, selected map[string]string, cfg Config[T]) bool {
	for name, want := range selected {
		if unrestricted(want) {
			continue
		}
		values, ok := cfg.Categories[name]
		if !ok || values == nil {
			// A filter the domain cannot answer matches nothing.
			return false
		}
		found := false
		for _, v := range values(item) {
			if v == want {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	return true
}

func matchesWindow[T any](item T, window Window, cfg Config[T], now time.Time) bool {
	if window == "" || window == WindowAll {
		return true
	}
	t, ok := ParseWhen(cfg.when(item), now.Location())
	if !ok {
		return false
	}
	switch window {
	case WindowDay:
		return sameDay(t, now)
	case WindowMonth:
		return sameMonth(t, now)
	case WindowYear:
		return t.Year() == now.Year()
	}
	return false
}
