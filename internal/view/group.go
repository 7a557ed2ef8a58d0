package view

import (
	"fmt"
	"sort"
	"strings"
	"time"
)

// GroupMode selects the temporal bucket used by Group.
type GroupMode string

const (
	GroupNone  GroupMode = "none"
	GroupDay   GroupMode = "day"
	GroupWeek  GroupMode = "week"
	GroupMonth GroupMode = "month"
)

// UndatedKey is the key of the bucket holding items without a usable date.
const UndatedKey = "undated"

// ParseGroupMode accepts the grouping names used on the command line.
func ParseGroupMode(s string) (GroupMode, error) {
	switch GroupMode(strings.ToLower(s)) {
	case "", GroupNone:
		return GroupNone, nil
	case GroupDay:
		return GroupDay, nil
	case GroupWeek:
		return GroupWeek, nil
	case GroupMonth:
		return GroupMonth, nil
	}
	return GroupNone, fmt.Errorf("unknown grouping %q (want none, day, week or month)", s)
}

// Entry is an item with its position in the grouped input.
type Entry[T any] struct {
	Item  T
	Index int
}

// Group is one bucket of the visible set.
type Group[T any] struct {
	Key   string
	Label string
	Items []Entry[T]

	earliest time.Time
	undated  bool
}

// GroupBy partitions items into ordered buckets. Groups are sorted by the
// earliest item they contain; the undated bucket is always last. Items keep
// their input order within a group. GroupNone yields a single unlabeled group.
func GroupBy[T any](items []T, mode GroupMode, cfg Config[T], now time.Time) []Group[T] {
	if len(items) == 0 {
		return nil
	}

	if mode == "" || mode == GroupNone {
		g := Group[T]{Key: string(GroupNone), Items: make([]Entry[T], len(items))}
		for i, item := range items {
			g.Items[i] = Entry[T]{Item: item, Index: i}
		}
		return []Group[T]{g}
	}

	loc := now.Location()
	byKey := make(map[string]*Group[T])
	var order []string

	for i, item := range items {
		t, ok := ParseWhen(cfg.when(item), loc)

		var key string
		var start time.Time
		if ok {
			start = bucketStart(t, mode)
			key = bucketKey(start, mode)
		} else {
			key = UndatedKey
		}

		g, exists := byKey[key]
		if !exists {
			g = &Group[T]{Key: key, undated: !ok}
			if ok {
				g.Label = bucketLabel(start, mode, now)
				g.earliest = t
			} else {
				g.Label = cfg.undatedLabel()
			}
			byKey[key] = g
			order = append(order, key)
		} else if ok && t.Before(g.earliest) {
			g.earliest = t
		}
		g.Items = append(g.Items, Entry[T]{Item: item, Index: i})
	}

	groups := make([]Group[T], 0, len(order))
	for _, key := range order {
		groups = append(groups, *byKey[key])
	}

	sort.SliceStable(groups, func(i, j int) bool {
		a, b := groups[i], groups[j]
		if a.undated != b.undated {
			return b.undated
		}
		return a.earliest.Before(b.earliest)
	})

	return groups
}

func bucketStart(t time.Time, mode GroupMode) time.Time {
	switch mode {
	case GroupWeek:
		return StartOfWeek(t)
	case GroupMonth:
		return StartOfMonth(t)
	default:
		return StartOfDay(t)
	}
}

func bucketKey(start time.Time, mode GroupMode) string {
	switch mode {
	case GroupWeek:
		return "week:" + start.Format("2006-01-02")
	case GroupMonth:
		return start.Format("2006-01")
	default:
		return start.Format("2006-01-02")
	}
}

func bucketLabel(start time.Time, mode GroupMode, now time.Time) string {
	switch mode {
	case GroupWeek:
		end := start.AddDate(0, 0, 6)
		return fmt.Sprintf("Week of %s – %s", start.Format("Jan 2"), end.Format("Jan 2"))
	case GroupMonth:
		return start.Format("January 2006")
	default:
		return DayLabel(start, now)
	}
}

// DayLabel names a day relative to now.
func DayLabel(day, now time.Time) string {
	switch DayOffset(now, day) {
	case 0:
		return "Today"
	case 1:
		return "Tomorrow"
	case -1:
		return "Yesterday"
	}
	return day.Format("Mon Jan 2")
}

// Flatten returns the groups' items in display order.
func Flatten[T any](groups []Group[T]) []T {
	var out []T
	for _, g := range groups {
		for _, e := range g.Items {
			out = append(out, e.Item)
		}
	}
	return out
}
