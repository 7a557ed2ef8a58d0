package view

// SelectionPolicy decides what happens when the selected item leaves the
// visible set.
type SelectionPolicy int

const (
	// ClearOnMissing drops a selection whose item is no longer visible and
	// never selects anything on its own.
	ClearOnMissing SelectionPolicy = iota

	// FirstIfUnselected selects the first visible item when nothing was
	// selected, and clears a selection whose item disappeared.
	FirstIfUnselected
)

func (p SelectionPolicy) String() string {
	switch p {
	case FirstIfUnselected:
		return "first-if-unselected"
	default:
		return "clear-on-missing"
	}
}

// Selection references one item by id. The held item is the latest copy
// seen by Reconcile. The zero value has never selected anything.
type Selection[T any] struct {
	id    int64
	item  T
	valid bool
	// had is set once anything was selected; FirstIfUnselected only
	// auto-selects while it is false.
	had bool
}

// Select returns a selection holding item.
func Select[T any](item T, id int64) Selection[T] {
	return Selection[T]{id: id, item: item, valid: true, had: true}
}

// Clear drops the selection but remembers that one existed.
func (s Selection[T]) Clear() Selection[T] {
	return Selection[T]{had: s.had || s.valid}
}

// ID returns the selected id, or false when nothing is selected.
func (s Selection[T]) ID() (int64, bool) {
	return s.id, s.valid
}

// Item returns the selected item, or false when nothing is selected.
func (s Selection[T]) Item() (T, bool) {
	return s.item, s.valid
}

// IsSet reports whether something is selected.
func (s Selection[T]) IsSet() bool {
	return s.valid
}

// Reconcile re-validates sel against the visible items.
func Reconcile[T any](sel Selection[T], visible []T, id func(T) int64, policy SelectionPolicy) Selection[T] {
	if sel.valid {
		for _, item := range visible {
			if id(item) == sel.id {
				return Selection[T]{id: sel.id, item: item, valid: true, had: true}
			}
		}
		return sel.Clear()
	}

	if policy == FirstIfUnselected && !sel.had && len(visible) > 0 {
		return Select(visible[0], id(visible[0]))
	}
	return sel
}
