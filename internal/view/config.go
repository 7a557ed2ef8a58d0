package view

// DefaultPageSize is used when a config or caller asks for a page size below 1.
const DefaultPageSize = 20

// DefaultUndatedLabel labels the bucket of items without a usable date.
const DefaultUndatedLabel = "No date"

// Config describes how the engine reads a domain's items.
type Config[T any] struct {
	// ID returns the stable identifier of an item.
	ID func(T) int64

	// When returns the raw temporal field used for windows and grouping.
	// Nil means the domain has no temporal field.
	When func(T) string

	// Text returns every searchable string of an item (title, body, tag names).
	Text func(T) []string

	// Categories maps a filter name to the values an item carries for it.
	// An item matches a categorical filter when any of its values equals
	// the selected value exactly.
	Categories map[string]func(T) []string

	UndatedLabel string
	PageSize     int
	Policy       SelectionPolicy
}

func (c Config[T]) undatedLabel() string {
	if c.UndatedLabel == "" {
		return DefaultUndatedLabel
	}
	return c.UndatedLabel
}

func (c Config[T]) pageSize() int {
	if c.PageSize < 1 {
		return DefaultPageSize
	}
	return c.PageSize
}

func (c Config[T]) when(item T) string {
	if c.When == nil {
		return ""
	}
	return c.When(item)
}
