package service

import (
	"context"
	"fmt"
	"strings"

	"hub/internal/api"
	"hub/internal/collection"
	"hub/internal/models"
	"hub/internal/view"
)

func EventView(pageSize int) view.Config[models.CalendarEvent] {
	return view.Config[models.CalendarEvent]{
		ID:   func(e models.CalendarEvent) int64 { return e.ID },
		When: func(e models.CalendarEvent) string { return e.Start },
		Text: func(e models.CalendarEvent) []string {
			return []string{e.Title, e.Description, e.Location}
		},
		Categories: map[string]func(models.CalendarEvent) []string{
			"source": func(e models.CalendarEvent) []string { return one(e.Source) },
		},
		PageSize: pageSize,
		Policy:   view.FirstIfUnselected,
	}
}

type Events struct {
	*Domain[models.CalendarEvent]
}

func NewEvents(client *api.Client, pageSize int) *Events {
	return &Events{
		Domain: &Domain[models.CalendarEvent]{
			Name:     "events",
			Resource: api.NewResource[models.CalendarEvent](client, "events"),
			View:     EventView(pageSize),
			Options:  collection.Options{Name: "events", ReloadOnCreate: true},
		},
	}
}

// Create checks that the event ends after it starts before posting it.
func (s *Events) Create(ctx context.Context, c *collection.Collection[models.CalendarEvent], e models.CalendarEvent) (models.CalendarEvent, error) {
	if strings.TrimSpace(e.Title) == "" {
		return models.CalendarEvent{}, fmt.Errorf("title is required")
	}
	start, ok := view.ParseWhen(e.Start, nil)
	if !ok {
		return models.CalendarEvent{}, fmt.Errorf("invalid start %q", e.Start)
	}
	if e.End == "" {
		e.End = e.Start
	}
	end, ok := view.ParseWhen(e.End, nil)
	if !ok {
		return models.CalendarEvent{}, fmt.Errorf("invalid end %q", e.End)
	}
	if end.Before(start) {
		return models.CalendarEvent{}, fmt.Errorf("event ends before it starts")
	}
	return c.Create(ctx, e)
}

func ContactView(pageSize int) view.Config[models.Contact] {
	return view.Config[models.Contact]{
		ID: func(c models.Contact) int64 { return c.ID },
		Text: func(c models.Contact) []string {
			return []string{c.Name, c.Email, c.Phone, c.Organization, c.Notes}
		},
		Categories: map[string]func(models.Contact) []string{
			"organization": func(c models.Contact) []string { return one(c.Organization) },
		},
		PageSize: pageSize,
		Policy:   view.FirstIfUnselected,
	}
}

type Contacts struct {
	*Domain[models.Contact]
}

func NewContacts(client *api.Client, pageSize int) *Contacts {
	return &Contacts{
		Domain: &Domain[models.Contact]{
			Name:     "contacts",
			Resource: api.NewResource[models.Contact](client, "contacts"),
			View:     ContactView(pageSize),
			Options:  collection.Options{Name: "contacts", ReloadOnCreate: true},
		},
	}
}

func (s *Contacts) Create(ctx context.Context, c *collection.Collection[models.Contact], in models.Contact) (models.Contact, error) {
	if strings.TrimSpace(in.Name) == "" {
		return models.Contact{}, fmt.Errorf("name is required")
	}
	return c.Create(ctx, in)
}
