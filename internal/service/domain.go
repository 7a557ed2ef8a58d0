package service

import (
	"hub/internal/api"
	"hub/internal/collection"
	"hub/internal/view"
)

// Domain bundles what a page needs to show one kind of item: where it lives
// on the server, how the view engine reads it and how its cache reconciles.
type Domain[T any] struct {
	Name     string
	Resource *api.Resource[T]
	View     view.Config[T]
	Options  collection.Options
}

// NewCollection returns a fresh cache owned by the caller.
func (d *Domain[T]) NewCollection() *collection.Collection[T] {
	return collection.New[T](d.Resource, d.View.ID, d.Options)
}

// NewModel returns a view model using the domain's configuration.
func (d *Domain[T]) NewModel() *view.Model[T] {
	return view.NewModel(d.View)
}

// Hub groups every domain served by one API client.
type Hub struct {
	Client   *api.Client
	Tasks    *Tasks
	Notes    *Notes
	Events   *Events
	Contacts *Contacts
	Mail     *Mail
	Profiles *Profiles
}

// New wires every domain to client. pageSize applies to all list views.
func New(client *api.Client, pageSize int) *Hub {
	return &Hub{
		Client:   client,
		Tasks:    NewTasks(client, pageSize),
		Notes:    NewNotes(client, pageSize),
		Events:   NewEvents(client, pageSize),
		Contacts: NewContacts(client, pageSize),
		Mail:     NewMail(client, pageSize),
		Profiles: NewProfiles(client),
	}
}

func one(s string) []string {
	return []string{s}
}
