package cli

import (
	"context"
	"flag"
	"fmt"
	"strings"
	"time"

	"hub/internal/models"
	"hub/internal/view"
)

func runEventCommand(args []string, app *App) int {
	if len(args) == 0 {
		app.printEventUsage()
		return 1
	}

	switch args[0] {
	case "list", "ls", "l":
		return runEventList(args[1:], app)
	case "add", "a":
		return runEventAdd(args[1:], app)
	case "delete", "rm":
		return runEventDelete(args[1:], app)
	case "help", "-h", "--help":
		app.printEventUsage()
		return 0
	default:
		fmt.Fprintf(app.err(), "Unknown event command: %s\n", args[0])
		app.printEventUsage()
		return 1
	}
}

func runEventList(args []string, app *App) int {
	fs := flag.NewFlagSet("list", flag.ContinueOnError)
	fs.SetOutput(app.err())
	lf := addListFlags(fs, "day")
	source := fs.String("source", "", "Filter by source calendar")
	if err := fs.Parse(args); err != nil {
		return 1
	}

	svc := app.Hub.Events
	m, err := buildModel(context.Background(), app, svc.NewCollection(), svc.View, lf, map[string]string{"source": *source})
	if err != nil {
		return reportErr(app, "loading events", err)
	}

	loc := app.now().Location()
	printPage(app, m, "event(s)", func(e models.CalendarEvent) string {
		line := fmt.Sprintf("[%d] %-7s %s", e.ID, clock(e.Start, loc), e.Title)
		if e.Location != "" {
			line += "  @ " + e.Location
		}
		return line
	})
	return 0
}

// clock renders an event start as HH:MM in loc, or "all day" for
// date-only values.
func clock(raw string, loc *time.Location) string {
	t, ok := view.ParseWhen(raw, loc)
	if !ok {
		return "--:--"
	}
	if len(strings.TrimSpace(raw)) <= len("2006-01-02") {
		return "all day"
	}
	return t.Format("15:04")
}

func runEventAdd(args []string, app *App) int {
	fs := flag.NewFlagSet("add", flag.ContinueOnError)
	fs.SetOutput(app.err())
	start := fs.String("start", "", "Start (YYYY-MM-DD or YYYY-MM-DDTHH:MM)")
	end := fs.String("end", "", "End (defaults to start)")
	where := fs.String("location", "", "Location")
	desc := fs.String("desc", "", "Description")
	if err := fs.Parse(args); err != nil {
		return 1
	}
	if fs.NArg() == 0 || *start == "" {
		return usageError(app, `hub event add -start 2024-03-15T10:00 [-end ...] "Title"`)
	}

	svc := app.Hub.Events
	ev, err := svc.Create(context.Background(), svc.NewCollection(), models.CalendarEvent{
		Title:       strings.Join(fs.Args(), " "),
		Description: *desc,
		Start:       *start,
		End:         *end,
		Location:    *where,
	})
	if err != nil {
		return reportErr(app, "adding event", err)
	}

	app.printf("Added: %s\n", ev.Title)
	app.printf("ID: %d\n", ev.ID)
	return 0
}

func runEventDelete(args []string, app *App) int {
	if len(args) == 0 {
		return usageError(app, "hub event delete <event>")
	}

	ctx := context.Background()
	svc := app.Hub.Events
	c := svc.NewCollection()
	items, err := c.Reload(ctx)
	if err != nil {
		return reportErr(app, "loading events", err)
	}
	ev, err := resolve(items, strings.Join(args, " "), svc.View.ID, func(e models.CalendarEvent) string { return e.Title })
	if err != nil {
		return app.fail("%v", err)
	}
	if err := c.Delete(ctx, ev.ID); err != nil {
		return reportErr(app, "deleting event", err)
	}
	app.printf("Deleted: %s\n", ev.Title)
	return 0
}

func (a *App) printEventUsage() {
	fmt.Fprintln(a.out(), `hub event - Calendar commands

Usage: hub event <command> [flags] [arguments]

Commands:
  list, ls      List events, grouped by day
                hub event list -window month -group week
  add, a        Add an event
                hub event add -start 2024-03-15T10:00 -end 2024-03-15T11:00 -location "Room 2" "Planning"
  delete, rm    Delete an event`)
}

func runContactCommand(args []string, app *App) int {
	if len(args) == 0 {
		app.printContactUsage()
		return 1
	}

	switch args[0] {
	case "list", "ls", "l":
		return runContactList(args[1:], app)
	case "add", "a":
		return runContactAdd(args[1:], app)
	case "delete", "rm":
		return runContactDelete(args[1:], app)
	case "help", "-h", "--help":
		app.printContactUsage()
		return 0
	default:
		fmt.Fprintf(app.err(), "Unknown contact command: %s\n", args[0])
		app.printContactUsage()
		return 1
	}
}

func runContactList(args []string, app *App) int {
	fs := flag.NewFlagSet("list", flag.ContinueOnError)
	fs.SetOutput(app.err())
	lf := addListFlags(fs, "none")
	org := fs.String("org", "", "Filter by organization")
	if err := fs.Parse(args); err != nil {
		return 1
	}

	svc := app.Hub.Contacts
	m, err := buildModel(context.Background(), app, svc.NewCollection(), svc.View, lf, map[string]string{"organization": *org})
	if err != nil {
		return reportErr(app, "loading contacts", err)
	}

	printPage(app, m, "contact(s)", func(c models.Contact) string {
		line := fmt.Sprintf("[%d] %s", c.ID, c.Name)
		var meta []string
		for _, v := range []string{c.Email, c.Phone, c.Organization} {
			if v != "" {
				meta = append(meta, v)
			}
		}
		if len(meta) > 0 {
			line += "  " + strings.Join(meta, " | ")
		}
		return line
	})
	return 0
}

func runContactAdd(args []string, app *App) int {
	fs := flag.NewFlagSet("add", flag.ContinueOnError)
	fs.SetOutput(app.err())
	email := fs.String("email", "", "Email address")
	phone := fs.String("phone", "", "Phone number")
	org := fs.String("org", "", "Organization")
	notes := fs.String("notes", "", "Free-form notes")
	if err := fs.Parse(args); err != nil {
		return 1
	}
	if fs.NArg() == 0 {
		return usageError(app, `hub contact add [-email ...] [-phone ...] [-org ...] "Name"`)
	}

	svc := app.Hub.Contacts
	contact, err := svc.Create(context.Background(), svc.NewCollection(), models.Contact{
		Name:         strings.Join(fs.Args(), " "),
		Email:        *email,
		Phone:        *phone,
		Organization: *org,
		Notes:        *notes,
	})
	if err != nil {
		return reportErr(app, "adding contact", err)
	}

	app.printf("Added: %s\n", contact.Name)
	app.printf("ID: %d\n", contact.ID)
	return 0
}

func runContactDelete(args []string, app *App) int {
	if len(args) == 0 {
		return usageError(app, "hub contact delete <contact>")
	}

	ctx := context.Background()
	svc := app.Hub.Contacts
	c := svc.NewCollection()
	items, err := c.Reload(ctx)
	if err != nil {
		return reportErr(app, "loading contacts", err)
	}
	contact, err := resolve(items, strings.Join(args, " "), svc.View.ID, func(c models.Contact) string { return c.Name })
	if err != nil {
		return app.fail("%v", err)
	}
	if err := c.Delete(ctx, contact.ID); err != nil {
		return reportErr(app, "deleting contact", err)
	}
	app.printf("Deleted: %s\n", contact.Name)
	return 0
}

func (a *App) printContactUsage() {
	fmt.Fprintln(a.out(), `hub contact - Contact commands

Usage: hub contact <command> [flags] [arguments]

Commands:
  list, ls      List contacts
                hub contact list -q acme
  add, a        Add a contact
                hub contact add -email ada@example.com -org Acme "Ada Lovelace"
  delete, rm    Delete a contact`)
}
