package cli

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"strings"

	"hub/internal/api"
	"hub/internal/collection"
	"hub/internal/view"
)

type listFlags struct {
	query  string
	window string
	group  string
	page   int
}

func addListFlags(fs *flag.FlagSet, defaultGroup string) *listFlags {
	lf := &listFlags{}
	fs.StringVar(&lf.query, "q", "", "Free-text search")
	fs.StringVar(&lf.window, "window", "all", "Date window: all, day, month, year")
	fs.StringVar(&lf.group, "group", defaultGroup, "Grouping: none, day, week, month")
	fs.IntVar(&lf.page, "page", 1, "Page number")
	return lf
}

// buildModel loads c and returns a model with the flags applied.
func buildModel[T any](ctx context.Context, app *App, c *collection.Collection[T], cfg view.Config[T], lf *listFlags, categories map[string]string) (*view.Model[T], error) {
	window, err := view.ParseWindow(lf.window)
	if err != nil {
		return nil, err
	}
	mode, err := view.ParseGroupMode(lf.group)
	if err != nil {
		return nil, err
	}

	items, err := c.Reload(ctx)
	if err != nil {
		return nil, err
	}

	cfg.PageSize = app.pageSize()
	m := view.NewModel(cfg)
	m.SetClock(app.now)
	m.SetItems(items)
	m.SetFilter(view.FilterState{Search: lf.query, Categories: categories, Window: window})
	m.SetGroupMode(mode)
	m.SetPage(lf.page)
	return m, nil
}

// printPage writes the current page, one header per group, then a footer.
func printPage[T any](app *App, m *view.Model[T], noun string, line func(T) string) {
	page := m.Page()
	if page.TotalItems == 0 {
		app.printf("No %s found.\n", noun)
		return
	}

	for _, g := range m.PageGroups() {
		if g.Label != "" {
			app.printf("-- %s --\n", g.Label)
		}
		for _, e := range g.Items {
			app.printf("%s\n", line(e.Item))
		}
	}

	app.printf("\n%d %s", page.TotalItems, noun)
	if page.TotalPages > 1 {
		app.printf(" (page %d/%d)", page.Number, page.TotalPages)
	}
	app.printf("\n")
}

// reportErr prints err in user terms and returns exit code 1.
func reportErr(app *App, action string, err error) int {
	if errors.Is(err, api.ErrUnauthorized) {
		return app.fail("%s: %s Run \"hub login\".", action, api.UserMessage(err))
	}
	return app.fail("%s: %s", action, api.UserMessage(err))
}

func truncate(s string, n int) string {
	s = strings.Join(strings.Fields(s), " ")
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-3]) + "..."
}

func usageError(app *App, usage string) int {
	fmt.Fprintln(app.err(), "Usage: "+usage)
	return 1
}
