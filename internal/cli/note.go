package cli

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"slices"
	"strconv"
	"strings"

	"hub/internal/editor"
	"hub/internal/models"
	"hub/internal/scanner"
	"hub/internal/service"
	"hub/internal/view"
)

func runNoteCommand(args []string, app *App) int {
	if len(args) == 0 {
		app.printNoteUsage()
		return 1
	}

	command := args[0]
	cmdArgs := args[1:]

	switch command {
	case "list", "ls", "l":
		return runNoteList(cmdArgs, app)
	case "add", "a":
		return runNoteAdd(cmdArgs, app)
	case "show", "cat":
		return runNoteShow(cmdArgs, app)
	case "export":
		return runNoteExport(cmdArgs, app)
	case "import":
		return runNoteImport(cmdArgs, app)
	case "delete", "rm":
		return runNoteDelete(cmdArgs, app)
	case "detach":
		return runNoteDetach(cmdArgs, app)
	case "help", "-h", "--help":
		app.printNoteUsage()
		return 0
	default:
		fmt.Fprintf(app.err(), "Unknown note command: %s\n", command)
		app.printNoteUsage()
		return 1
	}
}

func noteTitle(n models.Note) string { return n.Title }

func runNoteList(args []string, app *App) int {
	fs := flag.NewFlagSet("list", flag.ContinueOnError)
	fs.SetOutput(app.err())
	lf := addListFlags(fs, "month")
	noteType := fs.String("type", "all", "Filter by type: daily, general")
	job := fs.String("job", "", "Filter by job")
	task := fs.Int64("task", 0, "Only notes attached to this task id")
	if err := fs.Parse(args); err != nil {
		return 1
	}

	svc := app.Hub.Notes
	c := svc.NewCollection()
	svc.ForTask(c, *task)

	cats := map[string]string{"type": *noteType, "job": *job}
	m, err := buildModel(context.Background(), app, c, svc.View, lf, cats)
	if err != nil {
		return reportErr(app, "loading notes", err)
	}

	loc := app.now().Location()
	printPage(app, m, "note(s)", func(n models.Note) string {
		line := fmt.Sprintf("[%d] %s", n.ID, n.Title)
		if when := view.FormatWhen(n.When(), loc); when != "" {
			line += "  (" + when + ")"
		}
		if preview := editor.Preview(n.Content, 60); preview != "" {
			line += "\n      " + preview
		}
		return line
	})
	return 0
}

func runNoteAdd(args []string, app *App) int {
	fs := flag.NewFlagSet("add", flag.ContinueOnError)
	fs.SetOutput(app.err())
	title := fs.String("title", "", "Title (defaults to the first heading)")
	noteType := fs.String("type", "general", "daily or general")
	date := fs.String("date", "", "Date (YYYY-MM-DD); daily notes default to today")
	job := fs.String("job", "", "Job or client the note belongs to")
	task := fs.Int64("task", 0, "Attach to this task id")
	file := fs.String("f", "", "Read content from file (- for stdin)")
	if err := fs.Parse(args); err != nil {
		return 1
	}

	content := strings.Join(fs.Args(), " ")
	if *file != "" {
		data, err := readInput(app, *file)
		if err != nil {
			return app.fail("reading %s: %v", *file, err)
		}
		content = string(data)
	}

	in := service.NoteInput{
		NoteType: models.NoteType(*noteType),
		Job:      *job,
		Title:    *title,
		Content:  content,
	}
	if *date == "" && in.NoteType == models.NoteDaily {
		*date = app.now().Format("2006-01-02")
	}
	if *date != "" {
		in.Date = date
	}
	if *task > 0 {
		in.Task = task
	}

	svc := app.Hub.Notes
	note, err := svc.Create(context.Background(), svc.NewCollection(), in)
	if err != nil {
		return reportErr(app, "adding note", err)
	}

	app.printf("Added: %s\n", note.Title)
	app.printf("ID: %d\n", note.ID)
	return 0
}

func readInput(app *App, path string) ([]byte, error) {
	if path == "-" {
		return io.ReadAll(app.in())
	}
	return os.ReadFile(path)
}

// findNote loads the notes and resolves ref against them.
func findNote(app *App, ref string) (models.Note, int) {
	svc := app.Hub.Notes
	items, err := svc.NewCollection().Reload(context.Background())
	if err != nil {
		return models.Note{}, reportErr(app, "loading notes", err)
	}
	note, err := resolve(items, ref, svc.View.ID, noteTitle)
	if err != nil {
		return models.Note{}, app.fail("%v", err)
	}
	return note, 0
}

func runNoteShow(args []string, app *App) int {
	fs := flag.NewFlagSet("show", flag.ContinueOnError)
	fs.SetOutput(app.err())
	html := fs.Bool("html", false, "Render the content as HTML")
	raw := fs.Bool("raw", false, "Print the markdown without terminal styling")
	width := fs.Int("width", 80, "Wrap width for terminal rendering")
	if err := fs.Parse(args); err != nil {
		return 1
	}
	if fs.NArg() == 0 {
		return usageError(app, "hub note show [-html|-raw] <note>")
	}

	note, code := findNote(app, strings.Join(fs.Args(), " "))
	if code != 0 {
		return code
	}

	if *html {
		out, err := editor.New(note.Content).RenderHTML()
		if err != nil {
			return app.fail("rendering note: %v", err)
		}
		app.printf("%s", out)
		return 0
	}

	app.printf("# %s\n", note.Title)
	var meta []string
	if when := view.FormatWhen(note.When(), app.now().Location()); when != "" {
		meta = append(meta, when)
	}
	meta = append(meta, string(note.NoteType))
	if note.Job != "" {
		meta = append(meta, "job: "+note.Job)
	}
	if note.Task != nil {
		meta = append(meta, "task: #"+strconv.FormatInt(*note.Task, 10))
	}
	body := strings.TrimRight(note.Content, "\n")
	if !*raw {
		body = editor.RenderTerminal(note.Content, *width)
	}
	app.printf("%s\n\n%s\n", strings.Join(meta, " · "), body)
	if len(note.Attachments) > 0 {
		app.printf("\nAttachments:\n")
		for _, a := range note.Attachments {
			app.printf("  #%d  %s\n", a.ID, a.Name())
		}
	}
	return 0
}

func runNoteExport(args []string, app *App) int {
	fs := flag.NewFlagSet("export", flag.ContinueOnError)
	fs.SetOutput(app.err())
	dir := fs.String("o", ".", "Output directory")
	all := fs.Bool("all", false, "Export every note")
	if err := fs.Parse(args); err != nil {
		return 1
	}
	if fs.NArg() == 0 && !*all {
		return usageError(app, "hub note export [-o dir] (-all | <note>)")
	}

	var notes []models.Note
	if *all {
		items, err := app.Hub.Notes.NewCollection().Reload(context.Background())
		if err != nil {
			return reportErr(app, "loading notes", err)
		}
		notes = items
	} else {
		note, code := findNote(app, strings.Join(fs.Args(), " "))
		if code != 0 {
			return code
		}
		notes = []models.Note{note}
	}

	if err := os.MkdirAll(*dir, 0755); err != nil {
		return app.fail("creating %s: %v", *dir, err)
	}

	for _, n := range notes {
		data, err := service.Export(n)
		if err != nil {
			return app.fail("exporting %q: %v", n.Title, err)
		}
		date := ""
		if n.Date != nil {
			date = *n.Date
		}
		path := filepath.Join(*dir, editor.Filename(date, n.Title))
		if err := os.WriteFile(path, data, 0644); err != nil {
			return app.fail("writing %s: %v", path, err)
		}
		app.printf("Exported: %s\n", path)
	}
	return 0
}

// importSource is one file to import; job is used when its frontmatter
// names none.
type importSource struct {
	path string
	job  string
}

// importSources expands directories into the markdown notes under them.
func importSources(args []string) ([]importSource, error) {
	var out []importSource
	for _, path := range args {
		info, err := os.Stat(path)
		if err != nil {
			return nil, err
		}
		if !info.IsDir() {
			out = append(out, importSource{path: path})
			continue
		}
		scan, err := scanner.ScanNotes(path)
		if err != nil {
			return nil, fmt.Errorf("scanning %s: %w", path, err)
		}
		for _, n := range scan.Notes {
			out = append(out, importSource{path: n.Path, job: n.Job})
		}
	}
	return out, nil
}

func runNoteImport(args []string, app *App) int {
	if len(args) == 0 {
		return usageError(app, "hub note import <file.md|dir>...")
	}

	sources, err := importSources(args)
	if err != nil {
		return app.fail("%v", err)
	}
	if len(sources) == 0 {
		app.printf("No markdown notes found.\n")
		return 0
	}

	ctx := context.Background()
	svc := app.Hub.Notes
	c := svc.NewCollection()

	failed := 0
	for _, src := range sources {
		data, err := os.ReadFile(src.path)
		if err != nil {
			fmt.Fprintf(app.err(), "Error: reading %s: %v\n", src.path, err)
			failed++
			continue
		}
		in, err := service.Import(src.path, data)
		if err != nil {
			fmt.Fprintf(app.err(), "Error: %s: %v\n", src.path, err)
			failed++
			continue
		}
		if in.Job == "" {
			in.Job = src.job
		}
		note, err := svc.Create(ctx, c, in)
		if err != nil {
			reportErr(app, "importing "+src.path, err)
			failed++
			continue
		}
		app.printf("Imported: %s (ID %d)\n", note.Title, note.ID)
	}

	if failed > 0 {
		return 1
	}
	return 0
}

func runNoteDelete(args []string, app *App) int {
	if len(args) == 0 {
		return usageError(app, "hub note delete <note>")
	}

	ctx := context.Background()
	svc := app.Hub.Notes
	c := svc.NewCollection()
	items, err := c.Reload(ctx)
	if err != nil {
		return reportErr(app, "loading notes", err)
	}
	note, err := resolve(items, strings.Join(args, " "), svc.View.ID, noteTitle)
	if err != nil {
		return app.fail("%v", err)
	}
	if err := c.Delete(ctx, note.ID); err != nil {
		return reportErr(app, "deleting note", err)
	}
	app.printf("Deleted: %s\n", note.Title)
	return 0
}

func runNoteDetach(args []string, app *App) int {
	if len(args) < 2 {
		return usageError(app, "hub note detach <note> <attachment id>")
	}
	attachmentID, err := parseID(args[len(args)-1])
	if err != nil {
		return app.fail("%v", err)
	}

	ctx := context.Background()
	svc := app.Hub.Notes
	c := svc.NewCollection()
	items, err := c.Reload(ctx)
	if err != nil {
		return reportErr(app, "loading notes", err)
	}
	note, err := resolve(items, strings.Join(args[:len(args)-1], " "), svc.View.ID, noteTitle)
	if err != nil {
		return app.fail("%v", err)
	}
	if !slices.ContainsFunc(note.Attachments, func(a models.NoteAttachment) bool { return a.ID == attachmentID }) {
		return app.fail("note %q has no attachment #%d", note.Title, attachmentID)
	}
	if err := svc.RemoveAttachment(ctx, c, note.ID, attachmentID); err != nil {
		return reportErr(app, "removing attachment", err)
	}
	app.printf("Removed attachment #%d from %s\n", attachmentID, note.Title)
	return 0
}

func (a *App) printNoteUsage() {
	fmt.Fprintln(a.out(), `hub note - Note commands

Usage: hub note <command> [flags] [arguments]

Commands:
  list, ls      List notes, grouped by month
                hub note list -type daily -window month
                hub note list -task 42

  add, a        Add a note
                hub note add -type daily "Standup: shipped the release"
                hub note add -title "Design" -f design.md

  show, cat     Print a note rendered for the terminal
                (-raw prints the markdown, -html renders HTML)
  export        Write notes as markdown with YAML frontmatter
                hub note export -o ~/notes -all
  import        Create notes from markdown files or directories
                hub note import ~/notes (files under jobs/<name>/ get that job)
  detach        Remove an attachment (ids are listed by show)
                hub note detach Design 12
  delete, rm    Delete a note`)
}
