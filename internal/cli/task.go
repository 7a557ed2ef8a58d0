package cli

import (
	"context"
	"flag"
	"fmt"
	"strings"

	"hub/internal/config"
	"hub/internal/models"
	"hub/internal/service"
)

func runTaskCommand(args []string, app *App) int {
	if len(args) == 0 {
		app.printTaskUsage()
		return 1
	}

	command := args[0]
	cmdArgs := args[1:]

	switch command {
	case "add", "a":
		return runTaskAdd(cmdArgs, app)
	case "list", "ls", "l":
		return runTaskList(cmdArgs, app)
	case "status", "mv":
		return runTaskStatus(cmdArgs, app)
	case "done", "do", "d":
		return runTaskDone(cmdArgs, app)
	case "delete", "rm", "del":
		return runTaskDelete(cmdArgs, app)
	case "help", "-h", "--help":
		app.printTaskUsage()
		return 0
	default:
		fmt.Fprintf(app.err(), "Unknown task command: %s\n", command)
		app.printTaskUsage()
		return 1
	}
}

func runTaskList(args []string, app *App) int {
	fs := flag.NewFlagSet("list", flag.ContinueOnError)
	fs.SetOutput(app.err())
	lf := addListFlags(fs, "day")
	status := fs.String("status", "all", "Filter by status: todo, in_progress, done")
	tag := fs.String("tag", "", "Filter by tag name")
	if err := fs.Parse(args); err != nil {
		return 1
	}

	cats := map[string]string{"tag": *tag}
	if *status != "all" && *status != "" {
		st, ok := models.ParseStatus(*status)
		if !ok {
			return app.fail("unknown status %q", *status)
		}
		cats["status"] = string(st)
	}

	svc := app.Hub.Tasks
	m, err := buildModel(context.Background(), app, svc.NewCollection(), svc.View, lf, cats)
	if err != nil {
		return reportErr(app, "loading tasks", err)
	}

	printPage(app, m, "task(s)", formatTask)
	return 0
}

func formatTask(t models.Task) string {
	mark := " "
	switch t.Status {
	case models.StatusInProgress:
		mark = "~"
	case models.StatusDone:
		mark = "x"
	}

	line := fmt.Sprintf("[%d] %s %s", t.ID, mark, t.Title)
	var meta []string
	for _, name := range t.TagNames() {
		meta = append(meta, "#"+name)
	}
	if len(meta) > 0 {
		line += "  " + strings.Join(meta, " ")
	}
	return line
}

func runTaskAdd(args []string, app *App) int {
	fs := flag.NewFlagSet("add", flag.ContinueOnError)
	fs.SetOutput(app.err())
	due := fs.String("due", "", "Due date (YYYY-MM-DD)")
	desc := fs.String("desc", "", "Description")
	status := fs.String("status", "todo", "Initial status")
	tags := fs.String("tags", "", "Comma-separated tag names")
	if err := fs.Parse(args); err != nil {
		return 1
	}
	if fs.NArg() == 0 {
		return usageError(app, `hub task add [-due YYYY-MM-DD] [-tags a,b] "Task title"`)
	}

	st, ok := models.ParseStatus(*status)
	if !ok {
		return app.fail("unknown status %q", *status)
	}

	in := service.TaskInput{
		Title:       strings.Join(fs.Args(), " "),
		Description: *desc,
		Status:      st,
	}
	if *due != "" {
		in.DueDate = due
	}

	ctx := context.Background()
	svc := app.Hub.Tasks
	if names := config.ParseCommaSeparated(*tags); len(names) > 0 {
		ids, err := svc.ResolveTags(ctx, names)
		if err != nil {
			return reportErr(app, "resolving tags", err)
		}
		in.TagIDs = ids
	}

	c := svc.NewCollection()
	task, err := svc.Create(ctx, c, in)
	if err != nil {
		return reportErr(app, "adding task", err)
	}

	app.printf("Added: %s\n", task.Title)
	app.printf("ID: %d\n", task.ID)
	return 0
}

func runTaskStatus(args []string, app *App) int {
	if len(args) < 2 {
		return usageError(app, "hub task status <task> <todo|in_progress|done>")
	}
	st, ok := models.ParseStatus(args[len(args)-1])
	if !ok {
		return app.fail("unknown status %q", args[len(args)-1])
	}
	return setTaskStatus(app, strings.Join(args[:len(args)-1], " "), &st)
}

func runTaskDone(args []string, app *App) int {
	if len(args) == 0 {
		return usageError(app, "hub task done <task>")
	}
	done := models.StatusDone
	return setTaskStatus(app, strings.Join(args, " "), &done)
}

func setTaskStatus(app *App, ref string, status *models.TaskStatus) int {
	ctx := context.Background()
	svc := app.Hub.Tasks
	c := svc.NewCollection()
	items, err := c.Reload(ctx)
	if err != nil {
		return reportErr(app, "loading tasks", err)
	}

	task, err := resolve(items, ref, svc.View.ID, func(t models.Task) string { return t.Title })
	if err != nil {
		return app.fail("%v", err)
	}

	if task.Status == *status {
		app.printf("Task already %s: %s\n", strings.ToLower(status.Label()), task.Title)
		return 0
	}

	updated, err := svc.SetStatus(ctx, c, task.ID, *status)
	if err != nil {
		return reportErr(app, "updating task", err)
	}

	app.printf("%s: %s\n", updated.Status.Label(), updated.Title)
	return 0
}

func runTaskDelete(args []string, app *App) int {
	if len(args) == 0 {
		return usageError(app, "hub task delete <task>")
	}

	ctx := context.Background()
	svc := app.Hub.Tasks
	c := svc.NewCollection()
	items, err := c.Reload(ctx)
	if err != nil {
		return reportErr(app, "loading tasks", err)
	}

	task, err := resolve(items, strings.Join(args, " "), svc.View.ID, func(t models.Task) string { return t.Title })
	if err != nil {
		return app.fail("%v", err)
	}

	if err := c.Delete(ctx, task.ID); err != nil {
		return reportErr(app, "deleting task", err)
	}

	app.printf("Deleted: %s\n", task.Title)
	return 0
}

func (a *App) printTaskUsage() {
	fmt.Fprintln(a.out(), `hub task - Task commands

Usage: hub task <command> [flags] [arguments]

Commands:
  add, a        Add a new task
                hub task add -due 2024-03-15 -tags work,urgent "Write report"

  list, ls, l   List tasks, grouped by due day
                hub task list -status todo
                hub task list -tag work -window month -group week

  status, mv    Move a task to another status
                hub task status "write report" in_progress

  done, do, d   Mark a task as done
                hub task done 42

  delete, rm    Delete a task
                hub task delete "write report"

Tasks can be referenced by id or by (fuzzy) title.`)
}
