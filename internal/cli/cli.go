package cli

import (
	"fmt"
	"io"
	"os"
	"time"

	"hub/internal/config"
	"hub/internal/service"
)

// App carries what commands need. Zero-valued streams fall back to the
// process's stdio.
type App struct {
	Hub    *service.Hub
	Config *config.Config
	Out    io.Writer
	Err    io.Writer
	In     io.Reader
	Now    func() time.Time
}

func (a *App) out() io.Writer {
	if a.Out == nil {
		return os.Stdout
	}
	return a.Out
}

func (a *App) err() io.Writer {
	if a.Err == nil {
		return os.Stderr
	}
	return a.Err
}

func (a *App) in() io.Reader {
	if a.In == nil {
		return os.Stdin
	}
	return a.In
}

func (a *App) now() time.Time {
	if a.Now == nil {
		return time.Now()
	}
	return a.Now()
}

func (a *App) pageSize() int {
	if a.Config == nil {
		return config.DefaultPageSize
	}
	return a.Config.PageSize
}

func (a *App) printf(format string, args ...any) {
	fmt.Fprintf(a.out(), format, args...)
}

// fail prints an error the way every command reports one and returns
// the exit code.
func (a *App) fail(format string, args ...any) int {
	fmt.Fprintf(a.err(), "Error: "+format+"\n", args...)
	return 1
}

// Run executes the CLI with the given arguments.
// The first argument is the namespace ("task", "note", "mail", ...).
func Run(args []string, app *App) int {
	if len(args) == 0 {
		app.printUsage()
		return 1
	}

	namespace := args[0]
	subArgs := args[1:]

	switch namespace {
	case "login":
		return runLogin(subArgs, app)
	case "logout":
		return runLogout(subArgs, app)
	case "whoami":
		return runWhoami(subArgs, app)
	case "task", "tasks":
		return runTaskCommand(subArgs, app)
	case "note", "notes":
		return runNoteCommand(subArgs, app)
	case "event", "events":
		return runEventCommand(subArgs, app)
	case "contact", "contacts":
		return runContactCommand(subArgs, app)
	case "mail":
		return runMailCommand(subArgs, app)
	case "help", "-h", "--help":
		app.printUsage()
		return 0
	default:
		fmt.Fprintf(app.err(), "Unknown command: %s\n", namespace)
		app.printUsage()
		return 1
	}
}

func (a *App) printUsage() {
	fmt.Fprintln(a.out(), `hub - Assistant Hub client: tasks, notes, calendar, contacts and mail

Usage: hub [flags] [command] [arguments]

Commands:
  login       Log in and store the session
  logout      Forget the stored session
  whoami      Show the logged-in user
  task        Task commands
  note        Note commands
  event       Calendar event commands
  contact     Contact commands
  mail        Mail commands

Flags:
      --api <url>        API base URL (default http://localhost:8000/api)
      --state <dir>      Directory for the session database and logs
      --view <name>      Initial TUI view: tasks, notes, events, contacts, mail

List commands share these flags:
  -q <text>        Free-text search
  -window <w>      all, day, month or year
  -group <g>       none, day, week or month
  -page <n>        Page number

Running hub without arguments launches the interactive TUI.
Use "hub <command> help" for subcommands.`)
}
