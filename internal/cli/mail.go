package cli

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"

	"hub/internal/api"
	"hub/internal/config"
	"hub/internal/logs"
	"hub/internal/models"
	"hub/internal/poller"
	"hub/internal/service"
	"hub/internal/view"
)

func runMailCommand(args []string, app *App) int {
	if len(args) == 0 {
		app.printMailUsage()
		return 1
	}

	command := args[0]
	cmdArgs := args[1:]

	switch command {
	case "accounts":
		return runMailAccounts(cmdArgs, app)
	case "list", "ls", "l":
		return runMailList(cmdArgs, app)
	case "read", "show":
		return runMailRead(cmdArgs, app)
	case "sync":
		return runMailSync(cmdArgs, app)
	case "analyze":
		return runMailAnalyze(cmdArgs, app)
	case "watch":
		return runMailWatch(cmdArgs, app)
	case "help", "-h", "--help":
		app.printMailUsage()
		return 0
	default:
		fmt.Fprintf(app.err(), "Unknown mail command: %s\n", command)
		app.printMailUsage()
		return 1
	}
}

func runMailAccounts(args []string, app *App) int {
	accounts, err := app.Hub.Mail.Accounts(context.Background())
	if err != nil {
		return reportErr(app, "loading accounts", err)
	}
	if len(accounts) == 0 {
		app.printf("No accounts configured.\n")
		return 0
	}
	for _, a := range accounts {
		state := ""
		if !a.IsActive {
			state = "  (inactive)"
		}
		app.printf("[%d] %s <%s> %s%s\n", a.ID, a.Label, a.EmailAddress, a.Provider, state)
	}
	return 0
}

func runMailList(args []string, app *App) int {
	fs := flag.NewFlagSet("list", flag.ContinueOnError)
	fs.SetOutput(app.err())
	lf := addListFlags(fs, "day")
	account := fs.Int64("account", 0, "Only this account id")
	folder := fs.String("folder", "", "Only this folder")
	unread := fs.Bool("unread", false, "Only unread messages")
	if err := fs.Parse(args); err != nil {
		return 1
	}

	svc := app.Hub.Mail
	c := svc.NewCollection()
	c.SetQuery(service.MessageQuery(*account, *folder, *unread))

	m, err := buildModel(context.Background(), app, c, svc.View, lf, nil)
	if err != nil {
		return reportErr(app, "loading mail", err)
	}

	printPage(app, m, "message(s)", formatMessage)
	return 0
}

func formatMessage(msg models.EmailMessage) string {
	mark := " "
	if !msg.IsRead {
		mark = "*"
	}
	return fmt.Sprintf("[%d] %s %-24s %s", msg.ID, mark, truncate(msg.FromEmail, 24), truncate(msg.Subject, 60))
}

func parseID(ref string) (int64, error) {
	id, err := strconv.ParseInt(strings.TrimPrefix(strings.TrimSpace(ref), "#"), 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid id %q", ref)
	}
	return id, nil
}

func runMailRead(args []string, app *App) int {
	if len(args) != 1 {
		return usageError(app, "hub mail read <message id>")
	}
	id, err := parseID(args[0])
	if err != nil {
		return app.fail("%v", err)
	}

	msg, err := app.Hub.Mail.Resource.Get(context.Background(), id)
	if err != nil {
		return reportErr(app, "loading message", err)
	}

	app.printf("From:    %s\n", msg.FromEmail)
	app.printf("To:      %s\n", msg.ToEmails)
	if msg.CCEmails != "" {
		app.printf("Cc:      %s\n", msg.CCEmails)
	}
	if when := view.FormatWhen(msg.SentAt, app.now().Location()); when != "" {
		app.printf("Date:    %s\n", when)
	}
	app.printf("Subject: %s\n\n%s\n", msg.Subject, strings.TrimRight(msg.BodyText, "\n"))
	return 0
}

func runMailSync(args []string, app *App) int {
	if len(args) != 1 {
		return usageError(app, "hub mail sync <account id>")
	}
	id, err := parseID(args[0])
	if err != nil {
		return app.fail("%v", err)
	}

	result, err := app.Hub.Mail.Sync(context.Background(), id)
	if err != nil {
		var syncErr *service.SyncError
		if errors.As(err, &syncErr) {
			return app.fail("sync failed: %s", syncErr.Detail)
		}
		return reportErr(app, "sync failed", err)
	}

	app.printf("Synced account %d: %d new message(s)\n", id, result.Imported)
	return 0
}

func runMailAnalyze(args []string, app *App) int {
	if len(args) != 1 {
		return usageError(app, "hub mail analyze <message id>")
	}
	id, err := parseID(args[0])
	if err != nil {
		return app.fail("%v", err)
	}

	result, err := app.Hub.Mail.Analyze(context.Background(), id)
	if err != nil {
		return reportErr(app, "analyze failed", err)
	}

	if len(result.Tasks) == 0 && len(result.Notes) == 0 {
		app.printf("Nothing to extract.\n")
		return 0
	}
	for _, t := range result.Tasks {
		app.printf("Task: %s\n", formatTask(t))
	}
	for _, n := range result.Notes {
		app.printf("Note: [%d] %s\n", n.ID, n.Title)
	}
	return 0
}

func runMailWatch(args []string, app *App) int {
	fs := flag.NewFlagSet("watch", flag.ContinueOnError)
	fs.SetOutput(app.err())
	account := fs.Int64("account", 0, "Only this account id")
	interval := fs.Duration("every", 0, "Poll interval (defaults to the configured unread interval)")
	if err := fs.Parse(args); err != nil {
		return 1
	}

	every := *interval
	if every <= 0 {
		every = config.DefaultUnreadInterval
		if app.Config != nil {
			every = app.Config.UnreadInterval
		}
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()
	ctx, expire := context.WithCancelCause(ctx)
	defer expire(nil)

	last := -1
	check := func(ctx context.Context) error {
		n, err := app.Hub.Mail.UnreadCount(ctx, *account)
		if errors.Is(err, api.ErrUnauthorized) {
			expire(err)
		}
		if err != nil {
			return err
		}
		if n != last {
			app.printf("%s  %d unread\n", app.now().Format("15:04:05"), n)
			last = n
		}
		return nil
	}

	if err := check(ctx); err != nil {
		return reportErr(app, "checking mail", err)
	}

	stop := poller.Start(ctx, every, check, logs.Logger.WithField("poll", "unread"))
	defer stop()

	<-ctx.Done()
	if err := context.Cause(ctx); errors.Is(err, api.ErrUnauthorized) {
		return reportErr(app, "checking mail", err)
	}
	return 0
}

func (a *App) printMailUsage() {
	fmt.Fprintln(a.out(), `hub mail - Mail commands

Usage: hub mail <command> [flags] [arguments]

Commands:
  accounts      List mail accounts
  list, ls      List messages, newest first, grouped by day
                hub mail list -account 1 -unread
                hub mail list -q invoice -window month

  read <id>     Print a message
  sync <id>     Fetch new mail for an account
  analyze <id>  Create tasks and notes from a message
  watch         Print the unread count whenever it changes
                hub mail watch -every 30s`)
}
