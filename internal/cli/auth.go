package cli

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"strings"
)

func runLogin(args []string, app *App) int {
	fs := flag.NewFlagSet("login", flag.ContinueOnError)
	fs.SetOutput(app.err())
	username := fs.String("u", "", "Username")
	password := fs.String("p", "", "Password (read from stdin when omitted)")
	if err := fs.Parse(args); err != nil {
		return 1
	}

	reader := bufio.NewReader(app.in())
	if *username == "" {
		fmt.Fprint(app.out(), "Username: ")
		line, _ := reader.ReadString('\n')
		*username = strings.TrimSpace(line)
	}
	if *password == "" {
		fmt.Fprint(app.out(), "Password: ")
		line, _ := reader.ReadString('\n')
		*password = strings.TrimRight(line, "\r\n")
	}
	if *username == "" || *password == "" {
		return app.fail("username and password are required")
	}

	ctx := context.Background()
	if err := app.Hub.Client.Login(ctx, *username, *password); err != nil {
		return reportErr(app, "login failed", err)
	}

	if u, err := app.Hub.Client.Me(ctx); err == nil {
		app.printf("Logged in as %s\n", u.DisplayName())
	} else {
		app.printf("Logged in as %s\n", *username)
	}
	return 0
}

func runLogout(args []string, app *App) int {
	if err := app.Hub.Client.Logout(context.Background()); err != nil {
		return app.fail("logout: %v", err)
	}
	app.printf("Logged out.\n")
	return 0
}

func runWhoami(args []string, app *App) int {
	if !app.Hub.Client.Session().Authenticated() {
		return app.fail("not logged in. Run \"hub login\".")
	}
	u, err := app.Hub.Client.Me(context.Background())
	if err != nil {
		return reportErr(app, "whoami", err)
	}
	app.printf("%s (%s)\n", u.DisplayName(), u.Email)

	p, ok, err := app.Hub.Profiles.Current(context.Background())
	switch {
	case err != nil:
		return reportErr(app, "whoami", err)
	case ok:
		app.printf("Timezone: %s\nDay: %s\n", p.Timezone, p.Hours())
	}
	return 0
}
