package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"hub/internal/api"
	"hub/internal/cli"
	"hub/internal/config"
	"hub/internal/logs"
	"hub/internal/service"
	"hub/internal/session"
	"hub/internal/storage"
	"hub/internal/tui"
)

func main() {
	// Parse CLI flags
	apiFlag := flag.String("api", "", "Backend API base URL")
	stateFlag := flag.String("state", "", "Directory for the session database and logs")
	viewFlag := flag.String("view", "", "Initial view: tasks, notes, events, contacts, mail")
	flag.Parse()

	cfg, err := config.Load(config.CLIFlags{
		APIURL:   *apiFlag,
		StateDir: *stateFlag,
		View:     *viewFlag,
	})
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	if err := cfg.Validate(); err != nil {
		log.Fatalf("Invalid config: %v", err)
	}

	// Ensure config file exists
	if err := config.EnsureConfigFile(); err != nil {
		log.Printf("Warning: could not create config file: %v", err)
	}

	if err := logs.Initialize(cfg.StateDir, cfg.LogLevel); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: Could not initialize logger: %v\n", err)
	}
	defer logs.Close()

	store, err := storage.Open(cfg.StorePath())
	if err != nil {
		log.Fatalf("Failed to open state database: %v", err)
	}
	defer store.Close()

	sess, err := session.Load(context.Background(), store)
	if err != nil {
		logs.Logger.WithError(err).Warn("Could not restore session")
		sess = session.New(store)
	}

	hub := service.New(api.New(cfg.APIURL, sess), cfg.PageSize)

	// Check for CLI subcommands
	if args := flag.Args(); len(args) > 0 {
		code := cli.Run(args, &cli.App{Hub: hub, Config: cfg})
		logs.Close()
		store.Close()
		os.Exit(code)
	}

	// TUI mode
	logs.Logger.WithField("api", cfg.APIURL).Info("Starting app in TUI mode")
	p := tea.NewProgram(tui.NewAppModel(cfg, hub), tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		fmt.Println("Error running program:", err)
		os.Exit(1)
	}
}
