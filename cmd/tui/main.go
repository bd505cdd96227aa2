// Package main is the entry point for the trip companion terminal client.
// It wires a shell to the configured document store and runs the Bubble Tea program.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/joho/godotenv"

	"github.com/pkordes/companion/internal/config"
	"github.com/pkordes/companion/internal/docstore"
	"github.com/pkordes/companion/internal/logging"
	"github.com/pkordes/companion/internal/shell"
	"github.com/pkordes/companion/internal/tui"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, "companion:", err)
		os.Exit(1)
	}
}

func run() error {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		return err
	}

	// The alt screen owns stdout, so logs go to a file.
	logFile, err := os.OpenFile(cfg.LogFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return fmt.Errorf("open log file: %w", err)
	}
	defer logFile.Close()
	logger := logging.New(cfg.LogLevel, logFile)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGTERM)
	defer stop()

	store, err := docstore.Open(ctx, docstore.Options{
		Backend:     cfg.StoreBackend,
		DatabaseURL: cfg.DatabaseURL,
		SQLitePath:  cfg.SQLitePath,
	})
	if err != nil {
		return err
	}
	defer store.Close()

	var notifier tui.Notifier
	sh := shell.New(store, logger, shell.WithChangeHook(notifier.Hook))
	defer sh.Close()

	p := tea.NewProgram(tui.New(sh), tea.WithAltScreen(), tea.WithContext(ctx))
	notifier.Attach(p)

	if err := sh.Start(ctx); err != nil {
		return err
	}

	if _, err := p.Run(); err != nil && ctx.Err() == nil {
		return err
	}
	logging.For(logger, logging.ComponentTUI).Info("terminal client stopped")
	return nil
}
