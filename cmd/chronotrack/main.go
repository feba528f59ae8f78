package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/nkall/chronotrack/internal/cli"
	"github.com/nkall/chronotrack/internal/config"
	"github.com/nkall/chronotrack/internal/display"
	"github.com/nkall/chronotrack/internal/domain/edit"
	"github.com/nkall/chronotrack/internal/domain/hierarchy"
	"github.com/nkall/chronotrack/internal/domain/timer"
	"github.com/nkall/chronotrack/internal/sqlite"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config error: %v\n", err)
		os.Exit(1)
	}

	// Keep stdout clean for command output and piped exports.
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: parseLogLevel(cfg.Log.Level),
	}))

	if err := ensureDBDir(cfg.DB.Path); err != nil {
		logger.Error("failed to prepare database path", "error", err)
		os.Exit(1)
	}

	db, err := sqlite.New(cfg.DB.Path)
	if err != nil {
		logger.Error("failed to open database", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	if err := db.RunMigrations(); err != nil {
		logger.Error("failed to run migrations", "error", err)
		os.Exit(1)
	}

	entryRepo := sqlite.NewEntryRepository(db)

	timerSvc := timer.NewService(entryRepo, logger)
	hierarchySvc := hierarchy.NewService(entryRepo, logger)
	editSvc := edit.NewService(entryRepo, logger)

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if err := timerSvc.Restore(ctx); err != nil {
		logger.Error("failed to restore timer state", "error", err)
		os.Exit(1)
	}

	app := &cli.App{
		Timer:     timerSvc,
		Hierarchy: hierarchySvc,
		Edits:     editSvc,
		Entries:   entryRepo,
		Out:       display.NewStdout(),
		Config:    cfg,
	}

	if err := app.Root().ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func parseLogLevel(level string) slog.Level {
	switch level {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func ensureDBDir(path string) error {
	dir := filepath.Dir(path)
	if dir == "." || dir == "" {
		return nil
	}
	return os.MkdirAll(dir, 0o755)
}
