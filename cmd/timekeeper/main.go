package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/alexanderramin/timekeeper/internal/cli"
	"github.com/alexanderramin/timekeeper/internal/config"
	"github.com/alexanderramin/timekeeper/internal/db"
	"github.com/alexanderramin/timekeeper/internal/repository"
	"github.com/alexanderramin/timekeeper/internal/service"
	"github.com/mattn/go-isatty"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// .env in the working directory, then one next to the settings file.
	configDir, err := config.Dir()
	if err != nil {
		return fmt.Errorf("finding config directory: %w", err)
	}
	if err := config.LoadDotEnv(".env", filepath.Join(configDir, ".env")); err != nil {
		return err
	}

	settingsPath, err := config.DefaultPath()
	if err != nil {
		return fmt.Errorf("finding settings file: %w", err)
	}
	settings, err := config.Load(settingsPath)
	if err != nil {
		return err
	}

	dbPath, err := settings.ResolveDBPath()
	if err != nil {
		return fmt.Errorf("finding data directory: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
		return fmt.Errorf("creating data directory: %w", err)
	}

	// Open database
	database, err := db.OpenDB(dbPath)
	if err != nil {
		return fmt.Errorf("opening database: %w", err)
	}
	defer database.Close()

	// Structured logs go to stderr so they never mix with command output.
	var observer service.UseCaseObserver = service.NoopUseCaseObserver{}
	if level, ok := settings.SlogLevel(); ok {
		logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
		observer = service.NewSlogUseCaseObserver(logger)
	}
	opts := []service.Option{
		service.WithOpenSessionPolicy(settings.Policy()),
		service.WithObserver(observer),
	}

	// Wire repositories
	entryRepo := repository.NewSQLiteEntryRepo(database)
	projectRepo := repository.NewSQLiteProjectRepo(database)

	// Wire unit of work for transactional operations
	uow := db.NewSQLiteUnitOfWork(database)

	app := &cli.App{
		Entries: service.NewTimeEntryManager(entryRepo, projectRepo, uow, opts...),
		Reports: service.NewReportService(entryRepo, service.ReportSettings{
			WeekStart:  settings.WeekStart(),
			DailyGoal:  settings.DailyGoal,
			WeeklyGoal: settings.WeeklyGoal,
		}, opts...),
		Projects:     service.NewProjectService(projectRepo, opts...),
		Settings:     settings,
		SettingsPath: settingsPath,
	}

	// Detect interactive terminal for the bare command's live view.
	app.IsInteractive = func() bool {
		return isatty.IsTerminal(os.Stdin.Fd()) || isatty.IsCygwinTerminal(os.Stdin.Fd())
	}

	// Execute root command
	return cli.NewRootCmd(app).ExecuteContext(ctx)
}
