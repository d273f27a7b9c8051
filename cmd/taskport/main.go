package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/alexanderramin/taskport/internal/cli"
	"github.com/alexanderramin/taskport/internal/cli/formatter"
	"github.com/alexanderramin/taskport/internal/config"
	"github.com/alexanderramin/taskport/internal/db"
	"github.com/alexanderramin/taskport/internal/report"
	"github.com/alexanderramin/taskport/internal/repository"
	"github.com/alexanderramin/taskport/internal/service"
	"github.com/mattn/go-isatty"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	// Open database
	database, err := db.OpenDB(cfg.DBPath)
	if err != nil {
		return fmt.Errorf("opening database: %w", err)
	}
	defer database.Close()

	calendar, err := cfg.Calendar()
	if err != nil {
		return fmt.Errorf("building calendar: %w", err)
	}

	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))
	var observer service.UseCaseObserver = service.NoopUseCaseObserver{}
	if cfg.LogUseCases {
		observer = service.NewLogUseCaseObserver(logger)
	}

	// Wire unit of work for transactional operations
	uow := db.NewSQLiteUnitOfWork(database)
	reports := report.NewCSVWriter(cfg.ReportDir)

	app := &cli.App{
		Projects: service.NewProjectService(repository.NewSQLiteProjectRepo(database)),
		Imports: service.NewImportService(uow, reports, service.ImportOptions{
			MaxBytes:             cfg.MaxUploadBytes,
			CheckPersistedCycles: cfg.CheckPersistedCycles,
			Logger:               logger,
		}, observer),
		Tasks:        service.NewTaskService(uow, calendar, observer),
		Dependencies: service.NewDependencyService(uow),
		Calendar:     calendar,
		Reports:      reports,
	}

	// Colors and borders only when stdout is a terminal.
	out := os.Stdout.Fd()
	formatter.SetPlain(!isatty.IsTerminal(out) && !isatty.IsCygwinTerminal(out))

	return cli.NewRootCmd(app).Execute()
}
