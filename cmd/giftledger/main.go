package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"time"

	"giftledger/internal/backend"
	"giftledger/internal/cli"
	"giftledger/internal/core"
	"giftledger/internal/log"
	"giftledger/internal/report"
	gsheet "giftledger/internal/sheets/google"
)

func main() {
	if err := cli.LoadEnvFile(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	cfg, err := cli.LoadAndValidateConfig()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	// stdout carries command output; logs go to stderr
	logger, err := cli.SetupLogger(cfg, os.Stderr, log.ComponentCLI)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	bcfg, err := backend.FromAppConfig(cfg)
	if err != nil {
		logger.Error("Invalid backend configuration", "error", err)
		os.Exit(1)
	}
	res, err := backend.NewFactory(logger).CreateBackend(ctx, bcfg)
	if err != nil {
		logger.Error("Failed to initialize backend", "error", err, log.FieldBackend, bcfg.Type.String())
		os.Exit(1)
	}

	a := newApp(res.Store, res.Publisher, cfg, logger, os.Stdout)
	a.openSheets = func(ctx context.Context) (sheetClient, error) {
		if !cfg.SheetsConfigured() {
			return nil, errors.New("GOOGLE_SPREADSHEET_ID is not set")
		}
		client, err := gsheet.New(ctx, gsheet.Config{
			SpreadsheetID:      cfg.GoogleSpreadsheetID,
			ServiceAccountJSON: cfg.GoogleServiceAccountJSON,
			ServiceAccountFile: cfg.GoogleServiceAccountFile,
		})
		if err != nil {
			return nil, err
		}
		return client, nil
	}

	runErr := a.run(ctx, os.Args[1:])
	if err := res.Cleanup(); err != nil {
		logger.Warn("Cleanup failed", "error", err)
	}
	if runErr != nil {
		os.Exit(exitCode(runErr, logger))
	}
}

// exitCode reports runErr and maps it to the process status: 2 for usage
// and validation problems, 1 for everything else.
func exitCode(err error, logger *log.Logger) int {
	var ie *core.ImportError
	switch {
	case errors.Is(err, errUsage):
		fmt.Fprintln(os.Stderr, err)
		fmt.Fprint(os.Stderr, usage)
		return 2
	case errors.As(err, &ie):
		_ = report.ImportFailure(os.Stderr, ie)
		return 2
	case core.IsValidation(err), core.IsNotFound(err):
		fmt.Fprintln(os.Stderr, err)
		return 2
	default:
		logger.Fields(context.Background(), slog.LevelError, "Command failed", log.NewFields().WithError(err))
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
}
