package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"giftledger/internal/config"
	"giftledger/internal/core"
	"giftledger/internal/ledger"
	"giftledger/internal/log"
	"giftledger/internal/report"
	"giftledger/internal/services"
	"giftledger/internal/sheets"
)

const usage = `usage: giftledger <command> [flags] [args]

commands:
  owner add <name>
  entry add|get|update|delete|list -owner ID [flags]
  import -owner ID <file.csv|file.xlsx>
  import-sheet -owner ID <A1 range>
  stats -owner ID [-months N] overall|yearly|monthly|counterparty|event-type|relation|dashboard
  stats-sync -owner ID
  template [-o file] [-columns]
`

var errUsage = errors.New("invalid usage")

func usageError(format string, args ...any) error {
	return fmt.Errorf("%w: %s", errUsage, fmt.Sprintf(format, args...))
}

// sheetClient is what the Google Sheets client offers the CLI.
type sheetClient interface {
	sheets.RangeReader
	sheets.StatsWriter
}

type app struct {
	store   ledger.Store
	entries *services.EntryService
	imports *services.ImportService
	stats   *services.StatsService
	cfg     *config.Config
	logger  *log.Logger
	out     io.Writer
	now     func() time.Time

	openSheets func(ctx context.Context) (sheetClient, error)
}

func newApp(store ledger.Store, publisher ledger.Publisher, cfg *config.Config, logger *log.Logger, out io.Writer) *app {
	return &app{
		store:   store,
		entries: services.NewEntryService(store, publisher, logger),
		imports: services.NewImportService(store, publisher, logger, services.WithMaxRows(cfg.ImportMaxRows)),
		stats:   services.NewStatsService(store, logger, services.WithDefaultMonths(cfg.StatsDefaultMonths)),
		cfg:     cfg,
		logger:  logger,
		out:     out,
		now:     time.Now,
	}
}

func (a *app) run(ctx context.Context, args []string) error {
	if len(args) == 0 {
		return usageError("missing command")
	}
	cmd, rest := args[0], args[1:]
	switch cmd {
	case "owner":
		return a.runOwner(ctx, rest)
	case "entry":
		return a.runEntry(ctx, rest)
	case "import":
		return a.runImport(ctx, rest)
	case "import-sheet":
		return a.runImportSheet(ctx, rest)
	case "stats":
		return a.runStats(ctx, rest)
	case "stats-sync":
		return a.runStatsSync(ctx, rest)
	case "template":
		return a.runTemplate(rest)
	case "help", "-h", "--help":
		_, err := fmt.Fprint(a.out, usage)
		return err
	default:
		return usageError("unknown command %q", cmd)
	}
}

func newFlagSet(name string) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	return fs
}

func parseFlags(fs *flag.FlagSet, args []string) error {
	if err := fs.Parse(args); err != nil {
		return usageError("%s: %v", fs.Name(), err)
	}
	return nil
}

func requireOwnerFlag(name string, owner int64) error {
	if owner <= 0 {
		return usageError("%s: -owner is required", name)
	}
	return nil
}

func (a *app) runOwner(ctx context.Context, args []string) error {
	if len(args) < 2 || args[0] != "add" {
		return usageError("owner add <name>")
	}
	name := strings.TrimSpace(strings.Join(args[1:], " "))
	if name == "" {
		return usageError("owner add: name is required")
	}
	o, err := a.store.CreateOwner(ctx, name)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintf(a.out, "%d\t%s\n", o.ID, o.Name)
	return err
}

func (a *app) runImport(ctx context.Context, args []string) error {
	fs := newFlagSet("import")
	owner := fs.Int64("owner", 0, "owner id")
	asJSON := fs.Bool("json", false, "print JSON")
	if err := parseFlags(fs, args); err != nil {
		return err
	}
	if err := requireOwnerFlag("import", *owner); err != nil {
		return err
	}
	if fs.NArg() != 1 {
		return usageError("import: exactly one file is required")
	}
	data, err := os.ReadFile(fs.Arg(0))
	if err != nil {
		return fmt.Errorf("read %s: %w", fs.Arg(0), err)
	}
	res, err := a.imports.Import(ctx, *owner, data)
	if err != nil {
		return err
	}
	return a.printImport(res, *asJSON)
}

func (a *app) runImportSheet(ctx context.Context, args []string) error {
	fs := newFlagSet("import-sheet")
	owner := fs.Int64("owner", 0, "owner id")
	asJSON := fs.Bool("json", false, "print JSON")
	if err := parseFlags(fs, args); err != nil {
		return err
	}
	if err := requireOwnerFlag("import-sheet", *owner); err != nil {
		return err
	}
	if fs.NArg() != 1 {
		return usageError("import-sheet: exactly one A1 range is required")
	}
	client, err := a.sheets(ctx)
	if err != nil {
		return err
	}
	res, err := a.imports.ImportRange(ctx, *owner, client, fs.Arg(0))
	if err != nil {
		return err
	}
	return a.printImport(res, *asJSON)
}

func (a *app) printImport(res core.ImportResult, asJSON bool) error {
	if asJSON {
		return report.JSON(a.out, res)
	}
	return report.ImportResult(a.out, res)
}

func (a *app) sheets(ctx context.Context) (sheetClient, error) {
	if a.openSheets == nil {
		return nil, errors.New("google sheets is not configured")
	}
	return a.openSheets(ctx)
}

var statsViews = []string{"overall", "yearly", "monthly", "counterparty", "event-type", "relation", "dashboard"}

func (a *app) runStats(ctx context.Context, args []string) error {
	fs := newFlagSet("stats")
	owner := fs.Int64("owner", 0, "owner id")
	months := fs.Int("months", 0, "monthly window in months (default from STATS_DEFAULT_MONTHS)")
	asJSON := fs.Bool("json", false, "print JSON")
	if err := parseFlags(fs, args); err != nil {
		return err
	}
	if err := requireOwnerFlag("stats", *owner); err != nil {
		return err
	}
	view := "dashboard"
	if fs.NArg() > 0 {
		view = fs.Arg(0)
	}

	var (
		v      any
		render func() error
		err    error
	)
	switch view {
	case "overall":
		var s core.OverallStats
		s, err = a.stats.Overall(ctx, *owner)
		v, render = s, func() error { return report.Overall(a.out, s) }
	case "yearly":
		var s []core.YearlyStats
		s, err = a.stats.Yearly(ctx, *owner)
		v, render = s, func() error { return report.Yearly(a.out, s) }
	case "monthly":
		var s []core.MonthlyStats
		s, err = a.stats.Monthly(ctx, *owner, *months)
		v, render = s, func() error { return report.Monthly(a.out, s) }
	case "counterparty":
		var s []core.CounterpartyStats
		s, err = a.stats.ByCounterparty(ctx, *owner)
		v, render = s, func() error { return report.ByCounterparty(a.out, s) }
	case "event-type":
		var s []core.EventTypeStats
		s, err = a.stats.ByEventType(ctx, *owner)
		v, render = s, func() error { return report.ByEventType(a.out, s) }
	case "relation":
		var s []core.RelationStats
		s, err = a.stats.ByRelation(ctx, *owner)
		v, render = s, func() error { return report.ByRelation(a.out, s) }
	case "dashboard":
		var s core.Dashboard
		s, err = a.stats.Dashboard(ctx, *owner, *months)
		v, render = s, func() error { return report.Dashboard(a.out, s) }
	default:
		return usageError("stats: unknown view %q (one of %s)", view, strings.Join(statsViews, ", "))
	}
	if err != nil {
		return err
	}
	if *asJSON {
		return report.JSON(a.out, v)
	}
	return render()
}

// runStatsSync writes one owner's dashboard to the mirror sheet right away,
// without going through the worker.
func (a *app) runStatsSync(ctx context.Context, args []string) error {
	fs := newFlagSet("stats-sync")
	owner := fs.Int64("owner", 0, "owner id")
	if err := parseFlags(fs, args); err != nil {
		return err
	}
	if err := requireOwnerFlag("stats-sync", *owner); err != nil {
		return err
	}
	client, err := a.sheets(ctx)
	if err != nil {
		return err
	}
	syncCfg := services.DefaultStatsSyncerConfig()
	syncCfg.SheetPrefix = a.cfg.GoogleStatsSheetPrefix
	syncCfg.Months = a.cfg.StatsDefaultMonths
	syncer := services.NewStatsSyncer(a.stats, client, syncCfg, a.logger)
	if err := syncer.Sync(ctx, *owner); err != nil {
		return err
	}
	_, err = fmt.Fprintf(a.out, "owner %d synced\n", *owner)
	return err
}

func (a *app) runTemplate(args []string) error {
	fs := newFlagSet("template")
	outPath := fs.String("o", "", "write the CSV template to this file instead of stdout")
	columns := fs.Bool("columns", false, "describe the import columns instead")
	if err := parseFlags(fs, args); err != nil {
		return err
	}
	if *columns {
		for _, c := range core.TemplateColumns {
			req := "선택"
			if c.Required {
				req = "필수"
			}
			if _, err := fmt.Fprintf(a.out, "%s\t%s\t%s\n", c.Name, req, c.Description); err != nil {
				return err
			}
		}
		return nil
	}
	data, err := core.TemplateCSV(core.Today(a.now))
	if err != nil {
		return err
	}
	if *outPath == "" {
		_, err = a.out.Write(data)
		return err
	}
	return os.WriteFile(*outPath, data, 0o644)
}

func parseID(name, s string) (int64, error) {
	id, err := strconv.ParseInt(s, 10, 64)
	if err != nil || id <= 0 {
		return 0, usageError("%s: invalid id %q", name, s)
	}
	return id, nil
}
