package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"cloud.google.com/go/civil"
	"github.com/dvloznov/finance-insights/internal/app"
	"github.com/dvloznov/finance-insights/internal/config"
	"github.com/dvloznov/finance-insights/internal/domain"
	"github.com/dvloznov/finance-insights/internal/items"
	"github.com/dvloznov/finance-insights/internal/logger"
	"github.com/rs/zerolog"
)

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	cfg, err := config.Load()
	if err != nil {
		log := logger.New()
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}
	log := logger.NewWithLevel(cfg.Log.Level)

	switch os.Args[1] {
	case "analyze":
		runAnalyze(log, cfg)
	case "items":
		runItems()
	case "summary":
		runSummary(log, cfg)
	case "runs":
		runRuns(log, cfg)
	case "raw":
		runRaw(log, cfg)
	case "help", "-h", "--help":
		printUsage()
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n\n", os.Args[1])
		printUsage()
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Println("Finance Insights CLI")
	fmt.Println("\nUsage:")
	fmt.Println("  cli <command> [options]")
	fmt.Println("\nCommands:")
	fmt.Println("  analyze   Analyze recent transactions with the configured model")
	fmt.Println("  items     Show the items derived from a description")
	fmt.Println("  summary   Print spending totals by category, date or platform")
	fmt.Println("  runs      List archived analysis runs")
	fmt.Println("  raw       Print the archived raw model output of a run")
	fmt.Println("  help      Show this help message")
	fmt.Println("\nRun 'cli <command> -h' for more information on a command.")
}

// filterFlags registers the transaction filter flags on fs.
func filterFlags(fs *flag.FlagSet) func() (domain.TransactionFilter, error) {
	from := fs.String("from", "", "Earliest date, YYYY-MM-DD")
	to := fs.String("to", "", "Latest date, YYYY-MM-DD")
	category := fs.String("category", "", "Category name")
	platform := fs.String("platform", "", "Platform name")

	return func() (domain.TransactionFilter, error) {
		filter := domain.TransactionFilter{
			Category: strings.TrimSpace(*category),
			Platform: strings.TrimSpace(*platform),
		}
		for _, f := range []struct {
			flag string
			raw  string
			dst  **civil.Date
		}{{"from", *from, &filter.DateFrom}, {"to", *to, &filter.DateTo}} {
			if f.raw == "" {
				continue
			}
			d, err := civil.ParseDate(f.raw)
			if err != nil {
				return filter, fmt.Errorf("invalid -%s: %w", f.flag, err)
			}
			*f.dst = &d
		}
		return filter, nil
	}
}

func openApp(log zerolog.Logger, cfg *config.Config) (context.Context, *app.App) {
	ctx := logger.WithContext(context.Background(), log)
	a, err := app.New(ctx, cfg, nil)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize application")
	}
	return ctx, a
}

func runAnalyze(log zerolog.Logger, cfg *config.Config) {
	fs := flag.NewFlagSet("analyze", flag.ExitOnError)
	filter := filterFlags(fs)
	prompt := fs.String("prompt", "", "Extra instruction appended to the prompt")
	model := fs.String("model", "", "Model override")
	fs.Parse(os.Args[2:])

	f, err := filter()
	if err != nil {
		log.Fatal().Err(err).Msg("Invalid filter")
	}

	ctx, a := openApp(log, cfg)
	defer a.Close()

	timeout := cfg.Generation.Timeout*time.Duration(cfg.Generation.MaxRetries+1) + 30*time.Second
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	res, err := a.Ledger.AnalyzeRecent(ctx, f, *prompt, *model)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to read transactions")
	}

	printResult(os.Stdout, res)
	if !res.OK() {
		os.Exit(2)
	}
}

func runItems() {
	fs := flag.NewFlagSet("items", flag.ExitOnError)
	description := fs.String("description", "", "Transaction description, e.g. \"Grocery (Milk, Eggs x2)\"")
	fs.Parse(os.Args[2:])

	if *description == "" {
		fmt.Fprintln(os.Stderr, "Usage: cli items -description TEXT")
		os.Exit(1)
	}

	list := items.Materialize(domain.Transaction{Description: *description}, nil)
	printItems(os.Stdout, list)
}

func runSummary(log zerolog.Logger, cfg *config.Config) {
	fs := flag.NewFlagSet("summary", flag.ExitOnError)
	filter := filterFlags(fs)
	by := fs.String("by", "category", "Grouping: category, date or platform")
	fs.Parse(os.Args[2:])

	f, err := filter()
	if err != nil {
		log.Fatal().Err(err).Msg("Invalid filter")
	}

	ctx, a := openApp(log, cfg)
	defer a.Close()

	switch *by {
	case "category":
		rows, err := a.Store.SummaryByCategory(ctx, f)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to summarize")
		}
		printCategorySummary(os.Stdout, rows)
	case "date":
		rows, err := a.Store.SummaryByDate(ctx, f)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to summarize")
		}
		printDateSummary(os.Stdout, rows)
	case "platform":
		rows, err := a.Store.SummaryByPlatform(ctx, f)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to summarize")
		}
		printPlatformSummary(os.Stdout, rows)
	default:
		log.Fatal().Str("by", *by).Msg("Unknown grouping, want category, date or platform")
	}
}

func runRuns(log zerolog.Logger, cfg *config.Config) {
	fs := flag.NewFlagSet("runs", flag.ExitOnError)
	limit := fs.Int("limit", 20, "Number of runs to list")
	purgeBefore := fs.String("purge-before", "", "Delete runs started before this date (YYYY-MM-DD) instead of listing")
	fs.Parse(os.Args[2:])

	if !cfg.ArchiveEnabled() {
		log.Fatal().Msg("Run archive is not configured, set BQ_PROJECT")
	}

	ctx, a := openApp(log, cfg)
	defer a.Close()

	if *purgeBefore != "" {
		d, err := civil.ParseDate(*purgeBefore)
		if err != nil {
			log.Fatal().Err(err).Msg("Invalid -purge-before")
		}
		if err := a.Runs.DeleteRunsBefore(ctx, d.In(time.UTC)); err != nil {
			log.Fatal().Err(err).Msg("Failed to purge runs")
		}
		fmt.Printf("Deleted runs started before %s.\n", d)
		return
	}

	runs, err := a.Runs.ListRecentRuns(ctx, *limit)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to list runs")
	}
	printRuns(os.Stdout, runs)
}

func runRaw(log zerolog.Logger, cfg *config.Config) {
	fs := flag.NewFlagSet("raw", flag.ExitOnError)
	uri := fs.String("uri", "", "gs:// URI of the archived output (raw_gcs_uri of a run)")
	fs.Parse(os.Args[2:])

	if *uri == "" {
		log.Fatal().Msg("Error: -uri is required")
	}
	if cfg.Archive.GCSBucket == "" {
		log.Fatal().Msg("Raw archive is not configured, set GCS_BUCKET")
	}

	ctx, a := openApp(log, cfg)
	defer a.Close()

	raw, err := a.Archiver.FetchRaw(ctx, *uri)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to fetch raw output")
	}
	fmt.Println(raw)
}
