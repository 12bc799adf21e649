package main

import (
	"context"
	"flag"
	"log"
	"time"

	"github.com/dvloznov/finance-insights/internal/config"
	infraBQ "github.com/dvloznov/finance-insights/internal/infra/bigquery"
	"github.com/dvloznov/finance-insights/internal/logger"
	"github.com/dvloznov/finance-insights/internal/store/sqlite"
)

var (
	dbPath    = flag.String("db", "", "SQLite database path (defaults to DB_PATH)")
	appliedBy = flag.String("applied-by", "migrate-cli", "Name of the tool applying migrations")
	dryRun    = flag.Bool("dry-run", false, "List pending migrations without applying them")
	archive   = flag.Bool("archive", false, "Also create the BigQuery analysis_runs table when BQ_PROJECT is set")
)

func main() {
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	if *dbPath == "" {
		*dbPath = cfg.Database.Path
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()
	ctx = logger.WithContext(ctx, logger.NewWithLevel(cfg.Log.Level))

	st, err := sqlite.Open(*dbPath)
	if err != nil {
		log.Fatalf("Failed to open database: %v", err)
	}
	defer st.Close()

	log.Printf("Opened database: %s", *dbPath)

	statuses, err := sqlite.Status(ctx, st.DB())
	if err != nil {
		log.Fatalf("Failed to read migration status: %v", err)
	}
	log.Printf("Found %d migration files", len(statuses))

	pending := 0
	for _, s := range statuses {
		if s.Applied {
			log.Printf("  [SKIP] %04d_%s (already applied)", s.Version, s.Name)
			continue
		}
		log.Printf("  [RUN]  %04d_%s", s.Version, s.Name)
		pending++
	}

	switch {
	case pending == 0:
		log.Println("No new migrations to apply. Database is up to date.")
	case *dryRun:
		log.Printf("Dry run: %d migration(s) pending", pending)
	default:
		applied, err := sqlite.Migrate(ctx, st.DB(), *appliedBy)
		if err != nil {
			log.Fatalf("Failed to apply migrations: %v", err)
		}
		log.Printf("  [OK]   Successfully applied %d migration(s)", applied)
	}

	if *archive && !*dryRun {
		ensureArchive(ctx, cfg)
	}
}

func ensureArchive(ctx context.Context, cfg *config.Config) {
	if !cfg.ArchiveEnabled() {
		log.Println("BQ_PROJECT is not set, skipping analysis_runs table")
		return
	}

	repo, err := infraBQ.NewBigQueryRunRepository(ctx, cfg.Archive.BigQueryProject, cfg.Archive.BigQueryDataset)
	if err != nil {
		log.Fatalf("Failed to create BigQuery client: %v", err)
	}
	defer repo.Close()

	created, err := repo.EnsureTable(ctx)
	if err != nil {
		log.Fatalf("Failed to ensure analysis_runs table: %v", err)
	}
	if created {
		log.Printf("  [OK]   Created %s.%s.analysis_runs", cfg.Archive.BigQueryProject, cfg.Archive.BigQueryDataset)
	} else {
		log.Printf("  [SKIP] %s.%s.analysis_runs (already exists)", cfg.Archive.BigQueryProject, cfg.Archive.BigQueryDataset)
	}
}
