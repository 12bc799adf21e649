package sqlite

import (
	"context"
	"crypto/sha256"
	"database/sql"
	"embed"
	"fmt"
	"io/fs"
	"regexp"
	"sort"
	"strconv"
	"time"

	"github.com/dvloznov/finance-insights/internal/logger"
)

//go:embed migrations/*.sql
var migrationFiles embed.FS

// migrationPattern matches migration files: 0001_name.sql
var migrationPattern = regexp.MustCompile(`^(\d{4})_(.+)\.sql$`)

// Migration is a single embedded migration file.
type Migration struct {
	Version  int
	Name     string
	Filename string
	SQL      string
	Checksum string
}

// AppliedMigration is a migration already recorded in schema_migrations.
type AppliedMigration struct {
	Version   int
	Name      string
	AppliedAt time.Time
	Checksum  string
	AppliedBy string
}

// Migrate applies every pending embedded migration in version order and
// returns how many ran. A recorded migration whose file changed since it was
// applied is an error.
func Migrate(ctx context.Context, db *sql.DB, appliedBy string) (int, error) {
	log := logger.FromContext(ctx)

	if err := ensureSchemaMigrationsTable(ctx, db); err != nil {
		return 0, fmt.Errorf("Migrate: ensuring schema_migrations: %w", err)
	}

	migrations, err := readMigrations(migrationFiles)
	if err != nil {
		return 0, fmt.Errorf("Migrate: reading migrations: %w", err)
	}

	applied, err := getAppliedMigrations(ctx, db)
	if err != nil {
		return 0, fmt.Errorf("Migrate: reading applied migrations: %w", err)
	}

	appliedByVersion := make(map[int]AppliedMigration, len(applied))
	for _, am := range applied {
		appliedByVersion[am.Version] = am
	}

	count := 0
	for _, m := range migrations {
		if am, ok := appliedByVersion[m.Version]; ok {
			if am.Checksum != "" && am.Checksum != m.Checksum {
				return count, fmt.Errorf("Migrate: migration %04d_%s changed after it was applied", m.Version, m.Name)
			}
			log.Debug().Int("version", m.Version).Str("name", m.Name).Msg("Migration already applied")
			continue
		}

		if err := applyMigration(ctx, db, m, appliedBy); err != nil {
			return count, fmt.Errorf("Migrate: applying %04d_%s: %w", m.Version, m.Name, err)
		}
		log.Info().Int("version", m.Version).Str("name", m.Name).Msg("Applied migration")
		count++
	}

	return count, nil
}

// MigrationStatus pairs an embedded migration with whether it has been applied.
type MigrationStatus struct {
	Migration
	Applied bool
}

// Status lists every embedded migration in version order.
func Status(ctx context.Context, db *sql.DB) ([]MigrationStatus, error) {
	if err := ensureSchemaMigrationsTable(ctx, db); err != nil {
		return nil, fmt.Errorf("Status: ensuring schema_migrations: %w", err)
	}
	migrations, err := readMigrations(migrationFiles)
	if err != nil {
		return nil, fmt.Errorf("Status: reading migrations: %w", err)
	}
	applied, err := getAppliedMigrations(ctx, db)
	if err != nil {
		return nil, fmt.Errorf("Status: reading applied migrations: %w", err)
	}

	done := make(map[int]bool, len(applied))
	for _, am := range applied {
		done[am.Version] = true
	}
	out := make([]MigrationStatus, 0, len(migrations))
	for _, m := range migrations {
		out = append(out, MigrationStatus{Migration: m, Applied: done[m.Version]})
	}
	return out, nil
}

func ensureSchemaMigrationsTable(ctx context.Context, db *sql.DB) error {
	_, err := db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version    INTEGER PRIMARY KEY,
			name       TEXT NOT NULL,
			applied_at TEXT NOT NULL,
			checksum   TEXT,
			applied_by TEXT
		)
	`)
	return err
}

// readMigrations reads and sorts the migration files in fsys.
func readMigrations(fsys fs.FS) ([]Migration, error) {
	entries, err := fs.ReadDir(fsys, "migrations")
	if err != nil {
		return nil, fmt.Errorf("reading migrations directory: %w", err)
	}

	var migrations []Migration
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}

		matches := migrationPattern.FindStringSubmatch(entry.Name())
		if matches == nil {
			continue
		}
		version, err := strconv.Atoi(matches[1])
		if err != nil {
			continue
		}

		content, err := fs.ReadFile(fsys, "migrations/"+entry.Name())
		if err != nil {
			return nil, fmt.Errorf("reading file %s: %w", entry.Name(), err)
		}

		migrations = append(migrations, Migration{
			Version:  version,
			Name:     matches[2],
			Filename: entry.Name(),
			SQL:      string(content),
			Checksum: fmt.Sprintf("%x", sha256.Sum256(content)),
		})
	}

	sort.Slice(migrations, func(i, j int) bool {
		return migrations[i].Version < migrations[j].Version
	})

	return migrations, nil
}

func getAppliedMigrations(ctx context.Context, db *sql.DB) ([]AppliedMigration, error) {
	rows, err := db.QueryContext(ctx, `
		SELECT version, name, applied_at, COALESCE(checksum, ''), COALESCE(applied_by, '')
		FROM schema_migrations
		ORDER BY version ASC
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var applied []AppliedMigration
	for rows.Next() {
		var (
			am        AppliedMigration
			appliedAt string
		)
		if err := rows.Scan(&am.Version, &am.Name, &appliedAt, &am.Checksum, &am.AppliedBy); err != nil {
			return nil, fmt.Errorf("scanning row: %w", err)
		}
		am.AppliedAt, _ = time.Parse(time.RFC3339, appliedAt)
		applied = append(applied, am)
	}
	return applied, rows.Err()
}

// applyMigration runs one migration and records it in the same transaction.
func applyMigration(ctx context.Context, db *sql.DB, m Migration, appliedBy string) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, m.SQL); err != nil {
		return fmt.Errorf("executing migration: %w", err)
	}

	if _, err := tx.ExecContext(ctx, `
		INSERT INTO schema_migrations (version, name, applied_at, checksum, applied_by)
		VALUES (?, ?, ?, ?, ?)
	`, m.Version, m.Name, time.Now().UTC().Format(time.RFC3339), m.Checksum, appliedBy); err != nil {
		return fmt.Errorf("recording migration: %w", err)
	}

	return tx.Commit()
}
