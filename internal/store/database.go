package store

import (
	"database/sql"
	"fmt"
	"log"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	_ "github.com/lib/pq"
	_ "modernc.org/sqlite"
)

// database wraps the relational side of the store. The driver is SQLite
// (modernc, CGo-free) for an empty or file DSN and Postgres for a
// postgres:// DSN, matching the survey's hosted deployment.
type database struct {
	db     *sql.DB
	driver string
}

// openDatabase opens the relational backend, retrying the initial
// connection a bounded number of times with a fixed delay. Connection
// failures after the retries are exhausted are fatal to the caller.
func openDatabase(dsn, dataDir string, retries int, delay time.Duration) (*database, error) {
	driver := "sqlite"
	if strings.HasPrefix(dsn, "postgres://") || strings.HasPrefix(dsn, "postgresql://") {
		driver = "postgres"
	}
	if dsn == "" {
		dsn = filepath.Join(dataDir, "results.db")
	}

	db, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	var pingErr error
	for attempt := 0; attempt <= retries; attempt++ {
		if pingErr = db.Ping(); pingErr == nil {
			break
		}
		log.Printf("Warning: database ping failed (attempt %d/%d): %v", attempt+1, retries+1, pingErr)
		if attempt < retries {
			time.Sleep(delay)
		}
	}
	if pingErr != nil {
		db.Close()
		return nil, fmt.Errorf("failed to connect to database after %d attempts: %w", retries+1, pingErr)
	}

	d := &database{db: db, driver: driver}
	if err := d.runMigrations(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}
	return d, nil
}

// bind rewrites ?-style placeholders to $N for Postgres. SQLite queries
// pass through unchanged.
func (d *database) bind(query string) string {
	if d.driver != "postgres" {
		return query
	}
	var b strings.Builder
	n := 0
	for _, ch := range query {
		if ch == '?' {
			n++
			b.WriteString("$" + strconv.Itoa(n))
			continue
		}
		b.WriteRune(ch)
	}
	return b.String()
}

// migration represents a single database migration.
type migration struct {
	version int
	name    string
	up      func() error
}

// runMigrations executes database schema migrations.
func (d *database) runMigrations() error {
	if err := d.createMigrationsTable(); err != nil {
		return err
	}

	version, err := d.currentMigrationVersion()
	if err != nil {
		return err
	}

	migrations := []migration{
		{version: 1, name: "initial_schema", up: d.migration001InitialSchema},
	}

	for _, m := range migrations {
		if version < m.version {
			log.Printf("Running migration %d: %s", m.version, m.name)
			if err := m.up(); err != nil {
				return fmt.Errorf("migration %d failed: %w", m.version, err)
			}
			if err := d.setMigrationVersion(m.version); err != nil {
				return err
			}
		}
	}

	return nil
}

// createMigrationsTable creates the schema_migrations table.
func (d *database) createMigrationsTable() error {
	query := `
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version INTEGER PRIMARY KEY,
			name TEXT NOT NULL,
			applied_at TEXT NOT NULL DEFAULT ''
		)
	`
	_, err := d.db.Exec(query)
	return err
}

// currentMigrationVersion returns the highest applied migration version.
func (d *database) currentMigrationVersion() (int, error) {
	row := d.db.QueryRow("SELECT COALESCE(MAX(version), 0) FROM schema_migrations")

	var version int
	if err := row.Scan(&version); err != nil {
		return 0, err
	}
	return version, nil
}

// setMigrationVersion records a migration as applied.
func (d *database) setMigrationVersion(version int) error {
	query := d.bind("INSERT INTO schema_migrations (version, name, applied_at) VALUES (?, ?, ?)")
	_, err := d.db.Exec(query, version, fmt.Sprintf("migration_%d", version), time.Now().UTC().Format(time.RFC3339))
	return err
}

// migration001InitialSchema creates the phase1/phase2 result tables.
func (d *database) migration001InitialSchema() error {
	serial := "INTEGER PRIMARY KEY AUTOINCREMENT"
	if d.driver == "postgres" {
		serial = "SERIAL PRIMARY KEY"
	}

	if _, err := d.db.Exec(fmt.Sprintf(`
		CREATE TABLE IF NOT EXISTS phase1_results (
			id %s,
			user_id BIGINT NOT NULL,
			timestamp_evaluation TEXT NOT NULL,
			category TEXT NOT NULL,
			prompt_id INTEGER NOT NULL,
			model_anonymous_label TEXT NOT NULL,
			model_actual_name TEXT NOT NULL,
			naturalness_rating INTEGER NOT NULL,
			clarity_rating INTEGER NOT NULL,
			emotional_tone_rating INTEGER NOT NULL,
			overall_preference_rating_phase1 INTEGER NOT NULL
		)
	`, serial)); err != nil {
		return fmt.Errorf("failed to create phase1_results table: %w", err)
	}

	if _, err := d.db.Exec(`
		CREATE INDEX IF NOT EXISTS idx_phase1_user_prompt
		ON phase1_results(user_id, prompt_id)
	`); err != nil {
		return fmt.Errorf("failed to create phase1 user/prompt index: %w", err)
	}

	if _, err := d.db.Exec(fmt.Sprintf(`
		CREATE TABLE IF NOT EXISTS phase2_results (
			id %s,
			user_id BIGINT NOT NULL,
			final_preferred_model_anonymous_label TEXT NOT NULL,
			final_preferred_model_actual_name TEXT NOT NULL,
			final_comment TEXT NOT NULL,
			timestamp_survey_completion TEXT NOT NULL
		)
	`, serial)); err != nil {
		return fmt.Errorf("failed to create phase2_results table: %w", err)
	}

	if _, err := d.db.Exec(`
		CREATE INDEX IF NOT EXISTS idx_phase2_user
		ON phase2_results(user_id)
	`); err != nil {
		return fmt.Errorf("failed to create phase2 user index: %w", err)
	}

	return nil
}

// Close closes the database connection.
func (d *database) Close() error {
	if d.db == nil {
		return nil
	}
	if err := d.db.Close(); err != nil {
		return fmt.Errorf("failed to close database: %w", err)
	}
	d.db = nil
	return nil
}
