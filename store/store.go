// Package store is the persistent state of the monitor: an embedded
// SQLite database holding jobs, companies, run summaries and the derived
// still-open metric tables.
//
// Inserts are individually committed idempotent units, so an interrupted
// run leaves the database valid, just smaller.
package store

import (
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"time"

	_ "github.com/tursodatabase/libsql-client-go/libsql"
	_ "modernc.org/sqlite"
)

//go:embed migrations/*.sql
var migrationFS embed.FS

const dateLayout = "2006-01-02"

// Store wraps the database handle. Single writer, single reader.
type Store struct {
	db *sql.DB
}

// Open opens the store and applies pending migrations.
// If TURSO_DATABASE_URL is set, connects to a remote libSQL database;
// otherwise opens the local SQLite file at path.
func Open(path string) (*Store, error) {
	tursoURL := os.Getenv("TURSO_DATABASE_URL")
	tursoToken := os.Getenv("TURSO_AUTH_TOKEN")

	var db *sql.DB
	var err error
	if tursoURL != "" {
		db, err = openTurso(tursoURL, tursoToken)
	} else {
		db, err = openLocalSQLite(path)
	}
	if err != nil {
		return nil, err
	}

	if err := runMigrations(db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return &Store{db: db}, nil
}

func openTurso(url, token string) (*sql.DB, error) {
	connStr := url
	if token != "" {
		sep := "?"
		if strings.Contains(url, "?") {
			sep = "&"
		}
		connStr = url + sep + "authToken=" + token
	}

	db, err := sql.Open("libsql", connStr)
	if err != nil {
		return nil, fmt.Errorf("open turso: %w", err)
	}
	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping turso: %w", err)
	}
	slog.Info("store: connected to Turso", "url", url)
	return db, nil
}

func openLocalSQLite(path string) (*sql.DB, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	if _, err := db.Exec("PRAGMA foreign_keys=ON;"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("enable foreign keys: %w", err)
	}
	if _, err := db.Exec("PRAGMA journal_mode=wal;"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("set WAL: %w", err)
	}
	if _, err := db.Exec("PRAGMA busy_timeout=1000;"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("set busy_timeout: %w", err)
	}
	slog.Info("store: opened local SQLite", "path", path)
	return db, nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

// runMigrations executes embedded migrations in numeric order
// (NNN-*.sql). Each migration records its own number in the migrations
// table; already-recorded numbers are skipped, so schema evolution is
// strictly additive.
func runMigrations(db *sql.DB) error {
	entries, err := migrationFS.ReadDir("migrations")
	if err != nil {
		return fmt.Errorf("read migrations dir: %w", err)
	}
	pat := regexp.MustCompile(`^(\d{3})-.*\.sql$`)
	var files []string
	for _, e := range entries {
		if !e.IsDir() && pat.MatchString(e.Name()) {
			files = append(files, e.Name())
		}
	}
	sort.Strings(files)

	executed := make(map[int]bool)
	var tableName string
	err = db.QueryRow("SELECT name FROM sqlite_master WHERE type='table' AND name='migrations'").Scan(&tableName)
	switch {
	case err == nil:
		rows, err := db.Query("SELECT migration_number FROM migrations")
		if err != nil {
			return fmt.Errorf("query executed migrations: %w", err)
		}
		defer rows.Close()
		for rows.Next() {
			var n int
			if err := rows.Scan(&n); err != nil {
				return fmt.Errorf("scan migration number: %w", err)
			}
			executed[n] = true
		}
	case errors.Is(err, sql.ErrNoRows):
		slog.Info("store: migrations table not found; running all migrations")
	default:
		return fmt.Errorf("check migrations table: %w", err)
	}

	for _, f := range files {
		n, err := strconv.Atoi(pat.FindStringSubmatch(f)[1])
		if err != nil {
			return fmt.Errorf("parse migration number %s: %w", f, err)
		}
		if executed[n] {
			continue
		}
		content, err := migrationFS.ReadFile("migrations/" + f)
		if err != nil {
			return fmt.Errorf("read %s: %w", f, err)
		}
		if _, err := db.Exec(string(content)); err != nil {
			return fmt.Errorf("exec %s: %w", f, err)
		}
		slog.Info("store: applied migration", "file", f, "number", n)
	}
	return nil
}

func utcNow() string {
	return time.Now().UTC().Truncate(time.Second).Format(time.RFC3339)
}

func fmtDate(t time.Time) string {
	return t.Format(dateLayout)
}
