package repository

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/stdlib"
	_ "modernc.org/sqlite"

	"github.com/joseph-ayodele/maintdoc-analyzer/internal/common"
)

// DB wraps a database handle for either Postgres (pgx pool) or embedded
// SQLite, plus the placeholder dialect the repositories need.
type DB struct {
	*sql.DB
	pool     *pgxpool.Pool
	postgres bool
	log      *slog.Logger
}

// Open connects to Postgres when cfg.DSN is set, otherwise opens the SQLite
// database at cfg.SQLitePath. The schema is ensured on open.
func Open(ctx context.Context, cfg common.DatabaseConfig, logger *slog.Logger) (*DB, error) {
	if logger == nil {
		logger = slog.Default()
	}

	if cfg.DSN != "" {
		return openPostgres(ctx, cfg, logger)
	}
	return openSQLite(cfg.SQLitePath, logger)
}

func openPostgres(ctx context.Context, cfg common.DatabaseConfig, logger *slog.Logger) (*DB, error) {
	logger.Info("db.connect", "driver", "postgres")
	pc, err := pgxpool.ParseConfig(cfg.DSN)
	if err != nil {
		return nil, fmt.Errorf("parse dsn: %w", err)
	}

	pc.MaxConns = cfg.MaxConns
	pc.MinConns = cfg.MinConns
	pc.MaxConnLifetime = cfg.MaxConnLifetime
	pc.MaxConnIdleTime = cfg.MaxConnIdleTime
	pc.ConnConfig.RuntimeParams["application_name"] = "maintdoc-analyzer"
	if cfg.StatementTimeout > 0 {
		pc.ConnConfig.RuntimeParams["statement_timeout"] = strconv.FormatInt(cfg.StatementTimeout.Milliseconds(), 10)
	}

	dialCtx := ctx
	if cfg.DialTimeout > 0 {
		var cancel context.CancelFunc
		dialCtx, cancel = context.WithTimeout(ctx, cfg.DialTimeout)
		defer cancel()
	}
	pool, err := pgxpool.NewWithConfig(dialCtx, pc)
	if err != nil {
		return nil, fmt.Errorf("connect: %w", err)
	}

	db := &DB{DB: stdlib.OpenDBFromPool(pool), pool: pool, postgres: true, log: logger}
	if err := db.ensureSchema(ctx); err != nil {
		db.Close()
		return nil, err
	}
	logger.Info("db.connect.ok", "driver", "postgres")
	return db, nil
}

func openSQLite(path string, logger *slog.Logger) (*DB, error) {
	logger.Info("db.connect", "driver", "sqlite", "path", path)
	sdb, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	// Production-safe pragmas; applied via EXEC so they work on any driver.
	for _, pragma := range []string{
		"PRAGMA foreign_keys = ON",
		"PRAGMA journal_mode = WAL",
		"PRAGMA busy_timeout = 10000",
	} {
		if _, err := sdb.Exec(pragma); err != nil {
			_ = sdb.Close()
			return nil, fmt.Errorf("apply %q: %w", pragma, err)
		}
	}

	db := &DB{DB: sdb, log: logger}
	if err := db.ensureSchema(context.Background()); err != nil {
		_ = sdb.Close()
		return nil, err
	}
	logger.Info("db.connect.ok", "driver", "sqlite")
	return db, nil
}

// Close closes the database connections gracefully.
func (d *DB) Close() {
	if err := d.DB.Close(); err != nil {
		d.log.Error("db.close.failed", "error", err)
	}
	if d.pool != nil {
		d.pool.Close()
	}
}

// Health pings the database to catch connectivity issues early.
func (d *DB) Health(ctx context.Context, timeout time.Duration) error {
	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}
	return d.PingContext(ctx)
}

// rebind rewrites ?-style placeholders into the $n form Postgres expects.
// Repository queries are written with ? and rebound per dialect.
func (d *DB) rebind(query string) string {
	if !d.postgres {
		return query
	}
	var sb strings.Builder
	n := 0
	for _, r := range query {
		if r == '?' {
			n++
			sb.WriteString("$" + strconv.Itoa(n))
			continue
		}
		sb.WriteRune(r)
	}
	return sb.String()
}

// schema is portable DDL shared by both dialects, one statement per entry
// (pgx runs statements individually). Timestamps and dates are stored as
// RFC3339 / ISO date text and parsed by the repositories.
var schema = []string{`
CREATE TABLE IF NOT EXISTS documents (
	id                TEXT PRIMARY KEY,
	filename          TEXT NOT NULL,
	file_type         TEXT NOT NULL,
	file_size         INTEGER NOT NULL,
	upload_date       TEXT NOT NULL,
	processed         BOOLEAN NOT NULL DEFAULT FALSE,
	processing_status TEXT NOT NULL DEFAULT 'uploaded',
	raw_text          TEXT,
	created_at        TEXT NOT NULL,
	updated_at        TEXT NOT NULL
)`, `
CREATE TABLE IF NOT EXISTS records (
	id                TEXT PRIMARY KEY,
	document_id       TEXT NOT NULL REFERENCES documents(id) ON DELETE CASCADE,
	component         TEXT,
	system            TEXT,
	failure_type      TEXT,
	maint_action      TEXT,
	priority          TEXT,
	status            TEXT NOT NULL DEFAULT 'open',
	start_date        TEXT,
	end_date          TEXT,
	cost_estimate     REAL,
	cost_raw          TEXT,
	summary_notes     TEXT,
	assigned_to       TEXT,
	confidence_score  REAL NOT NULL DEFAULT 0,
	extraction_method TEXT NOT NULL,
	created_at        TEXT NOT NULL,
	updated_at        TEXT NOT NULL
)`,
	`CREATE INDEX IF NOT EXISTS idx_records_document ON records(document_id)`, `
CREATE TABLE IF NOT EXISTS anomalies (
	id            TEXT PRIMARY KEY,
	record_id     TEXT NOT NULL REFERENCES records(id) ON DELETE CASCADE,
	document_id   TEXT NOT NULL REFERENCES documents(id) ON DELETE CASCADE,
	anomaly_type  TEXT NOT NULL,
	severity      TEXT NOT NULL,
	description   TEXT NOT NULL,
	field_name    TEXT,
	field_value   TEXT,
	suggested_fix TEXT,
	resolved      BOOLEAN NOT NULL DEFAULT FALSE,
	created_at    TEXT NOT NULL
)`,
	`CREATE INDEX IF NOT EXISTS idx_anomalies_record ON anomalies(record_id)`,
	`CREATE INDEX IF NOT EXISTS idx_anomalies_document ON anomalies(document_id)`, `
CREATE TABLE IF NOT EXISTS status_updates (
	id              TEXT PRIMARY KEY,
	record_id       TEXT NOT NULL REFERENCES records(id) ON DELETE CASCADE,
	previous_status TEXT,
	new_status      TEXT NOT NULL,
	assigned_to     TEXT,
	notes           TEXT,
	updated_by      TEXT,
	created_at      TEXT NOT NULL
)`,
	`CREATE INDEX IF NOT EXISTS idx_status_updates_record ON status_updates(record_id)`, `
CREATE TABLE IF NOT EXISTS column_mappings (
	id          TEXT PRIMARY KEY,
	document_id TEXT NOT NULL REFERENCES documents(id) ON DELETE CASCADE,
	mapping     TEXT NOT NULL,
	created_at  TEXT NOT NULL
)`,
}

func (d *DB) ensureSchema(ctx context.Context) error {
	for _, stmt := range schema {
		if _, err := d.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("ensure schema: %w", err)
		}
	}
	return nil
}
