package store

import (
	"database/sql"
	"fmt"
	"sync"

	"go.uber.org/zap"
	_ "modernc.org/sqlite"
)

// SQLiteStore keeps news, financials, dividends and screen runs in SQLite.
type SQLiteStore struct {
	db  *sql.DB
	mu  sync.Mutex
	log *zap.SugaredLogger
}

// NewSQLiteStore opens (or creates) the SQLite database and runs migrations.
func NewSQLiteStore(dbPath string, log *zap.SugaredLogger) (*SQLiteStore, error) {
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	// WAL lets the CLI read while a scheduled ingest writes.
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("set WAL mode: %w", err)
	}
	if _, err := db.Exec("PRAGMA busy_timeout=5000"); err != nil {
		db.Close()
		return nil, fmt.Errorf("set busy timeout: %w", err)
	}

	s := &SQLiteStore{db: db, log: log}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	log.Infow("sqlite store opened", "path", dbPath)
	return s, nil
}

func (s *SQLiteStore) migrate() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS news (
			id           INTEGER PRIMARY KEY AUTOINCREMENT,
			source       TEXT NOT NULL,
			title        TEXT NOT NULL,
			link         TEXT NOT NULL UNIQUE,
			published_at INTEGER,
			summary      TEXT,
			fetched_at   INTEGER NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_news_published ON news(published_at)`,

		`CREATE TABLE IF NOT EXISTS financials (
			symbol     TEXT    NOT NULL,
			year       INTEGER NOT NULL,
			quarter    INTEGER NOT NULL,
			metric     TEXT    NOT NULL,
			value      REAL    NOT NULL,
			updated_at INTEGER NOT NULL,
			PRIMARY KEY (symbol, year, quarter, metric)
		)`,

		`CREATE TABLE IF NOT EXISTS financial_periods (
			symbol     TEXT    NOT NULL,
			year       INTEGER NOT NULL,
			quarter    INTEGER NOT NULL,
			updated_at INTEGER NOT NULL,
			PRIMARY KEY (symbol, year, quarter)
		)`,
		// Databases created before financial_periods existed.
		`INSERT OR IGNORE INTO financial_periods (symbol, year, quarter, updated_at)
			SELECT symbol, year, quarter, MAX(updated_at) FROM financials
			GROUP BY symbol, year, quarter`,

		`CREATE TABLE IF NOT EXISTS dividends (
			symbol         TEXT NOT NULL,
			ex_date        TEXT NOT NULL,
			kind           TEXT NOT NULL,
			record_date    TEXT,
			payment_date   TEXT,
			cash_per_share TEXT NOT NULL,
			ratio          TEXT,
			yield          REAL,
			note           TEXT,
			updated_at     INTEGER NOT NULL,
			PRIMARY KEY (symbol, ex_date, kind)
		)`,

		`CREATE TABLE IF NOT EXISTS screen_runs (
			id                TEXT PRIMARY KEY,
			timestamp         INTEGER NOT NULL,
			duration_ms       INTEGER,
			fundamental_count INTEGER,
			technical_count   INTEGER,
			row_count         INTEGER,
			fundamental_error TEXT,
			technical_error   TEXT
		)`,
		`CREATE INDEX IF NOT EXISTS idx_runs_ts ON screen_runs(timestamp)`,

		`CREATE TABLE IF NOT EXISTS screen_results (
			run_id           TEXT    NOT NULL,
			position         INTEGER NOT NULL,
			symbol           TEXT    NOT NULL,
			origin           TEXT    NOT NULL,
			period           TEXT,
			metrics          TEXT,
			dividend_ex_date TEXT,
			dividend_cash    TEXT,
			PRIMARY KEY (run_id, position)
		)`,
	}

	for _, stmt := range stmts {
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("exec %q: %w", stmt[:40], err)
		}
	}
	return nil
}

// Close closes the database.
func (s *SQLiteStore) Close() error {
	s.log.Info("closing sqlite store")
	return s.db.Close()
}
