package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"VNScreener/internal/screener"
)

// Run is a stored screen run summary.
type Run struct {
	ID               string
	Timestamp        time.Time
	Duration         time.Duration
	FundamentalCount int
	TechnicalCount   int
	RowCount         int
	FundamentalError string
	TechnicalError   string
}

// RecordRun stores the run summary and every row of the candidate table.
func (s *SQLiteStore) RecordRun(ctx context.Context, res *screener.Result) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, `INSERT INTO screen_runs
		(id, timestamp, duration_ms, fundamental_count, technical_count, row_count, fundamental_error, technical_error)
		VALUES (?,?,?,?,?,?,?,?)`,
		res.RunID, res.StartedAt.Unix(), res.Duration.Milliseconds(),
		res.Fundamental, res.Technical, len(res.Rows),
		errString(res.FundamentalErr), errString(res.TechnicalErr),
	)
	if err != nil {
		return fmt.Errorf("insert run: %w", err)
	}

	for i, row := range res.Rows {
		metrics, err := json.Marshal(row.Metrics)
		if err != nil {
			return fmt.Errorf("marshal metrics %s: %w", row.Symbol, err)
		}
		var period, exDate, cash sql.NullString
		if row.Period != nil {
			period = sql.NullString{String: row.Period.String(), Valid: true}
		}
		if row.Dividend != nil {
			exDate = sql.NullString{String: row.Dividend.ExDate.Format(dateLayout), Valid: true}
			cash = sql.NullString{String: row.Dividend.CashPerShare.String(), Valid: true}
		}
		_, err = tx.ExecContext(ctx, `INSERT INTO screen_results
			(run_id, position, symbol, origin, period, metrics, dividend_ex_date, dividend_cash)
			VALUES (?,?,?,?,?,?,?,?)`,
			res.RunID, i, row.Symbol, string(row.Origin), period, string(metrics), exDate, cash)
		if err != nil {
			return fmt.Errorf("insert result %s: %w", row.Symbol, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	s.log.Debugw("screen run recorded", "run_id", res.RunID, "rows", len(res.Rows))
	return nil
}

// RecentRuns returns the latest screen runs, newest first.
// A non-positive limit returns every run.
func (s *SQLiteStore) RecentRuns(ctx context.Context, limit int) ([]Run, error) {
	if limit <= 0 {
		limit = -1
	}
	rows, err := s.db.QueryContext(ctx, `SELECT id, timestamp, duration_ms, fundamental_count,
		technical_count, row_count, fundamental_error, technical_error
		FROM screen_runs ORDER BY timestamp DESC, id LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("query runs: %w", err)
	}
	defer rows.Close()

	var out []Run
	for rows.Next() {
		var (
			r          Run
			ts, ms     int64
			fErr, tErr sql.NullString
		)
		if err := rows.Scan(&r.ID, &ts, &ms, &r.FundamentalCount, &r.TechnicalCount, &r.RowCount, &fErr, &tErr); err != nil {
			return nil, fmt.Errorf("scan runs: %w", err)
		}
		r.Timestamp = time.Unix(ts, 0)
		r.Duration = time.Duration(ms) * time.Millisecond
		r.FundamentalError = fErr.String
		r.TechnicalError = tErr.String
		out = append(out, r)
	}
	return out, rows.Err()
}

func errString(err error) sql.NullString {
	if err == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: err.Error(), Valid: true}
}
