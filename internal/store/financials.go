package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"VNScreener/internal/model"
)

// UpsertFinancials records every reporting period and writes its metrics,
// replacing values already stored for the same (symbol, period, metric).
// A period with no metrics is still recorded so it becomes the current one.
// It returns the number of metric values written.
func (s *SQLiteStore) UpsertFinancials(ctx context.Context, records []model.FinancialRecord) (int, error) {
	if len(records) == 0 {
		return 0, nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	periodStmt, err := tx.PrepareContext(ctx, `INSERT INTO financial_periods
		(symbol, year, quarter, updated_at)
		VALUES (?,?,?,?)
		ON CONFLICT(symbol, year, quarter) DO UPDATE SET updated_at = excluded.updated_at`)
	if err != nil {
		return 0, fmt.Errorf("prepare period: %w", err)
	}
	defer periodStmt.Close()

	metricStmt, err := tx.PrepareContext(ctx, `INSERT INTO financials
		(symbol, year, quarter, metric, value, updated_at)
		VALUES (?,?,?,?,?,?)
		ON CONFLICT(symbol, year, quarter, metric)
		DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at`)
	if err != nil {
		return 0, fmt.Errorf("prepare metric: %w", err)
	}
	defer metricStmt.Close()

	now := time.Now().Unix()
	written := 0
	for _, r := range records {
		if _, err := periodStmt.ExecContext(ctx, r.Symbol, r.Period.Year, r.Period.Quarter, now); err != nil {
			return 0, fmt.Errorf("upsert period %s %s: %w", r.Symbol, r.Period, err)
		}
		for metric, v := range r.Metrics {
			if _, err := metricStmt.ExecContext(ctx, r.Symbol, r.Period.Year, r.Period.Quarter, metric, v, now); err != nil {
				return 0, fmt.Errorf("upsert %s %s %s: %w", r.Symbol, r.Period, metric, err)
			}
			written++
		}
	}
	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit: %w", err)
	}
	return written, nil
}

// CurrentFinancials returns the latest reported period for every symbol.
// A latest period without metrics comes back with empty Metrics.
func (s *SQLiteStore) CurrentFinancials(ctx context.Context) ([]model.FinancialRecord, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT p.symbol, p.year, p.quarter, f.metric, f.value
		FROM financial_periods p
		LEFT JOIN financials f
			ON f.symbol = p.symbol AND f.year = p.year AND f.quarter = p.quarter
		ORDER BY p.symbol, p.year, p.quarter, f.metric`)
	if err != nil {
		return nil, fmt.Errorf("query financials: %w", err)
	}
	defer rows.Close()

	type key struct {
		symbol string
		period model.Period
	}
	idx := make(map[key]int)
	var records []model.FinancialRecord
	for rows.Next() {
		var (
			k      key
			metric sql.NullString
			value  sql.NullFloat64
		)
		if err := rows.Scan(&k.symbol, &k.period.Year, &k.period.Quarter, &metric, &value); err != nil {
			return nil, fmt.Errorf("scan financials: %w", err)
		}
		i, ok := idx[k]
		if !ok {
			i = len(records)
			idx[k] = i
			records = append(records, model.FinancialRecord{Symbol: k.symbol, Period: k.period, Metrics: map[string]float64{}})
		}
		if metric.Valid && value.Valid {
			records[i].Metrics[metric.String] = value.Float64
		}
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return model.LatestPerSymbol(records), nil
}
