package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"VNScreener/internal/model"
)

const dateLayout = "2006-01-02"

// UpsertDividends writes the calendar entries keyed by (symbol, ex_date, kind).
func (s *SQLiteStore) UpsertDividends(ctx context.Context, records []model.DividendRecord) (int, error) {
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

	stmt, err := tx.PrepareContext(ctx, `INSERT INTO dividends
		(symbol, ex_date, kind, record_date, payment_date, cash_per_share, ratio, yield, note, updated_at)
		VALUES (?,?,?,?,?,?,?,?,?,?)
		ON CONFLICT(symbol, ex_date, kind) DO UPDATE SET
			record_date    = excluded.record_date,
			payment_date   = excluded.payment_date,
			cash_per_share = excluded.cash_per_share,
			ratio          = excluded.ratio,
			yield          = excluded.yield,
			note           = excluded.note,
			updated_at     = excluded.updated_at`)
	if err != nil {
		return 0, fmt.Errorf("prepare: %w", err)
	}
	defer stmt.Close()

	now := time.Now().Unix()
	for _, d := range records {
		var yield sql.NullFloat64
		if d.Yield != nil {
			yield = sql.NullFloat64{Float64: *d.Yield, Valid: true}
		}
		_, err := stmt.ExecContext(ctx,
			d.Symbol, d.ExDate.Format(dateLayout), string(d.Kind),
			formatDate(d.RecordDate), formatDate(d.PaymentDate),
			d.CashPerShare.String(), d.Ratio, yield, d.Note, now)
		if err != nil {
			return 0, fmt.Errorf("upsert dividend %s %s: %w", d.Symbol, d.ExDate.Format(dateLayout), err)
		}
	}
	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit: %w", err)
	}
	return len(records), nil
}

// Dividends returns the whole calendar ordered by symbol and ex-date.
func (s *SQLiteStore) Dividends(ctx context.Context) ([]model.DividendRecord, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT symbol, ex_date, kind, record_date, payment_date,
		cash_per_share, ratio, yield, note
		FROM dividends ORDER BY symbol, ex_date, kind`)
	if err != nil {
		return nil, fmt.Errorf("query dividends: %w", err)
	}
	defer rows.Close()

	var out []model.DividendRecord
	for rows.Next() {
		var (
			d                   model.DividendRecord
			exDate, kind, cash  string
			recordDate, payDate sql.NullString
			ratio, note         sql.NullString
			yield               sql.NullFloat64
		)
		if err := rows.Scan(&d.Symbol, &exDate, &kind, &recordDate, &payDate, &cash, &ratio, &yield, &note); err != nil {
			return nil, fmt.Errorf("scan dividends: %w", err)
		}
		if d.ExDate, err = time.Parse(dateLayout, exDate); err != nil {
			return nil, fmt.Errorf("dividend %s: bad ex_date %q: %w", d.Symbol, exDate, err)
		}
		if d.CashPerShare, err = decimal.NewFromString(cash); err != nil {
			return nil, fmt.Errorf("dividend %s: bad cash %q: %w", d.Symbol, cash, err)
		}
		d.Kind = model.DividendKind(kind)
		d.RecordDate = parseDate(recordDate)
		d.PaymentDate = parseDate(payDate)
		d.Ratio = ratio.String
		d.Note = note.String
		if yield.Valid {
			y := yield.Float64
			d.Yield = &y
		}
		out = append(out, d)
	}
	return out, rows.Err()
}

func formatDate(t *time.Time) sql.NullString {
	if t == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: t.Format(dateLayout), Valid: true}
}

func parseDate(s sql.NullString) *time.Time {
	if !s.Valid || s.String == "" {
		return nil
	}
	t, err := time.Parse(dateLayout, s.String)
	if err != nil {
		return nil
	}
	return &t
}
