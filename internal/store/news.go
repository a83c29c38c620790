package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"VNScreener/internal/model"
)

// UpsertArticles inserts articles not seen before (keyed by link) and
// returns how many were new.
func (s *SQLiteStore) UpsertArticles(ctx context.Context, articles []model.Article) (int, error) {
	if len(articles) == 0 {
		return 0, nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `INSERT INTO news
		(source, title, link, published_at, summary, fetched_at)
		VALUES (?,?,?,?,?,?)
		ON CONFLICT(link) DO NOTHING`)
	if err != nil {
		return 0, fmt.Errorf("prepare: %w", err)
	}
	defer stmt.Close()

	inserted := 0
	for _, a := range articles {
		var published sql.NullInt64
		if a.PublishedAt != nil {
			published = sql.NullInt64{Int64: a.PublishedAt.Unix(), Valid: true}
		}
		fetched := a.FetchedAt
		if fetched.IsZero() {
			fetched = time.Now()
		}
		res, err := stmt.ExecContext(ctx, a.Source, a.Title, a.Link, published, a.Summary, fetched.Unix())
		if err != nil {
			return 0, fmt.Errorf("insert %s: %w", a.Link, err)
		}
		if n, err := res.RowsAffected(); err == nil {
			inserted += int(n)
		}
	}
	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit: %w", err)
	}
	return inserted, nil
}

// RecentArticles returns up to limit articles in model.SortArticles order:
// newest first, undated last, ties by ID descending.
// A non-positive limit returns every article.
func (s *SQLiteStore) RecentArticles(ctx context.Context, limit int) ([]model.Article, error) {
	if limit <= 0 {
		limit = -1 // no limit in SQLite
	}
	rows, err := s.db.QueryContext(ctx, `SELECT id, source, title, link, published_at, summary, fetched_at
		FROM news
		ORDER BY published_at IS NULL, published_at DESC, id DESC
		LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("query news: %w", err)
	}
	defer rows.Close()

	var articles []model.Article
	for rows.Next() {
		var (
			a         model.Article
			published sql.NullInt64
			summary   sql.NullString
			fetched   int64
		)
		if err := rows.Scan(&a.ID, &a.Source, &a.Title, &a.Link, &published, &summary, &fetched); err != nil {
			return nil, fmt.Errorf("scan news: %w", err)
		}
		if published.Valid {
			t := time.Unix(published.Int64, 0)
			a.PublishedAt = &t
		}
		a.Summary = summary.String
		a.FetchedAt = time.Unix(fetched, 0)
		articles = append(articles, a)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return articles, nil
}
