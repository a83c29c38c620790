package ingest

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"VNScreener/internal/config"
	"VNScreener/internal/model"
)

// Sink receives ingested data. *store.SQLiteStore implements it.
type Sink interface {
	UpsertArticles(ctx context.Context, articles []model.Article) (int, error)
	UpsertFinancials(ctx context.Context, records []model.FinancialRecord) (int, error)
	UpsertDividends(ctx context.Context, records []model.DividendRecord) (int, error)
}

// Report summarises one pipeline run. Each step's error is kept separately.
type Report struct {
	NewArticles   int
	FinancialRows int
	Dividends     int
	NewsErr       error
	FinancialsErr error
	DividendsErr  error
}

// Err joins the step errors.
func (r *Report) Err() error {
	return errors.Join(r.NewsErr, r.FinancialsErr, r.DividendsErr)
}

// Pipeline loads news, financials and the dividend calendar into a Sink.
type Pipeline struct {
	Sources       []config.NewsSource
	FinancialsDir string
	DividendsCSV  string

	rss  *RSSFetcher
	sink Sink
	log  *zap.SugaredLogger
}

// NewPipeline builds a pipeline from configuration.
func NewPipeline(cfg *config.Config, sink Sink, log *zap.SugaredLogger) *Pipeline {
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	return &Pipeline{
		Sources:       cfg.NewsSources,
		FinancialsDir: cfg.Data.FinancialsDir,
		DividendsCSV:  cfg.Data.DividendsCSV,
		rss:           NewRSSFetcher(cfg.Proxy, log),
		sink:          sink,
		log:           log,
	}
}

// Run executes the three steps in order. A failing step is logged as a
// warning and never stops the steps after it.
func (p *Pipeline) Run(ctx context.Context) *Report {
	rep := &Report{}

	if len(p.Sources) > 0 {
		rep.NewArticles, rep.NewsErr = p.ingestNews(ctx)
		if rep.NewsErr != nil {
			p.log.Warnw("news ingest incomplete", "err", rep.NewsErr)
		}
	}

	if p.FinancialsDir != "" {
		rep.FinancialRows, rep.FinancialsErr = p.ingestFinancials(ctx)
		if rep.FinancialsErr != nil {
			p.log.Warnw("financials load incomplete", "dir", p.FinancialsDir, "err", rep.FinancialsErr)
		}
	}

	if p.DividendsCSV != "" {
		rep.Dividends, rep.DividendsErr = p.ingestDividends(ctx)
		if rep.DividendsErr != nil {
			p.log.Warnw("dividend calendar not loaded", "path", p.DividendsCSV, "err", rep.DividendsErr)
		}
	}

	p.log.Infow("ingest finished",
		"new_articles", rep.NewArticles,
		"financial_values", rep.FinancialRows,
		"dividends", rep.Dividends,
	)
	return rep
}

// ingestNews stores whatever the reachable sources returned, even when some
// sources failed.
func (p *Pipeline) ingestNews(ctx context.Context) (int, error) {
	articles, fetchErr := p.rss.FetchAll(ctx, p.Sources)
	n, err := p.sink.UpsertArticles(ctx, articles)
	if err != nil {
		return 0, errors.Join(fetchErr, fmt.Errorf("store articles: %w", err))
	}
	return n, fetchErr
}

func (p *Pipeline) ingestFinancials(ctx context.Context) (int, error) {
	records, loadErr := LoadFinancialsFromFolder(p.FinancialsDir)
	n, err := p.sink.UpsertFinancials(ctx, records)
	if err != nil {
		return 0, errors.Join(loadErr, fmt.Errorf("store financials: %w", err))
	}
	return n, loadErr
}

func (p *Pipeline) ingestDividends(ctx context.Context) (int, error) {
	records, err := LoadDividendsCSV(p.DividendsCSV)
	if err != nil {
		return 0, err
	}
	n, err := p.sink.UpsertDividends(ctx, records)
	if err != nil {
		return 0, fmt.Errorf("store dividends: %w", err)
	}
	return n, nil
}
