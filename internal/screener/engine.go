package screener

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"VNScreener/internal/model"
)

// FinancialsProvider returns the stored company financials.
type FinancialsProvider interface {
	CurrentFinancials(ctx context.Context) ([]model.FinancialRecord, error)
}

// PriceProvider returns daily price observations for every tracked symbol.
type PriceProvider interface {
	Prices(ctx context.Context) ([]model.PriceObservation, error)
}

// DividendProvider returns the dividend calendar.
type DividendProvider interface {
	Dividends(ctx context.Context) ([]model.DividendRecord, error)
}

// Rules holds both compiled screens. A screen whose configuration failed to
// load or compile carries its error and is skipped on every cycle.
type Rules struct {
	Fundamental    FundamentalRules
	FundamentalErr error
	Technical      TechnicalRules
	TechnicalErr   error
}

// Result is the outcome of one evaluation cycle.
type Result struct {
	RunID          string
	StartedAt      time.Time
	Duration       time.Duration
	Fundamental    int
	Technical      int
	FundamentalErr error
	TechnicalErr   error
	Rows           []model.EnrichedCandidate
}

// Engine runs evaluation cycles over the configured providers.
type Engine struct {
	financials FinancialsProvider
	prices     PriceProvider
	dividends  DividendProvider
	rules      Rules
	log        *zap.SugaredLogger
}

// NewEngine creates an Engine. Nil providers are treated as unavailable.
func NewEngine(fp FinancialsProvider, pp PriceProvider, dp DividendProvider, rules Rules, log *zap.SugaredLogger) *Engine {
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	return &Engine{financials: fp, prices: pp, dividends: dp, rules: rules, log: log}
}

// Evaluate runs both screens concurrently, merges their output and joins
// dividends. Screen errors are reported on the result; the cycle always
// produces a (possibly empty) table.
func (e *Engine) Evaluate(ctx context.Context) *Result {
	res := &Result{
		RunID:          uuid.NewString(),
		StartedAt:      time.Now(),
		FundamentalErr: e.rules.FundamentalErr,
		TechnicalErr:   e.rules.TechnicalErr,
	}

	var fund, tech []model.Candidate
	var wg sync.WaitGroup
	if res.FundamentalErr == nil {
		wg.Add(1)
		go func() {
			defer wg.Done()
			fund, res.FundamentalErr = e.runFundamental(ctx)
		}()
	}
	if res.TechnicalErr == nil {
		wg.Add(1)
		go func() {
			defer wg.Done()
			tech, res.TechnicalErr = e.runTechnical(ctx)
		}()
	}
	wg.Wait()

	if res.FundamentalErr != nil {
		e.log.Errorw("fundamental screen skipped", "run_id", res.RunID, "error", res.FundamentalErr)
	}
	if res.TechnicalErr != nil {
		e.log.Errorw("technical screen skipped", "run_id", res.RunID, "error", res.TechnicalErr)
	}

	merged := Merge(fund, tech)
	res.Rows = MergeWithDividends(merged, e.loadDividends(ctx))
	res.Fundamental = len(fund)
	res.Technical = len(tech)
	res.Duration = time.Since(res.StartedAt)

	e.log.Infow("evaluation complete",
		"run_id", res.RunID,
		"fundamental", res.Fundamental,
		"technical", res.Technical,
		"rows", len(res.Rows),
		"duration", res.Duration,
	)
	return res
}

func (e *Engine) runFundamental(ctx context.Context) ([]model.Candidate, error) {
	if e.financials == nil {
		e.log.Warnw("fundamental screen has no data", "error", ErrDataUnavailable)
		return nil, nil
	}
	records, err := e.financials.CurrentFinancials(ctx)
	if isInputError(err) {
		return nil, err
	}
	if err != nil {
		e.log.Warnw("financials unavailable, continuing with empty set", "error", err)
		return nil, nil
	}
	return ScreenFundamental(records, e.rules.Fundamental)
}

func (e *Engine) runTechnical(ctx context.Context) ([]model.Candidate, error) {
	if e.prices == nil {
		e.log.Warnw("technical screen has no data", "error", ErrDataUnavailable)
		return nil, nil
	}
	prices, err := e.prices.Prices(ctx)
	if isInputError(err) {
		return nil, err
	}
	if err != nil {
		e.log.Warnw("prices unavailable, continuing with empty set", "error", err)
		return nil, nil
	}
	return ScreenTechnical(prices, e.rules.Technical)
}

func (e *Engine) loadDividends(ctx context.Context) []model.DividendRecord {
	if e.dividends == nil {
		return nil
	}
	divs, err := e.dividends.Dividends(ctx)
	if err != nil {
		e.log.Warnw("dividends unavailable, enrichment skipped", "error", err)
		return nil
	}
	return divs
}

// isInputError reports whether a provider failed on malformed rows rather
// than being unreachable. Malformed rows are reported, not degraded.
func isInputError(err error) bool {
	var inErr *InputError
	return errors.As(err, &inErr)
}
