package screener

import (
	"math"

	"VNScreener/internal/model"
)

// ScreenFundamental returns the symbols whose latest financial record
// satisfies every compiled constraint, in order of first appearance.
// A configured metric missing from a record excludes the symbol.
func ScreenFundamental(records []model.FinancialRecord, rules FundamentalRules) ([]model.Candidate, error) {
	for i, r := range records {
		if r.Symbol == "" {
			return nil, &InputError{Row: i, Reason: "empty symbol"}
		}
		for name, v := range r.Metrics {
			if math.IsNaN(v) || math.IsInf(v, 0) {
				return nil, &InputError{Row: i, Symbol: r.Symbol, Reason: "metric " + name + " is not finite"}
			}
		}
	}

	out := make([]model.Candidate, 0)
	for _, r := range model.LatestPerSymbol(records) {
		if !passesAll(r.Metrics, rules.constraints) {
			continue
		}
		period := r.Period
		metrics := make(map[string]float64, len(r.Metrics))
		for k, v := range r.Metrics {
			metrics[k] = v
		}
		out = append(out, model.Candidate{
			Symbol:  r.Symbol,
			Origin:  model.OriginFundamental,
			Period:  &period,
			Metrics: metrics,
		})
	}
	return out, nil
}

func passesAll(metrics map[string]float64, constraints []Constraint) bool {
	for _, c := range constraints {
		v, ok := metrics[c.Metric]
		if !ok || !c.Allows(v) {
			return false
		}
	}
	return true
}
