package screener

import (
	"math"
	"sort"

	"VNScreener/internal/calculator"
	"VNScreener/internal/model"
)

// ScreenTechnical groups observations into per-symbol series and returns the
// symbols meeting every compiled check, ordered by symbol. Symbols with less
// history than the rules require are excluded.
func ScreenTechnical(prices []model.PriceObservation, rules TechnicalRules) ([]model.Candidate, error) {
	series, err := BuildSeries(prices)
	if err != nil {
		return nil, err
	}

	out := make([]model.Candidate, 0)
	need := rules.RequiredHistory()
	for _, s := range series {
		if len(s.Observations) < need {
			continue
		}
		metrics, ok := evaluateSeries(s, rules)
		if !ok {
			continue
		}
		out = append(out, model.Candidate{
			Symbol:  s.Symbol,
			Origin:  model.OriginTechnical,
			Metrics: metrics,
		})
	}
	return out, nil
}

type dayKey struct {
	y int
	m int
	d int
}

// BuildSeries validates observations and groups them by symbol. Within a
// symbol, a later row for the same calendar day replaces an earlier one.
// Series are returned ordered by symbol, observations by date ascending.
func BuildSeries(prices []model.PriceObservation) ([]model.PriceSeries, error) {
	type pending struct {
		byDay map[dayKey]int
		obs   []model.PriceObservation
	}
	groups := make(map[string]*pending)

	for i, p := range prices {
		switch {
		case p.Symbol == "":
			return nil, &InputError{Row: i, Reason: "empty symbol"}
		case p.Date.IsZero():
			return nil, &InputError{Row: i, Symbol: p.Symbol, Reason: "missing date"}
		case math.IsNaN(p.Close) || math.IsInf(p.Close, 0) || p.Close < 0:
			return nil, &InputError{Row: i, Symbol: p.Symbol, Reason: "close must be a finite non-negative number"}
		case math.IsNaN(p.Volume) || math.IsInf(p.Volume, 0) || p.Volume < 0:
			return nil, &InputError{Row: i, Symbol: p.Symbol, Reason: "volume must be a finite non-negative number"}
		}

		g, ok := groups[p.Symbol]
		if !ok {
			g = &pending{byDay: make(map[dayKey]int)}
			groups[p.Symbol] = g
		}
		y, m, d := p.Date.Date()
		k := dayKey{y, int(m), d}
		if j, dup := g.byDay[k]; dup {
			g.obs[j] = p
			continue
		}
		g.byDay[k] = len(g.obs)
		g.obs = append(g.obs, p)
	}

	symbols := make([]string, 0, len(groups))
	for s := range groups {
		symbols = append(symbols, s)
	}
	sort.Strings(symbols)

	series := make([]model.PriceSeries, 0, len(symbols))
	for _, s := range symbols {
		obs := groups[s].obs
		sort.SliceStable(obs, func(i, j int) bool { return obs[i].Date.Before(obs[j].Date) })
		series = append(series, model.PriceSeries{Symbol: s, Observations: obs})
	}
	return series, nil
}

// evaluateSeries computes the configured indicators for one symbol and
// reports whether every check passed. Any indicator that cannot be computed
// fails the symbol.
func evaluateSeries(s model.PriceSeries, r TechnicalRules) (map[string]float64, bool) {
	closes := s.Closes()
	last := s.Last()
	metrics := map[string]float64{
		model.MetricClose:  last.Close,
		model.MetricVolume: last.Volume,
	}

	if r.smaWindow > 0 {
		sma, err := calculator.CalculateSMA(closes, r.smaWindow)
		if err != nil {
			return nil, false
		}
		metrics[model.MetricSMA] = sma
		if !trendHolds(r.trend, last.Close, sma) {
			return nil, false
		}
	}

	if r.smaFast > 0 {
		fast, err := calculator.CalculateSMA(closes, r.smaFast)
		if err != nil {
			return nil, false
		}
		slow, err := calculator.CalculateSMA(closes, r.smaSlow)
		if err != nil {
			return nil, false
		}
		metrics[model.MetricSMAFast] = fast
		metrics[model.MetricSMASlow] = slow
		if !trendHolds(r.trend, fast, slow) {
			return nil, false
		}
	}

	if r.rsiPeriod > 0 {
		rsi, err := calculator.CalculateRSI(closes, r.rsiPeriod)
		if err != nil {
			return nil, false
		}
		metrics[model.MetricRSI] = rsi
		if (r.rsiMin != nil && rsi < *r.rsiMin) || (r.rsiMax != nil && rsi > *r.rsiMax) {
			return nil, false
		}
	}

	if r.momentumWindow > 0 {
		mom, err := calculator.CalculateMomentum(closes, r.momentumWindow)
		if err != nil {
			return nil, false
		}
		metrics[model.MetricMomentumPct] = mom
		if r.momentumMin != nil && mom < *r.momentumMin {
			return nil, false
		}
	}

	if r.volumeWindow > 0 {
		avg, err := calculator.AverageVolume(s.Volumes(), r.volumeWindow)
		if err != nil {
			return nil, false
		}
		metrics[model.MetricAvgVolume] = avg
		if avg < r.minVolume {
			return nil, false
		}
	}

	if r.maxFromHighPct != nil {
		high, _, err := calculator.CalculateHighLow(closes, calculator.TradingDays52w)
		if err != nil {
			return nil, false
		}
		dist, err := calculator.DistanceFromHighPct(last.Close, high)
		if err != nil {
			return nil, false
		}
		metrics[model.MetricHigh52w] = high
		metrics[model.MetricFromHighPct] = dist
		if dist > *r.maxFromHighPct {
			return nil, false
		}
	}

	return metrics, true
}

func trendHolds(t Trend, a, b float64) bool {
	switch t {
	case TrendUp:
		return a > b
	case TrendDown:
		return a < b
	default:
		return true
	}
}
