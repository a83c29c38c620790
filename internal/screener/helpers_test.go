package screener

import (
	"time"

	"VNScreener/internal/model"
)

func ptr(v float64) *float64 { return &v }

var day0 = time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC)

// daily builds one observation per day starting at day0.
func daily(symbol string, volume float64, closes ...float64) []model.PriceObservation {
	obs := make([]model.PriceObservation, len(closes))
	for i, c := range closes {
		obs[i] = model.PriceObservation{Symbol: symbol, Date: day0.AddDate(0, 0, i), Close: c, Volume: volume}
	}
	return obs
}

// ramp builds n closes moving by step from start.
func ramp(symbol string, n int, start, step float64) []model.PriceObservation {
	closes := make([]float64, n)
	for i := range closes {
		closes[i] = start + float64(i)*step
	}
	return daily(symbol, 100000, closes...)
}

func symbols(cands []model.Candidate) []string {
	out := make([]string, len(cands))
	for i, c := range cands {
		out[i] = c.Symbol
	}
	return out
}
