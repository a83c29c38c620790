package calculator

import (
	"errors"

	"gonum.org/v1/gonum/floats"
)

// TradingDays52w is the number of sessions in a 52-week lookback.
const TradingDays52w = 252

// CalculateHighLow returns the highest and lowest value of the most recent
// lookback values. Shorter series use whatever is available.
func CalculateHighLow(values []float64, lookback int) (high, low float64, err error) {
	if len(values) == 0 {
		return 0, 0, errors.New("no values provided")
	}
	start := len(values) - lookback
	if lookback <= 0 || start < 0 {
		start = 0
	}
	window := values[start:]
	return floats.Max(window), floats.Min(window), nil
}

// DistanceFromHighPct returns how far current sits below high, in percent.
func DistanceFromHighPct(current, high float64) (float64, error) {
	if high <= 0 {
		return 0, errors.New("high must be positive")
	}
	d := (high - current) / high * 100
	if d < 0 {
		d = 0
	}
	return d, nil
}
