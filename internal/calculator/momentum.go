package calculator

import "errors"

// CalculateMomentum returns the percent change between the close period
// sessions ago and the latest close. Requires period+1 closes.
func CalculateMomentum(closes []float64, period int) (float64, error) {
	if period <= 0 {
		return 0, errPeriod
	}
	if len(closes) < period+1 {
		return 0, ErrInsufficientData
	}
	base := closes[len(closes)-1-period]
	if base == 0 {
		return 0, errors.New("base close is zero")
	}
	return (closes[len(closes)-1] - base) / base * 100, nil
}
