package calculator

import (
	"errors"

	"gonum.org/v1/gonum/stat"
)

// ErrInsufficientData is returned when a series is shorter than an indicator's window.
var ErrInsufficientData = errors.New("not enough data for indicator")

var errPeriod = errors.New("period must be positive")

// CalculateSMA computes the simple moving average of the last period values.
func CalculateSMA(values []float64, period int) (float64, error) {
	if period <= 0 {
		return 0, errPeriod
	}
	if len(values) < period {
		return 0, ErrInsufficientData
	}
	return stat.Mean(values[len(values)-period:], nil), nil
}

// AverageVolume is the mean traded volume over the last period sessions.
func AverageVolume(volumes []float64, period int) (float64, error) {
	return CalculateSMA(volumes, period)
}
