package calculator

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCalculateSMA(t *testing.T) {
	v, err := CalculateSMA([]float64{1, 2, 3, 4, 5}, 3)
	require.NoError(t, err)
	assert.InDelta(t, 4.0, v, 1e-9)

	_, err = CalculateSMA([]float64{1, 2}, 3)
	assert.ErrorIs(t, err, ErrInsufficientData)

	_, err = CalculateSMA([]float64{1, 2}, 0)
	assert.Error(t, err)
}

func TestCalculateRSI(t *testing.T) {
	rising := []float64{1, 2, 3, 4, 5, 6}
	v, err := CalculateRSI(rising, 5)
	require.NoError(t, err)
	assert.Equal(t, 100.0, v)

	flat := []float64{5, 5, 5, 5}
	v, err = CalculateRSI(flat, 3)
	require.NoError(t, err)
	assert.Equal(t, 50.0, v)

	mixed := []float64{10, 11, 10, 11, 10}
	v, err = CalculateRSI(mixed, 4)
	require.NoError(t, err)
	assert.InDelta(t, 50.0, v, 1e-9)

	_, err = CalculateRSI([]float64{1, 2, 3}, 3)
	assert.ErrorIs(t, err, ErrInsufficientData)
}

func TestCalculateMomentum(t *testing.T) {
	v, err := CalculateMomentum([]float64{100, 105, 110}, 2)
	require.NoError(t, err)
	assert.InDelta(t, 10.0, v, 1e-9)

	_, err = CalculateMomentum([]float64{100, 105}, 2)
	assert.ErrorIs(t, err, ErrInsufficientData)
}

func TestCalculateHighLow(t *testing.T) {
	high, low, err := CalculateHighLow([]float64{5, 9, 1, 7, 3}, 3)
	require.NoError(t, err)
	assert.Equal(t, 7.0, high)
	assert.Equal(t, 1.0, low)

	high, low, err = CalculateHighLow([]float64{5, 9}, TradingDays52w)
	require.NoError(t, err)
	assert.Equal(t, 9.0, high)
	assert.Equal(t, 5.0, low)

	_, _, err = CalculateHighLow(nil, 10)
	assert.Error(t, err)
}

func TestDistanceFromHighPct(t *testing.T) {
	d, err := DistanceFromHighPct(90, 100)
	require.NoError(t, err)
	assert.InDelta(t, 10.0, d, 1e-9)

	d, err = DistanceFromHighPct(110, 100)
	require.NoError(t, err)
	assert.Equal(t, 0.0, d)
}
