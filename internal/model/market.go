package model

import "time"

// PriceObservation is a single daily close for one symbol.
type PriceObservation struct {
	Symbol string
	Date   time.Time
	Close  float64
	Volume float64
}

// PriceSeries holds one symbol's observations, ordered by date ascending.
type PriceSeries struct {
	Symbol       string
	Observations []PriceObservation
}

// Closes returns the close prices in series order.
func (s PriceSeries) Closes() []float64 {
	closes := make([]float64, len(s.Observations))
	for i, o := range s.Observations {
		closes[i] = o.Close
	}
	return closes
}

// Volumes returns the traded volumes in series order.
func (s PriceSeries) Volumes() []float64 {
	vols := make([]float64, len(s.Observations))
	for i, o := range s.Observations {
		vols[i] = o.Volume
	}
	return vols
}

// Last returns the most recent observation. The series must not be empty.
func (s PriceSeries) Last() PriceObservation {
	return s.Observations[len(s.Observations)-1]
}
