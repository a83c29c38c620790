package model

// Indicator metric keys carried by technical candidates.
const (
	MetricClose       = "close"
	MetricVolume      = "volume"
	MetricSMA         = "sma"
	MetricSMAFast     = "sma_fast"
	MetricSMASlow     = "sma_slow"
	MetricRSI         = "rsi"
	MetricMomentumPct = "momentum_pct"
	MetricAvgVolume   = "avg_volume"
	MetricHigh52w     = "high_52w"
	MetricFromHighPct = "from_high_pct"
)
