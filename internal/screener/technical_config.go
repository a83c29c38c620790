package screener

import (
	"fmt"
	"math"
	"strings"
)

const screenTechnical = "technical"

// Trend is the required direction of the moving-average checks.
type Trend string

const (
	TrendUp   Trend = "up"
	TrendDown Trend = "down"
	TrendAny  Trend = "any"
)

// Defaults applied when a bound is configured without its window.
const (
	DefaultRSIPeriod    = 14
	DefaultVolumeWindow = 20
)

// TechnicalConfig is the technical screen configuration. Zero windows and nil
// bounds disable the corresponding check.
type TechnicalConfig struct {
	SMAWindow      int      `yaml:"sma_window"`
	SMAFast        int      `yaml:"sma_fast"`
	SMASlow        int      `yaml:"sma_slow"`
	Trend          string   `yaml:"trend"`
	RSIPeriod      int      `yaml:"rsi_period"`
	RSIMin         *float64 `yaml:"rsi_min"`
	RSIMax         *float64 `yaml:"rsi_max"`
	MomentumWindow int      `yaml:"momentum_window"`
	MomentumMin    *float64 `yaml:"momentum_min"`
	VolumeWindow   int      `yaml:"volume_window"`
	MinVolume      float64  `yaml:"min_volume"`
	MaxFromHighPct *float64 `yaml:"max_from_high_pct"`
}

// TechnicalRules is a compiled, immutable technical screen.
// The zero value has no checks and lets every priced symbol through.
type TechnicalRules struct {
	smaWindow      int
	smaFast        int
	smaSlow        int
	trend          Trend
	rsiPeriod      int
	rsiMin         *float64
	rsiMax         *float64
	momentumWindow int
	momentumMin    *float64
	volumeWindow   int
	minVolume      float64
	maxFromHighPct *float64
}

// RequiredHistory is the number of observations a symbol needs before every
// configured indicator can be computed.
func (r TechnicalRules) RequiredHistory() int {
	n := 1
	for _, w := range []int{r.smaWindow, r.smaFast, r.smaSlow, r.volumeWindow} {
		if w > n {
			n = w
		}
	}
	if r.rsiPeriod > 0 && r.rsiPeriod+1 > n {
		n = r.rsiPeriod + 1
	}
	if r.momentumWindow > 0 && r.momentumWindow+1 > n {
		n = r.momentumWindow + 1
	}
	return n
}

// Compile validates the configuration, applies defaults and builds the rule set.
func (c TechnicalConfig) Compile() (TechnicalRules, error) {
	cfgErr := func(field, format string, args ...interface{}) error {
		return &ConfigurationError{Screen: screenTechnical, Field: field, Reason: fmt.Sprintf(format, args...)}
	}

	windows := []struct {
		name string
		v    int
	}{
		{"sma_window", c.SMAWindow},
		{"sma_fast", c.SMAFast},
		{"sma_slow", c.SMASlow},
		{"rsi_period", c.RSIPeriod},
		{"momentum_window", c.MomentumWindow},
		{"volume_window", c.VolumeWindow},
	}
	for _, w := range windows {
		if w.v < 0 {
			return TechnicalRules{}, cfgErr(w.name, "must not be negative, got %d", w.v)
		}
	}
	bounds := []struct {
		name string
		v    *float64
	}{
		{"rsi_min", c.RSIMin},
		{"rsi_max", c.RSIMax},
		{"momentum_min", c.MomentumMin},
		{"max_from_high_pct", c.MaxFromHighPct},
	}
	for _, b := range bounds {
		if b.v != nil && (math.IsNaN(*b.v) || math.IsInf(*b.v, 0)) {
			return TechnicalRules{}, cfgErr(b.name, "must be finite")
		}
	}
	if math.IsNaN(c.MinVolume) || math.IsInf(c.MinVolume, 0) || c.MinVolume < 0 {
		return TechnicalRules{}, cfgErr("min_volume", "must be a finite non-negative number")
	}

	r := TechnicalRules{
		smaWindow:      c.SMAWindow,
		smaFast:        c.SMAFast,
		smaSlow:        c.SMASlow,
		rsiPeriod:      c.RSIPeriod,
		rsiMin:         c.RSIMin,
		rsiMax:         c.RSIMax,
		momentumWindow: c.MomentumWindow,
		momentumMin:    c.MomentumMin,
		volumeWindow:   c.VolumeWindow,
		minVolume:      c.MinVolume,
		maxFromHighPct: c.MaxFromHighPct,
	}

	switch Trend(strings.ToLower(strings.TrimSpace(c.Trend))) {
	case "", TrendUp:
		r.trend = TrendUp
	case TrendDown:
		r.trend = TrendDown
	case TrendAny:
		r.trend = TrendAny
	default:
		return TechnicalRules{}, cfgErr("trend", "unknown trend %q, expected up, down or any", c.Trend)
	}

	if (r.smaFast == 0) != (r.smaSlow == 0) {
		return TechnicalRules{}, cfgErr("sma_fast", "sma_fast and sma_slow must be set together")
	}
	if r.smaFast > 0 && r.smaFast >= r.smaSlow {
		return TechnicalRules{}, cfgErr("sma_fast", "must be shorter than sma_slow (%d >= %d)", r.smaFast, r.smaSlow)
	}
	if (r.rsiMin != nil || r.rsiMax != nil) && r.rsiPeriod == 0 {
		r.rsiPeriod = DefaultRSIPeriod
	}
	if r.rsiMin != nil && r.rsiMax != nil && *r.rsiMin > *r.rsiMax {
		return TechnicalRules{}, cfgErr("rsi_min", "exceeds rsi_max")
	}
	if r.momentumMin != nil && r.momentumWindow == 0 {
		return TechnicalRules{}, cfgErr("momentum_min", "requires momentum_window")
	}
	if r.minVolume > 0 && r.volumeWindow == 0 {
		r.volumeWindow = DefaultVolumeWindow
	}
	if r.maxFromHighPct != nil && *r.maxFromHighPct < 0 {
		return TechnicalRules{}, cfgErr("max_from_high_pct", "must not be negative")
	}
	return r, nil
}
