package screener

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"VNScreener/internal/model"
)

func mustTechnical(t *testing.T, c TechnicalConfig) TechnicalRules {
	t.Helper()
	rules, err := c.Compile()
	require.NoError(t, err)
	return rules
}

func TestScreenTechnical_InsufficientHistory(t *testing.T) {
	prices := daily("BBB", 100000, 10, 11, 12, 13, 14)
	got, err := ScreenTechnical(prices, mustTechnical(t, TechnicalConfig{SMAWindow: 20}))
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestScreenTechnical_ExcludesShorterThanLongestWindow(t *testing.T) {
	cfg := TechnicalConfig{SMAWindow: 20, RSIPeriod: 14, MomentumWindow: 10, Trend: "any"}
	rules := mustTechnical(t, cfg)
	require.Equal(t, 20, rules.RequiredHistory())

	var prices []model.PriceObservation
	prices = append(prices, ramp("A05", 5, 100, 1)...)
	prices = append(prices, ramp("A19", 19, 100, 1)...)
	prices = append(prices, ramp("A20", 20, 100, 1)...)
	prices = append(prices, ramp("A30", 30, 100, 1)...)

	got, err := ScreenTechnical(prices, rules)
	require.NoError(t, err)
	assert.Equal(t, []string{"A20", "A30"}, symbols(got))
	for _, c := range got {
		assert.Contains(t, c.Metrics, model.MetricSMA)
		assert.Contains(t, c.Metrics, model.MetricRSI)
		assert.Contains(t, c.Metrics, model.MetricMomentumPct)
	}
}

func TestScreenTechnical_EmptyInput(t *testing.T) {
	got, err := ScreenTechnical(nil, mustTechnical(t, TechnicalConfig{SMAWindow: 20}))
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestScreenTechnical_EmptyRulesPassEveryPricedSymbol(t *testing.T) {
	prices := append(daily("ZZZ", 10, 5), daily("AAA", 10, 7, 8)...)
	got, err := ScreenTechnical(prices, TechnicalRules{})
	require.NoError(t, err)
	assert.Equal(t, []string{"AAA", "ZZZ"}, symbols(got))
	assert.Equal(t, 8.0, got[0].Metrics[model.MetricClose])
}

func TestScreenTechnical_Trend(t *testing.T) {
	prices := append(ramp("UPP", 30, 100, 1), ramp("DWN", 30, 100, -1)...)

	up, err := ScreenTechnical(prices, mustTechnical(t, TechnicalConfig{SMAWindow: 20}))
	require.NoError(t, err)
	assert.Equal(t, []string{"UPP"}, symbols(up))
	assert.Equal(t, model.OriginTechnical, up[0].Origin)
	assert.InDelta(t, 119.5, up[0].Metrics[model.MetricSMA], 1e-9)

	down, err := ScreenTechnical(prices, mustTechnical(t, TechnicalConfig{SMAWindow: 20, Trend: "down"}))
	require.NoError(t, err)
	assert.Equal(t, []string{"DWN"}, symbols(down))

	cross, err := ScreenTechnical(prices, mustTechnical(t, TechnicalConfig{SMAFast: 5, SMASlow: 20}))
	require.NoError(t, err)
	assert.Equal(t, []string{"UPP"}, symbols(cross))
	assert.Greater(t, cross[0].Metrics[model.MetricSMAFast], cross[0].Metrics[model.MetricSMASlow])
}

func TestScreenTechnical_DuplicateDateLastWins(t *testing.T) {
	prices := daily("AAA", 1000, 10, 11, 12)
	dup := prices[2]
	dup.Close = 50
	prices = append(prices, dup)

	got, err := ScreenTechnical(prices, mustTechnical(t, TechnicalConfig{SMAWindow: 3, Trend: "any"}))
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, 50.0, got[0].Metrics[model.MetricClose])
	assert.InDelta(t, (10.0+11.0+50.0)/3, got[0].Metrics[model.MetricSMA], 1e-9)

	// a fourth row would have satisfied a 4-session window
	got, err = ScreenTechnical(prices, mustTechnical(t, TechnicalConfig{SMAWindow: 4, Trend: "any"}))
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestScreenTechnical_UnorderedInput(t *testing.T) {
	prices := daily("AAA", 1000, 10, 11, 12, 13)
	for i, j := 0, len(prices)-1; i < j; i, j = i+1, j-1 {
		prices[i], prices[j] = prices[j], prices[i]
	}
	got, err := ScreenTechnical(prices, mustTechnical(t, TechnicalConfig{SMAWindow: 2}))
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, 13.0, got[0].Metrics[model.MetricClose])
}

func TestScreenTechnical_MinVolume(t *testing.T) {
	thin := ramp("THN", 25, 100, 1)
	for i := range thin {
		thin[i].Volume = 1000
	}
	liquid := ramp("LIQ", 25, 100, 1)

	rules := mustTechnical(t, TechnicalConfig{MinVolume: 50000})
	require.Equal(t, DefaultVolumeWindow, rules.RequiredHistory())

	got, err := ScreenTechnical(append(thin, liquid...), rules)
	require.NoError(t, err)
	assert.Equal(t, []string{"LIQ"}, symbols(got))
	assert.Equal(t, 100000.0, got[0].Metrics[model.MetricAvgVolume])
}

func TestScreenTechnical_RSIBounds(t *testing.T) {
	prices := ramp("UPP", 20, 100, 1)

	got, err := ScreenTechnical(prices, mustTechnical(t, TechnicalConfig{RSIMax: ptr(70)}))
	require.NoError(t, err)
	assert.Empty(t, got)

	got, err = ScreenTechnical(prices, mustTechnical(t, TechnicalConfig{RSIMin: ptr(50)}))
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, 100.0, got[0].Metrics[model.MetricRSI])
}

func TestScreenTechnical_Momentum(t *testing.T) {
	prices := daily("AAA", 1000, 100, 104, 108, 112)
	got, err := ScreenTechnical(prices, mustTechnical(t, TechnicalConfig{MomentumWindow: 3, MomentumMin: ptr(10)}))
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.InDelta(t, 12.0, got[0].Metrics[model.MetricMomentumPct], 1e-9)

	got, err = ScreenTechnical(prices, mustTechnical(t, TechnicalConfig{MomentumWindow: 3, MomentumMin: ptr(15)}))
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestScreenTechnical_DistanceFromHigh(t *testing.T) {
	prices := daily("AAA", 1000, 90, 100, 95, 80)

	got, err := ScreenTechnical(prices, mustTechnical(t, TechnicalConfig{MaxFromHighPct: ptr(10)}))
	require.NoError(t, err)
	assert.Empty(t, got)

	got, err = ScreenTechnical(prices, mustTechnical(t, TechnicalConfig{MaxFromHighPct: ptr(25)}))
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, 100.0, got[0].Metrics[model.MetricHigh52w])
	assert.InDelta(t, 20.0, got[0].Metrics[model.MetricFromHighPct], 1e-9)
}

func TestScreenTechnical_Idempotent(t *testing.T) {
	prices := append(ramp("UPP", 30, 100, 1), ramp("DWN", 30, 100, -1)...)
	rules := mustTechnical(t, TechnicalConfig{SMAWindow: 10, RSIPeriod: 14})
	first, err := ScreenTechnical(prices, rules)
	require.NoError(t, err)
	second, err := ScreenTechnical(prices, rules)
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestScreenTechnical_InvalidRows(t *testing.T) {
	base := daily("AAA", 1000, 10)[0]
	tests := []struct {
		name   string
		mutate func(p *model.PriceObservation)
	}{
		{"empty symbol", func(p *model.PriceObservation) { p.Symbol = "" }},
		{"zero date", func(p *model.PriceObservation) { p.Date = time.Time{} }},
		{"nan close", func(p *model.PriceObservation) { p.Close = math.NaN() }},
		{"negative volume", func(p *model.PriceObservation) { p.Volume = -1 }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			row := base
			tt.mutate(&row)
			_, err := ScreenTechnical([]model.PriceObservation{row}, TechnicalRules{})
			var inErr *InputError
			require.ErrorAs(t, err, &inErr)
		})
	}
}

func TestTechnicalConfig_CompileErrors(t *testing.T) {
	tests := []struct {
		name  string
		cfg   TechnicalConfig
		field string
	}{
		{"negative window", TechnicalConfig{SMAWindow: -1}, "sma_window"},
		{"unknown trend", TechnicalConfig{Trend: "sideways"}, "trend"},
		{"fast without slow", TechnicalConfig{SMAFast: 5}, "sma_fast"},
		{"fast not shorter", TechnicalConfig{SMAFast: 20, SMASlow: 10}, "sma_fast"},
		{"momentum without window", TechnicalConfig{MomentumMin: ptr(5)}, "momentum_min"},
		{"rsi bounds inverted", TechnicalConfig{RSIMin: ptr(70), RSIMax: ptr(30)}, "rsi_min"},
		{"infinite bound", TechnicalConfig{RSIMin: ptr(math.Inf(1))}, "rsi_min"},
		{"negative volume", TechnicalConfig{MinVolume: -5}, "min_volume"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := tt.cfg.Compile()
			var cfgErr *ConfigurationError
			require.ErrorAs(t, err, &cfgErr)
			assert.Equal(t, "technical", cfgErr.Screen)
			assert.Equal(t, tt.field, cfgErr.Field)
		})
	}
}

func TestTechnicalConfig_Defaults(t *testing.T) {
	rules := mustTechnical(t, TechnicalConfig{RSIMin: ptr(30)})
	assert.Equal(t, DefaultRSIPeriod+1, rules.RequiredHistory())

	rules = mustTechnical(t, TechnicalConfig{})
	assert.Equal(t, 1, rules.RequiredHistory())
}
