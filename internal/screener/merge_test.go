package screener

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"VNScreener/internal/model"
)

func cand(symbol string, origin model.Origin) model.Candidate {
	return model.Candidate{Symbol: symbol, Origin: origin, Metrics: map[string]float64{}}
}

func TestMerge_FirstSeenPrecedence(t *testing.T) {
	fund := []model.Candidate{cand("AAA", model.OriginFundamental), cand("CCC", model.OriginFundamental)}
	tech := []model.Candidate{cand("CCC", model.OriginTechnical), cand("DDD", model.OriginTechnical)}

	got := Merge(fund, tech)
	require.Len(t, got, 3)
	assert.Equal(t, []string{"AAA", "CCC", "DDD"}, symbols(got))
	assert.Equal(t, model.OriginFundamental, got[0].Origin)
	assert.Equal(t, model.OriginFundamental, got[1].Origin)
	assert.Equal(t, model.OriginTechnical, got[2].Origin)
}

func TestMerge_CarriesFundamentalFields(t *testing.T) {
	f := cand("CCC", model.OriginFundamental)
	f.Metrics["pe"] = 7
	tc := cand("CCC", model.OriginTechnical)
	tc.Metrics[model.MetricRSI] = 40

	got := Merge([]model.Candidate{f}, []model.Candidate{tc})
	require.Len(t, got, 1)
	assert.Equal(t, 7.0, got[0].Metrics["pe"])
	assert.NotContains(t, got[0].Metrics, model.MetricRSI)
}

func TestMerge_Empty(t *testing.T) {
	assert.Empty(t, Merge(nil, nil))
	got := Merge(nil, []model.Candidate{cand("DDD", model.OriginTechnical)})
	assert.Equal(t, []string{"DDD"}, symbols(got))
}

func div(symbol string, exDate time.Time, cash int64) model.DividendRecord {
	return model.DividendRecord{Symbol: symbol, ExDate: exDate, Kind: model.DividendCash, CashPerShare: decimal.NewFromInt(cash)}
}

func TestMergeWithDividends_MostRecent(t *testing.T) {
	merged := []model.Candidate{cand("AAA", model.OriginFundamental)}
	dividends := []model.DividendRecord{
		div("AAA", time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC), 2000),
		div("AAA", time.Date(2023, 1, 15, 0, 0, 0, 0, time.UTC), 1000),
	}

	got := MergeWithDividends(merged, dividends)
	require.Len(t, got, 1)
	require.NotNil(t, got[0].Dividend)
	assert.Equal(t, 2024, got[0].Dividend.ExDate.Year())
	assert.True(t, got[0].Dividend.CashPerShare.Equal(decimal.NewFromInt(2000)))
}

func TestMergeWithDividends_LeftJoin(t *testing.T) {
	merged := []model.Candidate{
		cand("AAA", model.OriginFundamental),
		cand("BBB", model.OriginFundamental),
		cand("DDD", model.OriginTechnical),
	}
	dividends := []model.DividendRecord{
		div("BBB", time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC), 500),
		div("XYZ", time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC), 900),
	}

	got := MergeWithDividends(merged, dividends)
	require.Len(t, got, 3)

	seen := map[string]int{}
	for _, row := range got {
		seen[row.Symbol]++
	}
	assert.Equal(t, map[string]int{"AAA": 1, "BBB": 1, "DDD": 1}, seen)
	assert.Nil(t, got[0].Dividend)
	require.NotNil(t, got[1].Dividend)
	assert.Nil(t, got[2].Dividend)
}

func TestMergeWithDividends_ExDateTieKeepsFirst(t *testing.T) {
	ex := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)
	got := MergeWithDividends(
		[]model.Candidate{cand("AAA", model.OriginFundamental)},
		[]model.DividendRecord{div("AAA", ex, 100), div("AAA", ex, 200)},
	)
	require.NotNil(t, got[0].Dividend)
	assert.True(t, got[0].Dividend.CashPerShare.Equal(decimal.NewFromInt(100)))
}
