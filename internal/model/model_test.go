package model

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestPeriod_Ordering(t *testing.T) {
	tests := []struct {
		a, b  Period
		after bool
	}{
		{Period{2024, 1}, Period{2023, 4}, true},
		{Period{2024, 2}, Period{2024, 1}, true},
		{Period{2024, 0}, Period{2024, 4}, true},
		{Period{2024, 4}, Period{2024, 0}, false},
		{Period{2024, 1}, Period{2024, 1}, false},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.after, tt.a.After(tt.b), "%s after %s", tt.a, tt.b)
	}
	assert.Equal(t, "2024Q3", Period{2024, 3}.String())
	assert.Equal(t, "2023", Period{2023, 0}.String())
}

func TestLatestPerSymbol(t *testing.T) {
	records := []FinancialRecord{
		{Symbol: "FPT", Period: Period{2023, 4}, Metrics: map[string]float64{"pe": 20}},
		{Symbol: "VNM", Period: Period{2024, 1}, Metrics: map[string]float64{"pe": 15}},
		{Symbol: "FPT", Period: Period{2024, 2}, Metrics: map[string]float64{"pe": 18}},
		{Symbol: "FPT", Period: Period{2024, 1}, Metrics: map[string]float64{"pe": 19}},
	}
	got := LatestPerSymbol(records)
	assert.Len(t, got, 2)
	assert.Equal(t, "FPT", got[0].Symbol)
	assert.Equal(t, Period{2024, 2}, got[0].Period)
	assert.Equal(t, 18.0, got[0].Metrics["pe"])
	assert.Equal(t, "VNM", got[1].Symbol)
}

func TestSortArticles_NullsLast(t *testing.T) {
	t1 := time.Date(2024, 5, 1, 8, 0, 0, 0, time.UTC)
	t2 := time.Date(2024, 5, 2, 8, 0, 0, 0, time.UTC)
	articles := []Article{
		{ID: 1, PublishedAt: &t1},
		{ID: 2},
		{ID: 3, PublishedAt: &t2},
		{ID: 4},
		{ID: 5, PublishedAt: &t1},
	}
	SortArticles(articles)

	var ids []int64
	for _, a := range articles {
		ids = append(ids, a.ID)
	}
	assert.Equal(t, []int64{3, 5, 1, 4, 2}, ids)
}
