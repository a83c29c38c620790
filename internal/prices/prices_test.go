package prices

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"VNScreener/internal/config"
	"VNScreener/internal/screener"
)

func TestParsePricesCSV(t *testing.T) {
	in := "date,symbol,close,volume\n" +
		"2024-06-03,fpt,135000,1200000\n" +
		"2024-06-04,FPT,136500,\n"
	got, err := ParsePricesCSV(strings.NewReader(in))
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "FPT", got[0].Symbol)
	assert.Equal(t, 135000.0, got[0].Close)
	assert.Equal(t, 1200000.0, got[0].Volume)
	assert.True(t, got[0].Date.Equal(time.Date(2024, 6, 3, 0, 0, 0, 0, time.UTC)))
	assert.Zero(t, got[1].Volume)
}

func TestParsePricesCSV_ColumnOrderAndErrors(t *testing.T) {
	got, err := ParsePricesCSV(strings.NewReader("symbol,close,date\nVNM,70000,03/06/2024\n"))
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, time.June, got[0].Date.Month())

	_, err = ParsePricesCSV(strings.NewReader("date,symbol\n2024-06-03,FPT\n"))
	assert.ErrorContains(t, err, `"close"`)

	_, err = ParsePricesCSV(strings.NewReader("date,symbol,close\n2024-06-03,FPT,abc\n"))
	var inErr *screener.InputError
	require.ErrorAs(t, err, &inErr)
	assert.Equal(t, 2, inErr.Row)
}

func TestCSVSource_MissingFileIsEmpty(t *testing.T) {
	src := NewCSVSource(filepath.Join(t.TempDir(), "prices.csv"))
	got, err := src.Prices(context.Background())
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestCSVSource_MalformedRowReachesEngine(t *testing.T) {
	path := filepath.Join(t.TempDir(), "prices.csv")
	require.NoError(t, os.WriteFile(path, []byte("date,symbol,close,volume\n2024-01-02,AAA,abc,100\n"), 0o644))

	res := screener.NewEngine(nil, NewCSVSource(path), nil, screener.Rules{}, nil).Evaluate(context.Background())
	var inErr *screener.InputError
	require.ErrorAs(t, res.TechnicalErr, &inErr)
	assert.Equal(t, "AAA", inErr.Symbol)
	assert.Empty(t, res.Rows)
}

func TestCSVSource_ReadsFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "prices.csv")
	require.NoError(t, os.WriteFile(path, []byte("date,symbol,close,volume\n2024-06-03,HPG,28000,5000000\n"), 0o644))
	got, err := NewCSVSource(path).Prices(context.Background())
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "HPG", got[0].Symbol)
}

const chartJSON = `{"chart":{"result":[{"timestamp":[1717380000,1717466400,1717552800],
"indicators":{"quote":[{"close":[135000,null,137000],"volume":[1000,null,null]}]}}],"error":null}}`

func TestYahooSource_Prices(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/v8/finance/chart/FPT.VN":
			assert.Equal(t, "1d", r.URL.Query().Get("interval"))
			w.Write([]byte(chartJSON))
		default:
			w.WriteHeader(http.StatusNotFound)
			w.Write([]byte(`{"chart":{"result":null,"error":{"code":"Not Found","description":"No data found"}}}`))
		}
	}))
	defer srv.Close()

	src := NewYahooSource([]string{"fpt", "XXX"}, ".VN", "", nil)
	src.BaseURL = srv.URL

	got, err := src.Prices(context.Background())
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "FPT", got[0].Symbol)
	assert.Equal(t, 135000.0, got[0].Close)
	assert.Equal(t, 1000.0, got[0].Volume)
	// 1717380000 is 2024-06-03 02:00 UTC, 09:00 in Hanoi.
	assert.True(t, got[0].Date.Equal(time.Date(2024, 6, 3, 0, 0, 0, 0, time.UTC)))
	assert.Zero(t, got[1].Volume)
}

func TestYahooSource_AllFailed(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer srv.Close()

	src := NewYahooSource([]string{"FPT"}, ".VN", "", nil)
	src.BaseURL = srv.URL
	_, err := src.Prices(context.Background())
	assert.ErrorContains(t, err, "status 429")
}

func TestNewSource(t *testing.T) {
	cfg := &config.Config{}
	cfg.Data.PricesCSV = "data/prices.csv"
	assert.IsType(t, &CSVSource{}, NewSource(cfg, nil))

	cfg.Data.PriceSource = config.PriceSourceYahoo
	assert.IsType(t, &YahooSource{}, NewSource(cfg, nil))
}
