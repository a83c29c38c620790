package prices

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sort"
	"strings"
	"time"

	"go.uber.org/zap"

	"VNScreener/internal/httpx"
	"VNScreener/internal/model"
)

// HOSE trades on Indochina time; bars are dated in that zone.
var ict = time.FixedZone("ICT", 7*60*60)

// YahooSource fetches daily bars for a watchlist from the Yahoo Finance
// chart API. Vietnamese listings carry a suffix such as ".VN".
type YahooSource struct {
	BaseURL string
	Client  *http.Client
	Symbols []string
	Suffix  string
	Range   string
	log     *zap.SugaredLogger
}

// NewYahooSource creates a source for symbols with optional proxy support.
func NewYahooSource(symbols []string, suffix, proxyURL string, log *zap.SugaredLogger) *YahooSource {
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	return &YahooSource{
		BaseURL: "https://query1.finance.yahoo.com",
		Client:  httpx.NewClient(proxyURL),
		Symbols: symbols,
		Suffix:  suffix,
		Range:   "2y",
		log:     log,
	}
}

type yahooChart struct {
	Chart struct {
		Result []struct {
			Timestamp  []int64 `json:"timestamp"`
			Indicators struct {
				Quote []struct {
					Close  []*float64 `json:"close"`
					Volume []*float64 `json:"volume"`
				} `json:"quote"`
			} `json:"indicators"`
		} `json:"result"`
		Error *struct {
			Code        string `json:"code"`
			Description string `json:"description"`
		} `json:"error"`
	} `json:"chart"`
}

// Prices fetches every watchlist symbol. Failed symbols are logged and
// skipped; an error is returned only when no symbol could be fetched.
func (s *YahooSource) Prices(ctx context.Context) ([]model.PriceObservation, error) {
	var (
		out  []model.PriceObservation
		errs []error
		ok   int
	)
	for _, sym := range s.Symbols {
		sym = strings.ToUpper(strings.TrimSpace(sym))
		if sym == "" {
			continue
		}
		obs, err := s.fetch(ctx, sym)
		if err != nil {
			s.log.Warnw("yahoo fetch failed", "symbol", sym, "err", err)
			errs = append(errs, fmt.Errorf("%s: %w", sym, err))
			continue
		}
		ok++
		out = append(out, obs...)
	}
	if ok == 0 && len(errs) > 0 {
		return nil, errors.Join(errs...)
	}
	return out, nil
}

func (s *YahooSource) fetch(ctx context.Context, symbol string) ([]model.PriceObservation, error) {
	u := fmt.Sprintf("%s/v8/finance/chart/%s?interval=1d&range=%s",
		strings.TrimRight(s.BaseURL, "/"), url.PathEscape(symbol+s.Suffix), s.Range)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", httpx.UserAgent)

	resp, err := s.Client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("yahoo fetch: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("yahoo read body: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("yahoo: status %d, body: %s", resp.StatusCode, truncate(string(body), 200))
	}

	var chart yahooChart
	if err := json.Unmarshal(body, &chart); err != nil {
		return nil, fmt.Errorf("yahoo decode: %w", err)
	}
	if chart.Chart.Error != nil {
		return nil, fmt.Errorf("yahoo api error: %s", chart.Chart.Error.Description)
	}
	if len(chart.Chart.Result) == 0 || len(chart.Chart.Result[0].Indicators.Quote) == 0 {
		return nil, fmt.Errorf("yahoo: no data returned")
	}

	result := chart.Chart.Result[0]
	quote := result.Indicators.Quote[0]
	obs := make([]model.PriceObservation, 0, len(result.Timestamp))
	for i, ts := range result.Timestamp {
		if i >= len(quote.Close) || quote.Close[i] == nil {
			continue // holidays and halted sessions come back as null
		}
		var vol float64
		if i < len(quote.Volume) && quote.Volume[i] != nil {
			vol = *quote.Volume[i]
		}
		y, m, d := time.Unix(ts, 0).In(ict).Date()
		obs = append(obs, model.PriceObservation{
			Symbol: symbol,
			Date:   time.Date(y, m, d, 0, 0, 0, 0, time.UTC),
			Close:  *quote.Close[i],
			Volume: vol,
		})
	}

	sort.Slice(obs, func(i, j int) bool { return obs[i].Date.Before(obs[j].Date) })
	return obs, nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
