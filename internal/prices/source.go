package prices

import (
	"go.uber.org/zap"

	"VNScreener/internal/config"
	"VNScreener/internal/screener"
)

// NewSource returns the price provider selected by data.price_source.
func NewSource(cfg *config.Config, log *zap.SugaredLogger) screener.PriceProvider {
	if cfg.Data.PriceSource == config.PriceSourceYahoo {
		return NewYahooSource(cfg.Data.Watchlist, cfg.Data.YahooSuffix, cfg.Proxy, log)
	}
	return NewCSVSource(cfg.Data.PricesCSV)
}
