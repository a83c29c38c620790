package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// DividendKind distinguishes cash dividends from stock dividends.
type DividendKind string

const (
	DividendCash  DividendKind = "cash"
	DividendStock DividendKind = "stock"
)

// DividendRecord is one entry of the dividend calendar.
type DividendRecord struct {
	Symbol       string
	ExDate       time.Time
	RecordDate   *time.Time
	PaymentDate  *time.Time
	Kind         DividendKind
	CashPerShare decimal.Decimal // VND per share, zero for stock dividends
	Ratio        string          // e.g. "100:15" for stock dividends
	Yield        *float64
	Note         string
}
