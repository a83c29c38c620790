package ingest

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"VNScreener/internal/model"
	"VNScreener/internal/screener"
)

var dateLayouts = []string{"2006-01-02", "02/01/2006", "2/1/2006", "2006/01/02"}

func parseDate(s string) (time.Time, error) {
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognised date %q", s)
}

func parseKind(s string) (model.DividendKind, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "cash", "tien", "tiền", "tiền mặt":
		return model.DividendCash, true
	case "stock", "share", "co phieu", "cổ phiếu":
		return model.DividendStock, true
	}
	return "", false
}

// ParseDividendsCSV reads a dividend calendar. symbol and ex_date are
// required; record_date, payment_date, type, cash, ratio, yield and note are
// optional. Dates are ISO (2024-06-20) or day-first (20/06/2024). cash is VND
// per share and may use "," as a thousands separator. yield is a percentage.
// When type is blank the row is a stock dividend if it has a ratio and no
// cash amount, otherwise cash.
func ParseDividendsCSV(r io.Reader) ([]model.DividendRecord, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	cols, err := reader.Read()
	if err == io.EOF {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}
	h := newHeader(cols)
	for _, req := range []string{"symbol", "ex_date"} {
		if !h.has(req) {
			return nil, fmt.Errorf("missing required column %q", req)
		}
	}

	var out []model.DividendRecord
	for line := 2; ; line++ {
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}

		d := model.DividendRecord{
			Symbol: strings.ToUpper(h.get(row, "symbol")),
			Ratio:  h.get(row, "ratio"),
			Note:   h.get(row, "note"),
		}
		if d.Symbol == "" {
			return nil, &screener.InputError{Row: line, Reason: "empty symbol"}
		}
		bad := func(reason string) error {
			return &screener.InputError{Row: line, Symbol: d.Symbol, Reason: reason}
		}

		if d.ExDate, err = parseDate(h.get(row, "ex_date")); err != nil {
			return nil, bad("ex_date: " + err.Error())
		}
		for _, opt := range []struct {
			col string
			dst **time.Time
		}{{"record_date", &d.RecordDate}, {"payment_date", &d.PaymentDate}} {
			cell := h.get(row, opt.col)
			if isBlank(cell) {
				continue
			}
			t, err := parseDate(cell)
			if err != nil {
				return nil, bad(opt.col + ": " + err.Error())
			}
			*opt.dst = &t
		}

		if cell := h.get(row, "cash"); !isBlank(cell) {
			cash, err := decimal.NewFromString(strings.ReplaceAll(cell, ",", ""))
			if err != nil || cash.IsNegative() {
				return nil, bad(fmt.Sprintf("cash: not a non-negative amount %q", cell))
			}
			d.CashPerShare = cash
		}
		if cell := h.get(row, "yield"); !isBlank(cell) {
			y, err := strconv.ParseFloat(strings.TrimSuffix(cell, "%"), 64)
			if err != nil {
				return nil, bad(fmt.Sprintf("yield: not a number %q", cell))
			}
			d.Yield = &y
		}

		if cell := h.get(row, "type"); !isBlank(cell) {
			kind, ok := parseKind(cell)
			if !ok {
				return nil, bad(fmt.Sprintf("type: unknown dividend type %q", cell))
			}
			d.Kind = kind
		} else if d.Ratio != "" && d.CashPerShare.IsZero() {
			d.Kind = model.DividendStock
		} else {
			d.Kind = model.DividendCash
		}
		out = append(out, d)
	}
	return out, nil
}

// LoadDividendsCSV parses the dividend calendar at path.
func LoadDividendsCSV(path string) ([]model.DividendRecord, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("dividend calendar: %w", err)
	}
	defer f.Close()
	recs, err := ParseDividendsCSV(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return recs, nil
}
