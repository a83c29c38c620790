package prices

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"VNScreener/internal/model"
	"VNScreener/internal/screener"
)

var dateLayouts = []string{"2006-01-02", "2006-01-02 15:04:05", "02/01/2006"}

// CSVSource reads daily prices from a file with the columns
// date,symbol,close,volume.
type CSVSource struct {
	Path string
}

// NewCSVSource creates a CSVSource for path.
func NewCSVSource(path string) *CSVSource {
	return &CSVSource{Path: path}
}

// Prices reads the whole file. A missing file is not an error and yields no
// observations.
func (s *CSVSource) Prices(_ context.Context) ([]model.PriceObservation, error) {
	f, err := os.Open(s.Path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("open prices: %w", err)
	}
	defer f.Close()

	obs, err := ParsePricesCSV(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", s.Path, err)
	}
	return obs, nil
}

// ParsePricesCSV parses date,symbol,close,volume rows in any column order.
// The volume column is optional. Row numbers in errors count the header as 1.
func ParsePricesCSV(r io.Reader) ([]model.PriceObservation, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err == io.EOF {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}
	idx := map[string]int{"volume": -1}
	for i, col := range header {
		idx[strings.ToLower(strings.TrimSpace(strings.TrimPrefix(col, "\ufeff")))] = i
	}
	for _, req := range []string{"date", "symbol", "close"} {
		if _, ok := idx[req]; !ok {
			return nil, fmt.Errorf("missing required column %q", req)
		}
	}
	cell := func(row []string, name string) string {
		i := idx[name]
		if i < 0 || i >= len(row) {
			return ""
		}
		return strings.TrimSpace(row[i])
	}

	var out []model.PriceObservation
	for line := 2; ; line++ {
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}

		p := model.PriceObservation{Symbol: strings.ToUpper(cell(row, "symbol"))}
		if p.Date, err = parseDate(cell(row, "date")); err != nil {
			return nil, &screener.InputError{Row: line, Symbol: p.Symbol, Reason: err.Error()}
		}
		if p.Close, err = strconv.ParseFloat(cell(row, "close"), 64); err != nil {
			return nil, &screener.InputError{Row: line, Symbol: p.Symbol, Reason: fmt.Sprintf("bad close %q", cell(row, "close"))}
		}
		if v := cell(row, "volume"); v != "" {
			if p.Volume, err = strconv.ParseFloat(v, 64); err != nil {
				return nil, &screener.InputError{Row: line, Symbol: p.Symbol, Reason: fmt.Sprintf("bad volume %q", v)}
			}
		}
		out = append(out, p)
	}
	return out, nil
}

func parseDate(s string) (time.Time, error) {
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("bad date %q", s)
}
