package ingest

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"VNScreener/internal/model"
	"VNScreener/internal/screener"
)

// ParseFinancialsCSV reads rows of the form symbol,year,quarter,<metric>...
// The quarter column is optional (absent or blank means a full-year report).
// Blank cells are missing metrics; any other non-numeric cell is an error.
func ParseFinancialsCSV(r io.Reader) ([]model.FinancialRecord, error) {
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
	for _, req := range []string{"symbol", "year"} {
		if !h.has(req) {
			return nil, fmt.Errorf("missing required column %q", req)
		}
	}

	var metrics []string
	for name := range h {
		switch name {
		case "symbol", "year", "quarter", "":
		default:
			metrics = append(metrics, name)
		}
	}
	sort.Strings(metrics)

	var records []model.FinancialRecord
	for line := 2; ; line++ {
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}

		symbol := strings.ToUpper(h.get(row, "symbol"))
		if symbol == "" {
			return nil, &screener.InputError{Row: line, Reason: "empty symbol"}
		}
		year, err := strconv.Atoi(h.get(row, "year"))
		if err != nil {
			return nil, &screener.InputError{Row: line, Symbol: symbol, Reason: fmt.Sprintf("bad year %q", h.get(row, "year"))}
		}
		quarter := 0
		if q := h.get(row, "quarter"); !isBlank(q) {
			quarter, err = strconv.Atoi(strings.TrimPrefix(strings.ToUpper(q), "Q"))
			if err != nil || quarter < 0 || quarter > 4 {
				return nil, &screener.InputError{Row: line, Symbol: symbol, Reason: fmt.Sprintf("bad quarter %q", q)}
			}
		}

		rec := model.FinancialRecord{
			Symbol:  symbol,
			Period:  model.Period{Year: year, Quarter: quarter},
			Metrics: make(map[string]float64, len(metrics)),
		}
		for _, m := range metrics {
			cell := h.get(row, m)
			if isBlank(cell) {
				continue
			}
			v, err := strconv.ParseFloat(cell, 64)
			if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
				return nil, &screener.InputError{Row: line, Symbol: symbol, Reason: fmt.Sprintf("%s: not a number %q", m, cell)}
			}
			rec.Metrics[m] = v
		}
		records = append(records, rec)
	}
	return records, nil
}

// LoadFinancialsFromFolder parses every *.csv file in dir, in name order.
// A malformed file is skipped and its error joined into the result; the
// records of the other files are still returned.
func LoadFinancialsFromFolder(dir string) ([]model.FinancialRecord, error) {
	if _, err := os.Stat(dir); err != nil {
		return nil, fmt.Errorf("financials folder: %w", err)
	}
	files, err := filepath.Glob(filepath.Join(dir, "*.csv"))
	if err != nil {
		return nil, err
	}
	sort.Strings(files)

	var (
		all  []model.FinancialRecord
		errs []error
	)
	for _, path := range files {
		recs, err := loadFinancialsFile(path)
		if err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", filepath.Base(path), err))
			continue
		}
		all = append(all, recs...)
	}
	return all, errors.Join(errs...)
}

func loadFinancialsFile(path string) ([]model.FinancialRecord, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return ParseFinancialsCSV(f)
}
