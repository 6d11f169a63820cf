package data

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/contactkeval/option-greeks/internal/logger"
	"github.com/contactkeval/option-greeks/pricing"
)

var requiredColumns = []string{"type", "underlying", "strike", "time", "price"}

// csvQuoteProvider reads quotes from a local CSV file with the header
// symbol,type,underlying,strike,time,rate,price. The symbol and rate columns
// are optional.
type csvQuoteProvider struct {
	path      string
	rate      float64
	secondary Provider
}

// NewCSVProvider convenience constructor. rate is used for rows without a
// rate column value.
func NewCSVProvider(path string, rate float64, secondary Provider) *csvQuoteProvider {
	return &csvQuoteProvider{path: path, rate: rate, secondary: secondary}
}

func (csvProv *csvQuoteProvider) Secondary() Provider {
	return csvProv.secondary
}

func (csvProv *csvQuoteProvider) GetQuotes(ctx context.Context) ([]Quote, error) {
	f, err := os.Open(csvProv.path)
	if errors.Is(err, os.ErrNotExist) {
		return fallback(ctx, csvProv.secondary, fmt.Errorf("quotes file %s: %w", csvProv.path, err))
	}
	if err != nil {
		return nil, fmt.Errorf("open quotes file: %w", err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1
	r.TrimLeadingSpace = true

	header, err := r.Read()
	if err != nil {
		return nil, fmt.Errorf("read header of %s: %w", csvProv.path, err)
	}
	cols := make(map[string]int, len(header))
	for i, name := range header {
		cols[strings.ToLower(strings.TrimSpace(name))] = i
	}
	for _, name := range requiredColumns {
		if _, ok := cols[name]; !ok {
			return nil, fmt.Errorf("quotes file %s: missing column %q", csvProv.path, name)
		}
	}

	var quotes []Quote
	for {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		row, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", csvProv.path, err)
		}

		line, _ := r.FieldPos(0)
		q, err := csvProv.parseRow(cols, row)
		if err != nil {
			logger.Errorf("skipping %s line %d: %v", csvProv.path, line, err)
			continue
		}
		logger.Tracef("quote %s line %d: %+v", csvProv.path, line, q)
		quotes = append(quotes, q)
	}

	if len(quotes) == 0 {
		return fallback(ctx, csvProv.secondary, fmt.Errorf("%w in %s", ErrNoQuotes, csvProv.path))
	}
	logger.Infof("loaded %d quotes from %s", len(quotes), csvProv.path)
	return quotes, nil
}

func (csvProv *csvQuoteProvider) parseRow(cols map[string]int, row []string) (Quote, error) {
	field := func(name string) string {
		i, ok := cols[name]
		if !ok || i >= len(row) {
			return ""
		}
		return strings.TrimSpace(row[i])
	}

	typ, err := pricing.ParseOptionType(field("type"))
	if err != nil {
		return Quote{}, err
	}

	q := Quote{Symbol: field("symbol"), Type: typ, Rate: csvProv.rate}
	numbers := []struct {
		name     string
		dst      *float64
		optional bool
	}{
		{"underlying", &q.Underlying, false},
		{"strike", &q.Strike, false},
		{"time", &q.Time, false},
		{"rate", &q.Rate, true},
		{"price", &q.Price, false},
	}
	for _, n := range numbers {
		raw := field(n.name)
		if raw == "" && n.optional {
			continue
		}
		d, err := decimal.NewFromString(raw)
		if err != nil {
			return Quote{}, fmt.Errorf("column %s: %w", n.name, err)
		}
		*n.dst = d.InexactFloat64()
	}

	switch {
	case q.Underlying <= 0:
		return Quote{}, fmt.Errorf("underlying must be positive, got %v", q.Underlying)
	case q.Strike <= 0:
		return Quote{}, fmt.Errorf("strike must be positive, got %v", q.Strike)
	case q.Time < 0:
		return Quote{}, fmt.Errorf("time must not be negative, got %v", q.Time)
	case q.Price < 0:
		return Quote{}, fmt.Errorf("price must not be negative, got %v", q.Price)
	}
	return q, nil
}
