package data

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/contactkeval/option-greeks/internal/config"
	"github.com/contactkeval/option-greeks/internal/logger"
	"github.com/contactkeval/option-greeks/pricing"
)

// ErrNoQuotes is returned when a provider chain yields no usable quote.
var ErrNoQuotes = errors.New("no quotes")

const (
	syntheticSeed   = 42
	syntheticQuotes = 24
)

// Quote is an observed option price together with its pricing inputs.
type Quote struct {
	Symbol     string             `json:"symbol"`
	Type       pricing.OptionType `json:"type"`
	Underlying float64            `json:"underlying"`
	Strike     float64            `json:"strike"`
	Time       float64            `json:"time"` // years to expiry
	Rate       float64            `json:"rate"`
	Price      float64            `json:"price"`
}

// Provider supplies option quotes
type Provider interface {
	Secondary() Provider
	GetQuotes(ctx context.Context) ([]Quote, error)
}

// NewProvider builds the provider chain selected by cfg. Every non-synthetic
// source falls back to synthetic quotes priced by engine.
func NewProvider(cfg config.DataConfig, engine *pricing.Engine) (Provider, error) {
	synth := NewSyntheticProvider(engine, syntheticSeed, syntheticQuotes, cfg.Rate)

	switch strings.ToLower(cfg.Source) {
	case "", "synthetic":
		return synth, nil
	case "csv":
		return NewCSVProvider(cfg.CSVPath, cfg.Rate, synth), nil
	case "massive":
		return NewMassiveProvider(cfg.MassiveAPIKey, cfg.Tickers, cfg.Rate, synth), nil
	default:
		return nil, fmt.Errorf("unknown data source %q", cfg.Source)
	}
}

// fallback delegates to the secondary provider, or returns cause when there
// is none.
func fallback(ctx context.Context, secondary Provider, cause error) ([]Quote, error) {
	if secondary == nil {
		return nil, cause
	}
	logger.Infof("falling back to secondary provider: %v", cause)
	return secondary.GetQuotes(ctx)
}

// --------------------------------------------------------------------------------------------
// Helper functions
// --------------------------------------------------------------------------------------------

// YearsToExpiry converts the span between now and expiry to years (365-day
// basis), floored at zero.
func YearsToExpiry(now, expiry time.Time) float64 {
	years := expiry.Sub(now).Hours() / 24 / 365
	return math.Max(years, 0)
}

// OptionSymbolFromParts formats an OCC option ticker:
// O:<root><YYMMDD><C|P><strike*1000 padded to 8 digits>
func OptionSymbolFromParts(underlying string, expiryDate time.Time, typ pricing.OptionType, strike float64) string {
	expDt := expiryDate.UTC().Format("060102")
	optType := "C"
	if !typ.IsCall() {
		optType = "P"
	}
	strikeInt := int(math.Round(strike * 1000))
	return fmt.Sprintf("O:%s%s%s%08d", strings.ToUpper(underlying), expDt, optType, strikeInt)
}

// ParseOptionSymbol is the inverse of OptionSymbolFromParts. The "O:" prefix
// is optional.
func ParseOptionSymbol(symbol string) (underlying string, expiry time.Time, typ pricing.OptionType, strike float64, err error) {
	s := strings.TrimPrefix(strings.TrimSpace(symbol), "O:")
	if len(s) < 16 {
		return "", time.Time{}, "", 0, fmt.Errorf("option symbol %q too short", symbol)
	}

	root, tail := s[:len(s)-15], s[len(s)-15:]
	expiry, err = time.Parse("060102", tail[:6])
	if err != nil {
		return "", time.Time{}, "", 0, fmt.Errorf("option symbol %q: bad expiry: %w", symbol, err)
	}

	switch tail[6] {
	case 'C':
		typ = pricing.Call
	case 'P':
		typ = pricing.Put
	default:
		return "", time.Time{}, "", 0, fmt.Errorf("option symbol %q: bad type %q", symbol, tail[6])
	}

	milli, err := strconv.ParseInt(tail[7:], 10, 64)
	if err != nil {
		return "", time.Time{}, "", 0, fmt.Errorf("option symbol %q: bad strike: %w", symbol, err)
	}
	return root, expiry, typ, float64(milli) / 1000, nil
}
