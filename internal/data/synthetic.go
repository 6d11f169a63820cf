package data

import (
	"context"
	"math"
	"math/rand"
	"time"

	"github.com/contactkeval/option-greeks/pricing"
)

var syntheticAsOf = time.Date(2025, 1, 2, 0, 0, 0, 0, time.UTC)

// synthQuoteProvider generates deterministic quotes priced by an Engine at
// random volatilities.
type synthQuoteProvider struct {
	engine    *pricing.Engine
	seed      int64
	count     int
	rate      float64
	secondary Provider
}

func NewSyntheticProvider(engine *pricing.Engine, seed int64, count int, rate float64) Provider {
	return &synthQuoteProvider{engine: engine, seed: seed, count: count, rate: rate}
}

func (synthProv *synthQuoteProvider) Secondary() Provider {
	return synthProv.secondary
}

func (synthProv *synthQuoteProvider) GetQuotes(ctx context.Context) ([]Quote, error) {
	rng := rand.New(rand.NewSource(synthProv.seed))
	out := make([]Quote, 0, synthProv.count)

	for i := 0; i < synthProv.count; i++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		underlying := math.Round((50+rng.Float64()*150)*100) / 100
		strike := math.Round(underlying * (0.85 + 0.3*rng.Float64()))
		days := 7 + rng.Intn(358)
		sigma := 0.1 + 0.5*rng.Float64()
		typ := pricing.Call
		if i%2 == 1 {
			typ = pricing.Put
		}

		expiry := syntheticAsOf.AddDate(0, 0, days)
		years := YearsToExpiry(syntheticAsOf, expiry)
		opt := synthProv.engine.Price(synthProv.rate, sigma, strike, years, typ, underlying)

		out = append(out, Quote{
			Symbol:     OptionSymbolFromParts("SYN", expiry, typ, strike),
			Type:       typ,
			Underlying: underlying,
			Strike:     strike,
			Time:       years,
			Rate:       synthProv.rate,
			Price:      math.Max(opt.Price, 0),
		})
	}

	if len(out) == 0 {
		return nil, ErrNoQuotes
	}
	return out, nil
}
