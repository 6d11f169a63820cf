// Package data provides option quote providers.
//
// This file contains a Massive-backed Provider that turns option contract
// snapshots into quotes through the Massive REST client.
package data

import (
	"context"
	"fmt"
	"time"

	massive "github.com/massive-com/client-go/v2/rest"
	"github.com/massive-com/client-go/v2/rest/models"

	"github.com/contactkeval/option-greeks/internal/logger"
	"github.com/contactkeval/option-greeks/pricing"
)

// snapshotFunc fetches one option contract snapshot.
type snapshotFunc func(ctx context.Context, params *models.GetOptionContractSnapshotParams) (*models.GetOptionContractSnapshotResponse, error)

// massiveQuoteProvider implements the Provider interface using Massive APIs.
type massiveQuoteProvider struct {
	// tickers are OCC option tickers, e.g. O:AAPL250117C00150000.
	tickers []string

	// rate is the risk-free rate attached to every quote.
	rate float64

	snapshot snapshotFunc
	now      func() time.Time

	// secondary is an optional fallback provider.
	secondary Provider
}

// NewMassiveProvider constructs a Massive-backed quote provider.
func NewMassiveProvider(apiKey string, tickers []string, rate float64, secondary Provider) *massiveQuoteProvider {
	logger.Infof("initializing Massive data provider for %d tickers", len(tickers))

	client := massive.New(apiKey)
	return &massiveQuoteProvider{
		tickers: tickers,
		rate:    rate,
		snapshot: func(ctx context.Context, params *models.GetOptionContractSnapshotParams) (*models.GetOptionContractSnapshotResponse, error) {
			return client.GetOptionContractSnapshot(ctx, params)
		},
		now:       time.Now,
		secondary: secondary,
	}
}

// Secondary returns the configured secondary Provider, if any.
func (massiveProv *massiveQuoteProvider) Secondary() Provider {
	return massiveProv.secondary
}

// GetQuotes fetches a snapshot per ticker. Tickers that fail or carry no
// price are logged and skipped.
func (massiveProv *massiveQuoteProvider) GetQuotes(ctx context.Context) ([]Quote, error) {
	now := massiveProv.now()
	var quotes []Quote

	for _, ticker := range massiveProv.tickers {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		q, err := massiveProv.quote(ctx, ticker, now)
		if err != nil {
			logger.Errorf("massive snapshot %s: %v", ticker, err)
			continue
		}
		logger.Debugf("massive snapshot %s: price=%.4f underlying=%.4f", ticker, q.Price, q.Underlying)
		quotes = append(quotes, q)
	}

	if len(quotes) == 0 {
		return fallback(ctx, massiveProv.secondary, fmt.Errorf("%w from massive (%d tickers)", ErrNoQuotes, len(massiveProv.tickers)))
	}
	return quotes, nil
}

func (massiveProv *massiveQuoteProvider) quote(ctx context.Context, ticker string, now time.Time) (Quote, error) {
	root, expiry, typ, strike, err := ParseOptionSymbol(ticker)
	if err != nil {
		return Quote{}, err
	}

	res, err := massiveProv.snapshot(ctx, &models.GetOptionContractSnapshotParams{
		UnderlyingAsset: root,
		OptionContract:  ticker,
	})
	if err != nil {
		return Quote{}, err
	}

	snap := res.Results
	if snap.Day.Close <= 0 {
		return Quote{}, fmt.Errorf("no closing price")
	}
	if snap.UnderlyingAsset.Price <= 0 {
		return Quote{}, fmt.Errorf("no underlying price")
	}

	// the snapshot details win over what the ticker encodes
	if snap.Details.StrikePrice > 0 {
		strike = snap.Details.StrikePrice
	}
	if t, err := pricing.ParseOptionType(snap.Details.ContractType); err == nil {
		typ = t
	}
	if exp := time.Time(snap.Details.ExpirationDate); !exp.IsZero() {
		expiry = exp
	}

	return Quote{
		Symbol:     ticker,
		Type:       typ,
		Underlying: snap.UnderlyingAsset.Price,
		Strike:     strike,
		Time:       YearsToExpiry(now, expiry),
		Rate:       massiveProv.rate,
		Price:      snap.Day.Close,
	}, nil
}
