package data

import (
	"context"
	"encoding/json"
	"errors"
	"math"
	"testing"
	"time"

	"github.com/massive-com/client-go/v2/rest/models"
)

const snapshotJSON = `{
	"status": "OK",
	"request_id": "6a7e466379af0a71039d60cc78e72282",
	"results": {
		"day": {"close": 12.5, "open": 11.9, "high": 12.8, "low": 11.7, "volume": 1520},
		"details": {
			"contract_type": "call",
			"exercise_style": "american",
			"expiration_date": "2025-01-17",
			"shares_per_contract": 100,
			"strike_price": 150,
			"ticker": "O:AAPL250117C00150000"
		},
		"implied_volatility": 0.31,
		"underlying_asset": {"price": 158.4, "ticker": "AAPL"}
	}
}`

func fakeSnapshot(t *testing.T, calls *[]string) snapshotFunc {
	t.Helper()
	return func(ctx context.Context, params *models.GetOptionContractSnapshotParams) (*models.GetOptionContractSnapshotResponse, error) {
		*calls = append(*calls, params.UnderlyingAsset+" "+params.OptionContract)
		if params.OptionContract != "O:AAPL250117C00150000" {
			return nil, errors.New("not found")
		}
		var res models.GetOptionContractSnapshotResponse
		if err := json.Unmarshal([]byte(snapshotJSON), &res); err != nil {
			t.Fatalf("decode snapshot: %v", err)
		}
		return &res, nil
	}
}

func TestMassiveProvider_GetQuotes(t *testing.T) {
	var calls []string
	prov := &massiveQuoteProvider{
		tickers:  []string{"O:AAPL250117C00150000", "O:MSFT250117P00400000"},
		rate:     0.045,
		snapshot: fakeSnapshot(t, &calls),
		now:      func() time.Time { return time.Date(2024, 12, 18, 0, 0, 0, 0, time.UTC) },
	}

	quotes, err := prov.GetQuotes(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(calls) != 2 || calls[0] != "AAPL O:AAPL250117C00150000" {
		t.Fatalf("unexpected snapshot calls: %v", calls)
	}
	if len(quotes) != 1 {
		t.Fatalf("expected 1 quote, got %d", len(quotes))
	}

	q := quotes[0]
	if q.Price != 12.5 || q.Underlying != 158.4 || q.Strike != 150 || !q.Type.IsCall() || q.Rate != 0.045 {
		t.Fatalf("unexpected quote: %+v", q)
	}
	if want := 30.0 / 365; math.Abs(q.Time-want) > 1e-12 {
		t.Fatalf("time = %v, want %v", q.Time, want)
	}
}

func TestMassiveProvider_FallsBack(t *testing.T) {
	var calls []string
	prov := &massiveQuoteProvider{
		tickers:   []string{"O:MSFT250117P00400000", "not-a-ticker"},
		snapshot:  fakeSnapshot(t, &calls),
		now:       time.Now,
		secondary: NewSyntheticProvider(testEngine(t), 3, 4, 0.02),
	}

	quotes, err := prov.GetQuotes(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(quotes) != 4 {
		t.Fatalf("expected 4 synthetic quotes, got %d", len(quotes))
	}
	if len(calls) != 1 {
		t.Fatalf("malformed ticker should not reach the API, calls: %v", calls)
	}
}

func TestMassiveProvider_NoQuotes(t *testing.T) {
	var calls []string
	prov := &massiveQuoteProvider{snapshot: fakeSnapshot(t, &calls), now: time.Now}

	if _, err := prov.GetQuotes(context.Background()); !errors.Is(err, ErrNoQuotes) {
		t.Fatalf("expected ErrNoQuotes, got %v", err)
	}
}
