// Package analyze inverts batches of quotes to implied volatilities and
// Greeks.
package analyze

import (
	"context"
	"math"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/contactkeval/option-greeks/internal/data"
	"github.com/contactkeval/option-greeks/internal/logger"
	"github.com/contactkeval/option-greeks/internal/metrics"
	"github.com/contactkeval/option-greeks/pricing"
)

const defaultWorkers = 4

// Row is the analysis of one quote. Greeks are evaluated at the absolute
// value of Sigma.
type Row struct {
	data.Quote
	Sigma          float64        `json:"sigma"`
	Status         pricing.Status `json:"status"`
	Iterations     int            `json:"iterations"`
	Intrinsic      float64        `json:"intrinsic"`
	BelowIntrinsic bool           `json:"below_intrinsic"`
	Greeks         pricing.Option `json:"greeks"`
}

// Summary counts rows by outcome.
type Summary struct {
	Total          int `json:"total"`
	Exact          int `json:"exact"`
	Converged      int `json:"converged"`
	Failed         int `json:"failed"`
	BelowIntrinsic int `json:"below_intrinsic"`
}

type Analyzer struct {
	engine  *pricing.Engine
	workers int
	metrics *metrics.Metrics
}

// New returns an Analyzer running at most workers solves at once. m may be
// nil.
func New(engine *pricing.Engine, workers int, m *metrics.Metrics) *Analyzer {
	if workers <= 0 {
		workers = defaultWorkers
	}
	return &Analyzer{engine: engine, workers: workers, metrics: m}
}

// Run analyzes quotes concurrently. Rows are returned in input order.
func (a *Analyzer) Run(ctx context.Context, quotes []data.Quote) ([]Row, error) {
	rows := make([]Row, len(quotes))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(a.workers)
	for i, q := range quotes {
		i, q := i, q
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			rows[i] = a.Analyze(q)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	s := Summarize(rows)
	logger.Infof("analyzed %d quotes: %d converged, %d exact, %d failed, %d below intrinsic",
		s.Total, s.Converged, s.Exact, s.Failed, s.BelowIntrinsic)
	return rows, nil
}

// Analyze solves a single quote.
func (a *Analyzer) Analyze(q data.Quote) Row {
	a.metrics.Request("analyze")

	start := time.Now()
	sol := a.engine.Solve(q.Price, q.Rate, q.Strike, q.Time, q.Type, q.Underlying)
	a.metrics.Solved(string(sol.Status), time.Since(start))

	if !sol.OK() {
		logger.Debugf("implied volatility failed for %s (price=%v intrinsic=%v)", q.Symbol, q.Price, sol.Intrinsic)
	}

	return Row{
		Quote:          q,
		Sigma:          sol.Sigma,
		Status:         sol.Status,
		Iterations:     sol.Iterations,
		Intrinsic:      sol.Intrinsic,
		BelowIntrinsic: sol.BelowIntrinsic,
		Greeks:         a.engine.Price(q.Rate, math.Abs(sol.Sigma), q.Strike, q.Time, q.Type, q.Underlying),
	}
}

// Summarize counts rows by status.
func Summarize(rows []Row) Summary {
	s := Summary{Total: len(rows)}
	for _, r := range rows {
		switch r.Status {
		case pricing.StatusExact:
			s.Exact++
		case pricing.StatusConverged:
			s.Converged++
		case pricing.StatusFailed:
			s.Failed++
		}
		if r.BelowIntrinsic {
			s.BelowIntrinsic++
		}
	}
	return s
}
