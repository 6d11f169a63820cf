package pricing

import (
	"fmt"
	"math"
)

// Method selects the root-finding strategy of the implied volatility solver.
type Method string

const (
	MethodBisection     Method = "bisection"
	MethodNewtonRaphson Method = "newton-raphson"
)

// Status describes how an implied volatility was obtained.
type Status string

const (
	// StatusExact means the price equals the intrinsic value; sigma is 0.
	StatusExact Status = "exact"
	// StatusConverged means the solver matched the price within accuracy.
	StatusConverged Status = "converged"
	// StatusFailed means the iteration budget ran out; sigma is reported as 0.
	StatusFailed Status = "failed"
)

// Solution is the outcome of an implied volatility search.
//
// A negative Sigma encodes a price below the intrinsic value: it is the
// negated volatility of the price reflected across the intrinsic value.
type Solution struct {
	Sigma          float64 `json:"sigma"`
	Status         Status  `json:"status"`
	Iterations     int     `json:"iterations"`
	Intrinsic      float64 `json:"intrinsic"`
	BelowIntrinsic bool    `json:"below_intrinsic"`
}

// OK reports whether the solution is usable (exact or converged).
func (s Solution) OK() bool {
	return s.Status != StatusFailed
}

// solverFunc searches sigma such that the model price equals target.
// It returns the sigma, the number of model evaluations and whether it converged.
type solverFunc func(target, rate, strike, time float64, isCall bool, underlying float64) (float64, int, bool)

func (e *Engine) solver(m Method) (solverFunc, error) {
	switch m {
	case MethodNewtonRaphson, "":
		return e.newtonRaphson, nil
	case MethodBisection:
		return e.bisection, nil
	default:
		return nil, fmt.Errorf("%w: unknown method %q", ErrInvalidConfig, string(m))
	}
}

// solve dispatches on the observed price versus the intrinsic value.
func (e *Engine) solve(price, rate, strike, time float64, isCall bool, underlying float64) Solution {
	intrinsic := e.evaluate(rate, 0, strike, time, isCall, underlying).Price
	sol := Solution{Intrinsic: intrinsic}

	if math.IsNaN(price) {
		sol.Status = StatusFailed
		return sol
	}

	if price == intrinsic {
		sol.Status = StatusExact
		return sol
	}

	// with no time left every volatility prices at intrinsic
	if time <= 0 {
		sol.Status = StatusFailed
		return sol
	}

	target := price
	sign := 1.0
	if !(price > intrinsic) {
		target = intrinsic + (intrinsic - price)
		sign = -1
		sol.BelowIntrinsic = true
	}

	sigma, n, ok := e.method(target, rate, strike, time, isCall, underlying)
	sol.Iterations = n
	if !ok {
		sol.Status = StatusFailed
		return sol
	}
	sol.Sigma = sign * sigma
	sol.Status = StatusConverged
	return sol
}

// bisection halves [BisectionLeft, BisectionRight] assuming the price is
// increasing in sigma over the bracket.
func (e *Engine) bisection(target, rate, strike, time float64, isCall bool, underlying float64) (float64, int, bool) {
	accuracy := e.cfg.Accuracy
	left := e.cfg.BisectionLeft
	right := e.cfg.BisectionRight

	// enough halvings to reach accuracy, plus a margin of 10
	iterations := int(math.Round(math.Log2((right-left)/accuracy))) + 10

	for i := 0; i < iterations; i++ {
		sigma := (left + right) / 2
		dprice := e.evaluate(rate, sigma, strike, time, isCall, underlying).Price - target

		if math.Abs(dprice) < accuracy {
			return sigma, i + 1, true
		}
		if dprice > 0 {
			right = sigma
		} else {
			left = sigma
		}
	}
	return 0, max(iterations, 0), false
}

// newtonRaphson starts from the Brenner-Subrahmanyam estimate and steps with
// the analytic vega.
func (e *Engine) newtonRaphson(target, rate, strike, time float64, isCall bool, underlying float64) (float64, int, bool) {
	accuracy := e.cfg.Accuracy
	sigma := math.Sqrt(2*math.Pi/time) * target / underlying

	i := 0
	for i < e.cfg.NewtonIterations {
		option := e.evaluate(rate, sigma, strike, time, isCall, underlying)
		dprice := option.Price - target
		i++

		if math.Abs(dprice) < accuracy {
			return sigma, i, true
		}
		if option.Vega == 0 {
			break
		}
		sigma -= dprice / option.Vega
		if math.IsNaN(sigma) || math.IsInf(sigma, 0) {
			break
		}
	}
	return 0, i, false
}
