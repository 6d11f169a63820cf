package pricing

import (
	"fmt"
	"math"
	"strings"
)

// OptionType is the exercise right of a European vanilla option.
type OptionType string

const (
	Call OptionType = "call"
	Put  OptionType = "put"
)

// ParseOptionType accepts "call", "put", "c" or "p" in any case.
func ParseOptionType(s string) (OptionType, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "call", "c":
		return Call, nil
	case "put", "p":
		return Put, nil
	default:
		return "", fmt.Errorf("invalid option type %q", s)
	}
}

// IsCall reports whether t is a call.
func (t OptionType) IsCall() bool {
	return t == Call
}

// Option holds a theoretical price and its analytic sensitivities.
//
// Theta is reported with the sign convention of the closed form below
// (time value decay as a positive number for a long call).
type Option struct {
	Price float64 `json:"price"`
	Delta float64 `json:"delta"`
	Gamma float64 `json:"gamma"`
	Vega  float64 `json:"vega"`
	Theta float64 `json:"theta"`
	Rho   float64 `json:"rho"`
}

// Formula evaluates the Black-Scholes closed form for a European option.
//
// Parameters:
//   - cdf: cumulative normal approximation
//   - rate: risk-free rate, continuously compounded (5.25% -> 0.0525)
//   - sigma: annualized volatility (40% -> 0.40)
//   - strike: strike price
//   - time: time to expiry in years
//   - isCall: true for call option, false for put option
//   - underlying: spot price of the underlying asset
//
// Call and put share one code path: the put uses the negated CDF of the
// negated argument, so every Greek follows from the same signed terms.
//
// Note: no guarding is done. sigma == 0 or time == 0 divides by zero and
// yields ±Inf or NaN; use Engine.Price for the deterministic limits.
func Formula(cdf CDF, rate, sigma, strike, time float64, isCall bool, underlying float64) Option {
	sqrtT := math.Sqrt(time)
	expRT := math.Exp(-rate * time)

	d1 := (math.Log(underlying/strike)+rate*time)/(sigma*sqrtT) + 0.5*(sigma*sqrtT)
	d2 := d1 - sigma*sqrtT

	var cndfD1, cndfD2 float64
	if isCall {
		cndfD1 = cdf(d1)
		cndfD2 = cdf(d2)
	} else {
		cndfD1 = -cdf(-d1)
		cndfD2 = -cdf(-d2)
	}
	ndfD1 := NDF(d1)

	return Option{
		Price: underlying*cndfD1 - strike*expRT*cndfD2,
		Delta: cndfD1,
		Gamma: ndfD1 / (underlying * sigma * sqrtT),
		Vega:  underlying * sqrtT * ndfD1,
		Theta: underlying*sigma*ndfD1/(2*sqrtT) + rate*strike*expRT*cndfD2,
		Rho:   strike * time * expRT * cndfD2,
	}
}

// isDegenerate reports whether the closed form has no diffusion term.
func isDegenerate(sigma, time float64) bool {
	return sigma == 0 || time == 0
}

// Intrinsic returns the zero-diffusion limit of the closed form: the payoff
// of the discounted forward, with the Greeks that limit implies.
//
// It is what Formula tends to as sigma -> 0 or time -> 0. An option exactly
// at the forward is treated as out of the money.
func Intrinsic(rate, strike, time float64, isCall bool, underlying float64) Option {
	expRT := math.Exp(-rate * time)
	forward := strike * expRT

	var n float64
	switch {
	case isCall && underlying > forward:
		n = 1
	case !isCall && underlying < forward:
		n = -1
	default:
		return Option{}
	}

	return Option{
		Price: underlying*n - forward*n,
		Delta: n,
		Theta: rate * forward * n,
		Rho:   strike * time * expRT * n,
	}
}
