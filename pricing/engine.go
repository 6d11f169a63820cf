// Package pricing prices European vanilla options with the Black-Scholes
// closed form and recovers implied volatility from observed prices.
//
// Example usage:
//
//	engine, err := pricing.NewEngine(pricing.DefaultConfig())
//	opt := engine.Price(0.1, 0.8, 90, 0.5, pricing.Call, 100)
//	sigma := engine.ImpliedVolatility(opt.Price, 0.1, 90, 0.5, pricing.Call, 100)
package pricing

import (
	"errors"
	"fmt"
	"math"
)

// ErrInvalidConfig is wrapped by every configuration validation error.
var ErrInvalidConfig = errors.New("invalid pricing config")

const (
	DefaultAccuracy         = 0.001
	DefaultBisectionLeft    = 0.0
	DefaultBisectionRight   = 10.0
	DefaultNewtonIterations = 10
)

// Config selects the numerical strategies of an Engine.
type Config struct {
	Precision        Precision `json:"precision" yaml:"precision"`
	Method           Method    `json:"method" yaml:"method"`
	Accuracy         float64   `json:"accuracy" yaml:"accuracy"`
	BisectionLeft    float64   `json:"bisection_left" yaml:"bisection_left"`
	BisectionRight   float64   `json:"bisection_right" yaml:"bisection_right"`
	NewtonIterations int       `json:"newton_iterations" yaml:"newton_iterations"`
}

// DefaultConfig returns single precision, Newton-Raphson, accuracy 0.001,
// bracket [0, 10] and 10 Newton iterations.
func DefaultConfig() Config {
	return Config{
		Precision:        PrecisionSingle,
		Method:           MethodNewtonRaphson,
		Accuracy:         DefaultAccuracy,
		BisectionLeft:    DefaultBisectionLeft,
		BisectionRight:   DefaultBisectionRight,
		NewtonIterations: DefaultNewtonIterations,
	}
}

// Validate checks the tuning parameters.
func (c Config) Validate() error {
	if !(c.Accuracy > 0) || math.IsInf(c.Accuracy, 0) {
		return fmt.Errorf("%w: accuracy must be positive, got %v", ErrInvalidConfig, c.Accuracy)
	}
	if !(c.BisectionRight > c.BisectionLeft) || math.IsInf(c.BisectionRight-c.BisectionLeft, 0) {
		return fmt.Errorf("%w: bisection bracket [%v, %v] is empty", ErrInvalidConfig, c.BisectionLeft, c.BisectionRight)
	}
	if c.NewtonIterations <= 0 {
		return fmt.Errorf("%w: newton iterations must be positive, got %d", ErrInvalidConfig, c.NewtonIterations)
	}
	return nil
}

// Engine prices options and inverts prices to volatilities with a fixed
// configuration. It holds no mutable state and is safe for concurrent use.
type Engine struct {
	cfg    Config
	cdf    CDF
	method solverFunc
}

// NewEngine resolves the configured strategies once and returns an Engine.
func NewEngine(cfg Config) (*Engine, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	cdf, err := cfg.Precision.CDF()
	if err != nil {
		return nil, err
	}

	e := &Engine{cfg: cfg, cdf: cdf}
	if e.method, err = e.solver(cfg.Method); err != nil {
		return nil, err
	}
	return e, nil
}

// MustEngine is like NewEngine but panics on an invalid configuration.
func MustEngine(cfg Config) *Engine {
	e, err := NewEngine(cfg)
	if err != nil {
		panic(err)
	}
	return e
}

// Config returns the configuration the engine was built with.
func (e *Engine) Config() Config {
	return e.cfg
}

// Price returns the theoretical price and Greeks of a European option.
//
// Zero volatility or zero time to expiry returns the exact intrinsic limit
// instead of evaluating the closed form.
func (e *Engine) Price(rate, sigma, strike, time float64, typ OptionType, underlying float64) Option {
	return e.evaluate(rate, sigma, strike, time, typ.IsCall(), underlying)
}

// ImpliedVolatility returns the volatility that reproduces price.
//
// It returns 0 both when price equals the intrinsic value and when the solver
// fails to converge; use Solve to tell them apart. A price below intrinsic
// yields a negative volatility.
func (e *Engine) ImpliedVolatility(price, rate, strike, time float64, typ OptionType, underlying float64) float64 {
	return e.Solve(price, rate, strike, time, typ, underlying).Sigma
}

// Solve is ImpliedVolatility with an explicit status.
func (e *Engine) Solve(price, rate, strike, time float64, typ OptionType, underlying float64) Solution {
	return e.solve(price, rate, strike, time, typ.IsCall(), underlying)
}

func (e *Engine) evaluate(rate, sigma, strike, time float64, isCall bool, underlying float64) Option {
	if isDegenerate(sigma, time) {
		return Intrinsic(rate, strike, time, isCall, underlying)
	}
	return Formula(e.cdf, rate, sigma, strike, time, isCall, underlying)
}
