package pricing

import (
	"errors"
	"math"
	"testing"

	"gonum.org/v1/gonum/stat/distuv"
)

// Reference values from the Drexel vanilla option calculator.
func TestPriceCall(t *testing.T) {
	engine := newTestEngine(t, nil)

	option := engine.Price(0.1, 0.8, 90, 0.5, Call, 100)
	assertFloatEqual(t, "price", 28.61495, option.Price, closeTo)
	assertFloatEqual(t, "delta", 0.7114, option.Delta, closeTo)
	assertFloatEqual(t, "gamma", 0.00604, option.Gamma, closeTo)
	assertFloatEqual(t, "vega", 24.14951, option.Vega, closeTo)
	assertFloatEqual(t, "theta", 23.57213, option.Theta, closeTo)
	assertFloatEqual(t, "rho", 21.26261, option.Rho, closeTo)
}

func TestPricePut(t *testing.T) {
	engine := newTestEngine(t, nil)

	option := engine.Price(0.1, 0.8, 90, 0.5, Put, 100)
	assertFloatEqual(t, "price", 14.2256, option.Price, closeTo)
	assertFloatEqual(t, "delta", -0.2886, option.Delta, closeTo)
	assertFloatEqual(t, "gamma", 0.00604, option.Gamma, closeTo)
	assertFloatEqual(t, "vega", 24.14951, option.Vega, closeTo)
	assertFloatEqual(t, "theta", 15.01106, option.Theta, closeTo)
	assertFloatEqual(t, "rho", -21.54272, option.Rho, closeTo)
}

// referencePrice is the closed form evaluated with gonum's normal CDF.
func referencePrice(rate, sigma, strike, time float64, isCall bool, underlying float64) Option {
	n := distuv.UnitNormal
	sqrtT := math.Sqrt(time)
	disc := math.Exp(-rate * time)
	d1 := (math.Log(underlying/strike)+(rate+sigma*sigma/2)*time)/(sigma*sqrtT)
	d2 := d1 - sigma*sqrtT

	nd1, nd2 := n.CDF(d1), n.CDF(d2)
	if !isCall {
		nd1, nd2 = -n.CDF(-d1), -n.CDF(-d2)
	}
	pdf := n.Prob(d1)
	return Option{
		Price: underlying*nd1 - strike*disc*nd2,
		Delta: nd1,
		Gamma: pdf / (underlying * sigma * sqrtT),
		Vega:  underlying * sqrtT * pdf,
		Theta: underlying*sigma*pdf/(2*sqrtT) + rate*strike*disc*nd2,
		Rho:   strike * time * disc * nd2,
	}
}

func TestPriceDoublePrecision(t *testing.T) {
	engine := newTestEngine(t, func(c *Config) { c.Precision = PrecisionDouble })

	for _, typ := range []OptionType{Call, Put} {
		got := engine.Price(0.1, 0.8, 90, 0.5, typ, 100)
		want := referencePrice(0.1, 0.8, 90, 0.5, typ.IsCall(), 100)

		assertFloatEqual(t, string(typ)+" price", want.Price, got.Price, 1e-9)
		assertFloatEqual(t, string(typ)+" delta", want.Delta, got.Delta, 1e-9)
		assertFloatEqual(t, string(typ)+" gamma", want.Gamma, got.Gamma, 1e-9)
		assertFloatEqual(t, string(typ)+" vega", want.Vega, got.Vega, 1e-9)
		assertFloatEqual(t, string(typ)+" theta", want.Theta, got.Theta, 1e-9)
		assertFloatEqual(t, string(typ)+" rho", want.Rho, got.Rho, 1e-9)
	}

	call := engine.Price(0.1, 0.8, 90, 0.5, Call, 100)
	put := engine.Price(0.1, 0.8, 90, 0.5, Put, 100)

	// put-call parity holds to the precision of the CDF
	assertFloatEqual(t, "parity", 100-90*math.Exp(-0.05), call.Price-put.Price, 1e-12)
}

func TestFormulaIsUnguarded(t *testing.T) {
	got := Formula(CNDFSingle, 0.08, 0, 34, 0, true, 34)

	fields := map[string]float64{
		"price": got.Price, "delta": got.Delta, "gamma": got.Gamma,
		"vega": got.Vega, "theta": got.Theta, "rho": got.Rho,
	}
	for name, v := range fields {
		if !math.IsNaN(v) {
			t.Errorf("%s: want NaN, got %v", name, v)
		}
	}
}

func TestFormulaMatchesEngine(t *testing.T) {
	engine := newTestEngine(t, nil)

	for _, typ := range []OptionType{Call, Put} {
		want := Formula(CNDFSingle, 0.05, 0.3, 105, 0.75, typ.IsCall(), 100)
		got := engine.Price(0.05, 0.3, 105, 0.75, typ, 100)
		if got != want {
			t.Errorf("%s: engine %+v, formula %+v", typ, got, want)
		}
	}
}

// Corner cases after MattL922/black-scholes.
func TestPriceCornerCases(t *testing.T) {
	engine := newTestEngine(t, nil)

	cases := []struct {
		name       string
		sigma      float64
		time       float64
		typ        OptionType
		underlying float64
		want       float64
		exact      bool
	}{
		{"t>0 v>0 call", 0.2, 0.25, Call, 30, 0.23834902311961947, false},
		{"t>0 v>0 put", 0.2, 0.25, Put, 30, 3.5651039155492974, false},
		{"t>0 v=0 otm call", 0, 0.25, Call, 30, 0, true},
		{"t>0 v=0 otm put", 0, 0.25, Put, 35, 0, true},
		{"t=0 v>0 otm call", 0.1, 0, Call, 30, 0, true},
		{"t=0 v>0 otm put", 0.1, 0, Put, 35, 0, true},
		{"t=0 v=0 otm call", 0, 0, Call, 30, 0, true},
		{"t=0 v=0 otm put", 0, 0, Put, 35, 0, true},
		{"t>0 v=0 itm call", 0, 0.25, Call, 36, 2.673245107570324, false},
		{"t>0 v=0 itm put", 0, 0.25, Put, 32, 1.3267548924296761, false},
		{"t=0 v>0 itm call", 0.1, 0, Call, 36, 2, true},
		{"t=0 v>0 itm put", 0.1, 0, Put, 32, 2, true},
		{"t=0 v=0 itm call", 0, 0, Call, 36, 2, true},
		{"t=0 v=0 itm put", 0, 0, Put, 32, 2, true},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			option := engine.Price(0.08, c.sigma, 34, c.time, c.typ, c.underlying)
			if c.exact {
				assertExact(t, "price", c.want, option.Price)
				return
			}
			assertFloatEqual(t, "price", c.want, option.Price, closeTo)
		})
	}
}

func TestPriceDegenerateGreeks(t *testing.T) {
	engine := newTestEngine(t, nil)

	call := engine.Price(0.08, 0, 34, 0.25, Call, 36)
	assertExact(t, "call delta", 1, call.Delta)
	assertExact(t, "call gamma", 0, call.Gamma)
	assertExact(t, "call vega", 0, call.Vega)
	assertFloatEqual(t, "call rho", 34*0.25*math.Exp(-0.02), call.Rho, 1e-12)
	assertFloatEqual(t, "call theta", 0.08*34*math.Exp(-0.02), call.Theta, 1e-12)

	put := engine.Price(0.08, 0.3, 34, 0, Put, 32)
	assertExact(t, "put delta", -1, put.Delta)
	assertExact(t, "put rho", 0, put.Rho)

	otm := engine.Price(0.08, 0, 34, 0.25, Put, 36)
	if otm != (Option{}) {
		t.Errorf("out of the money limit should be all zero, got %+v", otm)
	}
}

func TestNewEngineValidation(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*Config)
	}{
		{"zero accuracy", func(c *Config) { c.Accuracy = 0 }},
		{"nan accuracy", func(c *Config) { c.Accuracy = math.NaN() }},
		{"inverted bracket", func(c *Config) { c.BisectionLeft, c.BisectionRight = 5, 1 }},
		{"empty bracket", func(c *Config) { c.BisectionRight = c.BisectionLeft }},
		{"no iterations", func(c *Config) { c.NewtonIterations = 0 }},
		{"unknown precision", func(c *Config) { c.Precision = "half" }},
		{"unknown method", func(c *Config) { c.Method = "secant" }},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			cfg := DefaultConfig()
			c.mutate(&cfg)
			_, err := NewEngine(cfg)
			if !errors.Is(err, ErrInvalidConfig) {
				t.Fatalf("want ErrInvalidConfig, got %v", err)
			}
		})
	}
}

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	if cfg.Precision != PrecisionSingle || cfg.Method != MethodNewtonRaphson {
		t.Fatalf("unexpected strategies: %+v", cfg)
	}
	if cfg.Accuracy != 0.001 || cfg.BisectionLeft != 0 || cfg.BisectionRight != 10 || cfg.NewtonIterations != 10 {
		t.Fatalf("unexpected tuning: %+v", cfg)
	}
	if got := newTestEngine(t, nil).Config(); got != cfg {
		t.Fatalf("engine config %+v, want %+v", got, cfg)
	}
}

func TestMustEnginePanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatal("expected panic")
		}
	}()
	MustEngine(Config{})
}

func TestParseOptionType(t *testing.T) {
	for in, want := range map[string]OptionType{"call": Call, "C": Call, " Put ": Put, "p": Put} {
		got, err := ParseOptionType(in)
		if err != nil || got != want {
			t.Errorf("ParseOptionType(%q) = %q, %v", in, got, err)
		}
	}
	if _, err := ParseOptionType("straddle"); err == nil {
		t.Error("expected error")
	}
}
