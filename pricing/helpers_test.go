package pricing

import (
	"math"
	"testing"
)

// closeTo mirrors a 5-decimal comparison: |want-got| < 5e-6.
const closeTo = 5e-6

func assertFloatEqual(t *testing.T, name string, want, got, tolerance float64) {
	t.Helper()
	if math.Abs(want-got) > tolerance {
		t.Errorf("%s: want %v, got %v (tolerance %v)", name, want, got, tolerance)
	}
}

func assertExact(t *testing.T, name string, want, got float64) {
	t.Helper()
	if want != got {
		t.Errorf("%s: want exactly %v, got %v", name, want, got)
	}
}

func newTestEngine(t *testing.T, mutate func(*Config)) *Engine {
	t.Helper()
	cfg := DefaultConfig()
	if mutate != nil {
		mutate(&cfg)
	}
	e, err := NewEngine(cfg)
	if err != nil {
		t.Fatalf("NewEngine(%+v): %v", cfg, err)
	}
	return e
}
