package pricing

import (
	"fmt"
	"math"
)

const sqrt2Pi = 2.5066282746310002

// CDF is a cumulative standard normal distribution function.
type CDF func(x float64) float64

// NDF returns the standard normal probability density at x.
func NDF(x float64) float64 {
	return math.Exp(-(x*x)/2) / sqrt2Pi
}

// CNDFSingle approximates the cumulative standard normal distribution to
// single precision (Abramowitz & Stegun 26.2.17, |error| < 7.5e-8).
func CNDFSingle(x float64) float64 {
	const (
		a1 = 0.31938153
		a2 = -0.356563782
		a3 = 1.781477937
		a4 = -1.821255978
		a5 = 1.330274429
	)

	if x < 0 {
		return 1.0 - CNDFSingle(-x)
	}
	if x > 6 {
		return 1.0
	}

	k1 := 1.0 / (1.0 + 0.2316419*x)
	k2 := ((((a5*k1+a4)*k1+a3)*k1+a2)*k1 + a1) * k1
	return 1.0 - NDF(x)*k2
}

// CNDFDouble approximates the cumulative standard normal distribution to
// double precision using Hart's rational approximation as published by West,
// with a continued fraction for the tail.
func CNDFDouble(x float64) float64 {
	const (
		split = 7.07106781186547

		n0 = 220.206867912376
		n1 = 221.213596169931
		n2 = 112.079291497871
		n3 = 33.912866078383
		n4 = 6.37396220353165
		n5 = 0.700383064443688
		n6 = 0.0352624965998911

		m0 = 440.413735824752
		m1 = 793.826512519948
		m2 = 637.333633378831
		m3 = 296.564248779674
		m4 = 86.7807322029461
		m5 = 16.064177579207
		m6 = 1.75566716318264
		m7 = 0.0883883476483184
	)

	z := math.Abs(x)
	answer := 0.0

	// beyond 37 the density underflows and the tail is treated as empty
	if z <= 37 {
		k1 := math.Exp(-(z * z) / 2)
		if z < split {
			k2 := (((((n6*z+n5)*z+n4)*z+n3)*z+n2)*z+n1)*z + n0
			k3 := ((((((m7*z+m6)*z+m5)*z+m4)*z+m3)*z+m2)*z+m1)*z + m0
			answer = k1 * k2 / k3
		} else {
			k3 := z + 1.0/(z+2.0/(z+3.0/(z+4.0/(z+13.0/20.0))))
			answer = k1 / (sqrt2Pi * k3)
		}
	}

	if x <= 0 {
		return answer
	}
	return 1 - answer
}

// Precision selects one of the cumulative normal approximations.
type Precision string

const (
	PrecisionSingle Precision = "single"
	PrecisionDouble Precision = "double"
)

// CDF returns the approximation for p. The zero value selects single precision.
func (p Precision) CDF() (CDF, error) {
	switch p {
	case PrecisionSingle, "":
		return CNDFSingle, nil
	case PrecisionDouble:
		return CNDFDouble, nil
	default:
		return nil, fmt.Errorf("%w: unknown precision %q", ErrInvalidConfig, string(p))
	}
}
