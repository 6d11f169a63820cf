package pricing

import "math"

// Probability estimates the chance, in percent, that the underlying ends
// below and above target after time years at volatility sigma, starting
// from price. No drift is applied.
//
// The normal CDF is evaluated with coefficients and intermediates truncated
// to 5 decimals, and each percentage is floored to one decimal, so below and
// above may not add up to exactly 100.
func Probability(price, target, time, sigma float64) (below, above float64) {
	vt := sigma * math.Sqrt(time)
	d1 := math.Log(target/price) / vt

	y := floorTo(1/(1+0.2316419*math.Abs(d1)), 5)
	z := floorTo(0.3989423*math.Exp(-(d1*d1)/2), 5)

	y5 := 1.330274 * math.Pow(y, 5)
	y4 := 1.821256 * math.Pow(y, 4)
	y3 := 1.781478 * math.Pow(y, 3)
	y2 := 0.356538 * math.Pow(y, 2)
	y1 := 0.3193815 * y

	x := floorTo(1-z*(y5-y4+y3-y2+y1), 5)
	if d1 < 0 {
		x = 1 - x
	}

	below = math.Floor(x*1000) / 10
	above = math.Floor((1-x)*1000) / 10
	return below, above
}

func floorTo(v float64, decimals int) float64 {
	p := math.Pow(10, float64(decimals))
	return math.Floor(v*p) / p
}
