package epicast

import (
	"math"

	"gonum.org/v1/gonum/stat"
)

// fallbackForecast projects a least-squares linear trend over the trailing
// window from the last observed value. It cannot diverge: predictions are
// floored at zero and rounded, and the band width is fixed by the
// population standard deviation of the whole series. This is the safety
// net behind every failed or rejected model fit.
func fallbackForecast(y []float64, horizon, trendWindow int, z float64) ([]float64, []float64, []float64) {
	if trendWindow < 2 {
		trendWindow = 2
	}

	baseline := 0.0
	if len(y) > 0 {
		baseline = y[len(y)-1]
	}

	slope := trailingSlope(y, trendWindow)

	sigma := 0.0
	if len(y) > 1 {
		sigma = stat.PopStdDev(y, nil)
	}
	band := z * sigma

	predictions := make([]float64, horizon)
	lower := make([]float64, horizon)
	upper := make([]float64, horizon)
	for step := 1; step <= horizon; step++ {
		p := math.Round(baseline + slope*float64(step))
		if p < 0 {
			p = 0
		}
		predictions[step-1] = p
		lower[step-1] = math.Max(0, p-band)
		upper[step-1] = math.Max(p, p+band)
	}
	return predictions, lower, upper
}

// trailingSlope fits y = alpha + beta*x over the last window points and
// returns beta, or 0 when there is not enough data for a line.
func trailingSlope(y []float64, window int) float64 {
	if len(y) < 2 {
		return 0
	}
	if window > len(y) {
		window = len(y)
	}
	tail := y[len(y)-window:]

	xs := make([]float64, len(tail))
	for i := range xs {
		xs[i] = float64(i)
	}
	_, beta := stat.LinearRegression(xs, tail, nil, false)
	if math.IsNaN(beta) || math.IsInf(beta, 0) {
		return 0
	}
	return beta
}
