// Package seasonality decides whether a series repeats on a fixed period
// using variance decomposition. On short monthly-aggregated series this is
// more robust than autocorrelation-based detection.
package seasonality

import "gonum.org/v1/gonum/stat"

const (
	// DefaultPeriod is one year of monthly buckets.
	DefaultPeriod = 12
	// DefaultThreshold is the minimum fraction of total variance the
	// phase means must explain for seasonality to be declared.
	DefaultThreshold = 0.15
)

// Result reports the outcome of a seasonality test.
type Result struct {
	Detected  bool    `json:"detected"`
	Strength  float64 `json:"strength"`
	Period    int     `json:"period"`
	Evaluated bool    `json:"evaluated"`
}

// Detect measures the seasonal strength of y at the candidate period and
// compares it against threshold. A series shorter than two full cycles
// reports no seasonality without evaluating.
func Detect(y []float64, period int, threshold float64) Result {
	if period < 1 {
		period = DefaultPeriod
	}
	if threshold <= 0 {
		threshold = DefaultThreshold
	}
	if len(y) < 2*period {
		return Result{Period: period}
	}

	strength := Strength(y, period)
	return Result{
		Detected:  strength > threshold,
		Strength:  strength,
		Period:    period,
		Evaluated: true,
	}
}

// Strength returns the fraction of total variance explained by the
// per-phase means across cycles. The phase-mean variance is weighted by
// how many observations fall in each phase so partial trailing cycles do
// not skew the score.
func Strength(y []float64, period int) float64 {
	n := len(y)
	if period < 1 || n < 2*period {
		return 0
	}

	globalMean := stat.Mean(y, nil)
	totalVar := 0.0
	for _, v := range y {
		d := v - globalMean
		totalVar += d * d
	}
	if totalVar == 0 {
		return 0
	}

	phaseSums := make([]float64, period)
	phaseCounts := make([]float64, period)
	for i, v := range y {
		phase := i % period
		phaseSums[phase] += v
		phaseCounts[phase]++
	}

	seasonalVar := 0.0
	for phase := 0; phase < period; phase++ {
		if phaseCounts[phase] == 0 {
			continue
		}
		phaseMean := phaseSums[phase] / phaseCounts[phase]
		d := phaseMean - globalMean
		seasonalVar += phaseCounts[phase] * d * d
	}

	return seasonalVar / totalVar
}
