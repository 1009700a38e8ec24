package epicast

import (
	"errors"
	"fmt"
	"math"
)

var (
	ErrNonFiniteForecast = errors.New("forecast contains non-finite values")
	ErrExplodingForecast = errors.New("forecast exceeds explosion threshold")
	ErrRunawayGrowth     = errors.New("forecast grows faster than the growth-rate limit")
)

// validateForecast rejects diverging or unstable forecasts: any non-finite
// value, a maximum beyond explosionFactor times the historical maximum, or
// a mean step-over-step growth ratio above growthLimit. A nil return means
// the forecast is usable.
func validateForecast(predictions, history []float64, explosionFactor, growthLimit float64) error {
	for _, p := range predictions {
		if math.IsNaN(p) || math.IsInf(p, 0) {
			return ErrNonFiniteForecast
		}
	}

	histMax := 0.0
	for _, v := range history {
		if v > histMax {
			histMax = v
		}
	}
	if histMax > 0 {
		for _, p := range predictions {
			if p > explosionFactor*histMax {
				return fmt.Errorf("prediction %.2f over %.0fx historical max %.2f, %w", p, explosionFactor, histMax, ErrExplodingForecast)
			}
		}
	}

	if len(predictions) >= 2 {
		ratioSum := 0.0
		ratios := 0
		for i := 1; i < len(predictions); i++ {
			prev := predictions[i-1]
			if prev <= 0 {
				continue
			}
			ratioSum += predictions[i] / prev
			ratios++
		}
		if ratios > 0 && ratioSum/float64(ratios) > growthLimit {
			return fmt.Errorf("mean growth ratio %.2f over limit %.2f, %w", ratioSum/float64(ratios), growthLimit, ErrRunawayGrowth)
		}
	}

	return nil
}
