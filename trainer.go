package epicast

import (
	"fmt"

	"github.com/epicastproj/epicast/order"
	"github.com/epicastproj/epicast/sarima"
)

// trainAndForecast runs the model pipeline for one series: fit the
// selected order, forecast, validate, and clamp. Any training failure,
// panic, or rejected forecast routes to the fallback forecaster so the
// caller always receives a usable bundle.
func trainAndForecast(y []float64, sel order.Selection, horizon int, opt *Options) bundle {
	if sel.Method == order.MethodFallback {
		return fallbackBundle(y, sel, horizon, opt, "series too short and irregular to fit")
	}

	predictions, residStdDev, err := fitAndPredict(y, sel.Order, horizon)
	if err != nil {
		return fallbackBundle(y, sel, horizon, opt, err.Error())
	}

	if err := validateForecast(predictions, y, opt.ExplosionFactor, opt.GrowthRateLimit); err != nil {
		return fallbackBundle(y, sel, horizon, opt, err.Error())
	}

	clampMax := opt.ClampFactor * maxOf(y)
	lower := make([]float64, horizon)
	upper := make([]float64, horizon)
	band := opt.ConfidenceZ * residStdDev
	for i, p := range predictions {
		p = clampTo(p, clampMax)
		predictions[i] = p
		lower[i] = clampTo(p-band, clampMax)
		upper[i] = clampTo(p+band, clampMax)
		if lower[i] > p {
			lower[i] = p
		}
		if upper[i] < p {
			upper[i] = p
		}
	}

	return bundle{
		predictions: predictions,
		lower:       lower,
		upper:       upper,
		version:     sel.Order.String(),
		selection:   sel,
	}
}

// fitAndPredict wraps the solver so that panics from pathological inputs
// surface as errors instead of crossing the API boundary.
func fitAndPredict(y []float64, o order.Order, horizon int) (predictions []float64, residStdDev float64, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("model fit panicked: %v", r)
		}
	}()

	model, err := sarima.Train(y, o)
	if err != nil {
		return nil, 0, fmt.Errorf("unable to train %s, %w", o, err)
	}
	predictions, err = model.Forecast(horizon)
	if err != nil {
		return nil, 0, fmt.Errorf("unable to forecast with %s, %w", o, err)
	}
	return predictions, model.ResidualStdDev(), nil
}

func fallbackBundle(y []float64, sel order.Selection, horizon int, opt *Options, reason string) bundle {
	predictions, lower, upper := fallbackForecast(y, horizon, opt.FallbackTrendWindow, opt.ConfidenceZ)

	// The fallback trend can still walk past the historical range on long
	// horizons; the clamp applies to every returned point.
	clampMax := opt.ClampFactor * maxOf(y)
	for i := range predictions {
		predictions[i] = clampTo(predictions[i], clampMax)
		lower[i] = clampTo(lower[i], clampMax)
		upper[i] = clampTo(upper[i], clampMax)
	}

	return bundle{
		predictions:    predictions,
		lower:          lower,
		upper:          upper,
		version:        FallbackVersion,
		usedFallback:   true,
		fallbackReason: reason,
		selection:      sel,
	}
}

func maxOf(y []float64) float64 {
	m := 0.0
	for _, v := range y {
		if v > m {
			m = v
		}
	}
	return m
}

func clampTo(v, clampMax float64) float64 {
	if v < 0 {
		return 0
	}
	if clampMax > 0 && v > clampMax {
		return clampMax
	}
	return v
}
