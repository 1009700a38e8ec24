// Package epicast forecasts seasonal count series from irregular
// surveillance observations. One call regularizes the input onto monthly
// buckets where warranted, selects and fits a seasonal ARIMA order,
// validates the output against divergence, and backtests the model on a
// held-out tail, degrading to a stable trend-extrapolation fallback
// whenever the fit cannot be trusted. The engine is stateless and purely
// computational; concurrent calls on independent series need no
// synchronization.
package epicast

import (
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/epicastproj/epicast/aggregate"
	"github.com/epicastproj/epicast/observation"
	"github.com/epicastproj/epicast/order"
	"gonum.org/v1/gonum/stat"
)

// MinObservations is the hard floor below which no forecast is possible.
const MinObservations = 3

var ErrInsufficientData = errors.New("insufficient observations to forecast")

// Forecast produces a validated horizon-length forecast for the given
// observations. Only ErrInsufficientData (or invalid input values)
// surfaces as an error; every unstable fit degrades to the fallback path
// and is reported through ModelVersion and Diagnostics instead.
func Forecast(obs []observation.Observation, opt *Options) (*Result, error) {
	if opt == nil {
		opt = NewDefaultOptions()
	}
	horizon := opt.Horizon
	if horizon < 1 {
		horizon = 1
	}

	series, err := observation.NewSeries(obs)
	if err != nil {
		return nil, fmt.Errorf("unable to build series, %w", err)
	}
	if series.Len() < MinObservations {
		return nil, fmt.Errorf("need at least %d observations, got %d, %w", MinObservations, series.Len(), ErrInsufficientData)
	}

	spacing, err := observation.NewSpacing(series)
	if err != nil {
		return nil, fmt.Errorf("unable to measure spacing, %w", err)
	}
	diag := Diagnostics{Spacing: spacing}

	workDates := series.Dates
	workValues := series.Values
	aggregated := false
	if opt.Granularity == GranularityMonthly || (spacing.Irregular() && spacing.AggregationEligible()) {
		policy := opt.fillPolicy()
		buckets, aggErr := aggregate.MonthlySeries(series, policy)
		if aggErr == nil && len(buckets) >= MinObservations {
			workDates, workValues = aggregate.Split(buckets)
			aggregated = true
			diag.FillPolicy = policy.String()
			diag.Buckets = len(buckets)
			if opt.Category == order.CategoryIssuance {
				diag.AvgWorkdayRate = buckets[len(buckets)-1].WorkdayRate()
			}
		}
	}
	diag.Aggregated = aggregated

	sel := order.Select(workValues, order.Input{
		Aggregated:        aggregated,
		Irregular:         spacing.Irregular(),
		Eligible:          spacing.AggregationEligible(),
		Category:          opt.Category,
		SeasonalPeriod:    opt.SeasonalPeriod,
		SeasonalThreshold: opt.SeasonalThreshold,
	})
	diag.Method = sel.Method.String()
	diag.Order = sel.Order.String()
	diag.SeasonalStrength = sel.Seasonality.Strength

	trained := trainAndForecast(workValues, sel, horizon, opt)
	metrics := backtest(workValues, sel, opt)

	if metrics.MAPE > opt.SevereMAPEThreshold {
		// Second-chance escape valve: the model backtests worse than a
		// naive forecast, so the whole result is regenerated through the
		// fallback and rescored against it.
		fbSel := order.Selection{
			Method:      order.MethodFallback,
			Order:       order.Order{P: 1, Period: 1},
			Seasonality: sel.Seasonality,
		}
		trained = fallbackBundle(workValues, fbSel, horizon, opt, "backtested error exceeded the severe-overprediction threshold")
		metrics = backtest(workValues, fbSel, opt)
		diag.SevereOverprediction = true
	}
	if trained.usedFallback {
		diag.FallbackReason = trained.fallbackReason
	}

	dates := futureDates(workDates, aggregated, spacing, horizon)
	points := make([]ForecastPoint, horizon)
	for i := range points {
		points[i] = ForecastPoint{
			Date:            dates[i],
			Predicted:       trained.predictions[i],
			Lower:           trained.lower[i],
			Upper:           trained.upper[i],
			ConfidenceLevel: opt.ConfidenceLevel,
		}
	}

	return &Result{
		Predictions:         points,
		ModelVersion:        trained.version,
		Accuracy:            metrics,
		Trend:               classifyTrend(workValues),
		SeasonalityDetected: sel.Seasonality.Detected,
		DataQuality:         gradeDataQuality(len(workValues), opt),
		TestVariance:        metrics.TestVariance,
		Diagnostics:         diag,
	}, nil
}

// futureDates extends the working timeline by horizon periods: calendar
// months for aggregated series, otherwise the rounded mean observed gap
// in days with a one-day floor.
func futureDates(dates []time.Time, aggregated bool, spacing observation.Spacing, horizon int) []time.Time {
	last := dates[len(dates)-1]
	out := make([]time.Time, 0, horizon)
	if aggregated {
		for i := 1; i <= horizon; i++ {
			out = append(out, last.AddDate(0, i, 0))
		}
		return out
	}

	stepDays := int(math.Round(spacing.AvgGapDays))
	if stepDays < 1 {
		stepDays = 1
	}
	for i := 1; i <= horizon; i++ {
		out = append(out, last.AddDate(0, 0, i*stepDays))
	}
	return out
}

// classifyTrend labels the series direction from a least-squares slope
// over the whole working series. Slopes within 2% of the mean level per
// step count as stable.
func classifyTrend(y []float64) Trend {
	if len(y) < 2 {
		return TrendStable
	}
	slope := trailingSlope(y, len(y))
	mean := stat.Mean(y, nil)

	band := 0.02 * math.Abs(mean)
	if band == 0 {
		band = 1e-9
	}
	switch {
	case slope > band:
		return TrendIncreasing
	case slope < -band:
		return TrendDecreasing
	default:
		return TrendStable
	}
}

// gradeDataQuality reflects how much history backed the forecast:
// anything below the backtest minimum is insufficient, two full years of
// monthly history or more is high.
func gradeDataQuality(n int, opt *Options) DataQuality {
	switch {
	case n < opt.BacktestMinSample:
		return DataQualityInsufficient
	case n < 24:
		return DataQualityModerate
	default:
		return DataQualityHigh
	}
}
