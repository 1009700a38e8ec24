package epicast

import (
	"github.com/epicastproj/epicast/aggregate"
	"github.com/epicastproj/epicast/order"
	"github.com/epicastproj/epicast/seasonality"
)

// Granularity describes the time resolution the forecast should work at.
// Monthly granularity routes observations through the monthly regularizer.
type Granularity int

const (
	GranularityMonthly Granularity = iota
	GranularityDaily
)

func (g Granularity) String() string {
	if g == GranularityDaily {
		return "daily"
	}
	return "monthly"
}

// Options configures a forecast call. The zero value is not usable; start
// from NewDefaultOptions.
type Options struct {
	Category    order.Category
	Granularity Granularity

	// Horizon is the number of future periods to predict.
	Horizon int

	// SeasonalPeriod and SeasonalThreshold drive the variance
	// decomposition seasonality test.
	SeasonalPeriod    int
	SeasonalThreshold float64

	// ExplosionFactor rejects forecasts whose maximum exceeds this
	// multiple of the historical maximum.
	ExplosionFactor float64
	// GrowthRateLimit rejects forecasts whose mean step-over-step growth
	// ratio exceeds this value.
	GrowthRateLimit float64
	// ClampFactor caps every prediction and bound at this multiple of
	// the historical maximum.
	ClampFactor float64
	// ConfidenceZ is the normal quantile used for the confidence band.
	ConfidenceZ float64
	// ConfidenceLevel is reported on every forecast point.
	ConfidenceLevel float64

	// BacktestMinSample is the smallest series the backtester will split;
	// below it, fixed conservative metrics are returned.
	BacktestMinSample int
	// SevereMAPEThreshold is the backtested MAPE (percent) above which
	// the whole forecast is regenerated through the fallback.
	SevereMAPEThreshold float64

	// FallbackTrendWindow is the trailing point count the fallback fits
	// its linear trend on.
	FallbackTrendWindow int
}

// NewDefaultOptions returns the documented defaults. The explosion,
// growth-rate, and severe-MAPE constants are empirical and have not been
// calibrated against real surveillance data.
func NewDefaultOptions() *Options {
	return &Options{
		Category:    order.CategoryCaseCounts,
		Granularity: GranularityMonthly,

		Horizon: 3,

		SeasonalPeriod:    seasonality.DefaultPeriod,
		SeasonalThreshold: seasonality.DefaultThreshold,

		ExplosionFactor: 10.0,
		GrowthRateLimit: 1.5,
		ClampFactor:     5.0,
		ConfidenceZ:     1.96,
		ConfidenceLevel: 0.95,

		BacktestMinSample:   10,
		SevereMAPEThreshold: 100.0,

		FallbackTrendWindow: 7,
	}
}

// fillPolicy maps categories to their aggregation fill policy: case-count
// series omit empty months, administrative issuance series zero-fill.
// Preserved as observed behavior; no general rule is implied.
func (o *Options) fillPolicy() aggregate.FillPolicy {
	if o.Category == order.CategoryIssuance {
		return aggregate.ZeroFill
	}
	return aggregate.OmitEmpty
}
