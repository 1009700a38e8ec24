package epicast

import (
	"math"

	"github.com/epicastproj/epicast/order"
	"gonum.org/v1/gonum/stat"
)

// conservativeMetrics are returned when the series is too short for a
// meaningful holdout split. Fixed, deliberately middling values.
func conservativeMetrics() Metrics {
	return Metrics{
		MSE:          10.0,
		RMSE:         math.Sqrt(10.0),
		MAE:          2.5,
		RSquared:     0.5,
		MAPE:         50.0,
		TestVariance: 1.0,
	}
}

// backtest reserves a trailing slice of the series, refits on the
// remainder through the same trainer/validator/fallback path, and scores
// the held-out predictions.
func backtest(y []float64, sel order.Selection, opt *Options) Metrics {
	if len(y) < opt.BacktestMinSample {
		return conservativeMetrics()
	}

	testLen := len(y) / 5
	if testLen < 5 {
		testLen = 5
	}
	trainLen := len(y) - testLen
	if trainLen < 3 {
		return conservativeMetrics()
	}

	trained := trainAndForecast(y[:trainLen], sel, testLen, opt)
	return newMetrics(trained.predictions, y[trainLen:])
}

// newMetrics scores predicted against actual. MAPE skips zero actuals and
// is a percentage; RMSE is derived from MSE; test variance is the
// population variance of the actuals.
func newMetrics(predicted, actual []float64) Metrics {
	n := len(actual)
	if n == 0 || len(predicted) != n {
		return conservativeMetrics()
	}

	var mse, mae float64
	for i := 0; i < n; i++ {
		diff := actual[i] - predicted[i]
		mse += diff * diff
		mae += math.Abs(diff)
	}
	mse /= float64(n)
	mae /= float64(n)

	mape := 0.0
	mapeCount := 0
	for i := 0; i < n; i++ {
		if actual[i] == 0 {
			continue
		}
		mape += math.Abs((actual[i] - predicted[i]) / actual[i])
		mapeCount++
	}
	if mapeCount > 0 {
		mape = mape / float64(mapeCount) * 100.0
	}

	r2 := stat.RSquaredFrom(predicted, actual, nil)
	if math.IsNaN(r2) {
		r2 = 1.0
	}

	return Metrics{
		MSE:          mse,
		RMSE:         math.Sqrt(mse),
		MAE:          mae,
		RSquared:     r2,
		MAPE:         mape,
		TestVariance: stat.PopVariance(actual, nil),
	}
}
