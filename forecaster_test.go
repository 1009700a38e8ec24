package epicast

import (
	"math"
	"testing"
	"time"

	json "github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/epicastproj/epicast/observation"
	"github.com/epicastproj/epicast/order"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// winterPeaking is 24 months of case counts with a December peak, the
// second year scaled up 10%. Oct 2022 through Sep 2024.
func winterPeaking() []observation.Observation {
	values := []float64{
		12, 18, 22, 5, 4, 3, 2, 2, 3, 4, 6, 8,
		13.2, 19.8, 24.2, 5.5, 4.4, 3.3, 2.2, 2.2, 3.3, 4.4, 6.6, 8.8,
	}
	dates := observation.GenerateMonthlyDates(date(2022, 10, 1), len(values))
	return observation.FromValues(dates, values)
}

func TestForecastInsufficientData(t *testing.T) {
	obs := []observation.Observation{
		{Date: date(2024, 1, 1), Value: 5},
		{Date: date(2024, 2, 1), Value: 6},
	}
	_, err := Forecast(obs, nil)
	assert.ErrorIs(t, err, ErrInsufficientData)

	_, err = Forecast(nil, nil)
	assert.ErrorIs(t, err, observation.ErrNoObservations)
}

func TestForecastSeasonalSeries(t *testing.T) {
	dates := observation.GenerateMonthlyDates(date(2021, 1, 1), 36)
	y := observation.GenerateSeasonalY(36, 10, 5, 12)

	opt := NewDefaultOptions()
	opt.Horizon = 5
	res, err := Forecast(observation.FromValues(dates, y), opt)
	require.NoError(t, err)

	require.Len(t, res.Predictions, 5)
	assert.Equal(t, "sarima(1,0,1)(1,0,0)12", res.ModelVersion)
	assert.True(t, res.SeasonalityDetected)
	assert.Equal(t, DataQualityHigh, res.DataQuality)
	assert.Equal(t, TrendStable, res.Trend)
	assert.True(t, res.Diagnostics.Aggregated)
	assert.Equal(t, "omit-empty", res.Diagnostics.FillPolicy)
	assert.Equal(t, 36, res.Diagnostics.Buckets)
	assert.Greater(t, res.Diagnostics.SeasonalStrength, 0.15)

	last := dates[len(dates)-1]
	for i, p := range res.Predictions {
		assert.Equal(t, last.AddDate(0, i+1, 0), p.Date)
		assert.Equal(t, 0.95, p.ConfidenceLevel)
	}
}

func TestForecastBoundsAlwaysBracket(t *testing.T) {
	testData := map[string][]observation.Observation{
		"seasonal": observation.FromValues(
			observation.GenerateMonthlyDates(date(2021, 1, 1), 36),
			observation.GenerateSeasonalY(36, 10, 5, 12),
		),
		"short": observation.FromValues(
			observation.GenerateMonthlyDates(date(2024, 1, 1), 4),
			[]float64{3, 8, 2, 6},
		),
		"trending": observation.FromValues(
			observation.GenerateMonthlyDates(date(2023, 1, 1), 18),
			observation.GenerateTrendY(18, 5, 2),
		),
	}

	for name, obs := range testData {
		t.Run(name, func(t *testing.T) {
			opt := NewDefaultOptions()
			opt.Horizon = 4
			res, err := Forecast(obs, opt)
			require.NoError(t, err)
			require.Len(t, res.Predictions, 4)

			histMax := 0.0
			for _, o := range obs {
				if o.Value > histMax {
					histMax = o.Value
				}
			}
			for _, p := range res.Predictions {
				assert.False(t, math.IsNaN(p.Predicted))
				assert.GreaterOrEqual(t, p.Predicted, 0.0)
				assert.LessOrEqual(t, p.Lower, p.Predicted)
				assert.GreaterOrEqual(t, p.Upper, p.Predicted)
				assert.GreaterOrEqual(t, p.Lower, 0.0)
				assert.LessOrEqual(t, p.Predicted, opt.ClampFactor*histMax)
			}
		})
	}
}

func TestForecastWinterPeak(t *testing.T) {
	res, err := Forecast(winterPeaking(), nil)
	require.NoError(t, err)

	require.Len(t, res.Predictions, 3)
	assert.True(t, res.SeasonalityDetected)
	assert.Equal(t, DataQualityHigh, res.DataQuality)

	// horizon covers Oct, Nov, Dec 2024; the December forecast must stay
	// above the shoulder-month one.
	assert.Equal(t, date(2024, 10, 1), res.Predictions[0].Date)
	assert.Equal(t, date(2024, 12, 1), res.Predictions[2].Date)
	assert.Greater(t, res.Predictions[2].Predicted, res.Predictions[0].Predicted)
}

func TestForecastSevereOverpredictionSwapsToFallback(t *testing.T) {
	// A level shift from 100 down to 1 makes the backtest train on the old
	// level and score against the new one, blowing past the MAPE valve.
	values := make([]float64, 20)
	for i := range values {
		values[i] = 100
		if i >= 15 {
			values[i] = 1
		}
	}
	obs := observation.FromValues(observation.GenerateMonthlyDates(date(2023, 1, 1), 20), values)

	res, err := Forecast(obs, nil)
	require.NoError(t, err)

	assert.Equal(t, FallbackVersion, res.ModelVersion)
	assert.True(t, res.Diagnostics.SevereOverprediction)
	assert.NotEmpty(t, res.Diagnostics.FallbackReason)
	assert.Greater(t, res.Accuracy.MAPE, 100.0)
	for _, p := range res.Predictions {
		// declining trend from the new low level floors at zero.
		assert.Equal(t, 0.0, p.Predicted)
	}
}

func TestForecastIrregularShortSeriesUsesFallback(t *testing.T) {
	obs := []observation.Observation{
		{Date: date(2022, 1, 1), Value: 4},
		{Date: date(2022, 1, 8), Value: 5},
		{Date: date(2022, 1, 15), Value: 6},
		{Date: date(2023, 1, 28), Value: 5},
		{Date: date(2023, 2, 4), Value: 4},
	}
	opt := NewDefaultOptions()
	opt.Granularity = GranularityDaily

	res, err := Forecast(obs, opt)
	require.NoError(t, err)

	assert.Equal(t, FallbackVersion, res.ModelVersion)
	assert.Equal(t, "fallback", res.Diagnostics.Method)
	assert.False(t, res.Diagnostics.Aggregated)
	assert.NotEmpty(t, res.Diagnostics.FallbackReason)
}

func TestForecastFallbackPredictionsStayClamped(t *testing.T) {
	// a rising trailing trend on a long horizon would otherwise walk the
	// fallback past five times the historical maximum.
	obs := []observation.Observation{
		{Date: date(2022, 1, 1), Value: 1},
		{Date: date(2022, 1, 8), Value: 2},
		{Date: date(2022, 1, 15), Value: 3},
		{Date: date(2023, 1, 28), Value: 4},
		{Date: date(2023, 2, 4), Value: 5},
	}
	opt := NewDefaultOptions()
	opt.Granularity = GranularityDaily
	opt.Horizon = 30

	res, err := Forecast(obs, opt)
	require.NoError(t, err)
	require.Equal(t, FallbackVersion, res.ModelVersion)
	require.Len(t, res.Predictions, 30)

	clampMax := opt.ClampFactor * 5
	for _, p := range res.Predictions {
		assert.LessOrEqual(t, p.Predicted, clampMax)
		assert.LessOrEqual(t, p.Upper, clampMax)
		assert.GreaterOrEqual(t, p.Lower, 0.0)
		assert.LessOrEqual(t, p.Lower, p.Predicted)
		assert.GreaterOrEqual(t, p.Upper, p.Predicted)
	}
	// the unit-slope trend saturates the clamp before the horizon ends.
	assert.Equal(t, clampMax, res.Predictions[29].Predicted)
}

func TestForecastRunawayFitFallsBack(t *testing.T) {
	// geometric growth fits cleanly, but the forecast's step ratio blows
	// past the growth limit and the result degrades to the fallback.
	values := make([]float64, 14)
	v := 1.0
	for i := range values {
		values[i] = v
		v *= 5
	}
	obs := observation.FromValues(observation.GenerateDates(date(2024, 1, 1), 14, 1), values)

	opt := NewDefaultOptions()
	opt.Granularity = GranularityDaily
	opt.Horizon = 2

	res, err := Forecast(obs, opt)
	require.NoError(t, err)

	assert.Equal(t, FallbackVersion, res.ModelVersion)
	assert.Contains(t, res.Diagnostics.FallbackReason, "growth")
	assert.False(t, res.Diagnostics.SevereOverprediction)

	histMax := values[len(values)-1]
	for _, p := range res.Predictions {
		assert.GreaterOrEqual(t, p.Predicted, 0.0)
		assert.LessOrEqual(t, p.Predicted, opt.ClampFactor*histMax)
		assert.LessOrEqual(t, p.Lower, p.Predicted)
		assert.GreaterOrEqual(t, p.Upper, p.Predicted)
	}
}

func TestForecastShortSeriesConservativeMetrics(t *testing.T) {
	obs := observation.FromValues(
		observation.GenerateMonthlyDates(date(2024, 1, 1), 8),
		[]float64{4, 5, 6, 5, 4, 5, 6, 5},
	)

	res, err := Forecast(obs, nil)
	require.NoError(t, err)

	assert.Equal(t, conservativeMetrics(), res.Accuracy)
	assert.Equal(t, DataQualityInsufficient, res.DataQuality)
	assert.Equal(t, res.Accuracy.TestVariance, res.TestVariance)
}

func TestForecastIssuanceDiagnostics(t *testing.T) {
	// issuance series zero-fill and report a per-workday rate.
	values := observation.GenerateTrendY(24, 200, 1)
	obs := observation.FromValues(observation.GenerateMonthlyDates(date(2022, 1, 1), 24), values)

	opt := NewDefaultOptions()
	opt.Category = order.CategoryIssuance
	res, err := Forecast(obs, opt)
	require.NoError(t, err)

	assert.Equal(t, "zero-fill", res.Diagnostics.FillPolicy)
	assert.Equal(t, "seasonal", res.Diagnostics.Method)
	assert.Greater(t, res.Diagnostics.AvgWorkdayRate, 0.0)
}

func TestForecastTrendClassification(t *testing.T) {
	testData := map[string]struct {
		values   []float64
		expected Trend
	}{
		"increasing": {observation.GenerateTrendY(12, 10, 3), TrendIncreasing},
		"decreasing": {observation.GenerateTrendY(12, 100, -3), TrendDecreasing},
		"stable":     {[]float64{50, 51, 50, 49, 50, 51, 50, 49, 50, 51, 50, 49}, TrendStable},
	}

	for name, td := range testData {
		t.Run(name, func(t *testing.T) {
			obs := observation.FromValues(
				observation.GenerateMonthlyDates(date(2024, 1, 1), len(td.values)),
				td.values,
			)
			res, err := Forecast(obs, nil)
			require.NoError(t, err)
			assert.Equal(t, td.expected, res.Trend)
		})
	}
}

func TestResultJSONRoundTrip(t *testing.T) {
	res, err := Forecast(winterPeaking(), nil)
	require.NoError(t, err)

	buf, err := json.Marshal(res)
	require.NoError(t, err)

	var decoded Result
	require.NoError(t, json.Unmarshal(buf, &decoded))

	assert.Equal(t, res.ModelVersion, decoded.ModelVersion)
	assert.Equal(t, res.Trend, decoded.Trend)
	assert.Equal(t, res.SeasonalityDetected, decoded.SeasonalityDetected)
	assert.Equal(t, res.Diagnostics.Method, decoded.Diagnostics.Method)
	require.Len(t, decoded.Predictions, len(res.Predictions))
	for i := range res.Predictions {
		assert.True(t, res.Predictions[i].Date.Equal(decoded.Predictions[i].Date))
		assert.InDelta(t, res.Predictions[i].Predicted, decoded.Predictions[i].Predicted, 1e-9)
		assert.InDelta(t, res.Predictions[i].Lower, decoded.Predictions[i].Lower, 1e-9)
		assert.InDelta(t, res.Predictions[i].Upper, decoded.Predictions[i].Upper, 1e-9)
	}
}
