package epicast

import (
	"time"

	"github.com/epicastproj/epicast/observation"
	"github.com/epicastproj/epicast/order"
)

// Trend classifies the overall direction of the working series.
type Trend string

const (
	TrendIncreasing Trend = "increasing"
	TrendDecreasing Trend = "decreasing"
	TrendStable     Trend = "stable"
)

// DataQuality grades how much usable history backed the forecast.
type DataQuality string

const (
	DataQualityHigh         DataQuality = "high"
	DataQualityModerate     DataQuality = "moderate"
	DataQualityInsufficient DataQuality = "insufficient"
)

// FallbackVersion tags results produced by the trend-extrapolation
// fallback rather than a fitted model.
const FallbackVersion = "fallback-trend"

// ForecastPoint is one future period of the forecast with its 95%
// confidence band. Bounds always bracket the prediction and everything is
// clamped to [0, 5x the historical maximum].
type ForecastPoint struct {
	Date            time.Time `json:"date"`
	Predicted       float64   `json:"predicted_value"`
	Lower           float64   `json:"lower_bound"`
	Upper           float64   `json:"upper_bound"`
	ConfidenceLevel float64   `json:"confidence_level"`
}

// Metrics are backtested accuracy scores over a held-out tail of the
// series. RMSE is sqrt(MSE) by construction and MAPE is a percentage.
type Metrics struct {
	MSE          float64 `json:"mse"`
	RMSE         float64 `json:"rmse"`
	MAE          float64 `json:"mae"`
	RSquared     float64 `json:"r_squared"`
	MAPE         float64 `json:"mape"`
	TestVariance float64 `json:"test_variance"`
}

// Diagnostics is the structured trace of one forecast call: what the
// engine measured and decided, returned alongside the forecast so callers
// can log, test, or discard it.
type Diagnostics struct {
	Spacing    observation.Spacing `json:"spacing"`
	Aggregated bool                `json:"aggregated"`
	FillPolicy string              `json:"fill_policy,omitempty"`
	Buckets    int                 `json:"buckets,omitempty"`

	// AvgWorkdayRate is the final bucket's value per business day,
	// reported for administrative issuance series only.
	AvgWorkdayRate float64 `json:"avg_workday_rate,omitempty"`

	Method           string  `json:"method"`
	Order            string  `json:"order"`
	SeasonalStrength float64 `json:"seasonal_strength"`

	FallbackReason       string `json:"fallback_reason,omitempty"`
	SevereOverprediction bool   `json:"severe_overprediction,omitempty"`
}

// Result is the complete output of a forecast call.
type Result struct {
	Predictions []ForecastPoint `json:"predictions"`

	// ModelVersion identifies the forecast provenance: the fitted order
	// tag (e.g. "sarima(1,0,1)(1,0,0)12") or FallbackVersion.
	ModelVersion string `json:"model_version"`

	Accuracy            Metrics     `json:"accuracy_metrics"`
	Trend               Trend       `json:"trend"`
	SeasonalityDetected bool        `json:"seasonality_detected"`
	DataQuality         DataQuality `json:"data_quality"`
	TestVariance        float64     `json:"test_variance"`

	Diagnostics Diagnostics `json:"diagnostics"`
}

// bundle is the internal trainer output before dates are attached.
type bundle struct {
	predictions []float64
	lower       []float64
	upper       []float64

	version        string
	usedFallback   bool
	fallbackReason string
	selection      order.Selection
}
