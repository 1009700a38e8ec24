// Package order selects seasonal ARIMA orders for a series using a fixed
// decision tree keyed on series length, aggregation state, detected
// seasonality, and the caller's category hint.
package order

import "fmt"

// Order is a SARIMA order (p,d,q)(P,D,Q) at seasonal period Period.
// Period == 1 means no seasonal component regardless of P/D/Q.
type Order struct {
	P int `json:"p"`
	D int `json:"d"`
	Q int `json:"q"`

	SP     int `json:"seasonal_p"`
	SD     int `json:"seasonal_d"`
	SQ     int `json:"seasonal_q"`
	Period int `json:"period"`
}

// String renders the order in the conventional compact notation used as
// the forecast provenance tag.
func (o Order) String() string {
	if o.Period <= 1 {
		return fmt.Sprintf("arima(%d,%d,%d)", o.P, o.D, o.Q)
	}
	return fmt.Sprintf("sarima(%d,%d,%d)(%d,%d,%d)%d", o.P, o.D, o.Q, o.SP, o.SD, o.SQ, o.Period)
}

// Seasonal reports whether the order carries a seasonal component.
func (o Order) Seasonal() bool {
	return o.Period > 1 && (o.SP > 0 || o.SD > 0 || o.SQ > 0)
}

// Method tags how the trainer should treat the selected order. This
// replaces an implicit magic-value encoding with an explicit choice the
// trainer switches on.
type Method int

const (
	// MethodNonSeasonal fits a plain ARIMA order on stationary data.
	MethodNonSeasonal Method = iota
	// MethodSeasonal fits a SARIMA order with a yearly component.
	MethodSeasonal
	// MethodTrendDifferenced fits with first-order differencing to strip
	// a strong trend instead of relying on a seasonal component.
	MethodTrendDifferenced
	// MethodFallback bypasses model fitting entirely and goes straight
	// to the trend-extrapolation fallback. Chosen for series too short
	// and irregular to fit anything trustworthy.
	MethodFallback
)

func (m Method) String() string {
	switch m {
	case MethodSeasonal:
		return "seasonal"
	case MethodTrendDifferenced:
		return "trend-differenced"
	case MethodFallback:
		return "fallback"
	default:
		return "non-seasonal"
	}
}

// Category hints at the shape of the input series so the selector can pick
// a branch tuned to it.
type Category int

const (
	// CategoryCaseCounts covers disease case series: sparse, bursty,
	// aggregated with empty months omitted.
	CategoryCaseCounts Category = iota
	// CategoryTrending covers series with strong monotonic drift where
	// explicit differencing beats seasonal modeling.
	CategoryTrending
	// CategoryIssuance covers administrative counts (card issuances,
	// appointment volumes): steadier, zero-filled, seasonal at yearly
	// period when long enough.
	CategoryIssuance
)

func (c Category) String() string {
	switch c {
	case CategoryTrending:
		return "trending"
	case CategoryIssuance:
		return "issuance"
	default:
		return "case-counts"
	}
}
