package order

import "github.com/epicastproj/epicast/seasonality"

// Input carries the series facts the decision tree branches on.
type Input struct {
	// Aggregated is true when the series came out of the monthly
	// regularizer and is therefore stationary by construction.
	Aggregated bool
	// Irregular and Eligible come from the spacing analysis.
	Irregular bool
	Eligible  bool

	Category Category

	SeasonalPeriod    int
	SeasonalThreshold float64
}

// Selection is the selector's decision: a method tag, the concrete order,
// and the seasonality test outcome for reporting.
type Selection struct {
	Method      Method
	Order       Order
	Seasonality seasonality.Result
}

// Select walks the decision tree over the working series y. Branches are
// evaluated in priority order: monthly-aggregated, irregular-ineligible,
// irregular-eligible, trending category, then the generic differenced
// default. The issuance category replaces the monthly-aggregated branch
// with one that always attempts a seasonal order at two or more years of
// history.
func Select(y []float64, in Input) Selection {
	n := len(y)
	period := in.SeasonalPeriod
	if period < 1 {
		period = seasonality.DefaultPeriod
	}
	threshold := in.SeasonalThreshold
	if threshold <= 0 {
		threshold = seasonality.DefaultThreshold
	}

	// The seasonality test is informative on aggregated series only, but
	// the outcome is always reported alongside the decision.
	season := seasonality.Detect(y, period, threshold)

	switch {
	case in.Aggregated && in.Category == CategoryIssuance:
		return issuanceMonthly(n, period, season)

	case in.Aggregated:
		// Monthly buckets are stationary by construction: d = D = 0.
		switch {
		case season.Detected && n >= 2*period:
			// No seasonal MA term; it is numerically unstable on short
			// monthly series.
			return Selection{
				Method:      MethodSeasonal,
				Order:       Order{P: 1, Q: 1, SP: 1, Period: period},
				Seasonality: season,
			}
		case n >= 12:
			return Selection{
				Method:      MethodNonSeasonal,
				Order:       Order{P: 1, Q: 1, Period: 1},
				Seasonality: season,
			}
		default:
			return Selection{
				Method:      MethodNonSeasonal,
				Order:       Order{P: 1, Period: 1},
				Seasonality: season,
			}
		}

	case in.Irregular && !in.Eligible:
		// Too short and too gappy to fit anything; the trainer goes
		// straight to the fallback.
		return Selection{
			Method:      MethodFallback,
			Order:       Order{P: 1, Period: 1},
			Seasonality: season,
		}

	case in.Irregular:
		// Irregular but dense enough that monthly aggregation would have
		// been possible; fit conservative non-seasonal orders by length.
		o := Order{P: 1, Period: 1}
		if n >= 24 {
			o.Q = 1
		}
		return Selection{Method: MethodNonSeasonal, Order: o, Seasonality: season}

	case in.Category == CategoryTrending:
		// Monotonic drift: remove trend explicitly with first-order
		// differencing rather than relying on a seasonal component.
		o := Order{P: 1, D: 1, Period: 1}
		if n >= 24 {
			o.Q = 1
		}
		return Selection{Method: MethodTrendDifferenced, Order: o, Seasonality: season}

	default:
		// Regular, non-aggregated raw data still needs trend removal.
		o := Order{P: 1, D: 1, Period: 1}
		if n >= 14 {
			o.Q = 1
		}
		return Selection{Method: MethodTrendDifferenced, Order: o, Seasonality: season}
	}
}

func issuanceMonthly(n, period int, season seasonality.Result) Selection {
	switch {
	case n >= 2*period:
		// Administrative counts at monthly granularity always attempt a
		// seasonal order once two full years are available.
		return Selection{
			Method:      MethodSeasonal,
			Order:       Order{P: 1, Q: 1, SP: 1, Period: period},
			Seasonality: season,
		}
	case n >= 12:
		return Selection{
			Method:      MethodNonSeasonal,
			Order:       Order{P: 1, Q: 1, Period: 1},
			Seasonality: season,
		}
	default:
		return Selection{
			Method:      MethodNonSeasonal,
			Order:       Order{P: 1, Period: 1},
			Seasonality: season,
		}
	}
}
