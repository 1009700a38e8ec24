package observation

import (
	"errors"

	"gonum.org/v1/gonum/stat"
)

var ErrTooFewDates = errors.New("need at least 2 dates to measure spacing")

const (
	// IrregularGapFactor flags a series as irregular when the widest gap
	// exceeds this multiple of the mean gap.
	IrregularGapFactor = 1.5

	// Aggregation eligibility thresholds. Sparse series whose mean gap or
	// widest gap crosses these are better modeled on monthly buckets.
	EligibleAvgGapDays = 20.0
	EligibleMaxGapDays = 45.0
	EligibleMinCount   = 6
)

// Spacing summarizes the day gaps between consecutive observations of a
// sorted series.
type Spacing struct {
	Count      int     `json:"count"`
	AvgGapDays float64 `json:"avg_gap_days"`
	MaxGapDays float64 `json:"max_gap_days"`
}

// NewSpacing computes gap statistics over the series dates. The series must
// already be sorted, which Series construction guarantees.
func NewSpacing(s *Series) (Spacing, error) {
	if s.Len() < 2 {
		return Spacing{}, ErrTooFewDates
	}

	gaps := make([]float64, 0, s.Len()-1)
	maxGap := 0.0
	for i := 1; i < len(s.Dates); i++ {
		gap := s.Dates[i].Sub(s.Dates[i-1]).Hours() / 24.0
		gaps = append(gaps, gap)
		if gap > maxGap {
			maxGap = gap
		}
	}

	return Spacing{
		Count:      s.Len(),
		AvgGapDays: stat.Mean(gaps, nil),
		MaxGapDays: maxGap,
	}, nil
}

// Irregular reports whether the widest gap dwarfs the typical gap.
func (sp Spacing) Irregular() bool {
	return sp.MaxGapDays > IrregularGapFactor*sp.AvgGapDays
}

// AggregationEligible reports whether the series is sparse enough to be
// worth regularizing onto monthly buckets. Short series are never eligible;
// the parameter selector routes those to the fallback forecaster instead.
func (sp Spacing) AggregationEligible() bool {
	if sp.Count < EligibleMinCount {
		return false
	}
	return sp.AvgGapDays > EligibleAvgGapDays || sp.MaxGapDays > EligibleMaxGapDays
}
