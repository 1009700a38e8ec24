// Package observation holds the raw surveillance input type and helpers to
// turn caller-supplied (date, count) records into a clean, chronologically
// ordered series.
package observation

import (
	"errors"
	"fmt"
	"sort"
	"time"

	"gonum.org/v1/gonum/floats"
)

var (
	ErrNoObservations = errors.New("no observations")
	ErrNegativeValue  = errors.New("observation value is negative")
)

// Observation is a single dated count supplied by the caller. Observations
// may be irregularly spaced and may repeat dates; repeated dates are summed
// when building a Series.
type Observation struct {
	Date  time.Time `json:"date"`
	Value float64   `json:"value"`
}

// Series is a chronologically ordered, duplicate-free view over a set of
// observations. Construction copies the input so the caller's slice is
// never mutated.
type Series struct {
	Dates  []time.Time
	Values []float64
}

// NewSeries sorts the observations, sums values that fall on the same
// calendar day, and returns the resulting series. Negative values are
// rejected since all supported inputs are counts.
func NewSeries(obs []Observation) (*Series, error) {
	if len(obs) == 0 {
		return nil, ErrNoObservations
	}

	sorted := make([]Observation, len(obs))
	copy(sorted, obs)
	for i, o := range sorted {
		if o.Value < 0 {
			return nil, fmt.Errorf("observation %d at %s has value %f, %w", i, o.Date.Format(time.DateOnly), o.Value, ErrNegativeValue)
		}
		sorted[i].Date = dayOf(o.Date)
	}
	sort.Slice(sorted, func(i, j int) bool {
		return sorted[i].Date.Before(sorted[j].Date)
	})

	s := &Series{
		Dates:  make([]time.Time, 0, len(sorted)),
		Values: make([]float64, 0, len(sorted)),
	}
	for _, o := range sorted {
		if n := len(s.Dates); n > 0 && s.Dates[n-1].Equal(o.Date) {
			s.Values[n-1] += o.Value
			continue
		}
		s.Dates = append(s.Dates, o.Date)
		s.Values = append(s.Values, o.Value)
	}
	return s, nil
}

// Len returns the number of distinct dates in the series.
func (s *Series) Len() int {
	if s == nil {
		return 0
	}
	return len(s.Dates)
}

// Max returns the largest observed value or 0 for an empty series.
func (s *Series) Max() float64 {
	if s == nil || len(s.Values) == 0 {
		return 0
	}
	return floats.Max(s.Values)
}

// Copy returns a deep copy of the series.
func (s *Series) Copy() *Series {
	if s == nil {
		return nil
	}
	dates := make([]time.Time, len(s.Dates))
	values := make([]float64, len(s.Values))
	copy(dates, s.Dates)
	copy(values, s.Values)
	return &Series{Dates: dates, Values: values}
}

func dayOf(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
