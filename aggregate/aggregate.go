// Package aggregate regularizes irregular observations onto uniform
// calendar-month buckets. Surveillance records rarely arrive on a clean
// grid; the forecasting model needs one.
package aggregate

import (
	"errors"
	"time"

	"github.com/epicastproj/epicast/observation"
)

var ErrNoBuckets = errors.New("no buckets produced from observations")

// FillPolicy controls what happens to months that received no observations.
type FillPolicy int

const (
	// OmitEmpty drops months with no contributing observations. Used for
	// sparse or bursty case counts so the model is not taught a false
	// "usually zero" pattern.
	OmitEmpty FillPolicy = iota
	// ZeroFill keeps every month in range, with value 0 where nothing was
	// observed. Used for steadier administrative counts.
	ZeroFill
)

func (p FillPolicy) String() string {
	switch p {
	case ZeroFill:
		return "zero-fill"
	default:
		return "omit-empty"
	}
}

// Bucket is one calendar month of aggregated observations. Period is the
// first day of the month.
type Bucket struct {
	Period time.Time `json:"period"`
	Value  float64   `json:"value"`
}

// Monthly sums observation values per calendar month over the inclusive
// month range of the input. Output periods are strictly increasing by one
// month with no duplicates; under OmitEmpty, months with no contributing
// observations are absent.
func Monthly(obs []observation.Observation, policy FillPolicy) ([]Bucket, error) {
	series, err := observation.NewSeries(obs)
	if err != nil {
		return nil, err
	}
	return MonthlySeries(series, policy)
}

// MonthlySeries is Monthly over an already constructed series.
func MonthlySeries(series *observation.Series, policy FillPolicy) ([]Bucket, error) {
	if series.Len() == 0 {
		return nil, ErrNoBuckets
	}

	sums := make(map[time.Time]float64, series.Len())
	for i, d := range series.Dates {
		sums[monthOf(d)] += series.Values[i]
	}

	first := monthOf(series.Dates[0])
	last := monthOf(series.Dates[len(series.Dates)-1])

	var buckets []Bucket
	for m := first; !m.After(last); m = m.AddDate(0, 1, 0) {
		val, observed := sums[m]
		if !observed && policy == OmitEmpty {
			continue
		}
		buckets = append(buckets, Bucket{Period: m, Value: val})
	}
	if len(buckets) == 0 {
		return nil, ErrNoBuckets
	}
	return buckets, nil
}

// Split returns the bucket periods and values as parallel slices.
func Split(buckets []Bucket) ([]time.Time, []float64) {
	periods := make([]time.Time, 0, len(buckets))
	values := make([]float64, 0, len(buckets))
	for _, b := range buckets {
		periods = append(periods, b.Period)
		values = append(values, b.Value)
	}
	return periods, values
}

func monthOf(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, time.UTC)
}
