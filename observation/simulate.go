package observation

import (
	"math"
	"math/rand/v2"
	"time"
)

// GenerateDates produces n dates starting at start, spaced by interval days.
func GenerateDates(start time.Time, n, intervalDays int) []time.Time {
	dates := make([]time.Time, 0, n)
	for i := 0; i < n; i++ {
		dates = append(dates, start.AddDate(0, 0, i*intervalDays))
	}
	return dates
}

// GenerateMonthlyDates produces n first-of-month dates starting at start's month.
func GenerateMonthlyDates(start time.Time, n int) []time.Time {
	first := time.Date(start.Year(), start.Month(), 1, 0, 0, 0, 0, time.UTC)
	dates := make([]time.Time, 0, n)
	for i := 0; i < n; i++ {
		dates = append(dates, first.AddDate(0, i, 0))
	}
	return dates
}

// GenerateSeasonalY builds base + amp*sin(2*pi*t/period) values.
func GenerateSeasonalY(n int, base, amp float64, period int) []float64 {
	y := make([]float64, 0, n)
	for i := 0; i < n; i++ {
		y = append(y, base+amp*math.Sin(2.0*math.Pi*float64(i)/float64(period)))
	}
	return y
}

// GenerateTrendY builds base + slope*t values.
func GenerateTrendY(n int, base, slope float64) []float64 {
	y := make([]float64, 0, n)
	for i := 0; i < n; i++ {
		y = append(y, base+slope*float64(i))
	}
	return y
}

// GenerateNoiseY builds uniform random values in [base, base+spread).
func GenerateNoiseY(n int, base, spread float64) []float64 {
	y := make([]float64, 0, n)
	for i := 0; i < n; i++ {
		y = append(y, base+rand.Float64()*spread)
	}
	return y
}

// FromValues zips dates and values into observations. Panics on length
// mismatch since it is a test helper.
func FromValues(dates []time.Time, values []float64) []Observation {
	if len(dates) != len(values) {
		panic("dates and values must have the same length")
	}
	obs := make([]Observation, 0, len(dates))
	for i := range dates {
		obs = append(obs, Observation{Date: dates[i], Value: values[i]})
	}
	return obs
}
