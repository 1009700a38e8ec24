package epicast

import (
	"testing"
	"time"

	json "github.com/goccy/go-json"
	"github.com/pkg/profile"

	"github.com/epicastproj/epicast/observation"
)

var benchResult *Result

func BenchmarkForecast(b *testing.B) {
	defer profile.Start(
		profile.CPUProfile,
		profile.ProfilePath(b.TempDir()),
		profile.Quiet,
	).Stop()

	start := time.Date(2021, 1, 1, 0, 0, 0, 0, time.UTC)
	obs := observation.FromValues(
		observation.GenerateMonthlyDates(start, 48),
		observation.GenerateSeasonalY(48, 50, 20, 12),
	)
	opt := NewDefaultOptions()
	opt.Horizon = 6

	for b.Loop() {
		res, err := Forecast(obs, opt)
		if err != nil {
			b.Fatal(err)
		}
		benchResult = res
	}
}

func BenchmarkForecastFallbackPath(b *testing.B) {
	obs := []observation.Observation{
		{Date: time.Date(2022, 1, 1, 0, 0, 0, 0, time.UTC), Value: 4},
		{Date: time.Date(2022, 1, 8, 0, 0, 0, 0, time.UTC), Value: 5},
		{Date: time.Date(2022, 1, 15, 0, 0, 0, 0, time.UTC), Value: 6},
		{Date: time.Date(2023, 1, 28, 0, 0, 0, 0, time.UTC), Value: 5},
		{Date: time.Date(2023, 2, 4, 0, 0, 0, 0, time.UTC), Value: 4},
	}
	opt := NewDefaultOptions()
	opt.Granularity = GranularityDaily

	for b.Loop() {
		res, err := Forecast(obs, opt)
		if err != nil {
			b.Fatal(err)
		}
		benchResult = res
	}
}

func BenchmarkResultMarshal(b *testing.B) {
	start := time.Date(2021, 1, 1, 0, 0, 0, 0, time.UTC)
	obs := observation.FromValues(
		observation.GenerateMonthlyDates(start, 36),
		observation.GenerateSeasonalY(36, 10, 5, 12),
	)
	res, err := Forecast(obs, nil)
	if err != nil {
		b.Fatal(err)
	}

	var buf []byte
	for b.Loop() {
		buf, err = json.Marshal(res)
		if err != nil {
			b.Fatal(err)
		}
	}
	if len(buf) == 0 {
		b.Fatal("empty marshal output")
	}
}
