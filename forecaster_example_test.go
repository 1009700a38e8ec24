package epicast_test

import (
	"fmt"
	"time"

	"github.com/epicastproj/epicast"
	"github.com/epicastproj/epicast/observation"
)

func Example() {
	start := time.Date(2021, 1, 1, 0, 0, 0, 0, time.UTC)
	dates := observation.GenerateMonthlyDates(start, 36)
	y := observation.GenerateSeasonalY(36, 10, 5, 12)

	res, err := epicast.Forecast(observation.FromValues(dates, y), nil)
	if err != nil {
		panic(err)
	}

	fmt.Println(len(res.Predictions), res.SeasonalityDetected, res.DataQuality)
	// Output: 3 true high
}
