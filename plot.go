package epicast

import (
	"io"
	"os"
	"time"

	"github.com/epicastproj/epicast/observation"
	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/components"
	"github.com/go-echarts/go-echarts/v2/opts"
)

// LineForecast generates an echart line chart plotting the historical
// series followed by the forecast with its confidence band.
func LineForecast(history *observation.Series, res *Result) *charts.Line {
	line := charts.NewLine()
	line.SetGlobalOptions(
		charts.WithTitleOpts(
			opts.Title{
				Title: "Forecast",
			},
		),
	)

	n := history.Len() + len(res.Predictions)
	x := make([]time.Time, 0, n)
	actual := make([]opts.LineData, 0, n)
	forecast := make([]opts.LineData, 0, n)
	upper := make([]opts.LineData, 0, n)
	lower := make([]opts.LineData, 0, n)

	for i := 0; i < history.Len(); i++ {
		x = append(x, history.Dates[i])
		actual = append(actual, opts.LineData{Value: history.Values[i]})
		forecast = append(forecast, opts.LineData{Value: nil})
		upper = append(upper, opts.LineData{Value: nil})
		lower = append(lower, opts.LineData{Value: nil})
	}
	for _, p := range res.Predictions {
		x = append(x, p.Date)
		actual = append(actual, opts.LineData{Value: nil})
		forecast = append(forecast, opts.LineData{Value: p.Predicted})
		upper = append(upper, opts.LineData{Value: p.Upper})
		lower = append(lower, opts.LineData{Value: p.Lower})
	}

	line.SetXAxis(x).
		AddSeries("Actual", actual).
		AddSeries("Forecast", forecast).
		AddSeries("Upper", upper).
		AddSeries("Lower", lower)
	return line
}

// PlotForecast renders the forecast chart to an html file at path.
func PlotForecast(history *observation.Series, res *Result, path string) error {
	page := components.NewPage()
	page.AddCharts(LineForecast(history, res))

	file, err := os.Create(path)
	if err != nil {
		return err
	}
	defer file.Close()
	return page.Render(io.MultiWriter(file))
}
