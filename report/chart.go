package report

import (
	"fmt"
	"io"
	"math"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/opts"

	"github.com/movetrack/posekit/dataset"
)

// RenderSpeedChart writes an HTML line chart of speed over time for one
// individual, one series per keypoint. NaN samples break the line so
// filtered gaps stay visible.
func RenderSpeedChart(w io.Writer, ds *dataset.Dataset, individual string) error {
	keypoints := ds.Keypoints()
	if len(keypoints) == 0 {
		return fmt.Errorf("dataset has no keypoint labels")
	}

	line := charts.NewLine()
	line.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{
			PageTitle: "Keypoint Speed",
			Width:     "1200px",
			Height:    "600px",
		}),
		charts.WithTitleOpts(opts.Title{
			Title:    "Keypoint speed over time",
			Subtitle: fmt.Sprintf("individual=%s unit=%s", individual, speedUnit(ds)),
		}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true)}),
		charts.WithXAxisOpts(opts.XAxis{Name: "time (" + ds.TimeUnit + ")"}),
		charts.WithYAxisOpts(opts.YAxis{Name: "speed"}),
	)

	var xaxis []string
	for ki, kp := range keypoints {
		times, vals, err := speedSeries(ds, individual, kp)
		if err != nil {
			return err
		}
		if ki == 0 {
			xaxis = make([]string, len(times))
			for i, t := range times {
				xaxis[i] = fmt.Sprintf("%g", t)
			}
			line.SetXAxis(xaxis)
		}
		data := make([]opts.LineData, len(vals))
		for i, v := range vals {
			if math.IsNaN(v) {
				data[i] = opts.LineData{Value: nil}
				continue
			}
			data[i] = opts.LineData{Value: v}
		}
		line.AddSeries(kp, data)
	}
	line.SetSeriesOptions(charts.WithLineChartOpts(opts.LineChart{ConnectNulls: opts.Bool(false)}))

	return line.Render(w)
}

func speedUnit(ds *dataset.Dataset) string {
	if ds.TimeUnit == dataset.TimeUnitSeconds {
		return "px/s"
	}
	return "px/frame"
}
