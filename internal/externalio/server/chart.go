package server

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"perfoverlay/internal/global"
	"perfoverlay/internal/logctx"
	"perfoverlay/internal/render"
	"sort"
	"strings"
	"time"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/opts"
)

// Layout area used to derive chart data. Only values and labels are used, not positions.
var chartBounds = render.Rect{Width: 1000, Height: 600}

// Handles chart page requests for one channel
func handleChart(baseCtx context.Context, catalog Catalog, serverResponder http.ResponseWriter, clientRequest *http.Request) {
	channel := channelFromPath(clientRequest.URL.Path, global.ChartPath)
	if channel == "" {
		jResp(baseCtx, serverResponder, http.StatusBadRequest, Jerror{Msg: "channel name required in path"})
		return
	}

	renderer, found := catalog.Renderer(channel)
	if !found {
		jResp(baseCtx, serverResponder, http.StatusNotFound, Jerror{Msg: "unknown channel " + channel})
		return
	}

	page := new(bytes.Buffer)
	err := buildChart(renderer.Layout(chartBounds), renderer).Render(page)
	if err != nil {
		serverResponder.WriteHeader(http.StatusInternalServerError)
		logctx.LogEvent(baseCtx, global.VerbosityStandard, global.ErrorLog, "Failed rendering chart for %s: %v\n", channel, err)
		return
	}

	serverResponder.Header().Set("Content-Type", "text/html; charset=utf-8")
	serverResponder.WriteHeader(http.StatusOK)
	serverResponder.Write(page.Bytes())
}

// Converts renderer geometry into a line chart, one series per geometry series on a shared time axis
func buildChart(geometry render.Geometry, renderer *render.Renderer) (line *charts.Line) {
	var subtitle []string
	for _, entry := range geometry.Legend {
		subtitle = append(subtitle, fmt.Sprintf("%s: %s (avg %s)", entry.Name, entry.Latest, entry.Average))
	}
	if geometry.Empty() {
		subtitle = append(subtitle, "waiting for samples")
	}

	line = charts.NewLine()
	line.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{PageTitle: "perfoverlay " + geometry.Channel}),
		charts.WithTitleOpts(opts.Title{Title: geometry.Channel, Subtitle: strings.Join(subtitle, "  ")}),
		charts.WithTooltipOpts(opts.Tooltip{Show: true, Trigger: "axis"}),
		charts.WithLegendOpts(opts.Legend{Show: true}),
	)
	if geometry.Empty() {
		return
	}
	line.SetGlobalOptions(charts.WithYAxisOpts(opts.YAxis{
		Name: renderer.GetLabelledValue(geometry.YMax, true),
		Min:  geometry.YMin,
		Max:  geometry.YMax,
	}))

	// Union of sample times across series
	index := make(map[int64]int)
	var axis []int64
	for _, series := range geometry.Series {
		for _, sample := range series.Samples {
			key := sample.At.UnixNano()
			if _, seen := index[key]; !seen {
				index[key] = 0
				axis = append(axis, key)
			}
		}
	}
	sort.Slice(axis, func(i, j int) bool { return axis[i] < axis[j] })

	labels := make([]string, len(axis))
	for i, key := range axis {
		index[key] = i
		labels[i] = time.Unix(0, key).Local().Format("15:04:05")
	}
	line.SetXAxis(labels)

	for _, series := range geometry.Series {
		data := make([]opts.LineData, len(axis))
		for i := range data {
			data[i] = opts.LineData{Value: nil}
		}
		for _, sample := range series.Samples {
			data[index[sample.At.UnixNano()]] = opts.LineData{
				Value: sample.Value,
				Name:  renderer.GetLabelledValue(sample.Value, false),
			}
		}
		color := fmt.Sprintf("#%02x%02x%02x", series.Color.R, series.Color.G, series.Color.B)
		line.AddSeries(series.Name, data, charts.WithLineStyleOpts(opts.LineStyle{Color: color}))
	}
	return
}
