package server

import (
	"context"
	"net/http"
	"perfoverlay/internal/global"
	"perfoverlay/internal/sink"
	"time"
)

// Handles history snapshot requests for one channel
func handleData(baseCtx context.Context, history HistoryReader, catalog Catalog, serverResponder http.ResponseWriter, clientRequest *http.Request) {
	channel := channelFromPath(clientRequest.URL.Path, global.DataPath)
	if channel == "" {
		jResp(baseCtx, serverResponder, http.StatusBadRequest, Jerror{Msg: "channel name required in path"})
		return
	}

	renderer, found := catalog.Renderer(channel)
	if !found {
		jResp(baseCtx, serverResponder, http.StatusNotFound, Jerror{Msg: "unknown channel " + channel})
		return
	}

	start, end, err := parseTimeWindow(clientRequest, time.Now())
	if err != nil {
		jResp(baseCtx, serverResponder, http.StatusBadRequest, Jerror{Msg: err.Error()})
		return
	}
	reqSeries := clientRequest.FormValue("series")

	records := history.GetHistory(channel, sink.Window{Start: start, End: end})

	results := make([]JRecord, 0, len(records))
	for _, record := range records {
		series := record.Annotation
		if series == "" {
			series = record.Group
		}
		if reqSeries != "" && series != reqSeries {
			continue
		}
		results = append(results, JRecord{
			Timestamp:  record.Timestamp.Format(time.RFC3339Nano),
			Value:      record.Value,
			Label:      renderer.GetLabelledValue(record.Value, false),
			Series:     series,
			Group:      record.Group,
			DeviceID:   record.DeviceID,
			PackageID:  record.PackageID,
			Annotation: record.Annotation,
		})
	}

	jResp(baseCtx, serverResponder, http.StatusOK, results)
}
