package server

import (
	"context"
	"net/http"
	"perfoverlay/internal/sink"
	"time"
)

// Handles channel listing requests
func handleChannels(baseCtx context.Context, history HistoryReader, catalog Catalog, serverResponder http.ResponseWriter, clientRequest *http.Request) {
	results := []JChannel{}

	for _, channel := range catalog.Channels() {
		summary := JChannel{Channel: channel}

		records := history.GetHistory(channel, sink.Window{})
		summary.Points = len(records)
		if len(records) > 0 {
			summary.Oldest = records[0].Timestamp.Format(time.RFC3339Nano)
			summary.Newest = records[len(records)-1].Timestamp.Format(time.RFC3339Nano)
		}

		renderer, found := catalog.Renderer(channel)
		if found && len(records) > 0 {
			summary.Latest = make(map[string]string)
			for _, record := range records {
				series := record.Annotation
				if series == "" {
					series = record.Group
				}
				// Ascending order, last write wins
				summary.Latest[series] = renderer.GetLabelledValue(record.Value, false)
			}
		}

		results = append(results, summary)
	}

	jResp(baseCtx, serverResponder, http.StatusOK, results)
}
