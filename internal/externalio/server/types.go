package server

import (
	"context"
	"perfoverlay/internal/render"
	"perfoverlay/internal/sink"
)

type httpLogWriter struct {
	ctx context.Context
}

type Jerror struct {
	Msg string `json:"error"`
}

// Read access to retained history
type HistoryReader interface {
	GetHistory(channel string, window sink.Window) (records []sink.Record)
}

// Enabled channels and their renderers
type Catalog interface {
	Channels() (channels []string)
	Renderer(channel string) (renderer *render.Renderer, found bool)
}

// JSON version of a channel summary
type JChannel struct {
	Channel string            `json:"channel"`
	Points  int               `json:"points"`
	Oldest  string            `json:"oldest,omitempty"`
	Newest  string            `json:"newest,omitempty"`
	Latest  map[string]string `json:"latest,omitempty"`
}

// JSON version of a retained record
type JRecord struct {
	Timestamp  string  `json:"timestamp"`
	Value      float64 `json:"value"`
	Label      string  `json:"label"`
	Series     string  `json:"series"`
	Group      string  `json:"group"`
	DeviceID   string  `json:"deviceId"`
	PackageID  string  `json:"packageId"`
	Annotation string  `json:"annotation,omitempty"`
}
