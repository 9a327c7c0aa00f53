// HTTP server exposing channel history and charts only on the local system
package server

import (
	"bytes"
	"context"
	"embed"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"perfoverlay/internal/global"
	"perfoverlay/internal/logctx"
	"strconv"
	"strings"
)

// Read in web static files at compile time
//
//go:embed static-files/help.html
var webFiles embed.FS

// Sets up HTTP listener configuration for history and chart queries
func SetupListener(ctx context.Context, port int, history HistoryReader, catalog Catalog) (server *http.Server, err error) {
	requestMultiplexer := http.NewServeMux()

	helpPage, err := webFiles.ReadFile("static-files/help.html")
	if err != nil {
		err = fmt.Errorf("failed reading help html page from internal fs: %v", err)
		return
	}

	// Replace variables in html with globals
	helpPage = bytes.ReplaceAll(helpPage, []byte("@@LISTEN_ADDR@@"), []byte(global.HTTPListenAddr))
	helpPage = bytes.ReplaceAll(helpPage, []byte("@@LISTEN_PORT@@"), []byte(strconv.Itoa(port)))
	helpPage = bytes.ReplaceAll(helpPage, []byte("@@CHANNELS_PATH@@"), []byte(global.ChannelsPath))
	helpPage = bytes.ReplaceAll(helpPage, []byte("@@DATA_PATH@@"), []byte(global.DataPath))
	helpPage = bytes.ReplaceAll(helpPage, []byte("@@CHART_PATH@@"), []byte(global.ChartPath))

	// Root help page
	requestMultiplexer.HandleFunc("/", func(serverResponder http.ResponseWriter, clientRequest *http.Request) {
		if clientRequest.Method != http.MethodGet {
			serverResponder.WriteHeader(http.StatusMethodNotAllowed)
			return
		}
		if clientRequest.URL.Path != "/" {
			serverResponder.WriteHeader(http.StatusNotFound)
			return
		}

		serverResponder.Header().Set("Content-Type", "text/html; charset=utf-8")
		serverResponder.WriteHeader(http.StatusOK)
		serverResponder.Write(helpPage)
	})

	// Channel listing
	requestMultiplexer.HandleFunc(global.ChannelsPath, func(serverResponder http.ResponseWriter, clientRequest *http.Request) {
		if clientRequest.Method != http.MethodGet {
			serverResponder.WriteHeader(http.StatusMethodNotAllowed)
			return
		}
		handleChannels(ctx, history, catalog, serverResponder, clientRequest)
	})

	// History snapshots
	requestMultiplexer.HandleFunc(global.DataPath, func(serverResponder http.ResponseWriter, clientRequest *http.Request) {
		if clientRequest.Method != http.MethodGet {
			serverResponder.WriteHeader(http.StatusMethodNotAllowed)
			return
		}
		handleData(ctx, history, catalog, serverResponder, clientRequest)
	})

	// Rendered charts
	requestMultiplexer.HandleFunc(global.ChartPath, func(serverResponder http.ResponseWriter, clientRequest *http.Request) {
		if clientRequest.Method != http.MethodGet {
			serverResponder.WriteHeader(http.StatusMethodNotAllowed)
			return
		}
		handleChart(ctx, catalog, serverResponder, clientRequest)
	})

	// Server configuration
	server = &http.Server{
		Addr:         global.HTTPListenAddr + ":" + strconv.Itoa(port),
		Handler:      requestMultiplexer,
		ReadTimeout:  global.HTTPReadTimeout,
		WriteTimeout: global.HTTPWriteTimeout,
		IdleTimeout:  global.HTTPIdleTimeout,
		ErrorLog:     log.New(httpLogWriter{ctx: ctx}, "", 0),
	}
	return
}

// Starts the HTTP server and waits for requests
func Start(ctx context.Context, server *http.Server) {
	logctx.LogEvent(ctx, global.VerbosityStandard, global.InfoLog, "Chart server starting on %s (http://%s/)\n",
		server.Addr,
		server.Addr,
	)
	err := server.ListenAndServe()
	if err != nil && err != http.ErrServerClosed {
		logctx.LogEvent(ctx, global.VerbosityStandard, global.ErrorLog, "Chart server failed to start: %v\n", err)
	}
}

// Encodes JSON and sends as response body
func jResp(ctx context.Context, serverResponder http.ResponseWriter, status int, content any) {
	buf := new(bytes.Buffer)
	if err := json.NewEncoder(buf).Encode(content); err != nil {
		serverResponder.WriteHeader(http.StatusInternalServerError)
		logctx.LogEvent(ctx, global.VerbosityStandard, global.ErrorLog, "Failed marshaling results: %v\n", err)
		return
	}
	serverResponder.Header().Set("Content-Type", "application/json")
	serverResponder.WriteHeader(status)
	serverResponder.Write(buf.Bytes())
}

// Logs HTTP server errors to internal program buffer (via context logger)
func (logWriter httpLogWriter) Write(p []byte) (n int, err error) {
	n = len(p)
	if n == 0 {
		return
	}
	logctx.LogEvent(
		logWriter.ctx,
		global.VerbosityStandard,
		global.ErrorLog,
		"%s\n", strings.TrimSpace(string(p)),
	)
	return
}
