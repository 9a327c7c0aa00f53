// End to end tests for the overlay daemon with real sources and surfaces
package integration

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"perfoverlay/internal/externalio/server"
	"perfoverlay/internal/global"
	"perfoverlay/internal/logctx"
	"perfoverlay/internal/overlay"
	"runtime/debug"
	"strings"
	"testing"
	"time"
)

func TestOverlayPipeline(t *testing.T) {
	defer func() {
		if fatalError := recover(); fatalError != nil {
			stack := debug.Stack()
			if !strings.Contains(fmt.Sprintf("%v", fatalError), "test timed out after") {
				t.Fatalf("Error: panic in integration test: %v\n%s\n", fatalError, stack)
			}
		}
	}()

	// Setup logging with in memory
	globalCtx, globalCancel := context.WithCancel(context.Background())
	defer globalCancel()
	globalCtx = logctx.New(globalCtx, "global", global.VerbosityStandard, globalCtx.Done())

	port := freePort(t)
	screen := &lockedBuffer{}

	daemon := overlay.NewDaemon(overlay.Config{
		DeviceID:        "integration",
		PackageID:       "perfoverlay.test",
		Channels:        []string{global.ChannelCPU, global.ChannelMemory, global.ChannelGraphics, global.ChannelOverlay},
		SampleInterval:  50 * time.Millisecond,
		RetentionPeriod: 10 * time.Second,
		SweepInterval:   200 * time.Millisecond,
		TerminalEnabled: true,
		TerminalOutput:  screen,
		TerminalWidth:   100,
		TerminalHeight:  60,
		RefreshInterval: 50 * time.Millisecond,
		ServerEnabled:   true,
		ServerPort:      port,
	})
	err := daemon.Start(globalCtx)
	if err != nil {
		t.Fatalf("failed to start overlay daemon: %v", err)
	}
	defer daemon.Shutdown()

	client := &http.Client{Timeout: time.Second}

	// Every channel eventually has samples through the chart server
	var summaries []server.JChannel
	eventually(t, 5*time.Second, "samples on every channel", func() bool {
		summaries = nil
		status, err := getJSON(client, port, global.ChannelsPath, &summaries)
		if err != nil || status != http.StatusOK || len(summaries) != 4 {
			return false
		}
		for _, summary := range summaries {
			if summary.Points == 0 {
				return false
			}
		}
		return true
	})
	for _, summary := range summaries {
		if summary.Channel == global.ChannelCPU && !strings.HasSuffix(summary.Latest["system"], "%") {
			t.Fatalf("cpu values must be labelled as percentages, got %v", summary.Latest)
		}
		if summary.Channel == global.ChannelMemory && !strings.Contains(summary.Latest["available"], "B") {
			t.Fatalf("memory values must be labelled as byte sizes, got %v", summary.Latest)
		}
	}

	// Raw history keeps stream identity
	var records []server.JRecord
	status, err := getJSON(client, port, global.DataPath+global.ChannelMemory+"?series=process", &records)
	if err != nil || status != http.StatusOK {
		t.Fatalf("memory data request failed: status %d err %v", status, err)
	}
	if len(records) == 0 {
		t.Fatalf("expected process memory records")
	}
	for _, record := range records {
		if record.DeviceID != "integration" || record.PackageID != "perfoverlay.test" {
			t.Fatalf("unexpected record origin %s/%s", record.DeviceID, record.PackageID)
		}
		if record.Value <= 0 {
			t.Fatalf("process resident memory must be positive, got %v", record.Value)
		}
	}

	// Chart page
	resp, err := client.Get(fmt.Sprintf("http://localhost:%d%s%s", port, global.ChartPath, global.ChannelCPU))
	if err != nil {
		t.Fatalf("chart request failed: %v", err)
	}
	page, _ := io.ReadAll(resp.Body)
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK || !strings.Contains(string(page), "echarts") {
		t.Fatalf("unexpected chart response %d", resp.StatusCode)
	}

	// Terminal paints every channel and feeds the graphics counters
	eventually(t, 5*time.Second, "terminal frames", func() bool {
		output := screen.String()
		return strings.Contains(output, "CPU") && strings.Contains(output, "MEMORY") && strings.Contains(output, "GRAPHICS")
	})
	if daemon.Frames == nil {
		t.Fatalf("expected frame counter")
	}

	// Batches published before the stop are rejected, so clear is final
	daemon.StopAll()
	daemon.Clear()
	for _, channel := range daemon.Channels() {
		if daemon.Sink.Len(channel) != 0 {
			t.Fatalf("channel %s not cleared: %d records", channel, daemon.Sink.Len(channel))
		}
	}

	daemon.Shutdown()
	if len(daemon.Streams()) != 0 {
		t.Fatalf("streams still running after shutdown")
	}
	if _, err := client.Get(fmt.Sprintf("http://localhost:%d/", port)); err == nil {
		t.Fatalf("chart server still answering after shutdown")
	}
}
