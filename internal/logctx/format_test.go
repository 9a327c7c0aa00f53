package logctx

import (
	"fmt"
	"testing"
	"time"
)

func TestEventFormat(t *testing.T) {
	ts := time.Date(2026, 1, 31, 12, 34, 56, 123456789, time.UTC)
	tests := []struct {
		name   string
		event  Event
		expect string
	}{
		{
			name:   "all fields",
			event:  Event{Timestamp: ts, Severity: "Info", Tags: []string{"Overlay", "Sink"}, Message: "hello world"},
			expect: fmt.Sprintf("[%s] [Overlay/Sink] [Info] hello world", padTimestamp(ts)),
		},
		{
			name:   "no tags",
			event:  Event{Timestamp: ts, Severity: "Warn", Message: "something happened"},
			expect: fmt.Sprintf("[%s] [Warn] something happened", padTimestamp(ts)),
		},
		{
			name:   "no severity",
			event:  Event{Timestamp: ts, Tags: []string{"tag"}, Message: "just a message"},
			expect: fmt.Sprintf("[%s] [tag] just a message", padTimestamp(ts)),
		},
		{
			name:   "only message",
			event:  Event{Message: "bare message"},
			expect: "bare message",
		},
		{
			name:   "empty event",
			event:  Event{},
			expect: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tt.event.Format()
			if got != tt.expect {
				t.Errorf("\ngot  %q\nwant %q", got, tt.expect)
			}
		})
	}
}

func TestPadTimestamp(t *testing.T) {
	tests := []struct {
		name     string
		input    time.Time
		expected string
	}{
		{"short nanoseconds", time.Date(2026, 1, 31, 12, 34, 56, 4832, time.UTC), "2026-01-31T12:34:56.000004832Z"},
		{"zero nanoseconds", time.Date(2026, 1, 31, 12, 34, 56, 0, time.UTC), "2026-01-31T12:34:56.000000000Z"},
		{"positive offset", time.Date(2026, 1, 31, 12, 34, 56, 987654321, time.FixedZone("UTC+2", 2*3600)), "2026-01-31T12:34:56.987654321+02:00"},
		{"negative offset", time.Date(2026, 1, 31, 12, 34, 56, 765, time.FixedZone("UTC-8", -8*3600)), "2026-01-31T12:34:56.000000765-08:00"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := padTimestamp(tt.input)
			if got != tt.expected {
				t.Fatalf("got %q want %q", got, tt.expected)
			}
		})
	}
}
