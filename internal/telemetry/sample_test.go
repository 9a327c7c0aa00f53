package telemetry

import (
	"errors"
	"math"
	"testing"
	"time"
)

func TestNewSample(t *testing.T) {
	base := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name           string
		group          string
		data           []DataPoint
		expectErr      bool
		expectField    string
		expectCaptured time.Time
	}{
		{
			name:           "single point",
			group:          "cpu",
			data:           []DataPoint{{Timestamp: base, Value: 12}},
			expectCaptured: base,
		},
		{
			name:  "capture time is earliest point not first",
			group: "memory",
			data: []DataPoint{
				{Timestamp: base.Add(2 * time.Second), Value: 1},
				{Timestamp: base, Value: 2},
				{Timestamp: base.Add(time.Second), Value: 3},
			},
			expectCaptured: base,
		},
		{
			name:        "empty group",
			group:       "",
			data:        []DataPoint{{Timestamp: base}},
			expectErr:   true,
			expectField: "group",
		},
		{
			name:        "whitespace group",
			group:       " \t",
			data:        []DataPoint{{Timestamp: base}},
			expectErr:   true,
			expectField: "group",
		},
		{
			name:        "no data",
			group:       "cpu",
			data:        nil,
			expectErr:   true,
			expectField: "data",
		},
		{
			name:        "nan value",
			group:       "custom",
			data:        []DataPoint{{Timestamp: base, Value: 1}, {Timestamp: base, Value: math.NaN()}},
			expectErr:   true,
			expectField: "data",
		},
		{
			name:        "positive infinity",
			group:       "custom",
			data:        []DataPoint{{Timestamp: base, Value: math.Inf(1)}},
			expectErr:   true,
			expectField: "data",
		},
		{
			name:        "negative infinity",
			group:       "custom",
			data:        []DataPoint{{Timestamp: base, Value: math.Inf(-1)}},
			expectErr:   true,
			expectField: "data",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sample, err := NewSample(tt.group, tt.data)
			if tt.expectErr {
				var vErr *ValidationError
				if !errors.As(err, &vErr) {
					t.Fatalf("expected validation error, got %v", err)
				}
				if vErr.Field != tt.expectField {
					t.Fatalf("expected field %q, got %q", tt.expectField, vErr.Field)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if !sample.CapturedAt().Equal(tt.expectCaptured) {
				t.Fatalf("expected captured time %v, got %v", tt.expectCaptured, sample.CapturedAt())
			}
			if sample.Group() != tt.group {
				t.Fatalf("expected group %q, got %q", tt.group, sample.Group())
			}
			if sample.Len() != len(tt.data) {
				t.Fatalf("expected %d points, got %d", len(tt.data), sample.Len())
			}
		})
	}
}

func TestSample_Immutable(t *testing.T) {
	now := time.Now().UTC()
	input := []DataPoint{{Timestamp: now, Value: 1, Annotation: "a"}}

	sample, err := NewSample("cpu", input)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	input[0].Value = 99
	out := sample.Data()
	if out[0].Value != 1 {
		t.Fatalf("sample changed after caller mutated construction input")
	}

	out[0].Value = 42
	if sample.Data()[0].Value != 1 {
		t.Fatalf("sample changed after caller mutated returned data")
	}
}

func TestSample_Shift(t *testing.T) {
	now := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	sample, err := NewSample("cpu", []DataPoint{
		{Timestamp: now, Value: 1},
		{Timestamp: now.Add(time.Second), Value: 2},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	shifted := sample.Shift(3 * time.Second)
	if !shifted.CapturedAt().Equal(now.Add(-3 * time.Second)) {
		t.Fatalf("expected shifted capture time, got %v", shifted.CapturedAt())
	}
	data := shifted.Data()
	if !data[1].Timestamp.Equal(now.Add(-2 * time.Second)) {
		t.Fatalf("expected second point shifted, got %v", data[1].Timestamp)
	}
	if !sample.CapturedAt().Equal(now) {
		t.Fatalf("original sample modified by shift")
	}
}

func TestErrorMessages(t *testing.T) {
	tests := []struct {
		err  error
		want string
	}{
		{&ValidationError{Field: "channel", Reason: "must not be empty"}, "invalid channel: must not be empty"},
		{&DuplicateChannelError{Channel: "cpu"}, `factory for channel "cpu" already registered`},
		{&DuplicateStreamError{Channel: "cpu", DeviceID: "d1", PackageID: "p1"},
			`stream on channel "cpu" for device "d1" package "p1" already running`},
	}

	for _, tt := range tests {
		if tt.err.Error() != tt.want {
			t.Fatalf("expected %q, got %q", tt.want, tt.err.Error())
		}
	}
}
