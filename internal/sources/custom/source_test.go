package custom

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestSample(t *testing.T) {
	tests := []struct {
		name        string
		values      map[string]float64
		readErr     error
		expectErr   bool
		expectNames []string
	}{
		{"ordered by name", map[string]float64{"queue_depth": 3, "dropped": 1}, nil, false, []string{"dropped", "queue_depth"}},
		{"no values", map[string]float64{}, nil, false, nil},
		{"reader error", nil, errors.New("gone"), true, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			source := New("overlay", func(ctx context.Context) (map[string]float64, error) {
				return tt.values, tt.readErr
			})

			samples, err := source.Sample(context.Background(), time.Now())
			if tt.expectErr {
				if err == nil {
					t.Fatalf("expected error")
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if tt.expectNames == nil {
				if len(samples) != 0 {
					t.Fatalf("expected no samples, got %d", len(samples))
				}
				return
			}

			data := samples[0].Data()
			if samples[0].Group() != "overlay" || len(data) != len(tt.expectNames) {
				t.Fatalf("unexpected sample: %+v", data)
			}
			for i, name := range tt.expectNames {
				if data[i].Annotation != name || data[i].Value != tt.values[name] {
					t.Fatalf("point %d: expected %s=%v, got %+v", i, name, tt.values[name], data[i])
				}
			}
		})
	}
}

func TestNewProbeBuilder_NilReader(t *testing.T) {
	if _, err := NewProbeBuilder("overlay", nil)("d", "p"); err == nil {
		t.Fatalf("expected error for nil reader")
	}
}
