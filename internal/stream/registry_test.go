package stream

import (
	"context"
	"errors"
	"perfoverlay/internal/telemetry"
	"reflect"
	"testing"
)

func TestRegistry_Register(t *testing.T) {
	registry := NewRegistry(context.Background())
	out := newChanPublisher(1)

	for _, channel := range []string{"memory", "cpu", "graphics"} {
		factory, _ := newTestFactory(t, channel, valueProbe(channel, 1), out)
		if err := registry.Register(factory); err != nil {
			t.Fatalf("unexpected error registering %q: %v", channel, err)
		}
	}

	duplicate, _ := newTestFactory(t, "cpu", valueProbe("cpu", 1), out)
	err := registry.Register(duplicate)
	var dErr *telemetry.DuplicateChannelError
	if !errors.As(err, &dErr) || dErr.Channel != "cpu" {
		t.Fatalf("expected duplicate channel error, got %v", err)
	}

	want := []string{"cpu", "graphics", "memory"}
	if got := registry.Channels(); !reflect.DeepEqual(got, want) {
		t.Fatalf("expected channels %v, got %v", want, got)
	}
}

func TestRegistry_GetFactoryForChannel(t *testing.T) {
	registry := NewRegistry(context.Background())
	factory, _ := newTestFactory(t, "cpu", valueProbe("cpu", 1), newChanPublisher(1))
	if err := registry.Register(factory); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	tests := []struct {
		name        string
		channel     string
		expectFound bool
		expectErr   bool
	}{
		{"known", "cpu", true, false},
		{"unknown", "disk", false, false},
		{"empty", "", false, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, found, err := registry.GetFactoryForChannel(tt.channel)
			if tt.expectErr {
				var vErr *telemetry.ValidationError
				if !errors.As(err, &vErr) {
					t.Fatalf("expected validation error, got %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if found != tt.expectFound {
				t.Fatalf("expected found=%v, got %v", tt.expectFound, found)
			}
			if !found && got != nil {
				t.Fatalf("expected nil factory when not found")
			}
		})
	}
}

func TestRegistry_Lifecycle(t *testing.T) {
	registry := NewRegistry(context.Background())
	out := newChanPublisher(8)
	for _, channel := range []string{"cpu", "memory"} {
		factory, _ := newTestFactory(t, channel, valueProbe(channel, 1), out)
		if err := registry.Register(factory); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	}

	cpu, err := registry.Start("cpu", "device-1", "pkg", 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	memory, err := registry.Start("memory", "device-1", "pkg", 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err = registry.Start("disk", "device-1", "pkg", 0); err == nil {
		t.Fatalf("expected error starting unknown channel")
	}

	active := registry.ActiveStreams()
	if len(active) != 2 || active[0] != cpu || active[1] != memory {
		t.Fatalf("unexpected active streams: %v", active)
	}

	registry.Stop(cpu)
	registry.Stop(cpu)
	registry.Stop(nil)
	if cpu.IsRunning() {
		t.Fatalf("expected cpu stream stopped")
	}
	if len(registry.ActiveStreams()) != 1 {
		t.Fatalf("expected 1 active stream after stop")
	}

	registry.StopAll()
	registry.StopAll()
	if memory.IsRunning() {
		t.Fatalf("expected memory stream stopped")
	}
	if len(registry.ActiveStreams()) != 0 {
		t.Fatalf("expected no active streams after stop all")
	}
	if len(registry.Channels()) != 2 {
		t.Fatalf("stop all must not remove factories")
	}
}
