package wire

import (
	"context"
	"errors"
	"math"
	"testing"

	"google.golang.org/protobuf/encoding/protowire"

	"pandemica/internal/sim"
)

func TestFrameSurvivesEncoding(t *testing.T) {
	cfg := sim.DefaultConfig()
	cfg.Population = 60
	cfg.Seed = 8
	s, err := sim.New(cfg)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := s.RunFor(context.Background(), 25); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	frame := s.Frame()

	msg, err := Unmarshal(MarshalFrame(frame), sim.ControlSettings{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if msg.Frame == nil || msg.Control != nil {
		t.Fatalf("expected a frame message, got %+v", msg)
	}
	got := *msg.Frame
	if got.Step != 25 || got.Width != frame.Width || got.FreeHeight != frame.FreeHeight {
		t.Fatalf("expected header %d/%v/%v, got %d/%v/%v", frame.Step, frame.Width, frame.FreeHeight, got.Step, got.Width, got.FreeHeight)
	}
	if got.Counts != frame.Counts {
		t.Fatalf("expected counts %v, got %v", frame.Counts, got.Counts)
	}
	if len(got.Agents) != len(frame.Agents) || len(got.Locations) != len(frame.Locations) {
		t.Fatalf("expected %d agents and %d locations, got %d and %d",
			len(frame.Agents), len(frame.Locations), len(got.Agents), len(got.Locations))
	}
	for i := range frame.Agents {
		want, have := frame.Agents[i], got.Agents[i]
		// TimeInState is not part of the wire frame.
		want.TimeInState = 0
		if want != have {
			t.Fatalf("agent %d: expected %+v, got %+v", i, want, have)
		}
	}
	for i := range frame.Locations {
		if frame.Locations[i] != got.Locations[i] {
			t.Fatalf("location %d: expected %+v, got %+v", i, frame.Locations[i], got.Locations[i])
		}
	}
}

func TestControlPartialUpdateKeepsBase(t *testing.T) {
	// A client that only knows about the transmission modifier.
	body := protowire.AppendTag(nil, 1, protowire.Fixed64Type)
	body = protowire.AppendFixed64(body, math.Float64bits(0.3))
	payload := protowire.AppendTag(nil, messageControl, protowire.BytesType)
	payload = protowire.AppendBytes(payload, body)

	base := sim.ControlSettings{TransmissionModifier: 1, SpeedModifier: 0.8, Paused: true}
	msg, err := Unmarshal(payload, base)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if msg.Control == nil {
		t.Fatal("expected a control message")
	}
	expected := sim.ControlSettings{TransmissionModifier: 0.3, SpeedModifier: 0.8, Paused: true}
	if *msg.Control != expected {
		t.Fatalf("expected %+v, got %+v", expected, *msg.Control)
	}
}

func TestControlFullEncoding(t *testing.T) {
	settings := sim.ControlSettings{TransmissionModifier: 0.5, SpeedModifier: 0.1, LockdownEnabled: true}
	msg, err := Unmarshal(MarshalControl(settings), sim.ControlSettings{Paused: true})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if *msg.Control != settings {
		t.Fatalf("expected %+v, got %+v", settings, *msg.Control)
	}
}

func TestUnmarshalRejectsGarbage(t *testing.T) {
	if _, err := Unmarshal([]byte{0x0a, 0x05, 0x01}, sim.ControlSettings{}); err == nil {
		t.Fatal("expected a truncated message to fail")
	}
	if _, err := Unmarshal(nil, sim.ControlSettings{}); !errors.Is(err, ErrEmptyMessage) {
		t.Fatalf("expected ErrEmptyMessage, got %v", err)
	}
}
