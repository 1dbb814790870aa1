package render

import (
	"testing"

	"pandemica/internal/sim"
)

func TestRenderDrawsAgentsAndLocations(t *testing.T) {
	frame := sim.Frame{
		Width:      200,
		Height:     100,
		FreeWidth:  200,
		FreeHeight: 100,
		Agents: []sim.AgentView{
			{ID: 0, X: 50, Y: 50, State: sim.Infectious, Location: sim.NoLocation},
			{ID: 1, X: 150, Y: 30, State: sim.Recovered, Location: sim.NoLocation},
		},
		Locations: []sim.Location{{X: 100, Y: 60, Size: 30, Kind: sim.CentralLocation}},
	}
	r := &Renderer{Scale: 2, AgentRadius: 5}

	img := r.Render(frame)
	if w, h := img.Bounds().Dx(), img.Bounds().Dy(); w != 400 || h != 200 {
		t.Fatalf("expected 400x200 image, got %dx%d", w, h)
	}
	if got := img.RGBAAt(100, 100); got != StateColor(sim.Infectious) {
		t.Fatalf("expected infectious color at the agent center, got %v", got)
	}
	if got := img.RGBAAt(300, 60); got != StateColor(sim.Recovered) {
		t.Fatalf("expected recovered color at the agent center, got %v", got)
	}
	if got := img.RGBAAt(200, 120); got != Border {
		t.Fatalf("expected location border at its corner, got %v", got)
	}
	if got := img.RGBAAt(5, 190); got != Background {
		t.Fatalf("expected background in an empty area, got %v", got)
	}
}

func TestRenderLabel(t *testing.T) {
	frame := sim.Frame{Width: 300, Height: 40, FreeWidth: 300, FreeHeight: 40, Step: 12}
	r := &Renderer{Scale: 1, AgentRadius: 5, Label: true}

	img := r.Render(frame)
	dark := 0
	for y := 0; y < 16; y++ {
		for x := 0; x < 200; x++ {
			if img.RGBAAt(x, y) == Border {
				dark++
			}
		}
	}
	if dark == 0 {
		t.Fatal("expected label text to be drawn")
	}
}
