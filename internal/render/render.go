// Package render rasterizes simulation frames.
package render

import (
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"math"

	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"

	"pandemica/internal/sim"
)

var (
	// Background fills the board.
	Background = color.RGBA{255, 255, 255, 255}
	// Border outlines locations and the free-roam area, and colors labels.
	Border = color.RGBA{0, 0, 0, 255}
)

// StateColor returns the fill color for agents in state s.
func StateColor(s sim.State) color.RGBA {
	switch s {
	case sim.Susceptible:
		return color.RGBA{0, 0, 255, 255}
	case sim.Exposed:
		return color.RGBA{255, 255, 0, 255}
	case sim.Infectious:
		return color.RGBA{255, 0, 0, 255}
	case sim.Recovered:
		return color.RGBA{0, 255, 0, 255}
	default:
		return color.RGBA{0, 0, 0, 255}
	}
}

// Renderer draws frames at a fixed scale.
type Renderer struct {
	// Scale maps board units to pixels.
	Scale float64
	// AgentRadius is the dot radius in board units.
	AgentRadius float64
	// Label prints the step number and state counts in the top-left corner.
	Label bool
}

// New returns a renderer sized for cfg.
func New(cfg sim.Config, scale float64) *Renderer {
	return &Renderer{Scale: scale, AgentRadius: cfg.AgentRadius, Label: true}
}

// Size returns the pixel dimensions of a rendered frame.
func (r *Renderer) Size(f sim.Frame) (int, int) {
	return int(math.Ceil(f.Width * r.Scale)), int(math.Ceil(f.Height * r.Scale))
}

// Render draws f onto a new image.
func (r *Renderer) Render(f sim.Frame) *image.RGBA {
	w, h := r.Size(f)
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	draw.Draw(img, img.Bounds(), image.NewUniform(Background), image.Point{}, draw.Src)

	for _, loc := range f.Locations {
		r.strokeRect(img, loc.X, loc.Y, loc.X+loc.Size, loc.Y+loc.Size)
		if loc.Kind == sim.QuarantineLocation {
			r.strokeRect(img, 0, 0, f.FreeWidth, f.FreeHeight)
		}
	}
	for _, a := range f.Agents {
		r.fillCircle(img, a.X, a.Y, r.AgentRadius, StateColor(a.State))
	}
	if r.Label {
		c := f.Counts
		addLabel(img, 4, 14, fmt.Sprintf("step %d  S=%d E=%d I=%d R=%d D=%d", f.Step,
			c.Get(sim.Susceptible), c.Get(sim.Exposed), c.Get(sim.Infectious),
			c.Get(sim.Recovered), c.Get(sim.Deceased)), Border)
	}
	return img
}

func (r *Renderer) fillCircle(img *image.RGBA, x, y, radius float64, col color.RGBA) {
	cx, cy, rad := x*r.Scale, y*r.Scale, math.Max(radius*r.Scale, 1)
	b := img.Bounds()
	minX, maxX := int(math.Floor(cx-rad)), int(math.Ceil(cx+rad))
	minY, maxY := int(math.Floor(cy-rad)), int(math.Ceil(cy+rad))
	for py := minY; py <= maxY; py++ {
		for px := minX; px <= maxX; px++ {
			if !image.Pt(px, py).In(b) {
				continue
			}
			dx, dy := float64(px)+0.5-cx, float64(py)+0.5-cy
			if dx*dx+dy*dy <= rad*rad {
				img.SetRGBA(px, py, col)
			}
		}
	}
}

// strokeRect draws a two pixel border.
func (r *Renderer) strokeRect(img *image.RGBA, x0, y0, x1, y1 float64) {
	rect := image.Rect(int(x0*r.Scale), int(y0*r.Scale), int(x1*r.Scale), int(y1*r.Scale))
	const width = 2
	edges := []image.Rectangle{
		image.Rect(rect.Min.X, rect.Min.Y, rect.Max.X, rect.Min.Y+width),
		image.Rect(rect.Min.X, rect.Max.Y-width, rect.Max.X, rect.Max.Y),
		image.Rect(rect.Min.X, rect.Min.Y, rect.Min.X+width, rect.Max.Y),
		image.Rect(rect.Max.X-width, rect.Min.Y, rect.Max.X, rect.Max.Y),
	}
	src := image.NewUniform(Border)
	for _, e := range edges {
		draw.Draw(img, e.Intersect(img.Bounds()), src, image.Point{}, draw.Src)
	}
}

// addLabel draws text with its baseline at (x, y).
func addLabel(img *image.RGBA, x, y int, label string, col color.Color) {
	d := &font.Drawer{
		Dst:  img,
		Src:  image.NewUniform(col),
		Face: basicfont.Face7x13,
		Dot:  fixed.P(x, y),
	}
	d.DrawString(label)
}
