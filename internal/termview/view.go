// Package termview draws a running simulation in a terminal.
package termview

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/gdamore/tcell/v2"

	"pandemica/internal/sim"
)

// speedStep is how much one + or - keypress changes the speed modifier.
const speedStep = 0.1

var stateStyles = [...]tcell.Style{
	sim.Susceptible: tcell.StyleDefault.Foreground(tcell.ColorBlue),
	sim.Exposed:     tcell.StyleDefault.Foreground(tcell.ColorYellow),
	sim.Infectious:  tcell.StyleDefault.Foreground(tcell.ColorRed),
	sim.Recovered:   tcell.StyleDefault.Foreground(tcell.ColorGreen),
	sim.Deceased:    tcell.StyleDefault.Foreground(tcell.ColorGray),
}

var borderStyle = tcell.StyleDefault.Foreground(tcell.ColorWhite)

// View renders frames onto a tcell screen and maps keys to controls.
type View struct {
	screen tcell.Screen
	sim    *sim.Simulation
}

// New returns a view drawing s onto screen. The caller owns the screen and
// must Init and Fini it.
func New(screen tcell.Screen, s *sim.Simulation) *View {
	return &View{screen: screen, sim: s}
}

// StateRune is the glyph drawn for an agent in state s.
func StateRune(s sim.State) rune {
	if s == sim.Deceased {
		return 'x'
	}
	return '●'
}

// Cell maps a board position to a screen cell. The bottom row is reserved
// for the status line.
func (v *View) Cell(f sim.Frame, x, y float64) (int, int) {
	w, h := v.screen.Size()
	return scale(x, f.Width, w), scale(y, f.Height, h-1)
}

func scale(v, extent float64, cells int) int {
	if cells <= 0 || extent <= 0 {
		return 0
	}
	c := int(math.Floor(v / extent * float64(cells)))
	return max(0, min(c, cells-1))
}

// Draw renders f and the status line.
func (v *View) Draw(f sim.Frame) {
	v.screen.Clear()
	for _, loc := range f.Locations {
		v.drawBox(f, loc.X, loc.Y, loc.X+loc.Size, loc.Y+loc.Size)
		if loc.Kind == sim.QuarantineLocation {
			v.drawBox(f, 0, 0, f.FreeWidth, f.FreeHeight)
		}
	}
	for _, a := range f.Agents {
		cx, cy := v.Cell(f, a.X, a.Y)
		v.screen.SetContent(cx, cy, StateRune(a.State), nil, stateStyles[a.State])
	}
	v.drawStatus(f)
	v.screen.Show()
}

func (v *View) drawBox(f sim.Frame, x0, y0, x1, y1 float64) {
	left, top := v.Cell(f, x0, y0)
	right, bottom := v.Cell(f, x1, y1)
	for x := left; x <= right; x++ {
		v.screen.SetContent(x, top, '─', nil, borderStyle)
		v.screen.SetContent(x, bottom, '─', nil, borderStyle)
	}
	for y := top; y <= bottom; y++ {
		v.screen.SetContent(left, y, '│', nil, borderStyle)
		v.screen.SetContent(right, y, '│', nil, borderStyle)
	}
}

func (v *View) drawStatus(f sim.Frame) {
	c := f.Counts
	controls := v.sim.ControlSettings()
	status := fmt.Sprintf(" step %d  S=%d E=%d I=%d R=%d D=%d  speed %.1f",
		f.Step, c.Get(sim.Susceptible), c.Get(sim.Exposed), c.Get(sim.Infectious),
		c.Get(sim.Recovered), c.Get(sim.Deceased), controls.SpeedModifier)
	if controls.LockdownEnabled {
		status += "  lockdown"
	}
	if controls.Paused {
		status += "  paused"
	}
	w, h := v.screen.Size()
	style := tcell.StyleDefault.Reverse(true)
	x := 0
	for _, r := range status {
		if x >= w {
			break
		}
		v.screen.SetContent(x, h-1, r, nil, style)
		x++
	}
	for ; x < w; x++ {
		v.screen.SetContent(x, h-1, ' ', nil, style)
	}
}

// HandleEvent applies a terminal event. It returns false when the viewer
// should quit.
func (v *View) HandleEvent(ev tcell.Event) bool {
	switch ev := ev.(type) {
	case *tcell.EventKey:
		switch ev.Key() {
		case tcell.KeyEscape, tcell.KeyCtrlC:
			return false
		case tcell.KeyRune:
			switch ev.Rune() {
			case 'q':
				return false
			case ' ':
				v.sim.SetPaused(!v.sim.Paused())
			case '+', '=':
				v.sim.SetSpeedModifier(v.sim.SpeedModifier() + speedStep)
			case '-':
				v.sim.SetSpeedModifier(v.sim.SpeedModifier() - speedStep)
			case 'l':
				v.sim.SetLockdown(!v.sim.LockdownEnabled())
			}
		}
		v.Draw(v.sim.Frame())
	case *tcell.EventResize:
		v.screen.Sync()
		v.Draw(v.sim.Frame())
	}
	return true
}

// Run steps the simulation every interval and redraws until ctx is done or
// the user quits.
func (v *View) Run(ctx context.Context, interval time.Duration) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	frames := make(chan sim.Frame, 1)
	go v.sim.Run(ctx, interval, func(f sim.Frame) {
		// Keep only the newest frame.
		select {
		case <-frames:
		default:
		}
		frames <- f
	})

	events := make(chan tcell.Event, 100)
	go func() {
		for {
			ev := v.screen.PollEvent()
			if ev == nil {
				return
			}
			select {
			case events <- ev:
			case <-ctx.Done():
				return
			}
		}
	}()

	v.Draw(v.sim.Frame())
	for {
		select {
		case <-ctx.Done():
			return
		case ev := <-events:
			if !v.HandleEvent(ev) {
				return
			}
		case f := <-frames:
			v.Draw(f)
		}
	}
}
