// Package preview owns the application state and drives rendering of the
// single and grid views, one tick per animation frame.
package preview

import (
	"fmt"
	"image"
	"log"
	"strings"
	"time"

	"shadergrid/internal/gpu"
	"shadergrid/internal/grid"
	"shadergrid/internal/params"
	"shadergrid/internal/synth"
)

// Phase is the driver lifecycle. There is no way back to Idle.
type Phase int

const (
	Idle Phase = iota
	Running
)

func (p Phase) String() string {
	if p == Running {
		return "running"
	}
	return "idle"
}

// Scheduler calls tick once per frame, never overlapping, until teardown.
type Scheduler interface {
	Start(tick func())
}

// FrameObserver sees each rendered frame before it is presented. It must not
// change state the driver reads.
type FrameObserver interface {
	FrameRendered(ctx gpu.Context, t Telemetry)
}

// Telemetry is the per-frame summary shown to the user.
type Telemetry struct {
	FPS     int
	Elapsed float64
	Frame   int
	Mode    string
}

// BuildError combines the failures of the two compilation targets. At least
// one of Single and Grid is set; each is a *gpu.CompileError or *gpu.LinkError.
type BuildError struct {
	Single error
	Grid   error
}

func (e *BuildError) Error() string {
	var b strings.Builder
	b.WriteString("shader compile error:")
	if e.Single != nil {
		fmt.Fprintf(&b, "\n[single] %v", e.Single)
	}
	if e.Grid != nil {
		fmt.Fprintf(&b, "\n[grid] %v", e.Grid)
	}
	return b.String()
}

func (e *BuildError) Unwrap() []error {
	var errs []error
	if e.Single != nil {
		errs = append(errs, e.Single)
	}
	if e.Grid != nil {
		errs = append(errs, e.Grid)
	}
	return errs
}

// Option configures a Driver.
type Option func(*Driver)

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(d *Driver) { d.now = now }
}

// WithObserver registers a frame observer.
func WithObserver(o FrameObserver) Option {
	return func(d *Driver) { d.observers = append(d.observers, o) }
}

// WithDebug logs synthesized sources when a build fails.
func WithDebug(on bool) Option {
	return func(d *Driver) { d.debug = on }
}

// Driver compiles programs for both contexts and renders the active one.
type Driver struct {
	state     *State
	single    gpu.Context
	grid      gpu.Context
	scheduler Scheduler
	now       func() time.Time

	phase      Phase
	singleProg gpu.Program
	gridProg   gpu.Program

	start     time.Time
	frame     int
	fpsFrames int
	fpsSince  time.Time
	fps       int

	observers []FrameObserver
	debug     bool
}

// NewDriver returns an Idle driver.
func NewDriver(state *State, single, grid gpu.Context, scheduler Scheduler, opts ...Option) *Driver {
	d := &Driver{
		state:     state,
		single:    single,
		grid:      grid,
		scheduler: scheduler,
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(d)
	}
	d.start = d.now()
	d.fpsSince = d.start
	return d
}

// State returns the state the driver renders.
func (d *Driver) State() *State { return d.state }

// Phase returns the lifecycle phase.
func (d *Driver) Phase() Phase { return d.phase }

// CompileAndRun parses source, builds a program for each context and, only
// if both succeed, swaps them in together with the new parameter table. On
// failure the running programs and table are left untouched and a
// *BuildError is returned. The first success starts the scheduler.
func (d *Driver) CompileAndRun(source string) error {
	table := params.Parse(source)

	singleSrc := synth.Fragment(source, table, synth.Single)
	gridSrc := synth.Fragment(source, table, synth.Grid)

	singleProg, singleErr := build(d.single, singleSrc)
	gridProg, gridErr := build(d.grid, gridSrc)

	if singleErr != nil || gridErr != nil {
		if singleProg != nil {
			d.single.MakeCurrent()
			singleProg.Release()
		}
		if gridProg != nil {
			d.grid.MakeCurrent()
			gridProg.Release()
		}
		if d.debug {
			log.Printf("single-view fragment source:\n%s", singleSrc)
			log.Printf("grid-view fragment source:\n%s", gridSrc)
		}
		return &BuildError{Single: singleErr, Grid: gridErr}
	}

	if d.singleProg != nil {
		d.single.MakeCurrent()
		d.singleProg.Release()
	}
	if d.gridProg != nil {
		d.grid.MakeCurrent()
		d.gridProg.Release()
	}
	d.singleProg = singleProg
	d.gridProg = gridProg
	d.state.replaceParams(table)

	if d.phase == Idle {
		d.phase = Running
		d.scheduler.Start(d.Tick)
	}
	return nil
}

func build(ctx gpu.Context, fragmentSrc string) (gpu.Program, error) {
	ctx.MakeCurrent()
	return ctx.BuildProgram(synth.VertexSource, fragmentSrc)
}

// Reset rewinds the logical start to now and zeroes the frame counter.
func (d *Driver) Reset() {
	d.start = d.now()
	d.frame = 0
}

// Seek moves the logical start so that elapsed time reads t seconds.
func (d *Driver) Seek(t float64) {
	d.start = d.now().Add(-time.Duration(t * float64(time.Second)))
}

// Elapsed returns seconds since the logical start.
func (d *Driver) Elapsed() float64 {
	return d.now().Sub(d.start).Seconds()
}

// ActiveContext is the context the next tick draws into.
func (d *Driver) ActiveContext() gpu.Context {
	if d.state.Mode == ModeGrid && d.gridProg != nil {
		return d.grid
	}
	return d.single
}

// Telemetry returns the latest frame summary.
func (d *Driver) Telemetry() Telemetry {
	return Telemetry{
		FPS:     d.fps,
		Elapsed: d.Elapsed(),
		Frame:   d.frame,
		Mode:    d.state.ModeLabel(),
	}
}

// Tick renders one frame. It is the callback handed to the Scheduler.
func (d *Driver) Tick() {
	now := d.now()
	elapsed := now.Sub(d.start).Seconds()

	var ctx gpu.Context
	switch {
	case d.state.Mode == ModeGrid && d.gridProg != nil:
		ctx = d.grid
		d.renderGrid(elapsed)
	case d.singleProg != nil:
		ctx = d.single
		d.renderSingle(elapsed)
	}

	d.frame++
	d.fpsFrames++
	if now.Sub(d.fpsSince) >= time.Second {
		d.fps = d.fpsFrames
		d.fpsFrames = 0
		d.fpsSince = now
	}

	if ctx == nil {
		return
	}
	t := Telemetry{FPS: d.fps, Elapsed: elapsed, Frame: d.frame, Mode: d.state.ModeLabel()}
	for _, o := range d.observers {
		o.FrameRendered(ctx, t)
	}
}

func (d *Driver) renderSingle(elapsed float64) {
	ctx, p := d.single, d.singleProg
	ctx.MakeCurrent()
	w, h := ctx.FramebufferSize()
	ctx.Viewport(image.Rect(0, 0, w, h))
	ctx.UseProgram(p)

	m := d.state.Mouse
	down := float32(0)
	if m.Down {
		down = 1
	}
	p.SetVec2(synth.UniformResolution, float32(w), float32(h))
	p.SetFloat(synth.UniformTime, float32(elapsed))
	p.SetVec4(synth.UniformMouse, float32(m.X), float32(m.Y), down, 0)
	p.SetInt(synth.UniformFrame, int32(d.frame))
	for _, spec := range d.state.Params.All() {
		p.SetFloat(spec.Name, float32(spec.Value))
	}
	ctx.DrawTriangle()
}

func (d *Driver) renderGrid(elapsed float64) {
	ctx, p := d.grid, d.gridProg
	s := d.state
	ctx.MakeCurrent()
	w, h := ctx.FramebufferSize()
	full := image.Rect(0, 0, w, h)

	ctx.UseProgram(p)
	ctx.DisableScissor()
	ctx.Viewport(full)
	ctx.Clear(0, 0, 0, 1)

	specs := s.Params.All()
	for _, cell := range grid.Layout(w, h, s.Grid) {
		r := cell.Rect
		ctx.Viewport(r)
		ctx.Scissor(r)

		p.SetVec2(synth.UniformResolution, float32(r.Dx()), float32(r.Dy()))
		p.SetFloat(synth.UniformTime, float32(s.Timing.CellTime(elapsed, s.Offsets.At(cell.Index))))
		p.SetVec4(synth.UniformMouse, 0, 0, 0, 0)
		p.SetInt(synth.UniformFrame, int32(d.frame))
		p.SetVec2(synth.UniformOffset, float32(r.Min.X), float32(r.Min.Y))
		for _, spec := range specs {
			p.SetFloat(spec.Name, float32(s.Variations.Resolve(spec, cell.Index)))
		}
		ctx.DrawTriangle()
	}

	ctx.DisableScissor()
	ctx.Viewport(full)
}
