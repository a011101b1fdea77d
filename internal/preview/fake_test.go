package preview

import (
	"fmt"
	"image"
	"time"

	"shadergrid/internal/gpu"
)

type fakeProgram struct {
	id       int
	released bool
	floats   map[string]float32
	ints     map[string]int32
	vec2     map[string][2]float32
	vec4     map[string][4]float32
	// draws holds a snapshot of the float and vec2 uniforms at every draw
	draws []map[string]any
}

func newFakeProgram(id int) *fakeProgram {
	return &fakeProgram{
		id:     id,
		floats: map[string]float32{},
		ints:   map[string]int32{},
		vec2:   map[string][2]float32{},
		vec4:   map[string][4]float32{},
	}
}

func (p *fakeProgram) SetFloat(name string, v float32)         { p.floats[name] = v }
func (p *fakeProgram) SetInt(name string, v int32)             { p.ints[name] = v }
func (p *fakeProgram) SetVec2(name string, x, y float32)       { p.vec2[name] = [2]float32{x, y} }
func (p *fakeProgram) SetVec4(name string, x, y, z, w float32) { p.vec4[name] = [4]float32{x, y, z, w} }
func (p *fakeProgram) Release()                                { p.released = true }

func (p *fakeProgram) snapshot() map[string]any {
	s := map[string]any{}
	for k, v := range p.floats {
		s[k] = v
	}
	for k, v := range p.vec2 {
		s[k] = v
	}
	for k, v := range p.vec4 {
		s[k] = v
	}
	for k, v := range p.ints {
		s[k] = v
	}
	return s
}

type fakeContext struct {
	name   string
	w, h   int
	ops    []string
	built  []*fakeProgram
	inUse  *fakeProgram
	nextID int
	// fail, when set, is returned by the next BuildProgram call
	fail    error
	sources []string
}

func newFakeContext(name string, w, h int) *fakeContext {
	return &fakeContext{name: name, w: w, h: h}
}

func (c *fakeContext) MakeCurrent()                { c.ops = append(c.ops, "current") }
func (c *fakeContext) FramebufferSize() (int, int) { return c.w, c.h }

func (c *fakeContext) BuildProgram(vertexSrc, fragmentSrc string) (gpu.Program, error) {
	c.sources = append(c.sources, fragmentSrc)
	if c.fail != nil {
		err := c.fail
		c.fail = nil
		return nil, err
	}
	c.nextID++
	p := newFakeProgram(c.nextID)
	c.built = append(c.built, p)
	return p, nil
}

func (c *fakeContext) UseProgram(p gpu.Program) {
	c.inUse = p.(*fakeProgram)
	c.ops = append(c.ops, fmt.Sprintf("use %d", c.inUse.id))
}

func (c *fakeContext) Viewport(r image.Rectangle) { c.ops = append(c.ops, "viewport "+r.String()) }
func (c *fakeContext) Scissor(r image.Rectangle)  { c.ops = append(c.ops, "scissor "+r.String()) }
func (c *fakeContext) DisableScissor()            { c.ops = append(c.ops, "noscissor") }
func (c *fakeContext) Clear(r, g, b, a float32)   { c.ops = append(c.ops, "clear") }

func (c *fakeContext) DrawTriangle() {
	c.ops = append(c.ops, "draw")
	c.inUse.draws = append(c.inUse.draws, c.inUse.snapshot())
}

func (c *fakeContext) ReadPixels(r image.Rectangle) (*image.RGBA, error) {
	return image.NewRGBA(image.Rect(0, 0, r.Dx(), r.Dy())), nil
}

func (c *fakeContext) resetOps() { c.ops = nil }

type fakeScheduler struct {
	starts int
	tick   func()
}

func (s *fakeScheduler) Start(tick func()) {
	s.starts++
	s.tick = tick
}

type fakeClock struct{ t time.Time }

func (c *fakeClock) Now() time.Time           { return c.t }
func (c *fakeClock) Advance(d time.Duration)  { c.t = c.t.Add(d) }
func (c *fakeClock) AdvanceSeconds(s float64) { c.Advance(time.Duration(s * float64(time.Second))) }

type recordingObserver struct {
	frames []Telemetry
	ctxs   []gpu.Context
}

func (o *recordingObserver) FrameRendered(ctx gpu.Context, t Telemetry) {
	o.ctxs = append(o.ctxs, ctx)
	o.frames = append(o.frames, t)
}
