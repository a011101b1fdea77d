package preview

import (
	"errors"
	"image"
	"math/rand/v2"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"shadergrid/internal/gpu"
	"shadergrid/internal/grid"
	"shadergrid/internal/looptime"
)

const shaderSource = `#pragma param freq 0.1 10.0 2.0 0.5
void mainImage(out vec4 c, in vec2 p) {
    c = vec4(sin(p.x * freq + iTime));
}`

type harness struct {
	state  *State
	single *fakeContext
	grid   *fakeContext
	sched  *fakeScheduler
	clock  *fakeClock
	driver *Driver
}

func newHarness(t *testing.T, opts ...Option) *harness {
	t.Helper()
	state, err := NewState(
		grid.Size{Cols: 2, Rows: 2},
		looptime.Settings{LoopDuration: 3, Speed: 1, Mode: looptime.Wrap},
		looptime.OffsetSequential,
		rand.New(rand.NewPCG(1, 1)),
	)
	require.NoError(t, err)

	h := &harness{
		state:  state,
		single: newFakeContext("single", 200, 100),
		grid:   newFakeContext("grid", 200, 100),
		sched:  &fakeScheduler{},
		clock:  &fakeClock{t: time.Unix(1000, 0)},
	}
	opts = append([]Option{WithClock(h.clock.Now)}, opts...)
	h.driver = NewDriver(state, h.single, h.grid, h.sched, opts...)
	return h
}

func TestCompileAndRunStartsOnce(t *testing.T) {
	h := newHarness(t)
	assert.Equal(t, Idle, h.driver.Phase())

	require.NoError(t, h.driver.CompileAndRun(shaderSource))
	assert.Equal(t, Running, h.driver.Phase())
	assert.Equal(t, 1, h.sched.starts)
	require.NotNil(t, h.sched.tick)

	require.NoError(t, h.driver.CompileAndRun(shaderSource))
	assert.Equal(t, 1, h.sched.starts)

	// the first pair was released when the second was swapped in
	assert.True(t, h.single.built[0].released)
	assert.True(t, h.grid.built[0].released)
	assert.False(t, h.single.built[1].released)
	assert.False(t, h.grid.built[1].released)
}

func TestCompileAndRunBuildsPerTarget(t *testing.T) {
	h := newHarness(t)
	require.NoError(t, h.driver.CompileAndRun(shaderSource))

	require.Len(t, h.single.sources, 1)
	require.Len(t, h.grid.sources, 1)
	assert.NotContains(t, h.single.sources[0], "iOffset")
	assert.Contains(t, h.grid.sources[0], "gl_FragCoord.xy - iOffset")
	assert.Contains(t, h.single.sources[0], "uniform float freq;")
}

// A failure in one target keeps the running pair and the old parameter table.
func TestCompileFailureKeepsRunningPair(t *testing.T) {
	h := newHarness(t)
	require.NoError(t, h.driver.CompileAndRun(shaderSource))
	oldTable := h.state.Params

	h.single.fail = &gpu.CompileError{Stage: gpu.StageFragment, Log: "0:7: 'sinn' : no matching overloaded function"}
	err := h.driver.CompileAndRun("#pragma param other 0 1 0.5\n" + shaderSource)
	require.Error(t, err)

	var be *BuildError
	require.True(t, errors.As(err, &be))
	assert.Nil(t, be.Grid)
	var ce *gpu.CompileError
	require.True(t, errors.As(err, &ce))
	assert.Equal(t, gpu.StageFragment, ce.Stage)
	assert.Contains(t, err.Error(), "[single] error compiling fragment shader:\n0:7: 'sinn'")
	assert.NotContains(t, err.Error(), "[grid]")

	// the grid program built in the failed attempt was discarded
	require.Len(t, h.grid.built, 2)
	assert.True(t, h.grid.built[1].released)
	assert.False(t, h.grid.built[0].released)
	assert.False(t, h.single.built[0].released)

	assert.Same(t, oldTable, h.state.Params)
	_, ok := h.state.Params.Get("other")
	assert.False(t, ok)

	// rendering continues with the previous single-view program
	h.sched.tick()
	assert.Len(t, h.single.built[0].draws, 1)
	assert.Equal(t, Running, h.driver.Phase())
}

func TestCompileFailureGridOnly(t *testing.T) {
	h := newHarness(t)
	h.grid.fail = &gpu.LinkError{Log: "fragColor not written"}
	err := h.driver.CompileAndRun(shaderSource)
	require.Error(t, err)

	var le *gpu.LinkError
	require.True(t, errors.As(err, &le))
	assert.Contains(t, err.Error(), "[grid] error linking shader program:")
	assert.True(t, h.single.built[0].released)
	assert.Equal(t, Idle, h.driver.Phase())
	assert.Equal(t, 0, h.sched.starts)
}

func TestCompileFailureBothReported(t *testing.T) {
	h := newHarness(t)
	h.single.fail = &gpu.CompileError{Stage: gpu.StageFragment, Log: "single broke"}
	h.grid.fail = &gpu.CompileError{Stage: gpu.StageFragment, Log: "grid broke"}

	err := h.driver.CompileAndRun("void main() { oops }")
	require.Error(t, err)
	msg := err.Error()
	assert.Contains(t, msg, "shader compile error:")
	assert.Contains(t, msg, "single broke")
	assert.Contains(t, msg, "grid broke")
}

func TestRecompileResetsParamValues(t *testing.T) {
	h := newHarness(t)
	require.NoError(t, h.driver.CompileAndRun(shaderSource))
	v, ok := h.state.SetParam("freq", 8)
	require.True(t, ok)
	assert.Equal(t, 8.0, v)

	require.NoError(t, h.driver.CompileAndRun(shaderSource))
	spec, _ := h.state.Params.Get("freq")
	assert.Equal(t, 2.0, spec.Value)
}

func TestTickSingle(t *testing.T) {
	h := newHarness(t)
	require.NoError(t, h.driver.CompileAndRun(shaderSource))
	h.state.Mouse = Mouse{X: 10, Y: 20, Down: true}
	h.state.SetParam("freq", 4)
	h.clock.AdvanceSeconds(1.5)
	h.single.resetOps()

	h.sched.tick()

	p := h.single.built[0]
	require.Len(t, p.draws, 1)
	d := p.draws[0]
	assert.Equal(t, [2]float32{200, 100}, d["iResolution"])
	assert.Equal(t, float32(1.5), d["iTime"])
	assert.Equal(t, [4]float32{10, 20, 1, 0}, d["iMouse"])
	assert.Equal(t, int32(0), d["iFrame"])
	assert.Equal(t, float32(4), d["freq"])

	assert.Equal(t, []string{"current", "viewport (0,0)-(200,100)", "use 1", "draw"}, h.single.ops)
	assert.Empty(t, h.grid.built[0].draws)
}

func TestTickGrid(t *testing.T) {
	h := newHarness(t)
	require.NoError(t, h.driver.CompileAndRun(shaderSource))
	h.state.ToggleMode()
	require.True(t, h.state.ActivateVariation("freq"))
	require.True(t, h.state.SetCellParam("freq", 3, 9))
	h.clock.AdvanceSeconds(2.5)
	h.grid.resetOps()

	h.sched.tick()

	p := h.grid.built[0]
	require.Len(t, p.draws, 4)

	// sequential offsets 0,1,2,0 with a 3s wrap loop at t=2.5
	wantTime := []float32{2.5, 0.5, 1.5, 2.5}
	wantOffset := [][2]float32{{0, 0}, {100, 0}, {0, 50}, {100, 50}}
	wantFreq := []float32{2, 2, 2, 9}
	for i, d := range p.draws {
		assert.Equal(t, [2]float32{100, 50}, d["iResolution"], "cell %d", i)
		assert.InDelta(t, wantTime[i], d["iTime"], 1e-5, "cell %d", i)
		assert.Equal(t, wantOffset[i], d["iOffset"], "cell %d", i)
		assert.Equal(t, wantFreq[i], d["freq"], "cell %d", i)
		assert.Equal(t, [4]float32{0, 0, 0, 0}, d["iMouse"], "cell %d", i)
	}

	assert.Equal(t, []string{
		"current", "use 1", "noscissor", "viewport (0,0)-(200,100)", "clear",
		"viewport (0,0)-(100,50)", "scissor (0,0)-(100,50)", "draw",
		"viewport (100,0)-(200,50)", "scissor (100,0)-(200,50)", "draw",
		"viewport (0,50)-(100,100)", "scissor (0,50)-(100,100)", "draw",
		"viewport (100,50)-(200,100)", "scissor (100,50)-(200,100)", "draw",
		"noscissor", "viewport (0,0)-(200,100)",
	}, h.grid.ops)
	assert.Empty(t, h.single.built[0].draws)
}

func TestTickGridPicksUpResize(t *testing.T) {
	h := newHarness(t)
	require.NoError(t, h.driver.CompileAndRun(shaderSource))
	h.state.ToggleMode()
	require.NoError(t, h.state.SetGridSize(grid.Size{Cols: 3, Rows: 1}))

	h.sched.tick()
	assert.Len(t, h.grid.built[0].draws, 3)
}

func TestResetAndSeek(t *testing.T) {
	h := newHarness(t)
	require.NoError(t, h.driver.CompileAndRun(shaderSource))
	h.clock.AdvanceSeconds(10)
	h.sched.tick()
	h.sched.tick()
	assert.InDelta(t, 10.0, h.driver.Elapsed(), 1e-9)
	assert.Equal(t, 2, h.driver.Telemetry().Frame)

	h.driver.Reset()
	assert.InDelta(t, 0.0, h.driver.Elapsed(), 1e-9)
	assert.Equal(t, 0, h.driver.Telemetry().Frame)
	assert.Equal(t, Running, h.driver.Phase())

	h.driver.Seek(4.25)
	assert.InDelta(t, 4.25, h.driver.Elapsed(), 1e-9)
}

func TestTelemetryFPS(t *testing.T) {
	h := newHarness(t)
	require.NoError(t, h.driver.CompileAndRun(shaderSource))
	for i := 0; i < 30; i++ {
		h.clock.Advance(34 * time.Millisecond)
		h.sched.tick()
	}
	tel := h.driver.Telemetry()
	assert.Equal(t, 30, tel.FPS)
	assert.Equal(t, "single", tel.Mode)

	h.state.ToggleMode()
	assert.Equal(t, "grid 2×2", h.driver.Telemetry().Mode)
}

func TestObserverSeesActiveContext(t *testing.T) {
	obs := &recordingObserver{}
	h := newHarness(t, WithObserver(obs))
	require.NoError(t, h.driver.CompileAndRun(shaderSource))

	h.sched.tick()
	h.state.ToggleMode()
	h.sched.tick()

	require.Len(t, obs.ctxs, 2)
	assert.Same(t, h.single, obs.ctxs[0])
	assert.Same(t, h.grid, obs.ctxs[1])
	assert.Same(t, h.grid, h.driver.ActiveContext())
	assert.Equal(t, 2, obs.frames[1].Frame)
}

func TestTickBeforeCompileDrawsNothing(t *testing.T) {
	h := newHarness(t)
	h.driver.Tick()
	assert.Empty(t, h.single.ops)
	assert.Empty(t, h.grid.ops)
}

func TestActiveContextFallsBackToSingle(t *testing.T) {
	h := newHarness(t)
	h.state.ToggleMode()
	assert.Same(t, h.single, h.driver.ActiveContext())
}

func TestGridFullViewportRect(t *testing.T) {
	h := newHarness(t)
	h.grid.w, h.grid.h = 7, 3
	require.NoError(t, h.driver.CompileAndRun(shaderSource))
	h.state.ToggleMode()
	h.grid.resetOps()
	h.sched.tick()
	assert.Equal(t, "viewport "+image.Rect(0, 0, 7, 3).String(), h.grid.ops[len(h.grid.ops)-1])
}
