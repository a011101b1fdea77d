package looptime

import (
	"math"
	"math/rand/v2"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWrap(t *testing.T) {
	assert.InDelta(t, 1.0, Local(4, 3, Wrap), 1e-12)
	assert.InDelta(t, 0.0, Local(6, 3, Wrap), 1e-12)
	assert.InDelta(t, 2.0, Local(-1, 3, Wrap), 1e-12)
}

func TestPingPong(t *testing.T) {
	assert.InDelta(t, 1.0, Local(1, 3, PingPong), 1e-12)
	assert.InDelta(t, 3.0, Local(3, 3, PingPong), 1e-12)
	assert.InDelta(t, 2.0, Local(4, 3, PingPong), 1e-12)
	assert.InDelta(t, 0.0, Local(6, 3, PingPong), 1e-12)
	assert.InDelta(t, 1.0, Local(-1, 3, PingPong), 1e-12)
}

func TestLocalProperties(t *testing.T) {
	rng := rand.New(rand.NewPCG(1, 2))
	for i := 0; i < 5000; i++ {
		d := 0.01 + rng.Float64()*20
		a := (rng.Float64() - 0.5) * 1000

		w := Local(a, d, Wrap)
		require.True(t, w >= 0 && w < d, "wrap(%v, %v) = %v", a, d, w)
		assert.InDelta(t, w, Local(a+d, d, Wrap), 1e-6*d+1e-9)

		p := Local(a, d, PingPong)
		require.True(t, p >= 0 && p <= d, "pingpong(%v, %v) = %v", a, d, p)
		assert.InDelta(t, p, Local(a+2*d, d, PingPong), 1e-6*d+1e-9)
	}
}

// Ping-pong has no jump when adjusted time crosses a multiple of the duration.
func TestPingPongContinuous(t *testing.T) {
	const d = 2.5
	const eps = 1e-7
	for k := -4; k <= 4; k++ {
		edge := float64(k) * d
		before := Local(edge-eps, d, PingPong)
		after := Local(edge+eps, d, PingPong)
		assert.InDelta(t, before, after, 1e-5, "k=%d", k)
	}
}

func TestLocalTinyNegative(t *testing.T) {
	w := Local(-1e-18, 3, Wrap)
	assert.True(t, w >= 0 && w < 3)
}

func TestLocalNonPositiveDuration(t *testing.T) {
	assert.Equal(t, 0.0, Local(5, 0, Wrap))
	assert.Equal(t, 0.0, Local(5, -1, PingPong))
}

func TestCellTime(t *testing.T) {
	s := Settings{LoopDuration: 3, Speed: 2, Mode: Wrap}
	// (1 + 1) * 2 = 4 -> 1
	assert.InDelta(t, 1.0, s.CellTime(1, 1), 1e-12)

	s.Speed = 0
	assert.Equal(t, 0.0, s.CellTime(123, 4))

	s.Speed = -1
	s.Mode = PingPong
	// -(1) -> 1 by symmetry
	assert.InDelta(t, 1.0, s.CellTime(1, 0), 1e-12)
}

func TestSettingsValidate(t *testing.T) {
	assert.NoError(t, Settings{LoopDuration: 1, Speed: 0, Mode: Wrap}.Validate())
	assert.NoError(t, Settings{LoopDuration: 1, Speed: -2, Mode: PingPong}.Validate())
	assert.Error(t, Settings{LoopDuration: 0, Speed: 1, Mode: Wrap}.Validate())
	assert.Error(t, Settings{LoopDuration: math.NaN(), Speed: 1, Mode: Wrap}.Validate())
	assert.Error(t, Settings{LoopDuration: 1, Speed: math.Inf(1), Mode: Wrap}.Validate())
	assert.Error(t, Settings{LoopDuration: 1, Speed: 1, Mode: "bounce"}.Validate())
}

func TestParseModes(t *testing.T) {
	m, err := ParseLoopMode("pingpong")
	require.NoError(t, err)
	assert.Equal(t, PingPong, m)
	_, err = ParseLoopMode("")
	assert.Error(t, err)

	o, err := ParseOffsetMode("sequential")
	require.NoError(t, err)
	assert.Equal(t, OffsetSequential, o)
	_, err = ParseOffsetMode("diagonal")
	assert.Error(t, err)
}
