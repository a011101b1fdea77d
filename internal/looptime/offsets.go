package looptime

import (
	"fmt"
	"math"
	"math/rand/v2"
)

// OffsetMode selects how per-cell time offsets are generated.
type OffsetMode string

const (
	OffsetNone       OffsetMode = "none"
	OffsetRandom     OffsetMode = "random"
	OffsetSequential OffsetMode = "sequential"
	OffsetManual     OffsetMode = "manual"
)

// ParseOffsetMode validates a mode name.
func ParseOffsetMode(s string) (OffsetMode, error) {
	switch OffsetMode(s) {
	case OffsetNone, OffsetRandom, OffsetSequential, OffsetManual:
		return OffsetMode(s), nil
	}
	return "", fmt.Errorf("unknown offset mode %q", s)
}

// offsetChoices are the values random and sequential modes draw from.
var offsetChoices = [...]float64{0, 1, 2}

// Offsets holds one non-negative time offset per cell, indexed row*cols+col.
type Offsets struct {
	mode   OffsetMode
	values []float64
	rng    *rand.Rand
}

// NewOffsets returns an empty set using rng for random mode. A nil rng uses
// a randomly seeded source.
func NewOffsets(mode OffsetMode, rng *rand.Rand) *Offsets {
	if rng == nil {
		rng = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}
	return &Offsets{mode: mode, rng: rng}
}

// Mode returns the current generation mode.
func (o *Offsets) Mode() OffsetMode { return o.mode }

// SetMode switches mode and regenerates n offsets.
func (o *Offsets) SetMode(mode OffsetMode, n int) {
	o.mode = mode
	o.Generate(n)
}

// Generate rebuilds the sequence for n cells. Manual mode keeps entries at
// indices that still exist and fills new ones with 0.
func (o *Offsets) Generate(n int) {
	if n < 0 {
		n = 0
	}
	next := make([]float64, n)
	for i := range next {
		switch o.mode {
		case OffsetRandom:
			next[i] = offsetChoices[o.rng.IntN(len(offsetChoices))]
		case OffsetSequential:
			next[i] = offsetChoices[i%len(offsetChoices)]
		case OffsetManual:
			if i < len(o.values) {
				next[i] = o.values[i]
			}
		}
	}
	o.values = next
}

// Set stores an offset for one cell without regenerating the rest. Values
// above the loop duration are kept as given; negative or NaN input becomes 0.
// It reports false when index is out of range.
func (o *Offsets) Set(index int, v float64) bool {
	if index < 0 || index >= len(o.values) {
		return false
	}
	if math.IsNaN(v) || v < 0 {
		v = 0
	}
	o.values[index] = v
	return true
}

// At returns the offset for index, or 0 past the end.
func (o *Offsets) At(index int) float64 {
	if index < 0 || index >= len(o.values) {
		return 0
	}
	return o.values[index]
}

// Len returns the number of cells covered.
func (o *Offsets) Len() int { return len(o.values) }

// Values returns a copy of the offsets.
func (o *Offsets) Values() []float64 {
	out := make([]float64, len(o.values))
	copy(out, o.values)
	return out
}
