package preview

import (
	"fmt"
	"math/rand/v2"

	"shadergrid/internal/grid"
	"shadergrid/internal/looptime"
	"shadergrid/internal/params"
	"shadergrid/internal/variation"
)

// Mode selects which view the driver renders.
type Mode int

const (
	ModeSingle Mode = iota
	ModeGrid
)

// Mouse is the cursor as the single view sees it: pixels, bottom-left origin.
type Mouse struct {
	X, Y float64
	Down bool
}

// State is the mutable application state read by the driver every tick.
// It is owned by the render goroutine; every method leaves it consistent so
// the next tick can read it as-is.
type State struct {
	Params     *params.Table
	Variations *variation.Store
	Grid       grid.Size
	Timing     looptime.Settings
	Offsets    *looptime.Offsets
	Mode       Mode
	Mouse      Mouse
}

// NewState builds a state for an empty parameter table. rng seeds random
// offsets and randomized variations; nil picks a random seed.
func NewState(size grid.Size, timing looptime.Settings, offsetMode looptime.OffsetMode, rng *rand.Rand) (*State, error) {
	if err := size.Validate(); err != nil {
		return nil, err
	}
	if err := timing.Validate(); err != nil {
		return nil, err
	}
	if _, err := looptime.ParseOffsetMode(string(offsetMode)); err != nil {
		return nil, err
	}
	s := &State{
		Params:     params.NewTable(),
		Variations: variation.NewStore(size.Cells(), rng),
		Grid:       size,
		Timing:     timing,
		Offsets:    looptime.NewOffsets(offsetMode, rng),
	}
	s.Offsets.Generate(size.Cells())
	return s, nil
}

// SetGridSize changes the grid dimensions, regenerates offsets and resizes
// every active variation.
func (s *State) SetGridSize(size grid.Size) error {
	if err := size.Validate(); err != nil {
		return err
	}
	s.Grid = size
	s.Offsets.Generate(size.Cells())
	s.Variations.Resize(size.Cells(), s.Params)
	return nil
}

// SetTiming replaces loop duration, speed and loop mode.
func (s *State) SetTiming(t looptime.Settings) error {
	if err := t.Validate(); err != nil {
		return err
	}
	s.Timing = t
	return nil
}

// SetOffsetMode switches offset generation and regenerates all offsets.
func (s *State) SetOffsetMode(m looptime.OffsetMode) error {
	if _, err := looptime.ParseOffsetMode(string(m)); err != nil {
		return err
	}
	s.Offsets.SetMode(m, s.Grid.Cells())
	return nil
}

// RegenerateOffsets re-runs the current offset mode.
func (s *State) RegenerateOffsets() {
	s.Offsets.Generate(s.Grid.Cells())
}

// SetCellOffset sets one manual offset.
func (s *State) SetCellOffset(index int, v float64) bool {
	return s.Offsets.Set(index, v)
}

// SetParam sets a global parameter value, clamped into range.
func (s *State) SetParam(name string, v float64) (float64, bool) {
	spec, ok := s.Params.Get(name)
	if !ok {
		return 0, false
	}
	return spec.Set(v), true
}

// ResetParam restores a parameter's declared default.
func (s *State) ResetParam(name string) bool {
	spec, ok := s.Params.Get(name)
	if ok {
		spec.Reset()
	}
	return ok
}

// ActivateVariation turns on per-cell overrides for name.
func (s *State) ActivateVariation(name string) bool {
	return s.withSpec(name, s.Variations.Activate)
}

// DeactivateVariation drops per-cell overrides for name.
func (s *State) DeactivateVariation(name string) {
	s.Variations.Deactivate(name)
}

// FillVariation sets every cell of name to its current global value.
func (s *State) FillVariation(name string) bool {
	return s.withSpec(name, s.Variations.Fill)
}

// RandomizeVariation sets every cell of name to a random in-range value.
func (s *State) RandomizeVariation(name string) bool {
	return s.withSpec(name, s.Variations.Randomize)
}

// SetCellParam stores a clamped per-cell override. Variation must be active.
func (s *State) SetCellParam(name string, index int, v float64) bool {
	spec, ok := s.Params.Get(name)
	if !ok {
		return false
	}
	return s.Variations.Set(spec, index, v)
}

// ToggleMode switches between the single and grid views.
func (s *State) ToggleMode() {
	if s.Mode == ModeGrid {
		s.Mode = ModeSingle
	} else {
		s.Mode = ModeGrid
	}
}

// ModeLabel describes the current view.
func (s *State) ModeLabel() string {
	if s.Mode == ModeGrid {
		return fmt.Sprintf("grid %s", s.Grid)
	}
	return "single"
}

// replaceParams installs a freshly parsed table.
func (s *State) replaceParams(t *params.Table) {
	s.Params = t
	s.Variations.Reconcile(t)
}

func (s *State) withSpec(name string, fn func(*params.Spec)) bool {
	spec, ok := s.Params.Get(name)
	if ok {
		fn(spec)
	}
	return ok
}
