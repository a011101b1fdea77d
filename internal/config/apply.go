package config

import (
	"shadergrid/internal/looptime"
	"shadergrid/internal/preview"
)

// Apply pushes the grid, parameter and variation settings into a running
// state without touching programs. Grid dimensions and offset mode are only
// reset when they differ, so unchanged settings keep their generated offsets.
//
// Params and variations are authoritative: a declared parameter missing from
// [params] goes back to its default, one missing from [variations] is
// deactivated. Names that are not declared parameters are ignored.
func (c Config) Apply(s *preview.State) error {
	if err := c.Validate(); err != nil {
		return err
	}
	timing, _ := c.Timing()
	if err := s.SetTiming(timing); err != nil {
		return err
	}
	if size := c.Size(); size != s.Grid {
		if err := s.SetGridSize(size); err != nil {
			return err
		}
	}
	mode := looptime.OffsetMode(c.Grid.OffsetMode)
	if mode != s.Offsets.Mode() {
		if err := s.SetOffsetMode(mode); err != nil {
			return err
		}
	}
	if mode == looptime.OffsetManual {
		for i, v := range c.Grid.Offsets {
			s.SetCellOffset(i, v)
		}
	}

	for _, name := range s.Params.Names() {
		if v, ok := c.Params[name]; ok {
			s.SetParam(name, v)
		} else {
			s.ResetParam(name)
		}

		values, ok := c.Variations[name]
		if !ok {
			s.DeactivateVariation(name)
			continue
		}
		if !s.Variations.Active(name) {
			s.ActivateVariation(name)
		}
		for i, v := range values {
			s.SetCellParam(name, i, v)
		}
	}
	return nil
}

// FromState copies grid settings, parameter values and active variations
// back into the config.
func (c *Config) FromState(s *preview.State) {
	c.Grid.Cols = s.Grid.Cols
	c.Grid.Rows = s.Grid.Rows
	c.Grid.LoopDuration = s.Timing.LoopDuration
	c.Grid.PlaybackSpeed = s.Timing.Speed
	c.Grid.LoopMode = string(s.Timing.Mode)
	c.Grid.OffsetMode = string(s.Offsets.Mode())
	c.Grid.Offsets = nil
	if s.Offsets.Mode() == looptime.OffsetManual {
		c.Grid.Offsets = s.Offsets.Values()
	}
	c.Params = map[string]float64{}
	c.Variations = map[string][]float64{}
	for _, spec := range s.Params.All() {
		c.Params[spec.Name] = spec.Value
	}
	for _, name := range s.Params.Names() {
		if vals := s.Variations.Values(name); vals != nil {
			c.Variations[name] = vals
		}
	}
}
