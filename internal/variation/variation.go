// Package variation keeps per-cell parameter overrides for the grid view.
//
// A parameter has variation active exactly when the store holds a value
// slice for its name. Without one, every cell uses the global value.
package variation

import (
	"math/rand/v2"

	"shadergrid/internal/params"
)

// Store maps parameter names to per-cell override values. Data is keyed by
// name so it survives a re-parse that keeps the name.
type Store struct {
	cells  int
	values map[string][]float64
	rng    *rand.Rand
}

// NewStore returns an empty store sized for cells cells. A nil rng uses a
// randomly seeded source.
func NewStore(cells int, rng *rand.Rand) *Store {
	if rng == nil {
		rng = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}
	return &Store{cells: cells, values: make(map[string][]float64), rng: rng}
}

// Cells returns the cell count the store is sized for.
func (s *Store) Cells() int { return s.cells }

// Active reports whether name has per-cell overrides.
func (s *Store) Active(name string) bool {
	_, ok := s.values[name]
	return ok
}

// Activate turns on variation for spec, filling every cell with the
// current global value. It is a no-op when already active.
func (s *Store) Activate(spec *params.Spec) {
	if s.Active(spec.Name) {
		return
	}
	s.values[spec.Name] = filled(s.cells, spec.Value)
}

// Deactivate drops the overrides for name.
func (s *Store) Deactivate(name string) {
	delete(s.values, name)
}

// Fill sets every cell to spec's current value, activating if needed.
func (s *Store) Fill(spec *params.Spec) {
	s.values[spec.Name] = filled(s.cells, spec.Value)
}

// Randomize sets every cell to a uniform draw from [Min, Max], activating
// if needed.
func (s *Store) Randomize(spec *params.Spec) {
	vals := make([]float64, s.cells)
	for i := range vals {
		vals[i] = spec.Min + s.rng.Float64()*(spec.Max-spec.Min)
	}
	s.values[spec.Name] = vals
}

// Set stores a clamped override for one cell. It reports false when
// variation is not active for spec or index is out of range.
func (s *Store) Set(spec *params.Spec, index int, v float64) bool {
	vals, ok := s.values[spec.Name]
	if !ok || index < 0 || index >= len(vals) {
		return false
	}
	vals[index] = spec.Clamp(v)
	return true
}

// Values returns a copy of the overrides for name, or nil when inactive.
func (s *Store) Values(name string) []float64 {
	vals, ok := s.values[name]
	if !ok {
		return nil
	}
	out := make([]float64, len(vals))
	copy(out, vals)
	return out
}

// Resize changes the cell count. Existing entries keep their index; new
// entries take the parameter's current global value from table. Names not in
// table keep their data and are padded when the table learns them again.
func (s *Store) Resize(cells int, table *params.Table) {
	s.cells = cells
	for name, vals := range s.values {
		if len(vals) == cells {
			continue
		}
		spec, ok := table.Get(name)
		if !ok {
			continue
		}
		s.values[name] = resized(vals, cells, spec.Value)
	}
}

// Reconcile brings every active slice for a name in table to the current
// cell count and clamps its values into the spec's range. Call it after the
// parameter table is replaced.
func (s *Store) Reconcile(table *params.Table) {
	for name, vals := range s.values {
		spec, ok := table.Get(name)
		if !ok {
			continue
		}
		if len(vals) != s.cells {
			vals = resized(vals, s.cells, spec.Value)
		}
		for i, v := range vals {
			vals[i] = spec.Clamp(v)
		}
		s.values[name] = vals
	}
}

// Resolve returns the value to bind for spec at cell index: the override
// when variation is active and has that index, otherwise the global value.
func (s *Store) Resolve(spec *params.Spec, index int) float64 {
	if s != nil {
		if vals, ok := s.values[spec.Name]; ok && index >= 0 && index < len(vals) {
			return vals[index]
		}
	}
	return spec.Value
}

func filled(n int, v float64) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = v
	}
	return out
}

func resized(vals []float64, n int, fill float64) []float64 {
	out := make([]float64, n)
	for i := range out {
		if i < len(vals) {
			out[i] = vals[i]
		} else {
			out[i] = fill
		}
	}
	return out
}
