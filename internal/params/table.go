package params

// Table is an insertion-ordered map of parameter specs keyed by name.
type Table struct {
	order []string
	specs map[string]*Spec
}

// NewTable returns an empty table.
func NewTable() *Table {
	return &Table{specs: make(map[string]*Spec)}
}

// put inserts spec, keeping the position of an existing entry with the same name.
func (t *Table) put(spec *Spec) {
	if _, ok := t.specs[spec.Name]; !ok {
		t.order = append(t.order, spec.Name)
	}
	t.specs[spec.Name] = spec
}

// Len returns the number of parameters.
func (t *Table) Len() int {
	if t == nil {
		return 0
	}
	return len(t.order)
}

// Names returns parameter names in declaration order.
func (t *Table) Names() []string {
	if t == nil {
		return nil
	}
	out := make([]string, len(t.order))
	copy(out, t.order)
	return out
}

// Get returns the spec for name.
func (t *Table) Get(name string) (*Spec, bool) {
	if t == nil {
		return nil, false
	}
	s, ok := t.specs[name]
	return s, ok
}

// All returns the specs in declaration order.
func (t *Table) All() []*Spec {
	if t == nil {
		return nil
	}
	out := make([]*Spec, 0, len(t.order))
	for _, name := range t.order {
		out = append(out, t.specs[name])
	}
	return out
}
