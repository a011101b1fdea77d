// Package params extracts tunable numeric parameters from shader source.
//
// A declaration is a line of the form
//
//	#pragma param <name> <min> <max> <default> [<step>]
//
// The "#pragma" prefix is optional, so the same declaration also works
// inside a line comment. Anything else on the line is ignored.
package params

import (
	"regexp"
	"strconv"
)

// pragmaPattern matches one declaration. Numeric tokens are captured loosely
// and validated with strconv afterwards; a token that does not parse drops
// the whole declaration.
var pragmaPattern = regexp.MustCompile(
	`(?:#pragma[ \t]+)?\bparam[ \t]+(\w+)` +
		`[ \t]+(` + number + `)[ \t]+(` + number + `)[ \t]+(` + number + `)` +
		`(?:[ \t]+(` + number + `))?`)

// number is a loose signed decimal token; it must contain at least one digit.
const number = `[-+.]*\d[-+\d.eE]*`

var identPattern = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// reserved names are uniforms the synthesizer always declares.
var reserved = map[string]bool{
	"iResolution": true,
	"iTime":       true,
	"iMouse":      true,
	"iFrame":      true,
	"iOffset":     true,
	"fragColor":   true,
	"main":        true,
	"mainImage":   true,
}

// Spec describes one tunable parameter.
type Spec struct {
	Name    string
	Min     float64
	Max     float64
	Default float64
	Value   float64
	Step    float64
}

// Clamp returns v limited to [Min, Max].
func (s *Spec) Clamp(v float64) float64 {
	if v < s.Min {
		return s.Min
	}
	if v > s.Max {
		return s.Max
	}
	return v
}

// Set stores v as the current value, clamped into range.
func (s *Spec) Set(v float64) float64 {
	s.Value = s.Clamp(v)
	return s.Value
}

// Reset restores the current value to the declared default.
func (s *Spec) Reset() {
	s.Value = s.Default
}

// Parse scans source and returns every valid declaration in order of first
// appearance. Malformed declarations are skipped silently. Every returned
// Spec starts with Value == Default.
func Parse(source string) *Table {
	t := NewTable()
	for _, m := range pragmaPattern.FindAllStringSubmatch(source, -1) {
		spec, ok := parseDecl(m[1:])
		if !ok {
			continue
		}
		t.put(spec)
	}
	return t
}

func parseDecl(fields []string) (*Spec, bool) {
	name := fields[0]
	if !identPattern.MatchString(name) || reserved[name] {
		return nil, false
	}
	nums := make([]float64, 3)
	for i := range nums {
		v, err := strconv.ParseFloat(fields[i+1], 64)
		if err != nil {
			return nil, false
		}
		nums[i] = v
	}
	lo, hi, def := nums[0], nums[1], nums[2]
	if lo > hi {
		return nil, false
	}

	spec := &Spec{Name: name, Min: lo, Max: hi}
	spec.Default = spec.Clamp(def)
	spec.Value = spec.Default
	spec.Step = (hi - lo) / 100

	if fields[4] != "" {
		step, err := strconv.ParseFloat(fields[4], 64)
		if err != nil {
			return nil, false
		}
		if step > 0 {
			spec.Step = step
		}
	}
	return spec, true
}
