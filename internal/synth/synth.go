// Package synth wraps user fragment code into a complete GLSL program.
//
// Two conventions are supported:
//   - image function: user code defines
//     void mainImage(out vec4 fragColor, in vec2 fragCoord)
//     and a main() that calls it is appended.
//   - direct: user code defines main() itself and writes fragColor.
package synth

import (
	"fmt"
	"regexp"
	"strings"

	"shadergrid/internal/params"
)

// Target selects which rendering context the source is built for.
type Target int

const (
	// Single is the full-canvas preview.
	Single Target = iota
	// Grid is the tiled preview; each tile sees coordinates local to itself.
	Grid
)

func (t Target) String() string {
	if t == Grid {
		return "grid"
	}
	return "single"
}

// GLSL version header shared by both stages.
const versionHeader = "#version 330 core\n"

// VertexSource draws one oversized triangle that covers the whole viewport.
// The triangle buffer holds (-1,-1), (3,-1), (-1,3).
const VertexSource = versionHeader + `layout(location = 0) in vec2 position;

void main() {
    gl_Position = vec4(position, 0.0, 1.0);
}
`

// TriangleVertices is the buffer content matching VertexSource.
var TriangleVertices = []float32{-1, -1, 3, -1, -1, 3}

// Uniform names bound by the frame driver.
const (
	UniformResolution = "iResolution"
	UniformTime       = "iTime"
	UniformMouse      = "iMouse"
	UniformFrame      = "iFrame"
	UniformOffset     = "iOffset"
)

var mainImagePattern = regexp.MustCompile(`\bvoid\s+mainImage\s*\(`)

// UsesMainImage reports whether code follows the image-function convention.
func UsesMainImage(code string) bool {
	return mainImagePattern.MatchString(code)
}

// Fragment returns compilable fragment source for userCode. One float
// uniform is declared per parameter in table order. No validation of
// userCode is done here; errors surface when the program is compiled.
func Fragment(userCode string, table *params.Table, target Target) string {
	var b strings.Builder
	b.WriteString(versionHeader)
	b.WriteString("precision highp float;\n")
	b.WriteString("uniform vec2 iResolution;\n")
	b.WriteString("uniform float iTime;\n")

	image := UsesMainImage(userCode)
	if image {
		b.WriteString("uniform vec4 iMouse;\n")
		b.WriteString("uniform int iFrame;\n")
	}
	if target == Grid {
		b.WriteString("uniform vec2 iOffset;\n")
	}
	for _, name := range table.Names() {
		fmt.Fprintf(&b, "uniform float %s;\n", name)
	}
	b.WriteString("out vec4 fragColor;\n")

	b.WriteString(userCode)
	if !strings.HasSuffix(userCode, "\n") {
		b.WriteString("\n")
	}

	if image {
		coord := "gl_FragCoord.xy"
		if target == Grid {
			coord = "gl_FragCoord.xy - iOffset"
		}
		fmt.Fprintf(&b, "void main() {\n    mainImage(fragColor, %s);\n}\n", coord)
	}
	return b.String()
}
