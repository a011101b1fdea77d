package synth

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"shadergrid/internal/params"
)

const imageCode = `#pragma param freq 0.1 10 2
#pragma param amp 0 1 0.5
void mainImage(out vec4 c, in vec2 p) {
    c = vec4(sin(p.x * freq) * amp);
}`

const directCode = `void main() {
    fragColor = vec4(iTime);
}`

func TestFragmentImageSingle(t *testing.T) {
	src := Fragment(imageCode, params.Parse(imageCode), Single)

	assert.True(t, strings.HasPrefix(src, "#version 330 core\n"))
	for _, decl := range []string{
		"uniform vec2 iResolution;",
		"uniform float iTime;",
		"uniform vec4 iMouse;",
		"uniform int iFrame;",
		"out vec4 fragColor;",
	} {
		assert.Contains(t, src, decl)
	}
	assert.NotContains(t, src, "iOffset")
	assert.Contains(t, src, "mainImage(fragColor, gl_FragCoord.xy);")

	// parameters are declared in pragma order, before the user code
	freq := strings.Index(src, "uniform float freq;")
	amp := strings.Index(src, "uniform float amp;")
	user := strings.Index(src, "void mainImage")
	assert.True(t, freq >= 0 && freq < amp && amp < user)
}

func TestFragmentImageGrid(t *testing.T) {
	src := Fragment(imageCode, params.Parse(imageCode), Grid)

	assert.Contains(t, src, "uniform vec2 iOffset;")
	assert.Contains(t, src, "mainImage(fragColor, gl_FragCoord.xy - iOffset);")
	assert.Contains(t, src, "uniform vec4 iMouse;")
}

func TestFragmentDirect(t *testing.T) {
	single := Fragment(directCode, params.NewTable(), Single)
	assert.NotContains(t, single, "void main() {\n    mainImage")
	assert.NotContains(t, single, "iMouse")
	assert.Equal(t, 1, strings.Count(single, "void main()"))

	grid := Fragment(directCode, params.NewTable(), Grid)
	assert.Contains(t, grid, "uniform vec2 iOffset;")
	assert.Equal(t, 1, strings.Count(grid, "void main()"))
}

func TestUsesMainImage(t *testing.T) {
	assert.True(t, UsesMainImage("void  mainImage (out vec4 c, vec2 p) {}"))
	assert.False(t, UsesMainImage("void main() {}"))
	assert.False(t, UsesMainImage("void mainImageHelper() {}"))
}

func TestTargetString(t *testing.T) {
	assert.Equal(t, "single", Single.String())
	assert.Equal(t, "grid", Grid.String())
}
