// Package gpu defines the rendering-context contract the frame driver draws
// through. The OpenGL implementation lives in internal/glcontext.
package gpu

import (
	"fmt"
	"image"
	"strings"
)

// Stage names a programmable pipeline stage.
type Stage string

const (
	StageVertex   Stage = "vertex"
	StageFragment Stage = "fragment"
)

// CompileError reports a shader stage that failed to compile. Log is the
// driver's info log, unmodified.
type CompileError struct {
	Stage Stage
	Log   string
}

func (e *CompileError) Error() string {
	return fmt.Sprintf("error compiling %s shader:\n%s", e.Stage, strings.TrimRight(e.Log, "\x00\n"))
}

// LinkError reports a program that failed to link.
type LinkError struct {
	Log string
}

func (e *LinkError) Error() string {
	return fmt.Sprintf("error linking shader program:\n%s", strings.TrimRight(e.Log, "\x00\n"))
}

// Program is a linked program owned by exactly one Context. Uniform setters
// apply to the program currently in use and silently ignore names the
// compiler optimized away.
type Program interface {
	SetFloat(name string, v float32)
	SetInt(name string, v int32)
	SetVec2(name string, x, y float32)
	SetVec4(name string, x, y, z, w float32)
	Release()
}

// Context is one rendering context: its own framebuffer, its own program
// namespace and its own full-screen triangle buffer. Calls other than
// MakeCurrent require the context to be current.
type Context interface {
	MakeCurrent()
	FramebufferSize() (width, height int)

	// BuildProgram compiles both stages and links them. On failure the
	// partial objects are released and a *CompileError or *LinkError is
	// returned. The new program is not activated.
	BuildProgram(vertexSrc, fragmentSrc string) (Program, error)
	UseProgram(p Program)

	Viewport(r image.Rectangle)
	Scissor(r image.Rectangle)
	DisableScissor()
	Clear(r, g, b, a float32)
	DrawTriangle()

	// ReadPixels copies the framebuffer region r, bottom-up rows flipped so
	// the result is top-down.
	ReadPixels(r image.Rectangle) (*image.RGBA, error)
}
