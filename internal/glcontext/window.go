// Package glcontext implements gpu.Context on top of GLFW windows and an
// OpenGL 3.3 core profile. Each Window owns its own GL context; nothing is
// shared between windows.
//
// All functions must run on the main OS thread; the program's main package
// locks it in init.
package glcontext

import (
	"errors"
	"fmt"
	"image"

	"github.com/go-gl/gl/v3.3-core/gl"
	"github.com/go-gl/glfw/v3.3/glfw"

	"shadergrid/internal/gpu"
	"shadergrid/internal/synth"
)

// Init initializes GLFW and sets the context hints every Window uses.
// Call Terminate when done.
func Init() error {
	if err := glfw.Init(); err != nil {
		return fmt.Errorf("error initializing GLFW: %w", err)
	}
	glfw.WindowHint(glfw.Resizable, glfw.False)
	glfw.WindowHint(glfw.ContextVersionMajor, 3)
	glfw.WindowHint(glfw.ContextVersionMinor, 3)
	glfw.WindowHint(glfw.OpenGLProfile, glfw.OpenGLCoreProfile)
	glfw.WindowHint(glfw.OpenGLForwardCompatible, glfw.True)
	return nil
}

// Terminate releases GLFW.
func Terminate() { glfw.Terminate() }

// WindowOptions describe one canvas window.
type WindowOptions struct {
	Title   string
	Width   int
	Height  int
	Visible bool
	VSync   bool
}

// Window is one canvas and its GL context.
type Window struct {
	win     *glfw.Window
	vao     uint32
	vbo     uint32
	overlay *textOverlay
}

var _ gpu.Context = (*Window)(nil)

// NewWindow creates a window with a fresh GL context, the full-screen
// triangle buffer and a text overlay.
func NewWindow(opts WindowOptions) (*Window, error) {
	visible := glfw.False
	if opts.Visible {
		visible = glfw.True
	}
	glfw.WindowHint(glfw.Visible, visible)

	win, err := glfw.CreateWindow(opts.Width, opts.Height, opts.Title, nil, nil)
	if err != nil {
		return nil, fmt.Errorf("error creating window %q: %w", opts.Title, err)
	}
	win.MakeContextCurrent()

	if err := gl.Init(); err != nil {
		win.Destroy()
		return nil, fmt.Errorf("error initializing OpenGL: %w", err)
	}
	if opts.VSync {
		glfw.SwapInterval(1)
	} else {
		glfw.SwapInterval(0)
	}

	// Disable depth test for the full-screen triangle
	gl.Disable(gl.DEPTH_TEST)

	w := &Window{win: win}
	w.createTriangle()

	w.overlay, err = newTextOverlay()
	if err != nil {
		w.Destroy()
		return nil, err
	}
	return w, nil
}

// createTriangle uploads the oversized triangle the vertex stage expects.
func (w *Window) createTriangle() {
	vertices := synth.TriangleVertices

	gl.GenVertexArrays(1, &w.vao)
	gl.GenBuffers(1, &w.vbo)

	gl.BindVertexArray(w.vao)
	gl.BindBuffer(gl.ARRAY_BUFFER, w.vbo)
	gl.BufferData(gl.ARRAY_BUFFER, len(vertices)*4, gl.Ptr(vertices), gl.STATIC_DRAW)

	// Position (location 0)
	gl.VertexAttribPointer(0, 2, gl.FLOAT, false, 2*4, gl.PtrOffset(0))
	gl.EnableVertexAttribArray(0)

	gl.BindVertexArray(0)
}

// GLFW exposes the underlying window for input callbacks.
func (w *Window) GLFW() *glfw.Window { return w.win }

// Show makes the window visible.
func (w *Window) Show() { w.win.Show() }

// Hide hides the window. Its context stays valid.
func (w *Window) Hide() { w.win.Hide() }

// ShouldClose reports whether the user asked to close the window.
func (w *Window) ShouldClose() bool { return w.win.ShouldClose() }

// SwapBuffers presents the back buffer.
func (w *Window) SwapBuffers() { w.win.SwapBuffers() }

// DrawText draws lines of white text in the top-left corner of the
// framebuffer. The context must be current.
func (w *Window) DrawText(lines ...string) {
	fbWidth, fbHeight := w.FramebufferSize()
	gl.Viewport(0, 0, int32(fbWidth), int32(fbHeight))
	w.overlay.render(lines, fbWidth, fbHeight)
}

// Destroy releases GL objects and the window.
func (w *Window) Destroy() {
	w.win.MakeContextCurrent()
	if w.overlay != nil {
		w.overlay.destroy()
	}
	gl.DeleteBuffers(1, &w.vbo)
	gl.DeleteVertexArrays(1, &w.vao)
	w.win.Destroy()
}

func (w *Window) MakeCurrent() { w.win.MakeContextCurrent() }

func (w *Window) FramebufferSize() (int, int) { return w.win.GetFramebufferSize() }

func (w *Window) BuildProgram(vertexSrc, fragmentSrc string) (gpu.Program, error) {
	p, err := newProgram(vertexSrc, fragmentSrc)
	if err != nil {
		return nil, err
	}
	return p, nil
}

func (w *Window) UseProgram(p gpu.Program) {
	gl.UseProgram(p.(*program).id)
}

func (w *Window) Viewport(r image.Rectangle) {
	gl.Viewport(int32(r.Min.X), int32(r.Min.Y), int32(r.Dx()), int32(r.Dy()))
}

func (w *Window) Scissor(r image.Rectangle) {
	gl.Scissor(int32(r.Min.X), int32(r.Min.Y), int32(r.Dx()), int32(r.Dy()))
	gl.Enable(gl.SCISSOR_TEST)
}

func (w *Window) DisableScissor() { gl.Disable(gl.SCISSOR_TEST) }

func (w *Window) Clear(r, g, b, a float32) {
	gl.ClearColor(r, g, b, a)
	gl.Clear(gl.COLOR_BUFFER_BIT)
}

func (w *Window) DrawTriangle() {
	gl.BindVertexArray(w.vao)
	gl.DrawArrays(gl.TRIANGLES, 0, 3)
	gl.BindVertexArray(0)
}

func (w *Window) ReadPixels(r image.Rectangle) (*image.RGBA, error) {
	if r.Empty() {
		return nil, errors.New("empty read rectangle")
	}
	width, height := r.Dx(), r.Dy()
	raw := make([]byte, width*height*4)
	gl.PixelStorei(gl.PACK_ALIGNMENT, 1)
	gl.ReadPixels(int32(r.Min.X), int32(r.Min.Y), int32(width), int32(height), gl.RGBA, gl.UNSIGNED_BYTE, gl.Ptr(raw))
	if code := gl.GetError(); code != gl.NO_ERROR {
		return nil, fmt.Errorf("glReadPixels failed: 0x%x", code)
	}

	// GL rows run bottom-up
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	stride := width * 4
	for y := 0; y < height; y++ {
		src := raw[(height-1-y)*stride : (height-y)*stride]
		copy(img.Pix[y*img.Stride:y*img.Stride+stride], src)
	}
	return img, nil
}
