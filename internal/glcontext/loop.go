package glcontext

import (
	"github.com/go-gl/glfw/v3.3/glfw"
)

// idleWait bounds how long the loop blocks on events before the first
// successful compile.
const idleWait = 0.05

// Loop runs the GLFW event loop and invokes the frame tick once per
// iteration after Start. It satisfies preview.Scheduler.
type Loop struct {
	tick func()

	// Poll runs every iteration after window events are processed.
	Poll func()
	// Present runs after the tick with the current framebuffer still bound
	// and returns the window to swap. A nil window skips the swap.
	Present func() *Window
	// Done stops the loop when it returns true.
	Done func() bool
}

func (l *Loop) Start(tick func()) { l.tick = tick }

// Running reports whether Start was called.
func (l *Loop) Running() bool { return l.tick != nil }

// Run blocks until Done reports true.
func (l *Loop) Run() {
	for !l.Done() {
		if l.tick == nil {
			glfw.WaitEventsTimeout(idleWait)
		} else {
			glfw.PollEvents()
		}
		if l.Poll != nil {
			l.Poll()
		}
		if l.tick == nil {
			continue
		}
		l.tick()
		if l.Present != nil {
			if w := l.Present(); w != nil {
				w.SwapBuffers()
			}
		}
	}
}

// CanvasPoint converts a cursor position in window coordinates (origin top
// left) to framebuffer pixels with the origin at the bottom left.
func CanvasPoint(x, y float64, winWidth, winHeight, fbWidth, fbHeight int) (float32, float32) {
	if winWidth <= 0 || winHeight <= 0 {
		return 0, 0
	}
	sx := float64(fbWidth) / float64(winWidth)
	sy := float64(fbHeight) / float64(winHeight)
	return float32(x * sx), float32(float64(fbHeight) - y*sy)
}

// CanvasPoint returns the cursor position in framebuffer pixels, bottom-up.
func (w *Window) CanvasPoint(x, y float64) (float32, float32) {
	winWidth, winHeight := w.win.GetSize()
	fbWidth, fbHeight := w.win.GetFramebufferSize()
	return CanvasPoint(x, y, winWidth, winHeight, fbWidth, fbHeight)
}
