package main

import (
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-gl/glfw/v3.3/glfw"

	"shadergrid/internal/capture"
	"shadergrid/internal/config"
	"shadergrid/internal/glcontext"
	"shadergrid/internal/library"
	"shadergrid/internal/looptime"
	"shadergrid/internal/preview"
	"shadergrid/internal/watch"
)

// maxErrorLines bounds the compile log shown in the overlay.
const maxErrorLines = 8

// viewer owns everything on the render thread.
type viewer struct {
	configPath string
	shaderPath string

	cfg      config.Config
	state    *preview.State
	driver   *preview.Driver
	loop     *glcontext.Loop
	single   *glcontext.Window
	grid     *glcontext.Window
	recorder *capture.Recorder
	lib      *library.Library
	watcher  *watch.Watcher

	errLines    []string
	hideOverlay bool
	quit        bool
}

func runViewer(configPath, shaderPath string, debug bool) {
	cfg, err := config.Load(configPath)
	if err != nil {
		log.Fatalln("Error loading settings:", err)
	}
	timing, err := cfg.Timing()
	if err != nil {
		log.Fatalln("Error loading settings:", err)
	}
	state, err := preview.NewState(cfg.Size(), timing, looptime.OffsetMode(cfg.Grid.OffsetMode), nil)
	if err != nil {
		log.Fatalln("Error loading settings:", err)
	}

	if err := glcontext.Init(); err != nil {
		log.Fatalln(err)
	}
	defer glcontext.Terminate()

	single, err := glcontext.NewWindow(glcontext.WindowOptions{
		Title:   cfg.Window.Title,
		Width:   cfg.Window.Width,
		Height:  cfg.Window.Height,
		Visible: true,
		VSync:   cfg.Window.VSync,
	})
	if err != nil {
		log.Fatalln(err)
	}
	defer single.Destroy()

	gridWin, err := glcontext.NewWindow(glcontext.WindowOptions{
		Title:  cfg.Window.Title + " (grid)",
		Width:  cfg.Window.Width,
		Height: cfg.Window.Height,
		VSync:  cfg.Window.VSync,
	})
	if err != nil {
		log.Fatalln(err)
	}
	defer gridWin.Destroy()

	v := &viewer{
		configPath: absPath(configPath),
		shaderPath: absPath(shaderPath),
		cfg:        cfg,
		state:      state,
		loop:       &glcontext.Loop{},
		single:     single,
		grid:       gridWin,
		recorder:   capture.NewRecorder(captureSettings(cfg)),
	}
	v.openLibrary()
	v.driver = preview.NewDriver(state, single, gridWin, v.loop,
		preview.WithObserver(v.recorder),
		preview.WithDebug(debug),
	)

	v.watcher, err = watch.New(watch.DefaultDebounce, v.shaderPath, v.configPath)
	if err != nil {
		log.Printf("Error watching files, live reload disabled: %v", err)
	} else {
		defer v.watcher.Close()
	}

	v.bindInput(single)
	v.bindInput(gridWin)

	v.loop.Poll = v.poll
	v.loop.Present = v.present
	v.loop.Done = func() bool {
		return v.quit || single.ShouldClose() || gridWin.ShouldClose()
	}

	v.compile()
	v.loop.Run()

	if v.recorder.Active() {
		v.recorder.Stop()
	}
	v.recorder.Wait()
}

func absPath(path string) string {
	if abs, err := filepath.Abs(path); err == nil {
		return abs
	}
	return path
}

func captureSettings(cfg config.Config) capture.Settings {
	return capture.Settings{
		Dir:      cfg.Capture.Dir,
		FPS:      cfg.Capture.FPS,
		Duration: cfg.Capture.Duration,
		AutoStop: cfg.Capture.AutoStop,
	}
}

func (v *viewer) openLibrary() {
	lib, err := library.Open(v.cfg.Library.Path)
	if err != nil {
		log.Printf("Error opening shader library, auto-save disabled: %v", err)
		v.lib = nil
		return
	}
	v.lib = lib
}

// compile reads the shader file and rebuilds both programs. Failures keep
// the previous programs running.
func (v *viewer) compile() {
	data, err := os.ReadFile(v.shaderPath)
	if err != nil {
		v.setError(fmt.Errorf("read shader: %w", err))
		return
	}
	source := string(data)
	if err := v.driver.CompileAndRun(source); err != nil {
		v.setError(err)
		return
	}
	v.errLines = nil
	log.Printf("Compiled %s (%d parameters)", v.shaderPath, v.state.Params.Len())

	if err := v.cfg.Apply(v.state); err != nil {
		log.Printf("Error applying settings: %v", err)
	}
	if v.lib != nil {
		if _, err := v.lib.AutoSave(source); err != nil {
			log.Printf("Error saving shader to library: %v", err)
		}
	}
}

func (v *viewer) setError(err error) {
	log.Printf("Error: %v", err)
	var buildErr *preview.BuildError
	if !errors.As(err, &buildErr) {
		v.errLines = []string{err.Error()}
		return
	}
	lines := strings.Split(strings.TrimSpace(err.Error()), "\n")
	if len(lines) > maxErrorLines {
		lines = append(lines[:maxErrorLines], "...")
	}
	v.errLines = lines
}

// reloadConfig applies the settings file to the running viewer without
// recompiling.
func (v *viewer) reloadConfig() {
	cfg, err := config.Load(v.configPath)
	if err != nil {
		log.Printf("Error loading settings: %v", err)
		return
	}
	if err := cfg.Apply(v.state); err != nil {
		log.Printf("Error applying settings: %v", err)
		return
	}
	if cfg.Window != v.cfg.Window {
		log.Printf("Window settings change on restart")
	}
	v.recorder.Configure(captureSettings(cfg))
	libChanged := cfg.Library.Path != v.cfg.Library.Path
	v.cfg = cfg
	if libChanged {
		v.openLibrary()
	}
	log.Printf("Applied settings from %s", v.configPath)
}

func (v *viewer) poll() {
	if v.watcher == nil {
		return
	}
	for _, path := range watch.Drain(v.watcher.Changes()) {
		switch path {
		case v.shaderPath:
			v.compile()
		case v.configPath:
			v.reloadConfig()
		}
	}
}

func (v *viewer) activeWindow() *glcontext.Window {
	if v.state.Mode == preview.ModeGrid {
		return v.grid
	}
	return v.single
}

// present draws the overlay on the active window and hands it back for the
// buffer swap.
func (v *viewer) present() *glcontext.Window {
	w := v.activeWindow()
	if v.hideOverlay {
		return w
	}
	t := v.driver.Telemetry()
	lines := []string{fmt.Sprintf("%d fps  t=%.2fs  frame %d  %s", t.FPS, t.Elapsed, t.Frame, t.Mode)}
	if v.recorder.Active() {
		lines = append(lines, "REC")
	}
	lines = append(lines, v.errLines...)
	w.MakeCurrent()
	w.DrawText(lines...)
	return w
}

func (v *viewer) toggleMode() {
	from := v.activeWindow()
	v.state.ToggleMode()
	to := v.activeWindow()
	x, y := from.GLFW().GetPos()
	to.GLFW().SetPos(x, y)
	to.Show()
	from.Hide()
}

func (v *viewer) toggleCapture() {
	if !v.recorder.Active() && v.cfg.Capture.StartAt > 0 {
		v.driver.Seek(v.cfg.Capture.StartAt)
	}
	if err := v.recorder.Toggle(); err != nil {
		log.Printf("Error starting capture: %v", err)
	}
}

func (v *viewer) bindInput(w *glcontext.Window) {
	w.GLFW().SetKeyCallback(func(_ *glfw.Window, key glfw.Key, _ int, action glfw.Action, _ glfw.ModifierKey) {
		if action != glfw.Press {
			return
		}
		switch key {
		case glfw.KeyEscape:
			v.quit = true
		case glfw.KeyG, glfw.KeyTab:
			v.toggleMode()
		case glfw.KeyR:
			v.driver.Reset()
		case glfw.KeyO:
			v.state.RegenerateOffsets()
		case glfw.KeyC:
			v.toggleCapture()
		case glfw.KeyF5:
			v.compile()
		case glfw.KeyH:
			v.hideOverlay = !v.hideOverlay
		}
	})
	if w != v.single {
		return
	}
	w.GLFW().SetCursorPosCallback(func(_ *glfw.Window, x, y float64) {
		cx, cy := w.CanvasPoint(x, y)
		v.state.Mouse.X, v.state.Mouse.Y = float64(cx), float64(cy)
	})
	w.GLFW().SetMouseButtonCallback(func(_ *glfw.Window, button glfw.MouseButton, action glfw.Action, _ glfw.ModifierKey) {
		if button == glfw.MouseButtonLeft {
			v.state.Mouse.Down = action == glfw.Press
		}
	})
}
