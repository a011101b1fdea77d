// Command shadergrid previews a GLSL fragment shader full-screen or as a
// grid of time-shifted, per-cell parameterized copies.
//
// Usage:
//
//	shadergrid [-config shadergrid.toml] [-shader shader.glsl] [-debug]
//	shadergrid -settings [-config shadergrid.toml] [-shader shader.glsl]
//
// The viewer recompiles when the shader file is saved and applies the
// settings file when it changes. -settings opens the settings window, which
// edits those two files.
//
// Viewer keys: G toggles single/grid, R rewinds time, O regenerates time
// offsets, C starts or stops frame capture, F5 recompiles, H hides the
// overlay, Esc quits.
package main

import (
	"flag"
	"log"
	"runtime"

	"fyne.io/fyne/v2/app"

	"shadergrid/internal/panel"
)

func init() {
	runtime.LockOSThread() // OpenGL requires single-threaded execution
}

func main() {
	configPath := flag.String("config", "shadergrid.toml", "settings file")
	shaderPath := flag.String("shader", "shader.glsl", "fragment shader source file")
	settingsMode := flag.Bool("settings", false, "open the settings window instead of the viewer")
	debug := flag.Bool("debug", false, "log synthesized shader sources when a build fails")
	flag.Parse()

	if *settingsMode {
		runSettings(*configPath, *shaderPath, *debug)
		return
	}
	runViewer(*configPath, *shaderPath, *debug)
}

func runSettings(configPath, shaderPath string, debug bool) {
	p, err := panel.New(app.NewWithID("shadergrid.settings"), panel.Options{
		ConfigPath: configPath,
		ShaderPath: shaderPath,
		Debug:      debug,
	})
	if err != nil {
		log.Fatalln("Error opening settings:", err)
	}
	p.Run()
}
