// Package panel is the settings window. It edits the settings file and the
// saved shader library; a running viewer picks up saved changes through its
// file watcher.
package panel

import (
	"errors"
	"fmt"
	"log"
	"math/rand/v2"
	"os"
	"strings"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/widget"

	"shadergrid/internal/config"
	"shadergrid/internal/grid"
	"shadergrid/internal/library"
	"shadergrid/internal/looptime"
	"shadergrid/internal/params"
	"shadergrid/internal/watch"
)

const (
	windowWidth  = 560
	windowHeight = 640
)

// Options locate the files the panel edits.
type Options struct {
	ConfigPath string
	ShaderPath string
	// Debug shows the command line in the window title.
	Debug bool
}

// Panel holds the settings being edited and the widgets showing them.
type Panel struct {
	app  fyne.App
	win  fyne.Window
	opts Options
	rng  *rand.Rand

	cfg   config.Config
	lib   *library.Library
	table *params.Table
	dirty bool

	status      *widget.Label
	offsetsBox  *fyne.Container
	paramsBox   *fyne.Container
	libraryList *widget.List
	entries     []library.Entry
	selected    int64
	nameEntry   *widget.Entry
}

// New loads the settings file, the shader file and the library, and builds
// the window. A missing shader file is an empty parameter list.
func New(a fyne.App, opts Options) (*Panel, error) {
	cfg, err := config.Load(opts.ConfigPath)
	if err != nil {
		return nil, err
	}
	lib, err := library.Open(cfg.Library.Path)
	if err != nil {
		return nil, err
	}
	p := &Panel{
		app:   a,
		opts:  opts,
		rng:   rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64())),
		cfg:   cfg,
		lib:   lib,
		table: params.NewTable(),
	}
	if err := p.loadShader(); err != nil {
		log.Printf("Error reading shader: %v", err)
	}
	p.build()
	return p, nil
}

// Window returns the settings window.
func (p *Panel) Window() fyne.Window { return p.win }

// Config returns a copy of the settings being edited.
func (p *Panel) Config() config.Config { return p.cfg }

// Params returns the parameters declared by the shader file.
func (p *Panel) Params() *params.Table { return p.table }

// Run shows the window and blocks until it is closed. The parameter list
// follows the shader file while the window is open.
func (p *Panel) Run() {
	if p.opts.ShaderPath != "" {
		w, err := watch.New(watch.DefaultDebounce, p.opts.ShaderPath)
		if err != nil {
			log.Printf("Error watching shader: %v", err)
		} else {
			defer w.Close()
			go func() {
				for range w.Changes() {
					fyne.Do(p.reloadShader)
				}
			}()
		}
	}
	p.win.ShowAndRun()
}

func (p *Panel) loadShader() error {
	if p.opts.ShaderPath == "" {
		return nil
	}
	data, err := os.ReadFile(p.opts.ShaderPath)
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	if err != nil {
		return err
	}
	p.table = params.Parse(string(data))
	return nil
}

func (p *Panel) reloadShader() {
	if err := p.loadShader(); err != nil {
		p.showError(err)
		return
	}
	p.refreshParams()
}

// Save validates and writes the settings file.
func (p *Panel) Save() error {
	if err := config.Save(p.opts.ConfigPath, p.cfg); err != nil {
		return err
	}
	p.dirty = false
	p.setStatus("Saved " + p.opts.ConfigPath)
	return nil
}

// Revert discards unsaved edits.
func (p *Panel) Revert() error {
	cfg, err := config.Load(p.opts.ConfigPath)
	if err != nil {
		return err
	}
	p.cfg = cfg
	p.dirty = false
	p.win.SetContent(p.content())
	p.setStatus("Reverted")
	return nil
}

func (p *Panel) changed() {
	p.dirty = true
	p.setStatus("Unsaved changes")
}

func (p *Panel) setStatus(s string) {
	if p.status != nil {
		p.status.SetText(s)
	}
}

func (p *Panel) showError(err error) {
	log.Printf("Error: %v", err)
	if p.win != nil {
		dialog.ShowError(err, p.win)
	}
}

func (p *Panel) size() grid.Size { return p.cfg.Size() }

// SetGridSize changes the dimensions and resizes manual offsets and every
// variation to the new cell count.
func (p *Panel) SetGridSize(cols, rows int) error {
	size := grid.Size{Cols: cols, Rows: rows}
	if err := size.Validate(); err != nil {
		return err
	}
	p.cfg.Grid.Cols, p.cfg.Grid.Rows = cols, rows
	n := size.Cells()
	if p.cfg.Grid.Offsets != nil {
		p.cfg.Grid.Offsets = resizeValues(p.cfg.Grid.Offsets, n, 0)
	}
	for name, vals := range p.cfg.Variations {
		p.cfg.Variations[name] = resizeValues(vals, n, p.paramValue(name))
	}
	p.changed()
	p.refreshOffsets()
	p.refreshParams()
	return nil
}

// SetOffsetMode switches the offset mode. Manual mode starts from zeros.
func (p *Panel) SetOffsetMode(mode looptime.OffsetMode) error {
	if _, err := looptime.ParseOffsetMode(string(mode)); err != nil {
		return err
	}
	p.cfg.Grid.OffsetMode = string(mode)
	if mode == looptime.OffsetManual {
		p.cfg.Grid.Offsets = resizeValues(p.cfg.Grid.Offsets, p.size().Cells(), 0)
	} else {
		p.cfg.Grid.Offsets = nil
	}
	p.changed()
	p.refreshOffsets()
	return nil
}

// SetCellOffset sets one manual offset. Negative values become 0.
func (p *Panel) SetCellOffset(index int, v float64) bool {
	if index < 0 || index >= len(p.cfg.Grid.Offsets) {
		return false
	}
	if !(v >= 0) {
		v = 0
	}
	p.cfg.Grid.Offsets[index] = v
	p.changed()
	return true
}

// paramValue is the configured global value for name, or its default.
func (p *Panel) paramValue(name string) float64 {
	if v, ok := p.cfg.Params[name]; ok {
		return v
	}
	if spec, ok := p.table.Get(name); ok {
		return spec.Default
	}
	return 0
}

// SetParam stores a clamped global value.
func (p *Panel) SetParam(name string, v float64) (float64, bool) {
	spec, ok := p.table.Get(name)
	if !ok {
		return 0, false
	}
	v = spec.Clamp(v)
	p.cfg.Params[name] = v
	p.changed()
	return v, true
}

// ResetParam drops the configured value so the viewer uses the default.
func (p *Panel) ResetParam(name string) {
	delete(p.cfg.Params, name)
	p.changed()
}

// SetVariation turns per-cell values for name on or off. New variations
// start with every cell at the global value.
func (p *Panel) SetVariation(name string, on bool) {
	if !on {
		delete(p.cfg.Variations, name)
	} else if _, ok := p.cfg.Variations[name]; !ok {
		p.cfg.Variations[name] = filledValues(p.size().Cells(), p.paramValue(name))
	}
	p.changed()
}

// FillVariation sets every cell of name to the global value.
func (p *Panel) FillVariation(name string) {
	if _, ok := p.cfg.Variations[name]; ok {
		p.cfg.Variations[name] = filledValues(p.size().Cells(), p.paramValue(name))
		p.changed()
	}
}

// RandomizeVariation sets every cell of name to a random in-range value.
func (p *Panel) RandomizeVariation(name string) {
	spec, ok := p.table.Get(name)
	_, active := p.cfg.Variations[name]
	if !ok || !active {
		return
	}
	p.cfg.Variations[name] = randomValues(p.size().Cells(), spec, p.rng)
	p.changed()
}

// SetCellParam stores a clamped per-cell value for an active variation.
func (p *Panel) SetCellParam(name string, index int, v float64) bool {
	spec, ok := p.table.Get(name)
	vals, active := p.cfg.Variations[name]
	if !ok || !active || index < 0 || index >= len(vals) {
		return false
	}
	vals[index] = spec.Clamp(v)
	p.changed()
	return true
}

func (p *Panel) build() {
	title := "Shader Grid Settings"
	if p.opts.Debug {
		if len(os.Args) > 1 {
			title = fmt.Sprintf("[Args: %s]", strings.Join(os.Args[1:], " "))
		} else {
			title = "[Args: (none)]"
		}
	}
	p.win = p.app.NewWindow(title)
	p.win.Resize(fyne.NewSize(windowWidth, windowHeight))
	p.win.CenterOnScreen()
	p.win.SetContent(p.content())
}

func (p *Panel) content() fyne.CanvasObject {
	p.status = widget.NewLabel("")
	p.offsetsBox = container.NewVBox()
	p.paramsBox = container.NewVBox()

	tabs := container.NewAppTabs(
		container.NewTabItem("Grid", container.NewVScroll(p.gridTab())),
		container.NewTabItem("Parameters", container.NewVScroll(p.paramsBox)),
		container.NewTabItem("Library", p.libraryTab()),
		container.NewTabItem("Capture", p.captureTab()),
	)
	p.refreshOffsets()
	p.refreshParams()

	saveButton := widget.NewButton("Save", func() {
		if err := p.Save(); err != nil {
			p.showError(err)
		}
	})
	revertButton := widget.NewButton("Revert", func() {
		if err := p.Revert(); err != nil {
			p.showError(err)
		}
	})
	bottom := container.NewBorder(nil, nil, nil, container.NewHBox(revertButton, saveButton), p.status)
	return container.NewBorder(nil, bottom, nil, nil, tabs)
}
