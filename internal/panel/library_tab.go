package panel

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/widget"

	"shadergrid/internal/library"
)

const newShaderSource = `#pragma param speed 0.0 4.0 1.0

void mainImage(out vec4 fragColor, in vec2 fragCoord) {
    vec2 uv = fragCoord / iResolution.xy;
    vec3 col = 0.5 + 0.5 * cos(iTime * speed + uv.xyx + vec3(0.0, 2.0, 4.0));
    fragColor = vec4(col, 1.0);
}
`

// LoadEntry writes a saved shader into the shader file, which the viewer
// recompiles on change.
func (p *Panel) LoadEntry(id int64) error {
	e, ok := p.lib.Select(id)
	if !ok {
		return fmt.Errorf("no saved shader with id %d", id)
	}
	if p.opts.ShaderPath == "" {
		return fmt.Errorf("no shader file to load into")
	}
	if dir := filepath.Dir(p.opts.ShaderPath); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}
	if err := os.WriteFile(p.opts.ShaderPath, []byte(e.Source), 0o644); err != nil {
		return fmt.Errorf("write shader: %w", err)
	}
	p.reloadShader()
	p.setStatus("Loaded " + e.Name)
	return nil
}

// NewEntry saves a starter shader and loads it.
func (p *Panel) NewEntry() error {
	e, err := p.lib.Create(newShaderSource)
	if err != nil {
		return err
	}
	p.refreshLibrary()
	return p.LoadEntry(e.ID)
}

// DeleteEntry removes a saved shader. When it was the one loaded, the next
// entry is loaded in its place.
func (p *Panel) DeleteEntry(id int64) error {
	next, ok, err := p.lib.Delete(id)
	if err != nil {
		return err
	}
	p.refreshLibrary()
	if ok {
		return p.LoadEntry(next.ID)
	}
	return nil
}

// RenameEntry renames a saved shader.
func (p *Panel) RenameEntry(id int64, name string) error {
	if err := p.lib.Rename(id, name); err != nil {
		return err
	}
	p.refreshLibrary()
	return nil
}

func (p *Panel) refreshLibrary() {
	if err := p.lib.Reload(); err != nil {
		p.showError(err)
	}
	p.entries = p.lib.List()
	if p.libraryList != nil {
		p.libraryList.Refresh()
	}
}

func (p *Panel) libraryTab() fyne.CanvasObject {
	p.entries = p.lib.List()
	p.selected = 0

	p.libraryList = widget.NewList(
		func() int { return len(p.entries) },
		func() fyne.CanvasObject {
			return container.NewBorder(nil, nil, nil, widget.NewLabel("date"), widget.NewLabel("name"))
		},
		func(id widget.ListItemID, obj fyne.CanvasObject) {
			if id >= len(p.entries) {
				return
			}
			e := p.entries[id]
			row := obj.(*fyne.Container)
			row.Objects[0].(*widget.Label).SetText(e.Name)
			row.Objects[1].(*widget.Label).SetText(library.FormatDate(e.Date, time.Now()))
		},
	)

	p.nameEntry = widget.NewEntry()
	p.nameEntry.SetPlaceHolder("Name")
	p.libraryList.OnSelected = func(id widget.ListItemID) {
		if id < len(p.entries) {
			p.selected = p.entries[id].ID
			p.nameEntry.SetText(p.entries[id].Name)
		}
	}

	withSelected := func(fn func(id int64) error) func() {
		return func() {
			if p.selected == 0 {
				return
			}
			if err := fn(p.selected); err != nil {
				p.showError(err)
			}
		}
	}

	load := widget.NewButton("Load", withSelected(p.LoadEntry))
	remove := widget.NewButton("Delete", withSelected(func(id int64) error {
		dialog.ShowConfirm("Delete shader", "Delete the selected shader?", func(ok bool) {
			if !ok {
				return
			}
			if err := p.DeleteEntry(id); err != nil {
				p.showError(err)
			}
			p.selected = 0
			p.libraryList.UnselectAll()
		}, p.win)
		return nil
	}))
	rename := widget.NewButton("Rename", withSelected(func(id int64) error {
		return p.RenameEntry(id, p.nameEntry.Text)
	}))
	create := widget.NewButton("New", func() {
		if err := p.NewEntry(); err != nil {
			p.showError(err)
		}
	})
	edit := widget.NewButton("Open in editor", func() {
		if err := openPath(p.opts.ShaderPath); err != nil {
			p.showError(fmt.Errorf("open %s: %w", p.opts.ShaderPath, err))
		}
	})
	refresh := widget.NewButton("Refresh", p.refreshLibrary)

	controls := container.NewVBox(
		container.NewBorder(nil, nil, nil, rename, p.nameEntry),
		container.NewHBox(load, create, remove, edit, refresh),
	)
	return container.NewBorder(nil, controls, nil, nil, p.libraryList)
}
