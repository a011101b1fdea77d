package panel

import (
	"fmt"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/widget"

	"shadergrid/internal/looptime"
)

var (
	loopModes   = []string{string(looptime.PingPong), string(looptime.Wrap)}
	offsetModes = []string{
		string(looptime.OffsetNone),
		string(looptime.OffsetRandom),
		string(looptime.OffsetSequential),
		string(looptime.OffsetManual),
	}
)

func intEntry(value int, apply func(int) error) *widget.Entry {
	entry := widget.NewEntry()
	entry.SetText(fmt.Sprint(value))
	entry.Validator = func(s string) error {
		_, err := parseInt(s)
		return err
	}
	entry.OnChanged = func(s string) {
		if v, err := parseInt(s); err == nil {
			if err := apply(v); err != nil {
				entry.SetValidationError(err)
			}
		}
	}
	return entry
}

func floatEntry(value float64, apply func(float64) error) *widget.Entry {
	entry := widget.NewEntry()
	entry.SetText(formatFloat(value))
	entry.Validator = func(s string) error {
		_, err := parseFloat(s)
		return err
	}
	entry.OnChanged = func(s string) {
		if v, err := parseFloat(s); err == nil {
			if err := apply(v); err != nil {
				entry.SetValidationError(err)
			}
		}
	}
	return entry
}

func (p *Panel) gridTab() fyne.CanvasObject {
	g := &p.cfg.Grid

	cols := intEntry(g.Cols, func(v int) error { return p.SetGridSize(v, p.cfg.Grid.Rows) })
	rows := intEntry(g.Rows, func(v int) error { return p.SetGridSize(p.cfg.Grid.Cols, v) })

	duration := floatEntry(g.LoopDuration, func(v float64) error {
		if !(v > 0) {
			return fmt.Errorf("loop duration must be positive")
		}
		p.cfg.Grid.LoopDuration = v
		p.changed()
		return nil
	})

	speedLabel := widget.NewLabel(formatFloat(g.PlaybackSpeed))
	speed := widget.NewSlider(0, 4)
	speed.Step = 0.05
	speed.SetValue(g.PlaybackSpeed)
	speed.OnChanged = func(v float64) {
		p.cfg.Grid.PlaybackSpeed = v
		speedLabel.SetText(formatFloat(v))
		p.changed()
	}

	loopMode := widget.NewSelect(loopModes, nil)
	loopMode.SetSelected(g.LoopMode)
	loopMode.OnChanged = func(s string) {
		p.cfg.Grid.LoopMode = s
		p.changed()
	}

	offsetMode := widget.NewSelect(offsetModes, nil)
	offsetMode.SetSelected(g.OffsetMode)
	offsetMode.OnChanged = func(s string) {
		if err := p.SetOffsetMode(looptime.OffsetMode(s)); err != nil {
			p.showError(err)
		}
	}

	width := intEntry(p.cfg.Window.Width, func(v int) error {
		if v <= 0 {
			return fmt.Errorf("width must be positive")
		}
		p.cfg.Window.Width = v
		p.changed()
		return nil
	})
	height := intEntry(p.cfg.Window.Height, func(v int) error {
		if v <= 0 {
			return fmt.Errorf("height must be positive")
		}
		p.cfg.Window.Height = v
		p.changed()
		return nil
	})

	form := widget.NewForm(
		widget.NewFormItem("Columns", cols),
		widget.NewFormItem("Rows", rows),
		widget.NewFormItem("Loop duration (s)", duration),
		widget.NewFormItem("Playback speed", container.NewBorder(nil, nil, nil, speedLabel, speed)),
		widget.NewFormItem("Loop mode", loopMode),
		widget.NewFormItem("Time offsets", offsetMode),
		widget.NewFormItem("Canvas width", width),
		widget.NewFormItem("Canvas height", height),
	)
	note := widget.NewLabel("Canvas size applies when the viewer restarts.")
	return container.NewVBox(form, note, p.offsetsBox)
}

// refreshOffsets shows the manual offset grid when manual mode is selected.
func (p *Panel) refreshOffsets() {
	if p.offsetsBox == nil {
		return
	}
	p.offsetsBox.RemoveAll()
	if p.cfg.Grid.OffsetMode == string(looptime.OffsetManual) {
		size := p.size()
		p.offsetsBox.Add(widget.NewLabelWithStyle("Manual offsets (s)", fyne.TextAlignLeading, fyne.TextStyle{Bold: true}))
		p.offsetsBox.Add(cellEntries(size, p.cfg.Grid.Offsets, func(index int, v float64) {
			p.SetCellOffset(index, v)
		}))
	}
	p.offsetsBox.Refresh()
}
