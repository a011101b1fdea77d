package panel

import (
	"fmt"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/widget"
)

func (p *Panel) captureTab() fyne.CanvasObject {
	c := &p.cfg.Capture

	dir := widget.NewEntry()
	dir.SetText(c.Dir)
	dir.OnChanged = func(s string) {
		p.cfg.Capture.Dir = s
		p.changed()
	}

	fps := intEntry(c.FPS, func(v int) error {
		if v <= 0 {
			return fmt.Errorf("fps must be positive")
		}
		p.cfg.Capture.FPS = v
		p.changed()
		return nil
	})
	duration := floatEntry(c.Duration, func(v float64) error {
		if v < 0 {
			return fmt.Errorf("duration must not be negative")
		}
		p.cfg.Capture.Duration = v
		p.changed()
		return nil
	})
	startAt := floatEntry(c.StartAt, func(v float64) error {
		if v < 0 {
			return fmt.Errorf("start time must not be negative")
		}
		p.cfg.Capture.StartAt = v
		p.changed()
		return nil
	})
	autoStop := widget.NewCheck("Stop after duration", nil)
	autoStop.SetChecked(c.AutoStop)
	autoStop.OnChanged = func(on bool) {
		p.cfg.Capture.AutoStop = on
		p.changed()
	}

	form := widget.NewForm(
		widget.NewFormItem("Output folder", dir),
		widget.NewFormItem("Frames per second", fps),
		widget.NewFormItem("Duration (s)", duration),
		widget.NewFormItem("", autoStop),
		widget.NewFormItem("Start at (s)", startAt),
	)
	hint := widget.NewLabel("Press C in the viewer to start or stop capturing.")
	return container.NewVBox(form, hint)
}
