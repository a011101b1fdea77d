package panel

import (
	"fmt"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/widget"

	"shadergrid/internal/params"
)

// refreshParams rebuilds the parameter list from the parsed shader.
func (p *Panel) refreshParams() {
	if p.paramsBox == nil {
		return
	}
	p.paramsBox.RemoveAll()
	if p.table.Len() == 0 {
		p.paramsBox.Add(widget.NewLabel("The shader declares no parameters."))
	}
	for _, spec := range p.table.All() {
		p.paramsBox.Add(p.paramRow(spec))
		p.paramsBox.Add(widget.NewSeparator())
	}
	p.paramsBox.Refresh()
}

func (p *Panel) paramRow(spec *params.Spec) fyne.CanvasObject {
	name := spec.Name
	title := widget.NewLabelWithStyle(
		fmt.Sprintf("%s  [%s, %s]", name, formatFloat(spec.Min), formatFloat(spec.Max)),
		fyne.TextAlignLeading, fyne.TextStyle{Bold: true})

	valueLabel := widget.NewLabel(formatFloat(p.paramValue(name)))
	slider := widget.NewSlider(spec.Min, spec.Max)
	slider.Step = spec.Step
	slider.SetValue(p.paramValue(name))
	slider.OnChanged = func(v float64) {
		if v, ok := p.SetParam(name, v); ok {
			valueLabel.SetText(formatFloat(v))
		}
	}
	reset := widget.NewButton("Reset", func() {
		p.ResetParam(name)
		slider.SetValue(spec.Default)
		valueLabel.SetText(formatFloat(spec.Default))
	})

	_, active := p.cfg.Variations[name]
	vary := widget.NewCheck("Vary per cell", nil)
	vary.SetChecked(active)
	vary.OnChanged = func(on bool) {
		p.SetVariation(name, on)
		p.refreshParams()
	}

	row := container.NewVBox(
		title,
		container.NewBorder(nil, nil, nil, container.NewHBox(valueLabel, reset), slider),
		vary,
	)
	if !active {
		return row
	}

	fill := widget.NewButton("Fill with value", func() {
		p.FillVariation(name)
		p.refreshParams()
	})
	random := widget.NewButton("Randomize", func() {
		p.RandomizeVariation(name)
		p.refreshParams()
	})
	row.Add(cellEntries(p.size(), p.cfg.Variations[name], func(index int, v float64) {
		p.SetCellParam(name, index, v)
	}))
	row.Add(container.NewHBox(fill, random))
	return row
}
