package panel

import (
	"fmt"
	"math/rand/v2"
	"strconv"
	"strings"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/widget"

	"shadergrid/internal/grid"
	"shadergrid/internal/params"
)

// resizeValues keeps existing entries by index and pads with fill.
func resizeValues(vals []float64, n int, fill float64) []float64 {
	out := make([]float64, n)
	for i := range out {
		if i < len(vals) {
			out[i] = vals[i]
		} else {
			out[i] = fill
		}
	}
	return out
}

func filledValues(n int, v float64) []float64 {
	return resizeValues(nil, n, v)
}

func randomValues(n int, spec *params.Spec, rng *rand.Rand) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = spec.Min + rng.Float64()*(spec.Max-spec.Min)
	}
	return out
}

func parseFloat(s string) (float64, error) {
	return strconv.ParseFloat(strings.TrimSpace(s), 64)
}

func parseInt(s string) (int, error) {
	return strconv.Atoi(strings.TrimSpace(s))
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// cellCaption names a cell the way it appears on screen: row 1 is the top.
func cellCaption(size grid.Size, c grid.Cell) string {
	return fmt.Sprintf("r%d c%d", size.Rows-c.Row, c.Col+1)
}

// cellEntries lays out one entry per cell, top row first, so the form reads
// like the grid on screen. onChange receives the cell index and parsed value.
func cellEntries(size grid.Size, values []float64, onChange func(index int, v float64)) fyne.CanvasObject {
	objects := make([]fyne.CanvasObject, 0, size.Cells())
	for _, cell := range grid.DisplayOrder(size) {
		index := cell.Index
		entry := widget.NewEntry()
		entry.SetPlaceHolder(cellCaption(size, cell))
		if index < len(values) {
			entry.SetText(formatFloat(values[index]))
		}
		entry.Validator = func(s string) error {
			_, err := parseFloat(s)
			return err
		}
		entry.OnChanged = func(s string) {
			if v, err := parseFloat(s); err == nil {
				onChange(index, v)
			}
		}
		objects = append(objects, entry)
	}
	return container.NewGridWithColumns(size.Cols, objects...)
}
