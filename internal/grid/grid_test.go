package grid

import (
	"image"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIndex(t *testing.T) {
	s := Size{Cols: 3, Rows: 2}
	assert.Equal(t, 6, s.Cells())
	assert.Equal(t, 5, s.Index(1, 2))
}

func TestValidate(t *testing.T) {
	assert.NoError(t, Size{Cols: 1, Rows: 1}.Validate())
	assert.Error(t, Size{Cols: 0, Rows: 3}.Validate())
	assert.Error(t, Size{Cols: 2, Rows: -1}.Validate())
}

func TestLayoutBottomUp(t *testing.T) {
	cells := Layout(100, 60, Size{Cols: 2, Rows: 2})
	require.Len(t, cells, 4)

	assert.Equal(t, image.Rect(0, 0, 50, 30), cells[0].Rect)
	assert.Equal(t, image.Rect(50, 0, 100, 30), cells[1].Rect)
	assert.Equal(t, image.Rect(0, 30, 50, 60), cells[2].Rect)
	assert.Equal(t, 1, cells[2].Row)
	assert.Equal(t, 2, cells[2].Index)
}

func TestLayoutAbsorbsRounding(t *testing.T) {
	cells := Layout(10, 7, Size{Cols: 3, Rows: 3})
	widths := []int{cells[0].Rect.Dx(), cells[1].Rect.Dx(), cells[2].Rect.Dx()}
	assert.Equal(t, []int{3, 3, 4}, widths)
}

func TestLayoutTilesExactly(t *testing.T) {
	canvases := [][2]int{{1, 1}, {7, 3}, {1920, 1080}, {101, 37}, {5, 5}}
	grids := []Size{{1, 1}, {3, 3}, {7, 2}, {5, 9}, {13, 11}}

	for _, c := range canvases {
		for _, s := range grids {
			w, h := c[0], c[1]
			cells := Layout(w, h, s)
			require.Len(t, cells, s.Cells())

			area := 0
			rowWidth := make(map[int]int)
			colHeight := make(map[int]int)
			for i, a := range cells {
				assert.Equal(t, i, a.Index)
				area += a.Rect.Dx() * a.Rect.Dy()
				rowWidth[a.Row] += a.Rect.Dx()
				colHeight[a.Col] += a.Rect.Dy()
				assert.True(t, a.Rect.In(image.Rect(0, 0, w, h)) || a.Rect.Empty())
				for _, b := range cells[i+1:] {
					assert.True(t, a.Rect.Intersect(b.Rect).Empty(), "%v overlaps %v", a.Rect, b.Rect)
				}
			}
			assert.Equal(t, w*h, area, "canvas %dx%d grid %v", w, h, s)
			for _, got := range rowWidth {
				assert.Equal(t, w, got)
			}
			for _, got := range colHeight {
				assert.Equal(t, h, got)
			}
		}
	}
}

func TestDisplayOrderTopDown(t *testing.T) {
	order := DisplayOrder(Size{Cols: 2, Rows: 3})
	var idx []int
	for _, c := range order {
		idx = append(idx, c.Index)
	}
	assert.Equal(t, []int{4, 5, 2, 3, 0, 1}, idx)
	assert.Equal(t, 2, order[0].Row)
}

func TestLayoutRejectsEmptyGrid(t *testing.T) {
	assert.Nil(t, Layout(10, 10, Size{}))
	assert.Nil(t, DisplayOrder(Size{Cols: 1}))
}
