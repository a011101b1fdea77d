// Package grid partitions a canvas into a rows×cols tiling.
//
// Geometry follows OpenGL: row 0 is at the bottom of the canvas and row
// indices grow upward. The linear cell index is always row*cols+col in that
// bottom-up numbering, no matter which order a UI lists cells in.
package grid

import (
	"fmt"
	"image"
)

// Size is a grid dimension pair.
type Size struct {
	Cols int
	Rows int
}

// Cells returns the number of cells.
func (s Size) Cells() int { return s.Cols * s.Rows }

// Index returns the linear index of (row, col).
func (s Size) Index(row, col int) int { return row*s.Cols + col }

// Validate rejects grids with fewer than one row or column.
func (s Size) Validate() error {
	if s.Cols < 1 || s.Rows < 1 {
		return fmt.Errorf("grid must be at least 1x1, got %dx%d", s.Cols, s.Rows)
	}
	return nil
}

func (s Size) String() string { return fmt.Sprintf("%d×%d", s.Cols, s.Rows) }

// Cell is one tile of the grid.
type Cell struct {
	Row, Col int
	Index    int
	// Rect is in framebuffer pixels with a bottom-left origin.
	Rect image.Rectangle
}

// Layout returns every cell of s over a width×height canvas in row-major
// geometric order (row 0 first). Boundaries are floor(i*W/cols) so rounding
// is absorbed at each edge and the rectangles tile the canvas exactly.
func Layout(width, height int, s Size) []Cell {
	if s.Cols < 1 || s.Rows < 1 || width < 0 || height < 0 {
		return nil
	}
	cells := make([]Cell, 0, s.Cells())
	for row := 0; row < s.Rows; row++ {
		y0 := edge(row, height, s.Rows)
		y1 := edge(row+1, height, s.Rows)
		for col := 0; col < s.Cols; col++ {
			x0 := edge(col, width, s.Cols)
			x1 := edge(col+1, width, s.Cols)
			cells = append(cells, Cell{
				Row:   row,
				Col:   col,
				Index: s.Index(row, col),
				Rect:  image.Rect(x0, y0, x1, y1),
			})
		}
	}
	return cells
}

func edge(i, extent, n int) int {
	return i * extent / n
}

// DisplayOrder lists cells the way a settings grid shows them: top row
// (rows-1) first, then downward, columns left to right. Only Row, Col and
// Index are set.
func DisplayOrder(s Size) []Cell {
	if s.Cols < 1 || s.Rows < 1 {
		return nil
	}
	cells := make([]Cell, 0, s.Cells())
	for row := s.Rows - 1; row >= 0; row-- {
		for col := 0; col < s.Cols; col++ {
			cells = append(cells, Cell{Row: row, Col: col, Index: s.Index(row, col)})
		}
	}
	return cells
}
