package cell

import (
	"slices"

	"github.com/inamate/cellengine/backend-go/internal/geom"
	"github.com/inamate/cellengine/backend-go/internal/geometry"
)

// Contains reports whether p is inside the visible region of the cell.
func (c *Cell) Contains(p geom.Point) bool {
	return !c.Hidden && !c.EditHidden && c.ImageBounds().Contains(p) && c.path().Contains(p)
}

// AtPoint returns the front-most unlocked cell containing p, searching
// later children first. Cells with an empty path pass the search through to
// their children. Locked cells are never returned but their children are.
func (c *Cell) AtPoint(p geom.Point) *Cell {
	empty := c.path().IsEmpty()
	contains := c.Contains(p)
	if !contains && !empty {
		return nil
	}
	for _, child := range slices.Backward(c.Children) {
		if cell := child.AtPoint(p); cell != nil {
			return cell
		}
	}
	if !c.Locked && !empty && contains {
		return c
	}
	return nil
}

// CellsAt returns every cell containing p, front-most first.
func (c *Cell) CellsAt(p geom.Point, usingLock bool) []*Cell {
	var cells []*Cell
	c.cellsAt(p, usingLock, &cells)
	return cells
}

func (c *Cell) cellsAt(p geom.Point, usingLock bool, cells *[]*Cell) {
	empty := c.path().IsEmpty()
	contains := c.Contains(p)
	if !contains && !empty {
		return
	}
	for _, child := range slices.Backward(c.Children) {
		child.cellsAt(p, usingLock, cells)
	}
	if (!usingLock || !c.Locked) && !empty && contains && !slices.Contains(*cells, c) {
		*cells = append(*cells, c)
	}
}

// CellsAtLine returns the front-most cells under the first point of line
// and under the midpoint of each of its curves. Without duplicate, each cell
// is listed once.
func (c *Cell) CellsAtLine(line geometry.Line, duplicate, usingLock bool) []*Cell {
	var cells []*Cell
	add := func(matches func(*Cell) bool) {
		for cell := range c.Cells(true, usingLock) {
			if matches(cell) {
				if duplicate || !slices.Contains(cells, cell) {
					cells = append(cells, cell)
				}
				return
			}
		}
	}
	fp := line.FirstPoint()
	add(func(cell *Cell) bool { return cell.Contains(fp) })
	for _, b := range line.Beziers() {
		b0, b1 := b.MidSplit()
		add(func(cell *Cell) bool { return cell.Contains(b0.End()) || cell.Contains(b1.End()) })
	}
	return cells
}

// IntersectsCells returns the cells touched by r, front-most first.
func (c *Cell) IntersectsCells(r geom.Rect) []*Cell {
	var cells []*Cell
	c.intersectsCells(r, &cells)
	return cells
}

func (c *Cell) intersectsCells(r geom.Rect, cells *[]*Cell) {
	if !c.ContainsRect(r) && !c.path().IsEmpty() {
		return
	}
	for _, child := range slices.Backward(c.Children) {
		child.intersectsCells(r, cells)
	}
	if !c.Locked && !c.path().IsEmpty() && c.IntersectsRect(r) && !slices.Contains(*cells, c) {
		*cells = append(*cells, c)
	}
}
