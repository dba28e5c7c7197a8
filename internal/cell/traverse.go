package cell

import (
	"iter"
	"slices"

	"github.com/google/uuid"
)

// DepthFirstSearch calls fn for every (parent, child) edge below c in depth
// first order. With duplicate set, a cell reachable through several parents
// is visited once per edge; otherwise each cell is visited once, through the
// first edge that reaches it.
func (c *Cell) DepthFirstSearch(duplicate bool, fn func(parent, cell *Cell)) {
	if duplicate {
		c.dfsDuplicate(fn)
		return
	}
	visited := make(map[*Cell]struct{})
	c.dfs(visited, fn)
}

func (c *Cell) dfs(visited map[*Cell]struct{}, fn func(parent, cell *Cell)) {
	for _, child := range c.Children {
		if _, ok := visited[child]; ok {
			continue
		}
		visited[child] = struct{}{}
		fn(c, child)
		child.dfs(visited, fn)
	}
}

func (c *Cell) dfsDuplicate(fn func(parent, cell *Cell)) {
	for _, child := range c.Children {
		fn(c, child)
		child.dfsDuplicate(fn)
	}
}

// AllCells returns every distinct cell below c in depth first order.
func (c *Cell) AllCells() []*Cell {
	var cells []*Cell
	c.DepthFirstSearch(false, func(_, cell *Cell) {
		cells = append(cells, cell)
	})
	return cells
}

// Cells iterates over the cells below c, children before their parent.
// reversed visits later siblings first, which is front to back. With
// usingLock set, cells that are not editable are skipped but their children
// are still visited.
func (c *Cell) Cells(reversed, usingLock bool) iter.Seq[*Cell] {
	return func(yield func(*Cell) bool) {
		c.walk(reversed, usingLock, yield)
	}
}

func (c *Cell) walk(reversed, usingLock bool, yield func(*Cell) bool) bool {
	children := c.Children
	if reversed {
		children = slices.Clone(children)
		slices.Reverse(children)
	}
	for _, child := range children {
		if !child.walk(reversed, usingLock, yield) {
			return false
		}
		if usingLock && !child.IsEditable() {
			continue
		}
		if !yield(child) {
			return false
		}
	}
	return true
}

// ParentCells returns the parent of every edge that reaches cell. A cell
// shared by two parents yields both.
func (c *Cell) ParentCells(cell *Cell) []*Cell {
	var parents []*Cell
	c.DepthFirstSearch(true, func(parent, other *Cell) {
		if other == cell {
			parents = append(parents, parent)
		}
	})
	return parents
}

// ParentIndex locates a cell in the children of its parent.
type ParentIndex struct {
	Cell  *Cell
	Index int
}

// Parents returns every parent of cell with the child index of cell in it.
func (c *Cell) Parents(cell *Cell) []ParentIndex {
	var parents []ParentIndex
	c.DepthFirstSearch(true, func(parent, other *Cell) {
		if other == cell {
			parents = append(parents, ParentIndex{Cell: parent, Index: slices.Index(parent.Children, other)})
		}
	})
	return parents
}

// Find returns the first cell below c with the given id.
func (c *Cell) Find(id uuid.UUID) *Cell {
	for cell := range c.Cells(false, false) {
		if cell.ID == id {
			return cell
		}
	}
	return nil
}
