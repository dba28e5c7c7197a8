// Package cell implements the tree of shapes drawn in a cut. A Cell owns a
// geometry, a material and its children; hit testing, containment and
// traversal all work on the tree.
//
// A tree must not be mutated while it is traversed. Callers serialize access
// to a tree; geometries are immutable and may be shared freely.
package cell

import (
	"github.com/google/uuid"

	"github.com/inamate/cellengine/backend-go/internal/geom"
	"github.com/inamate/cellengine/backend-go/internal/geometry"
)

// Cell is a node of the shape tree. The same child may be reachable from
// more than one parent after some copy and undo flows; traversals account
// for that.
type Cell struct {
	ID         uuid.UUID
	Children   []*Cell
	Geometry   *geometry.Geometry
	Material   Material
	Locked     bool
	Hidden     bool
	EditHidden bool
}

// New returns a cell with a fresh id.
func New(g *geometry.Geometry, m Material, children ...*Cell) *Cell {
	if g == nil {
		g = geometry.Empty()
	}
	return &Cell{
		ID:       uuid.New(),
		Children: children,
		Geometry: g,
		Material: m,
	}
}

// NewRoot returns an empty cell to hold the cells of a cut.
func NewRoot() *Cell {
	return New(geometry.Empty(), Material{ID: uuid.Nil, Type: MaterialNormal, Opacity: 1})
}

func (c *Cell) Lines() []geometry.Line {
	return c.Geometry.Lines()
}

func (c *Cell) path() geometry.Path {
	return c.Geometry.Path()
}

// IsEmpty reports whether neither the cell nor any descendant has lines.
func (c *Cell) IsEmpty() bool {
	for _, child := range c.Children {
		if !child.IsEmpty() {
			return false
		}
	}
	return c.Geometry.IsEmpty()
}

// IsEmptyGeometry reports whether the cell itself has no lines.
func (c *Cell) IsEmptyGeometry() bool {
	return c.Geometry.IsEmpty()
}

// ImageBounds is the path bounds grown by the line width, or the zero rect
// for an empty path.
func (c *Cell) ImageBounds() geom.Rect {
	p := c.path()
	if p.IsEmpty() {
		return geom.Rect{}
	}
	return p.Bounds().Inset(-c.Material.LineWidth)
}

// IsEditable reports whether the cell takes part in editing queries.
func (c *Cell) IsEditable() bool {
	return !c.Locked && !c.Hidden && !c.EditHidden
}

// IsSnaped reports whether any line end of c coincides with a line end of other.
func (c *Cell) IsSnaped(other *Cell) bool {
	for _, l := range c.Lines() {
		for _, ol := range other.Lines() {
			if l.FirstPoint() == ol.FirstPoint() || l.FirstPoint() == ol.LastPoint() ||
				l.LastPoint() == ol.FirstPoint() || l.LastPoint() == ol.LastPoint() {
				return true
			}
		}
	}
	return false
}

// MaxDistance returns the distance from p to the farthest control of the cell.
func (c *Cell) MaxDistance(p geom.Point) float64 {
	return c.Geometry.MaxDistance(p)
}
