package cell

import (
	"github.com/inamate/cellengine/backend-go/internal/geom"
	"github.com/inamate/cellengine/backend-go/internal/geometry"
)

// ContainsCell reports whether other lies entirely inside c. Any crossing
// between the boundaries disqualifies containment; touching boundaries do
// not. Every line end and curve midpoint of other must be inside c.
func (c *Cell) ContainsCell(other *Cell) bool {
	if c.path().IsEmpty() || other.path().IsEmpty() || !c.IsEditable() || !other.IsEditable() {
		return false
	}
	if !c.ImageBounds().ContainsRect(other.ImageBounds()) {
		return false
	}
	lines, otherLines := c.Lines(), other.Lines()
	for _, l := range lines {
		for _, ol := range otherLines {
			if l.Intersects(ol) {
				return false
			}
		}
	}
	for _, ol := range otherLines {
		if !c.Contains(ol.FirstPoint()) || !c.Contains(ol.LastPoint()) {
			return false
		}
		for _, b := range ol.Beziers() {
			if !c.Contains(b.Position(0.5)) {
				return false
			}
		}
	}
	return true
}

// ContainsRect reports whether r overlaps the editable region of c, either
// with a corner inside the cell or through a crossing line.
func (c *Cell) ContainsRect(r geom.Rect) bool {
	if !c.IsEditable() || !c.ImageBounds().Intersects(r) {
		return false
	}
	for _, p := range r.Corners() {
		if c.Contains(p) {
			return true
		}
	}
	return c.IntersectsRect(r)
}

// Intersects reports whether the regions of c and other overlap: a line of
// one crosses a line of the other, or a line end of one is inside the other.
// With usingLock set, cells that are not editable never intersect.
func (c *Cell) Intersects(other *Cell, usingLock bool) bool {
	if c.path().IsEmpty() || other.path().IsEmpty() {
		return false
	}
	if usingLock && (!c.IsEditable() || !other.IsEditable()) {
		return false
	}
	if !c.ImageBounds().Intersects(other.ImageBounds()) {
		return false
	}
	lines, otherLines := c.Lines(), other.Lines()
	for _, l := range lines {
		for _, ol := range otherLines {
			if l.Intersects(ol) {
				return true
			}
		}
	}
	for _, ol := range otherLines {
		if c.Contains(ol.FirstPoint()) || c.Contains(ol.LastPoint()) {
			return true
		}
	}
	for _, l := range lines {
		if other.Contains(l.FirstPoint()) || other.Contains(l.LastPoint()) {
			return true
		}
	}
	return false
}

// IntersectsLasso reports whether the lasso crosses a line of c or encloses
// one of its line ends.
func (c *Cell) IntersectsLasso(lasso geometry.Lasso) bool {
	if !c.IsEditable() || !c.ImageBounds().Intersects(lasso.Bounds()) {
		return false
	}
	lines := c.Lines()
	for _, l := range lines {
		if lasso.Intersects(l) {
			return true
		}
	}
	for _, l := range lines {
		if lasso.Contains(l.FirstPoint()) || lasso.Contains(l.LastPoint()) {
			return true
		}
	}
	return false
}

// IntersectsRect reports whether r has a corner inside the path or a line
// passes through r.
func (c *Cell) IntersectsRect(r geom.Rect) bool {
	if !c.ImageBounds().Intersects(r) {
		return false
	}
	if p := c.path(); !p.IsEmpty() {
		for _, corner := range r.Corners() {
			if p.Contains(corner) {
				return true
			}
		}
	}
	for _, l := range c.Lines() {
		if l.IntersectsRect(r) {
			return true
		}
	}
	return false
}

// IntersectsLines reports whether a line of c, or a joining segment of its
// closed path, passes through r.
func (c *Cell) IntersectsLines(r geom.Rect) bool {
	if !c.ImageBounds().Intersects(r) {
		return false
	}
	for _, l := range c.Lines() {
		if l.IntersectsRect(r) {
			return true
		}
	}
	return c.IntersectsClosePathLines(r)
}

// IntersectsClosePathLines reports whether a straight segment joining
// consecutive lines, the closing one included, crosses an edge of r.
func (c *Cell) IntersectsClosePathLines(r geom.Rect) bool {
	lines := c.Lines()
	if len(lines) == 0 {
		return false
	}
	corners := r.Corners()
	lp := lines[len(lines)-1].LastPoint()
	for _, l := range lines {
		fp := l.FirstPoint()
		for i := range corners {
			if geom.SegmentsIntersect(lp, fp, corners[i], corners[(i+1)%4]) {
				return true
			}
		}
		lp = l.LastPoint()
	}
	return false
}
