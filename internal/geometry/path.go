package geometry

import (
	"math"

	"github.com/inamate/cellengine/backend-go/internal/geom"
)

// PathOp is the kind of a path element.
type PathOp uint8

const (
	MoveTo PathOp = iota
	LineTo
	CubicTo
	ClosePath
)

func (op PathOp) String() string {
	switch op {
	case MoveTo:
		return "M"
	case LineTo:
		return "L"
	case CubicTo:
		return "C"
	default:
		return "Z"
	}
}

// PathElement is one drawing step. MoveTo and LineTo use Points[0]; CubicTo
// uses all three points (handle, handle, end).
type PathElement struct {
	Op     PathOp
	Points [3]geom.Point
}

// Path is the closed boundary derived from an ordered list of lines. It keeps
// the drawing elements and a flattened polygon for containment queries.
type Path struct {
	elements []PathElement
	polygon  []geom.Point
	bounds   geom.Rect
}

// NewPath builds a closed boundary through lines in order. Consecutive lines
// whose end points are farther apart than length are joined with a straight
// segment; smaller gaps are bridged by the next curve directly.
func NewPath(lines []Line, length float64) Path {
	if len(lines) == 0 {
		return Path{}
	}
	segments := tol().FlattenSegments
	var p Path
	for i, l := range lines {
		first := l.FirstPoint()
		if i == 0 {
			p.elements = append(p.elements, PathElement{Op: MoveTo, Points: [3]geom.Point{first}})
			p.polygon = append(p.polygon, first)
		} else if lines[i-1].LastPoint().Distance(first) > length {
			p.elements = append(p.elements, PathElement{Op: LineTo, Points: [3]geom.Point{first}})
			p.polygon = append(p.polygon, first)
		}
		for _, b := range l.Beziers() {
			c0, c1 := b.Handles()
			p.elements = append(p.elements, PathElement{Op: CubicTo, Points: [3]geom.Point{c0, c1, b.End()}})
			p.polygon = append(p.polygon, b.Flatten(segments)[1:]...)
		}
	}
	p.elements = append(p.elements, PathElement{Op: ClosePath})
	p.bounds = geom.RectFromPoints(p.polygon...)
	return p
}

// IsEmpty reports whether the path has no elements.
func (p Path) IsEmpty() bool {
	return len(p.elements) == 0
}

// Elements returns the drawing elements in order.
func (p Path) Elements() []PathElement {
	return p.elements
}

// Polygon returns the flattened boundary. The closing edge is implicit.
func (p Path) Polygon() []geom.Point {
	return p.polygon
}

// Bounds returns the bounding box of the flattened boundary.
func (p Path) Bounds() geom.Rect {
	return p.bounds
}

// Contains reports whether pt is inside the boundary using the nonzero winding rule.
func (p Path) Contains(pt geom.Point) bool {
	if len(p.polygon) < 3 || !p.bounds.Contains(pt) {
		return false
	}
	winding := 0
	n := len(p.polygon)
	for i := range n {
		a, b := p.polygon[i], p.polygon[(i+1)%n]
		if a.Y <= pt.Y {
			if b.Y > pt.Y && b.Sub(a).Cross(pt.Sub(a)) > 0 {
				winding++
			}
		} else if b.Y <= pt.Y && b.Sub(a).Cross(pt.Sub(a)) < 0 {
			winding--
		}
	}
	return winding != 0
}

// Area returns the absolute area enclosed by the flattened boundary.
func (p Path) Area() float64 {
	n := len(p.polygon)
	if n < 3 {
		return 0
	}
	var sum float64
	for i := range n {
		sum += p.polygon[i].Cross(p.polygon[(i+1)%n])
	}
	return math.Abs(sum) / 2
}
