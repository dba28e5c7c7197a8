package geometry

import (
	"encoding/json"
	"errors"
	"fmt"
	"iter"
	"math"

	"github.com/inamate/cellengine/backend-go/internal/geom"
)

var (
	ErrInvalidIndex   = errors.New("invalid control index")
	ErrTooFewControls = errors.New("line needs at least two controls")
)

// Control is a point of a Line with the stroke pressure at that point.
type Control struct {
	Point    geom.Point `json:"point"`
	Pressure float64    `json:"pressure"`
}

// Line is an immutable sequence of at least two controls. The first and last
// controls are the end points; interior controls act as curve handles. Every
// edit returns a new Line.
//
// A line of two controls is one straight segment. A line of n > 2 controls is
// n-2 curves: curve i runs between the midpoints around control i+1 (the
// line's own end points at either end) and uses control i+1 as its handle.
type Line struct {
	controls []Control
}

// NewLine returns a line over a copy of controls. It panics when fewer than
// two controls are given; callers must validate stroke input first.
func NewLine(controls []Control) Line {
	if len(controls) < 2 {
		panic(fmt.Sprintf("geometry: line with %d controls", len(controls)))
	}
	cs := make([]Control, len(controls))
	copy(cs, controls)
	return Line{controls: cs}
}

// NewLineFromPoints returns a line through points with full pressure.
func NewLineFromPoints(points ...geom.Point) Line {
	cs := make([]Control, len(points))
	for i, p := range points {
		cs[i] = Control{Point: p, Pressure: 1}
	}
	return NewLine(cs)
}

// Controls returns a copy of the controls in order.
func (l Line) Controls() []Control {
	cs := make([]Control, len(l.controls))
	copy(cs, l.controls)
	return cs
}

func (l Line) Count() int {
	return len(l.controls)
}

func (l Line) Control(i int) Control {
	return l.controls[i]
}

func (l Line) FirstPoint() geom.Point {
	return l.controls[0].Point
}

func (l Line) LastPoint() geom.Point {
	return l.controls[len(l.controls)-1].Point
}

// Equal reports whether both lines have identical controls.
func (l Line) Equal(o Line) bool {
	if len(l.controls) != len(o.controls) {
		return false
	}
	for i, c := range l.controls {
		if c != o.controls[i] {
			return false
		}
	}
	return true
}

// BezierCount returns the number of curves the line is made of.
func (l Line) BezierCount() int {
	if len(l.controls) <= 2 {
		return 1
	}
	return len(l.controls) - 2
}

// Bezier returns curve i of the line.
func (l Line) Bezier(i int) Bezier {
	n := len(l.controls)
	if n == 2 {
		return StraightBezier(l.controls[0].Point, l.controls[1].Point)
	}
	handle := l.controls[i+1].Point
	start := l.controls[i].Point.Mid(handle)
	if i == 0 {
		start = l.controls[0].Point
	}
	end := handle.Mid(l.controls[i+2].Point)
	if i == n-3 {
		end = l.controls[n-1].Point
	}
	return QuadraticBezier(start, handle, end)
}

// Beziers iterates over the curves of the line with their index.
func (l Line) Beziers() iter.Seq2[int, Bezier] {
	return func(yield func(int, Bezier) bool) {
		for i := range l.BezierCount() {
			if !yield(i, l.Bezier(i)) {
				return
			}
		}
	}
}

// PointsLength returns the length of the control polygon.
func (l Line) PointsLength() float64 {
	var length float64
	for i := 1; i < len(l.controls); i++ {
		length += l.controls[i-1].Point.Distance(l.controls[i].Point)
	}
	return length
}

// Bounds returns the bounding box of the controls, which contains the curves.
func (l Line) Bounds() geom.Rect {
	points := make([]geom.Point, len(l.controls))
	for i, c := range l.controls {
		points[i] = c.Point
	}
	return geom.RectFromPoints(points...)
}

// Reversed returns the line with its controls in reverse order.
func (l Line) Reversed() Line {
	n := len(l.controls)
	cs := make([]Control, n)
	for i, c := range l.controls {
		cs[n-1-i] = c
	}
	return Line{controls: cs}
}

// WithReplaced returns the line with control i replaced by c.
func (l Line) WithReplaced(c Control, i int) Line {
	cs := l.Controls()
	cs[i] = c
	return Line{controls: cs}
}

// Splited returns the line with a new control inserted at index i, halfway
// between controls i-1 and i. Valid indexes are 1 through Count()-1.
func (l Line) Splited(i int) (Line, error) {
	if i < 1 || i >= len(l.controls) {
		return Line{}, fmt.Errorf("split at %d of %d: %w", i, len(l.controls), ErrInvalidIndex)
	}
	prev, next := l.controls[i-1], l.controls[i]
	c := Control{
		Point:    prev.Point.Mid(next.Point),
		Pressure: (prev.Pressure + next.Pressure) / 2,
	}
	cs := make([]Control, 0, len(l.controls)+1)
	cs = append(cs, l.controls[:i]...)
	cs = append(cs, c)
	cs = append(cs, l.controls[i:]...)
	return Line{controls: cs}, nil
}

// RemovedControl returns the line without control i. A two-control line
// cannot lose a control; the caller removes the whole line instead.
func (l Line) RemovedControl(i int) (Line, error) {
	if i < 0 || i >= len(l.controls) {
		return Line{}, fmt.Errorf("remove %d of %d: %w", i, len(l.controls), ErrInvalidIndex)
	}
	if len(l.controls) <= 2 {
		return Line{}, ErrTooFewControls
	}
	cs := make([]Control, 0, len(l.controls)-1)
	cs = append(cs, l.controls[:i]...)
	cs = append(cs, l.controls[i+1:]...)
	return Line{controls: cs}, nil
}

// SplitedRange returns the part of the line from curve startIndex at startT
// to curve endIndex at endT. Handles between the two cut points are kept.
func (l Line) SplitedRange(startIndex int, startT float64, endIndex int, endT float64) (Line, error) {
	count := l.BezierCount()
	if startIndex < 0 || endIndex >= count || startIndex > endIndex ||
		(startIndex == endIndex && startT > endT) {
		return Line{}, fmt.Errorf("range %d:%g-%d:%g of %d curves: %w",
			startIndex, startT, endIndex, endT, count, ErrInvalidIndex)
	}
	startT = max(0, min(1, startT))
	endT = max(0, min(1, endT))

	cs := []Control{{Point: l.Bezier(startIndex).Position(startT), Pressure: l.pressureAt(startIndex, startT)}}
	if len(l.controls) > 2 {
		for i := startIndex; i <= endIndex; i++ {
			if (i == startIndex && startT >= 1) || (i == endIndex && endT <= 0) {
				continue
			}
			cs = append(cs, l.controls[i+1])
		}
	}
	cs = append(cs, Control{Point: l.Bezier(endIndex).Position(endT), Pressure: l.pressureAt(endIndex, endT)})
	return Line{controls: cs}, nil
}

func (l Line) pressureAt(bezierIndex int, t float64) float64 {
	if len(l.controls) == 2 {
		return l.controls[0].Pressure + (l.controls[1].Pressure-l.controls[0].Pressure)*t
	}
	p0 := l.controls[bezierIndex+1].Pressure
	p1 := l.controls[min(bezierIndex+2, len(l.controls)-1)].Pressure
	return p0 + (p1-p0)*t
}

// AutoPressure returns the line with pressures derived from the position
// along the control polygon: full pressure in the middle, tapering to half
// at both ends.
func (l Line) AutoPressure() Line {
	total := l.PointsLength()
	cs := l.Controls()
	if total == 0 {
		for i := range cs {
			cs[i].Pressure = 1
		}
		return Line{controls: cs}
	}
	var walked float64
	for i := range cs {
		if i > 0 {
			walked += cs[i-1].Point.Distance(cs[i].Point)
		}
		cs[i].Pressure = max(0, min(1, 0.5+0.5*math.Sin(math.Pi*walked/total)))
	}
	return Line{controls: cs}
}

// Applying transforms every control point.
func (l Line) Applying(m geom.Matrix2D) Line {
	cs := l.Controls()
	for i := range cs {
		cs[i].Point = m.Apply(cs[i].Point)
	}
	return Line{controls: cs}
}

// WarpedWith moves controls near editPoint by dp. Controls within
// minDistance move fully, the effect fades out linearly until maxDistance.
func (l Line) WarpedWith(dp, editPoint geom.Point, minDistance, maxDistance float64) Line {
	cs := l.Controls()
	for i := range cs {
		ds := warpRatio(cs[i].Point.Distance(editPoint), minDistance, maxDistance)
		cs[i].Point = cs[i].Point.Add(dp.Mul(ds))
	}
	return Line{controls: cs}
}

func warpRatio(d, minDistance, maxDistance float64) float64 {
	switch {
	case d > maxDistance:
		return 0
	case d <= minDistance || maxDistance <= minDistance:
		return 1
	default:
		return 1 - (d-minDistance)/(maxDistance-minDistance)
	}
}

// Intersects reports whether any curve of l crosses any curve of o.
func (l Line) Intersects(o Line) bool {
	if !l.Bounds().Intersects(o.Bounds()) {
		return false
	}
	for _, b := range l.Beziers() {
		bb := b.Bounds()
		for _, ob := range o.Beziers() {
			if bb.Intersects(ob.Bounds()) && b.Intersects(ob) {
				return true
			}
		}
	}
	return false
}

// IntersectsRect reports whether the line passes through r.
func (l Line) IntersectsRect(r geom.Rect) bool {
	if !l.Bounds().Intersects(r) {
		return false
	}
	corners := r.Corners()
	for _, b := range l.Beziers() {
		if !b.Bounds().Intersects(r) {
			continue
		}
		if r.Contains(b.Start()) || r.Contains(b.End()) {
			return true
		}
		for i := range corners {
			if b.IntersectsSegment(corners[i], corners[(i+1)%4]) {
				return true
			}
		}
	}
	return false
}

// MaxDistance returns the distance from p to the farthest control of lines.
func MaxDistance(p geom.Point, lines []Line) float64 {
	var d float64
	for _, l := range lines {
		for _, c := range l.controls {
			d = max(d, c.Point.Distance(p))
		}
	}
	return d
}

type lineJSON struct {
	Controls []Control `json:"controls"`
}

func (l Line) MarshalJSON() ([]byte, error) {
	return json.Marshal(lineJSON{Controls: l.controls})
}

func (l *Line) UnmarshalJSON(data []byte) error {
	var raw lineJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	if len(raw.Controls) < 2 {
		return ErrTooFewControls
	}
	l.controls = raw.Controls
	return nil
}
