package geometry

import (
	"github.com/inamate/cellengine/backend-go/internal/geom"
)

// Lasso is a closed selection drawn as one or more lines.
type Lasso struct {
	lines []Line
	path  Path
}

// NewLasso closes lines into a selection region. The lines are used in the
// order given.
func NewLasso(lines ...Line) Lasso {
	ls := make([]Line, len(lines))
	copy(ls, lines)
	return Lasso{lines: ls, path: NewPath(ls, 0)}
}

func (l Lasso) Lines() []Line {
	return l.lines
}

func (l Lasso) Bounds() geom.Rect {
	return l.path.Bounds()
}

func (l Lasso) Contains(p geom.Point) bool {
	return l.path.Contains(p)
}

// Intersects reports whether line crosses the lasso boundary.
func (l Lasso) Intersects(line Line) bool {
	for _, ll := range l.lines {
		if ll.Intersects(line) {
			return true
		}
	}
	// The closing edge of the lasso is implicit.
	if n := len(l.lines); n > 0 {
		a, b := l.lines[n-1].LastPoint(), l.lines[0].FirstPoint()
		for _, bz := range line.Beziers() {
			if bz.IntersectsSegment(a, b) {
				return true
			}
		}
	}
	return false
}

// SplitIndexes returns the runs of line that lie outside the lasso. It
// returns nil when the line is entirely outside, and an empty slice when
// it is entirely inside.
func (l Lasso) SplitIndexes(line Line) []SplitIndex {
	if l.path.IsEmpty() || !l.Bounds().Intersects(line.Bounds()) {
		return nil
	}
	samples := tol().FlattenSegments
	type pos struct {
		index int
		t     float64
	}

	var runs []SplitIndex
	var start pos
	outside := !l.Contains(line.FirstPoint())
	anyInside := !outside
	for bi, b := range line.Beziers() {
		prevT := 0.0
		for s := 1; s <= samples; s++ {
			t := float64(s) / float64(samples)
			out := !l.Contains(b.Position(t))
			if out != outside {
				edge := l.boundaryT(b, prevT, t, outside)
				if outside {
					runs = append(runs, SplitIndex{StartIndex: start.index, StartT: start.t, EndIndex: bi, EndT: edge})
				} else {
					start = pos{index: bi, t: edge}
				}
				outside = out
				anyInside = anyInside || !out
			}
			prevT = t
		}
	}
	if !anyInside {
		return nil
	}
	if outside {
		runs = append(runs, SplitIndex{StartIndex: start.index, StartT: start.t, EndIndex: line.BezierCount() - 1, EndT: 1})
	}
	if runs == nil {
		runs = []SplitIndex{}
	}
	return runs
}

// boundaryT bisects [t0, t1] of b for the lasso boundary. fromOutside is the
// side of t0.
func (l Lasso) boundaryT(b Bezier, t0, t1 float64, fromOutside bool) float64 {
	for range tol().NearestRefineSteps {
		mid := (t0 + t1) / 2
		if !l.Contains(b.Position(mid)) == fromOutside {
			t0 = mid
		} else {
			t1 = mid
		}
	}
	return (t0 + t1) / 2
}
