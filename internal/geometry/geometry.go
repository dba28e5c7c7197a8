package geometry

import (
	"encoding/json"
	"math"

	"github.com/inamate/cellengine/backend-go/internal/geom"
)

// Geometry is an ordered list of lines forming one region boundary, with the
// path derived from them. A Geometry is never modified after construction;
// every transform returns a new one, so instances can be shared freely.
type Geometry struct {
	lines []Line
	path  Path
}

// New returns a geometry over the given lines in order.
func New(lines ...Line) *Geometry {
	ls := make([]Line, len(lines))
	copy(ls, lines)
	return newGeometry(ls)
}

// Empty returns a geometry with no lines.
func Empty() *Geometry {
	return &Geometry{}
}

func newGeometry(lines []Line) *Geometry {
	return &Geometry{lines: lines, path: NewPath(lines, tol().PathJoinLength)}
}

// Lines returns a copy of the lines in order.
func (g *Geometry) Lines() []Line {
	if g == nil {
		return nil
	}
	ls := make([]Line, len(g.lines))
	copy(ls, g.lines)
	return ls
}

func (g *Geometry) LineCount() int {
	if g == nil {
		return 0
	}
	return len(g.lines)
}

func (g *Geometry) Line(i int) Line {
	return g.lines[i]
}

// Path returns the derived boundary.
func (g *Geometry) Path() Path {
	if g == nil {
		return Path{}
	}
	return g.path
}

// IsEmpty reports whether the geometry has no lines.
func (g *Geometry) IsEmpty() bool {
	return g == nil || len(g.lines) == 0
}

// Bounds returns the bounds of the derived path.
func (g *Geometry) Bounds() geom.Rect {
	return g.Path().Bounds()
}

// Equal reports whether both geometries have identical lines.
func (g *Geometry) Equal(o *Geometry) bool {
	if g.LineCount() != o.LineCount() {
		return false
	}
	for i := range g.LineCount() {
		if !g.lines[i].Equal(o.lines[i]) {
			return false
		}
	}
	return true
}

// ConnectedWithOld re-joins line ends that were joined in old but drifted
// apart in g, moving both ends to their midpoint. Only joints whose two lines
// are neighbors in both geometries are healed, so the closing joint is left
// alone when the line counts differ. It returns g itself when nothing needed
// healing.
func (g *Geometry) ConnectedWithOld(old *Geometry) *Geometry {
	if g.IsEmpty() || old.IsEmpty() {
		return g
	}
	var lines []Line
	current := func(i int) Line {
		if lines != nil {
			return lines[i]
		}
		return g.lines[i]
	}
	n, gn := len(old.lines), len(g.lines)
	for i, line := range old.lines {
		if i >= gn {
			break
		}
		pre := (i - 1 + gn) % gn
		if pre != (i-1+n)%n {
			continue
		}
		if old.lines[pre].LastPoint() != line.FirstPoint() {
			continue
		}
		preLine, curLine := current(pre), current(i)
		a, b := preLine.LastPoint(), curLine.FirstPoint()
		if a == b {
			continue
		}
		if lines == nil {
			lines = g.Lines()
		}
		m := a.Mid(b)
		last := preLine.Count() - 1
		lines[pre] = preLine.WithReplaced(Control{Point: m, Pressure: preLine.Control(last).Pressure}, last)
		curLine = lines[i]
		lines[i] = curLine.WithReplaced(Control{Point: m, Pressure: curLine.Control(0).Pressure}, 0)
	}
	if lines == nil {
		return g
	}
	return newGeometry(lines)
}

// Applying returns the geometry transformed by m.
func (g *Geometry) Applying(m geom.Matrix2D) *Geometry {
	lines := make([]Line, len(g.lines))
	for i, l := range g.lines {
		lines[i] = l.Applying(m)
	}
	return newGeometry(lines)
}

// WarpedWith drags the controls near editPoint by dp, fading out between
// minDistance and maxDistance, and keeps joined line ends joined.
func (g *Geometry) WarpedWith(dp, editPoint geom.Point, minDistance, maxDistance float64) *Geometry {
	lines := make([]Line, len(g.lines))
	for i, l := range g.lines {
		lines[i] = l.WarpedWith(dp, editPoint, minDistance, maxDistance)
	}
	return newGeometry(lines).ConnectedWithOld(g)
}

// NearestBezier identifies the curve of a geometry closest to a point.
type NearestBezier struct {
	LineIndex   int     `json:"lineIndex"`
	BezierIndex int     `json:"bezierIndex"`
	T           float64 `json:"t"`
	Distance    float64 `json:"distance"`
}

// NearestBezier returns the curve closest to p. It reports false for an empty geometry.
func (g *Geometry) NearestBezier(p geom.Point) (NearestBezier, bool) {
	if g.IsEmpty() {
		return NearestBezier{}, false
	}
	best := NearestBezier{Distance: math.Inf(1)}
	for li, l := range g.lines {
		for bi, b := range l.Beziers() {
			t := b.NearestT(p)
			if d := p.Distance(b.Position(t)); d < best.Distance {
				best = NearestBezier{LineIndex: li, BezierIndex: bi, T: t, Distance: d}
			}
		}
	}
	return best, true
}

// NearestPathLineIndex returns the index of the line whose joint to the
// next line is closest to p.
func (g *Geometry) NearestPathLineIndex(p geom.Point) int {
	minD, minIndex := math.Inf(1), 0
	for i, l := range g.lines {
		next := g.lines[(i+1)%len(g.lines)]
		if d := p.DistanceToSegment(l.LastPoint(), next.FirstPoint()); d < minD {
			minD, minIndex = d, i
		}
	}
	return minIndex
}

// LinesAt returns the lines at the given indexes.
func (g *Geometry) LinesAt(indexes []int) []Line {
	lines := make([]Line, len(indexes))
	for i, index := range indexes {
		lines[i] = g.lines[index]
	}
	return lines
}

// MaxDistance returns the distance from p to the farthest control.
func (g *Geometry) MaxDistance(p geom.Point) float64 {
	if g == nil {
		return 0
	}
	return MaxDistance(p, g.lines)
}

type geometryJSON struct {
	Lines []Line `json:"lines"`
}

func (g *Geometry) MarshalJSON() ([]byte, error) {
	lines := g.Lines()
	if lines == nil {
		lines = []Line{}
	}
	return json.Marshal(geometryJSON{Lines: lines})
}

func (g *Geometry) UnmarshalJSON(data []byte) error {
	var raw geometryJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	*g = *newGeometry(raw.Lines)
	return nil
}
