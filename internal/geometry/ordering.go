package geometry

import "github.com/inamate/cellengine/backend-go/internal/geom"

// maxOrderingWork bounds the 2-opt improvement: at most maxOrderingWork/n²
// passes are made over n lines.
const maxOrderingWork = 10000

// NewOrdered builds one closed boundary from unordered strokes.
//
// Lines are chained greedily by nearest end point starting from the first
// line, the chain is improved with 2-opt swaps, lines attached tail first are
// reversed, pressures are recomputed and small gaps between consecutive
// lines are snapped shut. scale is the current view scale and sizes the snap
// tolerance.
func NewOrdered(lines []Line, scale float64) *Geometry {
	if len(lines) == 0 {
		return Empty()
	}
	ordered := []Line{lines[0]}
	if len(lines) > 1 {
		ordered = orderLines(lines)
	}
	for i, l := range ordered {
		ordered[i] = l.AutoPressure()
	}
	return newGeometry(SnapLines(ordered, scale))
}

// orderLines chains lines head to tail. isFirst[i] records whether chain
// line i was attached by its first point.
func orderLines(lines []Line) []Line {
	remaining := make([]Line, len(lines)-1)
	copy(remaining, lines[1:])
	chain := []Line{lines[0]}
	isFirst := []bool{true}
	tail := lines[0].LastPoint()

	for len(remaining) > 0 {
		minIndex, minFirst, minD := 0, true, -1.0
		for i, l := range remaining {
			fd := l.FirstPoint().DistanceSquared(tail)
			ld := l.LastPoint().DistanceSquared(tail)
			if fd < ld {
				if minD < 0 || fd < minD {
					minIndex, minFirst, minD = i, true, fd
				}
			} else if minD < 0 || ld < minD {
				minIndex, minFirst, minD = i, false, ld
			}
		}
		next := remaining[minIndex]
		remaining = append(remaining[:minIndex], remaining[minIndex+1:]...)
		chain = append(chain, next)
		isFirst = append(isFirst, minFirst)
		if minFirst {
			tail = next.LastPoint()
		} else {
			tail = next.FirstPoint()
		}
	}

	passes := improveOrder(chain, isFirst)
	Logger().Debug("ordered lines", "count", len(chain), "passes", passes)

	for i, l := range chain {
		if !isFirst[i] {
			chain[i] = l.Reversed()
		}
	}
	return chain
}

// improveOrder swaps chain entries while that shortens the total distance
// between consecutive line ends. It returns the number of passes made.
func improveOrder(chain []Line, isFirst []bool) int {
	n := len(chain)
	head := func(i int) geom.Point {
		if isFirst[i] {
			return chain[i].FirstPoint()
		}
		return chain[i].LastPoint()
	}
	tail := func(i int) geom.Point {
		if isFirst[i] {
			return chain[i].LastPoint()
		}
		return chain[i].FirstPoint()
	}

	maxPasses := maxOrderingWork / (n * n)
	passes := 0
	for passes < maxPasses {
		passes++
		changed := false
		for ai0 := 0; ai0 < n-1; ai0++ {
			for bi0 := ai0 + 1; bi0 < n; bi0++ {
				ai1, bi1 := ai0+1, (bi0+1)%n
				a0, a1 := tail(ai0), head(ai1)
				b0, b1 := tail(bi0), head(bi1)
				if a0.Distance(a1)+b0.Distance(b1) > a0.Distance(b0)+a1.Distance(b1) {
					aLine, aFirst := chain[ai1], isFirst[ai1]
					chain[ai1], isFirst[ai1] = chain[bi0], !isFirst[bi0]
					chain[bi0], isFirst[bi0] = aLine, !aFirst
					changed = true
				}
			}
		}
		if !changed {
			break
		}
	}
	return passes
}

// SnapLines closes small gaps between consecutive lines of a cycle by
// pulling the start of each line onto the end of the previous one. The
// correction halves at each following control and never reaches the far end
// of the line. The first line is snapped to the end of the last.
func SnapLines(lines []Line, scale float64) []Line {
	if len(lines) == 0 {
		return nil
	}
	if scale <= 0 {
		scale = 1
	}
	tl := tol()
	vd := tl.SnapDistance * tl.SnapDistance / scale

	prev := lines[len(lines)-1]
	snapped := make([]Line, len(lines))
	for i, l := range lines {
		lp, fp := prev.LastPoint(), l.FirstPoint()
		ratio := max(tl.MinSnapRatio, min(1, l.PointsLength()/tl.VertexLineLength))
		if lp.DistanceSquared(fp) < vd*ratio {
			dp := fp.Sub(lp)
			cs := l.Controls()
			dd := 1.0
			for j := range cs {
				if j == 0 {
					cs[j].Point = lp
				} else {
					cs[j].Point = cs[j].Point.Sub(dp.Mul(dd))
				}
				dd *= 0.5
				if dd <= tl.MinSnapRatio || j >= len(cs)-2 {
					break
				}
			}
			snapped[i] = Line{controls: cs}
		} else {
			snapped[i] = l
		}
		prev = l
	}
	return snapped
}
