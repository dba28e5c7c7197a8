package geometry

// Lines with different control counts are interpolated over their common
// prefix only; the remaining controls of the longer line are carried over
// unchanged. Shapes morph smoothly only when authors keep counts stable
// between keyframes. Geometries with different line counts follow the same
// rule per line index.

// LinearLine interpolates l0 towards l1.
func LinearLine(l0, l1 Line, t float64) Line {
	return interpolateControls(l0.controls, l1.controls, func(i int, c1, c2 Control) Control {
		return Control{
			Point:    c1.Point.Lerp(c2.Point, t),
			Pressure: c1.Pressure + (c2.Pressure-c1.Pressure)*t,
		}
	})
}

// FirstMonosplineLine interpolates l1 towards l2 in the first keyframe
// interval, with l3 as the following key.
func FirstMonosplineLine(l1, l2, l3 Line, ms Spline) Line {
	return MonosplineLine(l1, l1, l2, l3, ms)
}

// MonosplineLine interpolates l1 towards l2 with neighbors l0 and l3.
// Neighbor controls missing from l0 or l3 fall back to l1 and l2.
func MonosplineLine(l0, l1, l2, l3 Line, ms Spline) Line {
	return interpolateControls(l1.controls, l2.controls, func(i int, c1, c2 Control) Control {
		c0, c3 := c1, c2
		if i < len(l0.controls) {
			c0 = l0.controls[i]
		}
		if i < len(l3.controls) {
			c3 = l3.controls[i]
		}
		return Control{
			Point:    ms.Point(c0.Point, c1.Point, c2.Point, c3.Point),
			Pressure: max(0, min(1, ms.Value(c0.Pressure, c1.Pressure, c2.Pressure, c3.Pressure))),
		}
	})
}

// EndMonosplineLine interpolates l1 towards l2 in the last keyframe
// interval, with l0 as the preceding key.
func EndMonosplineLine(l0, l1, l2 Line, ms Spline) Line {
	return MonosplineLine(l0, l1, l2, l2, ms)
}

func interpolateControls(a, b []Control, fn func(i int, ca, cb Control) Control) Line {
	common := min(len(a), len(b))
	longer := a
	if len(b) > len(a) {
		longer = b
	}
	cs := make([]Control, len(longer))
	for i := range common {
		cs[i] = fn(i, a[i], b[i])
	}
	copy(cs[common:], longer[common:])
	return Line{controls: cs}
}

func interpolateLines(a, b []Line, fn func(i int, la, lb Line) Line) []Line {
	common := min(len(a), len(b))
	longer := a
	if len(b) > len(a) {
		longer = b
	}
	lines := make([]Line, len(longer))
	for i := range common {
		lines[i] = fn(i, a[i], b[i])
	}
	copy(lines[common:], longer[common:])
	return lines
}

// Linear interpolates f0 towards f1. The same instance passed twice is
// returned as is; an empty f0 yields an empty geometry.
func Linear(f0, f1 *Geometry, t float64) *Geometry {
	if f0 == f1 {
		return f0
	}
	if f0.IsEmpty() {
		return Empty()
	}
	lines := interpolateLines(f0.lines, f1.Lines(), func(_ int, l0, l1 Line) Line {
		return LinearLine(l0, l1, t)
	})
	return newGeometry(lines).ConnectedWithOld(f0)
}

// FirstMonospline interpolates f1 towards f2 in the first keyframe interval.
func FirstMonospline(f1, f2, f3 *Geometry, ms Spline) *Geometry {
	return Monospline(f1, f1, f2, f3, ms)
}

// Monospline interpolates f1 towards f2 with neighbor keys f0 and f3.
// Lines missing from a neighbor fall back to the nearer interpolated key.
func Monospline(f0, f1, f2, f3 *Geometry, ms Spline) *Geometry {
	if f1 == f2 {
		return f1
	}
	if f1.IsEmpty() {
		return Empty()
	}
	lines := interpolateLines(f1.lines, f2.Lines(), func(i int, l1, l2 Line) Line {
		l0, l3 := l1, l2
		if i < f0.LineCount() {
			l0 = f0.lines[i]
		}
		if i < f3.LineCount() {
			l3 = f3.lines[i]
		}
		return MonosplineLine(l0, l1, l2, l3, ms)
	})
	return newGeometry(lines).ConnectedWithOld(f1)
}

// EndMonospline interpolates f1 towards f2 in the last keyframe interval.
func EndMonospline(f0, f1, f2 *Geometry, ms Spline) *Geometry {
	return Monospline(f0, f1, f2, f2, ms)
}
