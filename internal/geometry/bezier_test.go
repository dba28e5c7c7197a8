package geometry

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/inamate/cellengine/backend-go/internal/geom"
)

func TestBezierPosition(t *testing.T) {
	b := StraightBezier(geom.Pt(0, 0), geom.Pt(10, 0))
	assert.Equal(t, geom.Pt(0, 0), b.Position(0))
	assert.Equal(t, geom.Pt(10, 0), b.Position(1))
	assert.InDelta(t, 5, b.Position(0.5).X, 1e-9)

	q := QuadraticBezier(geom.Pt(0, 0), geom.Pt(5, 10), geom.Pt(10, 0))
	mid := q.Position(0.5)
	assert.InDelta(t, 5, mid.X, 1e-9)
	assert.InDelta(t, 5, mid.Y, 1e-9)
}

func TestBezierSplit(t *testing.T) {
	b := QuadraticBezier(geom.Pt(0, 0), geom.Pt(5, 10), geom.Pt(10, 0))
	left, right := b.Split(0.25)
	assert.Equal(t, b.Start(), left.Start())
	assert.Equal(t, b.End(), right.End())
	assert.Equal(t, left.End(), right.Start())
	assert.True(t, left.End().ApproxEqual(b.Position(0.25), 1e-9))
	assert.True(t, left.Position(0.5).ApproxEqual(b.Position(0.125), 1e-9))
}

func TestBezierNearestT(t *testing.T) {
	b := StraightBezier(geom.Pt(0, 0), geom.Pt(10, 0))
	assert.InDelta(t, 0.3, b.NearestT(geom.Pt(3, 5)), 1e-3)
	assert.Equal(t, 0.0, b.NearestT(geom.Pt(-4, 1)))
	assert.Equal(t, 1.0, b.NearestT(geom.Pt(14, -1)))
	assert.InDelta(t, 5, b.Distance(geom.Pt(3, 5)), 1e-3)
}

func TestBezierIntersects(t *testing.T) {
	tests := []struct {
		name string
		a, b Bezier
		want bool
	}{
		{
			name: "crossing diagonals",
			a:    StraightBezier(geom.Pt(0, 0), geom.Pt(10, 10)),
			b:    StraightBezier(geom.Pt(0, 10), geom.Pt(10, 0)),
			want: true,
		},
		{
			name: "parallel",
			a:    StraightBezier(geom.Pt(0, 0), geom.Pt(10, 0)),
			b:    StraightBezier(geom.Pt(0, 5), geom.Pt(10, 5)),
			want: false,
		},
		{
			name: "joined end to end",
			a:    StraightBezier(geom.Pt(0, 0), geom.Pt(10, 0)),
			b:    StraightBezier(geom.Pt(10, 0), geom.Pt(10, 10)),
			want: false,
		},
		{
			name: "arch through line",
			a:    QuadraticBezier(geom.Pt(0, 0), geom.Pt(5, 10), geom.Pt(10, 0)),
			b:    StraightBezier(geom.Pt(0, 2), geom.Pt(10, 2)),
			want: true,
		},
		{
			name: "arch above line",
			a:    QuadraticBezier(geom.Pt(0, 4), geom.Pt(5, 10), geom.Pt(10, 4)),
			b:    StraightBezier(geom.Pt(0, 2), geom.Pt(10, 2)),
			want: false,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.a.Intersects(tt.b))
			assert.Equal(t, tt.want, tt.b.Intersects(tt.a))
		})
	}
}

func TestBezierIntersectsSegment(t *testing.T) {
	b := QuadraticBezier(geom.Pt(0, 0), geom.Pt(5, 10), geom.Pt(10, 0))
	assert.True(t, b.IntersectsSegment(geom.Pt(5, -1), geom.Pt(5, 20)))
	assert.False(t, b.IntersectsSegment(geom.Pt(20, -1), geom.Pt(20, 20)))
}

func TestBezierIntersectsSegmentContacts(t *testing.T) {
	b := StraightBezier(geom.Pt(0, 0), geom.Pt(10, 0))
	assert.True(t, b.IntersectsSegment(geom.Pt(2, 0), geom.Pt(8, 0)), "collinear overlap")
	assert.True(t, b.IntersectsSegment(geom.Pt(10, 0), geom.Pt(10, 5)), "end point contact")
	assert.True(t, b.IntersectsSegment(geom.Pt(4, 0), geom.Pt(4, 0)), "point on curve")
	assert.False(t, b.IntersectsSegment(geom.Pt(4, 1), geom.Pt(4, 3)))
}

func TestBezierBoundsAndLength(t *testing.T) {
	q := QuadraticBezier(geom.Pt(0, 0), geom.Pt(5, 10), geom.Pt(10, 0))
	r := q.Bounds()
	assert.InDelta(t, 0, r.X, 1e-9)
	assert.InDelta(t, 10, r.Width, 1e-9)
	assert.InDelta(t, 5, r.Height, 1e-9, "apex of the arch, not the handle")

	assert.InDelta(t, 10, StraightBezier(geom.Pt(0, 0), geom.Pt(6, 8)).Length(), 1e-6)
	assert.Greater(t, q.Length(), 10.0)
}

func TestBezierApplying(t *testing.T) {
	b := QuadraticBezier(geom.Pt(0, 0), geom.Pt(5, 10), geom.Pt(10, 0))
	m := geom.Translate(3, -2).Multiply(geom.Scale(2, 2))
	moved := b.Applying(m)
	for _, s := range []float64{0, 0.3, 0.5, 1} {
		assert.True(t, moved.Position(s).ApproxEqual(m.Apply(b.Position(s)), 1e-9), "t=%v", s)
	}
}
