package cell

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/inamate/cellengine/backend-go/internal/geom"
	"github.com/inamate/cellengine/backend-go/internal/geometry"
)

func polygon(points ...geom.Point) *geometry.Geometry {
	lines := make([]geometry.Line, len(points))
	for i, p := range points {
		lines[i] = geometry.NewLineFromPoints(p, points[(i+1)%len(points)])
	}
	return geometry.New(lines...)
}

func square(x, y, size float64) *Cell {
	g := polygon(geom.Pt(x, y), geom.Pt(x+size, y), geom.Pt(x+size, y+size), geom.Pt(x, y+size))
	return New(g, NewMaterial("#ff0000"))
}

func TestAtPointFrontMost(t *testing.T) {
	back := square(0, 0, 100)
	front := square(50, 0, 100)
	root := NewRoot()
	root.Children = []*Cell{back, front}

	assert.Same(t, front, root.AtPoint(geom.Pt(75, 50)))
	assert.Same(t, back, root.AtPoint(geom.Pt(25, 50)))
	assert.Nil(t, root.AtPoint(geom.Pt(500, 500)))

	front.Locked = true
	assert.Same(t, back, root.AtPoint(geom.Pt(75, 50)))
	assert.Nil(t, root.AtPoint(geom.Pt(125, 50)))
}

func TestAtPointChildFirst(t *testing.T) {
	child := square(20, 20, 20)
	parent := square(0, 0, 100)
	parent.Children = []*Cell{child}
	root := NewRoot()
	root.Children = []*Cell{parent}

	assert.Same(t, child, root.AtPoint(geom.Pt(30, 30)))
	assert.Same(t, parent, root.AtPoint(geom.Pt(70, 70)))

	parent.Locked = true
	assert.Same(t, child, root.AtPoint(geom.Pt(30, 30)))
	assert.Nil(t, root.AtPoint(geom.Pt(70, 70)))

	parent.Locked = false
	parent.Hidden = true
	assert.Nil(t, root.AtPoint(geom.Pt(30, 30)))
}

func TestCellsAt(t *testing.T) {
	back := square(0, 0, 100)
	front := square(50, 0, 100)
	root := NewRoot()
	root.Children = []*Cell{back, front}

	assert.Equal(t, []*Cell{front, back}, root.CellsAt(geom.Pt(75, 50), true))
	assert.Equal(t, []*Cell{back}, root.CellsAt(geom.Pt(25, 50), true))

	front.Locked = true
	assert.Equal(t, []*Cell{back}, root.CellsAt(geom.Pt(75, 50), true))
	assert.Equal(t, []*Cell{front, back}, root.CellsAt(geom.Pt(75, 50), false))
}

func TestCellsAtLine(t *testing.T) {
	back := square(0, 0, 100)
	front := square(50, 0, 100)
	root := NewRoot()
	root.Children = []*Cell{back, front}

	line := geometry.NewLineFromPoints(geom.Pt(25, 50), geom.Pt(125, 50))
	assert.Equal(t, []*Cell{back, front}, root.CellsAtLine(line, false, true))

	inside := geometry.NewLineFromPoints(geom.Pt(110, 50), geom.Pt(120, 50))
	assert.Equal(t, []*Cell{front}, root.CellsAtLine(inside, false, true))
	assert.Equal(t, []*Cell{front, front}, root.CellsAtLine(inside, true, true))
}

func TestContainsCellRejectsCrossing(t *testing.T) {
	notched := New(polygon(
		geom.Pt(0, 0), geom.Pt(100, 0), geom.Pt(100, 100), geom.Pt(50, 50), geom.Pt(0, 100),
	), NewMaterial("#00ff00"))

	star := func(top geom.Point) *Cell {
		return New(polygon(
			geom.Pt(50, 10), geom.Pt(55, 25), geom.Pt(70, 30), geom.Pt(55, 35),
			top, geom.Pt(45, 35), geom.Pt(30, 30), geom.Pt(45, 25),
		), NewMaterial("#0000ff"))
	}

	intruding := star(geom.Pt(50, 80))
	require.True(t, notched.ImageBounds().ContainsRect(intruding.ImageBounds()))
	assert.False(t, notched.ContainsCell(intruding))
	assert.True(t, notched.Intersects(intruding, true))

	inside := star(geom.Pt(50, 45))
	assert.True(t, notched.ContainsCell(inside))
	assert.False(t, inside.ContainsCell(notched))

	inside.Locked = true
	assert.False(t, notched.ContainsCell(inside))
}

func TestContainsPoint(t *testing.T) {
	c := square(0, 0, 100)
	assert.True(t, c.Contains(geom.Pt(50, 50)))
	assert.False(t, c.Contains(geom.Pt(150, 50)))
	assert.False(t, NewRoot().Contains(geom.Pt(0, 0)))

	c.EditHidden = true
	assert.False(t, c.Contains(geom.Pt(50, 50)))
}

func TestIntersects(t *testing.T) {
	a := square(0, 0, 100)
	tests := []struct {
		name  string
		other *Cell
		want  bool
	}{
		{"overlapping", square(50, 50, 100), true},
		{"disjoint", square(200, 0, 10), false},
		{"nested", square(20, 20, 10), true},
		{"empty", NewRoot(), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, a.Intersects(tt.other, true))
			assert.Equal(t, tt.want, tt.other.Intersects(a, true))
		})
	}

	locked := square(50, 50, 100)
	locked.Locked = true
	assert.False(t, a.Intersects(locked, true))
	assert.True(t, a.Intersects(locked, false))
}

func TestIntersectsRect(t *testing.T) {
	c := square(0, 0, 100)
	assert.True(t, c.IntersectsRect(geom.Rect{X: 40, Y: 40, Width: 10, Height: 10}))
	assert.True(t, c.IntersectsRect(geom.Rect{X: -10, Y: 40, Width: 20, Height: 10}))
	assert.True(t, c.IntersectsRect(geom.Rect{X: -10, Y: -10, Width: 200, Height: 200}))
	assert.False(t, c.IntersectsRect(geom.Rect{X: 200, Y: 200, Width: 10, Height: 10}))

	assert.True(t, c.ContainsRect(geom.Rect{X: 40, Y: 40, Width: 10, Height: 10}))
	c.Locked = true
	assert.False(t, c.ContainsRect(geom.Rect{X: 40, Y: 40, Width: 10, Height: 10}))
}

func TestIntersectsLinesAndClosePath(t *testing.T) {
	open := New(geometry.New(
		geometry.NewLineFromPoints(geom.Pt(0, 0), geom.Pt(100, 0)),
		geometry.NewLineFromPoints(geom.Pt(100, 0), geom.Pt(100, 100)),
	), NewMaterial("#ffffff"))

	// The closing segment runs from (100, 100) back to (0, 0).
	r := geom.Rect{X: 45, Y: 40, Width: 10, Height: 20}
	assert.True(t, open.IntersectsClosePathLines(r))
	assert.True(t, open.IntersectsLines(r))
	assert.False(t, open.IntersectsLines(geom.Rect{X: 70, Y: 10, Width: 10, Height: 10}))
}

func TestIntersectsLasso(t *testing.T) {
	c := square(0, 0, 100)
	through := geometry.NewLasso(
		geometry.NewLineFromPoints(geom.Pt(80, 40), geom.Pt(120, 40)),
		geometry.NewLineFromPoints(geom.Pt(120, 40), geom.Pt(120, 60)),
		geometry.NewLineFromPoints(geom.Pt(120, 60), geom.Pt(80, 60)),
	)
	around := geometry.NewLasso(
		geometry.NewLineFromPoints(geom.Pt(-10, -10), geom.Pt(110, -10)),
		geometry.NewLineFromPoints(geom.Pt(110, -10), geom.Pt(110, 110)),
		geometry.NewLineFromPoints(geom.Pt(110, 110), geom.Pt(-10, 110)),
	)
	away := geometry.NewLasso(
		geometry.NewLineFromPoints(geom.Pt(200, 200), geom.Pt(220, 200)),
		geometry.NewLineFromPoints(geom.Pt(220, 200), geom.Pt(220, 220)),
	)
	assert.True(t, c.IntersectsLasso(through))
	assert.True(t, c.IntersectsLasso(around))
	assert.False(t, c.IntersectsLasso(away))
}

func TestIntersectsCells(t *testing.T) {
	back := square(0, 0, 100)
	front := square(50, 0, 100)
	root := NewRoot()
	root.Children = []*Cell{back, front}

	assert.Equal(t, []*Cell{front, back}, root.IntersectsCells(geom.Rect{X: 60, Y: 40, Width: 10, Height: 10}))
	assert.Equal(t, []*Cell{front}, root.IntersectsCells(geom.Rect{X: 120, Y: 40, Width: 10, Height: 10}))
	assert.Empty(t, root.IntersectsCells(geom.Rect{X: 500, Y: 40, Width: 10, Height: 10}))
}

func TestIsSnaped(t *testing.T) {
	a := square(0, 0, 100)
	b := square(100, 0, 100)
	c := square(300, 0, 10)
	assert.True(t, a.IsSnaped(b))
	assert.False(t, a.IsSnaped(c))
}

func TestImageBounds(t *testing.T) {
	c := square(0, 0, 100)
	c.Material.LineWidth = 2
	b := c.ImageBounds()
	assert.InDelta(t, -2, b.X, 1e-9)
	assert.InDelta(t, -2, b.Y, 1e-9)
	assert.InDelta(t, 104, b.Width, 1e-9)
	assert.InDelta(t, 104, b.Height, 1e-9)
	assert.Equal(t, geom.Rect{}, NewRoot().ImageBounds())
	assert.True(t, NewRoot().IsEmpty())
	assert.False(t, c.IsEmpty())
	assert.InDelta(t, 100*1.4142135, c.MaxDistance(geom.Pt(0, 0)), 1e-4)
}
