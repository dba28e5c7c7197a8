package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/inamate/cellengine/backend-go/internal/document"
	"github.com/inamate/cellengine/backend-go/internal/geom"
	"github.com/inamate/cellengine/backend-go/internal/geometry"
	"github.com/inamate/cellengine/backend-go/internal/typeid"
)

func squareAt(x float64) *geometry.Geometry {
	pts := []geom.Point{geom.Pt(x, 0), geom.Pt(x+10, 0), geom.Pt(x+10, 10), geom.Pt(x, 10)}
	lines := make([]geometry.Line, len(pts))
	for i, p := range pts {
		lines[i] = geometry.NewLineFromPoints(p, pts[(i+1)%len(pts)])
	}
	return geometry.New(lines...)
}

func keyframes(interp document.InterpolationType, frames ...int) []document.Keyframe {
	kfs := make([]document.Keyframe, len(frames))
	for i, f := range frames {
		kfs[i] = document.Keyframe{ID: typeid.NewKeyframeID(), Frame: f, Interpolation: interp, Easing: document.EasingLinear}
	}
	return kfs
}

func TestKeyIndex(t *testing.T) {
	kfs := keyframes(document.InterpolationLinear, 0, 10, 20)
	tests := []struct {
		frame int
		want  int
	}{
		{0, 0}, {5, 0}, {10, 1}, {19, 1}, {20, 2}, {100, 2},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, keyIndex(kfs, tt.frame), "frame %d", tt.frame)
	}
}

func TestEvaluateGeometryLinear(t *testing.T) {
	kfs := keyframes(document.InterpolationLinear, 0, 10)
	keys := []*geometry.Geometry{squareAt(0), squareAt(10)}

	assert.Same(t, keys[0], EvaluateGeometry(kfs, keys, 0))
	assert.Same(t, keys[1], EvaluateGeometry(kfs, keys, 10))
	assert.Same(t, keys[1], EvaluateGeometry(kfs, keys, 30))

	mid := EvaluateGeometry(kfs, keys, 5)
	assert.InDelta(t, 5, mid.Bounds().X, 1e-9)
	assert.InDelta(t, 10, mid.Bounds().Width, 1e-9)
}

func TestEvaluateGeometryHold(t *testing.T) {
	kfs := keyframes(document.InterpolationNone, 0, 10)
	keys := []*geometry.Geometry{squareAt(0), squareAt(10)}
	assert.Same(t, keys[0], EvaluateGeometry(kfs, keys, 9))
}

func TestEvaluateGeometryEasing(t *testing.T) {
	kfs := keyframes(document.InterpolationLinear, 0, 10)
	kfs[0].Easing = document.EasingEaseIn
	keys := []*geometry.Geometry{squareAt(0), squareAt(10)}
	assert.InDelta(t, 2.5, EvaluateGeometry(kfs, keys, 5).Bounds().X, 1e-9)
}

func TestEvaluateGeometrySpline(t *testing.T) {
	kfs := keyframes(document.InterpolationSpline, 0, 10, 20, 30)
	keys := []*geometry.Geometry{squareAt(0), squareAt(10), squareAt(30), squareAt(35)}

	assert.Same(t, keys[1], EvaluateGeometry(kfs, keys, 10))

	for frame := 1; frame < 30; frame++ {
		if frame%10 == 0 {
			continue
		}
		i := frame / 10
		x := EvaluateGeometry(kfs, keys, frame).Bounds().X
		lo, hi := keys[i].Bounds().X, keys[i+1].Bounds().X
		assert.GreaterOrEqual(t, x, lo-1e-9, "frame %d", frame)
		assert.LessOrEqual(t, x, hi+1e-9, "frame %d", frame)
	}
}

func TestEvaluateGeometryMissingKeys(t *testing.T) {
	kfs := keyframes(document.InterpolationLinear, 0, 10)
	assert.True(t, EvaluateGeometry(kfs, nil, 5).IsEmpty())

	// A cell that appears at the second keyframe stays empty before it.
	keys := []*geometry.Geometry{geometry.Empty(), squareAt(0)}
	assert.True(t, EvaluateGeometry(kfs, keys, 5).IsEmpty())
	assert.False(t, EvaluateGeometry(kfs, keys, 10).IsEmpty())
}

func TestEvaluateTransform(t *testing.T) {
	doc := document.NewSampleDocument(typeid.NewProjectID())
	kfs := doc.Cuts[doc.Project.Cuts[0]].Keyframes
	require.Len(t, kfs, 3)

	assert.Equal(t, document.IdentityTransform(), EvaluateTransform(kfs, 0))
	assert.Equal(t, 40.0, EvaluateTransform(kfs, 24).X)
	assert.Equal(t, 40.0, EvaluateTransform(kfs, 40).X)

	mid := EvaluateTransform(kfs, 18)
	assert.Greater(t, mid.X, 0.0)
	assert.Less(t, mid.X, 40.0)
	assert.InDelta(t, 1, mid.SX, 1e-9)
	assert.InDelta(t, 1, mid.SY, 1e-9)

	m := TransformMatrix(EvaluateTransform(kfs, 24))
	assert.Equal(t, geom.Pt(41, 2), m.Apply(geom.Pt(1, 2)))
}

func TestApplyEasing(t *testing.T) {
	tests := []struct {
		easing document.EasingType
		t      float64
		want   float64
	}{
		{document.EasingLinear, 0.25, 0.25},
		{document.EasingEaseIn, 0.5, 0.25},
		{document.EasingEaseOut, 0.5, 0.75},
		{document.EasingEaseInOut, 0.25, 0.125},
		{document.EasingEaseInOut, 0.75, 0.875},
		{"unknown", 0.3, 0.3},
	}
	for _, tt := range tests {
		t.Run(string(tt.easing), func(t *testing.T) {
			assert.InDelta(t, tt.want, applyEasing(tt.t, tt.easing), 1e-12)
			assert.InDelta(t, 1, applyEasing(1, tt.easing), 1e-12)
			assert.InDelta(t, 0, applyEasing(0, tt.easing), 1e-12)
		})
	}
}
