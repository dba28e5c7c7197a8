package engine

import (
	"github.com/inamate/cellengine/backend-go/internal/cell"
	"github.com/inamate/cellengine/backend-go/internal/document"
	"github.com/inamate/cellengine/backend-go/internal/geom"
	"github.com/inamate/cellengine/backend-go/internal/geometry"
)

// keyIndex returns the index of the keyframe at or before frame.
func keyIndex(keyframes []document.Keyframe, frame int) int {
	index := 0
	for i, kf := range keyframes {
		if kf.Frame <= frame {
			index = i
		}
	}
	return index
}

// interval describes where a frame falls between two keyframes. When hold is
// set the frame shows keyframe i unchanged.
type interval struct {
	i    int
	t    float64
	hold bool
}

func intervalAt(keyframes []document.Keyframe, frame int) interval {
	i := keyIndex(keyframes, frame)
	if i >= len(keyframes)-1 || frame <= keyframes[i].Frame ||
		keyframes[i].Interpolation == document.InterpolationNone {
		return interval{i: i, hold: true}
	}
	kf, next := keyframes[i], keyframes[i+1]
	t := float64(frame-kf.Frame) / float64(next.Frame-kf.Frame)
	return interval{i: i, t: applyEasing(t, kf.Easing)}
}

// spline returns the monotone spline parameters of the interval and whether
// it has enough neighbors to use one.
func (iv interval) spline(keyframes []document.Keyframe) (geometry.Spline, bool) {
	x := func(i int) float64 { return float64(keyframes[i].Frame) }
	hasPrev, hasNext := iv.i > 0, iv.i+2 < len(keyframes)
	switch {
	case hasPrev && hasNext:
		return geometry.NewSpline(x(iv.i-1), x(iv.i), x(iv.i+1), x(iv.i+2), iv.t), true
	case hasNext:
		return geometry.NewFirstSpline(x(iv.i), x(iv.i+1), x(iv.i+2), iv.t), true
	case hasPrev:
		return geometry.NewEndSpline(x(iv.i-1), x(iv.i), x(iv.i+1), iv.t), true
	}
	return geometry.Spline{}, false
}

// EvaluateGeometry returns the geometry of a cell at frame given its
// geometry at each keyframe.
func EvaluateGeometry(keyframes []document.Keyframe, keys []*geometry.Geometry, frame int) *geometry.Geometry {
	if len(keyframes) == 0 || len(keys) == 0 {
		return geometry.Empty()
	}
	iv := intervalAt(keyframes, frame)
	if iv.hold || iv.i+1 >= len(keys) {
		return keys[min(iv.i, len(keys)-1)]
	}
	i := iv.i
	if keyframes[i].Interpolation == document.InterpolationSpline {
		if ms, ok := iv.spline(keyframes); ok {
			switch {
			case i > 0 && i+2 < len(keys):
				return geometry.Monospline(keys[i-1], keys[i], keys[i+1], keys[i+2], ms)
			case i+2 < len(keys):
				return geometry.FirstMonospline(keys[i], keys[i+1], keys[i+2], ms)
			case i > 0:
				return geometry.EndMonospline(keys[i-1], keys[i], keys[i+1], ms)
			}
		}
	}
	return geometry.Linear(keys[i], keys[i+1], iv.t)
}

// EvaluateTransform returns the cut transform at frame. Keyframes without a
// transform count as the identity.
func EvaluateTransform(keyframes []document.Keyframe, frame int) document.Transform {
	if len(keyframes) == 0 {
		return document.IdentityTransform()
	}
	at := func(i int) document.Transform {
		if keyframes[i].Transform == nil {
			return document.IdentityTransform()
		}
		return *keyframes[i].Transform
	}
	iv := intervalAt(keyframes, frame)
	if iv.hold {
		return at(iv.i)
	}
	i := iv.i
	if keyframes[i].Interpolation == document.InterpolationSpline {
		if ms, ok := iv.spline(keyframes); ok {
			t0, t3 := at(i), at(i+1)
			if i > 0 {
				t0 = at(i - 1)
			}
			if i+2 < len(keyframes) {
				t3 = at(i + 2)
			}
			return mapTransforms(ms.Value, t0, at(i), at(i+1), t3)
		}
	}
	return mapTransforms(func(_, f1, f2, _ float64) float64 {
		return f1 + (f2-f1)*iv.t
	}, at(i), at(i), at(i+1), at(i+1))
}

func mapTransforms(fn func(f0, f1, f2, f3 float64) float64, t0, t1, t2, t3 document.Transform) document.Transform {
	return document.Transform{
		X:  fn(t0.X, t1.X, t2.X, t3.X),
		Y:  fn(t0.Y, t1.Y, t2.Y, t3.Y),
		SX: fn(t0.SX, t1.SX, t2.SX, t3.SX),
		SY: fn(t0.SY, t1.SY, t2.SY, t3.SY),
		R:  fn(t0.R, t1.R, t2.R, t3.R),
		AX: fn(t0.AX, t1.AX, t2.AX, t3.AX),
		AY: fn(t0.AY, t1.AY, t2.AY, t3.AY),
	}
}

// TransformMatrix converts a cut transform to an affine matrix.
func TransformMatrix(t document.Transform) geom.Matrix2D {
	return geom.FromTransform(t.X, t.Y, t.SX, t.SY, t.R, t.AX, t.AY)
}

// EvaluateTree sets the geometry of every cell of the tree to its value at
// frame and returns the cut transform.
func EvaluateTree(tree *document.CutTree, frame int) geom.Matrix2D {
	keyframes := tree.Cut.Keyframes
	tree.Root.Geometry = EvaluateGeometry(keyframes, tree.KeyGeometries(tree.Root), frame)
	tree.Root.DepthFirstSearch(false, func(_, c *cell.Cell) {
		c.Geometry = EvaluateGeometry(keyframes, tree.KeyGeometries(c), frame)
	})
	return TransformMatrix(EvaluateTransform(keyframes, frame))
}

// applyEasing applies an easing function to interpolation factor t (0-1).
func applyEasing(t float64, easing document.EasingType) float64 {
	switch easing {
	case document.EasingEaseIn:
		return t * t

	case document.EasingEaseOut:
		return t * (2 - t)

	case document.EasingEaseInOut:
		if t < 0.5 {
			return 2 * t * t
		}
		return -1 + (4-2*t)*t

	default: // linear
		return t
	}
}
