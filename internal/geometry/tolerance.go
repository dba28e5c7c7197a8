package geometry

import "sync/atomic"

// Tolerances holds the tunable constants of the geometry engine. The values
// trade precision for speed and have no exact derivation; they are sized for
// pixel-level interaction at a view scale of 1.
type Tolerances struct {
	// SnapDistance is the gap, in view units, under which the ordering
	// constructor closes the joint between consecutive lines.
	SnapDistance float64
	// VertexLineLength is the line length at which the snap threshold reaches
	// its full size; shorter lines snap proportionally less.
	VertexLineLength float64
	// MinSnapRatio bounds the snap threshold ratio from below and stops the
	// halving correction applied to interior controls.
	MinSnapRatio float64
	// PathJoinLength is the gap under which the derived path omits a joining
	// segment between consecutive lines.
	PathJoinLength float64
	// NearestSamples is the uniform sample count of Bezier.NearestT.
	NearestSamples int
	// NearestRefineSteps is the number of halving refinement steps after sampling.
	NearestRefineSteps int
	// IntersectThreshold is the box size under which curve subdivision stops
	// and the chords are compared.
	IntersectThreshold float64
	// IntersectMaxDepth caps the subdivision depth of Bezier.Intersects.
	IntersectMaxDepth int
	// FlattenSegments is the number of straight segments per curve used for
	// containment polygons and rect tests.
	FlattenSegments int
}

// DefaultTolerances returns the built-in tolerance values.
func DefaultTolerances() Tolerances {
	return Tolerances{
		SnapDistance:       6,
		VertexLineLength:   10,
		MinSnapRatio:       0.0625,
		PathJoinLength:     0.5,
		NearestSamples:     16,
		NearestRefineSteps: 10,
		IntersectThreshold: 0.25,
		IntersectMaxDepth:  24,
		FlattenSegments:    16,
	}
}

var tolerancePtr atomic.Pointer[Tolerances]

func init() {
	t := DefaultTolerances()
	tolerancePtr.Store(&t)
}

// SetTolerances replaces the active tolerances. Non-positive fields keep
// their default value. Safe for concurrent use.
func SetTolerances(t Tolerances) {
	d := DefaultTolerances()
	if t.SnapDistance <= 0 {
		t.SnapDistance = d.SnapDistance
	}
	if t.VertexLineLength <= 0 {
		t.VertexLineLength = d.VertexLineLength
	}
	if t.MinSnapRatio <= 0 {
		t.MinSnapRatio = d.MinSnapRatio
	}
	if t.PathJoinLength <= 0 {
		t.PathJoinLength = d.PathJoinLength
	}
	if t.NearestSamples <= 0 {
		t.NearestSamples = d.NearestSamples
	}
	if t.NearestRefineSteps <= 0 {
		t.NearestRefineSteps = d.NearestRefineSteps
	}
	if t.IntersectThreshold <= 0 {
		t.IntersectThreshold = d.IntersectThreshold
	}
	if t.IntersectMaxDepth <= 0 {
		t.IntersectMaxDepth = d.IntersectMaxDepth
	}
	if t.FlattenSegments <= 0 {
		t.FlattenSegments = d.FlattenSegments
	}
	tolerancePtr.Store(&t)
}

// CurrentTolerances returns the active tolerances.
func CurrentTolerances() Tolerances {
	return *tolerancePtr.Load()
}

func tol() *Tolerances {
	return tolerancePtr.Load()
}
