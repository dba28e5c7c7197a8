package engine

import (
	"errors"
	"fmt"
	"math"
	"slices"

	"github.com/inamate/cellengine/backend-go/internal/cell"
	"github.com/inamate/cellengine/backend-go/internal/geom"
	"github.com/inamate/cellengine/backend-go/internal/geometry"
)

var (
	ErrCellLocked    = errors.New("cell is locked or hidden")
	ErrLassoTooSmall = errors.New("lasso needs at least three points")
)

// commit writes the edited tree back into the document.
func (e *Engine) commit() error {
	if err := e.doc.StoreTree(e.tree); err != nil {
		return fmt.Errorf("store cut: %w", err)
	}
	e.dirty = true
	return nil
}

// keyIndex returns the keyframe edits apply to: the one at or before the playhead.
func (e *Engine) keyIndex() int {
	return keyIndex(e.tree.Cut.Keyframes, e.frame)
}

// setKeyGeometry replaces the geometry of c at keyframe k.
func (e *Engine) setKeyGeometry(c *cell.Cell, k int, g *geometry.Geometry) {
	keys := slices.Clone(e.tree.KeyGeometries(c))
	keys[k] = g
	e.tree.Geometries[c.ID] = keys
}

// editable returns the cell with the given id if it can be edited.
func (e *Engine) editable(id string) (*cell.Cell, error) {
	c, err := e.cell(id)
	if err != nil {
		return nil, err
	}
	if !c.IsEditable() {
		return nil, fmt.Errorf("%w: %s", ErrCellLocked, id)
	}
	return c, nil
}

// toCutLines maps canvas lines into cut coordinates.
func (e *Engine) toCutLines(lines []geometry.Line) []geometry.Line {
	inv := e.matrix.Invert()
	local := make([]geometry.Line, len(lines))
	for i, l := range lines {
		local[i] = l.Applying(inv)
	}
	return local
}

// toCutVector maps a canvas displacement into cut coordinates.
func (e *Engine) toCutVector(d geom.Point) geom.Point {
	inv := e.matrix.Invert()
	return inv.Apply(d).Sub(inv.Apply(geom.Point{}))
}

// lasso builds a closed lasso in cut coordinates from canvas points.
func (e *Engine) lasso(points []geom.Point) (geometry.Lasso, error) {
	if len(points) < 3 {
		return geometry.Lasso{}, ErrLassoTooSmall
	}
	inv := e.matrix.Invert()
	lines := make([]geometry.Line, 0, len(points)-1)
	for i := 1; i < len(points); i++ {
		lines = append(lines, geometry.NewLineFromPoints(inv.Apply(points[i-1]), inv.Apply(points[i])))
	}
	return geometry.NewLasso(lines...), nil
}

// AddStroke orders the stroke lines into a closed region and adds it as a new
// cell. The cell goes under the deepest editable cell that fully contains it,
// or under the cut root. The same geometry is used at every keyframe.
func (e *Engine) AddStroke(lines []geometry.Line, color string) (string, error) {
	if e.tree == nil {
		return "", ErrNoDocument
	}
	if len(lines) == 0 {
		return "", ErrEmptyStroke
	}
	e.evaluate()

	g := geometry.NewOrdered(e.toCutLines(lines), e.snapScale)
	if g.IsEmpty() {
		return "", ErrEmptyStroke
	}
	c := cell.New(g, cell.NewMaterial(color))

	parent := e.tree.Root
	for candidate := range e.tree.Root.Cells(true, true) {
		if candidate.ContainsCell(c) {
			parent = candidate
			break
		}
	}
	parent.Children = append(parent.Children, c)

	keys := make([]*geometry.Geometry, len(e.tree.Cut.Keyframes))
	for i := range keys {
		keys[i] = g
	}
	e.tree.Geometries[c.ID] = keys

	id := c.ID.String()
	e.selection = []string{id}
	return id, e.commit()
}

// RemoveCell detaches a cell from every parent. Its children go with it.
func (e *Engine) RemoveCell(id string) error {
	c, err := e.cell(id)
	if err != nil {
		return err
	}
	for _, parent := range e.tree.Root.ParentCells(c) {
		parent.Children = slices.DeleteFunc(parent.Children, func(child *cell.Cell) bool {
			return child == c
		})
	}
	e.selection = slices.DeleteFunc(e.selection, func(s string) bool { return s == id })
	return e.commit()
}

// Duplicate copies a cell and its descendants with fresh ids and inserts the
// copy just above the original.
func (e *Engine) Duplicate(id string) (string, error) {
	c, err := e.cell(id)
	if err != nil {
		return "", err
	}
	parents := e.tree.Root.Parents(c)
	if len(parents) == 0 {
		return "", fmt.Errorf("%w: %s has no parent", ErrCellNotFound, id)
	}

	cp := cell.NewDuplicateSession().Copy(c)
	e.copyKeys(c, cp)
	p := parents[0]
	p.Cell.Children = slices.Insert(p.Cell.Children, p.Index+1, cp)

	newID := cp.ID.String()
	e.selection = []string{newID}
	return newID, e.commit()
}

func (e *Engine) copyKeys(c, cp *cell.Cell) {
	e.tree.Geometries[cp.ID] = slices.Clone(e.tree.KeyGeometries(c))
	for i, child := range c.Children {
		e.copyKeys(child, cp.Children[i])
	}
}

// Move translates the cells at the current keyframe by a canvas displacement.
func (e *Engine) Move(ids []string, dx, dy float64) error {
	if e.tree == nil {
		return ErrNoDocument
	}
	e.evaluate()
	d := e.toCutVector(geom.Pt(dx, dy))
	k := e.keyIndex()
	for _, id := range ids {
		c, err := e.editable(id)
		if err != nil {
			return err
		}
		e.setKeyGeometry(c, k, e.tree.KeyGeometries(c)[k].Applying(geom.Translate(d.X, d.Y)))
	}
	return e.commit()
}

// Warp drags the lines of a cell near editPoint by (dx, dy) at the current
// keyframe. Controls within minDistance move fully; the effect fades out by
// maxDistance. A non-positive maxDistance reaches the farthest control.
func (e *Engine) Warp(id string, dx, dy float64, editPoint geom.Point, minDistance, maxDistance float64) error {
	c, err := e.editable(id)
	if err != nil {
		return err
	}
	e.evaluate()
	k := e.keyIndex()
	g := e.tree.KeyGeometries(c)[k]
	p := e.toCut(editPoint)
	if maxDistance <= 0 {
		maxDistance = math.Max(g.MaxDistance(p), minDistance)
	}
	e.setKeyGeometry(c, k, g.WarpedWith(e.toCutVector(geom.Pt(dx, dy)), p, minDistance, maxDistance))
	return e.commit()
}

// SplitControl inserts a control before pointIndex of a line at every keyframe.
func (e *Engine) SplitControl(id string, lineIndex, pointIndex int) error {
	c, err := e.editable(id)
	if err != nil {
		return err
	}
	keys, err := geometry.SplitControl(e.tree.KeyGeometries(c), lineIndex, pointIndex)
	if err != nil {
		return fmt.Errorf("split control of %s: %w", id, err)
	}
	e.tree.Geometries[c.ID] = keys
	return e.commit()
}

// RemoveControl removes a control of a line at every keyframe.
func (e *Engine) RemoveControl(id string, lineIndex, index int) error {
	c, err := e.editable(id)
	if err != nil {
		return err
	}
	keys, err := geometry.RemoveControl(e.tree.KeyGeometries(c), lineIndex, index)
	if err != nil {
		return fmt.Errorf("remove control of %s: %w", id, err)
	}
	e.tree.Geometries[c.ID] = keys
	return e.commit()
}

// EraseLasso cuts away the parts of lines inside a canvas lasso. Lines are
// measured at the current keyframe and split the same way at every
// keyframe. It returns the ids of the changed cells.
func (e *Engine) EraseLasso(points []geom.Point) ([]string, error) {
	if e.tree == nil {
		return nil, ErrNoDocument
	}
	e.evaluate()
	lasso, err := e.lasso(points)
	if err != nil {
		return nil, err
	}
	k := e.keyIndex()

	var changed []*cell.Cell
	for c := range e.tree.Root.Cells(false, true) {
		if !slices.Contains(changed, c) && e.eraseCell(c, k, lasso) {
			changed = append(changed, c)
		}
	}
	if len(changed) == 0 {
		return nil, nil
	}
	ids := make([]string, len(changed))
	for i, c := range changed {
		ids[i] = c.ID.String()
	}
	return ids, e.commit()
}

func (e *Engine) eraseCell(c *cell.Cell, k int, lasso geometry.Lasso) bool {
	keys := e.tree.KeyGeometries(c)
	g := keys[k]
	if g.IsEmpty() || !g.Bounds().Intersects(lasso.Bounds()) {
		return false
	}
	splits := make([][]geometry.SplitIndex, g.LineCount())
	changed := false
	for i, l := range g.Lines() {
		splits[i] = lasso.SplitIndexes(l)
		changed = changed || splits[i] != nil
	}
	if !changed {
		return false
	}
	split, err := geometry.Split(keys, splits)
	if err != nil {
		geometry.Logger().Warn("lasso erase skipped cell", "cell", c.ID, "error", err)
		return false
	}
	e.tree.Geometries[c.ID] = split
	return true
}

// SelectRect selects the cells touched by a canvas rectangle.
func (e *Engine) SelectRect(r geom.Rect) []string {
	if e.tree == nil {
		return nil
	}
	e.evaluate()
	cells := e.tree.Root.IntersectsCells(e.matrix.Invert().ApplyRect(r))
	e.selection = cellIDs(cells)
	return e.selection
}

// SelectLasso selects the editable cells crossed or partly enclosed by a canvas lasso.
func (e *Engine) SelectLasso(points []geom.Point) ([]string, error) {
	if e.tree == nil {
		return nil, ErrNoDocument
	}
	e.evaluate()
	lasso, err := e.lasso(points)
	if err != nil {
		return nil, err
	}
	var cells []*cell.Cell
	for c := range e.tree.Root.Cells(true, true) {
		if !slices.Contains(cells, c) && c.IntersectsLasso(lasso) {
			cells = append(cells, c)
		}
	}
	e.selection = cellIDs(cells)
	return e.selection, nil
}

func cellIDs(cells []*cell.Cell) []string {
	ids := make([]string, len(cells))
	for i, c := range cells {
		ids[i] = c.ID.String()
	}
	return ids
}

// NearestCurve identifies the curve of an editable cell nearest to a point.
type NearestCurve struct {
	CellID string `json:"cellId"`
	geometry.NearestBezier
}

// NearestBezier returns the curve of an editable cell closest to a canvas
// point. Distances are in cut coordinates.
func (e *Engine) NearestBezier(x, y float64) (NearestCurve, bool) {
	if e.tree == nil {
		return NearestCurve{}, false
	}
	e.evaluate()
	p := e.toCut(geom.Pt(x, y))
	var best NearestCurve
	found := false
	for c := range e.tree.Root.Cells(true, true) {
		nb, ok := c.Geometry.NearestBezier(p)
		if ok && (!found || nb.Distance < best.Distance) {
			best = NearestCurve{CellID: c.ID.String(), NearestBezier: nb}
			found = true
		}
	}
	return best, found
}
