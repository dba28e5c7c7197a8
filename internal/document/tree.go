package document

import (
	"errors"
	"fmt"
	"slices"

	"github.com/google/uuid"

	"github.com/inamate/cellengine/backend-go/internal/cell"
	"github.com/inamate/cellengine/backend-go/internal/geometry"
)

var (
	ErrCutNotFound   = errors.New("cut not found")
	ErrCellNotFound  = errors.New("cell not found")
	ErrCellCycle     = errors.New("cell is its own ancestor")
	ErrInvalidCellID = errors.New("invalid cell id")
	ErrBadKeyframes  = errors.New("keyframes must start at frame 0 and strictly increase")
)

// CutTree is the editable form of a cut: the cell tree and, per cell id,
// the geometry of each keyframe. Cell geometries hold the geometry of the
// keyframe the tree was last evaluated at.
type CutTree struct {
	Cut        Cut
	Root       *cell.Cell
	Geometries map[uuid.UUID][]*geometry.Geometry
}

// KeyGeometries returns the per-keyframe geometries of c, padded with empty
// geometries to the keyframe count.
func (t *CutTree) KeyGeometries(c *cell.Cell) []*geometry.Geometry {
	gs := t.Geometries[c.ID]
	if len(gs) >= len(t.Cut.Keyframes) {
		return gs
	}
	padded := make([]*geometry.Geometry, len(t.Cut.Keyframes))
	copy(padded, gs)
	for i := len(gs); i < len(padded); i++ {
		padded[i] = geometry.Empty()
	}
	return padded
}

// BuildTree resolves the cells of a cut into a tree. A record referenced by
// several parents becomes one shared cell.
func (d *InDocument) BuildTree(cutID string) (*CutTree, error) {
	cut, ok := d.Cuts[cutID]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrCutNotFound, cutID)
	}
	b := treeBuilder{
		doc:      d,
		built:    make(map[string]*cell.Cell),
		building: make(map[string]bool),
		tree: &CutTree{
			Cut:        cut,
			Geometries: make(map[uuid.UUID][]*geometry.Geometry),
		},
	}
	root, err := b.build(cut.Root)
	if err != nil {
		return nil, fmt.Errorf("cut %s: %w", cutID, err)
	}
	b.tree.Root = root
	return b.tree, nil
}

type treeBuilder struct {
	doc      *InDocument
	built    map[string]*cell.Cell
	building map[string]bool
	tree     *CutTree
}

func (b *treeBuilder) build(id string) (*cell.Cell, error) {
	if c, ok := b.built[id]; ok {
		return c, nil
	}
	if b.building[id] {
		return nil, fmt.Errorf("%w: %s", ErrCellCycle, id)
	}
	rec, ok := b.doc.Cells[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrCellNotFound, id)
	}
	uid, err := uuid.Parse(id)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrInvalidCellID, id)
	}
	b.building[id] = true
	defer delete(b.building, id)

	children := make([]*cell.Cell, 0, len(rec.Children))
	for _, childID := range rec.Children {
		child, err := b.build(childID)
		if err != nil {
			return nil, err
		}
		children = append(children, child)
	}

	gs := make([]*geometry.Geometry, len(rec.Geometries))
	for i, g := range rec.Geometries {
		if g == nil {
			g = geometry.Empty()
		}
		gs[i] = g
	}
	first := geometry.Empty()
	if len(gs) > 0 {
		first = gs[0]
	}

	c := &cell.Cell{
		ID:         uid,
		Children:   children,
		Geometry:   first,
		Material:   b.doc.Materials[rec.Material],
		Locked:     rec.Locked,
		Hidden:     rec.Hidden,
		EditHidden: rec.EditHidden,
	}
	b.built[id] = c
	b.tree.Geometries[uid] = gs
	return c, nil
}

// StoreTree writes a cut tree back into the document, replacing the records
// of the cut's previous cells. Records still reachable from other cuts are
// kept.
func (d *InDocument) StoreTree(t *CutTree) error {
	if _, ok := d.Cuts[t.Cut.ID]; !ok {
		return fmt.Errorf("%w: %s", ErrCutNotFound, t.Cut.ID)
	}
	if d.Cells == nil {
		d.Cells = make(map[string]CellRecord)
	}
	if d.Materials == nil {
		d.Materials = make(map[string]cell.Material)
	}

	old := d.reachable(d.Cuts[t.Cut.ID].Root)
	others := make(map[string]bool)
	for id, cut := range d.Cuts {
		if id != t.Cut.ID {
			for cid := range d.reachable(cut.Root) {
				others[cid] = true
			}
		}
	}
	for id := range old {
		if !others[id] {
			delete(d.Cells, id)
		}
	}

	store := func(c *cell.Cell) {
		id := c.ID.String()
		rec := CellRecord{
			ID:         id,
			Children:   make([]string, len(c.Children)),
			Locked:     c.Locked,
			Hidden:     c.Hidden,
			EditHidden: c.EditHidden,
			Geometries: t.KeyGeometries(c),
		}
		for i, child := range c.Children {
			rec.Children[i] = child.ID.String()
		}
		if c.Material.ID != uuid.Nil {
			rec.Material = c.Material.ID.String()
			d.Materials[rec.Material] = c.Material
		}
		d.Cells[id] = rec
	}
	store(t.Root)
	t.Root.DepthFirstSearch(false, func(_, c *cell.Cell) { store(c) })

	cut := t.Cut
	cut.Root = t.Root.ID.String()
	d.Cuts[cut.ID] = cut
	return nil
}

func (d *InDocument) reachable(rootID string) map[string]bool {
	seen := make(map[string]bool)
	stack := []string{rootID}
	for len(stack) > 0 {
		id := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if seen[id] {
			continue
		}
		rec, ok := d.Cells[id]
		if !ok {
			continue
		}
		seen[id] = true
		stack = append(stack, rec.Children...)
	}
	return seen
}

// Validate checks that every cut resolves to a tree and has well-formed
// keyframes.
func (d *InDocument) Validate() error {
	for _, id := range d.Project.Cuts {
		if _, ok := d.Cuts[id]; !ok {
			return fmt.Errorf("%w: %s", ErrCutNotFound, id)
		}
	}
	for id, cut := range d.Cuts {
		if len(cut.Keyframes) == 0 || cut.Keyframes[0].Frame != 0 {
			return fmt.Errorf("cut %s: %w", id, ErrBadKeyframes)
		}
		if !slices.IsSortedFunc(cut.Keyframes, func(a, b Keyframe) int { return a.Frame - b.Frame }) {
			return fmt.Errorf("cut %s: %w", id, ErrBadKeyframes)
		}
		for i := 1; i < len(cut.Keyframes); i++ {
			if cut.Keyframes[i].Frame == cut.Keyframes[i-1].Frame {
				return fmt.Errorf("cut %s: %w", id, ErrBadKeyframes)
			}
		}
		if _, err := d.BuildTree(id); err != nil {
			return err
		}
	}
	return nil
}
