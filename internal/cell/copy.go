package cell

import "github.com/google/uuid"

// CopySession copies cells so that a cell reachable from several places is
// copied once and the copies share it, like the original tree. Use a new
// session for every independent copy.
type CopySession struct {
	copies   map[*Cell]*Cell
	freshIDs bool
}

// NewCopySession returns a session whose copies keep the ids of the originals.
func NewCopySession() *CopySession {
	return &CopySession{copies: make(map[*Cell]*Cell)}
}

// NewDuplicateSession returns a session whose copies get fresh ids and
// fresh material ids.
func NewDuplicateSession() *CopySession {
	return &CopySession{copies: make(map[*Cell]*Cell), freshIDs: true}
}

// Copy returns the copy of c made in this session, making it if needed.
// Geometries are immutable and shared with the original.
func (s *CopySession) Copy(c *Cell) *Cell {
	if cp, ok := s.copies[c]; ok {
		return cp
	}
	cp := &Cell{
		ID:         c.ID,
		Geometry:   c.Geometry,
		Material:   c.Material,
		Locked:     c.Locked,
		Hidden:     c.Hidden,
		EditHidden: c.EditHidden,
	}
	if s.freshIDs {
		cp.ID = uuid.New()
		cp.Material.ID = uuid.New()
	}
	s.copies[c] = cp
	if len(c.Children) > 0 {
		cp.Children = make([]*Cell, len(c.Children))
		for i, child := range c.Children {
			cp.Children[i] = s.Copy(child)
		}
	}
	return cp
}

// DeepCopy copies the tree below and including c in a new session.
func (c *Cell) DeepCopy() *Cell {
	return NewCopySession().Copy(c)
}

// Intersection returns a copy of c keeping only the cells whose id is in
// cells. A dropped cell is replaced by its kept descendants.
func (c *Cell) Intersection(cells []*Cell) *Cell {
	keep := make(map[uuid.UUID]struct{}, len(cells))
	for _, cell := range cells {
		keep[cell.ID] = struct{}{}
	}
	cp := c.DeepCopy()
	cp.prune(keep, make(map[*Cell]struct{}))
	return cp
}

func (c *Cell) prune(keep map[uuid.UUID]struct{}, done map[*Cell]struct{}) bool {
	if _, ok := done[c]; !ok {
		done[c] = struct{}{}
		var children []*Cell
		for _, child := range c.Children {
			if child.prune(keep, done) {
				children = append(children, child)
			} else {
				children = append(children, child.Children...)
			}
		}
		c.Children = children
	}
	_, ok := keep[c.ID]
	return ok
}
