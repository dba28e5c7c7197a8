package geometry

import "fmt"

// The functions below edit the same line of every keyframe geometry of a
// cell at once, so a cell keeps the same line structure across keyframes.
// Geometries too short for the edit are returned unchanged.

// InsertLines inserts lines after the line at pathIndex in every geometry.
func InsertLines(geometries []*Geometry, lines []Line, pathIndex int) []*Geometry {
	i := pathIndex + 1
	result := make([]*Geometry, len(geometries))
	for gi, g := range geometries {
		n := g.LineCount()
		if i > n || i < 0 {
			result[gi] = g
			continue
		}
		ls := make([]Line, 0, n+len(lines))
		ls = append(ls, g.lines[:i]...)
		ls = append(ls, lines...)
		ls = append(ls, g.lines[i:]...)
		result[gi] = newGeometry(ls)
	}
	return result
}

// SplitControl inserts a control before pointIndex of line lineIndex in
// every geometry and recomputes that line's pressures.
func SplitControl(geometries []*Geometry, lineIndex, pointIndex int) ([]*Geometry, error) {
	result := make([]*Geometry, len(geometries))
	for gi, g := range geometries {
		if lineIndex < 0 || lineIndex >= g.LineCount() {
			result[gi] = g
			continue
		}
		l, err := g.lines[lineIndex].Splited(pointIndex)
		if err != nil {
			return nil, fmt.Errorf("split control of line %d: %w", lineIndex, err)
		}
		lines := g.Lines()
		lines[lineIndex] = l.AutoPressure()
		result[gi] = newGeometry(lines)
	}
	return result, nil
}

// RemoveControl removes control index of line lineIndex in every geometry.
// A line left with a single control is removed entirely.
func RemoveControl(geometries []*Geometry, lineIndex, index int) ([]*Geometry, error) {
	result := make([]*Geometry, len(geometries))
	for gi, g := range geometries {
		if lineIndex < 0 || lineIndex >= g.LineCount() {
			result[gi] = g
			continue
		}
		lines := g.Lines()
		line := lines[lineIndex]
		if line.Count() == 2 {
			if index < 0 || index >= 2 {
				return nil, fmt.Errorf("remove control of line %d: %w", lineIndex, ErrInvalidIndex)
			}
			lines = append(lines[:lineIndex], lines[lineIndex+1:]...)
		} else {
			l, err := line.RemovedControl(index)
			if err != nil {
				return nil, fmt.Errorf("remove control of line %d: %w", lineIndex, err)
			}
			lines[lineIndex] = l.AutoPressure()
		}
		result[gi] = newGeometry(lines)
	}
	return result, nil
}

// SplitIndex is a run of a line between two curve positions.
type SplitIndex struct {
	StartIndex int     `json:"startIndex"`
	StartT     float64 `json:"startT"`
	EndIndex   int     `json:"endIndex"`
	EndT       float64 `json:"endT"`
}

// Split replaces lines by the runs named in splits, in sequence. splits is
// indexed by line: a nil entry keeps the line, an empty non-nil entry drops
// it, and otherwise the line is replaced by one new line per run. Runs past
// the line's last curve are skipped; a line whose runs are all skipped is kept.
func Split(geometries []*Geometry, splits [][]SplitIndex) ([]*Geometry, error) {
	result := make([]*Geometry, len(geometries))
	for gi, g := range geometries {
		lines := make([]Line, 0, g.LineCount())
		for li, line := range g.Lines() {
			if li >= len(splits) || splits[li] == nil {
				lines = append(lines, line)
				continue
			}
			applied := 0
			for _, si := range splits[li] {
				if si.EndIndex >= line.BezierCount() {
					continue
				}
				part, err := line.SplitedRange(si.StartIndex, si.StartT, si.EndIndex, si.EndT)
				if err != nil {
					return nil, fmt.Errorf("split line %d: %w", li, err)
				}
				lines = append(lines, part)
				applied++
			}
			if applied == 0 && len(splits[li]) > 0 {
				lines = append(lines, line)
			}
		}
		result[gi] = newGeometry(lines)
	}
	return result, nil
}
