package engine

import (
	"encoding/json"

	"github.com/inamate/cellengine/backend-go/internal/cell"
	"github.com/inamate/cellengine/backend-go/internal/geom"
	"github.com/inamate/cellengine/backend-go/internal/geometry"
)

// DrawCommand represents a single drawing operation for the frontend to execute.
// The frontend receives a list of these and executes them on a Canvas2D context.
type DrawCommand struct {
	Op          string        `json:"op"`                    // Operation: "path", "save", "restore", "clip"
	CellID      string        `json:"cellId,omitempty"`      // For hit correlation
	Transform   []float64     `json:"transform,omitempty"`   // [a, b, c, d, e, f] affine matrix
	Path        []PathCommand `json:"path,omitempty"`        // Path data for "path" and "clip" ops
	Fill        string        `json:"fill,omitempty"`        // Fill color
	Stroke      string        `json:"stroke,omitempty"`      // Stroke color
	StrokeWidth float64       `json:"strokeWidth,omitempty"` // Stroke width
	Opacity     float64       `json:"opacity,omitempty"`     // Global alpha
}

// PathCommand represents a single path segment for rendering.
// Format matches Canvas2D: ["M", x, y], ["L", x, y], ["C", x1, y1, x2, y2, x, y], ["Z"].
type PathCommand []any

// PathCommands converts a geometry path to Canvas2D path commands.
func PathCommands(p geometry.Path) []PathCommand {
	elements := p.Elements()
	commands := make([]PathCommand, 0, len(elements))
	for _, e := range elements {
		op := e.Op.String()
		switch e.Op {
		case geometry.MoveTo, geometry.LineTo:
			commands = append(commands, PathCommand{op, e.Points[0].X, e.Points[0].Y})
		case geometry.CubicTo:
			commands = append(commands, PathCommand{op,
				e.Points[0].X, e.Points[0].Y,
				e.Points[1].X, e.Points[1].Y,
				e.Points[2].X, e.Points[2].Y,
			})
		default:
			commands = append(commands, PathCommand{op})
		}
	}
	return commands
}

// CompileDrawCommands generates a draw command buffer for the cells under
// root. Commands are in painter's order (back to front); the children of a
// cell are clipped to its region.
func CompileDrawCommands(root *cell.Cell, m geom.Matrix2D) []DrawCommand {
	if root == nil {
		return nil
	}
	var commands []DrawCommand
	transform := m.ToSlice()
	for _, child := range root.Children {
		compileCell(child, transform, &commands)
	}
	return commands
}

// compileCell recursively generates draw commands for a cell and its
// children. A cell shared by several parents is drawn under each of them.
func compileCell(c *cell.Cell, transform []float64, commands *[]DrawCommand) {
	if c.Hidden {
		return
	}

	var path []PathCommand
	if !c.Geometry.IsEmpty() {
		path = PathCommands(c.Geometry.Path())
		cmd := DrawCommand{
			Op:        "path",
			CellID:    c.ID.String(),
			Transform: transform,
			Path:      path,
			Fill:      c.Material.Color,
			Opacity:   c.Material.Opacity,
		}
		if c.Material.HasLine() {
			cmd.Stroke = c.Material.LineColor
			cmd.StrokeWidth = c.Material.LineWidth
		}
		*commands = append(*commands, cmd)
	}

	if len(c.Children) == 0 {
		return
	}

	// Clip children to the parent region
	hasClip := path != nil
	if hasClip {
		*commands = append(*commands,
			DrawCommand{Op: "save"},
			DrawCommand{Op: "clip", Transform: transform, Path: path},
		)
	}
	for _, child := range c.Children {
		compileCell(child, transform, commands)
	}
	if hasClip {
		*commands = append(*commands, DrawCommand{Op: "restore"})
	}
}

// DrawCommandsToJSON serializes draw commands to JSON.
func DrawCommandsToJSON(commands []DrawCommand) (string, error) {
	if commands == nil {
		return "[]", nil
	}
	data, err := json.Marshal(commands)
	if err != nil {
		return "[]", err
	}
	return string(data), nil
}

// Bounds is the JSON form of a rectangle.
type Bounds struct {
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// RectToJSON serializes a rectangle.
func RectToJSON(r geom.Rect) string {
	data, _ := json.Marshal(Bounds{X: r.X, Y: r.Y, Width: r.Width, Height: r.Height})
	return string(data)
}
