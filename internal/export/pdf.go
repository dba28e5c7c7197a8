package export

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/jung-kurt/gofpdf"

	"github.com/inamate/cellengine/backend-go/internal/cell"
	"github.com/inamate/cellengine/backend-go/internal/document"
	"github.com/inamate/cellengine/backend-go/internal/engine"
	"github.com/inamate/cellengine/backend-go/internal/geom"
	"github.com/inamate/cellengine/backend-go/internal/geometry"
)

const (
	defaultWidth  = 1280
	defaultHeight = 720
)

// RenderPDF draws one frame of a cut as a single page PDF, one point per
// document unit. An empty cutID selects the first cut.
func RenderPDF(w io.Writer, doc *document.InDocument, cutID string, frame int) error {
	if cutID == "" {
		if len(doc.Project.Cuts) == 0 {
			return document.ErrCutNotFound
		}
		cutID = doc.Project.Cuts[0]
	}
	tree, err := doc.BuildTree(cutID)
	if err != nil {
		return err
	}
	m := engine.EvaluateTree(tree, frame)

	width, height := float64(doc.Project.Width), float64(doc.Project.Height)
	if width <= 0 || height <= 0 {
		width, height = defaultWidth, defaultHeight
	}

	pdf := gofpdf.NewCustom(&gofpdf.InitType{
		OrientationStr: "P",
		UnitStr:        "pt",
		Size:           gofpdf.SizeType{Wd: width, Ht: height},
	})
	pdf.SetMargins(0, 0, 0)
	pdf.SetAutoPageBreak(false, 0)
	pdf.SetTitle(fmt.Sprintf("%s %s frame %d", doc.Project.Name, tree.Cut.Name, frame), true)
	pdf.SetCreator("cellengine", true)
	pdf.AddPage()

	if r, g, b, ok := parseHex(doc.Project.Background); ok {
		pdf.SetFillColor(r, g, b)
		pdf.Rect(0, 0, width, height, "F")
	}

	for _, c := range tree.Root.Children {
		drawCell(pdf, c, m)
	}

	if err := pdf.Error(); err != nil {
		return fmt.Errorf("render pdf: %w", err)
	}
	return pdf.Output(w)
}

// drawCell fills c and draws its children clipped to it.
func drawCell(pdf *gofpdf.Fpdf, c *cell.Cell, m geom.Matrix2D) {
	if c.Hidden {
		return
	}

	clipped := false
	if !c.Geometry.IsEmpty() {
		path := c.Geometry.Path()
		fillPath(pdf, path, c.Material, m)

		if len(c.Children) > 0 {
			pdf.ClipPolygon(polygon(path, m), false)
			clipped = true
		}
	}

	for _, child := range c.Children {
		drawCell(pdf, child, m)
	}
	if clipped {
		pdf.ClipEnd()
	}
}

func fillPath(pdf *gofpdf.Fpdf, path geometry.Path, mat cell.Material, m geom.Matrix2D) {
	style := ""
	if r, g, b, ok := parseHex(mat.Color); ok {
		pdf.SetFillColor(r, g, b)
		style += "F"
	}
	if mat.HasLine() {
		r, g, b, _ := parseHex(mat.LineColor)
		pdf.SetDrawColor(r, g, b)
		pdf.SetLineWidth(mat.LineWidth)
		style += "D"
	}
	if style == "" {
		return
	}

	if mat.Opacity < 1 {
		pdf.SetAlpha(max(mat.Opacity, 0), "Normal")
		defer pdf.SetAlpha(1, "Normal")
	}

	for _, e := range path.Elements() {
		switch e.Op {
		case geometry.MoveTo:
			p := m.Apply(e.Points[0])
			pdf.MoveTo(p.X, p.Y)
		case geometry.LineTo:
			p := m.Apply(e.Points[0])
			pdf.LineTo(p.X, p.Y)
		case geometry.CubicTo:
			c0, c1, p := m.Apply(e.Points[0]), m.Apply(e.Points[1]), m.Apply(e.Points[2])
			pdf.CurveBezierCubicTo(c0.X, c0.Y, c1.X, c1.Y, p.X, p.Y)
		case geometry.ClosePath:
			pdf.ClosePath()
		}
	}
	pdf.DrawPath(style)
}

func polygon(path geometry.Path, m geom.Matrix2D) []gofpdf.PointType {
	poly := path.Polygon()
	out := make([]gofpdf.PointType, len(poly))
	for i, p := range poly {
		p = m.Apply(p)
		out[i] = gofpdf.PointType{X: p.X, Y: p.Y}
	}
	return out
}

// parseHex reads #rgb and #rrggbb colors.
func parseHex(s string) (r, g, b int, ok bool) {
	s = strings.TrimPrefix(s, "#")
	if len(s) == 3 {
		s = string([]byte{s[0], s[0], s[1], s[1], s[2], s[2]})
	}
	if len(s) != 6 {
		return 0, 0, 0, false
	}
	v, err := strconv.ParseUint(s, 16, 32)
	if err != nil {
		return 0, 0, 0, false
	}
	return int(v >> 16 & 0xff), int(v >> 8 & 0xff), int(v & 0xff), true
}
