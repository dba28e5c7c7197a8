package document

import (
	"time"

	"github.com/google/uuid"

	"github.com/inamate/cellengine/backend-go/internal/cell"
	"github.com/inamate/cellengine/backend-go/internal/geom"
	"github.com/inamate/cellengine/backend-go/internal/geometry"
	"github.com/inamate/cellengine/backend-go/internal/typeid"
)

func NewSampleDocument(projectID string) *InDocument {
	now := time.Now().UTC().Format(time.RFC3339)

	cutID := typeid.NewCutID()
	kf0ID := typeid.NewKeyframeID()
	kf1ID := typeid.NewKeyframeID()
	kf2ID := typeid.NewKeyframeID()

	rootID := uuid.NewString()
	bodyID := uuid.NewString()
	eyeID := uuid.NewString()
	triangleID := uuid.NewString()

	body := cell.NewMaterial("#e94560")
	eye := cell.NewMaterial("#16213e")
	triangle := cell.NewMaterial("#53d769")
	triangle.Type = cell.MaterialLineless

	return &InDocument{
		Project: Project{
			ID:         projectID,
			Name:       "Untitled",
			Version:    1,
			FPS:        24,
			Width:      1280,
			Height:     720,
			Background: "#ffffff",
			CreatedAt:  now,
			UpdatedAt:  now,
			Cuts:       []string{cutID},
		},
		Cuts: map[string]Cut{
			cutID: {
				ID:     cutID,
				Name:   "Cut 1",
				Root:   rootID,
				Length: 48,
				Keyframes: []Keyframe{
					{ID: kf0ID, Frame: 0, Interpolation: InterpolationSpline, Easing: EasingLinear},
					{ID: kf1ID, Frame: 12, Interpolation: InterpolationSpline, Easing: EasingEaseInOut},
					{ID: kf2ID, Frame: 24, Interpolation: InterpolationLinear, Easing: EasingLinear,
						Transform: &Transform{X: 40, Y: 0, SX: 1, SY: 1}},
				},
			},
		},
		Cells: map[string]CellRecord{
			rootID: {
				ID:       rootID,
				Children: []string{bodyID, triangleID},
			},
			bodyID: {
				ID:       bodyID,
				Children: []string{eyeID},
				Material: body.ID.String(),
				Geometries: []*geometry.Geometry{
					samplePolygon(geom.Pt(200, 200), geom.Pt(400, 200), geom.Pt(400, 350), geom.Pt(200, 350)),
					samplePolygon(geom.Pt(220, 180), geom.Pt(420, 210), geom.Pt(400, 360), geom.Pt(190, 340)),
					samplePolygon(geom.Pt(240, 200), geom.Pt(440, 200), geom.Pt(440, 350), geom.Pt(240, 350)),
				},
			},
			eyeID: {
				ID:       eyeID,
				Material: eye.ID.String(),
				Geometries: []*geometry.Geometry{
					samplePolygon(geom.Pt(250, 240), geom.Pt(280, 240), geom.Pt(280, 270), geom.Pt(250, 270)),
					samplePolygon(geom.Pt(260, 230), geom.Pt(290, 235), geom.Pt(285, 265), geom.Pt(255, 262)),
					samplePolygon(geom.Pt(290, 240), geom.Pt(320, 240), geom.Pt(320, 270), geom.Pt(290, 270)),
				},
			},
			triangleID: {
				ID:       triangleID,
				Material: triangle.ID.String(),
				Geometries: []*geometry.Geometry{
					samplePolygon(geom.Pt(700, 350), geom.Pt(800, 200), geom.Pt(900, 350)),
					samplePolygon(geom.Pt(700, 350), geom.Pt(800, 150), geom.Pt(900, 350)),
					samplePolygon(geom.Pt(700, 350), geom.Pt(800, 200), geom.Pt(900, 350)),
				},
			},
		},
		Materials: map[string]cell.Material{
			body.ID.String():     body,
			eye.ID.String():      eye,
			triangle.ID.String(): triangle,
		},
	}
}

func samplePolygon(points ...geom.Point) *geometry.Geometry {
	lines := make([]geometry.Line, len(points))
	for i, p := range points {
		lines[i] = geometry.NewLineFromPoints(p, points[(i+1)%len(points)]).AutoPressure()
	}
	return geometry.New(lines...)
}
