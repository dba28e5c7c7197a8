package document

import (
	"github.com/inamate/cellengine/backend-go/internal/cell"
	"github.com/inamate/cellengine/backend-go/internal/geometry"
)

// InDocument is the persisted form of a project. Cells are stored flat and
// reference their children by id, so a cell shared by two parents is stored
// once.
type InDocument struct {
	Project   Project                  `json:"project"`
	Cuts      map[string]Cut           `json:"cuts"`
	Cells     map[string]CellRecord    `json:"cells"`
	Materials map[string]cell.Material `json:"materials"`
}

type Project struct {
	ID         string   `json:"id"`
	Name       string   `json:"name"`
	Version    int      `json:"version"`
	FPS        int      `json:"fps"`
	Width      int      `json:"width"`
	Height     int      `json:"height"`
	Background string   `json:"background"`
	CreatedAt  string   `json:"createdAt"`
	UpdatedAt  string   `json:"updatedAt"`
	Cuts       []string `json:"cuts"`
}

// Cut is one shot of the animation. Root names an empty cell whose
// children are the cells of the cut.
type Cut struct {
	ID        string     `json:"id"`
	Name      string     `json:"name"`
	Root      string     `json:"root"`
	Length    int        `json:"length"`
	Keyframes []Keyframe `json:"keyframes"`
}

type Transform struct {
	X  float64 `json:"x"`
	Y  float64 `json:"y"`
	SX float64 `json:"sx"`
	SY float64 `json:"sy"`
	R  float64 `json:"r"`
	AX float64 `json:"ax"`
	AY float64 `json:"ay"`
}

// IdentityTransform leaves cells where they are.
func IdentityTransform() Transform {
	return Transform{SX: 1, SY: 1}
}

type InterpolationType string

const (
	InterpolationNone   InterpolationType = "none"
	InterpolationLinear InterpolationType = "linear"
	InterpolationSpline InterpolationType = "spline"
)

type EasingType string

const (
	EasingLinear    EasingType = "linear"
	EasingEaseIn    EasingType = "easeIn"
	EasingEaseOut   EasingType = "easeOut"
	EasingEaseInOut EasingType = "easeInOut"
)

// Keyframe starts at Frame and holds until the next keyframe. Interpolation
// and Easing shape the change from this keyframe to the next. Transform,
// when set, moves every cell of the cut.
type Keyframe struct {
	ID            string            `json:"id"`
	Frame         int               `json:"frame"`
	Interpolation InterpolationType `json:"interpolation"`
	Easing        EasingType        `json:"easing"`
	Transform     *Transform        `json:"transform,omitempty"`
}

// CellRecord stores a cell with one geometry per keyframe of its cut.
// Missing trailing geometries are treated as empty.
type CellRecord struct {
	ID         string               `json:"id"`
	Children   []string             `json:"children"`
	Material   string               `json:"material"`
	Locked     bool                 `json:"locked"`
	Hidden     bool                 `json:"hidden"`
	EditHidden bool                 `json:"editHidden"`
	Geometries []*geometry.Geometry `json:"geometries"`
}

// NewEmptyDocument creates an empty document for a new project with one cut.
func NewEmptyDocument(projectID, projectName, cutID, keyframeID, rootID string) *InDocument {
	return &InDocument{
		Project: Project{
			ID:         projectID,
			Name:       projectName,
			Version:    1,
			FPS:        24,
			Width:      1280,
			Height:     720,
			Background: "#ffffff",
			CreatedAt:  "", // Will be set by caller
			UpdatedAt:  "",
			Cuts:       []string{cutID},
		},
		Cuts: map[string]Cut{
			cutID: {
				ID:     cutID,
				Name:   "Cut 1",
				Root:   rootID,
				Length: 48,
				Keyframes: []Keyframe{
					{ID: keyframeID, Frame: 0, Interpolation: InterpolationLinear, Easing: EasingLinear},
				},
			},
		},
		Cells: map[string]CellRecord{
			rootID: {
				ID:         rootID,
				Children:   []string{},
				Geometries: []*geometry.Geometry{},
			},
		},
		Materials: map[string]cell.Material{},
	}
}
