package cell

import "github.com/google/uuid"

type MaterialType string

const (
	MaterialNormal   MaterialType = "normal"
	MaterialLineless MaterialType = "lineless"
	MaterialBlur     MaterialType = "blur"
	MaterialLuster   MaterialType = "luster"
)

// Valid reports whether t is a known material type.
func (t MaterialType) Valid() bool {
	switch t {
	case MaterialNormal, MaterialLineless, MaterialBlur, MaterialLuster:
		return true
	}
	return false
}

// Material is the fill and line styling of a cell. Colors are CSS hex strings.
type Material struct {
	ID           uuid.UUID    `json:"id"`
	Type         MaterialType `json:"type"`
	Color        string       `json:"color"`
	LineColor    string       `json:"lineColor"`
	LineWidth    float64      `json:"lineWidth"`
	LineStrength float64      `json:"lineStrength"`
	Opacity      float64      `json:"opacity"`
}

// NewMaterial returns a normal material with a fresh id.
func NewMaterial(color string) Material {
	return Material{
		ID:           uuid.New(),
		Type:         MaterialNormal,
		Color:        color,
		LineColor:    "#000000",
		LineWidth:    1,
		LineStrength: 0,
		Opacity:      1,
	}
}

// HasLine reports whether the material strokes its boundary.
func (m Material) HasLine() bool {
	return m.Type == MaterialNormal && m.LineWidth > 0
}
