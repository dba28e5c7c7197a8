package session

import (
	"encoding/json"

	"github.com/inamate/cellengine/backend-go/internal/geom"
	"github.com/inamate/cellengine/backend-go/internal/geometry"
)

// Message is the envelope of every websocket frame. Replies carry the seq
// of the request they answer.
type Message struct {
	Type    string          `json:"type"`
	Seq     int64           `json:"seq,omitempty"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

const (
	// Replies
	TypeResult  = "result"
	TypeError   = "error"
	TypeWelcome = "welcome"

	// Playback
	TypeState       = "state"
	TypeRender      = "render"
	TypeTick        = "tick"
	TypePlayheadSet = "playhead.set"
	TypePlay        = "play"
	TypePause       = "pause"
	TypeCutSet      = "cut.set"

	// Document sync
	TypeDocGet  = "doc.get"
	TypeDocSave = "doc.save"

	// Queries and selection
	TypeHit             = "hit"
	TypeNearest         = "nearest"
	TypeSelectionSet    = "selection.set"
	TypeSelectionBounds = "selection.bounds"
	TypeSelectRect      = "select.rect"
	TypeSelectLasso     = "select.lasso"

	// Edits
	TypeStrokeAdd     = "stroke.add"
	TypeCellRemove    = "cell.remove"
	TypeCellDuplicate = "cell.duplicate"
	TypeCellMove      = "cell.move"
	TypeCellWarp      = "cell.warp"
	TypeControlSplit  = "control.split"
	TypeControlRemove = "control.remove"
	TypeLassoErase    = "lasso.erase"
)

// Error codes sent in ErrorPayload.
const (
	CodeBadRequest  = "bad_request"
	CodeUnknownType = "unknown_type"
	CodeNotFound    = "not_found"
	CodeLocked      = "locked"
	CodeInvalid     = "invalid"
	CodeInternal    = "internal"
)

type ErrorPayload struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

type WelcomePayload struct {
	ProjectID string `json:"projectId"`
	UserID    string `json:"userId"`
	CutID     string `json:"cutId"`
}

type PointPayload struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

type FramePayload struct {
	Frame int `json:"frame"`
}

type CutPayload struct {
	CutID string `json:"cutId"`
}

type CellPayload struct {
	CellID string `json:"cellId"`
}

type CellsPayload struct {
	CellIDs []string `json:"cellIds"`
}

type RectPayload struct {
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

type LassoPayload struct {
	Points []geom.Point `json:"points"`
}

// StrokePayload adds a cell from stroke lines drawn at the given view
// scale. A zero scale keeps the current one.
type StrokePayload struct {
	Lines []geometry.Line `json:"lines"`
	Color string          `json:"color"`
	Scale float64         `json:"scale,omitempty"`
}

type MovePayload struct {
	CellIDs []string `json:"cellIds"`
	DX      float64  `json:"dx"`
	DY      float64  `json:"dy"`
}

type WarpPayload struct {
	CellID      string  `json:"cellId"`
	DX          float64 `json:"dx"`
	DY          float64 `json:"dy"`
	X           float64 `json:"x"`
	Y           float64 `json:"y"`
	MinDistance float64 `json:"minDistance"`
	MaxDistance float64 `json:"maxDistance"`
}

type ControlPayload struct {
	CellID    string `json:"cellId"`
	LineIndex int    `json:"lineIndex"`
	Index     int    `json:"index"`
}

type SavedPayload struct {
	Version int32 `json:"version"`
}
