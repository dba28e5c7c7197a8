package engine

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/inamate/cellengine/backend-go/internal/cell"
	"github.com/inamate/cellengine/backend-go/internal/document"
	"github.com/inamate/cellengine/backend-go/internal/geom"
)

var (
	ErrNoDocument   = errors.New("no document loaded")
	ErrCutNotFound  = errors.New("cut not found")
	ErrCellNotFound = errors.New("cell not found")
	ErrEmptyStroke  = errors.New("stroke has no usable lines")
)

// Engine owns a document and the cell tree of the cut being edited. It
// processes commands from the frontend and returns query results.
// An Engine is not safe for concurrent use.
type Engine struct {
	// Document state
	doc   *document.InDocument
	cutID string
	tree  *document.CutTree

	// Cut transform at the evaluated frame
	matrix geom.Matrix2D

	// Playback state
	frame   int
	playing bool
	fps     int

	// Total frames in the current cut
	totalFrames int

	// Selected cell ids (backend owns this)
	selection []string

	// Scale of the view strokes are drawn in; snapping distances shrink as
	// the user zooms in.
	snapScale float64

	// Dirty flag - tree needs re-evaluation
	dirty bool
}

// NewEngine creates a new engine instance.
func NewEngine() *Engine {
	return &Engine{
		fps:         24,
		totalFrames: 48,
		matrix:      geom.Identity(),
		snapScale:   1,
		dirty:       true,
	}
}

// --- Commands (frontend → backend) ---

// LoadDocument loads a document from JSON.
func (e *Engine) LoadDocument(jsonData string) error {
	var doc document.InDocument
	if err := json.Unmarshal([]byte(jsonData), &doc); err != nil {
		return err
	}
	return e.SetDocument(&doc)
}

// SetDocument replaces the document and resets playback and selection.
func (e *Engine) SetDocument(doc *document.InDocument) error {
	if err := e.load(doc, ""); err != nil {
		return err
	}
	e.frame = 0
	e.playing = false
	e.selection = nil
	return nil
}

// UpdateDocument reloads a document from JSON while preserving playback state.
// Used when the document changes during editing/playback (e.g. keyframe recording).
func (e *Engine) UpdateDocument(jsonData string) error {
	var doc document.InDocument
	if err := json.Unmarshal([]byte(jsonData), &doc); err != nil {
		return err
	}
	if err := e.load(&doc, e.cutID); err != nil {
		return err
	}

	// Clamp frame to valid range (but don't reset it)
	e.frame = e.clampFrame(e.frame)

	// Drop selected cells that no longer exist
	kept := e.selection[:0]
	for _, id := range e.selection {
		if _, err := e.cell(id); err == nil {
			kept = append(kept, id)
		}
	}
	e.selection = kept
	return nil
}

// LoadSampleDocument loads the built-in sample document.
func (e *Engine) LoadSampleDocument(projectID string) {
	// The sample document is always valid.
	_ = e.SetDocument(document.NewSampleDocument(projectID))
}

func (e *Engine) load(doc *document.InDocument, cutID string) error {
	if err := doc.Validate(); err != nil {
		return fmt.Errorf("load document: %w", err)
	}
	if _, ok := doc.Cuts[cutID]; !ok {
		cutID = ""
		if len(doc.Project.Cuts) > 0 {
			cutID = doc.Project.Cuts[0]
		}
	}
	e.doc = doc
	e.fps = doc.Project.FPS
	if e.fps <= 0 {
		e.fps = 24
	}
	if cutID == "" {
		e.cutID, e.tree, e.totalFrames = "", nil, 48
		e.dirty = true
		return nil
	}
	return e.SetCut(cutID)
}

// SetCut switches editing to another cut of the document.
func (e *Engine) SetCut(cutID string) error {
	if e.doc == nil {
		return ErrNoDocument
	}
	tree, err := e.doc.BuildTree(cutID)
	if errors.Is(err, document.ErrCutNotFound) {
		return fmt.Errorf("%w: %s", ErrCutNotFound, cutID)
	}
	if err != nil {
		return err
	}
	if cutID != e.cutID {
		e.selection = nil
	}
	e.cutID = cutID
	e.tree = tree
	e.totalFrames = tree.Cut.Length
	if e.totalFrames <= 0 {
		e.totalFrames = 48
	}
	e.frame = e.clampFrame(e.frame)
	e.dirty = true
	return nil
}

// SetPlayhead sets the current frame.
func (e *Engine) SetPlayhead(frame int) {
	frame = e.clampFrame(frame)
	if e.frame != frame {
		e.frame = frame
		e.dirty = true
	}
}

func (e *Engine) clampFrame(frame int) int {
	if frame >= e.totalFrames {
		frame = e.totalFrames - 1
	}
	if frame < 0 {
		frame = 0
	}
	return frame
}

// Play starts playback.
func (e *Engine) Play() {
	e.playing = true
}

// Pause stops playback.
func (e *Engine) Pause() {
	e.playing = false
}

// TogglePlay toggles play/pause state.
func (e *Engine) TogglePlay() {
	e.playing = !e.playing
}

// SetSelection sets the selected cell IDs.
func (e *Engine) SetSelection(ids []string) {
	e.selection = ids
}

// SetSnapScale sets the view scale used when ordering new strokes.
func (e *Engine) SetSnapScale(scale float64) {
	if scale > 0 {
		e.snapScale = scale
	}
}

// Tick advances the frame if playing and returns draw commands.
// This is called once per animation frame from the frontend.
func (e *Engine) Tick() string {
	if e.playing {
		e.frame = (e.frame + 1) % e.totalFrames
		e.dirty = true
	}

	return e.Render()
}

// --- Queries (frontend ← backend) ---

// evaluate brings the cell geometries of the tree to the current frame.
func (e *Engine) evaluate() {
	if e.tree == nil || !e.dirty {
		return
	}
	e.matrix = EvaluateTree(e.tree, e.frame)
	e.dirty = false
}

// Commands evaluates the cut and returns its draw commands.
func (e *Engine) Commands() []DrawCommand {
	if e.tree == nil {
		return nil
	}
	e.evaluate()
	return CompileDrawCommands(e.tree.Root, e.matrix)
}

// Render evaluates the cut and returns draw commands as JSON.
func (e *Engine) Render() string {
	result, _ := DrawCommandsToJSON(e.Commands())
	return result
}

// HitTest performs a hit test at the given canvas coordinates.
// Returns the cell ID of the topmost hit, or empty string.
func (e *Engine) HitTest(x, y float64) string {
	if e.tree == nil {
		return ""
	}
	e.evaluate()
	if c := e.tree.Root.AtPoint(e.toCut(geom.Pt(x, y))); c != nil {
		return c.ID.String()
	}
	return ""
}

// toCut maps a canvas point into cut coordinates.
func (e *Engine) toCut(p geom.Point) geom.Point {
	return e.matrix.Invert().Apply(p)
}

// SelectionBounds returns the canvas bounding box of the selected cells.
func (e *Engine) SelectionBounds() geom.Rect {
	if e.tree == nil || len(e.selection) == 0 {
		return geom.Rect{}
	}
	e.evaluate()
	var result geom.Rect
	for _, id := range e.selection {
		c, err := e.cell(id)
		if err != nil || c.IsEmptyGeometry() {
			continue
		}
		result = result.Union(e.matrix.ApplyRect(c.ImageBounds()))
	}
	return result
}

// GetSelectionBounds returns the bounding box of the current selection as JSON.
func (e *Engine) GetSelectionBounds() string {
	return RectToJSON(e.SelectionBounds())
}

// CutID returns the id of the cut being edited.
func (e *Engine) CutID() string {
	return e.cutID
}

// GetCut returns the current cut metadata as JSON.
func (e *Engine) GetCut() string {
	if e.tree == nil {
		return "{}"
	}
	data, _ := json.Marshal(e.tree.Cut)
	return string(data)
}

// PlaybackState is the playback position reported to the frontend.
type PlaybackState struct {
	Frame       int  `json:"frame"`
	Playing     bool `json:"playing"`
	FPS         int  `json:"fps"`
	TotalFrames int  `json:"totalFrames"`
}

// PlaybackState returns the current playback state.
func (e *Engine) PlaybackState() PlaybackState {
	return PlaybackState{
		Frame:       e.frame,
		Playing:     e.playing,
		FPS:         e.fps,
		TotalFrames: e.totalFrames,
	}
}

// GetPlaybackState returns the current playback state as JSON.
func (e *Engine) GetPlaybackState() string {
	data, _ := json.Marshal(e.PlaybackState())
	return string(data)
}

// Document returns the document with all edits applied.
func (e *Engine) Document() *document.InDocument {
	return e.doc
}

// GetDocument returns the full document as JSON (for debugging/sync).
func (e *Engine) GetDocument() string {
	if e.doc == nil {
		return "{}"
	}
	data, _ := json.Marshal(e.doc)
	return string(data)
}

// Selection returns the selected cell ids.
func (e *Engine) Selection() []string {
	return e.selection
}

// GetSelection returns the current selection as JSON.
func (e *Engine) GetSelection() string {
	data, _ := json.Marshal(e.selection)
	return string(data)
}

// GetFrame returns the current frame number.
func (e *Engine) GetFrame() int {
	return e.frame
}

// IsPlaying returns whether playback is active.
func (e *Engine) IsPlaying() bool {
	return e.playing
}

// GetFPS returns the frames per second.
func (e *Engine) GetFPS() int {
	return e.fps
}

// GetTotalFrames returns the total number of frames.
func (e *Engine) GetTotalFrames() int {
	return e.totalFrames
}

// cell finds a cell of the current cut by id.
func (e *Engine) cell(id string) (*cell.Cell, error) {
	if e.tree == nil {
		return nil, ErrNoDocument
	}
	uid, err := uuid.Parse(id)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrCellNotFound, id)
	}
	c := e.tree.Root.Find(uid)
	if c == nil {
		return nil, fmt.Errorf("%w: %s", ErrCellNotFound, id)
	}
	return c, nil
}
