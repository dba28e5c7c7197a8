// Package session runs one user's editing session of a project over a
// websocket. Requests are engine commands; every request gets exactly one
// reply with the same seq.
package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/inamate/cellengine/backend-go/internal/document"
	"github.com/inamate/cellengine/backend-go/internal/engine"
	"github.com/inamate/cellengine/backend-go/internal/geom"
	"github.com/inamate/cellengine/backend-go/internal/geometry"
)

var (
	ErrBadPayload  = errors.New("bad payload")
	ErrUnknownType = errors.New("unknown message type")
)

// Saver persists a document as a new snapshot and returns its version.
type Saver interface {
	SaveDocument(ctx context.Context, projectID string, doc *document.InDocument) (int32, error)
}

// Session holds the engine of one open project. Handle may be called from
// several goroutines; requests are applied one at a time.
type Session struct {
	mu        sync.Mutex
	projectID string
	userID    string
	engine    *engine.Engine
	saver     Saver
	dirty     bool
}

// New opens a session on doc.
func New(projectID, userID string, doc *document.InDocument, saver Saver) (*Session, error) {
	eng := engine.NewEngine()
	if err := eng.SetDocument(doc); err != nil {
		return nil, err
	}
	return &Session{
		projectID: projectID,
		userID:    userID,
		engine:    eng,
		saver:     saver,
	}, nil
}

func (s *Session) ProjectID() string { return s.projectID }
func (s *Session) UserID() string    { return s.userID }

// Welcome is the first message sent on a new connection.
func (s *Session) Welcome() *Message {
	s.mu.Lock()
	defer s.mu.Unlock()
	return reply(TypeWelcome, 0, WelcomePayload{ProjectID: s.projectID, UserID: s.userID, CutID: s.engine.CutID()})
}

// Dirty reports whether the document changed since the last save.
func (s *Session) Dirty() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.dirty
}

// Save stores the document if it changed since the last save.
func (s *Session) Save(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.dirty {
		return nil
	}
	_, err := s.saveLocked(ctx)
	return err
}

func (s *Session) saveLocked(ctx context.Context) (int32, error) {
	version, err := s.saver.SaveDocument(ctx, s.projectID, s.engine.Document())
	if err != nil {
		return 0, fmt.Errorf("save project %s: %w", s.projectID, err)
	}
	s.dirty = false
	slog.Info("document saved", "project", s.projectID, "version", version)
	return version, nil
}

type handler struct {
	edits bool
	fn    func(s *Session, ctx context.Context, payload json.RawMessage) (any, error)
}

var handlers = map[string]handler{
	TypeState: {fn: func(s *Session, _ context.Context, _ json.RawMessage) (any, error) {
		return s.engine.PlaybackState(), nil
	}},
	TypeRender: {fn: func(s *Session, _ context.Context, _ json.RawMessage) (any, error) {
		return commands(s.engine.Commands()), nil
	}},
	TypeTick: {fn: func(s *Session, _ context.Context, _ json.RawMessage) (any, error) {
		s.engine.Tick()
		return commands(s.engine.Commands()), nil
	}},
	TypePlayheadSet: {fn: withPayload(func(s *Session, p FramePayload) (any, error) {
		s.engine.SetPlayhead(p.Frame)
		return s.engine.PlaybackState(), nil
	})},
	TypePlay: {fn: func(s *Session, _ context.Context, _ json.RawMessage) (any, error) {
		s.engine.Play()
		return s.engine.PlaybackState(), nil
	}},
	TypePause: {fn: func(s *Session, _ context.Context, _ json.RawMessage) (any, error) {
		s.engine.Pause()
		return s.engine.PlaybackState(), nil
	}},
	TypeCutSet: {fn: withPayload(func(s *Session, p CutPayload) (any, error) {
		if err := s.engine.SetCut(p.CutID); err != nil {
			return nil, err
		}
		return s.engine.PlaybackState(), nil
	})},
	TypeDocGet: {fn: func(s *Session, _ context.Context, _ json.RawMessage) (any, error) {
		return s.engine.Document(), nil
	}},
	TypeDocSave: {fn: func(s *Session, ctx context.Context, _ json.RawMessage) (any, error) {
		version, err := s.saveLocked(ctx)
		if err != nil {
			return nil, err
		}
		return SavedPayload{Version: version}, nil
	}},
	TypeHit: {fn: withPayload(func(s *Session, p PointPayload) (any, error) {
		return CellPayload{CellID: s.engine.HitTest(p.X, p.Y)}, nil
	})},
	TypeNearest: {fn: withPayload(func(s *Session, p PointPayload) (any, error) {
		nb, ok := s.engine.NearestBezier(p.X, p.Y)
		if !ok {
			return nil, nil
		}
		return nb, nil
	})},
	TypeSelectionSet: {fn: withPayload(func(s *Session, p CellsPayload) (any, error) {
		s.engine.SetSelection(p.CellIDs)
		return CellsPayload{CellIDs: s.engine.Selection()}, nil
	})},
	TypeSelectionBounds: {fn: func(s *Session, _ context.Context, _ json.RawMessage) (any, error) {
		r := s.engine.SelectionBounds()
		return RectPayload{X: r.X, Y: r.Y, Width: r.Width, Height: r.Height}, nil
	}},
	TypeSelectRect: {fn: withPayload(func(s *Session, p RectPayload) (any, error) {
		ids := s.engine.SelectRect(geom.Rect{X: p.X, Y: p.Y, Width: p.Width, Height: p.Height})
		return CellsPayload{CellIDs: ids}, nil
	})},
	TypeSelectLasso: {fn: withPayload(func(s *Session, p LassoPayload) (any, error) {
		ids, err := s.engine.SelectLasso(p.Points)
		return CellsPayload{CellIDs: ids}, err
	})},
	TypeStrokeAdd: {edits: true, fn: withPayload(func(s *Session, p StrokePayload) (any, error) {
		if p.Scale > 0 {
			s.engine.SetSnapScale(p.Scale)
		}
		id, err := s.engine.AddStroke(p.Lines, p.Color)
		return CellPayload{CellID: id}, err
	})},
	TypeCellRemove: {edits: true, fn: withPayload(func(s *Session, p CellPayload) (any, error) {
		return nil, s.engine.RemoveCell(p.CellID)
	})},
	TypeCellDuplicate: {edits: true, fn: withPayload(func(s *Session, p CellPayload) (any, error) {
		id, err := s.engine.Duplicate(p.CellID)
		return CellPayload{CellID: id}, err
	})},
	TypeCellMove: {edits: true, fn: withPayload(func(s *Session, p MovePayload) (any, error) {
		return nil, s.engine.Move(p.CellIDs, p.DX, p.DY)
	})},
	TypeCellWarp: {edits: true, fn: withPayload(func(s *Session, p WarpPayload) (any, error) {
		return nil, s.engine.Warp(p.CellID, p.DX, p.DY, geom.Pt(p.X, p.Y), p.MinDistance, p.MaxDistance)
	})},
	TypeControlSplit: {edits: true, fn: withPayload(func(s *Session, p ControlPayload) (any, error) {
		return nil, s.engine.SplitControl(p.CellID, p.LineIndex, p.Index)
	})},
	TypeControlRemove: {edits: true, fn: withPayload(func(s *Session, p ControlPayload) (any, error) {
		return nil, s.engine.RemoveControl(p.CellID, p.LineIndex, p.Index)
	})},
	TypeLassoErase: {edits: true, fn: withPayload(func(s *Session, p LassoPayload) (any, error) {
		ids, err := s.engine.EraseLasso(p.Points)
		return CellsPayload{CellIDs: ids}, err
	})},
}

// withPayload decodes the request payload into P before calling fn.
func withPayload[P any](fn func(s *Session, p P) (any, error)) func(*Session, context.Context, json.RawMessage) (any, error) {
	return func(s *Session, _ context.Context, raw json.RawMessage) (any, error) {
		var p P
		if len(raw) > 0 {
			if err := json.Unmarshal(raw, &p); err != nil {
				return nil, fmt.Errorf("%w: %w", ErrBadPayload, err)
			}
		}
		return fn(s, p)
	}
}

// commands keeps an empty draw list a JSON array.
func commands(cmds []engine.DrawCommand) []engine.DrawCommand {
	if cmds == nil {
		return []engine.DrawCommand{}
	}
	return cmds
}

// Handle applies one request and returns its reply.
func (s *Session) Handle(ctx context.Context, msg *Message) *Message {
	h, ok := handlers[msg.Type]
	if !ok {
		return errorReply(msg.Seq, fmt.Errorf("%w: %q", ErrUnknownType, msg.Type))
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	result, err := h.fn(s, ctx, msg.Payload)
	if err != nil {
		slog.Debug("request failed", "type", msg.Type, "project", s.projectID, "error", err)
		return errorReply(msg.Seq, err)
	}
	if h.edits {
		s.dirty = true
	}
	return reply(TypeResult, msg.Seq, result)
}

func reply(typ string, seq int64, payload any) *Message {
	data, err := json.Marshal(payload)
	if err != nil {
		return errorReply(seq, fmt.Errorf("marshal %s reply: %w", typ, err))
	}
	return &Message{Type: typ, Seq: seq, Payload: data}
}

func errorReply(seq int64, err error) *Message {
	data, _ := json.Marshal(ErrorPayload{Code: errorCode(err), Message: err.Error()})
	return &Message{Type: TypeError, Seq: seq, Payload: data}
}

func errorCode(err error) string {
	switch {
	case errors.Is(err, ErrBadPayload), errors.Is(err, geometry.ErrTooFewControls):
		return CodeBadRequest
	case errors.Is(err, ErrUnknownType):
		return CodeUnknownType
	case errors.Is(err, engine.ErrCellNotFound), errors.Is(err, engine.ErrCutNotFound):
		return CodeNotFound
	case errors.Is(err, engine.ErrCellLocked):
		return CodeLocked
	case errors.Is(err, engine.ErrEmptyStroke), errors.Is(err, engine.ErrLassoTooSmall),
		errors.Is(err, geometry.ErrInvalidIndex), errors.Is(err, engine.ErrNoDocument):
		return CodeInvalid
	default:
		return CodeInternal
	}
}
