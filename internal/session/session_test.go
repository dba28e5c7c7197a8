package session

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/inamate/cellengine/backend-go/internal/document"
	"github.com/inamate/cellengine/backend-go/internal/geom"
	"github.com/inamate/cellengine/backend-go/internal/geometry"
	"github.com/inamate/cellengine/backend-go/internal/typeid"
)

type memStore struct {
	mu      sync.Mutex
	docs    map[string]*document.InDocument
	saves   int
	saveErr error
}

func newMemStore() *memStore {
	return &memStore{docs: make(map[string]*document.InDocument)}
}

func (m *memStore) LoadDocument(_ context.Context, projectID string) (*document.InDocument, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	doc, ok := m.docs[projectID]
	if !ok {
		return nil, errors.New("no such project")
	}
	return doc, nil
}

func (m *memStore) SaveDocument(_ context.Context, projectID string, doc *document.InDocument) (int32, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.saveErr != nil {
		return 0, m.saveErr
	}
	m.saves++
	m.docs[projectID] = doc
	return int32(m.saves), nil
}

func newSession(t *testing.T) (*Session, *memStore) {
	t.Helper()
	store := newMemStore()
	projectID := typeid.NewProjectID()
	s, err := New(projectID, "user_1", document.NewSampleDocument(projectID), store)
	require.NoError(t, err)
	return s, store
}

func request(t *testing.T, typ string, seq int64, payload any) *Message {
	t.Helper()
	msg := &Message{Type: typ, Seq: seq}
	if payload != nil {
		data, err := json.Marshal(payload)
		require.NoError(t, err)
		msg.Payload = data
	}
	return msg
}

func decode[T any](t *testing.T, msg *Message) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(msg.Payload, &v))
	return v
}

func TestWelcome(t *testing.T) {
	s, _ := newSession(t)
	msg := s.Welcome()
	assert.Equal(t, TypeWelcome, msg.Type)
	w := decode[WelcomePayload](t, msg)
	assert.Equal(t, s.ProjectID(), w.ProjectID)
	assert.Equal(t, "user_1", w.UserID)
	assert.NotEmpty(t, w.CutID)
}

func TestHandleRender(t *testing.T) {
	s, _ := newSession(t)
	out := s.Handle(context.Background(), request(t, TypeRender, 7, nil))
	require.Equal(t, TypeResult, out.Type)
	assert.Equal(t, int64(7), out.Seq)

	var cmds []map[string]any
	require.NoError(t, json.Unmarshal(out.Payload, &cmds))
	assert.Len(t, cmds, 6)
	assert.False(t, s.Dirty())
}

func TestHandlePlayback(t *testing.T) {
	s, _ := newSession(t)
	ctx := context.Background()

	out := s.Handle(ctx, request(t, TypePlayheadSet, 1, FramePayload{Frame: 12}))
	require.Equal(t, TypeResult, out.Type)
	assert.JSONEq(t, `{"frame":12,"playing":false,"fps":24,"totalFrames":48}`, string(out.Payload))

	s.Handle(ctx, request(t, TypePlay, 2, nil))
	s.Handle(ctx, request(t, TypeTick, 3, nil))
	out = s.Handle(ctx, request(t, TypeState, 4, nil))
	assert.JSONEq(t, `{"frame":13,"playing":true,"fps":24,"totalFrames":48}`, string(out.Payload))
}

func TestHandleErrors(t *testing.T) {
	s, _ := newSession(t)
	ctx := context.Background()

	tests := []struct {
		name string
		msg  *Message
		code string
	}{
		{"unknown type", &Message{Type: "explode", Seq: 1}, CodeUnknownType},
		{"bad payload", &Message{Type: TypeHit, Seq: 2, Payload: json.RawMessage(`"x"`)}, CodeBadRequest},
		{"missing cell", request(t, TypeCellRemove, 3, CellPayload{CellID: "nope"}), CodeNotFound},
		{"missing cut", request(t, TypeCutSet, 4, CutPayload{CutID: "cut_missing"}), CodeNotFound},
		{"empty stroke", request(t, TypeStrokeAdd, 5, StrokePayload{Color: "#000000"}), CodeInvalid},
		{"small lasso", request(t, TypeLassoErase, 6, LassoPayload{Points: []geom.Point{geom.Pt(0, 0)}}), CodeInvalid},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out := s.Handle(ctx, tt.msg)
			require.Equal(t, TypeError, out.Type)
			assert.Equal(t, tt.msg.Seq, out.Seq)
			assert.Equal(t, tt.code, decode[ErrorPayload](t, out).Code)
		})
	}
	assert.False(t, s.Dirty())
}

func TestEditsMarkDirtyAndSave(t *testing.T) {
	s, store := newSession(t)
	ctx := context.Background()

	square := []geometry.Line{
		geometry.NewLineFromPoints(geom.Pt(1000, 500), geom.Pt(1100, 500)),
		geometry.NewLineFromPoints(geom.Pt(1100, 500), geom.Pt(1100, 600)),
		geometry.NewLineFromPoints(geom.Pt(1100, 600), geom.Pt(1000, 600)),
		geometry.NewLineFromPoints(geom.Pt(1000, 600), geom.Pt(1000, 500)),
	}
	out := s.Handle(ctx, request(t, TypeStrokeAdd, 1, StrokePayload{Lines: square, Color: "#ff0000"}))
	require.Equal(t, TypeResult, out.Type, string(out.Payload))
	id := decode[CellPayload](t, out).CellID
	require.NotEmpty(t, id)
	assert.True(t, s.Dirty())

	out = s.Handle(ctx, request(t, TypeHit, 2, PointPayload{X: 1050, Y: 550}))
	assert.Equal(t, id, decode[CellPayload](t, out).CellID)

	require.NoError(t, s.Save(ctx))
	assert.False(t, s.Dirty())
	assert.Equal(t, 1, store.saves)
	assert.Contains(t, store.docs[s.ProjectID()].Cells, id)

	// Nothing changed since the last save.
	require.NoError(t, s.Save(ctx))
	assert.Equal(t, 1, store.saves)

	out = s.Handle(ctx, request(t, TypeDocSave, 3, nil))
	require.Equal(t, TypeResult, out.Type)
	assert.Equal(t, int32(2), decode[SavedPayload](t, out).Version)
}

func TestSaveFailureKeepsDirty(t *testing.T) {
	s, store := newSession(t)
	ctx := context.Background()
	store.saveErr = errors.New("disk full")

	out := s.Handle(ctx, request(t, TypeCellMove, 1, MovePayload{DX: 1}))
	require.Equal(t, TypeResult, out.Type)
	require.True(t, s.Dirty())

	assert.ErrorContains(t, s.Save(ctx), "disk full")
	assert.True(t, s.Dirty())

	out = s.Handle(ctx, request(t, TypeDocSave, 2, nil))
	assert.Equal(t, CodeInternal, decode[ErrorPayload](t, out).Code)
}

func TestSelectionRoundTrip(t *testing.T) {
	s, _ := newSession(t)
	ctx := context.Background()

	rect := RectPayload{X: 690, Y: 140, Width: 220, Height: 220}
	out := s.Handle(ctx, request(t, TypeSelectRect, 1, rect))
	ids := decode[CellsPayload](t, out).CellIDs
	require.Len(t, ids, 1)

	out = s.Handle(ctx, request(t, TypeSelectionBounds, 2, nil))
	b := decode[RectPayload](t, out)
	assert.Greater(t, b.Width, 0.0)

	out = s.Handle(ctx, request(t, TypeSelectionSet, 3, CellsPayload{CellIDs: []string{}}))
	assert.Empty(t, decode[CellsPayload](t, out).CellIDs)
}

func TestRegistry(t *testing.T) {
	store := newMemStore()
	projectID := typeid.NewProjectID()
	store.docs[projectID] = document.NewSampleDocument(projectID)
	r := NewRegistry(store)
	ctx := context.Background()

	s, err := r.Open(ctx, projectID, "user_1")
	require.NoError(t, err)
	assert.Equal(t, 1, r.Len())

	_, err = r.Open(ctx, projectID, "user_2")
	assert.ErrorIs(t, err, ErrSessionBusy)

	_, err = r.Open(ctx, typeid.NewProjectID(), "user_1")
	assert.Error(t, err)

	s.Handle(ctx, request(t, TypeCellMove, 1, MovePayload{DX: 1}))
	require.NoError(t, r.SaveAll(ctx))
	assert.Equal(t, 1, store.saves)

	s.Handle(ctx, request(t, TypeCellMove, 2, MovePayload{DX: 1}))
	require.NoError(t, r.Close(ctx, s))
	assert.Equal(t, 2, store.saves)
	assert.Zero(t, r.Len())

	_, err = r.Open(ctx, projectID, "user_2")
	assert.NoError(t, err)
}

func TestRegistryCloseKeepsUnsavedSession(t *testing.T) {
	store := newMemStore()
	projectID := typeid.NewProjectID()
	store.docs[projectID] = document.NewSampleDocument(projectID)
	r := NewRegistry(store)
	ctx := context.Background()

	s, err := r.Open(ctx, projectID, "user_1")
	require.NoError(t, err)
	s.Handle(ctx, request(t, TypeCellMove, 1, MovePayload{DX: 1}))

	store.saveErr = errors.New("database down")
	assert.ErrorIs(t, r.Close(ctx, s), store.saveErr)
	assert.Equal(t, 1, r.Len())
	_, err = r.Open(ctx, projectID, "user_2")
	assert.ErrorIs(t, err, ErrSessionBusy)

	assert.Error(t, r.SaveAll(ctx))
	assert.Equal(t, 1, r.Len())

	store.saveErr = nil
	require.NoError(t, r.SaveAll(ctx))
	assert.Equal(t, 1, store.saves)
	assert.Zero(t, r.Len())

	_, err = r.Open(ctx, projectID, "user_2")
	assert.NoError(t, err)
}

// slowStore blocks loads of one project until release is closed.
type slowStore struct {
	*memStore
	slowID  string
	loading chan struct{}
	release chan struct{}
}

func (s *slowStore) LoadDocument(ctx context.Context, projectID string) (*document.InDocument, error) {
	if projectID == s.slowID {
		close(s.loading)
		<-s.release
	}
	return s.memStore.LoadDocument(ctx, projectID)
}

func TestRegistryOpenLoadsWithoutLock(t *testing.T) {
	mem := newMemStore()
	slowID, fastID := typeid.NewProjectID(), typeid.NewProjectID()
	mem.docs[slowID] = document.NewSampleDocument(slowID)
	mem.docs[fastID] = document.NewSampleDocument(fastID)
	store := &slowStore{memStore: mem, slowID: slowID, loading: make(chan struct{}), release: make(chan struct{})}
	r := NewRegistry(store)
	ctx := context.Background()

	opened := make(chan error, 1)
	go func() {
		_, err := r.Open(ctx, slowID, "user_1")
		opened <- err
	}()
	<-store.loading

	done := make(chan struct{})
	go func() {
		defer close(done)
		_, err := r.Open(ctx, fastID, "user_2")
		assert.NoError(t, err)
		_, err = r.Open(ctx, slowID, "user_3")
		assert.ErrorIs(t, err, ErrSessionBusy)
		assert.Equal(t, 1, r.Len())
	}()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("open of another project waited for a pending load")
	}

	close(store.release)
	require.NoError(t, <-opened)
	assert.Equal(t, 2, r.Len())
}

func TestRegistryOpenReleasesSlotOnLoadError(t *testing.T) {
	r := NewRegistry(newMemStore())
	ctx := context.Background()
	projectID := typeid.NewProjectID()

	_, err := r.Open(ctx, projectID, "user_1")
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrSessionBusy)

	_, err = r.Open(ctx, projectID, "user_1")
	assert.NotErrorIs(t, err, ErrSessionBusy, "failed load must not leave the project reserved")
	assert.Zero(t, r.Len())
}
