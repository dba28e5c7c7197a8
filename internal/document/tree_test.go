package document

import (
	"encoding/json"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/inamate/cellengine/backend-go/internal/cell"
	"github.com/inamate/cellengine/backend-go/internal/geom"
	"github.com/inamate/cellengine/backend-go/internal/geometry"
	"github.com/inamate/cellengine/backend-go/internal/typeid"
)

func sampleCut(t *testing.T, doc *InDocument) string {
	t.Helper()
	require.Len(t, doc.Project.Cuts, 1)
	return doc.Project.Cuts[0]
}

func TestSampleDocumentIsValid(t *testing.T) {
	doc := NewSampleDocument(typeid.NewProjectID())
	require.NoError(t, doc.Validate())

	tree, err := doc.BuildTree(sampleCut(t, doc))
	require.NoError(t, err)
	require.Len(t, tree.Root.Children, 2)

	body := tree.Root.Children[0]
	require.Len(t, body.Children, 1)
	assert.Equal(t, "#e94560", body.Material.Color)
	assert.Len(t, tree.KeyGeometries(body), 3)
	assert.Same(t, tree.Geometries[body.ID][0], body.Geometry)
	assert.Len(t, tree.KeyGeometries(tree.Root), 3)
}

func TestBuildTreeSharesChildren(t *testing.T) {
	doc := NewEmptyDocument(typeid.NewProjectID(), "shared", typeid.NewCutID(), typeid.NewKeyframeID(), uuid.NewString())
	cutID := doc.Project.Cuts[0]
	rootID := doc.Cuts[cutID].Root

	a, b, shared := uuid.NewString(), uuid.NewString(), uuid.NewString()
	doc.Cells[rootID] = CellRecord{ID: rootID, Children: []string{a, b}}
	doc.Cells[a] = CellRecord{ID: a, Children: []string{shared}}
	doc.Cells[b] = CellRecord{ID: b, Children: []string{shared}}
	doc.Cells[shared] = CellRecord{ID: shared}

	tree, err := doc.BuildTree(cutID)
	require.NoError(t, err)
	assert.Same(t, tree.Root.Children[0].Children[0], tree.Root.Children[1].Children[0])

	require.NoError(t, doc.StoreTree(tree))
	again, err := doc.BuildTree(cutID)
	require.NoError(t, err)
	assert.Same(t, again.Root.Children[0].Children[0], again.Root.Children[1].Children[0])
	assert.Len(t, doc.Cells, 4)
}

func TestBuildTreeErrors(t *testing.T) {
	doc := NewEmptyDocument(typeid.NewProjectID(), "broken", typeid.NewCutID(), typeid.NewKeyframeID(), uuid.NewString())
	cutID := doc.Project.Cuts[0]
	rootID := doc.Cuts[cutID].Root

	_, err := doc.BuildTree("cut_missing")
	assert.ErrorIs(t, err, ErrCutNotFound)

	missing := uuid.NewString()
	doc.Cells[rootID] = CellRecord{ID: rootID, Children: []string{missing}}
	_, err = doc.BuildTree(cutID)
	assert.ErrorIs(t, err, ErrCellNotFound)

	a := uuid.NewString()
	doc.Cells[rootID] = CellRecord{ID: rootID, Children: []string{a}}
	doc.Cells[a] = CellRecord{ID: a, Children: []string{rootID}}
	_, err = doc.BuildTree(cutID)
	assert.ErrorIs(t, err, ErrCellCycle)
	assert.ErrorIs(t, doc.Validate(), ErrCellCycle)

	doc.Cells[rootID] = CellRecord{ID: rootID, Children: []string{"not-a-uuid"}}
	doc.Cells["not-a-uuid"] = CellRecord{ID: "not-a-uuid"}
	_, err = doc.BuildTree(cutID)
	assert.ErrorIs(t, err, ErrInvalidCellID)
}

func TestValidateKeyframes(t *testing.T) {
	doc := NewSampleDocument(typeid.NewProjectID())
	cutID := sampleCut(t, doc)
	cut := doc.Cuts[cutID]
	cut.Keyframes[1].Frame = 30
	doc.Cuts[cutID] = cut
	assert.ErrorIs(t, doc.Validate(), ErrBadKeyframes)

	cut.Keyframes = nil
	doc.Cuts[cutID] = cut
	assert.ErrorIs(t, doc.Validate(), ErrBadKeyframes)
}

func TestStoreTreeReplacesCells(t *testing.T) {
	doc := NewSampleDocument(typeid.NewProjectID())
	cutID := sampleCut(t, doc)
	tree, err := doc.BuildTree(cutID)
	require.NoError(t, err)

	removed := tree.Root.Children[1]
	square := geometry.New(
		geometry.NewLineFromPoints(geom.Pt(0, 0), geom.Pt(10, 0)),
		geometry.NewLineFromPoints(geom.Pt(10, 0), geom.Pt(10, 10)),
		geometry.NewLineFromPoints(geom.Pt(10, 10), geom.Pt(0, 0)),
	)
	added := cell.New(square, cell.NewMaterial("#123456"))
	tree.Root.Children = []*cell.Cell{tree.Root.Children[0], added}
	tree.Geometries[added.ID] = []*geometry.Geometry{square}

	require.NoError(t, doc.StoreTree(tree))
	assert.NotContains(t, doc.Cells, removed.ID.String())
	rec, ok := doc.Cells[added.ID.String()]
	require.True(t, ok)
	assert.Len(t, rec.Geometries, 3)
	assert.True(t, rec.Geometries[1].IsEmpty())
	assert.Equal(t, "#123456", doc.Materials[rec.Material].Color)
	require.NoError(t, doc.Validate())
}

func TestDocumentJSONRoundTrip(t *testing.T) {
	doc := NewSampleDocument(typeid.NewProjectID())
	data, err := json.Marshal(doc)
	require.NoError(t, err)

	var back InDocument
	require.NoError(t, json.Unmarshal(data, &back))
	require.NoError(t, back.Validate())

	cutID := sampleCut(t, doc)
	want, err := doc.BuildTree(cutID)
	require.NoError(t, err)
	got, err := back.BuildTree(cutID)
	require.NoError(t, err)

	wantBody, gotBody := want.Root.Children[0], got.Root.Children[0]
	assert.Equal(t, wantBody.ID, gotBody.ID)
	for i, g := range want.KeyGeometries(wantBody) {
		assert.True(t, g.Equal(got.KeyGeometries(gotBody)[i]), "keyframe %d", i)
	}
	assert.Equal(t, doc.Cuts[cutID].Keyframes[2].Transform, back.Cuts[cutID].Keyframes[2].Transform)
}
