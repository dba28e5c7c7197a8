package project

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/inamate/cellengine/backend-go/internal/db"
	"github.com/inamate/cellengine/backend-go/internal/document"
	"github.com/inamate/cellengine/backend-go/internal/typeid"
)

var (
	ErrNotFound        = errors.New("project not found")
	ErrForbidden       = errors.New("forbidden")
	ErrInvalidDocument = errors.New("invalid document")
	ErrConflict        = errors.New("snapshot version conflict")
)

// Store is the subset of db.Queries the service needs.
type Store interface {
	CreateProject(ctx context.Context, arg db.CreateProjectParams) (db.Project, error)
	GetProject(ctx context.Context, id string) (db.Project, error)
	ListProjectsForOwner(ctx context.Context, ownerID string) ([]db.Project, error)
	DeleteProject(ctx context.Context, id string) error
	TouchProject(ctx context.Context, id string) error
	CreateSnapshot(ctx context.Context, arg db.CreateSnapshotParams) (db.Snapshot, error)
	GetLatestSnapshot(ctx context.Context, projectID string) (db.Snapshot, error)
}

type Service struct {
	store Store
	now   func() time.Time
}

func NewService(store Store) *Service {
	return &Service{store: store, now: time.Now}
}

type Project struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	OwnerID   string `json:"ownerId"`
	FPS       int    `json:"fps"`
	Width     int    `json:"width"`
	Height    int    `json:"height"`
	CreatedAt string `json:"createdAt"`
	UpdatedAt string `json:"updatedAt"`
}

func (s *Service) Create(ctx context.Context, name, ownerID string) (*Project, error) {
	projectID := typeid.NewProjectID()

	dbProj, err := s.store.CreateProject(ctx, db.CreateProjectParams{
		ID:      projectID,
		Name:    name,
		OwnerID: ownerID,
	})
	if err != nil {
		return nil, fmt.Errorf("create project: %w", err)
	}

	// Seed empty document snapshot
	emptyDoc := document.NewEmptyDocument(projectID, name, typeid.NewCutID(), typeid.NewKeyframeID(), uuid.NewString())
	now := s.now().UTC().Format(time.RFC3339)
	emptyDoc.Project.CreatedAt = now
	emptyDoc.Project.UpdatedAt = now
	docJSON, err := json.Marshal(emptyDoc)
	if err != nil {
		return nil, fmt.Errorf("marshal empty document: %w", err)
	}

	_, err = s.store.CreateSnapshot(ctx, db.CreateSnapshotParams{
		ID:        typeid.NewSnapshotID(),
		ProjectID: projectID,
		Version:   1,
		Document:  docJSON,
	})
	if err != nil {
		return nil, fmt.Errorf("create initial snapshot: %w", err)
	}

	return dbProjectToProject(dbProj), nil
}

func (s *Service) Get(ctx context.Context, projectID, userID string) (*Project, error) {
	dbProj, err := s.owned(ctx, projectID, userID)
	if err != nil {
		return nil, err
	}
	return dbProjectToProject(dbProj), nil
}

func (s *Service) List(ctx context.Context, userID string) ([]Project, error) {
	dbProjects, err := s.store.ListProjectsForOwner(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list projects: %w", err)
	}

	projects := make([]Project, len(dbProjects))
	for i, p := range dbProjects {
		projects[i] = *dbProjectToProject(p)
	}

	return projects, nil
}

func (s *Service) Delete(ctx context.Context, projectID, userID string) error {
	if _, err := s.owned(ctx, projectID, userID); err != nil {
		return err
	}
	return s.store.DeleteProject(ctx, projectID)
}

// Authorize checks that userID may open projectID.
func (s *Service) Authorize(ctx context.Context, projectID, userID string) error {
	_, err := s.owned(ctx, projectID, userID)
	return err
}

func (s *Service) GetLatestSnapshot(ctx context.Context, projectID, userID string) (json.RawMessage, error) {
	if _, err := s.owned(ctx, projectID, userID); err != nil {
		return nil, err
	}

	snap, err := s.store.GetLatestSnapshot(ctx, projectID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get snapshot: %w", err)
	}

	return snap.Document, nil
}

// SaveSnapshot stores an uploaded document as the next version.
func (s *Service) SaveSnapshot(ctx context.Context, projectID, userID string, data []byte) (int32, error) {
	if _, err := s.owned(ctx, projectID, userID); err != nil {
		return 0, err
	}

	var doc document.InDocument
	if err := json.Unmarshal(data, &doc); err != nil {
		return 0, fmt.Errorf("%w: %w", ErrInvalidDocument, err)
	}
	if doc.Project.ID != projectID {
		return 0, fmt.Errorf("%w: document belongs to project %q", ErrInvalidDocument, doc.Project.ID)
	}
	if err := doc.Validate(); err != nil {
		return 0, fmt.Errorf("%w: %w", ErrInvalidDocument, err)
	}

	return s.SaveDocument(ctx, projectID, &doc)
}

// Document returns the latest document of a project owned by userID.
func (s *Service) Document(ctx context.Context, projectID, userID string) (*document.InDocument, error) {
	if _, err := s.owned(ctx, projectID, userID); err != nil {
		return nil, err
	}
	return s.LoadDocument(ctx, projectID)
}

// LoadDocument reads the latest snapshot without an ownership check.
func (s *Service) LoadDocument(ctx context.Context, projectID string) (*document.InDocument, error) {
	snap, err := s.store.GetLatestSnapshot(ctx, projectID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get snapshot: %w", err)
	}

	var doc document.InDocument
	if err := json.Unmarshal(snap.Document, &doc); err != nil {
		return nil, fmt.Errorf("decode snapshot %s: %w", snap.ID, err)
	}
	return &doc, nil
}

// SaveDocument writes doc as a new snapshot one version above the latest.
func (s *Service) SaveDocument(ctx context.Context, projectID string, doc *document.InDocument) (int32, error) {
	nextVersion := int32(1)
	current, err := s.store.GetLatestSnapshot(ctx, projectID)
	switch {
	case err == nil:
		nextVersion = current.Version + 1
	case !errors.Is(err, pgx.ErrNoRows):
		return 0, fmt.Errorf("get snapshot: %w", err)
	}

	saved := *doc
	saved.Project.Version = int(nextVersion)
	saved.Project.UpdatedAt = s.now().UTC().Format(time.RFC3339)
	docJSON, err := json.Marshal(&saved)
	if err != nil {
		return 0, fmt.Errorf("marshal document: %w", err)
	}

	_, err = s.store.CreateSnapshot(ctx, db.CreateSnapshotParams{
		ID:        typeid.NewSnapshotID(),
		ProjectID: projectID,
		Version:   nextVersion,
		Document:  docJSON,
	})
	if err != nil {
		if db.IsUniqueViolation(err) {
			return 0, ErrConflict
		}
		return 0, fmt.Errorf("create snapshot: %w", err)
	}

	if err := s.store.TouchProject(ctx, projectID); err != nil {
		return 0, fmt.Errorf("touch project: %w", err)
	}
	return nextVersion, nil
}

func (s *Service) owned(ctx context.Context, projectID, userID string) (db.Project, error) {
	dbProj, err := s.store.GetProject(ctx, projectID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return db.Project{}, ErrNotFound
		}
		return db.Project{}, fmt.Errorf("get project: %w", err)
	}
	if dbProj.OwnerID != userID {
		return db.Project{}, ErrForbidden
	}
	return dbProj, nil
}

func dbProjectToProject(p db.Project) *Project {
	return &Project{
		ID:        p.ID,
		Name:      p.Name,
		OwnerID:   p.OwnerID,
		FPS:       int(p.Fps),
		Width:     int(p.Width),
		Height:    int(p.Height),
		CreatedAt: p.CreatedAt.Time.Format("2006-01-02T15:04:05Z"),
		UpdatedAt: p.UpdatedAt.Time.Format("2006-01-02T15:04:05Z"),
	}
}
