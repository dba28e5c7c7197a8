package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/inamate/cellengine/backend-go/internal/document"
)

var ErrSessionBusy = errors.New("project is open in another session")

// Loader reads the latest document of a project.
type Loader interface {
	LoadDocument(ctx context.Context, projectID string) (*document.InDocument, error)
}

// Store loads and saves project documents.
type Store interface {
	Loader
	Saver
}

// Registry tracks the open session of every project. A project has at most
// one session at a time.
type Registry struct {
	mu       sync.Mutex
	store    Store
	sessions map[string]*entry // projectID -> entry
}

// entry holds a project's slot. session is nil while the document loads;
// closed marks a session released by its client whose changes are not saved yet.
type entry struct {
	session *Session
	closed  bool
}

func NewRegistry(store Store) *Registry {
	return &Registry{
		store:    store,
		sessions: make(map[string]*entry),
	}
}

// Open loads the project and starts a session for userID. The project slot
// is reserved before loading, so a concurrent Open of the same project fails
// with ErrSessionBusy without waiting for the store.
func (r *Registry) Open(ctx context.Context, projectID, userID string) (*Session, error) {
	r.mu.Lock()
	if _, ok := r.sessions[projectID]; ok {
		r.mu.Unlock()
		return nil, ErrSessionBusy
	}
	e := &entry{}
	r.sessions[projectID] = e
	r.mu.Unlock()

	s, err := r.load(ctx, projectID, userID)

	r.mu.Lock()
	defer r.mu.Unlock()
	if err != nil {
		delete(r.sessions, projectID)
		return nil, err
	}
	e.session = s

	slog.Info("session opened", "user", userID, "project", projectID)
	return s, nil
}

func (r *Registry) load(ctx context.Context, projectID, userID string) (*Session, error) {
	doc, err := r.store.LoadDocument(ctx, projectID)
	if err != nil {
		return nil, fmt.Errorf("load project %s: %w", projectID, err)
	}
	s, err := New(projectID, userID, doc, r.store)
	if err != nil {
		return nil, fmt.Errorf("open project %s: %w", projectID, err)
	}
	return s, nil
}

// Close saves pending changes and releases the project. When the save fails
// the session stays registered, keeping the project busy, and the next
// SaveAll retries it and releases it once saved.
func (r *Registry) Close(ctx context.Context, s *Session) error {
	err := s.Save(ctx)

	r.mu.Lock()
	if e, ok := r.sessions[s.ProjectID()]; ok && e.session == s {
		if err != nil {
			e.closed = true
		} else {
			delete(r.sessions, s.ProjectID())
		}
	}
	r.mu.Unlock()

	if err != nil {
		slog.Error("save on close", "error", err, "project", s.ProjectID())
		return fmt.Errorf("close project %s: %w", s.ProjectID(), err)
	}
	slog.Info("session closed", "user", s.UserID(), "project", s.ProjectID())
	return nil
}

// Len returns the number of sessions, including closed ones awaiting a save.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for _, e := range r.sessions {
		if e.session != nil {
			n++
		}
	}
	return n
}

// SaveAll saves every session with pending changes and releases closed
// sessions once saved. It returns the joined errors but keeps saving the others.
func (r *Registry) SaveAll(ctx context.Context) error {
	r.mu.Lock()
	entries := make([]*entry, 0, len(r.sessions))
	for _, e := range r.sessions {
		if e.session != nil {
			entries = append(entries, e)
		}
	}
	r.mu.Unlock()

	var errs []error
	for _, e := range entries {
		if err := e.session.Save(ctx); err != nil {
			errs = append(errs, err)
			continue
		}
		r.release(e)
	}
	return errors.Join(errs...)
}

func (r *Registry) release(e *entry) {
	r.mu.Lock()
	defer r.mu.Unlock()
	id := e.session.ProjectID()
	if !e.closed || r.sessions[id] != e {
		return
	}
	delete(r.sessions, id)
	slog.Info("session closed", "user", e.session.UserID(), "project", id, "retried", true)
}

// Run autosaves on every tick until ctx is done, then saves once more.
func (r *Registry) Run(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			if err := r.SaveAll(ctx); err != nil {
				slog.Error("autosave", "error", err)
			}
		case <-ctx.Done():
			if err := r.SaveAll(context.WithoutCancel(ctx)); err != nil {
				slog.Error("final save", "error", err)
			}
			return
		}
	}
}
