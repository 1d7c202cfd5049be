package wizard

import (
	"context"
	"fmt"
	"sync"
	"time"
)

type Repository interface {
	Store(ctx context.Context, session Session) error
	Get(ctx context.Context, id string) (Session, error)
	// Update runs fn on the stored session under the repository lock and
	// stores the result unless fn fails.
	Update(ctx context.Context, id string, fn func(*Session) error) (Session, error)
	Delete(ctx context.Context, id string) (bool, error)
	// DeleteIdleSince removes sessions last accessed before cutoff and
	// returns their ids.
	DeleteIdleSince(ctx context.Context, cutoff time.Time) ([]string, error)
	Count(ctx context.Context) (int, error)
}

// RepositoryImpl keeps sessions in memory. Sessions are copied on the way in
// and out, so callers never share slices with the stored state.
type RepositoryImpl struct {
	mu       sync.RWMutex
	sessions map[string]Session
}

func NewRepository() *RepositoryImpl {
	return &RepositoryImpl{sessions: make(map[string]Session)}
}

func (r *RepositoryImpl) Store(ctx context.Context, session Session) error {
	if session.Id == "" {
		return fmt.Errorf("session id must not be empty")
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sessions[session.Id] = cloneSession(session)
	return nil
}

func (r *RepositoryImpl) Get(ctx context.Context, id string) (Session, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	session, ok := r.sessions[id]
	if !ok {
		return Session{}, fmt.Errorf("session %s: %w", id, ErrSessionNotFound)
	}
	return cloneSession(session), nil
}

func (r *RepositoryImpl) Update(ctx context.Context, id string, fn func(*Session) error) (Session, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	session, ok := r.sessions[id]
	if !ok {
		return Session{}, fmt.Errorf("session %s: %w", id, ErrSessionNotFound)
	}
	updated := cloneSession(session)
	if err := fn(&updated); err != nil {
		return Session{}, err
	}
	r.sessions[id] = cloneSession(updated)
	return updated, nil
}

func (r *RepositoryImpl) Delete(ctx context.Context, id string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.sessions[id]; !ok {
		return false, nil
	}
	delete(r.sessions, id)
	return true, nil
}

func (r *RepositoryImpl) DeleteIdleSince(ctx context.Context, cutoff time.Time) ([]string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var removed []string
	for id, session := range r.sessions {
		if session.LastAccess.Before(cutoff) {
			delete(r.sessions, id)
			removed = append(removed, id)
		}
	}
	return removed, nil
}

func (r *RepositoryImpl) Count(ctx context.Context) (int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.sessions), nil
}
