package memory

import (
	"context"
	"sync"

	"github.com/adanyl0v/tracklin/internal/models"
	"github.com/adanyl0v/tracklin/internal/repository"
)

type SessionRepository struct {
	mu       sync.RWMutex
	sessions map[string]models.Session
}

func NewSessionRepository() *SessionRepository {
	return &SessionRepository{sessions: make(map[string]models.Session)}
}

var _ repository.SessionRepository = (*SessionRepository)(nil)

func (r *SessionRepository) Replace(_ context.Context, session *models.Session) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for id, s := range r.sessions {
		if s.UserID == session.UserID && s.Fingerprint == session.Fingerprint {
			delete(r.sessions, id)
		}
	}
	for _, s := range r.sessions {
		if s.RefreshToken == session.RefreshToken {
			return repository.ErrConflict
		}
	}
	r.sessions[session.ID] = *session
	return nil
}

func (r *SessionRepository) FindByID(_ context.Context, id string) (*models.Session, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	s, ok := r.sessions[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &s, nil
}

func (r *SessionRepository) FindByRefreshToken(_ context.Context, refreshToken, fingerprint string) (*models.Session, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, s := range r.sessions {
		if s.RefreshToken == refreshToken && s.Fingerprint == fingerprint {
			return &s, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (r *SessionRepository) Rotate(_ context.Context, session *models.Session) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	s, ok := r.sessions[session.ID]
	if !ok {
		return repository.ErrNotFound
	}
	s.RefreshToken = session.RefreshToken
	s.ExpiresAt = session.ExpiresAt
	s.UpdatedAt = session.UpdatedAt
	r.sessions[s.ID] = s
	return nil
}

func (r *SessionRepository) DeleteByUserID(_ context.Context, userID string) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var affected int64
	for id, s := range r.sessions {
		if s.UserID == userID {
			delete(r.sessions, id)
			affected++
		}
	}
	return affected, nil
}
