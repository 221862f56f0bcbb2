package memory

import (
	"context"
	"sync"

	"github.com/google/uuid"
	"github.com/venomauth/licensing-service/internal/domain"
)

// AppSessionStore is the in-memory stand-in for the redis session index.
type AppSessionStore struct {
	mu   sync.Mutex
	rows []domain.AppSession
}

// Seed inserts sessions directly; test helper.
func (s *AppSessionStore) Seed(sessions ...domain.AppSession) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.rows = append(s.rows, sessions...)
}

func (s *AppSessionStore) List(_ context.Context, applicationID uuid.UUID) ([]domain.AppSession, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]domain.AppSession, 0)
	for _, row := range s.rows {
		if row.ApplicationID == applicationID {
			out = append(out, row)
		}
	}
	return out, nil
}

func (s *AppSessionStore) Kill(_ context.Context, applicationID uuid.UUID, sessionID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, row := range s.rows {
		if row.ApplicationID == applicationID && row.SessionID == sessionID {
			s.rows = append(s.rows[:i], s.rows[i+1:]...)
			return nil
		}
	}
	return domain.ErrNotFound
}

func (s *AppSessionStore) KillAll(_ context.Context, applicationID uuid.UUID) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	keep := s.rows[:0]
	var killed int64
	for _, row := range s.rows {
		if row.ApplicationID == applicationID {
			killed++
			continue
		}
		keep = append(keep, row)
	}
	s.rows = keep
	return killed, nil
}
