package memory

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/venomauth/licensing-service/internal/domain"
)

type ApplicationRepository struct {
	mu   sync.Mutex
	rows []domain.Application
}

func (r *ApplicationRepository) Create(_ context.Context, app domain.Application) (domain.Application, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, row := range r.rows {
		if row.OwnerID == app.OwnerID && row.Name == app.Name {
			return domain.Application{}, domain.ErrConflict
		}
	}
	if app.ApplicationID == uuid.Nil {
		app.ApplicationID = uuid.New()
	}
	r.rows = append(r.rows, app)
	return app, nil
}

func (r *ApplicationRepository) GetByIDAndOwner(_ context.Context, applicationID, ownerID uuid.UUID) (domain.Application, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, row := range r.rows {
		if row.ApplicationID == applicationID && row.OwnerID == ownerID {
			return row, nil
		}
	}
	return domain.Application{}, domain.ErrNotFound
}

func (r *ApplicationRepository) GetByID(_ context.Context, applicationID uuid.UUID) (domain.Application, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, row := range r.rows {
		if row.ApplicationID == applicationID {
			return row, nil
		}
	}
	return domain.Application{}, domain.ErrNotFound
}

func (r *ApplicationRepository) ListByOwner(_ context.Context, ownerID uuid.UUID) ([]domain.Application, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]domain.Application, 0, len(r.rows))
	for _, row := range r.rows {
		if row.OwnerID == ownerID {
			out = append(out, row)
		}
	}
	return out, nil
}

func (r *ApplicationRepository) SetStatus(_ context.Context, applicationID uuid.UUID, status string, updatedAt time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i, row := range r.rows {
		if row.ApplicationID == applicationID {
			r.rows[i].Status = status
			r.rows[i].UpdatedAt = updatedAt
			return nil
		}
	}
	return domain.ErrNotFound
}

func (r *ApplicationRepository) UpdateSecret(_ context.Context, applicationID uuid.UUID, secret string, updatedAt time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i, row := range r.rows {
		if row.ApplicationID == applicationID {
			r.rows[i].Secret = secret
			r.rows[i].UpdatedAt = updatedAt
			return nil
		}
	}
	return domain.ErrNotFound
}

func (r *ApplicationRepository) Delete(_ context.Context, applicationID uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i, row := range r.rows {
		if row.ApplicationID == applicationID {
			r.rows = append(r.rows[:i], r.rows[i+1:]...)
			return nil
		}
	}
	return domain.ErrNotFound
}
