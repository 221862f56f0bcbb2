package memory

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/venomauth/licensing-service/internal/domain"
	"github.com/venomauth/licensing-service/internal/ports"
)

type LicenseRepository struct {
	mu     sync.Mutex
	rows   []domain.License
	outbox *OutboxRepository
}

// Seed inserts licenses directly, bypassing the batch transaction; test helper.
func (r *LicenseRepository) Seed(licenses ...domain.License) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.rows = append(r.rows, licenses...)
}

func (r *LicenseRepository) CreateBatchTx(ctx context.Context, licenses []domain.License, event ports.OutboxEvent) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, lic := range licenses {
		for _, row := range r.rows {
			if row.ApplicationID == lic.ApplicationID && row.Key == lic.Key {
				return domain.ErrConflict
			}
		}
	}
	for _, lic := range licenses {
		if lic.LicenseID == uuid.Nil {
			lic.LicenseID = uuid.New()
		}
		r.rows = append(r.rows, lic)
	}
	if r.outbox != nil {
		return r.outbox.Enqueue(ctx, event)
	}
	return nil
}

func (r *LicenseRepository) GetByIDAndApp(_ context.Context, licenseID, applicationID uuid.UUID) (domain.License, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, row := range r.rows {
		if row.LicenseID == licenseID && row.ApplicationID == applicationID {
			return row, nil
		}
	}
	return domain.License{}, domain.ErrNotFound
}

func (r *LicenseRepository) ListByApp(_ context.Context, applicationID uuid.UUID, limit, offset int) ([]domain.License, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	matched := make([]domain.License, 0)
	for _, row := range r.rows {
		if row.ApplicationID == applicationID {
			matched = append(matched, row)
		}
	}
	if offset >= len(matched) {
		return nil, nil
	}
	matched = matched[offset:]
	if limit > 0 && limit < len(matched) {
		matched = matched[:limit]
	}
	return matched, nil
}

func (r *LicenseRepository) AddTimeUnused(_ context.Context, applicationID uuid.UUID, deltaSeconds int64, now time.Time) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var updated int64
	for i, row := range r.rows {
		if row.ApplicationID != applicationID || row.Used {
			continue
		}
		r.rows[i].ExpiresAt = domain.ShiftExpiry(now, row.ExpiresAt, deltaSeconds, domain.UnitSecond)
		r.rows[i].DurationSeconds += deltaSeconds
		updated++
	}
	return updated, nil
}

func (r *LicenseRepository) SetLifetimeUnused(_ context.Context, applicationID uuid.UUID) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var updated int64
	for i, row := range r.rows {
		if row.ApplicationID != applicationID || row.Used {
			continue
		}
		r.rows[i].ExpiresAt = nil
		updated++
	}
	return updated, nil
}

func (r *LicenseRepository) SetBanned(_ context.Context, licenseID, applicationID uuid.UUID, banned bool, reason string) (domain.License, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i, row := range r.rows {
		if row.LicenseID == licenseID && row.ApplicationID == applicationID {
			r.rows[i].Banned = banned
			r.rows[i].BanReason = reason
			return r.rows[i], nil
		}
	}
	return domain.License{}, domain.ErrNotFound
}

func (r *LicenseRepository) DeleteByMode(_ context.Context, applicationID uuid.UUID, mode ports.LicenseDeleteMode, ids []uuid.UUID) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	idSet := make(map[uuid.UUID]struct{}, len(ids))
	for _, id := range ids {
		idSet[id] = struct{}{}
	}
	keep := r.rows[:0]
	var deleted int64
	for _, row := range r.rows {
		remove := false
		if row.ApplicationID == applicationID {
			switch mode {
			case ports.DeleteLicensesUsed:
				remove = row.Used
			case ports.DeleteLicensesUnused:
				remove = !row.Used
			case ports.DeleteLicensesByID:
				_, remove = idSet[row.LicenseID]
			default:
				return 0, domain.ErrInvalidInput
			}
		}
		if remove {
			deleted++
			continue
		}
		keep = append(keep, row)
	}
	r.rows = keep
	return deleted, nil
}
