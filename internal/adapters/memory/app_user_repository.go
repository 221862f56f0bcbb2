package memory

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/venomauth/licensing-service/internal/domain"
	"github.com/venomauth/licensing-service/internal/ports"
)

type AppUserRepository struct {
	mu   sync.Mutex
	rows []domain.AppUser
}

// Seed inserts users directly, bypassing uniqueness checks; test helper.
func (r *AppUserRepository) Seed(users ...domain.AppUser) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.rows = append(r.rows, users...)
}

func (r *AppUserRepository) Create(_ context.Context, user domain.AppUser) (domain.AppUser, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, row := range r.rows {
		if row.ApplicationID == user.ApplicationID && row.Username == user.Username {
			return domain.AppUser{}, domain.ErrConflict
		}
	}
	if user.UserID == uuid.Nil {
		user.UserID = uuid.New()
	}
	r.rows = append(r.rows, user)
	return user, nil
}

func (r *AppUserRepository) GetByIDAndApp(_ context.Context, userID, applicationID uuid.UUID) (domain.AppUser, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, row := range r.rows {
		if row.UserID == userID && row.ApplicationID == applicationID {
			return row, nil
		}
	}
	return domain.AppUser{}, domain.ErrNotFound
}

func (r *AppUserRepository) ListByApp(_ context.Context, applicationID uuid.UUID, limit, offset int) ([]domain.AppUser, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	matched := make([]domain.AppUser, 0)
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

func inCohort(row domain.AppUser, applicationID uuid.UUID, cohort domain.UserCohort, now time.Time) bool {
	if row.ApplicationID != applicationID {
		return false
	}
	if !cohort.Username.Matches(row.Username) {
		return false
	}
	if !cohort.Subscription.Matches(row.Subscription) {
		return false
	}
	if cohort.ActiveOnly && row.ExpiresAt != nil && row.ExpiresAt.Before(now) {
		return false
	}
	return true
}

func (r *AppUserRepository) ExtendExpiry(_ context.Context, applicationID uuid.UUID, cohort domain.UserCohort, deltaSeconds int64, now time.Time) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var updated int64
	for i, row := range r.rows {
		if !inCohort(row, applicationID, cohort, now) {
			continue
		}
		r.rows[i].ExpiresAt = domain.ShiftExpiry(now, row.ExpiresAt, deltaSeconds, domain.UnitSecond)
		updated++
	}
	return updated, nil
}

func (r *AppUserRepository) SetLifetime(_ context.Context, applicationID uuid.UUID, cohort domain.UserCohort) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var updated int64
	for i, row := range r.rows {
		if !inCohort(row, applicationID, cohort, time.Time{}) {
			continue
		}
		r.rows[i].ExpiresAt = nil
		updated++
	}
	return updated, nil
}

func (r *AppUserRepository) SubtractExpiry(_ context.Context, applicationID uuid.UUID, cohort domain.UserCohort, deltaSeconds int64, now time.Time) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var updated int64
	for i, row := range r.rows {
		if !inCohort(row, applicationID, cohort, now) {
			continue
		}
		next, changed := domain.ClampedSubtract(now, row.ExpiresAt, deltaSeconds, domain.UnitSecond)
		if !changed {
			continue
		}
		r.rows[i].ExpiresAt = next
		updated++
	}
	return updated, nil
}

func (r *AppUserRepository) DeleteByMode(_ context.Context, applicationID uuid.UUID, mode ports.AppUserDeleteMode, ids []uuid.UUID, now time.Time) (int64, error) {
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
			case ports.DeleteUsersExpired:
				remove = row.ExpiresAt != nil && row.ExpiresAt.Before(now)
			case ports.DeleteUsersByID:
				_, remove = idSet[row.UserID]
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

func (r *AppUserRepository) SetBanned(_ context.Context, userID, applicationID uuid.UUID, banned bool, reason string) (domain.AppUser, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i, row := range r.rows {
		if row.UserID == userID && row.ApplicationID == applicationID {
			r.rows[i].Banned = banned
			r.rows[i].BanReason = reason
			return r.rows[i], nil
		}
	}
	return domain.AppUser{}, domain.ErrNotFound
}

func (r *AppUserRepository) SetPaused(_ context.Context, applicationID uuid.UUID, ids []uuid.UUID, paused bool) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	idSet := make(map[uuid.UUID]struct{}, len(ids))
	for _, id := range ids {
		idSet[id] = struct{}{}
	}
	var updated int64
	for i, row := range r.rows {
		if row.ApplicationID != applicationID {
			continue
		}
		if _, ok := idSet[row.UserID]; !ok {
			continue
		}
		r.rows[i].Paused = paused
		updated++
	}
	return updated, nil
}

func (r *AppUserRepository) ResetHWID(_ context.Context, applicationID uuid.UUID, ids []uuid.UUID) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	idSet := make(map[uuid.UUID]struct{}, len(ids))
	for _, id := range ids {
		idSet[id] = struct{}{}
	}
	var updated int64
	for i, row := range r.rows {
		if row.ApplicationID != applicationID || row.HWID == nil {
			continue
		}
		if len(ids) > 0 {
			if _, ok := idSet[row.UserID]; !ok {
				continue
			}
		}
		r.rows[i].HWID = nil
		updated++
	}
	return updated, nil
}

func (r *AppUserRepository) ResetSubscription(_ context.Context, userID, applicationID uuid.UUID) (domain.AppUser, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i, row := range r.rows {
		if row.UserID == userID && row.ApplicationID == applicationID {
			r.rows[i].Subscription = domain.DefaultSubscription
			r.rows[i].ExpiresAt = nil
			return r.rows[i], nil
		}
	}
	return domain.AppUser{}, domain.ErrNotFound
}
