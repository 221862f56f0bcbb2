package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/venomauth/licensing-service/internal/domain"
	"github.com/venomauth/licensing-service/internal/ports"
	"gorm.io/gorm"
)

type appUserRepository struct {
	db *gorm.DB
}

func (r *appUserRepository) Create(ctx context.Context, user domain.AppUser) (domain.AppUser, error) {
	rec := appUserModel{
		ApplicationID: user.ApplicationID,
		Username:      user.Username,
		PasswordHash:  user.PasswordHash,
		Email:         user.Email,
		Subscription:  user.Subscription,
		ExpiresAt:     user.ExpiresAt,
		HWID:          user.HWID,
		CreatedAt:     user.CreatedAt,
	}
	if err := r.db.WithContext(ctx).Create(&rec).Error; err != nil {
		if isUniqueViolation(err) {
			return domain.AppUser{}, domain.ErrConflict
		}
		return domain.AppUser{}, err
	}
	return toDomainAppUser(rec), nil
}

func (r *appUserRepository) GetByIDAndApp(ctx context.Context, userID, applicationID uuid.UUID) (domain.AppUser, error) {
	var rec appUserModel
	if err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Where("application_id = ?", applicationID).
		Take(&rec).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.AppUser{}, domain.ErrNotFound
		}
		return domain.AppUser{}, err
	}
	return toDomainAppUser(rec), nil
}

func (r *appUserRepository) ListByApp(ctx context.Context, applicationID uuid.UUID, limit, offset int) ([]domain.AppUser, error) {
	var rows []appUserModel
	if err := r.db.WithContext(ctx).
		Where("application_id = ?", applicationID).
		Order("created_at DESC").
		Limit(limit).
		Offset(offset).
		Find(&rows).Error; err != nil {
		return nil, err
	}
	result := make([]domain.AppUser, 0, len(rows))
	for _, row := range rows {
		result = append(result, toDomainAppUser(row))
	}
	return result, nil
}

// cohortQuery narrows an app_users statement to the cohort the caller
// selected. ActiveOnly includes unlimited accounts: a NULL expiry is never
// "expired".
func (r *appUserRepository) cohortQuery(ctx context.Context, applicationID uuid.UUID, cohort domain.UserCohort, now time.Time) *gorm.DB {
	query := r.db.WithContext(ctx).
		Model(&appUserModel{}).
		Where("application_id = ?", applicationID)
	if !cohort.Username.All {
		query = query.Where("username = ?", cohort.Username.Value)
	}
	if !cohort.Subscription.All {
		query = query.Where("subscription = ?", cohort.Subscription.Value)
	}
	if cohort.ActiveOnly {
		query = query.Where("(expires_at IS NULL OR expires_at >= ?)", now)
	}
	return query
}

// ExtendExpiry shifts the whole cohort in one conditional UPDATE. Finite
// expiries move forward by deltaSeconds; NULL expiries rebase from now.
func (r *appUserRepository) ExtendExpiry(ctx context.Context, applicationID uuid.UUID, cohort domain.UserCohort, deltaSeconds int64, now time.Time) (int64, error) {
	res := r.cohortQuery(ctx, applicationID, cohort, now).
		Update("expires_at", gorm.Expr(
			"CASE WHEN expires_at IS NULL THEN ? + make_interval(secs => ?) ELSE expires_at + make_interval(secs => ?) END",
			now, deltaSeconds, deltaSeconds,
		))
	if res.Error != nil {
		return 0, res.Error
	}
	return res.RowsAffected, nil
}

func (r *appUserRepository) SetLifetime(ctx context.Context, applicationID uuid.UUID, cohort domain.UserCohort) (int64, error) {
	res := r.cohortQuery(ctx, applicationID, cohort, time.Time{}).
		Update("expires_at", nil)
	if res.Error != nil {
		return 0, res.Error
	}
	return res.RowsAffected, nil
}

// SubtractExpiry clamps at now via GREATEST and skips unlimited accounts.
// The WHERE repeats the GREATEST expression so the returned count covers
// only rows whose stored value actually changed.
func (r *appUserRepository) SubtractExpiry(ctx context.Context, applicationID uuid.UUID, cohort domain.UserCohort, deltaSeconds int64, now time.Time) (int64, error) {
	res := r.cohortQuery(ctx, applicationID, cohort, now).
		Where("expires_at IS NOT NULL").
		Where("expires_at <> GREATEST(?::timestamptz, expires_at - make_interval(secs => ?))", now, deltaSeconds).
		Update("expires_at", gorm.Expr(
			"GREATEST(?::timestamptz, expires_at - make_interval(secs => ?))",
			now, deltaSeconds,
		))
	if res.Error != nil {
		return 0, res.Error
	}
	return res.RowsAffected, nil
}

func (r *appUserRepository) DeleteByMode(ctx context.Context, applicationID uuid.UUID, mode ports.AppUserDeleteMode, ids []uuid.UUID, now time.Time) (int64, error) {
	query := r.db.WithContext(ctx).Where("application_id = ?", applicationID)
	switch mode {
	case ports.DeleteUsersExpired:
		query = query.Where("expires_at IS NOT NULL").Where("expires_at < ?", now)
	case ports.DeleteUsersByID:
		if len(ids) == 0 {
			return 0, nil
		}
		query = query.Where("user_id IN ?", ids)
	default:
		return 0, domain.ErrInvalidInput
	}
	res := query.Delete(&appUserModel{})
	if res.Error != nil {
		return 0, res.Error
	}
	return res.RowsAffected, nil
}

func (r *appUserRepository) SetBanned(ctx context.Context, userID, applicationID uuid.UUID, banned bool, reason string) (domain.AppUser, error) {
	res := r.db.WithContext(ctx).
		Model(&appUserModel{}).
		Where("user_id = ?", userID).
		Where("application_id = ?", applicationID).
		Updates(map[string]any{
			"banned":     banned,
			"ban_reason": reason,
		})
	if res.Error != nil {
		return domain.AppUser{}, res.Error
	}
	if res.RowsAffected == 0 {
		return domain.AppUser{}, domain.ErrNotFound
	}
	return r.GetByIDAndApp(ctx, userID, applicationID)
}

func (r *appUserRepository) SetPaused(ctx context.Context, applicationID uuid.UUID, ids []uuid.UUID, paused bool) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	res := r.db.WithContext(ctx).
		Model(&appUserModel{}).
		Where("application_id = ?", applicationID).
		Where("user_id IN ?", ids).
		Update("paused", paused)
	if res.Error != nil {
		return 0, res.Error
	}
	return res.RowsAffected, nil
}

func (r *appUserRepository) ResetHWID(ctx context.Context, applicationID uuid.UUID, ids []uuid.UUID) (int64, error) {
	query := r.db.WithContext(ctx).
		Model(&appUserModel{}).
		Where("application_id = ?", applicationID)
	if len(ids) > 0 {
		query = query.Where("user_id IN ?", ids)
	}
	res := query.Where("hwid IS NOT NULL").Update("hwid", nil)
	if res.Error != nil {
		return 0, res.Error
	}
	return res.RowsAffected, nil
}

// ResetSubscription restores the default tier and the unlimited expiry in a
// single statement so the pair can never be observed half-applied.
func (r *appUserRepository) ResetSubscription(ctx context.Context, userID, applicationID uuid.UUID) (domain.AppUser, error) {
	res := r.db.WithContext(ctx).
		Model(&appUserModel{}).
		Where("user_id = ?", userID).
		Where("application_id = ?", applicationID).
		Updates(map[string]any{
			"subscription": domain.DefaultSubscription,
			"expires_at":   nil,
		})
	if res.Error != nil {
		return domain.AppUser{}, res.Error
	}
	if res.RowsAffected == 0 {
		return domain.AppUser{}, domain.ErrNotFound
	}
	return r.GetByIDAndApp(ctx, userID, applicationID)
}
