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

type licenseRepository struct {
	db *gorm.DB
}

func (r *licenseRepository) CreateBatchTx(ctx context.Context, licenses []domain.License, event ports.OutboxEvent) error {
	if len(licenses) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		records := make([]licenseModel, 0, len(licenses))
		for _, lic := range licenses {
			records = append(records, toLicenseModel(lic))
		}
		if err := tx.Create(&records).Error; err != nil {
			if isUniqueViolation(err) {
				return domain.ErrConflict
			}
			return err
		}

		outbox := auditOutboxModel{
			OutboxID:     event.EventID,
			EventType:    event.EventType,
			PartitionKey: event.PartitionKey,
			Payload:      string(event.Payload),
			CreatedAt:    event.OccurredAt,
			FirstSeenAt:  event.OccurredAt,
		}
		return tx.Create(&outbox).Error
	})
}

func (r *licenseRepository) GetByIDAndApp(ctx context.Context, licenseID, applicationID uuid.UUID) (domain.License, error) {
	var rec licenseModel
	if err := r.db.WithContext(ctx).
		Where("license_id = ?", licenseID).
		Where("application_id = ?", applicationID).
		Take(&rec).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.License{}, domain.ErrNotFound
		}
		return domain.License{}, err
	}
	return toDomainLicense(rec), nil
}

func (r *licenseRepository) ListByApp(ctx context.Context, applicationID uuid.UUID, limit, offset int) ([]domain.License, error) {
	var rows []licenseModel
	if err := r.db.WithContext(ctx).
		Where("application_id = ?", applicationID).
		Order("created_at DESC").
		Limit(limit).
		Offset(offset).
		Find(&rows).Error; err != nil {
		return nil, err
	}
	result := make([]domain.License, 0, len(rows))
	for _, row := range rows {
		result = append(result, toDomainLicense(row))
	}
	return result, nil
}

// AddTimeUnused runs as one conditional UPDATE so concurrent calls never
// lose each other's shift. Lifetime keys keep a NULL expiry and rebase from
// now; duration accumulates regardless of which branch fired.
func (r *licenseRepository) AddTimeUnused(ctx context.Context, applicationID uuid.UUID, deltaSeconds int64, now time.Time) (int64, error) {
	res := r.db.WithContext(ctx).
		Model(&licenseModel{}).
		Where("application_id = ?", applicationID).
		Where("used = FALSE").
		Updates(map[string]any{
			"expires_at": gorm.Expr(
				"CASE WHEN expires_at IS NULL THEN ? + make_interval(secs => ?) ELSE expires_at + make_interval(secs => ?) END",
				now, deltaSeconds, deltaSeconds,
			),
			"duration_seconds": gorm.Expr("duration_seconds + ?", deltaSeconds),
		})
	if res.Error != nil {
		return 0, res.Error
	}
	return res.RowsAffected, nil
}

func (r *licenseRepository) SetLifetimeUnused(ctx context.Context, applicationID uuid.UUID) (int64, error) {
	res := r.db.WithContext(ctx).
		Model(&licenseModel{}).
		Where("application_id = ?", applicationID).
		Where("used = FALSE").
		Update("expires_at", nil)
	if res.Error != nil {
		return 0, res.Error
	}
	return res.RowsAffected, nil
}

func (r *licenseRepository) SetBanned(ctx context.Context, licenseID, applicationID uuid.UUID, banned bool, reason string) (domain.License, error) {
	res := r.db.WithContext(ctx).
		Model(&licenseModel{}).
		Where("license_id = ?", licenseID).
		Where("application_id = ?", applicationID).
		Updates(map[string]any{
			"banned":     banned,
			"ban_reason": reason,
		})
	if res.Error != nil {
		return domain.License{}, res.Error
	}
	if res.RowsAffected == 0 {
		return domain.License{}, domain.ErrNotFound
	}
	return r.GetByIDAndApp(ctx, licenseID, applicationID)
}

func (r *licenseRepository) DeleteByMode(ctx context.Context, applicationID uuid.UUID, mode ports.LicenseDeleteMode, ids []uuid.UUID) (int64, error) {
	query := r.db.WithContext(ctx).Where("application_id = ?", applicationID)
	switch mode {
	case ports.DeleteLicensesUsed:
		query = query.Where("used = TRUE")
	case ports.DeleteLicensesUnused:
		query = query.Where("used = FALSE")
	case ports.DeleteLicensesByID:
		if len(ids) == 0 {
			return 0, nil
		}
		query = query.Where("license_id IN ?", ids)
	default:
		return 0, domain.ErrInvalidInput
	}
	res := query.Delete(&licenseModel{})
	if res.Error != nil {
		return 0, res.Error
	}
	return res.RowsAffected, nil
}
