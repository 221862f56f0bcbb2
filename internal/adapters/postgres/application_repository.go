package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/venomauth/licensing-service/internal/domain"
	"gorm.io/gorm"
)

type applicationRepository struct {
	db *gorm.DB
}

func (r *applicationRepository) Create(ctx context.Context, app domain.Application) (domain.Application, error) {
	rec := applicationModel{
		OwnerID:   app.OwnerID,
		Name:      app.Name,
		Status:    app.Status,
		Secret:    app.Secret,
		Version:   app.Version,
		CreatedAt: app.CreatedAt,
		UpdatedAt: app.UpdatedAt,
	}
	if err := r.db.WithContext(ctx).Create(&rec).Error; err != nil {
		if isUniqueViolation(err) {
			return domain.Application{}, domain.ErrConflict
		}
		return domain.Application{}, err
	}
	return toDomainApplication(rec), nil
}

func (r *applicationRepository) GetByIDAndOwner(ctx context.Context, applicationID, ownerID uuid.UUID) (domain.Application, error) {
	var rec applicationModel
	if err := r.db.WithContext(ctx).
		Where("application_id = ?", applicationID).
		Where("owner_id = ?", ownerID).
		Take(&rec).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.Application{}, domain.ErrNotFound
		}
		return domain.Application{}, err
	}
	return toDomainApplication(rec), nil
}

func (r *applicationRepository) GetByID(ctx context.Context, applicationID uuid.UUID) (domain.Application, error) {
	var rec applicationModel
	if err := r.db.WithContext(ctx).
		Where("application_id = ?", applicationID).
		Take(&rec).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.Application{}, domain.ErrNotFound
		}
		return domain.Application{}, err
	}
	return toDomainApplication(rec), nil
}

func (r *applicationRepository) ListByOwner(ctx context.Context, ownerID uuid.UUID) ([]domain.Application, error) {
	var rows []applicationModel
	if err := r.db.WithContext(ctx).
		Where("owner_id = ?", ownerID).
		Order("created_at ASC").
		Find(&rows).Error; err != nil {
		return nil, err
	}
	result := make([]domain.Application, 0, len(rows))
	for _, row := range rows {
		result = append(result, toDomainApplication(row))
	}
	return result, nil
}

func (r *applicationRepository) SetStatus(ctx context.Context, applicationID uuid.UUID, status string, updatedAt time.Time) error {
	res := r.db.WithContext(ctx).
		Model(&applicationModel{}).
		Where("application_id = ?", applicationID).
		Updates(map[string]any{
			"status":     status,
			"updated_at": updatedAt,
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *applicationRepository) UpdateSecret(ctx context.Context, applicationID uuid.UUID, secret string, updatedAt time.Time) error {
	res := r.db.WithContext(ctx).
		Model(&applicationModel{}).
		Where("application_id = ?", applicationID).
		Updates(map[string]any{
			"secret":     secret,
			"updated_at": updatedAt,
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *applicationRepository) Delete(ctx context.Context, applicationID uuid.UUID) error {
	res := r.db.WithContext(ctx).
		Where("application_id = ?", applicationID).
		Delete(&applicationModel{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return domain.ErrNotFound
	}
	return nil
}
