package postgres

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/venomauth/licensing-service/internal/domain"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type userVarRepository struct {
	db *gorm.DB
}

func (r *userVarRepository) Get(ctx context.Context, userID uuid.UUID, name string) (domain.UserVar, error) {
	var rec userVarModel
	if err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Where("name = ?", name).
		Take(&rec).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.UserVar{}, domain.ErrNotFound
		}
		return domain.UserVar{}, err
	}
	return toDomainUserVar(rec), nil
}

func (r *userVarRepository) Upsert(ctx context.Context, v domain.UserVar) (domain.UserVar, error) {
	rec := userVarModel{
		UserID:    v.UserID,
		Name:      v.Name,
		Value:     v.Value,
		ReadOnly:  v.ReadOnly,
		CreatedAt: v.UpdatedAt,
		UpdatedAt: v.UpdatedAt,
	}
	if err := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{
			{Name: "user_id"},
			{Name: "name"},
		},
		DoUpdates: clause.Assignments(map[string]any{
			"value":      rec.Value,
			"read_only":  rec.ReadOnly,
			"updated_at": rec.UpdatedAt,
		}),
	}).Create(&rec).Error; err != nil {
		return domain.UserVar{}, err
	}
	return r.Get(ctx, v.UserID, v.Name)
}

func (r *userVarRepository) Delete(ctx context.Context, userID uuid.UUID, name string) error {
	res := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Where("name = ?", name).
		Delete(&userVarModel{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *userVarRepository) ListByUser(ctx context.Context, userID uuid.UUID) ([]domain.UserVar, error) {
	var rows []userVarModel
	if err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("name ASC").
		Find(&rows).Error; err != nil {
		return nil, err
	}
	result := make([]domain.UserVar, 0, len(rows))
	for _, row := range rows {
		result = append(result, toDomainUserVar(row))
	}
	return result, nil
}
