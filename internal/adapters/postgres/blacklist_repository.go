package postgres

import (
	"context"

	"github.com/google/uuid"
	"github.com/venomauth/licensing-service/internal/domain"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type blacklistRepository struct {
	db *gorm.DB
}

// Add is idempotent per (application, type, value): a duplicate insert is a
// no-op and the existing entry is returned unchanged.
func (r *blacklistRepository) Add(ctx context.Context, entry domain.BlacklistEntry) (domain.BlacklistEntry, error) {
	rec := blacklistModel{
		ApplicationID: entry.ApplicationID,
		EntryType:     entry.Type,
		Value:         entry.Value,
		Reason:        entry.Reason,
		CreatedAt:     entry.CreatedAt,
	}
	if err := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{
			{Name: "application_id"},
			{Name: "entry_type"},
			{Name: "value"},
		},
		DoNothing: true,
	}).Create(&rec).Error; err != nil {
		return domain.BlacklistEntry{}, err
	}

	var stored blacklistModel
	if err := r.db.WithContext(ctx).
		Where("application_id = ?", entry.ApplicationID).
		Where("entry_type = ?", entry.Type).
		Where("value = ?", entry.Value).
		Take(&stored).Error; err != nil {
		return domain.BlacklistEntry{}, err
	}
	return toDomainBlacklistEntry(stored), nil
}

func (r *blacklistRepository) Remove(ctx context.Context, entryID, applicationID uuid.UUID) error {
	res := r.db.WithContext(ctx).
		Where("entry_id = ?", entryID).
		Where("application_id = ?", applicationID).
		Delete(&blacklistModel{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *blacklistRepository) ListByApp(ctx context.Context, applicationID uuid.UUID) ([]domain.BlacklistEntry, error) {
	var rows []blacklistModel
	if err := r.db.WithContext(ctx).
		Where("application_id = ?", applicationID).
		Order("created_at DESC").
		Find(&rows).Error; err != nil {
		return nil, err
	}
	result := make([]domain.BlacklistEntry, 0, len(rows))
	for _, row := range rows {
		result = append(result, toDomainBlacklistEntry(row))
	}
	return result, nil
}
