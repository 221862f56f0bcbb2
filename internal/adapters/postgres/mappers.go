package postgres

import (
	"errors"

	"github.com/venomauth/licensing-service/internal/domain"
	"github.com/venomauth/licensing-service/internal/ports"
	"gorm.io/gorm"
)

func toDomainApplication(row applicationModel) domain.Application {
	return domain.Application{
		ApplicationID: row.ApplicationID,
		OwnerID:       row.OwnerID,
		Name:          row.Name,
		Status:        row.Status,
		Secret:        row.Secret,
		Version:       row.Version,
		CreatedAt:     row.CreatedAt,
		UpdatedAt:     row.UpdatedAt,
	}
}

// toLicenseModel carries the caller-assigned LicenseID into the row so the
// insert never falls back to the column default; ids handed back by the API
// must name the rows that were actually written.
func toLicenseModel(lic domain.License) licenseModel {
	return licenseModel{
		LicenseID:       lic.LicenseID,
		ApplicationID:   lic.ApplicationID,
		Key:             lic.Key,
		Level:           lic.Level,
		DurationSeconds: lic.DurationSeconds,
		ExpiresAt:       lic.ExpiresAt,
		Used:            lic.Used,
		Banned:          lic.Banned,
		BanReason:       lic.BanReason,
		Note:            lic.Note,
		CreatedAt:       lic.CreatedAt,
	}
}

func toDomainLicense(row licenseModel) domain.License {
	return domain.License{
		LicenseID:       row.LicenseID,
		ApplicationID:   row.ApplicationID,
		Key:             row.Key,
		Level:           row.Level,
		DurationSeconds: row.DurationSeconds,
		ExpiresAt:       row.ExpiresAt,
		Used:            row.Used,
		Banned:          row.Banned,
		BanReason:       row.BanReason,
		Note:            row.Note,
		CreatedAt:       row.CreatedAt,
	}
}

func toDomainAppUser(row appUserModel) domain.AppUser {
	return domain.AppUser{
		UserID:        row.UserID,
		ApplicationID: row.ApplicationID,
		Username:      row.Username,
		PasswordHash:  row.PasswordHash,
		Email:         row.Email,
		Subscription:  row.Subscription,
		ExpiresAt:     row.ExpiresAt,
		HWID:          row.HWID,
		Banned:        row.Banned,
		BanReason:     row.BanReason,
		Paused:        row.Paused,
		CreatedAt:     row.CreatedAt,
	}
}

func toDomainUserVar(row userVarModel) domain.UserVar {
	return domain.UserVar{
		VarID:     row.VarID,
		UserID:    row.UserID,
		Name:      row.Name,
		Value:     row.Value,
		ReadOnly:  row.ReadOnly,
		CreatedAt: row.CreatedAt,
		UpdatedAt: row.UpdatedAt,
	}
}

func toDomainBlacklistEntry(row blacklistModel) domain.BlacklistEntry {
	return domain.BlacklistEntry{
		EntryID:       row.EntryID,
		ApplicationID: row.ApplicationID,
		Type:          row.EntryType,
		Value:         row.Value,
		Reason:        row.Reason,
		CreatedAt:     row.CreatedAt,
	}
}

func toOutboxRecord(row auditOutboxModel) ports.OutboxRecord {
	return ports.OutboxRecord{
		OutboxID:       row.OutboxID,
		EventType:      row.EventType,
		PartitionKey:   row.PartitionKey,
		Payload:        []byte(row.Payload),
		RetryCount:     row.RetryCount,
		LastError:      row.LastError,
		CreatedAt:      row.CreatedAt,
		PublishedAt:    row.PublishedAt,
		LastErrorAt:    row.LastErrorAt,
		FirstSeenAt:    row.FirstSeenAt,
		ClaimToken:     row.ClaimToken,
		ClaimUntil:     row.ClaimUntil,
		DeadLetteredAt: row.DeadLetteredAt,
	}
}

func isUniqueViolation(err error) bool {
	return errors.Is(err, gorm.ErrDuplicatedKey)
}
