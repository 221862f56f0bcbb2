package postgres

import (
	"github.com/venomauth/licensing-service/internal/ports"
	"gorm.io/gorm"
)

type Repositories struct {
	Applications ports.ApplicationRepository
	Licenses     ports.LicenseRepository
	AppUsers     ports.AppUserRepository
	UserVars     ports.UserVarRepository
	Blacklist    ports.BlacklistRepository
	Outbox       ports.OutboxRepository
	Idempotency  ports.IdempotencyRepository
}

func NewRepositories(db *gorm.DB) Repositories {
	return Repositories{
		Applications: &applicationRepository{db: db},
		Licenses:     &licenseRepository{db: db},
		AppUsers:     &appUserRepository{db: db},
		UserVars:     &userVarRepository{db: db},
		Blacklist:    &blacklistRepository{db: db},
		Outbox:       &outboxRepository{db: db},
		Idempotency:  &idempotencyRepository{db: db},
	}
}
