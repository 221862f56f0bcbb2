// Package memory provides mutex-guarded in-memory implementations of the
// persistence ports. They back unit tests and local single-process runs;
// semantics mirror the postgres adapter, including the conditional bulk
// updates.
package memory

type Repositories struct {
	Applications *ApplicationRepository
	Licenses     *LicenseRepository
	AppUsers     *AppUserRepository
	UserVars     *UserVarRepository
	Blacklist    *BlacklistRepository
	Outbox       *OutboxRepository
	Idempotency  *IdempotencyRepository
}

func NewRepositories() *Repositories {
	outbox := &OutboxRepository{}
	return &Repositories{
		Applications: &ApplicationRepository{},
		Licenses:     &LicenseRepository{outbox: outbox},
		AppUsers:     &AppUserRepository{},
		UserVars:     &UserVarRepository{},
		Blacklist:    &BlacklistRepository{},
		Outbox:       outbox,
		Idempotency:  &IdempotencyRepository{},
	}
}
