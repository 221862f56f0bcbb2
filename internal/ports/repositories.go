package ports

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/venomauth/licensing-service/internal/domain"
)

// ApplicationRepository defines persistence for owner applications.
// Every lookup that guards a mutation is scoped by (applicationID, ownerID)
// so an unowned id behaves exactly like a missing one.
type ApplicationRepository interface {
	Create(ctx context.Context, app domain.Application) (domain.Application, error)
	GetByIDAndOwner(ctx context.Context, applicationID, ownerID uuid.UUID) (domain.Application, error)
	// GetByID serves trusted service-to-service lookups only; dashboard
	// operations always go through GetByIDAndOwner.
	GetByID(ctx context.Context, applicationID uuid.UUID) (domain.Application, error)
	ListByOwner(ctx context.Context, ownerID uuid.UUID) ([]domain.Application, error)
	SetStatus(ctx context.Context, applicationID uuid.UUID, status string, updatedAt time.Time) error
	UpdateSecret(ctx context.Context, applicationID uuid.UUID, secret string, updatedAt time.Time) error
	Delete(ctx context.Context, applicationID uuid.UUID) error
}

// LicenseDeleteMode selects which licenses a bulk delete removes.
type LicenseDeleteMode string

const (
	DeleteLicensesUsed   LicenseDeleteMode = "used"
	DeleteLicensesUnused LicenseDeleteMode = "unused"
	DeleteLicensesByID   LicenseDeleteMode = "ids"
)

// LicenseRepository persists license keys. The bulk time mutations are
// expressed as single conditional statements at the storage layer so
// concurrent calls compose without lost updates, and (expiry, duration)
// always change together.
type LicenseRepository interface {
	// CreateBatchTx inserts the whole batch plus its audit event in one
	// transaction; a failure leaves no partial batch behind.
	CreateBatchTx(ctx context.Context, licenses []domain.License, event OutboxEvent) error
	GetByIDAndApp(ctx context.Context, licenseID, applicationID uuid.UUID) (domain.License, error)
	ListByApp(ctx context.Context, applicationID uuid.UUID, limit, offset int) ([]domain.License, error)
	// AddTimeUnused shifts every unused license atomically: finite expiries
	// move forward by deltaSeconds, nil expiries rebase from now, and
	// duration accumulates in the same statement. Returns rows updated.
	AddTimeUnused(ctx context.Context, applicationID uuid.UUID, deltaSeconds int64, now time.Time) (int64, error)
	// SetLifetimeUnused is the sentinel branch of add-time: it nulls expiry
	// on every unused license without touching accumulated duration.
	SetLifetimeUnused(ctx context.Context, applicationID uuid.UUID) (int64, error)
	SetBanned(ctx context.Context, licenseID, applicationID uuid.UUID, banned bool, reason string) (domain.License, error)
	DeleteByMode(ctx context.Context, applicationID uuid.UUID, mode LicenseDeleteMode, ids []uuid.UUID) (int64, error)
}

// AppUserDeleteMode selects which users a bulk delete removes.
type AppUserDeleteMode string

const (
	DeleteUsersExpired AppUserDeleteMode = "expired"
	DeleteUsersByID    AppUserDeleteMode = "ids"
)

// AppUserRepository persists per-application end users and their entitlement
// state. Cohort mutations receive tagged filters and execute as single
// conditional statements, mirroring LicenseRepository.
type AppUserRepository interface {
	Create(ctx context.Context, user domain.AppUser) (domain.AppUser, error)
	GetByIDAndApp(ctx context.Context, userID, applicationID uuid.UUID) (domain.AppUser, error)
	ListByApp(ctx context.Context, applicationID uuid.UUID, limit, offset int) ([]domain.AppUser, error)
	// ExtendExpiry shifts the cohort's expiry forward: finite expiries by
	// deltaSeconds, nil expiries rebased from now. Returns rows updated.
	ExtendExpiry(ctx context.Context, applicationID uuid.UUID, cohort domain.UserCohort, deltaSeconds int64, now time.Time) (int64, error)
	// SetLifetime nulls the cohort's expiry (lifetime sentinel branch).
	SetLifetime(ctx context.Context, applicationID uuid.UUID, cohort domain.UserCohort) (int64, error)
	// SubtractExpiry moves finite expiries back by deltaSeconds, clamped at
	// now. Nil-expiry cohort members are skipped entirely. Returns rows
	// actually mutated.
	SubtractExpiry(ctx context.Context, applicationID uuid.UUID, cohort domain.UserCohort, deltaSeconds int64, now time.Time) (int64, error)
	DeleteByMode(ctx context.Context, applicationID uuid.UUID, mode AppUserDeleteMode, ids []uuid.UUID, now time.Time) (int64, error)
	SetBanned(ctx context.Context, userID, applicationID uuid.UUID, banned bool, reason string) (domain.AppUser, error)
	SetPaused(ctx context.Context, applicationID uuid.UUID, ids []uuid.UUID, paused bool) (int64, error)
	// ResetHWID clears the hardware binding; an empty id list targets every
	// user in the application.
	ResetHWID(ctx context.Context, applicationID uuid.UUID, ids []uuid.UUID) (int64, error)
	// ResetSubscription restores the default tier and nulls expiry in one
	// statement so the pair can never diverge.
	ResetSubscription(ctx context.Context, userID, applicationID uuid.UUID) (domain.AppUser, error)
}

// UserVarRepository persists per-user name/value pairs.
type UserVarRepository interface {
	Get(ctx context.Context, userID uuid.UUID, name string) (domain.UserVar, error)
	Upsert(ctx context.Context, v domain.UserVar) (domain.UserVar, error)
	Delete(ctx context.Context, userID uuid.UUID, name string) error
	ListByUser(ctx context.Context, userID uuid.UUID) ([]domain.UserVar, error)
}

// BlacklistRepository persists per-application hwid/ip blocks.
// Add is idempotent per (application, type, value).
type BlacklistRepository interface {
	Add(ctx context.Context, entry domain.BlacklistEntry) (domain.BlacklistEntry, error)
	Remove(ctx context.Context, entryID, applicationID uuid.UUID) error
	ListByApp(ctx context.Context, applicationID uuid.UUID) ([]domain.BlacklistEntry, error)
}

// OutboxEvent is the write-side audit event payload prior to storage.
type OutboxEvent struct {
	EventID      uuid.UUID
	EventType    string
	PartitionKey string
	Payload      []byte
	OccurredAt   time.Time
}

// OutboxRecord represents durable outbox state, including retry/error metadata.
type OutboxRecord struct {
	OutboxID       uuid.UUID
	EventType      string
	PartitionKey   string
	Payload        []byte
	RetryCount     int
	LastError      *string
	CreatedAt      time.Time
	PublishedAt    *time.Time
	LastErrorAt    *time.Time
	FirstSeenAt    time.Time
	ClaimToken     *string
	ClaimUntil     *time.Time
	DeadLetteredAt *time.Time
}

// OutboxRepository controls the publish-retry workflow for audit events.
// Batch-creating licenses writes its event through LicenseRepository's
// transaction; standalone mutations enqueue here directly.
type OutboxRepository interface {
	Enqueue(ctx context.Context, event OutboxEvent) error
	ClaimUnpublished(ctx context.Context, limit int, claimToken string, claimUntil time.Time) ([]OutboxRecord, error)
	MarkPublished(ctx context.Context, outboxID uuid.UUID, claimToken string, at time.Time) error
	MarkFailed(ctx context.Context, outboxID uuid.UUID, claimToken, errMsg string, at time.Time) error
	MarkDeadLettered(ctx context.Context, outboxID uuid.UUID, claimToken, errMsg string, at time.Time) error
}

// IdempotencyRecord tracks a previously accepted mutating request.
type IdempotencyRecord struct {
	Key          string
	RequestHash  string
	Status       string
	ResponseCode int
	ResponseBody []byte
	ExpiresAt    time.Time
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// IdempotencyRepository enforces replay-safe batch creation.
type IdempotencyRepository interface {
	Get(ctx context.Context, key string) (*IdempotencyRecord, error)
	Reserve(ctx context.Context, key, requestHash string, expiresAt time.Time) error
	Complete(ctx context.Context, key string, responseCode int, responseBody []byte, at time.Time) error
}
