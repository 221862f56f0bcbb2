package postgres

import (
	"time"

	"github.com/google/uuid"
)

type applicationModel struct {
	ApplicationID uuid.UUID `gorm:"column:application_id;type:uuid;default:gen_random_uuid();primaryKey"`
	OwnerID       uuid.UUID `gorm:"column:owner_id;type:uuid"`
	Name          string    `gorm:"column:name"`
	Status        string    `gorm:"column:status"`
	Secret        string    `gorm:"column:secret"`
	Version       string    `gorm:"column:version"`
	CreatedAt     time.Time `gorm:"column:created_at"`
	UpdatedAt     time.Time `gorm:"column:updated_at"`
}

func (applicationModel) TableName() string { return "applications" }

type licenseModel struct {
	LicenseID       uuid.UUID  `gorm:"column:license_id;type:uuid;default:gen_random_uuid();primaryKey"`
	ApplicationID   uuid.UUID  `gorm:"column:application_id;type:uuid"`
	Key             string     `gorm:"column:key"`
	Level           int        `gorm:"column:level"`
	DurationSeconds int64      `gorm:"column:duration_seconds"`
	ExpiresAt       *time.Time `gorm:"column:expires_at"`
	Used            bool       `gorm:"column:used"`
	Banned          bool       `gorm:"column:banned"`
	BanReason       string     `gorm:"column:ban_reason"`
	Note            string     `gorm:"column:note"`
	CreatedAt       time.Time  `gorm:"column:created_at"`
}

func (licenseModel) TableName() string { return "licenses" }

type appUserModel struct {
	UserID        uuid.UUID  `gorm:"column:user_id;type:uuid;default:gen_random_uuid();primaryKey"`
	ApplicationID uuid.UUID  `gorm:"column:application_id;type:uuid"`
	Username      string     `gorm:"column:username"`
	PasswordHash  string     `gorm:"column:password_hash"`
	Email         string     `gorm:"column:email"`
	Subscription  string     `gorm:"column:subscription"`
	ExpiresAt     *time.Time `gorm:"column:expires_at"`
	HWID          *string    `gorm:"column:hwid"`
	Banned        bool       `gorm:"column:banned"`
	BanReason     string     `gorm:"column:ban_reason"`
	Paused        bool       `gorm:"column:paused"`
	CreatedAt     time.Time  `gorm:"column:created_at"`
}

func (appUserModel) TableName() string { return "app_users" }

type userVarModel struct {
	VarID     uuid.UUID `gorm:"column:var_id;type:uuid;default:gen_random_uuid();primaryKey"`
	UserID    uuid.UUID `gorm:"column:user_id;type:uuid"`
	Name      string    `gorm:"column:name"`
	Value     string    `gorm:"column:value"`
	ReadOnly  bool      `gorm:"column:read_only"`
	CreatedAt time.Time `gorm:"column:created_at"`
	UpdatedAt time.Time `gorm:"column:updated_at"`
}

func (userVarModel) TableName() string { return "user_vars" }

type blacklistModel struct {
	EntryID       uuid.UUID `gorm:"column:entry_id;type:uuid;default:gen_random_uuid();primaryKey"`
	ApplicationID uuid.UUID `gorm:"column:application_id;type:uuid"`
	EntryType     string    `gorm:"column:entry_type"`
	Value         string    `gorm:"column:value"`
	Reason        string    `gorm:"column:reason"`
	CreatedAt     time.Time `gorm:"column:created_at"`
}

func (blacklistModel) TableName() string { return "blacklist_entries" }

type auditOutboxModel struct {
	OutboxID       uuid.UUID  `gorm:"column:outbox_id;type:uuid;primaryKey"`
	EventType      string     `gorm:"column:event_type"`
	PartitionKey   string     `gorm:"column:partition_key"`
	Payload        string     `gorm:"column:payload;type:jsonb"`
	CreatedAt      time.Time  `gorm:"column:created_at"`
	FirstSeenAt    time.Time  `gorm:"column:first_seen_at"`
	PublishedAt    *time.Time `gorm:"column:published_at"`
	RetryCount     int        `gorm:"column:retry_count"`
	LastError      *string    `gorm:"column:last_error"`
	LastErrorAt    *time.Time `gorm:"column:last_error_at"`
	ClaimToken     *string    `gorm:"column:claim_token"`
	ClaimUntil     *time.Time `gorm:"column:claim_until"`
	DeadLetteredAt *time.Time `gorm:"column:dead_lettered_at"`
}

func (auditOutboxModel) TableName() string { return "audit_outbox" }

type idempotencyModel struct {
	IdempotencyKey string    `gorm:"column:idempotency_key;primaryKey"`
	RequestHash    string    `gorm:"column:request_hash"`
	Status         string    `gorm:"column:status"`
	ResponseCode   int       `gorm:"column:response_code"`
	ResponseBody   *string   `gorm:"column:response_body;type:jsonb"`
	ExpiresAt      time.Time `gorm:"column:expires_at"`
	CreatedAt      time.Time `gorm:"column:created_at"`
	UpdatedAt      time.Time `gorm:"column:updated_at"`
}

func (idempotencyModel) TableName() string { return "licensing_idempotency" }
