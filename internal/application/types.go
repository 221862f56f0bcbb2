package application

import (
	"time"

	"github.com/google/uuid"
	"github.com/venomauth/licensing-service/internal/domain"
)

type Config struct {
	DefaultLicenseLevel int
	MaxBatchSize        int
	ListLimit           int
	IdempotencyTTL      time.Duration
}

type CreateApplicationRequest struct {
	Name    string `json:"name"`
	Version string `json:"version"`
}

type ApplicationItem struct {
	ApplicationID uuid.UUID `json:"application_id"`
	Name          string    `json:"name"`
	Status        string    `json:"status"`
	Secret        string    `json:"secret,omitempty"`
	Version       string    `json:"version"`
	CreatedAt     time.Time `json:"created_at"`
}

type SetApplicationStatusRequest struct {
	Status string `json:"status"`
}

type CreateLicenseBatchRequest struct {
	Amount     int    `json:"amount"`
	Mask       string `json:"mask"`
	Level      int    `json:"level"`
	Duration   int64  `json:"duration"`
	ExpiryUnit int64  `json:"expiry_unit"`
	Note       string `json:"note"`
	Lowercase  bool   `json:"lowercase_letters"`
	Uppercase  bool   `json:"uppercase_letters"`
}

type LicenseItem struct {
	LicenseID       uuid.UUID  `json:"license_id"`
	Key             string     `json:"key"`
	Level           int        `json:"level"`
	DurationSeconds int64      `json:"duration_seconds"`
	ExpiresAt       *time.Time `json:"expires_at"`
	Used            bool       `json:"used"`
	Banned          bool       `json:"banned"`
	BanReason       string     `json:"ban_reason,omitempty"`
	Note            string     `json:"note,omitempty"`
	CreatedAt       time.Time  `json:"created_at"`
}

type CreateLicenseBatchResponse struct {
	Licenses []LicenseItem `json:"licenses"`
	Count    int           `json:"count"`
}

type AddLicenseTimeRequest struct {
	Time       int64 `json:"time"`
	ExpiryUnit int64 `json:"expiry_unit"`
}

type BulkCountResponse struct {
	Count int64 `json:"count"`
}

type BanRequest struct {
	Reason string `json:"reason"`
}

type DeleteLicensesRequest struct {
	Mode string      `json:"mode"`
	IDs  []uuid.UUID `json:"ids"`
}

type CreateAppUserRequest struct {
	Username     string `json:"username"`
	Password     string `json:"password"`
	Email        string `json:"email"`
	Subscription string `json:"subscription"`
	Expiry       int64  `json:"expiry"`
	ExpiryUnit   int64  `json:"expiry_unit"`
}

type AppUserItem struct {
	UserID       uuid.UUID  `json:"user_id"`
	Username     string     `json:"username"`
	Email        string     `json:"email,omitempty"`
	Subscription string     `json:"subscription"`
	ExpiresAt    *time.Time `json:"expires_at"`
	HWID         *string    `json:"hwid,omitempty"`
	Banned       bool       `json:"banned"`
	BanReason    string     `json:"ban_reason,omitempty"`
	Paused       bool       `json:"paused"`
	CreatedAt    time.Time  `json:"created_at"`
}

// CohortRequest carries the bulk-selection filters. Username/Subscription
// keep the dashboard's legacy sentinels on the wire ("all", "default" =
// no filter) and are mapped to tagged filters at the boundary.
type CohortRequest struct {
	Username     string `json:"username"`
	Subscription string `json:"subscription"`
	ActiveOnly   bool   `json:"active_only"`
}

type ExtendAppUsersRequest struct {
	CohortRequest
	Time       int64 `json:"time"`
	ExpiryUnit int64 `json:"expiry_unit"`
}

type SubtractAppUserTimeRequest struct {
	Username     string `json:"username"`
	Subscription string `json:"subscription"`
	Time         int64  `json:"time"`
	ExpiryUnit   int64  `json:"expiry_unit"`
}

type DeleteAppUsersRequest struct {
	Mode string      `json:"mode"`
	IDs  []uuid.UUID `json:"ids"`
}

type PauseAppUsersRequest struct {
	IDs    []uuid.UUID `json:"ids"`
	Action string      `json:"action"`
}

type ResetHwidRequest struct {
	IDs []uuid.UUID `json:"ids"`
}

type SetUserVarRequest struct {
	Name     string `json:"name"`
	Value    string `json:"value"`
	ReadOnly bool   `json:"read_only"`
}

type UserVarItem struct {
	Name      string    `json:"name"`
	Value     string    `json:"value"`
	ReadOnly  bool      `json:"read_only"`
	UpdatedAt time.Time `json:"updated_at"`
}

type BlacklistAddRequest struct {
	Type   string `json:"type"`
	Value  string `json:"value"`
	Reason string `json:"reason"`
}

type BlacklistItem struct {
	EntryID   uuid.UUID `json:"entry_id"`
	Type      string    `json:"type"`
	Value     string    `json:"value"`
	Reason    string    `json:"reason,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

type AppSessionItem struct {
	SessionID string    `json:"session_id"`
	Username  string    `json:"username"`
	IPAddress string    `json:"ip_address,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	ExpiresAt time.Time `json:"expires_at"`
}

func toApplicationItem(a domain.Application, includeSecret bool) ApplicationItem {
	item := ApplicationItem{
		ApplicationID: a.ApplicationID,
		Name:          a.Name,
		Status:        a.Status,
		Version:       a.Version,
		CreatedAt:     a.CreatedAt,
	}
	if includeSecret {
		item.Secret = a.Secret
	}
	return item
}

func toLicenseItem(l domain.License) LicenseItem {
	return LicenseItem{
		LicenseID:       l.LicenseID,
		Key:             l.Key,
		Level:           l.Level,
		DurationSeconds: l.DurationSeconds,
		ExpiresAt:       l.ExpiresAt,
		Used:            l.Used,
		Banned:          l.Banned,
		BanReason:       l.BanReason,
		Note:            l.Note,
		CreatedAt:       l.CreatedAt,
	}
}

func toAppUserItem(u domain.AppUser) AppUserItem {
	return AppUserItem{
		UserID:       u.UserID,
		Username:     u.Username,
		Email:        u.Email,
		Subscription: u.Subscription,
		ExpiresAt:    u.ExpiresAt,
		HWID:         u.HWID,
		Banned:       u.Banned,
		BanReason:    u.BanReason,
		Paused:       u.Paused,
		CreatedAt:    u.CreatedAt,
	}
}

func toUserVarItem(v domain.UserVar) UserVarItem {
	return UserVarItem{
		Name:      v.Name,
		Value:     v.Value,
		ReadOnly:  v.ReadOnly,
		UpdatedAt: v.UpdatedAt,
	}
}

func toBlacklistItem(e domain.BlacklistEntry) BlacklistItem {
	return BlacklistItem{
		EntryID:   e.EntryID,
		Type:      e.Type,
		Value:     e.Value,
		Reason:    e.Reason,
		CreatedAt: e.CreatedAt,
	}
}

func toAppSessionItem(s domain.AppSession) AppSessionItem {
	return AppSessionItem{
		SessionID: s.SessionID,
		Username:  s.Username,
		IPAddress: s.IPAddress,
		CreatedAt: s.CreatedAt,
		ExpiresAt: s.ExpiresAt,
	}
}
