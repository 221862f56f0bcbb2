package domain

import (
	"time"

	"github.com/google/uuid"
)

// Application is the tenant-scoped project under one owner account.
// It is the unit of isolation: every license, app user, var, and blacklist
// entry belongs to exactly one application.
type Application struct {
	ApplicationID uuid.UUID
	OwnerID       uuid.UUID
	Name          string
	Status        string
	Secret        string
	Version       string
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// Application lifecycle statuses.
const (
	AppStatusActive = "active"
	AppStatusPaused = "paused"
)

// License is one issuable, time-bounded key prior to redemption.
// DurationSeconds is the accumulated entitlement length, not the remaining
// time. ExpiresAt nil means lifetime; it is never reused to mean "unset".
type License struct {
	LicenseID       uuid.UUID
	ApplicationID   uuid.UUID
	Key             string
	Level           int
	DurationSeconds int64
	ExpiresAt       *time.Time
	Used            bool
	Banned          bool
	BanReason       string
	Note            string
	CreatedAt       time.Time
}

// AppUser is an end-user account scoped to one application.
// (ApplicationID, Username) is unique. ExpiresAt nil means unlimited
// entitlement; a finite value is an absolute instant.
type AppUser struct {
	UserID        uuid.UUID
	ApplicationID uuid.UUID
	Username      string
	PasswordHash  string
	Email         string
	Subscription  string
	ExpiresAt     *time.Time
	HWID          *string
	Banned        bool
	BanReason     string
	Paused        bool
	CreatedAt     time.Time
}

// DefaultSubscription is the tier every app user starts on and returns to
// when their subscription is deleted.
const DefaultSubscription = "default"

// UserVar is a named value attached to one app user, unique per
// (UserID, Name). ReadOnly vars reject overwrite on the admin write path.
type UserVar struct {
	VarID     uuid.UUID
	UserID    uuid.UUID
	Name      string
	Value     string
	ReadOnly  bool
	CreatedAt time.Time
	UpdatedAt time.Time
}

// BlacklistEntry blocks a hardware id or IP from redeeming keys or logging
// in to one application.
type BlacklistEntry struct {
	EntryID       uuid.UUID
	ApplicationID uuid.UUID
	Type          string
	Value         string
	Reason        string
	CreatedAt     time.Time
}

// Blacklist entry types.
const (
	BlacklistHWID = "hwid"
	BlacklistIP   = "ip"
)

// AppSession is a runtime end-user session as recorded by the client API.
// The dashboard only lists and kills these; it never creates them.
type AppSession struct {
	SessionID     string
	ApplicationID uuid.UUID
	Username      string
	IPAddress     string
	CreatedAt     time.Time
	ExpiresAt     time.Time
}
