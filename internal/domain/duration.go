package domain

import (
	"fmt"
	"time"
)

// Expiry units are caller-supplied seconds-per-unit multipliers. The named
// constants cover the dashboard presets; any positive value is accepted.
const (
	UnitSecond int64 = 1
	UnitMinute int64 = 60
	UnitHour   int64 = 3600
	UnitDay    int64 = 86400
	UnitWeek   int64 = 604800
	UnitMonth  int64 = 2592000
	UnitYear   int64 = 31556926

	// UnitLifetime is the reserved sentinel meaning "never expires". It must
	// resolve to a nil expiry before any multiplication happens; amount *
	// UnitLifetime is never a valid duration.
	UnitLifetime int64 = 315569260
)

// IsLifetimeUnit reports whether unit is the lifetime sentinel.
func IsLifetimeUnit(unit int64) bool {
	return unit == UnitLifetime
}

// ValidateAmountUnit rejects non-positive amount/unit pairs up front so the
// arithmetic below never sees them.
func ValidateAmountUnit(amount, unit int64) error {
	if amount <= 0 {
		return fmt.Errorf("%w: time amount must be positive", ErrInvalidInput)
	}
	if unit <= 0 {
		return fmt.Errorf("%w: expiry unit must be positive", ErrInvalidInput)
	}
	return nil
}

// DeltaSeconds resolves (amount, unit) to a seconds delta. The sentinel check
// comes first: lifetime pairs carry no numeric delta.
func DeltaSeconds(amount, unit int64) int64 {
	if IsLifetimeUnit(unit) {
		return 0
	}
	return amount * unit
}

// InitialExpiry computes a freshly issued license's (expiry, duration) pair.
// Lifetime yields (nil, 0); otherwise expiry is now plus the delta and
// duration is the delta itself.
func InitialExpiry(now time.Time, amount, unit int64) (*time.Time, int64) {
	if IsLifetimeUnit(unit) {
		return nil, 0
	}
	seconds := amount * unit
	at := now.Add(time.Duration(seconds) * time.Second)
	return &at, seconds
}

// ShiftExpiry moves an existing expiry forward by (amount, unit). Reaching the
// lifetime sentinel collapses to nil no matter what the entity held before; a
// nil expiry extended by a finite unit rebases from now.
func ShiftExpiry(now time.Time, existing *time.Time, amount, unit int64) *time.Time {
	if IsLifetimeUnit(unit) {
		return nil
	}
	delta := time.Duration(amount*unit) * time.Second
	if existing == nil {
		at := now.Add(delta)
		return &at
	}
	at := existing.Add(delta)
	return &at
}

// ClampedSubtract moves an existing expiry backward by (amount, unit), never
// past now. A nil (unlimited) expiry is untouched, not converted to a finite
// one. The bool reports whether the value changed.
func ClampedSubtract(now time.Time, existing *time.Time, amount, unit int64) (*time.Time, bool) {
	if existing == nil {
		return nil, false
	}
	delta := DeltaSeconds(amount, unit)
	if delta <= 0 {
		return existing, false
	}
	at := existing.Add(-time.Duration(delta) * time.Second)
	if at.Before(now) {
		at = now
	}
	if at.Equal(*existing) {
		return existing, false
	}
	return &at, true
}
