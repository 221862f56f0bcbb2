package application

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/venomauth/licensing-service/internal/domain"
	"github.com/venomauth/licensing-service/internal/ports"
)

func (s *Service) CreateAppUser(ctx context.Context, ownerID, applicationID uuid.UUID, req CreateAppUserRequest) (AppUserItem, error) {
	username := strings.TrimSpace(req.Username)
	if username == "" {
		return AppUserItem{}, fmt.Errorf("%w: username is required", domain.ErrInvalidInput)
	}
	if err := domain.ValidatePassword(req.Password); err != nil {
		return AppUserItem{}, err
	}

	app, err := s.requireApplication(ctx, ownerID, applicationID)
	if err != nil {
		return AppUserItem{}, err
	}

	now := s.nowFn()
	var expiry *time.Time
	if req.Expiry > 0 && req.ExpiryUnit > 0 {
		expiry, _ = domain.InitialExpiry(now, req.Expiry, req.ExpiryUnit)
	}
	subscription := strings.TrimSpace(req.Subscription)
	if subscription == "" {
		subscription = domain.DefaultSubscription
	}

	passwordHash, err := s.hasher.Hash(req.Password)
	if err != nil {
		return AppUserItem{}, fmt.Errorf("hash password: %w", err)
	}

	user, err := s.users.Create(ctx, domain.AppUser{
		UserID:        uuid.New(),
		ApplicationID: app.ApplicationID,
		Username:      username,
		PasswordHash:  passwordHash,
		Email:         strings.TrimSpace(req.Email),
		Subscription:  subscription,
		ExpiresAt:     expiry,
		CreatedAt:     now,
	})
	if err != nil {
		return AppUserItem{}, err
	}

	s.audit(ctx, "user.created", app.ApplicationID, map[string]any{"username": username})
	return toAppUserItem(user), nil
}

// ExtendAppUsers moves a filtered cohort's expiry forward. Users already on
// unlimited entitlement are rebased from now under a finite unit; the
// lifetime sentinel converts the whole cohort to unlimited instead of
// entering the arithmetic.
func (s *Service) ExtendAppUsers(ctx context.Context, ownerID, applicationID uuid.UUID, req ExtendAppUsersRequest) (BulkCountResponse, error) {
	if err := domain.ValidateAmountUnit(req.Time, req.ExpiryUnit); err != nil {
		return BulkCountResponse{}, err
	}
	app, err := s.requireApplication(ctx, ownerID, applicationID)
	if err != nil {
		return BulkCountResponse{}, err
	}

	cohort := domain.LegacyUserCohort(req.Username, req.Subscription, req.ActiveOnly)

	var count int64
	if domain.IsLifetimeUnit(req.ExpiryUnit) {
		count, err = s.users.SetLifetime(ctx, app.ApplicationID, cohort)
	} else {
		count, err = s.users.ExtendExpiry(ctx, app.ApplicationID, cohort, domain.DeltaSeconds(req.Time, req.ExpiryUnit), s.nowFn())
	}
	if err != nil {
		return BulkCountResponse{}, err
	}

	s.audit(ctx, "user.time_extended", app.ApplicationID, map[string]any{
		"seconds":  domain.DeltaSeconds(req.Time, req.ExpiryUnit),
		"lifetime": domain.IsLifetimeUnit(req.ExpiryUnit),
		"count":    count,
	})
	return BulkCountResponse{Count: count}, nil
}

// SubtractAppUserTime moves a filtered cohort's expiry backward, clamped at
// now. Unlimited users are skipped, never converted to a finite expiry, and
// the returned count covers only rows actually mutated. The lifetime sentinel
// has no meaning here and is rejected up front.
func (s *Service) SubtractAppUserTime(ctx context.Context, ownerID, applicationID uuid.UUID, req SubtractAppUserTimeRequest) (BulkCountResponse, error) {
	if err := domain.ValidateAmountUnit(req.Time, req.ExpiryUnit); err != nil {
		return BulkCountResponse{}, err
	}
	if domain.IsLifetimeUnit(req.ExpiryUnit) {
		return BulkCountResponse{}, fmt.Errorf("%w: cannot subtract the lifetime unit", domain.ErrInvalidInput)
	}
	app, err := s.requireApplication(ctx, ownerID, applicationID)
	if err != nil {
		return BulkCountResponse{}, err
	}

	cohort := domain.LegacyUserCohort(req.Username, req.Subscription, false)
	count, err := s.users.SubtractExpiry(ctx, app.ApplicationID, cohort, domain.DeltaSeconds(req.Time, req.ExpiryUnit), s.nowFn())
	if err != nil {
		return BulkCountResponse{}, err
	}

	s.audit(ctx, "user.time_subtracted", app.ApplicationID, map[string]any{
		"seconds": domain.DeltaSeconds(req.Time, req.ExpiryUnit),
		"count":   count,
	})
	return BulkCountResponse{Count: count}, nil
}

func (s *Service) DeleteAppUsers(ctx context.Context, ownerID, applicationID uuid.UUID, req DeleteAppUsersRequest) (BulkCountResponse, error) {
	app, err := s.requireApplication(ctx, ownerID, applicationID)
	if err != nil {
		return BulkCountResponse{}, err
	}

	var mode ports.AppUserDeleteMode
	switch strings.ToLower(strings.TrimSpace(req.Mode)) {
	case "expired":
		mode = ports.DeleteUsersExpired
	case "", "ids":
		if len(req.IDs) == 0 {
			return BulkCountResponse{}, fmt.Errorf("%w: mode or id list is required", domain.ErrInvalidInput)
		}
		mode = ports.DeleteUsersByID
	default:
		return BulkCountResponse{}, fmt.Errorf("%w: unknown delete mode %q", domain.ErrInvalidInput, req.Mode)
	}

	count, err := s.users.DeleteByMode(ctx, app.ApplicationID, mode, req.IDs, s.nowFn())
	if err != nil {
		return BulkCountResponse{}, err
	}
	s.audit(ctx, "user.deleted", app.ApplicationID, map[string]any{"mode": string(mode), "count": count})
	return BulkCountResponse{Count: count}, nil
}

func (s *Service) ListAppUsers(ctx context.Context, ownerID, applicationID uuid.UUID, page int) ([]AppUserItem, error) {
	app, err := s.requireApplication(ctx, ownerID, applicationID)
	if err != nil {
		return nil, err
	}
	if page < 1 {
		page = 1
	}
	users, err := s.users.ListByApp(ctx, app.ApplicationID, s.cfg.ListLimit, (page-1)*s.cfg.ListLimit)
	if err != nil {
		return nil, err
	}
	items := make([]AppUserItem, 0, len(users))
	for _, u := range users {
		items = append(items, toAppUserItem(u))
	}
	return items, nil
}
