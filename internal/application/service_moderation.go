package application

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/venomauth/licensing-service/internal/domain"
)

func (s *Service) BanAppUser(ctx context.Context, ownerID, applicationID, userID uuid.UUID, reason string) (AppUserItem, error) {
	return s.setAppUserBan(ctx, ownerID, applicationID, userID, true, strings.TrimSpace(reason))
}

func (s *Service) UnbanAppUser(ctx context.Context, ownerID, applicationID, userID uuid.UUID) (AppUserItem, error) {
	return s.setAppUserBan(ctx, ownerID, applicationID, userID, false, "")
}

func (s *Service) setAppUserBan(ctx context.Context, ownerID, applicationID, userID uuid.UUID, banned bool, reason string) (AppUserItem, error) {
	if userID == uuid.Nil {
		return AppUserItem{}, fmt.Errorf("%w: user_id is required", domain.ErrInvalidInput)
	}
	app, err := s.requireApplication(ctx, ownerID, applicationID)
	if err != nil {
		return AppUserItem{}, err
	}

	user, err := s.users.SetBanned(ctx, userID, app.ApplicationID, banned, reason)
	if err != nil {
		return AppUserItem{}, err
	}
	eventType := "user.banned"
	if !banned {
		eventType = "user.unbanned"
	}
	s.audit(ctx, eventType, app.ApplicationID, map[string]any{"user_id": userID.String()})
	return toAppUserItem(user), nil
}

// PauseAppUsers flips the paused flag on exactly the listed users. The flag
// write is state-blind: pausing an already-paused user is a no-op in effect.
func (s *Service) PauseAppUsers(ctx context.Context, ownerID, applicationID uuid.UUID, req PauseAppUsersRequest) (BulkCountResponse, error) {
	if len(req.IDs) == 0 {
		return BulkCountResponse{}, fmt.Errorf("%w: user id list is required", domain.ErrInvalidInput)
	}
	var paused bool
	switch strings.ToLower(strings.TrimSpace(req.Action)) {
	case "pause":
		paused = true
	case "unpause":
		paused = false
	default:
		return BulkCountResponse{}, fmt.Errorf("%w: action must be \"pause\" or \"unpause\"", domain.ErrInvalidInput)
	}

	app, err := s.requireApplication(ctx, ownerID, applicationID)
	if err != nil {
		return BulkCountResponse{}, err
	}

	count, err := s.users.SetPaused(ctx, app.ApplicationID, req.IDs, paused)
	if err != nil {
		return BulkCountResponse{}, err
	}
	s.audit(ctx, "user.pause_changed", app.ApplicationID, map[string]any{"paused": paused, "count": count})
	return BulkCountResponse{Count: count}, nil
}

// ResetHwid clears hardware bindings so a device fingerprint can re-establish
// on next login. An empty id list resets every user in the application.
func (s *Service) ResetHwid(ctx context.Context, ownerID, applicationID uuid.UUID, req ResetHwidRequest) (BulkCountResponse, error) {
	app, err := s.requireApplication(ctx, ownerID, applicationID)
	if err != nil {
		return BulkCountResponse{}, err
	}

	count, err := s.users.ResetHWID(ctx, app.ApplicationID, req.IDs)
	if err != nil {
		return BulkCountResponse{}, err
	}
	s.audit(ctx, "user.hwid_reset", app.ApplicationID, map[string]any{"count": count})
	return BulkCountResponse{Count: count}, nil
}

// DeleteSubscription drops one user back to the default tier with no expiry.
// Both fields change in the same statement; a lingering expiry on the default
// tier or a paid tier with no expiry are both invalid states.
func (s *Service) DeleteSubscription(ctx context.Context, ownerID, applicationID, userID uuid.UUID) (AppUserItem, error) {
	if userID == uuid.Nil {
		return AppUserItem{}, fmt.Errorf("%w: user_id is required", domain.ErrInvalidInput)
	}
	app, err := s.requireApplication(ctx, ownerID, applicationID)
	if err != nil {
		return AppUserItem{}, err
	}

	user, err := s.users.ResetSubscription(ctx, userID, app.ApplicationID)
	if err != nil {
		return AppUserItem{}, err
	}
	s.audit(ctx, "user.subscription_deleted", app.ApplicationID, map[string]any{"user_id": userID.String()})
	return toAppUserItem(user), nil
}

func (s *Service) AddBlacklistEntry(ctx context.Context, ownerID, applicationID uuid.UUID, req BlacklistAddRequest) (BlacklistItem, error) {
	entryType := strings.ToLower(strings.TrimSpace(req.Type))
	if entryType != domain.BlacklistHWID && entryType != domain.BlacklistIP {
		return BlacklistItem{}, fmt.Errorf("%w: type must be %q or %q", domain.ErrInvalidInput, domain.BlacklistHWID, domain.BlacklistIP)
	}
	value := strings.TrimSpace(req.Value)
	if value == "" {
		return BlacklistItem{}, fmt.Errorf("%w: value is required", domain.ErrInvalidInput)
	}

	app, err := s.requireApplication(ctx, ownerID, applicationID)
	if err != nil {
		return BlacklistItem{}, err
	}

	entry, err := s.blacklist.Add(ctx, domain.BlacklistEntry{
		EntryID:       uuid.New(),
		ApplicationID: app.ApplicationID,
		Type:          entryType,
		Value:         value,
		Reason:        strings.TrimSpace(req.Reason),
		CreatedAt:     s.nowFn(),
	})
	if err != nil {
		return BlacklistItem{}, err
	}
	s.audit(ctx, "blacklist.added", app.ApplicationID, map[string]any{"type": entryType})
	return toBlacklistItem(entry), nil
}

func (s *Service) RemoveBlacklistEntry(ctx context.Context, ownerID, applicationID, entryID uuid.UUID) error {
	if entryID == uuid.Nil {
		return fmt.Errorf("%w: entry_id is required", domain.ErrInvalidInput)
	}
	app, err := s.requireApplication(ctx, ownerID, applicationID)
	if err != nil {
		return err
	}
	if err := s.blacklist.Remove(ctx, entryID, app.ApplicationID); err != nil {
		return err
	}
	s.audit(ctx, "blacklist.removed", app.ApplicationID, map[string]any{"entry_id": entryID.String()})
	return nil
}

func (s *Service) ListBlacklist(ctx context.Context, ownerID, applicationID uuid.UUID) ([]BlacklistItem, error) {
	app, err := s.requireApplication(ctx, ownerID, applicationID)
	if err != nil {
		return nil, err
	}
	entries, err := s.blacklist.ListByApp(ctx, app.ApplicationID)
	if err != nil {
		return nil, err
	}
	items := make([]BlacklistItem, 0, len(entries))
	for _, e := range entries {
		items = append(items, toBlacklistItem(e))
	}
	return items, nil
}
