package application

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/venomauth/licensing-service/internal/domain"
)

func (s *Service) CreateApplication(ctx context.Context, ownerID uuid.UUID, req CreateApplicationRequest) (ApplicationItem, error) {
	if ownerID == uuid.Nil {
		return ApplicationItem{}, domain.ErrUnauthorized
	}
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return ApplicationItem{}, fmt.Errorf("%w: application name is required", domain.ErrInvalidInput)
	}
	version := strings.TrimSpace(req.Version)
	if version == "" {
		version = "1.0"
	}

	now := s.nowFn()
	app, err := s.apps.Create(ctx, domain.Application{
		ApplicationID: uuid.New(),
		OwnerID:       ownerID,
		Name:          name,
		Status:        domain.AppStatusActive,
		Secret:        randomHex(32),
		Version:       version,
		CreatedAt:     now,
		UpdatedAt:     now,
	})
	if err != nil {
		return ApplicationItem{}, err
	}

	s.audit(ctx, "application.created", app.ApplicationID, map[string]any{"name": app.Name})
	// The secret is surfaced once at creation; list responses omit it.
	return toApplicationItem(app, true), nil
}

func (s *Service) ListApplications(ctx context.Context, ownerID uuid.UUID) ([]ApplicationItem, error) {
	if ownerID == uuid.Nil {
		return nil, domain.ErrUnauthorized
	}
	apps, err := s.apps.ListByOwner(ctx, ownerID)
	if err != nil {
		return nil, err
	}
	items := make([]ApplicationItem, 0, len(apps))
	for _, a := range apps {
		items = append(items, toApplicationItem(a, false))
	}
	return items, nil
}

func (s *Service) SetApplicationStatus(ctx context.Context, ownerID, applicationID uuid.UUID, status string) (ApplicationItem, error) {
	status = strings.ToLower(strings.TrimSpace(status))
	if status != domain.AppStatusActive && status != domain.AppStatusPaused {
		return ApplicationItem{}, fmt.Errorf("%w: status must be %q or %q", domain.ErrInvalidInput, domain.AppStatusActive, domain.AppStatusPaused)
	}
	app, err := s.requireApplication(ctx, ownerID, applicationID)
	if err != nil {
		return ApplicationItem{}, err
	}

	now := s.nowFn()
	if err := s.apps.SetStatus(ctx, app.ApplicationID, status, now); err != nil {
		return ApplicationItem{}, err
	}
	app.Status = status
	app.UpdatedAt = now

	s.audit(ctx, "application.status_changed", app.ApplicationID, map[string]any{"status": status})
	return toApplicationItem(app, false), nil
}

// RotateApplicationSecret replaces the runtime credential. Existing clients
// fail closed the moment the old secret stops matching.
func (s *Service) RotateApplicationSecret(ctx context.Context, ownerID, applicationID uuid.UUID) (ApplicationItem, error) {
	app, err := s.requireApplication(ctx, ownerID, applicationID)
	if err != nil {
		return ApplicationItem{}, err
	}

	now := s.nowFn()
	secret := randomHex(32)
	if err := s.apps.UpdateSecret(ctx, app.ApplicationID, secret, now); err != nil {
		return ApplicationItem{}, err
	}
	app.Secret = secret
	app.UpdatedAt = now

	s.audit(ctx, "application.secret_rotated", app.ApplicationID, nil)
	return toApplicationItem(app, true), nil
}

func (s *Service) DeleteApplication(ctx context.Context, ownerID, applicationID uuid.UUID) error {
	app, err := s.requireApplication(ctx, ownerID, applicationID)
	if err != nil {
		return err
	}
	if err := s.apps.Delete(ctx, app.ApplicationID); err != nil {
		return err
	}
	s.audit(ctx, "application.deleted", app.ApplicationID, map[string]any{"name": app.Name})
	return nil
}
