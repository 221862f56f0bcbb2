package application

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/venomauth/licensing-service/internal/domain"
)

// SetUserVar upserts a name/value pair on one app user. A var stored with
// read_only set rejects overwrite; delete-then-set is the owner's escape
// hatch.
func (s *Service) SetUserVar(ctx context.Context, ownerID, applicationID, userID uuid.UUID, req SetUserVarRequest) (UserVarItem, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return UserVarItem{}, fmt.Errorf("%w: var name is required", domain.ErrInvalidInput)
	}

	user, err := s.requireAppUser(ctx, ownerID, applicationID, userID)
	if err != nil {
		return UserVarItem{}, err
	}

	existing, err := s.vars.Get(ctx, user.UserID, name)
	switch {
	case err == nil:
		if existing.ReadOnly {
			return UserVarItem{}, fmt.Errorf("%w: %s", domain.ErrVarReadOnly, name)
		}
	case errors.Is(err, domain.ErrNotFound):
		// first write
	default:
		return UserVarItem{}, err
	}

	now := s.nowFn()
	stored, err := s.vars.Upsert(ctx, domain.UserVar{
		VarID:     uuid.New(),
		UserID:    user.UserID,
		Name:      name,
		Value:     req.Value,
		ReadOnly:  req.ReadOnly,
		CreatedAt: now,
		UpdatedAt: now,
	})
	if err != nil {
		return UserVarItem{}, err
	}

	s.audit(ctx, "uservar.set", applicationID, map[string]any{"user_id": user.UserID.String(), "name": name})
	return toUserVarItem(stored), nil
}

func (s *Service) DeleteUserVar(ctx context.Context, ownerID, applicationID, userID uuid.UUID, name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return fmt.Errorf("%w: var name is required", domain.ErrInvalidInput)
	}

	user, err := s.requireAppUser(ctx, ownerID, applicationID, userID)
	if err != nil {
		return err
	}
	if err := s.vars.Delete(ctx, user.UserID, name); err != nil {
		return err
	}
	s.audit(ctx, "uservar.deleted", applicationID, map[string]any{"user_id": user.UserID.String(), "name": name})
	return nil
}

func (s *Service) ListUserVars(ctx context.Context, ownerID, applicationID, userID uuid.UUID) ([]UserVarItem, error) {
	user, err := s.requireAppUser(ctx, ownerID, applicationID, userID)
	if err != nil {
		return nil, err
	}
	vars, err := s.vars.ListByUser(ctx, user.UserID)
	if err != nil {
		return nil, err
	}
	items := make([]UserVarItem, 0, len(vars))
	for _, v := range vars {
		items = append(items, toUserVarItem(v))
	}
	return items, nil
}

// requireAppUser layers the second ownership check: the user must belong to
// the guarded application, looked up scoped, never globally by id.
func (s *Service) requireAppUser(ctx context.Context, ownerID, applicationID, userID uuid.UUID) (domain.AppUser, error) {
	if userID == uuid.Nil {
		return domain.AppUser{}, fmt.Errorf("%w: user_id is required", domain.ErrInvalidInput)
	}
	app, err := s.requireApplication(ctx, ownerID, applicationID)
	if err != nil {
		return domain.AppUser{}, err
	}
	return s.users.GetByIDAndApp(ctx, userID, app.ApplicationID)
}
