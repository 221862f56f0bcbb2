package application

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/venomauth/licensing-service/internal/domain"
)

// ListAppSessions enumerates the runtime sessions the client API currently
// holds for this application.
func (s *Service) ListAppSessions(ctx context.Context, ownerID, applicationID uuid.UUID) ([]AppSessionItem, error) {
	app, err := s.requireApplication(ctx, ownerID, applicationID)
	if err != nil {
		return nil, err
	}
	sessions, err := s.sessions.List(ctx, app.ApplicationID)
	if err != nil {
		return nil, err
	}
	items := make([]AppSessionItem, 0, len(sessions))
	for _, sess := range sessions {
		items = append(items, toAppSessionItem(sess))
	}
	return items, nil
}

func (s *Service) KillAppSession(ctx context.Context, ownerID, applicationID uuid.UUID, sessionID string) error {
	sessionID = strings.TrimSpace(sessionID)
	if sessionID == "" {
		return fmt.Errorf("%w: session id is required", domain.ErrInvalidInput)
	}
	app, err := s.requireApplication(ctx, ownerID, applicationID)
	if err != nil {
		return err
	}
	if err := s.sessions.Kill(ctx, app.ApplicationID, sessionID); err != nil {
		return err
	}
	s.audit(ctx, "session.killed", app.ApplicationID, map[string]any{"session_id": sessionID})
	return nil
}

func (s *Service) KillAllAppSessions(ctx context.Context, ownerID, applicationID uuid.UUID) (BulkCountResponse, error) {
	app, err := s.requireApplication(ctx, ownerID, applicationID)
	if err != nil {
		return BulkCountResponse{}, err
	}
	count, err := s.sessions.KillAll(ctx, app.ApplicationID)
	if err != nil {
		return BulkCountResponse{}, err
	}
	s.audit(ctx, "session.killed_all", app.ApplicationID, map[string]any{"count": count})
	return BulkCountResponse{Count: count}, nil
}
