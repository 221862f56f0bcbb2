package ports

import (
	"context"

	"github.com/google/uuid"
	"github.com/venomauth/licensing-service/internal/domain"
)

// AppSessionStore exposes the runtime API's live end-user sessions to the
// dashboard. Sessions are created by the client-facing service; this side
// only enumerates and revokes them.
type AppSessionStore interface {
	List(ctx context.Context, applicationID uuid.UUID) ([]domain.AppSession, error)
	Kill(ctx context.Context, applicationID uuid.UUID, sessionID string) error
	KillAll(ctx context.Context, applicationID uuid.UUID) (int64, error)
}
