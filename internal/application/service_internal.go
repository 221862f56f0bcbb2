package application

import (
	"context"

	"github.com/google/uuid"
	"github.com/venomauth/licensing-service/internal/domain"
)

// The Internal* methods back the service-to-service gRPC surface used by the
// runtime client API. They are not owner-scoped: callers inside the mesh are
// trusted and only hold application ids, never owner identities.

// InternalGetApplication returns the application's lifecycle state for
// runtime gating (a paused application rejects all client traffic).
func (s *Service) InternalGetApplication(ctx context.Context, applicationID uuid.UUID) (domain.Application, error) {
	return s.apps.GetByID(ctx, applicationID)
}

// InternalCheckBlacklist reports whether the given hardware id or IP is
// blocked for the application. Empty values are skipped, not matched.
func (s *Service) InternalCheckBlacklist(ctx context.Context, applicationID uuid.UUID, hwid, ip string) (bool, error) {
	entries, err := s.blacklist.ListByApp(ctx, applicationID)
	if err != nil {
		return false, err
	}
	for _, entry := range entries {
		if entry.Type == domain.BlacklistHWID && hwid != "" && entry.Value == hwid {
			return true, nil
		}
		if entry.Type == domain.BlacklistIP && ip != "" && entry.Value == ip {
			return true, nil
		}
	}
	return false, nil
}
