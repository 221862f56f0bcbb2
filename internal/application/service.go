package application

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/venomauth/licensing-service/internal/domain"
	"github.com/venomauth/licensing-service/internal/ports"
)

type Service struct {
	cfg         Config
	apps        ports.ApplicationRepository
	licenses    ports.LicenseRepository
	users       ports.AppUserRepository
	vars        ports.UserVarRepository
	blacklist   ports.BlacklistRepository
	outbox      ports.OutboxRepository
	idempotency ports.IdempotencyRepository
	sessions    ports.AppSessionStore
	hasher      ports.PasswordHasher
	verifier    ports.TokenVerifier
	nowFn       func() time.Time
}

type Dependencies struct {
	Config      Config
	Apps        ports.ApplicationRepository
	Licenses    ports.LicenseRepository
	Users       ports.AppUserRepository
	Vars        ports.UserVarRepository
	Blacklist   ports.BlacklistRepository
	Outbox      ports.OutboxRepository
	Idempotency ports.IdempotencyRepository
	Sessions    ports.AppSessionStore
	Hasher      ports.PasswordHasher
	Verifier    ports.TokenVerifier
}

func NewService(deps Dependencies) *Service {
	s := &Service{
		cfg:         deps.Config,
		apps:        deps.Apps,
		licenses:    deps.Licenses,
		users:       deps.Users,
		vars:        deps.Vars,
		blacklist:   deps.Blacklist,
		outbox:      deps.Outbox,
		idempotency: deps.Idempotency,
		sessions:    deps.Sessions,
		hasher:      deps.Hasher,
		verifier:    deps.Verifier,
		nowFn:       func() time.Time { return time.Now().UTC() },
	}
	if s.cfg.DefaultLicenseLevel <= 0 {
		s.cfg.DefaultLicenseLevel = 1
	}
	if s.cfg.MaxBatchSize <= 0 {
		s.cfg.MaxBatchSize = 100
	}
	if s.cfg.ListLimit <= 0 {
		s.cfg.ListLimit = 50
	}
	if s.cfg.IdempotencyTTL == 0 {
		s.cfg.IdempotencyTTL = 7 * 24 * time.Hour
	}
	return s
}

// ValidateToken verifies an owner session token issued by the external
// identity service. It is the only authentication this service performs.
func (s *Service) ValidateToken(_ context.Context, raw string) (ports.OwnerClaims, error) {
	claims, err := s.verifier.ParseAndValidate(raw)
	if err != nil {
		return ports.OwnerClaims{}, fmt.Errorf("%w: %v", domain.ErrUnauthorized, err)
	}
	if claims.OwnerID == uuid.Nil {
		return ports.OwnerClaims{}, fmt.Errorf("%w: token carries no owner", domain.ErrUnauthorized)
	}
	return claims, nil
}

// requireApplication is the ownership guard run before every mutation: the
// application must exist AND belong to ownerID. A miss on either condition is
// reported as not-found so callers cannot probe for foreign application ids.
func (s *Service) requireApplication(ctx context.Context, ownerID, applicationID uuid.UUID) (domain.Application, error) {
	if ownerID == uuid.Nil {
		return domain.Application{}, domain.ErrUnauthorized
	}
	if applicationID == uuid.Nil {
		return domain.Application{}, fmt.Errorf("%w: application_id is required", domain.ErrInvalidInput)
	}
	return s.apps.GetByIDAndOwner(ctx, applicationID, ownerID)
}

// audit enqueues a dashboard audit event. Outbox failures never fail the
// operation that produced them; they are logged and retried by the worker only
// once stored.
func (s *Service) audit(ctx context.Context, eventType string, applicationID uuid.UUID, detail map[string]any) {
	if s.outbox == nil {
		return
	}
	body := map[string]any{"application_id": applicationID.String()}
	for k, v := range detail {
		body[k] = v
	}
	payload, _ := json.Marshal(body)
	err := s.outbox.Enqueue(ctx, ports.OutboxEvent{
		EventID:      uuid.New(),
		EventType:    eventType,
		PartitionKey: applicationID.String(),
		Payload:      payload,
		OccurredAt:   s.nowFn(),
	})
	if err != nil {
		slog.Default().WarnContext(ctx, "failed to enqueue audit event",
			"service", serviceName,
			"module", "application",
			"layer", "application",
			"operation", "audit_enqueue",
			"outcome", "failure",
			"event_type", eventType,
			"error", err,
		)
	}
}

// auditEvent builds the event for mutations that persist it transactionally
// with their target rows.
func (s *Service) auditEvent(eventType string, applicationID uuid.UUID, detail map[string]any) ports.OutboxEvent {
	body := map[string]any{"application_id": applicationID.String()}
	for k, v := range detail {
		body[k] = v
	}
	payload, _ := json.Marshal(body)
	return ports.OutboxEvent{
		EventID:      uuid.New(),
		EventType:    eventType,
		PartitionKey: applicationID.String(),
		Payload:      payload,
		OccurredAt:   s.nowFn(),
	}
}

// hashRequest computes a deterministic request fingerprint for idempotency
// conflict detection.
func hashRequest(req any) string {
	raw, _ := json.Marshal(req)
	sum := sha256.Sum256(raw)
	return hex.EncodeToString(sum[:])
}

// randomHex returns a cryptographically random hex token, used for
// application secrets.
func randomHex(bytesLen int) string {
	raw := make([]byte, bytesLen)
	_, _ = rand.Read(raw)
	return hex.EncodeToString(raw)
}

const serviceName = "VenomAuth-Licensing-Service"
