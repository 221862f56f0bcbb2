package application

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/google/uuid"
	"github.com/venomauth/licensing-service/internal/domain"
	"github.com/venomauth/licensing-service/internal/ports"
)

// CreateLicenseBatch issues a batch of fresh keys. Every license in the batch
// shares one computed (expiry, duration) pair and differs only in key string.
// The whole batch persists in a single transaction together with its audit
// event, so a mid-batch failure leaves nothing behind.
func (s *Service) CreateLicenseBatch(ctx context.Context, ownerID, applicationID uuid.UUID, req CreateLicenseBatchRequest, idempotencyKey string) (CreateLicenseBatchResponse, error) {
	if req.Amount <= 0 {
		return CreateLicenseBatchResponse{}, fmt.Errorf("%w: amount must be positive", domain.ErrInvalidInput)
	}
	if req.Amount > s.cfg.MaxBatchSize {
		return CreateLicenseBatchResponse{}, fmt.Errorf("%w: amount exceeds batch limit of %d", domain.ErrInvalidInput, s.cfg.MaxBatchSize)
	}
	mask := strings.TrimSpace(req.Mask)
	if mask == "" {
		return CreateLicenseBatchResponse{}, fmt.Errorf("%w: mask is required", domain.ErrInvalidInput)
	}
	if err := domain.ValidateAmountUnit(req.Duration, req.ExpiryUnit); err != nil {
		return CreateLicenseBatchResponse{}, err
	}

	app, err := s.requireApplication(ctx, ownerID, applicationID)
	if err != nil {
		return CreateLicenseBatchResponse{}, err
	}

	if idempotencyKey != "" {
		requestHash := hashRequest(req)
		if rec, err := s.idempotency.Get(ctx, idempotencyKey); err == nil && rec != nil && rec.Status == "COMPLETED" {
			if rec.RequestHash != requestHash {
				return CreateLicenseBatchResponse{}, fmt.Errorf("%w: key reused with different payload", domain.ErrIdempotencyConflict)
			}
			var replay CreateLicenseBatchResponse
			if err := json.Unmarshal(rec.ResponseBody, &replay); err == nil {
				return replay, nil
			}
		}
		if err := s.idempotency.Reserve(ctx, idempotencyKey, requestHash, s.nowFn().Add(s.cfg.IdempotencyTTL)); err != nil {
			return CreateLicenseBatchResponse{}, fmt.Errorf("%w: %v", domain.ErrIdempotencyConflict, err)
		}
	}

	now := s.nowFn()
	expiry, durationSeconds := domain.InitialExpiry(now, req.Duration, req.ExpiryUnit)
	level := req.Level
	if level <= 0 {
		level = s.cfg.DefaultLicenseLevel
	}
	policy := domain.KeyPolicy{Lowercase: req.Lowercase, Uppercase: req.Uppercase}

	batch := make([]domain.License, 0, req.Amount)
	for i := 0; i < req.Amount; i++ {
		key, err := domain.GenerateKey(mask, policy)
		if err != nil {
			return CreateLicenseBatchResponse{}, err
		}
		batch = append(batch, domain.License{
			LicenseID:       uuid.New(),
			ApplicationID:   app.ApplicationID,
			Key:             key,
			Level:           level,
			DurationSeconds: durationSeconds,
			ExpiresAt:       expiry,
			Note:            strings.TrimSpace(req.Note),
			CreatedAt:       now,
		})
	}

	event := s.auditEvent("license.batch_created", app.ApplicationID, map[string]any{
		"count":    req.Amount,
		"level":    level,
		"lifetime": domain.IsLifetimeUnit(req.ExpiryUnit),
	})
	if err := s.licenses.CreateBatchTx(ctx, batch, event); err != nil {
		return CreateLicenseBatchResponse{}, err
	}

	items := make([]LicenseItem, 0, len(batch))
	for _, l := range batch {
		items = append(items, toLicenseItem(l))
	}
	res := CreateLicenseBatchResponse{Licenses: items, Count: len(items)}

	if idempotencyKey != "" {
		body, _ := json.Marshal(res)
		_ = s.idempotency.Complete(ctx, idempotencyKey, http.StatusCreated, body, s.nowFn())
	}
	return res, nil
}

// AddLicenseTime extends every unused license in the application. Used keys
// are historical records of a consumed entitlement and are never touched. The
// lifetime sentinel is resolved before any multiplication: it converts
// every unused key to non-expiring instead of producing a sentinel-sized
// delta.
func (s *Service) AddLicenseTime(ctx context.Context, ownerID, applicationID uuid.UUID, req AddLicenseTimeRequest) (BulkCountResponse, error) {
	if err := domain.ValidateAmountUnit(req.Time, req.ExpiryUnit); err != nil {
		return BulkCountResponse{}, err
	}
	app, err := s.requireApplication(ctx, ownerID, applicationID)
	if err != nil {
		return BulkCountResponse{}, err
	}

	var count int64
	if domain.IsLifetimeUnit(req.ExpiryUnit) {
		count, err = s.licenses.SetLifetimeUnused(ctx, app.ApplicationID)
	} else {
		count, err = s.licenses.AddTimeUnused(ctx, app.ApplicationID, domain.DeltaSeconds(req.Time, req.ExpiryUnit), s.nowFn())
	}
	if err != nil {
		return BulkCountResponse{}, err
	}

	s.audit(ctx, "license.time_added", app.ApplicationID, map[string]any{
		"seconds":  domain.DeltaSeconds(req.Time, req.ExpiryUnit),
		"lifetime": domain.IsLifetimeUnit(req.ExpiryUnit),
		"count":    count,
	})
	return BulkCountResponse{Count: count}, nil
}

func (s *Service) BanLicense(ctx context.Context, ownerID, applicationID, licenseID uuid.UUID, reason string) (LicenseItem, error) {
	return s.setLicenseBan(ctx, ownerID, applicationID, licenseID, true, strings.TrimSpace(reason))
}

func (s *Service) UnbanLicense(ctx context.Context, ownerID, applicationID, licenseID uuid.UUID) (LicenseItem, error) {
	return s.setLicenseBan(ctx, ownerID, applicationID, licenseID, false, "")
}

func (s *Service) setLicenseBan(ctx context.Context, ownerID, applicationID, licenseID uuid.UUID, banned bool, reason string) (LicenseItem, error) {
	if licenseID == uuid.Nil {
		return LicenseItem{}, fmt.Errorf("%w: license_id is required", domain.ErrInvalidInput)
	}
	app, err := s.requireApplication(ctx, ownerID, applicationID)
	if err != nil {
		return LicenseItem{}, err
	}

	license, err := s.licenses.SetBanned(ctx, licenseID, app.ApplicationID, banned, reason)
	if err != nil {
		return LicenseItem{}, err
	}
	eventType := "license.banned"
	if !banned {
		eventType = "license.unbanned"
	}
	s.audit(ctx, eventType, app.ApplicationID, map[string]any{"license_id": licenseID.String()})
	return toLicenseItem(license), nil
}

func (s *Service) DeleteLicenses(ctx context.Context, ownerID, applicationID uuid.UUID, req DeleteLicensesRequest) (BulkCountResponse, error) {
	app, err := s.requireApplication(ctx, ownerID, applicationID)
	if err != nil {
		return BulkCountResponse{}, err
	}

	var mode ports.LicenseDeleteMode
	switch strings.ToLower(strings.TrimSpace(req.Mode)) {
	case "used":
		mode = ports.DeleteLicensesUsed
	case "unused":
		mode = ports.DeleteLicensesUnused
	case "", "ids":
		if len(req.IDs) == 0 {
			return BulkCountResponse{}, fmt.Errorf("%w: mode or id list is required", domain.ErrInvalidInput)
		}
		mode = ports.DeleteLicensesByID
	default:
		return BulkCountResponse{}, fmt.Errorf("%w: unknown delete mode %q", domain.ErrInvalidInput, req.Mode)
	}

	count, err := s.licenses.DeleteByMode(ctx, app.ApplicationID, mode, req.IDs)
	if err != nil {
		return BulkCountResponse{}, err
	}
	s.audit(ctx, "license.deleted", app.ApplicationID, map[string]any{"mode": string(mode), "count": count})
	return BulkCountResponse{Count: count}, nil
}

func (s *Service) ListLicenses(ctx context.Context, ownerID, applicationID uuid.UUID, page int) ([]LicenseItem, error) {
	app, err := s.requireApplication(ctx, ownerID, applicationID)
	if err != nil {
		return nil, err
	}
	if page < 1 {
		page = 1
	}
	licenses, err := s.licenses.ListByApp(ctx, app.ApplicationID, s.cfg.ListLimit, (page-1)*s.cfg.ListLimit)
	if err != nil {
		return nil, err
	}
	items := make([]LicenseItem, 0, len(licenses))
	for _, l := range licenses {
		items = append(items, toLicenseItem(l))
	}
	return items, nil
}
