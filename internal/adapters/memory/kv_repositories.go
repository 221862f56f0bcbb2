package memory

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/venomauth/licensing-service/internal/domain"
	"github.com/venomauth/licensing-service/internal/ports"
)

type UserVarRepository struct {
	mu   sync.Mutex
	rows []domain.UserVar
}

func (r *UserVarRepository) Get(_ context.Context, userID uuid.UUID, name string) (domain.UserVar, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, row := range r.rows {
		if row.UserID == userID && row.Name == name {
			return row, nil
		}
	}
	return domain.UserVar{}, domain.ErrNotFound
}

func (r *UserVarRepository) Upsert(_ context.Context, v domain.UserVar) (domain.UserVar, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i, row := range r.rows {
		if row.UserID == v.UserID && row.Name == v.Name {
			r.rows[i].Value = v.Value
			r.rows[i].ReadOnly = v.ReadOnly
			r.rows[i].UpdatedAt = v.UpdatedAt
			return r.rows[i], nil
		}
	}
	if v.VarID == uuid.Nil {
		v.VarID = uuid.New()
	}
	v.CreatedAt = v.UpdatedAt
	r.rows = append(r.rows, v)
	return v, nil
}

func (r *UserVarRepository) Delete(_ context.Context, userID uuid.UUID, name string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i, row := range r.rows {
		if row.UserID == userID && row.Name == name {
			r.rows = append(r.rows[:i], r.rows[i+1:]...)
			return nil
		}
	}
	return domain.ErrNotFound
}

func (r *UserVarRepository) ListByUser(_ context.Context, userID uuid.UUID) ([]domain.UserVar, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]domain.UserVar, 0)
	for _, row := range r.rows {
		if row.UserID == userID {
			out = append(out, row)
		}
	}
	return out, nil
}

type BlacklistRepository struct {
	mu   sync.Mutex
	rows []domain.BlacklistEntry
}

func (r *BlacklistRepository) Add(_ context.Context, entry domain.BlacklistEntry) (domain.BlacklistEntry, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, row := range r.rows {
		if row.ApplicationID == entry.ApplicationID && row.Type == entry.Type && row.Value == entry.Value {
			return row, nil
		}
	}
	if entry.EntryID == uuid.Nil {
		entry.EntryID = uuid.New()
	}
	r.rows = append(r.rows, entry)
	return entry, nil
}

func (r *BlacklistRepository) Remove(_ context.Context, entryID, applicationID uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i, row := range r.rows {
		if row.EntryID == entryID && row.ApplicationID == applicationID {
			r.rows = append(r.rows[:i], r.rows[i+1:]...)
			return nil
		}
	}
	return domain.ErrNotFound
}

func (r *BlacklistRepository) ListByApp(_ context.Context, applicationID uuid.UUID) ([]domain.BlacklistEntry, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]domain.BlacklistEntry, 0)
	for _, row := range r.rows {
		if row.ApplicationID == applicationID {
			out = append(out, row)
		}
	}
	return out, nil
}

type OutboxRepository struct {
	mu   sync.Mutex
	rows []ports.OutboxRecord
}

func (r *OutboxRepository) Enqueue(_ context.Context, event ports.OutboxEvent) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.rows = append(r.rows, ports.OutboxRecord{
		OutboxID:     event.EventID,
		EventType:    event.EventType,
		PartitionKey: event.PartitionKey,
		Payload:      event.Payload,
		CreatedAt:    event.OccurredAt,
		FirstSeenAt:  event.OccurredAt,
	})
	return nil
}

func (r *OutboxRepository) ClaimUnpublished(_ context.Context, limit int, claimToken string, claimUntil time.Time) ([]ports.OutboxRecord, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	now := time.Now().UTC()
	out := make([]ports.OutboxRecord, 0, limit)
	for i, row := range r.rows {
		if len(out) >= limit {
			break
		}
		if row.PublishedAt != nil || row.DeadLetteredAt != nil {
			continue
		}
		if row.ClaimUntil != nil && row.ClaimUntil.After(now) {
			continue
		}
		token := claimToken
		until := claimUntil
		r.rows[i].ClaimToken = &token
		r.rows[i].ClaimUntil = &until
		out = append(out, r.rows[i])
	}
	return out, nil
}

func (r *OutboxRepository) MarkPublished(_ context.Context, outboxID uuid.UUID, claimToken string, at time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i, row := range r.rows {
		if row.OutboxID == outboxID && row.ClaimToken != nil && *row.ClaimToken == claimToken {
			r.rows[i].PublishedAt = &at
			r.rows[i].ClaimToken = nil
			r.rows[i].ClaimUntil = nil
		}
	}
	return nil
}

func (r *OutboxRepository) MarkFailed(_ context.Context, outboxID uuid.UUID, claimToken, errMsg string, at time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i, row := range r.rows {
		if row.OutboxID == outboxID && row.ClaimToken != nil && *row.ClaimToken == claimToken {
			r.rows[i].RetryCount++
			msg := errMsg
			r.rows[i].LastError = &msg
			r.rows[i].LastErrorAt = &at
			r.rows[i].ClaimToken = nil
			r.rows[i].ClaimUntil = nil
		}
	}
	return nil
}

func (r *OutboxRepository) MarkDeadLettered(_ context.Context, outboxID uuid.UUID, claimToken, errMsg string, at time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i, row := range r.rows {
		if row.OutboxID == outboxID && row.ClaimToken != nil && *row.ClaimToken == claimToken {
			r.rows[i].RetryCount++
			msg := errMsg
			r.rows[i].LastError = &msg
			r.rows[i].LastErrorAt = &at
			r.rows[i].DeadLetteredAt = &at
			r.rows[i].ClaimToken = nil
			r.rows[i].ClaimUntil = nil
		}
	}
	return nil
}

// Records returns a snapshot of everything enqueued; test helper.
func (r *OutboxRepository) Records() []ports.OutboxRecord {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]ports.OutboxRecord, len(r.rows))
	copy(out, r.rows)
	return out
}

type IdempotencyRepository struct {
	mu   sync.Mutex
	rows map[string]ports.IdempotencyRecord
}

func (r *IdempotencyRepository) Get(_ context.Context, key string) (*ports.IdempotencyRecord, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	rec, ok := r.rows[key]
	if !ok {
		return nil, nil
	}
	out := rec
	return &out, nil
}

func (r *IdempotencyRepository) Reserve(_ context.Context, key, requestHash string, expiresAt time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.rows == nil {
		r.rows = make(map[string]ports.IdempotencyRecord)
	}
	if _, ok := r.rows[key]; ok {
		return domain.ErrConflict
	}
	r.rows[key] = ports.IdempotencyRecord{
		Key:         key,
		RequestHash: requestHash,
		Status:      "PENDING",
		ExpiresAt:   expiresAt,
	}
	return nil
}

func (r *IdempotencyRepository) Complete(_ context.Context, key string, responseCode int, responseBody []byte, at time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	rec, ok := r.rows[key]
	if !ok {
		return domain.ErrNotFound
	}
	rec.Status = "COMPLETED"
	rec.ResponseCode = responseCode
	rec.ResponseBody = responseBody
	rec.UpdatedAt = at
	r.rows[key] = rec
	return nil
}
