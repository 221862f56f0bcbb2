package cache

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/venomauth/licensing-service/internal/domain"
)

// RedisAppSessionStore reads and revokes the runtime API's live end-user
// sessions. The client-facing service owns the write path; the layout is a
// per-application set of session ids with one JSON document per session.
type RedisAppSessionStore struct {
	client *redis.Client
}

// NewRedisAppSessionStore creates the app session cache adapter.
func NewRedisAppSessionStore(client *redis.Client) *RedisAppSessionStore {
	return &RedisAppSessionStore{client: client}
}

type sessionDoc struct {
	SessionID string    `json:"session_id"`
	Username  string    `json:"username"`
	IPAddress string    `json:"ip_address"`
	CreatedAt time.Time `json:"created_at"`
	ExpiresAt time.Time `json:"expires_at"`
}

func sessionIndexKey(applicationID uuid.UUID) string {
	return "licensing:sessions:" + applicationID.String()
}

func sessionKey(applicationID uuid.UUID, sessionID string) string {
	return "licensing:session:" + applicationID.String() + ":" + sessionID
}

func (s *RedisAppSessionStore) List(ctx context.Context, applicationID uuid.UUID) ([]domain.AppSession, error) {
	ids, err := s.client.SMembers(ctx, sessionIndexKey(applicationID)).Result()
	if err != nil {
		return nil, err
	}
	sessions := make([]domain.AppSession, 0, len(ids))
	for _, id := range ids {
		raw, getErr := s.client.Get(ctx, sessionKey(applicationID, id)).Result()
		if getErr == redis.Nil {
			// Session document expired; drop the dangling index member.
			_ = s.client.SRem(ctx, sessionIndexKey(applicationID), id).Err()
			continue
		}
		if getErr != nil {
			return nil, getErr
		}
		var doc sessionDoc
		if err := json.Unmarshal([]byte(raw), &doc); err != nil {
			continue
		}
		sessions = append(sessions, domain.AppSession{
			SessionID:     doc.SessionID,
			ApplicationID: applicationID,
			Username:      doc.Username,
			IPAddress:     doc.IPAddress,
			CreatedAt:     doc.CreatedAt,
			ExpiresAt:     doc.ExpiresAt,
		})
	}
	return sessions, nil
}

func (s *RedisAppSessionStore) Kill(ctx context.Context, applicationID uuid.UUID, sessionID string) error {
	n, err := s.client.Del(ctx, sessionKey(applicationID, sessionID)).Result()
	if err != nil {
		return err
	}
	if err := s.client.SRem(ctx, sessionIndexKey(applicationID), sessionID).Err(); err != nil {
		return err
	}
	if n == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (s *RedisAppSessionStore) KillAll(ctx context.Context, applicationID uuid.UUID) (int64, error) {
	ids, err := s.client.SMembers(ctx, sessionIndexKey(applicationID)).Result()
	if err != nil {
		return 0, err
	}
	if len(ids) == 0 {
		return 0, nil
	}
	keys := make([]string, 0, len(ids))
	for _, id := range ids {
		keys = append(keys, sessionKey(applicationID, id))
	}
	var killed int64
	_, err = s.client.TxPipelined(ctx, func(p redis.Pipeliner) error {
		for _, key := range keys {
			p.Del(ctx, key)
		}
		p.Del(ctx, sessionIndexKey(applicationID))
		return nil
	})
	if err != nil {
		return 0, err
	}
	killed = int64(len(ids))
	return killed, nil
}
