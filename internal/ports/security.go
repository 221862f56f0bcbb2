package ports

import (
	"time"

	"github.com/google/uuid"
)

type PasswordHasher interface {
	Hash(password string) (string, error)
	Compare(hash, password string) error
}

// OwnerClaims is the verified identity of a dashboard operator, as issued by
// the external session-token service. This service never mints these tokens.
type OwnerClaims struct {
	OwnerID   uuid.UUID `json:"owner_id"`
	Email     string    `json:"email"`
	IssuedAt  time.Time `json:"issued_at"`
	ExpiresAt time.Time `json:"expires_at"`
	KeyID     string    `json:"kid"`
}

// TokenVerifier validates owner session tokens against the identity
// provider's public key.
type TokenVerifier interface {
	ParseAndValidate(token string) (OwnerClaims, error)
}
