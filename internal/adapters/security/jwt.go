package security

import (
	"crypto/rand"
	"crypto/rsa"
	"crypto/x509"
	"encoding/pem"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/venomauth/licensing-service/internal/ports"
)

// JWTVerifier validates RS256 owner session tokens minted by the external
// identity service. Only the public key is configured here; this service
// never signs owner tokens in production.
type JWTVerifier struct {
	publicKey *rsa.PublicKey

	// privateKey is populated only by the ephemeral constructor so local
	// runs and tests can mint tokens without a real identity service.
	privateKey *rsa.PrivateKey
	kid        string
}

// NewJWTVerifier builds a verifier from the identity service's public PEM key.
func NewJWTVerifier(publicKeyPEM string) (*JWTVerifier, error) {
	if publicKeyPEM == "" {
		return nil, errors.New("jwt public key is required")
	}
	pub, err := parseRSAPublic(publicKeyPEM)
	if err != nil {
		return nil, fmt.Errorf("parse public key: %w", err)
	}
	return &JWTVerifier{publicKey: pub}, nil
}

// NewEphemeralJWTVerifier creates an in-memory keypair for local/dev use.
// This exists to unblock runtime startup when no identity service is wired.
func NewEphemeralJWTVerifier(kid string) (*JWTVerifier, error) {
	if kid == "" {
		kid = "ephemeral-key-1"
	}
	privateKey, err := rsa.GenerateKey(rand.Reader, 2048)
	if err != nil {
		return nil, err
	}
	return &JWTVerifier{
		publicKey:  &privateKey.PublicKey,
		privateKey: privateKey,
		kid:        kid,
	}, nil
}

type ownerJWTClaims struct {
	OwnerID string `json:"owner_id"`
	Email   string `json:"email"`
	jwt.RegisteredClaims
}

func (v *JWTVerifier) ParseAndValidate(raw string) (ports.OwnerClaims, error) {
	parsed, err := jwt.ParseWithClaims(raw, &ownerJWTClaims{}, func(token *jwt.Token) (any, error) {
		if token.Method.Alg() != jwt.SigningMethodRS256.Alg() {
			return nil, fmt.Errorf("unexpected signing method: %s", token.Method.Alg())
		}
		return v.publicKey, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodRS256.Alg()}), jwt.WithLeeway(30*time.Second))
	if err != nil {
		return ports.OwnerClaims{}, err
	}
	claims, ok := parsed.Claims.(*ownerJWTClaims)
	if !ok || !parsed.Valid {
		return ports.OwnerClaims{}, errors.New("invalid token claims")
	}

	ownerID, err := uuid.Parse(claims.OwnerID)
	if err != nil {
		return ports.OwnerClaims{}, fmt.Errorf("parse owner_id: %w", err)
	}

	kid, _ := parsed.Header["kid"].(string)

	// iat/exp are optional registered claims; a signed token may omit them.
	var issuedAt, expiresAt time.Time
	if claims.IssuedAt != nil {
		issuedAt = claims.IssuedAt.Time.UTC()
	}
	if claims.ExpiresAt != nil {
		expiresAt = claims.ExpiresAt.Time.UTC()
	}

	return ports.OwnerClaims{
		OwnerID:   ownerID,
		Email:     claims.Email,
		IssuedAt:  issuedAt,
		ExpiresAt: expiresAt,
		KeyID:     kid,
	}, nil
}

// Sign mints an owner token with the ephemeral keypair. It fails on a
// verifier built from a public key alone.
func (v *JWTVerifier) Sign(claims ports.OwnerClaims) (string, error) {
	if v.privateKey == nil {
		return "", errors.New("verifier holds no private key")
	}
	token := jwt.NewWithClaims(jwt.SigningMethodRS256, ownerJWTClaims{
		OwnerID: claims.OwnerID.String(),
		Email:   claims.Email,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(claims.IssuedAt),
			ExpiresAt: jwt.NewNumericDate(claims.ExpiresAt),
		},
	})
	token.Header["kid"] = v.kid
	return token.SignedString(v.privateKey)
}

func parseRSAPublic(raw string) (*rsa.PublicKey, error) {
	block, _ := pem.Decode([]byte(raw))
	if block == nil {
		return nil, errors.New("invalid public PEM")
	}
	if key, err := x509.ParsePKCS1PublicKey(block.Bytes); err == nil {
		return key, nil
	}
	keyAny, err := x509.ParsePKIXPublicKey(block.Bytes)
	if err != nil {
		return nil, err
	}
	key, ok := keyAny.(*rsa.PublicKey)
	if !ok {
		return nil, errors.New("public key is not RSA")
	}
	return key, nil
}
