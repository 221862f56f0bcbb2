package bootstrap

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the resolved runtime configuration for the licensing service.
// It merges file defaults and environment overrides to support both local and deployed runs.
type Config struct {
	ServiceID string

	HTTPPort int
	GRPCPort int

	DatabaseURL string
	RedisURL    string

	// OwnerTokenPublicKeyPEM verifies dashboard session tokens minted by the
	// external identity service. No signing material is required here.
	OwnerTokenPublicKeyPEM string
	OwnerTokenKeyID        string
	AllowEphemeralJWT      bool

	BcryptCost int

	DefaultLicenseLevel int
	MaxBatchSize        int
	ListLimit           int
	IdempotencyTTL      time.Duration

	MaxDBConns         int32
	OutboxPollInterval time.Duration
	OutboxBatchSize    int
	OutboxClaimTTL     time.Duration
	OutboxMaxRetries   int
}

// configFile mirrors the YAML schema used by configs/default.yaml.
// It is intentionally separate from Config so runtime-only fields stay internal.
type configFile struct {
	Service struct {
		ID       string `yaml:"id"`
		HTTPPort int    `yaml:"http_port"`
		GRPCPort int    `yaml:"grpc_port"`
	} `yaml:"service"`
	Dependencies struct {
		PostgresURL string `yaml:"postgres_url"`
		RedisURL    string `yaml:"redis_url"`
	} `yaml:"dependencies"`
	Licensing struct {
		DefaultLevel        int `yaml:"default_level"`
		MaxBatchSize        int `yaml:"max_batch_size"`
		ListLimit           int `yaml:"list_limit"`
		IdempotencyTTLHours int `yaml:"idempotency_ttl_hours"`
	} `yaml:"licensing"`
}

// LoadConfig resolves configuration in priority order: defaults -> file -> env.
func LoadConfig(path string) (Config, error) {
	cfg := Config{
		ServiceID:           "VenomAuth-Licensing-Service",
		HTTPPort:            8080,
		GRPCPort:            9090,
		OwnerTokenKeyID:     "venomauth-owner-key-1",
		AllowEphemeralJWT:   true,
		BcryptCost:          12,
		DefaultLicenseLevel: 1,
		MaxBatchSize:        100,
		ListLimit:           50,
		IdempotencyTTL:      7 * 24 * time.Hour,
		MaxDBConns:          20,
		OutboxPollInterval:  2 * time.Second,
		OutboxBatchSize:     100,
		OutboxClaimTTL:      30 * time.Second,
		OutboxMaxRetries:    5,
	}

	raw, err := os.ReadFile(path)
	if err == nil {
		var f configFile
		if unmarshalErr := yaml.Unmarshal(raw, &f); unmarshalErr != nil {
			return Config{}, fmt.Errorf("parse config file: %w", unmarshalErr)
		}
		if f.Service.ID != "" {
			cfg.ServiceID = f.Service.ID
		}
		if f.Service.HTTPPort > 0 {
			cfg.HTTPPort = f.Service.HTTPPort
		}
		if f.Service.GRPCPort > 0 {
			cfg.GRPCPort = f.Service.GRPCPort
		}
		if f.Dependencies.PostgresURL != "" {
			cfg.DatabaseURL = f.Dependencies.PostgresURL
		}
		if f.Dependencies.RedisURL != "" {
			cfg.RedisURL = f.Dependencies.RedisURL
		}
		if f.Licensing.DefaultLevel > 0 {
			cfg.DefaultLicenseLevel = f.Licensing.DefaultLevel
		}
		if f.Licensing.MaxBatchSize > 0 {
			cfg.MaxBatchSize = f.Licensing.MaxBatchSize
		}
		if f.Licensing.ListLimit > 0 {
			cfg.ListLimit = f.Licensing.ListLimit
		}
		if f.Licensing.IdempotencyTTLHours > 0 {
			cfg.IdempotencyTTL = time.Duration(f.Licensing.IdempotencyTTLHours) * time.Hour
		}
	}

	cfg.DatabaseURL = envOrDefault("DB_URL", envOrDefault("POSTGRES_URL", cfg.DatabaseURL))
	cfg.RedisURL = envOrDefault("REDIS_URL", cfg.RedisURL)
	cfg.OwnerTokenPublicKeyPEM = envOrDefault("OWNER_TOKEN_PUBLIC_KEY_PEM", cfg.OwnerTokenPublicKeyPEM)
	cfg.OwnerTokenKeyID = envOrDefault("OWNER_TOKEN_KEY_ID", cfg.OwnerTokenKeyID)
	cfg.AllowEphemeralJWT = envBool("JWT_ALLOW_EPHEMERAL", cfg.AllowEphemeralJWT)

	cfg.HTTPPort = envInt("HTTP_PORT", cfg.HTTPPort)
	cfg.GRPCPort = envInt("GRPC_PORT", cfg.GRPCPort)
	cfg.BcryptCost = envInt("BCRYPT_ROUNDS", cfg.BcryptCost)
	cfg.MaxDBConns = int32(envInt("DB_MAX_CONNS", int(cfg.MaxDBConns)))

	cfg.DefaultLicenseLevel = envInt("LICENSE_DEFAULT_LEVEL", cfg.DefaultLicenseLevel)
	cfg.MaxBatchSize = envInt("LICENSE_MAX_BATCH_SIZE", cfg.MaxBatchSize)
	cfg.ListLimit = envInt("LIST_LIMIT", cfg.ListLimit)
	cfg.IdempotencyTTL = time.Duration(envInt("IDEMPOTENCY_TTL_HOURS", int(cfg.IdempotencyTTL.Hours()))) * time.Hour

	cfg.OutboxPollInterval = time.Duration(envInt("OUTBOX_POLL_SECONDS", int(cfg.OutboxPollInterval.Seconds()))) * time.Second
	cfg.OutboxBatchSize = envInt("OUTBOX_BATCH_SIZE", cfg.OutboxBatchSize)
	cfg.OutboxClaimTTL = time.Duration(envInt("OUTBOX_CLAIM_TTL_SECONDS", int(cfg.OutboxClaimTTL.Seconds()))) * time.Second
	cfg.OutboxMaxRetries = envInt("OUTBOX_MAX_RETRIES", cfg.OutboxMaxRetries)

	if cfg.DatabaseURL == "" {
		return Config{}, fmt.Errorf("missing DB_URL/POSTGRES_URL")
	}
	if cfg.RedisURL == "" {
		return Config{}, fmt.Errorf("missing REDIS_URL")
	}
	if cfg.OwnerTokenPublicKeyPEM == "" && !cfg.AllowEphemeralJWT {
		return Config{}, fmt.Errorf("missing OWNER_TOKEN_PUBLIC_KEY_PEM")
	}

	return cfg, nil
}

// envOrDefault returns an env var when present, otherwise the provided fallback.
func envOrDefault(name, fallback string) string {
	if value := os.Getenv(name); value != "" {
		return value
	}
	return fallback
}

// envInt parses integer env vars with safe fallback on empty/invalid values.
func envInt(name string, fallback int) int {
	raw := os.Getenv(name)
	if raw == "" {
		return fallback
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return fallback
	}
	return v
}

// envBool parses common boolean env forms while keeping a deterministic fallback.
func envBool(name string, fallback bool) bool {
	raw := strings.TrimSpace(os.Getenv(name))
	if raw == "" {
		return fallback
	}
	switch raw {
	case "1", "true", "TRUE", "yes", "YES":
		return true
	case "0", "false", "FALSE", "no", "NO":
		return false
	default:
		return fallback
	}
}
