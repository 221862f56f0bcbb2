package http

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/venomauth/licensing-service/internal/adapters/memory"
	"github.com/venomauth/licensing-service/internal/adapters/security"
	"github.com/venomauth/licensing-service/internal/application"
	"github.com/venomauth/licensing-service/internal/domain"
	"github.com/venomauth/licensing-service/internal/ports"
)

type routerFixture struct {
	router   http.Handler
	repos    *memory.Repositories
	sessions *memory.AppSessionStore
	verifier *security.JWTVerifier
	owner    uuid.UUID
	token    string
}

func newRouterFixture(t *testing.T) *routerFixture {
	t.Helper()

	repos := memory.NewRepositories()
	sessions := &memory.AppSessionStore{}
	verifier, err := security.NewEphemeralJWTVerifier("test-key")
	if err != nil {
		t.Fatalf("ephemeral verifier: %v", err)
	}

	svc := application.NewService(application.Dependencies{
		Config:      application.Config{DefaultLicenseLevel: 1, MaxBatchSize: 100, ListLimit: 50},
		Apps:        repos.Applications,
		Licenses:    repos.Licenses,
		Users:       repos.AppUsers,
		Vars:        repos.UserVars,
		Blacklist:   repos.Blacklist,
		Outbox:      repos.Outbox,
		Idempotency: repos.Idempotency,
		Sessions:    sessions,
		Hasher:      security.NewBcryptHasher(4),
		Verifier:    verifier,
	})

	owner := uuid.New()
	now := time.Now().UTC()
	token, err := verifier.Sign(ports.OwnerClaims{
		OwnerID:   owner,
		Email:     "owner@example.com",
		IssuedAt:  now,
		ExpiresAt: now.Add(time.Hour),
	})
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}

	return &routerFixture{
		router:   NewRouter(NewHandler(svc)),
		repos:    repos,
		sessions: sessions,
		verifier: verifier,
		owner:    owner,
		token:    token,
	}
}

func (f *routerFixture) do(t *testing.T, method, path string, body any, authorized bool) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode body: %v", err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	if authorized {
		req.Header.Set("Authorization", "Bearer "+f.token)
	}
	rec := httptest.NewRecorder()
	f.router.ServeHTTP(rec, req)
	return rec
}

func decodeEnvelope(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var envelope map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &envelope); err != nil {
		t.Fatalf("decode envelope: %v (%s)", err, rec.Body.String())
	}
	return envelope
}

func TestHealthEndpointsAreOpen(t *testing.T) {
	t.Parallel()

	f := newRouterFixture(t)
	for _, path := range []string{"/healthz", "/readyz"} {
		rec := f.do(t, http.MethodGet, path, nil, false)
		if rec.Code != http.StatusOK {
			t.Fatalf("%s returned %d", path, rec.Code)
		}
	}
}

func TestAdminRoutesRequireBearerToken(t *testing.T) {
	t.Parallel()

	f := newRouterFixture(t)

	rec := f.do(t, http.MethodGet, "/admin/v1/applications", nil, false)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 without token, got %d", rec.Code)
	}
	envelope := decodeEnvelope(t, rec)
	if envelope["status"] != "error" || envelope["code"] != "UNAUTHORIZED" {
		t.Fatalf("unexpected error envelope: %v", envelope)
	}

	req := httptest.NewRequest(http.MethodGet, "/admin/v1/applications", nil)
	req.Header.Set("Authorization", "Bearer not-a-jwt")
	rec = httptest.NewRecorder()
	f.router.ServeHTTP(rec, req)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 for garbage token, got %d", rec.Code)
	}
}

func TestApplicationLifecycleOverHTTP(t *testing.T) {
	t.Parallel()

	f := newRouterFixture(t)

	rec := f.do(t, http.MethodPost, "/admin/v1/applications", map[string]any{"name": "Loader"}, true)
	if rec.Code != http.StatusCreated {
		t.Fatalf("create returned %d: %s", rec.Code, rec.Body.String())
	}
	envelope := decodeEnvelope(t, rec)
	data, _ := envelope["data"].(map[string]any)
	appID, _ := data["application_id"].(string)
	if appID == "" {
		t.Fatalf("expected application_id in response, got %v", envelope)
	}
	if secret, _ := data["secret"].(string); secret == "" {
		t.Fatalf("expected secret surfaced on creation")
	}

	rec = f.do(t, http.MethodGet, "/admin/v1/applications", nil, true)
	if rec.Code != http.StatusOK {
		t.Fatalf("list returned %d", rec.Code)
	}

	rec = f.do(t, http.MethodPatch, "/admin/v1/applications/"+appID+"/status", map[string]any{"status": "paused"}, true)
	if rec.Code != http.StatusOK {
		t.Fatalf("pause returned %d: %s", rec.Code, rec.Body.String())
	}

	rec = f.do(t, http.MethodPatch, "/admin/v1/applications/"+appID+"/status", map[string]any{"status": "retired"}, true)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for bad status, got %d", rec.Code)
	}
	envelope = decodeEnvelope(t, rec)
	if envelope["code"] != "VALIDATION_ERROR" {
		t.Fatalf("expected VALIDATION_ERROR, got %v", envelope)
	}

	rec = f.do(t, http.MethodDelete, "/admin/v1/applications/"+appID, nil, true)
	if rec.Code != http.StatusOK {
		t.Fatalf("delete returned %d: %s", rec.Code, rec.Body.String())
	}
	rec = f.do(t, http.MethodGet, "/admin/v1/applications/"+appID+"/licenses", nil, true)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404 after delete, got %d", rec.Code)
	}
}

func TestLicenseBatchOverHTTP(t *testing.T) {
	t.Parallel()

	f := newRouterFixture(t)
	appID := f.createApp(t, "licenses")

	body := map[string]any{
		"amount":      3,
		"mask":        "KEY-****",
		"duration":    7,
		"expiry_unit": domain.UnitDay,
	}
	req := httptest.NewRequest(http.MethodPost, "/admin/v1/applications/"+appID+"/licenses", encodeJSON(t, body))
	req.Header.Set("Authorization", "Bearer "+f.token)
	req.Header.Set("Idempotency-Key", "http-batch-1")
	rec := httptest.NewRecorder()
	f.router.ServeHTTP(rec, req)
	if rec.Code != http.StatusCreated {
		t.Fatalf("batch create returned %d: %s", rec.Code, rec.Body.String())
	}
	envelope := decodeEnvelope(t, rec)
	data, _ := envelope["data"].(map[string]any)
	if count, _ := data["count"].(float64); count != 3 {
		t.Fatalf("expected count 3, got %v", data["count"])
	}

	// Unknown fields are rejected, not silently dropped.
	rec = f.do(t, http.MethodPost, "/admin/v1/applications/"+appID+"/licenses", map[string]any{"amount": 1, "mask": "**", "duration": 1, "expiry_unit": 1, "bogus": true}, true)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for unknown field, got %d", rec.Code)
	}

	// Conflicting replay of the same idempotency key.
	body["amount"] = 9
	req = httptest.NewRequest(http.MethodPost, "/admin/v1/applications/"+appID+"/licenses", encodeJSON(t, body))
	req.Header.Set("Authorization", "Bearer "+f.token)
	req.Header.Set("Idempotency-Key", "http-batch-1")
	rec = httptest.NewRecorder()
	f.router.ServeHTTP(rec, req)
	if rec.Code != http.StatusConflict {
		t.Fatalf("expected 409 for idempotency conflict, got %d: %s", rec.Code, rec.Body.String())
	}
	envelope = decodeEnvelope(t, rec)
	if envelope["code"] != "IDEMPOTENCY_CONFLICT" {
		t.Fatalf("expected IDEMPOTENCY_CONFLICT, got %v", envelope)
	}
}

func TestUserVarReadOnlyConflictOverHTTP(t *testing.T) {
	t.Parallel()

	f := newRouterFixture(t)
	appID := f.createApp(t, "vars")

	parsedApp, err := uuid.Parse(appID)
	if err != nil {
		t.Fatalf("parse app id: %v", err)
	}
	userID := uuid.New()
	f.repos.AppUsers.Seed(domain.AppUser{UserID: userID, ApplicationID: parsedApp, Username: "alice", Subscription: domain.DefaultSubscription})

	varsPath := fmt.Sprintf("/admin/v1/applications/%s/users/%s/vars", appID, userID)
	rec := f.do(t, http.MethodPut, varsPath, map[string]any{"name": "tier", "value": "gold", "read_only": true}, true)
	if rec.Code != http.StatusOK {
		t.Fatalf("set var returned %d: %s", rec.Code, rec.Body.String())
	}

	rec = f.do(t, http.MethodPut, varsPath, map[string]any{"name": "tier", "value": "silver"}, true)
	if rec.Code != http.StatusConflict {
		t.Fatalf("expected 409 for read-only var, got %d", rec.Code)
	}
	envelope := decodeEnvelope(t, rec)
	if envelope["code"] != "VAR_READ_ONLY" {
		t.Fatalf("expected VAR_READ_ONLY, got %v", envelope)
	}

	rec = f.do(t, http.MethodDelete, varsPath+"/tier", nil, true)
	if rec.Code != http.StatusOK {
		t.Fatalf("delete var returned %d: %s", rec.Code, rec.Body.String())
	}
}

func (f *routerFixture) createApp(t *testing.T, name string) string {
	t.Helper()
	rec := f.do(t, http.MethodPost, "/admin/v1/applications", map[string]any{"name": name}, true)
	if rec.Code != http.StatusCreated {
		t.Fatalf("create app returned %d: %s", rec.Code, rec.Body.String())
	}
	envelope := decodeEnvelope(t, rec)
	data, _ := envelope["data"].(map[string]any)
	appID, _ := data["application_id"].(string)
	if appID == "" {
		t.Fatalf("missing application_id in %v", envelope)
	}
	return appID
}

func encodeJSON(t *testing.T, body any) *bytes.Buffer {
	t.Helper()
	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(body); err != nil {
		t.Fatalf("encode body: %v", err)
	}
	return &buf
}
