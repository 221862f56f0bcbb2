package application

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/venomauth/licensing-service/internal/adapters/memory"
	"github.com/venomauth/licensing-service/internal/domain"
	"github.com/venomauth/licensing-service/internal/ports"
)

func TestCreateApplicationAndList(t *testing.T) {
	t.Parallel()

	f := newFixture()
	ctx := context.Background()

	created, err := f.service.CreateApplication(ctx, f.owner, CreateApplicationRequest{Name: "Sentinel Loader"})
	if err != nil {
		t.Fatalf("create application failed: %v", err)
	}
	if created.ApplicationID == uuid.Nil {
		t.Fatalf("expected generated application id")
	}
	if created.Secret == "" {
		t.Fatalf("expected secret surfaced on creation")
	}
	if created.Status != domain.AppStatusActive {
		t.Fatalf("expected active status, got %q", created.Status)
	}

	if _, err := f.service.CreateApplication(ctx, f.owner, CreateApplicationRequest{Name: "Sentinel Loader"}); !errors.Is(err, domain.ErrConflict) {
		t.Fatalf("expected conflict on duplicate name, got %v", err)
	}

	listed, err := f.service.ListApplications(ctx, f.owner)
	if err != nil {
		t.Fatalf("list applications failed: %v", err)
	}
	if len(listed) != 1 {
		t.Fatalf("expected 1 application, got %d", len(listed))
	}
	if listed[0].Secret != "" {
		t.Fatalf("list must not expose the secret")
	}
}

func TestOwnershipGuardHidesForeignApplications(t *testing.T) {
	t.Parallel()

	f := newFixture()
	ctx := context.Background()
	appID := f.mustCreateApp(t, "guarded")
	stranger := uuid.New()

	if _, err := f.service.SetApplicationStatus(ctx, stranger, appID, domain.AppStatusPaused); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected not-found for foreign owner, got %v", err)
	}
	if _, err := f.service.AddLicenseTime(ctx, stranger, appID, AddLicenseTimeRequest{Time: 1, ExpiryUnit: domain.UnitDay}); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected not-found for foreign owner, got %v", err)
	}
	if err := f.service.DeleteApplication(ctx, stranger, appID); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected not-found for foreign owner, got %v", err)
	}

	// The guard must reject before any mutation: the owner still sees the
	// application untouched.
	apps, err := f.service.ListApplications(ctx, f.owner)
	if err != nil || len(apps) != 1 {
		t.Fatalf("expected application to survive, got %v (%d apps)", err, len(apps))
	}
	if apps[0].Status != domain.AppStatusActive {
		t.Fatalf("foreign status change must not apply")
	}
}

func TestCreateLicenseBatchKeysFollowMask(t *testing.T) {
	t.Parallel()

	f := newFixture()
	ctx := context.Background()
	appID := f.mustCreateApp(t, "keys")

	res, err := f.service.CreateLicenseBatch(ctx, f.owner, appID, CreateLicenseBatchRequest{
		Amount:     25,
		Mask:       "VENOM-****-****",
		Duration:   30,
		ExpiryUnit: domain.UnitDay,
		Uppercase:  true,
	}, "")
	if err != nil {
		t.Fatalf("create batch failed: %v", err)
	}
	if res.Count != 25 || len(res.Licenses) != 25 {
		t.Fatalf("expected 25 licenses, got %d", res.Count)
	}

	alphabet := domain.KeyPolicy{Uppercase: true}.Alphabet()
	seen := make(map[string]bool, len(res.Licenses))
	wantExpiry := f.now.Add(30 * 24 * time.Hour)
	for _, lic := range res.Licenses {
		if seen[lic.Key] {
			t.Fatalf("duplicate key in batch: %s", lic.Key)
		}
		seen[lic.Key] = true
		if len(lic.Key) != len("VENOM-****-****") {
			t.Fatalf("key length must equal mask length, got %q", lic.Key)
		}
		if !strings.HasPrefix(lic.Key, "VENOM-") || lic.Key[10] != '-' {
			t.Fatalf("mask literals must pass through, got %q", lic.Key)
		}
		for _, c := range lic.Key[6:10] + lic.Key[11:] {
			if !strings.ContainsRune(alphabet, c) {
				t.Fatalf("character %q outside policy alphabet in %q", c, lic.Key)
			}
		}
		if lic.Level != 1 {
			t.Fatalf("expected default level 1, got %d", lic.Level)
		}
		if lic.ExpiresAt == nil || !lic.ExpiresAt.Equal(wantExpiry) {
			t.Fatalf("expected expiry %v, got %v", wantExpiry, lic.ExpiresAt)
		}
		if lic.DurationSeconds != 30*domain.UnitDay {
			t.Fatalf("expected duration %d, got %d", 30*domain.UnitDay, lic.DurationSeconds)
		}
	}

	if !f.hasAuditEvent("license.batch_created") {
		t.Fatalf("expected audit event alongside the batch")
	}
}

func TestCreateLicenseBatchLifetime(t *testing.T) {
	t.Parallel()

	f := newFixture()
	ctx := context.Background()
	appID := f.mustCreateApp(t, "lifetime")

	res, err := f.service.CreateLicenseBatch(ctx, f.owner, appID, CreateLicenseBatchRequest{
		Amount:     3,
		Mask:       "***-***",
		Duration:   1,
		ExpiryUnit: domain.UnitLifetime,
	}, "")
	if err != nil {
		t.Fatalf("create lifetime batch failed: %v", err)
	}
	for _, lic := range res.Licenses {
		if lic.ExpiresAt != nil {
			t.Fatalf("lifetime license must carry nil expiry, got %v", lic.ExpiresAt)
		}
		if lic.DurationSeconds != 0 {
			t.Fatalf("lifetime license must carry zero duration, got %d", lic.DurationSeconds)
		}
	}
}

func TestCreateLicenseBatchReturnsStoredIDs(t *testing.T) {
	t.Parallel()

	f := newFixture()
	ctx := context.Background()
	appID := f.mustCreateApp(t, "stored-ids")

	res, err := f.service.CreateLicenseBatch(ctx, f.owner, appID, CreateLicenseBatchRequest{
		Amount:     5,
		Mask:       "****-****",
		Duration:   1,
		ExpiryUnit: domain.UnitDay,
	}, "")
	if err != nil {
		t.Fatalf("create batch failed: %v", err)
	}

	stored, err := f.service.ListLicenses(ctx, f.owner, appID, 1)
	if err != nil {
		t.Fatalf("list licenses failed: %v", err)
	}
	storedIDs := make(map[uuid.UUID]bool, len(stored))
	for _, lic := range stored {
		storedIDs[lic.LicenseID] = true
	}
	for _, lic := range res.Licenses {
		if !storedIDs[lic.LicenseID] {
			t.Fatalf("response id %s names no stored row", lic.LicenseID)
		}
	}

	// A returned id must resolve through follow-up mutations.
	banned, err := f.service.BanLicense(ctx, f.owner, appID, res.Licenses[0].LicenseID, "abuse")
	if err != nil {
		t.Fatalf("ban by returned id failed: %v", err)
	}
	if !banned.Banned {
		t.Fatal("license banned via returned id must report banned")
	}
}

func TestCreateLicenseBatchIdempotency(t *testing.T) {
	t.Parallel()

	f := newFixture()
	ctx := context.Background()
	appID := f.mustCreateApp(t, "idem")

	req := CreateLicenseBatchRequest{Amount: 4, Mask: "****", Duration: 1, ExpiryUnit: domain.UnitDay}
	first, err := f.service.CreateLicenseBatch(ctx, f.owner, appID, req, "batch-key-1")
	if err != nil {
		t.Fatalf("first batch failed: %v", err)
	}

	replay, err := f.service.CreateLicenseBatch(ctx, f.owner, appID, req, "batch-key-1")
	if err != nil {
		t.Fatalf("replay failed: %v", err)
	}
	if replay.Count != first.Count || replay.Licenses[0].Key != first.Licenses[0].Key {
		t.Fatalf("replay must return the original response, not a fresh batch")
	}
	stored, err := f.service.ListLicenses(ctx, f.owner, appID, 1)
	if err != nil {
		t.Fatalf("list licenses failed: %v", err)
	}
	if len(stored) != 4 {
		t.Fatalf("replay must not create more rows, have %d", len(stored))
	}

	req.Amount = 9
	if _, err := f.service.CreateLicenseBatch(ctx, f.owner, appID, req, "batch-key-1"); !errors.Is(err, domain.ErrIdempotencyConflict) {
		t.Fatalf("expected idempotency conflict on payload change, got %v", err)
	}
}

func TestCreateLicenseBatchValidation(t *testing.T) {
	t.Parallel()

	f := newFixture()
	ctx := context.Background()
	appID := f.mustCreateApp(t, "validation")

	cases := []CreateLicenseBatchRequest{
		{Amount: 0, Mask: "****", Duration: 1, ExpiryUnit: domain.UnitDay},
		{Amount: 101, Mask: "****", Duration: 1, ExpiryUnit: domain.UnitDay},
		{Amount: 1, Mask: "   ", Duration: 1, ExpiryUnit: domain.UnitDay},
		{Amount: 1, Mask: "****", Duration: 0, ExpiryUnit: domain.UnitDay},
		{Amount: 1, Mask: "****", Duration: 1, ExpiryUnit: 0},
	}
	for i, req := range cases {
		if _, err := f.service.CreateLicenseBatch(ctx, f.owner, appID, req, ""); !errors.Is(err, domain.ErrInvalidInput) {
			t.Fatalf("case %d: expected invalid input, got %v", i, err)
		}
	}
}

func TestAddLicenseTimeSkipsUsedAndRebasesLifetime(t *testing.T) {
	t.Parallel()

	f := newFixture()
	ctx := context.Background()
	appID := f.mustCreateApp(t, "addtime")

	expiring := f.now.Add(24 * time.Hour)
	unused := domain.License{LicenseID: uuid.New(), ApplicationID: appID, Key: "K-UNUSED", ExpiresAt: &expiring, DurationSeconds: domain.UnitDay}
	lifetime := domain.License{LicenseID: uuid.New(), ApplicationID: appID, Key: "K-LIFE"}
	used := domain.License{LicenseID: uuid.New(), ApplicationID: appID, Key: "K-USED", ExpiresAt: &expiring, Used: true}
	f.repos.Licenses.Seed(unused, lifetime, used)

	res, err := f.service.AddLicenseTime(ctx, f.owner, appID, AddLicenseTimeRequest{Time: 2, ExpiryUnit: domain.UnitDay})
	if err != nil {
		t.Fatalf("add time failed: %v", err)
	}
	if res.Count != 2 {
		t.Fatalf("expected 2 unused licenses touched, got %d", res.Count)
	}

	rows, _ := f.service.ListLicenses(ctx, f.owner, appID, 1)
	byKey := make(map[string]LicenseItem, len(rows))
	for _, row := range rows {
		byKey[row.Key] = row
	}
	if got := byKey["K-UNUSED"].ExpiresAt; got == nil || !got.Equal(expiring.Add(48*time.Hour)) {
		t.Fatalf("unused expiry must shift by 2 days, got %v", got)
	}
	if got := byKey["K-LIFE"].ExpiresAt; got == nil || !got.Equal(f.now.Add(48*time.Hour)) {
		t.Fatalf("nil expiry must rebase from now, got %v", got)
	}
	if got := byKey["K-USED"].ExpiresAt; got == nil || !got.Equal(expiring) {
		t.Fatalf("used license must stay untouched, got %v", got)
	}
}

func TestAddLicenseTimeLifetimeUnit(t *testing.T) {
	t.Parallel()

	f := newFixture()
	ctx := context.Background()
	appID := f.mustCreateApp(t, "addlife")

	expiring := f.now.Add(time.Hour)
	f.repos.Licenses.Seed(
		domain.License{LicenseID: uuid.New(), ApplicationID: appID, Key: "L1", ExpiresAt: &expiring},
		domain.License{LicenseID: uuid.New(), ApplicationID: appID, Key: "L2", ExpiresAt: &expiring, Used: true},
	)

	res, err := f.service.AddLicenseTime(ctx, f.owner, appID, AddLicenseTimeRequest{Time: 1, ExpiryUnit: domain.UnitLifetime})
	if err != nil {
		t.Fatalf("lifetime add failed: %v", err)
	}
	if res.Count != 1 {
		t.Fatalf("expected only the unused license converted, got %d", res.Count)
	}
	rows, _ := f.service.ListLicenses(ctx, f.owner, appID, 1)
	for _, row := range rows {
		if row.Key == "L1" && row.ExpiresAt != nil {
			t.Fatalf("unused license must become non-expiring")
		}
		if row.Key == "L2" && row.ExpiresAt == nil {
			t.Fatalf("used license must keep its expiry")
		}
	}
}

func TestBanAndUnbanLicense(t *testing.T) {
	t.Parallel()

	f := newFixture()
	ctx := context.Background()
	appID := f.mustCreateApp(t, "ban")

	lic := domain.License{LicenseID: uuid.New(), ApplicationID: appID, Key: "B1"}
	f.repos.Licenses.Seed(lic)

	banned, err := f.service.BanLicense(ctx, f.owner, appID, lic.LicenseID, "resold")
	if err != nil {
		t.Fatalf("ban failed: %v", err)
	}
	if !banned.Banned || banned.BanReason != "resold" {
		t.Fatalf("expected banned with reason, got %+v", banned)
	}

	unbanned, err := f.service.UnbanLicense(ctx, f.owner, appID, lic.LicenseID)
	if err != nil {
		t.Fatalf("unban failed: %v", err)
	}
	if unbanned.Banned || unbanned.BanReason != "" {
		t.Fatalf("expected cleared ban, got %+v", unbanned)
	}

	if _, err := f.service.BanLicense(ctx, f.owner, appID, uuid.New(), "x"); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected not-found for unknown license, got %v", err)
	}
}

func TestDeleteLicensesByMode(t *testing.T) {
	t.Parallel()

	f := newFixture()
	ctx := context.Background()
	appID := f.mustCreateApp(t, "dellic")

	usedID := uuid.New()
	keepID := uuid.New()
	f.repos.Licenses.Seed(
		domain.License{LicenseID: usedID, ApplicationID: appID, Key: "D1", Used: true},
		domain.License{LicenseID: keepID, ApplicationID: appID, Key: "D2"},
		domain.License{LicenseID: uuid.New(), ApplicationID: appID, Key: "D3"},
	)

	res, err := f.service.DeleteLicenses(ctx, f.owner, appID, DeleteLicensesRequest{Mode: "used"})
	if err != nil || res.Count != 1 {
		t.Fatalf("expected 1 used license deleted, got %d (%v)", res.Count, err)
	}

	res, err = f.service.DeleteLicenses(ctx, f.owner, appID, DeleteLicensesRequest{IDs: []uuid.UUID{keepID}})
	if err != nil || res.Count != 1 {
		t.Fatalf("expected 1 license deleted by id, got %d (%v)", res.Count, err)
	}

	res, err = f.service.DeleteLicenses(ctx, f.owner, appID, DeleteLicensesRequest{Mode: "unused"})
	if err != nil || res.Count != 1 {
		t.Fatalf("expected remaining unused license deleted, got %d (%v)", res.Count, err)
	}

	if _, err := f.service.DeleteLicenses(ctx, f.owner, appID, DeleteLicensesRequest{Mode: "everything"}); !errors.Is(err, domain.ErrInvalidInput) {
		t.Fatalf("expected invalid input for unknown mode, got %v", err)
	}
	if _, err := f.service.DeleteLicenses(ctx, f.owner, appID, DeleteLicensesRequest{}); !errors.Is(err, domain.ErrInvalidInput) {
		t.Fatalf("expected invalid input for empty request, got %v", err)
	}
}

func TestCreateAppUser(t *testing.T) {
	t.Parallel()

	f := newFixture()
	ctx := context.Background()
	appID := f.mustCreateApp(t, "users")

	user, err := f.service.CreateAppUser(ctx, f.owner, appID, CreateAppUserRequest{
		Username:   "alice",
		Password:   "correct horse battery",
		Expiry:     7,
		ExpiryUnit: domain.UnitDay,
	})
	if err != nil {
		t.Fatalf("create user failed: %v", err)
	}
	if user.Subscription != domain.DefaultSubscription {
		t.Fatalf("expected default subscription, got %q", user.Subscription)
	}
	if user.ExpiresAt == nil || !user.ExpiresAt.Equal(f.now.Add(7*24*time.Hour)) {
		t.Fatalf("expected 7 day expiry, got %v", user.ExpiresAt)
	}

	if _, err := f.service.CreateAppUser(ctx, f.owner, appID, CreateAppUserRequest{Username: "alice", Password: "correct horse battery"}); !errors.Is(err, domain.ErrConflict) {
		t.Fatalf("expected conflict on duplicate username, got %v", err)
	}
	if _, err := f.service.CreateAppUser(ctx, f.owner, appID, CreateAppUserRequest{Username: "bob", Password: "short"}); !errors.Is(err, domain.ErrInvalidInput) {
		t.Fatalf("expected invalid input for weak password, got %v", err)
	}

	// No expiry fields means no expiry at all.
	lifetime, err := f.service.CreateAppUser(ctx, f.owner, appID, CreateAppUserRequest{Username: "carol", Password: "correct horse battery"})
	if err != nil {
		t.Fatalf("create lifetime user failed: %v", err)
	}
	if lifetime.ExpiresAt != nil {
		t.Fatalf("expected nil expiry, got %v", lifetime.ExpiresAt)
	}
}

func TestExtendAppUsersCohorts(t *testing.T) {
	t.Parallel()

	f := newFixture()
	ctx := context.Background()
	appID := f.mustCreateApp(t, "extend")

	active := f.now.Add(time.Hour)
	expired := f.now.Add(-time.Hour)
	alice := domain.AppUser{UserID: uuid.New(), ApplicationID: appID, Username: "alice", Subscription: "pro", ExpiresAt: &active}
	bob := domain.AppUser{UserID: uuid.New(), ApplicationID: appID, Username: "bob", Subscription: domain.DefaultSubscription}
	carol := domain.AppUser{UserID: uuid.New(), ApplicationID: appID, Username: "carol", Subscription: "pro", ExpiresAt: &expired}
	f.repos.AppUsers.Seed(alice, bob, carol)

	// Active pro users only: carol is expired, bob is the wrong tier.
	res, err := f.service.ExtendAppUsers(ctx, f.owner, appID, ExtendAppUsersRequest{
		CohortRequest: CohortRequest{Username: "all", Subscription: "pro", ActiveOnly: true},
		Time:          1,
		ExpiryUnit:    domain.UnitHour,
	})
	if err != nil || res.Count != 1 {
		t.Fatalf("expected exactly alice extended, got %d (%v)", res.Count, err)
	}
	if got := f.userExpiry(t, appID, alice.UserID); got == nil || !got.Equal(active.Add(time.Hour)) {
		t.Fatalf("alice expiry must shift 1h, got %v", got)
	}

	// The "all" sentinels widen to every user; bob's nil expiry rebases from now.
	res, err = f.service.ExtendAppUsers(ctx, f.owner, appID, ExtendAppUsersRequest{
		CohortRequest: CohortRequest{Username: "all", Subscription: "default"},
		Time:          1,
		ExpiryUnit:    domain.UnitHour,
	})
	if err != nil || res.Count != 3 {
		t.Fatalf("expected all 3 users extended, got %d (%v)", res.Count, err)
	}
	if got := f.userExpiry(t, appID, bob.UserID); got == nil || !got.Equal(f.now.Add(time.Hour)) {
		t.Fatalf("bob must rebase from now, got %v", got)
	}

	// Lifetime converts the cohort to unlimited.
	res, err = f.service.ExtendAppUsers(ctx, f.owner, appID, ExtendAppUsersRequest{
		CohortRequest: CohortRequest{Username: "carol", Subscription: "default"},
		Time:          1,
		ExpiryUnit:    domain.UnitLifetime,
	})
	if err != nil || res.Count != 1 {
		t.Fatalf("expected carol converted, got %d (%v)", res.Count, err)
	}
	if got := f.userExpiry(t, appID, carol.UserID); got != nil {
		t.Fatalf("carol must be unlimited, got %v", got)
	}
}

func TestSubtractAppUserTimeClampsAtNow(t *testing.T) {
	t.Parallel()

	f := newFixture()
	ctx := context.Background()
	appID := f.mustCreateApp(t, "subtract")

	far := f.now.Add(48 * time.Hour)
	near := f.now.Add(time.Hour)
	alice := domain.AppUser{UserID: uuid.New(), ApplicationID: appID, Username: "alice", Subscription: domain.DefaultSubscription, ExpiresAt: &far}
	bob := domain.AppUser{UserID: uuid.New(), ApplicationID: appID, Username: "bob", Subscription: domain.DefaultSubscription, ExpiresAt: &near}
	lifer := domain.AppUser{UserID: uuid.New(), ApplicationID: appID, Username: "lifer", Subscription: domain.DefaultSubscription}
	f.repos.AppUsers.Seed(alice, bob, lifer)

	res, err := f.service.SubtractAppUserTime(ctx, f.owner, appID, SubtractAppUserTimeRequest{
		Username:     "all",
		Subscription: "default",
		Time:         24,
		ExpiryUnit:   domain.UnitHour,
	})
	if err != nil {
		t.Fatalf("subtract failed: %v", err)
	}
	if res.Count != 2 {
		t.Fatalf("expected 2 users mutated (unlimited skipped), got %d", res.Count)
	}
	if got := f.userExpiry(t, appID, alice.UserID); got == nil || !got.Equal(far.Add(-24*time.Hour)) {
		t.Fatalf("alice must lose 24h, got %v", got)
	}
	if got := f.userExpiry(t, appID, bob.UserID); got == nil || !got.Equal(f.now) {
		t.Fatalf("bob must clamp at now, got %v", got)
	}
	if got := f.userExpiry(t, appID, lifer.UserID); got != nil {
		t.Fatalf("unlimited user must never gain a finite expiry, got %v", got)
	}

	// Clamped rows that do not move are not counted twice.
	res, err = f.service.SubtractAppUserTime(ctx, f.owner, appID, SubtractAppUserTimeRequest{
		Username: "bob", Subscription: "default", Time: 1, ExpiryUnit: domain.UnitHour,
	})
	if err != nil || res.Count != 0 {
		t.Fatalf("expected no mutation for already-clamped user, got %d (%v)", res.Count, err)
	}

	if _, err := f.service.SubtractAppUserTime(ctx, f.owner, appID, SubtractAppUserTimeRequest{
		Username: "all", Subscription: "default", Time: 1, ExpiryUnit: domain.UnitLifetime,
	}); !errors.Is(err, domain.ErrInvalidInput) {
		t.Fatalf("expected rejection of lifetime unit on subtract, got %v", err)
	}
}

func TestDeleteAppUsersByMode(t *testing.T) {
	t.Parallel()

	f := newFixture()
	ctx := context.Background()
	appID := f.mustCreateApp(t, "delusers")

	expired := f.now.Add(-time.Minute)
	active := f.now.Add(time.Hour)
	gone := domain.AppUser{UserID: uuid.New(), ApplicationID: appID, Username: "gone", Subscription: domain.DefaultSubscription, ExpiresAt: &expired}
	stays := domain.AppUser{UserID: uuid.New(), ApplicationID: appID, Username: "stays", Subscription: domain.DefaultSubscription, ExpiresAt: &active}
	lifer := domain.AppUser{UserID: uuid.New(), ApplicationID: appID, Username: "lifer", Subscription: domain.DefaultSubscription}
	f.repos.AppUsers.Seed(gone, stays, lifer)

	res, err := f.service.DeleteAppUsers(ctx, f.owner, appID, DeleteAppUsersRequest{Mode: "expired"})
	if err != nil || res.Count != 1 {
		t.Fatalf("expected only the expired user deleted, got %d (%v)", res.Count, err)
	}

	res, err = f.service.DeleteAppUsers(ctx, f.owner, appID, DeleteAppUsersRequest{IDs: []uuid.UUID{stays.UserID}})
	if err != nil || res.Count != 1 {
		t.Fatalf("expected deletion by id, got %d (%v)", res.Count, err)
	}

	remaining, _ := f.service.ListAppUsers(ctx, f.owner, appID, 1)
	if len(remaining) != 1 || remaining[0].Username != "lifer" {
		t.Fatalf("expected only the unlimited user left, got %+v", remaining)
	}
}

func TestPauseAndResetHwid(t *testing.T) {
	t.Parallel()

	f := newFixture()
	ctx := context.Background()
	appID := f.mustCreateApp(t, "pause")

	hwidA := "HW-AAAA"
	hwidB := "HW-BBBB"
	alice := domain.AppUser{UserID: uuid.New(), ApplicationID: appID, Username: "alice", Subscription: domain.DefaultSubscription, HWID: &hwidA}
	bob := domain.AppUser{UserID: uuid.New(), ApplicationID: appID, Username: "bob", Subscription: domain.DefaultSubscription, HWID: &hwidB}
	f.repos.AppUsers.Seed(alice, bob)

	res, err := f.service.PauseAppUsers(ctx, f.owner, appID, PauseAppUsersRequest{IDs: []uuid.UUID{alice.UserID}, Action: "pause"})
	if err != nil || res.Count != 1 {
		t.Fatalf("pause failed: %d (%v)", res.Count, err)
	}
	if _, err := f.service.PauseAppUsers(ctx, f.owner, appID, PauseAppUsersRequest{IDs: []uuid.UUID{alice.UserID}, Action: "freeze"}); !errors.Is(err, domain.ErrInvalidInput) {
		t.Fatalf("expected invalid action rejected, got %v", err)
	}

	res, err = f.service.ResetHwid(ctx, f.owner, appID, ResetHwidRequest{IDs: []uuid.UUID{alice.UserID}})
	if err != nil || res.Count != 1 {
		t.Fatalf("targeted hwid reset failed: %d (%v)", res.Count, err)
	}

	// Empty id list resets the whole application; alice is already clear.
	res, err = f.service.ResetHwid(ctx, f.owner, appID, ResetHwidRequest{})
	if err != nil || res.Count != 1 {
		t.Fatalf("app-wide hwid reset failed: %d (%v)", res.Count, err)
	}

	user, err := f.service.ListAppUsers(ctx, f.owner, appID, 1)
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	for _, u := range user {
		if u.HWID != nil {
			t.Fatalf("expected all hwids cleared, %s still bound", u.Username)
		}
	}
}

func TestDeleteSubscriptionResetsTierAndExpiry(t *testing.T) {
	t.Parallel()

	f := newFixture()
	ctx := context.Background()
	appID := f.mustCreateApp(t, "tier")

	paid := f.now.Add(30 * 24 * time.Hour)
	alice := domain.AppUser{UserID: uuid.New(), ApplicationID: appID, Username: "alice", Subscription: "premium", ExpiresAt: &paid}
	f.repos.AppUsers.Seed(alice)

	user, err := f.service.DeleteSubscription(ctx, f.owner, appID, alice.UserID)
	if err != nil {
		t.Fatalf("delete subscription failed: %v", err)
	}
	if user.Subscription != domain.DefaultSubscription || user.ExpiresAt != nil {
		t.Fatalf("expected default tier with no expiry, got %+v", user)
	}
}

func TestBanAppUser(t *testing.T) {
	t.Parallel()

	f := newFixture()
	ctx := context.Background()
	appID := f.mustCreateApp(t, "modban")

	alice := domain.AppUser{UserID: uuid.New(), ApplicationID: appID, Username: "alice", Subscription: domain.DefaultSubscription}
	f.repos.AppUsers.Seed(alice)

	banned, err := f.service.BanAppUser(ctx, f.owner, appID, alice.UserID, "chargeback")
	if err != nil || !banned.Banned || banned.BanReason != "chargeback" {
		t.Fatalf("expected banned user, got %+v (%v)", banned, err)
	}
	unbanned, err := f.service.UnbanAppUser(ctx, f.owner, appID, alice.UserID)
	if err != nil || unbanned.Banned {
		t.Fatalf("expected unbanned user, got %+v (%v)", unbanned, err)
	}
}

func TestUserVarsReadOnlyGuard(t *testing.T) {
	t.Parallel()

	f := newFixture()
	ctx := context.Background()
	appID := f.mustCreateApp(t, "vars")

	alice := domain.AppUser{UserID: uuid.New(), ApplicationID: appID, Username: "alice", Subscription: domain.DefaultSubscription}
	f.repos.AppUsers.Seed(alice)

	stored, err := f.service.SetUserVar(ctx, f.owner, appID, alice.UserID, SetUserVarRequest{Name: "region", Value: "eu", ReadOnly: true})
	if err != nil {
		t.Fatalf("set var failed: %v", err)
	}
	if stored.Value != "eu" || !stored.ReadOnly {
		t.Fatalf("unexpected stored var: %+v", stored)
	}

	if _, err := f.service.SetUserVar(ctx, f.owner, appID, alice.UserID, SetUserVarRequest{Name: "region", Value: "us"}); !errors.Is(err, domain.ErrVarReadOnly) {
		t.Fatalf("expected read-only rejection, got %v", err)
	}

	// Delete-then-set is the escape hatch.
	if err := f.service.DeleteUserVar(ctx, f.owner, appID, alice.UserID, "region"); err != nil {
		t.Fatalf("delete var failed: %v", err)
	}
	if _, err := f.service.SetUserVar(ctx, f.owner, appID, alice.UserID, SetUserVarRequest{Name: "region", Value: "us"}); err != nil {
		t.Fatalf("set after delete failed: %v", err)
	}

	vars, err := f.service.ListUserVars(ctx, f.owner, appID, alice.UserID)
	if err != nil || len(vars) != 1 || vars[0].Value != "us" {
		t.Fatalf("unexpected vars: %+v (%v)", vars, err)
	}

	if err := f.service.DeleteUserVar(ctx, f.owner, appID, alice.UserID, "missing"); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected not-found for unknown var, got %v", err)
	}
}

func TestBlacklistAndInternalCheck(t *testing.T) {
	t.Parallel()

	f := newFixture()
	ctx := context.Background()
	appID := f.mustCreateApp(t, "blacklist")

	entry, err := f.service.AddBlacklistEntry(ctx, f.owner, appID, BlacklistAddRequest{Type: "HWID", Value: "HW-1234", Reason: "cracked client"})
	if err != nil {
		t.Fatalf("add blacklist entry failed: %v", err)
	}
	if entry.Type != domain.BlacklistHWID {
		t.Fatalf("type must normalize to lowercase, got %q", entry.Type)
	}

	dup, err := f.service.AddBlacklistEntry(ctx, f.owner, appID, BlacklistAddRequest{Type: "hwid", Value: "HW-1234"})
	if err != nil {
		t.Fatalf("duplicate add failed: %v", err)
	}
	if dup.EntryID != entry.EntryID {
		t.Fatalf("duplicate add must return the stored entry")
	}

	if _, err := f.service.AddBlacklistEntry(ctx, f.owner, appID, BlacklistAddRequest{Type: "mac", Value: "x"}); !errors.Is(err, domain.ErrInvalidInput) {
		t.Fatalf("expected unknown type rejected, got %v", err)
	}

	if _, err := f.service.AddBlacklistEntry(ctx, f.owner, appID, BlacklistAddRequest{Type: "ip", Value: "203.0.113.7"}); err != nil {
		t.Fatalf("add ip entry failed: %v", err)
	}

	blocked, err := f.service.InternalCheckBlacklist(ctx, appID, "HW-1234", "")
	if err != nil || !blocked {
		t.Fatalf("expected hwid match, got %v (%v)", blocked, err)
	}
	blocked, err = f.service.InternalCheckBlacklist(ctx, appID, "", "203.0.113.7")
	if err != nil || !blocked {
		t.Fatalf("expected ip match, got %v (%v)", blocked, err)
	}
	// Empty probe values never match empty-vs-empty.
	blocked, err = f.service.InternalCheckBlacklist(ctx, appID, "", "")
	if err != nil || blocked {
		t.Fatalf("expected no match for empty probes, got %v (%v)", blocked, err)
	}

	if err := f.service.RemoveBlacklistEntry(ctx, f.owner, appID, entry.EntryID); err != nil {
		t.Fatalf("remove failed: %v", err)
	}
	entries, err := f.service.ListBlacklist(ctx, f.owner, appID)
	if err != nil || len(entries) != 1 {
		t.Fatalf("expected 1 entry after removal, got %d (%v)", len(entries), err)
	}
}

func TestAppSessions(t *testing.T) {
	t.Parallel()

	f := newFixture()
	ctx := context.Background()
	appID := f.mustCreateApp(t, "sessions")
	otherApp := uuid.New()

	f.sessions.Seed(
		domain.AppSession{SessionID: "s1", ApplicationID: appID, Username: "alice", CreatedAt: f.now, ExpiresAt: f.now.Add(time.Hour)},
		domain.AppSession{SessionID: "s2", ApplicationID: appID, Username: "bob", CreatedAt: f.now, ExpiresAt: f.now.Add(time.Hour)},
		domain.AppSession{SessionID: "s3", ApplicationID: otherApp, Username: "eve", CreatedAt: f.now, ExpiresAt: f.now.Add(time.Hour)},
	)

	sessions, err := f.service.ListAppSessions(ctx, f.owner, appID)
	if err != nil || len(sessions) != 2 {
		t.Fatalf("expected 2 sessions, got %d (%v)", len(sessions), err)
	}

	if err := f.service.KillAppSession(ctx, f.owner, appID, "s1"); err != nil {
		t.Fatalf("kill failed: %v", err)
	}
	if err := f.service.KillAppSession(ctx, f.owner, appID, "s1"); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected not-found on second kill, got %v", err)
	}

	res, err := f.service.KillAllAppSessions(ctx, f.owner, appID)
	if err != nil || res.Count != 1 {
		t.Fatalf("expected 1 remaining session killed, got %d (%v)", res.Count, err)
	}
}

func TestValidateToken(t *testing.T) {
	t.Parallel()

	f := newFixture()
	ctx := context.Background()

	f.verifier.claims["good"] = ports.OwnerClaims{OwnerID: f.owner, Email: "owner@example.com"}
	f.verifier.claims["no-owner"] = ports.OwnerClaims{}

	claims, err := f.service.ValidateToken(ctx, "good")
	if err != nil || claims.OwnerID != f.owner {
		t.Fatalf("expected valid claims, got %+v (%v)", claims, err)
	}
	if _, err := f.service.ValidateToken(ctx, "unknown"); !errors.Is(err, domain.ErrUnauthorized) {
		t.Fatalf("expected unauthorized for unknown token, got %v", err)
	}
	if _, err := f.service.ValidateToken(ctx, "no-owner"); !errors.Is(err, domain.ErrUnauthorized) {
		t.Fatalf("expected unauthorized for ownerless claims, got %v", err)
	}
}

func TestRotateSecretAndStatus(t *testing.T) {
	t.Parallel()

	f := newFixture()
	ctx := context.Background()

	created, err := f.service.CreateApplication(ctx, f.owner, CreateApplicationRequest{Name: "rotate"})
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}

	rotated, err := f.service.RotateApplicationSecret(ctx, f.owner, created.ApplicationID)
	if err != nil {
		t.Fatalf("rotate failed: %v", err)
	}
	if rotated.Secret == "" || rotated.Secret == created.Secret {
		t.Fatalf("expected a fresh secret")
	}

	paused, err := f.service.SetApplicationStatus(ctx, f.owner, created.ApplicationID, "PAUSED")
	if err != nil {
		t.Fatalf("pause failed: %v", err)
	}
	if paused.Status != domain.AppStatusPaused {
		t.Fatalf("expected paused, got %q", paused.Status)
	}

	app, err := f.service.InternalGetApplication(ctx, created.ApplicationID)
	if err != nil || app.Status != domain.AppStatusPaused {
		t.Fatalf("internal lookup must see the pause, got %+v (%v)", app, err)
	}

	if _, err := f.service.SetApplicationStatus(ctx, f.owner, created.ApplicationID, "retired"); !errors.Is(err, domain.ErrInvalidInput) {
		t.Fatalf("expected invalid status rejected, got %v", err)
	}
}

type fixture struct {
	service  *Service
	repos    *memory.Repositories
	sessions *memory.AppSessionStore
	verifier *fakeVerifier
	owner    uuid.UUID
	now      time.Time
}

func newFixture() *fixture {
	repos := memory.NewRepositories()
	sessions := &memory.AppSessionStore{}
	verifier := &fakeVerifier{claims: map[string]ports.OwnerClaims{}}

	f := &fixture{
		repos:    repos,
		sessions: sessions,
		verifier: verifier,
		owner:    uuid.New(),
		now:      time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC),
	}
	f.service = NewService(Dependencies{
		Config: Config{
			DefaultLicenseLevel: 1,
			MaxBatchSize:        100,
			ListLimit:           50,
			IdempotencyTTL:      time.Hour,
		},
		Apps:        repos.Applications,
		Licenses:    repos.Licenses,
		Users:       repos.AppUsers,
		Vars:        repos.UserVars,
		Blacklist:   repos.Blacklist,
		Outbox:      repos.Outbox,
		Idempotency: repos.Idempotency,
		Sessions:    sessions,
		Hasher:      fakeHasher{},
		Verifier:    verifier,
	})
	f.service.nowFn = func() time.Time { return f.now }
	return f
}

func (f *fixture) mustCreateApp(t *testing.T, name string) uuid.UUID {
	t.Helper()
	app, err := f.service.CreateApplication(context.Background(), f.owner, CreateApplicationRequest{Name: name})
	if err != nil {
		t.Fatalf("create application %q failed: %v", name, err)
	}
	return app.ApplicationID
}

func (f *fixture) userExpiry(t *testing.T, appID, userID uuid.UUID) *time.Time {
	t.Helper()
	user, err := f.repos.AppUsers.GetByIDAndApp(context.Background(), userID, appID)
	if err != nil {
		t.Fatalf("lookup user: %v", err)
	}
	return user.ExpiresAt
}

func (f *fixture) hasAuditEvent(eventType string) bool {
	for _, rec := range f.repos.Outbox.Records() {
		if rec.EventType == eventType {
			return true
		}
	}
	return false
}

type fakeHasher struct{}

func (fakeHasher) Hash(password string) (string, error) {
	return "hashed:" + password, nil
}

func (fakeHasher) Compare(hash, password string) error {
	if hash != "hashed:"+password {
		return fmt.Errorf("hash mismatch")
	}
	return nil
}

type fakeVerifier struct {
	claims map[string]ports.OwnerClaims
}

func (v *fakeVerifier) ParseAndValidate(token string) (ports.OwnerClaims, error) {
	claims, ok := v.claims[token]
	if !ok {
		return ports.OwnerClaims{}, fmt.Errorf("unknown token")
	}
	return claims, nil
}
