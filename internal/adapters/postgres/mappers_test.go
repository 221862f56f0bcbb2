package postgres

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/venomauth/licensing-service/internal/domain"
)

func TestLicenseModelKeepsAssignedID(t *testing.T) {
	t.Parallel()

	expiry := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	lic := domain.License{
		LicenseID:       uuid.New(),
		ApplicationID:   uuid.New(),
		Key:             "VENOM-A1B2-C3D4",
		Level:           2,
		DurationSeconds: 2592000,
		ExpiresAt:       &expiry,
		Note:            "launch batch",
		CreatedAt:       expiry.Add(-30 * 24 * time.Hour),
	}

	row := toLicenseModel(lic)
	if row.LicenseID != lic.LicenseID {
		t.Fatalf("row LicenseID = %s, want caller-assigned %s", row.LicenseID, lic.LicenseID)
	}
	if row.LicenseID == uuid.Nil {
		t.Fatal("row LicenseID is zero, insert would fall back to the column default")
	}

	back := toDomainLicense(row)
	if back != lic {
		t.Fatalf("round trip mismatch:\n got %+v\nwant %+v", back, lic)
	}
}
