package migrations

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"golang.org/x/crypto/bcrypt"

	"reseller_hub/internal/database/databasetest"
	"reseller_hub/internal/models"
)

func TestRunMigrationsSeedsOnce(t *testing.T) {
	db := databasetest.Open(t)
	ctx := context.Background()
	defaults := Defaults{
		AdminEmail:     "Ops@ResellerHub.local",
		AdminPassword:  "s3cret",
		CommissionRate: decimal.NewFromInt(20),
	}

	for i := 0; i < 2; i++ {
		if err := RunMigrations(ctx, db, defaults); err != nil {
			t.Fatalf("run %d: %v", i, err)
		}
	}

	var users []models.User
	if err := db.Find(&users).Error; err != nil {
		t.Fatal(err)
	}
	if len(users) != 1 || users[0].Email != "ops@resellerhub.local" || !users[0].IsActive {
		t.Fatalf("users = %+v", users)
	}
	if bcrypt.CompareHashAndPassword([]byte(users[0].PasswordHash), []byte("s3cret")) != nil {
		t.Errorf("stored hash does not match the default password")
	}

	var settings []models.FinancialSettings
	if err := db.Find(&settings).Error; err != nil {
		t.Fatal(err)
	}
	if len(settings) != 1 || !settings[0].PercentageValue.Equal(decimal.NewFromInt(20)) {
		t.Errorf("settings = %+v", settings)
	}
}

func TestRunMigrationsKeepsStoredRate(t *testing.T) {
	db := databasetest.Open(t)
	ctx := context.Background()
	stored := &models.FinancialSettings{SettingName: models.SettingCommissionRate, PercentageValue: decimal.NewFromInt(15), IsActive: true}
	if err := db.Create(stored).Error; err != nil {
		t.Fatal(err)
	}

	if err := RunMigrations(ctx, db, Defaults{AdminEmail: "a@b.c", AdminPassword: "x", CommissionRate: decimal.NewFromInt(25)}); err != nil {
		t.Fatal(err)
	}

	var got models.FinancialSettings
	if err := db.Where("setting_name = ?", models.SettingCommissionRate).First(&got).Error; err != nil {
		t.Fatal(err)
	}
	if !got.PercentageValue.Equal(decimal.NewFromInt(15)) {
		t.Errorf("rate overwritten: %s", got.PercentageValue)
	}
}
