package migrations

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"reseller_hub/internal/auth"
	"reseller_hub/internal/database"
	"reseller_hub/internal/logger"
	"reseller_hub/internal/models"
	"reseller_hub/internal/repository"
)

// Defaults seeds a fresh database.
type Defaults struct {
	AdminEmail     string
	AdminPassword  string
	CommissionRate decimal.Decimal
}

// RunMigrations brings the schema up to date and creates default data.
// Existing tables and rows are kept.
func RunMigrations(ctx context.Context, db *gorm.DB, defaults Defaults) error {
	log := logger.WithComponent("migrations")
	log.Info().Msg("Running database migrations")

	if err := db.WithContext(ctx).AutoMigrate(database.Schema()...); err != nil {
		return fmt.Errorf("auto-migrate: %w", err)
	}

	if err := createDefaultData(ctx, db, defaults); err != nil {
		return fmt.Errorf("default data: %w", err)
	}

	log.Info().Msg("Database migrations completed")
	return nil
}

// createDefaultData creates the first operator and the commission setting
// when they are missing.
func createDefaultData(ctx context.Context, db *gorm.DB, defaults Defaults) error {
	log := logger.WithComponent("migrations")
	userRepo := repository.NewUserRepository(db)
	financialRepo := repository.NewFinancialRepository(db)

	email := strings.ToLower(strings.TrimSpace(defaults.AdminEmail))
	_, err := userRepo.GetByEmail(ctx, email)
	switch {
	case err == nil:
		log.Debug().Str("email", email).Msg("Operator already exists")
	case errors.Is(err, gorm.ErrRecordNotFound):
		hash, err := auth.HashPassword(defaults.AdminPassword)
		if err != nil {
			return err
		}
		admin := &models.User{
			Email:        email,
			PasswordHash: hash,
			Role:         string(models.Admin),
			IsActive:     true,
		}
		if err := userRepo.Create(ctx, admin); err != nil {
			return fmt.Errorf("create operator: %w", err)
		}
		log.Info().Str("email", email).Msg("Default operator created")
	default:
		return fmt.Errorf("look up operator: %w", err)
	}

	_, err = financialRepo.GetSettings(ctx, models.SettingCommissionRate)
	switch {
	case err == nil:
		return nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		setting := &models.FinancialSettings{
			SettingName:     models.SettingCommissionRate,
			PercentageValue: defaults.CommissionRate,
			IsActive:        true,
		}
		if err := financialRepo.SaveSettings(ctx, setting); err != nil {
			return fmt.Errorf("create commission setting: %w", err)
		}
		log.Info().Str("rate", defaults.CommissionRate.String()).Msg("Default commission rate stored")
		return nil
	default:
		return fmt.Errorf("look up commission setting: %w", err)
	}
}
