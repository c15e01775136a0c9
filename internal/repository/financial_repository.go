package repository

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"reseller_hub/internal/models"
)

type FinancialRepository interface {
	GetSettings(ctx context.Context, settingName string) (*models.FinancialSettings, error)
	SaveSettings(ctx context.Context, settings *models.FinancialSettings) error
}

type financialRepository struct {
	db *gorm.DB
}

func NewFinancialRepository(db *gorm.DB) FinancialRepository {
	return &financialRepository{db: db}
}

func (r *financialRepository) GetSettings(ctx context.Context, settingName string) (*models.FinancialSettings, error) {
	var settings models.FinancialSettings
	err := r.db.WithContext(ctx).
		Where("setting_name = ? AND is_active = ?", settingName, true).
		First(&settings).Error
	if err != nil {
		return nil, err
	}
	return &settings, nil
}

// SaveSettings inserts the setting or overwrites the value stored under the
// same name.
func (r *financialRepository) SaveSettings(ctx context.Context, settings *models.FinancialSettings) error {
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "setting_name"}},
		DoUpdates: clause.AssignmentColumns([]string{"percentage_value", "is_active", "updated_at"}),
	}).Create(settings).Error
}
