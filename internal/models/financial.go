package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Setting names understood by the order and payout services.
const (
	SettingCommissionRate = "commission_rate"
)

type FinancialSettings struct {
	ID              uint            `json:"id" gorm:"primaryKey"`
	SettingName     string          `json:"setting_name" gorm:"uniqueIndex;not null"`
	PercentageValue decimal.Decimal `json:"percentage_value" gorm:"type:numeric(6,2);not null;default:0"`
	IsActive        bool            `json:"is_active" gorm:"default:true"`
	CreatedAt       time.Time       `json:"created_at"`
	UpdatedAt       time.Time       `json:"updated_at"`
}
