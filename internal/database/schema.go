package database

import "reseller_hub/internal/models"

// Schema lists the persisted models in creation order.
func Schema() []interface{} {
	return []interface{}{
		&models.User{},
		&models.FinancialSettings{},
		&models.Item{},
		&models.Reseller{},
		&models.Order{},
	}
}
