package repository

import (
	"context"
	"strings"

	"gorm.io/gorm"

	"reseller_hub/internal/gateway"
	"reseller_hub/internal/models"
)

type ResellerRepository interface {
	Create(ctx context.Context, reseller *models.Reseller) error
	GetByID(ctx context.Context, resellerID string) (*models.Reseller, error)
	List(ctx context.Context, search string) ([]models.Reseller, error)
	Update(ctx context.Context, reseller *models.Reseller) error
	Delete(ctx context.Context, resellerID string) error
}

type resellerRepository struct {
	db *gorm.DB
	gw *gateway.Gateway
}

func NewResellerRepository(db *gorm.DB) ResellerRepository {
	return &resellerRepository{db: db, gw: gateway.New(db)}
}

func (r *resellerRepository) Create(ctx context.Context, reseller *models.Reseller) error {
	return gateway.Classify("insert", gateway.Resellers, r.db.WithContext(ctx).Create(reseller).Error)
}

func (r *resellerRepository) GetByID(ctx context.Context, resellerID string) (*models.Reseller, error) {
	var reseller models.Reseller
	err := r.db.WithContext(ctx).Where("reseller_id = ?", resellerID).First(&reseller).Error
	if err != nil {
		return nil, gateway.Classify("select", gateway.Resellers, err)
	}
	return &reseller, nil
}

func (r *resellerRepository) List(ctx context.Context, search string) ([]models.Reseller, error) {
	var resellers []models.Reseller
	query := r.db.WithContext(ctx).Order("created_at DESC").Order("reseller_id")
	if term := strings.TrimSpace(search); term != "" {
		like := "%" + strings.ToLower(term) + "%"
		query = query.Where("LOWER(reseller_name) LIKE ? OR LOWER(reseller_id) LIKE ?", like, like)
	}
	err := query.Find(&resellers).Error
	return resellers, gateway.Classify("select", gateway.Resellers, err)
}

func (r *resellerRepository) Update(ctx context.Context, reseller *models.Reseller) error {
	return r.gw.Update(ctx, gateway.Resellers, map[string]interface{}{
		"reseller_name":    reseller.ResellerName,
		"reseller_address": reseller.ResellerAddress,
		"contact_no":       reseller.ContactNo,
		"whatsapp_no":      reseller.WhatsAppNo,
		"bank_details":     reseller.BankDetails,
	}, gateway.Eq("reseller_id", reseller.ResellerID))
}

func (r *resellerRepository) Delete(ctx context.Context, resellerID string) error {
	return r.gw.Delete(ctx, gateway.Resellers, gateway.Eq("reseller_id", resellerID))
}
