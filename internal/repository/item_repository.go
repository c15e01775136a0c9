package repository

import (
	"context"
	"strings"

	"gorm.io/gorm"

	"reseller_hub/internal/gateway"
	"reseller_hub/internal/models"
)

type ItemRepository interface {
	Create(ctx context.Context, item *models.Item) error
	GetByID(ctx context.Context, itemID string) (*models.Item, error)
	List(ctx context.Context, search string) ([]models.Item, error)
	Update(ctx context.Context, item *models.Item) error
	Delete(ctx context.Context, itemID string) error
}

type itemRepository struct {
	db *gorm.DB
	gw *gateway.Gateway
}

func NewItemRepository(db *gorm.DB) ItemRepository {
	return &itemRepository{db: db, gw: gateway.New(db)}
}

func (r *itemRepository) Create(ctx context.Context, item *models.Item) error {
	return gateway.Classify("insert", gateway.Items, r.db.WithContext(ctx).Create(item).Error)
}

func (r *itemRepository) GetByID(ctx context.Context, itemID string) (*models.Item, error) {
	var item models.Item
	err := r.db.WithContext(ctx).Where("item_id = ?", itemID).First(&item).Error
	if err != nil {
		return nil, gateway.Classify("select", gateway.Items, err)
	}
	return &item, nil
}

func (r *itemRepository) List(ctx context.Context, search string) ([]models.Item, error) {
	var items []models.Item
	query := r.db.WithContext(ctx).Order("created_at DESC").Order("item_id")
	if term := strings.TrimSpace(search); term != "" {
		like := "%" + strings.ToLower(term) + "%"
		query = query.Where("LOWER(item_name) LIKE ? OR LOWER(item_id) LIKE ?", like, like)
	}
	err := query.Find(&items).Error
	return items, gateway.Classify("select", gateway.Items, err)
}

func (r *itemRepository) Update(ctx context.Context, item *models.Item) error {
	return r.gw.Update(ctx, gateway.Items, map[string]interface{}{
		"item_name":        item.ItemName,
		"item_description": item.ItemDescription,
		"item_buy_price":   item.ItemBuyPrice,
		"item_sell_price":  item.ItemSellPrice,
		"stock_quantity":   item.StockQuantity,
	}, gateway.Eq("item_id", item.ItemID))
}

func (r *itemRepository) Delete(ctx context.Context, itemID string) error {
	return r.gw.Delete(ctx, gateway.Items, gateway.Eq("item_id", itemID))
}
