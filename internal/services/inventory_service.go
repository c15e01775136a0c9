package services

import (
	"context"
	"strings"

	"github.com/shopspring/decimal"

	"reseller_hub/internal/models"
	"reseller_hub/internal/repository"
)

const itemConflictMessage = "This Item ID already exists. Please use a unique ID."

type ItemInput struct {
	ItemID          string          `json:"item_id"`
	ItemName        string          `json:"item_name"`
	ItemDescription string          `json:"item_description"`
	ItemBuyPrice    decimal.Decimal `json:"item_buy_price"`
	ItemSellPrice   decimal.Decimal `json:"item_sell_price"`
	StockQuantity   int             `json:"stock_quantity"`
}

type InventoryService interface {
	List(ctx context.Context, search string) ([]models.Item, error)
	Get(ctx context.Context, itemID string) (*models.Item, error)
	Create(ctx context.Context, in ItemInput) (*models.Item, error)
	Update(ctx context.Context, itemID string, in ItemInput) (*models.Item, error)
	Delete(ctx context.Context, itemID string) error
}

type inventoryService struct {
	itemRepo repository.ItemRepository
}

func NewInventoryService(itemRepo repository.ItemRepository) InventoryService {
	return &inventoryService{itemRepo: itemRepo}
}

func (s *inventoryService) List(ctx context.Context, search string) ([]models.Item, error) {
	return s.itemRepo.List(ctx, search)
}

func (s *inventoryService) Get(ctx context.Context, itemID string) (*models.Item, error) {
	return s.itemRepo.GetByID(ctx, itemID)
}

func (s *inventoryService) Create(ctx context.Context, in ItemInput) (*models.Item, error) {
	item, err := in.toModel(strings.TrimSpace(in.ItemID))
	if err != nil {
		return nil, err
	}
	if err := required("item_id", item.ItemID); err != nil {
		return nil, err
	}
	if err := s.itemRepo.Create(ctx, item); err != nil {
		return nil, friendlyConflict(err, itemConflictMessage)
	}
	return item, nil
}

func (s *inventoryService) Update(ctx context.Context, itemID string, in ItemInput) (*models.Item, error) {
	item, err := in.toModel(itemID)
	if err != nil {
		return nil, err
	}
	if err := s.itemRepo.Update(ctx, item); err != nil {
		return nil, err
	}
	return s.itemRepo.GetByID(ctx, itemID)
}

func (s *inventoryService) Delete(ctx context.Context, itemID string) error {
	return s.itemRepo.Delete(ctx, itemID)
}

func (in ItemInput) toModel(itemID string) (*models.Item, error) {
	item := &models.Item{
		ItemID:          itemID,
		ItemName:        strings.TrimSpace(in.ItemName),
		ItemDescription: in.ItemDescription,
		ItemBuyPrice:    in.ItemBuyPrice,
		ItemSellPrice:   in.ItemSellPrice,
		StockQuantity:   in.StockQuantity,
	}
	if err := required("item_name", item.ItemName); err != nil {
		return nil, err
	}
	if err := nonNegative("item_buy_price", item.ItemBuyPrice); err != nil {
		return nil, err
	}
	if err := nonNegative("item_sell_price", item.ItemSellPrice); err != nil {
		return nil, err
	}
	if item.StockQuantity < 0 {
		return nil, &ValidationError{Field: "stock_quantity", Message: "must not be negative"}
	}
	return item, nil
}

func nonNegative(field string, v decimal.Decimal) error {
	if v.IsNegative() {
		return &ValidationError{Field: field, Message: "must not be negative"}
	}
	return nil
}
