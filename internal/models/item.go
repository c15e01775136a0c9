package models

import (
	"time"

	"github.com/shopspring/decimal"
)

type Item struct {
	ItemID          string          `json:"item_id" gorm:"column:item_id;primaryKey;size:64"`
	ItemName        string          `json:"item_name" gorm:"not null"`
	ItemDescription string          `json:"item_description"`
	ItemBuyPrice    decimal.Decimal `json:"item_buy_price" gorm:"type:numeric(12,2);not null;default:0"`
	ItemSellPrice   decimal.Decimal `json:"item_sell_price" gorm:"type:numeric(12,2);not null;default:0"`
	StockQuantity   int             `json:"stock_quantity" gorm:"not null;default:0"`
	CreatedAt       time.Time       `json:"created_at"`
}

func (Item) TableName() string {
	return "items"
}
