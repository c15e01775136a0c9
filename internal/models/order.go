package models

import (
	"time"

	"github.com/shopspring/decimal"
)

type Order struct {
	OrderID         string          `json:"order_id" gorm:"column:order_id;primaryKey;size:64"`
	Date            time.Time       `json:"date" gorm:"type:date;not null;index"`
	CourierService  string          `json:"courier_service" gorm:"default:'Royal Express'"`
	TrackingNo      string          `json:"tracking_no"`
	CustomerName    string          `json:"customer_name" gorm:"not null"`
	CustomerAddress string          `json:"customer_address"`
	ContactNo1      string          `json:"contact_no_1" gorm:"column:contact_no_1"`
	ContactNo2      string          `json:"contact_no_2" gorm:"column:contact_no_2"`
	ItemID          string          `json:"item_id" gorm:"size:64;index"`
	ResellerID      string          `json:"reseller_id" gorm:"size:64;index"`
	BuyPriceAtSale  decimal.Decimal `json:"buy_price_at_sale" gorm:"type:numeric(12,2);not null;default:0"`
	SellPriceAtSale decimal.Decimal `json:"sell_price_at_sale" gorm:"type:numeric(12,2);not null;default:0"`
	DeliveryCharges decimal.Decimal `json:"delivery_charges" gorm:"type:numeric(12,2);not null;default:0"`
	// CommissionAmount is derived from the sell price and the configured
	// commission rate; it is never taken from client input.
	CommissionAmount decimal.Decimal `json:"commission_amount" gorm:"type:numeric(12,2);not null;default:0"`
	DeliveryStatus   DeliveryStatus  `json:"delivery_status" gorm:"type:varchar(16);not null;default:'Pending';index"`
	IsPaid           bool            `json:"is_paid" gorm:"not null;default:false"`
	CreatedAt        time.Time       `json:"created_at"`

	Item     *Item     `json:"items,omitempty" gorm:"foreignKey:ItemID;references:ItemID"`
	Reseller *Reseller `json:"resellers,omitempty" gorm:"foreignKey:ResellerID;references:ResellerID"`
}

func (Order) TableName() string {
	return "orders"
}

// ResellerName returns the joined reseller name, or "" when the relation
// was not loaded.
func (o *Order) ResellerName() string {
	if o.Reseller == nil {
		return ""
	}
	return o.Reseller.ResellerName
}

type DeliveryStatus string

const (
	StatusPending   DeliveryStatus = "Pending"
	StatusDelivered DeliveryStatus = "Delivered"
	StatusReturned  DeliveryStatus = "Returned"
	StatusCanceled  DeliveryStatus = "Canceled"
)

func (s DeliveryStatus) Valid() bool {
	switch s {
	case StatusPending, StatusDelivered, StatusReturned, StatusCanceled:
		return true
	}
	return false
}
