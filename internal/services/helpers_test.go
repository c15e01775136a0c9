package services

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"reseller_hub/internal/database/databasetest"
	"reseller_hub/internal/models"
	"reseller_hub/internal/repository"
)

var testNow = time.Date(2024, 5, 8, 10, 0, 0, 0, time.UTC)

type fixture struct {
	db           *gorm.DB
	items        repository.ItemRepository
	resellers    repository.ResellerRepository
	orders       repository.OrderRepository
	financial    repository.FinancialRepository
	orderService OrderService
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	db := databasetest.Open(t)
	f := &fixture{
		db:        db,
		items:     repository.NewItemRepository(db),
		resellers: repository.NewResellerRepository(db),
		orders:    repository.NewOrderRepository(db),
		financial: repository.NewFinancialRepository(db),
	}
	f.orderService = NewOrderService(f.orders, f.items, f.resellers, f.financial, decimal.NewFromInt(25))
	return f
}

func (f *fixture) seedItem(t *testing.T, id, name string) {
	t.Helper()
	item := &models.Item{ItemID: id, ItemName: name, ItemBuyPrice: decimal.NewFromInt(600), ItemSellPrice: decimal.NewFromInt(1000), StockQuantity: 5}
	if err := f.items.Create(context.Background(), item); err != nil {
		t.Fatalf("seed item %s: %v", id, err)
	}
}

func (f *fixture) seedReseller(t *testing.T, id, name, whatsapp string) {
	t.Helper()
	r := &models.Reseller{
		ResellerID:   id,
		ResellerName: name,
		WhatsAppNo:   whatsapp,
		BankDetails:  datatypes.NewJSONType(models.BankDetails{Bank: "BOC", AccNo: "0012"}),
	}
	if err := f.resellers.Create(context.Background(), r); err != nil {
		t.Fatalf("seed reseller %s: %v", id, err)
	}
}

func (f *fixture) seedOrder(t *testing.T, o models.Order) {
	t.Helper()
	if o.DeliveryStatus == "" {
		o.DeliveryStatus = models.StatusDelivered
	}
	if o.CustomerName == "" {
		o.CustomerName = "Customer " + o.OrderID
	}
	if err := f.orders.Create(context.Background(), &o); err != nil {
		t.Fatalf("seed order %s: %v", o.OrderID, err)
	}
}

func (f *fixture) count(t *testing.T, model interface{}) int64 {
	t.Helper()
	var n int64
	if err := f.db.Model(model).Count(&n).Error; err != nil {
		t.Fatalf("count: %v", err)
	}
	return n
}

// countDeletes records the table of every DELETE issued through db.
func countDeletes(t *testing.T, db *gorm.DB) *[]string {
	t.Helper()
	var tables []string
	err := db.Callback().Delete().Before("gorm:delete").Register("test:record_delete", func(tx *gorm.DB) {
		tables = append(tables, tx.Statement.Table)
	})
	if err != nil {
		t.Fatalf("register callback: %v", err)
	}
	return &tables
}

func d(v int64) decimal.Decimal {
	return decimal.NewFromInt(v)
}

func validOrderInput(id string) OrderInput {
	return OrderInput{
		OrderID:         id,
		Date:            "2024-05-06",
		CustomerName:    "Kamal",
		CustomerAddress: "12 Temple Rd, Kandy",
		ContactNo1:      "0771234567",
		ItemID:          "IT-1",
		ResellerID:      "RS-1",
		BuyPriceAtSale:  d(600),
		SellPriceAtSale: d(1000),
		DeliveryCharges: d(350),
	}
}
